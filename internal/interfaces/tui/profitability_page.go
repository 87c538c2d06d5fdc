package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jhoicas/heladeria/internal/application/usecase"
	"github.com/jhoicas/heladeria/internal/application/views"
	"github.com/jhoicas/heladeria/internal/domain"
	"github.com/jhoicas/heladeria/internal/domain/entity"
	"github.com/jhoicas/heladeria/pkg/format"
)

// reportMsg resultado de la consulta del panel.
type reportMsg struct {
	report *usecase.ProfitabilityReport
	err    error
}

// profitabilityPage resumen de rentabilidad (solo lectura).
type profitabilityPage struct {
	ctx     context.Context
	src     ReportSource
	styles  Styles
	loading bool
	report  *usecase.ProfitabilityReport
	err     error
}

func newProfitabilityPage(ctx context.Context, src ReportSource, s Styles) *profitabilityPage {
	return &profitabilityPage{ctx: ctx, src: src, styles: s, loading: true}
}

func (p *profitabilityPage) Init() tea.Cmd { return p.load() }

func (p *profitabilityPage) load() tea.Cmd {
	if p.src == nil {
		p.loading = false
		return nil
	}
	p.loading = true
	ctx, src := p.ctx, p.src
	return func() tea.Msg {
		r, err := src.Report(ctx)
		return reportMsg{report: r, err: err}
	}
}

func (p *profitabilityPage) Capturing() bool { return false }

func (p *profitabilityPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case reportMsg:
		p.loading = false
		p.report, p.err = msg.report, msg.err
	case tea.KeyMsg:
		if msg.String() == "r" {
			return p.load()
		}
	}
	return nil
}

func (p *profitabilityPage) View() string {
	var b strings.Builder
	b.WriteString(p.styles.Title.Render(views.ScreenProfitability.Title()))
	b.WriteString("\n\n")
	switch {
	case p.src == nil:
		b.WriteString(p.styles.Muted.Render("Panel no disponible."))
		return b.String()
	case p.loading:
		b.WriteString(p.styles.Muted.Render("Calculando…"))
		return b.String()
	case p.err != nil:
		b.WriteString(p.styles.Error.Render("Error: " + domain.UserMessage(p.err)))
		b.WriteString(p.styles.Help.Render("r: reintentar"))
		return b.String()
	case p.report == nil:
		return b.String()
	}

	r := p.report
	lines := []string{
		row(p.styles, "Productos", format.Int(len(r.Products))),
		row(p.styles, "Rentabilidad media", format.Price(r.AverageProfitability)),
		row(p.styles, "Precio total", format.Price(r.TotalPublicPrice)),
		row(p.styles, "Costo total", format.Price(r.TotalCost)),
		row(p.styles, "Más rentable", productSummary(r.MostProfitable)),
		row(p.styles, "Menos rentable", productSummary(r.LeastProfitable)),
	}
	b.WriteString(p.styles.Box.Render(strings.Join(lines, "\n")))
	b.WriteString(p.styles.Help.Render(fmt.Sprintf("Generado %s · r: actualizar", r.GeneratedAt.Format("02/01/2006 15:04"))))
	return b.String()
}

func row(s Styles, label, value string) string {
	return s.Label.Width(20).Render(label) + value
}

func productSummary(p *entity.Product) string {
	if p == nil {
		return "-"
	}
	return p.Name + " (" + format.Price(p.Profitability) + ")"
}
