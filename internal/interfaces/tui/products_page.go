package tui

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jhoicas/heladeria/internal/application/listing"
	"github.com/jhoicas/heladeria/internal/application/views"
	"github.com/jhoicas/heladeria/internal/domain/entity"
	"github.com/jhoicas/heladeria/pkg/format"
)

// productsPage catálogo con venta. Visible para todos, con o sin sesión.
type productsPage struct {
	ctx     context.Context
	ctl     *listing.ProductController
	styles  Styles
	table   table.Model
	items   []entity.Product
	selling bool
}

func newProductsPage(ctx context.Context, ctl *listing.ProductController, s Styles) *productsPage {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 5},
			{Title: "Producto", Width: 22},
			{Title: "Precio", Width: 10},
			{Title: "Costo", Width: 10},
			{Title: "Rentabilidad", Width: 12},
			{Title: "Calorías", Width: 9},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
		table.WithStyles(s.Table),
	)
	return &productsPage{ctx: ctx, ctl: ctl, styles: s, table: t}
}

func (p *productsPage) Init() tea.Cmd { return p.load() }

func (p *productsPage) load() tea.Cmd {
	ctx, ctl := p.ctx, p.ctl
	return func() tea.Msg {
		return loadedMsg{screen: views.ScreenProducts, err: ctl.Load(ctx)}
	}
}

func (p *productsPage) Capturing() bool { return false }

func (p *productsPage) refresh() {
	p.items = p.ctl.Items()
	rows := make([]table.Row, 0, len(p.items))
	for _, pr := range p.items {
		rows = append(rows, table.Row{
			strconv.FormatInt(pr.ID, 10), pr.Name, format.Price(pr.PublicPrice),
			format.Price(pr.Cost), format.Price(pr.Profitability), format.OptionalInt(pr.TotalCalories),
		})
	}
	p.table.SetRows(rows)
}

func (p *productsPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loadedMsg:
		p.refresh()
		return nil
	case doneMsg:
		p.selling = false
		p.refresh()
		// el aviso vence desde que se emitió, no desde que terminó la recarga
		left, ok := p.ctl.Remaining()
		if !ok {
			return nil
		}
		return tea.Tick(left, func(time.Time) tea.Msg { return expireMsg{} })
	case expireMsg:
		// Solo redibuja: Notification() descarta el aviso vencido.
		return nil
	case tea.KeyMsg:
		switch msg.String() {
		case "v", "enter":
			return p.sell()
		case "r":
			return p.load()
		}
	}
	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return cmd
}

func (p *productsPage) sell() tea.Cmd {
	c := p.table.Cursor()
	if p.selling || c < 0 || c >= len(p.items) {
		return nil
	}
	p.selling = true
	ctx, ctl, id := p.ctx, p.ctl, p.items[c].ID
	return func() tea.Msg {
		return doneMsg{screen: views.ScreenProducts, op: "sell", err: ctl.Sell(ctx, id)}
	}
}

func (p *productsPage) View() string {
	var b strings.Builder
	b.WriteString(p.styles.Title.Render("Productos"))
	b.WriteString("\n\n")

	if n, ok := p.ctl.Notification(); ok {
		st := p.styles.Success
		if n.Kind == listing.NotifyError {
			st = p.styles.Error
		}
		b.WriteString(p.styles.Box.Render(st.Render(n.Message)))
		b.WriteString("\n")
	}

	switch p.ctl.State() {
	case listing.Loading:
		b.WriteString(p.styles.Muted.Render("Cargando productos…"))
		return b.String()
	case listing.LoadError:
		b.WriteString(p.styles.Error.Render("Error: " + p.ctl.LoadMessage()))
		b.WriteString("\n")
		b.WriteString(p.styles.Help.Render("r: reintentar"))
		return b.String()
	}
	b.WriteString(p.table.View())
	if p.selling {
		b.WriteString("\n")
		b.WriteString(p.styles.Muted.Render("Procesando venta…"))
	}
	b.WriteString(p.styles.Help.Render("v: vender · r: recargar"))
	return b.String()
}
