package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jhoicas/heladeria/internal/application/listing"
	"github.com/jhoicas/heladeria/internal/application/views"
	"github.com/jhoicas/heladeria/internal/domain"
	"github.com/jhoicas/heladeria/internal/domain/entity"
)

// usersPage usuarios con cambio de rol: ←/→ prepara, s guarda.
type usersPage struct {
	ctx    context.Context
	ctl    *listing.UserController
	styles Styles
	table  table.Model
	items  []entity.User
	err    string
}

func newUsersPage(ctx context.Context, ctl *listing.UserController, s Styles) *usersPage {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 10},
			{Title: "Nombre", Width: 26},
			{Title: "Rol", Width: 16},
			{Title: "", Width: 12},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
		table.WithStyles(s.Table),
	)
	return &usersPage{ctx: ctx, ctl: ctl, styles: s, table: t}
}

func (p *usersPage) Init() tea.Cmd { return p.load() }

func (p *usersPage) load() tea.Cmd {
	ctx, ctl := p.ctx, p.ctl
	return func() tea.Msg {
		return loadedMsg{screen: views.ScreenUsers, err: ctl.Load(ctx)}
	}
}

func (p *usersPage) Capturing() bool { return false }

func (p *usersPage) refresh() {
	p.items = p.ctl.Items()
	rows := make([]table.Row, 0, len(p.items))
	for _, u := range p.items {
		name := u.Name
		if u.IsAdmin() {
			name = "★ " + name
		}
		role := p.ctl.StagedRole(u.ID).Label()
		state := ""
		switch {
		case p.ctl.Saving(u.ID):
			state = "guardando…"
		case p.ctl.Staged(u.ID):
			role += " *"
			state = "s: guardar"
		}
		rows = append(rows, table.Row{shortID(u.ID), name, role, state})
	}
	p.table.SetRows(rows)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (p *usersPage) selected() (entity.User, bool) {
	c := p.table.Cursor()
	if c < 0 || c >= len(p.items) {
		return entity.User{}, false
	}
	return p.items[c], true
}

func (p *usersPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loadedMsg:
		p.refresh()
		return nil
	case doneMsg:
		p.err = ""
		if msg.err != nil {
			p.err = "No se pudo guardar el rol: " + domain.UserMessage(msg.err)
		}
		p.refresh()
		return nil
	case tea.KeyMsg:
		switch msg.String() {
		case "left", "right":
			if u, ok := p.selected(); ok && !p.ctl.Saving(u.ID) {
				cur := p.ctl.StagedRole(u.ID)
				next := cur.Next()
				if msg.String() == "left" {
					next = cur.Prev()
				}
				p.ctl.StageRole(u.ID, next)
				p.refresh()
			}
			return nil
		case "s", "enter":
			return p.save()
		case "r":
			return p.load()
		}
	}
	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return cmd
}

func (p *usersPage) save() tea.Cmd {
	u, ok := p.selected()
	if !ok || !p.ctl.CanSave(u.ID) {
		return nil
	}
	ctx, ctl, id := p.ctx, p.ctl, u.ID
	return func() tea.Msg {
		return doneMsg{screen: views.ScreenUsers, op: "role", err: ctl.SaveRole(ctx, id)}
	}
}

func (p *usersPage) View() string {
	var b strings.Builder
	b.WriteString(p.styles.Title.Render("Usuarios"))
	b.WriteString("\n\n")
	switch p.ctl.State() {
	case listing.Loading:
		b.WriteString(p.styles.Muted.Render("Cargando usuarios…"))
		return b.String()
	case listing.LoadError:
		b.WriteString(p.styles.Error.Render("Error: " + p.ctl.LoadMessage()))
		b.WriteString("\n")
		b.WriteString(p.styles.Help.Render("r: reintentar"))
		return b.String()
	}
	b.WriteString(p.table.View())
	if p.err != "" {
		b.WriteString("\n")
		b.WriteString(p.styles.Error.Render(p.err))
	}
	b.WriteString(p.styles.Help.Render("←/→: cambiar rol · s: guardar · r: recargar"))
	return b.String()
}
