package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jhoicas/heladeria/internal/application/listing"
	"github.com/jhoicas/heladeria/internal/application/usecase"
	"github.com/jhoicas/heladeria/internal/application/views"
	"github.com/jhoicas/heladeria/internal/domain"
	"github.com/jhoicas/heladeria/internal/domain/entity"
)

const (
	cuEmail = iota
	cuName
	cuPassword
	cuRole
)

// createUserPage alta de cuenta y perfil. En el campo rol ←/→ recorre los roles asignables.
type createUserPage struct {
	ctx    context.Context
	ctl    *listing.UserController
	styles Styles
	form   *form
	role   entity.Role
}

func newCreateUserPage(ctx context.Context, ctl *listing.UserController, s Styles) *createUserPage {
	f := newForm("Email", "Nombre", "Contraseña", "Rol").password(cuPassword)
	p := &createUserPage{ctx: ctx, ctl: ctl, styles: s, form: f}
	p.reset()
	return p
}

func (p *createUserPage) reset() {
	p.form.Reset()
	p.role = usecase.NewCreateUserInput().Role
	p.form.Set(cuRole, p.role.Label())
}

func (p *createUserPage) Init() tea.Cmd { return nil }

func (p *createUserPage) Capturing() bool { return p.form.focused }

func (p *createUserPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case doneMsg:
		if msg.err == nil {
			p.reset()
			p.form.Blur()
		}
		return nil
	case tea.KeyMsg:
		if !p.form.focused {
			if msg.String() == "enter" || msg.String() == "a" {
				return p.form.Focus()
			}
			return nil
		}
		switch msg.String() {
		case "esc":
			p.form.Blur()
			return nil
		case "up", "shift+tab":
			return p.form.Prev()
		case "down", "tab":
			return p.form.Next()
		case "enter":
			if !p.form.Last() {
				return p.form.Next()
			}
			return p.submit()
		case "left", "right":
			if p.form.focus == cuRole {
				if msg.String() == "left" {
					p.role = p.role.Prev()
				} else {
					p.role = p.role.Next()
				}
				p.form.Set(cuRole, p.role.Label())
				return nil
			}
		}
		if p.form.focus == cuRole {
			return nil
		}
	}
	return p.form.Update(msg)
}

func (p *createUserPage) submit() tea.Cmd {
	if creating, _, _ := p.ctl.CreateStatus(); creating {
		return nil
	}
	in := usecase.CreateUserInput{
		Email:    p.form.Value(cuEmail),
		Name:     p.form.Value(cuName),
		Password: p.form.Raw(cuPassword),
		Role:     p.role,
	}
	ctx, ctl := p.ctx, p.ctl
	return func() tea.Msg {
		_, err := ctl.CreateUser(ctx, in)
		return doneMsg{screen: views.ScreenCreateUser, op: "create", err: err}
	}
}

func (p *createUserPage) View() string {
	var b strings.Builder
	b.WriteString(p.styles.Title.Render("Crear usuario"))
	b.WriteString("\n\n")
	b.WriteString(p.form.View(p.styles))
	b.WriteString("\n\n")
	creating, msg, err := p.ctl.CreateStatus()
	switch {
	case creating:
		b.WriteString(p.styles.Muted.Render("Creando usuario…"))
	case err != nil:
		b.WriteString(p.styles.Error.Render(domain.UserMessage(err)))
	case msg != "":
		b.WriteString(p.styles.Success.Render(msg))
	}
	help := "enter: completar formulario"
	if p.form.focused {
		help = "↑/↓: campo · ←/→: rol · enter: siguiente/crear · esc: salir"
	}
	b.WriteString(p.styles.Help.Render(help))
	return b.String()
}
