package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jhoicas/heladeria/internal/domain"
)

// loginPage inicio de sesión con email y contraseña.
type loginPage struct {
	ctx     context.Context
	sess    Session
	styles  Styles
	form    *form
	sending bool
	err     string
}

func newLoginPage(ctx context.Context, sess Session, s Styles) *loginPage {
	f := newForm("Email", "Contraseña").password(1).placeholder(0, "usuario@correo.com")
	return &loginPage{ctx: ctx, sess: sess, styles: s, form: f}
}

func (p *loginPage) Init() tea.Cmd { return nil }

func (p *loginPage) Capturing() bool { return p.form.focused }

func (p *loginPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case signInDoneMsg:
		p.sending = false
		if msg.err != nil {
			p.err = domain.UserMessage(msg.err)
			return p.form.Focus()
		}
		p.err = ""
		p.form.Reset()
		p.form.Blur()
		return nil

	case tea.KeyMsg:
		if !p.form.focused {
			if msg.String() == "enter" {
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
		}
	}
	return p.form.Update(msg)
}

func (p *loginPage) submit() tea.Cmd {
	if p.sending {
		return nil
	}
	email, pw := p.form.Value(0), p.form.Raw(1)
	if email == "" || pw == "" {
		p.err = "Ingrese email y contraseña."
		return nil
	}
	p.sending = true
	p.err = ""
	p.form.Blur()
	ctx, sess := p.ctx, p.sess
	return func() tea.Msg {
		return signInDoneMsg{err: sess.SignIn(ctx, email, pw)}
	}
}

func (p *loginPage) View() string {
	var b strings.Builder
	b.WriteString(p.styles.Title.Render("Iniciar sesión"))
	b.WriteString("\n\n")
	b.WriteString(p.form.View(p.styles))
	b.WriteString("\n\n")
	switch {
	case p.sending:
		b.WriteString(p.styles.Muted.Render("Ingresando…"))
	case p.err != "":
		b.WriteString(p.styles.Error.Render(p.err))
	case !p.form.focused:
		b.WriteString(p.styles.Muted.Render("enter: escribir credenciales"))
	default:
		b.WriteString(p.styles.Muted.Render("↑/↓: campo · enter: continuar · esc: salir del formulario"))
	}
	return b.String()
}
