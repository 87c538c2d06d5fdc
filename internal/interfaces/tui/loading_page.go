package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// loadingPage se muestra mientras se resuelve el rol de la sesión.
type loadingPage struct {
	spinner spinner.Model
	styles  Styles
}

func newLoadingPage(s Styles) *loadingPage {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Title
	return &loadingPage{spinner: sp, styles: s}
}

func (p *loadingPage) Init() tea.Cmd { return p.spinner.Tick }

func (p *loadingPage) Capturing() bool { return false }

func (p *loadingPage) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(spinner.TickMsg); !ok {
		return nil
	}
	var cmd tea.Cmd
	p.spinner, cmd = p.spinner.Update(msg)
	return cmd
}

func (p *loadingPage) View() string {
	return p.spinner.View() + " " + p.styles.Muted.Render("Cargando su perfil…")
}
