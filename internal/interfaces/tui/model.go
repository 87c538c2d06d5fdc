// Package tui es la tienda de terminal: monta una pantalla por cada vista habilitada para la sesión
// y la rehace cada vez que el resolvedor publica un estado nuevo.
package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jhoicas/heladeria/internal/application/auth"
	"github.com/jhoicas/heladeria/internal/application/listing"
	"github.com/jhoicas/heladeria/internal/application/usecase"
	"github.com/jhoicas/heladeria/internal/application/views"
	"github.com/jhoicas/heladeria/internal/domain"
	"github.com/jhoicas/heladeria/pkg/logger"
)

// Session lo que la interfaz necesita del resolvedor de sesión.
type Session interface {
	Snapshot() auth.State
	OnChange(fn func(auth.State)) (cancel func())
	SignIn(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
}

// ReportSource origen del panel de rentabilidad.
type ReportSource interface {
	Report(ctx context.Context) (*usecase.ProfitabilityReport, error)
}

// Deps dependencias de la interfaz.
type Deps struct {
	Session     Session
	Ingredients *listing.IngredientController
	Users       *listing.UserController
	Products    *listing.ProductController
	Reports     ReportSource
	ShopName    string
	Log         *logger.Logger
}

// page pantalla montada. Capturing indica que las teclas van a un campo de texto
// y no deben interpretarse como atajos globales.
type page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	Capturing() bool
}

// Model raíz de la interfaz.
type Model struct {
	ctx    context.Context
	deps   Deps
	styles Styles
	log    *logger.Logger

	state   auth.State
	screens []views.Screen
	pages   map[views.Screen]page
	active  int
	userID  string
	status  string
	width   int
	height  int
}

// New construye el modelo con el estado actual de la sesión.
func New(ctx context.Context, deps Deps) *Model {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	if deps.ShopName == "" {
		deps.ShopName = "Heladería El Buen Sabor"
	}
	m := &Model{
		ctx:    ctx,
		deps:   deps,
		styles: DefaultStyles(),
		log:    log.Component("tui"),
		pages:  map[views.Screen]page{},
	}
	m.mount(deps.Session.Snapshot())
	return m
}

// Run ejecuta la interfaz hasta que el usuario sale. Los cambios de sesión llegan al
// bucle de eventos con p.Send; por eso SignIn/SignOut se llaman siempre desde comandos.
// Init vuelve a leer el estado dentro del bucle, así no se pierde un cambio ocurrido
// entre New y el registro de OnChange.
func Run(ctx context.Context, deps Deps, opts ...tea.ProgramOption) error {
	m := New(ctx, deps)
	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)
	cancel := deps.Session.OnChange(func(s auth.State) { p.Send(StateMsg(s)) })
	defer cancel()
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init carga las pantallas montadas al inicio.
func (m *Model) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.screens)+1)
	cmds = append(cmds, func() tea.Msg { return resyncMsg{} })
	for _, s := range m.screens {
		cmds = append(cmds, m.pages[s].Init())
	}
	return tea.Batch(cmds...)
}

// mount recalcula las vistas para st. Conserva las pantallas que siguen habilitadas para la
// misma identidad, crea las nuevas y devuelve sus comandos de carga.
func (m *Model) mount(st auth.State) tea.Cmd {
	prev := m.current()
	uid := ""
	if st.Session != nil {
		uid = st.Session.UserID
	}
	if uid != m.userID {
		m.pages = map[views.Screen]page{}
		m.userID = uid
	}
	m.state = st
	m.screens = views.ForState(st)

	var cmds []tea.Cmd
	next := make(map[views.Screen]page, len(m.screens))
	for _, s := range m.screens {
		p, ok := m.pages[s]
		if !ok {
			p = m.newPage(s)
			cmds = append(cmds, p.Init())
		}
		next[s] = p
	}
	m.pages = next

	m.active = 0
	for i, s := range m.screens {
		if s == prev {
			m.active = i
		}
	}
	if st.ProvisionErr != nil {
		m.status = "No se pudo crear su perfil; se usa el rol Cliente."
	}
	return tea.Batch(cmds...)
}

func (m *Model) newPage(s views.Screen) page {
	switch s {
	case views.ScreenLogin:
		return newLoginPage(m.ctx, m.deps.Session, m.styles)
	case views.ScreenLoading:
		return newLoadingPage(m.styles)
	case views.ScreenIngredients:
		return newIngredientsPage(m.ctx, m.deps.Ingredients, m.styles)
	case views.ScreenProducts:
		return newProductsPage(m.ctx, m.deps.Products, m.styles)
	case views.ScreenUsers:
		return newUsersPage(m.ctx, m.deps.Users, m.styles)
	case views.ScreenCreateUser:
		return newCreateUserPage(m.ctx, m.deps.Users, m.styles)
	case views.ScreenProfitability:
		return newProfitabilityPage(m.ctx, m.deps.Reports, m.styles)
	}
	return newLoadingPage(m.styles)
}

func (m *Model) current() views.Screen {
	if m.active < len(m.screens) {
		return m.screens[m.active]
	}
	return ""
}

func (m *Model) activePage() page {
	return m.pages[m.current()]
}

// Update procesa eventos globales y delega el resto en la pantalla correspondiente.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StateMsg:
		st := auth.State(msg)
		if st.Session == nil && m.state.Session != nil {
			m.status = "Sesión cerrada."
		}
		return m, m.mount(st)

	case resyncMsg:
		return m, m.mount(m.deps.Session.Snapshot())

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		var cmds []tea.Cmd
		for _, p := range m.pages {
			cmds = append(cmds, p.Update(msg))
		}
		return m, tea.Batch(cmds...)

	case signInDoneMsg:
		if p, ok := m.pages[views.ScreenLogin]; ok {
			return m, p.Update(msg)
		}
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("cierre de sesión fallido")
			m.status = domain.UserMessage(msg.err)
		}
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.log.Error().Err(msg.err).Str("screen", string(msg.screen)).Msg("carga fallida")
		}
		if p, ok := m.pages[msg.screen]; ok {
			return m, p.Update(msg)
		}
		return m, nil

	case doneMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Str("screen", string(msg.screen)).Str("op", msg.op).Msg("acción rechazada")
		}
		if p, ok := m.pages[msg.screen]; ok {
			return m, p.Update(msg)
		}
		return m, nil

	case expireMsg:
		if p, ok := m.pages[views.ScreenProducts]; ok {
			return m, p.Update(msg)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		p := m.activePage()
		if p != nil && p.Capturing() {
			return m, p.Update(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "tab":
			if len(m.screens) > 0 {
				m.active = (m.active + 1) % len(m.screens)
			}
			return m, nil
		case "shift+tab":
			if len(m.screens) > 0 {
				m.active = (m.active + len(m.screens) - 1) % len(m.screens)
			}
			return m, nil
		case "x":
			if m.state.SessionPresent() {
				return m, m.signOut()
			}
		}
		if p != nil {
			return m, p.Update(msg)
		}
		return m, nil
	}

	// Mensajes internos de componentes (spinner, cursor).
	var cmds []tea.Cmd
	for _, p := range m.pages {
		cmds = append(cmds, p.Update(msg))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) signOut() tea.Cmd {
	ctx, sess := m.ctx, m.deps.Session
	return func() tea.Msg {
		return signInDoneMsg{err: sess.SignOut(ctx)}
	}
}

// View dibuja encabezado, pestañas, pantalla activa y ayuda.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("🍦 " + m.deps.ShopName))
	b.WriteString("\n")
	b.WriteString(m.whoami())
	b.WriteString("\n\n")

	tabs := make([]string, 0, len(m.screens))
	for i, s := range m.screens {
		st := m.styles.Tab
		if i == m.active {
			st = m.styles.ActiveTab
		}
		tabs = append(tabs, st.Render(s.Title()))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	if p := m.activePage(); p != nil {
		b.WriteString(p.View())
	}
	if m.status != "" {
		b.WriteString("\n\n")
		b.WriteString(m.styles.Muted.Render(m.status))
	}

	help := "tab: pantalla · q: salir"
	if m.state.SessionPresent() {
		help = "tab: pantalla · x: cerrar sesión · q: salir"
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(help))
	return b.String()
}

func (m *Model) whoami() string {
	if !m.state.SessionPresent() {
		return m.styles.Muted.Render("Visitante")
	}
	role := "…"
	if m.state.Role.Status == auth.RoleResolved {
		role = m.state.Role.Role.Label()
	}
	return m.styles.Muted.Render(m.state.Email() + " · " + role)
}
