package tui_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/heladeria/internal/application/auth"
	"github.com/jhoicas/heladeria/internal/application/listing"
	"github.com/jhoicas/heladeria/internal/application/ports/portstest"
	"github.com/jhoicas/heladeria/internal/application/usecase"
	"github.com/jhoicas/heladeria/internal/domain"
	"github.com/jhoicas/heladeria/internal/domain/entity"
	"github.com/jhoicas/heladeria/internal/interfaces/tui"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

type fixture struct {
	gw       *portstest.MemoryData
	fa       *portstest.FakeAuth
	resolver *auth.Resolver
	products *listing.ProductController
	clk      *clock
	states   chan auth.State
	model    *tui.Model
}

// newFixture arma la interfaz completa sobre el gateway en memoria. Si role no es vacío,
// arranca con una sesión ya resuelta con ese rol.
func newFixture(t *testing.T, role entity.Role) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	gw := portstest.NewMemoryData()
	gw.Seed(entity.ProfitabilityView,
		entity.Record{"producto_id": int64(1), "nombre": "Copa Tropical", "precio_publico": "10", "costo": "4", "rentabilidad": "6"},
	)
	gw.Seed(entity.CaloriesView, entity.Record{"producto_id": int64(1), "total_calorias": int64(450)})

	var session *entity.Session
	if role != "" {
		session = portstest.NewSession("ana@heladeria.co")
		gw.Seed(entity.UsersTable, entity.Record{"id": session.UserID, "nombre": "Ana", "rol": string(role)})
	}
	fa := portstest.NewFakeAuth(session)

	users := usecase.NewUserUseCase(gw, fa)
	productsUC := usecase.NewProductUseCase(gw)
	resolver := auth.NewResolver(fa, users, nil)
	t.Cleanup(resolver.Close)
	resolver.Start(ctx)
	if role != "" {
		require.Eventually(t, func() bool { return resolver.Snapshot().Role == auth.Resolved(role) },
			2*time.Second, 5*time.Millisecond)
	}

	states := make(chan auth.State, 16)
	stop := resolver.OnChange(func(s auth.State) { states <- s })
	t.Cleanup(stop)

	clk := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	products := listing.NewProductController(productsUC, listing.DefaultNotificationTTL)
	products.SetClock(clk.now)

	m := tui.New(ctx, tui.Deps{
		Session:     resolver,
		Ingredients: listing.NewIngredientController(usecase.NewIngredientUseCase(gw)),
		Users:       listing.NewUserController(users),
		Products:    products,
		Reports:     usecase.NewProfitabilityUseCase(productsUC, nil),
	})
	f := &fixture{gw: gw, fa: fa, resolver: resolver, products: products, clk: clk, states: states, model: m}
	f.drive(t, m.Init())
	return f
}

// run ejecuta cmd; descarta los que no terminan enseguida (ticks, parpadeo del cursor).
func run(c tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(200 * time.Millisecond):
		return nil, false
	}
}

// drive ejecuta cmd y todos los comandos que deriven de él, entregando los mensajes al modelo.
func (f *fixture) drive(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0 && steps < 100; steps++ {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg, ok := run(c)
		if !ok {
			continue
		}
		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		case spinner.TickMsg, tea.QuitMsg:
			continue
		}
		_, next := f.model.Update(msg)
		queue = append(queue, next)
	}
}

func (f *fixture) press(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, cmd := f.model.Update(key(k))
		f.drive(t, cmd)
	}
}

// syncStates entrega al modelo los estados publicados hasta que se cumple done.
func (f *fixture) syncStates(t *testing.T, done func(auth.State) bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-f.states:
			_, cmd := f.model.Update(tui.StateMsg(st))
			f.drive(t, cmd)
			if done(st) {
				return
			}
		case <-deadline:
			t.Fatal("no llegó el estado esperado")
		}
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// ──────────────────────────────────────────────────────────────────────────────
// Montaje por sesión y rol
// ──────────────────────────────────────────────────────────────────────────────

func TestModel_VisitanteVeCatalogoYLogin(t *testing.T) {
	f := newFixture(t, "")

	view := f.model.View()
	assert.Contains(t, view, "Visitante")
	assert.Contains(t, view, "Productos")
	assert.Contains(t, view, "Iniciar sesión")
	assert.NotContains(t, view, "Ingredientes")
	assert.Contains(t, view, "Copa Tropical", "el catálogo se carga al montar")
	assert.Contains(t, view, "450")
}

func TestModel_AdminVeTodasLasPantallas(t *testing.T) {
	f := newFixture(t, entity.RoleAdmin)

	view := f.model.View()
	for _, title := range []string{"Ingredientes", "Productos", "Usuarios", "Crear usuario", "Rentabilidad"} {
		assert.Contains(t, view, title)
	}
	assert.Contains(t, view, "Administrador")
}

func TestModel_ResolviendoMuestraCarga(t *testing.T) {
	f := newFixture(t, "")
	s := portstest.NewSession("luis@heladeria.co")

	_, cmd := f.model.Update(tui.StateMsg(auth.State{Session: s, Role: auth.Resolving()}))
	f.drive(t, cmd)

	view := f.model.View()
	assert.Contains(t, view, "Cargando su perfil")
	assert.NotContains(t, view, "Iniciar sesión")
}

func TestModel_CambioDeRolRemontaPantallas(t *testing.T) {
	f := newFixture(t, entity.RoleAdmin)
	st := f.resolver.Snapshot()

	st.Role = auth.Resolved(entity.RoleEmployee)
	_, cmd := f.model.Update(tui.StateMsg(st))
	f.drive(t, cmd)

	view := f.model.View()
	assert.Contains(t, view, "Ingredientes")
	assert.NotContains(t, view, "Usuarios")
	assert.NotContains(t, view, "Rentabilidad")
}

// lateSession publica sus estados en orden, uno por Snapshot, sin avisar por OnChange.
type lateSession struct {
	states []auth.State
	n      int
}

func (s *lateSession) Snapshot() auth.State {
	st := s.states[min(s.n, len(s.states)-1)]
	s.n++
	return st
}

func (s *lateSession) OnChange(func(auth.State)) func() { return func() {} }
func (s *lateSession) SignIn(context.Context, string, string) error { return nil }
func (s *lateSession) SignOut(context.Context) error { return nil }

func TestModel_InitRecuperaCambioPrevioASuscripcion(t *testing.T) {
	f := newFixture(t, "")
	s := portstest.NewSession("luis@heladeria.co")
	sess := &lateSession{states: []auth.State{
		{Session: s, Role: auth.Resolving()},
		{Session: s, Role: auth.Resolved(entity.RoleCustomer)},
	}}
	f.model = tui.New(context.Background(), tui.Deps{Session: sess, Products: f.products})
	require.Contains(t, f.model.View(), "Cargando su perfil")

	f.drive(t, f.model.Init())

	view := f.model.View()
	assert.NotContains(t, view, "Cargando su perfil")
	assert.Contains(t, view, "luis@heladeria.co · Cliente")
	assert.Contains(t, view, "Copa Tropical")
}

// ──────────────────────────────────────────────────────────────────────────────
// Sesión
// ──────────────────────────────────────────────────────────────────────────────

func TestModel_LoginResuelveRolYMontaVistas(t *testing.T) {
	f := newFixture(t, "")
	const uid = "5b8f7a36-0e0a-4d6b-9b35-5f4c0f3b2a10"
	f.fa.AddAccount("emp@heladeria.co", "helado123", uid)
	f.gw.Seed(entity.UsersTable, entity.Record{"id": uid, "nombre": "Emp", "rol": "empleado"})

	f.press(t, "tab", "enter", "emp@heladeria.co", "enter", "helado123", "enter")
	f.syncStates(t, func(st auth.State) bool { return st.Role.Status == auth.RoleResolved })

	view := f.model.View()
	assert.Contains(t, view, "emp@heladeria.co · Empleado")
	assert.Contains(t, view, "Ingredientes")
	assert.NotContains(t, view, "Iniciar sesión")
}

func TestModel_LoginFallidoMuestraError(t *testing.T) {
	f := newFixture(t, "")

	f.press(t, "tab", "enter", "nadie@heladeria.co", "enter", "mala", "enter")

	assert.Contains(t, f.model.View(), "Invalid login credentials")
	assert.False(t, f.resolver.Snapshot().SessionPresent())
}

func TestModel_CerrarSesionVuelveAVisitante(t *testing.T) {
	f := newFixture(t, entity.RoleCustomer)

	f.press(t, "x")
	f.syncStates(t, func(st auth.State) bool { return !st.SessionPresent() })

	view := f.model.View()
	assert.Contains(t, view, "Visitante")
	assert.Contains(t, view, "Iniciar sesión")
	assert.Contains(t, view, "Sesión cerrada.")
}

// ──────────────────────────────────────────────────────────────────────────────
// Ingredientes
// ──────────────────────────────────────────────────────────────────────────────

func TestIngredients_AltaDesdeFormulario(t *testing.T) {
	f := newFixture(t, entity.RoleEmployee)

	f.press(t, "a", "Fresa", "enter", "1.5", "enter", "80", "enter", "20",
		"enter", "enter", "enter", "enter", "enter")

	rows := f.gw.Rows(entity.IngredientsTable)
	require.Len(t, rows, 1)
	assert.Equal(t, "Fresa", rows[0][entity.FieldNombre])
	assert.Equal(t, "complemento", rows[0][entity.FieldTipo])
	view := f.model.View()
	assert.Contains(t, view, "Fresa")
	assert.NotContains(t, view, "Nuevo ingrediente", "el formulario se cierra tras el alta")
}

func TestIngredients_AltaInvalidaMantieneFormulario(t *testing.T) {
	f := newFixture(t, entity.RoleEmployee)

	f.press(t, "a", "Fresa", "enter", "abc", "enter", "80", "enter", "20",
		"enter", "enter", "enter", "enter", "enter")

	assert.Zero(t, f.gw.Calls("insert", entity.IngredientsTable))
	view := f.model.View()
	assert.Contains(t, view, "Nuevo ingrediente")
	assert.Contains(t, view, "debe ser un número")
}

func TestIngredients_BajaRequiereConfirmacion(t *testing.T) {
	f := newFixture(t, entity.RoleAdmin)
	f.gw.Seed(entity.IngredientsTable, entity.Record{
		"id": int64(7), "nombre": "Chispas", "precio": "0.5", "calorias": 40, "inventario": 5, "tipo": "complemento",
	})
	f.press(t, "r")
	require.Contains(t, f.model.View(), "Chispas")

	f.press(t, "d")
	assert.Contains(t, f.model.View(), "¿Eliminar el ingrediente 7?")
	f.press(t, "n")
	assert.Zero(t, f.gw.Calls("delete", entity.IngredientsTable), "cancelar no envía nada")

	f.press(t, "d", "y")
	assert.Empty(t, f.gw.Rows(entity.IngredientsTable))
	assert.NotContains(t, f.model.View(), "Chispas")
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func TestProducts_VentaNotificaYExpira(t *testing.T) {
	f := newFixture(t, "")
	f.gw.Procedures[entity.SellProcedure] = func(map[string]any) (any, error) {
		return "Venta realizada con éxito", nil
	}

	f.press(t, "v")
	assert.Contains(t, f.model.View(), "Venta realizada con éxito")
	assert.Equal(t, 2, f.gw.Calls("list", entity.ProfitabilityView), "la venta recarga el catálogo")

	f.clk.t = f.clk.t.Add(listing.DefaultNotificationTTL)
	assert.NotContains(t, f.model.View(), "Venta realizada con éxito")
}

func TestProducts_VentaRechazadaMuestraError(t *testing.T) {
	f := newFixture(t, entity.RoleCustomer)
	f.gw.Procedures[entity.SellProcedure] = func(map[string]any) (any, error) {
		return nil, &domain.RemoteError{Code: "P0001", Message: "¡Oh no! Nos hemos quedado sin Fresa"}
	}

	f.press(t, "v")
	assert.Contains(t, f.model.View(), "sin Fresa")
	assert.Equal(t, 1, f.gw.Calls("list", entity.ProfitabilityView), "un rechazo no recarga")
}

// ──────────────────────────────────────────────────────────────────────────────
// Usuarios
// ──────────────────────────────────────────────────────────────────────────────

func TestUsers_PrepararYGuardarRol(t *testing.T) {
	f := newFixture(t, entity.RoleAdmin)
	const other = "c3d1b9a2-7f41-4e55-8a0c-2f6b1d9e4c77"
	f.gw.Seed(entity.UsersTable, entity.Record{"id": other, "nombre": "Luis", "rol": "cliente"})

	f.press(t, "tab", "tab", "r", "down", "right")
	assert.Contains(t, f.model.View(), "Administrador *", "el rol preparado se marca")
	assert.Zero(t, f.gw.Calls("update", entity.UsersTable), "preparar no envía nada")

	f.press(t, "s")
	var rol any
	for _, r := range f.gw.Rows(entity.UsersTable) {
		if r["id"] == other {
			rol = r["rol"]
		}
	}
	assert.Equal(t, "admin", rol)
	assert.False(t, strings.Contains(f.model.View(), "Administrador *"))
}

func TestCreateUser_AltaMuestraMensaje(t *testing.T) {
	f := newFixture(t, entity.RoleAdmin)

	f.press(t, "tab", "tab", "tab", "enter",
		"luis@heladeria.co", "enter", "Luis", "enter", "secreto123", "enter", "right", "enter")

	assert.Contains(t, f.model.View(), "Usuario creado correctamente.")
	assert.Len(t, f.gw.Rows(entity.UsersTable), 2)
}

func TestProfitability_Resumen(t *testing.T) {
	f := newFixture(t, entity.RoleAdmin)

	f.press(t, "tab", "tab", "tab", "tab")
	view := f.model.View()
	assert.Contains(t, view, "Más rentable")
	assert.Contains(t, view, "Copa Tropical")
}
