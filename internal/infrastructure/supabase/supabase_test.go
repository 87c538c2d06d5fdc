package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jhoicas/heladeria/internal/application/ports"
	"github.com/jhoicas/heladeria/internal/domain"
	"github.com/jhoicas/heladeria/internal/domain/entity"
	"github.com/jhoicas/heladeria/pkg/config"
	"github.com/jhoicas/heladeria/pkg/jwt"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

const (
	testSecret = "super-secreto-de-pruebas-con-32-bytes!"
	testAnon   = "anon-key"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	c, err := NewClient(config.SupabaseConfig{URL: srv.URL, AnonKey: testAnon, JWTSecret: testSecret, Timeout: 2 * time.Second}, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		c.httpClient.CloseIdleConnections()
		srv.Close()
	})
	return c
}

func token(t *testing.T, userID, email string, minutes int) string {
	t.Helper()
	tok, err := jwt.Generate(testSecret, userID, email, "supabase", minutes)
	require.NoError(t, err)
	return tok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_SignIn_GuardaYNotifica(t *testing.T) {
	userID := uuid.NewString()
	access := token(t, userID, "ana@heladeria.co", 60)
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, testAnon, r.Header.Get("apikey"))
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secreta" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant", "error_description": "Invalid login credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  access,
			"refresh_token": "r1",
			"expires_in":    3600,
			"user":          map[string]any{"id": userID, "email": body["email"]},
		})
	})
	store := &MemoryStore{}
	a := NewAuth(newTestClient(t, mux), store)
	var events []ports.SessionEvent
	a.SubscribeSessionChanges(func(ev ports.SessionEvent) { events = append(events, ev) })

	_, err := a.SignIn(context.Background(), "ana@heladeria.co", "mala")
	var re *domain.RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "Invalid login credentials", re.Message)
	assert.Nil(t, a.CurrentSession())

	s, err := a.SignIn(context.Background(), "ana@heladeria.co", "secreta")
	require.NoError(t, err)
	assert.Equal(t, userID, s.UserID)
	assert.Equal(t, "r1", s.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), s.ExpiresAt, 5*time.Second)

	require.Len(t, events, 1)
	assert.Equal(t, ports.SessionSignedIn, events[0].Kind)
	saved, _ := store.Load()
	assert.Equal(t, s, saved)
	assert.Equal(t, s.AccessToken, a.AccessToken())
}

func TestAuth_SignUp_NoCambiaSesion(t *testing.T) {
	newID := uuid.NewString()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/signup", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": newID, "email": "luis@heladeria.co"})
	})
	a := NewAuth(newTestClient(t, mux), nil)
	notified := false
	a.SubscribeSessionChanges(func(ports.SessionEvent) { notified = true })

	id, err := a.SignUp(context.Background(), "luis@heladeria.co", "secreta123")

	require.NoError(t, err)
	assert.Equal(t, newID, id)
	assert.Nil(t, a.CurrentSession())
	assert.False(t, notified)
}

func TestAuth_SignOut_BorraAunqueFalleElServidor(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadGateway, map[string]any{"message": "upstream"})
	})
	store := &MemoryStore{}
	userID := uuid.NewString()
	require.NoError(t, store.Save(&entity.Session{AccessToken: token(t, userID, "a@b.co", 60), UserID: userID}))
	a := NewAuth(newTestClient(t, mux), store)
	require.NotNil(t, a.CurrentSession())

	err := a.SignOut(context.Background())

	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Nil(t, a.CurrentSession())
	saved, _ := store.Load()
	assert.Nil(t, saved)
}

func TestAuth_Refresh_MismaIdentidad(t *testing.T) {
	userID := uuid.NewString()
	access := token(t, userID, "a@b.co", 60)
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "refresh_token", r.URL.Query().Get("grant_type"))
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": access, "refresh_token": "r2", "expires_in": 3600,
		})
	})
	store := &MemoryStore{}
	require.NoError(t, store.Save(&entity.Session{
		AccessToken: token(t, userID, "a@b.co", 1), RefreshToken: "r1", UserID: userID,
	}))
	a := NewAuth(newTestClient(t, mux), store)
	var kinds []ports.SessionEventKind
	a.SubscribeSessionChanges(func(ev ports.SessionEvent) { kinds = append(kinds, ev.Kind) })

	require.NoError(t, a.Refresh(context.Background()))

	assert.Equal(t, []ports.SessionEventKind{ports.SessionRefreshed}, kinds)
	assert.Equal(t, "r2", a.CurrentSession().RefreshToken)
}

func TestAuth_RefreshRechazado_CierraSesion(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant", "error_description": "Refresh Token Not Found"})
	})
	store := &MemoryStore{}
	userID := uuid.NewString()
	require.NoError(t, store.Save(&entity.Session{AccessToken: token(t, userID, "a@b.co", 5), RefreshToken: "r1", UserID: userID}))
	a := NewAuth(newTestClient(t, mux), store)

	err := a.Refresh(context.Background())

	assert.ErrorIs(t, err, domain.ErrRemoteRejection)
	assert.Nil(t, a.CurrentSession())
}

func TestAuth_RefreshEnVueloTrasSignOut_SeDescarta(t *testing.T) {
	userID := uuid.NewString()
	access := token(t, userID, "a@b.co", 60)
	started := make(chan struct{})
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		writeJSON(w, http.StatusOK, map[string]any{"access_token": access, "refresh_token": "r2", "expires_in": 3600})
	})
	mux.HandleFunc("/auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	store := &MemoryStore{}
	require.NoError(t, store.Save(&entity.Session{AccessToken: token(t, userID, "a@b.co", 5), RefreshToken: "r1", UserID: userID}))
	a := NewAuth(newTestClient(t, mux), store)
	var mu sync.Mutex
	var kinds []ports.SessionEventKind
	a.SubscribeSessionChanges(func(ev ports.SessionEvent) {
		mu.Lock()
		defer mu.Unlock()
		kinds = append(kinds, ev.Kind)
	})

	done := make(chan error, 1)
	go func() { done <- a.Refresh(context.Background()) }()
	<-started
	require.NoError(t, a.SignOut(context.Background()))
	close(release)
	require.NoError(t, <-done)

	assert.Nil(t, a.CurrentSession())
	saved, _ := store.Load()
	assert.Nil(t, saved)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []ports.SessionEventKind{ports.SessionSignedOut}, kinds)
}

func TestAuth_AutoRefresh_RenuevaAntesDeVencer(t *testing.T) {
	userID := uuid.NewString()
	var calls atomic.Int32
	access := token(t, userID, "a@b.co", 60)
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": access, "refresh_token": "r2", "expires_in": 3600,
		})
	})
	store := &MemoryStore{}
	// vence dentro del margen de renovación
	require.NoError(t, store.Save(&entity.Session{
		AccessToken: token(t, userID, "a@b.co", 60), RefreshToken: "r1", UserID: userID,
		ExpiresAt: time.Now().Add(30 * time.Second),
	}))
	a := NewAuth(newTestClient(t, mux), store)
	var mu sync.Mutex
	var kinds []ports.SessionEventKind
	a.SubscribeSessionChanges(func(ev ports.SessionEvent) {
		mu.Lock()
		defer mu.Unlock()
		kinds = append(kinds, ev.Kind)
	})

	a.StartAutoRefresh(context.Background())
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	a.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []ports.SessionEventKind{ports.SessionRefreshed}, kinds)
	assert.Equal(t, "r2", a.CurrentSession().RefreshToken)
}

func TestAuth_SesionGuardadaConFirmaInvalida_SeDescarta(t *testing.T) {
	store := &MemoryStore{}
	forged, err := jwt.Generate("otro-secreto", uuid.NewString(), "x@y.co", "x", 60)
	require.NoError(t, err)
	require.NoError(t, store.Save(&entity.Session{AccessToken: forged, ExpiresAt: time.Now().Add(time.Hour)}))

	a := NewAuth(newTestClient(t, http.NewServeMux()), store)

	assert.Nil(t, a.CurrentSession())
}

func TestAuth_Unsubscribe(t *testing.T) {
	a := NewAuth(newTestClient(t, http.NewServeMux()), nil)
	cancel := a.SubscribeSessionChanges(func(ports.SessionEvent) {})
	assert.Equal(t, 1, a.Subscribers())
	cancel()
	cancel()
	assert.Equal(t, 0, a.Subscribers())
}

// ──────────────────────────────────────────────────────────────────────────────
// Data (PostgREST)
// ──────────────────────────────────────────────────────────────────────────────

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func TestData_QueryRecord_NoEncontrado(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/users", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.u1", r.URL.Query().Get("id"))
		assert.Equal(t, singleObject, r.Header.Get("Accept"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusNotAcceptable, map[string]any{
			"code": "PGRST116", "message": "JSON object requested, multiple (or no) rows returned",
		})
	})
	d := NewData(newTestClient(t, mux), staticToken("tok"))

	_, err := d.QueryRecord(context.Background(), entity.UsersTable, ports.Filter{"id": "u1"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestData_InsertRecord_DevuelveFila(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/ingredientes", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, returnRepresent, r.Header.Get("Prefer"))
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		body["id"] = 12
		writeJSON(w, http.StatusCreated, body)
	})
	d := NewData(newTestClient(t, mux), nil)

	rec, err := d.InsertRecord(context.Background(), entity.IngredientsTable, entity.Record{"nombre": "Vanilla", "precio": "2.5"})

	require.NoError(t, err)
	id, err := rec.Int64("id")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
	assert.Equal(t, "Vanilla", rec["nombre"])
}

func TestData_UpdateYDelete_FiltranPorID(t *testing.T) {
	var methods []string
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/ingredientes", func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		assert.Equal(t, "eq.7", r.URL.Query().Get("id"))
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": 7, "inventario": 3})
	})
	d := NewData(newTestClient(t, mux), nil)

	rec, err := d.UpdateRecord(context.Background(), entity.IngredientsTable, int64(7), entity.Record{"inventario": 3})
	require.NoError(t, err)
	n, _ := rec.Int("inventario")
	assert.Equal(t, 3, n)
	require.NoError(t, d.DeleteRecord(context.Background(), entity.IngredientsTable, int64(7)))
	assert.Equal(t, []string{http.MethodPatch, http.MethodDelete}, methods)
}

func TestData_QueryCollection_Columnas(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/v_calorias_producto", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "producto_id,total_calorias", r.URL.Query().Get("select"))
		writeJSON(w, http.StatusOK, []map[string]any{{"producto_id": 1, "total_calorias": 540}})
	})
	d := NewData(newTestClient(t, mux), nil)

	recs, err := d.QueryCollection(context.Background(), entity.CaloriesView, "producto_id", "total_calorias")

	require.NoError(t, err)
	require.Len(t, recs, 1)
	id, total, err := entity.CaloriesFromRecord(recs[0])
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	require.NotNil(t, total)
	assert.Equal(t, 540, *total)
}

func TestData_InvokeProcedure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/rpc/vender_producto", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["producto_id_param"] == float64(2) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"code": "P0001", "message": "Inventario insuficiente"})
			return
		}
		writeJSON(w, http.StatusOK, "Venta registrada")
	})
	d := NewData(newTestClient(t, mux), nil)

	out, err := d.InvokeProcedure(context.Background(), entity.SellProcedure, map[string]any{"producto_id_param": 1})
	require.NoError(t, err)
	assert.Equal(t, "Venta registrada", out)

	_, err = d.InvokeProcedure(context.Background(), entity.SellProcedure, map[string]any{"producto_id_param": 2})
	assert.ErrorIs(t, err, domain.ErrRemoteRejection)
	assert.Equal(t, "Inventario insuficiente", domain.UserMessage(err))
}

func TestData_ErroresDeTransporte(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"message": "caído"})
	})
	mux.HandleFunc("/rest/v1/ingredientes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "JWT expired"})
	})
	d := NewData(newTestClient(t, mux), nil)

	_, err := d.QueryCollection(context.Background(), entity.UsersTable)
	assert.ErrorIs(t, err, domain.ErrTransport)

	_, err = d.QueryCollection(context.Background(), entity.IngredientsTable)
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestData_ServidorInaccesible(t *testing.T) {
	srv := httptest.NewServer(http.NewServeMux())
	url := srv.URL
	srv.Close()
	c, err := NewClient(config.SupabaseConfig{URL: url, AnonKey: testAnon}, nil)
	require.NoError(t, err)

	_, err = NewData(c, nil).QueryCollection(context.Background(), entity.UsersTable)

	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestData_Duplicado(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]any{"code": "23505", "message": "duplicate key value violates unique constraint"})
	})
	d := NewData(newTestClient(t, mux), nil)

	_, err := d.InsertRecord(context.Background(), entity.UsersTable, entity.Record{"id": "u1"})

	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.ErrorIs(t, err, domain.ErrRemoteRejection)
}

// ──────────────────────────────────────────────────────────────────────────────
// Persistencia de sesión
// ──────────────────────────────────────────────────────────────────────────────

func TestFileStore_GuardarCargarBorrar(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "sub", "sesion.yaml"))

	s, err := fs.Load()
	require.NoError(t, err)
	assert.Nil(t, s)

	want := &entity.Session{
		AccessToken: "a", RefreshToken: "r", UserID: "u", Email: "e@x.co",
		ExpiresAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, fs.Save(want))
	got, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, want.AccessToken, got.AccessToken)
	assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt))
	assert.Equal(t, want.UserID, got.UserID)

	require.NoError(t, fs.Clear())
	require.NoError(t, fs.Clear())
	got, err = fs.Load()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNewClient_RequiereURL(t *testing.T) {
	_, err := NewClient(config.SupabaseConfig{AnonKey: "x"}, nil)
	assert.Error(t, err)
}
