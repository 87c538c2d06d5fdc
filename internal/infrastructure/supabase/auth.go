package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/jhoicas/heladeria/internal/application/ports"
	"github.com/jhoicas/heladeria/internal/domain"
	"github.com/jhoicas/heladeria/internal/domain/entity"
	"github.com/jhoicas/heladeria/pkg/jwt"
)

var _ ports.AuthGateway = (*Auth)(nil)

// refreshMargin antelación con la que se renueva el access token.
const refreshMargin = time.Minute

// Auth AuthGateway sobre GoTrue. Mantiene la sesión en memoria y en el SessionStore,
// y notifica cada cambio a los suscriptores.
type Auth struct {
	c     *Client
	store SessionStore
	bus   *broadcaster
	now   func() time.Time

	mu      sync.Mutex
	session *entity.Session
	// pub ordena asignación, persistencia y notificación entre cambios concurrentes.
	pub sync.Mutex

	stopOnce sync.Once
	stop     chan struct{}
	kick     chan struct{}
	wg       sync.WaitGroup
}

// NewAuth carga la sesión persistida (si la hay) para que CurrentSession sea inmediato.
// Una sesión guardada cuyo token no supera la verificación local se descarta.
func NewAuth(c *Client, store SessionStore) *Auth {
	if store == nil {
		store = &MemoryStore{}
	}
	a := &Auth{
		c:     c,
		store: store,
		bus:   newBroadcaster(),
		now:   time.Now,
		stop:  make(chan struct{}),
		kick:  make(chan struct{}, 1),
	}
	s, err := store.Load()
	if err != nil {
		c.log.Warn().Err(err).Msg("no se pudo leer la sesión guardada")
	}
	if s != nil {
		if _, err := c.identity(s.AccessToken); err != nil && !s.Expired(a.now()) {
			c.log.Warn().Err(err).Msg("sesión guardada inválida; se descarta")
			_ = store.Clear()
			s = nil
		}
	}
	a.session = s
	return a
}

// CurrentSession sesión vigente en memoria (sin llamadas remotas).
func (a *Auth) CurrentSession() *entity.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// AccessToken token con el que Data firma las peticiones; vacío sin sesión.
func (a *Auth) AccessToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return ""
	}
	return a.session.AccessToken
}

func (a *Auth) SubscribeSessionChanges(handler func(ports.SessionEvent)) func() {
	return a.bus.subscribe(handler)
}

// ── GoTrue ────────────────────────────────────────────────────────────────────

type tokenResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	ExpiresIn    int64   `json:"expires_in"`
	ExpiresAt    int64   `json:"expires_at"`
	User         *gtUser `json:"user"`
}

type gtUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// signUpResponse GoTrue devuelve el usuario suelto (confirmación pendiente) o una sesión completa.
type signUpResponse struct {
	gtUser
	User *gtUser `json:"user"`
}

func (a *Auth) SignIn(ctx context.Context, email, password string) (*entity.Session, error) {
	var tr tokenResponse
	err := a.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"password"}},
		body:   map[string]string{"email": email, "password": password},
	}, &tr)
	if err != nil {
		return nil, err
	}
	s, err := a.sessionFrom(tr)
	if err != nil {
		return nil, err
	}
	a.set(ports.SessionSignedIn, s)
	return s, nil
}

// SignUp registra una identidad nueva sin tocar la sesión actual.
func (a *Auth) SignUp(ctx context.Context, email, password string) (string, error) {
	var sr signUpResponse
	err := a.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/signup",
		body:   map[string]string{"email": email, "password": password},
	}, &sr)
	if err != nil {
		return "", err
	}
	id := sr.ID
	if sr.User != nil && sr.User.ID != "" {
		id = sr.User.ID
	}
	if id == "" {
		return "", fmt.Errorf("%w: signup sin id de usuario", domain.ErrRemoteRejection)
	}
	return id, nil
}

// SignOut revoca la sesión en el servidor y la borra localmente aunque la revocación falle.
func (a *Auth) SignOut(ctx context.Context) error {
	token := a.AccessToken()
	var remoteErr error
	if token != "" {
		remoteErr = a.c.do(ctx, request{method: http.MethodPost, path: "/auth/v1/logout", token: token}, nil)
		if errors.Is(remoteErr, domain.ErrUnauthorized) {
			remoteErr = nil
		}
	}
	a.set(ports.SessionSignedOut, nil)
	return remoteErr
}

// Refresh renueva el access token con el refresh token vigente.
// Si el servidor rechaza el refresh token la sesión se cierra.
func (a *Auth) Refresh(ctx context.Context) error {
	a.mu.Lock()
	cur := a.session
	a.mu.Unlock()
	if cur == nil || cur.RefreshToken == "" {
		return domain.ErrUnauthorized
	}
	var tr tokenResponse
	err := a.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"refresh_token"}},
		body:   map[string]string{"refresh_token": cur.RefreshToken},
	}, &tr)
	if err != nil {
		var re *domain.RemoteError
		if errors.As(err, &re) || errors.Is(err, domain.ErrUnauthorized) {
			a.swap(cur, ports.SessionSignedOut, nil)
		}
		return err
	}
	s, err := a.sessionFrom(tr)
	if err != nil {
		return err
	}
	kind := ports.SessionRefreshed
	if !cur.SameIdentity(s) {
		kind = ports.SessionSignedIn
	}
	// la sesión pudo cerrarse o cambiar mientras la petición estaba en vuelo
	if !a.swap(cur, kind, s) {
		a.c.log.Debug().Msg("renovación descartada: la sesión cambió")
	}
	return nil
}

// StartAutoRefresh renueva el token antes de que venza hasta que se llame a Close.
// Una sesión guardada ya vencida se renueva de inmediato.
func (a *Auth) StartAutoRefresh(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		for {
			wait := a.untilRefresh()
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-a.stop:
				timer.Stop()
				return
			case <-a.kick:
				timer.Stop()
				continue
			case <-timer.C:
			}
			if a.CurrentSession() == nil {
				continue
			}
			if err := a.Refresh(ctx); err != nil {
				a.c.log.Warn().Err(err).Msg("no se pudo renovar la sesión")
				// reintento acotado para no martillar el servicio
				select {
				case <-time.After(10 * time.Second):
				case <-ctx.Done():
					return
				case <-a.stop:
					return
				}
			}
		}
	}()
}

// Close detiene la renovación automática.
func (a *Auth) Close() {
	a.stopOnce.Do(func() { close(a.stop) })
	a.wg.Wait()
}

// Subscribers número de suscripciones activas.
func (a *Auth) Subscribers() int { return a.bus.len() }

func (a *Auth) untilRefresh() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil || a.session.ExpiresAt.IsZero() {
		return time.Hour
	}
	d := a.session.ExpiresAt.Add(-refreshMargin).Sub(a.now())
	if d < 0 {
		return 0
	}
	return d
}

func (a *Auth) set(kind ports.SessionEventKind, s *entity.Session) {
	a.pub.Lock()
	defer a.pub.Unlock()
	a.mu.Lock()
	a.session = s
	a.mu.Unlock()
	a.publish(kind, s)
}

// swap reemplaza la sesión solo si sigue siendo expect.
func (a *Auth) swap(expect *entity.Session, kind ports.SessionEventKind, s *entity.Session) bool {
	a.pub.Lock()
	defer a.pub.Unlock()
	a.mu.Lock()
	if a.session != expect {
		a.mu.Unlock()
		return false
	}
	a.session = s
	a.mu.Unlock()
	a.publish(kind, s)
	return true
}

func (a *Auth) publish(kind ports.SessionEventKind, s *entity.Session) {
	var err error
	if s == nil {
		err = a.store.Clear()
	} else {
		err = a.store.Save(s)
	}
	if err != nil {
		a.c.log.Warn().Err(err).Msg("no se pudo persistir la sesión")
	}
	select {
	case a.kick <- struct{}{}:
	default:
	}
	a.bus.emit(ports.SessionEvent{Kind: kind, Session: s})
}

func (a *Auth) sessionFrom(tr tokenResponse) (*entity.Session, error) {
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("%w: respuesta sin access_token", domain.ErrRemoteRejection)
	}
	id, err := a.c.identity(tr.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	s := &entity.Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		UserID:       id.UserID,
		Email:        id.Email,
		ExpiresAt:    id.ExpiresAt,
	}
	if tr.User != nil {
		if tr.User.ID != "" {
			s.UserID = tr.User.ID
		}
		if tr.User.Email != "" {
			s.Email = tr.User.Email
		}
	}
	switch {
	case tr.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(tr.ExpiresAt, 0)
	case tr.ExpiresIn > 0:
		s.ExpiresAt = a.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return s, nil
}

// identity verifica el token con el secreto del proyecto si está configurado;
// si no, solo lee sus claims (el token llegó por HTTPS desde el propio servicio).
func (c *Client) identity(token string) (jwt.Identity, error) {
	if c.jwtSecret != "" {
		return jwt.Parse(c.jwtSecret, token)
	}
	return jwt.ParseUnverified(token)
}
