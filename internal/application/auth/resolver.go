package auth

import (
	"context"
	"sync"

	"github.com/jhoicas/heladeria/internal/application/ports"
	"github.com/jhoicas/heladeria/internal/application/usecase"
	"github.com/jhoicas/heladeria/internal/domain/entity"
	"github.com/jhoicas/heladeria/pkg/logger"
)

// RoleSource busca o da de alta el perfil de una identidad. Lo implementa *usecase.UserUseCase.
type RoleSource interface {
	ResolveRole(ctx context.Context, userID, displayName string) usecase.Resolution
}

// Resolver mantiene la sesión actual y el rol derivado durante toda la vida del proceso.
// El estado solo cambia por notificaciones del servicio de auth y por las resoluciones que
// estas disparan; las resoluciones que terminan después de un cambio de sesión se descartan.
type Resolver struct {
	auth  ports.AuthGateway
	roles RoleSource
	log   *logger.Logger

	mu        sync.Mutex
	state     State
	gen       uint64
	listeners map[int]func(State)
	nextL     int

	notifyMu    sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup
}

// NewResolver construye el resolver; no observa nada hasta Start.
func NewResolver(auth ports.AuthGateway, roles RoleSource, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{
		auth:      auth,
		roles:     roles,
		log:       log.Component("session"),
		state:     State{Role: NoRole()},
		listeners: map[int]func(State){},
	}
}

// Start se suscribe a los cambios de sesión y procesa la sesión vigente.
// Si hay sesión, el rol queda en RoleResolving hasta que termine la búsqueda del perfil.
func (r *Resolver) Start(ctx context.Context) State {
	r.mu.Lock()
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.mu.Unlock()

	r.unsubscribe = r.auth.SubscribeSessionChanges(r.handle)
	r.handle(ports.SessionEvent{Kind: ports.SessionInitial, Session: r.auth.CurrentSession()})
	return r.Snapshot()
}

// Close cancela la suscripción y espera a que terminen las resoluciones en curso.
func (r *Resolver) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.gen++
	r.mu.Unlock()
	r.wg.Wait()
}

// Snapshot devuelve una copia del estado actual.
func (r *Resolver) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// OnChange registra fn para cada cambio de estado. Devuelve la función para darla de baja.
// fn se invoca fuera de los locks internos y siempre con el estado más reciente.
func (r *Resolver) OnChange(fn func(State)) (cancel func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextL
	r.nextL++
	r.listeners[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}

// SignIn inicia sesión; el cambio de estado llega por la suscripción.
func (r *Resolver) SignIn(ctx context.Context, email, password string) error {
	_, err := r.auth.SignIn(ctx, email, password)
	return err
}

// SignOut cierra la sesión; el rol pasa a RoleNone cuando el servicio de auth lo notifica.
func (r *Resolver) SignOut(ctx context.Context) error {
	return r.auth.SignOut(ctx)
}

func (r *Resolver) handle(ev ports.SessionEvent) {
	r.mu.Lock()
	prev := r.state
	s := ev.Session
	switch {
	case s == nil:
		r.gen++
		r.state = State{Role: NoRole()}
	case prev.Session.SameIdentity(s) && prev.Role.Status != RoleNone:
		// renovación de token: misma identidad, el rol (o su resolución en curso) se conserva
		r.state.Session = s
	default:
		r.gen++
		r.state = State{Session: s, Role: Resolving()}
		if r.ctx != nil && r.ctx.Err() == nil {
			r.wg.Add(1)
			go r.resolve(r.ctx, r.gen, s)
		}
	}
	changed := r.state.Role != prev.Role || r.state.Session != prev.Session
	r.mu.Unlock()

	r.log.Debug().Str("event", string(ev.Kind)).Str("role_status", r.Snapshot().Role.Status.String()).Msg("cambio de sesión")
	if changed {
		r.notify()
	}
}

func (r *Resolver) resolve(ctx context.Context, gen uint64, s *entity.Session) {
	defer r.wg.Done()

	res := r.roles.ResolveRole(ctx, s.UserID, s.Email)
	if res.ProvisionErr != nil {
		r.log.Warn().Err(res.ProvisionErr).Str("user_id", s.UserID).
			Msg("no se pudo guardar el perfil por defecto; se adopta rol cliente solo en esta sesión")
	} else if res.Provisioned {
		r.log.Info().Str("user_id", s.UserID).Msg("perfil creado con rol cliente")
	}

	r.mu.Lock()
	if gen != r.gen {
		r.mu.Unlock()
		return
	}
	r.state.Role = Resolved(res.User.Role)
	r.state.ProvisionErr = res.ProvisionErr
	r.mu.Unlock()
	r.notify()
}

func (r *Resolver) notify() {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	snap := r.state
	ls := make([]func(State), 0, len(r.listeners))
	for _, fn := range r.listeners {
		ls = append(ls, fn)
	}
	r.mu.Unlock()

	for _, fn := range ls {
		fn(snap)
	}
}
