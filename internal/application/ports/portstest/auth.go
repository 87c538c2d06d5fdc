package portstest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/heladeria/internal/application/ports"
	"github.com/jhoicas/heladeria/internal/domain"
	"github.com/jhoicas/heladeria/internal/domain/entity"
)

var _ ports.AuthGateway = (*FakeAuth)(nil)

// FakeAuth AuthGateway en memoria. Emit entrega eventos a los suscriptores de forma síncrona.
type FakeAuth struct {
	mu        sync.Mutex
	session   *entity.Session
	handlers  map[int]func(ports.SessionEvent)
	nextSub   int
	passwords map[string]string // email -> password
	ids       map[string]string // email -> user id

	SignUpErr  error
	SignOutErr error
}

// NewFakeAuth construye el fake con una sesión inicial opcional.
func NewFakeAuth(initial *entity.Session) *FakeAuth {
	return &FakeAuth{
		session:   initial,
		handlers:  map[int]func(ports.SessionEvent){},
		passwords: map[string]string{},
		ids:       map[string]string{},
	}
}

// NewSession sesión de prueba para un usuario nuevo.
func NewSession(email string) *entity.Session {
	return &entity.Session{
		AccessToken: "token-" + email,
		UserID:      uuid.NewString(),
		Email:       email,
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

// AddAccount registra credenciales válidas para SignIn.
func (f *FakeAuth) AddAccount(email, password, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwords[email] = password
	f.ids[email] = userID
}

// Subscribers número de suscripciones activas.
func (f *FakeAuth) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers)
}

// Emit cambia la sesión y notifica a los suscriptores.
func (f *FakeAuth) Emit(kind ports.SessionEventKind, s *entity.Session) {
	f.mu.Lock()
	f.session = s
	hs := make([]func(ports.SessionEvent), 0, len(f.handlers))
	for _, h := range f.handlers {
		hs = append(hs, h)
	}
	f.mu.Unlock()
	for _, h := range hs {
		h(ports.SessionEvent{Kind: kind, Session: s})
	}
}

func (f *FakeAuth) CurrentSession() *entity.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

func (f *FakeAuth) SubscribeSessionChanges(handler func(ports.SessionEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextSub
	f.nextSub++
	f.handlers[id] = handler
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.handlers, id)
	}
}

func (f *FakeAuth) SignIn(_ context.Context, email, password string) (*entity.Session, error) {
	f.mu.Lock()
	pw, ok := f.passwords[email]
	id := f.ids[email]
	f.mu.Unlock()
	if !ok || pw != password {
		return nil, &domain.RemoteError{Code: "invalid_grant", Message: "Invalid login credentials"}
	}
	s := &entity.Session{AccessToken: "token-" + email, UserID: id, Email: email, ExpiresAt: time.Now().Add(time.Hour)}
	f.Emit(ports.SessionSignedIn, s)
	return s, nil
}

func (f *FakeAuth) SignUp(_ context.Context, email, password string) (string, error) {
	if f.SignUpErr != nil {
		return "", f.SignUpErr
	}
	id := uuid.NewString()
	f.AddAccount(email, password, id)
	return id, nil
}

func (f *FakeAuth) SignOut(_ context.Context) error {
	if f.SignOutErr != nil {
		return f.SignOutErr
	}
	f.Emit(ports.SessionSignedOut, nil)
	return nil
}
