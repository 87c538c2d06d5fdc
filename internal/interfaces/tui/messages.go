package tui

import (
	"github.com/jhoicas/heladeria/internal/application/auth"
	"github.com/jhoicas/heladeria/internal/application/views"
)

// StateMsg nuevo estado de sesión publicado por el resolvedor.
type StateMsg auth.State

// loadedMsg terminó la carga de la pantalla.
type loadedMsg struct {
	screen views.Screen
	err    error
}

// doneMsg terminó una acción remota (alta, edición, borrado, venta, guardado).
type doneMsg struct {
	screen views.Screen
	op     string
	err    error
}

// signInDoneMsg resultado de SignIn/SignOut. El cambio de sesión llega aparte como StateMsg.
type signInDoneMsg struct{ err error }

// expireMsg vence la notificación de la pantalla de productos.
type expireMsg struct{}

// resyncMsg vuelve a montar las pantallas con el estado vigente del resolvedor.
type resyncMsg struct{}
