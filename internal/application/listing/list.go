package listing

import (
	"context"
	"sync"

	"github.com/jhoicas/heladeria/internal/domain"
)

// LoadState dimensión de carga de un controlador.
type LoadState int

const (
	Loading LoadState = iota
	Loaded
	LoadError
)

func (s LoadState) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case LoadError:
		return "load_error"
	default:
		return "loading"
	}
}

// List colección cargada de una sola vez desde el almacén. Estado inicial: Loading.
type List[K comparable, T Keyed[K]] struct {
	mu      sync.Mutex
	fetch   func(ctx context.Context) ([]T, error)
	items   *Collection[K, T]
	state   LoadState
	loadErr error
	seq     uint64
}

// NewList construye una lista que obtiene sus datos con fetch.
func NewList[K comparable, T Keyed[K]](fetch func(ctx context.Context) ([]T, error)) *List[K, T] {
	return &List[K, T]{fetch: fetch, items: NewCollection[K, T](nil)}
}

// Load consulta la colección completa. Si falla, la lista queda vacía y con el error.
// Cuando hay cargas simultáneas solo se aplica la última iniciada.
func (l *List[K, T]) Load(ctx context.Context) error {
	l.mu.Lock()
	l.seq++
	seq := l.seq
	l.state = Loading
	l.loadErr = nil
	l.mu.Unlock()

	items, err := l.fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.seq {
		return err
	}
	if err != nil {
		l.state = LoadError
		l.loadErr = err
		l.items.Reset(nil)
		return err
	}
	l.state = Loaded
	l.items.Reset(items)
	return nil
}

// State estado de carga.
func (l *List[K, T]) State() LoadState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// LoadErr error de la última carga, nil si no falló.
func (l *List[K, T]) LoadErr() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadErr
}

// LoadMessage texto del error de carga para mostrar.
func (l *List[K, T]) LoadMessage() string {
	return domain.UserMessage(l.LoadErr())
}

// Items entradas visibles; vacío mientras carga o si la carga falló.
func (l *List[K, T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != Loaded {
		return nil
	}
	return l.items.Items()
}

// Get busca una entrada por clave.
func (l *List[K, T]) Get(id K) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.items.Get(id)
}

// Len número de entradas.
func (l *List[K, T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.items.Len()
}
