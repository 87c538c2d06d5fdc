package supabase

import (
	"sync"

	"github.com/jhoicas/heladeria/internal/application/ports"
)

// broadcaster reparte eventos de sesión a los suscriptores, en el orden de emisión.
type broadcaster struct {
	mu       sync.Mutex
	emitMu   sync.Mutex
	handlers map[int]func(ports.SessionEvent)
	next     int
}

func newBroadcaster() *broadcaster {
	return &broadcaster{handlers: map[int]func(ports.SessionEvent){}}
}

func (b *broadcaster) subscribe(fn func(ports.SessionEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.handlers[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers, id)
		})
	}
}

func (b *broadcaster) emit(ev ports.SessionEvent) {
	b.emitMu.Lock()
	defer b.emitMu.Unlock()

	b.mu.Lock()
	hs := make([]func(ports.SessionEvent), 0, len(b.handlers))
	for _, h := range b.handlers {
		hs = append(hs, h)
	}
	b.mu.Unlock()

	for _, h := range hs {
		h(ev)
	}
}

func (b *broadcaster) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}
