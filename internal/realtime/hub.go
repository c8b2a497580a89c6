// Package realtime pushes the next invoice code to connected clients after
// every committed sale. A sale never waits on, or fails because of, a
// notification.
package realtime

import (
	"sync"
)

// EventoCodigoFactura is the event name clients listen for.
const EventoCodigoFactura = "actualizarCodigoFactura"

// Notifier receives the next invoice code after a sale commits.
// Implementations must return immediately.
type Notifier interface {
	NotificarCodigoFactura(codigo string)
}

// Hub fans codes out to the in-process subscribers (one per open SSE
// stream). Slow subscribers lose messages instead of blocking the sender;
// only the latest code matters to them anyway.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan string]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan string]struct{})}
}

// Subscribe registers a listener. The returned cancel func must be called
// when the listener goes away; it closes the channel.
func (h *Hub) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Broadcast delivers codigo to every subscriber without blocking.
func (h *Hub) Broadcast(codigo string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- codigo:
		default:
		}
	}
}

// NotificarCodigoFactura makes a Hub usable as a single-node Notifier.
func (h *Hub) NotificarCodigoFactura(codigo string) { h.Broadcast(codigo) }

// Suscriptores is the number of open listeners.
func (h *Hub) Suscriptores() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Noop discards notifications.
type Noop struct{}

func (Noop) NotificarCodigoFactura(string) {}
