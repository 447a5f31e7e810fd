package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered event bus. Events emitted during tick N are
// delivered in tick N+1, in emission order, after EventSystem swaps the
// buffers.
type Bus struct {
	mu       sync.Mutex // guards handlers only
	front    []envelope
	back     []envelope
	handlers map[reflect.Type][]func(any)
}

type envelope struct {
	typ reflect.Type
	ev  any
}

func NewBus() *Bus {
	return &Bus{
		front:    make([]envelope, 0, 32),
		back:     make([]envelope, 0, 32),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues ev into the back buffer.
func Emit[T any](b *Bus, ev T) {
	b.back = append(b.back, envelope{typ: typeOf[T](), ev: ev})
}

// Subscribe registers fn for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := typeOf[T]()
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// SwapBuffers makes last tick's events readable and empties the back buffer.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front[:0]
}

// DispatchAll delivers the front buffer. Handlers may Emit; those events go
// to the back buffer.
func (b *Bus) DispatchAll() int {
	b.mu.Lock()
	handlers := b.handlers
	b.mu.Unlock()
	for _, env := range b.front {
		for _, h := range handlers[env.typ] {
			h(env.ev)
		}
	}
	n := len(b.front)
	clear(b.front)
	b.front = b.front[:0]
	return n
}

// Pending is the number of events waiting for the next swap.
func (b *Bus) Pending() int { return len(b.back) }
