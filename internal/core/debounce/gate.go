package debounce

import (
	"sync"
	"time"
)

// DefaultWindow - окно тишины, после которого правка считается "устоявшейся"
const DefaultWindow = 300 * time.Millisecond

// Gate хранит устоявшуюся копию значения и выпускает ее не чаще одного раза
// за окно тишины. Каждая новая правка отменяет ожидающую и планирует заново.
// Один Gate питает всех потребителей, поэтому они видят одно и то же значение.
type Gate[T any] struct {
	clock    Clock
	window   time.Duration
	onSettle func(T)

	mu         sync.Mutex
	timer      Timer
	generation uint64
	settled    T
	hasSettled bool
	stopped    bool
}

func NewGate[T any](clock Clock, window time.Duration, onSettle func(T)) *Gate[T] {
	if clock == nil {
		clock = SystemClock{}
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Gate[T]{clock: clock, window: window, onSettle: onSettle}
}

// Prime выпускает значение сразу, без ожидания окна (первичное монтирование).
func (g *Gate[T]) Prime(v T) {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		return
	}
	g.cancelLocked()
	g.settled, g.hasSettled = v, true
	g.mu.Unlock()

	g.emit(v)
}

// Push планирует выпуск v через окно тишины.
func (g *Gate[T]) Push(v T) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopped {
		return
	}
	g.cancelLocked()
	gen := g.generation
	g.timer = g.clock.AfterFunc(g.window, func() { g.fire(gen, v) })
}

// Settled - последнее выпущенное значение
func (g *Gate[T]) Settled() (T, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.settled, g.hasSettled
}

// Pending - есть ли запланированный выпуск
func (g *Gate[T]) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.timer != nil
}

// Stop отменяет ожидающий выпуск; после Stop гейт ничего не выпускает.
func (g *Gate[T]) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelLocked()
	g.stopped = true
}

func (g *Gate[T]) fire(gen uint64, v T) {
	g.mu.Lock()
	// таймер мог сработать одновременно с отменой
	if g.stopped || gen != g.generation {
		g.mu.Unlock()
		return
	}
	g.timer = nil
	g.settled, g.hasSettled = v, true
	g.mu.Unlock()

	g.emit(v)
}

func (g *Gate[T]) cancelLocked() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.generation++
}

func (g *Gate[T]) emit(v T) {
	if g.onSettle != nil {
		g.onSettle(v)
	}
}
