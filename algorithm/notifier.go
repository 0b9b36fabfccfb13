// ABOUTME: Synchronous listener fan-out for algorithm progress events
// ABOUTME: Population changes, best-so-far updates and the final solution

package algorithm

import (
	"slices"
	"sync"
)

// Listener observes an algorithm. Callbacks run synchronously on the
// algorithm goroutine and must not block for long. Solutions passed in are
// owned by the algorithm: treat them as read-only and copy to retain.
type Listener[S any] interface {
	PopulationChanged(pop []S, step int)
	BestUpdated(best S, step int)
	FinalSolution(best S, step int)
}

// ListenerFuncs adapts optional closures to Listener
type ListenerFuncs[S any] struct {
	OnPopulation func(pop []S, step int)
	OnBest       func(best S, step int)
	OnFinal      func(best S, step int)
}

func (f ListenerFuncs[S]) PopulationChanged(pop []S, step int) {
	if f.OnPopulation != nil {
		f.OnPopulation(pop, step)
	}
}

func (f ListenerFuncs[S]) BestUpdated(best S, step int) {
	if f.OnBest != nil {
		f.OnBest(best, step)
	}
}

func (f ListenerFuncs[S]) FinalSolution(best S, step int) {
	if f.OnFinal != nil {
		f.OnFinal(best, step)
	}
}

// ListenerID identifies a registration for removal
type ListenerID uint64

type registration[S any] struct {
	id       ListenerID
	listener Listener[S]
}

// Notifier delivers events to listeners in registration order.
// The zero value is ready to use.
type Notifier[S any] struct {
	mu        sync.Mutex
	nextID    ListenerID
	listeners []registration[S]
}

// AddListener registers l and returns a handle for RemoveListener
func (n *Notifier[S]) AddListener(l Listener[S]) ListenerID {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	n.listeners = append(n.listeners, registration[S]{id: n.nextID, listener: l})
	return n.nextID
}

// RemoveListener deregisters a listener and reports whether it was found
func (n *Notifier[S]) RemoveListener(id ListenerID) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	i := slices.IndexFunc(n.listeners, func(r registration[S]) bool { return r.id == id })
	if i < 0 {
		return false
	}
	n.listeners = slices.Delete(n.listeners, i, i+1)
	return true
}

// ListenerCount returns the number of registered listeners
func (n *Notifier[S]) ListenerCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}

// snapshot copies the listener set so callbacks run without the lock held
// and may add or remove listeners themselves.
func (n *Notifier[S]) snapshot() []Listener[S] {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.listeners) == 0 {
		return nil
	}
	out := make([]Listener[S], len(n.listeners))
	for i, r := range n.listeners {
		out[i] = r.listener
	}
	return out
}

// NotifyPopulationChanged delivers a copy of the population slice
func (n *Notifier[S]) NotifyPopulationChanged(pop []S, step int) {
	listeners := n.snapshot()
	if len(listeners) == 0 {
		return
	}
	view := slices.Clone(pop)
	for _, l := range listeners {
		l.PopulationChanged(view, step)
	}
}

// NotifyBestUpdated delivers a new best-so-far solution
func (n *Notifier[S]) NotifyBestUpdated(best S, step int) {
	for _, l := range n.snapshot() {
		l.BestUpdated(best, step)
	}
}

// NotifyFinalSolution delivers the result of a finished run
func (n *Notifier[S]) NotifyFinalSolution(best S, step int) {
	for _, l := range n.snapshot() {
		l.FinalSolution(best, step)
	}
}
