package lazy

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// Slot states. The state word is the publication point: a caller that
// loads stateDone is guaranteed by the Go memory model to observe the
// value stored before the release-store of stateDone.
const (
	stateNew uint32 = iota
	stateDone
	statePoisoned
)

// Slot is a storage cell that runs its producer exactly once, on first
// Get, and caches the result for the lifetime of the slot.
//
// A Slot must be created with New and must not be copied after first use.
// The producer must not call Get on its own slot; doing so deadlocks,
// as with sync.Once.
type Slot[T any] struct {
	state    atomic.Uint32
	mu       sync.Mutex
	producer func() T
	value    T
	poison   *PoisonError
}

// New creates a slot holding producer. No work is performed; the producer
// runs on the first call to Get. A nil producer panics immediately rather
// than on first access, so the fault points at the construction site.
func New[T any](producer func() T) *Slot[T] {
	if producer == nil {
		panic("lazy: New called with nil producer")
	}
	return &Slot[T]{producer: producer}
}

// Get returns a pointer to the slot's value, initializing it if needed.
//
// The fast path is a single atomic load. If the slot is uninitialized,
// exactly one caller runs the producer while the rest block on the slot's
// mutex and return the shared result once it is published. Get on a
// poisoned slot panics with the recorded *PoisonError.
//
// The returned pointer is stable: every call yields the same address.
// Callers must treat the value as shared read-only state.
func (s *Slot[T]) Get() *T {
	switch s.state.Load() {
	case stateDone:
		return &s.value
	case statePoisoned:
		panic(s.poison)
	}
	return s.getSlow()
}

// getSlow is the contended path: acquire the mutex, re-check state, and
// run the producer if this caller won the race.
func (s *Slot[T]) getSlow() *T {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have initialized while we waited for the lock.
	switch s.state.Load() {
	case stateDone:
		return &s.value
	case statePoisoned:
		panic(s.poison)
	}

	defer func() {
		if r := recover(); r != nil {
			s.poison = &PoisonError{Value: r, Stack: debug.Stack()}
			s.state.Store(statePoisoned)
			panic(s.poison)
		}
	}()

	s.value = s.producer()
	s.producer = nil // release the closure and anything it captured
	s.state.Store(stateDone)
	return &s.value
}

// Initialized reports whether the slot holds a value. It never blocks and
// never triggers initialization. A poisoned slot reports false.
func (s *Slot[T]) Initialized() bool {
	return s.state.Load() == stateDone
}

// Poisoned returns the recorded failure if the slot's producer panicked,
// or nil. It never blocks and never triggers initialization.
func (s *Slot[T]) Poisoned() *PoisonError {
	if s.state.Load() == statePoisoned {
		return s.poison
	}
	return nil
}

// PoisonError records a producer panic. Every Get on a poisoned slot
// panics with the same *PoisonError, so all accessors observe the
// original failure rather than a retry or an uninitialized value.
type PoisonError struct {
	// Value is the value the producer panicked with.
	Value any

	// Stack is the goroutine stack captured at the point of the panic.
	Stack []byte
}

func (e *PoisonError) Error() string {
	return fmt.Sprintf("lazy: slot poisoned by producer panic: %v", e.Value)
}
