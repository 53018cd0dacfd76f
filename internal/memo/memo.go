// Package memo caches scalar Runge-Kutta step results keyed on the exact
// inputs of the step.
//
// A key holds the derivative system by identity and the bit patterns of the
// state, time and step size, so two inputs share an entry only if they are
// bitwise identical. Systems whose dynamic type cannot be compared, such as
// function closures adapted with dynamo.Func, have no stable identity and are
// never cached.
package memo

import (
	"math"
	"reflect"
	"sync"
)

// Key identifies a single step.
type Key struct {
	System any
	X      uint64
	T      uint64
	Tau    uint64
}

// KeyFor builds the key for a step of sys from (x, t) with size tau. It
// reports false when sys has no comparable identity.
func KeyFor(sys any, x, t, tau float64) (Key, bool) {
	if sys == nil || !reflect.ValueOf(sys).Comparable() {
		return Key{}, false
	}
	return Key{
		System: sys,
		X:      math.Float64bits(x),
		T:      math.Float64bits(t),
		Tau:    math.Float64bits(tau),
	}, true
}

// Cache is the storage behind a memoizing stepper.
type Cache interface {
	Get(k Key) (float64, bool)
	Put(k Key, v float64)
	Clear()
}

// Computer is implemented by caches that can fill a miss themselves.
type Computer interface {
	GetOrCompute(k Key, compute func() float64) float64
}

// Store is an unbounded in-memory Cache safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[Key]float64
	hits    uint64
	misses  uint64
}

func NewStore() *Store {
	return &Store{entries: make(map[Key]float64)}
}

func (s *Store) Get(k Key) (float64, bool) {
	s.mu.RLock()
	v, ok := s.entries[k]
	s.mu.RUnlock()
	return v, ok
}

func (s *Store) Put(k Key, v float64) {
	s.mu.Lock()
	s.entries[k] = v
	s.mu.Unlock()
}

// GetOrCompute returns the cached value for k, computing and storing it on
// a miss. compute runs without the lock held so it may itself use the
// store. When two callers race on the same key the first stored value wins
// and both observe it.
func (s *Store) GetOrCompute(k Key, compute func() float64) float64 {
	s.mu.RLock()
	v, ok := s.entries[k]
	s.mu.RUnlock()
	if ok {
		s.mu.Lock()
		s.hits++
		s.mu.Unlock()
		return v
	}

	v = compute()

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.entries[k]; ok {
		s.hits++
		return prev
	}
	s.misses++
	s.entries[k] = v
	return v
}

func (s *Store) Clear() {
	s.mu.Lock()
	clear(s.entries)
	s.hits, s.misses = 0, 0
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stats returns the hit and miss counts recorded by GetOrCompute.
func (s *Store) Stats() (hits, misses uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hits, s.misses
}
