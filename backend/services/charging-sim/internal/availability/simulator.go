// Package availability simulates connector status. Every sample is drawn
// independently; nothing is remembered between calls, so two reads of the same
// connector may disagree.
package availability

import (
	"math/rand/v2"
	"sync"

	"chargesim/backend/services/charging-sim/internal/models"
)

// Source is a goroutine-safe random source shared by the simulator and the
// lifecycle engine's completion roll.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource returns a source seeded with seed, or from the runtime when seed is 0.
func NewSource(seed uint64) *Source {
	if seed == 0 {
		return &Source{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	}
	return &Source{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// IntN returns a uniform int in [0, n).
func (s *Source) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Float64 returns a uniform float in [0, 1).
func (s *Source) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Recorder observes produced samples.
type Recorder interface {
	ObserveSample(status models.ConnectorStatus)
}

// Simulator draws connector statuses uniformly at random.
type Simulator struct {
	src      *Source
	recorder Recorder
}

// Option customizes a Simulator.
type Option func(*Simulator)

// WithRecorder reports every sample to r.
func WithRecorder(r Recorder) Option {
	return func(s *Simulator) { s.recorder = r }
}

// NewSimulator builds a simulator drawing from src.
func NewSimulator(src *Source, opts ...Option) *Simulator {
	s := &Simulator{src: src}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sample returns Available, Occupied or OutOfService with equal probability.
func (s *Simulator) Sample() models.ConnectorStatus {
	status := models.ConnectorStatuses[s.src.IntN(len(models.ConnectorStatuses))]
	if s.recorder != nil {
		s.recorder.ObserveSample(status)
	}
	return status
}
