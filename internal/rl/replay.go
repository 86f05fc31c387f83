package rl

import "math/rand"

// Transition is one stored experience step.
type Transition struct {
	Obs     []float64
	Action  int
	Reward  float64
	NextObs []float64
	Done    bool
}

// ReplayBuffer is a fixed-capacity ring buffer of transitions with uniform
// random sampling.
type ReplayBuffer struct {
	buf  []Transition
	cap  int
	next int
	size int
}

// NewReplayBuffer creates a buffer holding up to capacity transitions.
func NewReplayBuffer(capacity int) *ReplayBuffer {
	return &ReplayBuffer{
		buf: make([]Transition, capacity),
		cap: capacity,
	}
}

// Add stores a transition, overwriting the oldest when full.
func (rb *ReplayBuffer) Add(t Transition) {
	rb.buf[rb.next] = t
	rb.next = (rb.next + 1) % rb.cap
	if rb.size < rb.cap {
		rb.size++
	}
}

// Len returns the number of stored transitions.
func (rb *ReplayBuffer) Len() int {
	return rb.size
}

// Sample draws n transitions uniformly at random (with replacement).
func (rb *ReplayBuffer) Sample(n int, rng *rand.Rand) []Transition {
	batch := make([]Transition, n)
	for i := 0; i < n; i++ {
		batch[i] = rb.buf[rng.Intn(rb.size)]
	}
	return batch
}
