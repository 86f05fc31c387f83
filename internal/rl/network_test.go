package rl

import (
	"math"
	"math/rand"
	"testing"
)

func TestMLPForwardShape(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	n := NewMLP([]int{4, 8, 8, 2}, rng)

	out := n.Forward([]float64{0.1, 0.2, 0.3, 0.4})
	if len(out) != 2 {
		t.Fatalf("Expected output of length 2, got %d", len(out))
	}
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("Output[%d] = %f, expected finite value", i, v)
		}
	}
}

func TestMLPLearnsRegression(t *testing.T) {
	// The network should fit a fixed input/target pair with plain SGD
	rng := rand.New(rand.NewSource(7))
	n := NewMLP([]int{3, 16, 1}, rng)
	g := n.NewGradients()

	input := []float64{0.5, -0.2, 0.8}
	target := 1.5

	for i := 0; i < 500; i++ {
		out := n.Forward(input)
		// MSE gradient
		n.Accumulate(g, input, []float64{2 * (out[0] - target)})
		n.Step(g, 0.01, 1)
	}

	out := n.Forward(input)
	if math.Abs(out[0]-target) > 0.05 {
		t.Errorf("Network failed to fit target: got %f, want %f", out[0], target)
	}
}

func TestMLPDeterministicInit(t *testing.T) {
	n1 := NewMLP([]int{4, 8, 2}, rand.New(rand.NewSource(42)))
	n2 := NewMLP([]int{4, 8, 2}, rand.New(rand.NewSource(42)))

	input := []float64{1, 2, 3, 4}
	o1, o2 := n1.Forward(input), n2.Forward(input)
	for i := range o1 {
		if o1[i] != o2[i] {
			t.Fatalf("Same seed produced different outputs at %d: %f vs %f", i, o1[i], o2[i])
		}
	}
}

func TestMLPCopyFrom(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	a := NewMLP([]int{4, 8, 2}, rng)
	b := NewMLP([]int{4, 8, 2}, rng)

	input := []float64{0.1, 0.2, 0.3, 0.4}
	if same(a.Forward(input), b.Forward(input)) {
		t.Fatal("Independently initialized networks should differ")
	}

	b.CopyFrom(a)
	if !same(a.Forward(input), b.Forward(input)) {
		t.Error("CopyFrom should make outputs identical")
	}

	// Training the source must not bleed into the copy
	g := a.NewGradients()
	a.Accumulate(g, input, []float64{1, 1})
	a.Step(g, 0.1, 1)
	if same(a.Forward(input), b.Forward(input)) {
		t.Error("Updating the source should not affect the copy")
	}
}

func TestSoftmax(t *testing.T) {
	probs := Softmax([]float64{1, 2, 3})

	sum := 0.0
	for i, p := range probs {
		if p <= 0 || p >= 1 {
			t.Errorf("probs[%d] = %f out of (0,1)", i, p)
		}
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("Probabilities sum to %f, want 1", sum)
	}
	if !(probs[2] > probs[1] && probs[1] > probs[0]) {
		t.Errorf("Softmax should be monotone in logits, got %v", probs)
	}

	// Large logits must not overflow
	big := Softmax([]float64{1000, 1001})
	if math.IsNaN(big[0]) || math.IsNaN(big[1]) {
		t.Errorf("Softmax overflowed on large logits: %v", big)
	}
}

func TestArgmax(t *testing.T) {
	if got := Argmax([]float64{0.1, 0.9, 0.5}); got != 1 {
		t.Errorf("Argmax = %d, want 1", got)
	}
	// Ties break toward the lowest index
	if got := Argmax([]float64{0.5, 0.5}); got != 0 {
		t.Errorf("Argmax tie = %d, want 0", got)
	}
}

func TestReplayBuffer(t *testing.T) {
	rb := NewReplayBuffer(4)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 6; i++ {
		rb.Add(Transition{Action: i})
	}
	if rb.Len() != 4 {
		t.Fatalf("Len = %d, want capacity 4", rb.Len())
	}

	// Oldest entries (actions 0 and 1) were overwritten
	batch := rb.Sample(100, rng)
	for _, tr := range batch {
		if tr.Action < 2 || tr.Action > 5 {
			t.Fatalf("Sampled overwritten transition with action %d", tr.Action)
		}
	}
}

func same(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
