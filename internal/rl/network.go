// Package rl implements the reinforcement learning stack for the arcade
// environments: a small feed-forward network on gonum matrices, a replay
// buffer, DQN and PPO learners, checkpointing, and a training driver.
package rl

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// MLP is a fully connected feed-forward network with ReLU hidden layers and
// a linear output layer. It is deliberately small: the arcade observations
// are low-dimensional and training runs on the CPU.
type MLP struct {
	sizes   []int        // Layer widths, input through output
	weights []*mat.Dense // weights[l] has shape sizes[l] x sizes[l+1]
	biases  []*mat.Dense // biases[l] has shape 1 x sizes[l+1]
}

// NewMLP creates a network with the given layer sizes (input, hidden...,
// output) and He-initialized weights drawn from the provided RNG.
func NewMLP(sizes []int, rng *rand.Rand) *MLP {
	if len(sizes) < 2 {
		panic(fmt.Sprintf("rl: MLP needs at least input and output layers, got %v", sizes))
	}

	n := &MLP{
		sizes:   append([]int(nil), sizes...),
		weights: make([]*mat.Dense, len(sizes)-1),
		biases:  make([]*mat.Dense, len(sizes)-1),
	}

	for l := 0; l < len(sizes)-1; l++ {
		in, out := sizes[l], sizes[l+1]
		scale := math.Sqrt(2.0 / float64(in))
		w := make([]float64, in*out)
		for i := range w {
			w[i] = rng.NormFloat64() * scale
		}
		n.weights[l] = mat.NewDense(in, out, w)
		n.biases[l] = mat.NewDense(1, out, nil)
	}

	return n
}

// Sizes returns the layer widths.
func (n *MLP) Sizes() []int {
	return append([]int(nil), n.sizes...)
}

// Forward runs a single observation through the network and returns the
// raw output vector (Q-values, logits, or a value estimate).
func (n *MLP) Forward(input []float64) []float64 {
	acts := n.forward(input)
	out := acts[len(acts)-1]
	return append([]float64(nil), out.RawRowView(0)...)
}

// forward returns the post-activation output of every layer, with the raw
// input as element 0. Hidden layers use ReLU, the final layer is linear.
func (n *MLP) forward(input []float64) []*mat.Dense {
	acts := make([]*mat.Dense, 0, len(n.sizes))
	x := mat.NewDense(1, len(input), append([]float64(nil), input...))
	acts = append(acts, x)

	for l := range n.weights {
		z := mat.NewDense(1, n.sizes[l+1], nil)
		z.Mul(x, n.weights[l])
		z.Add(z, n.biases[l])

		if l < len(n.weights)-1 {
			applyReLU(z)
		}
		acts = append(acts, z)
		x = z
	}

	return acts
}

// Gradients holds per-layer weight and bias gradients matching an MLP shape.
type Gradients struct {
	weights []*mat.Dense
	biases  []*mat.Dense
}

// NewGradients allocates zeroed gradients for the network.
func (n *MLP) NewGradients() *Gradients {
	g := &Gradients{
		weights: make([]*mat.Dense, len(n.weights)),
		biases:  make([]*mat.Dense, len(n.biases)),
	}
	for l := range n.weights {
		g.weights[l] = mat.NewDense(n.sizes[l], n.sizes[l+1], nil)
		g.biases[l] = mat.NewDense(1, n.sizes[l+1], nil)
	}
	return g
}

// Reset zeroes the accumulated gradients.
func (g *Gradients) Reset() {
	for l := range g.weights {
		g.weights[l].Zero()
		g.biases[l].Zero()
	}
}

// Accumulate backpropagates the gradient of the loss with respect to the
// network output for one sample and adds the resulting parameter gradients.
func (n *MLP) Accumulate(g *Gradients, input, outputGrad []float64) {
	acts := n.forward(input)

	// delta starts as dLoss/dOutput; the output layer is linear
	delta := mat.NewDense(1, len(outputGrad), append([]float64(nil), outputGrad...))

	for l := len(n.weights) - 1; l >= 0; l-- {
		// dLoss/dW = a^T delta, dLoss/db = delta
		var wGrad mat.Dense
		wGrad.Mul(acts[l].T(), delta)
		g.weights[l].Add(g.weights[l], &wGrad)
		g.biases[l].Add(g.biases[l], delta)

		if l == 0 {
			break
		}

		// Propagate through the layer and the ReLU of the previous one
		var prev mat.Dense
		prev.Mul(delta, n.weights[l].T())
		prev.Apply(func(i, j int, v float64) float64 {
			if acts[l].At(i, j) <= 0 {
				return 0
			}
			return v
		}, &prev)
		delta = &prev
	}
}

// Step applies accumulated gradients with learning rate lr, scaled by
// 1/count (the minibatch size), then resets them.
func (n *MLP) Step(g *Gradients, lr float64, count int) {
	if count <= 0 {
		return
	}
	scale := -lr / float64(count)
	for l := range n.weights {
		var dw, db mat.Dense
		dw.Scale(scale, g.weights[l])
		db.Scale(scale, g.biases[l])
		n.weights[l].Add(n.weights[l], &dw)
		n.biases[l].Add(n.biases[l], &db)
	}
	g.Reset()
}

// CopyFrom overwrites this network's parameters with those of src.
// Both networks must have identical layer sizes.
func (n *MLP) CopyFrom(src *MLP) {
	for l := range n.weights {
		n.weights[l].Copy(src.weights[l])
		n.biases[l].Copy(src.biases[l])
	}
}

// Clone returns an independent copy of the network.
func (n *MLP) Clone() *MLP {
	c := &MLP{
		sizes:   append([]int(nil), n.sizes...),
		weights: make([]*mat.Dense, len(n.weights)),
		biases:  make([]*mat.Dense, len(n.biases)),
	}
	for l := range n.weights {
		c.weights[l] = mat.DenseCopyOf(n.weights[l])
		c.biases[l] = mat.DenseCopyOf(n.biases[l])
	}
	return c
}

func applyReLU(m *mat.Dense) {
	m.Apply(func(i, j int, v float64) float64 {
		if v < 0 {
			return 0
		}
		return v
	}, m)
}

// Softmax converts logits into a probability distribution. The max is
// subtracted before exponentiation for numerical stability.
func Softmax(logits []float64) []float64 {
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}

	probs := make([]float64, len(logits))
	sum := 0.0
	for i, v := range logits {
		probs[i] = math.Exp(v - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// Argmax returns the index of the largest value, breaking ties toward the
// lowest index.
func Argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
