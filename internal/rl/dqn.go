package rl

import (
	"math/rand"

	"github.com/preich21/reinforcement-learning-learning/internal/config"
)

// DQN is a Deep Q-Network learner: an online Q-network trained from a
// replay buffer against a periodically synced target network, with an
// epsilon-greedy behavior policy whose epsilon decays linearly over a
// fraction of total training.
type DQN struct {
	cfg    config.DQNConfig
	online *MLP
	target *MLP
	grads  *Gradients
	replay *ReplayBuffer
	rng    *rand.Rand

	obsSize    int
	numActions int
	steps      int // Env steps observed
	totalSteps int // Planned training length, drives the epsilon schedule
}

// NewDQN creates a DQN learner for the given observation and action sizes.
// totalSteps is the planned number of environment steps; it fixes the
// epsilon decay schedule.
func NewDQN(cfg config.DQNConfig, obsSize, numActions, totalSteps int, seed int64) *DQN {
	rng := rand.New(rand.NewSource(seed))

	sizes := make([]int, 0, len(cfg.NetArch)+2)
	sizes = append(sizes, obsSize)
	sizes = append(sizes, cfg.NetArch...)
	sizes = append(sizes, numActions)

	online := NewMLP(sizes, rng)
	target := online.Clone()

	return &DQN{
		cfg:        cfg,
		online:     online,
		target:     target,
		grads:      online.NewGradients(),
		replay:     NewReplayBuffer(cfg.BufferSize),
		rng:        rng,
		obsSize:    obsSize,
		numActions: numActions,
		totalSteps: totalSteps,
	}
}

// Epsilon returns the current exploration rate.
func (d *DQN) Epsilon() float64 {
	decaySteps := d.cfg.ExplorationFraction * float64(d.totalSteps)
	if decaySteps <= 0 || float64(d.steps) >= decaySteps {
		return d.cfg.ExplorationFinal
	}
	frac := float64(d.steps) / decaySteps
	return d.cfg.ExplorationInitial + frac*(d.cfg.ExplorationFinal-d.cfg.ExplorationInitial)
}

// SelectAction picks an action epsilon-greedily from the online network.
func (d *DQN) SelectAction(obs []float64) int {
	if d.rng.Float64() < d.Epsilon() {
		return d.rng.Intn(d.numActions)
	}
	return Argmax(d.online.Forward(obs))
}

// Observe stores a transition and runs gradient and target updates on the
// configured schedules. Returns the TD loss if an update ran, else -1.
func (d *DQN) Observe(t Transition) float64 {
	d.replay.Add(t)
	d.steps++

	loss := -1.0
	if d.steps >= d.cfg.LearningStarts && d.steps%d.cfg.TrainFreq == 0 && d.replay.Len() >= d.cfg.BatchSize {
		loss = d.update()
	}

	if d.steps%d.cfg.TargetUpdateInterval == 0 {
		d.target.CopyFrom(d.online)
	}

	return loss
}

// update performs one minibatch gradient step on the TD error and returns
// the mean squared TD loss.
func (d *DQN) update() float64 {
	batch := d.replay.Sample(d.cfg.BatchSize, d.rng)

	totalLoss := 0.0
	for _, t := range batch {
		target := t.Reward
		if !t.Done {
			next := d.target.Forward(t.NextObs)
			target += d.cfg.Gamma * next[Argmax(next)]
		}

		q := d.online.Forward(t.Obs)
		tdErr := q[t.Action] - target
		totalLoss += tdErr * tdErr

		// MSE gradient flows only through the taken action
		outGrad := make([]float64, d.numActions)
		outGrad[t.Action] = 2 * tdErr
		d.online.Accumulate(d.grads, t.Obs, outGrad)
	}

	d.online.Step(d.grads, d.cfg.LearningRate, len(batch))
	return totalLoss / float64(len(batch))
}

// Steps returns the number of environment steps observed so far.
func (d *DQN) Steps() int {
	return d.steps
}

// Policy returns the greedy policy over the online network.
func (d *DQN) Policy() Policy {
	return NewGreedyQPolicy(d.online)
}

// Networks exposes the learner's networks for checkpointing.
func (d *DQN) Networks() map[string]*MLP {
	return map[string]*MLP{"q_net": d.online}
}
