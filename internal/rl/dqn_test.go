package rl

import (
	"testing"

	"github.com/preich21/reinforcement-learning-learning/internal/config"
)

func testDQNConfig() config.DQNConfig {
	return config.DQNConfig{
		LearningRate:         0.01,
		BufferSize:           1000,
		BatchSize:            8,
		Gamma:                0.99,
		TrainFreq:            4,
		LearningStarts:       16,
		TargetUpdateInterval: 50,
		ExplorationFraction:  0.5,
		ExplorationInitial:   1.0,
		ExplorationFinal:     0.1,
		NetArch:              []int{16},
	}
}

func TestDQNEpsilonSchedule(t *testing.T) {
	cfg := testDQNConfig()
	d := NewDQN(cfg, 4, 2, 1000, 1)

	if eps := d.Epsilon(); eps != cfg.ExplorationInitial {
		t.Errorf("Initial epsilon = %f, want %f", eps, cfg.ExplorationInitial)
	}

	// Halfway through the decay window (fraction 0.5 of 1000 steps = 500)
	d.steps = 250
	eps := d.Epsilon()
	want := 0.55 // Linear midpoint of 1.0 -> 0.1
	if eps < want-1e-9 || eps > want+1e-9 {
		t.Errorf("Mid-decay epsilon = %f, want %f", eps, want)
	}

	d.steps = 900
	if eps := d.Epsilon(); eps != cfg.ExplorationFinal {
		t.Errorf("Post-decay epsilon = %f, want %f", eps, cfg.ExplorationFinal)
	}
}

func TestDQNSelectActionInRange(t *testing.T) {
	d := NewDQN(testDQNConfig(), 4, 2, 1000, 1)
	obs := []float64{0.1, 0.2, 0.3, 0.4}

	for i := 0; i < 100; i++ {
		a := d.SelectAction(obs)
		if a < 0 || a >= 2 {
			t.Fatalf("Action %d out of range [0,2)", a)
		}
	}
}

func TestDQNLearnsBanditReward(t *testing.T) {
	// Single-state bandit: action 1 always pays 1, action 0 pays 0.
	// After training, the greedy policy must prefer action 1.
	cfg := testDQNConfig()
	cfg.ExplorationInitial = 1.0
	cfg.ExplorationFinal = 1.0 // Pure exploration keeps both actions sampled
	d := NewDQN(cfg, 2, 2, 2000, 3)

	obs := []float64{1, 0}
	for i := 0; i < 2000; i++ {
		a := d.SelectAction(obs)
		reward := 0.0
		if a == 1 {
			reward = 1.0
		}
		d.Observe(Transition{Obs: obs, Action: a, Reward: reward, NextObs: obs, Done: true})
	}

	q := d.online.Forward(obs)
	if q[1] <= q[0] {
		t.Errorf("Q-values did not learn the better action: Q(0)=%f Q(1)=%f", q[0], q[1])
	}
	if d.Policy().SelectAction(obs) != 1 {
		t.Error("Greedy policy should pick the rewarded action")
	}
}

func TestDQNTargetSync(t *testing.T) {
	cfg := testDQNConfig()
	cfg.TargetUpdateInterval = 10
	cfg.LearningStarts = 1
	cfg.TrainFreq = 1
	cfg.BatchSize = 2
	d := NewDQN(cfg, 2, 2, 1000, 5)

	obs := []float64{0.5, 0.5}
	for i := 0; i < 10; i++ {
		d.Observe(Transition{Obs: obs, Action: i % 2, Reward: 1, NextObs: obs, Done: false})
	}

	// After a sync the target must match the online network exactly
	if !same(d.online.Forward(obs), d.target.Forward(obs)) {
		t.Error("Target network should equal online network right after sync")
	}
}
