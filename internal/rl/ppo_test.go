package rl

import (
	"math"
	"testing"

	"github.com/preich21/reinforcement-learning-learning/internal/config"
)

func testPPOConfig() config.PPOConfig {
	return config.PPOConfig{
		LearningRate: 0.01,
		RolloutSteps: 64,
		BatchSize:    16,
		Epochs:       4,
		Gamma:        0.99,
		GAELambda:    0.95,
		ClipRange:    0.2,
		EntropyCoef:  0.01,
		ValueCoef:    0.5,
		NetArch:      []int{16},
	}
}

func TestPPOSelectAction(t *testing.T) {
	p := NewPPO(testPPOConfig(), 4, 2, 1)
	obs := []float64{0.1, 0.2, 0.3, 0.4}

	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		a, logProb, _ := p.SelectAction(obs)
		if a < 0 || a >= 2 {
			t.Fatalf("Action %d out of range", a)
		}
		if logProb > 0 {
			t.Fatalf("Log-probability %f should be non-positive", logProb)
		}
		seen[a] = true
	}

	// A fresh near-uniform policy should sample both actions
	if len(seen) != 2 {
		t.Errorf("Expected both actions sampled, got %v", seen)
	}
}

func TestPPOComputeGAE(t *testing.T) {
	p := NewPPO(testPPOConfig(), 2, 2, 1)
	p.cfg.Gamma = 0.5
	p.cfg.GAELambda = 1.0

	// Two-step episode ending in a terminal state
	obs := []float64{0, 0}
	p.Store(obs, 0, 1.0, false, -0.7, 0.0)
	p.Store(obs, 0, 1.0, true, -0.7, 0.0)

	adv, ret := p.computeGAE(99.0) // lastValue must be ignored past a terminal

	// With V=0 everywhere: adv[1] = 1, adv[0] = 1 + 0.5*1 = 1.5
	if math.Abs(adv[1]-1.0) > 1e-9 {
		t.Errorf("adv[1] = %f, want 1.0", adv[1])
	}
	if math.Abs(adv[0]-1.5) > 1e-9 {
		t.Errorf("adv[0] = %f, want 1.5", adv[0])
	}
	// Returns = advantages when values are zero
	if math.Abs(ret[0]-1.5) > 1e-9 || math.Abs(ret[1]-1.0) > 1e-9 {
		t.Errorf("returns = %v, want [1.5 1.0]", ret)
	}
}

func TestPPOStoreTruncatedBootstraps(t *testing.T) {
	p := NewPPO(testPPOConfig(), 2, 2, 1)
	p.cfg.Gamma = 0.5
	p.cfg.GAELambda = 1.0

	obs := []float64{0.3, 0.7}
	next := []float64{0.1, 0.9}
	nextValue := p.Value(next)

	p.StoreTruncated(obs, 0, 1.0, -0.7, 0.0, next)

	if !p.dones[0] {
		t.Fatal("truncated step should still close the episode for GAE")
	}
	want := 1.0 + 0.5*nextValue
	if math.Abs(p.rewards[0]-want) > 1e-9 {
		t.Errorf("stored reward = %f, want %f (reward plus discounted next value)", p.rewards[0], want)
	}

	// With V(obs)=0 the advantage equals the bootstrapped one-step return,
	// not the bare reward a hard terminal would leave behind.
	adv, _ := p.computeGAE(0.0)
	if math.Abs(adv[0]-want) > 1e-9 {
		t.Errorf("adv[0] = %f, want %f", adv[0], want)
	}
}

func TestPPOGAEBootstrapsTail(t *testing.T) {
	p := NewPPO(testPPOConfig(), 2, 2, 1)
	p.cfg.Gamma = 0.5
	p.cfg.GAELambda = 1.0

	obs := []float64{0, 0}
	p.Store(obs, 0, 1.0, false, -0.7, 0.0)

	adv, _ := p.computeGAE(2.0)

	// Non-terminal tail bootstraps: delta = 1 + 0.5*2 - 0 = 2
	if math.Abs(adv[0]-2.0) > 1e-9 {
		t.Errorf("adv[0] = %f, want 2.0", adv[0])
	}
}

func TestPPOUpdateClearsRollout(t *testing.T) {
	p := NewPPO(testPPOConfig(), 2, 2, 1)
	obs := []float64{0.5, 0.5}

	for i := 0; i < p.cfg.RolloutSteps; i++ {
		a, logProb, value := p.SelectAction(obs)
		p.Store(obs, a, 0.1, i%10 == 9, logProb, value)
	}
	if !p.RolloutFull() {
		t.Fatal("Rollout should be full")
	}

	p.Update(0)

	if p.RolloutFull() {
		t.Error("Update should consume the rollout")
	}
	if len(p.obs) != 0 {
		t.Errorf("Rollout storage not cleared, %d entries remain", len(p.obs))
	}
}

func TestPPOLearnsBanditReward(t *testing.T) {
	// Single-state bandit: action 1 pays 1, action 0 pays nothing.
	// The policy should shift probability mass toward action 1.
	cfg := testPPOConfig()
	cfg.EntropyCoef = 0.0
	p := NewPPO(cfg, 2, 2, 11)

	obs := []float64{1, 0}
	for iter := 0; iter < 30; iter++ {
		for i := 0; i < cfg.RolloutSteps; i++ {
			a, logProb, value := p.SelectAction(obs)
			reward := 0.0
			if a == 1 {
				reward = 1.0
			}
			p.Store(obs, a, reward, true, logProb, value)
		}
		p.Update(0)
	}

	probs := Softmax(p.actor.Forward(obs))
	if probs[1] < 0.7 {
		t.Errorf("Policy did not learn the rewarded action: P(1) = %f", probs[1])
	}
	if p.Policy().SelectAction(obs) != 1 {
		t.Error("Deterministic policy should pick the rewarded action")
	}
}

func TestPPOCriticFitsReturns(t *testing.T) {
	cfg := testPPOConfig()
	p := NewPPO(cfg, 2, 2, 2)

	// Every step is terminal with reward 1, so the target value is 1
	obs := []float64{1, 0}
	for iter := 0; iter < 50; iter++ {
		for i := 0; i < cfg.RolloutSteps; i++ {
			a, logProb, value := p.SelectAction(obs)
			p.Store(obs, a, 1.0, true, logProb, value)
		}
		p.Update(0)
	}

	v := p.Value(obs)
	if math.Abs(v-1.0) > 0.2 {
		t.Errorf("Critic value = %f, want close to 1.0", v)
	}
}
