package rl

import (
	"math"
	"math/rand"

	"github.com/preich21/reinforcement-learning-learning/internal/config"
)

// PPO is a Proximal Policy Optimization learner with separate actor and
// critic networks, generalized advantage estimation, and the clipped
// surrogate objective. Rollouts are collected on-policy and consumed in
// shuffled minibatches over several epochs.
type PPO struct {
	cfg         config.PPOConfig
	actor       *MLP
	critic      *MLP
	actorGrads  *Gradients
	criticGrads *Gradients
	rng         *rand.Rand

	obsSize    int
	numActions int

	// Rollout storage, cleared after each update
	obs      [][]float64
	actions  []int
	rewards  []float64
	dones    []bool
	logProbs []float64
	values   []float64
}

// NewPPO creates a PPO learner for the given observation and action sizes.
func NewPPO(cfg config.PPOConfig, obsSize, numActions int, seed int64) *PPO {
	rng := rand.New(rand.NewSource(seed))

	actorSizes := make([]int, 0, len(cfg.NetArch)+2)
	actorSizes = append(actorSizes, obsSize)
	actorSizes = append(actorSizes, cfg.NetArch...)
	actorSizes = append(actorSizes, numActions)

	criticSizes := make([]int, 0, len(cfg.NetArch)+2)
	criticSizes = append(criticSizes, obsSize)
	criticSizes = append(criticSizes, cfg.NetArch...)
	criticSizes = append(criticSizes, 1)

	actor := NewMLP(actorSizes, rng)
	critic := NewMLP(criticSizes, rng)

	return &PPO{
		cfg:         cfg,
		actor:       actor,
		critic:      critic,
		actorGrads:  actor.NewGradients(),
		criticGrads: critic.NewGradients(),
		rng:         rng,
		obsSize:     obsSize,
		numActions:  numActions,
	}
}

// SelectAction samples an action from the actor's softmax distribution and
// returns it with its log-probability and the critic's value estimate.
func (p *PPO) SelectAction(obs []float64) (action int, logProb, value float64) {
	probs := Softmax(p.actor.Forward(obs))

	r := p.rng.Float64()
	cum := 0.0
	action = len(probs) - 1
	for i, pr := range probs {
		cum += pr
		if r < cum {
			action = i
			break
		}
	}

	logProb = math.Log(probs[action] + 1e-10)
	value = p.critic.Forward(obs)[0]
	return action, logProb, value
}

// Store appends one transition to the current rollout.
func (p *PPO) Store(obs []float64, action int, reward float64, done bool, logProb, value float64) {
	p.obs = append(p.obs, obs)
	p.actions = append(p.actions, action)
	p.rewards = append(p.rewards, reward)
	p.dones = append(p.dones, done)
	p.logProbs = append(p.logProbs, logProb)
	p.values = append(p.values, value)
}

// StoreTruncated appends a transition that ended an episode at a step limit
// rather than a terminal state. The cutoff is not a real terminal, so the
// discounted value of the next observation is folded into the reward before
// the episode boundary is recorded; advantage estimation then sees the same
// return it would have bootstrapped.
func (p *PPO) StoreTruncated(obs []float64, action int, reward float64, logProb, value float64, nextObs []float64) {
	p.Store(obs, action, reward+p.cfg.Gamma*p.Value(nextObs), true, logProb, value)
}

// RolloutFull reports whether enough steps have been collected for an update.
func (p *PPO) RolloutFull() bool {
	return len(p.obs) >= p.cfg.RolloutSteps
}

// Update consumes the collected rollout and runs the configured number of
// optimization epochs. lastValue is the critic's estimate for the state
// following the final transition (0 if that state was terminal). Returns
// the mean clipped surrogate loss of the final epoch.
func (p *PPO) Update(lastValue float64) float64 {
	n := len(p.obs)
	if n == 0 {
		return 0
	}

	advantages, returns := p.computeGAE(lastValue)

	// Normalize advantages across the rollout
	mean, std := 0.0, 0.0
	for _, a := range advantages {
		mean += a
	}
	mean /= float64(n)
	for _, a := range advantages {
		std += (a - mean) * (a - mean)
	}
	std = math.Sqrt(std/float64(n)) + 1e-8
	for i := range advantages {
		advantages[i] = (advantages[i] - mean) / std
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	lastLoss := 0.0
	for epoch := 0; epoch < p.cfg.Epochs; epoch++ {
		p.rng.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		epochLoss := 0.0
		for start := 0; start < n; start += p.cfg.BatchSize {
			end := start + p.cfg.BatchSize
			if end > n {
				end = n
			}
			epochLoss += p.updateMinibatch(indices[start:end], advantages, returns)
		}
		lastLoss = epochLoss / float64((n+p.cfg.BatchSize-1)/p.cfg.BatchSize)
	}

	// Rollout is consumed
	p.obs = p.obs[:0]
	p.actions = p.actions[:0]
	p.rewards = p.rewards[:0]
	p.dones = p.dones[:0]
	p.logProbs = p.logProbs[:0]
	p.values = p.values[:0]

	return lastLoss
}

// computeGAE returns per-step advantages and value targets.
func (p *PPO) computeGAE(lastValue float64) (advantages, returns []float64) {
	n := len(p.obs)
	advantages = make([]float64, n)
	returns = make([]float64, n)

	gae := 0.0
	for t := n - 1; t >= 0; t-- {
		nextValue := lastValue
		nextNonTerminal := 1.0
		if t < n-1 {
			nextValue = p.values[t+1]
		}
		if p.dones[t] {
			nextNonTerminal = 0
		}

		delta := p.rewards[t] + p.cfg.Gamma*nextValue*nextNonTerminal - p.values[t]
		gae = delta + p.cfg.Gamma*p.cfg.GAELambda*nextNonTerminal*gae
		advantages[t] = gae
		returns[t] = advantages[t] + p.values[t]
	}

	return advantages, returns
}

// updateMinibatch runs one gradient step on a minibatch and returns its
// mean policy loss.
func (p *PPO) updateMinibatch(batch []int, advantages, returns []float64) float64 {
	totalLoss := 0.0

	for _, i := range batch {
		obs := p.obs[i]
		action := p.actions[i]
		adv := advantages[i]

		logits := p.actor.Forward(obs)
		probs := Softmax(logits)
		newLogProb := math.Log(probs[action] + 1e-10)
		ratio := math.Exp(newLogProb - p.logProbs[i])

		// Clipped surrogate: when the ratio is outside the clip range on
		// the side the advantage pushes toward, the objective is constant
		// and the policy gradient vanishes.
		clipped := (adv >= 0 && ratio > 1+p.cfg.ClipRange) ||
			(adv < 0 && ratio < 1-p.cfg.ClipRange)

		surr := ratio * adv
		clippedRatio := math.Max(1-p.cfg.ClipRange, math.Min(1+p.cfg.ClipRange, ratio))
		totalLoss += -math.Min(surr, clippedRatio*adv)

		outGrad := make([]float64, p.numActions)
		if !clipped {
			// d(-ratio*adv)/dlogits via dlogp/dlogits = onehot - probs
			for k := range outGrad {
				indicator := 0.0
				if k == action {
					indicator = 1
				}
				outGrad[k] = -adv * ratio * (indicator - probs[k])
			}
		}

		// Entropy bonus pushes the distribution away from collapse
		if p.cfg.EntropyCoef > 0 {
			entropy := 0.0
			for _, pr := range probs {
				if pr > 0 {
					entropy -= pr * math.Log(pr)
				}
			}
			for k, pr := range probs {
				if pr > 0 {
					outGrad[k] += p.cfg.EntropyCoef * pr * (math.Log(pr) + entropy)
				}
			}
		}

		p.actor.Accumulate(p.actorGrads, obs, outGrad)

		// Critic regression toward the GAE returns
		v := p.critic.Forward(obs)[0]
		p.critic.Accumulate(p.criticGrads, obs, []float64{p.cfg.ValueCoef * 2 * (v - returns[i])})
	}

	p.actor.Step(p.actorGrads, p.cfg.LearningRate, len(batch))
	p.critic.Step(p.criticGrads, p.cfg.LearningRate, len(batch))

	return totalLoss / float64(len(batch))
}

// Value returns the critic's estimate for an observation.
func (p *PPO) Value(obs []float64) float64 {
	return p.critic.Forward(obs)[0]
}

// Policy returns the deterministic argmax policy over the actor.
func (p *PPO) Policy() Policy {
	return NewActorPolicy(p.actor)
}

// Networks exposes the learner's networks for checkpointing.
func (p *PPO) Networks() map[string]*MLP {
	return map[string]*MLP{"actor": p.actor, "critic": p.critic}
}
