package rl

// Policy maps an observation to a discrete action. Playback drivers use
// this to pilot a game from a trained model without knowing which algorithm
// produced it.
type Policy interface {
	SelectAction(obs []float64) int
}

// GreedyQPolicy picks the action with the highest Q-value.
type GreedyQPolicy struct {
	net *MLP
}

// NewGreedyQPolicy wraps a Q-network in a greedy policy.
func NewGreedyQPolicy(net *MLP) *GreedyQPolicy {
	return &GreedyQPolicy{net: net}
}

func (p *GreedyQPolicy) SelectAction(obs []float64) int {
	return Argmax(p.net.Forward(obs))
}

// ActorPolicy picks the most probable action under a policy network's
// softmax distribution. Used for deterministic playback of PPO models.
type ActorPolicy struct {
	net *MLP
}

// NewActorPolicy wraps an actor network in a deterministic policy.
func NewActorPolicy(net *MLP) *ActorPolicy {
	return &ActorPolicy{net: net}
}

func (p *ActorPolicy) SelectAction(obs []float64) int {
	return Argmax(p.net.Forward(obs))
}
