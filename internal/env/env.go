// Package env adapts arcade games into reinforcement learning environments
// with a reset/step interface. Each environment owns a game instance, drives
// it tick by tick from discrete agent actions, encodes observations from game
// snapshots, and applies the reward scheme from the game's config.
package env

import (
	"errors"

	"github.com/preich21/reinforcement-learning-learning/internal/core"
)

// ErrEpisodeOver is returned by Step when the episode has already terminated
// and Reset has not been called.
var ErrEpisodeOver = errors.New("env: episode is over, call Reset")

// Discrete actions shared by both environments.
const (
	ActionNoOp = 0
	ActionJump = 1

	// NumActions is the size of the action space.
	NumActions = 2
)

// Info carries auxiliary per-step diagnostics that are not part of the
// observation (game score, obstacles passed this step).
type Info struct {
	Score  int
	Passed int
}

// Transition is the result of a single environment step.
type Transition struct {
	Obs       []float64
	Reward    float64
	Done      bool // Episode ended in a terminal state (collision)
	Truncated bool // Episode was cut off at the step limit
	Info      Info
}

// Env is a discrete-action reinforcement learning environment.
// Implementations are deterministic given the Reset seed and action sequence.
type Env interface {
	// GameID returns the identifier of the underlying game.
	GameID() string

	// ObservationSize returns the length of the observation vector.
	ObservationSize() int

	// NumActions returns the size of the discrete action space.
	NumActions() int

	// Reset starts a new episode with the given seed and returns the
	// initial observation.
	Reset(seed int64) []float64

	// Step applies an action, advances the game one tick, and returns the
	// resulting transition. Returns ErrEpisodeOver if called after the
	// episode has ended without an intervening Reset.
	Step(action int) (Transition, error)
}

// Visualizer extends Env for playback: the underlying game can draw itself
// into a screen buffer of the environment's native dimensions.
type Visualizer interface {
	Env
	Render(dst *core.Screen)
	ScreenSize() (w, h int)
}

// New creates an environment by game ID.
func New(gameID string) (Env, error) {
	switch gameID {
	case "flappy":
		return NewFlappy(), nil
	case "dino":
		return NewDino(), nil
	default:
		return nil, errors.New("env: no environment for game " + gameID)
	}
}
