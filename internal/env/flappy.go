package env

import (
	"github.com/preich21/reinforcement-learning-learning/internal/config"
	"github.com/preich21/reinforcement-learning-learning/internal/core"
	"github.com/preich21/reinforcement-learning-learning/internal/games/flappy"
)

// FlappyObsSize is the length of the flappy observation vector:
// player height, vertical velocity, distance to the next pipe, and the
// vertical center of its gap, all normalized.
const FlappyObsSize = 4

// FlappyEnv adapts the Flappy Bird game into an RL environment with a
// compact 4-float observation.
type FlappyEnv struct {
	game    *flappy.Game
	runtime core.RuntimeConfig
	done    bool
}

// NewFlappy creates a flappy environment with difficulty progression
// disabled so the dynamics stay identical across an episode.
func NewFlappy() *FlappyEnv {
	cfg, err := config.LoadFlappy("")
	if err != nil {
		cfg = config.DefaultFlappyConfig()
	}
	cfg.Difficulty.Enabled = false
	cfg.Difficulty.Progression.Type = "none"

	g := flappy.New()
	g.SetConfig(cfg)

	return &FlappyEnv{
		game:    g,
		runtime: core.DefaultConfig(),
		done:    true,
	}
}

func (e *FlappyEnv) GameID() string       { return e.game.ID() }
func (e *FlappyEnv) ObservationSize() int { return FlappyObsSize }
func (e *FlappyEnv) NumActions() int      { return NumActions }

// Render draws the underlying game for playback.
func (e *FlappyEnv) Render(dst *core.Screen) { e.game.Render(dst) }

// ScreenSize returns the environment's native screen dimensions.
func (e *FlappyEnv) ScreenSize() (int, int) { return e.runtime.ScreenW, e.runtime.ScreenH }

// Reset starts a new episode and returns the initial observation.
func (e *FlappyEnv) Reset(seed int64) []float64 {
	e.runtime.Seed = seed
	e.game.Reset(e.runtime)
	e.done = false
	return e.observe()
}

// Step applies an action and advances the game one tick.
func (e *FlappyEnv) Step(action int) (Transition, error) {
	if e.done {
		return Transition{}, ErrEpisodeOver
	}

	in := core.NewInputFrame()
	if action == ActionJump {
		in.Set(core.ActionJump)
	}

	result := e.game.Step(in)
	rewards := e.game.Config().Rewards

	reward := rewards.Alive + rewards.ObstaclePass*float64(result.Passed)
	if result.State.GameOver {
		reward += rewards.Death
		e.done = true
	}

	return Transition{
		Obs:    e.observe(),
		Reward: reward,
		Done:   result.State.GameOver,
		Info: Info{
			Score:  result.State.Score,
			Passed: result.Passed,
		},
	}, nil
}

// observe encodes the game snapshot as a normalized feature vector.
func (e *FlappyEnv) observe() []float64 {
	snap := e.game.Snapshot()
	cfg := e.game.Config()

	screenH := float64(snap.ScreenH)
	screenW := float64(snap.ScreenW)

	yNorm := clamp(snap.PlayerY/screenH, 0, 1)
	velNorm := clamp(snap.PlayerVel/cfg.Physics.MaxFallSpeed, -1, 1)

	// Nearest pipe the player has not yet cleared
	pipeDx := 1.0
	gapCenter := 0.5
	playerRight := snap.PlayerX + cfg.Player.Width
	for _, p := range snap.Pipes {
		if p.X+cfg.Obstacles.PipeWidth < playerRight {
			continue
		}
		pipeDx = clamp(float64(p.X-snap.PlayerX)/screenW, 0, 1)
		gapCenter = clamp((float64(p.GapY)+float64(p.GapHeight)/2)/screenH, 0, 1)
		break
	}

	return []float64{yNorm, velNorm, pipeDx, gapCenter}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
