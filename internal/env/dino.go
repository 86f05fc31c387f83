package env

import (
	"github.com/preich21/reinforcement-learning-learning/internal/config"
	"github.com/preich21/reinforcement-learning-learning/internal/core"
	"github.com/preich21/reinforcement-learning-learning/internal/games/dino"
)

// Frame dimensions for the dino observation. The game runs on a grid of the
// same size so world coordinates map directly onto frame pixels.
const (
	DinoFrameW = 64
	DinoFrameH = 64

	// DinoObsSize is the length of the flattened binary frame.
	DinoObsSize = DinoFrameW * DinoFrameH

	// DinoMaxSteps truncates episodes that survive this many ticks.
	DinoMaxSteps = 5000
)

// DinoEnv adapts the Dino Runner game into an RL environment with a
// flattened binary occupancy frame as the observation.
type DinoEnv struct {
	game     *dino.Game
	runtime  core.RuntimeConfig
	steps    int
	maxSteps int
	done     bool
	frame    []float64 // Reused between steps
}

// NewDino creates a dino environment with difficulty progression disabled.
// The per-tick speed ramp stays active, matching the game's own dynamics.
func NewDino() *DinoEnv {
	cfg, err := config.LoadDino("")
	if err != nil {
		cfg = config.DefaultDinoConfig()
	}
	cfg.Difficulty.Enabled = false
	cfg.Difficulty.Progression.Type = "none"

	g := dino.New()
	g.SetConfig(cfg)

	runtime := core.DefaultConfig()
	runtime.ScreenW = DinoFrameW
	runtime.ScreenH = DinoFrameH

	return &DinoEnv{
		game:     g,
		runtime:  runtime,
		maxSteps: DinoMaxSteps,
		done:     true,
		frame:    make([]float64, DinoObsSize),
	}
}

func (e *DinoEnv) GameID() string       { return e.game.ID() }
func (e *DinoEnv) ObservationSize() int { return DinoObsSize }
func (e *DinoEnv) NumActions() int      { return NumActions }

// Render draws the underlying game for playback.
func (e *DinoEnv) Render(dst *core.Screen) { e.game.Render(dst) }

// ScreenSize returns the environment's native screen dimensions.
func (e *DinoEnv) ScreenSize() (int, int) { return e.runtime.ScreenW, e.runtime.ScreenH }

// Reset starts a new episode and returns the initial observation.
func (e *DinoEnv) Reset(seed int64) []float64 {
	e.runtime.Seed = seed
	e.game.Reset(e.runtime)
	e.steps = 0
	e.done = false
	return e.observe()
}

// Step applies an action and advances the game one tick.
func (e *DinoEnv) Step(action int) (Transition, error) {
	if e.done {
		return Transition{}, ErrEpisodeOver
	}

	in := core.NewInputFrame()
	if action == ActionJump {
		in.Set(core.ActionJump)
	}

	result := e.game.Step(in)
	rewards := e.game.Config().Rewards
	e.steps++

	reward := rewards.Alive + rewards.ObstaclePass*float64(result.Passed)
	truncated := false
	if result.State.GameOver {
		reward += rewards.Death
		e.done = true
	} else if e.steps >= e.maxSteps {
		truncated = true
		e.done = true
	}

	return Transition{
		Obs:       e.observe(),
		Reward:    reward,
		Done:      result.State.GameOver,
		Truncated: truncated,
		Info: Info{
			Score:  result.State.Score,
			Passed: result.Passed,
		},
	}, nil
}

// observe rasterizes the game snapshot into a flattened binary frame.
// Occupied cells (ground, obstacles, player) are 1, empty cells 0.
func (e *DinoEnv) observe() []float64 {
	snap := e.game.Snapshot()
	cfg := e.game.Config()

	for i := range e.frame {
		e.frame[i] = 0
	}

	// Ground line
	if snap.GroundY >= 0 && snap.GroundY < DinoFrameH {
		for x := 0; x < DinoFrameW; x++ {
			e.frame[snap.GroundY*DinoFrameW+x] = 1
		}
	}

	// Obstacles
	for _, c := range snap.Cacti {
		fillRect(e.frame, c.X, snap.GroundY-c.Height, c.Width, c.Height)
	}

	// Player
	playerTop := snap.GroundY - cfg.Player.Height - int(-snap.PlayerY)
	fillRect(e.frame, snap.PlayerX, playerTop, cfg.Player.Width, cfg.Player.Height)

	// Copy so stored transitions are not aliased to the scratch buffer
	obs := make([]float64, DinoObsSize)
	copy(obs, e.frame)
	return obs
}

// fillRect marks a rectangle of frame cells as occupied, clipped to bounds.
func fillRect(frame []float64, x, y, w, h int) {
	for dy := 0; dy < h; dy++ {
		py := y + dy
		if py < 0 || py >= DinoFrameH {
			continue
		}
		for dx := 0; dx < w; dx++ {
			px := x + dx
			if px < 0 || px >= DinoFrameW {
				continue
			}
			frame[py*DinoFrameW+px] = 1
		}
	}
}
