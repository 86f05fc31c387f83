package rl

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/preich21/reinforcement-learning-learning/internal/config"
	"github.com/preich21/reinforcement-learning-learning/internal/env"
)

// TrainOptions configures a training run.
type TrainOptions struct {
	Algo            string // "dqn" or "ppo"
	Timesteps       int    // Total environment steps
	Seed            int64  // Base seed; episode i resets with Seed+i
	CheckpointPath  string // Destination archive (.zip)
	CheckpointEvery int    // Steps between periodic saves, 0 for final only
	LogEvery        int    // Episodes between progress log lines
}

// Result summarizes a completed (or interrupted) training run.
type Result struct {
	RunID          string
	GameID         string
	Algo           string
	Timesteps      int
	Episodes       int
	MeanReturn     float64 // Mean over the last returnWindow episodes
	BestReturn     float64
	CheckpointPath string
	Duration       time.Duration
}

// returnWindow is how many recent episode returns feed the running mean.
const returnWindow = 100

// Trainer drives a learner against an environment until the step budget is
// exhausted or the context is canceled. Progress goes to the logger;
// checkpoints are written periodically and on exit.
type Trainer struct {
	env    env.Env
	cfg    config.TrainConfig
	opts   TrainOptions
	logger *log.Logger
}

// NewTrainer creates a trainer. A nil logger falls back to the default.
func NewTrainer(e env.Env, cfg config.TrainConfig, opts TrainOptions, logger *log.Logger) *Trainer {
	if logger == nil {
		logger = log.Default()
	}
	if opts.LogEvery <= 0 {
		opts.LogEvery = 10
	}
	return &Trainer{env: e, cfg: cfg, opts: opts, logger: logger}
}

// Run executes the training loop. Cancellation via ctx stops training
// cleanly: the checkpoint is still written and the partial result returned.
func (t *Trainer) Run(ctx context.Context) (Result, error) {
	res := Result{
		RunID:          uuid.NewString(),
		GameID:         t.env.GameID(),
		Algo:           t.opts.Algo,
		CheckpointPath: t.opts.CheckpointPath,
	}

	t.logger.Info("starting training",
		"run_id", res.RunID,
		"game", res.GameID,
		"algo", t.opts.Algo,
		"timesteps", t.opts.Timesteps,
		"seed", t.opts.Seed)

	start := time.Now()
	var err error
	switch t.opts.Algo {
	case "dqn":
		err = t.runDQN(ctx, &res)
	case "ppo":
		err = t.runPPO(ctx, &res)
	default:
		return res, fmt.Errorf("rl: unknown algorithm %q", t.opts.Algo)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}

	t.logger.Info("training finished",
		"run_id", res.RunID,
		"episodes", res.Episodes,
		"timesteps", res.Timesteps,
		"mean_return", fmt.Sprintf("%.2f", res.MeanReturn),
		"best_return", fmt.Sprintf("%.2f", res.BestReturn),
		"duration", res.Duration.Round(time.Second))

	return res, nil
}

func (t *Trainer) runDQN(ctx context.Context, res *Result) error {
	agent := NewDQN(t.cfg.DQN, t.env.ObservationSize(), t.env.NumActions(), t.opts.Timesteps, t.opts.Seed)

	returns := newReturnTracker(returnWindow)
	obs := t.env.Reset(t.opts.Seed)
	epReturn := 0.0

	for step := 0; step < t.opts.Timesteps; step++ {
		select {
		case <-ctx.Done():
			t.logger.Warn("training interrupted", "step", step)
			return t.finish(res, agent.Networks(), step, returns)
		default:
		}

		action := agent.SelectAction(obs)
		tr, err := t.env.Step(action)
		if err != nil {
			return fmt.Errorf("env step: %w", err)
		}

		agent.Observe(Transition{
			Obs:     obs,
			Action:  action,
			Reward:  tr.Reward,
			NextObs: tr.Obs,
			Done:    tr.Done,
		})
		obs = tr.Obs
		epReturn += tr.Reward

		if tr.Done || tr.Truncated {
			returns.add(epReturn)
			res.Episodes++
			if res.Episodes%t.opts.LogEvery == 0 {
				t.logger.Info("progress",
					"episode", res.Episodes,
					"step", step+1,
					"mean_return", fmt.Sprintf("%.2f", returns.mean()),
					"epsilon", fmt.Sprintf("%.3f", agent.Epsilon()))
			}
			epReturn = 0
			obs = t.env.Reset(t.opts.Seed + int64(res.Episodes))
		}

		if t.opts.CheckpointEvery > 0 && (step+1)%t.opts.CheckpointEvery == 0 {
			if err := t.save(res, agent.Networks(), step+1); err != nil {
				return err
			}
		}
	}

	return t.finish(res, agent.Networks(), t.opts.Timesteps, returns)
}

func (t *Trainer) runPPO(ctx context.Context, res *Result) error {
	agent := NewPPO(t.cfg.PPO, t.env.ObservationSize(), t.env.NumActions(), t.opts.Seed)

	returns := newReturnTracker(returnWindow)
	obs := t.env.Reset(t.opts.Seed)
	epReturn := 0.0
	done := false

	for step := 0; step < t.opts.Timesteps; step++ {
		select {
		case <-ctx.Done():
			t.logger.Warn("training interrupted", "step", step)
			return t.finish(res, agent.Networks(), step, returns)
		default:
		}

		action, logProb, value := agent.SelectAction(obs)
		tr, err := t.env.Step(action)
		if err != nil {
			return fmt.Errorf("env step: %w", err)
		}

		done = tr.Done || tr.Truncated
		if tr.Truncated && !tr.Done {
			agent.StoreTruncated(obs, action, tr.Reward, logProb, value, tr.Obs)
		} else {
			agent.Store(obs, action, tr.Reward, tr.Done, logProb, value)
		}
		obs = tr.Obs
		epReturn += tr.Reward

		if done {
			returns.add(epReturn)
			res.Episodes++
			if res.Episodes%t.opts.LogEvery == 0 {
				t.logger.Info("progress",
					"episode", res.Episodes,
					"step", step+1,
					"mean_return", fmt.Sprintf("%.2f", returns.mean()))
			}
			epReturn = 0
			obs = t.env.Reset(t.opts.Seed + int64(res.Episodes))
		}

		if agent.RolloutFull() {
			lastValue := 0.0
			if !done {
				lastValue = agent.Value(obs)
			}
			loss := agent.Update(lastValue)
			t.logger.Debug("rollout update", "step", step+1, "policy_loss", fmt.Sprintf("%.4f", loss))
		}

		if t.opts.CheckpointEvery > 0 && (step+1)%t.opts.CheckpointEvery == 0 {
			if err := t.save(res, agent.Networks(), step+1); err != nil {
				return err
			}
		}
	}

	return t.finish(res, agent.Networks(), t.opts.Timesteps, returns)
}

// finish records aggregate stats and writes the final checkpoint.
func (t *Trainer) finish(res *Result, nets map[string]*MLP, steps int, returns *returnTracker) error {
	res.Timesteps = steps
	res.MeanReturn = returns.mean()
	res.BestReturn = returns.best
	return t.save(res, nets, steps)
}

func (t *Trainer) save(res *Result, nets map[string]*MLP, steps int) error {
	m := Manifest{
		Algo:       t.opts.Algo,
		GameID:     res.GameID,
		ObsSize:    t.env.ObservationSize(),
		NumActions: t.env.NumActions(),
		Timesteps:  steps,
		CreatedAt:  time.Now().UTC(),
	}
	if err := SaveCheckpoint(t.opts.CheckpointPath, m, nets); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	t.logger.Info("checkpoint saved", "path", t.opts.CheckpointPath, "steps", steps)
	return nil
}

// returnTracker keeps a sliding window of episode returns plus the best
// return seen overall.
type returnTracker struct {
	window []float64
	next   int
	size   int
	best   float64
	any    bool
}

func newReturnTracker(n int) *returnTracker {
	return &returnTracker{window: make([]float64, n)}
}

func (r *returnTracker) add(v float64) {
	r.window[r.next] = v
	r.next = (r.next + 1) % len(r.window)
	if r.size < len(r.window) {
		r.size++
	}
	if !r.any || v > r.best {
		r.best = v
		r.any = true
	}
}

func (r *returnTracker) mean() float64 {
	if r.size == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < r.size; i++ {
		sum += r.window[i]
	}
	return sum / float64(r.size)
}
