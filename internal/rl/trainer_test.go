package rl

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/preich21/reinforcement-learning-learning/internal/config"
	"github.com/preich21/reinforcement-learning-learning/internal/env"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func smallTrainConfig() config.TrainConfig {
	cfg := config.DefaultTrainConfig()
	cfg.DQN.NetArch = []int{8}
	cfg.DQN.LearningStarts = 32
	cfg.DQN.BatchSize = 8
	cfg.DQN.BufferSize = 256
	cfg.PPO.NetArch = []int{8}
	cfg.PPO.RolloutSteps = 64
	cfg.PPO.BatchSize = 16
	cfg.PPO.Epochs = 2
	return cfg
}

func TestTrainerDQNRun(t *testing.T) {
	e := env.NewFlappy()
	path := filepath.Join(t.TempDir(), "dqn_flappy.zip")

	tr := NewTrainer(e, smallTrainConfig(), TrainOptions{
		Algo:           "dqn",
		Timesteps:      300,
		Seed:           1,
		CheckpointPath: path,
	}, quietLogger())

	res, err := tr.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Timesteps != 300 {
		t.Errorf("Timesteps = %d, want 300", res.Timesteps)
	}
	if res.Episodes == 0 {
		t.Error("Expected at least one completed episode in 300 steps")
	}
	if res.RunID == "" {
		t.Error("Result should carry a run ID")
	}
	if res.GameID != "flappy" {
		t.Errorf("GameID = %q, want flappy", res.GameID)
	}

	// The final checkpoint must exist and load back as a usable policy
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Checkpoint not written: %v", err)
	}
	policy, m, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}
	if m.GameID != "flappy" || m.Algo != "dqn" {
		t.Errorf("Manifest mismatch: %+v", m)
	}
	obs := e.Reset(1)
	if a := policy.SelectAction(obs); a < 0 || a >= e.NumActions() {
		t.Errorf("Policy action %d out of range", a)
	}
}

func TestTrainerPPORun(t *testing.T) {
	e := env.NewFlappy()
	path := filepath.Join(t.TempDir(), "ppo_flappy.zip")

	tr := NewTrainer(e, smallTrainConfig(), TrainOptions{
		Algo:           "ppo",
		Timesteps:      200,
		Seed:           2,
		CheckpointPath: path,
	}, quietLogger())

	res, err := tr.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Timesteps != 200 {
		t.Errorf("Timesteps = %d, want 200", res.Timesteps)
	}

	if _, _, err := LoadCheckpoint(path); err != nil {
		t.Fatalf("Final checkpoint unreadable: %v", err)
	}
}

func TestTrainerUnknownAlgo(t *testing.T) {
	e := env.NewFlappy()
	tr := NewTrainer(e, smallTrainConfig(), TrainOptions{
		Algo:           "sarsa",
		Timesteps:      10,
		CheckpointPath: filepath.Join(t.TempDir(), "x.zip"),
	}, quietLogger())

	if _, err := tr.Run(context.Background()); err == nil {
		t.Error("Expected error for unknown algorithm")
	}
}

func TestTrainerCancellation(t *testing.T) {
	e := env.NewFlappy()
	path := filepath.Join(t.TempDir(), "dqn_flappy.zip")

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel before the first step

	tr := NewTrainer(e, smallTrainConfig(), TrainOptions{
		Algo:           "dqn",
		Timesteps:      10000,
		Seed:           1,
		CheckpointPath: path,
	}, quietLogger())

	res, err := tr.Run(ctx)
	if err != nil {
		t.Fatalf("Run after cancel: %v", err)
	}
	if res.Timesteps != 0 {
		t.Errorf("Canceled run reported %d timesteps, want 0", res.Timesteps)
	}

	// Even an interrupted run leaves a loadable checkpoint
	if _, _, err := LoadCheckpoint(path); err != nil {
		t.Errorf("Checkpoint after cancel unreadable: %v", err)
	}
}
