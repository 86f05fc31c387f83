package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/preich21/reinforcement-learning-learning/internal/config"
	"github.com/preich21/reinforcement-learning-learning/internal/env"
	"github.com/preich21/reinforcement-learning-learning/internal/rl"
	"github.com/preich21/reinforcement-learning-learning/internal/storage"
)

var (
	flagAlgo            string
	flagTimesteps       int
	flagTrainConfig     string
	flagCheckpoint      string
	flagCheckpointEvery int
	flagLogEvery        int
)

var trainCmd = &cobra.Command{
	Use:   "train <game>",
	Short: "Train an RL agent on a game",
	Long: `Train a reinforcement learning agent on the specified game.

The agent sees the same game the 'play' command runs, through a fixed
observation and reward scheme. Training runs headless; progress is logged
and the learned policy is saved as a checkpoint archive you can replay
with 'arcade watch'.

Algorithms:
  dqn - Deep Q-Network with a replay buffer and target network
  ppo - Proximal Policy Optimization with clipped surrogate objective

Ctrl+C stops training early; the checkpoint is still written.

Examples:
  arcade train flappy
  arcade train flappy --algo ppo --timesteps 200000
  arcade train dino --algo dqn --checkpoint ./dino.zip
  arcade train flappy --train-config ./my-train.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runTrain,
}

func init() {
	trainCmd.Flags().StringVar(&flagAlgo, "algo", "dqn", "Training algorithm: dqn or ppo")
	trainCmd.Flags().IntVar(&flagTimesteps, "timesteps", 100000, "Total environment steps to train for")
	trainCmd.Flags().StringVar(&flagTrainConfig, "train-config", "", "Path to custom training hyperparameter YAML")
	trainCmd.Flags().StringVar(&flagCheckpoint, "checkpoint", "", "Checkpoint output path (default: ~/.arcade/models/<algo>_<game>.zip)")
	trainCmd.Flags().IntVar(&flagCheckpointEvery, "checkpoint-every", 0, "Steps between periodic checkpoint saves (0 = final only)")
	trainCmd.Flags().IntVar(&flagLogEvery, "log-every", 10, "Episodes between progress log lines")
}

func runTrain(cmd *cobra.Command, args []string) {
	gameID := args[0]
	algo := strings.ToLower(flagAlgo)

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "arcade-train",
	})

	e, err := env.New(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Trainable games: flappy, dino")
		os.Exit(1)
	}

	trainCfg, err := config.LoadTrain(flagTrainConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading training config: %v\n", err)
		os.Exit(1)
	}

	checkpointPath := flagCheckpoint
	if checkpointPath == "" {
		checkpointPath, err = defaultCheckpointPath(algo, gameID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	trainer := rl.NewTrainer(e, trainCfg, rl.TrainOptions{
		Algo:            algo,
		Timesteps:       flagTimesteps,
		Seed:            seed,
		CheckpointPath:  checkpointPath,
		CheckpointEvery: flagCheckpointEvery,
		LogEvery:        flagLogEvery,
	}, logger)

	// Ctrl+C cancels the context; the trainer saves and returns a partial result.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := trainer.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Training failed: %v\n", err)
		os.Exit(1)
	}

	// Record the run so the scoreboard and future comparisons can see it.
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open database, run not recorded", "err", err)
	} else {
		_, saveErr := store.SaveTrainingRun(storage.TrainingRun{
			RunID:          result.RunID,
			GameID:         result.GameID,
			Algo:           result.Algo,
			Timesteps:      result.Timesteps,
			Episodes:       result.Episodes,
			MeanReturn:     result.MeanReturn,
			BestReturn:     result.BestReturn,
			CheckpointPath: result.CheckpointPath,
			DurationSecs:   int(result.Duration.Seconds()),
		})
		if saveErr != nil {
			logger.Warn("could not record training run", "err", saveErr)
		}
		store.Close()
	}

	fmt.Printf("Training complete: %d steps, %d episodes\n", result.Timesteps, result.Episodes)
	fmt.Printf("Mean return: %.2f  Best return: %.2f\n", result.MeanReturn, result.BestReturn)
	fmt.Printf("Checkpoint:  %s\n", result.CheckpointPath)
	fmt.Printf("Watch it play with: arcade watch %s --checkpoint %s\n", gameID, result.CheckpointPath)
}

// defaultCheckpointPath builds ~/.arcade/models/<algo>_<game>.zip.
func defaultCheckpointPath(algo, gameID string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot resolve home directory: %w", err)
	}
	return filepath.Join(home, ".arcade", "models", fmt.Sprintf("%s_%s.zip", algo, gameID)), nil
}
