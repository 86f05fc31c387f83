package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/preich21/reinforcement-learning-learning/internal/env"
	"github.com/preich21/reinforcement-learning-learning/internal/platform/tui"
	"github.com/preich21/reinforcement-learning-learning/internal/rl"
)

var (
	flagWatchAlgo       string
	flagWatchCheckpoint string
)

var watchCmd = &cobra.Command{
	Use:   "watch <game>",
	Short: "Watch a trained agent play a game",
	Long: `Load a trained policy from a checkpoint and watch it play.

The agent plays greedily (no exploration) on the same environment it was
trained on. Without --checkpoint, the default path written by
'arcade train' is used.

Controls:
  P          - Pause
  R          - Restart episode
  Q/Ctrl+C   - Quit

Examples:
  arcade watch flappy
  arcade watch flappy --algo ppo
  arcade watch dino --checkpoint ./dino.zip --fps 30`,
	Args: cobra.ExactArgs(1),
	Run:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&flagWatchAlgo, "algo", "dqn", "Algorithm of the default checkpoint: dqn or ppo")
	watchCmd.Flags().StringVar(&flagWatchCheckpoint, "checkpoint", "", "Path to checkpoint archive (default: ~/.arcade/models/<algo>_<game>.zip)")
}

func runWatch(_ *cobra.Command, args []string) {
	gameID := args[0]

	checkpointPath := flagWatchCheckpoint
	if checkpointPath == "" {
		path, err := defaultCheckpointPath(strings.ToLower(flagWatchAlgo), gameID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		checkpointPath = path
	}

	if err := watchPolicy(gameID, checkpointPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Train one first: arcade train %s\n", gameID)
		os.Exit(1)
	}
}

// watchPolicy loads a checkpoint, validates it against the game's
// environment, and runs agent playback in the TUI.
func watchPolicy(gameID, checkpointPath string) error {
	policy, manifest, err := rl.LoadPolicy(checkpointPath)
	if err != nil {
		return fmt.Errorf("loading checkpoint: %w", err)
	}

	// The checkpoint knows which game it was trained on; a mismatched
	// observation layout would make the policy act on garbage.
	if manifest.GameID != gameID {
		return fmt.Errorf("checkpoint was trained on %q, not %q", manifest.GameID, gameID)
	}

	e, err := env.New(gameID)
	if err != nil {
		return err
	}

	if manifest.ObsSize != e.ObservationSize() || manifest.NumActions != e.NumActions() {
		return fmt.Errorf("checkpoint dimensions (%d obs, %d actions) do not match environment (%d obs, %d actions)",
			manifest.ObsSize, manifest.NumActions, e.ObservationSize(), e.NumActions())
	}

	vis, ok := e.(env.Visualizer)
	if !ok {
		return fmt.Errorf("game %q does not support watching", gameID)
	}

	return tui.RunAgent(vis, policy, flagFPS, flagSeed)
}

// newestDefaultCheckpoint returns the most recently written default
// checkpoint for a game, across both algorithms.
func newestDefaultCheckpoint(gameID string) (string, error) {
	var newest string
	var newestTime time.Time
	for _, algo := range []string{"dqn", "ppo"} {
		path, err := defaultCheckpointPath(algo, gameID)
		if err != nil {
			return "", err
		}
		info, statErr := os.Stat(path)
		if statErr != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestTime) {
			newest = path
			newestTime = info.ModTime()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("no checkpoint found for %s", gameID)
	}
	return newest, nil
}
