package env

import (
	"errors"
	"testing"
)

func TestFlappyObservationShape(t *testing.T) {
	e := NewFlappy()
	obs := e.Reset(7)

	if len(obs) != FlappyObsSize {
		t.Fatalf("Expected observation of length %d, got %d", FlappyObsSize, len(obs))
	}
	if e.ObservationSize() != FlappyObsSize {
		t.Errorf("ObservationSize() = %d, want %d", e.ObservationSize(), FlappyObsSize)
	}
	if e.NumActions() != NumActions {
		t.Errorf("NumActions() = %d, want %d", e.NumActions(), NumActions)
	}

	// Height, pipe distance, and gap center are normalized to [0,1];
	// velocity to [-1,1]
	for i, v := range obs {
		lo := 0.0
		if i == 1 {
			lo = -1.0
		}
		if v < lo || v > 1.0 {
			t.Errorf("Observation[%d] = %f out of range [%f, 1]", i, v, lo)
		}
	}
}

func TestDinoObservationShape(t *testing.T) {
	e := NewDino()
	obs := e.Reset(7)

	if len(obs) != DinoObsSize {
		t.Fatalf("Expected observation of length %d, got %d", DinoObsSize, len(obs))
	}

	// The frame is binary and the ground plus player must occupy some cells
	occupied := 0
	for i, v := range obs {
		if v != 0 && v != 1 {
			t.Fatalf("Observation[%d] = %f, expected binary values", i, v)
		}
		if v == 1 {
			occupied++
		}
	}
	if occupied < DinoFrameW {
		t.Errorf("Expected at least %d occupied cells (ground line), got %d", DinoFrameW, occupied)
	}
}

func TestEnvDeterminism(t *testing.T) {
	for _, gameID := range []string{"flappy", "dino"} {
		t.Run(gameID, func(t *testing.T) {
			run := func() ([]float64, float64) {
				e, err := New(gameID)
				if err != nil {
					t.Fatalf("New(%q): %v", gameID, err)
				}
				e.Reset(123)
				var lastObs []float64
				totalReward := 0.0
				for i := 0; i < 150; i++ {
					action := ActionNoOp
					if i%18 == 0 {
						action = ActionJump
					}
					tr, err := e.Step(action)
					if err != nil {
						break
					}
					lastObs = tr.Obs
					totalReward += tr.Reward
					if tr.Done || tr.Truncated {
						break
					}
				}
				return lastObs, totalReward
			}

			obs1, ret1 := run()
			obs2, ret2 := run()

			if ret1 != ret2 {
				t.Errorf("Returns differ across identical runs: %f vs %f", ret1, ret2)
			}
			if len(obs1) != len(obs2) {
				t.Fatalf("Observation lengths differ: %d vs %d", len(obs1), len(obs2))
			}
			for i := range obs1 {
				if obs1[i] != obs2[i] {
					t.Fatalf("Observations differ at %d: %f vs %f", i, obs1[i], obs2[i])
				}
			}
		})
	}
}

func TestStepAfterEpisodeOver(t *testing.T) {
	e := NewFlappy()
	e.Reset(1)

	// Never jump so the bird falls to the ground
	var done bool
	for i := 0; i < 500; i++ {
		tr, err := e.Step(ActionNoOp)
		if err != nil {
			t.Fatalf("Step failed mid-episode: %v", err)
		}
		if tr.Done {
			done = true
			break
		}
	}
	if !done {
		t.Fatal("Episode never terminated without jumping")
	}

	if _, err := e.Step(ActionNoOp); !errors.Is(err, ErrEpisodeOver) {
		t.Errorf("Step after terminal state: got %v, want ErrEpisodeOver", err)
	}

	// Reset clears the terminal state
	e.Reset(1)
	if _, err := e.Step(ActionNoOp); err != nil {
		t.Errorf("Step after Reset failed: %v", err)
	}
}

func TestStepBeforeReset(t *testing.T) {
	e := NewDino()
	if _, err := e.Step(ActionNoOp); !errors.Is(err, ErrEpisodeOver) {
		t.Errorf("Step before first Reset: got %v, want ErrEpisodeOver", err)
	}
}

func TestFlappyAliveReward(t *testing.T) {
	e := NewFlappy()
	e.Reset(42)

	tr, err := e.Step(ActionJump)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if tr.Done {
		t.Fatal("Episode ended on the first step")
	}

	rewards := e.game.Config().Rewards
	want := rewards.Alive + rewards.ObstaclePass*float64(tr.Info.Passed)
	if tr.Reward != want {
		t.Errorf("Reward = %f, want %f", tr.Reward, want)
	}
}

func TestDinoTruncation(t *testing.T) {
	e := NewDino()
	e.maxSteps = 10 // Shorten the limit for the test
	e.Reset(5)

	var last Transition
	for i := 0; i < 50; i++ {
		tr, err := e.Step(ActionJump)
		if err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
		last = tr
		if tr.Done || tr.Truncated {
			break
		}
	}

	if last.Done {
		t.Fatal("Episode terminated before reaching the step limit")
	}
	if !last.Truncated {
		t.Error("Episode should be truncated at the step limit")
	}

	// Truncation still ends the episode for stepping purposes
	if _, err := e.Step(ActionNoOp); !errors.Is(err, ErrEpisodeOver) {
		t.Errorf("Step after truncation: got %v, want ErrEpisodeOver", err)
	}
}

func TestNewUnknownGame(t *testing.T) {
	if _, err := New("pong"); err == nil {
		t.Error("Expected error for unknown game ID")
	}
}
