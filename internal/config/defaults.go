package config

import (
	_ "embed"
)

//go:embed defaults/flappy.yaml
var defaultFlappyYAML []byte

//go:embed defaults/dino.yaml
var defaultDinoYAML []byte

//go:embed defaults/train.yaml
var defaultTrainYAML []byte

// DefaultFlappyConfig returns the default Flappy Bird configuration.
func DefaultFlappyConfig() FlappyConfig {
	return FlappyConfig{
		Physics: FlappyPhysics{
			Gravity:      0.25,
			JumpImpulse:  -1.8,
			MaxFallSpeed: 3.0,
			BaseSpeed:    0.8,
		},
		Obstacles: FlappyObstacles{
			PipeWidth:    5,
			PipeSpacing:  40,
			MinGapSize:   8,
			MaxGapSize:   12,
			TopMargin:    3,
			BottomMargin: 3,
		},
		Player: FlappyPlayer{
			X:      10,
			Width:  2,
			Height: 2,
		},
		Rewards: RewardConfig{
			Alive:        0.01,
			ObstaclePass: 1.0,
			Death:        0.0,
		},
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.0,
			Progression: ProgressionConfig{
				Type:  "score",
				MaxAt: 50,
			},
			Scaling: ScalingConfig{
				SpeedMultiplier:  1.0,
				GapReduction:     4,
				SpacingReduction: 15,
			},
		},
	}
}

// DefaultDinoConfig returns the default Dino Runner configuration.
func DefaultDinoConfig() DinoConfig {
	return DinoConfig{
		Physics: DinoPhysics{
			Gravity:      0.3,
			JumpImpulse:  -2.5,
			MaxFallSpeed: 4.0,
			BaseSpeed:    0.5,
			SpeedRamp:    0.001,
		},
		Obstacles: DinoObstacles{
			MinWidth:   1,
			MaxWidth:   3,
			MinHeight:  2,
			MaxHeight:  4,
			MinSpacing: 30,
			MaxSpacing: 50,
		},
		Player: DinoPlayer{
			X:            8,
			Width:        3,
			Height:       3,
			GroundOffset: 2,
		},
		Rewards: RewardConfig{
			Alive:        1.0,
			ObstaclePass: 10.0,
			Death:        -50.0,
		},
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.0,
			Progression: ProgressionConfig{
				Type:  "score",
				MaxAt: 2000,
			},
			Scaling: ScalingConfig{
				SpeedMultiplier:  2.0,
				GapReduction:     0,
				SpacingReduction: 20,
			},
		},
	}
}

// DefaultTrainConfig returns the default training hyperparameters.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		DQN: DQNConfig{
			LearningRate:         1e-3,
			BufferSize:           100_000,
			BatchSize:            64,
			Gamma:                0.99,
			TrainFreq:            4,
			LearningStarts:       1_000,
			TargetUpdateInterval: 5_000,
			ExplorationFraction:  0.3,
			ExplorationInitial:   1.0,
			ExplorationFinal:     0.05,
			NetArch:              []int{128, 128},
		},
		PPO: PPOConfig{
			LearningRate: 3e-4,
			RolloutSteps: 2048,
			BatchSize:    64,
			Epochs:       10,
			Gamma:        0.99,
			GAELambda:    0.95,
			ClipRange:    0.2,
			EntropyCoef:  0.0,
			ValueCoef:    0.5,
			NetArch:      []int{64, 64},
		},
	}
}

// GetDefaultYAML returns the embedded default YAML for a config name.
func GetDefaultYAML(name string) []byte {
	switch name {
	case "flappy":
		return defaultFlappyYAML
	case "dino":
		return defaultDinoYAML
	case "train":
		return defaultTrainYAML
	default:
		return nil
	}
}
