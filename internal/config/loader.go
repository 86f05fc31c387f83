package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadFlappy loads Flappy Bird configuration.
// Search order: customPath -> ~/.arcade/configs/flappy.yaml -> ./configs/flappy.yaml -> embedded default
func LoadFlappy(customPath string) (FlappyConfig, error) {
	var cfg FlappyConfig
	if err := load("flappy.yaml", customPath, defaultFlappyYAML, &cfg); err != nil {
		return DefaultFlappyConfig(), err
	}
	return cfg, nil
}

// LoadDino loads Dino Runner configuration.
// Search order: customPath -> ~/.arcade/configs/dino.yaml -> ./configs/dino.yaml -> embedded default
func LoadDino(customPath string) (DinoConfig, error) {
	var cfg DinoConfig
	if err := load("dino.yaml", customPath, defaultDinoYAML, &cfg); err != nil {
		return DefaultDinoConfig(), err
	}
	return cfg, nil
}

// LoadTrain loads training hyperparameters.
// Search order: customPath -> ~/.arcade/configs/train.yaml -> ./configs/train.yaml -> embedded default
func LoadTrain(customPath string) (TrainConfig, error) {
	cfg := DefaultTrainConfig()
	// Start from defaults so a partial train.yaml only overrides what it names.
	if err := load("train.yaml", customPath, defaultTrainYAML, &cfg); err != nil {
		return DefaultTrainConfig(), err
	}
	return cfg, nil
}

// load resolves a config through the standard search order and unmarshals it
// into dst. A customPath failure is an error; fallback locations fail soft.
func load(filename, customPath string, embedded []byte, dst any) error {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, dst); err != nil {
			return fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(filename); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, dst); err == nil {
				return nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", filename)); err == nil {
		if err := yaml.Unmarshal(data, dst); err == nil {
			return nil
		}
	}

	// Use embedded default YAML
	return yaml.Unmarshal(embedded, dst)
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".arcade", "configs", filename)
}

// ApplyFlappyPreset modifies the config based on a difficulty preset.
func ApplyFlappyPreset(cfg *FlappyConfig, preset DifficultyPreset) {
	if preset == DifficultyFixed {
		cfg.Difficulty.Enabled = false
	} else {
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
	}
}

// ApplyDinoPreset modifies the config based on a difficulty preset.
func ApplyDinoPreset(cfg *DinoConfig, preset DifficultyPreset) {
	if preset == DifficultyFixed {
		cfg.Difficulty.Enabled = false
	} else {
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
	}
}
