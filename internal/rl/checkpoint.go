package rl

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/mat"
)

// checkpointVersion guards against loading archives written by an
// incompatible revision of the weight format.
const checkpointVersion = 1

// Manifest describes a saved model: which algorithm produced it, which
// game it was trained on, and the shapes it expects.
type Manifest struct {
	Version    int       `json:"version"`
	Algo       string    `json:"algo"` // "dqn" or "ppo"
	GameID     string    `json:"game_id"`
	ObsSize    int       `json:"obs_size"`
	NumActions int       `json:"num_actions"`
	Timesteps  int       `json:"timesteps"`
	CreatedAt  time.Time `json:"created_at"`
}

// netWeights is the JSON serialization of one MLP.
type netWeights struct {
	Sizes   []int       `json:"sizes"`
	Weights [][]float64 `json:"weights"` // Row-major, one slice per layer
	Biases  [][]float64 `json:"biases"`
}

// SaveCheckpoint writes the manifest and networks into a zip archive at
// path, creating parent directories as needed.
func SaveCheckpoint(path string, m Manifest, nets map[string]*MLP) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create checkpoint: %w", err)
	}
	defer f.Close()

	m.Version = checkpointVersion
	zw := zip.NewWriter(f)

	if err := writeJSON(zw, "manifest.json", m); err != nil {
		return err
	}
	for name, net := range nets {
		if err := writeJSON(zw, "weights/"+name+".json", exportWeights(net)); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint reads a checkpoint archive and reconstructs its networks.
func LoadCheckpoint(path string) (Manifest, map[string]*MLP, error) {
	var m Manifest

	zr, err := zip.OpenReader(path)
	if err != nil {
		return m, nil, fmt.Errorf("open checkpoint: %w", err)
	}
	defer zr.Close()

	nets := make(map[string]*MLP)
	foundManifest := false

	for _, zf := range zr.File {
		switch {
		case zf.Name == "manifest.json":
			if err := readJSON(zf, &m); err != nil {
				return m, nil, err
			}
			foundManifest = true
		case filepath.Dir(zf.Name) == "weights":
			var nw netWeights
			if err := readJSON(zf, &nw); err != nil {
				return m, nil, err
			}
			net, err := importWeights(nw)
			if err != nil {
				return m, nil, fmt.Errorf("network %s: %w", zf.Name, err)
			}
			name := filepath.Base(zf.Name)
			nets[name[:len(name)-len(".json")]] = net
		}
	}

	if !foundManifest {
		return m, nil, fmt.Errorf("checkpoint %s has no manifest", path)
	}
	if m.Version != checkpointVersion {
		return m, nil, fmt.Errorf("checkpoint version %d not supported", m.Version)
	}
	return m, nets, nil
}

// LoadPolicy reads a checkpoint and returns a playback policy for it.
func LoadPolicy(path string) (Policy, Manifest, error) {
	m, nets, err := LoadCheckpoint(path)
	if err != nil {
		return nil, m, err
	}

	switch m.Algo {
	case "dqn":
		net, ok := nets["q_net"]
		if !ok {
			return nil, m, fmt.Errorf("dqn checkpoint %s has no q_net", path)
		}
		return NewGreedyQPolicy(net), m, nil
	case "ppo":
		net, ok := nets["actor"]
		if !ok {
			return nil, m, fmt.Errorf("ppo checkpoint %s has no actor", path)
		}
		return NewActorPolicy(net), m, nil
	default:
		return nil, m, fmt.Errorf("checkpoint %s: unknown algo %q", path, m.Algo)
	}
}

func exportWeights(n *MLP) netWeights {
	nw := netWeights{Sizes: n.Sizes()}
	for l := range n.weights {
		raw := n.weights[l].RawMatrix()
		nw.Weights = append(nw.Weights, append([]float64(nil), raw.Data...))
		braw := n.biases[l].RawMatrix()
		nw.Biases = append(nw.Biases, append([]float64(nil), braw.Data...))
	}
	return nw
}

func importWeights(nw netWeights) (*MLP, error) {
	if len(nw.Sizes) < 2 {
		return nil, fmt.Errorf("invalid layer sizes %v", nw.Sizes)
	}
	layers := len(nw.Sizes) - 1
	if len(nw.Weights) != layers || len(nw.Biases) != layers {
		return nil, fmt.Errorf("expected %d weight layers, got %d weights and %d biases",
			layers, len(nw.Weights), len(nw.Biases))
	}

	// RNG is unused once weights are overwritten
	n := NewMLP(nw.Sizes, rand.New(rand.NewSource(0)))
	for l := 0; l < layers; l++ {
		in, out := nw.Sizes[l], nw.Sizes[l+1]
		if len(nw.Weights[l]) != in*out || len(nw.Biases[l]) != out {
			return nil, fmt.Errorf("layer %d has wrong element counts", l)
		}
		n.weights[l] = mat.NewDense(in, out, append([]float64(nil), nw.Weights[l]...))
		n.biases[l] = mat.NewDense(1, out, append([]float64(nil), nw.Biases[l]...))
	}
	return n, nil
}

func writeJSON(zw *zip.Writer, name string, v any) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return nil
}

func readJSON(zf *zip.File, v any) error {
	r, err := zf.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", zf.Name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read %s: %w", zf.Name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", zf.Name, err)
	}
	return nil
}
