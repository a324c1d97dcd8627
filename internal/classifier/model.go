package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Sentinel errors returned by model loading.
var (
	// ErrNoModel indicates no trained model file exists in the directory.
	ErrNoModel = errors.New("classifier: no trained model found")

	// ErrInvalidModel indicates the model file could not be parsed or
	// has the wrong feature width.
	ErrInvalidModel = errors.New("classifier: invalid model file")
)

// metadataSuffix marks the training-metadata sidecar next to a model.
const metadataSuffix = "_metadata.json"

// Model scores a feature vector and returns a phishing probability
// in [0, 1].
type Model interface {
	// Score returns the phishing probability for the feature vector.
	Score(features []float64) (float64, error)

	// Type returns a short identifier for the model kind.
	Type() string
}

// Metadata describes how a stored model was trained. All fields are
// optional; an absent sidecar file leaves the whole struct nil.
type Metadata struct {
	ModelType   string  `json:"model_type,omitempty"`
	Description string  `json:"description,omitempty"`
	TrainedAt   string  `json:"trained_at,omitempty"`
	Accuracy    float64 `json:"accuracy,omitempty"`
	F1Score     float64 `json:"f1_score,omitempty"`
	SampleCount int     `json:"sample_count,omitempty"`
}

// LogisticModel is a logistic-regression model restored from a JSON
// weight file.
//
// Design decision: Weights are stored as plain JSON rather than a
// binary serialization format because:
//  1. Models are tiny (ten weights and a bias)
//  2. JSON files are inspectable and diffable when retraining
//  3. No schema migration machinery is needed
type LogisticModel struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// Score applies the logistic function to the weighted feature sum.
func (m *LogisticModel) Score(features []float64) (float64, error) {
	if len(features) != len(m.Weights) {
		return 0, fmt.Errorf("%w: got %d features, model expects %d",
			ErrInvalidModel, len(features), len(m.Weights))
	}

	z := m.Bias
	for i, w := range m.Weights {
		z += w * features[i]
	}
	return 1 / (1 + math.Exp(-z)), nil
}

// Type returns the model kind identifier.
func (m *LogisticModel) Type() string {
	return "logistic"
}

// LoadedModel bundles a restored model with its name and metadata.
type LoadedModel struct {
	// Name is the model file name without extension.
	Name string

	// Model is the restored scoring model.
	Model Model

	// Metadata is the training sidecar, or nil if none exists.
	Metadata *Metadata
}

// LoadModel restores a model from dir. When name is empty the newest
// model file is chosen; model files are timestamp-named so a reverse
// lexical sort finds it without stat calls.
func LoadModel(dir, name string) (*LoadedModel, error) {
	if name == "" {
		names, err := AvailableModels(dir)
		if err != nil {
			return nil, err
		}
		if len(names) == 0 {
			return nil, ErrNoModel
		}
		name = names[0]
	}

	path := filepath.Join(dir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoModel, path)
		}
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}

	var logistic LogisticModel
	if err := json.Unmarshal(data, &logistic); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidModel, path, err)
	}
	if len(logistic.Weights) != FeatureCount {
		return nil, fmt.Errorf("%w: %s has %d weights, want %d",
			ErrInvalidModel, path, len(logistic.Weights), FeatureCount)
	}

	loaded := &LoadedModel{
		Name:  name,
		Model: &logistic,
	}

	// Metadata sidecar is optional. A broken sidecar does not block
	// the model itself.
	metaPath := filepath.Join(dir, name+metadataSuffix)
	if metaData, err := os.ReadFile(metaPath); err == nil {
		var meta Metadata
		if err := json.Unmarshal(metaData, &meta); err == nil {
			loaded.Metadata = &meta
		}
	}

	return loaded, nil
}

// AvailableModels lists model names in dir, newest first. Metadata
// sidecars are excluded.
func AvailableModels(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read model directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, metadataSuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".json"))
	}

	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}
