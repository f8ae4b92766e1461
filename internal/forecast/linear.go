package forecast

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
)

// linearArtifact is the on-disk representation of a trained linear model.
type linearArtifact struct {
	FeatureNames []string  `json:"feature_names"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// LinearModel is a trained linear regressor for one horizon.
type LinearModel struct {
	horizon      int
	coefficients []float64
	intercept    float64
}

// Predict computes the dot product of the coefficients with the feature
// vector plus the intercept.
func (m *LinearModel) Predict(v FeatureVector) (float64, error) {
	values := v.Values()
	if len(values) != len(m.coefficients) {
		return 0, fmt.Errorf("feature count mismatch: model has %d coefficients, vector has %d values",
			len(m.coefficients), len(values))
	}
	return floats.Dot(m.coefficients, values) + m.intercept, nil
}

// FileArtifactSource loads linear model artifacts from a directory.
// Artifacts are named forecast_{h}h.json.
type FileArtifactSource struct {
	dir string
}

// NewFileArtifactSource creates an artifact source rooted at dir.
func NewFileArtifactSource(dir string) *FileArtifactSource {
	return &FileArtifactSource{dir: dir}
}

// Load reads and validates the artifact for one horizon.
func (s *FileArtifactSource) Load(horizon int) (Model, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("forecast_%dh.json", horizon))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArtifactMissing, path, err)
	}

	var artifact linearArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArtifactMissing, path, err)
	}

	if err := validateArtifact(artifact); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArtifactMissing, path, err)
	}

	return &LinearModel{
		horizon:      horizon,
		coefficients: artifact.Coefficients,
		intercept:    artifact.Intercept,
	}, nil
}

// validateArtifact checks that the artifact was trained against the exact
// feature schema this package produces.
func validateArtifact(a linearArtifact) error {
	if len(a.FeatureNames) != len(featureNames) {
		return fmt.Errorf("expected %d features, artifact has %d", len(featureNames), len(a.FeatureNames))
	}
	for i, name := range featureNames {
		if a.FeatureNames[i] != name {
			return fmt.Errorf("feature %d: expected %q, artifact has %q", i, name, a.FeatureNames[i])
		}
	}
	if len(a.Coefficients) != len(featureNames) {
		return fmt.Errorf("expected %d coefficients, artifact has %d", len(featureNames), len(a.Coefficients))
	}
	return nil
}
