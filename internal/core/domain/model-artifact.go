package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Artifact Layout
// ============================================================================

const (
	ManifestFile      = "config.json"
	VocabularyFile    = "vocab.json"
	WeightsFile       = "model.json"
	ClusteringFile    = "kmeans.json"
	ClusteringPickle  = "kmeans_model.pkl"
	ArtifactFormatV1  = "1"
	DefaultMinLength  = 30
	DefaultMaxLength  = 100
	SummarizePrefix   = "summarize: "
	DefaultLabelFirst = "LABEL_0"
)

// Manifest describes an artifact directory. Written last by a fitting run.
type Manifest struct {
	ID              uuid.UUID          `json:"id"`
	Format          string             `json:"format"`
	Variant         Variant            `json:"variant"`
	CreatedAt       time.Time          `json:"created_at"`
	Labels          []string           `json:"labels,omitempty"`
	MinLength       int                `json:"min_length,omitempty"`
	MaxLength       int                `json:"max_length,omitempty"`
	Hyperparameters *Hyperparameters   `json:"hyperparameters,omitempty"`
	Metrics         map[string]float64 `json:"metrics,omitempty"`
}

// SummarizerWeights score words for sentence extraction. Weights is indexed by vocabulary id.
type SummarizerWeights struct {
	Weights       []float64 `json:"weights"`
	DefaultWeight float64   `json:"default_weight"`
}

// ClassifierWeights is a single softmax layer over bag-of-words features.
// Weights has one row per label, one column per vocabulary id.
type ClassifierWeights struct {
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
}

// ModelArtifact is the loaded, read-only model handle. Exactly one of the variant
// payloads is set, matching Manifest.Variant.
type ModelArtifact struct {
	Dir        string
	Manifest   Manifest
	Vocabulary *Vocabulary
	Summarizer *SummarizerWeights
	Classifier *ClassifierWeights
	Clustering *ClusteringBundle
}

// Variant of the loaded artifact
func (a *ModelArtifact) Variant() Variant {
	return a.Manifest.Variant
}

// LengthBounds returns the summary token bounds, falling back to the defaults.
func (a *ModelArtifact) LengthBounds() (int, int) {
	minLen, maxLen := a.Manifest.MinLength, a.Manifest.MaxLength
	if minLen <= 0 {
		minLen = DefaultMinLength
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}
	if minLen > maxLen {
		minLen = maxLen
	}
	return minLen, maxLen
}

// Validate checks that the payload matching the variant is present and consistent.
func (a *ModelArtifact) Validate() error {
	switch a.Manifest.Variant {
	case VariantSummarization:
		if a.Vocabulary == nil || a.Summarizer == nil {
			return fmt.Errorf("%w: summarization artifact needs %s and %s", ErrArtifactLoad, VocabularyFile, WeightsFile)
		}
		if len(a.Summarizer.Weights) != a.Vocabulary.Size() {
			return fmt.Errorf("%w: %d weights for %d vocabulary entries", ErrArtifactLoad, len(a.Summarizer.Weights), a.Vocabulary.Size())
		}
	case VariantClassification:
		if a.Vocabulary == nil || a.Classifier == nil {
			return fmt.Errorf("%w: classification artifact needs %s and %s", ErrArtifactLoad, VocabularyFile, WeightsFile)
		}
		if len(a.Manifest.Labels) == 0 || len(a.Classifier.Weights) != len(a.Manifest.Labels) || len(a.Classifier.Bias) != len(a.Manifest.Labels) {
			return fmt.Errorf("%w: classifier shape does not match %d labels", ErrArtifactLoad, len(a.Manifest.Labels))
		}
		for i, row := range a.Classifier.Weights {
			if len(row) != a.Vocabulary.Size() {
				return fmt.Errorf("%w: classifier row %d has %d columns, want %d", ErrArtifactLoad, i, len(row), a.Vocabulary.Size())
			}
		}
	case VariantClustering:
		if a.Clustering == nil {
			return fmt.Errorf("%w: clustering artifact needs %s or %s", ErrArtifactLoad, ClusteringFile, ClusteringPickle)
		}
		if err := a.Clustering.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrArtifactLoad, err)
		}
	default:
		return fmt.Errorf("%w: %w %q", ErrArtifactLoad, ErrUnknownVariant, a.Manifest.Variant)
	}
	return nil
}
