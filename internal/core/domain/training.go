package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Value Objects
// ============================================================================

// EvalStrategy controls when the trainer scores the validation partition
type EvalStrategy string

const (
	EvalNo    EvalStrategy = "no"
	EvalEpoch EvalStrategy = "epoch"
)

// IsValid checks if the strategy is valid
func (s EvalStrategy) IsValid() bool {
	return s == EvalNo || s == EvalEpoch
}

// Hyperparameters configure the delegated training routine
type Hyperparameters struct {
	Epochs        int          `json:"num_train_epochs"`
	BatchSize     int          `json:"per_device_train_batch_size"`
	EvalBatchSize int          `json:"per_device_eval_batch_size"`
	WarmupSteps   int          `json:"warmup_steps"`
	WeightDecay   float64      `json:"weight_decay"`
	LearningRate  float64      `json:"learning_rate"`
	LoggingSteps  int          `json:"logging_steps"`
	EvalStrategy  EvalStrategy `json:"eval_strategy"`
	Seed          int64        `json:"seed"`
}

// Validate rejects values the trainer cannot work with
func (h Hyperparameters) Validate() error {
	switch {
	case h.Epochs <= 0:
		return fmt.Errorf("%w: epochs must be > 0", ErrInvalidHyperparameters)
	case h.BatchSize <= 0:
		return fmt.Errorf("%w: batch size must be > 0", ErrInvalidHyperparameters)
	case h.WarmupSteps < 0:
		return fmt.Errorf("%w: warmup steps must be >= 0", ErrInvalidHyperparameters)
	case h.WeightDecay < 0:
		return fmt.Errorf("%w: weight decay must be >= 0", ErrInvalidHyperparameters)
	case h.LearningRate <= 0:
		return fmt.Errorf("%w: learning rate must be > 0", ErrInvalidHyperparameters)
	case !h.EvalStrategy.IsValid():
		return fmt.Errorf("%w: eval strategy %q", ErrInvalidHyperparameters, h.EvalStrategy)
	}
	return nil
}

// Recipe describes how raw rows become labelled examples for one variant
type Recipe struct {
	Name               string
	Variant            Variant
	TextColumn         string
	TargetColumn       string
	TextPrefix         string
	Head               int     // keep the first Head rows before cleaning; 0 keeps all
	SampleSize         int     // seeded sample after cleaning; 0 keeps all
	TrainSize          int     // first TrainSize rows train, the rest validate; 0 uses ValidationFraction
	ValidationFraction float64 // share of shuffled rows held out
	ScoreThreshold     float64 // classification: label 1 when score > threshold
	Labels             []string
	MinLength          int
	MaxLength          int
	Defaults           Hyperparameters
}

const (
	RecipeClassification = "classification"
	RecipeSummarization  = "summarization"
)

// RecipeByName returns a copy of a built-in recipe
func RecipeByName(name string) (Recipe, error) {
	switch name {
	case RecipeClassification:
		return Recipe{
			Name:               RecipeClassification,
			Variant:            VariantClassification,
			TextColumn:         "Text",
			TargetColumn:       "Score",
			Head:               200,
			ValidationFraction: 0.1,
			ScoreThreshold:     3,
			Labels:             []string{"LABEL_0", "LABEL_1"},
			Defaults: Hyperparameters{
				Epochs: 1, BatchSize: 16, EvalBatchSize: 16,
				LearningRate: 0.5, LoggingSteps: 100,
				EvalStrategy: EvalNo, Seed: 42,
			},
		}, nil
	case RecipeSummarization:
		return Recipe{
			Name:         RecipeSummarization,
			Variant:      VariantSummarization,
			TextColumn:   "Text",
			TargetColumn: "Summary",
			TextPrefix:   SummarizePrefix,
			SampleSize:   5500,
			TrainSize:    5000,
			MinLength:    DefaultMinLength,
			MaxLength:    DefaultMaxLength,
			Defaults: Hyperparameters{
				Epochs: 3, BatchSize: 4, EvalBatchSize: 4,
				WarmupSteps: 500, WeightDecay: 0.01,
				LearningRate: 0.5, LoggingSteps: 10,
				EvalStrategy: EvalEpoch, Seed: 42,
			},
		}, nil
	default:
		return Recipe{}, fmt.Errorf("%w: %q", ErrUnknownRecipe, name)
	}
}

// ============================================================================
// Entities
// ============================================================================

// Example is one cleaned row. Target carries the reference summary for the
// summarization recipe; Label carries the class index for classification.
type Example struct {
	Row    int    `json:"row"`
	Text   string `json:"text"`
	Target string `json:"target,omitempty"`
	Label  int    `json:"label"`
}

// Dataset is the train/validation partition handed to a trainer
type Dataset struct {
	Recipe     Recipe
	Train      []Example
	Validation []Example
}

// FittedModel is what a trainer hands back
type FittedModel struct {
	Vocabulary *Vocabulary
	Summarizer *SummarizerWeights
	Classifier *ClassifierWeights
	Metrics    map[string]float64
}

// TrainingArtifact summarises a persisted fitting run
type TrainingArtifact struct {
	RunID          uuid.UUID
	Dir            string
	Manifest       Manifest
	TrainRows      int
	ValidationRows int
}

// RunStatus represents the state of a TrainingRun
type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusSucceeded RunStatus = "SUCCEEDED"
	RunStatusFailed    RunStatus = "FAILED"
)

// IsValid checks if the status is valid
func (s RunStatus) IsValid() bool {
	return s == RunStatusRunning || s == RunStatusSucceeded || s == RunStatusFailed
}

// TrainingRun is the ledger entry of one fitting invocation
type TrainingRun struct {
	ID             uuid.UUID          `json:"id"`
	CreatedAt      time.Time          `json:"created_at"`
	FinishedAt     *time.Time         `json:"finished_at,omitempty"`
	Recipe         string             `json:"recipe"`
	Variant        Variant            `json:"variant"`
	DataPath       string             `json:"data_path"`
	OutputDir      string             `json:"output_dir"`
	Seed           int64              `json:"seed"`
	TrainRows      int                `json:"train_rows"`
	ValidationRows int                `json:"validation_rows"`
	Status         RunStatus          `json:"status"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
	Error          string             `json:"error,omitempty"`
}

// NewTrainingRun creates a RUNNING ledger entry
func NewTrainingRun(recipe Recipe, dataPath, outputDir string, seed int64) *TrainingRun {
	return &TrainingRun{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Recipe:    recipe.Name,
		Variant:   recipe.Variant,
		DataPath:  dataPath,
		OutputDir: outputDir,
		Seed:      seed,
		Status:    RunStatusRunning,
	}
}

// Finish moves the run to a terminal status
func (r *TrainingRun) Finish(metrics map[string]float64, err error) {
	now := time.Now().UTC()
	r.FinishedAt = &now
	r.Metrics = metrics
	if err != nil {
		r.Status = RunStatusFailed
		r.Error = err.Error()
		return
	}
	r.Status = RunStatusSucceeded
}
