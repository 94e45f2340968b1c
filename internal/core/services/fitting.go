package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"model-serving-adapters/internal/core/domain"
	ports "model-serving-adapters/internal/core/ports/output"
)

// DefaultDataFile is looked up inside a training directory
const DefaultDataFile = "Reviews.csv"

// FitRequest is one offline fitting invocation
type FitRequest struct {
	DataPath        string // CSV file, or a directory holding DataFile
	DataFile        string
	OutputDir       string
	Recipe          domain.Recipe
	Hyperparameters domain.Hyperparameters
}

// FittingService prepares data, delegates to a Trainer and persists the artifact
type FittingService struct {
	trainer   ports.Trainer
	store     ports.ArtifactStore
	runs      ports.TrainingRunRepository
	predictor predictor
}

// NewFittingService creates a new FittingService. runs may be nil.
func NewFittingService(trainer ports.Trainer, store ports.ArtifactStore, tokens ports.TokenCounter, runs ports.TrainingRunRepository) *FittingService {
	return &FittingService{
		trainer:   trainer,
		store:     store,
		runs:      runs,
		predictor: predictor{tokens: tokens},
	}
}

// Prepare reads the CSV and builds the seeded train/validation partition.
func (s *FittingService) Prepare(req FitRequest) (*domain.Dataset, string, error) {
	path, err := ResolveDataFile(req.DataPath, req.DataFile)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open training data: %w", err)
	}
	defer f.Close()

	table, err := ReadTable(f)
	if err != nil {
		return nil, "", err
	}
	ds, err := BuildDataset(table, req.Recipe, req.Hyperparameters.Seed)
	if err != nil {
		return nil, "", err
	}
	return ds, path, nil
}

// Fit runs the whole procedure and returns the persisted artifact summary.
func (s *FittingService) Fit(ctx context.Context, req FitRequest) (*domain.TrainingArtifact, error) {
	if req.OutputDir == "" {
		return nil, fmt.Errorf("%w: output directory is required", domain.ErrInvalidHyperparameters)
	}
	if err := req.Hyperparameters.Validate(); err != nil {
		return nil, err
	}

	ds, path, err := s.Prepare(req)
	if err != nil {
		return nil, err
	}

	logger := log.WithFields(log.Fields{
		"recipe":  req.Recipe.Name,
		"trainer": s.trainer.Name(),
		"data":    path,
		"output":  req.OutputDir,
	})
	logger.WithFields(log.Fields{
		"train_rows":      len(ds.Train),
		"validation_rows": len(ds.Validation),
	}).Info("data prepared")

	run := domain.NewTrainingRun(req.Recipe, path, req.OutputDir, req.Hyperparameters.Seed)
	run.TrainRows, run.ValidationRows = len(ds.Train), len(ds.Validation)
	s.recordStart(ctx, run)

	artifact, err := s.fitAndSave(ctx, ds, req)
	var metrics map[string]float64
	if artifact != nil {
		metrics = artifact.Manifest.Metrics
	}
	run.Finish(metrics, err)
	s.recordFinish(ctx, run)
	if err != nil {
		return nil, err
	}

	logger.WithField("metrics", metrics).Info("fitting complete")
	return &domain.TrainingArtifact{
		RunID:          run.ID,
		Dir:            req.OutputDir,
		Manifest:       artifact.Manifest,
		TrainRows:      len(ds.Train),
		ValidationRows: len(ds.Validation),
	}, nil
}

func (s *FittingService) fitAndSave(ctx context.Context, ds *domain.Dataset, req FitRequest) (*domain.ModelArtifact, error) {
	fitted, err := s.trainer.Fit(ctx, ds, req.Hyperparameters)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTrainerFailed, err)
	}

	hp := req.Hyperparameters
	artifact := &domain.ModelArtifact{
		Dir: req.OutputDir,
		Manifest: domain.Manifest{
			ID:              uuid.New(),
			Format:          domain.ArtifactFormatV1,
			Variant:         req.Recipe.Variant,
			CreatedAt:       time.Now().UTC(),
			Labels:          req.Recipe.Labels,
			MinLength:       req.Recipe.MinLength,
			MaxLength:       req.Recipe.MaxLength,
			Hyperparameters: &hp,
			Metrics:         map[string]float64{},
		},
		Vocabulary: fitted.Vocabulary,
		Summarizer: fitted.Summarizer,
		Classifier: fitted.Classifier,
	}
	for k, v := range fitted.Metrics {
		artifact.Manifest.Metrics[k] = v
	}
	if err := artifact.Validate(); err != nil {
		return nil, fmt.Errorf("%w: trainer output: %w", domain.ErrTrainerFailed, err)
	}

	for k, v := range s.Evaluate(artifact, ds.Validation) {
		artifact.Manifest.Metrics[k] = v
	}

	if err := s.store.Save(ctx, req.OutputDir, artifact); err != nil {
		return nil, fmt.Errorf("save artifact: %w", err)
	}
	return artifact, nil
}

// Evaluate scores the artifact on held-out examples with the same forward pass
// the adapter serves.
func (s *FittingService) Evaluate(a *domain.ModelArtifact, examples []domain.Example) map[string]float64 {
	if len(examples) == 0 {
		return nil
	}
	switch a.Variant() {
	case domain.VariantClassification:
		correct := 0
		for _, ex := range examples {
			if s.predictor.classify(a, ex.Text).Label == a.Manifest.Labels[ex.Label] {
				correct++
			}
		}
		return map[string]float64{"eval_accuracy": float64(correct) / float64(len(examples))}
	case domain.VariantSummarization:
		var recall float64
		for _, ex := range examples {
			recall += unigramRecall(s.predictor.summarize(a, ex.Text), ex.Target)
		}
		return map[string]float64{"eval_rouge1_recall": recall / float64(len(examples))}
	}
	return nil
}

func (s *FittingService) recordStart(ctx context.Context, run *domain.TrainingRun) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Create(ctx, run); err != nil {
		log.WithError(err).WithField("run_id", run.ID).Warn("record training run failed")
	}
}

func (s *FittingService) recordFinish(ctx context.Context, run *domain.TrainingRun) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Update(ctx, run); err != nil {
		log.WithError(err).WithField("run_id", run.ID).Warn("update training run failed")
	}
}

// ListRuns returns recorded training runs, newest first.
func (s *FittingService) ListRuns(ctx context.Context, filter ports.TrainingRunFilter) ([]*domain.TrainingRun, int, error) {
	if s.runs == nil {
		return nil, 0, domain.ErrTrainingRunStoreDisabled
	}
	return s.runs.List(ctx, filter)
}

// GetRun returns a single recorded training run.
func (s *FittingService) GetRun(ctx context.Context, id uuid.UUID) (*domain.TrainingRun, error) {
	if s.runs == nil {
		return nil, domain.ErrTrainingRunStoreDisabled
	}
	return s.runs.GetByID(ctx, id)
}

// ResolveDataFile accepts a file path or a directory containing name.
func ResolveDataFile(path, name string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: training data path is required", domain.ErrEmptyDataset)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat training data: %w", err)
	}
	if !info.IsDir() {
		return path, nil
	}
	if name == "" {
		name = DefaultDataFile
	}
	return filepath.Join(path, name), nil
}

// unigramRecall is ROUGE-1 recall: the share of reference words found in the candidate.
func unigramRecall(candidate, reference string) float64 {
	ref := domain.Words(reference)
	if len(ref) == 0 {
		return 0
	}
	have := make(map[string]int)
	for _, w := range domain.Words(candidate) {
		have[w]++
	}
	hits := 0
	for _, w := range ref {
		if have[w] > 0 {
			have[w]--
			hits++
		}
	}
	return float64(hits) / float64(len(ref))
}
