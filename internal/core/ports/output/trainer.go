package ports

import (
	"context"

	"model-serving-adapters/internal/core/domain"
)

// Trainer is the black-box fitting routine. It owns the loop (epochs, batches,
// optimizer steps, evaluation) and returns the fitted parameters.
type Trainer interface {
	Name() string
	Fit(ctx context.Context, dataset *domain.Dataset, hp domain.Hyperparameters) (*domain.FittedModel, error)
}
