package ports

import (
	"context"

	"github.com/google/uuid"

	"model-serving-adapters/internal/core/domain"
)

type TrainingRunFilter struct {
	Recipe string
	Status string
	Limit  int
	Offset int
}

// TrainingRunRepository is the ledger of fitting runs
type TrainingRunRepository interface {
	Create(ctx context.Context, run *domain.TrainingRun) error
	Update(ctx context.Context, run *domain.TrainingRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TrainingRun, error)
	List(ctx context.Context, filter TrainingRunFilter) ([]*domain.TrainingRun, int, error)
}
