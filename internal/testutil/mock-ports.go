package testutil

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"model-serving-adapters/internal/core/domain"
	ports "model-serving-adapters/internal/core/ports/output"
)

// MockArtifactStore is a mock of ArtifactStore.
type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Load(ctx context.Context, dir string) (*domain.ModelArtifact, error) {
	args := m.Called(ctx, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ModelArtifact), args.Error(1)
}

func (m *MockArtifactStore) Save(ctx context.Context, dir string, artifact *domain.ModelArtifact) error {
	args := m.Called(ctx, dir, artifact)
	return args.Error(0)
}

// MockTokenCounter is a mock of TokenCounter.
type MockTokenCounter struct {
	mock.Mock
}

func (m *MockTokenCounter) Count(text string) int {
	args := m.Called(text)
	return args.Int(0)
}

func (m *MockTokenCounter) Truncate(text string, maxTokens int) string {
	args := m.Called(text, maxTokens)
	return args.String(0)
}

// WordCounter counts whitespace-separated words. It is a deterministic stand-in
// for a real tokenizer.
type WordCounter struct{}

func (WordCounter) Count(text string) int { return len(strings.Fields(text)) }

func (WordCounter) Truncate(text string, maxTokens int) string {
	words := strings.Fields(text)
	if len(words) <= maxTokens {
		return text
	}
	return strings.Join(words[:maxTokens], " ")
}

// MockTrainer is a mock of Trainer.
type MockTrainer struct {
	mock.Mock
}

func (m *MockTrainer) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockTrainer) Fit(ctx context.Context, ds *domain.Dataset, hp domain.Hyperparameters) (*domain.FittedModel, error) {
	args := m.Called(ctx, ds, hp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FittedModel), args.Error(1)
}

// MockEndpointClient is a mock of EndpointClient.
type MockEndpointClient struct {
	mock.Mock
}

func (m *MockEndpointClient) Invoke(ctx context.Context, contentType string, body []byte) (*domain.EndpointResponse, error) {
	args := m.Called(ctx, contentType, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EndpointResponse), args.Error(1)
}

// MockTrainingRunRepo is a mock of TrainingRunRepository.
type MockTrainingRunRepo struct {
	mock.Mock
}

func (m *MockTrainingRunRepo) Create(ctx context.Context, run *domain.TrainingRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockTrainingRunRepo) Update(ctx context.Context, run *domain.TrainingRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockTrainingRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.TrainingRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrainingRun), args.Error(1)
}

func (m *MockTrainingRunRepo) List(ctx context.Context, filter ports.TrainingRunFilter) ([]*domain.TrainingRun, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.TrainingRun), args.Int(1), args.Error(2)
}

var (
	_ ports.ArtifactStore         = (*MockArtifactStore)(nil)
	_ ports.TokenCounter          = (*MockTokenCounter)(nil)
	_ ports.TokenCounter          = WordCounter{}
	_ ports.Trainer               = (*MockTrainer)(nil)
	_ ports.EndpointClient        = (*MockEndpointClient)(nil)
	_ ports.TrainingRunRepository = (*MockTrainingRunRepo)(nil)
)
