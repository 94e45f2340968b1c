package ports

import (
	"context"

	"model-serving-adapters/internal/core/domain"
)

// EndpointClient invokes the single configured remote inference endpoint
type EndpointClient interface {
	Invoke(ctx context.Context, contentType string, body []byte) (*domain.EndpointResponse, error)
}
