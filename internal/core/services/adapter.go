package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"model-serving-adapters/internal/core/domain"
	ports "model-serving-adapters/internal/core/ports/output"
)

// AdapterOptions tune request handling
type AdapterOptions struct {
	// RequireField fails requests that lack the variant's input field instead of
	// predicting on an empty value.
	RequireField bool
}

// AdapterService implements the load/parse/predict/serialize hosting contract.
// The artifact is published once by Load and only read afterwards.
type AdapterService struct {
	store     ports.ArtifactStore
	predictor predictor
	opts      AdapterOptions
	artifact  atomic.Pointer[domain.ModelArtifact]
}

// NewAdapterService creates a new AdapterService in the uninitialized state
func NewAdapterService(store ports.ArtifactStore, tokens ports.TokenCounter, opts AdapterOptions) *AdapterService {
	return &AdapterService{
		store:     store,
		predictor: predictor{tokens: tokens},
		opts:      opts,
	}
}

// Load reads the artifact under dir. It may succeed only once per service.
func (s *AdapterService) Load(ctx context.Context, dir string) (*domain.ModelArtifact, error) {
	if s.artifact.Load() != nil {
		return nil, domain.ErrAlreadyLoaded
	}

	artifact, err := s.store.Load(ctx, dir)
	if err != nil {
		if !errors.Is(err, domain.ErrArtifactLoad) {
			err = fmt.Errorf("%w: %w", domain.ErrArtifactLoad, err)
		}
		return nil, err
	}
	if err := artifact.Validate(); err != nil {
		return nil, err
	}

	if !s.artifact.CompareAndSwap(nil, artifact) {
		return nil, domain.ErrAlreadyLoaded
	}

	log.WithFields(log.Fields{
		"dir":     dir,
		"variant": artifact.Variant(),
		"id":      artifact.Manifest.ID,
	}).Info("model artifact loaded")
	return artifact, nil
}

// Loaded reports whether Load has completed
func (s *AdapterService) Loaded() bool {
	return s.artifact.Load() != nil
}

// Artifact returns the loaded artifact
func (s *AdapterService) Artifact() (*domain.ModelArtifact, error) {
	a := s.artifact.Load()
	if a == nil {
		return nil, domain.ErrAdapterNotLoaded
	}
	return a, nil
}

// Parse decodes a complete JSON object. Only application/json is recognised.
func (s *AdapterService) Parse(body []byte, contentType string) (domain.Request, error) {
	if !isJSON(contentType) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedContentType, contentType)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	var req domain.Request
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after JSON object", domain.ErrInvalidRequest)
	}
	if req == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", domain.ErrInvalidRequest)
	}
	return req, nil
}

// Predict runs the loaded artifact on req
func (s *AdapterService) Predict(ctx context.Context, req domain.Request) (domain.Prediction, error) {
	artifact, err := s.Artifact()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	field := artifact.Variant().InputField()
	if _, present := req[field]; !present && s.opts.RequireField {
		return nil, fmt.Errorf("%w: %q", domain.ErrMissingField, field)
	}

	switch artifact.Variant() {
	case domain.VariantSummarization:
		text, err := textField(req, field)
		if err != nil {
			return nil, err
		}
		return domain.Summary{SummaryText: s.predictor.summarize(artifact, text)}, nil

	case domain.VariantClassification:
		text, err := textField(req, field)
		if err != nil {
			return nil, err
		}
		return s.predictor.classify(artifact, text), nil

	case domain.VariantClustering:
		rows, err := req.Instances()
		if err != nil {
			return nil, err
		}
		return s.predictor.cluster(artifact, rows)

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownVariant, artifact.Variant())
	}
}

// Serialize renders a prediction for the accept type. Only application/json is recognised.
func (s *AdapterService) Serialize(pred domain.Prediction, accept string) ([]byte, error) {
	if !isJSON(accept) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedAcceptType, accept)
	}
	out, err := json.Marshal(pred)
	if err != nil {
		return nil, fmt.Errorf("marshal prediction: %w", err)
	}
	return out, nil
}

// Invoke runs one parse -> predict -> serialize cycle
func (s *AdapterService) Invoke(ctx context.Context, body []byte, contentType, accept string) ([]byte, error) {
	req, err := s.Parse(body, contentType)
	if err != nil {
		return nil, err
	}
	pred, err := s.Predict(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.Serialize(pred, accept)
}

func isJSON(mediaType string) bool {
	mt, _, err := mime.ParseMediaType(mediaType)
	return err == nil && mt == domain.ContentTypeJSON
}

// textField extracts a string input; absent or null falls through as empty text.
func textField(req domain.Request, field string) (string, error) {
	raw, present := req[field]
	if !present || raw == nil {
		return "", nil
	}
	text, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string, got %T", domain.ErrInvalidRequest, field, raw)
	}
	return text, nil
}
