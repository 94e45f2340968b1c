package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"model-serving-adapters/internal/core/domain"
	ports "model-serving-adapters/internal/core/ports/output"
)

// GenericEndpointError is the only failure text a forwarder caller ever sees
const GenericEndpointError = "Error invoking endpoint."

// ForwarderOptions configure payload validation and transformation
type ForwarderOptions struct {
	// RequiredField must be a non-empty string in the payload; empty forwards any object.
	RequiredField string
	// TextPrefix is prepended to RequiredField when missing, e.g. "summarize: ".
	TextPrefix string
}

// ForwarderService relays event payloads to the remote inference endpoint
type ForwarderService struct {
	endpoint ports.EndpointClient
	opts     ForwarderOptions
}

// NewForwarderService creates a new ForwarderService
func NewForwarderService(endpoint ports.EndpointClient, opts ForwarderOptions) *ForwarderService {
	return &ForwarderService{endpoint: endpoint, opts: opts}
}

// Handle is the outermost boundary: every failure is flattened into a response here.
func (s *ForwarderService) Handle(ctx context.Context, event domain.Event) domain.EventResponse {
	resp, err := s.forward(ctx, event)
	switch domain.KindOf(err) {
	case "":
		return domain.EventResponse{
			StatusCode: http.StatusOK,
			Headers:    map[string]string{"Content-Type": domain.ContentTypeJSON},
			Body:       string(resp.Body),
		}
	case domain.KindMissingField:
		return errorResponse(http.StatusBadRequest, fmt.Sprintf("No %s provided.", s.opts.RequiredField))
	default:
		log.WithError(err).Error("forward request failed")
		return errorResponse(http.StatusInternalServerError, GenericEndpointError)
	}
}

func (s *ForwarderService) forward(ctx context.Context, event domain.Event) (*domain.EndpointResponse, error) {
	payload, err := decodeEventBody(event.Body)
	if err != nil {
		return nil, err
	}

	if field := s.opts.RequiredField; field != "" {
		text, ok := payload.Text(field)
		if !ok || text == "" {
			return nil, fmt.Errorf("%w: %q", domain.ErrMissingField, field)
		}
		if s.opts.TextPrefix != "" && !strings.HasPrefix(text, s.opts.TextPrefix) {
			payload = payload.Clone()
			payload[field] = s.opts.TextPrefix + text
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	if s.endpoint == nil {
		return nil, domain.ErrEndpointNotSet
	}
	resp, err := s.endpoint.Invoke(ctx, domain.ContentTypeJSON, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEndpointInvocation, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrEndpointInvocation, resp.StatusCode, truncate(string(resp.Body), 512))
	}
	return resp, nil
}

// decodeEventBody parses the event body, defaulting to an empty object when absent.
func decodeEventBody(body *string) (domain.Request, error) {
	if body == nil || strings.TrimSpace(*body) == "" {
		return domain.Request{}, nil
	}
	var payload domain.Request
	if err := json.Unmarshal([]byte(*body), &payload); err != nil {
		return nil, fmt.Errorf("decode event body: %w", err)
	}
	if payload == nil {
		payload = domain.Request{}
	}
	return payload, nil
}

func errorResponse(status int, msg string) domain.EventResponse {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return domain.EventResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": domain.ContentTypeJSON},
		Body:       string(body),
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
