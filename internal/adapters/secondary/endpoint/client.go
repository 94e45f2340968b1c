package endpoint

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"model-serving-adapters/internal/config"
	"model-serving-adapters/internal/core/domain"
	ports "model-serving-adapters/internal/core/ports/output"
)

type client struct {
	httpClient *http.Client
	invokeURL  string
	authToken  string
}

// NewClient creates an EndpointClient for the single configured endpoint.
// A zero timeout leaves the deadline to the caller's context.
func NewClient(cfg *config.EndpointConfig) (ports.EndpointClient, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, domain.ErrEndpointNotSet
	}
	invokeURL, err := InvokeURL(cfg.URL, cfg.Name)
	if err != nil {
		return nil, err
	}
	return &client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		invokeURL:  invokeURL,
		authToken:  cfg.AuthToken,
	}, nil
}

// InvokeURL builds {base}/endpoints/{name}/invocations; an empty name posts to base.
func InvokeURL(base, name string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("parse endpoint url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("endpoint url %q needs a scheme and host", base)
	}
	if name == "" {
		return u.String(), nil
	}
	return u.JoinPath("endpoints", name, "invocations").String(), nil
}

// Invoke posts body and returns the response whatever its status; the caller decides
// what counts as success.
func (c *client) Invoke(ctx context.Context, contentType string, body []byte) (*domain.EndpointResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.invokeURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create endpoint request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", domain.ContentTypeJSON)
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	log.WithFields(log.Fields{
		"url":   c.invokeURL,
		"bytes": len(body),
	}).Debug("invoking endpoint")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("endpoint request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read endpoint response: %w", err)
	}

	log.WithFields(log.Fields{
		"status":     resp.StatusCode,
		"latency_ms": time.Since(start).Milliseconds(),
	}).Debug("endpoint responded")

	return &domain.EndpointResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}
