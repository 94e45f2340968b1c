package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"model-serving-adapters/internal/core/domain"
	"model-serving-adapters/internal/testutil"
)

func strPtr(s string) *string { return &s }

func okResponse(body string) *domain.EndpointResponse {
	return &domain.EndpointResponse{StatusCode: http.StatusOK, ContentType: "application/json", Body: []byte(body)}
}

func TestForwarder_EmptyObjectIs400WithoutRemoteCall(t *testing.T) {
	endpoint := new(testutil.MockEndpointClient)
	svc := NewForwarderService(endpoint, ForwarderOptions{RequiredField: "text"})

	for _, body := range []*string{nil, strPtr(""), strPtr("{}"), strPtr(`{"text": ""}`), strPtr(`{"text": 5}`)} {
		resp := svc.Handle(context.Background(), domain.Event{Body: body})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error": "No text provided."}`, resp.Body)
	}
	endpoint.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything, mock.Anything)
}

func TestForwarder_RelaysRemoteBodyVerbatim(t *testing.T) {
	endpoint := new(testutil.MockEndpointClient)
	endpoint.On("Invoke", mock.Anything, "application/json", []byte(`{"text":"hello"}`)).
		Return(okResponse(`[{"summary_text": "hi"}]`), nil)
	svc := NewForwarderService(endpoint, ForwarderOptions{RequiredField: "text"})

	resp := svc.Handle(context.Background(), domain.Event{Body: strPtr(`{"text": "hello"}`)})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Equal(t, `[{"summary_text": "hi"}]`, resp.Body)
	endpoint.AssertExpectations(t)
}

func TestForwarder_RemoteFailureIsGeneric500(t *testing.T) {
	endpoint := new(testutil.MockEndpointClient)
	endpoint.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("ModelError: CUDA out of memory at layer 12"))
	svc := NewForwarderService(endpoint, ForwarderOptions{RequiredField: "text"})

	resp := svc.Handle(context.Background(), domain.Event{Body: strPtr(`{"text": "hello"}`)})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error": "Error invoking endpoint."}`, resp.Body)
	assert.NotContains(t, resp.Body, "CUDA")
}

func TestForwarder_Non2xxIsGeneric500(t *testing.T) {
	endpoint := new(testutil.MockEndpointClient)
	endpoint.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.EndpointResponse{StatusCode: http.StatusServiceUnavailable, Body: []byte("overloaded")}, nil)
	svc := NewForwarderService(endpoint, ForwarderOptions{RequiredField: "text"})

	resp := svc.Handle(context.Background(), domain.Event{Body: strPtr(`{"text": "hello"}`)})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error": "Error invoking endpoint."}`, resp.Body)
}

func TestForwarder_MalformedBodyIsGeneric500(t *testing.T) {
	endpoint := new(testutil.MockEndpointClient)
	svc := NewForwarderService(endpoint, ForwarderOptions{RequiredField: "text"})

	resp := svc.Handle(context.Background(), domain.Event{Body: strPtr(`{"text": `)})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error": "Error invoking endpoint."}`, resp.Body)
	endpoint.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything, mock.Anything)
}

func TestForwarder_UnconfiguredEndpoint(t *testing.T) {
	svc := NewForwarderService(nil, ForwarderOptions{RequiredField: "text"})

	resp := svc.Handle(context.Background(), domain.Event{Body: strPtr(`{"text": "hello"}`)})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestForwarder_BareModeForwardsAnyObject(t *testing.T) {
	endpoint := new(testutil.MockEndpointClient)
	endpoint.On("Invoke", mock.Anything, "application/json", []byte(`{}`)).Return(okResponse(`{"predictions": []}`), nil)
	endpoint.On("Invoke", mock.Anything, "application/json", []byte(`{"instances":[[1,2]]}`)).Return(okResponse(`{"predictions": [0]}`), nil)
	svc := NewForwarderService(endpoint, ForwarderOptions{})

	resp := svc.Handle(context.Background(), domain.Event{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"predictions": []}`, resp.Body)

	resp = svc.Handle(context.Background(), domain.Event{Body: strPtr(`{"instances": [[1, 2]]}`)})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"predictions": [0]}`, resp.Body)
	endpoint.AssertExpectations(t)
}

func TestForwarder_TextPrefix(t *testing.T) {
	endpoint := new(testutil.MockEndpointClient)
	endpoint.On("Invoke", mock.Anything, "application/json", []byte(`{"text":"summarize: great coffee"}`)).
		Return(okResponse(`{}`), nil).Twice()
	svc := NewForwarderService(endpoint, ForwarderOptions{RequiredField: "text", TextPrefix: domain.SummarizePrefix})

	resp := svc.Handle(context.Background(), domain.Event{Body: strPtr(`{"text": "great coffee"}`)})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = svc.Handle(context.Background(), domain.Event{Body: strPtr(`{"text": "summarize: great coffee"}`)})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	endpoint.AssertExpectations(t)
}

func TestForwarder_CustomFieldName(t *testing.T) {
	svc := NewForwarderService(new(testutil.MockEndpointClient), ForwarderOptions{RequiredField: "inputs"})

	resp := svc.Handle(context.Background(), domain.Event{Body: strPtr(`{"text": "hello"}`)})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error": "No inputs provided."}`, resp.Body)
}
