package domain

// Event is the envelope a function host hands the forwarder. Body is JSON text and
// may be absent.
type Event struct {
	Body    *string           `json:"body,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// EventResponse is what the forwarder returns to the host
type EventResponse struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body"`
}

// EndpointResponse is the raw reply of the remote inference endpoint
type EndpointResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}
