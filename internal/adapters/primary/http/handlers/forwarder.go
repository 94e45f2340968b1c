package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"model-serving-adapters/internal/core/domain"
)

// HandleEvent accepts the full host event envelope and returns the event response
func (h *Handler) HandleEvent(c *gin.Context) {
	var event domain.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.forwarderSvc.Handle(c.Request.Context(), event))
}

// Forward treats the raw request body as the event body and answers with the
// event response's status, headers and body directly.
func (h *Handler) Forward(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	body := string(raw)
	event := domain.Event{Body: &body, Headers: map[string]string{}}
	for k := range c.Request.Header {
		event.Headers[k] = c.GetHeader(k)
	}

	resp := h.forwarderSvc.Handle(c.Request.Context(), event)
	contentType := resp.Headers["Content-Type"]
	for k, v := range resp.Headers {
		if k != "Content-Type" {
			c.Header(k, v)
		}
	}
	c.Data(resp.StatusCode, contentType, []byte(resp.Body))
}
