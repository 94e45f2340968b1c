package handlers

import (
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"model-serving-adapters/internal/adapters/primary/http/dto"
	"model-serving-adapters/internal/core/domain"
)

// Ping answers the host's health probe; 503 until the artifact is loaded
func (h *Handler) Ping(c *gin.Context) {
	artifact, err := h.adapterSvc.Artifact()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.ToPingResponse(artifact))
}

// Invocations runs parse, predict and serialize for one request
func (h *Handler) Invocations(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	out, err := h.adapterSvc.Invoke(
		c.Request.Context(),
		body,
		c.GetHeader("Content-Type"),
		negotiateAccept(c.GetHeader("Accept")),
	)
	if err != nil {
		log.WithError(err).WithField("request_id", c.GetString("request_id")).Error("invocation failed")
		mapDomainError(c, err)
		return
	}

	c.Data(http.StatusOK, domain.ContentTypeJSON, out)
}

// Schema returns the JSON Schemas of the loaded variant
func (h *Handler) Schema(c *gin.Context) {
	artifact, err := h.adapterSvc.Artifact()
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSchemaResponse(artifact.Variant()))
}

// negotiateAccept resolves an Accept header to a single media type. Absent and
// wildcard values resolve to JSON; otherwise the header is passed through unchanged
// so serialization can reject it by name.
func negotiateAccept(header string) string {
	if strings.TrimSpace(header) == "" {
		return domain.ContentTypeJSON
	}
	for _, part := range strings.Split(header, ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mt {
		case domain.ContentTypeJSON, "*/*", "application/*":
			return domain.ContentTypeJSON
		}
	}
	return header
}
