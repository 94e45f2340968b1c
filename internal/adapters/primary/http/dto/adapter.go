package dto

import (
	"github.com/invopop/jsonschema"

	"model-serving-adapters/internal/core/domain"
)

// PingResponse is returned by the health probe once an artifact is loaded
type PingResponse struct {
	Status  string         `json:"status"`
	Variant domain.Variant `json:"variant"`
	ModelID string         `json:"model_id"`
}

func ToPingResponse(a *domain.ModelArtifact) PingResponse {
	return PingResponse{
		Status:  "ok",
		Variant: a.Variant(),
		ModelID: a.Manifest.ID.String(),
	}
}

// SchemaResponse describes the request and response bodies of the loaded variant
type SchemaResponse struct {
	Variant  domain.Variant     `json:"variant"`
	Request  *jsonschema.Schema `json:"request"`
	Response *jsonschema.Schema `json:"response"`
}

// NewSchemaResponse reflects JSON Schemas for variant. Unknown variants yield nil schemas.
func NewSchemaResponse(variant domain.Variant) SchemaResponse {
	resp := SchemaResponse{Variant: variant}
	r := &jsonschema.Reflector{ExpandedStruct: true}

	switch variant {
	case domain.VariantSummarization:
		resp.Request = r.Reflect(&domain.TextInput{})
		resp.Response = r.Reflect(&domain.Summary{})
	case domain.VariantClassification:
		resp.Request = r.Reflect(&domain.TextInput{})
		resp.Response = r.Reflect(&domain.Classification{})
	case domain.VariantClustering:
		resp.Request = r.Reflect(&domain.InstancesInput{})
		resp.Response = r.Reflect(&domain.ClusterAssignments{})
	}
	return resp
}

// ErrorResponse is the body of every failed adapter call
type ErrorResponse struct {
	Error string `json:"error"`
}
