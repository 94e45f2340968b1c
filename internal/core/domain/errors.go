package domain

import "errors"

// ============================================================================
// Adapter Errors
// ============================================================================

// Input negotiation errors
var (
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrUnsupportedAcceptType  = errors.New("unsupported accept type")
)

// Request errors
var (
	ErrInvalidRequest   = errors.New("invalid request body")
	ErrMissingField     = errors.New("missing required field")
	ErrInvalidInstances = errors.New("instances must be a non-empty array of equal-length numeric rows")
)

// Lifecycle errors
var (
	ErrArtifactLoad     = errors.New("failed to load model artifact")
	ErrAdapterNotLoaded = errors.New("model artifact is not loaded")
	ErrAlreadyLoaded    = errors.New("model artifact is already loaded")
	ErrUnknownVariant   = errors.New("unknown model variant")
)

// ============================================================================
// Forwarder Errors
// ============================================================================

var (
	ErrEndpointInvocation = errors.New("remote endpoint invocation failed")
	ErrEndpointNotSet     = errors.New("remote endpoint is not configured")
)

// ============================================================================
// Fitting Errors
// ============================================================================

var (
	ErrEmptyDataset             = errors.New("dataset has no usable rows")
	ErrMissingColumn            = errors.New("dataset is missing a required column")
	ErrUnknownRecipe            = errors.New("unknown fitting recipe")
	ErrInvalidHyperparameters   = errors.New("invalid hyperparameters")
	ErrTrainerFailed            = errors.New("trainer failed")
	ErrTrainerUnavailable       = errors.New("trainer unavailable")
	ErrTrainingRunNotFound      = errors.New("training run not found")
	ErrTrainingRunStoreDisabled = errors.New("training run store is disabled")
)

// ErrorKind tags an error with the class a caller is allowed to see. Everything that is
// not explicitly recognised is KindUnclassified and gets flattened at the boundary.
type ErrorKind string

const (
	KindUnsupportedContentType ErrorKind = "unsupported_content_type"
	KindUnsupportedAcceptType  ErrorKind = "unsupported_accept_type"
	KindArtifactLoad           ErrorKind = "artifact_load"
	KindMissingField           ErrorKind = "missing_field"
	KindInvalidRequest         ErrorKind = "invalid_request"
	KindNotLoaded              ErrorKind = "not_loaded"
	KindUnclassified           ErrorKind = "unclassified"
)

// KindOf classifies err. A nil error has no kind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedContentType):
		return KindUnsupportedContentType
	case errors.Is(err, ErrUnsupportedAcceptType):
		return KindUnsupportedAcceptType
	case errors.Is(err, ErrArtifactLoad):
		return KindArtifactLoad
	case errors.Is(err, ErrMissingField):
		return KindMissingField
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrInvalidInstances):
		return KindInvalidRequest
	case errors.Is(err, ErrAdapterNotLoaded):
		return KindNotLoaded
	default:
		return KindUnclassified
	}
}
