package domain

// ============================================================================
// Value Objects
// ============================================================================

// Variant selects which task a loaded artifact serves
type Variant string

const (
	VariantSummarization  Variant = "summarization"
	VariantClassification Variant = "classification"
	VariantClustering     Variant = "clustering"
)

// IsValid checks if the variant is known
func (v Variant) IsValid() bool {
	return v == VariantSummarization || v == VariantClassification || v == VariantClustering
}

// InputField is the request key the variant reads its input from
func (v Variant) InputField() string {
	if v == VariantClustering {
		return FieldInstances
	}
	return FieldText
}

// ContentTypeJSON is the only media type the adapter and the forwarder speak.
const ContentTypeJSON = "application/json"
