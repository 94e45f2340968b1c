package domain

// Prediction is the variant-specific result of a forward pass. Shapes are not unified.
type Prediction interface {
	Variant() Variant
}

// Summary is the generated condensed text
type Summary struct {
	SummaryText string `json:"summary_text" jsonschema:"description=Condensed text bounded to the configured token range"`
}

func (Summary) Variant() Variant { return VariantSummarization }

// Classification is a single ranked label with its confidence
type Classification struct {
	Label string  `json:"label" jsonschema:"example=LABEL_1"`
	Score float64 `json:"score" jsonschema:"minimum=0,maximum=1"`
}

func (Classification) Variant() Variant { return VariantClassification }

// ClusterAssignments holds one centroid index per input row, in input order
type ClusterAssignments struct {
	Predictions []int `json:"predictions"`
}

func (ClusterAssignments) Variant() Variant { return VariantClustering }

// TextInput documents the request accepted by the text variants
type TextInput struct {
	Text string `json:"text" jsonschema:"description=Input text; the summarization variant accepts an optional 'summarize: ' prefix"`
}

// InstancesInput documents the request accepted by the clustering variant
type InstancesInput struct {
	Instances [][]float64 `json:"instances" jsonschema:"description=Feature rows with the dimensionality the scaler was fitted on"`
}
