package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"model-serving-adapters/internal/core/domain"
)

func summarizationArtifact() *domain.ModelArtifact {
	return &domain.ModelArtifact{
		Dir:      "/opt/ml/model",
		Manifest: domain.Manifest{ID: uuid.New(), Variant: domain.VariantSummarization},
		Vocabulary: domain.NewVocabulary([]string{"model", "serving", "latency", "cat"}),
		Summarizer: &domain.SummarizerWeights{
			Weights:       []float64{2, 2, 3, 0.1},
			DefaultWeight: 0.5,
		},
	}
}

func classificationArtifact() *domain.ModelArtifact {
	return &domain.ModelArtifact{
		Dir: "/opt/ml/model",
		Manifest: domain.Manifest{
			ID:      uuid.New(),
			Variant: domain.VariantClassification,
			Labels:  []string{"LABEL_0", "LABEL_1"},
		},
		Vocabulary: domain.NewVocabulary([]string{"great", "terrible"}),
		Classifier: &domain.ClassifierWeights{
			Weights: [][]float64{{-1, 1}, {1, -1}},
			Bias:    []float64{0, 0},
		},
	}
}

func clusteringArtifact() *domain.ModelArtifact {
	return &domain.ModelArtifact{
		Dir:      "/opt/ml/model",
		Manifest: domain.Manifest{ID: uuid.New(), Variant: domain.VariantClustering},
		Clustering: &domain.ClusteringBundle{
			Model:  domain.KMeans{Centroids: [][]float64{{0, 0}, {1, 1}, {-1, 2}}},
			Scaler: domain.StandardScaler{Mean: []float64{10, 20}, Scale: []float64{2, 4}},
		},
	}
}

// longReview is n sentences of nine words each, one mentioning the heavy words.
func longReview(n int) string {
	var b strings.Builder
	b.WriteString(domain.SummarizePrefix)
	for i := 0; i < n; i++ {
		if i%3 == 0 {
			fmt.Fprintf(&b, "Sentence %d covers model serving latency in real detail. ", i)
		} else {
			fmt.Fprintf(&b, "Sentence %d mentions the cat sleeping on the sofa. ", i)
		}
	}
	return b.String()
}
