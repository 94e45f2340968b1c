package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-serving-adapters/internal/core/domain"
)

// kmeansPickle is a protocol 0 pickle of
// ({"cluster_centers": [[1.0, 2.0], [3.0, 4.0]]}, {"mean_": [0.0, 0.0], "scale_": [1.0, 2.0]})
const kmeansPickle = "((dVcluster_centers\n(l(lF1.0\naF2.0\naa(lF3.0\naF4.0\naas" +
	"(dVmean_\n(lF0.0\naF0.0\nasVscale_\n(lF1.0\naF2.0\nast."

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestSaveThenLoad_Classification(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "model")
	store := NewArtifactStore()
	saved := &domain.ModelArtifact{
		Manifest: domain.Manifest{
			ID:      uuid.New(),
			Format:  domain.ArtifactFormatV1,
			Variant: domain.VariantClassification,
			Labels:  []string{"LABEL_0", "LABEL_1"},
			Metrics: map[string]float64{"eval_accuracy": 0.8},
		},
		Vocabulary: domain.NewVocabulary([]string{"great", "terrible", "coffee"}),
		Classifier: &domain.ClassifierWeights{
			Weights: [][]float64{{-1, 1, 0}, {1, -1, 0}},
			Bias:    []float64{0.1, -0.1},
		},
	}

	require.NoError(t, store.Save(context.Background(), dir, saved))
	for _, name := range []string{domain.ManifestFile, domain.VocabularyFile, domain.WeightsFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	loaded, err := store.Load(context.Background(), dir)
	require.NoError(t, err)
	require.NoError(t, loaded.Validate())
	assert.Equal(t, saved.Manifest.ID, loaded.Manifest.ID)
	assert.Equal(t, saved.Classifier, loaded.Classifier)
	assert.Equal(t, 3, loaded.Vocabulary.Size())
	id, ok := loaded.Vocabulary.ID("coffee")
	assert.True(t, ok)
	assert.Equal(t, 2, id)
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := NewArtifactStore().Load(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, domain.ErrArtifactLoad)
}

func TestLoad_EmptyDirectory(t *testing.T) {
	_, err := NewArtifactStore().Load(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, domain.ErrArtifactLoad)
}

func TestLoad_MissingWeights(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, domain.ManifestFile, `{"format": "1", "variant": "summarization"}`)
	writeFile(t, dir, domain.VocabularyFile, `{"model": 0}`)

	_, err := NewArtifactStore().Load(context.Background(), dir)

	require.ErrorIs(t, err, domain.ErrArtifactLoad)
	assert.Contains(t, err.Error(), domain.WeightsFile)
}

func TestLoad_CorruptManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, domain.ManifestFile, `{"variant": `)

	_, err := NewArtifactStore().Load(context.Background(), dir)

	assert.ErrorIs(t, err, domain.ErrArtifactLoad)
}

func TestLoad_UnknownVariant(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, domain.ManifestFile, `{"format": "1", "variant": "translation"}`)

	_, err := NewArtifactStore().Load(context.Background(), dir)

	assert.ErrorIs(t, err, domain.ErrArtifactLoad)
	assert.ErrorIs(t, err, domain.ErrUnknownVariant)
}

func TestLoad_ClusteringJSONWithoutManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, domain.ClusteringFile,
		`{"model": {"cluster_centers": [[0, 0], [5, 5]]}, "scaler": {"mean": [1, 1], "scale": [2, 2]}}`)

	a, err := NewArtifactStore().Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, domain.VariantClustering, a.Variant())
	require.NoError(t, a.Validate())
	got, err := a.Clustering.Assign([][]float64{{1, 1}, {11, 11}})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, got)
}

func TestLoad_ClusteringPickle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, domain.ClusteringPickle, kmeansPickle)

	a, err := NewArtifactStore().Load(context.Background(), dir)
	require.NoError(t, err)

	require.NoError(t, a.Validate())
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, a.Clustering.Model.Centroids)
	assert.Equal(t, []float64{0, 0}, a.Clustering.Scaler.Mean)
	assert.Equal(t, []float64{1, 2}, a.Clustering.Scaler.Scale)
}

func TestLoad_PickleWithWrongShape(t *testing.T) {
	dir := t.TempDir()
	// a bare list instead of a (model, scaler) tuple
	writeFile(t, dir, domain.ClusteringPickle, "(lF1.0\na.")

	_, err := NewArtifactStore().Load(context.Background(), dir)

	assert.ErrorIs(t, err, domain.ErrArtifactLoad)
}
