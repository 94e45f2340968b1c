package trainer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-serving-adapters/internal/core/domain"
)

func sentimentDataset(t *testing.T) *domain.Dataset {
	t.Helper()
	recipe, err := domain.RecipeByName("classification")
	require.NoError(t, err)

	ds := &domain.Dataset{Recipe: recipe}
	for i := 0; i < 40; i++ {
		ex := domain.Example{Row: i, Text: "awful terrible bad", Label: 0}
		if i%2 == 0 {
			ex = domain.Example{Row: i, Text: "great love excellent", Label: 1}
		}
		if i < 36 {
			ds.Train = append(ds.Train, ex)
		} else {
			ds.Validation = append(ds.Validation, ex)
		}
	}
	return ds
}

func TestBuiltin_LearnsSeparableClasses(t *testing.T) {
	ds := sentimentDataset(t)
	hp := ds.Recipe.Defaults
	hp.Epochs = 5
	hp.EvalStrategy = domain.EvalEpoch

	fitted, err := NewBuiltinTrainer().Fit(context.Background(), ds, hp)
	require.NoError(t, err)

	a := &domain.ModelArtifact{
		Manifest:   domain.Manifest{Variant: domain.VariantClassification, Labels: ds.Recipe.Labels},
		Vocabulary: fitted.Vocabulary,
		Classifier: fitted.Classifier,
	}
	require.NoError(t, a.Validate())

	pos, _ := fitted.Classifier.Predict(domain.Features(fitted.Vocabulary, "great love"))
	neg, _ := fitted.Classifier.Predict(domain.Features(fitted.Vocabulary, "terrible bad"))
	assert.Equal(t, 1, pos)
	assert.Equal(t, 0, neg)
	assert.Equal(t, float64(15), fitted.Metrics["train_steps"])
	assert.Contains(t, fitted.Metrics, "eval_loss")
	assert.Contains(t, fitted.Metrics, "train_loss")
}

func TestBuiltin_SameSeedSameWeights(t *testing.T) {
	ds := sentimentDataset(t)
	hp := ds.Recipe.Defaults

	a, err := NewBuiltinTrainer().Fit(context.Background(), ds, hp)
	require.NoError(t, err)
	b, err := NewBuiltinTrainer().Fit(context.Background(), ds, hp)
	require.NoError(t, err)

	assert.Equal(t, a.Classifier, b.Classifier)
}

func TestBuiltin_SummarizerFavoursKeptWords(t *testing.T) {
	recipe, err := domain.RecipeByName("summarization")
	require.NoError(t, err)
	ds := &domain.Dataset{Recipe: recipe}
	for i := 0; i < 10; i++ {
		ds.Train = append(ds.Train, domain.Example{
			Row:    i,
			Text:   fmt.Sprintf("summarize: the coffee number %d was strong and the price was fair", i),
			Target: "Strong coffee",
		})
	}

	fitted, err := NewBuiltinTrainer().Fit(context.Background(), ds, recipe.Defaults)
	require.NoError(t, err)

	_, hasPrefix := fitted.Vocabulary.ID("summarize")
	assert.False(t, hasPrefix, "task prefix must not enter the vocabulary")
	coffee, ok := fitted.Vocabulary.ID("coffee")
	require.True(t, ok)
	the, ok := fitted.Vocabulary.ID("the")
	require.True(t, ok)
	assert.Greater(t, fitted.Summarizer.Weights[coffee], fitted.Summarizer.Weights[the])
	assert.Equal(t, float64(10), fitted.Metrics["train_documents"])
}

func TestBuiltin_RejectsEmptyAndClustering(t *testing.T) {
	recipe, err := domain.RecipeByName("classification")
	require.NoError(t, err)

	_, err = NewBuiltinTrainer().Fit(context.Background(), &domain.Dataset{Recipe: recipe}, recipe.Defaults)
	assert.ErrorIs(t, err, domain.ErrEmptyDataset)

	recipe.Variant = domain.VariantClustering
	ds := &domain.Dataset{Recipe: recipe, Train: []domain.Example{{Text: "x"}}}
	_, err = NewBuiltinTrainer().Fit(context.Background(), ds, recipe.Defaults)
	assert.ErrorIs(t, err, domain.ErrUnknownVariant)
}

func TestBuiltin_Cancelled(t *testing.T) {
	ds := sentimentDataset(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBuiltinTrainer().Fit(ctx, ds, ds.Recipe.Defaults)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestScheduledRate(t *testing.T) {
	hp := domain.Hyperparameters{LearningRate: 1, WarmupSteps: 10}

	assert.InDelta(t, 0.5, scheduledRate(hp, 5, 110), 1e-9)
	assert.InDelta(t, 1.0, scheduledRate(hp, 10, 110), 1e-9)
	assert.InDelta(t, 0.5, scheduledRate(hp, 60, 110), 1e-9)
	assert.InDelta(t, 0.0, scheduledRate(hp, 110, 110), 1e-9)
}

func TestBuildVocabulary_FrequencyThenAlphabetical(t *testing.T) {
	v := buildVocabulary([]string{"b a c", "a b", "a"}, 2)

	assert.Equal(t, 2, v.Size())
	id, ok := v.ID("a")
	assert.True(t, ok)
	assert.Equal(t, 0, id)
	id, ok = v.ID("b")
	assert.True(t, ok)
	assert.Equal(t, 1, id)
	_, ok = v.ID("c")
	assert.False(t, ok)
}
