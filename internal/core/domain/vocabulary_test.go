package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"café", "café", "good", "2"}, Words("Ｃａｆé CAFÉ, good!! (2)"))
	assert.Empty(t, Words(" ... "))
}

func TestVocabulary_Counts(t *testing.T) {
	v := NewVocabulary([]string{"good", "bad", "good"})

	assert.Equal(t, 2, v.Size())
	assert.Equal(t, []float64{2, 1}, v.Counts("Good good BAD ugly"))

	var nilVocab *Vocabulary
	assert.Equal(t, 0, nilVocab.Size())
	_, ok := nilVocab.ID("good")
	assert.False(t, ok)
}

func TestVocabulary_JSON(t *testing.T) {
	v := NewVocabulary([]string{"a", "b"})
	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 0, "b": 1}`, string(data))

	var back Vocabulary
	require.NoError(t, json.Unmarshal(data, &back))
	id, ok := back.ID("b")
	assert.True(t, ok)
	assert.Equal(t, 1, id)

	assert.Error(t, json.Unmarshal([]byte(`{"a": 0, "b": 2}`), &back), "out of range")
	assert.Error(t, json.Unmarshal([]byte(`{"a": 0, "b": 0}`), &back), "duplicate")
}

func TestSoftmaxAndPredict(t *testing.T) {
	probs := Softmax(make([]float64, 2), []float64{0, math.Log(3)})
	assert.InDelta(t, 0.25, probs[0], 1e-9)
	assert.InDelta(t, 0.75, probs[1], 1e-9)

	w := &ClassifierWeights{Weights: [][]float64{{0, 0}, {0, 0}}, Bias: []float64{0, 0}}
	label, score := w.Predict([]float64{1, 0})
	assert.Equal(t, 0, label, "ties go to the lower index")
	assert.InDelta(t, 0.5, score, 1e-9)

	w = &ClassifierWeights{Weights: [][]float64{{-1, 1}, {1, -1}}, Bias: []float64{0, 0}}
	label, score = w.Predict([]float64{1, 0})
	assert.Equal(t, 1, label)
	assert.Greater(t, score, 0.5)
}

func TestFeaturesAreNormalised(t *testing.T) {
	v := NewVocabulary([]string{"a", "b"})

	x := Features(v, "a a a b b b b")
	assert.InDelta(t, 0.6, x[0], 1e-9)
	assert.InDelta(t, 0.8, x[1], 1e-9)

	assert.Equal(t, []float64{0, 0}, Features(v, "unknown"))
}
