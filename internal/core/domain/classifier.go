package domain

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Features turns text into an L2-normalised bag-of-words vector.
func Features(vocab *Vocabulary, text string) []float64 {
	vec := vocab.Counts(text)
	if n := floats.Norm(vec, 2); n > 0 {
		floats.Scale(1/n, vec)
	}
	return vec
}

// Softmax writes the normalised exponentials of logits into dst and returns it.
func Softmax(dst, logits []float64) []float64 {
	if len(logits) == 0 {
		return dst[:0]
	}
	m := floats.Max(logits)
	var sum float64
	for i, z := range logits {
		dst[i] = math.Exp(z - m)
		sum += dst[i]
	}
	floats.Scale(1/sum, dst)
	return dst
}

// Probabilities runs the forward pass of the softmax layer over features x.
func (w *ClassifierWeights) Probabilities(x []float64) []float64 {
	logits := make([]float64, len(w.Weights))
	for k, row := range w.Weights {
		logits[k] = floats.Dot(row, x) + w.Bias[k]
	}
	return Softmax(logits, logits)
}

// Predict returns the arg-max label index and its probability. Ties go to the lower index.
func (w *ClassifierWeights) Predict(x []float64) (int, float64) {
	probs := w.Probabilities(x)
	best := floats.MaxIdx(probs)
	return best, probs[best]
}
