package trainer

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"model-serving-adapters/internal/core/domain"
	ports "model-serving-adapters/internal/core/ports/output"
)

type builtinTrainer struct {
	vocabLimit int
}

// NewBuiltinTrainer creates the in-process trainer: softmax regression for
// classification, reference-summary term weighting for summarization.
func NewBuiltinTrainer() ports.Trainer {
	return &builtinTrainer{vocabLimit: MaxVocabulary}
}

func (t *builtinTrainer) Name() string { return "builtin" }

func (t *builtinTrainer) Fit(ctx context.Context, ds *domain.Dataset, hp domain.Hyperparameters) (*domain.FittedModel, error) {
	if len(ds.Train) == 0 {
		return nil, domain.ErrEmptyDataset
	}
	if err := hp.Validate(); err != nil {
		return nil, err
	}

	switch ds.Recipe.Variant {
	case domain.VariantClassification:
		return t.fitClassifier(ctx, ds, hp)
	case domain.VariantSummarization:
		return t.fitSummarizer(ctx, ds, hp)
	default:
		return nil, fmt.Errorf("%w: builtin trainer cannot fit %q", domain.ErrUnknownVariant, ds.Recipe.Variant)
	}
}

// ============================================================================
// Classification
// ============================================================================

func (t *builtinTrainer) fitClassifier(ctx context.Context, ds *domain.Dataset, hp domain.Hyperparameters) (*domain.FittedModel, error) {
	labels := len(ds.Recipe.Labels)
	if labels < 2 {
		return nil, fmt.Errorf("%w: classification needs at least two labels", domain.ErrInvalidHyperparameters)
	}

	vocab := buildVocabulary(exampleTexts(ds, ds.Train), t.vocabLimit)
	x := featurize(vocab, ds, ds.Train)
	xVal := featurize(vocab, ds, ds.Validation)

	w := &domain.ClassifierWeights{
		Weights: make([][]float64, labels),
		Bias:    make([]float64, labels),
	}
	for k := range w.Weights {
		w.Weights[k] = make([]float64, vocab.Size())
	}

	n := len(x)
	stepsPerEpoch := (n + hp.BatchSize - 1) / hp.BatchSize
	total := stepsPerEpoch * hp.Epochs
	rng := rand.New(rand.NewSource(hp.Seed))
	probs := make([]float64, labels)
	metrics := map[string]float64{}

	step := 0
	for epoch := 1; epoch <= hp.Epochs; epoch++ {
		perm := rng.Perm(n)
		var epochLoss float64
		for start := 0; start < n; start += hp.BatchSize {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			end := start + hp.BatchSize
			if end > n {
				end = n
			}
			step++
			lr := scheduledRate(hp, step, total)

			decay := 1 - lr*hp.WeightDecay
			for k := range w.Weights {
				floats.Scale(decay, w.Weights[k])
			}

			var batchLoss float64
			scale := lr / float64(end-start)
			for _, i := range perm[start:end] {
				ex := ds.Train[i]
				copy(probs, w.Probabilities(x[i]))
				batchLoss -= math.Log(math.Max(probs[ex.Label], 1e-12))
				for k := range w.Weights {
					g := probs[k]
					if k == ex.Label {
						g--
					}
					floats.AddScaled(w.Weights[k], -scale*g, x[i])
					w.Bias[k] -= scale * g
				}
			}
			batchLoss /= float64(end - start)
			epochLoss += batchLoss * float64(end-start)

			if hp.LoggingSteps > 0 && step%hp.LoggingSteps == 0 {
				log.WithFields(log.Fields{
					"step":          step,
					"epoch":         epoch,
					"loss":          batchLoss,
					"learning_rate": lr,
				}).Info("train step")
			}
		}
		metrics["train_loss"] = epochLoss / float64(n)

		if hp.EvalStrategy == domain.EvalEpoch && len(xVal) > 0 {
			evalLoss := crossEntropy(w, xVal, ds.Validation)
			metrics["eval_loss"] = evalLoss
			log.WithFields(log.Fields{"epoch": epoch, "eval_loss": evalLoss}).Info("evaluation")
		}
	}
	metrics["train_steps"] = float64(step)

	return &domain.FittedModel{Vocabulary: vocab, Classifier: w, Metrics: metrics}, nil
}

func featurize(vocab *domain.Vocabulary, ds *domain.Dataset, examples []domain.Example) [][]float64 {
	texts := exampleTexts(ds, examples)
	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i] = domain.Features(vocab, text)
	}
	return out
}

func crossEntropy(w *domain.ClassifierWeights, x [][]float64, examples []domain.Example) float64 {
	var loss float64
	for i, ex := range examples {
		loss -= math.Log(math.Max(w.Probabilities(x[i])[ex.Label], 1e-12))
	}
	return loss / float64(len(examples))
}

// scheduledRate is a linear warmup followed by linear decay to zero.
func scheduledRate(hp domain.Hyperparameters, step, total int) float64 {
	if hp.WarmupSteps > 0 && step < hp.WarmupSteps {
		return hp.LearningRate * float64(step) / float64(hp.WarmupSteps)
	}
	if total <= hp.WarmupSteps {
		return hp.LearningRate
	}
	remaining := float64(total-step) / float64(total-hp.WarmupSteps)
	return hp.LearningRate * math.Max(remaining, 0)
}

// ============================================================================
// Summarization
// ============================================================================

// fitSummarizer weights each word by its smoothed IDF times the smoothed rate at
// which it survives from a text into its reference summary. The fit is closed form,
// so no hyperparameter applies.
func (t *builtinTrainer) fitSummarizer(ctx context.Context, ds *domain.Dataset, _ domain.Hyperparameters) (*domain.FittedModel, error) {
	texts := exampleTexts(ds, ds.Train)
	vocab := buildVocabulary(texts, t.vocabLimit)

	docFreq := make([]float64, vocab.Size())
	kept := make([]float64, vocab.Size())
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		inSummary := make(map[string]bool)
		for _, w := range domain.Words(ds.Train[i].Target) {
			inSummary[w] = true
		}
		seen := make(map[int]bool)
		for _, w := range domain.Words(text) {
			id, ok := vocab.ID(w)
			if !ok || seen[id] {
				continue
			}
			seen[id] = true
			docFreq[id]++
			if inSummary[w] {
				kept[id]++
			}
		}
	}

	n := float64(len(texts))
	weights := make([]float64, vocab.Size())
	for id := range weights {
		idf := math.Log((1+n)/(1+docFreq[id])) + 1
		keepRate := (kept[id] + 1) / (docFreq[id] + 2)
		weights[id] = idf * keepRate
	}

	sw := &domain.SummarizerWeights{Weights: weights}
	if len(weights) > 0 {
		sw.DefaultWeight = stat.Mean(weights, nil)
	}

	log.WithFields(log.Fields{
		"documents":  len(texts),
		"vocabulary": vocab.Size(),
	}).Info("term weights fitted")

	return &domain.FittedModel{
		Vocabulary: vocab,
		Summarizer: sw,
		Metrics:    map[string]float64{"train_documents": n},
	}, nil
}
