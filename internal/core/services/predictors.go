package services

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"model-serving-adapters/internal/core/domain"
	ports "model-serving-adapters/internal/core/ports/output"
)

// predictor holds the variant forward passes. All methods are pure functions of
// (artifact, input).
type predictor struct {
	tokens ports.TokenCounter
}

// summarize extracts the highest scoring sentences, in document order, until the
// summary reaches the minimum token length, then bounds it to the maximum.
func (p predictor) summarize(a *domain.ModelArtifact, text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimSpace(strings.TrimPrefix(text, domain.SummarizePrefix))
	if text == "" {
		return ""
	}

	minLen, maxLen := a.LengthBounds()
	sentences := splitSentences(text)

	ranked := make([]int, len(sentences))
	scores := make([]float64, len(sentences))
	for i, sent := range sentences {
		ranked[i] = i
		scores[i] = sentenceScore(a, sent)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i]] > scores[ranked[j]]
	})

	chosen := make([]bool, len(sentences))
	var summary string
	for _, idx := range ranked {
		chosen[idx] = true
		summary = joinChosen(sentences, chosen)
		if p.tokens.Count(summary) >= minLen {
			break
		}
	}

	return strings.TrimSpace(p.tokens.Truncate(summary, maxLen))
}

// classify runs the softmax layer over the bag-of-words features of text
func (p predictor) classify(a *domain.ModelArtifact, text string) domain.Classification {
	idx, score := a.Classifier.Predict(domain.Features(a.Vocabulary, text))
	return domain.Classification{Label: a.Manifest.Labels[idx], Score: score}
}

// cluster assigns every row to its nearest centroid after rescaling
func (p predictor) cluster(a *domain.ModelArtifact, rows [][]float64) (domain.ClusterAssignments, error) {
	if len(rows) == 0 {
		return domain.ClusterAssignments{Predictions: []int{}}, nil
	}
	assigned, err := a.Clustering.Assign(rows)
	if err != nil {
		return domain.ClusterAssignments{}, err
	}
	return domain.ClusterAssignments{Predictions: assigned}, nil
}

// sentenceScore is the summed word weight normalised by sqrt(length), so long
// sentences do not win on length alone.
func sentenceScore(a *domain.ModelArtifact, sentence string) float64 {
	words := domain.Words(sentence)
	if len(words) == 0 {
		return 0
	}
	var total float64
	for _, w := range words {
		if id, ok := a.Vocabulary.ID(w); ok {
			total += a.Summarizer.Weights[id]
		} else {
			total += a.Summarizer.DefaultWeight
		}
	}
	return total / math.Sqrt(float64(len(words)))
}

func joinChosen(sentences []string, chosen []bool) string {
	var b strings.Builder
	for i, s := range sentences {
		if !chosen[i] {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
	}
	return b.String()
}

// splitSentences breaks text after terminal punctuation followed by whitespace.
// HTML line breaks common in review dumps count as boundaries.
func splitSentences(text string) []string {
	text = strings.NewReplacer("<br />", "\n", "<br/>", "\n", "<br>", "\n").Replace(text)
	runes := []rune(text)

	var out []string
	start := 0
	flush := func(end int) {
		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			out = append(out, s)
		}
		start = end
	}
	for i, r := range runes {
		switch {
		case r == '\n':
			flush(i + 1)
		case r == '.' || r == '!' || r == '?':
			if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
				flush(i + 1)
			}
		}
	}
	flush(len(runes))
	return out
}
