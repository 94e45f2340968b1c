package trainer

import (
	"sort"
	"strings"

	"model-serving-adapters/internal/core/domain"
)

// MaxVocabulary caps the tokenizer snapshot
const MaxVocabulary = 20000

// buildVocabulary keeps the most frequent words of texts, ties broken
// alphabetically so the ids are reproducible.
func buildVocabulary(texts []string, limit int) *domain.Vocabulary {
	counts := make(map[string]int)
	for _, t := range texts {
		for _, w := range domain.Words(t) {
			counts[w]++
		}
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if limit > 0 && len(words) > limit {
		words = words[:limit]
	}
	return domain.NewVocabulary(words)
}

func exampleTexts(ds *domain.Dataset, examples []domain.Example) []string {
	out := make([]string, len(examples))
	for i, ex := range examples {
		out[i] = strings.TrimPrefix(ex.Text, ds.Recipe.TextPrefix)
	}
	return out
}
