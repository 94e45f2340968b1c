package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Words splits text into normalised word tokens: NFKC, case folded, split on
// anything that is not a letter or a digit.
func Words(text string) []string {
	text = folder.String(norm.NFKC.String(text))
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Vocabulary maps word tokens to dense ids. It is the tokenizer snapshot persisted
// next to the weights and is never mutated after construction.
type Vocabulary struct {
	ids map[string]int
}

// NewVocabulary assigns ids in first-seen order, skipping duplicates.
func NewVocabulary(tokens []string) *Vocabulary {
	ids := make(map[string]int, len(tokens))
	for _, t := range tokens {
		if _, seen := ids[t]; !seen {
			ids[t] = len(ids)
		}
	}
	return &Vocabulary{ids: ids}
}

// ID returns the id of tok
func (v *Vocabulary) ID(tok string) (int, bool) {
	if v == nil {
		return 0, false
	}
	id, ok := v.ids[tok]
	return id, ok
}

// Size is the number of distinct tokens
func (v *Vocabulary) Size() int {
	if v == nil {
		return 0
	}
	return len(v.ids)
}

// Counts returns the bag-of-words count vector of text over the vocabulary.
// Out-of-vocabulary words are dropped.
func (v *Vocabulary) Counts(text string) []float64 {
	vec := make([]float64, v.Size())
	for _, w := range Words(text) {
		if id, ok := v.ID(w); ok {
			vec[id]++
		}
	}
	return vec
}

func (v *Vocabulary) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.ids)
}

func (v *Vocabulary) UnmarshalJSON(data []byte) error {
	var ids map[string]int
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	taken := make([]bool, len(ids))
	for tok, id := range ids {
		if id < 0 || id >= len(ids) || taken[id] {
			return fmt.Errorf("vocabulary id %d for %q is out of range or duplicated", id, tok)
		}
		taken[id] = true
	}
	v.ids = ids
	return nil
}
