package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"model-serving-adapters/internal/core/domain"
)

// Table is a CSV file keyed by its header row
type Table struct {
	Header []string
	Rows   [][]string
	index  map[string]int
}

// ReadTable reads a CSV stream whose first record is the header.
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: no header row", domain.ErrEmptyDataset)
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	t := &Table{Header: header, index: make(map[string]int, len(header))}
	for i, h := range header {
		t.index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record %d: %w", len(t.Rows)+1, err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// Column returns the index of name
func (t *Table) Column(name string) (int, error) {
	i, ok := t.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrMissingColumn, name)
	}
	return i, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// BuildDataset cleans, labels and partitions table rows following recipe.
// Shuffling draws from a single source seeded with seed, so identical input and
// seed always give identical partitions.
func BuildDataset(t *Table, recipe domain.Recipe, seed int64) (*domain.Dataset, error) {
	textCol, err := t.Column(recipe.TextColumn)
	if err != nil {
		return nil, err
	}
	targetCol, err := t.Column(recipe.TargetColumn)
	if err != nil {
		return nil, err
	}

	rows := t.Rows
	if recipe.Head > 0 && recipe.Head < len(rows) {
		rows = rows[:recipe.Head]
	}

	examples := make([]domain.Example, 0, len(rows))
	dropped := 0
	for i, row := range rows {
		text, target := cell(row, textCol), cell(row, targetCol)
		if text == "" || target == "" {
			dropped++
			continue
		}
		ex := domain.Example{Row: i, Text: recipe.TextPrefix + text}
		switch recipe.Variant {
		case domain.VariantClassification:
			score, err := strconv.ParseFloat(target, 64)
			if err != nil {
				dropped++
				continue
			}
			if score > recipe.ScoreThreshold {
				ex.Label = 1
			}
		case domain.VariantSummarization:
			ex.Target = target
		default:
			return nil, fmt.Errorf("%w: recipe %q targets %q", domain.ErrUnknownVariant, recipe.Name, recipe.Variant)
		}
		examples = append(examples, ex)
	}
	if dropped > 0 {
		log.WithFields(log.Fields{"recipe": recipe.Name, "dropped": dropped}).Info("dropped rows with missing or invalid values")
	}
	if len(examples) < 2 {
		return nil, fmt.Errorf("%w: %d usable rows", domain.ErrEmptyDataset, len(examples))
	}

	rng := rand.New(rand.NewSource(seed))

	if recipe.SampleSize > 0 {
		if recipe.SampleSize > len(examples) {
			log.WithFields(log.Fields{"want": recipe.SampleSize, "have": len(examples)}).Warn("sample size exceeds usable rows, using all rows")
		}
		examples = sample(rng, examples, recipe.SampleSize)
	}

	ds := &domain.Dataset{Recipe: recipe}
	if recipe.TrainSize > 0 && recipe.TrainSize < len(examples) {
		ds.Train = examples[:recipe.TrainSize]
		ds.Validation = examples[recipe.TrainSize:]
		return ds, nil
	}

	fraction := recipe.ValidationFraction
	if fraction <= 0 || fraction >= 1 {
		fraction = 0.1
	}
	nVal := int(math.Ceil(float64(len(examples)) * fraction))
	if nVal >= len(examples) {
		nVal = len(examples) - 1
	}
	perm := rng.Perm(len(examples))
	ds.Validation = pick(examples, perm[:nVal])
	ds.Train = pick(examples, perm[nVal:])
	return ds, nil
}

// sample returns n examples in seeded random order; n beyond the population keeps all.
func sample(rng *rand.Rand, examples []domain.Example, n int) []domain.Example {
	perm := rng.Perm(len(examples))
	if n < len(perm) {
		perm = perm[:n]
	}
	return pick(examples, perm)
}

func pick(examples []domain.Example, idx []int) []domain.Example {
	out := make([]domain.Example, len(idx))
	for i, j := range idx {
		out[i] = examples[j]
	}
	return out
}
