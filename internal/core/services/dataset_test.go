package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-serving-adapters/internal/core/domain"
)

func reviewsCSV(n int) string {
	var b strings.Builder
	b.WriteString("\ufeffId,ProductId,Score,Summary,Text\n")
	for i := 0; i < n; i++ {
		score := 1 + i%5
		fmt.Fprintf(&b, "%d,B00%d,%d,\"Summary %d\",\"Review text number %d, with a comma\"\n", i+1, i, score, i, i)
	}
	return b.String()
}

func mustTable(t *testing.T, csv string) *Table {
	t.Helper()
	table, err := ReadTable(strings.NewReader(csv))
	require.NoError(t, err)
	return table
}

func TestReadTable(t *testing.T) {
	table := mustTable(t, reviewsCSV(3))

	assert.Len(t, table.Rows, 3)
	idx, err := table.Column("Id")
	require.NoError(t, err, "byte order mark must not leak into the first column name")
	assert.Equal(t, 0, idx)

	_, err = table.Column("Sentiment")
	assert.ErrorIs(t, err, domain.ErrMissingColumn)
}

func TestReadTable_Empty(t *testing.T) {
	_, err := ReadTable(strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrEmptyDataset)
}

func TestBuildDataset_Classification(t *testing.T) {
	recipe, err := domain.RecipeByName("classification")
	require.NoError(t, err)

	ds, err := BuildDataset(mustTable(t, reviewsCSV(20)), recipe, 42)
	require.NoError(t, err)

	assert.Len(t, ds.Validation, 2)
	assert.Len(t, ds.Train, 18)
	for _, ex := range append(ds.Train, ds.Validation...) {
		score := 1 + ex.Row%5
		if score > 3 {
			assert.Equal(t, 1, ex.Label, "row %d", ex.Row)
		} else {
			assert.Equal(t, 0, ex.Label, "row %d", ex.Row)
		}
	}
}

func TestBuildDataset_ClassificationHead(t *testing.T) {
	recipe, err := domain.RecipeByName("classification")
	require.NoError(t, err)

	ds, err := BuildDataset(mustTable(t, reviewsCSV(250)), recipe, 42)
	require.NoError(t, err)

	assert.Equal(t, 200, len(ds.Train)+len(ds.Validation))
	for _, ex := range append(ds.Train, ds.Validation...) {
		assert.Less(t, ex.Row, 200)
	}
}

func TestBuildDataset_SameSeedSamePartition(t *testing.T) {
	recipe, err := domain.RecipeByName("classification")
	require.NoError(t, err)
	table := mustTable(t, reviewsCSV(100))

	a, err := BuildDataset(table, recipe, 42)
	require.NoError(t, err)
	b, err := BuildDataset(table, recipe, 42)
	require.NoError(t, err)
	c, err := BuildDataset(table, recipe, 7)
	require.NoError(t, err)

	assert.Equal(t, a.Train, b.Train)
	assert.Equal(t, a.Validation, b.Validation)
	assert.NotEqual(t, a.Validation, c.Validation)
}

func TestBuildDataset_SummarizationSampleAndPrefix(t *testing.T) {
	recipe, err := domain.RecipeByName("summarization")
	require.NoError(t, err)
	recipe.SampleSize = 8
	recipe.TrainSize = 6

	ds, err := BuildDataset(mustTable(t, reviewsCSV(10)), recipe, 42)
	require.NoError(t, err)

	assert.Len(t, ds.Train, 6)
	assert.Len(t, ds.Validation, 2)
	seen := map[int]bool{}
	for _, ex := range append(ds.Train, ds.Validation...) {
		assert.True(t, strings.HasPrefix(ex.Text, "summarize: "))
		assert.Equal(t, fmt.Sprintf("Summary %d", ex.Row), ex.Target)
		assert.False(t, seen[ex.Row], "row %d sampled twice", ex.Row)
		seen[ex.Row] = true
	}
}

func TestBuildDataset_DropsIncompleteRows(t *testing.T) {
	recipe, err := domain.RecipeByName("classification")
	require.NoError(t, err)
	csv := "Text,Score\ngood,5\n,4\nbad,\nmeh,n/a\nfine,4\nawful,1\n"

	ds, err := BuildDataset(mustTable(t, csv), recipe, 42)
	require.NoError(t, err)

	assert.Equal(t, 3, len(ds.Train)+len(ds.Validation))
}

func TestBuildDataset_TooFewRows(t *testing.T) {
	recipe, err := domain.RecipeByName("classification")
	require.NoError(t, err)

	_, err = BuildDataset(mustTable(t, "Text,Score\ngood,5\n"), recipe, 42)
	assert.ErrorIs(t, err, domain.ErrEmptyDataset)
}

func TestBuildDataset_MissingColumn(t *testing.T) {
	recipe, err := domain.RecipeByName("summarization")
	require.NoError(t, err)

	_, err = BuildDataset(mustTable(t, "Text,Score\ngood,5\nbad,1\n"), recipe, 42)
	assert.ErrorIs(t, err, domain.ErrMissingColumn)
}
