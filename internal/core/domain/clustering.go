package domain

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// StandardScaler is a fitted per-feature linear rescaling: (x - mean) / scale.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// FitStandardScaler computes population mean and standard deviation per column.
// Zero-variance columns get a scale of 1 so they pass through centred.
func FitStandardScaler(rows [][]float64) (*StandardScaler, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}
	dim := len(rows[0])
	s := &StandardScaler{Mean: make([]float64, dim), Scale: make([]float64, dim)}
	col := make([]float64, len(rows))
	for j := 0; j < dim; j++ {
		for i, row := range rows {
			if len(row) != dim {
				return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidInstances, i, len(row), dim)
			}
			col[i] = row[j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		s.Mean[j], s.Scale[j] = mean, std
	}
	return s, nil
}

// Dim is the number of features the scaler was fitted on
func (s *StandardScaler) Dim() int { return len(s.Mean) }

// Transform returns rescaled copies of rows; the input is left untouched.
func (s *StandardScaler) Transform(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != s.Dim() {
			return nil, fmt.Errorf("%w: row %d has %d features, scaler expects %d", ErrInvalidInstances, i, len(row), s.Dim())
		}
		scaled := make([]float64, len(row))
		floats.SubTo(scaled, row, s.Mean)
		floats.Div(scaled, s.Scale)
		out[i] = scaled
	}
	return out, nil
}

// KMeans holds fitted centroids in the scaled feature space.
type KMeans struct {
	Centroids [][]float64 `json:"cluster_centers"`
}

// Nearest returns the index of the centroid closest to row in Euclidean distance.
// Ties resolve to the lowest index.
func (k *KMeans) Nearest(row []float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, c := range k.Centroids {
		if d := floats.Distance(row, c, 2); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// ClusteringBundle pairs the fitted model with its scaler, as it was pickled together.
type ClusteringBundle struct {
	Model  KMeans         `json:"model"`
	Scaler StandardScaler `json:"scaler"`
}

// Validate checks centroid and scaler dimensions agree.
func (b *ClusteringBundle) Validate() error {
	if len(b.Model.Centroids) == 0 {
		return errors.New("no cluster centers")
	}
	dim := b.Scaler.Dim()
	if dim == 0 || len(b.Scaler.Scale) != dim {
		return fmt.Errorf("scaler mean/scale lengths %d/%d", len(b.Scaler.Mean), len(b.Scaler.Scale))
	}
	for i, s := range b.Scaler.Scale {
		if s == 0 {
			return fmt.Errorf("scaler scale[%d] is zero", i)
		}
	}
	for i, c := range b.Model.Centroids {
		if len(c) != dim {
			return fmt.Errorf("cluster center %d has %d features, scaler has %d", i, len(c), dim)
		}
	}
	return nil
}

// Assign rescales rows and maps each to its nearest centroid. Each row is handled
// independently, so the result for a row never depends on its neighbours.
func (b *ClusteringBundle) Assign(rows [][]float64) ([]int, error) {
	scaled, err := b.Scaler.Transform(rows)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(scaled))
	for i, row := range scaled {
		out[i] = b.Model.Nearest(row)
	}
	return out, nil
}
