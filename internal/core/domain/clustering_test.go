package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitStandardScaler(t *testing.T) {
	s, err := FitStandardScaler([][]float64{{1, 10}, {3, 10}})
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 10}, s.Mean)
	assert.Equal(t, []float64{1, 1}, s.Scale, "zero variance column keeps scale 1")

	_, err = FitStandardScaler(nil)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = FitStandardScaler([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, ErrInvalidInstances)
}

func TestStandardScaler_Transform(t *testing.T) {
	s := &StandardScaler{Mean: []float64{10, 20}, Scale: []float64{2, 4}}
	in := [][]float64{{12, 16}}

	out, err := s.Transform(in)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, -1}}, out)
	assert.Equal(t, [][]float64{{12, 16}}, in, "input is not modified")

	_, err = s.Transform([][]float64{{1, 2, 3}})
	assert.ErrorIs(t, err, ErrInvalidInstances)
}

func TestKMeans_NearestTiesGoLow(t *testing.T) {
	k := &KMeans{Centroids: [][]float64{{1, 0}, {-1, 0}, {5, 5}}}

	assert.Equal(t, 0, k.Nearest([]float64{0, 0}))
	assert.Equal(t, 1, k.Nearest([]float64{-2, 0}))
	assert.Equal(t, 2, k.Nearest([]float64{4, 4}))
}

func TestClusteringBundle_Validate(t *testing.T) {
	valid := ClusteringBundle{
		Model:  KMeans{Centroids: [][]float64{{0, 0}}},
		Scaler: StandardScaler{Mean: []float64{0, 0}, Scale: []float64{1, 1}},
	}
	require.NoError(t, valid.Validate())

	noCenters := valid
	noCenters.Model = KMeans{}
	assert.Error(t, noCenters.Validate())

	zeroScale := valid
	zeroScale.Scaler = StandardScaler{Mean: []float64{0, 0}, Scale: []float64{1, 0}}
	assert.Error(t, zeroScale.Validate())

	wrongDim := valid
	wrongDim.Model = KMeans{Centroids: [][]float64{{0, 0, 0}}}
	assert.Error(t, wrongDim.Validate())
}

func TestClusteringBundle_AssignIsRowIndependent(t *testing.T) {
	b := ClusteringBundle{
		Model:  KMeans{Centroids: [][]float64{{0, 0}, {1, 1}}},
		Scaler: StandardScaler{Mean: []float64{0, 0}, Scale: []float64{10, 10}},
	}

	both, err := b.Assign([][]float64{{1, 1}, {10, 10}})
	require.NoError(t, err)
	single, err := b.Assign([][]float64{{10, 10}})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, both)
	assert.Equal(t, both[1], single[0])
}
