package filesystem

import (
	"fmt"
	"math/big"

	"github.com/nlpodyssey/gopickle/pickle"
	"github.com/nlpodyssey/gopickle/types"

	"model-serving-adapters/internal/core/domain"
)

// loadPickledBundle reads a pickled (model, scaler) tuple made of plain containers:
//
//	({"cluster_centers": [[...], ...]}, {"mean": [...], "scale": [...]})
//
// The sklearn attribute spellings (cluster_centers_, mean_, scale_) are accepted too.
// Pickled estimator objects and numpy arrays are not supported.
func loadPickledBundle(path string) (*domain.ClusteringBundle, error) {
	obj, err := pickle.Load(path)
	if err != nil {
		return nil, err
	}

	tuple, ok := obj.(*types.Tuple)
	if !ok || tuple.Len() != 2 {
		return nil, fmt.Errorf("expected a (model, scaler) tuple, got %T", obj)
	}

	model, err := asDict(tuple.Get(0), "model")
	if err != nil {
		return nil, err
	}
	scaler, err := asDict(tuple.Get(1), "scaler")
	if err != nil {
		return nil, err
	}

	rawCenters, err := lookup(model, "cluster_centers", "cluster_centers_")
	if err != nil {
		return nil, err
	}
	centers, err := toMatrix(rawCenters)
	if err != nil {
		return nil, fmt.Errorf("cluster_centers: %w", err)
	}

	rawMean, err := lookup(scaler, "mean", "mean_")
	if err != nil {
		return nil, err
	}
	mean, err := toVector(rawMean)
	if err != nil {
		return nil, fmt.Errorf("mean: %w", err)
	}

	rawScale, err := lookup(scaler, "scale", "scale_")
	if err != nil {
		return nil, err
	}
	scale, err := toVector(rawScale)
	if err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}

	return &domain.ClusteringBundle{
		Model:  domain.KMeans{Centroids: centers},
		Scaler: domain.StandardScaler{Mean: mean, Scale: scale},
	}, nil
}

func asDict(v any, what string) (*types.Dict, error) {
	d, ok := v.(*types.Dict)
	if !ok {
		return nil, fmt.Errorf("%s must be a dict, got %T", what, v)
	}
	return d, nil
}

func lookup(d *types.Dict, keys ...string) (any, error) {
	for _, k := range keys {
		if v, ok := d.Get(k); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("missing key %q", keys[0])
}

// sequence adapts pickled lists and tuples
type sequence interface {
	Len() int
	Get(i int) interface{}
}

func asSequence(v any) (sequence, error) {
	switch s := v.(type) {
	case *types.List:
		return s, nil
	case *types.Tuple:
		return s, nil
	default:
		return nil, fmt.Errorf("expected list or tuple, got %T", v)
	}
}

func toMatrix(v any) ([][]float64, error) {
	seq, err := asSequence(v)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, seq.Len())
	for i := range out {
		row, err := toVector(seq.Get(i))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = row
	}
	return out, nil
}

func toVector(v any) ([]float64, error) {
	seq, err := asSequence(v)
	if err != nil {
		return nil, err
	}
	out := make([]float64, seq.Len())
	for i := range out {
		switch n := seq.Get(i).(type) {
		case float64:
			out[i] = n
		case int:
			out[i] = float64(n)
		case int64:
			out[i] = float64(n)
		case *big.Int:
			f, _ := new(big.Float).SetInt(n).Float64()
			out[i] = f
		case bool:
			if n {
				out[i] = 1
			}
		default:
			return nil, fmt.Errorf("element %d is %T", i, n)
		}
	}
	return out, nil
}
