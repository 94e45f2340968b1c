package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"model-serving-adapters/internal/core/domain"
	ports "model-serving-adapters/internal/core/ports/output"
)

type artifactStore struct{}

// NewArtifactStore creates an ArtifactStore backed by local directories
func NewArtifactStore() ports.ArtifactStore {
	return &artifactStore{}
}

func (s *artifactStore) Load(ctx context.Context, dir string) (*domain.ModelArtifact, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrArtifactLoad, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrArtifactLoad, dir)
	}

	a := &domain.ModelArtifact{Dir: dir}
	switch {
	case exists(filepath.Join(dir, domain.ManifestFile)):
		if err := readJSON(filepath.Join(dir, domain.ManifestFile), &a.Manifest); err != nil {
			return nil, err
		}
	case exists(filepath.Join(dir, domain.ClusteringFile)), exists(filepath.Join(dir, domain.ClusteringPickle)):
		// bundles exported straight from a notebook carry no manifest
		a.Manifest = domain.Manifest{Format: domain.ArtifactFormatV1, Variant: domain.VariantClustering}
	default:
		return nil, fmt.Errorf("%w: %s has no %s", domain.ErrArtifactLoad, dir, domain.ManifestFile)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch a.Manifest.Variant {
	case domain.VariantSummarization:
		a.Vocabulary = &domain.Vocabulary{}
		a.Summarizer = &domain.SummarizerWeights{}
		if err := readJSON(filepath.Join(dir, domain.VocabularyFile), a.Vocabulary); err != nil {
			return nil, err
		}
		if err := readJSON(filepath.Join(dir, domain.WeightsFile), a.Summarizer); err != nil {
			return nil, err
		}
	case domain.VariantClassification:
		a.Vocabulary = &domain.Vocabulary{}
		a.Classifier = &domain.ClassifierWeights{}
		if err := readJSON(filepath.Join(dir, domain.VocabularyFile), a.Vocabulary); err != nil {
			return nil, err
		}
		if err := readJSON(filepath.Join(dir, domain.WeightsFile), a.Classifier); err != nil {
			return nil, err
		}
	case domain.VariantClustering:
		bundle, err := loadClustering(dir)
		if err != nil {
			return nil, err
		}
		a.Clustering = bundle
	default:
		return nil, fmt.Errorf("%w: %w %q", domain.ErrArtifactLoad, domain.ErrUnknownVariant, a.Manifest.Variant)
	}
	return a, nil
}

func loadClustering(dir string) (*domain.ClusteringBundle, error) {
	jsonPath := filepath.Join(dir, domain.ClusteringFile)
	if exists(jsonPath) {
		var bundle domain.ClusteringBundle
		if err := readJSON(jsonPath, &bundle); err != nil {
			return nil, err
		}
		return &bundle, nil
	}

	bundle, err := loadPickledBundle(filepath.Join(dir, domain.ClusteringPickle))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrArtifactLoad, domain.ClusteringPickle, err)
	}
	return bundle, nil
}

func (s *artifactStore) Save(ctx context.Context, dir string, a *domain.ModelArtifact) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	files := map[string]any{}
	if a.Vocabulary != nil {
		files[domain.VocabularyFile] = a.Vocabulary
	}
	switch {
	case a.Summarizer != nil:
		files[domain.WeightsFile] = a.Summarizer
	case a.Classifier != nil:
		files[domain.WeightsFile] = a.Classifier
	}
	if a.Clustering != nil {
		files[domain.ClusteringFile] = a.Clustering
	}

	for name, v := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeJSON(filepath.Join(dir, name), v); err != nil {
			return err
		}
	}

	if err := writeJSON(filepath.Join(dir, domain.ManifestFile), a.Manifest); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"dir":     dir,
		"variant": a.Manifest.Variant,
		"files":   len(files) + 1,
	}).Debug("artifact saved")
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: missing %s", domain.ErrArtifactLoad, filepath.Base(path))
		}
		return fmt.Errorf("%w: read %s: %v", domain.ErrArtifactLoad, filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrArtifactLoad, filepath.Base(path), err)
	}
	return nil
}

// writeJSON replaces path through a temp file in the same directory.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", filepath.Base(path), err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
