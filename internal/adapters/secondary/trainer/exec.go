package trainer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"

	"model-serving-adapters/internal/core/domain"
	ports "model-serving-adapters/internal/core/ports/output"
)

// execJob is written to the external trainer's stdin
type execJob struct {
	Recipe          string                 `json:"recipe"`
	Variant         domain.Variant         `json:"variant"`
	Labels          []string               `json:"labels,omitempty"`
	Hyperparameters domain.Hyperparameters `json:"hyperparameters"`
	Train           []domain.Example       `json:"train"`
	Validation      []domain.Example       `json:"validation"`
}

// execResult is read from the external trainer's stdout
type execResult struct {
	Vocabulary *domain.Vocabulary        `json:"vocabulary"`
	Summarizer *domain.SummarizerWeights `json:"summarizer,omitempty"`
	Classifier *domain.ClassifierWeights `json:"classifier,omitempty"`
	Metrics    map[string]float64        `json:"metrics,omitempty"`
	Error      string                    `json:"error,omitempty"`
}

type execTrainer struct {
	command []string
}

// NewExecTrainer delegates fitting to an external command speaking JSON over
// stdin/stdout, e.g. "python3 train.py --json".
func NewExecTrainer(command string) (ports.Trainer, error) {
	parts := strings.Fields(strings.TrimSpace(command))
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: trainer command is empty", domain.ErrTrainerUnavailable)
	}
	return &execTrainer{command: parts}, nil
}

func (t *execTrainer) Name() string { return "exec:" + t.command[0] }

func (t *execTrainer) Fit(ctx context.Context, ds *domain.Dataset, hp domain.Hyperparameters) (*domain.FittedModel, error) {
	payload, err := json.Marshal(execJob{
		Recipe:          ds.Recipe.Name,
		Variant:         ds.Recipe.Variant,
		Labels:          ds.Recipe.Labels,
		Hyperparameters: hp,
		Train:           ds.Train,
		Validation:      ds.Validation,
	})
	if err != nil {
		return nil, fmt.Errorf("encode trainer job: %w", err)
	}

	cmd := exec.CommandContext(ctx, t.command[0], t.command[1:]...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.WithFields(log.Fields{
		"command": strings.Join(t.command, " "),
		"train":   len(ds.Train),
	}).Info("starting external trainer")

	if runErr := cmd.Run(); runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		errText := strings.TrimSpace(stderr.String())
		var execErr *exec.Error
		var pathErr *os.PathError
		if errors.As(runErr, &execErr) || errors.As(runErr, &pathErr) {
			return nil, fmt.Errorf("%w: %w", domain.ErrTrainerUnavailable, runErr)
		}
		if errText == "" {
			return nil, fmt.Errorf("%w: %w", domain.ErrTrainerFailed, runErr)
		}
		return nil, fmt.Errorf("%w: %w: %s", domain.ErrTrainerFailed, runErr, errText)
	}

	var res execResult
	if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
		return nil, fmt.Errorf("%w: decode trainer output: %w", domain.ErrTrainerFailed, err)
	}
	if strings.TrimSpace(res.Error) != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrTrainerFailed, res.Error)
	}
	if res.Vocabulary == nil {
		return nil, fmt.Errorf("%w: trainer output has no vocabulary", domain.ErrTrainerFailed)
	}

	return &domain.FittedModel{
		Vocabulary: res.Vocabulary,
		Summarizer: res.Summarizer,
		Classifier: res.Classifier,
		Metrics:    res.Metrics,
	}, nil
}
