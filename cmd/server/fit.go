package main

import (
	"fmt"
	"io"
	"os/signal"
	"sort"
	"strconv"
	"syscall"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"model-serving-adapters/internal/adapters/secondary/filesystem"
	"model-serving-adapters/internal/adapters/secondary/tiktoken"
	"model-serving-adapters/internal/adapters/secondary/trainer"
	"model-serving-adapters/internal/config"
	"model-serving-adapters/internal/core/domain"
	ports "model-serving-adapters/internal/core/ports/output"
	"model-serving-adapters/internal/core/services"
)

func newFitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a model from a CSV dataset and save the artifact",
		Args:  cobra.ExactArgs(0),
		RunE:  runFit,
	}
	cmd.Flags().String("model_dir", "", "Output directory (env SM_MODEL_DIR)")
	cmd.Flags().String("train", "", "Training data directory or CSV file (env SM_CHANNEL_TRAIN)")
	cmd.Flags().String("data_file", "", "CSV file name inside the training directory")
	cmd.Flags().String("recipe", "", "Fitting recipe: classification or summarization")
	cmd.Flags().String("trainer", "", "Trainer: builtin or exec")
	cmd.Flags().Int64("seed", 42, "Seed for sampling, splitting and shuffling")
	cmd.Flags().Int("epochs", 0, "Override the recipe's epoch count")
	cmd.Flags().Int("batch_size", 0, "Override the recipe's batch size")
	return cmd
}

func runFit(cmd *cobra.Command, _ []string) error {
	cfg, closer, err := setup(cmd.Flags())
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	req, err := fitRequest(cfg.Fit)
	if err != nil {
		return err
	}

	t, err := newTrainer(cfg.Fit)
	if err != nil {
		return err
	}

	runs, closeRuns, err := openRunStore(ctx, cfg.Database)
	if err != nil {
		log.Warnf("training run ledger unavailable (continuing without it): %v", err)
		runs, closeRuns = nil, func() {}
	}
	defer closeRuns()

	fittingSvc := services.NewFittingService(t, filesystem.NewArtifactStore(), tiktoken.NewCounter(), runs)
	result, err := fittingSvc.Fit(ctx, req)
	if err != nil {
		return err
	}

	printFitSummary(cmd.OutOrStdout(), result)
	return nil
}

// fitRequest resolves the recipe and applies configured overrides to its defaults.
func fitRequest(cfg config.FitConfig) (services.FitRequest, error) {
	recipe, err := domain.RecipeByName(cfg.Recipe)
	if err != nil {
		return services.FitRequest{}, err
	}

	hp := recipe.Defaults
	hp.Seed = cfg.Seed
	if cfg.Epochs > 0 {
		hp.Epochs = cfg.Epochs
	}
	if cfg.BatchSize > 0 {
		hp.BatchSize = cfg.BatchSize
	}

	return services.FitRequest{
		DataPath:        cfg.TrainDir,
		DataFile:        cfg.DataFile,
		OutputDir:       cfg.ModelDir,
		Recipe:          recipe,
		Hyperparameters: hp,
	}, nil
}

func newTrainer(cfg config.FitConfig) (ports.Trainer, error) {
	switch cfg.Trainer {
	case "", "builtin":
		return trainer.NewBuiltinTrainer(), nil
	case "exec":
		return trainer.NewExecTrainer(cfg.TrainerCommand)
	default:
		return nil, fmt.Errorf("unknown trainer %q (want builtin or exec)", cfg.Trainer)
	}
}

func printFitSummary(w io.Writer, result *domain.TrainingArtifact) {
	fmt.Fprintf(w, "run %s saved %s model to %s\n\n", result.RunID, result.Manifest.Variant, result.Dir)

	data := [][]string{
		{"train_rows", strconv.Itoa(result.TrainRows)},
		{"validation_rows", strconv.Itoa(result.ValidationRows)},
	}
	keys := make([]string, 0, len(result.Manifest.Metrics))
	for k := range result.Manifest.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		data = append(data, []string{k, strconv.FormatFloat(result.Manifest.Metrics[k], 'f', 4, 64)})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"METRIC", "VALUE"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}

