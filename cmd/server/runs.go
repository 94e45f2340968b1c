package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"model-serving-adapters/internal/core/domain"
	ports "model-serving-adapters/internal/core/ports/output"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs [RUN_ID]",
		Short: "List recorded training runs, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRuns,
	}
	cmd.Flags().String("recipe", "", "Only runs of this recipe")
	cmd.Flags().String("status", "", "Only runs in this status (RUNNING, SUCCEEDED, FAILED)")
	cmd.Flags().Int("limit", 20, "Maximum number of runs to list")
	return cmd
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, closer, err := setup(nil)
	if err != nil {
		return err
	}
	defer closer.Close()

	runs, closeRuns, err := openRunStore(cmd.Context(), cfg.Database)
	if err != nil {
		return err
	}
	defer closeRuns()
	if runs == nil {
		return fmt.Errorf("%w: set DB_ENABLED=true", domain.ErrTrainingRunStoreDisabled)
	}

	if len(args) == 1 {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", args[0], err)
		}
		run, err := runs.GetByID(cmd.Context(), id)
		if errors.Is(err, domain.ErrTrainingRunNotFound) {
			return fmt.Errorf("run %s not found", id)
		} else if err != nil {
			return err
		}
		renderRuns([]*domain.TrainingRun{run})
		return nil
	}

	recipe, _ := cmd.Flags().GetString("recipe")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")

	items, total, err := runs.List(cmd.Context(), ports.TrainingRunFilter{
		Recipe: recipe,
		Status: status,
		Limit:  limit,
	})
	if err != nil {
		return err
	}
	renderRuns(items)
	if total > len(items) {
		fmt.Printf("\n%d of %d runs shown\n", len(items), total)
	}
	return nil
}

func renderRuns(items []*domain.TrainingRun) {
	var data [][]string
	for _, r := range items {
		finished := "-"
		if r.FinishedAt != nil {
			finished = r.FinishedAt.Sub(r.CreatedAt).Round(time.Second).String()
		}
		data = append(data, []string{
			r.ID.String(),
			r.Recipe,
			string(r.Status),
			fmt.Sprintf("%d/%d", r.TrainRows, r.ValidationRows),
			finished,
			r.CreatedAt.Local().Format(time.DateTime),
		})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "RECIPE", "STATUS", "ROWS", "DURATION", "CREATED"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}
