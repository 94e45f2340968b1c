package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"model-serving-adapters/internal/core/domain"
	ports "model-serving-adapters/internal/core/ports/output"
)

const trainingRunSchema = `
	CREATE TABLE IF NOT EXISTS training_run (
		id              UUID PRIMARY KEY,
		created_at      TIMESTAMPTZ NOT NULL,
		finished_at     TIMESTAMPTZ,
		recipe          TEXT NOT NULL,
		variant         TEXT NOT NULL,
		data_path       TEXT NOT NULL,
		output_dir      TEXT NOT NULL,
		seed            BIGINT NOT NULL,
		train_rows      INTEGER NOT NULL DEFAULT 0,
		validation_rows INTEGER NOT NULL DEFAULT 0,
		status          TEXT NOT NULL,
		metrics         JSONB NOT NULL DEFAULT '{}'::jsonb,
		error           TEXT NOT NULL DEFAULT ''
	)
`

type trainingRunRepo struct {
	pool *pgxpool.Pool
}

// NewTrainingRunRepository creates a new TrainingRunRepository
func NewTrainingRunRepository(pool *pgxpool.Pool) ports.TrainingRunRepository {
	return &trainingRunRepo{pool: pool}
}

// EnsureSchema creates the training_run table when missing
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, trainingRunSchema); err != nil {
		return fmt.Errorf("ensure training_run schema: %w", err)
	}
	return nil
}

func (r *trainingRunRepo) Create(ctx context.Context, run *domain.TrainingRun) error {
	metricsJSON, err := marshalMetrics(run.Metrics)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO training_run
			(id, created_at, finished_at, recipe, variant, data_path, output_dir,
			 seed, train_rows, validation_rows, status, metrics, error)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`
	_, err = r.pool.Exec(ctx, query,
		run.ID, run.CreatedAt, run.FinishedAt, run.Recipe, string(run.Variant),
		run.DataPath, run.OutputDir, run.Seed, run.TrainRows, run.ValidationRows,
		string(run.Status), metricsJSON, run.Error,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("create training run: duplicate id %s", run.ID)
		}
		return fmt.Errorf("create training run: %w", err)
	}
	return nil
}

func (r *trainingRunRepo) Update(ctx context.Context, run *domain.TrainingRun) error {
	metricsJSON, err := marshalMetrics(run.Metrics)
	if err != nil {
		return err
	}

	query := `
		UPDATE training_run
		SET finished_at=$1, train_rows=$2, validation_rows=$3, status=$4, metrics=$5, error=$6
		WHERE id=$7
	`
	result, err := r.pool.Exec(ctx, query,
		run.FinishedAt, run.TrainRows, run.ValidationRows,
		string(run.Status), metricsJSON, run.Error, run.ID,
	)
	if err != nil {
		return fmt.Errorf("update training run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrTrainingRunNotFound
	}
	return nil
}

func (r *trainingRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.TrainingRun, error) {
	query := `
		SELECT id, created_at, finished_at, recipe, variant, data_path, output_dir,
			   seed, train_rows, validation_rows, status, metrics, error
		FROM training_run
		WHERE id = $1
	`
	run, err := scanRun(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTrainingRunNotFound
		}
		return nil, fmt.Errorf("get training run by id: %w", err)
	}
	return run, nil
}

func (r *trainingRunRepo) List(ctx context.Context, filter ports.TrainingRunFilter) ([]*domain.TrainingRun, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if filter.Recipe != "" {
		conditions = append(conditions, fmt.Sprintf("recipe = $%d", argPos))
		args = append(args, filter.Recipe)
		argPos++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, filter.Status)
		argPos++
	}
	whereClause := strings.Join(conditions, " AND ")

	// Count
	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM training_run WHERE %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count training runs: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(`
		SELECT id, created_at, finished_at, recipe, variant, data_path, output_dir,
			   seed, train_rows, validation_rows, status, metrics, error
		FROM training_run
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list training runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.TrainingRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan training run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate training runs: %w", err)
	}
	return runs, total, nil
}

func scanRun(row pgx.Row) (*domain.TrainingRun, error) {
	var (
		run         domain.TrainingRun
		variant     string
		status      string
		metricsJSON []byte
	)
	err := row.Scan(
		&run.ID, &run.CreatedAt, &run.FinishedAt, &run.Recipe, &variant,
		&run.DataPath, &run.OutputDir, &run.Seed, &run.TrainRows, &run.ValidationRows,
		&status, &metricsJSON, &run.Error,
	)
	if err != nil {
		return nil, err
	}
	run.Variant = domain.Variant(variant)
	run.Status = domain.RunStatus(status)
	if len(metricsJSON) > 0 {
		if err := json.Unmarshal(metricsJSON, &run.Metrics); err != nil {
			return nil, fmt.Errorf("unmarshal metrics: %w", err)
		}
	}
	return &run, nil
}

func marshalMetrics(m map[string]float64) ([]byte, error) {
	if m == nil {
		m = map[string]float64{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal metrics: %w", err)
	}
	return data, nil
}
