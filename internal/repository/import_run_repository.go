package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/okta-import/internal/domain"
)

// ImportRunRepository persists import runs and their per-email results.
type ImportRunRepository interface {
	Create(ctx context.Context, run *domain.ImportRun) error
	Finish(ctx context.Context, run *domain.ImportRun) error
	GetByID(ctx context.Context, id string) (*domain.ImportRun, error)
	List(ctx context.Context, limit int) ([]domain.ImportRun, error)
}

type importRunRepository struct {
	db DBTX
}

// NewImportRunRepository returns a Postgres-backed implementation.
func NewImportRunRepository(db DBTX) ImportRunRepository {
	return &importRunRepository{db: db}
}

func (r *importRunRepository) Create(ctx context.Context, run *domain.ImportRun) error {
	const query = `
        INSERT INTO import_runs (id, admin_id, status)
        VALUES ($1, $2, $3)
        RETURNING started_at`

	return r.db.QueryRow(ctx, query, run.ID, run.AdminID, run.Status).Scan(&run.StartedAt)
}

// Finish stores the final status, counters and results in one transaction.
func (r *importRunRepository) Finish(ctx context.Context, run *domain.ImportRun) (err error) {
	const updateRun = `
        UPDATE import_runs
        SET status=$1, total=$2, created=$3, failed=$4, skipped=$5, error=$6, finished_at=NOW()
        WHERE id=$7
        RETURNING finished_at`

	const insertResult = `
        INSERT INTO import_results (run_id, position, email, outcome, reason, okta_user_id, already_registered, app_assigned)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var finishedAt time.Time
	if err = tx.QueryRow(ctx, updateRun,
		run.Status,
		run.Total,
		run.Created,
		run.Failed,
		run.Skipped,
		run.Error,
		run.ID,
	).Scan(&finishedAt); err != nil {
		return err
	}
	run.FinishedAt = &finishedAt

	for _, res := range run.Results {
		if _, err = tx.Exec(ctx, insertResult,
			run.ID,
			res.Position,
			res.Email,
			res.Outcome,
			res.Reason,
			res.UserID,
			res.AlreadyRegistered,
			res.AppAssigned,
		); err != nil {
			return fmt.Errorf("insert result %d: %w", res.Position, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *importRunRepository) GetByID(ctx context.Context, id string) (*domain.ImportRun, error) {
	const runQuery = `
        SELECT id, admin_id, status, total, created, failed, skipped, error, started_at, finished_at
        FROM import_runs WHERE id=$1`

	const resultsQuery = `
        SELECT position, email, outcome, reason, okta_user_id, already_registered, app_assigned
        FROM import_results WHERE run_id=$1 ORDER BY position`

	run, err := scanRun(r.db.QueryRow(ctx, runQuery, id))
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, resultsQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	run.Results = []domain.EmailResult{}
	for rows.Next() {
		var res domain.EmailResult
		if err := rows.Scan(
			&res.Position,
			&res.Email,
			&res.Outcome,
			&res.Reason,
			&res.UserID,
			&res.AlreadyRegistered,
			&res.AppAssigned,
		); err != nil {
			return nil, err
		}
		run.Results = append(run.Results, res)
	}
	return run, rows.Err()
}

func (r *importRunRepository) List(ctx context.Context, limit int) ([]domain.ImportRun, error) {
	const query = `
        SELECT id, admin_id, status, total, created, failed, skipped, error, started_at, finished_at
        FROM import_runs ORDER BY started_at DESC LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []domain.ImportRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func scanRun(row pgx.Row) (*domain.ImportRun, error) {
	var run domain.ImportRun
	if err := row.Scan(
		&run.ID,
		&run.AdminID,
		&run.Status,
		&run.Total,
		&run.Created,
		&run.Failed,
		&run.Skipped,
		&run.Error,
		&run.StartedAt,
		&run.FinishedAt,
	); err != nil {
		return nil, err
	}
	return &run, nil
}

// memoryImportRunRepository keeps runs in process when no database is configured.
type memoryImportRunRepository struct {
	mu   sync.RWMutex
	runs map[string]domain.ImportRun
	now  func() time.Time
}

// NewMemoryImportRunRepository returns an in-process implementation.
func NewMemoryImportRunRepository() ImportRunRepository {
	return &memoryImportRunRepository{runs: make(map[string]domain.ImportRun), now: time.Now}
}

func (r *memoryImportRunRepository) Create(_ context.Context, run *domain.ImportRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.runs[run.ID]; exists {
		return fmt.Errorf("import run %s already exists", run.ID)
	}
	run.StartedAt = r.now()
	r.runs[run.ID] = cloneRun(*run)
	return nil
}

func (r *memoryImportRunRepository) Finish(_ context.Context, run *domain.ImportRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.runs[run.ID]; !exists {
		return pgx.ErrNoRows
	}
	finished := r.now()
	run.FinishedAt = &finished
	r.runs[run.ID] = cloneRun(*run)
	return nil
}

func (r *memoryImportRunRepository) GetByID(_ context.Context, id string) (*domain.ImportRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, exists := r.runs[id]
	if !exists {
		return nil, pgx.ErrNoRows
	}
	out := cloneRun(run)
	if out.Results == nil {
		out.Results = []domain.EmailResult{}
	}
	return &out, nil
}

func (r *memoryImportRunRepository) List(_ context.Context, limit int) ([]domain.ImportRun, error) {
	r.mu.RLock()
	runs := make([]domain.ImportRun, 0, len(r.runs))
	for _, run := range r.runs {
		run.Results = nil
		runs = append(runs, run)
	}
	r.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func cloneRun(run domain.ImportRun) domain.ImportRun {
	if run.Results != nil {
		run.Results = append([]domain.EmailResult{}, run.Results...)
	}
	return run
}
