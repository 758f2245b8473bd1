package promises

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores promises in the relational database.
type PostgresRepository struct {
	pool db
}

// NewPostgresRepository initializes a repo backed by pgxpool (or any
// compatible querier).
func NewPostgresRepository(pool db) *PostgresRepository {
	if pool == nil {
		panic("promises: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Create inserts a new open promise.
func (r *PostgresRepository) Create(ctx context.Context, req *CreatePromiseRequest) (*Promise, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO promises (id, borrower_id, amount, due_date)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query, id, req.BorrowerID, req.Amount, req.DueDate).
		Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("promises: insert failed: %w", err)
	}

	return &Promise{
		ID:         id.String(),
		BorrowerID: req.BorrowerID,
		Amount:     req.Amount,
		DueDate:    req.DueDate,
		Status:     StatusOpen,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}, nil
}

// GetByID fetches one promise.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Promise, error) {
	query := `
		SELECT id, borrower_id, amount, due_date, status, created_at, updated_at
		FROM promises WHERE id = $1
	`
	p, err := scanPromise(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPromiseNotFound
		}
		return nil, fmt.Errorf("promises: select failed: %w", err)
	}
	return p, nil
}

// List returns every promise, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*Promise, error) {
	query := `
		SELECT id, borrower_id, amount, due_date, status, created_at, updated_at
		FROM promises ORDER BY created_at DESC
	`
	return r.queryMany(ctx, query)
}

// ListByBorrower returns a borrower's promises, newest first.
func (r *PostgresRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]*Promise, error) {
	query := `
		SELECT id, borrower_id, amount, due_date, status, created_at, updated_at
		FROM promises WHERE borrower_id = $1 ORDER BY created_at DESC
	`
	return r.queryMany(ctx, query, borrowerID)
}

// UpdateStatus transitions a promise and returns the updated record.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status string) (*Promise, error) {
	query := `
		UPDATE promises SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, borrower_id, amount, due_date, status, created_at, updated_at
	`
	p, err := scanPromise(r.pool.QueryRow(ctx, query, id, status))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPromiseNotFound
		}
		return nil, fmt.Errorf("promises: update failed: %w", err)
	}
	return p, nil
}

// HasOpen reports whether the borrower still has an open promise.
func (r *PostgresRepository) HasOpen(ctx context.Context, borrowerID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM promises WHERE borrower_id = $1 AND status = $2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, borrowerID, StatusOpen).Scan(&exists); err != nil {
		return false, fmt.Errorf("promises: exists failed: %w", err)
	}
	return exists, nil
}

// StatsForBorrower counts kept and broken promises.
func (r *PostgresRepository) StatsForBorrower(ctx context.Context, borrowerID string) (int, int, error) {
	query := `
		SELECT
			count(*) FILTER (WHERE status = $2),
			count(*) FILTER (WHERE status = $3)
		FROM promises WHERE borrower_id = $1
	`
	var kept, broken int
	if err := r.pool.QueryRow(ctx, query, borrowerID, StatusKept, StatusBroken).
		Scan(&kept, &broken); err != nil {
		return 0, 0, fmt.Errorf("promises: stats failed: %w", err)
	}
	return kept, broken, nil
}

func (r *PostgresRepository) queryMany(ctx context.Context, query string, args ...any) ([]*Promise, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("promises: query failed: %w", err)
	}
	defer rows.Close()

	var out []*Promise
	for rows.Next() {
		p, err := scanPromise(rows)
		if err != nil {
			return nil, fmt.Errorf("promises: scan failed: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPromise(row pgx.Row) (*Promise, error) {
	var p Promise
	if err := row.Scan(
		&p.ID,
		&p.BorrowerID,
		&p.Amount,
		&p.DueDate,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
