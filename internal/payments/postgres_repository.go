package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores payments in the relational database.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("payments: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Create records a payment.
func (r *PostgresRepository) Create(ctx context.Context, p *Payment) (*Payment, error) {
	id := uuid.New()
	at := p.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	query := `
		INSERT INTO payments (id, borrower_id, amount, at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.pool.QueryRow(ctx, query, id, p.BorrowerID, p.Amount, at).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("payments: insert failed: %w", err)
	}

	cp := *p
	cp.ID = id.String()
	cp.At = at
	cp.CreatedAt = createdAt
	return &cp, nil
}

// ListByBorrower returns a borrower's payments, newest first.
func (r *PostgresRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]*Payment, error) {
	query := `
		SELECT id, borrower_id, amount, at, created_at
		FROM payments WHERE borrower_id = $1 ORDER BY at DESC
	`
	rows, err := r.pool.Query(ctx, query, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("payments: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.BorrowerID, &p.Amount, &p.At, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("payments: scan failed: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
