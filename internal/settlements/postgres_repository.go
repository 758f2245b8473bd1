package settlements

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores settlement offers in the relational
// database. The audit trail lives in a jsonb column.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("settlements: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const offerColumns = `
	id, borrower_id, dpd_at_offer, principal_outstanding,
	recommended_amount, offered_amount, status, valid_until,
	accepted_at, notes, audit, created_at, updated_at
`

// Create inserts a new offer.
func (r *PostgresRepository) Create(ctx context.Context, o *Offer) (*Offer, error) {
	id := uuid.New()
	audit := o.Audit
	if audit == nil {
		audit = []AuditEvent{}
	}
	auditJSON, err := json.Marshal(audit)
	if err != nil {
		return nil, fmt.Errorf("settlements: marshal audit: %w", err)
	}

	query := `
		INSERT INTO settlements (
			id, borrower_id, dpd_at_offer, principal_outstanding,
			recommended_amount, offered_amount, valid_until, notes, audit
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		id,
		o.BorrowerID,
		o.DPDAtOffer,
		o.PrincipalOutstanding,
		o.RecommendedAmount,
		o.OfferedAmount,
		o.ValidUntil,
		o.Notes,
		auditJSON,
	).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("settlements: insert failed: %w", err)
	}

	cp := *o
	cp.ID = id.String()
	cp.Status = StatusOffered
	cp.Audit = audit
	cp.CreatedAt = createdAt
	cp.UpdatedAt = updatedAt
	return &cp, nil
}

// GetByID fetches one offer.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM settlements WHERE id = $1`
	o, err := scanOffer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("settlements: select failed: %w", err)
	}
	return o, nil
}

// List returns every offer, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM settlements ORDER BY created_at DESC`
	return r.queryMany(ctx, query)
}

// ListByBorrower returns a borrower's offers, newest first.
func (r *PostgresRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]*Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM settlements WHERE borrower_id = $1 ORDER BY created_at DESC`
	return r.queryMany(ctx, query, borrowerID)
}

// Update writes back status, acceptance and audit trail.
func (r *PostgresRepository) Update(ctx context.Context, o *Offer) error {
	auditJSON, err := json.Marshal(o.Audit)
	if err != nil {
		return fmt.Errorf("settlements: marshal audit: %w", err)
	}
	query := `
		UPDATE settlements SET
			status = $2, valid_until = $3, accepted_at = $4,
			notes = $5, audit = $6, updated_at = now()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, o.ID, o.Status, o.ValidUntil, o.AcceptedAt, o.Notes, auditJSON)
	if err != nil {
		return fmt.Errorf("settlements: update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOfferNotFound
	}
	return nil
}

func (r *PostgresRepository) queryMany(ctx context.Context, query string, args ...any) ([]*Offer, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("settlements: query failed: %w", err)
	}
	defer rows.Close()

	var out []*Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("settlements: scan failed: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOffer(row pgx.Row) (*Offer, error) {
	var o Offer
	var auditJSON []byte
	if err := row.Scan(
		&o.ID,
		&o.BorrowerID,
		&o.DPDAtOffer,
		&o.PrincipalOutstanding,
		&o.RecommendedAmount,
		&o.OfferedAmount,
		&o.Status,
		&o.ValidUntil,
		&o.AcceptedAt,
		&o.Notes,
		&auditJSON,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(auditJSON) > 0 {
		if err := json.Unmarshal(auditJSON, &o.Audit); err != nil {
			return nil, fmt.Errorf("settlements: decode audit: %w", err)
		}
	}
	return &o, nil
}
