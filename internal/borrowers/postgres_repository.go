package borrowers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores borrowers in the relational database.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("borrowers: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const borrowerColumns = `
	id, name, phone, language,
	total_loan_amount, emi_amount, next_due_date, loan_tenure_months, months_paid,
	amount_due, min_settlement_pct, hardship_flag, dispute_flag, risk_level,
	persona, active_ptp, active_offer, broken_ptp, last_outcome,
	safe_mode_flag, invalid_number_flag, legal_escalation_flag,
	segments, created_at, updated_at
`

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateBorrowerRequest) (*Borrower, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO borrowers (
			id, name, phone, language,
			total_loan_amount, emi_amount, next_due_date, loan_tenure_months, months_paid,
			amount_due, min_settlement_pct, risk_level, segments
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		id,
		req.Name,
		req.Phone,
		req.Language,
		req.TotalLoanAmount,
		req.EMIAmount,
		req.NextDueDate,
		req.LoanTenureMonths,
		req.MonthsPaid,
		req.AmountDue,
		req.MinSettlementPct,
		req.RiskLevel,
		req.Segments,
	).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("borrowers: insert failed: %w", err)
	}

	return &Borrower{
		ID:               id.String(),
		Name:             req.Name,
		Phone:            req.Phone,
		Language:         req.Language,
		TotalLoanAmount:  req.TotalLoanAmount,
		EMIAmount:        req.EMIAmount,
		NextDueDate:      req.NextDueDate,
		LoanTenureMonths: req.LoanTenureMonths,
		MonthsPaid:       req.MonthsPaid,
		AmountDue:        req.AmountDue,
		MinSettlementPct: req.MinSettlementPct,
		RiskLevel:        req.RiskLevel,
		Persona:          "neutral",
		Segments:         req.Segments,
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
	}, nil
}

// GetByID fetches a single borrower.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Borrower, error) {
	query := `SELECT ` + borrowerColumns + ` FROM borrowers WHERE id = $1`
	b, err := scanBorrower(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrBorrowerNotFound
		}
		return nil, fmt.Errorf("borrowers: select failed: %w", err)
	}
	return b, nil
}

// GetByPhone fetches a single borrower by phone number.
func (r *PostgresRepository) GetByPhone(ctx context.Context, phone string) (*Borrower, error) {
	query := `SELECT ` + borrowerColumns + ` FROM borrowers WHERE phone = $1`
	b, err := scanBorrower(r.pool.QueryRow(ctx, query, phone))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrBorrowerNotFound
		}
		return nil, fmt.Errorf("borrowers: select failed: %w", err)
	}
	return b, nil
}

// List returns all borrowers ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]*Borrower, error) {
	query := `SELECT ` + borrowerColumns + ` FROM borrowers ORDER BY created_at, id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("borrowers: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Borrower
	for rows.Next() {
		b, err := scanBorrower(rows)
		if err != nil {
			return nil, fmt.Errorf("borrowers: scan failed: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Update writes back every mutable field of the record.
func (r *PostgresRepository) Update(ctx context.Context, b *Borrower) error {
	query := `
		UPDATE borrowers SET
			name = $2, phone = $3, language = $4,
			total_loan_amount = $5, emi_amount = $6, next_due_date = $7,
			loan_tenure_months = $8, months_paid = $9,
			amount_due = $10, min_settlement_pct = $11,
			hardship_flag = $12, dispute_flag = $13, risk_level = $14,
			persona = $15, active_ptp = $16, active_offer = $17,
			broken_ptp = $18, last_outcome = $19,
			safe_mode_flag = $20, invalid_number_flag = $21, legal_escalation_flag = $22,
			segments = $23, updated_at = now()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		b.ID,
		b.Name,
		b.Phone,
		b.Language,
		b.TotalLoanAmount,
		b.EMIAmount,
		b.NextDueDate,
		b.LoanTenureMonths,
		b.MonthsPaid,
		b.AmountDue,
		b.MinSettlementPct,
		b.HardshipFlag,
		b.DisputeFlag,
		b.RiskLevel,
		b.Persona,
		b.ActivePTP,
		b.ActiveOffer,
		b.BrokenPTPCount,
		b.LastOutcome,
		b.SafeModeFlag,
		b.InvalidNumberFlag,
		b.LegalEscalationFlag,
		b.Segments,
	)
	if err != nil {
		return fmt.Errorf("borrowers: update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBorrowerNotFound
	}
	return nil
}

func scanBorrower(row pgx.Row) (*Borrower, error) {
	var b Borrower
	var lastOutcome *string
	if err := row.Scan(
		&b.ID,
		&b.Name,
		&b.Phone,
		&b.Language,
		&b.TotalLoanAmount,
		&b.EMIAmount,
		&b.NextDueDate,
		&b.LoanTenureMonths,
		&b.MonthsPaid,
		&b.AmountDue,
		&b.MinSettlementPct,
		&b.HardshipFlag,
		&b.DisputeFlag,
		&b.RiskLevel,
		&b.Persona,
		&b.ActivePTP,
		&b.ActiveOffer,
		&b.BrokenPTPCount,
		&lastOutcome,
		&b.SafeModeFlag,
		&b.InvalidNumberFlag,
		&b.LegalEscalationFlag,
		&b.Segments,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if lastOutcome != nil {
		b.LastOutcome = *lastOutcome
	}
	return &b, nil
}
