package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/riverline/collections-platform/internal/coaching"
)

// PostgresStore persists conversations in the relational database.
// Turn history, entities, audit, coaching, and experiments are jsonb
// documents; scalar columns carry everything queries filter on.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("conversation: pgx pool required")
	}
	return &PostgresStore{pool: pool}
}

const conversationColumns = `
	id, borrower_id, channel, state, entities, turns, audit, tone,
	outcome, follow_up_at, coaching, experiments, call_sid,
	created_at, updated_at
`

type conversationDocs struct {
	entities    []byte
	turns       []byte
	audit       []byte
	coaching    []byte
	experiments []byte
}

func marshalDocs(c *Conversation) (conversationDocs, error) {
	var d conversationDocs
	var err error
	if d.entities, err = json.Marshal(c.Entities); err != nil {
		return d, fmt.Errorf("conversation: marshal entities: %w", err)
	}
	turns := c.Turns
	if turns == nil {
		turns = []Turn{}
	}
	if d.turns, err = json.Marshal(turns); err != nil {
		return d, fmt.Errorf("conversation: marshal turns: %w", err)
	}
	audit := c.Audit
	if audit == nil {
		audit = []AuditEvent{}
	}
	if d.audit, err = json.Marshal(audit); err != nil {
		return d, fmt.Errorf("conversation: marshal audit: %w", err)
	}
	if d.coaching, err = json.Marshal(c.Coaching); err != nil {
		return d, fmt.Errorf("conversation: marshal coaching: %w", err)
	}
	experiments := c.Experiments
	if experiments == nil {
		experiments = []string{}
	}
	if d.experiments, err = json.Marshal(experiments); err != nil {
		return d, fmt.Errorf("conversation: marshal experiments: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) Create(ctx context.Context, c *Conversation) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	docs, err := marshalDocs(c)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO conversations (
			id, borrower_id, channel, state, entities, turns, audit,
			tone, outcome, follow_up_at, coaching, experiments, call_sid
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`
	if err := s.pool.QueryRow(ctx, query,
		c.ID,
		c.BorrowerID,
		c.Channel,
		c.State,
		docs.entities,
		docs.turns,
		docs.audit,
		c.Tone,
		nullable(c.Outcome),
		c.FollowUpAt,
		docs.coaching,
		docs.experiments,
		nullable(c.CallSid),
	).Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("conversation: insert failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`
	return s.scanConversation(s.pool.QueryRow(ctx, query, id))
}

func (s *PostgresStore) Update(ctx context.Context, c *Conversation) error {
	docs, err := marshalDocs(c)
	if err != nil {
		return err
	}

	query := `
		UPDATE conversations
		SET state = $2, entities = $3, turns = $4, audit = $5,
		    tone = $6, outcome = $7, follow_up_at = $8, coaching = $9,
		    experiments = $10, call_sid = $11, updated_at = now()
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query,
		c.ID,
		c.State,
		docs.entities,
		docs.turns,
		docs.audit,
		c.Tone,
		nullable(c.Outcome),
		c.FollowUpAt,
		docs.coaching,
		docs.experiments,
		nullable(c.CallSid),
	)
	if err != nil {
		return fmt.Errorf("conversation: update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (s *PostgresStore) ListByBorrower(ctx context.Context, borrowerID string, limit int) ([]*Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE borrower_id = $1
		ORDER BY created_at DESC, id DESC
	`
	args := []any{borrowerID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("conversation: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Conversation
	for rows.Next() {
		c, err := s.scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]*Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("conversation: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Conversation
	for rows.Next() {
		c, err := s.scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) FindByCallSid(ctx context.Context, callSid string) (*Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE call_sid = $1`
	return s.scanConversation(s.pool.QueryRow(ctx, query, callSid))
}

func (s *PostgresStore) RecentOutcomes(ctx context.Context, borrowerID string, limit int) ([]string, error) {
	query := `
		SELECT outcome
		FROM conversations
		WHERE borrower_id = $1 AND outcome IS NOT NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := s.pool.Query(ctx, query, borrowerID, limit)
	if err != nil {
		return nil, fmt.Errorf("conversation: outcome query failed: %w", err)
	}
	defer rows.Close()

	var outcomes []string
	for rows.Next() {
		var o string
		if err := rows.Scan(&o); err != nil {
			return nil, fmt.Errorf("conversation: outcome scan failed: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

func (s *PostgresStore) scanConversation(row pgx.Row) (*Conversation, error) {
	var (
		c           Conversation
		entities    []byte
		turns       []byte
		audit       []byte
		coachDoc    []byte
		experiments []byte
		outcome     *string
		callSid     *string
	)
	err := row.Scan(
		&c.ID,
		&c.BorrowerID,
		&c.Channel,
		&c.State,
		&entities,
		&turns,
		&audit,
		&c.Tone,
		&outcome,
		&c.FollowUpAt,
		&coachDoc,
		&experiments,
		&callSid,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("conversation: scan failed: %w", err)
	}

	if err := json.Unmarshal(entities, &c.Entities); err != nil {
		return nil, fmt.Errorf("conversation: decode entities: %w", err)
	}
	c.Turns = []Turn{}
	if err := json.Unmarshal(turns, &c.Turns); err != nil {
		return nil, fmt.Errorf("conversation: decode turns: %w", err)
	}
	c.Audit = []AuditEvent{}
	if err := json.Unmarshal(audit, &c.Audit); err != nil {
		return nil, fmt.Errorf("conversation: decode audit: %w", err)
	}
	c.Coaching = coaching.Advice{}
	if err := json.Unmarshal(coachDoc, &c.Coaching); err != nil {
		return nil, fmt.Errorf("conversation: decode coaching: %w", err)
	}
	c.Experiments = []string{}
	if err := json.Unmarshal(experiments, &c.Experiments); err != nil {
		return nil, fmt.Errorf("conversation: decode experiments: %w", err)
	}
	if outcome != nil {
		c.Outcome = *outcome
	}
	if callSid != nil {
		c.CallSid = *callSid
	}
	return &c, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
