package conversation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// queueClient is the transport the enricher publishes jobs through.
// SQSQueue serves deployments; MemoryQueue serves tests and local runs.
type queueClient interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// enrichmentJob asks a worker to refine one agent reply after the fact.
type enrichmentJob struct {
	ID             string   `json:"id"`
	ConversationID string   `json:"conversation_id"`
	State          string   `json:"state"`
	BorrowerText   string   `json:"borrower_text"`
	DefaultReply   string   `json:"default_reply"`
	History        []string `json:"history"`
}

func encodeJob(job enrichmentJob) (enrichmentJob, string, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	body, err := json.Marshal(job)
	if err != nil {
		return enrichmentJob{}, "", fmt.Errorf("conversation: failed to encode job: %w", err)
	}
	return job, string(body), nil
}
