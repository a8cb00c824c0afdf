package model

import (
	"encoding/json"
	"time"
)

// AuditRequest carries loosely structured transaction records. Each record is
// kept as raw JSON so that records which are not objects can still be judged.
type AuditRequest struct {
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
	Records        []json.RawMessage `json:"records"`
}

type RecordResult struct {
	Index     int        `json:"index"`
	Valid     bool       `json:"valid"`
	Rejection *Rejection `json:"rejection,omitempty"`
}

type AuditReport struct {
	ID        string         `json:"id"`
	Total     int            `json:"total"`
	Valid     int            `json:"valid"`
	Rejected  int            `json:"rejected"`
	Results   []RecordResult `json:"results"`
	CreatedAt time.Time      `json:"created_at"`
	Replayed  bool           `json:"replayed,omitempty"`
}

// OutcomeEvent is published for every decision and stored in the journal.
type OutcomeEvent struct {
	ID            string        `json:"id"`
	Operation     OperationKind `json:"operation"`
	AuditID       string        `json:"audit_id,omitempty"`
	RecordIndex   int           `json:"record_index"`
	Accepted      bool          `json:"accepted"`
	RejectionKind RejectionKind `json:"rejection_kind,omitempty"`
	Message       string        `json:"message,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

const TopicOutcomes = "validations.completed"
