package domain

import (
	"time"
	"unicode/utf8"
)

type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// MaxErrorMessageLength bounds the error text stored on a failed execution
// record.
const MaxErrorMessageLength = 1000

// NodeResult is the opaque output of one node execution, keyed by whatever
// fields the node's executor chose to report.
type NodeResult map[string]any

// WorkflowExecution is one execution attempt. It transitions
// pending -> running -> {completed, failed}; terminal states are final and a
// re-run always creates a new record.
type WorkflowExecution struct {
	ID           string                `json:"id" bson:"id"`
	WorkflowID   string                `json:"workflow_id" bson:"workflow_id"`
	TriggeredBy  string                `json:"triggered_by" bson:"triggered_by"`
	Status       ExecutionStatus       `json:"status" bson:"status"`
	ResultData   map[string]NodeResult `json:"result_data,omitempty" bson:"result_data,omitempty"`
	ErrorMessage string                `json:"error_message,omitempty" bson:"error_message,omitempty"`
	StartedAt    time.Time             `json:"started_at" bson:"started_at"`
	CompletedAt  *time.Time            `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

func (e *WorkflowExecution) IsTerminal() bool {
	return e.Status == ExecutionStatusCompleted || e.Status == ExecutionStatusFailed
}

// MarkFailed records the terminal failed state, truncating the message to at
// most MaxErrorMessageLength bytes. The cut lands on a rune boundary so the
// stored message stays valid UTF-8.
func (e *WorkflowExecution) MarkFailed(message string, at time.Time) {
	if len(message) > MaxErrorMessageLength {
		cut := MaxErrorMessageLength
		for cut > 0 && !utf8.RuneStart(message[cut]) {
			cut--
		}

		message = message[:cut]
	}

	e.Status = ExecutionStatusFailed
	e.ErrorMessage = message
	e.CompletedAt = &at
}

func (e *WorkflowExecution) MarkCompleted(at time.Time) {
	e.Status = ExecutionStatusCompleted
	e.CompletedAt = &at
}

// ExecutionContext is the run-scoped accumulator handed to node executors.
// Exactly one execution run owns it; only Results is ever persisted, on the
// execution record.
type ExecutionContext struct {
	ProjectID   string
	WorkflowID  string
	TriggeredBy string
	Results     map[string]NodeResult
}

func NewExecutionContext(projectID, workflowID, triggeredBy string) *ExecutionContext {
	return &ExecutionContext{
		ProjectID:   projectID,
		WorkflowID:  workflowID,
		TriggeredBy: triggeredBy,
		Results:     map[string]NodeResult{},
	}
}

func (c *ExecutionContext) SetResult(nodeID string, result NodeResult) {
	c.Results[nodeID] = result
}
