// Package jobs defines background task types and the Asynq worker that
// processes them.
package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskProposalCreated announces a newly created proposal to its client.
	TaskProposalCreated = "proposal:created"
	// TaskProposalEdited announces an applied edit batch to the client.
	TaskProposalEdited = "proposal:edited"
)

// ProposalCreatedPayload carries the fields needed to render the creation
// announcement email.
type ProposalCreatedPayload struct {
	ProposalID     string `json:"proposal_id"`
	ClientName     string `json:"client_name"`
	ClientEmail    string `json:"client_email"`
	TotalEventCost string `json:"total_event_cost"`
}

// ProposalEditedPayload carries the fields needed to render the edit
// announcement email, including one description per applied operation.
type ProposalEditedPayload struct {
	ProposalID     string   `json:"proposal_id"`
	ClientName     string   `json:"client_name"`
	ClientEmail    string   `json:"client_email"`
	TotalEventCost string   `json:"total_event_cost"`
	Changes        []string `json:"changes"`
}

// NewProposalCreatedTask constructs an Asynq task for a creation event.
func NewProposalCreatedTask(payload ProposalCreatedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal created payload: %w", err)
	}
	return asynq.NewTask(TaskProposalCreated, data), nil
}

// NewProposalEditedTask constructs an Asynq task for an edit event.
func NewProposalEditedTask(payload ProposalEditedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal edited payload: %w", err)
	}
	return asynq.NewTask(TaskProposalEdited, data), nil
}
