package jobs

import (
	"context"
	"fmt"

	"github.com/harborwell/harborwell/internal/proposal"
)

// ProposalNotifier enqueues announcement tasks for proposal lifecycle
// events. It satisfies the proposal service's notifier contract.
type ProposalNotifier struct {
	client *Client
}

// NewProposalNotifier wraps a task client in the notifier contract.
func NewProposalNotifier(client *Client) *ProposalNotifier {
	return &ProposalNotifier{client: client}
}

func (n *ProposalNotifier) ProposalCreated(ctx context.Context, p *proposal.Proposal) error {
	payload := ProposalCreatedPayload{
		ProposalID: p.ID.String(),
		ClientName: p.ClientName,
	}
	if p.ClientEmail != nil {
		payload.ClientEmail = *p.ClientEmail
	}
	payload.TotalEventCost = proposal.FormatMoney(p.Summary.TotalEventCost)
	if _, err := n.client.EnqueueProposalCreated(ctx, payload); err != nil {
		return fmt.Errorf("enqueue created task: %w", err)
	}
	return nil
}

func (n *ProposalNotifier) ProposalEdited(ctx context.Context, p *proposal.Proposal, changes []proposal.Change) error {
	payload := ProposalEditedPayload{
		ProposalID: p.ID.String(),
		ClientName: p.ClientName,
	}
	if p.ClientEmail != nil {
		payload.ClientEmail = *p.ClientEmail
	}
	payload.TotalEventCost = proposal.FormatMoney(p.Summary.TotalEventCost)
	for _, c := range changes {
		payload.Changes = append(payload.Changes, c.Description)
	}
	if _, err := n.client.EnqueueProposalEdited(ctx, payload); err != nil {
		return fmt.Errorf("enqueue edited task: %w", err)
	}
	return nil
}
