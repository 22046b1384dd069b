package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/harborwell/harborwell/internal/jobs"
	"github.com/harborwell/harborwell/internal/notify"
)

// proposalNotifier handles proposal announcement tasks by rendering and
// delivering the corresponding email.
type proposalNotifier struct {
	sender  notify.Sender
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

func (n *proposalNotifier) handleCreated(ctx context.Context, t *asynq.Task) error {
	tracker := n.metrics.Track(TaskProposalCreated)
	return tracker.End(n.deliverCreated(ctx, t))
}

func (n *proposalNotifier) deliverCreated(ctx context.Context, t *asynq.Task) error {
	var payload ProposalCreatedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.ClientEmail == "" {
		n.logger.Info("skipping creation email, no client address",
			slog.String("proposal_id", payload.ProposalID))
		return nil
	}
	msg, err := notify.RenderProposalCreated(payload.ClientEmail, notify.ProposalEmailData{
		ClientName:     payload.ClientName,
		ProposalID:     payload.ProposalID,
		TotalEventCost: payload.TotalEventCost,
	})
	if err != nil {
		return asynq.SkipRetry
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("deliver creation email: %w", err)
	}
	return nil
}

func (n *proposalNotifier) handleEdited(ctx context.Context, t *asynq.Task) error {
	tracker := n.metrics.Track(TaskProposalEdited)
	return tracker.End(n.deliverEdited(ctx, t))
}

func (n *proposalNotifier) deliverEdited(ctx context.Context, t *asynq.Task) error {
	var payload ProposalEditedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.ClientEmail == "" {
		n.logger.Info("skipping edit email, no client address",
			slog.String("proposal_id", payload.ProposalID))
		return nil
	}
	msg, err := notify.RenderProposalEdited(payload.ClientEmail, notify.ProposalEmailData{
		ClientName:     payload.ClientName,
		ProposalID:     payload.ProposalID,
		TotalEventCost: payload.TotalEventCost,
		Changes:        payload.Changes,
	})
	if err != nil {
		return asynq.SkipRetry
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("deliver edit email: %w", err)
	}
	return nil
}
