package notify

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderProposalCreated(t *testing.T) {
	msg, err := RenderProposalCreated("ops@acme.example", ProposalEmailData{
		ClientName:     "Acme Corp",
		ProposalID:     "4a1f",
		TotalEventCost: "$1,100.00",
	})
	require.NoError(t, err)

	assert.Equal(t, "ops@acme.example", msg.To)
	assert.Equal(t, "Your wellness event proposal is ready", msg.Subject)
	assert.Contains(t, msg.Body, "Hello Acme Corp")
	assert.Contains(t, msg.Body, "$1,100.00")
	assert.Contains(t, msg.Body, "4a1f")
}

func TestRenderProposalEdited(t *testing.T) {
	msg, err := RenderProposalEdited("ops@acme.example", ProposalEmailData{
		ClientName:     "Acme Corp",
		ProposalID:     "4a1f",
		TotalEventCost: "$990.00",
		Changes: []string{
			"discount set to 10%",
			"status changed from draft to sent",
		},
	})
	require.NoError(t, err)

	assert.Contains(t, msg.Body, "discount set to 10%")
	assert.Contains(t, msg.Body, "status changed from draft to sent")
	assert.Equal(t, "Your wellness event proposal was updated", msg.Subject)
}

func TestLogSenderNeverFails(t *testing.T) {
	sender := NewLogSender(slog.New(slog.DiscardHandler))
	err := sender.Send(context.Background(), Message{To: "x@y.example", Subject: "s"})
	assert.NoError(t, err)
}
