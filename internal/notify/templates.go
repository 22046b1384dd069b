package notify

import (
	"fmt"
	"strings"
	"text/template"
)

// ProposalEmailData feeds the proposal email templates.
type ProposalEmailData struct {
	ClientName     string
	ProposalID     string
	TotalEventCost string
	Changes        []string
}

var createdTmpl = template.Must(template.New("proposal_created").Parse(strings.TrimSpace(`
Hello {{.ClientName}},

Your wellness event proposal is ready for review.

Proposal reference: {{.ProposalID}}
Estimated total: {{.TotalEventCost}}

We look forward to working with you.
`)))

var editedTmpl = template.Must(template.New("proposal_edited").Parse(strings.TrimSpace(`
Hello {{.ClientName}},

Your wellness event proposal has been updated.

Proposal reference: {{.ProposalID}}
Updated total: {{.TotalEventCost}}

Changes:
{{range .Changes}}  - {{.}}
{{end}}
`)))

// RenderProposalCreated renders the creation announcement email.
func RenderProposalCreated(to string, data ProposalEmailData) (Message, error) {
	var body strings.Builder
	if err := createdTmpl.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("render created email: %w", err)
	}
	return Message{
		To:      to,
		Subject: "Your wellness event proposal is ready",
		Body:    body.String(),
	}, nil
}

// RenderProposalEdited renders the update announcement email.
func RenderProposalEdited(to string, data ProposalEmailData) (Message, error) {
	var body strings.Builder
	if err := editedTmpl.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("render edited email: %w", err)
	}
	return Message{
		To:      to,
		Subject: "Your wellness event proposal was updated",
		Body:    body.String(),
	}, nil
}
