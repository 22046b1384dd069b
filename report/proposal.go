package report

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/harborwell/harborwell/internal/proposal"
)

// ProposalRenderer renders a proposal document to PDF through Gotenberg.
type ProposalRenderer struct {
	client *Client
}

// NewProposalRenderer wraps a Gotenberg client.
func NewProposalRenderer(client *Client) *ProposalRenderer {
	return &ProposalRenderer{client: client}
}

type proposalDoc struct {
	ClientName string
	Status     string
	Items      []proposalDocItem
	Subtotal   string
	Discount   string
	Gratuity   string
	Total      string
}

type proposalDocItem struct {
	Description string
	Amount      string
}

var proposalTmpl = template.Must(template.New("proposal_pdf").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Event Proposal</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 40px; color: #1a1a2e; }
h1 { border-bottom: 2px solid #1a1a2e; padding-bottom: 8px; }
table { width: 100%; border-collapse: collapse; margin-top: 24px; }
td, th { padding: 8px 4px; text-align: left; border-bottom: 1px solid #ddd; }
td.amount, th.amount { text-align: right; }
tfoot td { border-bottom: none; font-weight: bold; }
.status { color: #666; text-transform: uppercase; font-size: 12px; }
</style>
</head>
<body>
<h1>Event Proposal</h1>
<p class="status">{{.Status}}</p>
<p>Prepared for {{.ClientName}}</p>
<table>
<thead><tr><th>Service</th><th class="amount">Amount</th></tr></thead>
<tbody>
{{range .Items}}<tr><td>{{.Description}}</td><td class="amount">{{.Amount}}</td></tr>
{{end}}</tbody>
<tfoot>
<tr><td>Subtotal</td><td class="amount">{{.Subtotal}}</td></tr>
{{if .Discount}}<tr><td>Discount</td><td class="amount">-{{.Discount}}</td></tr>{{end}}
{{if .Gratuity}}<tr><td>Gratuity</td><td class="amount">{{.Gratuity}}</td></tr>{{end}}
<tr><td>Total</td><td class="amount">{{.Total}}</td></tr>
</tfoot>
</table>
</body>
</html>`))

// RenderProposal builds the proposal HTML document and converts it to PDF.
func (r *ProposalRenderer) RenderProposal(ctx context.Context, p *proposal.Proposal, items []proposal.LineItem) ([]byte, error) {
	doc := proposalDoc{
		ClientName: p.ClientName,
		Status:     string(p.Status),
	}
	for _, item := range items {
		doc.Items = append(doc.Items, proposalDocItem{
			Description: item.Description,
			Amount:      proposal.FormatMoney(item.Amount),
		})
	}
	doc.Subtotal = proposal.FormatMoney(p.Summary.SubtotalBeforeGratuity)
	doc.Total = proposal.FormatMoney(p.Summary.TotalEventCost)
	if p.Summary.DiscountAmount > 0 {
		doc.Discount = proposal.FormatMoney(p.Summary.DiscountAmount)
	}
	if p.Summary.GratuityAmount > 0 {
		doc.Gratuity = proposal.FormatMoney(p.Summary.GratuityAmount)
	}

	var html strings.Builder
	if err := proposalTmpl.Execute(&html, doc); err != nil {
		return nil, fmt.Errorf("render proposal html: %w", err)
	}
	return r.client.RenderHTML(ctx, html.String())
}
