package proposal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, repo Repository) *httptest.Server {
	t.Helper()
	svc := NewService(repo, testLogger(), nil, nil)
	h := NewHandler(testLogger(), svc, nil)
	r := chi.NewRouter()
	r.Route("/api", h.MountRoutes)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHandlerCreateProposal(t *testing.T) {
	server := newTestServer(t, newMockRepository())

	resp := postJSON(t, server.URL+"/api/proposals", createRequest())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decodeBody[Proposal](t, resp)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, StatusDraft, created.Status)
	assert.InDelta(t, 1100.0, created.Summary.TotalEventCost, 1e-9)
}

func TestHandlerCreateValidation(t *testing.T) {
	server := newTestServer(t, newMockRepository())

	req := createRequest()
	req.ClientName = ""
	resp := postJSON(t, server.URL+"/api/proposals", req)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandlerCreateMalformedBody(t *testing.T) {
	server := newTestServer(t, newMockRepository())

	resp, err := http.Post(server.URL+"/api/proposals", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandlerShowNotFound(t *testing.T) {
	server := newTestServer(t, newMockRepository())

	resp, err := http.Get(server.URL + "/api/proposals/" + uuid.NewString())
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandlerShowBadID(t *testing.T) {
	server := newTestServer(t, newMockRepository())

	resp, err := http.Get(server.URL + "/api/proposals/not-a-uuid")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandlerEditBatch(t *testing.T) {
	repo := newMockRepository()
	server := newTestServer(t, repo)

	created := decodeBody[Proposal](t, postJSON(t, server.URL+"/api/proposals", createRequest()))

	resp := postJSON(t, server.URL+"/api/proposals/"+created.ID.String()+"/edits", EditProposalRequest{
		Operations: []EditOperation{
			{Type: OpSetStatus, Status: StatusSent},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decodeBody[EditResult](t, resp)
	require.Len(t, result.Changes, 1)
	assert.Equal(t, "status changed from draft to sent", result.Changes[0].Description)
	assert.Equal(t, StatusSent, result.Proposal.Status)
}

func TestHandlerEditBatchFailureReportsPosition(t *testing.T) {
	server := newTestServer(t, newMockRepository())

	created := decodeBody[Proposal](t, postJSON(t, server.URL+"/api/proposals", createRequest()))

	resp := postJSON(t, server.URL+"/api/proposals/"+created.ID.String()+"/edits", EditProposalRequest{
		Operations: []EditOperation{
			{Type: OpSetDiscount, DiscountPercent: float(5)},
			{Type: OpSetDiscount, DiscountPercent: float(150)},
		},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody[map[string]any](t, resp)
	assert.Equal(t, float64(1), body["position"])
	assert.Equal(t, string(OpSetDiscount), body["op"])
}

func TestHandlerEditInvalidTransitionConflicts(t *testing.T) {
	server := newTestServer(t, newMockRepository())

	created := decodeBody[Proposal](t, postJSON(t, server.URL+"/api/proposals", createRequest()))

	resp := postJSON(t, server.URL+"/api/proposals/"+created.ID.String()+"/edits", EditProposalRequest{
		Operations: []EditOperation{
			{Type: OpSetStatus, Status: StatusArchived},
			{Type: OpSetStatus, Status: StatusDraft},
		},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHandlerEditVersionConflict(t *testing.T) {
	repo := newMockRepository()
	server := newTestServer(t, repo)

	created := decodeBody[Proposal](t, postJSON(t, server.URL+"/api/proposals", createRequest()))

	repo.updateErr = ErrVersionConflict
	resp := postJSON(t, server.URL+"/api/proposals/"+created.ID.String()+"/edits", EditProposalRequest{
		Operations: []EditOperation{
			{Type: OpSetDiscount, DiscountPercent: float(5)},
		},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHandlerLineItemsAndSummary(t *testing.T) {
	server := newTestServer(t, newMockRepository())

	created := decodeBody[Proposal](t, postJSON(t, server.URL+"/api/proposals", createRequest()))

	resp, err := http.Get(server.URL + "/api/proposals/" + created.ID.String() + "/line-items")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := decodeBody[map[string][]LineItem](t, resp)
	assert.Len(t, items["line_items"], 2)

	resp, err = http.Get(server.URL + "/api/proposals/" + created.ID.String() + "/summary")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decodeBody[ProposalSummary](t, resp)
	assert.InDelta(t, created.Summary.TotalEventCost, summary.TotalEventCost, 1e-9)
}

func TestHandlerList(t *testing.T) {
	repo := newMockRepository()
	server := newTestServer(t, repo)

	for i := 0; i < 3; i++ {
		resp := postJSON(t, server.URL+"/api/proposals", createRequest())
		resp.Body.Close()
	}

	resp, err := http.Get(server.URL + "/api/proposals?status=draft")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[map[string]json.RawMessage](t, resp)
	var total int
	require.NoError(t, json.Unmarshal(body["total"], &total))
	assert.Equal(t, 3, total)
}

func TestHandlerStaffingOptions(t *testing.T) {
	server := newTestServer(t, newMockRepository())

	url := fmt.Sprintf("%s/api/staffing-options?service_type=table_massage&target=%d", server.URL, 40)
	resp, err := http.Get(url)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[map[string]json.RawMessage](t, resp)
	assert.Contains(t, body, "options")
}

func TestHandlerStaffingOptionsBadInput(t *testing.T) {
	server := newTestServer(t, newMockRepository())

	resp, err := http.Get(server.URL + "/api/staffing-options?service_type=table_massage&target=abc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(server.URL + "/api/staffing-options?service_type=hot_stone&target=10")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandlerPDFUnavailableWithoutRenderer(t *testing.T) {
	server := newTestServer(t, newMockRepository())

	created := decodeBody[Proposal](t, postJSON(t, server.URL+"/api/proposals", createRequest()))

	resp, err := http.Get(server.URL + "/api/proposals/" + created.ID.String() + "/pdf")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

type stubRenderer struct{ out []byte }

func (s stubRenderer) RenderProposal(_ context.Context, _ *Proposal, _ []LineItem) ([]byte, error) {
	return s.out, nil
}

func TestHandlerPDFExport(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, testLogger(), nil, nil)
	h := NewHandler(testLogger(), svc, stubRenderer{out: []byte("%PDF-1.4")})
	r := chi.NewRouter()
	r.Route("/api", h.MountRoutes)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	created := decodeBody[Proposal](t, postJSON(t, server.URL+"/api/proposals", createRequest()))

	resp, err := http.Get(server.URL + "/api/proposals/" + created.ID.String() + "/pdf")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
}
