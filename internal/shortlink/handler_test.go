package shortlink

import (
	"context"
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
	svc := NewService(repo, nil, testLogger())
	h := NewHandler(testLogger(), svc, map[string]string{
		"proposals": "/api/proposals/%s",
	})
	r := chi.NewRouter()
	h.MountRoutes(r)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestRedirect(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, testLogger())
	target := uuid.New()
	slug, err := svc.Mint(context.Background(), "proposals", target)
	require.NoError(t, err)

	server := newTestServer(t, repo)
	resp, err := noRedirectClient().Get(server.URL + "/p/proposals/" + slug)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/api/proposals/"+target.String(), resp.Header.Get("Location"))
}

func TestRedirectUnknownSlug(t *testing.T) {
	server := newTestServer(t, newMockRepository())

	resp, err := http.Get(server.URL + "/p/proposals/missing1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRedirectUnknownNamespace(t *testing.T) {
	server := newTestServer(t, newMockRepository())

	resp, err := http.Get(server.URL + "/p/invoices/abcdefgh")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
