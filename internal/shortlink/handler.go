package shortlink

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harborwell/harborwell/internal/platform/httpx"
)

// Handler serves public short link redirects.
type Handler struct {
	logger  *slog.Logger
	service *Service
	// targetPath maps a namespace to the path template its targets
	// redirect to, e.g. "proposals" -> "/api/proposals/%s".
	targetPath map[string]string
}

// NewHandler builds a redirect handler over the given namespace routes.
func NewHandler(logger *slog.Logger, service *Service, targetPath map[string]string) *Handler {
	return &Handler{
		logger:     logger,
		service:    service,
		targetPath: targetPath,
	}
}

// MountRoutes registers the public redirect route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/p/{namespace}/{slug}", h.redirect)
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	slug := chi.URLParam(r, "slug")

	template, ok := h.targetPath[namespace]
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "unknown namespace")
		return
	}

	target, err := h.service.Resolve(r.Context(), namespace, slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "unknown short link")
			return
		}
		h.logger.Error("resolve short link", slog.Any("error", err), slog.String("slug", slug))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	http.Redirect(w, r, fmt.Sprintf(template, target), http.StatusFound)
}
