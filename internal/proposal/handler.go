package proposal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/harborwell/harborwell/internal/catalog"
	"github.com/harborwell/harborwell/internal/platform/httpx"
	"github.com/harborwell/harborwell/internal/shared"
	"github.com/harborwell/harborwell/internal/staffing"
)

// PDFRenderer converts a proposal and its line items to a PDF document.
type PDFRenderer interface {
	RenderProposal(ctx context.Context, p *Proposal, items []LineItem) ([]byte, error)
}

// Handler manages proposal endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	pdf      PDFRenderer
}

// NewHandler builds a Handler instance. The PDF renderer is optional.
func NewHandler(logger *slog.Logger, service *Service, pdf PDFRenderer) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		pdf:      pdf,
	}
}

// MountRoutes registers proposal routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/proposals", h.create)
	r.Get("/proposals", h.list)
	r.Get("/proposals/{id}", h.show)
	r.Post("/proposals/{id}/edits", h.edit)
	r.Get("/proposals/{id}/line-items", h.lineItems)
	r.Get("/proposals/{id}/summary", h.summary)
	r.Get("/proposals/{id}/pdf", h.exportPDF)
	r.Get("/staffing-options", h.staffingOptions)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateProposalRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	p, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, r, "create proposal", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListProposalsRequest{
		Client: r.URL.Query().Get("client"),
		Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
		Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := Status(status)
		req.Status = &s
	}

	proposals, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondError(w, r, "list proposals", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"proposals":  proposals,
		"total":      total,
		"pagination": shared.NewPagination(req.Limit, req.Offset, total),
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, "get proposal", err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req EditProposalRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request Body", err.Error())
		return
	}

	result, err := h.service.Edit(r.Context(), id, req.Operations)
	if err != nil {
		h.respondError(w, r, "edit proposal", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) lineItems(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	items, err := h.service.LineItems(r.Context(), id)
	if err != nil {
		h.respondError(w, r, "resolve line items", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"line_items": items})
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	summary, err := h.service.Summary(r.Context(), id)
	if err != nil {
		h.respondError(w, r, "compute summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) exportPDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "PDF Export Unavailable", "no renderer configured")
		return
	}
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, "get proposal", err)
		return
	}
	items, err := h.service.LineItems(r.Context(), id)
	if err != nil {
		h.respondError(w, r, "resolve line items", err)
		return
	}

	pdf, err := h.pdf.RenderProposal(r.Context(), p, items)
	if err != nil {
		h.logger.Error("render proposal pdf", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "PDF Export Failed", "")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="proposal.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) staffingOptions(w http.ResponseWriter, r *http.Request) {
	serviceType := catalog.ServiceType(r.URL.Query().Get("service_type"))
	target, err := strconv.Atoi(r.URL.Query().Get("target"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "target must be an integer")
		return
	}

	var ov staffing.Overrides
	if v := r.URL.Query().Get("throughput_per_hour"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "throughput_per_hour must be a number")
			return
		}
		ov.ThroughputPerHour = &f
	}
	if v := r.URL.Query().Get("max_hours_per_day"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "max_hours_per_day must be a number")
			return
		}
		ov.MaxHoursPerDay = &f
	}

	result, err := h.service.StaffingOptions(serviceType, target, ov)
	if err != nil {
		h.respondError(w, r, "staffing options", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Proposal ID", err.Error())
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps domain errors to problem responses. Mutation failures
// include the failing operation's position.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, action string, err error) {
	var batchErr *BatchError
	if errors.As(err, &batchErr) {
		status := http.StatusBadRequest
		if errors.Is(batchErr.Err, ErrInvalidTransition) {
			status = http.StatusConflict
		}
		httpx.JSON(w, status, map[string]any{
			"title":    "Edit Batch Failed",
			"status":   status,
			"detail":   batchErr.Err.Error(),
			"position": batchErr.Position,
			"op":       batchErr.Op,
		})
		return
	}

	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrVersionConflict), errors.Is(err, ErrInvalidTransition):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrSlotNotFound),
		errors.Is(err, ErrInvalidSlot),
		errors.Is(err, ErrInvalidAdjustment),
		errors.Is(err, ErrValidation),
		errors.Is(err, staffing.ErrInvalidTarget),
		errors.Is(err, catalog.ErrUnknownServiceType):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(action, slog.Any("error", err), slog.String("path", r.URL.Path))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func parseIntDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
