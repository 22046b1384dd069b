package proposal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/harborwell/harborwell/internal/catalog"
	"github.com/harborwell/harborwell/internal/staffing"
)

// ShortLinkNamespace is the namespace proposal links are minted under.
const ShortLinkNamespace = "proposals"

// ShortLinker mints a shareable slug for a newly created proposal.
type ShortLinker interface {
	Mint(ctx context.Context, namespace string, target uuid.UUID) (string, error)
}

// Notifier is invoked after a successful creation or edit, never by the
// pricing computations themselves.
type Notifier interface {
	ProposalCreated(ctx context.Context, p *Proposal) error
	ProposalEdited(ctx context.Context, p *Proposal, changes []Change) error
}

// Service provides business logic for proposal operations.
type Service struct {
	repo     Repository
	logger   *slog.Logger
	links    ShortLinker
	notifier Notifier
}

// NewService constructs a proposal service. Short links and notifications
// are optional collaborators.
func NewService(repo Repository, logger *slog.Logger, links ShortLinker, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		logger:   logger,
		links:    links,
		notifier: notifier,
	}
}

// Create builds a proposal from the requested service events, computes its
// summary, and persists it as a draft.
func (s *Service) Create(ctx context.Context, req CreateProposalRequest) (*Proposal, error) {
	if req.Gratuity != nil && req.Gratuity.Value < 0 {
		return nil, fmt.Errorf("%w: gratuity value %v is negative", ErrInvalidAdjustment, req.Gratuity.Value)
	}

	now := time.Now().UTC()
	p := &Proposal{
		ID:              uuid.New(),
		ClientName:      req.ClientName,
		ClientEmail:     req.ClientEmail,
		ClientLogo:      req.ClientLogo,
		Status:          StatusDraft,
		Schedule:        buildSchedule(req.Events),
		Customization:   req.Customization,
		Gratuity:        req.Gratuity,
		DiscountPercent: req.DiscountPercent,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	items := ResolveLineItems(p.Schedule, p.PricingOptions, p.Selections, p.CustomLineItems)
	summary, err := ComputeSummary(items, p.Schedule, p.Gratuity, p.DiscountPercent)
	if err != nil {
		return nil, err
	}
	p.Summary = summary

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create proposal: %w", err)
	}

	if s.links != nil {
		if slug, err := s.links.Mint(ctx, ShortLinkNamespace, p.ID); err != nil {
			s.logger.Warn("mint short link failed", slog.Any("error", err), slog.String("proposal_id", p.ID.String()))
		} else {
			s.logger.Info("short link minted", slog.String("slug", slug), slog.String("proposal_id", p.ID.String()))
		}
	}

	if s.notifier != nil {
		if err := s.notifier.ProposalCreated(ctx, p); err != nil {
			s.logger.Warn("enqueue creation notification failed", slog.Any("error", err))
		}
	}

	return p, nil
}

// Edit applies an operation batch to the stored proposal and persists the
// result with an optimistic version check.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, ops []EditOperation) (*EditResult, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get proposal: %w", err)
	}

	next, changes, err := ApplyBatch(existing, ops)
	if err != nil {
		return nil, err
	}

	next.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, next, existing.Version); err != nil {
		return nil, fmt.Errorf("update proposal: %w", err)
	}

	if s.notifier != nil && len(changes) > 0 {
		if err := s.notifier.ProposalEdited(ctx, next, changes); err != nil {
			s.logger.Warn("enqueue edit notification failed", slog.Any("error", err))
		}
	}

	return &EditResult{Proposal: next, Changes: changes}, nil
}

// Get retrieves a proposal snapshot by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Proposal, error) {
	return s.repo.Get(ctx, id)
}

// List returns a filtered page of proposals.
func (s *Service) List(ctx context.Context, req ListProposalsRequest) ([]*Proposal, int, error) {
	if req.Limit <= 0 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

// LineItems flattens the stored proposal into billable line items, usable
// on its own by billing-facing collaborators.
func (s *Service) LineItems(ctx context.Context, id uuid.UUID) ([]LineItem, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return ResolveLineItems(p.Schedule, p.PricingOptions, p.Selections, p.CustomLineItems), nil
}

// Summary recomputes the financial summary from the stored snapshot.
func (s *Service) Summary(ctx context.Context, id uuid.UUID) (*ProposalSummary, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	items := ResolveLineItems(p.Schedule, p.PricingOptions, p.Selections, p.CustomLineItems)
	summary, err := ComputeSummary(items, p.Schedule, p.Gratuity, p.DiscountPercent)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// StaffingOptions ranks candidate staffing configurations for a target
// appointment count.
func (s *Service) StaffingOptions(serviceType catalog.ServiceType, target int, ov staffing.Overrides) (*staffing.Result, error) {
	return staffing.Calculate(serviceType, target, ov)
}
