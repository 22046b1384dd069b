package proposal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harborwell/harborwell/internal/catalog"
)

// ============================================================================
// STATUS
// ============================================================================

type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
	StatusArchived Status = "archived"
)

// statusTransitions defines the reachable lifecycle states. Archived is
// terminal.
var statusTransitions = map[Status][]Status{
	StatusDraft:    {StatusSent, StatusArchived},
	StatusSent:     {StatusApproved, StatusDeclined, StatusArchived},
	StatusApproved: {StatusArchived},
	StatusDeclined: {StatusArchived},
	StatusArchived: {},
}

// CanTransition reports whether a proposal may move from one status to
// another.
func CanTransition(from, to Status) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ============================================================================
// SCHEDULE
// ============================================================================

// DateTBD is the sentinel for a day whose calendar date is undetermined.
// It is passed through display formatting unchanged.
const DateTBD = "TBD"

// ServiceSlot is one bookable service instance. Its identity within a
// proposal is the composite key (location, date, position in list).
type ServiceSlot struct {
	ServiceType catalog.ServiceType `json:"service_type"`
	BaseCost    float64             `json:"base_cost"`

	// Staffing parameters; zero values mean not staffed yet.
	TotalHours       float64 `json:"total_hours,omitempty"`
	StaffCount       int     `json:"staff_count,omitempty"`
	HourlyRate       float64 `json:"hourly_rate,omitempty"`
	EarlyArrivalCost float64 `json:"early_arrival_cost,omitempty"`

	// Service-specific parameters.
	Tier       string   `json:"tier,omitempty"`
	FixedPrice *float64 `json:"fixed_price,omitempty"`
	Recurrence string   `json:"recurrence,omitempty"`
}

// EffectiveBaseCost is the slot's own price before any selected pricing
// option is considered.
func (s ServiceSlot) EffectiveBaseCost() float64 {
	if s.FixedPrice != nil {
		return *s.FixedPrice
	}
	return s.BaseCost
}

// DayBlock groups the slots booked for one calendar day at a location.
type DayBlock struct {
	Date  string        `json:"date"`
	Slots []ServiceSlot `json:"slots"`
}

// LocationBlock groups the days scheduled at one location. Exactly one of
// Days or Legacy is populated: Legacy holds the historical flat-list shape
// (slots with no date grouping), which billing computations skip.
type LocationBlock struct {
	Location string
	Days     []DayBlock
	Legacy   []ServiceSlot
}

type locationBlockJSON struct {
	Location string          `json:"location"`
	Days     json.RawMessage `json:"days"`
}

// UnmarshalJSON accepts both the current date-grouped shape and the legacy
// flat slot list under "days".
func (b *LocationBlock) UnmarshalJSON(data []byte) error {
	var raw locationBlockJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.Location = raw.Location
	b.Days = nil
	b.Legacy = nil
	if len(raw.Days) == 0 || string(raw.Days) == "null" {
		return nil
	}

	var days []DayBlock
	if err := json.Unmarshal(raw.Days, &days); err == nil && daysWellFormed(days) {
		b.Days = days
		return nil
	}

	var legacy []ServiceSlot
	if err := json.Unmarshal(raw.Days, &legacy); err != nil {
		return fmt.Errorf("schedule location %q: unrecognized days shape", raw.Location)
	}
	b.Legacy = legacy
	return nil
}

// MarshalJSON writes the legacy slot list back under "days" so historical
// documents round-trip unchanged.
func (b LocationBlock) MarshalJSON() ([]byte, error) {
	var days any
	switch {
	case b.Legacy != nil:
		days = b.Legacy
	case b.Days != nil:
		days = b.Days
	}
	return json.Marshal(struct {
		Location string `json:"location"`
		Days     any    `json:"days,omitempty"`
	}{Location: b.Location, Days: days})
}

func daysWellFormed(days []DayBlock) bool {
	for _, d := range days {
		if d.Date == "" && d.Slots == nil {
			return false
		}
	}
	return true
}

// Schedule is the ordered association location -> date -> slots. Order is
// significant: it defines slot identity and line item order.
type Schedule []LocationBlock

// SlotAt returns the slot addressed by a composite key, or false when any
// part of the key does not resolve.
func (s Schedule) SlotAt(key SlotKey) (*ServiceSlot, bool) {
	for li := range s {
		if s[li].Location != key.Location {
			continue
		}
		for di := range s[li].Days {
			day := &s[li].Days[di]
			if day.Date != key.Date {
				continue
			}
			if key.Index < 0 || key.Index >= len(day.Slots) {
				return nil, false
			}
			return &day.Slots[key.Index], true
		}
	}
	return nil, false
}

// SlotCount counts slots across all date-grouped blocks. Legacy blocks are
// not billable and are excluded.
func (s Schedule) SlotCount() int {
	count := 0
	for _, loc := range s {
		for _, day := range loc.Days {
			count += len(day.Slots)
		}
	}
	return count
}

// Clone returns a deep copy of the schedule.
func (s Schedule) Clone() Schedule {
	if s == nil {
		return nil
	}
	out := make(Schedule, len(s))
	for i, loc := range s {
		cp := LocationBlock{Location: loc.Location}
		if loc.Days != nil {
			cp.Days = make([]DayBlock, len(loc.Days))
			for j, day := range loc.Days {
				cp.Days[j] = DayBlock{Date: day.Date, Slots: cloneSlots(day.Slots)}
			}
		}
		if loc.Legacy != nil {
			cp.Legacy = cloneSlots(loc.Legacy)
		}
		out[i] = cp
	}
	return out
}

func cloneSlots(slots []ServiceSlot) []ServiceSlot {
	if slots == nil {
		return nil
	}
	out := make([]ServiceSlot, len(slots))
	for i, slot := range slots {
		out[i] = slot
		if slot.FixedPrice != nil {
			v := *slot.FixedPrice
			out[i].FixedPrice = &v
		}
	}
	return out
}

// ============================================================================
// SLOT KEY
// ============================================================================

// SlotKey is the composite identity of a slot within a schedule.
type SlotKey struct {
	Location string
	Date     string
	Index    int
}

// String returns the canonical form used as a map key in the pricing
// options and selections maps.
func (k SlotKey) String() string {
	return fmt.Sprintf("%s|%s|%d", k.Location, k.Date, k.Index)
}

// ============================================================================
// PRICING, ADJUSTMENTS, SUMMARY
// ============================================================================

// PricingOption is an alternative priced configuration for a slot,
// selectable by index. An option without a cost cannot override the slot's
// base cost.
type PricingOption struct {
	Label string   `json:"label"`
	Cost  *float64 `json:"cost,omitempty"`
}

// CustomLineItem is a manually entered charge not tied to any slot.
type CustomLineItem struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type GratuityType string

const (
	GratuityPercentage GratuityType = "percentage"
	GratuityFlat       GratuityType = "flat"
)

// GratuityConfig is an optional courtesy payment: a percentage of the
// pre-gratuity subtotal or a flat amount.
type GratuityConfig struct {
	Type  GratuityType `json:"type"`
	Value float64      `json:"value"`
}

// ProposalSummary is derived from the schedule and adjustments, never
// hand-edited. It must satisfy
// TotalEventCost = SubtotalBeforeGratuity - DiscountAmount + GratuityAmount
// after every mutation.
type ProposalSummary struct {
	TotalAppointments      int     `json:"total_appointments"`
	SubtotalBeforeGratuity float64 `json:"subtotal_before_gratuity"`
	GratuityAmount         float64 `json:"gratuity_amount"`
	DiscountAmount         float64 `json:"discount_amount"`
	TotalEventCost         float64 `json:"total_event_cost"`
	TotalProRevenue        float64 `json:"total_pro_revenue"`
	NetProfit              float64 `json:"net_profit"`
	ProfitMargin           float64 `json:"profit_margin"`
}

// ============================================================================
// PROPOSAL
// ============================================================================

// Proposal is the aggregate root. The engine receives a snapshot, computes
// derived fields, and returns an updated snapshot; persistence is owned by
// the repository.
type Proposal struct {
	ID              uuid.UUID                  `json:"id"`
	ClientName      string                     `json:"client_name"`
	ClientEmail     *string                    `json:"client_email,omitempty"`
	ClientLogo      *string                    `json:"client_logo,omitempty"`
	Status          Status                     `json:"status"`
	Schedule        Schedule                   `json:"schedule"`
	PricingOptions  map[string][]PricingOption `json:"pricing_options,omitempty"`
	Selections      map[string]int             `json:"selections,omitempty"`
	CustomLineItems []CustomLineItem           `json:"custom_line_items,omitempty"`
	Gratuity        *GratuityConfig            `json:"gratuity,omitempty"`
	DiscountPercent float64                    `json:"discount_percent"`
	Customization   map[string]any             `json:"customization,omitempty"`
	Summary         ProposalSummary            `json:"summary"`
	Version         int64                      `json:"version"`
	CreatedAt       time.Time                  `json:"created_at"`
	UpdatedAt       time.Time                  `json:"updated_at"`
}

// Clone returns a deep copy the mutation engine can work on without
// touching the caller's snapshot.
func (p *Proposal) Clone() *Proposal {
	cp := *p
	cp.Schedule = p.Schedule.Clone()

	if p.ClientEmail != nil {
		v := *p.ClientEmail
		cp.ClientEmail = &v
	}
	if p.ClientLogo != nil {
		v := *p.ClientLogo
		cp.ClientLogo = &v
	}
	if p.Gratuity != nil {
		v := *p.Gratuity
		cp.Gratuity = &v
	}
	if p.PricingOptions != nil {
		cp.PricingOptions = make(map[string][]PricingOption, len(p.PricingOptions))
		for k, opts := range p.PricingOptions {
			cloned := make([]PricingOption, len(opts))
			for i, opt := range opts {
				cloned[i] = opt
				if opt.Cost != nil {
					c := *opt.Cost
					cloned[i].Cost = &c
				}
			}
			cp.PricingOptions[k] = cloned
		}
	}
	if p.Selections != nil {
		cp.Selections = make(map[string]int, len(p.Selections))
		for k, v := range p.Selections {
			cp.Selections[k] = v
		}
	}
	if p.CustomLineItems != nil {
		cp.CustomLineItems = append([]CustomLineItem(nil), p.CustomLineItems...)
	}
	if p.Customization != nil {
		cp.Customization = make(map[string]any, len(p.Customization))
		for k, v := range p.Customization {
			cp.Customization[k] = v
		}
	}
	return &cp
}
