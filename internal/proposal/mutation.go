package proposal

import (
	"fmt"
	"net/mail"
	"strconv"

	"github.com/harborwell/harborwell/internal/catalog"
)

// OpType tags a single edit instruction.
type OpType string

const (
	OpAddSlot             OpType = "add_slot"
	OpUpdateSlot          OpType = "update_slot"
	OpRemoveSlot          OpType = "remove_slot"
	OpSetGratuity         OpType = "set_gratuity"
	OpSetDiscount         OpType = "set_discount"
	OpUpdateCustomization OpType = "update_customization"
	OpUpdateClient        OpType = "update_client"
	OpSetStatus           OpType = "set_status"
)

// EditOperation is one typed mutation instruction. Only the fields relevant
// to its type are read.
type EditOperation struct {
	Type OpType `json:"type" validate:"required"`

	// Slot addressing (add/update/remove).
	Location string `json:"location,omitempty"`
	Date     string `json:"date,omitempty"`
	Index    int    `json:"index,omitempty"`

	Slot            *ServiceSlot    `json:"slot,omitempty"`
	Patch           *SlotPatch      `json:"patch,omitempty"`
	Gratuity        *GratuityConfig `json:"gratuity,omitempty"`
	DiscountPercent *float64        `json:"discount_percent,omitempty"`
	Customization   map[string]any  `json:"customization,omitempty"`
	Client          *ClientPatch    `json:"client,omitempty"`
	Status          Status          `json:"status,omitempty"`
}

// SlotPatch carries the slot fields an update operation merges in.
type SlotPatch struct {
	ServiceType      *catalog.ServiceType `json:"service_type,omitempty"`
	BaseCost         *float64             `json:"base_cost,omitempty"`
	TotalHours       *float64             `json:"total_hours,omitempty"`
	StaffCount       *int                 `json:"staff_count,omitempty"`
	HourlyRate       *float64             `json:"hourly_rate,omitempty"`
	EarlyArrivalCost *float64             `json:"early_arrival_cost,omitempty"`
	Tier             *string              `json:"tier,omitempty"`
	FixedPrice       *float64             `json:"fixed_price,omitempty"`
	Recurrence       *string              `json:"recurrence,omitempty"`
}

// ClientPatch carries client identity updates.
type ClientPatch struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Logo  *string `json:"logo,omitempty"`
}

// Change describes the concrete effect of one applied operation.
type Change struct {
	Op          OpType `json:"op"`
	Description string `json:"description"`
}

// ApplyBatch applies an ordered list of operations to a private copy of
// the proposal. The batch is all-or-nothing: the first failing operation
// aborts with a BatchError carrying its zero-based position, and the input
// proposal is left untouched. After a successful batch the summary is
// recomputed from scratch.
func ApplyBatch(p *Proposal, ops []EditOperation) (*Proposal, []Change, error) {
	next := p.Clone()
	changes := make([]Change, 0, len(ops))

	for i, op := range ops {
		desc, err := applyOne(next, op)
		if err != nil {
			return nil, nil, &BatchError{Position: i, Op: op.Type, Err: err}
		}
		changes = append(changes, Change{Op: op.Type, Description: desc})
	}

	items := ResolveLineItems(next.Schedule, next.PricingOptions, next.Selections, next.CustomLineItems)
	summary, err := ComputeSummary(items, next.Schedule, next.Gratuity, next.DiscountPercent)
	if err != nil {
		return nil, nil, err
	}
	next.Summary = summary
	return next, changes, nil
}

func applyOne(p *Proposal, op EditOperation) (string, error) {
	switch op.Type {
	case OpAddSlot:
		return applyAddSlot(p, op)
	case OpUpdateSlot:
		return applyUpdateSlot(p, op)
	case OpRemoveSlot:
		return applyRemoveSlot(p, op)
	case OpSetGratuity:
		return applySetGratuity(p, op)
	case OpSetDiscount:
		return applySetDiscount(p, op)
	case OpUpdateCustomization:
		return applyUpdateCustomization(p, op)
	case OpUpdateClient:
		return applyUpdateClient(p, op)
	case OpSetStatus:
		return applySetStatus(p, op)
	default:
		return "", fmt.Errorf("%w: unknown operation type %q", ErrValidation, op.Type)
	}
}

func applyAddSlot(p *Proposal, op EditOperation) (string, error) {
	if op.Slot == nil {
		return "", fmt.Errorf("%w: add requires a slot", ErrInvalidSlot)
	}
	if op.Location == "" || op.Date == "" {
		return "", fmt.Errorf("%w: add requires location and date", ErrInvalidSlot)
	}
	slot := *op.Slot
	if slot.BaseCost < 0 || slot.TotalHours < 0 || slot.StaffCount < 0 ||
		slot.HourlyRate < 0 || slot.EarlyArrivalCost < 0 ||
		(slot.FixedPrice != nil && *slot.FixedPrice < 0) {
		return "", fmt.Errorf("%w: numeric fields must not be negative", ErrInvalidSlot)
	}

	loc := findOrAddLocation(p, op.Location)
	day := findOrAddDay(loc, op.Date)
	day.Slots = append(day.Slots, slot)

	return fmt.Sprintf("added %s", slotDescription(slot, op.Location, op.Date)), nil
}

func applyUpdateSlot(p *Proposal, op EditOperation) (string, error) {
	if op.Patch == nil {
		return "", fmt.Errorf("%w: update_slot requires a patch", ErrValidation)
	}
	key := SlotKey{Location: op.Location, Date: op.Date, Index: op.Index}
	slot, ok := p.Schedule.SlotAt(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSlotNotFound, key)
	}
	mergeSlotPatch(slot, *op.Patch)
	return fmt.Sprintf("updated %s", slotDescription(*slot, op.Location, op.Date)), nil
}

func applyRemoveSlot(p *Proposal, op EditOperation) (string, error) {
	key := SlotKey{Location: op.Location, Date: op.Date, Index: op.Index}
	for li := range p.Schedule {
		if p.Schedule[li].Location != key.Location {
			continue
		}
		loc := &p.Schedule[li]
		for di := range loc.Days {
			day := &loc.Days[di]
			if day.Date != key.Date {
				continue
			}
			if key.Index < 0 || key.Index >= len(day.Slots) {
				return "", fmt.Errorf("%w: %s", ErrSlotNotFound, key)
			}
			removed := day.Slots[key.Index]
			// Delete and compact so later positions stay valid.
			day.Slots = append(day.Slots[:key.Index], day.Slots[key.Index+1:]...)
			shiftSlotKeys(p, key, len(day.Slots))
			if len(day.Slots) == 0 {
				loc.Days = append(loc.Days[:di], loc.Days[di+1:]...)
			}
			return fmt.Sprintf("removed %s", slotDescription(removed, key.Location, key.Date)), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrSlotNotFound, key)
}

func applySetGratuity(p *Proposal, op EditOperation) (string, error) {
	if op.Gratuity == nil || op.Gratuity.Type == "" {
		p.Gratuity = nil
		return "gratuity removed", nil
	}
	g := *op.Gratuity
	if g.Value < 0 {
		return "", fmt.Errorf("%w: gratuity value %v is negative", ErrInvalidAdjustment, g.Value)
	}
	if g.Type != GratuityPercentage && g.Type != GratuityFlat {
		return "", fmt.Errorf("%w: unknown gratuity type %q", ErrInvalidAdjustment, g.Type)
	}
	p.Gratuity = &g
	if g.Type == GratuityPercentage {
		return fmt.Sprintf("gratuity set to %s%%", trimFloat(g.Value)), nil
	}
	return fmt.Sprintf("gratuity set to %s", FormatMoney(g.Value)), nil
}

func applySetDiscount(p *Proposal, op EditOperation) (string, error) {
	if op.DiscountPercent == nil {
		return "", fmt.Errorf("%w: set_discount requires discount_percent", ErrValidation)
	}
	pct := *op.DiscountPercent
	if pct < 0 || pct > 100 {
		return "", fmt.Errorf("%w: discount percent %v out of range [0,100]", ErrInvalidAdjustment, pct)
	}
	p.DiscountPercent = pct
	return fmt.Sprintf("discount set to %s%%", trimFloat(pct)), nil
}

func applyUpdateCustomization(p *Proposal, op EditOperation) (string, error) {
	if p.Customization == nil {
		p.Customization = make(map[string]any, len(op.Customization))
	}
	for k, v := range op.Customization {
		p.Customization[k] = v
	}
	return fmt.Sprintf("updated %d presentation field(s)", len(op.Customization)), nil
}

func applyUpdateClient(p *Proposal, op EditOperation) (string, error) {
	if op.Client == nil {
		return "", fmt.Errorf("%w: update_client requires client fields", ErrValidation)
	}
	if op.Client.Email != nil && *op.Client.Email != "" {
		if _, err := mail.ParseAddress(*op.Client.Email); err != nil {
			return "", fmt.Errorf("%w: malformed email %q", ErrValidation, *op.Client.Email)
		}
	}
	if op.Client.Name != nil {
		p.ClientName = *op.Client.Name
	}
	if op.Client.Email != nil {
		v := *op.Client.Email
		p.ClientEmail = &v
	}
	if op.Client.Logo != nil {
		v := *op.Client.Logo
		p.ClientLogo = &v
	}
	return fmt.Sprintf("client updated to %s", p.ClientName), nil
}

func applySetStatus(p *Proposal, op EditOperation) (string, error) {
	if op.Status == "" {
		return "", fmt.Errorf("%w: set_status requires a status", ErrValidation)
	}
	if !CanTransition(p.Status, op.Status) {
		return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, op.Status)
	}
	from := p.Status
	p.Status = op.Status
	return fmt.Sprintf("status changed from %s to %s", from, op.Status), nil
}

// shiftSlotKeys drops the removed slot's pricing option and selection
// entries and re-keys later positions of the same day down by one, so
// choices recorded for surviving slots keep following them.
func shiftSlotKeys(p *Proposal, removed SlotKey, remaining int) {
	delete(p.PricingOptions, removed.String())
	delete(p.Selections, removed.String())
	for i := removed.Index + 1; i <= remaining; i++ {
		from := SlotKey{Location: removed.Location, Date: removed.Date, Index: i}.String()
		to := SlotKey{Location: removed.Location, Date: removed.Date, Index: i - 1}.String()
		if opts, ok := p.PricingOptions[from]; ok {
			p.PricingOptions[to] = opts
			delete(p.PricingOptions, from)
		}
		if sel, ok := p.Selections[from]; ok {
			p.Selections[to] = sel
			delete(p.Selections, from)
		}
	}
}

// findOrAddLocation returns the date-grouped block for a location, creating
// one when absent. Legacy flat-list blocks never match: slots added there
// would be unbillable and lost on marshal, so a matching legacy location
// gets a fresh date-grouped block appended after it instead.
func findOrAddLocation(p *Proposal, location string) *LocationBlock {
	for i := range p.Schedule {
		if p.Schedule[i].Location == location && p.Schedule[i].Legacy == nil {
			return &p.Schedule[i]
		}
	}
	p.Schedule = append(p.Schedule, LocationBlock{Location: location})
	return &p.Schedule[len(p.Schedule)-1]
}

func findOrAddDay(loc *LocationBlock, date string) *DayBlock {
	for i := range loc.Days {
		if loc.Days[i].Date == date {
			return &loc.Days[i]
		}
	}
	loc.Days = append(loc.Days, DayBlock{Date: date})
	return &loc.Days[len(loc.Days)-1]
}

func mergeSlotPatch(slot *ServiceSlot, patch SlotPatch) {
	if patch.ServiceType != nil {
		slot.ServiceType = *patch.ServiceType
	}
	if patch.BaseCost != nil {
		slot.BaseCost = *patch.BaseCost
	}
	if patch.TotalHours != nil {
		slot.TotalHours = *patch.TotalHours
	}
	if patch.StaffCount != nil {
		slot.StaffCount = *patch.StaffCount
	}
	if patch.HourlyRate != nil {
		slot.HourlyRate = *patch.HourlyRate
	}
	if patch.EarlyArrivalCost != nil {
		slot.EarlyArrivalCost = *patch.EarlyArrivalCost
	}
	if patch.Tier != nil {
		slot.Tier = *patch.Tier
	}
	if patch.FixedPrice != nil {
		v := *patch.FixedPrice
		slot.FixedPrice = &v
	}
	if patch.Recurrence != nil {
		slot.Recurrence = *patch.Recurrence
	}
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
