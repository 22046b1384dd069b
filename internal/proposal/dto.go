package proposal

import (
	"github.com/harborwell/harborwell/internal/catalog"
)

// ServiceEventInput is one requested service event in a creation request.
// It matches the ServiceSlot shape plus its schedule placement.
type ServiceEventInput struct {
	Location         string              `json:"location" validate:"required,max=200"`
	Date             string              `json:"date" validate:"required,max=20"`
	ServiceType      catalog.ServiceType `json:"service_type" validate:"required"`
	BaseCost         float64             `json:"base_cost" validate:"gte=0"`
	TotalHours       float64             `json:"total_hours" validate:"gte=0"`
	StaffCount       int                 `json:"staff_count" validate:"gte=0"`
	HourlyRate       float64             `json:"hourly_rate" validate:"gte=0"`
	EarlyArrivalCost float64             `json:"early_arrival_cost" validate:"gte=0"`
	Tier             string              `json:"tier,omitempty"`
	FixedPrice       *float64            `json:"fixed_price,omitempty" validate:"omitempty,gte=0"`
	Recurrence       string              `json:"recurrence,omitempty"`
}

type CreateProposalRequest struct {
	ClientName      string              `json:"client_name" validate:"required,max=200"`
	ClientEmail     *string             `json:"client_email,omitempty" validate:"omitempty,email"`
	ClientLogo      *string             `json:"client_logo,omitempty"`
	Events          []ServiceEventInput `json:"events" validate:"required,min=1,dive"`
	Customization   map[string]any      `json:"customization,omitempty"`
	Gratuity        *GratuityConfig     `json:"gratuity,omitempty"`
	DiscountPercent float64             `json:"discount_percent" validate:"gte=0,lte=100"`
}

// EditProposalRequest is an ordered, all-or-nothing operation batch. An
// empty batch is valid and only recomputes the summary.
type EditProposalRequest struct {
	Operations []EditOperation `json:"operations" validate:"dive"`
}

// EditResult pairs the updated snapshot with one change description per
// applied operation, in input order.
type EditResult struct {
	Proposal *Proposal `json:"proposal"`
	Changes  []Change  `json:"changes"`
}

type ListProposalsRequest struct {
	Status *Status `json:"status,omitempty"`
	Client string  `json:"client,omitempty"`
	Limit  int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset int     `json:"offset" validate:"gte=0"`
}

// buildSchedule groups creation events into the ordered schedule structure,
// preserving first-seen order of locations and dates.
func buildSchedule(events []ServiceEventInput) Schedule {
	var schedule Schedule
	for _, ev := range events {
		var loc *LocationBlock
		for i := range schedule {
			if schedule[i].Location == ev.Location {
				loc = &schedule[i]
				break
			}
		}
		if loc == nil {
			schedule = append(schedule, LocationBlock{Location: ev.Location})
			loc = &schedule[len(schedule)-1]
		}

		var day *DayBlock
		for i := range loc.Days {
			if loc.Days[i].Date == ev.Date {
				day = &loc.Days[i]
				break
			}
		}
		if day == nil {
			loc.Days = append(loc.Days, DayBlock{Date: ev.Date})
			day = &loc.Days[len(loc.Days)-1]
		}

		day.Slots = append(day.Slots, ServiceSlot{
			ServiceType:      ev.ServiceType,
			BaseCost:         ev.BaseCost,
			TotalHours:       ev.TotalHours,
			StaffCount:       ev.StaffCount,
			HourlyRate:       ev.HourlyRate,
			EarlyArrivalCost: ev.EarlyArrivalCost,
			Tier:             ev.Tier,
			FixedPrice:       ev.FixedPrice,
			Recurrence:       ev.Recurrence,
		})
	}
	return schedule
}
