package proposal

import (
	"fmt"
	"math"

	"github.com/harborwell/harborwell/internal/catalog"
)

// ComputeSummary derives the proposal's financial summary from its
// flattened line items, schedule, and adjustments.
//
// Gratuity is computed on the pre-discount subtotal and is a pass-through
// to staff: it raises TotalEventCost but is excluded from NetProfit on
// both sides. Early-arrival costs count toward staff payout.
func ComputeSummary(
	items []LineItem,
	schedule Schedule,
	gratuity *GratuityConfig,
	discountPercent float64,
) (ProposalSummary, error) {
	if discountPercent < 0 {
		return ProposalSummary{}, fmt.Errorf("%w: discount percent %v is negative", ErrInvalidAdjustment, discountPercent)
	}
	if gratuity != nil && gratuity.Value < 0 {
		return ProposalSummary{}, fmt.Errorf("%w: gratuity value %v is negative", ErrInvalidAdjustment, gratuity.Value)
	}

	var subtotal float64
	for _, item := range items {
		subtotal += item.Amount
	}

	discountAmount := subtotal * discountPercent / 100

	var gratuityAmount float64
	if gratuity != nil {
		switch gratuity.Type {
		case GratuityPercentage:
			gratuityAmount = subtotal * gratuity.Value / 100
		case GratuityFlat:
			gratuityAmount = gratuity.Value
		}
	}

	totalEventCost := subtotal - discountAmount + gratuityAmount

	appointments := 0
	var proRevenue float64
	for _, loc := range schedule {
		for _, day := range loc.Days {
			for _, slot := range day.Slots {
				proRevenue += slot.HourlyRate*slot.TotalHours*float64(slot.StaffCount) + slot.EarlyArrivalCost
				appointments += slotAppointments(slot)
			}
		}
	}

	netProfit := totalEventCost - gratuityAmount - proRevenue

	var margin float64
	if totalEventCost > 0 {
		margin = netProfit / totalEventCost
	}

	return ProposalSummary{
		TotalAppointments:      appointments,
		SubtotalBeforeGratuity: subtotal,
		GratuityAmount:         gratuityAmount,
		DiscountAmount:         discountAmount,
		TotalEventCost:         totalEventCost,
		TotalProRevenue:        proRevenue,
		NetProfit:              netProfit,
		ProfitMargin:           margin,
	}, nil
}

// slotAppointments estimates how many appointments a staffed slot serves,
// from the catalog throughput. Unstaffed slots and unknown service types
// contribute zero.
func slotAppointments(slot ServiceSlot) int {
	if slot.TotalHours <= 0 || slot.StaffCount <= 0 {
		return 0
	}
	entry, err := catalog.Lookup(slot.ServiceType)
	if err != nil {
		return 0
	}
	return int(math.Floor(slot.TotalHours*entry.ThroughputPerHour)) * slot.StaffCount
}
