package proposal

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/harborwell/harborwell/internal/catalog"
)

// LineItem is one billable line of a proposal.
type LineItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

var moneyPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatMoney renders an amount for human-readable descriptions and
// outbound messages.
func FormatMoney(v float64) string {
	return moneyPrinter.Sprintf("$%.2f", v)
}

// formatDate renders a schedule date for display. The TBD sentinel and any
// unparseable value pass through unchanged.
func formatDate(date string) string {
	if date == DateTBD {
		return date
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("January 2, 2006")
}

func slotDescription(slot ServiceSlot, location, date string) string {
	return fmt.Sprintf("%s at %s on %s",
		catalog.DisplayName(slot.ServiceType), location, formatDate(date))
}

// ResolveLineItems flattens a schedule into billable line items in
// location, then date, then position order, honoring selected pricing
// options, followed by the custom line items in stored order. It never
// mutates its inputs. Legacy flat-list locations are skipped.
func ResolveLineItems(
	schedule Schedule,
	options map[string][]PricingOption,
	selections map[string]int,
	custom []CustomLineItem,
) []LineItem {
	items := make([]LineItem, 0, schedule.SlotCount()+len(custom))

	for _, loc := range schedule {
		if loc.Legacy != nil {
			// Historical flat-list shape; not billable per day.
			continue
		}
		for _, day := range loc.Days {
			for i, slot := range day.Slots {
				key := SlotKey{Location: loc.Location, Date: day.Date, Index: i}
				items = append(items, LineItem{
					Description: slotDescription(slot, loc.Location, day.Date),
					Amount:      resolveAmount(slot, key, options, selections),
				})
			}
		}
	}

	for _, c := range custom {
		items = append(items, LineItem{Description: c.Name, Amount: c.Amount})
	}
	return items
}

// resolveAmount applies the override rule: a selected, in-range pricing
// option with a cost wins; anything else falls back to the slot's own base
// cost.
func resolveAmount(
	slot ServiceSlot,
	key SlotKey,
	options map[string][]PricingOption,
	selections map[string]int,
) float64 {
	idx, selected := selections[key.String()]
	if !selected {
		return slot.EffectiveBaseCost()
	}
	opts, ok := options[key.String()]
	if !ok || idx < 0 || idx >= len(opts) || opts[idx].Cost == nil {
		return slot.EffectiveBaseCost()
	}
	return *opts[idx].Cost
}
