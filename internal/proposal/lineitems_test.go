package proposal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborwell/harborwell/internal/catalog"
)

func float(v float64) *float64 { return &v }

func sampleSchedule() Schedule {
	return Schedule{
		{
			Location: "HQ",
			Days: []DayBlock{
				{
					Date: "2025-03-03",
					Slots: []ServiceSlot{
						{ServiceType: catalog.ServiceChairMassage, BaseCost: 720, TotalHours: 4, StaffCount: 2, HourlyRate: 95},
						{ServiceType: catalog.ServiceManicure, BaseCost: 450, TotalHours: 3, StaffCount: 1, HourlyRate: 75},
					},
				},
				{
					Date: DateTBD,
					Slots: []ServiceSlot{
						{ServiceType: catalog.ServiceYoga, BaseCost: 320, TotalHours: 2, StaffCount: 1, HourlyRate: 85},
					},
				},
			},
		},
		{
			Location: "Warehouse",
			Days: []DayBlock{
				{
					Date: "2025-03-04",
					Slots: []ServiceSlot{
						{ServiceType: catalog.ServiceTableMassage, BaseCost: 800, TotalHours: 4, StaffCount: 1, HourlyRate: 110},
					},
				},
			},
		},
	}
}

func TestResolveLineItemsOrderAndLength(t *testing.T) {
	schedule := sampleSchedule()
	custom := []CustomLineItem{
		{Name: "Travel surcharge", Amount: 120},
		{Name: "Complimentary aromatherapy", Amount: 0},
	}

	items := ResolveLineItems(schedule, nil, nil, custom)
	require.Len(t, items, schedule.SlotCount()+len(custom))

	assert.Equal(t, "Chair Massage at HQ on March 3, 2025", items[0].Description)
	assert.Equal(t, "Manicure at HQ on March 3, 2025", items[1].Description)
	assert.Equal(t, "Yoga Class at HQ on TBD", items[2].Description)
	assert.Equal(t, "Table Massage at Warehouse on March 4, 2025", items[3].Description)
	assert.Equal(t, "Travel surcharge", items[4].Description)
	assert.Equal(t, "Complimentary aromatherapy", items[5].Description)
	assert.Zero(t, items[5].Amount, "zero-amount lines are valid")
}

func TestResolveLineItemsPricingOverride(t *testing.T) {
	schedule := sampleSchedule()
	key := SlotKey{Location: "HQ", Date: "2025-03-03", Index: 0}.String()
	options := map[string][]PricingOption{
		key: {
			{Label: "Standard", Cost: float(720)},
			{Label: "Premium", Cost: float(900)},
		},
	}

	// In-range selection uses the option cost.
	items := ResolveLineItems(schedule, options, map[string]int{key: 1}, nil)
	assert.InDelta(t, 900, items[0].Amount, 1e-9)

	// Out-of-range selection falls back to base cost.
	items = ResolveLineItems(schedule, options, map[string]int{key: 5}, nil)
	assert.InDelta(t, 720, items[0].Amount, 1e-9)

	// Negative index falls back to base cost.
	items = ResolveLineItems(schedule, options, map[string]int{key: -1}, nil)
	assert.InDelta(t, 720, items[0].Amount, 1e-9)

	// Selection without options falls back to base cost.
	items = ResolveLineItems(schedule, nil, map[string]int{key: 0}, nil)
	assert.InDelta(t, 720, items[0].Amount, 1e-9)

	// Option without a cost cannot override.
	items = ResolveLineItems(schedule,
		map[string][]PricingOption{key: {{Label: "Call us"}}},
		map[string]int{key: 0}, nil)
	assert.InDelta(t, 720, items[0].Amount, 1e-9)
}

func TestResolveLineItemsDoesNotMutateInputs(t *testing.T) {
	schedule := sampleSchedule()
	key := SlotKey{Location: "HQ", Date: "2025-03-03", Index: 0}.String()
	options := map[string][]PricingOption{key: {{Label: "Premium", Cost: float(900)}}}
	selections := map[string]int{key: 0}

	_ = ResolveLineItems(schedule, options, selections, nil)

	assert.Len(t, options[key], 1)
	assert.Equal(t, 0, selections[key])
	assert.InDelta(t, 720, schedule[0].Days[0].Slots[0].BaseCost, 1e-9)
}

func TestResolveLineItemsFixedPriceOverridesBaseCost(t *testing.T) {
	schedule := Schedule{{
		Location: "HQ",
		Days: []DayBlock{{
			Date:  "2025-03-03",
			Slots: []ServiceSlot{{ServiceType: catalog.ServiceFacial, BaseCost: 500, FixedPrice: float(425)}},
		}},
	}}
	items := ResolveLineItems(schedule, nil, nil, nil)
	require.Len(t, items, 1)
	assert.InDelta(t, 425, items[0].Amount, 1e-9)
}

func TestResolveLineItemsSkipsLegacyLocations(t *testing.T) {
	raw := `[
		{"location":"HQ","days":[{"date":"2025-03-03","slots":[{"service_type":"chair_massage","base_cost":720}]}]},
		{"location":"Annex","days":[{"service_type":"manicure","base_cost":450}]}
	]`
	var schedule Schedule
	require.NoError(t, json.Unmarshal([]byte(raw), &schedule))

	require.Len(t, schedule, 2)
	assert.Len(t, schedule[1].Legacy, 1, "flat list decodes as the legacy variant")
	assert.Nil(t, schedule[1].Days)

	items := ResolveLineItems(schedule, nil, nil, nil)
	require.Len(t, items, 1, "legacy location is skipped, not an error")
	assert.Equal(t, "Chair Massage at HQ on March 3, 2025", items[0].Description)
}

func TestScheduleLegacyRoundTrip(t *testing.T) {
	raw := `[{"location":"Annex","days":[{"service_type":"manicure","base_cost":450}]}]`
	var schedule Schedule
	require.NoError(t, json.Unmarshal([]byte(raw), &schedule))

	out, err := json.Marshal(schedule)
	require.NoError(t, err)

	var again Schedule
	require.NoError(t, json.Unmarshal(out, &again))
	require.Len(t, again, 1)
	assert.Len(t, again[0].Legacy, 1)
}

func TestFormatDatePassesThroughUnparseable(t *testing.T) {
	assert.Equal(t, "TBD", formatDate("TBD"))
	assert.Equal(t, "sometime in spring", formatDate("sometime in spring"))
	assert.Equal(t, "March 3, 2025", formatDate("2025-03-03"))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1,000.00", FormatMoney(1000))
	assert.Equal(t, "$87.50", FormatMoney(87.5))
}
