// Package staffing recommends (staff count, hours) configurations for a
// requested number of appointments. The search is a bounded enumeration
// over the catalog's allowed shift lengths, not an optimizer.
package staffing

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/harborwell/harborwell/internal/catalog"
)

// ErrInvalidTarget indicates a non-positive appointment target.
var ErrInvalidTarget = errors.New("invalid appointment target")

// staffCeilingMargin widens the staff search past the theoretical minimum
// so near-miss configurations with more, shorter shifts are considered.
const staffCeilingMargin = 3

// maxStaffCeiling bounds the enumeration for pathological targets.
const maxStaffCeiling = 50

// Overrides replaces individual catalog constants for a single query.
type Overrides struct {
	ThroughputPerHour *float64  `json:"throughput_per_hour,omitempty" validate:"omitempty,gt=0"`
	MaxHoursPerDay    *float64  `json:"max_hours_per_day,omitempty" validate:"omitempty,gt=0"`
	AllowedHours      []float64 `json:"allowed_hours,omitempty"`
	BillRatePerHour   *float64  `json:"bill_rate_per_hour,omitempty" validate:"omitempty,gte=0"`
}

// Option is one candidate staffing configuration.
type Option struct {
	Staff         int     `json:"staff"`
	Hours         float64 `json:"hours"`
	Appointments  int     `json:"appointments"`
	ExactMatch    bool    `json:"exact_match"`
	EstimatedCost float64 `json:"estimated_cost"`
	Note          string  `json:"note,omitempty"`
}

// Constraints echoes the catalog values the search ran under, for caller
// display.
type Constraints struct {
	MaxHoursPerDay    float64   `json:"max_hours_per_day"`
	AllowedHours      []float64 `json:"allowed_hours"`
	ThroughputPerHour float64   `json:"throughput_per_hour"`
}

// Result is the ranked option list plus the constraints used.
type Result struct {
	Options     []Option    `json:"options"`
	Constraints Constraints `json:"constraints"`
}

// Calculate enumerates candidate configurations for the target appointment
// count and ranks them by fit: exact matches first, then smallest deviation
// from target, then lowest estimated cost.
func Calculate(serviceType catalog.ServiceType, target int, ov Overrides) (*Result, error) {
	if target <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTarget, target)
	}

	entry, err := catalog.Lookup(serviceType)
	if err != nil {
		return nil, err
	}

	throughput := entry.ThroughputPerHour
	if ov.ThroughputPerHour != nil {
		throughput = *ov.ThroughputPerHour
	}
	maxHours := entry.MaxHoursPerDay
	if ov.MaxHoursPerDay != nil {
		maxHours = *ov.MaxHoursPerDay
	}
	allowedHours := entry.AllowedHours
	if len(ov.AllowedHours) > 0 {
		allowedHours = ov.AllowedHours
	}
	billRate := entry.BillRatePerHour
	if ov.BillRatePerHour != nil {
		billRate = *ov.BillRatePerHour
	}

	ceiling := int(math.Ceil(float64(target)/(throughput*maxHours))) + staffCeilingMargin
	if ceiling > maxStaffCeiling {
		ceiling = maxStaffCeiling
	}

	var candidates []Option
	for staff := 1; staff <= ceiling; staff++ {
		for _, hours := range allowedHours {
			if hours <= 0 || hours > maxHours {
				continue
			}
			yield := int(math.Floor(hours*throughput)) * staff
			candidates = append(candidates, Option{
				Staff:         staff,
				Hours:         hours,
				Appointments:  yield,
				ExactMatch:    yield == target,
				EstimatedCost: float64(staff) * hours * billRate,
			})
		}
	}

	kept := filterNearTarget(candidates, target)
	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.ExactMatch != b.ExactMatch {
			return a.ExactMatch
		}
		da := absInt(a.Appointments - target)
		db := absInt(b.Appointments - target)
		if da != db {
			return da < db
		}
		return a.EstimatedCost < b.EstimatedCost
	})

	for i := range kept {
		kept[i].Note = describeFit(kept[i], target)
	}

	return &Result{
		Options: kept,
		Constraints: Constraints{
			MaxHoursPerDay:    maxHours,
			AllowedHours:      allowedHours,
			ThroughputPerHour: throughput,
		},
	}, nil
}

// filterNearTarget keeps exact matches plus the configurations at the
// nearest feasible yields below and above the target.
func filterNearTarget(candidates []Option, target int) []Option {
	bestBelow, bestAbove := -1, -1
	for _, c := range candidates {
		if c.Appointments < target && c.Appointments > bestBelow {
			bestBelow = c.Appointments
		}
		if c.Appointments > target && (bestAbove == -1 || c.Appointments < bestAbove) {
			bestAbove = c.Appointments
		}
	}

	var kept []Option
	for _, c := range candidates {
		switch c.Appointments {
		case target, bestBelow, bestAbove:
			kept = append(kept, c)
		}
	}
	return kept
}

func describeFit(opt Option, target int) string {
	switch {
	case opt.ExactMatch:
		return ""
	case opt.Appointments < target:
		return fmt.Sprintf("yields %d of %d requested appointments (short by %d)",
			opt.Appointments, target, target-opt.Appointments)
	default:
		return fmt.Sprintf("yields %d of %d requested appointments (over by %d)",
			opt.Appointments, target, opt.Appointments-target)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
