// Package catalog holds the static per-service scheduling and pricing
// constants used by staffing and proposal calculations.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownServiceType indicates a service tag with no catalog entry.
var ErrUnknownServiceType = errors.New("unknown service type")

// ServiceType identifies a bookable service.
type ServiceType string

const (
	ServiceChairMassage ServiceType = "chair_massage"
	ServiceTableMassage ServiceType = "table_massage"
	ServiceManicure     ServiceType = "manicure"
	ServiceFacial       ServiceType = "facial"
	ServiceYoga         ServiceType = "yoga"
	ServiceMeditation   ServiceType = "meditation"
	ServiceHeadshot     ServiceType = "headshot"
)

// Entry describes the scheduling constraints and default rates for one
// service type.
type Entry struct {
	DisplayName string
	// AppointmentMinutes is the length of a single appointment.
	AppointmentMinutes int
	// ThroughputPerHour is how many appointments one staff member serves
	// per working hour.
	ThroughputPerHour float64
	// MaxHoursPerDay is the longest shift offered for this service.
	MaxHoursPerDay float64
	// AllowedHours are the shift lengths that can be booked.
	AllowedHours []float64
	// BillRatePerHour is the default client-facing hourly rate.
	BillRatePerHour float64
	// PayoutRatePerHour is the default hourly rate paid to staff.
	PayoutRatePerHour float64
}

var entries = map[ServiceType]Entry{
	ServiceChairMassage: {
		DisplayName:        "Chair Massage",
		AppointmentMinutes: 15,
		ThroughputPerHour:  4,
		MaxHoursPerDay:     8,
		AllowedHours:       []float64{2, 2.5, 3, 3.5, 4, 4.5, 5, 5.5, 6, 6.5, 7, 7.5, 8},
		BillRatePerHour:    180,
		PayoutRatePerHour:  95,
	},
	ServiceTableMassage: {
		DisplayName:        "Table Massage",
		AppointmentMinutes: 30,
		ThroughputPerHour:  2,
		MaxHoursPerDay:     8,
		AllowedHours:       []float64{4, 6, 8},
		BillRatePerHour:    200,
		PayoutRatePerHour:  110,
	},
	ServiceManicure: {
		DisplayName:        "Manicure",
		AppointmentMinutes: 20,
		ThroughputPerHour:  3,
		MaxHoursPerDay:     6,
		AllowedHours:       []float64{3, 4, 5, 6},
		BillRatePerHour:    150,
		PayoutRatePerHour:  75,
	},
	ServiceFacial: {
		DisplayName:        "Facial",
		AppointmentMinutes: 30,
		ThroughputPerHour:  2,
		MaxHoursPerDay:     6,
		AllowedHours:       []float64{3, 4, 5, 6},
		BillRatePerHour:    190,
		PayoutRatePerHour:  100,
	},
	ServiceYoga: {
		DisplayName:        "Yoga Class",
		AppointmentMinutes: 60,
		ThroughputPerHour:  1,
		MaxHoursPerDay:     4,
		AllowedHours:       []float64{1, 1.5, 2, 3, 4},
		BillRatePerHour:    160,
		PayoutRatePerHour:  85,
	},
	ServiceMeditation: {
		DisplayName:        "Guided Meditation",
		AppointmentMinutes: 30,
		ThroughputPerHour:  2,
		MaxHoursPerDay:     4,
		AllowedHours:       []float64{1, 1.5, 2, 3, 4},
		BillRatePerHour:    140,
		PayoutRatePerHour:  70,
	},
	ServiceHeadshot: {
		DisplayName:        "Headshot Session",
		AppointmentMinutes: 10,
		ThroughputPerHour:  6,
		MaxHoursPerDay:     8,
		AllowedHours:       []float64{2, 3, 4, 5, 6, 7, 8},
		BillRatePerHour:    220,
		PayoutRatePerHour:  120,
	},
}

// Lookup returns the catalog entry for a service type.
func Lookup(st ServiceType) (Entry, error) {
	entry, ok := entries[st]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownServiceType, st)
	}
	return entry, nil
}

// DisplayName returns the human-readable name for a service tag. Unmapped
// tags fall back to a capitalized form of the tag itself.
func DisplayName(st ServiceType) string {
	if entry, ok := entries[st]; ok {
		return entry.DisplayName
	}
	parts := strings.Split(string(st), "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// ServiceTypes lists every known service tag.
func ServiceTypes() []ServiceType {
	types := make([]ServiceType, 0, len(entries))
	for st := range entries {
		types = append(types, st)
	}
	return types
}
