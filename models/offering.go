package models

import (
	"fmt"
	"strings"
)

// OfferingKind tags which directory an offering lives in.
type OfferingKind string

const (
	OfferingMusician   OfferingKind = "MUSICIAN"
	OfferingVocalist   OfferingKind = "VOCALIST"
	OfferingInstrument OfferingKind = "INSTRUMENT"
)

// Valid reports whether k is one of the bookable kinds.
func (k OfferingKind) Valid() bool {
	switch k {
	case OfferingMusician, OfferingVocalist, OfferingInstrument:
		return true
	}
	return false
}

// OfferingRef identifies exactly one bookable offering.
type OfferingRef struct {
	Kind OfferingKind `bson:"kind" json:"kind" binding:"required"`
	ID   string       `bson:"id" json:"id" binding:"required"`
}

// Key is a stable string form, used for lock names.
func (r OfferingRef) Key() string {
	return strings.ToLower(string(r.Kind)) + ":" + r.ID
}

func (r OfferingRef) String() string {
	return fmt.Sprintf("%s %s", strings.ToLower(string(r.Kind)), r.ID)
}

// Offering is the provider directory's view of a bookable musician, vocalist or instrument.
type Offering struct {
	Ref                OfferingRef `json:"ref"`
	ProviderID         string      `json:"providerId"`
	HourlyRate         float64     `json:"hourlyRate"`
	WeeklyAvailability []string    `json:"weeklyAvailability"` // e.g. ["MONDAY", "FRIDAY"]
}

// ResolvedOffering is the uniform shape every booking component works with.
// The rate is already converted to currency minor units.
type ResolvedOffering struct {
	Ref          OfferingRef
	ProviderID   string
	HourlyRate   int64
	Availability map[string]bool
}

// AvailableOn reports whether the weekday name (e.g. "MONDAY") is in the offering's week.
func (o *ResolvedOffering) AvailableOn(day string) bool {
	return o.Availability[strings.ToUpper(day)]
}
