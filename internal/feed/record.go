// Package feed fetches the LCSD venue and event XML feeds, validates them and
// groups events under the venues that host them.
package feed

import (
	"encoding/json"
	"time"
)

// MinEventsPerVenue is the popularity threshold: venues hosting fewer events
// are left out of the result.
const MinEventsPerVenue = 3

// unknownName replaces a missing venue name in responses.
const unknownName = "Unknown"

// VenueRecord is one <venue> element of the venues feed.
type VenueRecord struct {
	ID        string
	NameC     string
	NameE     string
	Latitude  *float64
	Longitude *float64
}

// EventRecord is one <event> element of the events feed. Only ID and VenueID
// take part in the join; the remaining fields are passed through to clients.
type EventRecord struct {
	ID            string `json:"id"`
	VenueID       string `json:"venueid"`
	Quota         *int   `json:"quota,omitempty"`
	TitleC        string `json:"titlec,omitempty"`
	TitleE        string `json:"titlee,omitempty"`
	Cat1          string `json:"cat1,omitempty"`
	Cat2          string `json:"cat2,omitempty"`
	PreDateC      string `json:"predateC,omitempty"`
	PreDateE      string `json:"predateE,omitempty"`
	ProgTimeC     string `json:"progtimec,omitempty"`
	ProgTimeE     string `json:"progtimee,omitempty"`
	AgeLimitC     string `json:"agelimitc,omitempty"`
	AgeLimitE     string `json:"agelimite,omitempty"`
	PriceC        string `json:"pricec,omitempty"`
	PriceE        string `json:"pricee,omitempty"`
	DescC         string `json:"descc,omitempty"`
	DescE         string `json:"desce,omitempty"`
	URLC          string `json:"urlc,omitempty"`
	URLE          string `json:"urle,omitempty"`
	PresenterOrgC string `json:"presenterorgc,omitempty"`
	PresenterOrgE string `json:"presenterorge,omitempty"`
}

// VenueEventsGroup is a venue together with the events it hosts, in feed order.
type VenueEventsGroup struct {
	Venue  VenueRecord
	Events []EventRecord
}

type groupJSON struct {
	VenueID    string        `json:"venueID"`
	VenueNameC string        `json:"venueNameC"`
	VenueNameE string        `json:"venueNameE"`
	Latitude   *float64      `json:"latitude"`
	Longitude  *float64      `json:"longitude"`
	Events     []EventRecord `json:"events"`
}

// MarshalJSON renders the group in the shape the web client consumes.
func (g VenueEventsGroup) MarshalJSON() ([]byte, error) {
	out := groupJSON{
		VenueID:    g.Venue.ID,
		VenueNameC: orUnknown(g.Venue.NameC),
		VenueNameE: orUnknown(g.Venue.NameE),
		Latitude:   g.Venue.Latitude,
		Longitude:  g.Venue.Longitude,
		Events:     g.Events,
	}
	if out.Events == nil {
		out.Events = []EventRecord{}
	}
	return json.Marshal(out)
}

func orUnknown(s string) string {
	if s == "" {
		return unknownName
	}
	return s
}

// Result is the output of one pipeline run.
type Result struct {
	Groups []VenueEventsGroup
	// FetchedAt is when the oldest feed snapshot used in this run was
	// downloaded from its origin.
	FetchedAt time.Time
	// FromCache reports whether any snapshot was served from the feed cache.
	FromCache bool
}
