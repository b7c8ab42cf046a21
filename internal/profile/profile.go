// Package profile stores per-user travel preference records. Capability
// handlers consult profiles to enrich tool parameters and write back what
// users reveal about themselves in conversation. Three backends implement
// the same Store interface: in-memory, a single JSON file, and Postgres.
package profile

import (
	"fmt"
	"time"
)

// requiredFields are the basic-info fields a profile needs before trip
// planning can run without clarification questions.
var requiredFields = []string{
	"travel_dates",
	"dietary_restrictions",
	"preferences",
	"budget",
	"travel_style",
}

// TravelDates is an inclusive trip date span, both bounds YYYY-MM-DD.
type TravelDates struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Validate checks both bounds parse and the range is not inverted.
func (d TravelDates) Validate() error {
	start, err := time.Parse("2006-01-02", d.Start)
	if err != nil {
		return fmt.Errorf("profile: invalid start date %q", d.Start)
	}
	end, err := time.Parse("2006-01-02", d.End)
	if err != nil {
		return fmt.Errorf("profile: invalid end date %q", d.End)
	}
	if end.Before(start) {
		return fmt.Errorf("profile: end date %s is before start date %s", d.End, d.Start)
	}
	return nil
}

// BasicInfo holds the traveler's stated facts and preferences.
type BasicInfo struct {
	Destination         string              `json:"destination,omitempty"`
	TravelDates         *TravelDates        `json:"travel_dates,omitempty"`
	DietaryRestrictions []string            `json:"dietary_restrictions,omitempty"`
	Preferences         map[string][]string `json:"preferences,omitempty"`
	Budget              string              `json:"budget,omitempty"`
	TravelStyle         string              `json:"travel_style,omitempty"`
	Transportation      string              `json:"transportation,omitempty"`
	SpecialNeeds        string              `json:"special_needs,omitempty"`
}

// TripRecord is one past trip. Records are append-only.
type TripRecord struct {
	Destination string    `json:"destination"`
	StartDate   string    `json:"start_date,omitempty"`
	EndDate     string    `json:"end_date,omitempty"`
	Highlights  []string  `json:"highlights,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// Feedback is one rating-and-comment record. Records are append-only.
type Feedback struct {
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	Item       string    `json:"item,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Profile is a full per-user record. TravelHistory and Feedback are never
// pruned; UpdatedAt is refreshed on every mutation.
type Profile struct {
	UserID        string       `json:"user_id"`
	BasicInfo     BasicInfo    `json:"basic_info"`
	TravelHistory []TripRecord `json:"travel_history,omitempty"`
	Feedback      []Feedback   `json:"feedback,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// MissingFields returns the required basic-info fields the profile does not
// have yet, in canonical order.
func (p *Profile) MissingFields() []string {
	var missing []string
	for _, f := range requiredFields {
		switch f {
		case "travel_dates":
			if p.BasicInfo.TravelDates == nil {
				missing = append(missing, f)
			}
		case "dietary_restrictions":
			if len(p.BasicInfo.DietaryRestrictions) == 0 {
				missing = append(missing, f)
			}
		case "preferences":
			if len(p.BasicInfo.Preferences) == 0 {
				missing = append(missing, f)
			}
		case "budget":
			if p.BasicInfo.Budget == "" {
				missing = append(missing, f)
			}
		case "travel_style":
			if p.BasicInfo.TravelStyle == "" {
				missing = append(missing, f)
			}
		}
	}
	return missing
}

// Result is the envelope every mutating profile operation returns. Domain
// failures are reported in the envelope rather than as Go errors so the tool
// boundary can serialize them to the model unchanged.
type Result struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Result status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

func success(message string) Result {
	return Result{Status: StatusSuccess, Message: message}
}

func failure(message string) Result {
	return Result{Status: StatusError, Message: message}
}
