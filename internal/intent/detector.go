// Package intent provides deterministic intent detection for conversational
// travel requests. Each detector recognizes one category of request from raw
// user text, in both Chinese and English, and extracts the parameters the
// matching tool needs. Detection is pure regular-expression matching with no
// model round trip, which keeps the routing fast path cheap and reproducible.
package intent

import (
	"strings"
	"time"
)

// Params holds the parameters a detector extracted from user text, keyed by
// the argument names of the tool the intent maps to.
type Params map[string]any

// Detector recognizes a single intent category in user text.
type Detector interface {
	// Name returns the stable identifier of the intent category, for example
	// "weather" or "nearby_facility".
	Name() string

	// Detect reports whether the text expresses this detector's intent.
	Detect(text string) bool

	// ExtractParams pulls tool parameters out of the text. It may be called
	// regardless of whether Detect returned true; missing values are filled
	// with the detector's defaults where a sensible default exists, and
	// omitted otherwise.
	ExtractParams(text string) Params
}

// Match pairs a detector name with the parameters it extracted.
type Match struct {
	Intent string
	Params Params
}

// Registry holds detectors in priority order. Earlier detectors win when a
// single utterance matches several categories.
type Registry struct {
	detectors []Detector
	now       func() time.Time
	tripDays  int
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the time source used for relative date extraction.
// Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithDefaultTripDays sets the trip length assumed when an utterance names
// neither dates nor a duration. Values below 1 keep the built-in default.
func WithDefaultTripDays(days int) Option {
	return func(r *Registry) { r.tripDays = days }
}

// NewRegistry returns a registry with the full detector set in default
// priority order: specific, parameter-rich intents are tried before the
// broad ones so that "去云南玩5天的行程" routes to itinerary planning rather
// than profile collection.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	r.detectors = []Detector{
		NewWeatherDetector(),
		NewTrafficDetector(),
		NewRouteDetector(),
		NewFacilityDetector(),
		NewItineraryDetector(r.now, r.tripDays),
		NewPackingDetector(r.now, r.tripDays),
		NewSocialDetector(),
		NewUserInfoDetector(),
		NewScenicDetector(),
	}
	return r
}

// Detectors returns the registry's detectors in priority order.
func (r *Registry) Detectors() []Detector {
	out := make([]Detector, len(r.detectors))
	copy(out, r.detectors)
	return out
}

// Get returns the detector registered under name, or nil if none exists.
func (r *Registry) Get(name string) Detector {
	for _, d := range r.detectors {
		if d.Name() == name {
			return d
		}
	}
	return nil
}

// First returns the highest-priority match for the text, or nil when no
// detector fires.
func (r *Registry) First(text string) *Match {
	for _, d := range r.detectors {
		if d.Detect(text) {
			return &Match{Intent: d.Name(), Params: d.ExtractParams(text)}
		}
	}
	return nil
}

// All returns every match for the text in priority order. An utterance such
// as "去大理玩3天，顺便看看天气" legitimately carries more than one intent.
func (r *Registry) All(text string) []Match {
	var matches []Match
	for _, d := range r.detectors {
		if d.Detect(text) {
			matches = append(matches, Match{Intent: d.Name(), Params: d.ExtractParams(text)})
		}
	}
	return matches
}

// firstGroup returns the first non-empty capture group of a submatch slice,
// skipping the full-match entry at index 0.
func firstGroup(groups []string) string {
	for _, g := range groups[1:] {
		if trimmed := strings.TrimSpace(g); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
