package intent

import (
	"regexp"
	"strings"
	"time"
)

var itineraryDetectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:帮我|help|请|please|)(?:规划|plan|制定|make|生成|generate)\s*(?:.*?)(?:行程|旅行|旅游|trip|travel|itinerary|计划|plan)`),
	regexp.MustCompile(`(?i)(?:去|to|前往|visit)\s*(.+?)\s*(?:旅游|旅行|玩|游玩|travel|trip|tour)\s*(?:行程|计划|规划|itinerary|plan)`),
	regexp.MustCompile(`(?i)(?:.*?)(?:几天|days|天数|duration)\s*(?:的|)\s*(?:行程|旅行|旅游|trip|travel|itinerary|计划|plan)`),
}

var itineraryDestinationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:去|to|前往|visit)\s*(.+?)\s*(?:旅游|旅行|玩|游玩|travel|trip|tour)`),
	regexp.MustCompile(`(?i)(?:在|at|in)\s*(.+?)\s*(?:的|)(?:行程|旅行|旅游|trip|travel|itinerary)`),
	regexp.MustCompile(`(?i)(?:规划|plan|制定|make|生成|generate)\s*(.+?)\s*(?:的|)(?:行程|旅行|旅游|trip|travel|itinerary)`),
}

// ItineraryDetector recognizes trip planning requests such as
// "帮我规划一下去云南玩5天的行程".
type ItineraryDetector struct {
	now      func() time.Time
	tripDays int
}

// NewItineraryDetector returns an itinerary planning detector using the
// given time source for relative date resolution. tripDays is the trip
// length assumed when the text names none; values below 1 mean the default.
func NewItineraryDetector(now func() time.Time, tripDays int) *ItineraryDetector {
	if now == nil {
		now = time.Now
	}
	return &ItineraryDetector{now: now, tripDays: tripDays}
}

var _ Detector = (*ItineraryDetector)(nil)

func (*ItineraryDetector) Name() string { return "itinerary" }

func (*ItineraryDetector) Detect(text string) bool {
	for _, re := range itineraryDetectPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// ExtractParams returns destination, resolved travel dates and any user
// preferences (budget, trip style, dietary restrictions) found in the text.
func (d *ItineraryDetector) ExtractParams(text string) Params {
	params := Params{}

	for _, re := range itineraryDestinationPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			params["destination"] = strings.TrimSpace(m[1])
			break
		}
	}

	dates := extractDateRange(text, d.now, d.tripDays)
	params["start_date"] = dates.Start
	params["end_date"] = dates.End

	prefs := Params{}
	if budget := matchBudget(text); budget > 0 {
		prefs["budget"] = budget
	}
	if style := matchStyle(text, tripStyles); style != "" {
		prefs["style"] = style
	}
	if diets := matchDietRestrictions(text); len(diets) > 0 {
		prefs["diet_restrictions"] = diets
	}
	params["user_preferences"] = prefs

	return params
}
