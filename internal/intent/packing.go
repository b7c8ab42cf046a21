package intent

import (
	"regexp"
	"strings"
	"time"
)

var packingDetectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:帮我|help|请|please|)(?:准备|prepare|制作|make|生成|generate)\s*(?:.*?)(?:出行|旅行|旅游|trip|travel)\s*(?:清单|物品|list|packing|物品清单)`),
	regexp.MustCompile(`(?i)(?:去|to|前往|visit)\s*(.+?)\s*(?:需要|should|必须|must|要|have to)\s*(?:带|pack|准备|prepare)\s*(?:什么|哪些|what)\s*(?:东西|物品|item|thing)`),
	regexp.MustCompile(`(?i)(?:出行|旅行|旅游|trip|travel)\s*(?:清单|物品|list|packing|物品清单)`),
}

var packingDestinationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:去|to|前往|visit)\s*(.+?)\s*(?:旅游|旅行|玩|游玩|travel|trip|tour)`),
	regexp.MustCompile(`(?i)(?:去|to|前往|visit)\s*(.+?)\s*(?:需要|should|必须|must|要|have to)\s*(?:带|pack|准备|prepare)`),
	regexp.MustCompile(`(?i)(?:在|at|in)\s*(.+?)\s*(?:的|)(?:出行|旅行|旅游|trip|travel)`),
	regexp.MustCompile(`(?i)(?:规划|plan)\s*(?:一下|)\s*(?:去|to|)\s*(.+?)\s*(?:\d+|几|)\s*(?:天|日|days)\s*(?:旅游|旅行|玩|游玩|travel|trip|tour)`),
}

// packingStyles classifies the kind of trip for packing purposes. The split
// differs from tripStyles: what you pack for a business trip has little to
// do with what you would see on one.
var packingStyles = []styleEntry{
	{"商务", []string{"商务", "出差", "business", "work"}},
	{"休闲", []string{"休闲", "放松", "casual", "relax"}},
	{"冒险", []string{"冒险", "探险", "户外", "adventure", "outdoor"}},
	{"家庭", []string{"家庭", "孩子", "亲子", "family", "kid", "child"}},
	{"奢华", []string{"奢华", "豪华", "luxury", "high-end"}},
	{"经济", []string{"经济", "省钱", "budget", "economic", "cheap"}},
}

const defaultPackingStyle = "休闲"

// PackingDetector recognizes packing list requests such as
// "去西藏需要带什么东西".
type PackingDetector struct {
	now      func() time.Time
	tripDays int
}

// NewPackingDetector returns a packing list detector using the given time
// source for relative date resolution. tripDays is the trip length assumed
// when the text names none; values below 1 mean the default.
func NewPackingDetector(now func() time.Time, tripDays int) *PackingDetector {
	if now == nil {
		now = time.Now
	}
	return &PackingDetector{now: now, tripDays: tripDays}
}

var _ Detector = (*PackingDetector)(nil)

func (*PackingDetector) Name() string { return "packing" }

func (*PackingDetector) Detect(text string) bool {
	for _, re := range packingDetectPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// ExtractParams returns destination, resolved travel dates and the trip
// style, defaulting to a casual trip.
func (d *PackingDetector) ExtractParams(text string) Params {
	params := Params{}

	for _, re := range packingDestinationPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			params["destination"] = strings.TrimSpace(m[1])
			break
		}
	}

	dates := extractDateRange(text, d.now, d.tripDays)
	params["travel_dates"] = Params{
		"start_date": dates.Start,
		"end_date":   dates.End,
	}

	style := matchStyle(text, packingStyles)
	if style == "" {
		style = defaultPackingStyle
	}
	params["travel_style"] = style

	return params
}
