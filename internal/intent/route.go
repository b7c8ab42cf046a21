package intent

import (
	"regexp"
	"strings"
)

var routeDetectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:从|from)\s*(.+?)\s*(?:到|去|至|to)\s*(.+?)\s*(?:怎么走|怎么去|如何到达|路线|route|path|direction)`),
	regexp.MustCompile(`(?i)(?:到|去|至|to)\s*(.+?)\s*(?:怎么走|怎么去|如何到达|路线|route|path|direction)`),
	regexp.MustCompile(`(?i)(.+?)\s*(?:到|去|至|to)\s*(.+?)\s*(?:的|)(?:路线|route|path|direction|交通)`),
}

var routeExtractPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:从|from)\s*(.+?)\s*(?:到|去|至|to)\s*(.+?)\s*(?:怎么走|怎么去|如何到达|路线|route|path|direction)`),
	regexp.MustCompile(`(?i)(?:从|from)\s*(.+?)\s*(?:到|去|至|to)\s*(.+)`),
	regexp.MustCompile(`(?i)(.+?)\s*(?:到|去|至|to)\s*(.+?)\s*(?:的|)(?:路线|route|path|direction|交通)`),
}

// defaultOrigin stands in for the user's position when a query names no
// place of its own.
const defaultOrigin = "当前位置"

// RouteDetector recognizes point-to-point route queries such as
// "从昆明站到滇池怎么走".
type RouteDetector struct{}

// NewRouteDetector returns a route query detector.
func NewRouteDetector() *RouteDetector { return &RouteDetector{} }

var _ Detector = (*RouteDetector)(nil)

func (*RouteDetector) Name() string { return "route" }

func (*RouteDetector) Detect(text string) bool {
	for _, re := range routeDetectPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// ExtractParams returns origin and destination when both can be found. Every
// extract pattern captures a non-empty origin, so there is no fallback here.
func (*RouteDetector) ExtractParams(text string) Params {
	params := Params{}
	for _, re := range routeExtractPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil || len(m) < 3 {
			continue
		}
		origin := strings.TrimSpace(m[1])
		destination := strings.TrimSpace(m[2])
		if origin != "" && destination != "" {
			params["origin"] = origin
			params["destination"] = destination
			return params
		}
	}
	return params
}
