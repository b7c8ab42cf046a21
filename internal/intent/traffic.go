package intent

import (
	"regexp"
	"strconv"
)

var trafficPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(.+?)(?:的|在|at|in)\s*(.+?)(?:的|)\s*(?:交通|traffic|路况)(?:怎么样|如何|情况|状况|condition)`),
	regexp.MustCompile(`(?i)(.+?)(?:现在|now|当前|current)(?:的|)\s*(?:交通|traffic|路况)(?:怎么样|如何|情况|状况|condition)`),
	regexp.MustCompile(`(?i)(?:交通|traffic|路况)(?:怎么样|如何|情况|状况|condition)(?:.*?)(?:在|at|in)\s*(.+)`),
}

var trafficRadiusRE = regexp.MustCompile(`(?i)(?:半径|radius|范围)\s*(\d+)\s*(?:公里|km|千米)`)

// defaultTrafficRadiusKm is the area around a point checked for congestion
// when the user does not name a radius.
const defaultTrafficRadiusKm = 2.0

// TrafficDetector recognizes area traffic condition queries such as
// "翠湖公园附近的交通怎么样".
type TrafficDetector struct{}

// NewTrafficDetector returns a traffic condition query detector.
func NewTrafficDetector() *TrafficDetector { return &TrafficDetector{} }

var _ Detector = (*TrafficDetector)(nil)

func (*TrafficDetector) Name() string { return "traffic" }

func (*TrafficDetector) Detect(text string) bool {
	for _, re := range trafficPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// ExtractParams returns the queried location and the query radius in
// kilometers.
func (*TrafficDetector) ExtractParams(text string) Params {
	params := Params{}
	for _, re := range trafficPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if loc := firstGroup(m); loc != "" {
				params["location"] = loc
				break
			}
		}
	}

	params["radius"] = defaultTrafficRadiusKm
	if m := trafficRadiusRE.FindStringSubmatch(text); m != nil {
		if km, err := strconv.ParseFloat(m[1], 64); err == nil {
			params["radius"] = km
		}
	}
	return params
}
