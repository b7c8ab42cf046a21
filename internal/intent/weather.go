package intent

import (
	"regexp"
	"strings"
)

var weatherPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(.*?)(?:的|在|at|in)\s*(.+?)(?:的|)\s*(?:天气|weather)(?:怎么样|如何|情况|forecast|report|condition)`),
	regexp.MustCompile(`(?i)(.+?)(?:今天|today|现在|now|当前|current)(?:的|)\s*(?:天气|weather)`),
	regexp.MustCompile(`(?i)(?:天气|weather)(?:怎么样|如何|情况|forecast|report|condition)(?:.*?)(?:在|at|in)\s*(.+)`),
}

// WeatherDetector recognizes current-weather and forecast queries such as
// "昆明的天气怎么样" or "what's the weather in Kunming".
type WeatherDetector struct{}

// NewWeatherDetector returns a weather query detector.
func NewWeatherDetector() *WeatherDetector { return &WeatherDetector{} }

var _ Detector = (*WeatherDetector)(nil)

func (*WeatherDetector) Name() string { return "weather" }

func (*WeatherDetector) Detect(text string) bool {
	for _, re := range weatherPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// ExtractParams returns the queried location and temperature unit. The unit
// defaults to celsius unless the text asks for fahrenheit.
func (*WeatherDetector) ExtractParams(text string) Params {
	params := Params{}
	for _, re := range weatherPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if loc := firstGroup(m); loc != "" {
				params["location"] = loc
				break
			}
		}
	}

	if strings.Contains(text, "华氏") || strings.Contains(strings.ToLower(text), "fahrenheit") {
		params["unit"] = "fahrenheit"
	} else {
		params["unit"] = "celsius"
	}
	return params
}
