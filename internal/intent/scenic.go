package intent

import (
	"regexp"
	"strings"
)

var scenicDetectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:介绍|introduce|tell|讲解|explain|about)\s*(?:一下|me|)\s*(.+?)\s*(?:这个|这座|这处|this|the|)\s*(?:景点|景区|名胜|古迹|attraction|site|spot|place)`),
	regexp.MustCompile(`(?i)(.+?)\s*(?:景点|景区|名胜|古迹|attraction|site|spot|place)\s*(?:的|)\s*(?:介绍|简介|历史|信息|讲解|introduction|history|info|guide)`),
	regexp.MustCompile(`(?i)(?:这|this|that|)\s*(?:是|is|)\s*(?:什么|哪个|which|what)\s*(?:景点|景区|名胜|古迹|attraction|site|spot|place)`),
}

var scenicNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:介绍|introduce|tell|讲解|explain|about)\s*(?:一下|me|)\s*(.+?)\s*(?:这个|这座|这处|this|the|)\s*(?:景点|景区|名胜|古迹|attraction|site|spot|place)`),
	regexp.MustCompile(`(?i)(.+?)\s*(?:景点|景区|名胜|古迹|attraction|site|spot|place)\s*(?:的|)\s*(?:介绍|简介|历史|信息|讲解|introduction|history|info|guide)`),
}

var scenicHerePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:这|this|that|)\s*(?:是|is|)\s*(?:什么|哪个|which|what)\s*(?:景点|景区|名胜|古迹|attraction|site|spot|place)`),
	regexp.MustCompile(`(?i)(?:我|I)\s*(?:现在|now|当前|current)\s*(?:在|at|in)\s*(?:哪里|哪个|什么|where|which|what)\s*(?:景点|景区|名胜|古迹|attraction|site|spot|place)`),
}

var (
	scenicDetailedRE = regexp.MustCompile(`(?i)详细|具体|完整|全面|detailed|complete|full|comprehensive`)
	scenicBriefRE    = regexp.MustCompile(`(?i)简单|简略|简短|brief|short|concise`)
)

// ScenicDetector recognizes attraction information queries such as
// "介绍一下石林这个景点" or "这是什么景点".
type ScenicDetector struct{}

// NewScenicDetector returns an attraction information detector.
func NewScenicDetector() *ScenicDetector { return &ScenicDetector{} }

var _ Detector = (*ScenicDetector)(nil)

func (*ScenicDetector) Name() string { return "scenic_info" }

func (*ScenicDetector) Detect(text string) bool {
	for _, re := range scenicDetectPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// ExtractParams returns the attraction name and the requested detail level
// (detailed, brief or standard). A question about "this" attraction with no
// name resolves to the user's current position.
func (*ScenicDetector) ExtractParams(text string) Params {
	params := Params{}

	for _, re := range scenicNamePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if name := strings.TrimSpace(m[1]); name != "" {
				params["spot_name"] = name
				break
			}
		}
	}
	if _, ok := params["spot_name"]; !ok {
		for _, re := range scenicHerePatterns {
			if re.MatchString(text) {
				params["spot_name"] = defaultOrigin
				break
			}
		}
	}

	switch {
	case scenicDetailedRE.MatchString(text):
		params["detail_level"] = "detailed"
	case scenicBriefRE.MatchString(text):
		params["detail_level"] = "brief"
	default:
		params["detail_level"] = "standard"
	}

	return params
}
