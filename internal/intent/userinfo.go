package intent

import (
	"regexp"
	"strings"
)

var userInfoDetectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:我|I)\s*(?:想|want|would like|plan)\s*(?:去|to|visit)\s*(.+?)\s*(?:旅游|旅行|玩|游玩|travel|trip|tour)`),
	regexp.MustCompile(`(?i)(?:我|I)\s*(?:的|my|)\s*(?:旅行|旅游|travel|trip)\s*(?:偏好|喜好|风格|preference|style)`),
	regexp.MustCompile(`(?i)(?:更新|update|修改|change|设置|set)\s*(?:我|my|)\s*(?:的|)\s*(?:信息|个人信息|旅行偏好|information|profile|preference)`),
}

var userInfoDestinationRE = regexp.MustCompile(`(?i)(?:我|I)\s*(?:想|want|would like|plan)\s*(?:去|to|visit)\s*(.+?)\s*(?:旅游|旅行|玩|游玩|travel|trip|tour)`)

// UserInfoDetector recognizes traveler profile statements such as
// "我想去大理旅游，预算3000元" or requests to view or update saved
// preferences.
type UserInfoDetector struct{}

// NewUserInfoDetector returns a traveler profile detector.
func NewUserInfoDetector() *UserInfoDetector { return &UserInfoDetector{} }

var _ Detector = (*UserInfoDetector)(nil)

func (*UserInfoDetector) Name() string { return "user_info" }

func (*UserInfoDetector) Detect(text string) bool {
	for _, re := range userInfoDetectPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// ExtractParams returns whatever profile fields the text states. Unlike the
// trip detectors it never defaults travel dates: a profile only records
// dates the user actually gave.
func (*UserInfoDetector) ExtractParams(text string) Params {
	params := Params{}

	if m := userInfoDestinationRE.FindStringSubmatch(text); m != nil {
		params["destination"] = strings.TrimSpace(m[1])
	}

	if m := explicitRangeRE.FindStringSubmatch(text); m != nil {
		params["start_date"] = dateNormalizer.Replace(m[1])
		params["end_date"] = dateNormalizer.Replace(m[2])
	}

	if budget := matchBudget(text); budget > 0 {
		params["budget"] = budget
	}

	if style := matchStyle(text, tripStyles); style != "" {
		params["travel_style"] = style
	}

	if diets := matchDietRestrictions(text); len(diets) > 0 {
		params["diet_restrictions"] = diets
	}

	return params
}
