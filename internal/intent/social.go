package intent

import (
	"regexp"
	"strings"
)

var socialDetectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:帮我|help|请|please|)(?:写|生成|创建|制作|make|write|generate|create)\s*(?:.*?)(?:社交媒体|social media|朋友圈|微博|微信|ins|instagram|facebook)\s*(?:文案|内容|post|content|caption)`),
	regexp.MustCompile(`(?i)(?:发|post|分享|share)\s*(?:.*?)(?:社交媒体|social media|朋友圈|微博|微信|ins|instagram|facebook)\s*(?:文案|内容|post|content|caption)`),
	regexp.MustCompile(`(?i)(?:.*?)(?:旅行|旅游|trip|travel|游玩)\s*(?:照片|图片|photo|picture)\s*(?:配文|文案|caption|description)`),
}

// platformAliases maps surface forms to canonical platform names. Ordered so
// that "朋友圈" resolves before the bare "微信" it implies.
var platformAliases = []struct {
	alias    string
	platform string
}{
	{"朋友圈", "微信"},
	{"wechat", "微信"},
	{"weixin", "微信"},
	{"微信", "微信"},
	{"微博", "微博"},
	{"weibo", "微博"},
	{"instagram", "Instagram"},
	{"ins", "Instagram"},
	{"facebook", "Facebook"},
	{"fb", "Facebook"},
	{"twitter", "Twitter"},
	{"推特", "Twitter"},
	{"小红书", "小红书"},
	{"red book", "小红书"},
	{"tiktok", "TikTok"},
	{"抖音", "抖音"},
	{"douyin", "抖音"},
}

const defaultPlatform = "通用"

// socialStyles classifies the tone of a social media caption.
var socialStyles = []styleEntry{
	{"幽默", []string{"幽默", "搞笑", "有趣", "humor", "funny", "joke"}},
	{"文艺", []string{"文艺", "诗意", "artistic", "poetic", "literary"}},
	{"简洁", []string{"简洁", "简短", "concise", "brief", "short"}},
	{"专业", []string{"专业", "正式", "professional", "formal"}},
	{"感性", []string{"感性", "情感", "emotional", "touching", "moving"}},
	{"励志", []string{"励志", "激励", "motivational", "inspiring"}},
	{"商务", []string{"商务", "business"}},
	{"旅行", []string{"旅行", "旅游", "travel", "trip", "journey"}},
}

const defaultSocialStyle = "旅行"

var (
	socialKeywordRE  = regexp.MustCompile(`(?i)(?:关键词|keywords|标签|tags|话题|topics)[:：]\s*(.+?)(?:\.|。|$)`)
	keywordSplitRE   = regexp.MustCompile(`[,，、\s]+`)
	socialLocationRE = regexp.MustCompile(`(?i)(?:在|at|in)\s*(.+?)\s*(?:拍的|拍摄的|taken|shot)`)
)

// SocialDetector recognizes social media caption requests such as
// "帮我写一条朋友圈文案".
type SocialDetector struct{}

// NewSocialDetector returns a social media caption detector.
func NewSocialDetector() *SocialDetector { return &SocialDetector{} }

var _ Detector = (*SocialDetector)(nil)

func (*SocialDetector) Name() string { return "social_media" }

func (*SocialDetector) Detect(text string) bool {
	for _, re := range socialDetectPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// ExtractParams returns the target platform, the caption style, any listed
// keywords and the shooting location when the text mentions one.
func (*SocialDetector) ExtractParams(text string) Params {
	params := Params{}
	lower := strings.ToLower(text)

	params["platform"] = defaultPlatform
	for _, a := range platformAliases {
		if strings.Contains(lower, a.alias) {
			params["platform"] = a.platform
			break
		}
	}

	style := matchStyle(text, socialStyles)
	if style == "" {
		style = defaultSocialStyle
	}
	params["style"] = style

	if m := socialKeywordRE.FindStringSubmatch(text); m != nil {
		var keywords []string
		for _, k := range keywordSplitRE.Split(strings.TrimSpace(m[1]), -1) {
			if k = strings.TrimSpace(k); k != "" {
				keywords = append(keywords, k)
			}
		}
		if len(keywords) > 0 {
			params["keywords"] = keywords
		}
	}

	if m := socialLocationRE.FindStringSubmatch(text); m != nil {
		params["location"] = strings.TrimSpace(m[1])
	}

	return params
}
