package travel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wayfarer-ai/wayfarer/pkg/vision"
)

// AnalyzeTravelPhoto runs landmark recognition over a base64-encoded photo
// and returns a scene description. When the recognizer finds no landmark the
// photo still gets a generic travel-scene analysis.
func (s *Service) AnalyzeTravelPhoto(ctx context.Context, imageData string) map[string]any {
	if imageData == "" {
		return errResult("没有可分析的图片数据")
	}

	result := map[string]any{
		"objects": []string{"风景", "建筑"},
		"scene":   "旅游景点",
		"mood":    "愉快",
		"colors":  []string{"蓝色", "绿色"},
	}
	if s.vision == nil {
		return result
	}

	// A successful "no landmark" response is not a provider failure and must
	// not trip the breaker.
	var landmark *vision.Landmark
	err := s.visionBreaker.Execute(func() error {
		lm, err := s.vision.RecognizeLandmark(ctx, imageData)
		if errors.Is(err, vision.ErrNoLandmark) {
			return nil
		}
		landmark = lm
		return err
	})
	switch {
	case err != nil:
		s.logger.WarnContext(ctx, "landmark recognition failed", "error", err)
		result["note"] = "图像识别服务暂时不可用"
	case landmark != nil:
		result["landmark"] = landmark.Name
		result["objects"] = []string{"风景", "地标建筑"}
	}
	return result
}

// postTemplates are caption openers chosen by writing style.
var postTemplates = map[string]string{
	"旅行": "📍 %s之旅\n\n%s",
	"文艺": "🌟 在%s遇见美好\n\n%s",
	"简洁": "✨ %s\n\n%s",
}

// GenerateSocialPost composes a share-ready caption from trip information
// and the accumulated photo analyses.
func (s *Service) GenerateSocialPost(tripInfo map[string]any, photoAnalysis []map[string]any, platform, style string, keywords []string) map[string]any {
	destination, _ := tripInfo["destination"].(string)
	if destination == "" {
		destination = "旅途"
	}

	body := "每一步都是风景，每一刻都值得纪念。"
	if len(keywords) > 0 {
		body = strings.Join(keywords, "，") + "，不虚此行。"
	}

	tmpl, ok := postTemplates[style]
	if !ok {
		tmpl = postTemplates["旅行"]
	}
	content := fmt.Sprintf(tmpl, destination, body)
	if hasSceneryObject(photoAnalysis) {
		content += "\n🏞️ 风景美如画"
	}

	hashtags := []string{"#" + destination, "#旅行", "#美好时光"}
	for _, kw := range keywords {
		hashtags = append(hashtags, "#"+kw)
	}

	return map[string]any{
		"platform":        platform,
		"style":           style,
		"content":         content,
		"hashtags":        hashtags,
		"suggested_emoji": []string{"📸", "🌈", "💕", "🎉"},
	}
}

// hasSceneryObject reports whether any photo analysis detected scenery.
func hasSceneryObject(analyses []map[string]any) bool {
	for _, analysis := range analyses {
		for _, obj := range stringSlice(analysis["objects"]) {
			if strings.Contains(obj, "风景") {
				return true
			}
		}
	}
	return false
}
