package handler

import (
	"context"
	"strings"

	"github.com/wayfarer-ai/wayfarer/internal/intent"
)

const noImageMessage = "抱歉，我没有收到任何图片。请上传一张图片以便我进行分析。"

// socialCueWords flag that an analysed photo should also get a share-ready
// caption.
var socialCueWords = []string{"朋友圈", "微信", "微博", "社交"}

func wantsSocialPost(text string) bool {
	for _, cue := range socialCueWords {
		if strings.Contains(text, cue) {
			return true
		}
	}
	return false
}

// ImageHandler analyses an uploaded travel photo and, when the text asks for
// it, chains a social media caption over the analysis.
type ImageHandler struct {
	deps Deps
}

var _ Handler = (*ImageHandler)(nil)

func NewImageHandler(deps Deps) *ImageHandler {
	return &ImageHandler{deps: deps}
}

func (h *ImageHandler) Handle(ctx context.Context, text, imageData string) (string, error) {
	if imageData == "" {
		return noImageMessage, nil
	}

	analysis := h.deps.Caller.Call(ctx, "analyze_travel_photo", map[string]any{
		"image_data": imageData,
	})
	h.deps.Memory.AddToolResult("analyze_travel_photo", "", analysis)

	if wantsSocialPost(text) {
		post := h.deps.Caller.Call(ctx, "generate_social_media_post", map[string]any{
			"trip_info":       h.tripInfo(ctx),
			"photos_analysis": []map[string]any{analysis},
		})
		h.deps.Memory.AddToolResult("generate_social_media_post", "", post)
	}
	return streamReply(ctx, h.deps)
}

// tripInfo pulls the caption context from the stored profile.
func (h *ImageHandler) tripInfo(ctx context.Context) map[string]any {
	info := map[string]any{}
	p, ok, err := h.deps.Profiles.GetProfile(ctx, h.deps.UserID)
	if err != nil || !ok {
		return info
	}
	if p.BasicInfo.Destination != "" {
		info["destination"] = p.BasicInfo.Destination
	}
	if td := p.BasicInfo.TravelDates; td != nil {
		info["travel_dates"] = map[string]any{"start": td.Start, "end": td.End}
	}
	return info
}

// SocialHandler generates a social media caption without a fresh photo,
// working from the stored profile and any keywords in the request.
type SocialHandler struct {
	deps     Deps
	detector intent.Detector
}

var _ Handler = (*SocialHandler)(nil)

func NewSocialHandler(deps Deps, detector intent.Detector) *SocialHandler {
	return &SocialHandler{deps: deps, detector: detector}
}

func (h *SocialHandler) Handle(ctx context.Context, text, _ string) (string, error) {
	params := h.detector.ExtractParams(text)

	tripInfo := map[string]any{}
	if p, ok, err := h.deps.Profiles.GetProfile(ctx, h.deps.UserID); err == nil && ok && p.BasicInfo.Destination != "" {
		tripInfo["destination"] = p.BasicInfo.Destination
	}
	// A stated photo location beats the profile destination.
	if loc := paramString(params, "location"); loc != "" {
		tripInfo["destination"] = loc
	}

	args := map[string]any{
		"trip_info": tripInfo,
		"platform":  paramString(params, "platform"),
		"style":     paramString(params, "style"),
	}
	if keywords, ok := params["keywords"].([]string); ok && len(keywords) > 0 {
		args["keywords"] = keywords
	}
	return callAndReply(ctx, h.deps, "generate_social_media_post", args)
}
