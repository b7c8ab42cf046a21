package handler

import (
	"context"

	"github.com/wayfarer-ai/wayfarer/internal/intent"
)

const weatherClarification = "抱歉，我无法确定您想查询哪个地点的天气。请提供具体的地点名称。"

// WeatherHandler answers live weather questions.
type WeatherHandler struct {
	deps     Deps
	detector intent.Detector
}

var _ Handler = (*WeatherHandler)(nil)

func NewWeatherHandler(deps Deps, detector intent.Detector) *WeatherHandler {
	return &WeatherHandler{deps: deps, detector: detector}
}

func (h *WeatherHandler) Handle(ctx context.Context, text, _ string) (string, error) {
	params := h.detector.ExtractParams(text)
	location := paramString(params, "location")
	if location == "" {
		return weatherClarification, nil
	}
	return callAndReply(ctx, h.deps, "get_current_temperature", map[string]any{
		"location": location,
		"unit":     paramString(params, "unit"),
	})
}
