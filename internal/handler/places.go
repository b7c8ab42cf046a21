package handler

import (
	"context"

	"github.com/wayfarer-ai/wayfarer/internal/intent"
)

// FacilityHandler finds nearby facilities such as restrooms or restaurants.
type FacilityHandler struct {
	deps     Deps
	detector intent.Detector
}

var _ Handler = (*FacilityHandler)(nil)

func NewFacilityHandler(deps Deps, detector intent.Detector) *FacilityHandler {
	return &FacilityHandler{deps: deps, detector: detector}
}

func (h *FacilityHandler) Handle(ctx context.Context, text, _ string) (string, error) {
	params := h.detector.ExtractParams(text)
	args := map[string]any{
		"location":      paramString(params, "location"),
		"facility_type": paramString(params, "facility_type"),
	}
	if radius, ok := params["radius"].(int); ok {
		args["radius"] = radius
	}
	return callAndReply(ctx, h.deps, "find_nearby_facilities", args)
}

// ScenicHandler explains a scenic spot.
type ScenicHandler struct {
	deps     Deps
	detector intent.Detector
}

var _ Handler = (*ScenicHandler)(nil)

func NewScenicHandler(deps Deps, detector intent.Detector) *ScenicHandler {
	return &ScenicHandler{deps: deps, detector: detector}
}

func (h *ScenicHandler) Handle(ctx context.Context, text, _ string) (string, error) {
	params := h.detector.ExtractParams(text)
	spot := paramString(params, "spot_name")
	if spot == "" {
		return "抱歉，我无法确定您想了解哪个景点。请提供景点名称。", nil
	}
	return callAndReply(ctx, h.deps, "get_scenic_spot_info", map[string]any{
		"location":     spot,
		"detail_level": paramString(params, "detail_level"),
	})
}
