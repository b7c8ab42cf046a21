package handler

import (
	"context"

	"github.com/wayfarer-ai/wayfarer/internal/intent"
)

const (
	trafficClarification = "抱歉，我无法确定您想查询哪里的路况。请提供具体的地点名称。"
	routeClarification   = "抱歉，我无法确定您的出发地和目的地。请提供完整的路线信息。"
)

// TrafficHandler answers area road-condition questions.
type TrafficHandler struct {
	deps     Deps
	detector intent.Detector
}

var _ Handler = (*TrafficHandler)(nil)

func NewTrafficHandler(deps Deps, detector intent.Detector) *TrafficHandler {
	return &TrafficHandler{deps: deps, detector: detector}
}

func (h *TrafficHandler) Handle(ctx context.Context, text, _ string) (string, error) {
	params := h.detector.ExtractParams(text)
	location := paramString(params, "location")
	if location == "" {
		return trafficClarification, nil
	}
	args := map[string]any{"location": location}
	if radius, ok := params["radius"].(float64); ok {
		args["radius"] = radius
	}
	return callAndReply(ctx, h.deps, "get_traffic_status", args)
}

// RouteHandler answers point-to-point route questions.
type RouteHandler struct {
	deps     Deps
	detector intent.Detector
}

var _ Handler = (*RouteHandler)(nil)

func NewRouteHandler(deps Deps, detector intent.Detector) *RouteHandler {
	return &RouteHandler{deps: deps, detector: detector}
}

func (h *RouteHandler) Handle(ctx context.Context, text, _ string) (string, error) {
	params := h.detector.ExtractParams(text)
	origin := paramString(params, "origin")
	destination := paramString(params, "destination")
	if origin == "" || destination == "" {
		return routeClarification, nil
	}
	return callAndReply(ctx, h.deps, "get_route_traffic", map[string]any{
		"origin":      origin,
		"destination": destination,
	})
}
