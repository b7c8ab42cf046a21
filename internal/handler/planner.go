package handler

import (
	"context"

	"github.com/wayfarer-ai/wayfarer/internal/intent"
	"github.com/wayfarer-ai/wayfarer/internal/profile"
)

const itineraryClarification = "抱歉，我无法确定您想规划的目的地或行程天数。请提供完整的行程信息。"

// ItineraryHandler plans multi-day trips. Preferences the user states in the
// request win; gaps are filled from the stored profile.
type ItineraryHandler struct {
	deps     Deps
	detector intent.Detector
}

var _ Handler = (*ItineraryHandler)(nil)

func NewItineraryHandler(deps Deps, detector intent.Detector) *ItineraryHandler {
	return &ItineraryHandler{deps: deps, detector: detector}
}

func (h *ItineraryHandler) Handle(ctx context.Context, text, _ string) (string, error) {
	params := h.detector.ExtractParams(text)
	destination := paramString(params, "destination")

	prefs, _ := params["user_preferences"].(intent.Params)
	if prefs == nil {
		prefs = intent.Params{}
	}
	statedStyle := paramString(prefs, "style")
	if p, ok, err := h.deps.Profiles.GetProfile(ctx, h.deps.UserID); err == nil && ok {
		if destination == "" {
			destination = p.BasicInfo.Destination
		}
		if paramString(prefs, "style") == "" && p.BasicInfo.TravelStyle != "" {
			prefs["style"] = p.BasicInfo.TravelStyle
		}
		if _, has := prefs["diet_restrictions"]; !has && len(p.BasicInfo.DietaryRestrictions) > 0 {
			prefs["diet_restrictions"] = p.BasicInfo.DietaryRestrictions
		}
	}
	if destination == "" {
		return itineraryClarification, nil
	}

	startDate := paramString(params, "start_date")
	endDate := paramString(params, "end_date")
	reply, err := callAndReply(ctx, h.deps, "generate_travel_itinerary", map[string]any{
		"destination":      destination,
		"start_date":       startDate,
		"end_date":         endDate,
		"user_preferences": map[string]any(prefs),
	})
	if err == nil {
		// A planned trip becomes part of the travel history, and a style the
		// user stated themselves is remembered for next time.
		h.deps.Profiles.AddTripHistory(ctx, h.deps.UserID, profile.TripRecord{
			Destination: destination,
			StartDate:   startDate,
			EndDate:     endDate,
		})
		if statedStyle != "" {
			h.deps.Profiles.UpdatePreferences(ctx, h.deps.UserID,
				map[string][]string{"styles": {statedStyle}})
		}
	}
	return reply, err
}

// PackingHandler produces packing lists for an upcoming trip.
type PackingHandler struct {
	deps     Deps
	detector intent.Detector
}

var _ Handler = (*PackingHandler)(nil)

func NewPackingHandler(deps Deps, detector intent.Detector) *PackingHandler {
	return &PackingHandler{deps: deps, detector: detector}
}

func (h *PackingHandler) Handle(ctx context.Context, text, _ string) (string, error) {
	params := h.detector.ExtractParams(text)
	destination := paramString(params, "destination")
	style := paramString(params, "travel_style")

	if p, ok, err := h.deps.Profiles.GetProfile(ctx, h.deps.UserID); err == nil && ok {
		if destination == "" {
			destination = p.BasicInfo.Destination
		}
		if style == "" {
			style = p.BasicInfo.TravelStyle
		}
	}
	if destination == "" {
		return "抱歉，我无法确定您的目的地。请告诉我您要去哪里，我再为您准备物品清单。", nil
	}

	dates := map[string]any{}
	if d, ok := params["travel_dates"].(intent.Params); ok {
		dates = map[string]any(d)
	}
	return callAndReply(ctx, h.deps, "generate_packing_list", map[string]any{
		"destination":  destination,
		"travel_dates": dates,
		"user_style":   style,
	})
}
