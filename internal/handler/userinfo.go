package handler

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/wayfarer-ai/wayfarer/internal/intent"
	"github.com/wayfarer-ai/wayfarer/internal/profile"
)

const noProfileMessage = "您还没有设置个人信息。您可以告诉我您的旅行偏好、兴趣爱好等信息，以便我为您提供更个性化的服务。"

// UserInfoHandler records travel preferences the user states, or reads the
// stored profile back when the message carries no new information.
type UserInfoHandler struct {
	deps     Deps
	detector intent.Detector
}

var _ Handler = (*UserInfoHandler)(nil)

func NewUserInfoHandler(deps Deps, detector intent.Detector) *UserInfoHandler {
	return &UserInfoHandler{deps: deps, detector: detector}
}

func (h *UserInfoHandler) Handle(ctx context.Context, text, _ string) (string, error) {
	params := h.detector.ExtractParams(text)
	info := infoFromParams(params)

	// Nothing extractable means the user is asking, not telling.
	if len(info) == 0 {
		p, ok, err := h.deps.Profiles.GetProfile(ctx, h.deps.UserID)
		if err != nil || !ok {
			return noProfileMessage, nil
		}
		view := profileToMap(p)
		if analysis := h.deps.Profiles.AnalyzePreferences(ctx, h.deps.UserID); analysis.Status == profile.StatusSuccess {
			view["preference_analysis"] = analysis.Data
		}
		h.deps.Memory.AddToolResult("get_user_info", "", view)
		return streamReply(ctx, h.deps)
	}

	return callAndReply(ctx, h.deps, "collect_user_info", map[string]any{
		"user_id": h.deps.UserID,
		"info":    info,
	})
}

// infoFromParams converts detector output into the profile patch shape.
func infoFromParams(params intent.Params) map[string]any {
	info := map[string]any{}
	if dest := paramString(params, "destination"); dest != "" {
		info["destination"] = dest
	}
	start := paramString(params, "start_date")
	end := paramString(params, "end_date")
	if start != "" && end != "" {
		info["travel_dates"] = map[string]any{"start": start, "end": end}
	}
	if budget, ok := params["budget"].(int); ok {
		info["budget"] = strconv.Itoa(budget) + "元"
	}
	if style := paramString(params, "travel_style"); style != "" {
		info["travel_style"] = style
	}
	if diets, ok := params["diet_restrictions"].([]string); ok && len(diets) > 0 {
		info["dietary_restrictions"] = diets
	}
	return info
}

// profileToMap flattens a profile into the generic map shape tool results
// use in conversation memory.
func profileToMap(p profile.Profile) map[string]any {
	raw, err := json.Marshal(p)
	if err != nil {
		return map[string]any{"user_id": p.UserID}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{"user_id": p.UserID}
	}
	return out
}
