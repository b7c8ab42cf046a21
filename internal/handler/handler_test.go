package handler

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/wayfarer-ai/wayfarer/internal/conversation"
	"github.com/wayfarer-ai/wayfarer/internal/intent"
	"github.com/wayfarer-ai/wayfarer/internal/profile"
	"github.com/wayfarer-ai/wayfarer/internal/tool"
	"github.com/wayfarer-ai/wayfarer/pkg/provider/llm"
	"github.com/wayfarer-ai/wayfarer/pkg/provider/llm/mock"
	"github.com/wayfarer-ai/wayfarer/pkg/types"
)

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

// capturedCall records one fake tool invocation.
type capturedCall struct {
	name string
	args map[string]any
}

// newTestEnv builds handler deps over a registry of fake tools that capture
// their arguments and return canned results.
func newTestEnv(t *testing.T, toolNames ...string) (Deps, *intent.Registry, *[]capturedCall) {
	t.Helper()
	calls := &[]capturedCall{}
	reg := tool.NewRegistry()
	for _, name := range toolNames {
		name := name
		err := reg.Register(types.ToolDefinition{Name: name, Description: name}, func(_ context.Context, args map[string]any) (map[string]any, error) {
			*calls = append(*calls, capturedCall{name: name, args: args})
			return map[string]any{"ok": true, "tool": name}, nil
		})
		if err != nil {
			t.Fatalf("Register %s: %v", name, err)
		}
	}

	deps := Deps{
		Provider: &mock.Provider{StreamChunks: []llm.Chunk{
			{Text: "好的，"},
			{Text: "这是结果。", FinishReason: "stop"},
		}},
		Memory:   conversation.New("你是timo，一个旅行助手。"),
		Caller:   tool.NewCaller(reg, nil, nil),
		Profiles: profile.NewManager(profile.NewMemoryStore(), nil).WithClock(func() time.Time { return fixedNow }),
		UserID:   "user-1",
	}
	intents := intent.NewRegistry(intent.WithClock(func() time.Time { return fixedNow }))
	return deps, intents, calls
}

func TestWeatherHandler(t *testing.T) {
	deps, intents, calls := newTestEnv(t, "get_current_temperature")
	h := NewWeatherHandler(deps, intents.Get("weather"))

	reply, err := h.Handle(context.Background(), "在昆明的天气怎么样", "")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if reply != "好的，这是结果。" {
		t.Errorf("reply = %q", reply)
	}
	if len(*calls) != 1 {
		t.Fatalf("tool calls = %d, want 1", len(*calls))
	}
	if got := (*calls)[0].args["location"]; got != "昆明" {
		t.Errorf("location = %v", got)
	}

	// Tool result went into memory before the model was asked.
	msgs := deps.Memory.Messages()
	last := msgs[len(msgs)-1]
	if last.Role != types.RoleTool || last.ToolName != "get_current_temperature" {
		t.Errorf("last message = %+v", last)
	}
}

func TestWeatherHandlerClarifiesWithoutLocation(t *testing.T) {
	deps, intents, calls := newTestEnv(t, "get_current_temperature")
	h := NewWeatherHandler(deps, intents.Get("weather"))

	reply, err := h.Handle(context.Background(), "天气", "")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if reply != weatherClarification {
		t.Errorf("reply = %q", reply)
	}
	if len(*calls) != 0 {
		t.Errorf("tool calls = %d, want 0", len(*calls))
	}
}

func TestRouteHandler(t *testing.T) {
	deps, intents, calls := newTestEnv(t, "get_route_traffic")
	h := NewRouteHandler(deps, intents.Get("route"))

	if _, err := h.Handle(context.Background(), "从昆明站到滇池怎么走", ""); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(*calls) != 1 {
		t.Fatalf("tool calls = %d", len(*calls))
	}
	args := (*calls)[0].args
	if args["origin"] != "昆明站" || args["destination"] != "滇池" {
		t.Errorf("args = %v", args)
	}
}

func TestItineraryHandlerEnrichesFromProfile(t *testing.T) {
	deps, intents, calls := newTestEnv(t, "generate_travel_itinerary")

	res := deps.Profiles.CollectInfo(context.Background(), "user-1", map[string]any{
		"destination":          "昆明",
		"travel_style":         "文化",
		"dietary_restrictions": []string{"素食"},
	})
	if res.Status != "success" {
		t.Fatalf("CollectInfo: %+v", res)
	}

	h := NewItineraryHandler(deps, intents.Get("itinerary"))
	if _, err := h.Handle(context.Background(), "帮我规划昆明的行程", ""); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(*calls) != 1 {
		t.Fatalf("tool calls = %d", len(*calls))
	}
	prefs, _ := (*calls)[0].args["user_preferences"].(map[string]any)
	if prefs["style"] != "文化" {
		t.Errorf("style = %v", prefs["style"])
	}
	diets, _ := prefs["diet_restrictions"].([]string)
	if len(diets) != 1 || diets[0] != "素食" {
		t.Errorf("diet_restrictions = %v", diets)
	}
}

func TestItineraryHandlerUserStyleWins(t *testing.T) {
	deps, intents, calls := newTestEnv(t, "generate_travel_itinerary")

	deps.Profiles.CollectInfo(context.Background(), "user-1", map[string]any{
		"travel_style": "文化",
	})

	h := NewItineraryHandler(deps, intents.Get("itinerary"))
	if _, err := h.Handle(context.Background(), "帮我规划大理的行程，想看自然风景", ""); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	prefs, _ := (*calls)[0].args["user_preferences"].(map[string]any)
	if prefs["style"] != "自然" {
		t.Errorf("style = %v, want 自然", prefs["style"])
	}
}

func TestUserInfoHandlerQueryWithoutProfile(t *testing.T) {
	deps, intents, calls := newTestEnv(t, "collect_user_info")
	h := NewUserInfoHandler(deps, intents.Get("user_info"))

	reply, err := h.Handle(context.Background(), "查看我的旅行偏好", "")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if reply != noProfileMessage {
		t.Errorf("reply = %q", reply)
	}
	if len(*calls) != 0 {
		t.Errorf("tool calls = %d", len(*calls))
	}
}

func TestUserInfoHandlerQueryIncludesPreferenceAnalysis(t *testing.T) {
	deps, intents, _ := newTestEnv(t, "collect_user_info")
	ctx := context.Background()

	deps.Profiles.CollectInfo(ctx, "user-1", map[string]any{"destination": "昆明"})
	res := deps.Profiles.CollectFeedback(ctx, "user-1", profile.Feedback{Rating: 5, Item: "滇池"})
	if res.Status != profile.StatusSuccess {
		t.Fatalf("CollectFeedback: %+v", res)
	}

	h := NewUserInfoHandler(deps, intents.Get("user_info"))
	if _, err := h.Handle(ctx, "查看我的旅行偏好", ""); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	msgs := deps.Memory.Messages()
	var toolMsg types.Message
	for _, m := range msgs {
		if m.Role == types.RoleTool && m.ToolName == "get_user_info" {
			toolMsg = m
		}
	}
	if toolMsg.ToolName == "" {
		t.Fatal("no get_user_info tool message in memory")
	}
	if !strings.Contains(toolMsg.Content, "preference_analysis") ||
		!strings.Contains(toolMsg.Content, "滇池") {
		t.Errorf("tool message missing analysis: %s", toolMsg.Content)
	}
}

func TestItineraryHandlerRecordsTripHistoryAndStyle(t *testing.T) {
	deps, intents, calls := newTestEnv(t, "generate_travel_itinerary")
	ctx := context.Background()

	h := NewItineraryHandler(deps, intents.Get("itinerary"))
	if _, err := h.Handle(ctx, "帮我规划大理的行程，想看自然风景", ""); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(*calls) != 1 {
		t.Fatalf("tool calls = %d", len(*calls))
	}

	p, ok, err := deps.Profiles.GetProfile(ctx, "user-1")
	if err != nil || !ok {
		t.Fatalf("GetProfile: ok=%v err=%v", ok, err)
	}
	if len(p.TravelHistory) != 1 || p.TravelHistory[0].Destination != "大理" {
		t.Errorf("TravelHistory = %+v", p.TravelHistory)
	}
	styles := p.BasicInfo.Preferences["styles"]
	if len(styles) != 1 || styles[0] != "自然" {
		t.Errorf("styles = %v", styles)
	}
}

func TestUserInfoHandlerUpdate(t *testing.T) {
	deps, intents, calls := newTestEnv(t, "collect_user_info")
	h := NewUserInfoHandler(deps, intents.Get("user_info"))

	if _, err := h.Handle(context.Background(), "我想去大理旅游，预算3000元", ""); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(*calls) != 1 {
		t.Fatalf("tool calls = %d", len(*calls))
	}
	args := (*calls)[0].args
	if args["user_id"] != "user-1" {
		t.Errorf("user_id = %v", args["user_id"])
	}
	info, _ := args["info"].(map[string]any)
	if info["destination"] != "大理" {
		t.Errorf("destination = %v", info["destination"])
	}
	if info["budget"] != "3000元" {
		t.Errorf("budget = %v", info["budget"])
	}
}

func TestImageHandlerRequiresImage(t *testing.T) {
	deps, _, calls := newTestEnv(t, "analyze_travel_photo")
	h := NewImageHandler(deps)

	reply, err := h.Handle(context.Background(), "帮我分析这张照片", "")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if reply != noImageMessage {
		t.Errorf("reply = %q", reply)
	}
	if len(*calls) != 0 {
		t.Errorf("tool calls = %d", len(*calls))
	}
}

func TestImageHandlerChainsSocialPost(t *testing.T) {
	deps, _, calls := newTestEnv(t, "analyze_travel_photo", "generate_social_media_post")
	h := NewImageHandler(deps)

	if _, err := h.Handle(context.Background(), "分析这张照片，发个朋友圈", "aGVsbG8="); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(*calls) != 2 {
		t.Fatalf("tool calls = %d, want 2", len(*calls))
	}
	if (*calls)[0].name != "analyze_travel_photo" || (*calls)[1].name != "generate_social_media_post" {
		t.Errorf("call order = %v, %v", (*calls)[0].name, (*calls)[1].name)
	}
	analyses, _ := (*calls)[1].args["photos_analysis"].([]map[string]any)
	if len(analyses) != 1 {
		t.Errorf("photos_analysis = %v", analyses)
	}
}

func TestFactoryImagePriority(t *testing.T) {
	deps, intents, _ := newTestEnv(t)
	f := NewFactory(deps, intents)

	h, route := f.Pick("分析一下在昆明的天气怎么样", "aGVsbG8=")
	if route != "image_analysis" {
		t.Errorf("route = %q, want image_analysis", route)
	}
	if _, ok := h.(*ImageHandler); !ok {
		t.Errorf("handler = %T", h)
	}
}

func TestFactoryRoutesByIntent(t *testing.T) {
	deps, intents, _ := newTestEnv(t)
	f := NewFactory(deps, intents)

	tests := []struct {
		text string
		want string
	}{
		{"在昆明的天气怎么样", "weather"},
		{"路况怎么样，在翠湖公园", "traffic"},
		{"从昆明站到滇池怎么走", "route"},
		{"附近有洗手间吗", "nearby_facility"},
		{"去西藏需要带什么东西", "packing"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			h, route := f.Pick(tt.text, "")
			if route != tt.want {
				t.Errorf("route = %q, want %q", route, tt.want)
			}
			if h == nil {
				t.Error("handler is nil")
			}
		})
	}
}

func TestFactoryNoMatch(t *testing.T) {
	deps, intents, _ := newTestEnv(t)
	f := NewFactory(deps, intents)

	h, route := f.Pick("你好呀", "")
	if h != nil || route != "" {
		t.Errorf("Pick = %T, %q, want nil handler", h, route)
	}
}
