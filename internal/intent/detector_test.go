package intent_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/wayfarer-ai/wayfarer/internal/intent"
)

// fixedNow pins relative date extraction to 2026-05-01.
func fixedNow() time.Time {
	return time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
}

func TestWeatherDetector(t *testing.T) {
	t.Parallel()
	d := intent.NewWeatherDetector()

	tests := []struct {
		name     string
		text     string
		match    bool
		location string
		unit     string
	}{
		{"chinese query", "在昆明的天气怎么样", true, "昆明", "celsius"},
		{"condition form", "天气情况如何，在昆明", true, "昆明", "celsius"},
		{"fahrenheit unit", "在大理的天气怎么样，用华氏度", true, "大理", "fahrenheit"},
		{"today form", "上海今天的天气", true, "上海", "celsius"},
		{"no weather intent", "帮我找个餐厅", false, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := d.Detect(tt.text); got != tt.match {
				t.Fatalf("Detect(%q) = %v, want %v", tt.text, got, tt.match)
			}
			if !tt.match {
				return
			}
			params := d.ExtractParams(tt.text)
			if got := params["location"]; got != tt.location {
				t.Errorf("location = %v, want %q", got, tt.location)
			}
			if got := params["unit"]; got != tt.unit {
				t.Errorf("unit = %v, want %q", got, tt.unit)
			}
		})
	}
}

func TestTrafficDetectorRadius(t *testing.T) {
	t.Parallel()
	d := intent.NewTrafficDetector()

	text := "路况怎么样，在翠湖公园"
	if !d.Detect(text) {
		t.Fatal("expected traffic intent")
	}

	params := d.ExtractParams(text)
	if got := params["location"]; got != "翠湖公园" {
		t.Errorf("location = %v, want 翠湖公园", got)
	}
	if got := params["radius"]; got != 2.0 {
		t.Errorf("default radius = %v, want 2.0", got)
	}

	params = d.ExtractParams("路况怎么样，在翠湖公园，范围5公里")
	if got := params["radius"]; got != 5.0 {
		t.Errorf("explicit radius = %v, want 5.0", got)
	}
}

func TestRouteDetector(t *testing.T) {
	t.Parallel()
	d := intent.NewRouteDetector()

	tests := []struct {
		name        string
		text        string
		origin      string
		destination string
	}{
		{"how to get there", "从昆明站到滇池怎么走", "昆明站", "滇池"},
		{"route form", "昆明站到滇池的路线", "昆明站", "滇池"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if !d.Detect(tt.text) {
				t.Fatalf("Detect(%q) = false, want true", tt.text)
			}
			params := d.ExtractParams(tt.text)
			if got := params["origin"]; got != tt.origin {
				t.Errorf("origin = %v, want %q", got, tt.origin)
			}
			if got := params["destination"]; got != tt.destination {
				t.Errorf("destination = %v, want %q", got, tt.destination)
			}
		})
	}

	t.Run("destination only yields no params", func(t *testing.T) {
		t.Parallel()
		text := "到滇池怎么走"
		if !d.Detect(text) {
			t.Fatalf("Detect(%q) = false, want true", text)
		}
		if params := d.ExtractParams(text); len(params) != 0 {
			t.Errorf("ExtractParams(%q) = %v, want empty", text, params)
		}
	})
}

func TestFacilityDetector(t *testing.T) {
	t.Parallel()
	d := intent.NewFacilityDetector()

	tests := []struct {
		name     string
		text     string
		category string
		location string
		radius   int
	}{
		{"toilet alias", "附近有厕所吗", "洗手间", "当前位置", 1000},
		{"nearest hospital", "最近的医院在哪", "医院", "当前位置", 1000},
		{"restaurant with location", "在翠湖公园附近有餐厅吗", "餐厅", "翠湖公园", 1000},
		{"km radius converted", "附近的商场，范围2公里", "商场", "当前位置", 2000},
		{"english", "where is the closest toilet", "洗手间", "当前位置", 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if !d.Detect(tt.text) {
				t.Fatalf("Detect(%q) = false, want true", tt.text)
			}
			params := d.ExtractParams(tt.text)
			if got := params["facility_type"]; got != tt.category {
				t.Errorf("facility_type = %v, want %q", got, tt.category)
			}
			if got := params["location"]; got != tt.location {
				t.Errorf("location = %v, want %q", got, tt.location)
			}
			if got := params["radius"]; got != tt.radius {
				t.Errorf("radius = %v, want %d", got, tt.radius)
			}
		})
	}
}

func TestFacilityDetectorNoIntent(t *testing.T) {
	t.Parallel()
	d := intent.NewFacilityDetector()
	if d.Detect("今天心情不错") {
		t.Error("expected no facility intent")
	}
}

func TestItineraryDetectorDates(t *testing.T) {
	t.Parallel()
	d := intent.NewItineraryDetector(fixedNow, 0)

	tests := []struct {
		name  string
		text  string
		start string
		end   string
	}{
		{"explicit range", "帮我规划昆明的行程，2026年6月1日至2026年6月5日", "2026-6-1", "2026-6-5"},
		{"trip length", "帮我规划一下去云南玩5天的行程", "2026-05-01", "2026-05-05"},
		{"default three days", "帮我规划大理的行程", "2026-05-01", "2026-05-03"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if !d.Detect(tt.text) {
				t.Fatalf("Detect(%q) = false, want true", tt.text)
			}
			params := d.ExtractParams(tt.text)
			if got := params["start_date"]; got != tt.start {
				t.Errorf("start_date = %v, want %q", got, tt.start)
			}
			if got := params["end_date"]; got != tt.end {
				t.Errorf("end_date = %v, want %q", got, tt.end)
			}
		})
	}
}

func TestItineraryDetectorDestination(t *testing.T) {
	t.Parallel()
	d := intent.NewItineraryDetector(fixedNow, 0)

	params := d.ExtractParams("帮我规划一下去云南玩5天的行程")
	if got := params["destination"]; got != "云南" {
		t.Errorf("destination = %v, want 云南", got)
	}
}

func TestItineraryDetectorPreferences(t *testing.T) {
	t.Parallel()
	d := intent.NewItineraryDetector(fixedNow, 0)

	params := d.ExtractParams("帮我规划去丽江的美食行程，预算3000元，我是素食者")
	prefs, ok := params["user_preferences"].(intent.Params)
	if !ok {
		t.Fatalf("user_preferences missing: %v", params)
	}
	if got := prefs["budget"]; got != 3000 {
		t.Errorf("budget = %v, want 3000", got)
	}
	if got := prefs["style"]; got != "美食" {
		t.Errorf("style = %v, want 美食", got)
	}
	diets, _ := prefs["diet_restrictions"].([]string)
	if !reflect.DeepEqual(diets, []string{"素食"}) {
		t.Errorf("diet_restrictions = %v, want [素食]", diets)
	}
}

func TestPackingDetector(t *testing.T) {
	t.Parallel()
	d := intent.NewPackingDetector(fixedNow, 0)

	text := "去西藏需要带什么东西"
	if !d.Detect(text) {
		t.Fatal("expected packing intent")
	}
	params := d.ExtractParams(text)
	if got := params["destination"]; got != "西藏" {
		t.Errorf("destination = %v, want 西藏", got)
	}
	if got := params["travel_style"]; got != "休闲" {
		t.Errorf("default travel_style = %v, want 休闲", got)
	}
	dates, ok := params["travel_dates"].(intent.Params)
	if !ok {
		t.Fatalf("travel_dates missing: %v", params)
	}
	if got := dates["start_date"]; got != "2026-05-01" {
		t.Errorf("start_date = %v, want 2026-05-01", got)
	}
	if got := dates["end_date"]; got != "2026-05-03" {
		t.Errorf("end_date = %v, want 2026-05-03", got)
	}

	params = d.ExtractParams("商务出差旅行清单")
	if got := params["travel_style"]; got != "商务" {
		t.Errorf("travel_style = %v, want 商务", got)
	}
}

func TestSocialDetector(t *testing.T) {
	t.Parallel()
	d := intent.NewSocialDetector()

	text := "帮我写一条朋友圈文案，关键词：洱海、日落、骑行"
	if !d.Detect(text) {
		t.Fatal("expected social media intent")
	}
	params := d.ExtractParams(text)
	if got := params["platform"]; got != "微信" {
		t.Errorf("platform = %v, want 微信", got)
	}
	if got := params["style"]; got != "旅行" {
		t.Errorf("default style = %v, want 旅行", got)
	}
	keywords, _ := params["keywords"].([]string)
	if !reflect.DeepEqual(keywords, []string{"洱海", "日落", "骑行"}) {
		t.Errorf("keywords = %v, want [洱海 日落 骑行]", keywords)
	}

	params = d.ExtractParams("帮我写一条微博文案，要幽默一点，是在洱海边拍的")
	if got := params["platform"]; got != "微博" {
		t.Errorf("platform = %v, want 微博", got)
	}
	if got := params["style"]; got != "幽默" {
		t.Errorf("style = %v, want 幽默", got)
	}
	if got := params["location"]; got != "洱海边" {
		t.Errorf("location = %v, want 洱海边", got)
	}
}

func TestUserInfoDetector(t *testing.T) {
	t.Parallel()
	d := intent.NewUserInfoDetector()

	text := "我想去大理旅游，预算3000元，喜欢自然风景，饮食偏好素食"
	if !d.Detect(text) {
		t.Fatal("expected user info intent")
	}
	params := d.ExtractParams(text)
	if got := params["destination"]; got != "大理" {
		t.Errorf("destination = %v, want 大理", got)
	}
	if got := params["budget"]; got != 3000 {
		t.Errorf("budget = %v, want 3000", got)
	}
	if got := params["travel_style"]; got != "自然" {
		t.Errorf("travel_style = %v, want 自然", got)
	}
	diets, _ := params["diet_restrictions"].([]string)
	if !reflect.DeepEqual(diets, []string{"素食"}) {
		t.Errorf("diet_restrictions = %v, want [素食]", diets)
	}
	if _, ok := params["start_date"]; ok {
		t.Error("start_date should only be set when the user states dates")
	}

	if !d.Detect("更新我的旅行偏好") {
		t.Error("expected update intent to match")
	}
}

func TestScenicDetector(t *testing.T) {
	t.Parallel()
	d := intent.NewScenicDetector()

	tests := []struct {
		name   string
		text   string
		spot   string
		detail string
	}{
		{"named spot", "介绍一下石林这个景点", "石林", "standard"},
		{"detailed request", "详细介绍一下崇圣寺三塔这个景点", "崇圣寺三塔", "detailed"},
		{"brief request", "简单介绍一下洱海这个景区", "洱海", "brief"},
		{"current position", "这是什么景点", "当前位置", "standard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if !d.Detect(tt.text) {
				t.Fatalf("Detect(%q) = false, want true", tt.text)
			}
			params := d.ExtractParams(tt.text)
			if got := params["spot_name"]; got != tt.spot {
				t.Errorf("spot_name = %v, want %q", got, tt.spot)
			}
			if got := params["detail_level"]; got != tt.detail {
				t.Errorf("detail_level = %v, want %q", got, tt.detail)
			}
		})
	}
}

func TestRegistryFirst(t *testing.T) {
	t.Parallel()
	r := intent.NewRegistry(intent.WithClock(fixedNow))

	m := r.First("在昆明的天气怎么样")
	if m == nil || m.Intent != "weather" {
		t.Fatalf("First = %+v, want weather match", m)
	}
	if got := m.Params["location"]; got != "昆明" {
		t.Errorf("location = %v, want 昆明", got)
	}

	if m := r.First("随便聊聊"); m != nil {
		t.Errorf("First on small talk = %+v, want nil", m)
	}
}

func TestRegistryAll(t *testing.T) {
	t.Parallel()
	r := intent.NewRegistry(intent.WithClock(fixedNow))

	matches := r.All("帮我规划去云南玩5天的行程，另外旅行清单也准备一下")
	seen := map[string]bool{}
	for _, m := range matches {
		seen[m.Intent] = true
	}
	for _, want := range []string{"itinerary", "packing"} {
		if !seen[want] {
			t.Errorf("expected %s in matches, got %v", want, matches)
		}
	}
}

func TestRegistryGet(t *testing.T) {
	t.Parallel()
	r := intent.NewRegistry()

	if d := r.Get("weather"); d == nil || d.Name() != "weather" {
		t.Errorf("Get(weather) = %v", d)
	}
	if d := r.Get("unknown"); d != nil {
		t.Errorf("Get(unknown) = %v, want nil", d)
	}
}
