package travel

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	coldThreshold = 10.0
	hotThreshold  = 25.0
	wetThreshold  = 80.0
)

// basePackingItems go into every packing list regardless of weather.
var basePackingItems = []string{"身份证件", "手机充电器", "常用药品"}

// stylePackingItems are added on top of the weather-driven items.
var stylePackingItems = map[string][]string{
	"商务": {"正装", "笔记本电脑"},
	"冒险": {"登山鞋", "防水外套", "头灯"},
	"家庭": {"儿童用品", "湿巾"},
	"奢华": {"晚宴着装"},
	"经济": {"水壶", "折叠背包"},
}

// styleActivities suggests activities per travel style.
var styleActivities = map[string][]string{
	"文化": {"博物馆参观", "古迹游览", "民俗体验"},
	"自然": {"徒步观景", "公园漫步", "日出日落观赏"},
	"美食": {"本地小吃街", "特色餐厅探店"},
	"冒险": {"户外徒步", "攀岩体验"},
	"休闲": {"城市漫步", "咖啡馆小憩", "夜景观赏"},
	"购物": {"商圈购物", "本地市集"},
	"家庭": {"亲子乐园", "动物园参观"},
}

// GenerateItinerary builds a day-by-day plan for a destination, folding in
// the weather forecast for the start date and the traveller's preferences.
func (s *Service) GenerateItinerary(ctx context.Context, destination, startDate, endDate string, prefs map[string]any) map[string]any {
	if destination == "" {
		return errResult("目的地不能为空")
	}
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return errResult("Invalid date format: %s", startDate)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return errResult("Invalid date format: %s", endDate)
	}
	if end.Before(start) {
		return errResult("结束日期不能早于开始日期")
	}

	weather := s.ForecastWeather(ctx, destination, startDate, UnitCelsius)

	style, _ := prefs["style"].(string)
	diets := stringSlice(prefs["diet_restrictions"])

	days := int(end.Sub(start).Hours()/24) + 1
	dailyPlans := make([]map[string]any, 0, days)
	for i := 0; i < days; i++ {
		dailyPlans = append(dailyPlans, dailyPlan(start.AddDate(0, 0, i), i, style))
	}

	return map[string]any{
		"destination": destination,
		"dates": map[string]any{
			"start": startDate,
			"end":   endDate,
		},
		"weather_forecast": weather,
		"daily_plans":      dailyPlans,
		"recommendations": map[string]any{
			"clothing":   clothingForWeather(weather),
			"activities": activitiesForStyle(style),
			"dining":     diningForDiets(destination, diets),
		},
	}
}

func dailyPlan(date time.Time, index int, style string) map[string]any {
	morning := "市区景点游览"
	if index == 0 {
		morning = "抵达并入住酒店"
	}
	afternoon := "自由活动"
	if acts, ok := styleActivities[style]; ok {
		afternoon = acts[index%len(acts)]
	}
	return map[string]any{
		"date":      date.Format(dateLayout),
		"morning":   morning,
		"afternoon": afternoon,
		"evening":   "品尝当地美食",
	}
}

// clothingForWeather derives clothing advice from a forecast result.
func clothingForWeather(weather map[string]any) []string {
	items := []string{"舒适的步行鞋"}
	day, hasDay := toFloat(weather["day_temperature"])
	night, hasNight := toFloat(weather["night_temperature"])
	if !hasDay && !hasNight {
		return append(items, "根据天气预报增减衣物")
	}
	low := day
	if hasNight && (night < low || !hasDay) {
		low = night
	}
	high := day
	if hasNight && night > high {
		high = night
	}
	if low < coldThreshold {
		items = append(items, "厚外套", "保暖内衣")
	}
	if high > hotThreshold {
		items = append(items, "防晒霜", "太阳镜")
	}
	if dw, _ := weather["day_weather"].(string); strings.Contains(dw, "雨") {
		items = append(items, "雨伞")
	}
	return items
}

func activitiesForStyle(style string) []string {
	if acts, ok := styleActivities[style]; ok {
		return acts
	}
	return []string{"经典景点游览", "本地文化体验"}
}

func diningForDiets(destination string, diets []string) []string {
	dining := []string{destination + "特色菜"}
	for _, d := range diets {
		switch d {
		case "素食":
			dining = append(dining, "素食餐厅")
		case "清真":
			dining = append(dining, "清真餐厅")
		case "无辣":
			dining = append(dining, "清淡口味餐厅")
		case "无海鲜":
			dining = append(dining, "避开海鲜类菜品")
		case "无坚果":
			dining = append(dining, "点餐时确认无坚果")
		}
	}
	return dining
}

// GeneratePackingList builds a packing list from the destination's forecast
// and the trip style. The dates map carries start_date and end_date.
func (s *Service) GeneratePackingList(ctx context.Context, destination string, dates map[string]any, style string) map[string]any {
	if destination == "" {
		return errResult("目的地不能为空")
	}
	startDate, _ := dates["start_date"].(string)
	if startDate == "" {
		startDate = s.now().AddDate(0, 0, 1).Format(dateLayout)
	}

	items := make([]string, 0, 8)
	items = append(items, basePackingItems...)

	weather := s.ForecastWeather(ctx, destination, startDate, UnitCelsius)
	if day, ok := toFloat(weather["day_temperature"]); ok {
		night, hasNight := toFloat(weather["night_temperature"])
		low := day
		if hasNight && night < low {
			low = night
		}
		if low < coldThreshold {
			items = append(items, "厚外套", "保暖内衣", "手套")
		}
		if day > hotThreshold {
			items = append(items, "防晒霜", "太阳镜", "轻薄衣物")
		}
	}
	if hum, ok := toFloat(weather["humidity"]); ok && hum > wetThreshold {
		items = append(items, "雨伞")
	}
	if dw, _ := weather["day_weather"].(string); strings.Contains(dw, "雨") && !contains(items, "雨伞") {
		items = append(items, "雨伞")
	}
	if extra, ok := stylePackingItems[style]; ok {
		items = append(items, extra...)
	}

	result := map[string]any{
		"destination": destination,
		"style":       style,
		"items":       items,
	}
	if startDate != "" {
		result["travel_dates"] = dates
	}
	if werr, ok := weather["error"].(string); ok {
		result["weather_note"] = fmt.Sprintf("天气信息不可用: %s", werr)
	}
	return result
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		var f float64
		if _, err := fmt.Sscanf(t, "%f", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}

func stringSlice(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
