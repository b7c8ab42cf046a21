package travel

import (
	"context"
	"fmt"

	"github.com/wayfarer-ai/wayfarer/internal/tool"
	"github.com/wayfarer-ai/wayfarer/pkg/types"
)

// RegisterTools registers the builtin travel tools with the registry. The
// registration order is the order the definitions are presented to the model.
func (s *Service) RegisterTools(reg *tool.Registry) error {
	bindings := []struct {
		name string
		desc string
		par  map[string]any
		fn   tool.Func
	}{
		{
			name: "get_current_temperature",
			desc: "获取指定地点当前的实时天气信息，包括温度、天气状况、湿度、风向和风力。",
			par: params(map[string]any{
				"location": prop("string", "需要查询天气的城市名称，例如 '北京', '上海市'。"),
				"unit":     enumProp([]string{UnitCelsius, UnitFahrenheit}, "温度单位，'celsius' (摄氏度) 或 'fahrenheit' (华氏度)。默认为 'celsius'。"),
			}, "location"),
			fn: func(ctx context.Context, args map[string]any) (map[string]any, error) {
				return s.CurrentWeather(ctx, argString(args, "location"), argString(args, "unit")), nil
			},
		},
		{
			name: "get_temperature_date",
			desc: "获取指定地点和日期的天气预报。可以查询特定日期 (YYYY-MM-DD)、'明天' 或 '未来X天'（例如 '未来3天'）的天气。",
			par: params(map[string]any{
				"location": prop("string", "需要查询天气预报的城市名称，例如 '上海', '杭州市'。"),
				"date":     prop("string", "需要查询的日期。可以是 'YYYY-MM-DD' 格式的具体日期，也可以是 '明天'，或 '未来X天' (例如 '未来2天', '未来两天')这样的描述。"),
				"unit":     enumProp([]string{UnitCelsius, UnitFahrenheit}, "温度单位，'celsius' (摄氏度) 或 'fahrenheit' (华氏度)。默认为 'celsius'。"),
			}, "location", "date"),
			fn: func(ctx context.Context, args map[string]any) (map[string]any, error) {
				return s.ForecastWeather(ctx, argString(args, "location"), argString(args, "date"), argString(args, "unit")), nil
			},
		},
		{
			name: "get_traffic_status",
			desc: "获取指定地点周围的实时交通状况，包括道路拥堵情况、畅通程度等信息。",
			par: params(map[string]any{
				"location": prop("string", "需要查询交通状况的地点名称，例如 '北京西站', '上海人民广场'。"),
				"radius":   prop("number", "查询半径，单位为公里，默认为2公里。"),
			}, "location"),
			fn: func(ctx context.Context, args map[string]any) (map[string]any, error) {
				return s.TrafficStatus(ctx, argString(args, "location"), argFloat(args, "radius")), nil
			},
		},
		{
			name: "get_route_traffic",
			desc: "获取两地之间的路线交通状况，包括距离、预计时间、拥堵情况等。",
			par: params(map[string]any{
				"origin":      prop("string", "起点名称，例如 '北京站', '上海虹桥机场'。"),
				"destination": prop("string", "终点名称，例如 '北京大学', '上海外滩'。"),
			}, "origin", "destination"),
			fn: func(ctx context.Context, args map[string]any) (map[string]any, error) {
				return s.RouteTraffic(ctx, argString(args, "origin"), argString(args, "destination")), nil
			},
		},
		{
			name: "collect_user_info",
			desc: "收集和更新用户的旅行相关信息，包括旅行日期、饮食限制、偏好、预算和旅行风格等。",
			par: params(map[string]any{
				"user_id": prop("string", "用户ID，用于标识不同用户。"),
				"info": map[string]any{
					"type":        "object",
					"description": "用户信息对象，包含各种旅行相关信息。",
					"properties": map[string]any{
						"destination": prop("string", "旅行目的地，例如 '北京', '杭州'。"),
						"travel_dates": map[string]any{
							"type":        "object",
							"description": "旅行日期范围。",
							"properties": map[string]any{
								"start": prop("string", "开始日期，格式为 'YYYY-MM-DD'。"),
								"end":   prop("string", "结束日期，格式为 'YYYY-MM-DD'。"),
							},
						},
						"dietary_restrictions": arrayProp("string", "饮食限制或禁忌，例如 '不吃猪肉', '素食', '过敏花生'。"),
						"preferences": map[string]any{
							"type":        "object",
							"description": "旅行偏好，按类别分组的列表，例如 {\"景点\": [\"历史景点\", \"自然风光\"]}。",
						},
						"budget":       prop("string", "旅行预算，例如 '5000元', '经济型', '高端'。"),
						"travel_style": prop("string", "旅行风格，例如 '休闲', '冒险', '文化'。"),
					},
				},
			}, "user_id", "info"),
			fn: func(ctx context.Context, args map[string]any) (map[string]any, error) {
				res := s.profiles.CollectInfo(ctx, argString(args, "user_id"), argMap(args, "info"))
				return resultMap(res.Status, res.Message, res.Data), nil
			},
		},
		{
			name: "generate_travel_itinerary",
			desc: "根据目的地、日期、天气和用户偏好生成智能旅行路线规划。",
			par: params(map[string]any{
				"destination":      prop("string", "旅行目的地，例如 '北京', '杭州'。"),
				"start_date":       prop("string", "开始日期，格式为 'YYYY-MM-DD'。"),
				"end_date":         prop("string", "结束日期，格式为 'YYYY-MM-DD'。"),
				"user_preferences": map[string]any{"type": "object", "description": "用户偏好信息，包含饮食限制、活动偏好等。"},
			}, "destination", "start_date", "end_date", "user_preferences"),
			fn: func(ctx context.Context, args map[string]any) (map[string]any, error) {
				return s.GenerateItinerary(ctx, argString(args, "destination"), argString(args, "start_date"), argString(args, "end_date"), argMap(args, "user_preferences")), nil
			},
		},
		{
			name: "generate_packing_list",
			desc: "根据目的地、旅行日期、天气情况和用户风格生成出行物品清单。",
			par: params(map[string]any{
				"destination":  prop("string", "旅行目的地，例如 '北京', '杭州'。"),
				"travel_dates": map[string]any{"type": "object", "description": "旅行日期范围，包含 start_date 和 end_date。"},
				"user_style":   prop("string", "用户旅行风格，例如 '休闲', '冒险', '商务'。"),
			}, "destination"),
			fn: func(ctx context.Context, args map[string]any) (map[string]any, error) {
				return s.GeneratePackingList(ctx, argString(args, "destination"), argMap(args, "travel_dates"), argString(args, "user_style")), nil
			},
		},
		{
			name: "find_nearby_facilities",
			desc: "查找附近的设施，如洗手间、休息点、商场、餐厅等。",
			par: params(map[string]any{
				"location":      prop("string", "当前位置的坐标（经度,纬度）或地点名称。"),
				"facility_type": prop("string", "设施类型，例如 '洗手间', '休息点', '商场', '餐厅', '医院'。"),
				"radius":        prop("integer", "搜索半径，单位为米，默认为1000米。"),
			}, "location", "facility_type"),
			fn: func(ctx context.Context, args map[string]any) (map[string]any, error) {
				return s.NearbyFacilities(ctx, argString(args, "location"), argString(args, "facility_type"), int(argFloat(args, "radius"))), nil
			},
		},
		{
			name: "get_scenic_spot_info",
			desc: "获取景点的详细信息和讲解内容。",
			par: params(map[string]any{
				"location":     prop("string", "景点名称，例如 '故宫', '西湖'。"),
				"detail_level": enumProp([]string{"brief", "standard", "detailed"}, "讲解详细程度，默认为 'standard'。"),
			}, "location"),
			fn: func(ctx context.Context, args map[string]any) (map[string]any, error) {
				return s.ScenicSpotInfo(ctx, argString(args, "location"), argString(args, "detail_level")), nil
			},
		},
		{
			name: "analyze_travel_photo",
			desc: "分析旅行照片内容，识别照片中的景点、物体、场景和氛围等。",
			par: params(map[string]any{
				"image_data": prop("string", "图片数据，Base64编码或图片URL。"),
			}, "image_data"),
			fn: func(ctx context.Context, args map[string]any) (map[string]any, error) {
				return s.AnalyzeTravelPhoto(ctx, argString(args, "image_data")), nil
			},
		},
		{
			name: "generate_social_media_post",
			desc: "根据旅行信息和照片分析生成社交媒体文案。",
			par: params(map[string]any{
				"trip_info":       map[string]any{"type": "object", "description": "旅行信息，包含目的地、亮点等。"},
				"photos_analysis": arrayProp("object", "照片分析结果列表。"),
				"platform":        prop("string", "目标平台，例如 '微信', '微博', 'instagram'。默认为 '通用'。"),
				"style":           prop("string", "文案风格，例如 '旅行', '文艺', '简洁'。默认为 '旅行'。"),
				"keywords":        arrayProp("string", "希望出现在文案中的关键词。"),
			}, "trip_info"),
			fn: func(ctx context.Context, args map[string]any) (map[string]any, error) {
				platform := argString(args, "platform")
				if platform == "" {
					platform = "通用"
				}
				style := argString(args, "style")
				if style == "" {
					style = "旅行"
				}
				return s.GenerateSocialPost(argMap(args, "trip_info"), mapSlice(args["photos_analysis"]), platform, style, stringSlice(args["keywords"])), nil
			},
		},
	}

	for _, b := range bindings {
		def := types.ToolDefinition{
			Name:        b.name,
			Description: b.desc,
			Parameters:  b.par,
		}
		if err := reg.Register(def, b.fn); err != nil {
			return fmt.Errorf("travel: register %s: %w", b.name, err)
		}
	}
	return nil
}

func params(props map[string]any, required ...string) map[string]any {
	p := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		p["required"] = required
	}
	return p
}

func prop(typ, desc string) map[string]any {
	return map[string]any{"type": typ, "description": desc}
}

func enumProp(values []string, desc string) map[string]any {
	return map[string]any{"type": "string", "enum": values, "description": desc}
}

func arrayProp(itemType, desc string) map[string]any {
	return map[string]any{
		"type":        "array",
		"description": desc,
		"items":       map[string]any{"type": itemType},
	}
}

func resultMap(status, message string, data map[string]any) map[string]any {
	out := map[string]any{"status": status, "message": message}
	if data != nil {
		out["data"] = data
	}
	return out
}

func argString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func argFloat(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func argMap(args map[string]any, key string) map[string]any {
	m, _ := args[key].(map[string]any)
	return m
}

func mapSlice(v any) []map[string]any {
	switch t := v.(type) {
	case []map[string]any:
		return t
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}
