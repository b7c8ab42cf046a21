package travel

import (
	"context"
	"fmt"
	"strconv"

	"github.com/wayfarer-ai/wayfarer/pkg/amap"
)

const (
	maxRoadDetails    = 5
	maxCongestedSteps = 3

	congestedThreshold = 0.6
	slowThreshold      = 0.3
)

// roadStatusNames maps the provider status codes to display names.
var roadStatusNames = map[string]string{
	"0": "未知",
	"1": "畅通",
	"2": "缓行",
	"3": "拥堵",
}

// TrafficStatus summarises road conditions within radiusKm of a place.
func (s *Service) TrafficStatus(ctx context.Context, location string, radiusKm float64) map[string]any {
	if radiusKm <= 0 {
		radiusKm = 2
	}
	geo, err := s.geocode(ctx, location)
	if err != nil {
		if err == amap.ErrNotFound {
			return errResult("Location '%s' not found. Please provide a valid city or district name.", location)
		}
		return errResult("交通服务暂时不可用: %v", err)
	}

	rect := amap.RectangleAround(geo.Location, radiusKm)
	var info *amap.TrafficInfo
	err = s.mapsBreaker.Execute(func() error {
		var err error
		info, err = s.maps.TrafficStatus(ctx, rect)
		return err
	})
	if err != nil {
		return errResult("交通服务暂时不可用: %v", err)
	}

	if len(info.Roads) == 0 {
		return map[string]any{
			"location": location,
			"status":   "无数据",
			"message":  "该区域没有交通状况数据",
		}
	}

	var smooth, slow, congested, unknown int
	details := make([]map[string]any, 0, maxRoadDetails)
	for _, road := range info.Roads {
		switch road.Status {
		case "1":
			smooth++
		case "2":
			slow++
		case "3":
			congested++
		default:
			unknown++
		}
		if len(details) < maxRoadDetails {
			details = append(details, map[string]any{
				"name":      road.Name,
				"status":    roadStatusNames[road.Status],
				"direction": road.Direction,
				"speed":     road.Speed,
			})
		}
	}

	total := len(info.Roads)
	ratio := (float64(congested) + 0.5*float64(slow)) / float64(total)
	status := "畅通"
	switch {
	case ratio >= congestedThreshold:
		status = "拥堵"
	case ratio >= slowThreshold:
		status = "缓行"
	}

	return map[string]any{
		"location":         location,
		"status":           status,
		"congestion_ratio": round1(ratio*100) / 100,
		"road_count":       total,
		"smooth_roads":     smooth,
		"slow_roads":       slow,
		"congested_roads":  congested,
		"unknown_roads":    unknown,
		"road_details":     details,
	}
}

// RouteTraffic plans a driving route and reports its congestion.
func (s *Service) RouteTraffic(ctx context.Context, origin, destination string) map[string]any {
	originGeo, err := s.geocode(ctx, origin)
	if err != nil {
		if err == amap.ErrNotFound {
			return errResult("Location '%s' not found. Please provide a valid city or district name.", origin)
		}
		return errResult("路线服务暂时不可用: %v", err)
	}
	destGeo, err := s.geocode(ctx, destination)
	if err != nil {
		if err == amap.ErrNotFound {
			return errResult("Location '%s' not found. Please provide a valid city or district name.", destination)
		}
		return errResult("路线服务暂时不可用: %v", err)
	}

	var paths []amap.RoutePath
	err = s.mapsBreaker.Execute(func() error {
		var err error
		paths, err = s.maps.DrivingRoute(ctx, originGeo.Location, destGeo.Location)
		return err
	})
	if err != nil {
		return errResult("路线服务暂时不可用: %v", err)
	}
	if len(paths) == 0 {
		return errResult("未找到从%s到%s的路线", origin, destination)
	}

	path := paths[0]
	distance, _ := strconv.Atoi(path.Distance)
	duration, _ := strconv.Atoi(path.Duration)

	congestedSteps := make([]map[string]any, 0, maxCongestedSteps)
	congestedCount := 0
	for _, step := range path.Steps {
		cond := step.TrafficCondition
		if cond != "拥堵" && cond != "严重拥堵" {
			continue
		}
		congestedCount++
		if len(congestedSteps) < maxCongestedSteps {
			congestedSteps = append(congestedSteps, map[string]any{
				"road":        step.Road,
				"instruction": step.Instruction,
				"condition":   cond,
			})
		}
	}

	ratio := 0.0
	if len(path.Steps) > 0 {
		ratio = float64(congestedCount) / float64(len(path.Steps))
	}
	return map[string]any{
		"origin":           origin,
		"destination":      destination,
		"distance_text":    formatDistance(distance),
		"duration_text":    formatDuration(duration),
		"step_count":       len(path.Steps),
		"congestion_ratio": fmt.Sprintf("%.0f%%", ratio*100),
		"congested_steps":  congestedSteps,
	}
}

func formatDistance(meters int) string {
	if meters >= 1000 {
		return fmt.Sprintf("%.1f公里", float64(meters)/1000)
	}
	return fmt.Sprintf("%d米", meters)
}

func formatDuration(seconds int) string {
	if seconds >= 3600 {
		return fmt.Sprintf("%d小时%d分钟", seconds/3600, seconds%3600/60)
	}
	return fmt.Sprintf("%d分钟", seconds/60)
}
