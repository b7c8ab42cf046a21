package travel

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/wayfarer-ai/wayfarer/pkg/amap"
)

const (
	defaultFacilityRadiusM = 1000
	maxFacilityResults     = 10
	maxSearchResults       = 20
)

// facilityKeywords maps the categories the detectors produce to the search
// keywords the place API understands.
var facilityKeywords = map[string]string{
	"洗手间": "公共厕所",
	"休息点": "公园|广场",
	"商场":  "购物中心|商场",
	"餐厅":  "餐饮服务",
	"医院":  "医疗保健服务",
}

// coordRE matches a raw "lon,lat" coordinate pair.
var coordRE = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?),\s*(-?\d+(?:\.\d+)?)\s*$`)

// NearbyFacilities searches for facilities of the given category around a
// place. The location may be a place name or a raw "lon,lat" coordinate.
func (s *Service) NearbyFacilities(ctx context.Context, location, facilityType string, radiusM int) map[string]any {
	// Checked here because the coordinate path below skips geocode.
	if s.maps == nil {
		return errResult("位置服务暂时不可用: %v", errMapsUnavailable)
	}
	if radiusM <= 0 {
		radiusM = defaultFacilityRadiusM
	}
	keyword, ok := facilityKeywords[facilityType]
	if !ok {
		keyword = facilityType
	}

	var center amap.Coord
	if m := coordRE.FindStringSubmatch(location); m != nil {
		center = amap.Coord{Lon: atof(m[1]), Lat: atof(m[2])}
	} else {
		geo, err := s.geocode(ctx, location)
		if err != nil {
			if err == amap.ErrNotFound {
				return errResult("Location '%s' not found. Please provide a valid city or district name.", location)
			}
			return errResult("位置服务暂时不可用: %v", err)
		}
		center = geo.Location
	}

	var pois []amap.POI
	err := s.mapsBreaker.Execute(func() error {
		var err error
		pois, err = s.maps.SearchAround(ctx, center, keyword, radiusM, maxSearchResults)
		return err
	})
	if err != nil {
		return errResult("位置服务暂时不可用: %v", err)
	}
	if len(pois) == 0 {
		return map[string]any{
			"location":      location,
			"facility_type": facilityType,
			"count":         0,
			"message":       "附近没有找到" + facilityType,
		}
	}

	facilities := make([]map[string]any, 0, maxFacilityResults)
	for _, poi := range pois {
		if len(facilities) >= maxFacilityResults {
			break
		}
		entry := map[string]any{
			"name":     poi.Name,
			"address":  poi.Address,
			"distance": poi.Distance + "米",
		}
		if poi.Tel != "" {
			entry["tel"] = poi.Tel
		}
		if poi.BizExt.Rating != "" {
			entry["rating"] = poi.BizExt.Rating
		}
		if poi.BizExt.OpenTime != "" {
			entry["open_time"] = poi.BizExt.OpenTime
		}
		facilities = append(facilities, entry)
	}
	return map[string]any{
		"location":      location,
		"facility_type": facilityType,
		"count":         len(facilities),
		"facilities":    facilities,
	}
}

// ScenicSpotInfo describes a scenic spot. When the place API knows the spot,
// its address and rating are merged into the canned description structure.
func (s *Service) ScenicSpotInfo(ctx context.Context, spotName, detailLevel string) map[string]any {
	info := map[string]any{
		"name":        spotName,
		"description": spotName + "的详细介绍和历史文化背景",
		"highlights":  []string{"自然风光", "人文历史", "特色体验"},
		"tips":        []string{"建议游览时间2-3小时", "注意防晒补水", "旺季请提前购票"},
	}
	if detailLevel == "brief" {
		info["highlights"] = []string{"自然风光"}
		delete(info, "tips")
	}

	geo, err := s.geocode(ctx, spotName)
	if err != nil {
		// Unknown spots still get the generic description.
		return info
	}
	var pois []amap.POI
	err = s.mapsBreaker.Execute(func() error {
		var err error
		pois, err = s.maps.SearchAround(ctx, geo.Location, "风景名胜", 500, 5)
		return err
	})
	if err != nil || len(pois) == 0 {
		return info
	}
	for _, poi := range pois {
		if !strings.Contains(poi.Name, spotName) && !strings.Contains(spotName, poi.Name) {
			continue
		}
		info["address"] = poi.Address
		if poi.BizExt.Rating != "" {
			info["rating"] = poi.BizExt.Rating
		}
		if poi.BizExt.OpenTime != "" {
			info["open_time"] = poi.BizExt.OpenTime
		}
		break
	}
	return info
}

func atof(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
