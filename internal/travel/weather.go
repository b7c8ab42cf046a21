package travel

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wayfarer-ai/wayfarer/pkg/amap"
)

const (
	// UnitCelsius and UnitFahrenheit are the accepted temperature units.
	UnitCelsius    = "celsius"
	UnitFahrenheit = "fahrenheit"

	forecastMaxDays = 7
	dateLayout      = "2006-01-02"
)

// CurrentWeather reports live conditions for a place name. The unit controls
// the temperature scale; any value other than "fahrenheit" means Celsius.
func (s *Service) CurrentWeather(ctx context.Context, location, unit string) map[string]any {
	geo, err := s.geocode(ctx, location)
	if err != nil {
		if err == amap.ErrNotFound {
			return errResult("Location '%s' not found. Please provide a valid city or district name.", location)
		}
		return errResult("天气服务暂时不可用: %v", err)
	}

	var live *amap.LiveWeather
	err = s.mapsBreaker.Execute(func() error {
		var err error
		live, err = s.maps.LiveWeather(ctx, geo.Adcode)
		return err
	})
	if err != nil {
		return errResult("天气服务暂时不可用: %v", err)
	}

	temp, err := live.TemperatureC()
	if err != nil {
		return errResult("天气数据解析失败: %v", err)
	}
	unitName := UnitCelsius
	if unit == UnitFahrenheit {
		temp = amap.CelsiusToFahrenheit(temp)
		unitName = UnitFahrenheit
	}
	return map[string]any{
		"location":       location,
		"temperature":    round1(temp),
		"unit":           unitName,
		"weather":        live.Weather,
		"humidity":       live.Humidity,
		"wind_direction": live.WindDirection,
		"wind_power":     live.WindPower,
		"report_time":    live.ReportTime,
	}
}

// futureDaysRE matches relative ranges like 未来三天 or 未来3天.
var futureDaysRE = regexp.MustCompile(`未来([一二两三四五六七1-7\d]+)天`)

var cnDigits = map[rune]int{
	'一': 1, '两': 2, '二': 2, '三': 3, '四': 4, '五': 5, '六': 6, '七': 7,
}

// resolveForecastDates turns a date expression into the concrete dates to
// look up. An empty expression means tomorrow.
func resolveForecastDates(expr string, now time.Time) ([]string, error) {
	expr = strings.TrimSpace(expr)
	// Anchor on the calendar day in now's zone; Truncate would cut on UTC
	// epoch boundaries and shift every relative date for UTC+8 users.
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case expr == "" || expr == "明天" || strings.EqualFold(expr, "tomorrow"):
		return []string{today.AddDate(0, 0, 1).Format(dateLayout)}, nil
	case expr == "后天":
		return []string{today.AddDate(0, 0, 2).Format(dateLayout)}, nil
	}
	if m := futureDaysRE.FindStringSubmatch(expr); m != nil {
		n := 0
		for _, r := range m[1] {
			if d, ok := cnDigits[r]; ok {
				n = n*10 + d
			} else if r >= '0' && r <= '9' {
				n = n*10 + int(r-'0')
			}
		}
		if n < 1 {
			n = 1
		}
		if n > forecastMaxDays {
			n = forecastMaxDays
		}
		dates := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			dates = append(dates, today.AddDate(0, 0, i).Format(dateLayout))
		}
		return dates, nil
	}
	parsed, err := time.Parse(dateLayout, expr)
	if err != nil {
		return nil, fmt.Errorf("invalid date format: %s", expr)
	}
	return []string{parsed.Format(dateLayout)}, nil
}

// ForecastWeather reports the forecast for one or more dates. The date
// expression accepts 明天, 后天, 未来N天 (capped at seven days) or an explicit
// YYYY-MM-DD. Dates outside the provider's window produce a per-date error
// entry rather than failing the whole call.
func (s *Service) ForecastWeather(ctx context.Context, location, date, unit string) map[string]any {
	geo, err := s.geocode(ctx, location)
	if err != nil {
		if err == amap.ErrNotFound {
			return errResult("Location '%s' not found. Please provide a valid city or district name.", location)
		}
		return errResult("天气服务暂时不可用: %v", err)
	}

	dates, err := resolveForecastDates(date, s.now())
	if err != nil {
		return errResult("Invalid date format: %s", date)
	}

	var forecast *amap.Forecast
	err = s.mapsBreaker.Execute(func() error {
		var err error
		forecast, err = s.maps.ForecastWeather(ctx, geo.Adcode)
		return err
	})
	if err != nil {
		return errResult("天气服务暂时不可用: %v", err)
	}

	byDate := make(map[string]amap.DailyForecast, len(forecast.Casts))
	for _, cast := range forecast.Casts {
		byDate[cast.Date] = cast
	}

	unitName := UnitCelsius
	if unit == UnitFahrenheit {
		unitName = UnitFahrenheit
	}
	results := make([]map[string]any, 0, len(dates))
	for _, qd := range dates {
		cast, ok := byDate[qd]
		if !ok {
			results = append(results, map[string]any{
				"date":  qd,
				"error": "No forecast data found.",
			})
			continue
		}
		entry, convErr := forecastEntry(location, unitName, cast)
		if convErr != nil {
			results = append(results, map[string]any{
				"date":  qd,
				"error": convErr.Error(),
			})
			continue
		}
		results = append(results, entry)
	}
	if len(results) == 1 {
		return results[0]
	}
	return map[string]any{
		"location":  location,
		"unit":      unitName,
		"forecasts": results,
	}
}

func forecastEntry(location, unit string, cast amap.DailyForecast) (map[string]any, error) {
	dayTemp, err := strconv.ParseFloat(cast.DayTemp, 64)
	if err != nil {
		return nil, fmt.Errorf("天气数据解析失败: %v", err)
	}
	nightTemp, err := strconv.ParseFloat(cast.NightTemp, 64)
	if err != nil {
		return nil, fmt.Errorf("天气数据解析失败: %v", err)
	}
	if unit == UnitFahrenheit {
		dayTemp = amap.CelsiusToFahrenheit(dayTemp)
		nightTemp = amap.CelsiusToFahrenheit(nightTemp)
	}
	return map[string]any{
		"location":             location,
		"date":                 cast.Date,
		"day_temperature":      round1(dayTemp),
		"night_temperature":    round1(nightTemp),
		"unit":                 unit,
		"day_weather":          cast.DayWeather,
		"night_weather":        cast.NightWeather,
		"day_wind_direction":   cast.DayWind,
		"day_wind_power":       cast.DayPower,
		"night_wind_direction": cast.NightWind,
		"night_wind_power":     cast.NightPower,
	}, nil
}
