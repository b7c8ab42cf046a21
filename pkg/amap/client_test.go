package amap

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestClient starts an httptest server with the given handler and returns
// a client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New("test-key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_RequiresKey(t *testing.T) {
	t.Parallel()
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestGeocode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/geocode/geo" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q, want test-key", got)
		}
		if got := r.URL.Query().Get("address"); got != "昆明" {
			t.Errorf("address = %q, want 昆明", got)
		}
		w.Write([]byte(`{
			"status": "1", "info": "OK", "infocode": "10000",
			"geocodes": [{"adcode": "530100", "city": "昆明市", "location": "102.832891,24.880095"}]
		}`))
	})

	g, err := c.Geocode(context.Background(), "昆明")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if g.Adcode != "530100" {
		t.Errorf("Adcode = %q, want 530100", g.Adcode)
	}
	if math.Abs(g.Location.Lon-102.832891) > 1e-6 || math.Abs(g.Location.Lat-24.880095) > 1e-6 {
		t.Errorf("Location = %v, want 102.832891,24.880095", g.Location)
	}
}

func TestGeocode_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "1", "info": "OK", "infocode": "10000", "geocodes": []}`))
	})

	_, err := c.Geocode(context.Background(), "nowhere")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestGeocode_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "0", "info": "INVALID_USER_KEY", "infocode": "10001"}`))
	})

	_, err := c.Geocode(context.Background(), "北京")
	if err == nil || !strings.Contains(err.Error(), "INVALID_USER_KEY") {
		t.Fatalf("err = %v, want INVALID_USER_KEY", err)
	}
}

func TestLiveWeather(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("extensions"); got != "base" {
			t.Errorf("extensions = %q, want base", got)
		}
		w.Write([]byte(`{
			"status": "1", "info": "OK", "infocode": "10000",
			"lives": [{
				"city": "昆明市", "adcode": "530100", "weather": "晴",
				"temperature": "22", "humidity": "45",
				"winddirection": "西南", "windpower": "≤3",
				"reporttime": "2024-03-01 15:00:00"
			}]
		}`))
	})

	lw, err := c.LiveWeather(context.Background(), "530100")
	if err != nil {
		t.Fatalf("LiveWeather: %v", err)
	}
	tc, err := lw.TemperatureC()
	if err != nil {
		t.Fatalf("TemperatureC: %v", err)
	}
	if tc != 22 {
		t.Errorf("TemperatureC = %v, want 22", tc)
	}
	if lw.Weather != "晴" {
		t.Errorf("Weather = %q, want 晴", lw.Weather)
	}
}

func TestForecastWeather(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("extensions"); got != "all" {
			t.Errorf("extensions = %q, want all", got)
		}
		w.Write([]byte(`{
			"status": "1", "info": "OK", "infocode": "10000",
			"forecasts": [{
				"city": "昆明市", "adcode": "530100",
				"casts": [
					{"date": "2024-03-01", "dayweather": "晴", "nightweather": "多云", "daytemp": "24", "nighttemp": "11"},
					{"date": "2024-03-02", "dayweather": "多云", "nightweather": "阴", "daytemp": "21", "nighttemp": "10"}
				]
			}]
		}`))
	})

	f, err := c.ForecastWeather(context.Background(), "530100")
	if err != nil {
		t.Fatalf("ForecastWeather: %v", err)
	}
	if len(f.Casts) != 2 {
		t.Fatalf("len(Casts) = %d, want 2", len(f.Casts))
	}
	if f.Casts[0].Date != "2024-03-01" || f.Casts[0].DayTemp != "24" {
		t.Errorf("unexpected first cast: %+v", f.Casts[0])
	}
}

func TestTrafficStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Query().Get("rectangle"), ";") {
			t.Errorf("rectangle %q missing corner separator", r.URL.Query().Get("rectangle"))
		}
		w.Write([]byte(`{
			"status": "1", "info": "OK", "infocode": "10000",
			"trafficinfo": {
				"description": "整体畅通",
				"evaluation": {"expedite": "80%", "congested": "5%", "blocked": "0%", "unknown": "15%", "status": "1"},
				"roads": [{"name": "人民路", "status": "1", "speed": "45"}]
			}
		}`))
	})

	info, err := c.TrafficStatus(context.Background(), RectangleAround(Coord{Lon: 102.83, Lat: 24.88}, 2))
	if err != nil {
		t.Fatalf("TrafficStatus: %v", err)
	}
	if len(info.Roads) != 1 || info.Roads[0].Name != "人民路" {
		t.Errorf("unexpected roads: %+v", info.Roads)
	}
}

func TestDrivingRoute(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"status": "1", "info": "OK", "infocode": "10000",
			"route": {"paths": [{
				"distance": "12500", "duration": "1860",
				"steps": [{"instruction": "向北行驶", "road": "北京路", "distance": "800", "traffic_condition": "畅通"}]
			}]}
		}`))
	})

	paths, err := c.DrivingRoute(context.Background(),
		Coord{Lon: 116.397, Lat: 39.908}, Coord{Lon: 116.31, Lat: 39.99})
	if err != nil {
		t.Fatalf("DrivingRoute: %v", err)
	}
	if len(paths) != 1 || paths[0].Distance != "12500" {
		t.Errorf("unexpected paths: %+v", paths)
	}
}

func TestSearchAround(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("types"); got != "050000" {
			t.Errorf("types = %q, want 050000", got)
		}
		if got := r.URL.Query().Get("radius"); got != "3000" {
			t.Errorf("radius = %q, want 3000", got)
		}
		w.Write([]byte(`{
			"status": "1", "info": "OK", "infocode": "10000",
			"pois": [{"name": "老滇山寨", "type": "餐饮服务", "address": "金碧路", "distance": "420",
				"biz_ext": {"rating": "4.6", "open_time": "10:00-22:00"}}]
		}`))
	})

	pois, err := c.SearchAround(context.Background(), Coord{Lon: 102.83, Lat: 24.88}, "050000", 3000, 5)
	if err != nil {
		t.Fatalf("SearchAround: %v", err)
	}
	if len(pois) != 1 || pois[0].Name != "老滇山寨" {
		t.Errorf("unexpected pois: %+v", pois)
	}
	if pois[0].BizExt.Rating != "4.6" {
		t.Errorf("rating = %q, want 4.6", pois[0].BizExt.Rating)
	}
}

func TestRectangleAround(t *testing.T) {
	t.Parallel()

	rect := RectangleAround(Coord{Lon: 116.0, Lat: 40.0}, 2)
	parts := strings.Split(rect, ";")
	if len(parts) != 2 {
		t.Fatalf("rectangle %q should have two corners", rect)
	}

	var minLon, minLat, maxLon, maxLat float64
	if _, err := fmt.Sscanf(parts[0], "%f,%f", &minLon, &minLat); err != nil {
		t.Fatal(err)
	}
	if _, err := fmt.Sscanf(parts[1], "%f,%f", &maxLon, &maxLat); err != nil {
		t.Fatal(err)
	}

	// 2 km of latitude is about 0.018 degrees.
	if got := maxLat - minLat; math.Abs(got-2*2/111.0) > 1e-6 {
		t.Errorf("lat span = %v, want %v", got, 2*2/111.0)
	}
	// Longitude span widens by 1/cos(40°).
	wantLonSpan := 2 * 2 / (111.0 * math.Cos(40*math.Pi/180))
	if got := maxLon - minLon; math.Abs(got-wantLonSpan) > 1e-5 {
		t.Errorf("lon span = %v, want %v", got, wantLonSpan)
	}
}

func TestCelsiusToFahrenheit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		c    float64
		want float64
	}{
		{0, 32},
		{100, 212},
		{22, 71.6},
		{-10, 14},
	}
	for _, tt := range tests {
		if got := CelsiusToFahrenheit(tt.c); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("CelsiusToFahrenheit(%v) = %v, want %v", tt.c, got, tt.want)
		}
	}
}
