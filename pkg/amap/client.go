// Package amap is a client for the Amap (高德地图) open platform REST API.
// It covers the endpoints Wayfarer needs: geocoding, live and forecast
// weather, rectangle traffic status, driving routes, and nearby POI search.
//
// All numeric fields arrive as strings on the wire; the client converts the
// ones callers compute with and leaves descriptive fields as-is.
package amap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the production Amap REST endpoint.
const DefaultBaseURL = "https://restapi.amap.com"

// ErrNotFound is returned when a geocode lookup yields no results.
var ErrNotFound = errors.New("amap: location not found")

// Client calls the Amap REST API. Create one with [New]; the zero value is
// not usable.
type Client struct {
	key        string
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for [New].
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used in tests against an
// httptest.Server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates an Amap client with the given web service key.
func New(key string, opts ...Option) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("amap: key must not be empty")
	}
	c := &Client{
		key:        key,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Coord is a WGS-84-ish longitude/latitude pair as used by Amap (GCJ-02).
type Coord struct {
	Lon float64
	Lat float64
}

// String formats the coordinate as "lon,lat" with six decimal places, the
// precision Amap expects.
func (c Coord) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lon, c.Lat)
}

// Geocode is the result of a forward geocoding lookup.
type Geocode struct {
	// Adcode is the administrative district code used by the weather API.
	Adcode string
	// City is the resolved city name.
	City string
	// Location is the point coordinate of the address.
	Location Coord
}

// LiveWeather is a current-conditions report for a district.
type LiveWeather struct {
	Province      string `json:"province"`
	City          string `json:"city"`
	Adcode        string `json:"adcode"`
	Weather       string `json:"weather"`
	Temperature   string `json:"temperature"`
	WindDirection string `json:"winddirection"`
	WindPower     string `json:"windpower"`
	Humidity      string `json:"humidity"`
	ReportTime    string `json:"reporttime"`
}

// TemperatureC returns the live temperature in degrees Celsius.
func (w *LiveWeather) TemperatureC() (float64, error) {
	t, err := strconv.ParseFloat(w.Temperature, 64)
	if err != nil {
		return 0, fmt.Errorf("amap: parse temperature %q: %w", w.Temperature, err)
	}
	return t, nil
}

// DailyForecast is a one-day forecast entry.
type DailyForecast struct {
	Date         string `json:"date"`
	Week         string `json:"week"`
	DayWeather   string `json:"dayweather"`
	NightWeather string `json:"nightweather"`
	DayTemp      string `json:"daytemp"`
	NightTemp    string `json:"nighttemp"`
	DayWind      string `json:"daywind"`
	NightWind    string `json:"nightwind"`
	DayPower     string `json:"daypower"`
	NightPower   string `json:"nightpower"`
}

// Forecast is a multi-day forecast for a district.
type Forecast struct {
	City       string          `json:"city"`
	Adcode     string          `json:"adcode"`
	ReportTime string          `json:"reporttime"`
	Casts      []DailyForecast `json:"casts"`
}

// Road is a single road entry from the traffic status API.
type Road struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	Direction string `json:"direction"`
	Angle     string `json:"angle"`
	Speed     string `json:"speed"`
}

// TrafficInfo summarises traffic in a rectangle area.
type TrafficInfo struct {
	Description string `json:"description"`
	Evaluation  struct {
		Expedite  string `json:"expedite"`
		Congested string `json:"congested"`
		Blocked   string `json:"blocked"`
		Unknown   string `json:"unknown"`
		Status    string `json:"status"`
	} `json:"evaluation"`
	Roads []Road `json:"roads"`
}

// RouteStep is one leg of a driving route.
type RouteStep struct {
	Instruction      string `json:"instruction"`
	Road             string `json:"road"`
	Distance         string `json:"distance"`
	TrafficCondition string `json:"traffic_condition"`
}

// RoutePath is a candidate driving route.
type RoutePath struct {
	Distance string      `json:"distance"`
	Duration string      `json:"duration"`
	Strategy string      `json:"strategy"`
	Steps    []RouteStep `json:"steps"`
}

// POI is a point of interest returned by the around search.
type POI struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Address  string `json:"address"`
	Distance string `json:"distance"`
	Tel      string `json:"tel"`
	BizExt   struct {
		Rating   string `json:"rating"`
		OpenTime string `json:"open_time"`
	} `json:"biz_ext"`
}

// Geocode resolves a free-form address or place name to its district code
// and coordinates. Returns [ErrNotFound] when Amap has no match.
func (c *Client) Geocode(ctx context.Context, address string) (*Geocode, error) {
	q := url.Values{
		"address": {address},
	}
	var resp struct {
		apiStatus
		Geocodes []struct {
			Adcode   string `json:"adcode"`
			City     any    `json:"city"`
			Location string `json:"location"`
		} `json:"geocodes"`
	}
	if err := c.get(ctx, "/v3/geocode/geo", q, &resp); err != nil {
		return nil, err
	}
	if err := resp.check("geocode"); err != nil {
		return nil, err
	}
	if len(resp.Geocodes) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, address)
	}
	g := resp.Geocodes[0]
	coord, err := parseCoord(g.Location)
	if err != nil {
		return nil, err
	}
	city, _ := g.City.(string) // empty array when the city is unknown
	return &Geocode{
		Adcode:   g.Adcode,
		City:     city,
		Location: coord,
	}, nil
}

// LiveWeather fetches current conditions for the district identified by
// adcode.
func (c *Client) LiveWeather(ctx context.Context, adcode string) (*LiveWeather, error) {
	q := url.Values{
		"city":       {adcode},
		"extensions": {"base"},
	}
	var resp struct {
		apiStatus
		Lives []LiveWeather `json:"lives"`
	}
	if err := c.get(ctx, "/v3/weather/weatherInfo", q, &resp); err != nil {
		return nil, err
	}
	if err := resp.check("live weather"); err != nil {
		return nil, err
	}
	if len(resp.Lives) == 0 {
		return nil, fmt.Errorf("amap: live weather unavailable for adcode %q", adcode)
	}
	return &resp.Lives[0], nil
}

// ForecastWeather fetches the multi-day forecast (typically 4 days) for the
// district identified by adcode.
func (c *Client) ForecastWeather(ctx context.Context, adcode string) (*Forecast, error) {
	q := url.Values{
		"city":       {adcode},
		"extensions": {"all"},
	}
	var resp struct {
		apiStatus
		Forecasts []Forecast `json:"forecasts"`
	}
	if err := c.get(ctx, "/v3/weather/weatherInfo", q, &resp); err != nil {
		return nil, err
	}
	if err := resp.check("forecast weather"); err != nil {
		return nil, err
	}
	if len(resp.Forecasts) == 0 {
		return nil, fmt.Errorf("amap: forecast unavailable for adcode %q", adcode)
	}
	return &resp.Forecasts[0], nil
}

// TrafficStatus queries road conditions inside the rectangle spanned by two
// corner coordinates (lower-left, upper-right). Use [RectangleAround] to
// derive a rectangle from a center point and radius.
func (c *Client) TrafficStatus(ctx context.Context, rectangle string) (*TrafficInfo, error) {
	q := url.Values{
		"rectangle":  {rectangle},
		"extensions": {"all"},
	}
	var resp struct {
		apiStatus
		TrafficInfo *TrafficInfo `json:"trafficinfo"`
	}
	if err := c.get(ctx, "/v3/traffic/status/rectangle", q, &resp); err != nil {
		return nil, err
	}
	if err := resp.check("traffic status"); err != nil {
		return nil, err
	}
	if resp.TrafficInfo == nil {
		return nil, fmt.Errorf("amap: traffic data unavailable for rectangle %q", rectangle)
	}
	return resp.TrafficInfo, nil
}

// DrivingRoute plans a driving route between two coordinates and returns the
// candidate paths, best first.
func (c *Client) DrivingRoute(ctx context.Context, origin, destination Coord) ([]RoutePath, error) {
	q := url.Values{
		"origin":      {origin.String()},
		"destination": {destination.String()},
		"extensions":  {"all"},
	}
	var resp struct {
		apiStatus
		Route struct {
			Paths []RoutePath `json:"paths"`
		} `json:"route"`
	}
	if err := c.get(ctx, "/v3/direction/driving", q, &resp); err != nil {
		return nil, err
	}
	if err := resp.check("driving route"); err != nil {
		return nil, err
	}
	if len(resp.Route.Paths) == 0 {
		return nil, fmt.Errorf("amap: no route between %s and %s", origin, destination)
	}
	return resp.Route.Paths, nil
}

// SearchAround finds POIs of the given Amap category code within radius
// meters of location. limit caps the number of results per page.
func (c *Client) SearchAround(ctx context.Context, location Coord, poiType string, radius, limit int) ([]POI, error) {
	q := url.Values{
		"location":   {location.String()},
		"types":      {poiType},
		"radius":     {strconv.Itoa(radius)},
		"offset":     {strconv.Itoa(limit)},
		"page":       {"1"},
		"extensions": {"all"},
	}
	var resp struct {
		apiStatus
		POIs []POI `json:"pois"`
	}
	if err := c.get(ctx, "/v3/place/around", q, &resp); err != nil {
		return nil, err
	}
	if err := resp.check("place around"); err != nil {
		return nil, err
	}
	return resp.POIs, nil
}

// RectangleAround converts a center point and radius in kilometers into the
// "minLon,minLat;maxLon,maxLat" rectangle string the traffic API expects.
// One degree of latitude spans roughly 111 km; longitude shrinks by the
// cosine of the latitude.
func RectangleAround(center Coord, radiusKm float64) string {
	latDiff := radiusKm / 111.0
	lonDiff := radiusKm / (111.0 * math.Cos(center.Lat*math.Pi/180))
	return fmt.Sprintf("%.6f,%.6f;%.6f,%.6f",
		center.Lon-lonDiff, center.Lat-latDiff,
		center.Lon+lonDiff, center.Lat+latDiff,
	)
}

// CelsiusToFahrenheit converts a Celsius temperature to Fahrenheit.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// apiStatus is the response envelope shared by all Amap endpoints.
type apiStatus struct {
	Status   string `json:"status"`
	Info     string `json:"info"`
	Infocode string `json:"infocode"`
}

// check returns an error when the envelope reports failure.
func (s *apiStatus) check(op string) error {
	if s.Status != "1" {
		return fmt.Errorf("amap: %s failed: %s (infocode %s)", op, s.Info, s.Infocode)
	}
	return nil
}

// get performs a GET request against path with the API key merged into q and
// decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	q.Set("key", c.key)
	u := c.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("amap: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("amap: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("amap: %s: unexpected status %d: %s", path, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("amap: %s: decode response: %w", path, err)
	}
	return nil
}

// parseCoord parses an Amap "lon,lat" pair.
func parseCoord(s string) (Coord, error) {
	var c Coord
	if _, err := fmt.Sscanf(s, "%f,%f", &c.Lon, &c.Lat); err != nil {
		return Coord{}, fmt.Errorf("amap: parse coordinate %q: %w", s, err)
	}
	return c, nil
}
