// Package travel implements the builtin travel tools: weather, traffic,
// routing, nearby facility search, scenic spot information, trip planning,
// packing lists, photo analysis, and social media captions. Every operation
// returns a plain map that is serialized to the model verbatim; upstream
// failures are reported in-band under an "error" key so a broken external
// API degrades one answer instead of aborting the conversation turn.
package travel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wayfarer-ai/wayfarer/internal/profile"
	"github.com/wayfarer-ai/wayfarer/internal/resilience"
	"github.com/wayfarer-ai/wayfarer/pkg/amap"
	"github.com/wayfarer-ai/wayfarer/pkg/vision"
)

// Service bundles the external clients and the profile manager behind the
// tool surface. The Amap and vision clients sit behind circuit breakers so a
// flapping upstream is cut off instead of stalling every turn.
type Service struct {
	maps     *amap.Client
	vision   *vision.Client
	profiles *profile.Manager
	logger   *slog.Logger
	now      func() time.Time

	mapsBreaker   *resilience.CircuitBreaker
	visionBreaker *resilience.CircuitBreaker
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for relative forecast dates.
// Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithVision attaches a landmark recognition client. Without one, photo
// analysis falls back to generic scene descriptions.
func WithVision(v *vision.Client) Option {
	return func(s *Service) { s.vision = v }
}

// errMapsUnavailable is reported when a geographic tool runs without a
// configured Amap key. The tool answers with an in-band error so the rest of
// the assistant keeps working.
var errMapsUnavailable = errors.New("未配置地图服务")

// New returns a travel service using maps for geographic data and profiles
// for per-user enrichment. A nil maps client is allowed; the geographic
// tools then report the gap per call instead of failing startup. A nil
// logger falls back to slog.Default.
func New(maps *amap.Client, profiles *profile.Manager, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		maps:     maps,
		profiles: profiles,
		logger:   logger,
		now:      time.Now,
		mapsBreaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name: "amap",
		}),
		visionBreaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name: "baidu-vision",
		}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Profiles exposes the profile manager for handlers that enrich requests.
func (s *Service) Profiles() *profile.Manager {
	return s.profiles
}

// geocode resolves a place name through the breaker.
func (s *Service) geocode(ctx context.Context, location string) (*amap.Geocode, error) {
	if s.maps == nil {
		return nil, errMapsUnavailable
	}
	var geo *amap.Geocode
	err := s.mapsBreaker.Execute(func() error {
		var err error
		geo, err = s.maps.Geocode(ctx, location)
		return err
	})
	if err != nil {
		return nil, err
	}
	return geo, nil
}

// errResult is the in-band error envelope returned to the model.
func errResult(format string, args ...any) map[string]any {
	return map[string]any{"error": fmt.Sprintf(format, args...)}
}

// round1 rounds to one decimal place, matching the precision the weather
// answers present.
func round1(v float64) float64 {
	if v < 0 {
		return float64(int(v*10-0.5)) / 10
	}
	return float64(int(v*10+0.5)) / 10
}
