package handler

import (
	"strings"

	"github.com/wayfarer-ai/wayfarer/internal/intent"
)

// Factory routes a request to the handler for its detected intent.
type Factory struct {
	deps    Deps
	intents *intent.Registry
}

func NewFactory(deps Deps, intents *intent.Registry) *Factory {
	return &Factory{deps: deps, intents: intents}
}

// analysisCueWords make an attached image take priority over text intents.
var analysisCueWords = []string{"分析", "识别"}

// Pick selects the handler for the request and reports the route name it
// matched. It returns (nil, "") when no deterministic route applies and the
// orchestrator should fall back to model-driven tool selection.
func (f *Factory) Pick(text, imageData string) (Handler, string) {
	if imageData != "" {
		for _, cue := range analysisCueWords {
			if strings.Contains(text, cue) {
				return NewImageHandler(f.deps), "image_analysis"
			}
		}
	}

	match := f.intents.First(text)
	if match == nil {
		return nil, ""
	}
	detector := f.intents.Get(match.Intent)
	switch match.Intent {
	case "weather":
		return NewWeatherHandler(f.deps, detector), match.Intent
	case "traffic":
		return NewTrafficHandler(f.deps, detector), match.Intent
	case "route":
		return NewRouteHandler(f.deps, detector), match.Intent
	case "nearby_facility":
		return NewFacilityHandler(f.deps, detector), match.Intent
	case "itinerary":
		return NewItineraryHandler(f.deps, detector), match.Intent
	case "packing":
		return NewPackingHandler(f.deps, detector), match.Intent
	case "social_media":
		return NewSocialHandler(f.deps, detector), match.Intent
	case "user_info":
		return NewUserInfoHandler(f.deps, detector), match.Intent
	case "scenic_info":
		return NewScenicHandler(f.deps, detector), match.Intent
	}
	return nil, ""
}
