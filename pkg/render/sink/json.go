package sink

import (
	"encoding/json"

	"github.com/astrostats/astrowheel/pkg/layout"
	"github.com/astrostats/astrowheel/pkg/wheel"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	name        string
	gap         float64
	minDistance float64
	wheel       *wheel.Layout
}

// WithJSONName records the chart name in the output.
func WithJSONName(name string) JSONOption { return func(r *jsonRenderer) { r.name = name } }

// WithJSONEngine records the engine parameters the result was computed with, so
// the output can be reproduced.
func WithJSONEngine(e *layout.Engine) JSONOption {
	return func(r *jsonRenderer) { r.gap, r.minDistance = e.Gap(), e.MinDistance() }
}

// WithJSONWheel includes screen placements for every body, house and sign.
func WithJSONWheel(w wheel.Layout) JSONOption { return func(r *jsonRenderer) { r.wheel = &w } }

type jsonOutput struct {
	Name        string            `json:"name,omitempty"`
	Gap         float64           `json:"gap,omitempty"`
	MinDistance float64           `json:"min_distance,omitempty"`
	Displaced   int               `json:"displaced"`
	Positions   []layout.Adjusted `json:"positions"`
	Pairs       []layout.Pair     `json:"pairs,omitempty"`
	Moves       []layout.Move     `json:"moves,omitempty"`
	Wheel       *wheel.Layout     `json:"wheel,omitempty"`
}

// RenderJSON exports a layout result as a pretty-printed JSON document.
// Bodies are encoded by name and longitudes in degrees. It does not modify res and
// is safe to call concurrently.
func RenderJSON(res layout.Result, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Name:        r.name,
		Gap:         r.gap,
		MinDistance: r.minDistance,
		Displaced:   res.Displaced(),
		Positions:   res.Positions,
		Pairs:       res.Pairs,
		Moves:       res.Moves,
		Wheel:       r.wheel,
	}
	return json.MarshalIndent(out, "", "  ")
}
