// Package chart defines the input document consumed by the layout engine.
//
// A [Chart] carries the already-resolved ecliptic longitudes of the bodies in
// canonical order plus the twelve house cusps, as supplied by an ephemeris
// component upstream. This package decodes charts from JSON or TOML and validates
// them; after [Chart.Validate] succeeds, the engine can assume every value is a
// finite longitude in [0, 360).
//
// # Document Format
//
// Bodies may be given as a list of named positions:
//
//	{
//	  "name": "example",
//	  "bodies": [
//	    {"body": "sun", "longitude": 10.0},
//	    {"body": "mercury", "longitude": 12.0, "retrograde": true}
//	  ],
//	  "cusps": [0, 30, 60, 90, 120, 150, 180, 210, 240, 270, 300, 330]
//	}
//
// or as a bare array in canonical order, with retrograde bodies listed by name:
//
//	name = "example"
//	longitudes = [10.0, 12.0]
//	retrograde = ["moon"]
//	cusps = [0, 30, 60, 90, 120, 150, 180, 210, 240, 270, 300, 330]
package chart

import (
	"slices"

	"github.com/astrostats/astrowheel/pkg/angle"
	"github.com/astrostats/astrowheel/pkg/errors"
	"github.com/astrostats/astrowheel/pkg/houses"
)

// Position is one body's raw ecliptic longitude.
type Position struct {
	Body       Body            `json:"body" toml:"body"`
	Longitude  angle.Longitude `json:"longitude" toml:"longitude"`
	Retrograde bool            `json:"retrograde,omitempty" toml:"retrograde,omitempty"`
}

// Chart is a validated set of body positions and house cusps.
type Chart struct {
	Name      string
	Positions []Position    // canonical body order, each body at most once
	Cusps     houses.System // house order
}

// New builds a chart from positions and cusps, sorting positions into canonical
// order, and validates the result.
func New(name string, positions []Position, cusps []float64) (*Chart, error) {
	if err := errors.ValidateCusps(cusps); err != nil {
		return nil, err
	}
	c := &Chart{
		Name:      name,
		Positions: slices.Clone(positions),
		Cusps:     houses.FromLongitudes(cusps),
	}
	slices.SortStableFunc(c.Positions, func(a, b Position) int { return int(a.Body) - int(b.Body) })
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// FromLongitudes builds a chart from longitudes in canonical body order.
func FromLongitudes(name string, lons []float64, cusps []float64) (*Chart, error) {
	if len(lons) > BodyCount {
		return nil, errors.New(errors.ErrCodeInvalidChart, "got %d longitudes, at most %d bodies are supported", len(lons), BodyCount)
	}
	positions := make([]Position, len(lons))
	for i, l := range lons {
		if err := errors.ValidateLongitude(Body(i).String(), l); err != nil {
			return nil, err
		}
		positions[i] = Position{Body: Body(i), Longitude: angle.Longitude(l)}
	}
	return New(name, positions, cusps)
}

// Validate checks chart invariants: a sane name, at least one body, no duplicate
// or unknown bodies, canonical ordering, normalized longitudes and a usable cusp set.
func (c *Chart) Validate() error {
	if err := errors.ValidateChartName(c.Name); err != nil {
		return err
	}
	if len(c.Positions) == 0 {
		return errors.New(errors.ErrCodeInvalidChart, "chart has no bodies")
	}
	seen := make(map[Body]bool, len(c.Positions))
	for i, p := range c.Positions {
		if !p.Body.Valid() {
			return errors.New(errors.ErrCodeInvalidChart, "unknown body index %d", int(p.Body))
		}
		if seen[p.Body] {
			return errors.New(errors.ErrCodeInvalidChart, "body %s listed twice", p.Body)
		}
		seen[p.Body] = true
		if i > 0 && c.Positions[i-1].Body > p.Body {
			return errors.New(errors.ErrCodeInvalidChart, "positions are not in canonical order")
		}
		if err := errors.ValidateLongitude(p.Body.String(), float64(p.Longitude)); err != nil {
			return err
		}
	}
	cusps := make([]float64, houses.Count)
	for i, l := range c.Cusps {
		cusps[i] = float64(l)
	}
	return errors.ValidateCusps(cusps)
}

// Longitudes returns the raw longitudes in canonical order.
func (c *Chart) Longitudes() []float64 {
	out := make([]float64, len(c.Positions))
	for i, p := range c.Positions {
		out[i] = float64(p.Longitude)
	}
	return out
}

// Position returns the position of body b, if present.
func (c *Chart) Position(b Body) (Position, bool) {
	for _, p := range c.Positions {
		if p.Body == b {
			return p, true
		}
	}
	return Position{}, false
}
