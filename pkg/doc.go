// Package pkg provides the core libraries for astrowheel glyph layout.
//
// # Overview
//
// Astrowheel places the planet glyphs of a birth chart on a zodiac wheel so that
// bodies a few degrees apart do not draw on top of each other. The pkg
// directory is organized into four main areas:
//
//  1. Geometry - [angle] (circular longitudes) and [houses] (cusp intervals)
//  2. Domain - [chart] (documents) and [layout] (the de-collision engine)
//  3. Output - [wheel] (placement geometry) and [render] (SVG, JSON, DOT)
//  4. Infrastructure - [pipeline], [cache], [errors], [observability], [buildinfo]
//
// # Architecture
//
// The typical data flow through astrowheel:
//
//	Chart document (JSON/TOML)
//	         ↓
//	    [chart] package (decode + validate)
//	         ↓
//	    [layout] package (detect pairs, resolve within houses, resequence)
//	         ↓
//	    [wheel] package (screen angles and text rings)
//	         ↓
//	    SVG/JSON/DOT output
//
// # Quick Start
//
//	c, _ := chart.Load("natal.toml")
//	res := layout.New().Run(c.Positions, c.Cusps)
//	for _, p := range res.Positions {
//	    fmt.Println(p.Body, p.Original, "→", p.Display)
//	}
//
// For cached, multi-format runs use [pipeline.Runner].
//
// [angle]: github.com/astrostats/astrowheel/pkg/angle
// [houses]: github.com/astrostats/astrowheel/pkg/houses
// [chart]: github.com/astrostats/astrowheel/pkg/chart
// [layout]: github.com/astrostats/astrowheel/pkg/layout
// [wheel]: github.com/astrostats/astrowheel/pkg/wheel
// [render]: github.com/astrostats/astrowheel/pkg/render
// [pipeline]: github.com/astrostats/astrowheel/pkg/pipeline
// [pipeline.Runner]: github.com/astrostats/astrowheel/pkg/pipeline#Runner
// [cache]: github.com/astrostats/astrowheel/pkg/cache
// [errors]: github.com/astrostats/astrowheel/pkg/errors
// [observability]: github.com/astrostats/astrowheel/pkg/observability
// [buildinfo]: github.com/astrostats/astrowheel/pkg/buildinfo
package pkg
