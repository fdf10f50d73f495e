// Package sink provides output format renderers for chart layouts.
//
// # Overview
//
// A "sink" transforms a computed layout into a final output format:
//
//   - SVG: a wheel preview with house lines, sign ring and body label stacks
//   - JSON: the adjusted positions, detected pairs and fold moves
//
// # SVG Output
//
// [RenderSVG] draws a [wheel.Layout]:
//
//	svg := sink.RenderSVG(w,
//	    sink.WithTitle(c.Name),
//	    sink.WithLeaders(),
//	)
//
// # SVG Options
//
//   - [WithTitle]: Caption in the top-left corner
//   - [WithBackground]: Fill color behind the wheel
//   - [WithLeaders]: Dashed line from each moved glyph to its true longitude
//
// # JSON Output
//
// [RenderJSON] exports a [layout.Result]. [WithJSONWheel] adds the screen
// placements so an external renderer can draw the wheel without recomputing it.
//
// [wheel.Layout]: github.com/astrostats/astrowheel/pkg/wheel.Layout
// [layout.Result]: github.com/astrostats/astrowheel/pkg/layout.Result
package sink
