// Package render groups the output formats for a chart layout.
//
// # Overview
//
// Rendering starts from a [layout.Result] (and, for wheel drawings, the
// [wheel.Layout] built from it). Two subpackages turn those into bytes:
//
//   - [sink]: the wheel preview as SVG, and the full result as JSON
//   - [chain]: the collision chain as Graphviz DOT, optionally rendered to SVG
//
// The wheel SVG is a diagnostic preview, not a publication renderer: it uses
// system fonts for glyphs and makes no attempt at raster or PDF export.
//
//	res := layout.New().Run(c.Positions, c.Cusps)
//	w := wheel.Build(res, c.Cusps, wheel.Options{})
//	svg := sink.RenderSVG(w, sink.WithTitle(c.Name))
//	dot := chain.ToDOT(res, chain.Options{})
//
// [layout.Result]: github.com/astrostats/astrowheel/pkg/layout.Result
// [wheel.Layout]: github.com/astrostats/astrowheel/pkg/wheel.Layout
// [sink]: github.com/astrostats/astrowheel/pkg/render/sink
// [chain]: github.com/astrostats/astrowheel/pkg/render/chain
package render

// Format names an output artifact format.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatJSON Format = "json"
	FormatDOT  Format = "dot"

	// FormatChain is the collision chain laid out by Graphviz.
	FormatChain Format = "chain.svg"
)

// Formats lists every supported format in a stable order.
func Formats() []Format { return []Format{FormatSVG, FormatJSON, FormatDOT, FormatChain} }

// Valid reports whether f is a supported format.
func (f Format) Valid() bool {
	switch f {
	case FormatSVG, FormatJSON, FormatDOT, FormatChain:
		return true
	}
	return false
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string { return "." + string(f) }

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG, FormatChain:
		return "image/svg+xml"
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz"
	}
	return "application/octet-stream"
}
