package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/astrostats/astrowheel/pkg/wheel"
)

const wheelCSS = `
    .ring { fill: none; stroke: #4b0082; stroke-width: 0.6; }
    .cusp { stroke: #4b0082; stroke-width: 0.3; stroke-linecap: round; }
    .cusp.axis { stroke-width: 1.2; }
    .sign-edge { stroke: #888; stroke-width: 0.4; }
    .leader { stroke: #c0392b; stroke-width: 0.5; stroke-dasharray: 2 2; }
    text { font-family: 'Noto Sans Symbols', 'DejaVu Sans', sans-serif; text-anchor: middle; dominant-baseline: central; }
    .house-number { font-size: 11px; fill: #555; }
    .sign-glyph { font-size: 16px; fill: #333; }
    .glyph { font-size: 22px; }
    .degree, .minute { font-size: 10px; }
    .sign { font-size: 12px; fill: #333; }
    .retrograde { font-size: 9px; fill: #c0392b; }
    .title { font-size: 14px; font-weight: bold; text-anchor: start; }`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title      string
	background string
	leaders    bool
}

// WithTitle draws a caption in the top-left corner.
func WithTitle(s string) SVGOption { return func(r *svgRenderer) { r.title = s } }

// WithBackground fills the canvas with a CSS color.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithLeaders draws a dashed line from each displaced glyph back to its true longitude.
func WithLeaders() SVGOption { return func(r *svgRenderer) { r.leaders = true } }

// RenderSVG draws the wheel as a standalone SVG document.
func RenderSVG(w wheel.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w.Size, w.Size, w.Size, w.Size)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", wheelCSS)

	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", escapeXML(r.background))
	}
	if r.title != "" {
		fmt.Fprintf(&buf, `  <text class="title" x="10" y="18">%s</text>`+"\n", escapeXML(r.title))
	}

	renderRings(&buf, w)
	renderSigns(&buf, w)
	renderHouses(&buf, w)
	for _, p := range w.Bodies {
		renderBody(&buf, w, p, r.leaders)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderRings(buf *bytes.Buffer, w wheel.Layout) {
	for _, radius := range []float64{w.Radius + w.SymbolSize, w.Radius, w.BandRadius, w.InnerRadius} {
		fmt.Fprintf(buf, `  <circle class="ring" cx="%.2f" cy="%.2f" r="%.2f"/>`+"\n", w.Center.X, w.Center.Y, radius)
	}
}

func renderSigns(buf *bytes.Buffer, w wheel.Layout) {
	buf.WriteString(`  <g id="signs">` + "\n")
	for _, s := range w.Signs {
		fmt.Fprintf(buf, `    <line class="sign-edge" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n",
			s.Inner.X, s.Inner.Y, s.Outer.X, s.Outer.Y)
		fmt.Fprintf(buf, `    <text class="sign-glyph" x="%.2f" y="%.2f"><title>%s</title>%s</text>`+"\n",
			s.LabelAt.X, s.LabelAt.Y, s.Sign, s.Glyph)
	}
	buf.WriteString("  </g>\n")
}

func renderHouses(buf *bytes.Buffer, w wheel.Layout) {
	buf.WriteString(`  <g id="houses">` + "\n")
	for _, h := range w.Houses {
		class := "cusp"
		if (h.Number-1)%3 == 0 {
			class += " axis"
		}
		fmt.Fprintf(buf, `    <line class="%s" data-house="%d" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n",
			class, h.Number, h.Inner.X, h.Inner.Y, h.Outer.X, h.Outer.Y)
		fmt.Fprintf(buf, `    <text class="house-number" x="%.2f" y="%.2f">%d</text>`+"\n",
			h.LabelAt.X, h.LabelAt.Y, h.Number)
	}
	buf.WriteString("  </g>\n")
}

func renderBody(buf *bytes.Buffer, w wheel.Layout, p wheel.Placement, leaders bool) {
	fmt.Fprintf(buf, `  <g class="body" id="body-%s" data-house="%d" data-longitude="%.4f">`+"\n",
		p.Body, p.House, float64(p.Original))

	if leaders && p.Display != p.Original {
		tick := wheel.Polar(w.Center, w.Radius, p.TrueAngle)
		glyph, _ := p.Label(wheel.RingGlyph)
		fmt.Fprintf(buf, `    <line class="leader" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n",
			glyph.At.X, glyph.At.Y, tick.X, tick.Y)
	}

	for _, l := range p.Labels {
		fmt.Fprintf(buf, `    <text class="%s" x="%.2f" y="%.2f">%s</text>`+"\n",
			l.Kind, l.At.X, l.At.Y, escapeXML(l.Text))
	}
	buf.WriteString("  </g>\n")
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
