package chain

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/astrostats/astrowheel/pkg/chart"
	"github.com/astrostats/astrowheel/pkg/layout"
)

// Options configures collision chain rendering.
type Options struct {
	// Detailed adds original and display longitudes to node labels and the
	// before/after pair to edge labels. When false, nodes show only the body name.
	Detailed bool

	// All includes bodies that take part in no pair.
	All bool
}

// ToDOT converts a layout result to Graphviz DOT. Bodies are nodes in longitude
// order; each detected pair is an edge labelled with the strategy that resolved it.
func ToDOT(res layout.Result, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph chain {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("\n")

	paired := make(map[chart.Body]bool)
	for _, p := range res.Pairs {
		paired[p.Lower], paired[p.Upper] = true, true
	}

	for _, p := range byLongitude(res.Positions) {
		if !opts.All && !paired[p.Body] {
			continue
		}
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(p, opts.Detailed))}
		if p.Moved() {
			attrs = append(attrs, "fillcolor=\"#fdebd0\"")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", p.Body.String(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, m := range res.Moves {
		attrs := []string{fmt.Sprintf("label=%q", fmtEdge(m, opts.Detailed))}
		if !m.Strategy.Moves() {
			attrs = append(attrs, "style=dashed")
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", m.Pair.Lower.String(), m.Pair.Upper.String(), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func byLongitude(positions []layout.Adjusted) []layout.Adjusted {
	sorted := slices.Clone(positions)
	slices.SortStableFunc(sorted, func(a, b layout.Adjusted) int {
		switch {
		case a.Original < b.Original:
			return -1
		case a.Original > b.Original:
			return 1
		}
		return int(a.Body) - int(b.Body)
	})
	return sorted
}

func fmtLabel(p layout.Adjusted, detailed bool) string {
	label := p.Body.Glyph() + " " + p.Body.String()
	if !detailed {
		return label
	}
	parts := []string{
		fmt.Sprintf("house: %d", p.House),
		fmt.Sprintf("original: %.2f", float64(p.Original)),
		fmt.Sprintf("display: %.2f", float64(p.Display)),
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtEdge(m layout.Move, detailed bool) string {
	if !detailed {
		return string(m.Strategy)
	}
	return fmt.Sprintf("%s\n%.2f,%.2f → %.2f,%.2f", m.Strategy,
		float64(m.Before[0]), float64(m.Before[1]), float64(m.After[0]), float64(m.After[1]))
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag so the SVG scales from a zero origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
