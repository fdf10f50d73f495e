// Package chain renders the collision chain of a layout run as a Graphviz graph.
//
// Each body that took part in a pair becomes a node, ordered by original
// longitude. Each detected pair becomes an edge labelled with the strategy the
// fold used to resolve it; pairs that were left alone are dashed. Moved bodies
// are shaded. The graph is meant for auditing why a glyph ended up where it did.
//
//	dot := chain.ToDOT(res, chain.Options{Detailed: true})
//	svg, err := chain.RenderSVG(ctx, dot)
//
// [RenderSVG] uses the WebAssembly build of Graphviz bundled with
// github.com/goccy/go-graphviz, so no system installation is needed.
package chain
