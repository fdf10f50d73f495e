// Package layout computes display longitudes for body glyphs on a chart wheel so
// that symbols drawn around the circle do not overlap.
//
// # Overview
//
// The engine takes raw ecliptic longitudes in canonical body order plus the twelve
// house cusps and returns one [Adjusted] position per body, in the same canonical
// order. Only the display longitude changes. The original longitude, the
// retrograde flag and the house number (computed from the original longitude)
// pass through untouched, so nudging a glyph never changes what it means.
//
// # Algorithm
//
//  1. Sort bodies by longitude, breaking ties by canonical index.
//  2. Walk consecutive sorted bodies as a chain and record a [Pair] wherever the
//     gap is below [Gap]. The last and first sorted bodies are not compared, even
//     though they neighbour each other across 0°.
//  3. Fold over the pairs in detection order. Each step sees the longitudes left
//     by the previous one. A step moves nothing when the two bodies sit in
//     different houses. Otherwise it spreads them to [MinDistance], shifting the
//     pair away from a cusp it would cross. For a house that straddles 0° with the
//     lower body before the seam, it snaps or nudges them instead.
//  4. Every offset is applied with [angle.Longitude.Add], which rolls over at 360.
//  5. Return the working set in canonical body order.
//
// Boundary checks happen in house-relative offsets ([houses.Interval.Offset]), so a
// body rolled from 0.5° to 358.75° is seen as having left a house that starts at 0°.
//
// # Limitations
//
// Resolution is pairwise and order-dependent. Three or more bodies packed within
// [Gap] of each other are not guaranteed to end up fully separated, and a house
// narrower than about [MinDistance] cannot hold a spread pair; the engine then picks
// the variant that stays furthest inside the house and records
// [StrategyBestEffort]. Neither case is an error.
//
// # Usage
//
//	res := layout.New().Run(c.Positions, c.Cusps)
//	for _, p := range res.Positions {
//	    fmt.Println(p.Body, p.Original, "→", p.Display)
//	}
package layout
