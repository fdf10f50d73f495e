package layout

import (
	"math"

	"github.com/astrostats/astrowheel/pkg/angle"
	"github.com/astrostats/astrowheel/pkg/houses"
)

// Strategy names the rule a resolution step applied.
type Strategy string

const (
	// StrategyNone leaves a pair alone because an earlier step already opened
	// the gap.
	StrategyNone Strategy = "none"
	// StrategyNoHouse leaves a pair alone because a longitude matched no house.
	StrategyNoHouse Strategy = "no_house"
	// StrategyCrossHouse leaves a pair alone because the bodies sit in
	// different houses.
	StrategyCrossHouse Strategy = "cross_house"
	// StrategySpread moves the lower body back and the upper body forward.
	StrategySpread Strategy = "spread"
	// StrategyShiftBackward moves both bodies back, away from the end cusp.
	StrategyShiftBackward Strategy = "shift_backward"
	// StrategyShiftForward moves both bodies forward, away from the start cusp.
	StrategyShiftForward Strategy = "shift_forward"
	// StrategyBestEffort applies the least bad variant when no variant fits.
	StrategyBestEffort Strategy = "best_effort"
	// StrategySnap places the pair at fixed offsets after the start cusp of a
	// house that straddles 0°.
	StrategySnap Strategy = "snap"
	// StrategyNudge moves a seam-tail pair apart by a fixed amount.
	StrategyNudge Strategy = "nudge"
)

// Moves reports whether the strategy can change a longitude.
func (s Strategy) Moves() bool {
	switch s {
	case StrategyNone, StrategyNoHouse, StrategyCrossHouse:
		return false
	}
	return true
}

// Step describes how a pair was resolved.
type Step struct {
	Strategy Strategy
	House    int // shared house number; 0 unless both bodies share one
}

// variant is a candidate pair of offsets for the lower and upper body.
type variant struct {
	strategy     Strategy
	lower, upper float64
}

// Resolve separates one pair against the cusps and returns the new longitudes.
// lower is the body that sorted first. Positions outside a shared house come back
// unchanged.
func (e *Engine) Resolve(cusps houses.System, lower, upper angle.Longitude) (angle.Longitude, angle.Longitude, Step) {
	hl, okl := cusps.HouseOf(lower)
	hu, oku := cusps.HouseOf(upper)
	if !okl || !oku {
		return lower, upper, Step{Strategy: StrategyNoHouse}
	}
	if hl.Number != hu.Number {
		return lower, upper, Step{Strategy: StrategyCrossHouse}
	}

	var v variant
	if hl.InTail(lower) {
		v = e.seam(hl, lower, upper)
	} else {
		v = e.conventional(hl, lower, upper)
	}
	if v.strategy == StrategySnap {
		return hl.Start.Add(SnapLower), hl.Start.Add(SnapUpper), Step{Strategy: v.strategy, House: hl.Number}
	}
	return lower.Add(v.lower), upper.Add(v.upper), Step{Strategy: v.strategy, House: hl.Number}
}

// seam handles a house that wraps past 0° when the lower body is still before
// the seam. A pair close to the start cusp is snapped to fixed offsets from it;
// otherwise both bodies are nudged apart.
func (e *Engine) seam(iv houses.Interval, lower, upper angle.Longitude) variant {
	if math.Min(iv.Offset(lower), iv.Offset(upper)) < SnapThreshold {
		return variant{strategy: StrategySnap}
	}
	return variant{strategy: StrategyNudge, lower: -Nudge, upper: Nudge}
}

// conventional spreads a pair to the target separation inside its house. The
// symmetric spread is tried first, then a shift away from whichever cusp it
// crosses. When no variant fits, the one whose worst body sits furthest inside
// the house wins.
func (e *Engine) conventional(iv houses.Interval, lower, upper angle.Longitude) variant {
	ol, ou := iv.Offset(lower), iv.Offset(upper)
	delta := math.Abs(ou - ol)
	// A pair already minDistance apart is never pulled together.
	if delta >= e.gap || delta >= e.minDistance {
		return variant{strategy: StrategyNone}
	}

	adj := (e.minDistance - delta) / 2
	span := iv.Span()
	candidates := [3]variant{
		{strategy: StrategySpread, lower: -adj, upper: adj},
		{strategy: StrategyShiftBackward, lower: -2 * adj, upper: -adj},
		{strategy: StrategyShiftForward, lower: adj, upper: 2 * adj},
	}

	choice := candidates[0]
	switch {
	case !inside(ou+adj, span):
		choice = candidates[1]
	case !inside(ol-adj, span):
		choice = candidates[2]
	}
	if fits(choice, ol, ou, span) {
		return choice
	}
	for _, c := range candidates {
		if fits(c, ol, ou, span) {
			return c
		}
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if margin(c, ol, ou, span) > margin(best, ol, ou, span) {
			best = c
		}
	}
	best.strategy = StrategyBestEffort
	return best
}

// inside reports whether a house offset lies in [0, span).
func inside(offset, span float64) bool {
	return offset >= 0 && offset < span
}

func fits(v variant, ol, ou, span float64) bool {
	return inside(ol+v.lower, span) && inside(ou+v.upper, span)
}

// margin is the smallest distance from either moved body to either cusp.
// Negative values mean a body left the house.
func margin(v variant, ol, ou, span float64) float64 {
	nl, nu := ol+v.lower, ou+v.upper
	return min(nl, nu, span-nl, span-nu)
}
