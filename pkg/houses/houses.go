// Package houses models the twelve house cusps of a chart as circular intervals.
//
// Cusps are kept in house order (1 through 12), not longitude order. House n spans
// from cusp n up to, but not including, cusp n+1, with house 12 closing on cusp 1.
// Exactly one house in a well-formed set has a start longitude numerically greater
// than its end: that house straddles the 0°/360° seam. [Interval.Contains] is the
// single place that branches on this case; every other lookup goes through it.
package houses

import (
	"github.com/astrostats/astrowheel/pkg/angle"
)

// Count is the number of houses in a chart.
const Count = 12

// Cusp is the boundary at which a house begins.
type Cusp struct {
	Number    int             `json:"number" toml:"number"`
	Longitude angle.Longitude `json:"longitude" toml:"longitude"`
}

// Interval is the arc covered by one house.
type Interval struct {
	Number int
	Start  angle.Longitude
	End    angle.Longitude
}

// Wraps reports whether the interval crosses the 0°/360° seam.
func (iv Interval) Wraps() bool { return iv.Start > iv.End }

// Span returns the interval's angular width in degrees.
func (iv Interval) Span() float64 { return iv.End.Offset(iv.Start) }

// Contains reports whether l lies in [Start, End).
func (iv Interval) Contains(l angle.Longitude) bool {
	if iv.Wraps() {
		return l >= iv.Start || l < iv.End
	}
	return l >= iv.Start && l < iv.End
}

// Offset returns how far l lies past the interval's start, measured forward.
// For a contained longitude the result is in [0, Span).
func (iv Interval) Offset(l angle.Longitude) float64 { return l.Offset(iv.Start) }

// InTail reports whether l lies in the part of a wrapping interval that precedes
// the seam, i.e. in [Start, 360). It is always false for non-wrapping intervals.
func (iv Interval) InTail(l angle.Longitude) bool {
	return iv.Wraps() && l >= iv.Start
}

// System is a full set of twelve cusps indexed by house number minus one.
type System [Count]angle.Longitude

// FromLongitudes builds a System from cusp longitudes given in house order.
// Values are normalized into [0, 360). Callers validate the count beforehand.
func FromLongitudes(lons []float64) System {
	var s System
	for i := 0; i < Count && i < len(lons); i++ {
		s[i] = angle.Normalize(lons[i])
	}
	return s
}

// FromCusps builds a System from numbered cusps. Cusps with numbers outside
// 1..12 are ignored.
func FromCusps(cusps []Cusp) System {
	var s System
	for _, c := range cusps {
		if c.Number >= 1 && c.Number <= Count {
			s[c.Number-1] = angle.Normalize(float64(c.Longitude))
		}
	}
	return s
}

// Cusps returns the system as numbered cusps in house order.
func (s System) Cusps() []Cusp {
	out := make([]Cusp, Count)
	for i, l := range s {
		out[i] = Cusp{Number: i + 1, Longitude: l}
	}
	return out
}

// Ascendant returns the cusp of the first house.
func (s System) Ascendant() angle.Longitude { return s[0] }

// House returns the interval for house n (1..12). Out-of-range numbers wrap.
func (s System) House(n int) Interval {
	i := ((n-1)%Count + Count) % Count
	return Interval{
		Number: i + 1,
		Start:  s[i],
		End:    s[(i+1)%Count],
	}
}

// Next returns the house that follows house n, wrapping from 12 to 1.
func (s System) Next(n int) Interval { return s.House(n + 1) }

// HouseOf returns the house containing l. The second result is false only for
// degenerate systems, such as twelve identical cusps, where no interval matches.
func (s System) HouseOf(l angle.Longitude) (Interval, bool) {
	for n := 1; n <= Count; n++ {
		if iv := s.House(n); iv.Contains(l) {
			return iv, true
		}
	}
	return Interval{}, false
}

// Widths returns the span of each house in house order.
func (s System) Widths() [Count]float64 {
	var w [Count]float64
	for n := 1; n <= Count; n++ {
		w[n-1] = s.House(n).Span()
	}
	return w
}

// Equal returns a system of twelve 30° houses starting at asc.
func Equal(asc angle.Longitude) System {
	var s System
	for i := range s {
		s[i] = asc.Add(float64(i) * 30)
	}
	return s
}
