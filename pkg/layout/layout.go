package layout

import (
	"cmp"
	"slices"

	"github.com/astrostats/astrowheel/pkg/angle"
	"github.com/astrostats/astrowheel/pkg/chart"
	"github.com/astrostats/astrowheel/pkg/houses"
)

const (
	// Gap is the angular distance below which two glyphs collide.
	Gap = 3.5

	// MinDistance is the separation a colliding pair is spread to.
	MinDistance = 4.0

	// SnapThreshold is how close to the start cusp of a seam-straddling house a
	// pair must be before it is snapped to fixed offsets from that cusp.
	SnapThreshold = 4.0

	// SnapLower and SnapUpper are the fixed offsets from the start cusp used
	// when snapping.
	SnapLower = 2.0
	SnapUpper = 6.0

	// Nudge is how far each body of a seam-tail pair moves when not snapped.
	Nudge = 2.0
)

// Pair is two bodies that are adjacent in longitude order and closer than the gap.
// Lower is the body that sorted first.
type Pair struct {
	Lower chart.Body `json:"lower"`
	Upper chart.Body `json:"upper"`
}

// Adjusted is one body's output position.
type Adjusted struct {
	Body       chart.Body      `json:"body"`
	Original   angle.Longitude `json:"original"`
	Display    angle.Longitude `json:"display"`
	Retrograde bool            `json:"retrograde,omitempty"`
	House      int             `json:"house"` // from Original; 0 when no house matches
}

// Moved reports whether the display longitude differs from the original.
func (a Adjusted) Moved() bool { return a.Display != a.Original }

// Move records one step of the resolution fold.
type Move struct {
	Pair     Pair               `json:"pair"`
	Strategy Strategy           `json:"strategy"`
	House    int                `json:"house,omitempty"`
	Before   [2]angle.Longitude `json:"before"`
	After    [2]angle.Longitude `json:"after"`
}

// Result is the complete output of a layout run.
type Result struct {
	Positions []Adjusted `json:"positions"`
	Pairs     []Pair     `json:"pairs,omitempty"`
	Moves     []Move     `json:"moves,omitempty"`
}

// Displaced returns how many bodies ended up away from their original longitude.
func (r Result) Displaced() int {
	n := 0
	for _, p := range r.Positions {
		if p.Moved() {
			n++
		}
	}
	return n
}

// Engine runs the layout with a given gap and target separation.
// An Engine holds no mutable state and is safe for concurrent use.
type Engine struct {
	gap         float64
	minDistance float64
}

// Option configures an [Engine].
type Option func(*Engine)

// WithGap overrides the collision threshold. Non-positive values are ignored.
func WithGap(deg float64) Option {
	return func(e *Engine) {
		if deg > 0 {
			e.gap = deg
		}
	}
}

// WithMinDistance overrides the separation target. Non-positive values are ignored.
func WithMinDistance(deg float64) Option {
	return func(e *Engine) {
		if deg > 0 {
			e.minDistance = deg
		}
	}
}

// New returns an engine using [Gap] and [MinDistance] unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{gap: Gap, minDistance: MinDistance}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Gap returns the engine's collision threshold.
func (e *Engine) Gap() float64 { return e.gap }

// MinDistance returns the engine's separation target.
func (e *Engine) MinDistance() float64 { return e.minDistance }

// Adjust runs the default engine and returns adjusted positions in canonical order.
func Adjust(positions []chart.Position, cusps houses.System) []Adjusted {
	return New().Run(positions, cusps).Positions
}

// Run lays out positions against cusps. The input slice is not modified.
func (e *Engine) Run(positions []chart.Position, cusps houses.System) Result {
	work := canonical(positions)

	display := make([]angle.Longitude, len(work))
	for i, p := range work {
		display[i] = p.Longitude
	}

	links := e.detect(work)
	res := Result{
		Positions: make([]Adjusted, len(work)),
		Pairs:     make([]Pair, len(links)),
		Moves:     make([]Move, 0, len(links)),
	}

	for k, l := range links {
		pair := Pair{Lower: work[l.lower].Body, Upper: work[l.upper].Body}
		res.Pairs[k] = pair

		before := [2]angle.Longitude{display[l.lower], display[l.upper]}
		lo, hi, step := e.Resolve(cusps, before[0], before[1])
		display[l.lower], display[l.upper] = lo, hi

		res.Moves = append(res.Moves, Move{
			Pair:     pair,
			Strategy: step.Strategy,
			House:    step.House,
			Before:   before,
			After:    [2]angle.Longitude{lo, hi},
		})
	}

	for i, p := range work {
		house := 0
		if iv, ok := cusps.HouseOf(p.Longitude); ok {
			house = iv.Number
		}
		res.Positions[i] = Adjusted{
			Body:       p.Body,
			Original:   p.Longitude,
			Display:    display[i],
			Retrograde: p.Retrograde,
			House:      house,
		}
	}
	return res
}

// Detect returns the colliding pairs found by the chain scan, in detection order.
func (e *Engine) Detect(positions []chart.Position) []Pair {
	work := canonical(positions)
	links := e.detect(work)
	out := make([]Pair, len(links))
	for k, l := range links {
		out[k] = Pair{Lower: work[l.lower].Body, Upper: work[l.upper].Body}
	}
	return out
}

// link is a detected pair as indexes into the canonical working slice.
type link struct{ lower, upper int }

// detect sorts by longitude and scans consecutive entries. The scan is a chain,
// not a ring: the maximum and minimum longitudes are never paired.
func (e *Engine) detect(work []chart.Position) []link {
	order := make([]int, len(work))
	for i := range order {
		order[i] = i
	}
	// work is in canonical order, so a stable sort breaks ties by body index.
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(work[a].Longitude, work[b].Longitude)
	})

	var links []link
	for k := 0; k+1 < len(order); k++ {
		i, j := order[k], order[k+1]
		if float64(work[j].Longitude-work[i].Longitude) < e.gap {
			links = append(links, link{lower: i, upper: j})
		}
	}
	return links
}

// canonical returns a copy of positions stably sorted by body index.
func canonical(positions []chart.Position) []chart.Position {
	work := slices.Clone(positions)
	slices.SortStableFunc(work, func(a, b chart.Position) int {
		return cmp.Compare(a.Body, b.Body)
	})
	return work
}
