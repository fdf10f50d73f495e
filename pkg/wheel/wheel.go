// Package wheel turns a layout result into screen placements on a chart wheel.
//
// Angles follow the on-screen convention of the chart view: the ascendant sits on
// the left (angle π) and longitude increases counter-clockwise. Each body gets a
// stack of labels running inward from its glyph: degree, sign, minute and an
// optional retrograde marker. All labels are placed at the body's display
// longitude, but their text is derived from the original longitude.
package wheel

import (
	"fmt"
	"math"

	"github.com/astrostats/astrowheel/pkg/angle"
	"github.com/astrostats/astrowheel/pkg/houses"
	"github.com/astrostats/astrowheel/pkg/layout"
)

// DefaultSize is the canvas edge length used when Options.Size is unset.
const DefaultSize = 600.0

// Ring proportions relative to the canvas and outer radius.
const (
	outerFactor      = 0.45
	glyphFactor      = 0.46
	glyphInset       = 20.0
	innerFactor      = 0.34
	houseBandFactor  = 0.41
	symbolDivisor    = 20.0
	retrogradeFactor = 3.5
)

// Ring identifies a label position relative to a body glyph.
type Ring int

const (
	RingGlyph Ring = iota
	RingDegree
	RingSign
	RingMinute
	RingRetrograde
)

var ringNames = [...]string{"glyph", "degree", "sign", "minute", "retrograde"}

func (r Ring) String() string {
	if r < 0 || int(r) >= len(ringNames) {
		return fmt.Sprintf("ring(%d)", int(r))
	}
	return ringNames[r]
}

// Point is a screen coordinate with y growing downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Label is one piece of text drawn for a body.
type Label struct {
	Ring   Ring    `json:"-"`
	Kind   string  `json:"ring"`
	Text   string  `json:"text"`
	Radius float64 `json:"radius"`
	At     Point   `json:"at"`
}

// Placement is a body's position on the wheel.
type Placement struct {
	Body       string          `json:"body"`
	Glyph      string          `json:"glyph"`
	Original   angle.Longitude `json:"original"`
	Display    angle.Longitude `json:"display"`
	House      int             `json:"house"`
	Retrograde bool            `json:"retrograde,omitempty"`
	Angle      float64         `json:"angle"`      // at Display
	TrueAngle  float64         `json:"true_angle"` // at Original
	Labels     []Label         `json:"labels"`
}

// Label returns the label on the given ring, if present.
func (p Placement) Label(r Ring) (Label, bool) {
	for _, l := range p.Labels {
		if l.Ring == r {
			return l, true
		}
	}
	return Label{}, false
}

// HouseLine is a cusp line plus the house number drawn midway to the next cusp.
type HouseLine struct {
	Number  int             `json:"number"`
	Cusp    angle.Longitude `json:"cusp"`
	Width   float64         `json:"width"`
	Angle   float64         `json:"angle"`
	Inner   Point           `json:"inner"`
	Outer   Point           `json:"outer"`
	LabelAt Point           `json:"label_at"`
}

// SignMark is the boundary at which a zodiac sign begins.
type SignMark struct {
	Sign    string  `json:"sign"`
	Glyph   string  `json:"glyph"`
	Angle   float64 `json:"angle"`
	Inner   Point   `json:"inner"`
	Outer   Point   `json:"outer"`
	LabelAt Point   `json:"label_at"`
}

// Layout is everything needed to draw a wheel.
type Layout struct {
	Size        float64     `json:"size"`
	Center      Point       `json:"center"`
	Radius      float64     `json:"radius"`
	InnerRadius float64     `json:"inner_radius"`
	BandRadius  float64     `json:"band_radius"`
	GlyphRadius float64     `json:"glyph_radius"`
	SymbolSize  float64     `json:"symbol_size"`
	Ascendant   float64     `json:"ascendant"`
	Houses      []HouseLine `json:"houses"`
	Signs       []SignMark  `json:"signs"`
	Bodies      []Placement `json:"bodies"`
}

// Options controls wheel dimensions.
type Options struct {
	Size float64
}

// ScreenAngle maps a longitude to a screen angle in [0, 2π) for a wheel whose
// ascendant is drawn on the left.
func ScreenAngle(l, asc angle.Longitude) float64 {
	theta := 2*math.Pi - (float64(l)-float64(asc))*math.Pi/180 + math.Pi
	theta = math.Mod(theta, 2*math.Pi)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	return theta
}

// Polar returns the point at radius r and angle theta from center.
func Polar(center Point, r, theta float64) Point {
	return Point{X: center.X + r*math.Cos(theta), Y: center.Y + r*math.Sin(theta)}
}

// Build places every adjusted body of res on a wheel drawn with cusps.
func Build(res layout.Result, cusps houses.System, opts Options) Layout {
	size := opts.Size
	if size <= 0 {
		size = DefaultSize
	}
	radius := size * outerFactor
	w := Layout{
		Size:        size,
		Center:      Point{X: size / 2, Y: size / 2},
		Radius:      radius,
		InnerRadius: radius * innerFactor,
		BandRadius:  radius * houseBandFactor,
		GlyphRadius: size*glyphFactor - glyphInset,
		SymbolSize:  size / symbolDivisor,
	}
	asc := cusps.Ascendant()
	w.Ascendant = ScreenAngle(asc, asc)

	widths := cusps.Widths()
	labelRadius := (w.InnerRadius + w.BandRadius) / 2
	for n := 1; n <= houses.Count; n++ {
		iv := cusps.House(n)
		theta := ScreenAngle(iv.Start, asc)
		mid := ScreenAngle(iv.Start.Add(widths[n-1]/2), asc)
		w.Houses = append(w.Houses, HouseLine{
			Number:  n,
			Cusp:    iv.Start,
			Width:   widths[n-1],
			Angle:   theta,
			Inner:   Polar(w.Center, w.InnerRadius, theta),
			Outer:   Polar(w.Center, w.Radius, theta),
			LabelAt: Polar(w.Center, labelRadius, mid),
		})
	}

	for s := angle.Aries; s <= angle.Pisces; s++ {
		theta := ScreenAngle(s.Start(), asc)
		mid := ScreenAngle(s.Start().Add(angle.SignWidth/2), asc)
		w.Signs = append(w.Signs, SignMark{
			Sign:    s.String(),
			Glyph:   s.Glyph(),
			Angle:   theta,
			Inner:   Polar(w.Center, w.Radius, theta),
			Outer:   Polar(w.Center, w.Radius+w.SymbolSize, theta),
			LabelAt: Polar(w.Center, w.Radius+w.SymbolSize/2, mid),
		})
	}

	for _, p := range res.Positions {
		w.Bodies = append(w.Bodies, w.place(p, asc))
	}
	return w
}

func (w Layout) place(p layout.Adjusted, asc angle.Longitude) Placement {
	theta := ScreenAngle(p.Display, asc)
	r, s := w.GlyphRadius, w.SymbolSize

	label := func(ring Ring, text string, radius float64) Label {
		return Label{Ring: ring, Kind: ring.String(), Text: text, Radius: radius, At: Polar(w.Center, radius, theta)}
	}
	labels := []Label{
		label(RingGlyph, p.Body.Glyph(), r),
		label(RingDegree, fmt.Sprintf("%dº", p.Original.DegreeInSign()), r-s),
		label(RingSign, p.Original.Sign().Glyph(), r-2*s),
		label(RingMinute, fmt.Sprintf("%d'", p.Original.Minute()), r-3*s),
	}
	if p.Retrograde {
		labels = append(labels, label(RingRetrograde, "℞", r-retrogradeFactor*s))
	}

	return Placement{
		Body:       p.Body.String(),
		Glyph:      p.Body.Glyph(),
		Original:   p.Original,
		Display:    p.Display,
		House:      p.House,
		Retrograde: p.Retrograde,
		Angle:      theta,
		TrueAngle:  ScreenAngle(p.Original, asc),
		Labels:     labels,
	}
}
