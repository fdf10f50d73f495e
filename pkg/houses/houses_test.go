package houses

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/astrostats/astrowheel/pkg/angle"
)

func TestIntervalContains(t *testing.T) {
	tests := []struct {
		name string
		iv   Interval
		l    angle.Longitude
		want bool
	}{
		{"plain inside", Interval{Start: 0, End: 30}, 10, true},
		{"plain start inclusive", Interval{Start: 0, End: 30}, 0, true},
		{"plain end exclusive", Interval{Start: 0, End: 30}, 30, false},
		{"plain outside", Interval{Start: 0, End: 30}, 200, false},
		{"wrap tail", Interval{Start: 355, End: 5}, 357, true},
		{"wrap head", Interval{Start: 355, End: 5}, 1, true},
		{"wrap end exclusive", Interval{Start: 355, End: 5}, 5, false},
		{"wrap outside", Interval{Start: 355, End: 5}, 180, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.iv.Contains(tt.l); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.l, got, tt.want)
			}
		})
	}
}

func TestIntervalSpanAndOffset(t *testing.T) {
	iv := Interval{Start: 355, End: 5}
	if !iv.Wraps() {
		t.Fatal("355→5 should wrap")
	}
	if got := iv.Span(); math.Abs(got-10) > 1e-9 {
		t.Errorf("Span() = %v, want 10", got)
	}
	if got := iv.Offset(1); math.Abs(got-6) > 1e-9 {
		t.Errorf("Offset(1) = %v, want 6", got)
	}
	if !iv.InTail(357) || iv.InTail(1) {
		t.Error("InTail should hold for 357 and not for 1")
	}
	if (Interval{Start: 0, End: 30}).InTail(10) {
		t.Error("non-wrapping interval has no tail")
	}
}

func TestHouseOfWrapsFromTwelveToOne(t *testing.T) {
	s := System{355, 5, 35, 65, 95, 125, 155, 185, 215, 245, 275, 305}

	tests := []struct {
		l    angle.Longitude
		want int
	}{
		{357, 1},
		{1, 1},
		{5, 2},
		{100, 5},
		{310, 12},
		{354.9, 12},
	}
	for _, tt := range tests {
		iv, ok := s.HouseOf(tt.l)
		if !ok {
			t.Fatalf("HouseOf(%v) found nothing", tt.l)
		}
		if iv.Number != tt.want {
			t.Errorf("HouseOf(%v) = %d, want %d", tt.l, iv.Number, tt.want)
		}
	}

	if next := s.Next(12); next.Number != 1 || next.Start != 355 {
		t.Errorf("Next(12) = %+v, want house 1 at 355", next)
	}
}

func TestHouseOfDegenerate(t *testing.T) {
	var s System // all zero
	if _, ok := s.HouseOf(10); ok {
		t.Error("identical cusps should not contain anything")
	}
}

func TestHouseOfAgreesWithContains(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for trial := 0; trial < 200; trial++ {
		s := randomSystem(r)
		for k := 0; k < 50; k++ {
			l := angle.Longitude(r.Float64() * 360)
			iv, ok := s.HouseOf(l)
			if !ok {
				t.Fatalf("system %v: no house for %v", s, l)
			}
			matches := 0
			for n := 1; n <= Count; n++ {
				if s.House(n).Contains(l) {
					matches++
				}
			}
			if matches != 1 {
				t.Fatalf("system %v: %v contained by %d houses", s, l, matches)
			}
			if !iv.Contains(l) {
				t.Fatalf("HouseOf returned a house that does not contain %v", l)
			}
		}
	}
}

func TestWidthsSumToFullTurn(t *testing.T) {
	s := System{355, 5, 35, 65, 95, 125, 155, 185, 215, 245, 275, 305}
	sum := 0.0
	for _, w := range s.Widths() {
		sum += w
	}
	if math.Abs(sum-360) > 1e-9 {
		t.Errorf("widths sum = %v, want 360", sum)
	}
}

func TestFromCuspsRoundTrip(t *testing.T) {
	s := Equal(100)
	if got := FromCusps(s.Cusps()); got != s {
		t.Errorf("FromCusps(Cusps()) = %v, want %v", got, s)
	}
	if s.Ascendant() != 100 {
		t.Errorf("Ascendant() = %v", s.Ascendant())
	}
}

// randomSystem returns twelve strictly increasing (circularly) cusps with random
// widths, starting at a random ascendant.
func randomSystem(r *rand.Rand) System {
	var widths [Count]float64
	total := 0.0
	for i := range widths {
		widths[i] = 5 + r.Float64()*40
		total += widths[i]
	}
	asc := angle.Longitude(r.Float64() * 360)
	var s System
	acc := 0.0
	for i := range s {
		s[i] = asc.Add(acc)
		acc += widths[i] / total * 360
	}
	return s
}
