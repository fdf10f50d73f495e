package angle

import (
	"math"
	"testing"
)

func TestAdd(t *testing.T) {
	tests := []struct {
		name  string
		l     Longitude
		delta float64
		want  Longitude
	}{
		{"forward inside", 10, 5, 15},
		{"backward inside", 10, -5, 5},
		{"forward across seam", 358, 4, 2},
		{"backward across seam", 1, -3, 358},
		{"lands on zero", 356, 4, 0},
		{"exactly full turn", 0, 360, 0},
		{"large negative", 10, -725, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.l.Add(tt.delta); got != tt.want {
				t.Errorf("%v.Add(%v) = %v, want %v", tt.l, tt.delta, got, tt.want)
			}
		})
	}
}

func TestAddTinyNegativeNeverReturnsFullTurn(t *testing.T) {
	got := Longitude(0).Add(-1e-17)
	if got < 0 || got >= FullTurn {
		t.Fatalf("Add(-1e-17) = %v, want value in [0,360)", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   float64
		want Longitude
	}{
		{0, 0},
		{359.5, 359.5},
		{360, 0},
		{-30, 330},
		{725, 5},
		{-1e-15, 0},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); math.Abs(float64(got-tt.want)) > 1e-9 {
			t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOffsetAndDistance(t *testing.T) {
	tests := []struct {
		name         string
		l, from      Longitude
		wantOffset   float64
		wantDistance float64
	}{
		{"same", 10, 10, 0, 0},
		{"ahead", 20, 10, 10, 10},
		{"behind", 10, 20, 350, 10},
		{"across seam", 1, 355, 6, 6},
		{"opposite", 180, 0, 180, 180},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.l.Offset(tt.from); math.Abs(got-tt.wantOffset) > 1e-9 {
				t.Errorf("Offset = %v, want %v", got, tt.wantOffset)
			}
			if got := tt.l.Distance(tt.from); math.Abs(got-tt.wantDistance) > 1e-9 {
				t.Errorf("Distance = %v, want %v", got, tt.wantDistance)
			}
		})
	}
}

func TestSignText(t *testing.T) {
	l := Longitude(132.5725) // 12°34' Leo
	if l.Sign() != Leo {
		t.Errorf("Sign() = %v, want Leo", l.Sign())
	}
	if l.DegreeInSign() != 12 {
		t.Errorf("DegreeInSign() = %d, want 12", l.DegreeInSign())
	}
	if l.Minute() != 34 {
		t.Errorf("Minute() = %d, want 34", l.Minute())
	}
	if got := l.String(); got != "12°34' Leo" {
		t.Errorf("String() = %q", got)
	}
	if Longitude(359.99).Sign() != Pisces {
		t.Errorf("359.99 should be Pisces")
	}
}

func TestValid(t *testing.T) {
	for _, v := range []float64{0, 12.5, 359.999} {
		if !Valid(v) {
			t.Errorf("Valid(%v) = false", v)
		}
	}
	for _, v := range []float64{-0.1, 360, math.NaN(), math.Inf(1)} {
		if Valid(v) {
			t.Errorf("Valid(%v) = true", v)
		}
	}
}
