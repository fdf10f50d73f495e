// Package angle provides circular arithmetic for ecliptic longitudes.
//
// A [Longitude] is a degree value on a circle of circumference 360, normalized to
// [0, 360). All offsets applied to a longitude go through [Longitude.Add], which
// implements the rollover rule: a negative result gains a full turn and a result
// at or beyond 360 loses one. Callers never subtract raw float64 values across the
// 0°/360° seam; they use [Longitude.Offset] or [Longitude.Distance] instead.
//
// # Signs
//
// The zodiac divides the circle into twelve 30° signs starting at 0° Aries.
// [Longitude.Sign], [Longitude.DegreeInSign] and [Longitude.Minute] expose the
// sign-relative text a wheel renderer prints next to each glyph.
package angle

import (
	"fmt"
	"math"
)

const (
	// FullTurn is the circumference of the ecliptic in degrees.
	FullTurn = 360.0

	// SignWidth is the width of one zodiac sign in degrees.
	SignWidth = 30.0
)

// Longitude is an ecliptic longitude in degrees, normalized to [0, 360).
type Longitude float64

// Normalize wraps any finite degree value into [0, 360).
func Normalize(deg float64) Longitude {
	v := math.Mod(deg, FullTurn)
	if v < 0 {
		v += FullTurn
	}
	// -ε + 360 rounds to 360 in float64.
	if v >= FullTurn {
		v = 0
	}
	return Longitude(v)
}

// Degrees returns the longitude as a plain float64.
func (l Longitude) Degrees() float64 { return float64(l) }

// Add returns l shifted by delta degrees with rollover.
//
// For |delta| < 360 the result is computed with a single add or subtract of a full
// turn, so 358 + 4 yields exactly 2 and 1 - 3 yields exactly 358.
func (l Longitude) Add(delta float64) Longitude {
	v := float64(l) + delta
	switch {
	case v < 0:
		v += FullTurn
	case v >= FullTurn:
		v -= FullTurn
	}
	if v < 0 || v >= FullTurn {
		return Normalize(v)
	}
	return Longitude(v)
}

// Offset returns the forward arc from `from` to l, in [0, 360).
func (l Longitude) Offset(from Longitude) float64 {
	return float64(l.Add(-float64(from)))
}

// Distance returns the shortest arc between l and other, in [0, 180].
func (l Longitude) Distance(other Longitude) float64 {
	d := l.Offset(other)
	if d > FullTurn/2 {
		return FullTurn - d
	}
	return d
}

// Radians converts the longitude to radians.
func (l Longitude) Radians() float64 { return float64(l) * math.Pi / 180 }

// Sign returns the zero-based zodiac sign index (0 = Aries, 11 = Pisces).
func (l Longitude) Sign() Sign { return Sign(int(float64(l)/SignWidth) % 12) }

// DegreeInSign returns the whole degrees elapsed within the current sign (0-29).
func (l Longitude) DegreeInSign() int {
	return int(math.Mod(float64(l), SignWidth))
}

// Minute returns the whole arc minutes past [Longitude.DegreeInSign] (0-59).
func (l Longitude) Minute() int {
	_, frac := math.Modf(math.Mod(float64(l), SignWidth))
	m := int(frac * 60)
	if m > 59 {
		m = 59
	}
	return m
}

// String formats the longitude as sign-relative degrees and minutes, e.g. "12°34' Leo".
func (l Longitude) String() string {
	return fmt.Sprintf("%d°%02d' %s", l.DegreeInSign(), l.Minute(), l.Sign())
}

// Valid reports whether deg is a finite value already normalized to [0, 360).
func Valid(deg float64) bool {
	return !math.IsNaN(deg) && !math.IsInf(deg, 0) && deg >= 0 && deg < FullTurn
}
