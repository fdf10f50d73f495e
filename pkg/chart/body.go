package chart

import (
	"fmt"
	"strings"
)

// Body identifies one of the celestial bodies drawn on the wheel. Its integer value
// is the canonical index used to align input and output arrays.
type Body int

// Canonical body order. Input longitudes arrive in this order and adjusted
// longitudes are returned in it.
const (
	Sun Body = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
	SouthNode
	NorthNode
	Chiron
)

// BodyCount is the number of bodies in the canonical order.
const BodyCount = int(Chiron) + 1

var bodyNames = [BodyCount]string{
	"sun", "moon", "mercury", "venus", "mars", "jupiter", "saturn",
	"uranus", "neptune", "pluto", "south_node", "north_node", "chiron",
}

var bodyGlyphs = [BodyCount]string{
	"☉", "☽", "☿", "♀", "♂", "♃", "♄", "♅", "♆", "♇", "☋", "☊", "⚷",
}

// Bodies returns all bodies in canonical order.
func Bodies() []Body {
	out := make([]Body, BodyCount)
	for i := range out {
		out[i] = Body(i)
	}
	return out
}

// Valid reports whether b is within the canonical range.
func (b Body) Valid() bool { return b >= 0 && int(b) < BodyCount }

// String returns the body's key name (e.g. "north_node").
func (b Body) String() string {
	if !b.Valid() {
		return fmt.Sprintf("body(%d)", int(b))
	}
	return bodyNames[b]
}

// Glyph returns the astronomical symbol for the body.
func (b Body) Glyph() string {
	if !b.Valid() {
		return "?"
	}
	return bodyGlyphs[b]
}

// ParseBody resolves a key name such as "Mercury" or "north-node".
func ParseBody(name string) (Body, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	key = strings.ReplaceAll(key, " ", "_")
	for i, n := range bodyNames {
		if n == key {
			return Body(i), nil
		}
	}
	return 0, fmt.Errorf("unknown body %q", name)
}

// MarshalText encodes the body as its key name.
func (b Body) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("invalid body %d", int(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText decodes a key name.
func (b *Body) UnmarshalText(text []byte) error {
	v, err := ParseBody(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}
