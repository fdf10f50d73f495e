package angle

// Sign is a zodiac sign index, 0 (Aries) through 11 (Pisces).
type Sign int

const (
	Aries Sign = iota
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

var signNames = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

var signGlyphs = [12]string{
	"♈", "♉", "♊", "♋", "♌", "♍", "♎", "♏", "♐", "♑", "♒", "♓",
}

// String returns the sign's English name.
func (s Sign) String() string {
	if s < 0 || int(s) >= len(signNames) {
		return "Unknown"
	}
	return signNames[s]
}

// Glyph returns the Unicode symbol for the sign.
func (s Sign) Glyph() string {
	if s < 0 || int(s) >= len(signGlyphs) {
		return "?"
	}
	return signGlyphs[s]
}

// Start returns the longitude at which the sign begins.
func (s Sign) Start() Longitude { return Longitude(float64(s) * SignWidth) }
