package errors

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// maxChartNameLength bounds chart names accepted from files and HTTP bodies.
const maxChartNameLength = 256

// ValidateChartName validates a chart's display name.
// Empty names are allowed; callers substitute a default.
func ValidateChartName(name string) error {
	if len(name) > maxChartNameLength {
		return New(ErrCodeInvalidChart, "chart name too long (max %d characters)", maxChartNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidChart, "chart name contains invalid control characters")
		}
	}
	return nil
}

// ValidateLongitude checks that deg is finite and normalized to [0, 360).
// field names the value in the error (e.g. a body name or "cusps[3]").
func ValidateLongitude(field string, deg float64) error {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return New(ErrCodeInvalidLongitude, "longitude is not finite").WithField(field)
	}
	if deg < 0 || deg >= 360 {
		return New(ErrCodeInvalidLongitude, "longitude %v outside [0, 360)", deg).WithField(field)
	}
	return nil
}

// ValidateCusps checks a house cusp set given in house order: exactly twelve
// normalized longitudes that are not all identical.
func ValidateCusps(cusps []float64) error {
	if len(cusps) != 12 {
		return New(ErrCodeInvalidCusps, "expected 12 house cusps, got %d", len(cusps)).WithField("cusps")
	}
	distinct := false
	for i, c := range cusps {
		if err := ValidateLongitude(cuspField(i), c); err != nil {
			return Wrap(ErrCodeInvalidCusps, err, "house %d", i+1)
		}
		if c != cusps[0] {
			distinct = true
		}
	}
	if !distinct {
		return New(ErrCodeInvalidCusps, "all house cusps are identical").WithField("cusps")
	}
	return nil
}

// ValidatePath validates a user-supplied output path for safety.
// It rejects empty paths, control characters and NUL bytes.
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// cuspField names the i-th cusp of a document's cusps array.
func cuspField(i int) string {
	return fmt.Sprintf("cusps[%d]", i)
}
