package chart

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/astrostats/astrowheel/pkg/angle"
	"github.com/astrostats/astrowheel/pkg/errors"
)

// Format names a chart document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// document is the on-disk shape shared by JSON and TOML.
type document struct {
	Name       string        `json:"name" toml:"name"`
	Bodies     []rawPosition `json:"bodies,omitempty" toml:"bodies,omitempty"`
	Longitudes []float64     `json:"longitudes,omitempty" toml:"longitudes,omitempty"`
	Retrograde []string      `json:"retrograde,omitempty" toml:"retrograde,omitempty"`
	Cusps      []float64     `json:"cusps" toml:"cusps"`
}

type rawPosition struct {
	Body       string  `json:"body" toml:"body"`
	Longitude  float64 `json:"longitude" toml:"longitude"`
	Retrograde bool    `json:"retrograde,omitempty" toml:"retrograde,omitempty"`
}

// FormatFromPath infers the document format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported chart file %q (want .json or .toml)", filepath.Base(path))
}

// Load reads and validates a chart file. The format follows the file extension.
// When the document has no name, the file's base name is used.
func Load(path string) (*Chart, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "chart file %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	c, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, err
	}
	if c.Name == "" {
		c.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return c, nil
}

// Decode reads a chart document in the given format and validates it.
func Decode(r io.Reader, format Format) (*Chart, error) {
	var doc document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidChart, err, "decode json chart")
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidChart, err, "decode toml chart")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported chart format %q", format)
	}
	return doc.chart()
}

func (d document) chart() (*Chart, error) {
	if len(d.Bodies) > 0 && len(d.Longitudes) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidChart, "use either bodies or longitudes, not both")
	}

	if len(d.Longitudes) > 0 {
		c, err := FromLongitudes(d.Name, d.Longitudes, d.Cusps)
		if err != nil {
			return nil, err
		}
		for _, name := range d.Retrograde {
			b, err := ParseBody(name)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidChart, err, "retrograde list")
			}
			idx := int(b)
			if idx >= len(c.Positions) {
				return nil, errors.New(errors.ErrCodeInvalidChart, "retrograde body %s has no longitude", b)
			}
			c.Positions[idx].Retrograde = true
		}
		return c, nil
	}

	if len(d.Retrograde) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidChart, "retrograde list requires longitudes; set retrograde per body instead")
	}

	positions := make([]Position, len(d.Bodies))
	for i, rp := range d.Bodies {
		b, err := ParseBody(rp.Body)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidChart, err, "bodies[%d]", i)
		}
		if err := errors.ValidateLongitude(b.String(), rp.Longitude); err != nil {
			return nil, err
		}
		positions[i] = Position{Body: b, Longitude: angle.Longitude(rp.Longitude), Retrograde: rp.Retrograde}
	}
	return New(d.Name, positions, d.Cusps)
}

// Encode writes c in the given format using the named-bodies layout.
func Encode(w io.Writer, c *Chart, format Format) error {
	doc := document{Name: c.Name, Cusps: make([]float64, len(c.Cusps))}
	for i, l := range c.Cusps {
		doc.Cusps[i] = float64(l)
	}
	for _, p := range c.Positions {
		doc.Bodies = append(doc.Bodies, rawPosition{
			Body:       p.Body.String(),
			Longitude:  float64(p.Longitude),
			Retrograde: p.Retrograde,
		})
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatTOML:
		return toml.NewEncoder(w).Encode(doc)
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported chart format %q", format)
}

// Canonical returns a stable JSON encoding of c, suitable for content hashing.
func Canonical(c *Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, c, FormatJSON); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
