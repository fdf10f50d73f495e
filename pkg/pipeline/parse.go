package pipeline

import (
	"bytes"

	"github.com/astrostats/astrowheel/pkg/cache"
	"github.com/astrostats/astrowheel/pkg/chart"
	"github.com/astrostats/astrowheel/pkg/errors"
)

// ParseFile loads and validates a chart document. The format follows the
// file extension.
func ParseFile(path string) (*chart.Chart, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	return chart.Load(path)
}

// Parse decodes and validates a chart document held in memory.
func Parse(data []byte, format chart.Format) (*chart.Chart, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidChart, "empty chart document")
	}
	return chart.Decode(bytes.NewReader(data), format)
}

// ChartHash returns the content hash of c's canonical encoding. Two charts
// with the same name, bodies and cusps hash identically regardless of the
// document format they were read from.
func ChartHash(c *chart.Chart) (string, error) {
	data, err := chart.Canonical(c)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode chart")
	}
	return cache.Hash(data), nil
}
