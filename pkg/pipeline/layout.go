package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/astrostats/astrowheel/pkg/chart"
	"github.com/astrostats/astrowheel/pkg/layout"
)

// ComputeLayout runs the de-collision engine over c without touching any cache.
func ComputeLayout(c *chart.Chart, opts Options) layout.Result {
	opts.SetLayoutDefaults()
	return opts.Engine().Run(c.Positions, c.Cusps)
}

// MarshalLayout encodes a layout result for caching and hashing.
func MarshalLayout(res layout.Result) ([]byte, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("marshal layout: %w", err)
	}
	return data, nil
}

// UnmarshalLayout decodes a layout result written by [MarshalLayout].
func UnmarshalLayout(data []byte) (layout.Result, error) {
	var res layout.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return layout.Result{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	return res, nil
}

func stats(res layout.Result) Stats {
	return Stats{
		Bodies:    len(res.Positions),
		Pairs:     len(res.Pairs),
		Displaced: res.Displaced(),
	}
}
