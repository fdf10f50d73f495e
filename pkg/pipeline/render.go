package pipeline

import (
	"context"
	"fmt"

	"github.com/astrostats/astrowheel/pkg/chart"
	"github.com/astrostats/astrowheel/pkg/layout"
	"github.com/astrostats/astrowheel/pkg/render"
	"github.com/astrostats/astrowheel/pkg/render/chain"
	"github.com/astrostats/astrowheel/pkg/render/sink"
	"github.com/astrostats/astrowheel/pkg/wheel"
)

// Render generates output artifacts in the requested formats.
// The wheel is only built when a format needs it.
func Render(ctx context.Context, c *chart.Chart, res layout.Result, opts Options) (map[string][]byte, error) {
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()

	var (
		w     wheel.Layout
		built bool
	)
	buildWheel := func() wheel.Layout {
		if !built {
			w = wheel.Build(res, c.Cusps, wheel.Options{Size: opts.Size})
			built = true
		}
		return w
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch render.Format(format) {
		case render.FormatSVG:
			data = sink.RenderSVG(buildWheel(), buildSVGOptions(c, opts)...)
		case render.FormatJSON:
			data, err = sink.RenderJSON(res,
				sink.WithJSONName(c.Name),
				sink.WithJSONEngine(opts.Engine()),
				sink.WithJSONWheel(buildWheel()))
		case render.FormatDOT:
			data = []byte(chain.ToDOT(res, chainOptions(opts)))
		case render.FormatChain:
			data, err = chain.RenderSVG(ctx, chain.ToDOT(res, chainOptions(opts)))
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSVGOptions builds wheel SVG rendering options.
func buildSVGOptions(c *chart.Chart, opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption

	title := opts.Title
	if title == "" {
		title = c.Name
	}
	if title != "" {
		svgOpts = append(svgOpts, sink.WithTitle(title))
	}
	if opts.Leaders {
		svgOpts = append(svgOpts, sink.WithLeaders())
	}
	return svgOpts
}

func chainOptions(opts Options) chain.Options {
	return chain.Options{Detailed: opts.Detailed, All: opts.Detailed}
}
