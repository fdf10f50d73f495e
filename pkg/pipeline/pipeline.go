// Package pipeline provides the chart → layout → render pipeline for astrowheel.
//
// The CLI and the HTTP server both go through this package, so a chart
// produces the same layout and the same bytes no matter where it was
// submitted.
//
// # Stages
//
// [ParseFile] and [Parse] decode and validate a chart document. [ComputeLayout]
// runs the de-collision engine over its bodies. [Render] builds the wheel and
// encodes the artifacts.
//
// Layouts and artifacts are cached separately. A layout key is derived from the
// chart's canonical encoding plus the engine parameters; an artifact key from the
// layout's encoding plus the render parameters. Changing only the canvas size
// therefore reuses the cached layout.
//
// # Example
//
//	c, err := pipeline.ParseFile("natal.toml")
//	...
//	out, err := pipeline.NewRunner(fc, nil, logger).Execute(ctx, c, pipeline.Options{
//	    Formats: []string{"svg", "dot"},
//	})
//	os.WriteFile("natal.svg", out.Artifacts["svg"], 0o644)
//
// [Runner.Layout] and [Runner.Render] run one cached stage each.
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/astrostats/astrowheel/pkg/cache"
	"github.com/astrostats/astrowheel/pkg/errors"
	"github.com/astrostats/astrowheel/pkg/layout"
	"github.com/astrostats/astrowheel/pkg/render"
	"github.com/astrostats/astrowheel/pkg/wheel"
)

const (
	// DefaultGap is the separation below which two neighbouring bodies collide.
	DefaultGap = layout.Gap

	// DefaultMinDistance is the separation a spread pair is pushed out to.
	DefaultMinDistance = layout.MinDistance

	// DefaultSize is the default wheel canvas edge in pixels.
	DefaultSize = wheel.DefaultSize

	// MaxSize bounds the canvas so a request cannot ask for a gigantic drawing.
	MaxSize = 8192.0
)

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = string(render.FormatSVG)

// Options configures one pipeline run. The zero value renders an SVG with
// the default engine parameters.
type Options struct {
	Gap         float64 `json:"gap,omitempty"`
	MinDistance float64 `json:"min_distance,omitempty"`

	Formats  []string `json:"formats,omitempty"`
	Size     float64  `json:"size,omitempty"`
	Title    string   `json:"title,omitempty"`
	Leaders  bool     `json:"leaders,omitempty"`  // dashed line from displaced glyphs to their true longitude
	Detailed bool     `json:"detailed,omitempty"` // longitudes on chain nodes and edges

	// Refresh bypasses cache reads; results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result is what [Runner.Execute] produces for one chart.
type Result struct {
	ChartHash string // sha256 of the canonical chart encoding
	Layout    layout.Result
	Artifacts map[string][]byte // keyed by format name
	Stats     Stats
	CacheInfo CacheInfo
}

type Stats struct {
	Bodies     int
	Pairs      int
	Displaced  int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo reports which stages were served from the cache. RenderHit is set
// only when every requested format hit.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool
}

// ValidateFormat rejects names that [render.Format] does not know.
func ValidateFormat(format string) error {
	if render.Format(format).Valid() {
		return nil
	}
	known := make([]string, 0, len(render.Formats()))
	for _, f := range render.Formats() {
		known = append(known, string(f))
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want %s)", format, strings.Join(known, ", ")).WithField("format")
}

// ValidateFormats returns the first error from [ValidateFormat].
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults applies defaults and validates every field. Repeated
// calls are no-ops until the options are cloned.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults fills unset engine parameters.
func (o *Options) SetLayoutDefaults() {
	if o.Gap == 0 {
		o.Gap = DefaultGap
	}
	if o.MinDistance == 0 {
		o.MinDistance = DefaultMinDistance
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout sets layout defaults and rejects unusable engine parameters.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if !(o.Gap > 0 && o.Gap < 30) {
		return errors.New(errors.ErrCodeInvalidInput, "gap %v must be in (0, 30)", o.Gap).WithField("gap")
	}
	if !(o.MinDistance > 0 && o.MinDistance < 30) {
		return errors.New(errors.ErrCodeInvalidInput, "min_distance %v must be in (0, 30)", o.MinDistance).WithField("min_distance")
	}
	if o.MinDistance < o.Gap {
		return errors.New(errors.ErrCodeInvalidInput, "min_distance %v must not be below gap %v", o.MinDistance, o.Gap).WithField("min_distance")
	}
	return nil
}

// SetRenderDefaults fills unset render parameters.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Size == 0 {
		o.Size = DefaultSize
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender sets render defaults and validates formats and size.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if !(o.Size > 0 && o.Size <= MaxSize) {
		return errors.New(errors.ErrCodeInvalidInput, "size %v must be in (0, %v]", o.Size, MaxSize).WithField("size")
	}
	return nil
}

// Clone returns a copy that can be modified and validated independently.
func (o Options) Clone() Options {
	o.Formats = slices.Clone(o.Formats)
	o.validated = false
	return o
}

// Engine returns a layout engine configured from the options.
func (o *Options) Engine() *layout.Engine {
	return layout.New(layout.WithGap(o.Gap), layout.WithMinDistance(o.MinDistance))
}

// LayoutKeyOpts picks the options that change a layout.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Gap:         o.Gap,
		MinDistance: o.MinDistance,
	}
}

// ArtifactKeyOpts picks the options that change the given format's bytes.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch render.Format(format) {
	case render.FormatSVG:
		k.Size = o.Size
		k.Title = o.Title
		k.Leaders = o.Leaders
	case render.FormatJSON:
		k.Size = o.Size
	case render.FormatDOT, render.FormatChain:
		k.Detailed = o.Detailed
	}
	return k
}

// String summarises the options for log lines.
func (o *Options) String() string {
	return fmt.Sprintf("gap=%g min_distance=%g formats=%s size=%g", o.Gap, o.MinDistance, strings.Join(o.Formats, ","), o.Size)
}
