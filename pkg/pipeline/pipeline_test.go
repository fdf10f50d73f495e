package pipeline

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/astrostats/astrowheel/pkg/cache"
	"github.com/astrostats/astrowheel/pkg/chart"
	"github.com/astrostats/astrowheel/pkg/errors"
	"github.com/astrostats/astrowheel/pkg/observability"
)

var equalCusps = []float64{0, 30, 60, 90, 120, 150, 180, 210, 240, 270, 300, 330}

func testChart(t *testing.T) *chart.Chart {
	t.Helper()
	c, err := chart.FromLongitudes("test", []float64{10, 12, 20}, equalCusps)
	if err != nil {
		t.Fatalf("FromLongitudes: %v", err)
	}
	return c
}

type memCache struct {
	mu         sync.Mutex
	data       map[string][]byte
	gets, sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	d, ok := m.data[key]
	return d, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.data[key] = data
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memCache) Close() error { return nil }

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, stderrors.New("backend down")
}
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return stderrors.New("backend down")
}
func (brokenCache) Delete(context.Context, string) error { return nil }
func (brokenCache) Close() error                         { return nil }

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"json", false},
		{"dot", false},
		{"chain.svg", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s, want %s", tt.format, errors.GetCode(err), errors.ErrCodeInvalidFormat)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "dot"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "pdf"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateForLayout(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantField string
	}{
		{"Defaults", Options{}, ""},
		{"Custom", Options{Gap: 2, MinDistance: 5}, ""},
		{"EqualGapAndTarget", Options{Gap: 4, MinDistance: 4}, ""},
		{"NegativeGap", Options{Gap: -1}, "gap"},
		{"HugeMinDistance", Options{MinDistance: 45}, "min_distance"},
		{"MinDistanceBelowGap", Options{Gap: 5, MinDistance: 1}, "min_distance"},
		{"GapAboveDefaultTarget", Options{Gap: 5}, "min_distance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForLayout()
			if (err != nil) != (tt.wantField != "") {
				t.Fatalf("ValidateForLayout() error = %v, want field %q", err, tt.wantField)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidInput)
			}
			if got := errors.FieldOf(err); got != tt.wantField {
				t.Errorf("field = %q, want %q", got, tt.wantField)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}

	if opts.Gap != DefaultGap || opts.MinDistance != DefaultMinDistance {
		t.Errorf("engine defaults = %v/%v, want %v/%v", opts.Gap, opts.MinDistance, DefaultGap, DefaultMinDistance)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != DefaultFormat {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.Size != DefaultSize {
		t.Errorf("Size should be %v, got %v", DefaultSize, opts.Size)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Gap: 5, MinDistance: 6}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	before := opts.String()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.String() != before {
		t.Errorf("options changed on second call: %s -> %s", before, opts.String())
	}
	if opts.Gap != 5 {
		t.Errorf("explicit gap overwritten: %v", opts.Gap)
	}
}

func TestOptionsRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"NegativeGap", Options{Gap: -1}},
		{"HugeGap", Options{Gap: 45}},
		{"NegativeMinDistance", Options{MinDistance: -2}},
		{"UnknownFormat", Options{Formats: []string{"pdf"}}},
		{"HugeCanvas", Options{Size: MaxSize + 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestArtifactKeyOptsOnlyRelevantFields(t *testing.T) {
	a := Options{Title: "a", Size: 600, Detailed: true}
	b := Options{Title: "b", Size: 900, Detailed: true}

	if a.ArtifactKeyOpts("dot") != b.ArtifactKeyOpts("dot") {
		t.Error("title and size should not affect the dot key")
	}
	if a.ArtifactKeyOpts("svg") == b.ArtifactKeyOpts("svg") {
		t.Error("title and size should affect the svg key")
	}
	if a.ArtifactKeyOpts("svg").Detailed {
		t.Error("detailed should not affect the svg key")
	}
}

func TestExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	c := testChart(t)

	res, err := runner.Execute(context.Background(), c, Options{Formats: []string{"svg", "json", "dot"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Stats.Bodies != 3 || res.Stats.Pairs != 1 || res.Stats.Displaced != 2 {
		t.Errorf("stats = %+v, want 3 bodies, 1 pair, 2 displaced", res.Stats)
	}
	if res.ChartHash == "" {
		t.Error("missing chart hash")
	}
	for _, f := range []string{"svg", "json", "dot"} {
		if len(res.Artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}
	if !bytes.Contains(res.Artifacts["svg"], []byte(`id="body-moon"`)) {
		t.Error("svg has no moon group")
	}
	if !bytes.Contains(res.Artifacts["svg"], []byte(">test</text>")) {
		t.Error("svg title should default to the chart name")
	}
	if !bytes.HasPrefix(res.Artifacts["dot"], []byte("digraph chain")) {
		t.Errorf("dot = %q", res.Artifacts["dot"])
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Errorf("null cache reported hits: %+v", res.CacheInfo)
	}
}

func TestExecuteUsesCache(t *testing.T) {
	mc := newMemCache()
	runner := NewRunner(mc, nil, nil)
	c := testChart(t)
	opts := Options{Formats: []string{"svg", "json"}}

	first, err := runner.Execute(context.Background(), c, opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	second, err := runner.Execute(context.Background(), c, opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}

	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run cache info = %+v, want all hits", second.CacheInfo)
	}
	if second.Stats.Displaced != first.Stats.Displaced || len(second.Layout.Moves) != len(first.Layout.Moves) {
		t.Errorf("cached layout differs: %+v vs %+v", second.Layout, first.Layout)
	}
	for f, data := range first.Artifacts {
		if !bytes.Equal(second.Artifacts[f], data) {
			t.Errorf("cached %s artifact differs", f)
		}
	}
	if mc.sets != 3 {
		t.Errorf("sets = %d, want 3 (layout + 2 artifacts)", mc.sets)
	}
}

func TestExecuteNewSizeReusesLayout(t *testing.T) {
	runner := NewRunner(newMemCache(), nil, nil)
	c := testChart(t)

	if _, err := runner.Execute(context.Background(), c, Options{Size: 600}); err != nil {
		t.Fatal(err)
	}
	res, err := runner.Execute(context.Background(), c, Options{Size: 900})
	if err != nil {
		t.Fatal(err)
	}
	if !res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Errorf("cache info = %+v, want layout hit and render miss", res.CacheInfo)
	}
	if !bytes.Contains(res.Artifacts["svg"], []byte(`width="900"`)) {
		t.Error("svg not rendered at the new size")
	}
}

func TestExecuteNewGapMissesLayout(t *testing.T) {
	runner := NewRunner(newMemCache(), nil, nil)
	c := testChart(t)

	if _, err := runner.Execute(context.Background(), c, Options{}); err != nil {
		t.Fatal(err)
	}
	res, err := runner.Execute(context.Background(), c, Options{Gap: 1})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.LayoutHit {
		t.Error("a different gap reused the cached layout")
	}
	if res.Stats.Pairs != 0 {
		t.Errorf("pairs = %d with gap 1, want 0", res.Stats.Pairs)
	}
}

func TestExecuteCusps(t *testing.T) {
	runner := NewRunner(newMemCache(), nil, nil)
	a := testChart(t)
	b, err := chart.FromLongitudes("test", []float64{10, 12, 20}, []float64{11, 41, 71, 101, 131, 161, 191, 221, 251, 281, 311, 341})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := runner.Execute(context.Background(), a, Options{}); err != nil {
		t.Fatal(err)
	}
	res, err := runner.Execute(context.Background(), b, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Errorf("chart with other cusps hit the cache: %+v", res.CacheInfo)
	}
	// Sun and moon now sit in different houses.
	if res.Stats.Displaced != 0 {
		t.Errorf("displaced = %d, want 0", res.Stats.Displaced)
	}
}

func TestExecuteRefresh(t *testing.T) {
	mc := newMemCache()
	runner := NewRunner(mc, nil, nil)
	c := testChart(t)

	if _, err := runner.Execute(context.Background(), c, Options{}); err != nil {
		t.Fatal(err)
	}
	gets := mc.gets
	res, err := runner.Execute(context.Background(), c, Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Errorf("refresh reported hits: %+v", res.CacheInfo)
	}
	if mc.gets != gets {
		t.Errorf("refresh read the cache %d times", mc.gets-gets)
	}
}

func TestExecuteSurvivesCacheFailure(t *testing.T) {
	runner := NewRunner(brokenCache{}, nil, nil)
	res, err := runner.Execute(context.Background(), testChart(t), Options{})
	if err != nil {
		t.Fatalf("Execute with broken cache: %v", err)
	}
	if len(res.Artifacts["svg"]) == 0 {
		t.Error("no svg rendered")
	}
}

func TestExecutePrefixedKeyer(t *testing.T) {
	mc := newMemCache()
	c := testChart(t)
	a := NewRunner(mc, cache.Prefixed(nil, "a"), nil)
	b := NewRunner(mc, cache.Prefixed(nil, "b"), nil)

	if _, err := a.Execute(context.Background(), c, Options{}); err != nil {
		t.Fatal(err)
	}
	res, err := b.Execute(context.Background(), c, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.LayoutHit {
		t.Error("scoped keyers shared a layout entry")
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), testChart(t), Options{Formats: []string{"png"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want INVALID_FORMAT", err)
	}
}

func TestRunnerStages(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	c := testChart(t)

	res, err := runner.Layout(context.Background(), c, Options{})
	if err != nil {
		t.Fatal(err)
	}
	artifacts, err := runner.Render(context.Background(), c, res, Options{Formats: []string{"dot"}, Detailed: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(artifacts["dot"]), "mercury") {
		t.Errorf("detailed chain should list every body:\n%s", artifacts["dot"])
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnLayoutStart(context.Context, string, int) { h.record("layout-start") }
func (h *recordingHooks) OnLayoutComplete(_ context.Context, _ string, s observability.LayoutStats, _ time.Duration, _ error) {
	h.record("layout-done")
}
func (h *recordingHooks) OnRenderStart(context.Context, []string) { h.record("render-start") }
func (h *recordingHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.record("render-done")
}

func TestExecuteFiresHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	if _, err := NewRunner(nil, nil, nil).Execute(context.Background(), testChart(t), Options{}); err != nil {
		t.Fatal(err)
	}
	want := []string{"layout-start", "layout-done", "render-start", "render-done"}
	if strings.Join(hooks.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", hooks.events, want)
	}
}

func TestParse(t *testing.T) {
	doc := `{"name": "inline", "bodies": [{"body": "sun", "longitude": 10}, {"body": "moon", "longitude": 12}],
	"cusps": [0, 30, 60, 90, 120, 150, 180, 210, 240, 270, 300, 330]}`

	c, err := Parse([]byte(doc), chart.FormatJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Name != "inline" || len(c.Positions) != 2 {
		t.Errorf("chart = %+v", c)
	}

	if _, err := Parse([]byte("  \n"), chart.FormatJSON); !errors.Is(err, errors.ErrCodeInvalidChart) {
		t.Errorf("empty document err = %v, want INVALID_CHART", err)
	}
	if _, err := ParseFile(""); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("empty path err = %v, want INVALID_PATH", err)
	}
}

func TestChartHashIgnoresDocumentFormat(t *testing.T) {
	c := testChart(t)

	var jsonDoc, tomlDoc bytes.Buffer
	if err := chart.Encode(&jsonDoc, c, chart.FormatJSON); err != nil {
		t.Fatal(err)
	}
	if err := chart.Encode(&tomlDoc, c, chart.FormatTOML); err != nil {
		t.Fatal(err)
	}
	fromJSON, err := Parse(jsonDoc.Bytes(), chart.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	fromTOML, err := Parse(tomlDoc.Bytes(), chart.FormatTOML)
	if err != nil {
		t.Fatal(err)
	}

	h1, _ := ChartHash(fromJSON)
	h2, _ := ChartHash(fromTOML)
	if h1 != h2 {
		t.Errorf("hash differs across formats: %s vs %s", h1, h2)
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	res := ComputeLayout(testChart(t), Options{})
	data, err := MarshalLayout(res)
	if err != nil {
		t.Fatal(err)
	}
	back, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatal(err)
	}
	if back.Displaced() != res.Displaced() || back.Moves[0].Strategy != res.Moves[0].Strategy {
		t.Errorf("round trip = %+v, want %+v", back, res)
	}
	if _, err := UnmarshalLayout([]byte("{")); err == nil {
		t.Error("truncated layout should not decode")
	}
}
