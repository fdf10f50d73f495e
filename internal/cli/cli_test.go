package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/astrostats/astrowheel/pkg/buildinfo"
	"github.com/astrostats/astrowheel/pkg/observability"
)

const natalTOML = `name = "natal"
cusps = [0.0, 30.0, 60.0, 90.0, 120.0, 150.0, 180.0, 210.0, 240.0, 270.0, 300.0, 330.0]

[[bodies]]
body = "sun"
longitude = 10.0

[[bodies]]
body = "moon"
longitude = 12.0
retrograde = true

[[bodies]]
body = "mercury"
longitude = 20.0
`

type result struct {
	out, status, logs string
}

// testEnv isolates config lookup and the file cache, and returns the chart path.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("ASTROWHEEL_CACHE_DIR", filepath.Join(dir, "cache"))
	path := filepath.Join(dir, "natal.toml")
	if err := os.WriteFile(path, []byte(natalTOML), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (result, error) {
	t.Helper()
	var logs, out, status bytes.Buffer
	root := New(&logs, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetErr(&status)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return result{out: out.String(), status: status.String(), logs: logs.String()}, err
}

func TestRootCommandSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"layout", "render", "inspect", "serve", "cache", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing subcommand %q in %v", want, names)
		}
	}
	for _, flag := range []string{"config", "verbose", "no-cache"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestVersionFlag(t *testing.T) {
	testEnv(t)
	res, err := execute(t, "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(res.out, "astrowheel version "+buildinfo.Version) {
		t.Errorf("version output = %q", res.out)
	}
}

func TestLayoutTable(t *testing.T) {
	path := testEnv(t)
	res, err := execute(t, "layout", path, "--moves")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"natal", "moon ℞", "9°00' Aries", "13°00' Aries", "-1.00°", "+1.00°", "spread"} {
		if !strings.Contains(res.out, want) {
			t.Errorf("output missing %q:\n%s", want, res.out)
		}
	}
	if !strings.Contains(res.status, "3 bodies") || !strings.Contains(res.status, "2 displaced") {
		t.Errorf("stats = %q", res.status)
	}
	if !strings.Contains(res.logs, "laid out") || !strings.Contains(res.logs, "chart=natal") {
		t.Errorf("logs = %q", res.logs)
	}
}

func TestLayoutJSON(t *testing.T) {
	path := testEnv(t)
	res, err := execute(t, "layout", path, "--json")
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Name      string `json:"name"`
		Displaced int    `json:"displaced"`
		Positions []struct {
			Body    string  `json:"body"`
			Display float64 `json:"display"`
		} `json:"positions"`
	}
	if err := json.Unmarshal([]byte(res.out), &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, res.out)
	}
	if doc.Name != "natal" || doc.Displaced != 2 || len(doc.Positions) != 3 {
		t.Errorf("doc = %+v", doc)
	}
	if doc.Positions[0].Body != "sun" || doc.Positions[0].Display != 9 {
		t.Errorf("sun = %+v, want display 9", doc.Positions[0])
	}
}

func TestLayoutGapFlag(t *testing.T) {
	path := testEnv(t)
	res, err := execute(t, "layout", path, "--gap", "1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.status, "0 pairs") {
		t.Errorf("stats = %q, want 0 pairs", res.status)
	}
}

func TestLayoutConfigFile(t *testing.T) {
	path := testEnv(t)
	cfg := filepath.Join(t.TempDir(), "astrowheel.yaml")
	if err := os.WriteFile(cfg, []byte("layout:\n  gap: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := execute(t, "--config", cfg, "layout", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.status, "0 pairs") {
		t.Errorf("stats = %q, want 0 pairs from config gap", res.status)
	}

	// Flags beat the config file.
	res, err = execute(t, "--config", cfg, "layout", path, "--gap", "3.5")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.status, "1 pairs") {
		t.Errorf("stats = %q, want 1 pairs from flag gap", res.status)
	}
}

func TestLayoutErrors(t *testing.T) {
	testEnv(t)
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("name = \"x\"\ncusps = [1.0]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"layout", filepath.Join(dir, "missing.toml")}},
		{"bad extension", []string{"layout", filepath.Join(dir, "chart.yaml")}},
		{"bad cusps", []string{"layout", bad}},
		{"bad gap", []string{"layout", bad, "--gap", "-1"}},
		{"no args", []string{"layout"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLayoutWatchMissingDirReturns(t *testing.T) {
	testEnv(t)
	path := filepath.Join(t.TempDir(), "missing", "natal.toml")

	errc := make(chan error, 1)
	go func() {
		_, err := execute(t, "layout", "--watch", path)
		errc <- err
	}()
	select {
	case err := <-errc:
		if err == nil || !strings.Contains(err.Error(), "watch") {
			t.Errorf("err = %v, want watch error", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("layout --watch did not return for a missing directory")
	}
}

func TestLayoutUsesCache(t *testing.T) {
	path := testEnv(t)
	if res, err := execute(t, "layout", path); err != nil {
		t.Fatal(err)
	} else if strings.Contains(res.status, iconCached) {
		t.Errorf("first run reported cached: %q", res.status)
	}

	res, err := execute(t, "layout", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.status, iconCached) {
		t.Errorf("second run not cached: %q", res.status)
	}
}

func TestNoCacheFlag(t *testing.T) {
	path := testEnv(t)
	for i := 0; i < 2; i++ {
		res, err := execute(t, "--no-cache", "layout", path)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(res.status, iconCached) {
			t.Errorf("run %d reported cached with --no-cache", i)
		}
	}
	if _, err := os.Stat(os.Getenv("ASTROWHEEL_CACHE_DIR")); !os.IsNotExist(err) {
		t.Errorf("cache dir created with --no-cache: %v", err)
	}
}

func TestVerboseLogsDebug(t *testing.T) {
	t.Cleanup(observability.Reset)
	path := testEnv(t)

	res, err := execute(t, "-v", "layout", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.logs, "opened cache") {
		t.Errorf("debug logs missing:\n%s", res.logs)
	}
	if !strings.Contains(res.logs, "layout done") || !strings.Contains(res.logs, "cache set") {
		t.Errorf("hook logs missing:\n%s", res.logs)
	}
}

func TestRenderWritesFiles(t *testing.T) {
	path := testEnv(t)
	base := filepath.Join(t.TempDir(), "out", "natal")

	res, err := execute(t, "render", path, "-f", "svg,dot", "-o", base, "--leaders")
	if err != nil {
		t.Fatal(err)
	}

	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte(`id="body-moon"`)) {
		t.Errorf("unexpected svg: %.200s", svg)
	}
	dot, err := os.ReadFile(base + ".dot")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(dot, []byte("digraph chain")) {
		t.Errorf("unexpected dot: %.100s", dot)
	}
	if !strings.Contains(res.status, base+".svg") || !strings.Contains(res.status, base+".dot") {
		t.Errorf("status should list written files: %q", res.status)
	}
}

func TestRenderDefaultOutput(t *testing.T) {
	path := testEnv(t)
	if _, err := execute(t, "render", path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(strings.TrimSuffix(path, ".toml") + ".svg"); err != nil {
		t.Errorf("default output not written: %v", err)
	}
}

func TestRenderStdout(t *testing.T) {
	path := testEnv(t)
	res, err := execute(t, "render", path, "-f", "dot", "-o", "-", "--detailed")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(res.out, "digraph chain") || !strings.Contains(res.out, "mercury") {
		t.Errorf("stdout = %q", res.out)
	}
}

func TestRenderErrors(t *testing.T) {
	path := testEnv(t)
	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"render", path, "-f", "pdf"}},
		{"stdout with two formats", []string{"render", path, "-f", "svg,json", "-o", "-"}},
		{"size too large", []string{"render", path, "--size", "100000"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCachePathAndClear(t *testing.T) {
	path := testEnv(t)
	dir := os.Getenv("ASTROWHEEL_CACHE_DIR")

	res, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(res.out) != dir {
		t.Errorf("cache path = %q, want %q", res.out, dir)
	}

	res, err = execute(t, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.out, "Cache is empty") {
		t.Errorf("clear on missing dir = %q", res.out)
	}

	if _, err := execute(t, "layout", path); err != nil {
		t.Fatal(err)
	}
	res, err = execute(t, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	// One layout and one JSON artifact.
	if !strings.Contains(res.out, "Cleared 2 cached entries") {
		t.Errorf("clear = %q", res.out)
	}
}

func TestCacheStats(t *testing.T) {
	path := testEnv(t)
	if _, err := execute(t, "layout", path); err != nil {
		t.Fatal(err)
	}
	res, err := execute(t, "cache", "stats")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.out, "2 entries") || !strings.Contains(res.out, os.Getenv("ASTROWHEEL_CACHE_DIR")) {
		t.Errorf("stats = %q", res.out)
	}
}

func TestCacheCommandsRejectRemoteBackends(t *testing.T) {
	testEnv(t)
	t.Setenv("ASTROWHEEL_CACHE_BACKEND", "redis")
	for _, sub := range []string{"clear", "stats"} {
		if _, err := execute(t, "cache", sub); err == nil {
			t.Errorf("cache %s: expected error for redis backend", sub)
		}
	}
}

func TestCompletion(t *testing.T) {
	testEnv(t)
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		res, err := execute(t, "completion", shell)
		if err != nil {
			t.Fatalf("%s: %v", shell, err)
		}
		if !strings.Contains(res.out, "astrowheel") {
			t.Errorf("%s completion does not mention astrowheel", shell)
		}
	}
	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"svg,json", []string{"svg", "json"}},
		{" dot , chain.svg ,", []string{"dot", "chain.svg"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		formats []string
		want    map[string]string
	}{
		{"derived from input", "", []string{"svg"}, map[string]string{"svg": "charts/natal.svg"}},
		{"explicit single file", "wheel.svg", []string{"svg"}, map[string]string{"svg": "wheel.svg"}},
		{"explicit chain file", "out/c.chain.svg", []string{"chain.svg"}, map[string]string{"chain.svg": "out/c.chain.svg"}},
		{"base path", "out/natal", []string{"svg", "dot"}, map[string]string{"svg": "out/natal.svg", "dot": "out/natal.dot"}},
		{"extension stripped for several", "out/natal.svg", []string{"svg", "json"}, map[string]string{"svg": "out/natal.svg", "json": "out/natal.json"}},
		{"chain beside wheel", "", []string{"svg", "chain.svg"}, map[string]string{"svg": "charts/natal.svg", "chain.svg": "charts/natal.chain.svg"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPaths(tt.output, "charts/natal.toml", tt.formats)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for f, p := range tt.want {
				if got[f] != p {
					t.Errorf("%s: got %q, want %q", f, got[f], p)
				}
			}
		})
	}
}

func TestFormatOf(t *testing.T) {
	tests := map[string]string{
		"a.svg":       "svg",
		"a.chain.svg": "chain.svg",
		"a.dot":       "dot",
		"a.png":       "",
		"a":           "",
	}
	for path, want := range tests {
		if got := string(formatOf(path)); got != want {
			t.Errorf("formatOf(%q) = %q, want %q", path, got, want)
		}
	}
}
