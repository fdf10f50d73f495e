package chain

import (
	"strings"
	"testing"

	"github.com/astrostats/astrowheel/pkg/angle"
	"github.com/astrostats/astrowheel/pkg/chart"
	"github.com/astrostats/astrowheel/pkg/houses"
	"github.com/astrostats/astrowheel/pkg/layout"
)

func run(lons ...float64) layout.Result {
	positions := make([]chart.Position, len(lons))
	for i, l := range lons {
		positions[i] = chart.Position{Body: chart.Body(i), Longitude: angle.Longitude(l)}
	}
	return layout.New().Run(positions, houses.Equal(0))
}

func TestToDOT(t *testing.T) {
	tests := []struct {
		name    string
		res     layout.Result
		opts    Options
		want    []string
		notWant []string
	}{
		{
			name: "Spread",
			res:  run(10, 12, 200),
			want: []string{
				"digraph chain {",
				`"sun" -> "moon" [label="spread"]`,
				`fillcolor="#fdebd0"`,
			},
			notWant: []string{`"mercury"`},
		},
		{
			name:    "AllBodies",
			res:     run(10, 12, 200),
			opts:    Options{All: true},
			want:    []string{`"mercury" [label="☿ mercury"]`},
			notWant: []string{`"mercury" [label="☿ mercury", fillcolor`},
		},
		{
			name: "CrossHouseDashed",
			res:  run(29, 31),
			want: []string{`"sun" -> "moon" [label="cross_house", style=dashed]`},
		},
		{
			name: "Detailed",
			res:  run(10, 12),
			opts: Options{Detailed: true},
			want: []string{
				`original: 10.00`,
				`display: 9.00`,
				`spread\n10.00,12.00 → 9.00,13.00`,
			},
		},
		{
			name:    "NoPairs",
			res:     run(10, 100),
			notWant: []string{"->", `"sun"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dot := ToDOT(tt.res, tt.opts)
			for _, s := range tt.want {
				if !strings.Contains(dot, s) {
					t.Errorf("DOT missing %q:\n%s", s, dot)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(dot, s) {
					t.Errorf("DOT unexpectedly contains %q:\n%s", s, dot)
				}
			}
		})
	}
}

func TestToDOTNodeOrder(t *testing.T) {
	dot := ToDOT(run(20, 18, 200, 19), Options{All: true})
	moon := strings.Index(dot, `"moon" [`)
	merc := strings.Index(dot, `"mercury" [`)
	sun := strings.Index(dot, `"sun" [`)
	if moon < 0 || merc < 0 || sun < 0 || !(moon < sun && sun < merc) {
		t.Errorf("nodes not in longitude order:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("normalizeViewBox() changed svg without viewBox: %s", got)
	}
}
