package sink

import (
	"encoding/json"
	"testing"

	"github.com/astrostats/astrowheel/pkg/layout"
)

func TestRenderJSON(t *testing.T) {
	res, _ := testWheel()

	data, err := RenderJSON(res)
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var out struct {
		Displaced int `json:"displaced"`
		Positions []struct {
			Body       string  `json:"body"`
			Original   float64 `json:"original"`
			Display    float64 `json:"display"`
			Retrograde bool    `json:"retrograde"`
			House      int     `json:"house"`
		} `json:"positions"`
		Moves []struct {
			Pair struct {
				Lower string `json:"lower"`
				Upper string `json:"upper"`
			} `json:"pair"`
			Strategy string `json:"strategy"`
		} `json:"moves"`
		Wheel *json.RawMessage `json:"wheel"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}

	if out.Displaced != 2 {
		t.Errorf("displaced = %d, want 2", out.Displaced)
	}
	if len(out.Positions) != 3 {
		t.Fatalf("positions = %d, want 3", len(out.Positions))
	}
	moon := out.Positions[1]
	if moon.Body != "moon" || moon.Original != 12 || moon.Display != 13 || !moon.Retrograde {
		t.Errorf("moon = %+v", moon)
	}
	if len(out.Moves) != 1 || out.Moves[0].Pair.Lower != "sun" || out.Moves[0].Strategy != string(layout.StrategySpread) {
		t.Errorf("moves = %+v", out.Moves)
	}
	if out.Wheel != nil {
		t.Error("wheel included without WithJSONWheel")
	}
}

func TestRenderJSONWithOptions(t *testing.T) {
	res, w := testWheel()

	data, err := RenderJSON(res,
		WithJSONName("natal"),
		WithJSONEngine(layout.New(layout.WithGap(5))),
		WithJSONWheel(w),
	)
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var out struct {
		Name        string  `json:"name"`
		Gap         float64 `json:"gap"`
		MinDistance float64 `json:"min_distance"`
		Wheel       struct {
			Size   float64 `json:"size"`
			Bodies []struct {
				Body   string `json:"body"`
				Labels []struct {
					Ring string `json:"ring"`
					Text string `json:"text"`
				} `json:"labels"`
			} `json:"bodies"`
		} `json:"wheel"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}

	if out.Name != "natal" || out.Gap != 5 || out.MinDistance != layout.MinDistance {
		t.Errorf("header = %q gap=%v min=%v", out.Name, out.Gap, out.MinDistance)
	}
	if out.Wheel.Size != 400 || len(out.Wheel.Bodies) != 3 {
		t.Fatalf("wheel size=%v bodies=%d", out.Wheel.Size, len(out.Wheel.Bodies))
	}
	if l := out.Wheel.Bodies[1].Labels; len(l) != 5 || l[4].Ring != "retrograde" {
		t.Errorf("moon labels = %+v", l)
	}
}
