package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/astrostats/astrowheel/pkg/angle"
	"github.com/astrostats/astrowheel/pkg/layout"
)

// Terminal palette, 256-color codes. Gold marks headings and the selection,
// amber marks bodies the layout moved.
var (
	colorGold   = lipgloss.Color("179")
	colorAmber  = lipgloss.Color("214")
	colorGreen  = lipgloss.Color("71")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("110")
	colorText   = lipgloss.Color("252")
	colorMuted  = lipgloss.Color("244")
	colorFaint  = lipgloss.Color("238")
)

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorGold)
	StyleDim     = lipgloss.NewStyle().Foreground(colorMuted)
	StyleValue   = lipgloss.NewStyle().Foreground(colorText)
	StyleWarning = lipgloss.NewStyle().Foreground(colorAmber)
)

var (
	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorMuted)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)

	styleHeader   = lipgloss.NewStyle().Bold(true).Foreground(colorGold).Padding(0, 1)
	styleCell     = lipgloss.NewStyle().Foreground(colorText).Padding(0, 1)
	styleMoved    = lipgloss.NewStyle().Foreground(colorAmber).Padding(0, 1)
	styleSelected = lipgloss.NewStyle().Bold(true).Reverse(true).Foreground(colorGold).Padding(0, 1)
	styleBorder   = lipgloss.NewStyle().Foreground(colorFaint)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// statusLine writes "<icon> <message>" with the icon in the given color.
func statusLine(w io.Writer, icon string, color lipgloss.Color, msg string) {
	fmt.Fprintln(w, lipgloss.NewStyle().Foreground(color).Render(icon)+" "+msg)
}

func printSuccess(w io.Writer, format string, args ...any) {
	statusLine(w, iconSuccess, colorGreen, fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	statusLine(w, iconError, colorRed, fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	statusLine(w, iconWarning, colorAmber, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	statusLine(w, iconInfo, colorMuted, fmt.Sprintf(format, args...))
}

func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printNextStep suggests a follow-up command, e.g. "Draw leader lines: astrowheel render ...".
func printNextStep(w io.Writer, description, cmd string) {
	fmt.Fprintln(w, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// printStats prints layout statistics on a single line.
func printStats(w io.Writer, bodies, pairs, displaced int, cached bool) {
	parts := []string{
		fmt.Sprintf("%d bodies", bodies),
		fmt.Sprintf("%d pairs", pairs),
		fmt.Sprintf("%d displaced", displaced),
	}

	status := styleComputed.Render(iconFresh)
	if cached {
		status = styleCached.Render(iconCached)
	}

	sep := StyleDim.Render(" · ")
	fmt.Fprintln(w, "  "+StyleDim.Render(strings.Join(parts, " · "))+sep+status)
}

var positionHeaders = []string{"Body", "", "Original", "Display", "Shift", "House"}

// positionRows formats one table row per adjusted position.
func positionRows(res layout.Result) [][]string {
	rows := make([][]string, 0, len(res.Positions))
	for _, p := range res.Positions {
		name := p.Body.String()
		if p.Retrograde {
			name += " ℞"
		}
		rows = append(rows, []string{
			name,
			p.Body.Glyph(),
			p.Original.String(),
			p.Display.String(),
			formatShift(p),
			formatHouse(p.House),
		})
	}
	return rows
}

var moveHeaders = []string{"#", "Pair", "Strategy", "House", "Before", "After"}

// moveRows formats one table row per resolution step.
func moveRows(res layout.Result) [][]string {
	rows := make([][]string, 0, len(res.Moves))
	for i, m := range res.Moves {
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			m.Pair.Lower.String() + " / " + m.Pair.Upper.String(),
			string(m.Strategy),
			formatHouse(m.House),
			formatPair(m.Before),
			formatPair(m.After),
		})
	}
	return rows
}

// renderPositions draws the position table with displaced bodies highlighted.
// selected marks the cursor row; pass -1 for none.
func renderPositions(res layout.Result, selected int) string {
	return styledTable(positionHeaders, positionRows(res), selected, func(i int) bool {
		return res.Positions[i].Moved()
	})
}

// renderMoves draws the resolution steps in fold order.
func renderMoves(res layout.Result, selected int) string {
	return styledTable(moveHeaders, moveRows(res), selected, func(i int) bool {
		return res.Moves[i].Strategy.Moves()
	})
}

func styledTable(headers []string, rows [][]string, selected int, moved func(int) bool) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleHeader
			case row == selected:
				return styleSelected
			case row >= 0 && row < len(rows) && moved(row):
				return styleMoved
			}
			return styleCell
		}).
		String()
}

func formatShift(p layout.Adjusted) string {
	if !p.Moved() {
		return "-"
	}
	return fmt.Sprintf("%+.2f°", shift(p))
}

// shift is the signed angular move from the original to the display longitude.
func shift(p layout.Adjusted) float64 {
	d := p.Display.Offset(p.Original)
	if d > angle.FullTurn/2 {
		d -= angle.FullTurn
	}
	return d
}

func formatHouse(n int) string {
	if n == 0 {
		return "-"
	}
	return fmt.Sprint(n)
}

func formatPair(lons [2]angle.Longitude) string {
	return fmt.Sprintf("%.2f° / %.2f°", lons[0].Degrees(), lons[1].Degrees())
}
