package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/astrostats/astrowheel/pkg/chart"
	"github.com/astrostats/astrowheel/pkg/layout"
	"github.com/astrostats/astrowheel/pkg/pipeline"
	"github.com/astrostats/astrowheel/pkg/render"
)

// inspectCommand creates the interactive inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var flags engineFlags

	cmd := &cobra.Command{
		Use:   "inspect [chart]",
		Short: "Browse a chart layout interactively",
		Long: `Browse the bodies of a chart and the steps that separated them.

Keys: ↑/k and ↓/j move, tab switches between bodies and steps, q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			ch, err := pipeline.ParseFile(args[0])
			if err != nil {
				return err
			}
			opts := c.options(cmd, &flags)
			opts.Formats = []string{string(render.FormatJSON)}
			result, err := runner.Execute(ctx, ch, opts)
			if err != nil {
				return err
			}

			p := tea.NewProgram(newInspectModel(ch, result.Layout),
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()))
			_, err = p.Run()
			return err
		},
	}

	flags.register(cmd)
	return cmd
}

// =============================================================================
// inspectModel - Interactive layout browser
// =============================================================================

type inspectView int

const (
	viewBodies inspectView = iota
	viewMoves
)

var (
	inspectDetailStyle = lipgloss.NewStyle().Foreground(colorMuted).PaddingLeft(1)
	inspectHelpStyle   = lipgloss.NewStyle().Foreground(colorFaint)
)

// inspectModel is the bubbletea model for browsing a layout result.
type inspectModel struct {
	name   string
	res    layout.Result
	view   inspectView
	cursor [2]int // per view
}

func newInspectModel(c *chart.Chart, res layout.Result) inspectModel {
	return inspectModel{name: c.Name, res: res}
}

func (m inspectModel) Init() tea.Cmd {
	return nil
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		if m.view == viewBodies && len(m.res.Moves) > 0 {
			m.view = viewMoves
		} else {
			m.view = viewBodies
		}
	case "up", "k":
		if m.cursor[m.view] > 0 {
			m.cursor[m.view]--
		}
	case "down", "j":
		if m.cursor[m.view] < m.rows()-1 {
			m.cursor[m.view]++
		}
	}
	return m, nil
}

func (m inspectModel) rows() int {
	if m.view == viewMoves {
		return len(m.res.Moves)
	}
	return len(m.res.Positions)
}

func (m inspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.name))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d bodies · %d pairs · %d displaced",
		len(m.res.Positions), len(m.res.Pairs), m.res.Displaced())))
	b.WriteString("\n")

	switch m.view {
	case viewMoves:
		b.WriteString(renderMoves(m.res, m.cursor[viewMoves]))
		b.WriteString("\n")
		b.WriteString(m.moveDetail())
	default:
		b.WriteString(renderPositions(m.res, m.cursor[viewBodies]))
		b.WriteString("\n")
		b.WriteString(m.bodyDetail())
	}

	b.WriteString("\n")
	b.WriteString(inspectHelpStyle.Render("↑/↓ move · tab bodies/steps · q quit"))
	b.WriteString("\n")
	return b.String()
}

// bodyDetail describes the selected body and every step that touched it.
func (m inspectModel) bodyDetail() string {
	if len(m.res.Positions) == 0 {
		return inspectDetailStyle.Render("no bodies")
	}
	p := m.res.Positions[m.cursor[viewBodies]]

	lines := []string{
		fmt.Sprintf("%s %s  %s %s %s", p.Body.Glyph(), p.Body, p.Original, iconArrow, p.Display),
	}
	if p.House > 0 {
		lines = append(lines, fmt.Sprintf("house %d", p.House))
	} else {
		lines = append(lines, "no house")
	}
	for i, mv := range m.res.Moves {
		if mv.Pair.Lower != p.Body && mv.Pair.Upper != p.Body {
			continue
		}
		lines = append(lines, fmt.Sprintf("step %d: %s with %s", i+1, mv.Strategy, partner(mv.Pair, p.Body)))
	}
	return inspectDetailStyle.Render(strings.Join(lines, "\n"))
}

// moveDetail describes the selected resolution step.
func (m inspectModel) moveDetail() string {
	if len(m.res.Moves) == 0 {
		return inspectDetailStyle.Render("no steps")
	}
	mv := m.res.Moves[m.cursor[viewMoves]]
	line := fmt.Sprintf("%s %s  %s", mv.Pair.Lower, mv.Pair.Upper, mv.Strategy)
	if mv.Strategy.Moves() {
		line += fmt.Sprintf("  %s %s %s", formatPair(mv.Before), iconArrow, formatPair(mv.After))
	}
	return inspectDetailStyle.Render(line)
}

func partner(p layout.Pair, b chart.Body) chart.Body {
	if p.Lower == b {
		return p.Upper
	}
	return p.Lower
}
