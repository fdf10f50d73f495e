package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/astrostats/astrowheel/pkg/pipeline"
	"github.com/astrostats/astrowheel/pkg/render"
)

// stdoutPath as the output writes a single artifact to standard output.
const stdoutPath = "-"

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	engineFlags
	output   string  // output file (single format) or base path
	formats  string  // comma-separated formats
	size     float64 // canvas edge in pixels
	title    string  // wheel title, defaults to the chart name
	leaders  bool    // leader lines from displaced glyphs to their true longitude
	detailed bool    // longitudes on chain nodes, and unmoved bodies
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [chart]",
		Short: "Render a chart wheel and its collision chain",
		Long: `Render a chart file to one or more artifacts:

  svg        the wheel with glyphs at their display longitudes
  json       the full layout result with wheel coordinates
  dot        the collision chain as Graphviz source
  chain.svg  the collision chain laid out by Graphviz

With a single format, -o names the output file ("-" for stdout). With several,
-o is a base path and each format adds its own extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(opts.formats)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			if opts.output == stdoutPath && len(formats) != 1 {
				return fmt.Errorf("-o %s needs exactly one format, got %d", stdoutPath, len(formats))
			}

			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			popts := c.options(cmd, &opts.engineFlags)
			popts.Formats = formats
			if cmd.Flags().Changed("size") {
				popts.Size = opts.size
			}
			if cmd.Flags().Changed("leaders") {
				popts.Leaders = opts.leaders
			}
			popts.Title = opts.title
			popts.Detailed = opts.detailed

			return runRender(cmd.Context(), runner, args[0], popts, &opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), json, dot, chain.svg (comma-separated)")
	cmd.Flags().Float64Var(&opts.size, "size", pipeline.DefaultSize, "canvas edge in pixels")
	cmd.Flags().StringVar(&opts.title, "title", "", "wheel title (default: chart name)")
	cmd.Flags().BoolVar(&opts.leaders, "leaders", false, "draw leader lines from displaced glyphs")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show longitudes and unmoved bodies in the chain")

	return cmd
}

// runRender renders one chart file and writes every artifact.
func runRender(ctx context.Context, runner *pipeline.Runner, input string, popts pipeline.Options, opts *renderOpts, stdout, status io.Writer) error {
	logger := loggerFromContext(ctx)
	sw := startStopwatch(logger)

	c, err := pipeline.ParseFile(input)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded %s: %d bodies", c.Name, len(c.Positions))

	result, err := runner.Execute(ctx, c, popts)
	if err != nil {
		return err
	}
	sw.stop("rendered", "chart", c.Name, "formats", len(popts.Formats))

	if opts.output == stdoutPath {
		_, err := stdout.Write(result.Artifacts[popts.Formats[0]])
		return err
	}

	paths := outputPaths(opts.output, input, popts.Formats)
	printSuccess(status, "Rendered %s", c.Name)
	printStats(status, result.Stats.Bodies, result.Stats.Pairs, result.Stats.Displaced, result.CacheInfo.RenderHit)
	for _, format := range popts.Formats {
		path := paths[format]
		if err := writeFile(path, result.Artifacts[format]); err != nil {
			return err
		}
		logger.Debugf("Wrote %s: %d bytes", path, len(result.Artifacts[format]))
		printFile(status, path)
	}
	if !opts.leaders && result.Stats.Displaced > 0 {
		printNextStep(status, "Show where displaced glyphs belong", "astrowheel render --leaders "+input)
	}
	return nil
}

// outputPaths maps each format to a file path. A single format with an explicit
// output uses it verbatim; otherwise each format's extension is appended to the
// base path.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" && formatOf(output) != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + render.Format(f).Ext()
	}
	return paths
}

// basePath derives the base output path. If output is empty, it strips the
// extension from input. If output ends in a format extension, that is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	if f := formatOf(output); f != "" {
		return strings.TrimSuffix(output, f.Ext())
	}
	return output
}

// formatOf returns the render format whose extension path ends in, preferring
// the longest match so "x.chain.svg" is a chain and not a wheel.
func formatOf(path string) render.Format {
	var best render.Format
	for _, f := range render.Formats() {
		if strings.HasSuffix(path, f.Ext()) && len(f) > len(best) {
			best = f
		}
	}
	return best
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
