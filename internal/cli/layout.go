package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/astrostats/astrowheel/internal/watch"
	"github.com/astrostats/astrowheel/pkg/pipeline"
	"github.com/astrostats/astrowheel/pkg/render"
)

// layoutOpts holds the command-line flags for the layout command.
type layoutOpts struct {
	engineFlags
	json  bool // print the JSON document instead of a table
	moves bool // also print the resolution steps
	watch bool // re-run whenever the chart file changes
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "layout [chart]",
		Short: "Compute display longitudes for a chart",
		Long: `Compute display longitudes for every body in a chart file (.json or .toml)
and print them as a table. Displaced bodies are highlighted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			popts := c.options(cmd, &opts.engineFlags)
			run := func() error {
				return runLayout(cmd.Context(), runner, args[0], popts, &opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			}
			if opts.watch {
				return watchChart(cmd.Context(), args[0], run, cmd.ErrOrStderr())
			}
			return run()
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the layout as JSON")
	cmd.Flags().BoolVar(&opts.moves, "moves", false, "also print each resolution step")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-run when the chart file changes")

	return cmd
}

// runLayout lays out one chart file and prints the result to out.
func runLayout(ctx context.Context, runner *pipeline.Runner, path string, popts pipeline.Options, opts *layoutOpts, out, status io.Writer) error {
	logger := loggerFromContext(ctx)
	sw := startStopwatch(logger)

	c, err := pipeline.ParseFile(path)
	if err != nil {
		return err
	}

	// Tables go through Execute as well so the cache status is known.
	popts = popts.Clone()
	popts.Formats = []string{string(render.FormatJSON)}
	result, err := runner.Execute(ctx, c, popts)
	if err != nil {
		return err
	}
	if opts.json {
		_, err = out.Write(result.Artifacts[string(render.FormatJSON)])
		return err
	}
	res := result.Layout
	sw.stop("laid out", "chart", c.Name, "pairs", result.Stats.Pairs)

	fmt.Fprintln(out, StyleTitle.Render(c.Name))
	fmt.Fprintln(out, renderPositions(res, -1))
	if opts.moves && len(res.Moves) > 0 {
		fmt.Fprintln(out, renderMoves(res, -1))
	}
	printStats(status, result.Stats.Bodies, result.Stats.Pairs, result.Stats.Displaced, result.CacheInfo.LayoutHit)
	return nil
}

// watchChart runs fn once, then again after every settled change to path,
// until ctx is cancelled. Errors from fn are reported without stopping the loop.
func watchChart(ctx context.Context, path string, fn func() error, status io.Writer) error {
	if err := fn(); err != nil {
		printError(status, "%v", err)
	}

	w, err := watch.New(path)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	if err := w.Start(); err != nil {
		w.Stop()
		return fmt.Errorf("watch %s: %w", path, err)
	}
	defer w.Stop()

	printInfo(status, "Watching %s (ctrl+c to stop)", path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-w.Changes:
			if !ok {
				return nil
			}
			if change.Removed {
				printWarning(status, "%s was removed; waiting for it to come back", path)
				continue
			}
			if err := fn(); err != nil {
				printError(status, "%v", err)
			}
		}
	}
}
