package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/astrostats/astrowheel/internal/config"
	"github.com/astrostats/astrowheel/pkg/buildinfo"
	"github.com/astrostats/astrowheel/pkg/cache"
	"github.com/astrostats/astrowheel/pkg/observability"
	"github.com/astrostats/astrowheel/pkg/pipeline"
)

const appName = "astrowheel"

// Levels accepted by [New].
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI carries what every subcommand shares: the logger, the resolved
// configuration and the persistent flags.
type CLI struct {
	Logger *log.Logger

	viper   *viper.Viper
	cfg     config.Config
	cfgFile string
	noCache bool
}

// New returns a CLI that logs to w at the given level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		viper:  viper.New(),
	}
}

func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Astrowheel keeps planet glyphs on a chart wheel from overlapping",
		Long: `Astrowheel takes the raw longitudes of a birth chart and computes display
longitudes for each glyph so that crowded bodies spread apart while staying
inside their house. Layouts can be printed, browsed, rendered to SVG, or
served over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			if c.cfg.Verbose {
				c.SetLogLevel(LogDebug)
				observability.Register(observability.NewLogHooks(c.Logger))
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default .astrowheel.yaml in the working directory or $HOME)")
	flags.BoolP("verbose", "v", false, "enable verbose logging")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the layout and render cache")
	_ = c.viper.BindPFlag("verbose", flags.Lookup("verbose"))

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and environment into c.cfg.
func (c *CLI) loadConfig() error {
	home, _ := os.UserHomeDir()
	if err := config.Init(c.viper, c.cfgFile, home); err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	cfg, err := config.Load(c.viper)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	if used := c.viper.ConfigFileUsed(); used != "" {
		c.Logger.Debug("loaded config", "file", used)
	}
	return nil
}

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	ch, err := c.openCache(ctx)
	if err != nil {
		return nil, err
	}
	// Entries written by another release are never reused.
	r := pipeline.NewRunner(ch, cache.Prefixed(nil, buildinfo.Version+":"), c.Logger)
	r.TTL = c.cfg.Cache.TTL
	return r, nil
}

func (c *CLI) openCache(ctx context.Context) (cache.Cache, error) {
	opts := c.cfg.CacheOptions()
	if c.noCache {
		opts.Backend = cache.BackendNone
	}
	ch, err := cache.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", opts.Backend, err)
	}
	c.Logger.Debug("opened cache", "backend", opts.Backend)
	return ch, nil
}

// cacheDir returns the file cache directory: the configured one, or the
// per-user default (~/.cache/astrowheel on Linux).
func (c *CLI) cacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// engineFlags holds the layout flags shared by every command that runs the engine.
type engineFlags struct {
	gap         float64
	minDistance float64
	refresh     bool
}

func (f *engineFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.gap, "gap", pipeline.DefaultGap, "separation in degrees below which two glyphs collide")
	cmd.Flags().Float64Var(&f.minDistance, "min-distance", pipeline.DefaultMinDistance, "separation in degrees a spread pair is pushed out to")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when a cached result exists")
}

// options returns pipeline options from the configuration, overridden by the
// flags the user actually set.
func (c *CLI) options(cmd *cobra.Command, f *engineFlags) pipeline.Options {
	opts := c.cfg.PipelineOptions()
	opts.Logger = c.Logger
	if cmd.Flags().Changed("gap") {
		opts.Gap = f.gap
	}
	if cmd.Flags().Changed("min-distance") {
		opts.MinDistance = f.minDistance
	}
	opts.Refresh = f.refresh
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.DefaultFormat}
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}
