package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/astrostats/astrowheel/pkg/cache"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or empty the local file cache",
		Long: `Inspect or empty the local file cache.

Only the file backend lives on this machine. Redis and MongoDB entries expire
on their own, so these commands refuse to run against them.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory",
			RunE: func(cmd *cobra.Command, args []string) error {
				dir, err := c.cacheDir()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), dir)
				return nil
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Count cached entries and their size on disk",
			RunE: func(cmd *cobra.Command, args []string) error {
				fc, err := c.fileCache()
				if err != nil {
					return err
				}
				u, err := fc.Usage()
				if err != nil {
					return fmt.Errorf("scan %s: %w", fc.Dir(), err)
				}
				out := cmd.OutOrStdout()
				printInfo(out, "%d entries, %s", u.Entries, humanize.Bytes(uint64(u.Bytes)))
				if u.Expired > 0 {
					printDetail(out, "%d expired", u.Expired)
				}
				printDetail(out, "Directory: %s", fc.Dir())
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every cached layout and artifact",
			RunE: func(cmd *cobra.Command, args []string) error {
				fc, err := c.fileCache()
				if err != nil {
					return err
				}
				n, err := fc.Clear()
				if err != nil {
					return fmt.Errorf("clear %s: %w", fc.Dir(), err)
				}
				out := cmd.OutOrStdout()
				if n == 0 {
					printInfo(out, "Cache is empty")
					return nil
				}
				printSuccess(out, "Cleared %d cached entries", n)
				printDetail(out, "Directory: %s", fc.Dir())
				return nil
			},
		},
	)
	return cmd
}

// fileCache opens the configured file cache, failing for remote backends.
func (c *CLI) fileCache() (*cache.FileCache, error) {
	if b := cache.Backend(c.cfg.Cache.Backend); b != "" && b != cache.BackendFile {
		return nil, fmt.Errorf("the %s backend is not managed locally; set cache.backend to file", b)
	}
	dir, err := c.cacheDir()
	if err != nil {
		return nil, err
	}
	return cache.NewFileCache(dir)
}
