package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/internal/config"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/cache"
	mmberrors "github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached layouts and renders",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.config.Cache.Backend != config.BackendFile {
				return mmberrors.New(mmberrors.ErrCodeUnsupported, "cache backend %q cannot be cleared from the CLI", c.config.Cache.Backend)
			}
			fc, err := cache.NewFileCache(c.config.Cache.Dir)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}

			entries, err := os.ReadDir(fc.Dir())
			if err != nil {
				return fmt.Errorf("read cache dir: %w", err)
			}
			if len(entries) == 0 {
				printInfo("Cache is empty")
				return nil
			}
			if err := fc.Clear(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %d cached entries", len(entries))
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.config.Cache.Dir
			if dir == "" {
				d, err := cache.DefaultDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				dir = d
			}
			fmt.Fprintln(stdout, dir)
			return nil
		},
	}
}
