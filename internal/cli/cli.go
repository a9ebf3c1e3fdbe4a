// Package cli implements the mmb command-line interface.
//
// Commands:
//   - layout: lay out a world file and write its history (.mmbh)
//   - render: draw snapshots of a history or world as SVG, PNG, text or DOT
//   - view: step through a history in the terminal
//   - list: show layouts kept in the history store
//   - serve: run the HTTP API
//   - cache: inspect or clear the layout cache
//   - completion: shell completion scripts
//
// Settings come from mmb.toml (see internal/config); flags override them.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/internal/config"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/buildinfo"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/cache"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/pipeline"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the binary name used in help text.
const appName = "mmb"

// configEnv names the environment variable that points at a config file.
const configEnv = "MMB_CONFIG"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), config: config.Default()}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "mmb lays out MUD areas on a grid",
		Long: `mmb turns a MUD world (rooms and their exits) into a grid map where every
exit runs straight to its neighbour whenever possible, and records each step
of the layout so it can be replayed.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $"+configEnv+" or <user config dir>/mmb/mmb.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file. An explicitly named file must exist;
// the default location is optional.
func (c *CLI) loadConfig() error {
	path, required := c.configPath, true
	if path == "" {
		path = os.Getenv(configEnv)
	}
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil
		}
		path, required = p, false
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return err
	}
	c.config = cfg
	c.Logger.Debug("loaded config", "path", path, "cache", cfg.Cache.Backend, "store", cfg.Store.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner with the configured cache and store.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	var lc cache.Cache = cache.NewNullCache()
	if !noCache {
		opened, err := c.config.OpenCache(ctx)
		if err != nil {
			c.Logger.Warn("cache unavailable, continuing without", "error", err)
		} else {
			lc = opened
		}
	}
	st, err := c.openStore(ctx)
	if err != nil {
		_ = lc.Close()
		return nil, err
	}
	r := pipeline.NewRunner(lc, c.config.Keyer(), st, c.Logger)
	r.TTL = c.config.Cache.TTL.Duration
	return r, nil
}

func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	st, err := c.config.OpenStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// pipelineOptions returns config defaults for a run.
func (c *CLI) pipelineOptions() pipeline.Options {
	opts := c.config.PipelineOptions()
	opts.Logger = c.Logger
	return opts
}
