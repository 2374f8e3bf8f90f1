package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/systemmap/pkg/buildinfo"
	"github.com/matzehuels/systemmap/pkg/config"
	"github.com/matzehuels/systemmap/pkg/pipeline"
	"github.com/matzehuels/systemmap/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "systemmap"

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

	// Persistent flags shared by every command.
	configPath string
	sourceKind string
	sourcePath string
	noCache    bool

	// out receives command output. Nil means stdout.
	out io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Systemmap lays out a portfolio tree as an explorable mind map",
		Long: `Systemmap lays out a tree of portfolio content as a left-to-right mind map.
Expanded articles grow to fit their content, large groups split into two
columns and items with an embedded page get a preview frame next to them.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "config file (default: ./"+config.DefaultFile+" if present)")
	flags.StringVar(&c.sourceKind, "source", "", "override the source kind: static, mdoc, sqlite, mongo")
	flags.StringVar(&c.sourcePath, "path", "", "override the source path")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable caching")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the configuration file and applies the flag overrides.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	if c.sourceKind != "" {
		cfg.Source.Kind = c.sourceKind
	}
	if c.sourcePath != "" {
		cfg.Source.Path = c.sourcePath
	}
	if c.noCache {
		cfg.Cache.Kind = config.CacheNone
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	c.Logger.Debug("config loaded", "source", cfg.Source.Kind, "cache", cfg.Cache.Kind)
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// session bundles what a command needs to run the pipeline.
type session struct {
	cfg    config.Config
	runner *pipeline.Runner
	source source.Source

	closeSource func() error
}

// Close releases the runner cache and the source.
func (s *session) Close() error {
	rerr := s.runner.Close()
	if err := s.closeSource(); err != nil {
		return err
	}
	return rerr
}

// newSession loads the configuration, opens the source and builds a runner.
func (c *CLI) newSession(ctx context.Context) (*session, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	src, closeSource, err := cfg.Source.OpenSource(ctx, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	return &session{
		cfg:         cfg,
		runner:      c.newRunner(ctx, cfg),
		source:      src,
		closeSource: closeSource,
	}, nil
}

// newRunner creates a pipeline runner for CLI use. A cache backend that
// cannot be opened degrades to running uncached.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config) *pipeline.Runner {
	ch, err := cfg.Cache.OpenCache(ctx)
	if err != nil {
		c.Logger.Warn("cache unavailable, running uncached", "kind", cfg.Cache.Kind, "error", err)
		ch = nil
	}
	runner := pipeline.NewRunner(ch, nil, &cfg.Layout, c.Logger)
	runner.LayoutTTL = cfg.Cache.LayoutTTL.Duration
	runner.ArtifactTTL = cfg.Cache.ArtifactTTL.Duration
	return runner
}

// =============================================================================
// Output
// =============================================================================

func (c *CLI) stdout() io.Writer {
	if c.out != nil {
		return c.out
	}
	return os.Stdout
}
