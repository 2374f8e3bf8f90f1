package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/systemmap/pkg/cache"
	"github.com/matzehuels/systemmap/pkg/config"
	errs "github.com/matzehuels/systemmap/pkg/errors"
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
		Short: "Drop every cached layout and artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Cache.Kind == config.CacheNone {
				c.print().info("Caching is disabled")
				return nil
			}

			ch, err := cfg.Cache.OpenCache(cmd.Context())
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer ch.Close()

			clearer, ok := ch.(cache.Clearer)
			if !ok {
				return errs.New(errs.ErrCodeUnsupported, "%s cache cannot be cleared", cfg.Cache.Kind)
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			p := c.print()
			p.success("Cleared %s cache", cfg.Cache.Kind)
			if fc, ok := ch.(*cache.FileCache); ok {
				p.detail("Directory: %s", fc.Dir())
			}
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
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Cache.Kind != config.CacheFile {
				return errs.New(errs.ErrCodeUnsupported, "%s cache has no directory", cfg.Cache.Kind)
			}
			dir, err := cacheDir(cfg.Cache)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(c.stdout(), dir)
			return nil
		},
	}
}

// cacheDir returns the configured file cache directory, falling back to
// the per-user cache directory (~/.cache/systemmap on Linux).
func cacheDir(cfg config.CacheConfig) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	return cache.DefaultDir()
}
