package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/systemmap/pkg/pipeline"
)

// extensions maps output formats to file extensions.
var extensions = map[string]string{
	pipeline.FormatJSON:     ".json",
	pipeline.FormatSVG:      ".svg",
	pipeline.FormatDOT:      ".dot",
	pipeline.FormatGraphviz: ".graphviz.svg",
}

// renderCommand creates the render command for generating artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		view       viewFlags
		formatsStr string
		output     string
		detailed   bool
		edges      bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a view of the map to SVG, JSON or DOT",
		Long: `Render a view of the map to one or more formats.

Formats:
  svg       standalone SVG of the laid out map, with expand/collapse hover hints
  json      positioned node map (same as the layout command)
  dot       Graphviz DOT of the visible tree, pinned to the computed positions
  graphviz  SVG drawn by Graphviz from the DOT export

With a single format, --output names the file. With several formats it is
used as a base path and each format gets its own extension.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := view.options()
			opts.Formats = parseFormats(formatsStr)
			opts.Detailed = detailed
			opts.Edges = edges
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, output)
		},
	}

	view.register(cmd)
	_ = cmd.RegisterFlagCompletionFunc("expand", c.completeNodeIDs)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, dot, graphviz (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (default: "+appName+")")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show type, status and size in DOT labels")
	cmd.Flags().BoolVar(&edges, "edges", false, "include connector polylines in JSON output")

	return cmd
}

// runRender renders the requested formats and writes one file per format.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string) error {
	sess, err := c.newSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	opts.Source = sess.source

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()
	result, err := sess.runner.Render(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths := outputPaths(output, opts.Formats)
	p := c.print()
	p.success("Rendered %d format(s)", len(opts.Formats))
	for _, format := range opts.Formats {
		path := paths[format]
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		p.file(path)
	}
	p.stats(result.Stats.VisibleCount, result.Stats.NodeCount, result.CacheInfo.RenderHit)
	return nil
}

// outputPaths decides the file written for each format.
func outputPaths(output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = appName
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	for _, f := range formats {
		paths[f] = base + extensions[f]
	}
	return paths
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	var formats []string
	for f := range strings.SplitSeq(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, f)
		}
	}
	if len(formats) == 0 {
		return []string{pipeline.FormatSVG}
	}
	return formats
}
