package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/systemmap/pkg/layout"
	"github.com/matzehuels/systemmap/pkg/pipeline"
)

// viewFlags holds the flags selecting which view of the map is laid out.
type viewFlags struct {
	expand         []string
	all            bool
	mobile         bool
	viewportWidth  float64
	viewportHeight float64
	refresh        bool
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.expand, "expand", "e", nil, "expanded node id (repeatable; default: only the root)")
	cmd.Flags().BoolVar(&f.all, "all", false, "expand every node")
	cmd.Flags().BoolVar(&f.mobile, "mobile", false, "use mobile sizing")
	cmd.Flags().Float64Var(&f.viewportWidth, "viewport-width", 0, "viewport width for mobile sizing")
	cmd.Flags().Float64Var(&f.viewportHeight, "viewport-height", 0, "viewport height for mobile sizing")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when cached")
}

// options converts the flags into pipeline options.
func (f *viewFlags) options() pipeline.Options {
	opts := pipeline.Options{
		Expanded:  f.expand,
		ExpandAll: f.all,
		Refresh:   f.refresh,
	}
	if f.mobile || f.viewportWidth > 0 || f.viewportHeight > 0 {
		opts.Viewport = &layout.Viewport{
			IsMobile: f.mobile,
			Width:    f.viewportWidth,
			Height:   f.viewportHeight,
		}
	}
	return opts
}

// layoutCommand creates the layout command for computing map layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		view   viewFlags
		output string
		edges  bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute the positioned node map for a view",
		Long: `Compute the positioned node map for a view of the content tree.

The view is selected by the set of expanded nodes (--expand, repeatable or
comma-separated) and the viewport (--mobile with --viewport-width and
--viewport-height). Without --expand only the root is expanded, which is the
view a visitor starts from.

The layout is written as JSON to --output, or to stdout when no output is
given. Results are cached.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := view.options()
			opts.Edges = edges
			return c.runLayout(cmd.Context(), opts, output)
		},
	}

	view.register(cmd)
	_ = cmd.RegisterFlagCompletionFunc("expand", c.completeNodeIDs)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&edges, "edges", false, "include connector polylines")

	return cmd
}

// runLayout computes the layout and writes it as JSON.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string) error {
	sess, err := c.newSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	opts.Source = sess.source
	opts.Formats = []string{pipeline.FormatJSON}

	prog := newProgress(c.Logger)
	result, err := sess.runner.Render(ctx, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	prog.done(fmt.Sprintf("Laid out %d of %d nodes", result.Stats.VisibleCount, result.Stats.NodeCount))

	data := result.Artifacts[pipeline.FormatJSON]
	if output == "" {
		_, err := c.stdout().Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	p := c.print()
	p.success("Layout complete")
	p.file(output)
	p.stats(result.Stats.VisibleCount, result.Stats.NodeCount, result.CacheInfo.LayoutHit)
	p.nextStep("Render", appName+" render "+expandArgs(result.Expanded.IDs()))
	return nil
}

// expandArgs formats ids as repeated --expand flags.
func expandArgs(ids []string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "--expand " + id
	}
	return strings.Join(parts, " ")
}
