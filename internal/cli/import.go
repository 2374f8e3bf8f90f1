package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/systemmap/pkg/config"
	errs "github.com/matzehuels/systemmap/pkg/errors"
	"github.com/matzehuels/systemmap/pkg/source"
)

// importCommand creates the import command that copies a tree into a
// database source.
func (c *CLI) importCommand() *cobra.Command {
	var from, fromKind string

	cmd := &cobra.Command{
		Use:   "import --from <path>",
		Short: "Copy a tree file or content directory into the configured database",
		Long: `Copy a content tree into the configured sqlite or mongo source.

The input is a JSON tree file or a directory of .mdoc files; directories are
read as mdoc unless --from-kind says otherwise. Every stored node is replaced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(cmd.Context(), from, fromKind)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "input tree file or content directory")
	cmd.Flags().StringVar(&fromKind, "from-kind", "", "input kind: static, mdoc (default: by path)")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}

func (c *CLI) runImport(ctx context.Context, from, fromKind string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	in := config.SourceConfig{Kind: fromKind, Path: from}
	if in.Kind == "" {
		in.Kind = inputKind(from)
	}
	if in.Kind != config.SourceStatic && in.Kind != config.SourceMdoc {
		return errs.New(errs.ErrCodeInvalidInput, "cannot import from %s sources", in.Kind)
	}

	src, closeIn, err := in.OpenSource(ctx, c.Logger)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer closeIn()

	spinner := newSpinnerWithContext(ctx, "Loading "+src.Name()+"...")
	spinner.Start()
	defer spinner.Stop()

	root, err := src.Load(ctx)
	if err != nil {
		spinner.StopWithError("Import failed")
		return fmt.Errorf("load %s: %w", src.Name(), err)
	}
	records := source.Flatten(root)

	w, closeOut, err := cfg.Source.OpenWriter(ctx)
	if err != nil {
		spinner.StopWithError("Import failed")
		return err
	}
	defer closeOut()

	spinner.Update(fmt.Sprintf("Writing %d nodes...", len(records)))
	if err := w.Replace(ctx, records); err != nil {
		spinner.StopWithError("Import failed")
		return fmt.Errorf("write %s source: %w", cfg.Source.Kind, err)
	}
	spinner.Stop()

	p := c.print()
	p.success("Imported %d nodes", len(records))
	p.detail("From: %s", src.Name())
	p.detail("Into: %s", cfg.Source.Kind)
	return nil
}

// inputKind guesses the source kind of an import path.
func inputKind(path string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return config.SourceMdoc
	}
	return config.SourceStatic
}
