package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltree "github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/matzehuels/systemmap/pkg/content"
	errs "github.com/matzehuels/systemmap/pkg/errors"
	"github.com/matzehuels/systemmap/pkg/pipeline"
	"github.com/matzehuels/systemmap/pkg/tree"
)

// treeCommand creates the tree command for querying the content tree.
func (c *CLI) treeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Inspect the content tree",
	}

	cmd.AddCommand(c.treePrintCommand())
	cmd.AddCommand(c.treeFindCommand())
	cmd.AddCommand(c.treePathCommand())
	cmd.AddCommand(c.treeDescendantsCommand())

	return cmd
}

// treePrintCommand creates the "tree print" subcommand.
func (c *CLI) treePrintCommand() *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the tree as an outline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := c.loadTree(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(c.stdout(), outline(root, depth))
			return nil
		},
	}
	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "maximum depth to print (0: unlimited)")
	return cmd
}

// treeFindCommand creates the "tree find" subcommand.
func (c *CLI) treeFindCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "find <id>",
		Short: "Show a node",
		Args:  cobra.ExactArgs(1),

		ValidArgsFunction: c.completeFirstNodeID,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := c.loadTree(cmd.Context())
			if err != nil {
				return err
			}
			n := tree.FindNode(root, args[0])
			if n == nil {
				return errs.New(errs.ErrCodeNodeNotFound, "node %q not found", args[0])
			}
			c.printNode(n)
			return nil
		},
	}
}

// treePathCommand creates the "tree path" subcommand.
func (c *CLI) treePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path <id>",
		Short: "Print the ids from the root down to a node",
		Args:  cobra.ExactArgs(1),

		ValidArgsFunction: c.completeFirstNodeID,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := c.loadTree(cmd.Context())
			if err != nil {
				return err
			}
			path := tree.PathToNode(root, args[0])
			if path == nil {
				return errs.New(errs.ErrCodeNodeNotFound, "node %q not found", args[0])
			}
			fmt.Fprintln(c.stdout(), strings.Join(path, " "+iconArrow+" "))
			return nil
		},
	}
}

// treeDescendantsCommand creates the "tree descendants" subcommand.
func (c *CLI) treeDescendantsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "descendants <id>",
		Short: "List every id below a node",
		Args:  cobra.ExactArgs(1),

		ValidArgsFunction: c.completeFirstNodeID,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := c.loadTree(cmd.Context())
			if err != nil {
				return err
			}
			n := tree.FindNode(root, args[0])
			if n == nil {
				return errs.New(errs.ErrCodeNodeNotFound, "node %q not found", args[0])
			}
			for _, id := range tree.DescendantIDs(n) {
				fmt.Fprintln(c.stdout(), id)
			}
			return nil
		},
	}
}

// loadTree opens the configured source and loads its tree.
func (c *CLI) loadTree(ctx context.Context) (*content.Node, error) {
	sess, err := c.newSession(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()
	return sess.runner.LoadTree(ctx, pipeline.Options{Source: sess.source})
}

// =============================================================================
// Formatting
// =============================================================================

var (
	outlineEnumStyle = lipgloss.NewStyle().Foreground(colorDim).MarginRight(1)
	outlineRootStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
)

// outline renders n as a tree. depth limits the levels below n; zero or
// less prints everything.
func outline(n *content.Node, depth int) string {
	t := outlineTree(n, depth, 0).
		Enumerator(ltree.RoundedEnumerator).
		EnumeratorStyle(outlineEnumStyle).
		RootStyle(outlineRootStyle)
	return t.String()
}

func outlineTree(n *content.Node, depth, level int) *ltree.Tree {
	t := ltree.Root(nodeLine(n))
	if depth > 0 && level >= depth {
		if n.HasChildren() {
			t.Child(StyleDim.Render(fmt.Sprintf("… %d more", len(tree.DescendantIDs(n)))))
		}
		return t
	}
	for _, child := range n.Children {
		if child.HasChildren() {
			t.Child(outlineTree(child, depth, level+1))
			continue
		}
		t.Child(nodeLine(child))
	}
	return t
}

// nodeLine formats a node as "title (id) [status]".
func nodeLine(n *content.Node) string {
	line := nodeTitle(n) + " " + StyleDim.Render("("+n.ID+")")
	if n.Status != content.StatusNone {
		line += " " + statusStyle(n.Status).Render(string(n.Status))
	}
	return line
}

func statusStyle(s content.Status) lipgloss.Style {
	switch s {
	case content.StatusProduction:
		return StyleSuccess
	case content.StatusPrototype:
		return StyleHighlight
	case content.StatusConcept:
		return StyleWarning
	}
	return StyleDim
}

// printNode prints the details of a single node.
func (c *CLI) printNode(n *content.Node) {
	p := c.print()
	p.line(StyleTitle.Render(nodeTitle(n)))
	p.keyValue("ID", n.ID)
	p.keyValue("Type", string(n.Type))
	p.keyValue("Label", n.DisplayLabel())
	if n.Status != content.StatusNone {
		p.keyValue("Status", string(n.Status))
	}
	if n.Description != "" {
		p.keyValue("Description", n.Description)
	}
	if n.IframeConfig.HasURL() {
		p.keyValue("Preview", n.IframeConfig.URL+" ("+string(n.IframeConfig.Orientation)+")")
	}
	if len(n.Gallery) > 0 {
		p.keyValue("Gallery", strconv.Itoa(len(n.Gallery))+" image(s)")
	}
	p.keyValue("Children", strconv.Itoa(len(n.Children)))
	p.keyValue("Descendants", strconv.Itoa(len(tree.DescendantIDs(n))))
}

func nodeTitle(n *content.Node) string {
	if n.Title != "" {
		return n.Title
	}
	return n.ID
}
