package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/systemmap/pkg/content"
	"github.com/matzehuels/systemmap/pkg/layout"
)

// pointsPerInch converts canvas units to Graphviz inches.
const pointsPerInch = 72.0

// Options configures node-link diagram generation.
type Options struct {
	// Detailed includes type, status and box size in node labels.
	// When false, only the title is shown.
	Detailed bool

	// Positioned pins every node at its canvas position (pos="x,y!").
	// Render such graphs with the neato engine.
	Positioned bool
}

// ToDOT converts a layout map to Graphviz DOT. Nodes appear in pre-order and
// every child is connected to its parent.
//
// Preview frames are drawn dashed and grey, categories filled.
func ToDOT(m layout.Map, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	if opts.Positioned {
		buf.WriteString("  layout=neato;\n")
		buf.WriteString("  splines=ortho;\n")
	}
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	nodes := m.Sorted()
	for _, n := range nodes {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed))
		if opts.Positioned {
			attrs = append(attrs, fmtPos(n)...)
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range nodes {
		if n.ParentID == "" {
			continue
		}
		if _, ok := m[n.ParentID]; !ok {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", n.ParentID, n.ID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n layout.Node, detailed bool) string {
	title := n.Title
	if title == "" {
		title = n.ID
	}
	if !detailed {
		return title
	}

	parts := []string{"type: " + string(n.Type)}
	if n.Status != "" {
		parts = append(parts, "status: "+string(n.Status))
	}
	parts = append(parts, fmt.Sprintf("size: %.0fx%.0f", n.Width, n.Height))
	return title + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n layout.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Type {
	case content.TypeVirtualFrame:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	case content.TypeCategory:
		attrs = append(attrs, "fillcolor=\"#eef2ff\"")
	case content.TypeArticle:
		if n.IsExpanded {
			attrs = append(attrs, "penwidth=2")
		}
	}
	return attrs
}

// fmtPos pins the node's centre. Graphviz uses y-up coordinates, so the
// canvas y axis is flipped.
func fmtPos(n layout.Node) []string {
	cx := (n.X + n.Width/2) / pointsPerInch
	cy := 0 - n.Y/pointsPerInch
	return []string{
		fmt.Sprintf("pos=\"%.2f,%.2f!\"", cx, cy),
		fmt.Sprintf("width=%.2f", n.Width/pointsPerInch),
		fmt.Sprintf("height=%.2f", n.Height/pointsPerInch),
		"fixedsize=true",
	}
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	if strings.Contains(dot, "layout=neato") {
		gv.SetLayout(graphviz.NEATO)
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.\-]+)\s+([0-9.\-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// pixel-sized one so the SVG scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
