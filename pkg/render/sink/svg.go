package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/systemmap/pkg/content"
	"github.com/matzehuels/systemmap/pkg/layout"
)

const (
	defaultPadding = 40.0

	titleFontSize = 18.0
	labelFontSize = 11.0
	fontCharWidth = 0.55
	cornerRadius  = 12.0
	textInset     = 16.0
)

const nodeInteractionCSS = `
    .node rect { transition: stroke-width 0.2s ease; }
    .node.highlight rect { stroke-width: 4; }
    .edge.highlight { stroke: #334155; }`

const nodeInteractionJS = `
    function highlight(id) {
      document.querySelectorAll('.edge').forEach(e => e.classList.toggle('highlight', e.dataset.from === id || e.dataset.to === id));
      document.querySelectorAll('.node').forEach(n => n.classList.toggle('highlight', n.id === 'node-' + id));
    }
    function clearHighlight() {
      document.querySelectorAll('.node, .edge').forEach(el => el.classList.remove('highlight'));
    }
    document.querySelectorAll('.node').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(el.id.replace('node-', '')));
      el.addEventListener('mouseleave', clearHighlight);
    });`

type palette struct {
	fill, stroke, dash string
}

var palettes = map[content.NodeType]palette{
	content.TypeCategory:     {fill: "#eef2ff", stroke: "#6366f1"},
	content.TypeArticle:      {fill: "#ffffff", stroke: "#334155"},
	content.TypeVirtualFrame: {fill: "#f8fafc", stroke: "#94a3b8", dash: "8 6"},
}

var statusColors = map[content.Status]string{
	content.StatusConcept:    "#a855f7",
	content.StatusPrototype:  "#f59e0b",
	content.StatusProduction: "#10b981",
	content.StatusArchived:   "#6b7280",
}

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	padding     float64
	edges       bool
	interactive bool
}

// WithPadding sets the margin around the canvas bounds.
func WithPadding(p float64) SVGOption { return func(r *svgRenderer) { r.padding = p } }

// WithoutEdges omits connectors.
func WithoutEdges() SVGOption { return func(r *svgRenderer) { r.edges = false } }

// WithInteraction embeds hover highlighting of a node and its connectors.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// RenderSVG draws the layout. Connectors are drawn first so boxes cover
// their ends.
func RenderSVG(m layout.Map, opts ...SVGOption) []byte {
	r := svgRenderer{padding: defaultPadding, edges: true}
	for _, opt := range opts {
		opt(&r)
	}

	b := m.Bounds()
	width := b.Width() + 2*r.padding
	height := b.Height() + 2*r.padding

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, `  <g transform="translate(%.1f %.1f)" font-family="Inter, Helvetica, sans-serif">`+"\n",
		r.padding-b.MinX, r.padding-b.MinY)

	if r.edges {
		for _, e := range m.Edges() {
			renderEdge(&buf, e)
		}
	}
	for _, n := range m.Sorted() {
		renderNode(&buf, n)
	}

	buf.WriteString("  </g>\n")
	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", nodeInteractionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", nodeInteractionJS)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderEdge(buf *bytes.Buffer, e layout.Edge) {
	pts := make([]string, len(e.Points))
	for i, p := range e.Points {
		pts[i] = fmt.Sprintf("%.1f,%.1f", p.X, p.Y)
	}
	fmt.Fprintf(buf, `    <polyline class="edge" data-from="%s" data-to="%s" points="%s" fill="none" stroke="#94a3b8" stroke-width="2"/>`+"\n",
		escapeXML(e.From), escapeXML(e.To), strings.Join(pts, " "))
}

func renderNode(buf *bytes.Buffer, n layout.Node) {
	p, ok := palettes[n.Type]
	if !ok {
		p = palettes[content.TypeArticle]
	}
	strokeWidth := 1.5
	if n.IsExpanded {
		strokeWidth = 2.5
	}

	fmt.Fprintf(buf, `    <g class="node node-%s" id="node-%s">`+"\n", n.Type, escapeXML(n.ID))
	fmt.Fprintf(buf, `      <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.0f" fill="%s" stroke="%s" stroke-width="%.1f"`,
		n.Left(), n.Top(), n.Width, n.Height, cornerRadius, p.fill, p.stroke, strokeWidth)
	if p.dash != "" {
		fmt.Fprintf(buf, ` stroke-dasharray="%s"`, p.dash)
	}
	buf.WriteString("/>\n")

	x := n.Left() + textInset
	avail := n.Width - 2*textInset
	labelY := n.Top() + textInset + labelFontSize
	fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" font-size="%.0f" fill="#64748b" letter-spacing="1">%s</text>`+"\n",
		x, labelY, labelFontSize, escapeXML(truncate(strings.ToUpper(displayLabel(n)), avail, labelFontSize)))

	title := n.Title
	if title == "" {
		title = n.ID
	}
	titleY := labelY + textInset + titleFontSize
	fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" font-size="%.0f" font-weight="600" fill="#0f172a">%s</text>`+"\n",
		x, titleY, titleFontSize, escapeXML(truncate(title, avail, titleFontSize)))

	if color, ok := statusColors[n.Status]; ok {
		fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" font-size="%.0f" fill="%s">%s</text>`+"\n",
			x, n.Bottom()-textInset, labelFontSize, color, escapeXML(string(n.Status)))
	}
	buf.WriteString("    </g>\n")
}

func displayLabel(n layout.Node) string {
	c := content.Node{Type: n.Type, Label: n.Label}
	return c.DisplayLabel()
}

// truncate shortens s with ".." so it fits avail units at fontSize.
func truncate(s string, avail, fontSize float64) string {
	maxChars := max(3, int(avail/(fontSize*fontCharWidth)))
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars-2]) + ".."
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
