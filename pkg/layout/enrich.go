package layout

import (
	"math"

	"github.com/matzehuels/systemmap/pkg/content"
	"github.com/matzehuels/systemmap/pkg/tree"
)

// box is a node sized by the enrichment pass. Children are only populated
// for expanded nodes.
type box struct {
	node         *content.Node
	width        float64
	height       float64
	branchHeight float64
	expanded     bool
	children     []*box
}

// split reports whether the children are laid out in two columns.
func (b *box) split(threshold int) bool {
	return len(b.children) > threshold
}

// columns returns the children of each column. The first column takes the
// larger half.
func (b *box) columns() (first, second []*box) {
	half := (len(b.children) + 1) / 2
	return b.children[:half], b.children[half:]
}

func (e *Engine) enrich(n *content.Node, expanded tree.Set, vp *Viewport) *box {
	b := &box{node: n, expanded: expanded.Has(n.ID)}
	b.width, b.height = e.size(n, b.expanded, vp)
	b.branchHeight = b.height

	if !b.expanded {
		return b
	}

	kids := visibleChildren(n)
	if len(kids) == 0 {
		return b
	}
	b.children = make([]*box, len(kids))
	for i, k := range kids {
		b.children[i] = e.enrich(k, expanded, vp)
	}

	occupied := e.stackHeight(b.children)
	if b.split(e.config.ColumnSplitThreshold) {
		first, second := b.columns()
		occupied = math.Max(e.stackHeight(first), e.stackHeight(second))
	}
	b.branchHeight = math.Max(b.height, occupied)
	return b
}

// visibleChildren returns the children of an expanded node, with the
// preview frame appended when the node embeds a page. The authored slice is
// never modified.
func visibleChildren(n *content.Node) []*content.Node {
	if n.Type == content.TypeVirtualFrame || !n.IframeConfig.HasURL() {
		return n.Children
	}
	kids := make([]*content.Node, 0, len(n.Children)+1)
	kids = append(kids, n.Children...)
	return append(kids, previewNode(n))
}

func previewNode(n *content.Node) *content.Node {
	return &content.Node{
		ID:    n.ID + PreviewSuffix,
		Type:  content.TypeVirtualFrame,
		Title: n.Title,
		IframeConfig: &content.IframeConfig{
			URL:         n.IframeConfig.URL,
			Orientation: content.ParseOrientation(string(n.IframeConfig.Orientation)),
		},
	}
}

// stackHeight is the height of boxes stacked in one column.
func (e *Engine) stackHeight(boxes []*box) float64 {
	if len(boxes) == 0 {
		return 0
	}
	total := float64(len(boxes)-1) * e.config.VerticalGap
	for _, b := range boxes {
		total += b.branchHeight
	}
	return total
}

// size returns the box of n for its expansion state.
func (e *Engine) size(n *content.Node, expanded bool, vp *Viewport) (width, height float64) {
	cfg := e.config
	switch n.Type {
	case content.TypeVirtualFrame:
		s := cfg.PreviewDesktop
		if n.IframeConfig != nil && n.IframeConfig.Orientation == content.OrientationMobile {
			s = cfg.PreviewMobile
		}
		return s.Width, s.Height
	case content.TypeArticle:
		if expanded {
			return e.expandedSize(n, vp)
		}
	case content.TypeCategory:
	}
	return cfg.NodeWidth, cfg.NodeHeight
}

func (e *Engine) expandedSize(n *content.Node, vp *Viewport) (width, height float64) {
	cfg := e.config
	if vp.Mobile() {
		width = clamp(vp.Width*cfg.MobileWidthRatio, cfg.MobileMinWidth, cfg.MobileMaxWidth)
		return width, math.Max(e.EstimateHeight(n, width, true), cfg.MobileMinHeight)
	}
	width = cfg.ExpandedWidth
	if n.Content == "" && len(n.Gallery) == 0 {
		return width, cfg.ExpandedHeight
	}
	return width, math.Max(e.EstimateHeight(n, width, false), cfg.ExpandedHeight)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
