package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/systemmap/pkg/content"
)

// Node is a content node positioned by one layout pass.
type Node struct {
	ID           string                `json:"id"`
	Type         content.NodeType      `json:"type"`
	Title        string                `json:"title"`
	Label        string                `json:"label,omitempty"`
	Status       content.Status        `json:"status,omitempty"`
	Description  string                `json:"description,omitempty"`
	Content      string                `json:"content,omitempty"`
	IframeConfig *content.IframeConfig `json:"iframeConfig,omitempty"`
	Gallery      []string              `json:"gallery,omitempty"`

	// X is the left edge, Y the vertical centre.
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Level  int     `json:"level"`

	BranchHeight float64 `json:"branchHeight"`
	ParentID     string  `json:"parentId,omitempty"`
	IsExpanded   bool    `json:"isExpanded"`

	// Order is the node's position in a pre-order walk of the laid out tree.
	Order int `json:"order"`
}

// Left returns the left edge.
func (n Node) Left() float64 { return n.X }

// Right returns the right edge.
func (n Node) Right() float64 { return n.X + n.Width }

// Top returns the upper edge (smaller Y).
func (n Node) Top() float64 { return n.Y - n.Height/2 }

// Bottom returns the lower edge.
func (n Node) Bottom() float64 { return n.Y + n.Height/2 }

// IsPreview reports whether n is a synthetic preview frame.
func (n Node) IsPreview() bool { return n.Type == content.TypeVirtualFrame }

// Map holds the positioned nodes of one layout, keyed by id.
type Map map[string]Node

// Sorted returns the nodes in pre-order: parents before children, siblings
// in child order.
func (m Map) Sorted() []Node {
	nodes := make([]Node, 0, len(m))
	for _, n := range m {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, func(a, b Node) int { return a.Order - b.Order })
	return nodes
}

// Root returns the node without a parent.
func (m Map) Root() (Node, bool) {
	for _, n := range m {
		if n.ParentID == "" {
			return n, true
		}
	}
	return Node{}, false
}

// Children returns the laid out children of id in child order.
func (m Map) Children(id string) []Node {
	var kids []Node
	for _, n := range m {
		if n.ParentID == id && n.ID != id {
			kids = append(kids, n)
		}
	}
	slices.SortFunc(kids, func(a, b Node) int { return a.Order - b.Order })
	return kids
}

// Rect is an axis aligned rectangle.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Bounds returns the smallest rectangle containing every box. An empty map
// has zero bounds.
func (m Map) Bounds() Rect {
	if len(m) == 0 {
		return Rect{}
	}
	r := Rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, n := range m {
		r.MinX = math.Min(r.MinX, n.Left())
		r.MaxX = math.Max(r.MaxX, n.Right())
		r.MinY = math.Min(r.MinY, n.Top())
		r.MaxY = math.Max(r.MaxY, n.Bottom())
	}
	return r
}
