package layout

// Point is a position in world units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is the connector drawn between a parent and one of its children.
type Edge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Points []Point `json:"points"`
}

// Connector routes the orthogonal line from parent's right edge at its
// centre to child's left edge at its centre, turning at the horizontal
// midpoint.
func Connector(parent, child Node) []Point {
	startX, startY := parent.Right(), parent.Y
	endX, endY := child.Left(), child.Y
	midX := (startX + endX) / 2
	return []Point{
		{startX, startY},
		{midX, startY},
		{midX, endY},
		{endX, endY},
	}
}

// Edges returns one connector per node with a parent, in pre-order of the
// child.
func (m Map) Edges() []Edge {
	var edges []Edge
	for _, child := range m.Sorted() {
		if child.ParentID == "" {
			continue
		}
		parent, ok := m[child.ParentID]
		if !ok {
			continue
		}
		edges = append(edges, Edge{From: parent.ID, To: child.ID, Points: Connector(parent, child)})
	}
	return edges
}
