package layout

import "math"

// place records b at (x, y) and lays out its visible subtree.
func (e *Engine) place(b *box, x, y float64, level int, parentID string, m Map, order *int) {
	n := b.node
	m[n.ID] = Node{
		ID:           n.ID,
		Type:         n.Type,
		Title:        n.Title,
		Label:        n.Label,
		Status:       n.Status,
		Description:  n.Description,
		Content:      n.Content,
		IframeConfig: n.IframeConfig,
		Gallery:      n.Gallery,
		X:            x,
		Y:            y,
		Width:        b.width,
		Height:       b.height,
		Level:        level,
		BranchHeight: b.branchHeight,
		ParentID:     parentID,
		IsExpanded:   b.expanded,
		Order:        *order,
	}
	*order++

	if !b.expanded || len(b.children) == 0 {
		return
	}

	childX := x + b.width + e.config.HorizontalGap
	if !b.split(e.config.ColumnSplitThreshold) {
		e.placeColumn(b.children, childX, y, level+1, n.ID, m, order)
		return
	}

	first, second := b.columns()
	e.placeColumn(first, childX, y, level+1, n.ID, m, order)
	secondX := childX + e.columnWidth(first) + e.config.HorizontalGap
	e.placeColumn(second, secondX, y, level+1, n.ID, m, order)
}

// placeColumn stacks boxes at x, centred as a group on centerY.
func (e *Engine) placeColumn(boxes []*box, x, centerY float64, level int, parentID string, m Map, order *int) {
	top := centerY - e.stackHeight(boxes)/2
	for _, c := range boxes {
		e.place(c, x, top+c.branchHeight/2, level, parentID, m, order)
		top += c.branchHeight + e.config.VerticalGap
	}
}

// columnWidth is the horizontal span a column claims: its widest member,
// including one level of visible children to the member's right.
func (e *Engine) columnWidth(boxes []*box) float64 {
	var span float64
	for _, b := range boxes {
		w := b.width
		if len(b.children) > 0 {
			var widest float64
			for _, c := range b.children {
				widest = math.Max(widest, c.width)
			}
			w += e.config.HorizontalGap + widest
		}
		span = math.Max(span, w)
	}
	return span
}
