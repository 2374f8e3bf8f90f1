// Package layout positions a content tree on the infinite canvas.
//
// # Overview
//
// The engine turns a content tree, the set of expanded node ids and an
// optional viewport into a flat [Map] of positioned nodes. It runs in two
// passes:
//
//  1. Enrichment (bottom-up): every visible node receives a box width and
//     height and a branch height, the vertical space its visible subtree
//     occupies. Expanded nodes with an iframe gain a synthetic preview child.
//  2. Coordinates (top-down): the root sits at (0, 0); children are placed
//     one horizontal gap to the right of their parent and centred as a group
//     on the parent's centre. More than [Config.ColumnSplitThreshold]
//     children are split into two columns.
//
// # Coordinate System
//
// X is the LEFT edge of a box and Y is its vertical CENTRE. Expanded nodes
// therefore grow rightward and keep their left edge fixed, and siblings
// stay centred when a neighbour changes height.
//
// # Visibility
//
// The root is always present. A node's children are laid out only when the
// node is expanded, so a node appears in the output exactly when every
// ancestor on its path is in the expanded set. Expanded ids that name no
// node are ignored.
//
// # Sizing
//
// Collapsed nodes and categories use the card size. Expanded articles grow
// to the expanded width and a height estimated from their content (see
// [Engine.EstimateHeight]); on mobile the width follows the viewport.
// Preview frames are sized by their orientation only.
//
// # Determinism
//
// [Engine.Calculate] is a pure function of its inputs: it performs no I/O
// and two calls with equal inputs return equal maps. Results may be cached
// by input (see package cache).
//
// # Quick Start
//
//	root, _ := content.ReadTreeFile("content.json")
//	m := layout.Calculate(root, tree.InitialSet(root), nil)
//	for _, n := range m.Sorted() {
//	    fmt.Println(n.ID, n.X, n.Y, n.Width, n.Height)
//	}
package layout
