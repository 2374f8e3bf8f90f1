// Package tree provides read-only traversal helpers over a content tree,
// construction of a tree from a flat collection of entries, and the
// expansion set that drives which parts of the tree are visible.
//
// The helpers never mutate the tree. Content trees are acyclic by
// construction, so no cycle protection is needed.
package tree

import "github.com/matzehuels/systemmap/pkg/content"

// FindNode returns the first node with the given id in a depth-first
// pre-order search from root, or nil if no such node exists.
func FindNode(root *content.Node, id string) *content.Node {
	if root == nil {
		return nil
	}
	if root.ID == id {
		return root
	}
	for _, child := range root.Children {
		if found := FindNode(child, id); found != nil {
			return found
		}
	}
	return nil
}

// DescendantIDs returns the ids of every node strictly below n, in
// pre-order: a parent precedes its own children, siblings keep their
// order.
func DescendantIDs(n *content.Node) []string {
	if n == nil {
		return nil
	}
	var ids []string
	var walk func(*content.Node)
	walk = func(node *content.Node) {
		for _, child := range node.Children {
			ids = append(ids, child.ID)
			walk(child)
		}
	}
	walk(n)
	return ids
}

// PathToNode returns the id chain from root to the node with targetID,
// inclusive on both ends. It returns nil when the target is unreachable.
func PathToNode(root *content.Node, targetID string) []string {
	if root == nil {
		return nil
	}
	if root.ID == targetID {
		return []string{root.ID}
	}
	for _, child := range root.Children {
		if sub := PathToNode(child, targetID); sub != nil {
			return append([]string{root.ID}, sub...)
		}
	}
	return nil
}

// Walk calls fn for every node in pre-order with its depth (root = 0).
// Returning false from fn skips that node's subtree.
func Walk(root *content.Node, fn func(n *content.Node, depth int) bool) {
	var walk func(*content.Node, int)
	walk = func(n *content.Node, depth int) {
		if !fn(n, depth) {
			return
		}
		for _, child := range n.Children {
			walk(child, depth+1)
		}
	}
	if root != nil {
		walk(root, 0)
	}
}

// Count returns the number of nodes in the tree rooted at root.
func Count(root *content.Node) int {
	n := 0
	Walk(root, func(*content.Node, int) bool {
		n++
		return true
	})
	return n
}
