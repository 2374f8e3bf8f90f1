package tree

import "github.com/matzehuels/systemmap/pkg/content"

// Preferred root ids, in priority order.
var rootIDs = []string{"system-map", "root"}

// Entry is one node of a flat collection together with the id of its parent.
// An empty ParentID marks a root candidate.
type Entry struct {
	Node     content.Node
	ParentID string
}

// Build links a flat collection into a single tree.
//
// Children attach to their parents in input order. An entry whose parent
// is empty, missing from the collection, or itself becomes a root
// candidate. The root is the candidate with id "system-map", else "root",
// else the first candidate. With no candidates a placeholder category root
// is returned. Candidates other than the chosen root are not part of the
// returned tree.
//
// Later entries repeating an id are ignored. Children already present on
// entry nodes are discarded. Build copies every node, so the entries may be
// reused afterwards.
func Build(entries []Entry) *content.Node {
	nodes := make(map[string]*content.Node, len(entries))
	parents := make(map[string]string, len(entries))
	var order []string
	for _, e := range entries {
		if _, dup := nodes[e.Node.ID]; dup {
			continue
		}
		n := e.Node
		n.Children = nil
		nodes[n.ID] = &n
		parents[n.ID] = e.ParentID
		order = append(order, n.ID)
	}

	var roots []*content.Node
	for _, id := range order {
		n := nodes[id]
		pid := parents[id]
		if parent, ok := nodes[pid]; ok && pid != id {
			parent.Children = append(parent.Children, n)
			continue
		}
		roots = append(roots, n)
	}

	return selectRoot(roots)
}

func selectRoot(roots []*content.Node) *content.Node {
	for _, id := range rootIDs {
		for _, r := range roots {
			if r.ID == id {
				return r
			}
		}
	}
	if len(roots) > 0 {
		return roots[0]
	}
	return Placeholder()
}

// Placeholder returns the root shown when a source holds no nodes.
func Placeholder() *content.Node {
	return &content.Node{
		ID:          "root",
		Type:        content.TypeCategory,
		Title:       "System Map",
		Description: "No content found. Add nodes to the content source to populate the map.",
	}
}
