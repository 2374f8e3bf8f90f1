// Package content defines the authored content tree rendered by systemmap.
//
// A [Node] is one portfolio item: a structural category, an article that can
// expand in place, or a virtual frame embedding an external page. Nodes own
// their children exclusively and carry no parent pointer; parent identity is
// reconstructed by traversal (see package tree).
//
// Trees are treated as immutable once built. The layout engine reads them
// concurrently from many calls and never writes back.
package content

import errs "github.com/matzehuels/systemmap/pkg/errors"

// NodeType is the closed set of node variants.
type NodeType string

const (
	// TypeCategory nodes are structural containers.
	TypeCategory NodeType = "category"
	// TypeArticle nodes hold content and grow when expanded.
	TypeArticle NodeType = "article"
	// TypeVirtualFrame nodes embed an iframe. They are synthesised at layout
	// time and are not authored directly.
	TypeVirtualFrame NodeType = "virtual-frame"
)

// Valid reports whether t is one of the known variants.
func (t NodeType) Valid() bool {
	switch t {
	case TypeCategory, TypeArticle, TypeVirtualFrame:
		return true
	}
	return false
}

// Status is the lifecycle badge shown on a card.
type Status string

const (
	StatusNone       Status = ""
	StatusConcept    Status = "concept"
	StatusPrototype  Status = "prototype"
	StatusProduction Status = "production"
	StatusArchived   Status = "archived"
)

// ParseStatus maps s to a Status. Unknown values map to StatusNone.
func ParseStatus(s string) Status {
	switch st := Status(s); st {
	case StatusConcept, StatusPrototype, StatusProduction, StatusArchived:
		return st
	}
	return StatusNone
}

// Orientation selects the embedded frame size.
type Orientation string

const (
	OrientationDesktop Orientation = "desktop"
	OrientationMobile  Orientation = "mobile"
)

// ParseOrientation maps s to an Orientation, defaulting to desktop.
func ParseOrientation(s string) Orientation {
	if Orientation(s) == OrientationMobile {
		return OrientationMobile
	}
	return OrientationDesktop
}

// IframeConfig describes an external page embedded next to a node.
type IframeConfig struct {
	URL         string      `json:"url" bson:"url" yaml:"url"`
	Orientation Orientation `json:"orientation" bson:"orientation" yaml:"orientation"`
}

// HasURL reports whether the config names a page to embed.
func (c *IframeConfig) HasURL() bool {
	return c != nil && c.URL != ""
}

// Node is one entry of the content tree.
type Node struct {
	ID          string   `json:"id"`
	Type        NodeType `json:"type"`
	Title       string   `json:"title"`
	Label       string   `json:"label,omitempty"`
	Status      Status   `json:"status,omitempty"`
	Description string   `json:"description,omitempty"`

	// Content is the serialised rich-document payload (a JSON array of
	// blocks, see package document). Empty means no content.
	Content string `json:"content,omitempty"`

	IframeConfig *IframeConfig `json:"iframeConfig,omitempty"`
	Gallery      []string      `json:"gallery,omitempty"`
	Children     []*Node       `json:"children,omitempty"`
}

// Validate checks the fields every source enforces at load time: the id
// must be usable as a slug and URL parameter, and an embedded page must be
// served over http or https. Children are not visited.
func (n *Node) Validate() error {
	if err := errs.ValidateNodeID(n.ID); err != nil {
		return err
	}
	if n.IframeConfig.HasURL() {
		if err := errs.ValidateURL(n.IframeConfig.URL); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidContent, err, "node %q preview", n.ID)
		}
	}
	return nil
}

// HasChildren reports whether n has authored children.
func (n *Node) HasChildren() bool {
	return n != nil && len(n.Children) > 0
}

// DisplayLabel returns the label if set, otherwise a label derived from the type.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	switch n.Type {
	case TypeCategory:
		return "Category"
	case TypeArticle:
		return "Article"
	case TypeVirtualFrame:
		return "Preview"
	}
	return ""
}
