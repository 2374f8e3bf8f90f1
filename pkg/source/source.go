// Package source defines where content trees come from.
//
// A [Source] returns the whole tree in one call. Collection backends (a
// directory of .mdoc files, a SQLite table, a MongoDB collection) store
// nodes flat as [Record] values with a parent reference; [BuildTree] links
// them into a single root the same way for every backend.
//
// # Backends
//
//   - static: a JSON tree file or an in-memory tree
//   - mdoc: a Keystatic-style directory of markdown files with frontmatter
//   - sqlite: a nodes table in a SQLite database
//   - mongo: a MongoDB collection
package source

import (
	"context"
	"slices"
	"strings"

	"github.com/matzehuels/systemmap/pkg/content"
	errs "github.com/matzehuels/systemmap/pkg/errors"
	"github.com/matzehuels/systemmap/pkg/tree"
)

// Source loads a content tree.
type Source interface {
	// Name identifies the source in logs and cache keys.
	Name() string
	// Load returns the current tree. Implementations return a fresh tree on
	// every call; callers may not mutate it.
	Load(ctx context.Context) (*content.Node, error)
}

// Record is one node as stored by a collection backend.
type Record struct {
	ID          string                `json:"id" bson:"_id" yaml:"-"`
	ParentID    string                `json:"parent,omitempty" bson:"parent,omitempty" yaml:"parent"`
	Type        string                `json:"type" bson:"type" yaml:"type"`
	Title       string                `json:"title" bson:"title" yaml:"title"`
	Label       string                `json:"label,omitempty" bson:"label,omitempty" yaml:"label"`
	Status      string                `json:"status,omitempty" bson:"status,omitempty" yaml:"status"`
	Description string                `json:"description,omitempty" bson:"description,omitempty" yaml:"description"`
	Content     string                `json:"content,omitempty" bson:"content,omitempty" yaml:"-"`
	Iframe      *content.IframeConfig `json:"iframeConfig,omitempty" bson:"iframeConfig,omitempty" yaml:"iframeConfig"`
	Gallery     []string              `json:"gallery,omitempty" bson:"gallery,omitempty" yaml:"gallery"`

	// ExperimentURL is the pre-iframe way of embedding a page.
	ExperimentURL string `json:"experimentUrl,omitempty" bson:"experimentUrl,omitempty" yaml:"experimentUrl"`
}

// Node converts r into a content node without children.
func (r Record) Node() content.Node {
	typ, label, iframe := content.Authored{
		Type:          r.Type,
		Label:         r.Label,
		ExperimentURL: r.ExperimentURL,
		Iframe:        r.Iframe,
	}.Resolve()
	return content.Node{
		ID:           r.ID,
		Type:         typ,
		Title:        r.Title,
		Label:        label,
		Status:       content.ParseStatus(r.Status),
		Description:  r.Description,
		Content:      r.Content,
		IframeConfig: iframe,
		Gallery:      slices.Clone(r.Gallery),
	}
}

// BuildTree validates records and links them into one tree with
// [tree.Build]. Records are linked in id order so the result does not
// depend on backend iteration order.
func BuildTree(records []Record) (*content.Node, error) {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b Record) int { return strings.Compare(a.ID, b.ID) })

	entries := make([]tree.Entry, 0, len(sorted))
	for _, r := range sorted {
		node := r.Node()
		if err := node.Validate(); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidContent, err, "record %q", r.ID)
		}
		entries = append(entries, tree.Entry{Node: node, ParentID: r.ParentID})
	}
	return tree.Build(entries), nil
}

// Func adapts a function to [Source].
type Func struct {
	SourceName string
	LoadFunc   func(ctx context.Context) (*content.Node, error)
}

func (f Func) Name() string { return f.SourceName }

func (f Func) Load(ctx context.Context) (*content.Node, error) { return f.LoadFunc(ctx) }

// Flatten turns a tree back into records, parents before children. It is
// the inverse of [BuildTree] for trees whose children are in id order.
func Flatten(root *content.Node) []Record {
	var out []Record
	var walk func(n *content.Node, parentID string)
	walk = func(n *content.Node, parentID string) {
		out = append(out, Record{
			ID:          n.ID,
			ParentID:    parentID,
			Type:        string(n.Type),
			Title:       n.Title,
			Label:       n.Label,
			Status:      string(n.Status),
			Description: n.Description,
			Content:     n.Content,
			Iframe:      n.IframeConfig,
			Gallery:     n.Gallery,
		})
		for _, c := range n.Children {
			walk(c, n.ID)
		}
	}
	if root != nil {
		walk(root, "")
	}
	return out
}
