// Package static serves a content tree from a JSON file or from memory.
package static

import (
	"bytes"
	"context"
	"os"

	"github.com/matzehuels/systemmap/pkg/content"
	errs "github.com/matzehuels/systemmap/pkg/errors"
)

// File reads the tree from a JSON file on every Load, so edits show up
// without a restart.
type File struct {
	path string
}

// NewFile returns a source for the JSON tree at path.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errs.New(errs.ErrCodeInvalidPath, "static source needs a file path")
	}
	return &File{path: path}, nil
}

func (f *File) Name() string { return "static:" + f.path }

func (f *File) Load(ctx context.Context) (*content.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return content.ReadTreeFile(f.path)
}

// Tree serves a fixed in-memory tree. Load returns a deep copy so callers
// cannot alter the shared tree.
type Tree struct {
	name string
	data []byte
}

// NewTree snapshots root.
func NewTree(name string, root *content.Node) (*Tree, error) {
	data, err := content.MarshalTree(root)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidContent, err, "encode tree")
	}
	return &Tree{name: name, data: data}, nil
}

func (t *Tree) Name() string { return "memory:" + t.name }

func (t *Tree) Load(context.Context) (*content.Node, error) {
	return content.ReadTree(bytes.NewReader(t.data))
}

// Exists reports whether path names a readable file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
