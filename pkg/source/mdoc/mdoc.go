// Package mdoc reads a Keystatic-style content directory.
//
// Every node is one markdown file whose slug is its id: either
// <dir>/<slug>.mdoc or <dir>/<slug>/index.mdoc. The file starts with a YAML
// frontmatter block holding the node fields; the body is the node content.
//
//	---
//	title: Dungeon Tavern
//	type: article
//	parent: board-games
//	status: prototype
//	iframeConfig:
//	  url: https://tavern.example
//	  orientation: mobile
//	---
//	# Rules
//	...
package mdoc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/systemmap/pkg/content"
	"github.com/matzehuels/systemmap/pkg/document"
	errs "github.com/matzehuels/systemmap/pkg/errors"
	"github.com/matzehuels/systemmap/pkg/source"
)

// Extensions recognised as node files.
var Extensions = []string{".mdoc", ".md"}

const indexName = "index"

// defaultType is the editor's default for new entries.
const defaultType = "article"

// Source reads nodes from a directory.
type Source struct {
	name   string
	fsys   fs.FS
	logger *log.Logger
}

// New returns a source for the directory at dir.
func New(dir string, logger *log.Logger) *Source {
	return NewFS("mdoc:"+dir, os.DirFS(dir), logger)
}

// NewFS returns a source reading from fsys.
func NewFS(name string, fsys fs.FS, logger *log.Logger) *Source {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Source{name: name, fsys: fsys, logger: logger}
}

func (s *Source) Name() string { return s.name }

// Load reads every node file and links them into a tree.
func (s *Source) Load(ctx context.Context) (*content.Node, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	return source.BuildTree(records)
}

// Records reads every node file without linking.
func (s *Source) Records(ctx context.Context) ([]source.Record, error) {
	files, err := s.files()
	if err != nil {
		if errs.GetCode(err) != "" {
			return nil, err
		}
		return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "scan %s", s.name)
	}

	records := make([]source.Record, 0, len(files))
	for slug, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := fs.ReadFile(s.fsys, name)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "read %s", name)
		}
		r, err := Parse(slug, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		records = append(records, r)
	}
	s.logger.Debug("loaded content directory", "source", s.name, "nodes", len(records))
	return records, nil
}

// files maps slugs to file names. Flat files win over index files.
func (s *Source) files() (map[string]string, error) {
	out := make(map[string]string)
	err := fs.WalkDir(s.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		slug, ok := slugOf(p)
		if !ok {
			return nil
		}
		if err := errs.ValidatePath(p); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidPath, err, "node file %q", p)
		}
		prev, exists := out[slug]
		if !exists || path.Dir(p) == "." {
			out[slug] = p
		}
		if exists {
			s.logger.Warn("duplicate slug", "slug", slug, "kept", out[slug], "ignored", other(prev, p, out[slug]))
		}
		return nil
	})
	return out, err
}

func other(a, b, kept string) string {
	if a == kept {
		return b
	}
	return a
}

// slugOf derives the slug of a node file, or false if p is not one.
func slugOf(p string) (string, bool) {
	ext := path.Ext(p)
	known := false
	for _, e := range Extensions {
		known = known || ext == e
	}
	if !known {
		return "", false
	}
	dir, base := path.Split(p)
	base = strings.TrimSuffix(base, ext)
	dir = strings.TrimSuffix(dir, "/")
	switch {
	case dir == "":
		return base, true
	case base == indexName && !strings.Contains(dir, "/"):
		return dir, true
	}
	return "", false
}

// Parse decodes one node file.
func Parse(slug string, data []byte) (source.Record, error) {
	front, body, err := splitFrontmatter(data)
	if err != nil {
		return source.Record{}, err
	}

	var r source.Record
	if len(front) > 0 {
		if err := yaml.Unmarshal(front, &r); err != nil {
			return source.Record{}, errs.Wrap(errs.ErrCodeInvalidContent, err, "frontmatter of %s", slug)
		}
	}
	r.ID = slug
	if r.Type == "" {
		r.Type = defaultType
	}
	if r.Title == "" {
		r.Title = slug
	}
	if body = bytes.TrimSpace(body); len(body) > 0 {
		payload, err := document.Marshal(document.FromMarkdown(body))
		if err != nil {
			return source.Record{}, errs.Wrap(errs.ErrCodeInvalidContent, err, "content of %s", slug)
		}
		r.Content = payload
	}
	return r, nil
}

var fence = []byte("---")

func splitFrontmatter(data []byte) (front, body []byte, err error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if !bytes.HasPrefix(data, fence) {
		return nil, data, nil
	}
	rest := data[len(fence):]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 || len(bytes.TrimSpace(rest[:nl])) != 0 {
		return nil, data, nil
	}
	rest = rest[nl+1:]

	for off := 0; off < len(rest); {
		end := bytes.IndexByte(rest[off:], '\n')
		line := rest[off:]
		next := len(rest)
		if end >= 0 {
			line = rest[off : off+end]
			next = off + end + 1
		}
		if bytes.Equal(bytes.TrimRight(line, " \r"), fence) {
			return rest[:off], rest[next:], nil
		}
		off = next
	}
	return nil, nil, errs.New(errs.ErrCodeInvalidContent, "unterminated frontmatter")
}
