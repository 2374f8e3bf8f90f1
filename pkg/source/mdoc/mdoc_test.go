package mdoc

import (
	"bytes"
	"context"
	"testing"
	"testing/fstest"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/systemmap/pkg/content"
	"github.com/matzehuels/systemmap/pkg/document"
	errs "github.com/matzehuels/systemmap/pkg/errors"
	"github.com/matzehuels/systemmap/pkg/tree"
)

func file(s string) *fstest.MapFile { return &fstest.MapFile{Data: []byte(s)} }

func contentDir() fstest.MapFS {
	return fstest.MapFS{
		"system-map.mdoc": file("---\ntitle: System Map\ntype: category\n---\n"),
		"games.mdoc":      file("---\ntitle: Games\ntype: category\nparent: system-map\n---\n"),
		"dungeon-tavern/index.mdoc": file(`---
title: Dungeon Tavern
parent: games
status: prototype
iframeConfig:
  url: https://tavern.example
  orientation: mobile
gallery:
  - /images/nodes/tavern-1.png
  - /images/nodes/tavern-2.png
---
# Rules

Serve the adventurers before they riot.
`),
		"about.md":       file("---\ntitle: About\nparent: system-map\n---\nHello."),
		"notes.txt":      file("ignored"),
		".git/HEAD.mdoc": file("---\ntitle: hidden\n---\n"),
	}
}

func TestLoad(t *testing.T) {
	src := NewFS("test", contentDir(), nil)
	root, err := src.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "system-map", root.ID)
	assert.Equal(t, content.TypeCategory, root.Type)
	assert.Equal(t, 4, tree.Count(root))
	assert.Equal(t, []string{"system-map", "games", "dungeon-tavern"}, tree.PathToNode(root, "dungeon-tavern"))

	var kids []string
	for _, c := range root.Children {
		kids = append(kids, c.ID)
	}
	assert.Equal(t, []string{"about", "games"}, kids, "children are linked in slug order")

	tavern := tree.FindNode(root, "dungeon-tavern")
	require.NotNil(t, tavern)
	assert.Equal(t, content.TypeArticle, tavern.Type, "missing type defaults to article")
	assert.Equal(t, content.StatusPrototype, tavern.Status)
	require.NotNil(t, tavern.IframeConfig)
	assert.Equal(t, content.OrientationMobile, tavern.IframeConfig.Orientation)
	assert.Len(t, tavern.Gallery, 2)

	blocks, err := document.Parse(tavern.Content)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, document.TypeHeading, blocks[0].Type)
	assert.Equal(t, "Serve the adventurers before they riot.", blocks[1].InlineText())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    func(t *testing.T, title, typ, content string)
		wantErr bool
	}{
		{
			name: "no frontmatter",
			data: "Just text.",
			want: func(t *testing.T, title, typ, content string) {
				assert.Equal(t, "slug", title)
				assert.Equal(t, "article", typ)
				assert.Contains(t, content, "Just text.")
			},
		},
		{
			name: "empty body",
			data: "---\ntitle: T\ntype: category\n---\n\n",
			want: func(t *testing.T, title, typ, content string) {
				assert.Equal(t, "T", title)
				assert.Equal(t, "category", typ)
				assert.Empty(t, content)
			},
		},
		{
			name: "crlf fences",
			data: "---\r\ntitle: Windows\r\n---\r\nbody",
			want: func(t *testing.T, title, typ, content string) {
				assert.Equal(t, "Windows", title)
				assert.Contains(t, content, "body")
			},
		},
		{name: "unterminated", data: "---\ntitle: T\n", wantErr: true},
		{name: "bad yaml", data: "---\ntitle: [unclosed\n---\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse("slug", []byte(tt.data))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errs.Is(err, errs.ErrCodeInvalidContent))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "slug", r.ID)
			tt.want(t, r.Title, r.Type, r.Content)
		})
	}
}

func TestSlugOf(t *testing.T) {
	tests := []struct {
		path string
		slug string
		ok   bool
	}{
		{"about.mdoc", "about", true},
		{"about.md", "about", true},
		{"games/index.mdoc", "games", true},
		{"games/other.mdoc", "", false},
		{"a/b/index.mdoc", "", false},
		{"readme.txt", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			slug, ok := slugOf(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.slug, slug)
		})
	}
}

func TestDuplicateSlugPrefersFlatFile(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	fsys := fstest.MapFS{
		"about.mdoc":       file("---\ntitle: Flat\n---\n"),
		"about/index.mdoc": file("---\ntitle: Nested\n---\n"),
	}

	records, err := NewFS("dup", fsys, logger).Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Flat", records[0].Title)
	assert.Contains(t, buf.String(), "duplicate slug")
}

func TestLoadEmptyDirectory(t *testing.T) {
	root, err := NewFS("empty", fstest.MapFS{}, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tree.Placeholder(), root)
}

func TestRecordsRejectsUnsafeFileNames(t *testing.T) {
	fsys := fstest.MapFS{
		"system-map.mdoc":  file("---\ntitle: System Map\ntype: category\n---\n"),
		"games\\evil.mdoc": file("---\ntitle: Evil\n---\n"),
	}

	_, err := NewFS("unsafe", fsys, nil).Records(context.Background())
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidPath), "got %v", err)
}

func TestLoadRejectsInvalidSlugsAndPreviews(t *testing.T) {
	tests := map[string]fstest.MapFS{
		"slug with space": {
			"system-map.mdoc": file("---\ntitle: System Map\ntype: category\n---\n"),
			"About Me.mdoc":   file("---\ntitle: About\nparent: system-map\n---\n"),
		},
		"script preview": {
			"system-map.mdoc": file("---\ntitle: System Map\ntype: category\n---\n"),
			"tavern.mdoc":     file("---\nparent: system-map\niframeConfig:\n  url: javascript:alert(1)\n---\n"),
		},
	}
	for name, fsys := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewFS(name, fsys, nil).Load(context.Background())
			require.Error(t, err)
			assert.True(t, errs.IsInvalid(err), "got %v", err)
		})
	}
}
