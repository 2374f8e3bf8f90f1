// Package pkg provides the libraries behind the systemmap portfolio canvas.
//
// # Overview
//
// A portfolio is a tree of categories and articles drawn as a mind-map on an
// infinite canvas. Nodes expand in place to show their content, and articles
// with an embedded experiment gain a preview frame next to them. The pkg
// directory is organized into these areas:
//
//  1. [content], [tree] and [document] - the content model, tree queries
//     and the rich-document payload carried by articles
//  2. [layout] - the two-pass layout engine
//  3. [source] - loading trees from JSON files, .mdoc directories, SQLite
//     or MongoDB
//  4. [pipeline] and [cache] - orchestration (load → layout → render) with
//     cached results
//  5. [render] - JSON, SVG and Graphviz output for a computed layout
//  6. [server] - the HTTP API consumed by canvas clients
//  7. [config], [errors], [observability] and [buildinfo] - supporting code
//
// # Architecture
//
// The typical data flow:
//
//	Content source (JSON / .mdoc / SQLite / MongoDB)
//	         ↓
//	    [source] package (records → single-rooted tree)
//	         ↓
//	    [layout] package (tree + expanded ids + viewport → positioned map)
//	         ↓
//	    [render] package (JSON / SVG / DOT)
//
// # Quick Start
//
// Lay out a tree with its root expanded and render it to SVG:
//
//	import (
//	    "github.com/matzehuels/systemmap/pkg/content"
//	    "github.com/matzehuels/systemmap/pkg/layout"
//	    "github.com/matzehuels/systemmap/pkg/render/sink"
//	    "github.com/matzehuels/systemmap/pkg/tree"
//	)
//
//	root, _ := content.ReadTreeFile("content.json")
//	m := layout.Calculate(root, tree.InitialSet(root), nil)
//	svg := sink.RenderSVG(m)
//
// The [pipeline] Runner wraps the same steps with a source, a cache and
// artifact rendering, and is what the CLI and the server use.
//
// [content]: github.com/matzehuels/systemmap/pkg/content
// [tree]: github.com/matzehuels/systemmap/pkg/tree
// [document]: github.com/matzehuels/systemmap/pkg/document
// [layout]: github.com/matzehuels/systemmap/pkg/layout
// [source]: github.com/matzehuels/systemmap/pkg/source
// [pipeline]: github.com/matzehuels/systemmap/pkg/pipeline
// [cache]: github.com/matzehuels/systemmap/pkg/cache
// [render]: github.com/matzehuels/systemmap/pkg/render
// [server]: github.com/matzehuels/systemmap/pkg/server
// [config]: github.com/matzehuels/systemmap/pkg/config
// [errors]: github.com/matzehuels/systemmap/pkg/errors
// [observability]: github.com/matzehuels/systemmap/pkg/observability
// [buildinfo]: github.com/matzehuels/systemmap/pkg/buildinfo
package pkg
