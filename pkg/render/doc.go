// Package render groups the output renderers for computed canvas layouts.
//
// # Overview
//
// A layout from package layout is a flat map of positioned boxes. The
// subpackages turn it into something to look at or ship:
//
//   - [sink]: JSON for canvas clients and SVG with boxes and connectors
//   - [nodelink]: Graphviz DOT export and SVG rendering of the visible tree
//
//	m := layout.Calculate(root, expanded, nil)
//	svg := sink.RenderSVG(m)
//	dot := nodelink.ToDOT(m, nodelink.Options{})
//
// [sink]: github.com/matzehuels/systemmap/pkg/render/sink
// [nodelink]: github.com/matzehuels/systemmap/pkg/render/nodelink
package render
