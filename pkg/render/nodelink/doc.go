// Package nodelink renders a laid out map as a Graphviz node-link diagram.
//
// # Overview
//
// The canvas layout in package layout already positions every box. This
// package offers a second view of the same visible tree: each node becomes a
// Graphviz box and each parent/child pair an arrow, with Graphviz doing its
// own placement. It is useful for checking the shape of a content tree
// without a browser.
//
// # Usage
//
//	dot := nodelink.ToDOT(m, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
//   - Detailed: node labels include type, status and the computed box size.
//   - Positioned: nodes are pinned to their canvas coordinates so that the
//     neato engine reproduces the canvas geometry.
//
// # Dependencies
//
// Rendering uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process through WebAssembly, so no system Graphviz install is needed.
package nodelink
