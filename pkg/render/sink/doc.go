// Package sink renders a computed [layout.Map] into output formats.
//
// # Overview
//
// A "sink" turns positioned nodes into bytes. Two sinks are provided:
//
//   - JSON: the positioned nodes and their connectors, for canvas clients
//     and for caching
//   - SVG: a static picture of the canvas with boxes and orthogonal
//     connectors
//
// # JSON Output
//
// [RenderJSON] writes the nodes in pre-order together with the canvas
// bounds. [ReadJSON] reads the same document back into a map:
//
//	data, err := sink.RenderJSON(m, sink.WithJSONEdges())
//	m2, err := sink.ReadJSON(data)
//
// # SVG Output
//
// [RenderSVG] draws every box with its label, title and status badge.
// Connectors are routed with [layout.Connector]:
//
//	svg := sink.RenderSVG(m, sink.WithPadding(40))
//
// Preview frames are drawn dashed. Expanded boxes get a heavier outline.
//
// [layout.Map]: github.com/matzehuels/systemmap/pkg/layout.Map
// [layout.Connector]: github.com/matzehuels/systemmap/pkg/layout.Connector
package sink
