package sink

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/systemmap/pkg/layout"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	edges   bool
	compact bool
}

// WithJSONEdges includes the routed connector of every parent/child pair.
func WithJSONEdges() JSONOption { return func(r *jsonRenderer) { r.edges = true } }

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

type jsonOutput struct {
	Bounds jsonBounds    `json:"bounds"`
	Nodes  []layout.Node `json:"nodes"`
	Edges  []layout.Edge `json:"edges,omitempty"`
}

type jsonBounds struct {
	MinX   float64 `json:"minX"`
	MinY   float64 `json:"minY"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RenderJSON exports the layout as a JSON document. Nodes are listed in
// pre-order, so equal layouts always produce identical bytes.
func RenderJSON(m layout.Map, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	b := m.Bounds()
	out := jsonOutput{
		Bounds: jsonBounds{MinX: b.MinX, MinY: b.MinY, Width: b.Width(), Height: b.Height()},
		Nodes:  m.Sorted(),
	}
	if r.edges {
		out.Edges = m.Edges()
	}

	if r.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}

// ReadJSON parses a document written by [RenderJSON]. Bounds and edges are
// derived data and are ignored.
func ReadJSON(data []byte) (layout.Map, error) {
	var in jsonOutput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	m := make(layout.Map, len(in.Nodes))
	for _, n := range in.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("decode layout: node without id")
		}
		if _, dup := m[n.ID]; dup {
			return nil, fmt.Errorf("decode layout: duplicate node %q", n.ID)
		}
		m[n.ID] = n
	}
	return m, nil
}
