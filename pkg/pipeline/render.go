package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/systemmap/pkg/layout"
	"github.com/matzehuels/systemmap/pkg/render/nodelink"
	"github.com/matzehuels/systemmap/pkg/render/sink"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, m layout.Map, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	dotOpts := nodelink.Options{Detailed: opts.Detailed}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = sink.RenderJSON(m, jsonOptions(opts)...)
		case FormatSVG:
			data = sink.RenderSVG(m, sink.WithInteraction())
		case FormatDOT:
			data = []byte(nodelink.ToDOT(m, dotOpts))
		case FormatGraphviz:
			data, err = nodelink.RenderSVG(ctx, nodelink.ToDOT(m, dotOpts))
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func jsonOptions(opts Options) []sink.JSONOption {
	var out []sink.JSONOption
	if opts.Edges {
		out = append(out, sink.WithJSONEdges())
	}
	return out
}
