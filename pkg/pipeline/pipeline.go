// Package pipeline provides the load → layout → render pipeline for systemmap.
//
// This package centralizes the steps shared by the CLI and the HTTP server,
// so both entry points load trees, cache layouts and render artifacts the
// same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read the content tree from a [source.Source]
//  2. Layout: compute box positions for the expanded set and viewport
//  3. Render: generate output in various formats (JSON, SVG, DOT)
//
// Layouts and artifacts are cached. Keys cover every input (tree content
// hash, sorted expanded ids, viewport, sizing preset), so a cached entry is
// never stale.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, nil, logger)
//	result, err := runner.Render(ctx, pipeline.Options{
//	    Source:   static.NewTree("demo", root),
//	    Expanded: []string{"root", "projects"},
//	    Formats:  []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"math"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/systemmap/pkg/cache"
	"github.com/matzehuels/systemmap/pkg/content"
	errs "github.com/matzehuels/systemmap/pkg/errors"
	"github.com/matzehuels/systemmap/pkg/layout"
	"github.com/matzehuels/systemmap/pkg/source"
	"github.com/matzehuels/systemmap/pkg/tree"
)

// =============================================================================
// Formats
// =============================================================================

// Format constants for output formats.
const (
	FormatJSON     = "json"
	FormatSVG      = "svg"
	FormatDOT      = "dot"
	FormatGraphviz = "graphviz" // SVG drawn by Graphviz from the DOT export
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON:     true,
	FormatSVG:      true,
	FormatDOT:      true,
	FormatGraphviz: true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, svg, dot, graphviz)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains the inputs of one pipeline run. The JSON form is the
// body accepted by the HTTP API.
type Options struct {
	// Expanded lists the expanded node ids. Empty means the initial view
	// (only the root expanded). Unknown ids are ignored.
	Expanded []string `json:"expanded,omitempty"`

	// ExpandAll expands every node with children and overrides Expanded.
	ExpandAll bool `json:"expandAll,omitempty"`

	// Viewport selects mobile sizing. Nil means desktop.
	Viewport *layout.Viewport `json:"viewport,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Edges    bool     `json:"edges,omitempty"`    // include connectors in JSON output
	Detailed bool     `json:"detailed,omitempty"` // detailed DOT labels

	Refresh bool `json:"refresh,omitempty"` // bypass cache reads

	// Runtime options (not serialized)
	Source source.Source `json:"-"`
	Logger *log.Logger   `json:"-"`
}

// SetDefaults fills unset fields. It is idempotent.
func (o *Options) SetDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Validate checks the options. Call SetDefaults first.
func (o *Options) Validate() error {
	if o.Source == nil {
		return errs.New(errs.ErrCodeInvalidInput, "source is required")
	}
	if vp := o.Viewport; vp != nil && (!validDimension(vp.Width) || !validDimension(vp.Height)) {
		return errs.New(errs.ErrCodeInvalidInput, "viewport dimensions must be finite and not negative")
	}
	return ValidateFormats(o.Formats)
}

// validDimension rejects negative, NaN and infinite viewport sizes.
func validDimension(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

// ExpandedSet resolves the expanded ids against root.
func (o *Options) ExpandedSet(root *content.Node) tree.Set {
	switch {
	case o.ExpandAll:
		s := tree.NewSet()
		tree.Walk(root, func(n *content.Node, _ int) bool {
			if n.HasChildren() || n.IframeConfig.HasURL() {
				s[n.ID] = struct{}{}
			}
			return true
		})
		return s
	case len(o.Expanded) == 0:
		return tree.InitialSet(root)
	default:
		return tree.NewSet(o.Expanded...)
	}
}

// LayoutKeyOpts returns cache key options for a layout of expanded.
func (o *Options) LayoutKeyOpts(expanded tree.Set, configHash string) cache.LayoutKeyOpts {
	opts := cache.LayoutKeyOpts{
		Expanded:   expanded.IDs(),
		ConfigHash: configHash,
	}
	if vp := o.Viewport; vp != nil {
		opts.Mobile = vp.IsMobile
		opts.ViewportWidth = vp.Width
		opts.ViewportHeight = vp.Height
	}
	return opts
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	switch {
	case format == FormatJSON && o.Edges:
		opts.Format += "+edges"
	case (format == FormatDOT || format == FormatGraphviz) && o.Detailed:
		opts.Format += "+detailed"
	}
	return opts
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the loaded content tree.
	Tree *content.Node

	// TreeHash is the content hash of the tree.
	TreeHash string

	// Expanded is the resolved expanded set.
	Expanded tree.Set

	// Layout holds the positioned visible nodes.
	Layout layout.Map

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Formats returns the rendered formats in sorted order.
func (r *Result) Formats() []string {
	formats := make([]string, 0, len(r.Artifacts))
	for f := range r.Artifacts {
		formats = append(formats, f)
	}
	slices.Sort(formats)
	return formats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	VisibleCount int
	LoadTime     time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}
