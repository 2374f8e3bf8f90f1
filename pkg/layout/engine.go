package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/systemmap/pkg/content"
	"github.com/matzehuels/systemmap/pkg/tree"
)

// PreviewSuffix is appended to a node id to form the id of its preview frame.
const PreviewSuffix = "-preview"

// Engine computes layouts for one sizing preset. An Engine holds no state
// between calls and is safe for concurrent use.
type Engine struct {
	config *Config
	logger *log.Logger
}

// New returns an engine for cfg. A nil cfg selects [DefaultConfig] and a nil
// logger discards diagnostics.
func New(cfg *Config, logger *log.Logger) *Engine {
	if cfg == nil {
		def := DefaultConfig()
		cfg = &def
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{config: cfg, logger: logger}
}

// Config returns the engine's sizing preset.
func (e *Engine) Config() *Config { return e.config }

// Calculate lays out root for the expanded set and viewport. A nil viewport
// applies desktop sizing. The returned map always contains the root.
func (e *Engine) Calculate(root *content.Node, expanded tree.Set, vp *Viewport) Map {
	if root == nil {
		return Map{}
	}
	b := e.enrich(root, expanded, vp)
	m := make(Map)
	order := 0
	e.place(b, 0, 0, 0, "", m, &order)
	return m
}

// Calculate lays out root with the default preset.
func Calculate(root *content.Node, expanded tree.Set, vp *Viewport) Map {
	return New(nil, nil).Calculate(root, expanded, vp)
}
