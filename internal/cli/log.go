// Package cli implements the systemmap command-line interface.
//
// The commands compute and export layouts of a content tree, query the tree,
// serve the HTTP API and manage the layout cache. Every command reads the
// same TOML configuration (see package config); --source and --path point a
// single run at a different tree without editing the file.
//
// # Commands
//
// The main commands are:
//   - layout: Compute the positioned node map for a view
//   - render: Export a view as SVG, JSON, DOT or Graphviz SVG
//   - tree: Print, search and walk the content tree
//   - serve: Run the HTTP API
//   - browse: Explore the map in an interactive terminal view
//   - import: Copy a tree into a sqlite or mongo source
//   - cache: Clear or locate the layout cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging through
// charmbracelet/log. Libraries receive the CLI logger explicitly.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
// The returned progress should call done when the operation completes.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// The duration is rounded to the nearest millisecond.
// Example output: "Laid out 12 of 40 nodes (3ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
