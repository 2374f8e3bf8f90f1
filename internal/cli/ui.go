package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success, production
	colorYellow = lipgloss.Color("220") // concept
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // links
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for node titles and headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for addresses and prototype badges.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink for preview URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleKey      = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// printer - Styled status output
// =============================================================================

// printer writes styled status lines. Commands print through c.print() so
// tests can capture what a command reports.
type printer struct {
	w io.Writer
}

func (c *CLI) print() printer {
	return printer{w: c.stdout()}
}

func (p printer) line(s string) {
	fmt.Fprintln(p.w, s)
}

func (p printer) success(format string, args ...any) {
	p.line(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func (p printer) failure(format string, args ...any) {
	p.line(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func (p printer) info(format string, args ...any) {
	p.line(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// detail prints an indented, muted line under a status line.
func (p printer) detail(format string, args ...any) {
	p.line("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// file prints a written output path.
func (p printer) file(path string) {
	p.line("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func (p printer) keyValue(key, value string) {
	p.line(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// stats prints how much of the tree a view shows and whether it came from
// the cache, e.g. "4 visible · 14 nodes · cached".
func (p printer) stats(visible, total int, cached bool) {
	var parts []string
	if visible > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d visible", visible)))
	}
	if total > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d nodes", total)))
	}
	if cached {
		parts = append(parts, styleCached.Render(iconCached))
	} else {
		parts = append(parts, styleComputed.Render(iconFresh))
	}
	p.line("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// nextStep suggests a follow-up command.
func (p printer) nextStep(description, cmd string) {
	p.line("")
	p.line(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}
