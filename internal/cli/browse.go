package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/systemmap/pkg/content"
	"github.com/matzehuels/systemmap/pkg/document"
	"github.com/matzehuels/systemmap/pkg/layout"
	"github.com/matzehuels/systemmap/pkg/pipeline"
	"github.com/matzehuels/systemmap/pkg/tree"
)

// browseCommand creates the browse command: an interactive view of the map.
func (c *CLI) browseCommand() *cobra.Command {
	var mobile bool
	var viewportWidth float64

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Explore the map interactively",
		Long: `Explore the map in the terminal.

The list shows the visible nodes in layout order. Expanding a node reveals
its children and, for articles, grows the box to fit its content; the detail
pane shows the computed box and renders the article body.

Keys: ↑/↓ move, enter toggle, a expand all, r reset, m mobile, q quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var vp *layout.Viewport
			if mobile {
				vp = &layout.Viewport{IsMobile: true, Width: viewportWidth}
			}
			return c.runBrowse(cmd.Context(), vp, viewportWidth)
		},
	}

	cmd.Flags().BoolVar(&mobile, "mobile", false, "start with mobile sizing")
	cmd.Flags().Float64Var(&viewportWidth, "viewport-width", 390, "viewport width for mobile sizing")

	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, vp *layout.Viewport, mobileWidth float64) error {
	sess, err := c.newSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	root, err := sess.runner.LoadTree(ctx, pipeline.Options{Source: sess.source})
	if err != nil {
		return err
	}

	model := newBrowseModel(root, sess.runner.Engine, vp, mobileWidth)
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// browseModel - Interactive map explorer
// =============================================================================

var (
	browseCursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	browseRowStyle     = lipgloss.NewStyle().Foreground(colorWhite)
	browsePreviewStyle = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
)

var browsePaneStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorDim).
	Padding(0, 1)

type browseModel struct {
	root     *content.Node
	nodes    map[string]*content.Node
	engine   *layout.Engine
	viewport *layout.Viewport
	expanded tree.Set

	mobileWidth float64

	layout layout.Map
	rows   []layout.Node

	cursor int
	offset int
	height int
	width  int
}

func newBrowseModel(root *content.Node, engine *layout.Engine, vp *layout.Viewport, mobileWidth float64) browseModel {
	nodes := make(map[string]*content.Node)
	tree.Walk(root, func(n *content.Node, _ int) bool {
		nodes[n.ID] = n
		return true
	})
	m := browseModel{
		root:     root,
		nodes:    nodes,
		engine:   engine,
		viewport: vp,
		expanded: tree.InitialSet(root),
		height:   20,
		width:    100,

		mobileWidth: mobileWidth,
	}
	return m.relayout("")
}

// relayout recomputes the map and keeps the cursor on keepID when it is
// still visible.
func (m browseModel) relayout(keepID string) browseModel {
	m.layout = m.engine.Calculate(m.root, m.expanded, m.viewport)
	m.rows = m.layout.Sorted()
	m.cursor = 0
	for i, n := range m.rows {
		if n.ID == keepID {
			m.cursor = i
			break
		}
	}
	return m.scroll()
}

func (m browseModel) scroll() browseModel {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	return m
}

func (m browseModel) selected() (layout.Node, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return layout.Node{}, false
	}
	return m.rows[m.cursor], true
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m.scroll(), nil
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
			return m.scroll(), nil
		case "enter", " ":
			n, ok := m.selected()
			if !ok || n.IsPreview() {
				return m, nil
			}
			m.expanded = m.expanded.Toggle(m.root, n.ID)
			return m.relayout(n.ID), nil
		case "a":
			n, _ := m.selected()
			all := pipeline.Options{ExpandAll: true}
			m.expanded = all.ExpandedSet(m.root)
			return m.relayout(n.ID), nil
		case "r":
			m.expanded = tree.InitialSet(m.root)
			return m.relayout(""), nil
		case "m":
			n, _ := m.selected()
			if m.viewport.Mobile() {
				m.viewport = nil
			} else {
				m.viewport = &layout.Viewport{IsMobile: true, Width: m.mobileWidth}
			}
			return m.relayout(n.ID), nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = max(msg.Height-6, 5)
		return m.scroll(), nil
	}
	return m, nil
}

func (m browseModel) View() string {
	var b strings.Builder

	mode := "desktop"
	if m.viewport.Mobile() {
		mode = "mobile"
	}
	b.WriteString(StyleTitle.Render(nodeTitle(m.root)))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d/%d visible · %s", len(m.rows), len(m.nodes), mode)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ toggle  a expand all  r reset  m mobile  q quit"))
	b.WriteString("\n\n")

	listWidth := max(m.width*2/5, 24)
	detailWidth := max(m.width-listWidth-4, 20)
	list := lipgloss.NewStyle().Width(listWidth).Render(m.listView())
	detail := browsePaneStyle.Width(detailWidth).Render(m.detailView(detailWidth - 4))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, detail))
	return b.String()
}

func (m browseModel) listView() string {
	var b strings.Builder
	end := min(m.offset+m.height, len(m.rows))
	for i := m.offset; i < end; i++ {
		n := m.rows[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		line := cursor + strings.Repeat("  ", n.Level) + m.marker(n) + " " + n.Title
		switch {
		case i == m.cursor:
			b.WriteString(browseCursorStyle.Render(line))
		case n.IsPreview():
			b.WriteString(browsePreviewStyle.Render(line))
		default:
			b.WriteString(browseRowStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m browseModel) marker(n layout.Node) string {
	if n.IsPreview() {
		return "◇"
	}
	src := m.nodes[n.ID]
	if src == nil || !(src.HasChildren() || src.IframeConfig.HasURL() || src.Type == content.TypeArticle) {
		return "·"
	}
	if n.IsExpanded {
		return "−"
	}
	return "+"
}

func (m browseModel) detailView(width int) string {
	n, ok := m.selected()
	if !ok {
		return StyleDim.Render("nothing visible")
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(n.Title))
	b.WriteString("\n")
	meta := []string{n.Label, string(n.Type)}
	if n.Status != content.StatusNone {
		meta = append(meta, statusStyle(n.Status).Render(string(n.Status)))
	}
	b.WriteString(StyleDim.Render(strings.Join(meta, " · ")))
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("box %.0f×%.0f at (%.0f, %.0f) · level %d",
		n.Width, n.Height, n.X, n.Y, n.Level)))
	b.WriteString("\n")
	if n.IframeConfig.HasURL() {
		b.WriteString(StyleLink.Render(n.IframeConfig.URL))
		b.WriteString("\n")
	}
	if n.Description != "" {
		b.WriteString("\n")
		b.WriteString(n.Description)
		b.WriteString("\n")
	}
	if n.IsExpanded && n.Type == content.TypeArticle {
		if body := articleMarkdown(n.Content); body != "" {
			b.WriteString("\n")
			b.WriteString(renderMarkdown(body, width))
		}
	}
	return b.String()
}

// articleMarkdown converts a content payload to markdown. Unparseable
// payloads render nothing.
func articleMarkdown(payload string) string {
	blocks, err := document.Parse(payload)
	if err != nil || len(blocks) == 0 {
		return ""
	}
	return document.ToMarkdown(blocks)
}

// =============================================================================
// Markdown
// =============================================================================

var (
	mdRendererMu sync.Mutex
	// Renderers keyed by wrap width. A fixed style avoids the terminal
	// queries WithAutoStyle makes.
	mdRenderers = map[int]*glamour.TermRenderer{}
)

func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	width = max(width, 10)

	mdRendererMu.Lock()
	defer mdRendererMu.Unlock()
	r := mdRenderers[width]
	if r == nil {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRenderers[width] = r
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
