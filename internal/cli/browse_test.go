package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/systemmap/pkg/content"
	"github.com/matzehuels/systemmap/pkg/layout"
)

func browseTree() *content.Node {
	return &content.Node{ID: "root", Type: content.TypeCategory, Title: "Root", Children: []*content.Node{
		{ID: "work", Type: content.TypeCategory, Title: "Work", Children: []*content.Node{
			{ID: "demo", Type: content.TypeArticle, Title: "Demo",
				Content:      `[{"type":"paragraph","children":[{"text":"hello from the demo"}]}]`,
				IframeConfig: &content.IframeConfig{URL: "https://demo.example", Orientation: content.OrientationDesktop}},
		}},
		{ID: "about", Type: content.TypeArticle, Title: "About"},
	}}
}

func press(m browseModel, keys ...string) browseModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(browseModel)
	}
	return m
}

func rowIDs(m browseModel) []string {
	ids := make([]string, len(m.rows))
	for i, n := range m.rows {
		ids[i] = n.ID
	}
	return ids
}

func TestBrowseInitialView(t *testing.T) {
	m := newBrowseModel(browseTree(), layout.New(nil, nil), nil, 390)
	if got := strings.Join(rowIDs(m), ","); got != "root,work,about" {
		t.Errorf("rows = %s, want root,work,about", got)
	}
	if n, _ := m.selected(); n.ID != "root" {
		t.Errorf("cursor on %q, want root", n.ID)
	}
}

func TestBrowseToggle(t *testing.T) {
	m := newBrowseModel(browseTree(), layout.New(nil, nil), nil, 390)

	m = press(m, "down", "enter")
	if got := strings.Join(rowIDs(m), ","); got != "root,work,demo,about" {
		t.Fatalf("after expanding work rows = %s", got)
	}
	if n, _ := m.selected(); n.ID != "work" {
		t.Errorf("cursor should stay on work, got %q", n.ID)
	}

	m = press(m, "j", " ")
	if got := strings.Join(rowIDs(m), ","); got != "root,work,demo,demo-preview,about" {
		t.Fatalf("after expanding demo rows = %s", got)
	}
	demo, _ := m.selected()
	if demo.Width != 800 || !demo.IsExpanded {
		t.Errorf("expanded demo = %+v", demo)
	}

	// collapsing work drops demo from the expanded set too
	m = press(m, "k", "enter")
	if m.expanded.Has("demo") {
		t.Error("collapsing work should collapse demo")
	}
	if got := strings.Join(rowIDs(m), ","); got != "root,work,about" {
		t.Errorf("after collapse rows = %s", got)
	}
}

func TestBrowsePreviewNotToggleable(t *testing.T) {
	m := newBrowseModel(browseTree(), layout.New(nil, nil), nil, 390)
	m = press(m, "a")
	for i, n := range m.rows {
		if n.ID == "demo-preview" {
			m.cursor = i
		}
	}
	before := m.expanded.IDs()
	m = press(m, "enter")
	if strings.Join(m.expanded.IDs(), ",") != strings.Join(before, ",") {
		t.Error("toggling a preview frame should do nothing")
	}
}

func TestBrowseExpandAllAndReset(t *testing.T) {
	m := newBrowseModel(browseTree(), layout.New(nil, nil), nil, 390)
	m = press(m, "a")
	if len(m.rows) != 5 {
		t.Errorf("expand all rows = %v", rowIDs(m))
	}
	m = press(m, "r")
	if len(m.rows) != 3 {
		t.Errorf("reset rows = %v", rowIDs(m))
	}
}

func TestBrowseMobileToggle(t *testing.T) {
	m := newBrowseModel(browseTree(), layout.New(nil, nil), nil, 390)
	m = press(m, "down", "down", "enter") // expand about
	about, _ := m.selected()
	if about.ID != "about" || about.Width != 800 {
		t.Fatalf("desktop about = %+v", about)
	}

	m = press(m, "m")
	about, _ = m.selected()
	if about.Width != 351 {
		t.Errorf("mobile about width = %v, want 351", about.Width)
	}
	m = press(m, "m")
	if m.viewport.Mobile() {
		t.Error("second m should return to desktop")
	}
}

func TestBrowseQuit(t *testing.T) {
	m := newBrowseModel(browseTree(), layout.New(nil, nil), nil, 390)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestBrowseView(t *testing.T) {
	m := newBrowseModel(browseTree(), layout.New(nil, nil), nil, 390)
	m = press(m, "down", "enter", "down", "enter")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := next.(browseModel).View()
	for _, want := range []string{"Root", "Demo", "demo.example", "hello", "800×600"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestArticleMarkdown(t *testing.T) {
	if got := articleMarkdown(""); got != "" {
		t.Errorf("empty payload = %q", got)
	}
	if got := articleMarkdown("not a document"); got != "" {
		t.Errorf("bad payload = %q", got)
	}
	got := articleMarkdown(`[{"type":"heading","level":2,"children":[{"text":"Intro"}]}]`)
	if got != "## Intro\n" {
		t.Errorf("heading payload = %q", got)
	}
}

func TestRenderMarkdown(t *testing.T) {
	out := renderMarkdown("# Title\n\nSome *text*.", 40)
	if !strings.Contains(out, "Title") || !strings.Contains(out, "text") {
		t.Errorf("renderMarkdown() = %q", out)
	}
	if renderMarkdown("   ", 40) != "" {
		t.Error("blank markdown should render empty")
	}
}
