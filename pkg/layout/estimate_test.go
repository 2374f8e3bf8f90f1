package layout

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/systemmap/pkg/content"
	"github.com/matzehuels/systemmap/pkg/document"
)

func payload(t *testing.T, blocks ...document.Block) string {
	t.Helper()
	s, err := document.Marshal(blocks)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	return s
}

func TestEstimateHeightDesktop(t *testing.T) {
	e := New(nil, nil)

	tests := []struct {
		name    string
		content string
		gallery []string
		want    float64
	}{
		{"no content", "", nil, 160},
		{"gallery only", "", []string{"a", "b", "c"}, 640},
		{"paragraph", payload(t, document.Paragraph(strings.Repeat("x", 100))), nil, 232},
		{"empty paragraph", payload(t, document.Paragraph("")), nil, 176},
		{"heading", payload(t, document.Heading(1, "Overview!!")), nil, 218},
		{"image", payload(t, document.Block{Type: document.TypeImage, Src: "a.png"}), nil, 460},
		{"code attribute", payload(t, document.Block{Type: document.TypeCode, Code: "a\nb\nc"}), nil, 252},
		{"code children", payload(t, document.Block{Type: document.TypeCode, Children: []document.Block{document.Text("one line")}}), nil, 212},
		{
			name: "list",
			content: payload(t, document.Block{Type: document.TypeUnorderedList, Children: []document.Block{
				{Type: document.TypeListItem, Children: []document.Block{{Type: document.TypeListContent, Children: []document.Block{document.Text("brew")}}}},
				{Type: document.TypeListItem, Children: []document.Block{{Type: document.TypeListContent, Children: []document.Block{document.Text("serve")}}}},
			}}),
			want: 264,
		},
		{"unknown block", payload(t, document.Block{Type: "table"}), nil, 210},
		{"mixed", payload(t, document.Heading(1, "Overview!!"), document.Block{Type: document.TypeImage}), nil, 518},
		{"malformed", "{not json", nil, 160},
		{"not a sequence", `{"type":"paragraph"}`, nil, 160},
		{"malformed with gallery", "[", []string{"a"}, 160},
		{"not a sequence with gallery", `{"type":"paragraph"}`, []string{"a"}, 160},
		{"divider", payload(t, document.Block{Type: document.TypeDivider}), nil, 192},
		{"gallery and divider", payload(t, document.Block{Type: document.TypeDivider}), []string{"a"}, 672},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &content.Node{ID: "n", Type: content.TypeArticle, Content: tt.content, Gallery: tt.gallery}
			if got := e.EstimateHeight(n, 800, false); got != tt.want {
				t.Errorf("EstimateHeight() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEstimateHeightMobile(t *testing.T) {
	e := New(nil, nil)
	n := &content.Node{
		ID:      "n",
		Type:    content.TypeArticle,
		Content: payload(t, document.Paragraph(strings.Repeat("x", 100))),
	}
	// 312px of text at 8px per glyph wraps 100 glyphs onto 3 lines.
	if got := e.EstimateHeight(n, 360, true); got != 248 {
		t.Errorf("EstimateHeight() = %v, want 248", got)
	}
}

func TestEstimateHeightNarrowBox(t *testing.T) {
	e := New(nil, nil)
	n := &content.Node{ID: "n", Content: payload(t, document.Paragraph("abc"))}
	// narrower than the padding: one glyph per line
	if got := e.EstimateHeight(n, 10, false); got != 160+3*28+16 {
		t.Errorf("EstimateHeight() = %v", got)
	}
}

func TestEstimateHeightLogsUnknownBlocks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	e := New(nil, logger)

	n := &content.Node{ID: "tavern", Content: payload(t, document.Block{Type: "table"}, document.Paragraph("ok"))}
	e.EstimateHeight(n, 800, false)

	out := buf.String()
	if !strings.Contains(out, "unknown block type") || !strings.Contains(out, "table") {
		t.Errorf("log output = %q", out)
	}
	if strings.Count(out, "unknown block type") != 1 {
		t.Errorf("expected one diagnostic, got %q", out)
	}
}

func TestEstimateHeightDividerIsKnown(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	e := New(nil, logger)

	n := &content.Node{ID: "tavern", Content: payload(t, document.Paragraph("ok"), document.Block{Type: document.TypeDivider})}
	e.EstimateHeight(n, 800, false)

	if strings.Contains(buf.String(), "unknown block type") {
		t.Errorf("divider logged as unknown: %q", buf.String())
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"zero node width", func(c *Config) { c.NodeWidth = 0 }, true},
		{"negative gap", func(c *Config) { c.VerticalGap = -1 }, true},
		{"zero threshold", func(c *Config) { c.ColumnSplitThreshold = 0 }, true},
		{"inverted mobile clamp", func(c *Config) { c.MobileMaxWidth = 100 }, true},
		{"zero char width", func(c *Config) { c.Estimate.Mobile.CharWidth = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
