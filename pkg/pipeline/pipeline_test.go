package pipeline

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/systemmap/pkg/cache"
	"github.com/matzehuels/systemmap/pkg/content"
	errs "github.com/matzehuels/systemmap/pkg/errors"
	"github.com/matzehuels/systemmap/pkg/layout"
	"github.com/matzehuels/systemmap/pkg/source"
	"github.com/matzehuels/systemmap/pkg/tree"
)

func sampleTree() *content.Node {
	return &content.Node{ID: "root", Type: content.TypeCategory, Title: "System Map", Children: []*content.Node{
		{ID: "projects", Type: content.TypeCategory, Title: "Projects", Children: []*content.Node{
			{ID: "spin", Type: content.TypeArticle, Title: "Spin", IframeConfig: &content.IframeConfig{URL: "https://spin.example"}},
		}},
		{ID: "about", Type: content.TypeArticle, Title: "About"},
	}}
}

// countingSource returns a fresh copy of sampleTree and counts loads.
func countingSource(loads *int) source.Source {
	return source.Func{
		SourceName: "test",
		LoadFunc: func(context.Context) (*content.Node, error) {
			*loads++
			return sampleTree(), nil
		},
	}
}

func newRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	return NewRunner(c, nil, nil, nil)
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"svg", false},
		{"dot", false},
		{"graphviz", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errs.Is(err, errs.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errs.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	opts.SetDefaults()

	if !reflect.DeepEqual(opts.Formats, []string{FormatJSON}) {
		t.Errorf("Formats = %v, want [json]", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	// Idempotent
	opts.Formats = []string{FormatSVG}
	opts.SetDefaults()
	if opts.Formats[0] != FormatSVG {
		t.Error("SetDefaults overwrote explicit formats")
	}
}

func TestOptionsValidate(t *testing.T) {
	var loads int
	src := countingSource(&loads)

	tests := []struct {
		name string
		opts Options
		code errs.Code
	}{
		{"missing source", Options{}, errs.ErrCodeInvalidInput},
		{"unknown expanded id", Options{Source: src, Expanded: []string{"has space", "a/b"}}, ""},
		{"negative viewport", Options{Source: src, Viewport: &layout.Viewport{Width: -1}}, errs.ErrCodeInvalidInput},
		{"nan viewport", Options{Source: src, Viewport: &layout.Viewport{IsMobile: true, Width: math.NaN()}}, errs.ErrCodeInvalidInput},
		{"infinite viewport", Options{Source: src, Viewport: &layout.Viewport{Height: math.Inf(1)}}, errs.ErrCodeInvalidInput},
		{"bad format", Options{Source: src, Formats: []string{"gif"}}, errs.ErrCodeInvalidFormat},
		{"valid", Options{Source: src, Expanded: []string{"root"}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.SetDefaults()
			err := tt.opts.Validate()
			if got := errs.GetCode(err); got != tt.code {
				t.Errorf("Validate() code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestExpandedSet(t *testing.T) {
	root := sampleTree()
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{"initial", Options{}, []string{"root"}},
		{"explicit", Options{Expanded: []string{"projects", "root"}}, []string{"projects", "root"}},
		{"all", Options{ExpandAll: true, Expanded: []string{"about"}}, []string{"projects", "root", "spin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.ExpandedSet(root).IDs(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExpandedSet() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLayoutKeyOpts(t *testing.T) {
	opts := Options{Viewport: &layout.Viewport{IsMobile: true, Width: 390, Height: 844}}
	got := opts.LayoutKeyOpts(tree.NewSet("b", "a"), "cfg")
	want := cache.LayoutKeyOpts{
		Expanded:       []string{"a", "b"},
		Mobile:         true,
		ViewportWidth:  390,
		ViewportHeight: 844,
		ConfigHash:     "cfg",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LayoutKeyOpts() = %+v, want %+v", got, want)
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Edges: true, Detailed: true}
	if got := opts.ArtifactKeyOpts(FormatJSON).Format; got != "json+edges" {
		t.Errorf("json key format = %q", got)
	}
	if got := opts.ArtifactKeyOpts(FormatDOT).Format; got != "dot+detailed" {
		t.Errorf("dot key format = %q", got)
	}
	if got := opts.ArtifactKeyOpts(FormatSVG).Format; got != "svg" {
		t.Errorf("svg key format = %q", got)
	}
}

func TestRunnerLayout(t *testing.T) {
	var loads int
	r := newRunner(t)
	ctx := context.Background()
	opts := Options{Source: countingSource(&loads), Expanded: []string{"root", "projects"}}

	first, err := r.Layout(ctx, opts)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if first.CacheInfo.LayoutHit {
		t.Error("first layout should miss the cache")
	}
	// root, projects, about, spin
	if first.Stats.VisibleCount != 4 || first.Stats.NodeCount != 4 {
		t.Errorf("stats = %+v", first.Stats)
	}
	if first.TreeHash == "" {
		t.Error("TreeHash not set")
	}
	want := layout.Calculate(sampleTree(), tree.NewSet("root", "projects"), nil)
	if !reflect.DeepEqual(first.Layout, want) {
		t.Error("runner layout differs from engine layout")
	}

	second, err := r.Layout(ctx, opts)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if !second.CacheInfo.LayoutHit {
		t.Error("second layout should hit the cache")
	}
	if !reflect.DeepEqual(second.Layout, first.Layout) {
		t.Error("cached layout differs from computed layout")
	}
	if loads != 2 {
		t.Errorf("loads = %d, want 2 (trees are always reloaded)", loads)
	}

	// Order of expanded ids does not matter.
	opts.Expanded = []string{"projects", "root"}
	third, err := r.Layout(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !third.CacheInfo.LayoutHit {
		t.Error("reordered expanded ids should share a cache entry")
	}

	// Refresh bypasses reads.
	opts.Refresh = true
	fourth, err := r.Layout(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.LayoutHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestRunnerLayoutIgnoresUnknownExpandedIDs(t *testing.T) {
	var loads int
	r := newRunner(t)
	opts := Options{
		Source:   countingSource(&loads),
		Expanded: []string{"root", "projects", "missing", "About Me", "a/b"},
	}

	result, err := r.Layout(context.Background(), opts)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	want := layout.Calculate(sampleTree(), tree.NewSet("root", "projects"), nil)
	if !reflect.DeepEqual(result.Layout, want) {
		t.Error("unknown expanded ids should not change the layout")
	}
}

func TestRunnerLayoutViewportChangesKey(t *testing.T) {
	var loads int
	r := newRunner(t)
	ctx := context.Background()
	opts := Options{Source: countingSource(&loads), Expanded: []string{"root", "about"}}

	if _, err := r.Layout(ctx, opts); err != nil {
		t.Fatal(err)
	}
	opts.Viewport = &layout.Viewport{IsMobile: true, Width: 390, Height: 844}
	res, err := r.Layout(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.LayoutHit {
		t.Error("mobile layout should not reuse the desktop entry")
	}
	// 390*0.9 = 351
	if got := res.Layout["about"].Width; got != 351 {
		t.Errorf("mobile about width = %v, want 351", got)
	}
}

func TestRunnerRender(t *testing.T) {
	var loads int
	r := newRunner(t)
	ctx := context.Background()
	opts := Options{
		Source:   countingSource(&loads),
		Expanded: []string{"root", "projects", "spin"},
		Formats:  []string{FormatJSON, FormatSVG, FormatDOT},
		Edges:    true,
	}

	res, err := r.Render(ctx, opts)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if got := res.Formats(); !reflect.DeepEqual(got, []string{"dot", "json", "svg"}) {
		t.Errorf("Formats() = %v", got)
	}
	if _, ok := res.Layout["spin-preview"]; !ok {
		t.Error("expanded spin should inject a preview frame")
	}
	if !strings.Contains(string(res.Artifacts[FormatJSON]), `"edges"`) {
		t.Error("json artifact missing edges")
	}
	if !strings.Contains(string(res.Artifacts[FormatSVG]), "<svg") {
		t.Error("svg artifact is not SVG")
	}
	if !strings.Contains(string(res.Artifacts[FormatDOT]), `"spin" -> "spin-preview"`) {
		t.Error("dot artifact missing preview edge")
	}
	if res.CacheInfo.RenderHit {
		t.Error("first render should miss the cache")
	}

	again, err := r.Render(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.LayoutHit || !again.CacheInfo.RenderHit {
		t.Errorf("second render cache info = %+v, want all hits", again.CacheInfo)
	}
	if !reflect.DeepEqual(again.Artifacts, res.Artifacts) {
		t.Error("cached artifacts differ")
	}
}

func TestRunnerSourceErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil, nil)
	ctx := context.Background()

	plain := source.Func{SourceName: "down", LoadFunc: func(context.Context) (*content.Node, error) {
		return nil, errors.New("connection refused")
	}}
	_, err := r.Layout(ctx, Options{Source: plain})
	if !errs.Is(err, errs.ErrCodeSourceUnavailable) {
		t.Errorf("plain source error code = %q, want SOURCE_UNAVAILABLE", errs.GetCode(err))
	}

	coded := source.Func{SourceName: "bad", LoadFunc: func(context.Context) (*content.Node, error) {
		return nil, errs.New(errs.ErrCodeInvalidContent, "broken")
	}}
	_, err = r.Layout(ctx, Options{Source: coded})
	if !errs.Is(err, errs.ErrCodeInvalidContent) {
		t.Errorf("coded source error code = %q, want INVALID_CONTENT", errs.GetCode(err))
	}

	empty := source.Func{SourceName: "empty", LoadFunc: func(context.Context) (*content.Node, error) {
		return nil, nil
	}}
	_, err = r.Layout(ctx, Options{Source: empty})
	if !errs.Is(err, errs.ErrCodeInvalidContent) {
		t.Errorf("nil tree error code = %q, want INVALID_CONTENT", errs.GetCode(err))
	}
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Engine == nil || r.Logger == nil {
		t.Fatalf("NewRunner() left nil fields: %+v", r)
	}
	if r.configHash == "" {
		t.Error("config hash not computed")
	}

	cfg := layout.DefaultConfig()
	cfg.HorizontalGap = 40
	custom := NewRunner(nil, nil, &cfg, nil)
	if custom.configHash == r.configHash {
		t.Error("different presets should hash differently")
	}
	if err := custom.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

func TestTreeHash(t *testing.T) {
	a, err := TreeHash(sampleTree())
	if err != nil {
		t.Fatal(err)
	}
	b, _ := TreeHash(sampleTree())
	if a != b {
		t.Error("TreeHash not deterministic")
	}
	changed := sampleTree()
	changed.Title = "Other"
	c, _ := TreeHash(changed)
	if a == c {
		t.Error("TreeHash ignores content changes")
	}
}
