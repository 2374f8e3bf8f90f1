package content

import (
	"strings"
	"testing"

	errs "github.com/matzehuels/systemmap/pkg/errors"
)

func TestNodeTypeValid(t *testing.T) {
	tests := []struct {
		typ  NodeType
		want bool
	}{
		{TypeCategory, true},
		{TypeArticle, true},
		{TypeVirtualFrame, true},
		{"project", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := tt.typ.Valid(); got != tt.want {
			t.Errorf("NodeType(%q).Valid() = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if got := ParseStatus("production"); got != StatusProduction {
		t.Errorf("ParseStatus(production) = %q", got)
	}
	if got := ParseStatus("shipped"); got != StatusNone {
		t.Errorf("ParseStatus(shipped) = %q, want empty", got)
	}
}

func TestParseOrientation(t *testing.T) {
	if got := ParseOrientation("mobile"); got != OrientationMobile {
		t.Errorf("ParseOrientation(mobile) = %q", got)
	}
	for _, s := range []string{"", "desktop", "tablet"} {
		if got := ParseOrientation(s); got != OrientationDesktop {
			t.Errorf("ParseOrientation(%q) = %q, want desktop", s, got)
		}
	}
}

func TestAuthoredResolve(t *testing.T) {
	tests := []struct {
		name       string
		in         Authored
		wantType   NodeType
		wantLabel  string
		wantURL    string
		wantOrient Orientation
	}{
		{
			name:     "article kept",
			in:       Authored{Type: "article", Label: "Essay"},
			wantType: TypeArticle, wantLabel: "Essay",
		},
		{
			name:     "project migrates",
			in:       Authored{Type: "project", Label: "whatever"},
			wantType: TypeArticle, wantLabel: "Project",
		},
		{
			name:     "experiment gets desktop iframe",
			in:       Authored{Type: "experiment", ExperimentURL: "https://x/exp"},
			wantType: TypeArticle, wantLabel: "Experiment",
			wantURL: "https://x/exp", wantOrient: OrientationDesktop,
		},
		{
			name:     "mobile-preview gets mobile iframe",
			in:       Authored{Type: "mobile-preview", ExperimentURL: "https://x/app"},
			wantType: TypeArticle, wantLabel: "App",
			wantURL: "https://x/app", wantOrient: OrientationMobile,
		},
		{
			name:     "explicit iframe wins",
			in:       Authored{Type: "experiment", ExperimentURL: "https://old", Iframe: &IframeConfig{URL: "https://new", Orientation: "mobile"}},
			wantType: TypeArticle, wantLabel: "Experiment",
			wantURL: "https://new", wantOrient: OrientationMobile,
		},
		{
			name:     "stray experimentUrl dropped",
			in:       Authored{Type: "category", ExperimentURL: "https://garbage"},
			wantType: TypeCategory,
		},
		{
			name:     "empty iframe url dropped",
			in:       Authored{Type: "article", Iframe: &IframeConfig{URL: ""}},
			wantType: TypeArticle,
		},
		{
			name:     "unknown becomes category",
			in:       Authored{Type: "folder", Label: "Stuff"},
			wantType: TypeCategory, wantLabel: "Stuff",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, label, iframe := tt.in.Resolve()
			if typ != tt.wantType {
				t.Errorf("type = %q, want %q", typ, tt.wantType)
			}
			if label != tt.wantLabel {
				t.Errorf("label = %q, want %q", label, tt.wantLabel)
			}
			if tt.wantURL == "" {
				if iframe != nil {
					t.Errorf("iframe = %+v, want nil", iframe)
				}
				return
			}
			if iframe == nil {
				t.Fatal("iframe = nil")
			}
			if iframe.URL != tt.wantURL || iframe.Orientation != tt.wantOrient {
				t.Errorf("iframe = %+v, want %s/%s", iframe, tt.wantURL, tt.wantOrient)
			}
		})
	}
}

func TestReadTree(t *testing.T) {
	src := `{
	  "id": "root", "type": "category", "title": "Martin Nanni",
	  "children": [
	    {"id": "dungeon-tavern", "type": "project", "title": "Dungeon Tavern",
	     "content": "[{\"type\":\"paragraph\",\"children\":[{\"text\":\"hi\"}]}]",
	     "gallery": ["https://placehold.co/1", "https://placehold.co/2"]},
	    {"id": "city-scape", "type": "experiment", "title": "City Scape",
	     "experimentUrl": "https://stonecallstudio.com/JSTests/City_Scape/index.html"},
	    {"id": "inline", "type": "article", "title": "Inline",
	     "content": [{"type": "paragraph", "children": [{"text": "x"}]}]},
	    {"id": "nulls", "type": "article", "title": "Nulls", "content": null, "status": "concept"}
	  ]
	}`

	root, err := ReadTree(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadTree() error: %v", err)
	}
	if root.ID != "root" || len(root.Children) != 4 {
		t.Fatalf("root = %s with %d children", root.ID, len(root.Children))
	}

	dt := root.Children[0]
	if dt.Type != TypeArticle || dt.Label != "Project" {
		t.Errorf("dungeon-tavern = %s/%s, want article/Project", dt.Type, dt.Label)
	}
	if !strings.HasPrefix(dt.Content, `[{"type":"paragraph"`) {
		t.Errorf("string content not unquoted: %q", dt.Content)
	}
	if len(dt.Gallery) != 2 {
		t.Errorf("gallery len = %d, want 2", len(dt.Gallery))
	}

	cs := root.Children[1]
	if !cs.IframeConfig.HasURL() || cs.IframeConfig.Orientation != OrientationDesktop {
		t.Errorf("city-scape iframe = %+v", cs.IframeConfig)
	}

	if got := root.Children[2].Content; !strings.HasPrefix(got, "[") {
		t.Errorf("inline content = %q, want raw array", got)
	}

	nulls := root.Children[3]
	if nulls.Content != "" {
		t.Errorf("null content = %q, want empty", nulls.Content)
	}
	if nulls.Status != StatusConcept {
		t.Errorf("status = %q, want concept", nulls.Status)
	}
}

func TestReadTreeErrors(t *testing.T) {
	if _, err := ReadTree(strings.NewReader(`{"type":"category"}`)); !errs.Is(err, errs.ErrCodeInvalidContent) {
		t.Errorf("missing id error = %v, want INVALID_CONTENT", err)
	}
	if _, err := ReadTree(strings.NewReader(`{`)); !errs.Is(err, errs.ErrCodeInvalidContent) {
		t.Errorf("malformed error = %v, want INVALID_CONTENT", err)
	}
	if _, err := ReadTreeFile("does-not-exist.json"); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestReadTreeRejectsInvalidNodes(t *testing.T) {
	tests := []struct {
		name string
		json string
		code errs.Code
	}{
		{"null child", `{"id":"root","children":[null,{"id":"a"}]}`, errs.ErrCodeInvalidContent},
		{"nested null child", `{"id":"root","children":[{"id":"a","children":[null]}]}`, errs.ErrCodeInvalidContent},
		{"id with space", `{"id":"root","children":[{"id":"About Me"}]}`, errs.ErrCodeInvalidNodeID},
		{"id with slash", `{"id":"a/b"}`, errs.ErrCodeInvalidNodeID},
		{"script iframe url", `{"id":"root","iframeConfig":{"url":"javascript:alert(1)"}}`, errs.ErrCodeInvalidContent},
		{"ftp experiment url", `{"id":"exp","type":"experiment","experimentUrl":"ftp://host/x"}`, errs.ErrCodeInvalidContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := ReadTree(strings.NewReader(tt.json))
			if err == nil {
				t.Fatalf("ReadTree() = %+v, want error", root)
			}
			if !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestNodeValidate(t *testing.T) {
	ok := &Node{ID: "city-scape", IframeConfig: &IframeConfig{URL: "https://example.com/app"}}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}

	noURL := &Node{ID: "about", IframeConfig: &IframeConfig{Orientation: OrientationMobile}}
	if err := noURL.Validate(); err != nil {
		t.Errorf("Validate() without url error: %v", err)
	}

	if err := (&Node{ID: "About Me"}).Validate(); !errs.IsInvalid(err) {
		t.Errorf("Validate() bad id error = %v, want invalid", err)
	}
	bad := &Node{ID: "x", IframeConfig: &IframeConfig{URL: "file:///etc/passwd"}}
	if err := bad.Validate(); !errs.Is(err, errs.ErrCodeInvalidContent) {
		t.Errorf("Validate() bad url error = %v, want INVALID_CONTENT", err)
	}
}

func TestMarshalTreeRoundTrip(t *testing.T) {
	root := &Node{
		ID: "root", Type: TypeCategory, Title: "Root",
		Children: []*Node{{
			ID: "a", Type: TypeArticle, Title: "A", Content: `[{"type":"paragraph"}]`,
			IframeConfig: &IframeConfig{URL: "https://a", Orientation: OrientationMobile},
		}},
	}
	data, err := MarshalTree(root)
	if err != nil {
		t.Fatalf("MarshalTree() error: %v", err)
	}
	back, err := ReadTree(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("ReadTree() error: %v", err)
	}
	a := back.Children[0]
	if a.Content != root.Children[0].Content {
		t.Errorf("content = %q, want %q", a.Content, root.Children[0].Content)
	}
	if a.IframeConfig.Orientation != OrientationMobile {
		t.Errorf("orientation = %q, want mobile", a.IframeConfig.Orientation)
	}
}
