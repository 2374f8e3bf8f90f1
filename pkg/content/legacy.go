package content

// Legacy node types written before articles absorbed projects and experiments.
const (
	legacyProject       = "project"
	legacyExperiment    = "experiment"
	legacyMobilePreview = "mobile-preview"
	legacyPreview       = "experiment-preview"
)

// Authored holds the type-related fields exactly as an author wrote them,
// before legacy names are mapped onto the current schema.
type Authored struct {
	Type          string
	Label         string
	ExperimentURL string
	Iframe        *IframeConfig
}

// Resolve maps authored fields onto the current schema.
//
//   - project becomes an article labelled "Project"
//   - experiment becomes an article labelled "Experiment"; its experimentUrl
//     becomes a desktop iframe
//   - mobile-preview becomes an article labelled "App"; its experimentUrl
//     becomes a mobile iframe
//   - experiment-preview becomes a virtual frame
//   - unknown types become categories
//
// A stray experimentUrl on any other type is dropped. An explicit iframe
// config always wins over a legacy experimentUrl.
func (a Authored) Resolve() (NodeType, string, *IframeConfig) {
	iframe := normalizeIframe(a.Iframe)

	switch a.Type {
	case string(TypeCategory), string(TypeArticle), string(TypeVirtualFrame):
		return NodeType(a.Type), a.Label, iframe
	case legacyProject:
		return TypeArticle, "Project", iframe
	case legacyExperiment:
		return TypeArticle, "Experiment", legacyIframe(iframe, a.ExperimentURL, OrientationDesktop)
	case legacyMobilePreview:
		return TypeArticle, "App", legacyIframe(iframe, a.ExperimentURL, OrientationMobile)
	case legacyPreview:
		return TypeVirtualFrame, a.Label, legacyIframe(iframe, a.ExperimentURL, OrientationDesktop)
	}
	return TypeCategory, a.Label, iframe
}

func legacyIframe(current *IframeConfig, url string, o Orientation) *IframeConfig {
	if current != nil || url == "" {
		return current
	}
	return &IframeConfig{URL: url, Orientation: o}
}

// normalizeIframe drops configs without a URL and fills the orientation.
func normalizeIframe(c *IframeConfig) *IframeConfig {
	if !c.HasURL() {
		return nil
	}
	return &IframeConfig{URL: c.URL, Orientation: ParseOrientation(string(c.Orientation))}
}
