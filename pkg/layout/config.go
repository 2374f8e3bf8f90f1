package layout

import (
	errs "github.com/matzehuels/systemmap/pkg/errors"
)

// Config is a sizing preset. The zero value is not usable; start from
// [DefaultConfig] and override fields.
type Config struct {
	NodeWidth      float64 `toml:"node_width" json:"nodeWidth"`
	NodeHeight     float64 `toml:"node_height" json:"nodeHeight"`
	ExpandedWidth  float64 `toml:"expanded_width" json:"expandedWidth"`
	ExpandedHeight float64 `toml:"expanded_height" json:"expandedHeight"`
	HorizontalGap  float64 `toml:"horizontal_gap" json:"horizontalGap"`
	VerticalGap    float64 `toml:"vertical_gap" json:"verticalGap"`

	// ColumnSplitThreshold is the largest child count laid out in a single
	// column.
	ColumnSplitThreshold int `toml:"column_split_threshold" json:"columnSplitThreshold"`

	PreviewDesktop Size `toml:"preview_desktop" json:"previewDesktop"`
	PreviewMobile  Size `toml:"preview_mobile" json:"previewMobile"`

	// Mobile expanded width is the viewport width times MobileWidthRatio,
	// clamped to [MobileMinWidth, MobileMaxWidth].
	MobileWidthRatio float64 `toml:"mobile_width_ratio" json:"mobileWidthRatio"`
	MobileMinWidth   float64 `toml:"mobile_min_width" json:"mobileMinWidth"`
	MobileMaxWidth   float64 `toml:"mobile_max_width" json:"mobileMaxWidth"`
	MobileMinHeight  float64 `toml:"mobile_min_height" json:"mobileMinHeight"`

	Estimate EstimateConfig `toml:"estimate" json:"estimate"`
}

// Size is a box size in world units.
type Size struct {
	Width  float64 `toml:"width" json:"width"`
	Height float64 `toml:"height" json:"height"`
}

// EstimateConfig holds the metrics used to estimate content height.
type EstimateConfig struct {
	BaseChrome    float64 `toml:"base_chrome" json:"baseChrome"`
	GalleryAspect float64 `toml:"gallery_aspect" json:"galleryAspect"`
	GalleryMargin float64 `toml:"gallery_margin" json:"galleryMargin"`
	WrapFactor    float64 `toml:"wrap_factor" json:"wrapFactor"`
	BlockMargin   float64 `toml:"block_margin" json:"blockMargin"`

	HeadingCharScale float64 `toml:"heading_char_scale" json:"headingCharScale"`
	HeadingLineScale float64 `toml:"heading_line_scale" json:"headingLineScale"`

	ImageHeight        float64 `toml:"image_height" json:"imageHeight"`
	ListMargin         float64 `toml:"list_margin" json:"listMargin"`
	CodeLineHeight     float64 `toml:"code_line_height" json:"codeLineHeight"`
	CodeMargin         float64 `toml:"code_margin" json:"codeMargin"`
	DividerHeight      float64 `toml:"divider_height" json:"dividerHeight"`
	UnknownBlockHeight float64 `toml:"unknown_block_height" json:"unknownBlockHeight"`

	Desktop FontMetrics `toml:"desktop" json:"desktop"`
	Mobile  FontMetrics `toml:"mobile" json:"mobile"`
}

// FontMetrics describes text rendering for one device class.
type FontMetrics struct {
	// Padding is the horizontal text inset on each side of the box.
	Padding    float64 `toml:"padding" json:"padding"`
	CharWidth  float64 `toml:"char_width" json:"charWidth"`
	LineHeight float64 `toml:"line_height" json:"lineHeight"`
}

// DefaultConfig returns the standard sizing preset.
func DefaultConfig() Config {
	return Config{
		NodeWidth:            250,
		NodeHeight:           150,
		ExpandedWidth:        800,
		ExpandedHeight:       600,
		HorizontalGap:        100,
		VerticalGap:          50,
		ColumnSplitThreshold: 4,
		PreviewDesktop:       Size{Width: 800, Height: 600},
		PreviewMobile:        Size{Width: 450, Height: 800},
		MobileWidthRatio:     0.9,
		MobileMinWidth:       320,
		MobileMaxWidth:       600,
		MobileMinHeight:      400,
		Estimate: EstimateConfig{
			BaseChrome:         160,
			GalleryAspect:      0.5625,
			GalleryMargin:      30,
			WrapFactor:         0.92,
			BlockMargin:        16,
			HeadingCharScale:   1.4,
			HeadingLineScale:   1.5,
			ImageHeight:        300,
			ListMargin:         16,
			CodeLineHeight:     20,
			CodeMargin:         32,
			DividerHeight:      32,
			UnknownBlockHeight: 50,
			Desktop:            FontMetrics{Padding: 48, CharWidth: 8.5, LineHeight: 28},
			Mobile:             FontMetrics{Padding: 24, CharWidth: 8, LineHeight: 24},
		},
	}
}

// Validate checks that every dimension is usable.
func (c *Config) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"node_width", c.NodeWidth},
		{"node_height", c.NodeHeight},
		{"expanded_width", c.ExpandedWidth},
		{"expanded_height", c.ExpandedHeight},
		{"preview_desktop.width", c.PreviewDesktop.Width},
		{"preview_desktop.height", c.PreviewDesktop.Height},
		{"preview_mobile.width", c.PreviewMobile.Width},
		{"preview_mobile.height", c.PreviewMobile.Height},
		{"mobile_min_width", c.MobileMinWidth},
		{"estimate.wrap_factor", c.Estimate.WrapFactor},
		{"estimate.desktop.char_width", c.Estimate.Desktop.CharWidth},
		{"estimate.mobile.char_width", c.Estimate.Mobile.CharWidth},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return errs.New(errs.ErrCodeInvalidConfig, "layout %s must be positive, got %v", p.name, p.value)
		}
	}
	if c.HorizontalGap < 0 || c.VerticalGap < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "layout gaps must not be negative")
	}
	if c.MobileMaxWidth < c.MobileMinWidth {
		return errs.New(errs.ErrCodeInvalidConfig, "layout mobile_max_width %v is below mobile_min_width %v",
			c.MobileMaxWidth, c.MobileMinWidth)
	}
	if c.ColumnSplitThreshold < 1 {
		return errs.New(errs.ErrCodeInvalidConfig, "layout column_split_threshold must be at least 1")
	}
	return nil
}
