package layout

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/systemmap/pkg/content"
	"github.com/matzehuels/systemmap/pkg/document"
)

// EstimateHeight approximates the rendered height of n's expanded card at
// the given width. The estimate is not exact; it only has to keep boxes
// from overlapping their content by much.
//
// The base chrome (header, title and description) is always counted, then
// the gallery at 16:9, then every document block. A payload that does not
// parse as a block sequence yields the base chrome alone, without the gallery.
// Unknown block types contribute a fixed height and are logged.
func (e *Engine) EstimateHeight(n *content.Node, width float64, mobile bool) float64 {
	est := &e.config.Estimate
	metrics := est.Desktop
	if mobile {
		metrics = est.Mobile
	}

	var blocks []document.Block
	if n.Content != "" {
		var err error
		if blocks, err = document.Parse(n.Content); err != nil {
			e.logger.Debug("content not estimable", "node", n.ID, "err", err)
			return est.BaseChrome
		}
	}

	height := est.BaseChrome
	if len(n.Gallery) > 0 {
		height += width*est.GalleryAspect + est.GalleryMargin
	}

	m := measurer{est: est, font: metrics, textWidth: width - 2*metrics.Padding}
	for _, b := range blocks {
		h, known := m.block(b)
		if !known {
			e.logger.Debug("unknown block type", "node", n.ID, "type", b.Type)
		}
		height += h
	}
	return height
}

type measurer struct {
	est       *EstimateConfig
	font      FontMetrics
	textWidth float64
}

// block returns the height of b and whether its type is known.
func (m measurer) block(b document.Block) (float64, bool) {
	switch b.Type {
	case document.TypeParagraph, document.TypeBlockquote,
		document.TypeListItem, document.TypeListContent:
		return m.text(b.InlineText(), 1, 1), true
	case document.TypeHeading:
		return m.text(b.InlineText(), m.est.HeadingCharScale, m.est.HeadingLineScale), true
	case document.TypeUnorderedList, document.TypeOrderedList:
		h := m.est.ListMargin
		for _, item := range b.Children {
			h += m.text(item.InlineText(), 1, 1)
		}
		return h, true
	case document.TypeImage:
		return m.est.ImageHeight, true
	case document.TypeDivider:
		return m.est.DividerHeight, true
	case document.TypeCode:
		lines := strings.Count(b.CodeText(), "\n") + 1
		return float64(lines)*m.est.CodeLineHeight + m.est.CodeMargin, true
	}
	return m.est.UnknownBlockHeight, false
}

// text estimates wrapped text. charScale widens glyphs, lineScale raises
// the line height.
func (m measurer) text(s string, charScale, lineScale float64) float64 {
	perLine := m.textWidth / (m.font.CharWidth * charScale) * m.est.WrapFactor
	if perLine < 1 {
		perLine = 1
	}
	lines := math.Ceil(float64(utf8.RuneCountInString(s)) / perLine)
	return lines*m.font.LineHeight*lineScale + m.est.BlockMargin
}
