// Package document models the rich-document payload stored in a node's
// content field.
//
// A document is an ordered sequence of [Block] values. Every block carries a
// type tag; text lives in leaf blocks, so a paragraph is a block whose
// children are text leaves (possibly wrapped in inline blocks such as links).
// This is the shape produced by the Keystatic document editor, and it is
// walked generically by tag: consumers never depend on the editor itself.
//
// Payloads are parsed with [Parse]. Markdown sources are converted with
// [FromMarkdown] so that every source yields the same block model.
package document

import (
	"encoding/json"
	"strings"

	errs "github.com/matzehuels/systemmap/pkg/errors"
)

// Block type tags.
const (
	TypeParagraph     = "paragraph"
	TypeHeading       = "heading"
	TypeBlockquote    = "blockquote"
	TypeListItem      = "list-item"
	TypeListContent   = "list-item-content"
	TypeUnorderedList = "unordered-list"
	TypeOrderedList   = "ordered-list"
	TypeImage         = "image"
	TypeCode          = "code"
	TypeDivider       = "divider"
	TypeLink          = "link"
)

// Block is one element of a document. Leaf text nodes have an empty Type
// and a Text value.
type Block struct {
	Type     string  `json:"type,omitempty"`
	Text     string  `json:"text,omitempty"`
	Level    int     `json:"level,omitempty"`
	Language string  `json:"language,omitempty"`
	Code     string  `json:"code,omitempty"`
	Src      string  `json:"src,omitempty"`
	Alt      string  `json:"alt,omitempty"`
	Href     string  `json:"href,omitempty"`
	Children []Block `json:"children,omitempty"`
}

// IsText reports whether b is a leaf text node.
func (b Block) IsText() bool {
	return b.Type == "" && len(b.Children) == 0
}

// IsList reports whether b is an ordered or unordered list.
func (b Block) IsList() bool {
	return b.Type == TypeUnorderedList || b.Type == TypeOrderedList
}

// InlineText concatenates the text of b and every block nested below it.
func (b Block) InlineText() string {
	var sb strings.Builder
	b.appendText(&sb)
	return sb.String()
}

func (b Block) appendText(sb *strings.Builder) {
	sb.WriteString(b.Text)
	for _, c := range b.Children {
		c.appendText(sb)
	}
}

// CodeText returns the source of a code block. Editors store it either in
// the code attribute or as text children.
func (b Block) CodeText() string {
	if b.Code != "" {
		return b.Code
	}
	return b.InlineText()
}

// Parse decodes a serialised document. The payload must be a JSON array of
// blocks; an empty payload is an empty document.
func Parse(payload string) ([]Block, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, nil
	}
	if payload[0] != '[' {
		return nil, errs.New(errs.ErrCodeInvalidContent, "document is not a block sequence")
	}
	var blocks []Block
	if err := json.Unmarshal([]byte(payload), &blocks); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidContent, err, "decode document")
	}
	return blocks, nil
}

// Marshal serialises blocks into the payload format accepted by Parse.
func Marshal(blocks []Block) (string, error) {
	if blocks == nil {
		blocks = []Block{}
	}
	data, err := json.Marshal(blocks)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Text returns a leaf text node.
func Text(s string) Block {
	return Block{Text: s}
}

// Paragraph returns a paragraph holding a single run of text.
func Paragraph(s string) Block {
	return Block{Type: TypeParagraph, Children: []Block{Text(s)}}
}

// Heading returns a heading of the given level.
func Heading(level int, s string) Block {
	return Block{Type: TypeHeading, Level: level, Children: []Block{Text(s)}}
}
