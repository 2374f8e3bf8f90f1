package document

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	emojiast "github.com/yuin/goldmark-emoji/ast"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var markdownParser = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		emoji.Emoji,
	),
).Parser()

// FromMarkdown converts markdown source into document blocks.
//
// Block structure maps onto the editor tags: headings keep their level,
// lists become ordered/unordered lists of list items, fenced and indented
// code become code blocks, and a paragraph consisting of a lone image becomes
// an image block. Constructs without an equivalent (tables, raw HTML) keep
// their goldmark kind name as the type tag.
func FromMarkdown(src []byte) []Block {
	doc := markdownParser.Parse(text.NewReader(src))
	return convertBlocks(doc, src)
}

func convertBlocks(parent ast.Node, src []byte) []Block {
	var out []Block
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		out = append(out, convertBlock(n, src))
	}
	return out
}

func convertBlock(n ast.Node, src []byte) Block {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		if img, ok := loneImage(n); ok {
			return Block{Type: TypeImage, Src: string(img.Destination), Alt: inlineText(img, src)}
		}
		return Block{Type: TypeParagraph, Children: inlineBlocks(n, src)}
	case *ast.Heading:
		return Block{Type: TypeHeading, Level: n.Level, Children: inlineBlocks(n, src)}
	case *ast.Blockquote:
		return Block{Type: TypeBlockquote, Children: convertBlocks(n, src)}
	case *ast.List:
		typ := TypeUnorderedList
		if n.IsOrdered() {
			typ = TypeOrderedList
		}
		return Block{Type: typ, Children: convertBlocks(n, src)}
	case *ast.ListItem:
		return Block{Type: TypeListItem, Children: listItemChildren(n, src)}
	case *ast.FencedCodeBlock:
		return Block{Type: TypeCode, Language: string(n.Language(src)), Code: codeLines(n, src)}
	case *ast.CodeBlock:
		return Block{Type: TypeCode, Code: codeLines(n, src)}
	case *ast.ThematicBreak:
		return Block{Type: TypeDivider}
	}
	return Block{Type: strings.ToLower(n.Kind().String())}
}

// listItemChildren wraps the item's inline text in list-item-content blocks
// and keeps nested lists as they are.
func listItemChildren(item *ast.ListItem, src []byte) []Block {
	var out []Block
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		switch c.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			out = append(out, Block{Type: TypeListContent, Children: inlineBlocks(c, src)})
		default:
			out = append(out, convertBlock(c, src))
		}
	}
	return out
}

func loneImage(n ast.Node) (*ast.Image, bool) {
	if n.ChildCount() != 1 {
		return nil, false
	}
	img, ok := n.FirstChild().(*ast.Image)
	return img, ok
}

// inlineBlocks flattens the inline content of n into text leaves. Links
// stay wrapped so their target survives.
func inlineBlocks(n ast.Node, src []byte) []Block {
	var out []Block
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if link, ok := c.(*ast.Link); ok {
			out = append(out, Block{
				Type:     TypeLink,
				Href:     string(link.Destination),
				Children: []Block{Text(inlineText(link, src))},
			})
			continue
		}
		if s := inlineText(c, src); s != "" {
			out = append(out, Text(s))
		}
	}
	return out
}

func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	writeInline(&buf, n, src)
	return buf.String()
}

func writeInline(buf *bytes.Buffer, n ast.Node, src []byte) {
	switch n := n.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(src))
		if n.SoftLineBreak() || n.HardLineBreak() {
			buf.WriteByte(' ')
		}
		return
	case *ast.String:
		buf.Write(n.Value)
		return
	case *emojiast.Emoji:
		buf.WriteString(string(n.Value.Unicode))
		return
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		writeInline(buf, c, src)
	}
}

func codeLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// ToMarkdown writes blocks back out as markdown. Unknown block types
// contribute their inline text as a paragraph.
func ToMarkdown(blocks []Block) string {
	var sb strings.Builder
	for i, b := range blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		writeMarkdown(&sb, b, "")
	}
	return sb.String()
}

func writeMarkdown(sb *strings.Builder, b Block, indent string) {
	switch b.Type {
	case TypeHeading:
		level := min(max(b.Level, 1), 6)
		sb.WriteString(strings.Repeat("#", level) + " " + inlineMarkdown(b) + "\n")
	case TypeBlockquote:
		for _, c := range b.Children {
			for line := range strings.SplitSeq(strings.TrimSuffix(ToMarkdown([]Block{c}), "\n"), "\n") {
				sb.WriteString("> " + line + "\n")
			}
		}
	case TypeUnorderedList, TypeOrderedList:
		for i, item := range b.Children {
			marker := "- "
			if b.Type == TypeOrderedList {
				marker = strconv.Itoa(i+1) + ". "
			}
			writeListItem(sb, item, indent, marker)
		}
	case TypeImage:
		sb.WriteString("![" + b.Alt + "](" + b.Src + ")\n")
	case TypeCode:
		sb.WriteString("```" + b.Language + "\n" + b.CodeText() + "\n```\n")
	case TypeDivider:
		sb.WriteString("---\n")
	default:
		sb.WriteString(inlineMarkdown(b) + "\n")
	}
}

func writeListItem(sb *strings.Builder, item Block, indent, marker string) {
	sb.WriteString(indent + marker)
	wrote := false
	for _, c := range item.Children {
		if c.IsList() {
			if !wrote {
				sb.WriteString("\n")
				wrote = true
			}
			writeMarkdown(sb, c, indent+"  ")
			continue
		}
		sb.WriteString(inlineMarkdown(c) + "\n")
		wrote = true
	}
	if !wrote {
		sb.WriteString("\n")
	}
}

func inlineMarkdown(b Block) string {
	if b.IsText() {
		return b.Text
	}
	var sb strings.Builder
	for _, c := range b.Children {
		if c.Type == TypeLink {
			sb.WriteString("[" + c.InlineText() + "](" + c.Href + ")")
			continue
		}
		sb.WriteString(inlineMarkdown(c))
	}
	if sb.Len() == 0 {
		return b.Text
	}
	return sb.String()
}
