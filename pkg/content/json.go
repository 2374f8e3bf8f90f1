package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	errs "github.com/matzehuels/systemmap/pkg/errors"
)

// wireNode is the accepted JSON shape. It tolerates legacy fields and a
// content payload given either as a string or as an inline block array.
type wireNode struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Title         string          `json:"title"`
	Label         string          `json:"label"`
	Status        string          `json:"status"`
	Description   string          `json:"description"`
	Content       json.RawMessage `json:"content"`
	IframeConfig  *IframeConfig   `json:"iframeConfig"`
	ExperimentURL string          `json:"experimentUrl"`
	Gallery       []string        `json:"gallery"`
	Children      []*Node         `json:"children"`
}

// UnmarshalJSON decodes a node, resolving legacy type names.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.ID == "" {
		return errs.New(errs.ErrCodeInvalidContent, "node without id (title %q)", w.Title)
	}

	typ, label, iframe := Authored{
		Type:          w.Type,
		Label:         w.Label,
		ExperimentURL: w.ExperimentURL,
		Iframe:        w.IframeConfig,
	}.Resolve()

	for i, child := range w.Children {
		if child == nil {
			return errs.New(errs.ErrCodeInvalidContent, "node %q has a null child at index %d", w.ID, i)
		}
	}

	node := Node{
		ID:           w.ID,
		Type:         typ,
		Title:        w.Title,
		Label:        label,
		Status:       ParseStatus(w.Status),
		Description:  w.Description,
		Content:      rawContent(w.Content),
		IframeConfig: iframe,
		Gallery:      w.Gallery,
		Children:     w.Children,
	}
	if err := node.Validate(); err != nil {
		return err
	}
	*n = node
	return nil
}

// rawContent unquotes a JSON string payload and keeps anything else verbatim.
func rawContent(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// ReadTree decodes a JSON content tree from r.
func ReadTree(r io.Reader) (*Node, error) {
	var root Node
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		if errs.GetCode(err) != "" {
			return nil, err
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidContent, err, "decode content tree")
	}
	return &root, nil
}

// ReadTreeFile decodes a JSON content tree from the file at path.
func ReadTreeFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTree(f)
}

// MarshalTree encodes a content tree as JSON. Output is deterministic for a
// given tree, which makes it suitable as a cache key input.
func MarshalTree(root *Node) ([]byte, error) {
	return json.Marshal(root)
}
