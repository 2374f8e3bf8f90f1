package server

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/systemmap/pkg/buildinfo"
	"github.com/matzehuels/systemmap/pkg/content"
	errs "github.com/matzehuels/systemmap/pkg/errors"
	"github.com/matzehuels/systemmap/pkg/layout"
	"github.com/matzehuels/systemmap/pkg/pipeline"
	"github.com/matzehuels/systemmap/pkg/tree"
)

var contentTypes = map[string]string{
	pipeline.FormatJSON:     "application/json",
	pipeline.FormatSVG:      "image/svg+xml",
	pipeline.FormatGraphviz: "image/svg+xml",
	pipeline.FormatDOT:      "text/vnd.graphviz; charset=utf-8",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string         `json:"status"`
		Source string         `json:"source"`
		Build  buildinfo.Info `json:"build"`
	}{"ok", s.src.Name(), buildinfo.Get()})
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	root, err := s.load(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := content.MarshalTree(root)
	if err != nil {
		writeError(w, r, errs.Wrap(errs.ErrCodeInternal, err, "encode tree"))
		return
	}
	writeRaw(w, "application/json", data)
}

func (s *Server) handleLayoutQuery(w http.ResponseWriter, r *http.Request) {
	opts, err := layoutOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.render(w, r, opts, pipeline.FormatJSON)
}

func (s *Server) handleLayoutBody(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		writeError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode body: %v", err))
		return
	}
	s.render(w, r, opts, pipeline.FormatJSON)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := layoutOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, r, err)
		return
	}
	opts.Detailed = queryBool(r, "detailed")
	s.render(w, r, opts, format)
}

// render runs the pipeline for one format and writes the artifact.
func (s *Server) render(w http.ResponseWriter, r *http.Request, opts pipeline.Options, format string) {
	opts.Source = s.src
	opts.Formats = []string{format}
	opts.Logger = s.logger

	res, err := s.runner.Render(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cacheState := "miss"
	if res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit {
		cacheState = "hit"
	}
	w.Header().Set("X-Cache", cacheState)
	writeRaw(w, contentTypes[format], res.Artifacts[format])
}

type nodeResponse struct {
	ID          string           `json:"id"`
	Type        content.NodeType `json:"type"`
	Title       string           `json:"title"`
	Label       string           `json:"label"`
	Children    []string         `json:"children"`
	Descendants []string         `json:"descendants"`
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	n, _, err := s.findNode(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	children := make([]string, len(n.Children))
	for i, c := range n.Children {
		children[i] = c.ID
	}
	writeJSON(w, http.StatusOK, nodeResponse{
		ID:          n.ID,
		Type:        n.Type,
		Title:       n.Title,
		Label:       n.DisplayLabel(),
		Children:    children,
		Descendants: nonNil(tree.DescendantIDs(n)),
	})
}

func (s *Server) handleNodePath(w http.ResponseWriter, r *http.Request) {
	n, root, err := s.findNode(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		ID   string   `json:"id"`
		Path []string `json:"path"`
	}{n.ID, tree.PathToNode(root, n.ID)})
}

func (s *Server) load(r *http.Request) (*content.Node, error) {
	return s.runner.LoadTree(r.Context(), pipeline.Options{Source: s.src, Logger: s.logger})
}

func (s *Server) findNode(r *http.Request) (*content.Node, *content.Node, error) {
	id := chi.URLParam(r, "id")
	if err := errs.ValidateNodeID(id); err != nil {
		return nil, nil, err
	}
	root, err := s.load(r)
	if err != nil {
		return nil, nil, err
	}
	n := tree.FindNode(root, id)
	if n == nil {
		return nil, nil, errs.New(errs.ErrCodeNodeNotFound, "node %q not found", id)
	}
	return n, root, nil
}

// layoutOptions reads expand, all, mobile, vw, vh and edges from the query.
func layoutOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	var opts pipeline.Options

	for _, v := range q["expand"] {
		for id := range strings.SplitSeq(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				opts.Expanded = append(opts.Expanded, id)
			}
		}
	}
	opts.ExpandAll = queryBool(r, "all")
	opts.Edges = queryBool(r, "edges")

	mobile := false
	if v := q.Get("mobile"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errs.New(errs.ErrCodeInvalidInput, "mobile must be a boolean, got %q", v)
		}
		mobile = b
	}
	vw, err := queryFloat(q.Get("vw"), "vw")
	if err != nil {
		return opts, err
	}
	vh, err := queryFloat(q.Get("vh"), "vh")
	if err != nil {
		return opts, err
	}
	if mobile || vw > 0 || vh > 0 {
		opts.Viewport = &layout.Viewport{IsMobile: mobile, Width: vw, Height: vh}
	}
	return opts, nil
}

func queryBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}

func queryFloat(v, name string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errs.New(errs.ErrCodeInvalidInput, "%s must be a finite number, got %q", name, v)
	}
	return f, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
