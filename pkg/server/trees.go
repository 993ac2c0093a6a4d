package server

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/thoughttree/pkg/errors"
	"github.com/matzehuels/thoughttree/pkg/layout"
	"github.com/matzehuels/thoughttree/pkg/pipeline"
	"github.com/matzehuels/thoughttree/pkg/tree"
	"github.com/matzehuels/thoughttree/pkg/treestore"
)

type putTreeResponse struct {
	Key   string     `json:"key"`
	Stats tree.Stats `json:"stats"`
}

// handlePutTree stores a bare tree or a ToT response envelope.
func (s *Server) handlePutTree(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := tree.UnmarshalResponse(data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rec := treestore.NewRecord(resp)
	key, err := s.trees.Put(r.Context(), rec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("stored tree", "key", key, "nodes", rec.Stats.Nodes)
	writeJSON(w, http.StatusCreated, putTreeResponse{Key: key, Stats: rec.Stats})
}

func (s *Server) handleGetTree(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := errors.ValidateKey(key); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.trees.Get(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type layoutRequest struct {
	Tree      *tree.Node      `json:"tree"`
	MaxDepth  *int            `json:"max_depth"`
	Collapsed []tree.Identity `json:"collapsed"`
}

// handleLayout lays out a posted tree without creating a session.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Tree == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidTree, "tree is required"))
		return
	}

	opts := s.pipelineOptions(maxDepthOr(req.MaxDepth), req.Collapsed)
	opts.Formats = []string{pipeline.FormatJSON}
	res, err := s.runner.Execute(r.Context(), req.Tree, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(res.Artifacts[pipeline.FormatJSON])
}

// pipelineOptions returns options carrying the server's geometry and text
// settings.
func (s *Server) pipelineOptions(maxDepth int, collapsed []tree.Identity) pipeline.Options {
	return pipeline.Options{
		MaxDepth:  maxDepth,
		Collapsed: collapsed,
		Geometry:  s.cfg.Layout,
		Text:      s.cfg.Text,
		Logger:    s.logger,
	}
}

// maxDepthOr returns *d, or unlimited when d is nil.
func maxDepthOr(d *int) int {
	if d == nil {
		return layout.Unlimited
	}
	return *d
}
