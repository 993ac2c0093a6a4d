package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/thoughttree/pkg/errors"
	"github.com/matzehuels/thoughttree/pkg/observability"
	"github.com/matzehuels/thoughttree/pkg/pipeline"
	"github.com/matzehuels/thoughttree/pkg/render"
	"github.com/matzehuels/thoughttree/pkg/session"
	"github.com/matzehuels/thoughttree/pkg/tree"
	"github.com/matzehuels/thoughttree/pkg/view"
)

// maxEventsPerBatch bounds one events request.
const maxEventsPerBatch = 1024

type createSessionRequest struct {
	TreeKey   string          `json:"tree_key"`
	MaxDepth  *int            `json:"max_depth"`
	Collapsed []tree.Identity `json:"collapsed"`
}

type updateSessionRequest struct {
	MaxDepth *int `json:"max_depth"`
}

type toggleRequest struct {
	ID tree.Identity `json:"id"`
}

type eventsRequest struct {
	Events []view.Event `json:"events"`
}

type sessionResponse struct {
	Session *session.Session `json:"session"`
	Changed bool             `json:"changed"`
	Scene   render.Scene     `json:"scene"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := errors.ValidateKey(req.TreeKey); err != nil {
		s.writeError(w, r, err)
		return
	}
	maxDepth := maxDepthOr(req.MaxDepth)
	if err := errors.ValidateMaxDepth(maxDepth); err != nil {
		s.writeError(w, r, err)
		return
	}

	rec, err := s.trees.Get(r.Context(), req.TreeKey)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ctrl := s.newController(rec.Tree, maxDepth, req.Collapsed...)
	sess := session.New(req.TreeKey, ctrl.State(), s.cfg.Server.SessionTTL.Duration)
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}

	ls := s.live.acquire(sess.ID)
	ls.ctrl, ls.treeKey, ls.updated = ctrl, sess.TreeKey, sess.UpdatedAt
	s.live.release(ls)

	s.logger.Info("opened session", "id", sess.ID, "tree", sess.TreeKey)
	writeJSON(w, http.StatusCreated, s.sessionResponse(sess, ctrl, false))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(ctx context.Context, sess *session.Session, ctrl *view.Controller) (bool, error) {
		return false, nil
	})
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var req updateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withSession(w, r, func(ctx context.Context, sess *session.Session, ctrl *view.Controller) (bool, error) {
		if req.MaxDepth == nil {
			return false, nil
		}
		if err := errors.ValidateMaxDepth(*req.MaxDepth); err != nil {
			return false, err
		}
		before := ctrl.MaxDepth()
		ctrl.SetMaxDepth(*req.MaxDepth)
		return ctrl.MaxDepth() != before, nil
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateKey(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	ls := s.live.acquire(id)
	err := s.sessions.Delete(r.Context(), id)
	s.live.forget(id, ls)
	s.live.release(ls)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.ID == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "id is required"))
		return
	}
	s.withSession(w, r, func(ctx context.Context, sess *session.Session, ctrl *view.Controller) (bool, error) {
		changed := ctrl.Click(req.ID)
		observability.HTTP().OnSessionEvent(ctx, sess.ID, "toggle", changed)
		return changed, nil
	})
}

func (s *Server) handleExpandAll(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(ctx context.Context, sess *session.Session, ctrl *view.Controller) (bool, error) {
		changed := ctrl.Collapsed().Len() > 0
		ctrl.ExpandAll()
		observability.HTTP().OnSessionEvent(ctx, sess.ID, "expand", changed)
		return changed, nil
	})
}

// handleEvents applies a batch of raw pointer and wheel events in order.
// changed reports whether any event altered the layout.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	var req eventsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Events) > maxEventsPerBatch {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "too many events: %d (max %d)", len(req.Events), maxEventsPerBatch))
		return
	}
	s.withSession(w, r, func(ctx context.Context, sess *session.Session, ctrl *view.Controller) (bool, error) {
		changed := false
		hooks := observability.HTTP()
		for _, ev := range req.Events {
			c := ctrl.Handle(ev)
			hooks.OnSessionEvent(ctx, sess.ID, string(ev.Kind), c)
			changed = changed || c
		}
		return changed, nil
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	opts := pipeline.Options{
		VizType:    q.Get("viz"),
		Formats:    []string{format},
		Responsive: q.Get("responsive") == "true",
		Detailed:   q.Get("detailed") == "true",
	}
	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "scale"))
			return
		}
		opts.Scale = scale
	}

	var artifact []byte
	err := s.applySession(r, func(ctx context.Context, sess *session.Session, ctrl *view.Controller) (bool, error) {
		state := ctrl.State()
		o := s.pipelineOptions(state.MaxDepth, state.Collapsed)
		o.Transform = state.Viewport
		o.VizType, o.Formats, o.Scale = opts.VizType, opts.Formats, opts.Scale
		o.Responsive, o.Detailed = opts.Responsive, opts.Detailed
		res, err := s.runner.Execute(ctx, ctrl.Tree(), o)
		if err != nil {
			return false, err
		}
		artifact = res.Artifacts[format]
		return false, nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	_, _ = w.Write(artifact)
}

// sessionOp mutates a session's controller and reports whether the layout
// changed.
type sessionOp func(ctx context.Context, sess *session.Session, ctrl *view.Controller) (bool, error)

// withSession applies op and writes the session response.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, op sessionOp) {
	var resp sessionResponse
	err := s.applySession(r, func(ctx context.Context, sess *session.Session, ctrl *view.Controller) (bool, error) {
		changed, err := op(ctx, sess, ctrl)
		if err != nil {
			return false, err
		}
		resp = s.sessionResponse(sess, ctrl, changed)
		return changed, nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// applySession runs op under the session lock and persists the state when
// it changed.
func (s *Server) applySession(r *http.Request, op sessionOp) error {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateKey(id); err != nil {
		return err
	}
	ctx := r.Context()

	ls := s.live.acquire(id)
	defer s.live.release(ls)

	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			s.live.forget(id, ls)
		}
		return err
	}
	if err := s.sync(ctx, ls, sess); err != nil {
		return err
	}

	before := ls.ctrl.State()
	changed, err := op(ctx, sess, ls.ctrl)
	if err != nil {
		return err
	}

	after := ls.ctrl.State()
	if !changed && sameState(before, after) {
		return nil
	}
	sess.Update(after, s.cfg.Server.SessionTTL.Duration)
	if err := s.sessions.Set(ctx, sess); err != nil {
		return err
	}
	ls.updated = sess.UpdatedAt
	return nil
}

// sync makes ls reflect the stored session, rebuilding the controller when
// it is missing or the store holds a newer write.
func (s *Server) sync(ctx context.Context, ls *liveSession, sess *session.Session) error {
	if ls.ctrl != nil && ls.treeKey == sess.TreeKey {
		if ls.updated.Equal(sess.UpdatedAt) {
			return nil
		}
		ls.ctrl.Restore(sess.State)
		ls.updated = sess.UpdatedAt
		return nil
	}

	rec, err := s.trees.Get(ctx, sess.TreeKey)
	if err != nil {
		return err
	}
	ctrl := s.newController(rec.Tree, sess.State.MaxDepth)
	ctrl.Restore(sess.State)
	ls.ctrl, ls.treeKey, ls.updated = ctrl, sess.TreeKey, sess.UpdatedAt
	return nil
}

func (s *Server) newController(root *tree.Node, maxDepth int, collapsed ...tree.Identity) *view.Controller {
	return view.NewController(root,
		view.WithMaxDepth(maxDepth),
		view.WithGeometry(s.cfg.Layout),
		view.WithViewport(s.cfg.Viewport),
		view.WithCollapsed(collapsed...),
	)
}

func (s *Server) sessionResponse(sess *session.Session, ctrl *view.Controller, changed bool) sessionResponse {
	return sessionResponse{
		Session: sess,
		Changed: changed,
		Scene:   render.FromController(ctrl, render.WithText(s.cfg.Text)),
	}
}

func sameState(a, b view.State) bool {
	if a.MaxDepth != b.MaxDepth || a.Viewport != b.Viewport || len(a.Collapsed) != len(b.Collapsed) {
		return false
	}
	for i := range a.Collapsed {
		if a.Collapsed[i] != b.Collapsed[i] {
			return false
		}
	}
	return true
}
