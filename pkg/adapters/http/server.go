// Package http exposes an Editor over HTTP. Every request that touches the
// editor is serialized through one mutex, so the single-threaded core never
// sees concurrent calls.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/graphnav"
	"github.com/aretw0/graphnav/internal/logging"
	"github.com/aretw0/graphnav/internal/presentation/graph"
	"github.com/aretw0/graphnav/pkg/adapters/memory"
	"github.com/aretw0/graphnav/pkg/domain"
	"github.com/aretw0/graphnav/pkg/render"
	"github.com/aretw0/graphnav/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves one Editor.
type Server struct {
	editor   *graphnav.Editor
	mu       sync.Mutex
	streams  *StreamManager
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	cancel   func()
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures request and error logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics serves g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewServer creates a Server and starts forwarding state changes to /events.
func NewServer(ed *graphnav.Editor, opts ...Option) *Server {
	s := &Server{
		editor:  ed,
		streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cancel = ed.State().Observe(s.publishChange)
	return s
}

// Close stops forwarding state changes.
func (s *Server) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/events", s.SubscribeEvents)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(s.serialize)

		r.Get("/state", s.GetState)
		r.Get("/types", s.GetTypes)

		r.Post("/nodes", s.CreateNode)
		r.Delete("/nodes/{id}", s.DeleteNode)
		r.Get("/nodes/{id}/params", s.GetParams)
		r.Patch("/nodes/{id}/params", s.PatchParams)

		r.Post("/links", s.CreateLink)
		r.Delete("/links", s.DeleteLink)

		r.Put("/output", s.PutOutput)
		r.Delete("/output", s.DeleteOutput)
		r.Put("/selection", s.PutSelection)

		r.Post("/navigate/descend", s.Descend)
		r.Post("/navigate/up", s.Up)
		r.Post("/navigate/crumbs/{index}", s.SelectCrumb)

		r.Post("/run", s.Run)
		r.Post("/save", s.Save)
		r.Post("/revert", s.Revert)

		r.Get("/render", s.GetRender)
		r.Get("/render.svg", s.GetRenderSVG)
		r.Get("/diagram.mmd", s.GetMermaid)
	})

	return enableCORS(r)
}

// NewHandler is a shorthand for NewServer(ed, opts...).Handler().
func NewHandler(ed *graphnav.Editor, opts ...Option) http.Handler {
	return NewServer(ed, opts...).Handler()
}

func (s *Server) serialize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusFor maps command errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrInvalidReference), errors.Is(err, domain.ErrContextNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownNavigationTarget),
		errors.Is(err, domain.ErrNoCheckpoint),
		errors.Is(err, domain.ErrStaleEdit),
		errors.Is(err, memory.ErrCycle):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnknownNodeType),
		errors.Is(err, domain.ErrIncompatiblePort),
		errors.Is(err, domain.ErrUnknownParameter),
		errors.Is(err, domain.ErrInvalidValue),
		errors.Is(err, domain.ErrNotSubgraph):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	code := statusFor(err)
	if code >= 500 {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Debug(op+" rejected", "err", err, "status", code)
	}
	http.Error(w, fmt.Sprintf("%s: %v", op, err), code)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	return true
}

// node resolves an ID of the live graph; an empty ID is the zero handle.
func (s *Server) node(w http.ResponseWriter, id string) (domain.NodeHandle, bool) {
	if id == "" {
		return domain.NodeHandle{}, true
	}
	h, ok := s.editor.Node(id)
	if !ok {
		http.Error(w, fmt.Sprintf("node %q not found in this graph", id), http.StatusNotFound)
		return domain.NodeHandle{}, false
	}
	return h, true
}

func (s *Server) send(w http.ResponseWriter, r *http.Request, op string, msg domain.Message) {
	if err := s.editor.Send(r.Context(), msg); err != nil {
		s.fail(w, op, err)
		return
	}
	s.writeState(w, r, http.StatusOK)
}

func (s *Server) writeState(w http.ResponseWriter, r *http.Request, code int) {
	st, err := s.editor.Status(r.Context())
	if err != nil {
		s.fail(w, "state", err)
		return
	}
	s.writeJSON(w, code, st)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "graphnav-http",
		"version": strings.TrimSpace(graphnav.Version),
	})
}

// GetState handles GET /state.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	s.writeState(w, r, http.StatusOK)
}

// GetTypes handles GET /types.
func (s *Server) GetTypes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.editor.Catalog())
}

type createNodeRequest struct {
	Type string `json:"type"`
}

// CreateNode handles POST /nodes.
func (s *Server) CreateNode(w http.ResponseWriter, r *http.Request) {
	var body createNodeRequest
	if !s.decode(w, r, &body) {
		return
	}
	var created domain.NodeHandle
	tok := s.editor.Bus().Subscribe(domain.KindNodeCreated, func(_ context.Context, msg domain.Message) error {
		created = msg.(domain.NodeCreated).Node
		return nil
	})
	defer s.editor.Bus().Unsubscribe(tok)

	if err := s.editor.Send(r.Context(), domain.CreateNode{TypeName: body.Type}); err != nil {
		s.fail(w, "create node", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

// DeleteNode handles DELETE /nodes/{id}.
func (s *Server) DeleteNode(w http.ResponseWriter, r *http.Request) {
	h, ok := s.node(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	s.send(w, r, "delete node", domain.DeleteNode{Node: h})
}

type linkRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Slot *int   `json:"slot,omitempty"`
}

func (s *Server) link(w http.ResponseWriter, r *http.Request) (from, to domain.NodeHandle, slot int, slotted, ok bool) {
	var body linkRequest
	if !s.decode(w, r, &body) {
		return
	}
	if from, ok = s.node(w, body.From); !ok {
		return
	}
	if to, ok = s.node(w, body.To); !ok {
		return
	}
	if body.Slot != nil {
		slot, slotted = *body.Slot, true
	}
	return from, to, slot, slotted, true
}

// CreateLink handles POST /links.
func (s *Server) CreateLink(w http.ResponseWriter, r *http.Request) {
	from, to, slot, slotted, ok := s.link(w, r)
	if !ok {
		return
	}
	s.send(w, r, "create link", domain.CreateLink{From: from, To: to, Slot: slot, Slotted: slotted})
}

// DeleteLink handles DELETE /links.
func (s *Server) DeleteLink(w http.ResponseWriter, r *http.Request) {
	from, to, slot, slotted, ok := s.link(w, r)
	if !ok {
		return
	}
	s.send(w, r, "delete link", domain.DeleteLink{From: from, To: to, Slot: slot, Slotted: slotted})
}

type nodeRequest struct {
	Node string `json:"node"`
}

func (s *Server) nodeBody(w http.ResponseWriter, r *http.Request) (domain.NodeHandle, bool) {
	var body nodeRequest
	if !s.decode(w, r, &body) {
		return domain.NodeHandle{}, false
	}
	return s.node(w, body.Node)
}

// PutOutput handles PUT /output. An empty node clears the output.
func (s *Server) PutOutput(w http.ResponseWriter, r *http.Request) {
	h, ok := s.nodeBody(w, r)
	if !ok {
		return
	}
	s.send(w, r, "set output", domain.SetOutputNode{Node: h})
}

// DeleteOutput handles DELETE /output.
func (s *Server) DeleteOutput(w http.ResponseWriter, r *http.Request) {
	s.send(w, r, "clear output", domain.SetOutputNode{})
}

// PutSelection handles PUT /selection.
func (s *Server) PutSelection(w http.ResponseWriter, r *http.Request) {
	h, ok := s.nodeBody(w, r)
	if !ok {
		return
	}
	s.send(w, r, "select", domain.NodeSelected{Node: h})
}

// Descend handles POST /navigate/descend.
func (s *Server) Descend(w http.ResponseWriter, r *http.Request) {
	h, ok := s.nodeBody(w, r)
	if !ok {
		return
	}
	s.send(w, r, "descend", domain.SubgraphNodeSelected{Node: h})
}

// Up handles POST /navigate/up.
func (s *Server) Up(w http.ResponseWriter, r *http.Request) {
	s.send(w, r, "move up", domain.MoveLevelUp{})
}

// SelectCrumb handles POST /navigate/crumbs/{index}.
func (s *Server) SelectCrumb(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "crumb index must be an integer", http.StatusBadRequest)
		return
	}
	if i < 0 || i >= len(s.editor.Trail().Crumbs()) {
		http.Error(w, fmt.Sprintf("crumb %d not found", i), http.StatusNotFound)
		return
	}
	if err := s.editor.SelectCrumb(r.Context(), i); err != nil {
		s.fail(w, "select crumb", err)
		return
	}
	s.writeState(w, r, http.StatusOK)
}

// Run handles POST /run.
func (s *Server) Run(w http.ResponseWriter, r *http.Request) {
	s.send(w, r, "run", domain.RunProcessors{})
}

// Save handles POST /save.
func (s *Server) Save(w http.ResponseWriter, r *http.Request) {
	s.send(w, r, "save", domain.SaveAll{})
}

// Revert handles POST /revert.
func (s *Server) Revert(w http.ResponseWriter, r *http.Request) {
	if err := s.editor.Revert(r.Context()); err != nil {
		s.fail(w, "revert", err)
		return
	}
	s.writeState(w, r, http.StatusOK)
}

type paramView struct {
	Name  string           `json:"name"`
	Kind  domain.ParamKind `json:"kind"`
	Value string           `json:"value"`
}

// GetParams handles GET /nodes/{id}/params.
func (s *Server) GetParams(w http.ResponseWriter, r *http.Request) {
	h, ok := s.node(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	edit, err := s.editor.EditParameters(h)
	if err != nil {
		s.fail(w, "read params", err)
		return
	}
	views := []paramView{}
	for _, p := range edit.Parameters() {
		v, err := edit.Value(p.Name)
		if err != nil {
			s.fail(w, "read params", err)
			return
		}
		views = append(views, paramView{Name: p.Name, Kind: p.Kind, Value: v})
	}
	s.writeJSON(w, http.StatusOK, views)
}

// PatchParams handles PATCH /nodes/{id}/params with a name to value object.
// Values are checked first and committed together.
func (s *Server) PatchParams(w http.ResponseWriter, r *http.Request) {
	h, ok := s.node(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var body map[string]string
	if !s.decode(w, r, &body) {
		return
	}
	edit, err := s.editor.EditParameters(h)
	if err != nil {
		s.fail(w, "edit params", err)
		return
	}
	for name, value := range body {
		if err := edit.Set(name, value); err != nil {
			s.fail(w, "edit params", err)
			return
		}
	}
	if err := edit.Commit(r.Context()); err != nil {
		s.fail(w, "commit params", err)
		return
	}
	s.GetParams(w, r)
}

// GetRender handles GET /render.
func (s *Server) GetRender(w http.ResponseWriter, r *http.Request) {
	world := s.editor.Render()
	if world == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.writeJSON(w, http.StatusOK, world)
}

// GetRenderSVG handles GET /render.svg.
func (s *Server) GetRenderSVG(w http.ResponseWriter, r *http.Request) {
	doc, err := render.SVG(s.editor.Render())
	if err != nil {
		s.fail(w, "render", err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write([]byte(doc))
}

// GetMermaid handles GET /diagram.mmd.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	st := s.editor.State()
	d := s.editor.Diagram()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(d.Nodes(), d.Links(),
		&graph.Overlay{Selected: st.Selected(), Output: st.Output()})))
}

type changeEvent struct {
	Field   session.Field     `json:"field"`
	Context domain.ContextKey `json:"context,omitempty"`
}

// publishChange runs inside a serialized request, so reading the editor is safe.
func (s *Server) publishChange(f session.Field) {
	ev := changeEvent{Field: f}
	if key, err := s.editor.Current(); err == nil {
		ev.Context = key
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	s.streams.Broadcast(string(data))
}
