// Package mcp exposes an Editor as Model Context Protocol tools so an agent
// can build and navigate nested graphs the same way the HTTP API does.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/graphnav"
	"github.com/aretw0/graphnav/internal/logging"
	"github.com/aretw0/graphnav/internal/presentation/graph"
	"github.com/aretw0/graphnav/pkg/domain"
	"github.com/aretw0/graphnav/pkg/render"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Resource URIs.
const (
	DiagramURI = "graphnav://diagram"
	RenderURI  = "graphnav://render"
)

// ErrNodeNotFound is returned for an ID that is not in the live graph.
var ErrNodeNotFound = errors.New("node not found in this graph")

// NodeArgs names one node of the live graph by handle ID.
type NodeArgs struct {
	Node string `json:"node"`
}

// CreateNodeArgs are the arguments of create_node.
type CreateNodeArgs struct {
	Type string `json:"type"`
}

// LinkArgs are the arguments of connect and disconnect. A nil Slot links
// into an unordered input.
type LinkArgs struct {
	From string `json:"from"`
	To   string `json:"to"`
	Slot *int   `json:"slot,omitempty"`
}

// CrumbArgs are the arguments of select_crumb.
type CrumbArgs struct {
	Index int `json:"index"`
}

// ParamsArgs are the arguments of set_params.
type ParamsArgs struct {
	Node   string            `json:"node"`
	Values map[string]string `json:"values"`
}

// CreateNodeResponse carries the new handle along with the session view.
type CreateNodeResponse struct {
	Node   domain.NodeHandle `json:"node"`
	Status graphnav.Status   `json:"status"`
}

// Param is one parameter with its current engine value.
type Param struct {
	Name  string           `json:"name"`
	Kind  domain.ParamKind `json:"kind"`
	Value string           `json:"value"`
}

// ParamsResponse lists a node's parameters.
type ParamsResponse struct {
	Node   domain.NodeHandle `json:"node"`
	Params []Param           `json:"params"`
}

// Server wraps one Editor. Tool calls may arrive concurrently, so each one
// holds the editor for its whole duration.
type Server struct {
	editor    *graphnav.Editor
	mu        sync.Mutex
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures tool call logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server with every tool and resource registered.
func NewServer(ed *graphnav.Editor, opts ...Option) *Server {
	s := &Server{
		editor:    ed,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("graphnav-mcp", strings.TrimSpace(graphnav.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves on Stdin/Stdout until the input closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on addr using SSE until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "addr", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Show the live graph: context, breadcrumbs, nodes, links, selection and output."),
		mcp.WithOutputSchema[graphnav.Status](),
	), mcp.NewStructuredToolHandler(s.handleGetState))

	s.mcpServer.AddTool(mcp.NewTool("list_types",
		mcp.WithDescription("List the node types that can be created, in menu order."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := json.Marshal(s.editor.Catalog())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("create_node",
		mcp.WithDescription("Create a node of the given type in the live graph."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Node type name, see list_types")),
		mcp.WithOutputSchema[CreateNodeResponse](),
	), mcp.NewStructuredToolHandler(s.handleCreateNode))

	s.mcpServer.AddTool(mcp.NewTool("delete_node",
		mcp.WithDescription("Delete a node of the live graph."),
		mcp.WithString("node", mcp.Required(), mcp.Description("Node handle ID")),
		mcp.WithOutputSchema[graphnav.Status](),
	), mcp.NewStructuredToolHandler(s.handleDeleteNode))

	linkOpts := func(name, desc string) mcp.Tool {
		return mcp.NewTool(name,
			mcp.WithDescription(desc),
			mcp.WithString("from", mcp.Required(), mcp.Description("Source node ID")),
			mcp.WithString("to", mcp.Required(), mcp.Description("Target node ID")),
			mcp.WithNumber("slot", mcp.Description("Input slot of the target; omit for unordered inputs")),
			mcp.WithOutputSchema[graphnav.Status](),
		)
	}
	s.mcpServer.AddTool(linkOpts("connect", "Connect two nodes of the live graph."),
		mcp.NewStructuredToolHandler(s.handleConnect))
	s.mcpServer.AddTool(linkOpts("disconnect", "Remove a link between two nodes of the live graph."),
		mcp.NewStructuredToolHandler(s.handleDisconnect))

	s.mcpServer.AddTool(mcp.NewTool("set_output",
		mcp.WithDescription("Make a node the output of the live graph and evaluate it. An empty node clears the output."),
		mcp.WithString("node", mcp.Description("Node handle ID")),
		mcp.WithOutputSchema[graphnav.Status](),
	), mcp.NewStructuredToolHandler(s.handleSetOutput))

	s.mcpServer.AddTool(mcp.NewTool("select_node",
		mcp.WithDescription("Select a node. An empty node clears the selection."),
		mcp.WithString("node", mcp.Description("Node handle ID")),
		mcp.WithOutputSchema[graphnav.Status](),
	), mcp.NewStructuredToolHandler(s.handleSelect))

	s.mcpServer.AddTool(mcp.NewTool("descend",
		mcp.WithDescription("Enter the graph nested in a subgraph node."),
		mcp.WithString("node", mcp.Required(), mcp.Description("Subgraph node handle ID")),
		mcp.WithOutputSchema[graphnav.Status](),
	), mcp.NewStructuredToolHandler(s.handleDescend))

	s.mcpServer.AddTool(mcp.NewTool("move_up",
		mcp.WithDescription("Return to the top-level graph."),
		mcp.WithOutputSchema[graphnav.Status](),
	), mcp.NewStructuredToolHandler(s.handleMoveUp))

	s.mcpServer.AddTool(mcp.NewTool("select_crumb",
		mcp.WithDescription("Jump back to a breadcrumb, 0 being the top-level graph."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Breadcrumb index")),
		mcp.WithOutputSchema[graphnav.Status](),
	), mcp.NewStructuredToolHandler(s.handleSelectCrumb))

	s.mcpServer.AddTool(mcp.NewTool("run",
		mcp.WithDescription("Evaluate the output node of the live graph."),
		mcp.WithOutputSchema[graphnav.Status](),
	), mcp.NewStructuredToolHandler(s.handleRun))

	s.mcpServer.AddTool(mcp.NewTool("save",
		mcp.WithDescription("Checkpoint the live diagram."),
		mcp.WithOutputSchema[graphnav.Status](),
	), mcp.NewStructuredToolHandler(s.handleSave))

	s.mcpServer.AddTool(mcp.NewTool("revert",
		mcp.WithDescription("Restore the diagram saved by the last checkpoint."),
		mcp.WithOutputSchema[graphnav.Status](),
	), mcp.NewStructuredToolHandler(s.handleRevert))

	s.mcpServer.AddTool(mcp.NewTool("get_params",
		mcp.WithDescription("Read a node's parameters as text."),
		mcp.WithString("node", mcp.Required(), mcp.Description("Node handle ID")),
		mcp.WithOutputSchema[ParamsResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetParams))

	s.mcpServer.AddTool(mcp.NewTool("set_params",
		mcp.WithDescription("Write several parameters of a node at once, then re-evaluate."),
		mcp.WithString("node", mcp.Required(), mcp.Description("Node handle ID")),
		mcp.WithObject("values", mcp.Required(), mcp.Description("Parameter name to textual value")),
		mcp.WithOutputSchema[ParamsResponse](),
	), mcp.NewStructuredToolHandler(s.handleSetParams))
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(DiagramURI, "Live diagram",
		mcp.WithResourceDescription("The live graph as a Mermaid diagram"),
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: DiagramURI, MIMEType: "text/plain", Text: s.Mermaid()},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(RenderURI, "Rendered output",
		mcp.WithResourceDescription("The last evaluated output as SVG"),
		mcp.WithMIMEType("image/svg+xml"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		doc, err := s.SVG()
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: RenderURI, MIMEType: "image/svg+xml", Text: doc},
		}, nil
	})
}

// Mermaid draws the live diagram.
func (s *Server) Mermaid() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.editor.State()
	d := s.editor.Diagram()
	return graph.GenerateMermaid(d.Nodes(), d.Links(), &graph.Overlay{Selected: st.Selected(), Output: st.Output()})
}

// SVG draws the last evaluated output.
func (s *Server) SVG() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return render.SVG(s.editor.Render())
}

// node resolves an ID of the live graph; an empty ID is the zero handle.
func (s *Server) node(id string) (domain.NodeHandle, error) {
	if id == "" {
		return domain.NodeHandle{}, nil
	}
	h, ok := s.editor.Node(id)
	if !ok {
		return domain.NodeHandle{}, fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	return h, nil
}

func (s *Server) required(id string) (domain.NodeHandle, error) {
	if id == "" {
		return domain.NodeHandle{}, errors.New("node is required")
	}
	return s.node(id)
}

// send publishes msg and reports the resulting session view.
func (s *Server) send(ctx context.Context, op string, msg domain.Message) (graphnav.Status, error) {
	if err := s.editor.Send(ctx, msg); err != nil {
		s.logger.Warn("MCP tool failed", "tool", op, "err", err)
		return graphnav.Status{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.editor.Status(ctx)
}

func (s *Server) handleGetState(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (graphnav.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Status(ctx)
}

func (s *Server) handleCreateNode(ctx context.Context, _ mcp.CallToolRequest, args CreateNodeArgs) (CreateNodeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var created domain.NodeHandle
	tok := s.editor.Bus().Subscribe(domain.KindNodeCreated, func(_ context.Context, msg domain.Message) error {
		created = msg.(domain.NodeCreated).Node
		return nil
	})
	defer s.editor.Bus().Unsubscribe(tok)

	st, err := s.send(ctx, "create node", domain.CreateNode{TypeName: args.Type})
	if err != nil {
		return CreateNodeResponse{}, err
	}
	return CreateNodeResponse{Node: created, Status: st}, nil
}

func (s *Server) handleDeleteNode(ctx context.Context, _ mcp.CallToolRequest, args NodeArgs) (graphnav.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, err := s.required(args.Node)
	if err != nil {
		return graphnav.Status{}, err
	}
	return s.send(ctx, "delete node", domain.DeleteNode{Node: h})
}

func (s *Server) link(args LinkArgs) (from, to domain.NodeHandle, slot int, slotted bool, err error) {
	if from, err = s.required(args.From); err != nil {
		return
	}
	if to, err = s.required(args.To); err != nil {
		return
	}
	if args.Slot != nil {
		slot, slotted = *args.Slot, true
	}
	return from, to, slot, slotted, nil
}

func (s *Server) handleConnect(ctx context.Context, _ mcp.CallToolRequest, args LinkArgs) (graphnav.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	from, to, slot, slotted, err := s.link(args)
	if err != nil {
		return graphnav.Status{}, err
	}
	return s.send(ctx, "connect", domain.CreateLink{From: from, To: to, Slot: slot, Slotted: slotted})
}

func (s *Server) handleDisconnect(ctx context.Context, _ mcp.CallToolRequest, args LinkArgs) (graphnav.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	from, to, slot, slotted, err := s.link(args)
	if err != nil {
		return graphnav.Status{}, err
	}
	return s.send(ctx, "disconnect", domain.DeleteLink{From: from, To: to, Slot: slot, Slotted: slotted})
}

func (s *Server) handleSetOutput(ctx context.Context, _ mcp.CallToolRequest, args NodeArgs) (graphnav.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, err := s.node(args.Node)
	if err != nil {
		return graphnav.Status{}, err
	}
	return s.send(ctx, "set output", domain.SetOutputNode{Node: h})
}

func (s *Server) handleSelect(ctx context.Context, _ mcp.CallToolRequest, args NodeArgs) (graphnav.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, err := s.node(args.Node)
	if err != nil {
		return graphnav.Status{}, err
	}
	return s.send(ctx, "select", domain.NodeSelected{Node: h})
}

func (s *Server) handleDescend(ctx context.Context, _ mcp.CallToolRequest, args NodeArgs) (graphnav.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, err := s.required(args.Node)
	if err != nil {
		return graphnav.Status{}, err
	}
	return s.send(ctx, "descend", domain.SubgraphNodeSelected{Node: h})
}

func (s *Server) handleMoveUp(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (graphnav.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.send(ctx, "move up", domain.MoveLevelUp{})
}

func (s *Server) handleSelectCrumb(ctx context.Context, _ mcp.CallToolRequest, args CrumbArgs) (graphnav.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editor.SelectCrumb(ctx, args.Index); err != nil {
		return graphnav.Status{}, fmt.Errorf("select crumb: %w", err)
	}
	return s.editor.Status(ctx)
}

func (s *Server) handleRun(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (graphnav.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.send(ctx, "run", domain.RunProcessors{})
}

func (s *Server) handleSave(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (graphnav.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.send(ctx, "save", domain.SaveAll{})
}

func (s *Server) handleRevert(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (graphnav.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editor.Revert(ctx); err != nil {
		return graphnav.Status{}, fmt.Errorf("revert: %w", err)
	}
	return s.editor.Status(ctx)
}

func (s *Server) params(h domain.NodeHandle) (ParamsResponse, error) {
	edit, err := s.editor.EditParameters(h)
	if err != nil {
		return ParamsResponse{}, err
	}
	resp := ParamsResponse{Node: h, Params: []Param{}}
	for _, p := range edit.Parameters() {
		v, err := edit.Value(p.Name)
		if err != nil {
			return ParamsResponse{}, err
		}
		resp.Params = append(resp.Params, Param{Name: p.Name, Kind: p.Kind, Value: v})
	}
	return resp, nil
}

func (s *Server) handleGetParams(ctx context.Context, _ mcp.CallToolRequest, args NodeArgs) (ParamsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, err := s.required(args.Node)
	if err != nil {
		return ParamsResponse{}, err
	}
	return s.params(h)
}

// handleSetParams checks every value before any is written.
func (s *Server) handleSetParams(ctx context.Context, _ mcp.CallToolRequest, args ParamsArgs) (ParamsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, err := s.required(args.Node)
	if err != nil {
		return ParamsResponse{}, err
	}
	edit, err := s.editor.EditParameters(h)
	if err != nil {
		return ParamsResponse{}, err
	}
	for name, value := range args.Values {
		if err := edit.Set(name, value); err != nil {
			return ParamsResponse{}, fmt.Errorf("set %s: %w", name, err)
		}
	}
	if err := edit.Commit(ctx); err != nil {
		return ParamsResponse{}, fmt.Errorf("commit params: %w", err)
	}
	return s.params(h)
}
