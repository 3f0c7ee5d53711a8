package memory

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aretw0/graphnav/internal/logging"
	"github.com/aretw0/graphnav/pkg/domain"
	"github.com/aretw0/graphnav/pkg/params"
)

// ErrCycle is returned when a link would make a node depend on itself.
var ErrCycle = errors.New("link would create a cycle")

type nodeID struct {
	index, generation int
}

func (id nodeID) String() string {
	return strconv.Itoa(id.index) + "." + strconv.Itoa(id.generation)
}

func parseNodeID(s string) (nodeID, bool) {
	idx, gen, ok := strings.Cut(s, ".")
	if !ok {
		return nodeID{}, false
	}
	i, err1 := strconv.Atoi(idx)
	g, err2 := strconv.Atoi(gen)
	if err1 != nil || err2 != nil || i < 0 || g < 0 {
		return nodeID{}, false
	}
	return nodeID{index: i, generation: g}, true
}

// pathRef is the engine-side value behind domain.GraphPath.Ref: the chain of
// subgraph nodes from the root down to the context.
type pathRef []nodeID

type node struct {
	id       nodeID
	proc     *processor
	params   map[string]string
	slots    []*nodeID
	inputs   []nodeID
	subgraph *graph
}

func (n *node) handle() domain.NodeHandle {
	return domain.NodeHandle{ID: n.id.String(), Type: n.proc.Type.Name}
}

type graph struct {
	nodes       []*node
	generations []int
	free        []int
	output      *nodeID
}

func newGraph() *graph {
	return &graph{}
}

func (g *graph) add(p *processor) *node {
	var id nodeID
	if n := len(g.free); n > 0 {
		idx := g.free[n-1]
		g.free = g.free[:n-1]
		id = nodeID{index: idx, generation: g.generations[idx]}
	} else {
		id = nodeID{index: len(g.nodes)}
		g.nodes = append(g.nodes, nil)
		g.generations = append(g.generations, 0)
	}

	n := &node{id: id, proc: p, params: make(map[string]string)}
	for _, d := range p.Type.Parameters {
		n.params[d.Name] = p.Defaults[d.Name]
	}
	if p.Type.Input.Kind == domain.InputSlotted {
		n.slots = make([]*nodeID, p.Type.Input.Slots)
	}
	if p.Subgraph {
		n.subgraph = newGraph()
	}
	g.nodes[id.index] = n
	return n
}

func (g *graph) lookup(id nodeID) (*node, bool) {
	if id.index < 0 || id.index >= len(g.nodes) {
		return nil, false
	}
	n := g.nodes[id.index]
	if n == nil || n.id.generation != id.generation {
		return nil, false
	}
	return n, true
}

func (g *graph) get(h domain.NodeHandle) (*node, error) {
	id, ok := parseNodeID(h.ID)
	if !ok {
		return nil, fmt.Errorf("%w: malformed handle %q", domain.ErrInvalidReference, h.ID)
	}
	n, ok := g.lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not in this graph", domain.ErrInvalidReference, h)
	}
	return n, nil
}

func (g *graph) remove(n *node) {
	for _, other := range g.nodes {
		if other == nil {
			continue
		}
		for i, s := range other.slots {
			if s != nil && *s == n.id {
				other.slots[i] = nil
			}
		}
		kept := other.inputs[:0]
		for _, in := range other.inputs {
			if in != n.id {
				kept = append(kept, in)
			}
		}
		other.inputs = kept
	}
	if g.output != nil && *g.output == n.id {
		g.output = nil
	}
	g.nodes[n.id.index] = nil
	g.generations[n.id.index]++
	g.free = append(g.free, n.id.index)
}

// dependsOn reports whether n transitively takes target as an input.
func (g *graph) dependsOn(n *node, target nodeID) bool {
	seen := make(map[nodeID]bool)
	var walk func(*node) bool
	walk = func(cur *node) bool {
		if cur.id == target {
			return true
		}
		if seen[cur.id] {
			return false
		}
		seen[cur.id] = true
		for _, in := range cur.upstream() {
			if up, ok := g.lookup(in); ok && walk(up) {
				return true
			}
		}
		return false
	}
	return walk(n)
}

func (n *node) upstream() []nodeID {
	if n.slots == nil {
		return n.inputs
	}
	var out []nodeID
	for _, s := range n.slots {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}

func (n *node) satisfied() bool {
	if n.proc.Type.Input.Kind == domain.InputSlotted {
		for _, s := range n.slots {
			if s == nil {
				return false
			}
		}
		return true
	}
	return len(n.inputs) > 0 || n.proc.Type.Input.ZeroAllowed
}

// Engine is an in-process implementation of ports.Engine. Handles are
// generational: removing a node invalidates its handle even if the slot is
// reused. Not safe for concurrent use.
type Engine struct {
	root    *graph
	catalog []domain.NodeType
	procs   map[string]*processor
	logger  *slog.Logger
}

// EngineOption configures the Engine.
type EngineOption func(*Engine) error

// WithCatalog restricts and orders the catalog to the named built-in types.
func WithCatalog(names ...string) EngineOption {
	return func(e *Engine) error {
		catalog := make([]domain.NodeType, 0, len(names))
		for _, name := range names {
			p, ok := e.procs[name]
			if !ok {
				return fmt.Errorf("%w: %q", domain.ErrUnknownNodeType, name)
			}
			catalog = append(catalog, p.Type)
		}
		e.catalog = catalog
		return nil
	}
}

// WithEngineLogger configures a logger for engine diagnostics.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// NewEngine creates an engine with an empty root graph and the built-in catalog.
func NewEngine(opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		root:   newGraph(),
		procs:  make(map[string]*processor),
		logger: logging.NewNop(),
	}
	for _, p := range builtins() {
		e.procs[p.Type.Name] = p
		e.catalog = append(e.catalog, p.Type)
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Engine) resolve(path domain.GraphPath) (*graph, error) {
	ref, ok := path.Ref.(pathRef)
	if !ok {
		return nil, fmt.Errorf("%w: foreign graph path %T", domain.ErrInvalidReference, path.Ref)
	}
	g := e.root
	for _, id := range ref {
		n, ok := g.lookup(id)
		if !ok || n.subgraph == nil {
			return nil, fmt.Errorf("%w: graph path through %s no longer exists", domain.ErrInvalidReference, id)
		}
		g = n.subgraph
	}
	return g, nil
}

// RootPath returns the path of the top-level graph.
func (e *Engine) RootPath() domain.GraphPath {
	return domain.GraphPath{Ref: pathRef{}}
}

// GraphPath returns the path of the graph owned by subgraph node h.
func (e *Engine) GraphPath(parent domain.GraphPath, h domain.NodeHandle) (domain.GraphPath, error) {
	g, err := e.resolve(parent)
	if err != nil {
		return domain.GraphPath{}, err
	}
	n, err := g.get(h)
	if err != nil {
		return domain.GraphPath{}, err
	}
	if n.subgraph == nil {
		return domain.GraphPath{}, fmt.Errorf("%w: %s", domain.ErrNotSubgraph, h)
	}
	ref := parent.Ref.(pathRef)
	child := make(pathRef, len(ref), len(ref)+1)
	copy(child, ref)
	return domain.GraphPath{Ref: append(child, n.id)}, nil
}

// HashGraphPath returns "r" followed by "/<index>.<generation>" per level.
func (e *Engine) HashGraphPath(path domain.GraphPath) (domain.ContextKey, error) {
	if _, err := e.resolve(path); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("r")
	for _, id := range path.Ref.(pathRef) {
		b.WriteString("/")
		b.WriteString(id.String())
	}
	return domain.ContextKey(b.String()), nil
}

// NodeTypes lists the processor types that can be added.
func (e *Engine) NodeTypes() []domain.NodeType {
	return append([]domain.NodeType(nil), e.catalog...)
}

// AddProcessorNode adds a processor of typeName to the graph at path.
func (e *Engine) AddProcessorNode(path domain.GraphPath, typeName string) (domain.NodeHandle, error) {
	g, err := e.resolve(path)
	if err != nil {
		return domain.NodeHandle{}, err
	}
	p, ok := e.procs[typeName]
	if !ok {
		return domain.NodeHandle{}, fmt.Errorf("%w: %q", domain.ErrUnknownNodeType, typeName)
	}
	n := g.add(p)
	e.logger.Debug("node added", "node", n.id.String(), "type", typeName)
	return n.handle(), nil
}

// RemoveNode deletes a node along with its links.
func (e *Engine) RemoveNode(path domain.GraphPath, h domain.NodeHandle) error {
	g, n, err := e.node(path, h)
	if err != nil {
		return err
	}
	g.remove(n)
	e.logger.Debug("node removed", "node", h.ID)
	return nil
}

// IsSubgraphProcessor reports whether h owns a nested graph.
func (e *Engine) IsSubgraphProcessor(path domain.GraphPath, h domain.NodeHandle) (bool, error) {
	_, n, err := e.node(path, h)
	if err != nil {
		return false, err
	}
	return n.subgraph != nil, nil
}

// ConnectNodes adds from to the unordered inputs of to.
func (e *Engine) ConnectNodes(path domain.GraphPath, from, to domain.NodeHandle) error {
	g, src, dst, err := e.pair(path, from, to)
	if err != nil {
		return err
	}
	if dst.proc.Type.Input.Kind != domain.InputMultiple {
		return fmt.Errorf("%w: %s takes slotted inputs", domain.ErrIncompatiblePort, to)
	}
	for _, in := range dst.inputs {
		if in == src.id {
			return nil
		}
	}
	if g.dependsOn(src, dst.id) {
		return fmt.Errorf("%w: %s -> %s", ErrCycle, from, to)
	}
	dst.inputs = append(dst.inputs, src.id)
	return nil
}

// ConnectNodesSlotted links from into input slot of to.
func (e *Engine) ConnectNodesSlotted(path domain.GraphPath, from, to domain.NodeHandle, slot int) error {
	g, src, dst, err := e.pair(path, from, to)
	if err != nil {
		return err
	}
	if dst.proc.Type.Input.Kind != domain.InputSlotted {
		return fmt.Errorf("%w: %s takes unordered inputs", domain.ErrIncompatiblePort, to)
	}
	if slot < 0 || slot >= len(dst.slots) {
		return fmt.Errorf("%w: %s has no slot %d", domain.ErrIncompatiblePort, to, slot)
	}
	if g.dependsOn(src, dst.id) {
		return fmt.Errorf("%w: %s -> %s", ErrCycle, from, to)
	}
	id := src.id
	dst.slots[slot] = &id
	return nil
}

// DisconnectNodes removes a link; a missing link is not an error.
func (e *Engine) DisconnectNodes(path domain.GraphPath, from, to domain.NodeHandle) error {
	_, src, dst, err := e.pair(path, from, to)
	if err != nil {
		return err
	}
	kept := dst.inputs[:0]
	for _, in := range dst.inputs {
		if in != src.id {
			kept = append(kept, in)
		}
	}
	dst.inputs = kept
	return nil
}

// DisconnectNodesSlotted clears slot if it holds from.
func (e *Engine) DisconnectNodesSlotted(path domain.GraphPath, from, to domain.NodeHandle, slot int) error {
	_, src, dst, err := e.pair(path, from, to)
	if err != nil {
		return err
	}
	if slot < 0 || slot >= len(dst.slots) {
		return fmt.Errorf("%w: %s has no slot %d", domain.ErrIncompatiblePort, to, slot)
	}
	if s := dst.slots[slot]; s != nil && *s == src.id {
		dst.slots[slot] = nil
	}
	return nil
}

// SetOutputNode selects the node whose result the graph yields.
func (e *Engine) SetOutputNode(path domain.GraphPath, h domain.NodeHandle) error {
	g, n, err := e.node(path, h)
	if err != nil {
		return err
	}
	id := n.id
	g.output = &id
	return nil
}

// RunProcessors evaluates the graph at path from its output node.
func (e *Engine) RunProcessors(path domain.GraphPath) (*domain.World, error) {
	g, err := e.resolve(path)
	if err != nil {
		return nil, err
	}
	return e.evaluateGraph(g)
}

func (e *Engine) evaluateGraph(g *graph) (*domain.World, error) {
	if g.output == nil {
		return nil, domain.ErrNoResult
	}
	out, ok := g.lookup(*g.output)
	if !ok {
		return nil, domain.ErrNoResult
	}
	return e.evaluate(g, out)
}

func (e *Engine) evaluate(g *graph, n *node) (*domain.World, error) {
	if !n.satisfied() {
		return nil, domain.ErrNoResult
	}
	var inputs []*domain.World
	for _, id := range n.upstream() {
		up, ok := g.lookup(id)
		if !ok {
			return nil, domain.ErrNoResult
		}
		w, err := e.evaluate(g, up)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, w)
	}
	if n.subgraph != nil {
		return e.evaluateGraph(n.subgraph)
	}
	w, err := n.proc.Eval(args(n.params), inputs)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", n.proc.Type.Name, n.id, err)
	}
	return w, nil
}

// NodeParameter returns the current value of a named parameter.
func (e *Engine) NodeParameter(path domain.GraphPath, h domain.NodeHandle, name string) (string, error) {
	_, n, err := e.node(path, h)
	if err != nil {
		return "", err
	}
	if _, ok := n.proc.Type.Parameter(name); !ok {
		return "", fmt.Errorf("%w: %s has no %q", domain.ErrUnknownParameter, n.proc.Type.Name, name)
	}
	return n.params[name], nil
}

// SetNodeParameter validates and stores a parameter value.
func (e *Engine) SetNodeParameter(path domain.GraphPath, h domain.NodeHandle, name, value string) error {
	_, n, err := e.node(path, h)
	if err != nil {
		return err
	}
	desc, ok := n.proc.Type.Parameter(name)
	if !ok {
		return fmt.Errorf("%w: %s has no %q", domain.ErrUnknownParameter, n.proc.Type.Name, name)
	}
	if err := params.Validate(desc.Kind, value); err != nil {
		return err
	}
	if err := n.proc.check(name, value); err != nil {
		return err
	}
	n.params[name] = value
	return nil
}

// IsInputSatisfied reports whether every input slot of h is connected.
func (e *Engine) IsInputSatisfied(path domain.GraphPath, h domain.NodeHandle) (bool, error) {
	_, n, err := e.node(path, h)
	if err != nil {
		return false, err
	}
	return n.satisfied(), nil
}

func (e *Engine) node(path domain.GraphPath, h domain.NodeHandle) (*graph, *node, error) {
	g, err := e.resolve(path)
	if err != nil {
		return nil, nil, err
	}
	n, err := g.get(h)
	if err != nil {
		return nil, nil, err
	}
	return g, n, nil
}

func (e *Engine) pair(path domain.GraphPath, from, to domain.NodeHandle) (*graph, *node, *node, error) {
	g, src, err := e.node(path, from)
	if err != nil {
		return nil, nil, nil, err
	}
	dst, err := g.get(to)
	if err != nil {
		return nil, nil, nil, err
	}
	return g, src, dst, nil
}
