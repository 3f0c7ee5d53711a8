package graphnav

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/graphnav/internal/presentation/graph"
	"github.com/aretw0/graphnav/pkg/bus"
	"github.com/aretw0/graphnav/pkg/domain"
	"github.com/aretw0/graphnav/pkg/editor"
	"github.com/aretw0/graphnav/pkg/render"
)

// ContentRenderer transforms help text before it is written, for example
// markdown to ANSI.
type ContentRenderer func(string) (string, error)

// ErrQuit is returned by a command that ends the shell.
var ErrQuit = errors.New("quit")

// Runner drives an Editor from line-oriented text commands. Command errors
// are printed and the loop goes on; only I/O failures stop it.
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer

	edit *editor.EditSession
}

// NewRunner creates a Runner on the given streams.
func NewRunner(in io.Reader, out io.Writer) *Runner {
	return &Runner{Input: in, Output: out}
}

const helpText = `# Commands

| command | effect |
|---|---|
| ` + "`types`" + ` | list node types |
| ` + "`ls`" + ` | list nodes and links of the live graph |
| ` + "`status`" + ` | show context, selection and output |
| ` + "`create <type>`" + ` | add a node |
| ` + "`rm <id>`" + ` | delete a node |
| ` + "`link <from> <to> [slot]`" + ` | connect two nodes |
| ` + "`unlink <from> <to> [slot]`" + ` | disconnect two nodes |
| ` + "`select <id>`" + ` | select a node |
| ` + "`output <id>\\|none`" + ` | set or clear the output node |
| ` + "`run`" + ` | evaluate the output node |
| ` + "`enter <id>`" + ` | open a subgraph node |
| ` + "`up`" + ` | return to the root graph |
| ` + "`crumbs`" + ` / ` + "`goto <n>`" + ` | show or follow the breadcrumb trail |
| ` + "`edit <id>`" + ` | start editing parameters |
| ` + "`set <name> <value>`" + ` | buffer a parameter value |
| ` + "`commit`" + ` / ` + "`discard`" + ` | apply or drop buffered values |
| ` + "`save`" + ` / ` + "`revert`" + ` | checkpoint or restore the diagram |
| ` + "`render`" + ` | print the output as SVG |
| ` + "`mermaid`" + ` | print the diagram as a Mermaid chart |
| ` + "`quit`" + ` | leave |
`

// Run reads commands until EOF or quit.
func (r *Runner) Run(ctx context.Context, ed *Editor) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lines := bufio.NewScanner(r.Input)

	if !r.Headless {
		fmt.Fprintln(r.Output, "type 'help' for commands")
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !r.Headless {
			fmt.Fprint(r.Output, r.prompt(ed))
		}
		if !lines.Scan() {
			if err := lines.Err(); err != nil {
				return fmt.Errorf("input error: %w", err)
			}
			return nil
		}
		line := strings.TrimSpace(lines.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		err := r.Exec(ctx, ed, line)
		if errors.Is(err, ErrQuit) {
			if !r.Headless {
				fmt.Fprintln(r.Output, "Bye!")
			}
			return nil
		}
		if err != nil {
			fmt.Fprintf(r.Output, "error: %v\n", err)
		}
	}
}

func (r *Runner) prompt(ed *Editor) string {
	var labels []string
	for _, c := range ed.Trail().Crumbs() {
		labels = append(labels, c.Label)
	}
	if r.edit != nil {
		return strings.Join(labels, " > ") + " [" + r.edit.Node().ID + "]> "
	}
	return strings.Join(labels, " > ") + "> "
}

// Exec runs a single command line.
func (r *Runner) Exec(ctx context.Context, ed *Editor, line string) error {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]
	out := r.Output

	node := func(i int) (domain.NodeHandle, error) {
		if i >= len(args) {
			return domain.NodeHandle{}, fmt.Errorf("%s: missing node id", cmd)
		}
		h, ok := ed.Node(args[i])
		if !ok {
			return domain.NodeHandle{}, fmt.Errorf("%w: no node %q in this graph", domain.ErrInvalidReference, args[i])
		}
		return h, nil
	}

	switch cmd {
	case "help", "?":
		return r.print(helpText)

	case "quit", "exit":
		return ErrQuit

	case "types":
		for _, t := range ed.Catalog() {
			var ps []string
			for _, p := range t.Parameters {
				ps = append(ps, p.Name+":"+string(p.Kind))
			}
			input := string(t.Input.Kind)
			if t.Input.Kind == domain.InputSlotted {
				input = fmt.Sprintf("%d slot(s)", t.Input.Slots)
			}
			fmt.Fprintf(out, "%-16s %-12s %s\n", t.Name, input, strings.Join(ps, " "))
		}
		return nil

	case "ls":
		for _, n := range ed.Diagram().Nodes() {
			flags := ""
			if n.Output {
				flags += " [output]"
			}
			if n.Subgraph {
				flags += " [subgraph]"
			}
			fmt.Fprintf(out, "%-6s %-16s at %s%s\n", n.Handle.ID, n.Handle.Type, fmtPos(n.Position), flags)
		}
		for _, l := range ed.Diagram().Links() {
			if l.Slotted {
				fmt.Fprintf(out, "%s -> %s:%d\n", l.From.ID, l.To.ID, l.Slot)
			} else {
				fmt.Fprintf(out, "%s -> %s\n", l.From.ID, l.To.ID)
			}
		}
		return nil

	case "status":
		st, err := ed.Status(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "context:  %s\nselected: %s\noutput:   %s\nvisited:  %d\nrendered: %t\n",
			st.Context, st.Selected, st.Output, st.Visited, st.Rendered)
		return nil

	case "create":
		if len(args) != 1 {
			return errors.New("usage: create <type>")
		}
		var created domain.NodeHandle
		tok := onCreated(ed, &created)
		defer ed.Bus().Unsubscribe(tok)
		if err := ed.Send(ctx, domain.CreateNode{TypeName: args[0]}); err != nil {
			return err
		}
		fmt.Fprintf(out, "created %s\n", created)
		return nil

	case "rm":
		h, err := node(0)
		if err != nil {
			return err
		}
		return ed.Send(ctx, domain.DeleteNode{Node: h})

	case "link", "unlink":
		from, err := node(0)
		if err != nil {
			return err
		}
		to, err := node(1)
		if err != nil {
			return err
		}
		slot, slotted := 0, false
		if len(args) > 2 {
			if slot, err = strconv.Atoi(args[2]); err != nil {
				return fmt.Errorf("bad slot %q", args[2])
			}
			slotted = true
		}
		if cmd == "link" {
			return ed.Send(ctx, domain.CreateLink{From: from, To: to, Slot: slot, Slotted: slotted})
		}
		return ed.Send(ctx, domain.DeleteLink{From: from, To: to, Slot: slot, Slotted: slotted})

	case "select":
		h, err := node(0)
		if err != nil {
			return err
		}
		return ed.Send(ctx, domain.NodeSelected{Node: h})

	case "output":
		if len(args) == 1 && args[0] == "none" {
			return ed.Send(ctx, domain.SetOutputNode{})
		}
		h, err := node(0)
		if err != nil {
			return err
		}
		return ed.Send(ctx, domain.SetOutputNode{Node: h})

	case "run":
		if err := ed.Send(ctx, domain.RunProcessors{}); err != nil {
			return err
		}
		if w := ed.Render(); w != nil {
			fmt.Fprintf(out, "%d shape(s), %d point(s)\n", len(w.Shapes), len(w.Points))
		} else {
			fmt.Fprintln(out, "no result")
		}
		return nil

	case "enter":
		h, err := node(0)
		if err != nil {
			return err
		}
		r.edit = nil
		return ed.Send(ctx, domain.SubgraphNodeSelected{Node: h})

	case "up":
		r.edit = nil
		return ed.Send(ctx, domain.MoveLevelUp{})

	case "crumbs":
		for i, c := range ed.Trail().Crumbs() {
			fmt.Fprintf(out, "%d  %-12s %s\n", i, c.Label, c.Key)
		}
		return nil

	case "goto":
		if len(args) != 1 {
			return errors.New("usage: goto <n>")
		}
		i, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("bad crumb %q", args[0])
		}
		r.edit = nil
		return ed.SelectCrumb(ctx, i)

	case "edit":
		h, err := node(0)
		if err != nil {
			return err
		}
		s, err := ed.EditParameters(h)
		if err != nil {
			return err
		}
		r.edit = s
		for _, p := range s.Parameters() {
			v, err := s.Value(p.Name)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%-10s %-14s %s\n", p.Name, p.Kind, v)
		}
		return nil

	case "set":
		if r.edit == nil {
			return errors.New("no node being edited (use edit <id>)")
		}
		if len(args) < 2 {
			return errors.New("usage: set <name> <value>")
		}
		return r.edit.Set(args[0], strings.Join(args[1:], " "))

	case "commit":
		if r.edit == nil {
			return errors.New("no node being edited")
		}
		pending := r.edit.Pending()
		if err := r.edit.Commit(ctx); err != nil {
			return err
		}
		names := make([]string, 0, len(pending))
		for n := range pending {
			names = append(names, n)
		}
		sort.Strings(names)
		fmt.Fprintf(out, "committed %s\n", strings.Join(names, ", "))
		return nil

	case "discard":
		if r.edit == nil {
			return errors.New("no node being edited")
		}
		r.edit.Discard()
		r.edit = nil
		return nil

	case "save":
		return ed.Send(ctx, domain.SaveAll{})

	case "revert":
		return ed.Revert(ctx)

	case "render":
		doc, err := render.SVG(ed.Render())
		if err != nil {
			return err
		}
		fmt.Fprint(out, doc)
		return nil

	case "mermaid":
		st := ed.State()
		fmt.Fprint(out, graph.GenerateMermaid(ed.Diagram().Nodes(), ed.Diagram().Links(),
			&graph.Overlay{Selected: st.Selected(), Output: st.Output()}))
		return nil
	}
	return fmt.Errorf("unknown command %q (try help)", cmd)
}

func (r *Runner) print(text string) error {
	if r.Renderer != nil {
		if rendered, err := r.Renderer(text); err == nil {
			text = rendered
		}
	}
	_, err := fmt.Fprintln(r.Output, strings.TrimRight(text, "\n"))
	return err
}

// onCreated records the handle announced by the next NodeCreated.
func onCreated(ed *Editor, dst *domain.NodeHandle) bus.Token {
	return bus.On(ed.Bus(), func(_ context.Context, msg domain.NodeCreated) error {
		*dst = msg.Node
		return nil
	})
}

func fmtPos(p domain.Position) string {
	return strconv.FormatFloat(p[0], 'f', -1, 64) + "," + strconv.FormatFloat(p[1], 'f', -1, 64)
}
