/*
Package graphnav is the navigation and state-synchronization core of a node-graph editor.

A graph-processing engine owns the truth about nodes, links and parameters. graphnav sits between
that engine and a visual diagram: user intents travel as messages on a synchronous event bus,
command handlers turn them into engine calls and diagram edits, and a context cache lets the user
drill into subgraph nodes and come back to find every visited graph drawn exactly as it was left.

# Concept

Every graph, the root one or one nested in a subgraph node, is a context. The engine hashes each
context to a key; the cache stores one entry per key holding the serialized diagram and the output
node. Entering a context saves the one being left, replays the target's snapshot (or starts empty
on a first visit), clears the selection, announces the stored output and asks for a repaint.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/graphnav"
		"github.com/aretw0/graphnav/pkg/adapters/memory"
		"github.com/aretw0/graphnav/pkg/domain"
	)

	func main() {
		ctx := context.Background()
		engine, err := memory.NewEngine()
		if err != nil {
			log.Fatal(err)
		}

		ed, err := graphnav.New(ctx, engine)
		if err != nil {
			log.Fatal(err)
		}
		defer ed.Close(ctx)

		if err := ed.Send(ctx, domain.CreateNode{TypeName: "Circle"}); err != nil {
			log.Fatal(err)
		}
	}

# Packages

  - pkg/bus: the event bus.
  - pkg/session: the shared session state.
  - pkg/navigation: the context cache and the breadcrumb trail.
  - pkg/editor: command handlers and parameter edit sessions.
  - pkg/adapters: in-memory and Redis stores, a reference engine, the HTTP surface.
*/
package graphnav
