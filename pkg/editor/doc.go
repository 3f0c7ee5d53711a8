// Package editor turns bus messages into engine calls and diagram edits.
//
// The Orchestrator owns one handler per message kind. Parameter edits do not
// travel on the bus; they go through an EditSession that buffers values and
// commits them together.
package editor
