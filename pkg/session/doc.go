/*
Package session holds the shared, observable record of what is currently true for the user:
the live graph context, the selection, the output node, the last render result and the
node-type catalog.

The record performs no business logic. Command handlers write it; observers are told which
field changed after every write. A State is created once the engine is ready (New) and
released with Teardown.
*/
package session
