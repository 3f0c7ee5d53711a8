/*
Package bus is the in-process message bus between widgets and command handlers.

Delivery is synchronous: Publish calls every handler subscribed to the message kind, in
subscription order, before returning. Handlers may publish again; nested messages are
delivered immediately as a plain call tree, never queued. The first handler error stops
delivery of that message and is returned to the publisher.
*/
package bus
