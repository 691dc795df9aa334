/*
Package node is Burrow's composition root.

Node assembles a running grid node from its configuration:

	config ─► log ─► storage ─► invocation registry ─► handlers
	       ─► executor service ─► scheduler ─► transport listener
	       ─► watchdog ─► metrics collector ─► metrics + healthz

Start brings the pieces up; Stop tears them down in dependency order.
The node stops accepting work first, closes the wire listener, stops
the watchdog and dispatch workers, fails pending invocations with a
shutdown error, and finally releases storage. Active() feeds the
scheduler's rejected-submission policy so packets refused during
shutdown are dropped rather than errored.

Invoke is the local call path: it registers the operation for a call
id, submits it to the dispatch core, and blocks until the response
worker completes it. Remote callers reach the same handlers through
the transport listener instead; their responses travel back over
cached connections held by the node's responder.

Worker starts, stops, deaths, and respawns are published on the event
broker, and the metrics collector samples queue depths, live workers,
running operations, pending invocations, and stored entries on a
15-second ticker.
*/
package node
