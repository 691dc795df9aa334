/*
Package handler executes grid operations against the record store.

Handler is the operation handler the dispatch workers drive: it decodes
operation envelopes, runs put, get, delete, and noop against
storage.Store, and routes the response. Local callers (empty caller
address) have their pending invocations completed through the
invocation registry; remote callers get a response packet delivered by
the Responder. Operations with call id zero are fire-and-forget and
produce no response.

Store-level failures travel inside the response (Err field) rather than
as handler errors, so the remote caller sees them. A handler error is
reserved for routing problems the worker should log.
*/
package handler
