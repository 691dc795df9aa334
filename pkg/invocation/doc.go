/*
Package invocation tracks calls awaiting responses.

Register assigns an operation a monotonically increasing call id and
returns an Invocation whose Await blocks for the matching response. The
Handler adapter is what the dispatcher's response worker drives: it
decodes response envelopes and completes pending entries. Late or
duplicate responses complete nothing and are reported as errors for the
response worker to log.

Close fails every pending invocation with a shutdown error so callers
blocked in Await unwind promptly during node stop.
*/
package invocation
