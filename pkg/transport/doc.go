/*
Package transport owns Burrow's wire format and the TCP listener.

# Wire Format

Every frame is a fixed little-endian header followed by an opaque payload:

	┌────────┬─────────┬───────┬──────────────┬─────────────┬─────────┐
	│ magic  │ version │ flags │ partition id │ payload len │ payload │
	│ 2B     │ 1B      │ 2B    │ 4B (int32)   │ 4B (uint32) │ n bytes │
	└────────┴─────────┴───────┴──────────────┴─────────────┴─────────┘

The magic is 0x4252 ("BR"). Flags carry the response and urgent bits; the
dispatch layer routes on the header alone and never touches the payload.
Payloads above 64 MiB are refused.

Operations and responses travel as JSON envelopes inside the payload
(MarshalOperation / MarshalResponse), decoded by the handlers on the far
side.

# Listener

Server accepts TCP connections and feeds each decoded frame to the packet
sink (the scheduler). Reader goroutines run under RoleIO: the role policy
forbids them from executing operations in place, so a slow operation can
never stall the wire.

Client is a thin dialer used by the CLI and tests to inject frames.
*/
package transport
