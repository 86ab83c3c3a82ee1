// Package stream keeps remote live trees in sync with a render root over
// WebSocket.
//
// A Hub registers itself as a sink on a render.Root. Each connecting client
// receives a Hello frame and a snapshot of the current tree, then every
// edit script the root produces, in sequence order. A client that
// reconnects with ?seq=N is sent only the frames it missed when they are
// still in the hub's history. Clients whose send buffer fills up are
// dropped; they reconnect and resume.
//
// The hub's router serves:
//
//	GET /ws       WebSocket stream
//	GET /         current tree as HTML
//	GET /healthz  JSON status
//	GET /metrics  the handler passed to Router, if any
//
// The Runtime must be driven by rt.Run; the hub only reaches the tree
// through rt.Dispatch.
package stream
