// Package protocol implements the binary wire format that keeps a remote
// live tree in sync with a render root.
//
// The format is small and allocation-light: varints for integers and
// lengths, length-prefixed strings, and no reflection.
//
// # Wire Format
//
// Every message is framed with a 6-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (4 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameHello (0x00): server greeting with protocol version and sequence
//   - FramePatches (0x02): server → client edit scripts
//   - FrameControl (0x03): acknowledgements, resync requests, ping/pong
//   - FrameError (0x05): error report
//
// # Patches
//
// A patches frame carries the render sequence number followed by the edit
// script. Each patch starts with its op byte and the target path:
//
//	[Seq: varint][Count: varint]
//	  [Op: byte][PathLen: varint][Path: strings...][op-specific fields]
//
// Mount, InsertNode and ReplaceNode carry an encoded subtree. Event
// handlers never reach the wire.
//
// # Limits
//
// Decoding is bounded by Limits: string and byte lengths, collection counts,
// tree depth and frame size. Malformed input decodes to an E005 error and
// input over a limit to E040.
//
// # Usage
//
//	data := protocol.EncodePatches(&protocol.PatchesFrame{Seq: 7, Patches: patches})
//	frame := protocol.NewFrame(protocol.FramePatches, data)
//	conn.WriteMessage(websocket.BinaryMessage, frame.Encode())
//
//	pf, err := protocol.DecodePatches(frame.Payload)
package protocol
