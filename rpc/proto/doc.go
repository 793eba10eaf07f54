// Package proto defines the GridKV wire protocol as seen by the client:
// the protocol version triple with its total ordering and the fixed
// supported set, the message framing (4 byte length prefix + 8 byte
// correlation id + payload), the binary payload encoding helpers, and the
// handshake messages exchanged before any application traffic is allowed.
//
// Key Components:
//
//   - Version: ordered (major, minor, patch) triple. IsSupported and
//     DefaultVersion expose the process-wide constant supported set.
//
//   - NewFrame / ParseHeader: bit-exact framing of every message. The
//     correlation step only needs the 12 byte header, payload decoding is
//     deferred to the caller.
//
//   - Request / Response: capability interfaces over version-aware
//     serialization. The channel never inspects payloads beyond the header.
//
//   - HandshakeRequest / HandshakeResponse: the version negotiation
//     exchange, framed like every other message but matched positionally.
package proto
