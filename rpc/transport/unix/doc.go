// Package unix implements the IConnectionTransport interface using Unix
// domain sockets, for clients colocated with a cluster member. Framing and
// read-loop handling live in the base transport.
package unix
