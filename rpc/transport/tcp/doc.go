// Package tcp implements the IConnectionTransport interface using TCP
// sockets. It delegates framing and read-loop handling to the base
// transport and only contributes connection establishment and TCP socket
// options (no-delay, keep-alive, buffer sizes).
package tcp
