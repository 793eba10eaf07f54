// Package common contains the core data structures and utilities shared
// across the GridKV client: the connection configuration, the logging
// factory, and the error values used for failure propagation between the
// channel, transport, and client layers.
//
// The package focuses on:
//   - Per-connection configuration with a human readable String() form
//   - A custom logger implementing the dragonboat ILogger interface
//   - Sentinel errors that distinguish call-scoped failures (timeouts)
//     from channel-fatal failures (disconnects, close)
package common
