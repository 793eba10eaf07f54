// Package client implements the typed key-value client of the GridKV Go
// driver. It wraps a single data channel with Get/Put/Delete operations and
// the concrete request/response message types of the key-value protocol.
//
// Key Components:
//
//   - NewClient: factory function that connects the given transport,
//     performs the protocol handshake and returns a ready client.
//
//   - KVGetRequest, KVPutRequest, KVDeleteRequest and their responses:
//     concrete implementations of the proto.Request/proto.Response
//     capabilities. KVPutRequest demonstrates version-dependent
//     serialization, entry TTLs are only encoded for protocol 1.6.0+.
//
// Usage Example:
//
//	config := common.ClientConfig{
//	  Address:              "localhost:10800",
//	  ClientName:           "my-app",
//	  HandshakeTimeoutSecond: 5,
//	  RequestTimeoutSecond:   10,
//	}
//
//	cli, err := client.NewClient(config, tcp.NewTCPClientTransport())
//	if err != nil {
//	  // handle connection/handshake failure
//	}
//	defer cli.Close()
//
//	cli.Put("mykey", []byte("myvalue"))
//	value, found, _ := cli.Get("mykey")
//
// Thread Safety:
//
//	All client operations are safe for concurrent use from multiple
//	goroutines, requests are correlated by id on the shared channel.
package client
