package client

import (
	"fmt"
	"sync/atomic"

	"github.com/gridkv/gridkv-go/rpc/channel"
	"github.com/gridkv/gridkv-go/rpc/common"
	"github.com/gridkv/gridkv-go/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("rpc/client")

// nextChannelID assigns connection ids to channels created by this process
var nextChannelID atomic.Uint64

// Client is a typed key-value client over a single data channel. It owns
// exactly one connection, multi-node routing and failover belong to a
// coordinating layer holding multiple clients.
type Client struct {
	config  common.ClientConfig
	channel *channel.DataChannel
}

// NewClient establishes a connection using the given transport, performs
// the protocol handshake and returns a ready-to-use client
func NewClient(config common.ClientConfig, tr transport.IConnectionTransport) (*Client, error) {
	ch := channel.NewDataChannel(nextChannelID.Add(1), config, tr)

	if err := ch.StartHandshake(); err != nil {
		return nil, fmt.Errorf("failed to establish connection to %s: %v", config.Address, err)
	}

	Logger.Infof("Connected to node %s", ch.GetNode())

	return &Client{
		config:  config,
		channel: ch,
	}, nil
}

// Get returns the value stored under key and whether it exists
func (c *Client) Get(key string) ([]byte, bool, error) {
	req := &KVGetRequest{Key: key}
	rsp := &KVGetResponse{}

	if err := c.channel.SyncMessage(req, rsp, c.config.RequestTimeout()); err != nil {
		return nil, false, err
	}
	if rsp.Status != StatusSuccess {
		return nil, false, fmt.Errorf("get %q failed: %s", key, rsp.Err)
	}
	return rsp.Value, rsp.Found, nil
}

// Put stores value under key
func (c *Client) Put(key string, value []byte) error {
	return c.put(key, value, 0)
}

// PutTTL stores value under key with an expiration. Requires protocol
// version 1.6.0 or newer.
func (c *Client) PutTTL(key string, value []byte, ttlSeconds uint64) error {
	return c.put(key, value, ttlSeconds)
}

func (c *Client) put(key string, value []byte, ttlSeconds uint64) error {
	req := &KVPutRequest{Key: key, Value: value, TTLSeconds: ttlSeconds}
	rsp := &KVPutResponse{}

	if err := c.channel.SyncMessage(req, rsp, c.config.RequestTimeout()); err != nil {
		return err
	}
	if rsp.Status != StatusSuccess {
		return fmt.Errorf("put %q failed: %s", key, rsp.Err)
	}
	return nil
}

// Delete removes the entry stored under key
func (c *Client) Delete(key string) error {
	req := &KVDeleteRequest{Key: key}
	rsp := &KVDeleteResponse{}

	if err := c.channel.SyncMessage(req, rsp, c.config.RequestTimeout()); err != nil {
		return err
	}
	if rsp.Status != StatusSuccess {
		return fmt.Errorf("delete %q failed: %s", key, rsp.Err)
	}
	return nil
}

// Channel exposes the underlying data channel, e.g. for registering
// notification handlers or issuing asynchronous requests
func (c *Client) Channel() *channel.DataChannel {
	return c.channel
}

// Close tears down the connection. All in-flight requests fail.
func (c *Client) Close() error {
	return c.channel.Close()
}
