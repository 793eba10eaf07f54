package util

import (
	"fmt"
	"strings"

	"github.com/gridkv/gridkv-go/rpc/common"
	"github.com/gridkv/gridkv-go/rpc/transport"
	"github.com/gridkv/gridkv-go/rpc/transport/tcp"
	"github.com/gridkv/gridkv-go/rpc/transport/unix"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupClientFlags adds common connection flags to a command
func SetupClientFlags(cmd *cobra.Command) {
	key := "address"
	cmd.PersistentFlags().String(key, "localhost:10800", WrapString("The address of the GridKV cluster member (host:port for tcp, socket path for unix)"))

	key = "client-name"
	cmd.PersistentFlags().String(key, "gridkv-cli", WrapString("The name this client identifies itself with during the handshake"))

	key = "connect-timeout"
	cmd.PersistentFlags().Int(key, 5, WrapString("The connect timeout in seconds"))

	key = "handshake-timeout"
	cmd.PersistentFlags().Int(key, 5, WrapString("The handshake timeout in seconds"))

	key = "timeout"
	cmd.PersistentFlags().Int(key, 10, WrapString("The request timeout in seconds"))

	key = "tcp-nodelay"
	cmd.PersistentFlags().Bool(key, true, WrapString("Whether to enable TCP_NODELAY (only for tcp transport)"))

	key = "tcp-keepalive"
	cmd.PersistentFlags().Int(key, 0, WrapString("The keepalive interval in seconds (only for tcp transport)"))

	key = "write-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("The size of the socket write buffer (in KB, 0 = system default)"))

	key = "read-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("The size of the socket read buffer (in KB, 0 = system default)"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "info", WrapString("The log level (debug, info, warn, error)"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("gridkv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetClientConfig reads the client configuration from viper
func GetClientConfig() common.ClientConfig {
	return common.ClientConfig{
		Address:                viper.GetString("address"),
		ClientName:             viper.GetString("client-name"),
		ConnectTimeoutSecond:   viper.GetInt("connect-timeout"),
		HandshakeTimeoutSecond: viper.GetInt("handshake-timeout"),
		RequestTimeoutSecond:   viper.GetInt("timeout"),
		TCPNoDelay:             viper.GetBool("tcp-nodelay"),
		TCPKeepAliveSecond:     viper.GetInt("tcp-keepalive"),
		WriteBufferKB:          viper.GetInt("write-buffer"),
		ReadBufferKB:           viper.GetInt("read-buffer"),
		LogLevel:               viper.GetString("log-level"),
	}
}

// GetTransport returns the transport implementation selected via the
// --transport flag
func GetTransport() (transport.IConnectionTransport, error) {
	switch name := viper.GetString("transport"); name {
	case "tcp":
		return tcp.NewTCPClientTransport(), nil
	case "unix":
		return unix.NewUnixClientTransport(), nil
	default:
		return nil, fmt.Errorf("unknown transport: %s (must be tcp or unix)", name)
	}
}
