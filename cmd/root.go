package cmd

import (
	"fmt"
	"os"

	"github.com/gridkv/gridkv-go/cmd/ping"
	"github.com/gridkv/gridkv-go/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "gridkv",
		Short: "GridKV thin client",
		Long: fmt.Sprintf(`GridKV CLI (v%s)

Command line client for GridKV, a distributed in-memory key-value grid.
Connects to a single cluster member, negotiates the wire protocol version
and issues key-value operations.`, Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of the GridKV CLI",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gridkv v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(ping.PingCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
