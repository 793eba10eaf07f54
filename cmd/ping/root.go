package ping

import (
	"fmt"
	"time"

	"github.com/gridkv/gridkv-go/cmd/util"
	"github.com/gridkv/gridkv-go/rpc/client"
	"github.com/gridkv/gridkv-go/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// PingCmd connects to a cluster member and reports the negotiated
	// protocol version and node identity
	PingCmd = &cobra.Command{
		Use:     "ping",
		Short:   "Connect to a cluster member and report the negotiated protocol",
		RunE:    run,
		PreRunE: processConfig,
	}

	config common.ClientConfig
)

func init() {
	util.SetupClientFlags(PingCmd)
	util.InitClientConfig()
}

func processConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := viper.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return err
	}

	config = util.GetClientConfig()
	common.InitLoggers(config)
	return nil
}

func run(cmd *cobra.Command, _ []string) error {
	tr, err := util.GetTransport()
	if err != nil {
		return err
	}

	start := time.Now()
	cli, err := client.NewClient(config, tr)
	if err != nil {
		return err
	}
	defer cli.Close()

	node := cli.Channel().GetNode()
	fmt.Printf("Connected to %s in %v\n", config.Address, time.Since(start).Round(time.Millisecond))
	fmt.Printf("  Node ID          : %s\n", node.ID())
	fmt.Printf("  Protocol Version : %s\n", node.Version())

	return nil
}
