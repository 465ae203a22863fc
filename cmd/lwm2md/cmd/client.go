package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artikcloud/leshan"
	"github.com/artikcloud/leshan/pkg/types"
)

var clientCmd = &cobra.Command{
	Use:   "client <endpoint-name>",
	Short: "Run a LwM2M client",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClient,
}

func init() {
	rootCmd.AddCommand(clientCmd)
}

func runClient(cmd *cobra.Command, args []string) error {
	if err := setupLogging(); err != nil {
		return fmt.Errorf("lwm2md client: %w", err)
	}
	cfg, err := loadConfig(types.RoleClient)
	if err != nil {
		return fmt.Errorf("lwm2md client: %w", err)
	}

	name := cfg.Client.EndpointName
	if len(args) > 0 {
		name = args[0]
	}

	cli, err := leshan.NewClient(name,
		leshan.WithConfig(cfg),
		leshan.WithHandler(logHandler),
	)
	if err != nil {
		return fmt.Errorf("lwm2md client: %w", err)
	}
	defer cli.Close()

	return run(cmd.Context(), cli)
}
