package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/artikcloud/leshan"
	"github.com/artikcloud/leshan/pkg/types"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run a LwM2M server",
	RunE:  runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := setupLogging(); err != nil {
		return fmt.Errorf("lwm2md server: %w", err)
	}
	cfg, err := loadConfig(types.RoleServer)
	if err != nil {
		return fmt.Errorf("lwm2md server: %w", err)
	}

	srv, err := leshan.NewServer(
		leshan.WithConfig(cfg),
		leshan.WithHandler(logHandler),
	)
	if err != nil {
		return fmt.Errorf("lwm2md server: %w", err)
	}
	defer srv.Close()

	return run(cmd.Context(), srv)
}

// starter 服务端与客户端共同的生命周期
type starter interface {
	ID() string
	Start(ctx context.Context) error
}

// run 启动实例并阻塞到收到退出信号
func run(parent context.Context, inst starter) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := inst.Start(ctx); err != nil {
		return err
	}
	logger.Info("lwm2md 已启动", "instance", inst.ID(), "version", buildVersion)

	<-ctx.Done()
	logger.Info("lwm2md 正在退出", "instance", inst.ID())
	return nil
}
