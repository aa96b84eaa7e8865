package cli

import (
	"os"
	"os/signal"
	"syscall"

	"DestinySync/internal/listener"

	"github.com/spf13/cobra"
)

func NewWorkerCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "只消费同步队列，不启动 HTTP 接口",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := newApp(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			consumer := listener.NewConsumer(app.Queue, app.Config.Queue.SyncQueue, app.Dispatcher, app.Config.Queue.Workers, app.Logger).
				WithBackoff(app.Config.Queue.PollInterval)
			return consumer.Run(ctx)
		},
	}
}
