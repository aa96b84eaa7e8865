package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"DestinySync/internal/api"
	"DestinySync/internal/listener"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 接口并消费同步队列",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts)
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions) error {
	app, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer app.Close()

	gin.SetMode(app.Config.Server.Mode)
	r := gin.Default()
	handler := api.NewSyncHandler(app.Dispatcher, app.Queue, app.Config.Queue.SyncQueue, app.Dispatcher, app.Logger)
	handler.Register(r)
	app.Logger.Infof("Gin运行模式: %s", app.Config.Server.Mode)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Config.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	consumer := listener.NewConsumer(app.Queue, app.Config.Queue.SyncQueue, app.Dispatcher, app.Config.Queue.Workers, app.Logger).
		WithBackoff(app.Config.Queue.PollInterval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Logger.Infof("服务启动成功，端口：%d", app.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("启动服务失败: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return consumer.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
