package main

import (
	"context"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/labels-tracker/internal/export"
	"github.com/joseph-ayodele/labels-tracker/internal/ingest"
	"github.com/joseph-ayodele/labels-tracker/internal/server"
)

var serveFlags struct {
	watch bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the gRPC API and watch the inbox",
	Long: `Start the labels.v1.LabelService gRPC server on GRPC_ADDR, along with the
standard gRPC health service. With --watch, documents dropped into
LABELS_INBOX_DIR/<ORG>/ are extracted as they arrive.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
			return err
		}
		grpcServer := grpc.NewServer(grpc.UnaryInterceptor(server.RequestIDInterceptor))

		var exp *export.Service
		if a.labels != nil {
			exp = export.NewService(a.labels, logger)
		}
		server.RegisterLabelServiceServer(grpcServer, server.NewLabelServer(a.service, exp, logger))

		healthServer := health.NewServer()
		grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

		var queue *ingest.Queue
		if serveFlags.watch {
			if err := os.MkdirAll(cfg.Ingest.InboxDir, 0o755); err != nil {
				return err
			}
			runner := ingest.NewRunner(a.service, runnerConfig(a.labels != nil), logger)
			queue = ingest.NewQueue(runner, logger)
			go func() {
				err := ingest.Watch(ctx, runner, queue, ingest.WatchConfig{
					Roots:       []string{cfg.Ingest.InboxDir},
					InitialScan: true,
					Debounce:    cfg.Ingest.Debounce,
					Logger:      logger,
				})
				if err != nil {
					logger.Error("inbox watcher stopped", "error", err)
				}
			}()
			logger.Info("watching inbox", "dir", cfg.Ingest.InboxDir, "out", cfg.Ingest.OutputDir)
		}

		logger.Info("labels server listening", "addr", cfg.Server.GRPCAddr)
		serveErr := make(chan error, 1)
		go func() { serveErr <- grpcServer.Serve(lis) }()

		select {
		case <-ctx.Done():
		case err := <-serveErr:
			logger.Error("gRPC serve error", "error", err)
			return err
		}

		healthServer.Shutdown()
		if queue != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			queue.Shutdown(shutdownCtx)
			cancel()
		}
		grpcServer.GracefulStop()
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveFlags.watch, "watch", true, "watch the inbox for new documents")
}
