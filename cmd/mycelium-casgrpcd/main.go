// Command mycelium-casgrpcd serves a registry-selected CAS backend over gRPC.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"xdao.co/mycelium/storage"
	"xdao.co/mycelium/storage/casconfig"
	"xdao.co/mycelium/storage/casregistry"
	"xdao.co/mycelium/storage/grpccas"

	_ "xdao.co/mycelium/storage/badgercas"
	_ "xdao.co/mycelium/storage/ipfs"
	_ "xdao.co/mycelium/storage/localfs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newCommand(ctx, os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	listen        string
	metricsListen string
	backend       string
	casConfig     string
	logLevel      string
	listBackends  bool
}

func newCommand(ctx context.Context, out io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "mycelium-casgrpcd",
		Short:         "Serve a CAS backend over gRPC",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.listBackends {
				for _, b := range casregistry.List(casregistry.UsageDaemon) {
					fmt.Fprintf(out, "%s\t%s\n", b.Name, b.Description)
				}
				return nil
			}
			level, err := zapcore.ParseLevel(opts.logLevel)
			if err != nil {
				return fmt.Errorf("invalid --log-level: %w", err)
			}
			cfg := zap.NewProductionConfig()
			cfg.Level = zap.NewAtomicLevelAt(level)
			log, err := cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = log.Sync() }()
			return serve(ctx, opts, log)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.listen, "listen", "127.0.0.1:7777", "gRPC listen address")
	f.StringVar(&opts.metricsListen, "metrics-listen", "", "Serve Prometheus /metrics on this address (disabled when empty)")
	f.StringVar(&opts.backend, "backend", "localfs", "CAS backend name")
	f.StringVar(&opts.casConfig, "cas-config", "", "YAML file describing one or more CAS backends; overrides --backend")
	f.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	f.BoolVar(&opts.listBackends, "list-backends", false, "List supported backends and exit")

	reg := flag.NewFlagSet("mycelium-casgrpcd", flag.ContinueOnError)
	casregistry.RegisterFlags(reg, casregistry.UsageDaemon)
	f.AddGoFlagSet(reg)
	return cmd
}

// openCAS opens the configured backend(s), instrumented with metrics.
func openCAS(opts options, metrics *storage.Metrics) (storage.CAS, func() error, error) {
	if opts.casConfig != "" {
		cfg, err := casconfig.LoadFile(opts.casConfig)
		if err != nil {
			return nil, nil, err
		}
		return cfg.Open(casregistry.UsageDaemon, "", metrics)
	}
	cas, closeFn, err := casregistry.Open(opts.backend, casregistry.UsageDaemon)
	if err != nil {
		return nil, nil, err
	}
	return metrics.Instrument(opts.backend, cas), closeFn, nil
}

func serve(ctx context.Context, opts options, log *zap.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := storage.NewMetrics(reg)

	cas, closeFn, err := openCAS(opts, metrics)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer func() {
			if err := closeFn(); err != nil {
				log.Warn("close backend", zap.Error(err))
			}
		}()
	}

	lis, err := net.Listen("tcp", opts.listen)
	if err != nil {
		return err
	}
	srv := newServer(cas, log)

	var metricsSrv *http.Server
	if opts.metricsListen != "" {
		metricsSrv = &http.Server{
			Addr:              opts.metricsListen,
			Handler:           metricsHandler(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server", zap.Error(err))
			}
		}()
		log.Info("metrics listening", zap.String("addr", opts.metricsListen))
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(lis) }()
	log.Info("listening",
		zap.String("addr", lis.Addr().String()),
		zap.String("backend", opts.backend),
		zap.String("config", opts.casConfig))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	srv.GracefulStop()
	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return nil
}

func newServer(cas storage.CAS, log *zap.Logger) *grpc.Server {
	srv := grpc.NewServer(grpc.UnaryInterceptor(logUnary(log)))
	grpccas.RegisterCASServer(srv, &grpccas.Server{CAS: cas, Logger: log})
	return srv
}

func metricsHandler(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return mux
}

// logUnary logs every call at debug level with its status code and latency.
func logUnary(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("rpc",
			zap.String("method", info.FullMethod),
			zap.Stringer("code", status.Code(err)),
			zap.Duration("took", time.Since(start)))
		return resp, err
	}
}
