package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ogurasousui/roster-grpc-clean-arch/internal/adapters/grpc/handler"
	"github.com/ogurasousui/roster-grpc-clean-arch/internal/adapters/grpc/rosterv1"
	"github.com/ogurasousui/roster-grpc-clean-arch/internal/core/roster"
	"github.com/ogurasousui/roster-grpc-clean-arch/internal/platform/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const metricsShutdownTimeout = 5 * time.Second

// Server は gRPC サーバーとメトリクス用 HTTP サーバーのライフサイクルを管理します。
type Server struct {
	listenAddr    string
	grpcServer    *grpc.Server
	health        *health.Server
	metricsServer *http.Server
	logger        *zap.Logger
}

type settings struct {
	metricsAddr string
	logger      *zap.Logger
	grpcOpts    []grpc.ServerOption
}

// Option は Server の構築時の設定です。
type Option func(*settings)

// WithMetricsAddr は /metrics を公開するアドレスを指定します。空文字の場合は公開しません。
func WithMetricsAddr(addr string) Option {
	return func(s *settings) {
		s.metricsAddr = addr
	}
}

// WithLogger はロガーを指定します。
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGRPCOptions は grpc.NewServer に渡すオプションを追加します。
func WithGRPCOptions(opts ...grpc.ServerOption) Option {
	return func(s *settings) {
		s.grpcOpts = append(s.grpcOpts, opts...)
	}
}

// New は指定されたアドレスで待ち受ける gRPC サーバーを構築します。
func New(listenAddr string, svc roster.UseCase, opts ...Option) *Server {
	cfg := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	grpcOpts := append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(logging.UnaryServerInterceptor(cfg.logger)),
	}, cfg.grpcOpts...)
	srv := grpc.NewServer(grpcOpts...)

	rosterv1.RegisterRosterServiceServer(srv, handler.NewRosterGrpcHandler(svc))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(srv, healthServer)

	s := &Server{
		listenAddr: listenAddr,
		grpcServer: srv,
		health:     healthServer,
		logger:     cfg.logger,
	}

	if cfg.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		s.metricsServer = &http.Server{
			Addr:              cfg.metricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return s
}

// Run はサーバーを起動し、コンテキストがキャンセルされると GracefulStop します。
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.listenAddr, err)
	}
	return s.Serve(ctx, lis)
}

// Serve は lis で gRPC を提供します。メトリクスサーバーが設定されていれば並行して起動します。
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(rosterv1.ServiceName, healthpb.HealthCheckResponse_SERVING)

	g.Go(func() error {
		s.logger.Info("grpc server listening", zap.String("addr", lis.Addr().String()))
		if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}
		return nil
	})

	if s.metricsServer != nil {
		g.Go(func() error {
			s.logger.Info("metrics server listening", zap.String("addr", s.metricsServer.Addr))
			if err := s.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve metrics: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		s.shutdown()
		return nil
	})

	return g.Wait()
}

func (s *Server) shutdown() {
	s.GracefulStop()

	if s.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := s.metricsServer.Shutdown(ctx); err != nil {
			s.logger.Warn("metrics server shutdown", zap.Error(err))
		}
	}
}

// GracefulStop はヘルスチェックを NOT_SERVING にしてから gRPC サーバーを安全に停止します。
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
