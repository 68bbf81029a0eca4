package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/MikeMC777/ordenes-checkout/docs"
	"github.com/MikeMC777/ordenes-checkout/internal/cache"
	"github.com/MikeMC777/ordenes-checkout/internal/config"
	"github.com/MikeMC777/ordenes-checkout/internal/db"
	"github.com/MikeMC777/ordenes-checkout/internal/events"
	"github.com/MikeMC777/ordenes-checkout/internal/grpcapi"
	"github.com/MikeMC777/ordenes-checkout/internal/httpx"
	"github.com/MikeMC777/ordenes-checkout/internal/observability"
	"github.com/MikeMC777/ordenes-checkout/internal/order"
)

const serviceName = "order-service"

// @title                      Orders API
// @version                    0.2.0
// @description                Order placement, lookup and status lifecycle.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	shutdownTracing, err := observability.SetupTracingSDK(ctx, cfg, serviceName)
	bootLog := observability.NewLogger(serviceName, cfg.LogLevel, false)
	if err != nil {
		bootLog.Error("failed to setup OpenTelemetry tracing", zap.Error(err))
	}
	shutdownLogging, err := observability.SetupLoggingSDK(ctx, cfg, serviceName)
	if err != nil {
		bootLog.Error("failed to setup OpenTelemetry logging", zap.Error(err))
	}
	logger := observability.NewLogger(serviceName, cfg.LogLevel, cfg.OtelEndpoint != "")
	defer func() { _ = logger.Sync() }()

	pool, err := db.Connect(ctx, cfg.PostgresDSN, cfg.DBMaxConns)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("failed to migrate", zap.Error(err))
	}
	logger.Info("connected to postgres")

	opts := []order.Option{order.WithLogger(logger)}

	rc, err := cache.Connect(ctx, cfg.RedisAddr, cfg.CacheTTL)
	if err != nil {
		logger.Warn("read cache disabled", zap.Error(err))
	}
	if rc != nil {
		opts = append(opts, order.WithCache(rc))
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafka(cfg.KafkaBrokers, cfg.OrderEventsTopic)
		logger.Info("publishing order events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.OrderEventsTopic))
	}
	opts = append(opts, order.WithPublisher(publisher))

	svc := order.NewService(order.NewPGStore(pool), opts...)

	// gRPC
	grpcServer := grpc.NewServer()
	grpcapi.Register(grpcServer, grpcapi.NewServer(svc, logger))
	lis, err := net.Listen("tcp", cfg.OrderGRPCAddr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", cfg.OrderGRPCAddr), zap.Error(err))
	}
	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.OrderGRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
		}
	}()

	// HTTP
	r := gin.New()
	r.Use(httpx.RequestID(), httpx.Logger(logger), httpx.Recovery(logger), httpx.Tracing(serviceName),
		httpx.RateLimit(cfg.RateLimit, cfg.RateWindow))
	registerRoutes(r, svc, cfg.AdminTokenHash, pool)
	docs.SwaggerInfo.Title = "Orders API"
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	httpServer := &http.Server{
		Addr:              cfg.OrderSvcAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.OrderSvcAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()

	if err := publisher.Close(); err != nil {
		logger.Error("close publisher", zap.Error(err))
	}
	if rc != nil {
		_ = rc.Close()
	}
	pool.Close()

	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("shutdown OTel tracing", zap.Error(err))
	}
	if err := shutdownLogging(shutdownCtx); err != nil {
		logger.Error("shutdown OTel logging", zap.Error(err))
	}
	logger.Info("stopped")
}
