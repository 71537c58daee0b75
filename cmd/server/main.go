package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/magblast/magblast-server-go/internal/config"
	"github.com/magblast/magblast-server-go/internal/game"
	"github.com/magblast/magblast-server-go/internal/game/cards"
	"github.com/magblast/magblast-server-go/internal/lobby"
	"github.com/magblast/magblast-server-go/internal/repository"
	"github.com/magblast/magblast-server-go/internal/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

const healthInterval = 5 * time.Second

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting MagBlast server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	settings, err := cfg.Game.Settings()
	if err != nil {
		logger.Fatal("invalid game settings", zap.Error(err))
	}
	opts := []game.ManagerOption{
		game.WithMaxGames(cfg.Server.MaxGames),
		game.WithRetention(cfg.Server.GameRetention),
	}

	// The archive is optional; games run without it.
	if cfg.Database.DSN != "" {
		dbCtx, dbCancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
		db, err := repository.NewDB(dbCtx, cfg.Database, logger)
		dbCancel()
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		stats := db.Stats()
		logger.Info("game archive enabled",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("max_conns", stats.MaxConns()),
		)
		opts = append(opts, game.WithArchiver(repository.NewArchiveRepository(db, logger)))
	} else {
		logger.Warn("no database configured, finished games will not be archived")
	}

	gameMgr := game.NewManager(cards.DefaultCatalog(), settings, logger, opts...)
	lobbyMgr := lobby.NewManager(gameMgr, logger)

	var grpcServer *grpc.Server
	if cfg.Server.GRPC.Enabled {
		grpcServer = grpc.NewServer(
			grpc.UnaryInterceptor(server.ChainUnaryInterceptors(
				server.RecoveryInterceptor(logger),
				server.LoggingInterceptor(logger),
			)),
			grpc.KeepaliveParams(keepalive.ServerParameters{
				Time:    30 * time.Second,
				Timeout: 10 * time.Second,
			}),
		)

		healthSvc := server.NewHealthService(gameMgr, cfg.Server.MaxGames, logger)
		healthpb.RegisterHealthServer(grpcServer, healthSvc)
		go healthSvc.Run(ctx, healthInterval)

		lis, err := net.Listen("tcp", cfg.Server.GRPC.Address)
		if err != nil {
			logger.Fatal("failed to listen", zap.Error(err))
		}

		// Start gRPC server
		go func() {
			logger.Info("starting gRPC server", zap.String("address", cfg.Server.GRPC.Address))
			if serveErr := grpcServer.Serve(lis); serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
				logger.Error("gRPC server error", zap.Error(serveErr))
			}
		}()
	}

	// Start WebSocket server
	wsDone := make(chan struct{})
	go func() {
		defer close(wsDone)
		if wsErr := server.StartWebSocketServer(ctx, cfg.Server.WebSocket, cfg.Server.ShutdownTimeout, gameMgr, lobbyMgr, logger); wsErr != nil {
			logger.Error("WebSocket server error", zap.Error(wsErr))
			select {
			case sigChan <- syscall.SIGTERM:
			default:
			}
		}
	}()

	logger.Info("MagBlast server initialized",
		zap.String("version", version),
		zap.String("websocket_address", cfg.Server.WebSocket.Address),
		zap.Bool("grpc_enabled", cfg.Server.GRPC.Enabled),
		zap.String("grpc_address", cfg.Server.GRPC.Address),
		zap.Int("max_games", cfg.Server.MaxGames),
	)

	// Wait for termination signal
	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	// Graceful shutdown
	logger.Info("shutting down gracefully...")
	cancel()

	select {
	case <-wsDone:
	case <-time.After(cfg.Server.ShutdownTimeout):
		logger.Warn("websocket server did not stop in time")
	}

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	logger.Info("MagBlast server stopped",
		zap.Int("running_games", gameMgr.GetActiveGameCount()),
		zap.Int("halted_games", gameMgr.HaltedGameCount()),
	)
}

// initLogger builds a zap logger for the configured level and format
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build(zap.Fields(zap.String("service", "magblast")))
}
