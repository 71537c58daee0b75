package server

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GameServiceName is the health service name reporting game capacity.
const GameServiceName = "magblast.Game"

// GameStats is the part of the game manager the health service watches.
type GameStats interface {
	GetActiveGameCount() int
	HaltedGameCount() int
}

// HealthService reports the server as serving, and the game service as not
// serving while the manager has no room for new games.
type HealthService struct {
	*health.Server
	games    GameStats
	maxGames int
	logger   *zap.Logger
}

// NewHealthService creates a new health service
func NewHealthService(games GameStats, maxGames int, logger *zap.Logger) *HealthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &HealthService{
		Server:   health.NewServer(),
		games:    games,
		maxGames: maxGames,
		logger:   logger,
	}
	h.Update()
	return h
}

// Update recomputes the game service status
func (h *HealthService) Update() healthpb.HealthCheckResponse_ServingStatus {
	active := h.games.GetActiveGameCount()
	st := healthpb.HealthCheckResponse_SERVING
	if h.maxGames > 0 && active >= h.maxGames {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.SetServingStatus(GameServiceName, st)
	return st
}

// Run refreshes the status every interval until ctx is done, then marks every
// service as not serving.
func (h *HealthService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := h.Update()
	for {
		select {
		case <-ticker.C:
			st := h.Update()
			if st != last {
				h.logger.Info("game service health changed",
					zap.String("status", st.String()),
					zap.Int("active_games", h.games.GetActiveGameCount()),
					zap.Int("halted_games", h.games.HaltedGameCount()),
				)
				last = st
			}
		case <-ctx.Done():
			h.Shutdown()
			return
		}
	}
}
