package system

import (
	"context"
	"runtime"
	"time"

	"github.com/juju/clock"

	"github.com/complyance/governance/application/port/inbound"
	"github.com/complyance/governance/application/port/outbound"
	domainerr "github.com/complyance/governance/domain/error"
	"github.com/complyance/governance/infrastructure/service/logger"
)

const (
	StatusUp   = "UP"
	StatusDown = "DOWN"
)

// Counter is satisfied by every repository.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

type SystemUseCaseImpl struct {
	health      outbound.HealthChecker
	collections map[string]Counter
	clock       clock.Clock
	startTime   time.Time
	logger      logger.Logger
}

// NewSystemUseCase reports on the store behind health and on the record
// counts of each named collection.
func NewSystemUseCase(health outbound.HealthChecker, collections map[string]Counter, clk clock.Clock, log logger.Logger) *SystemUseCaseImpl {
	if clk == nil {
		clk = clock.WallClock
	}
	return &SystemUseCaseImpl{
		health:      health,
		collections: collections,
		clock:       clk,
		startTime:   clk.Now(),
		logger:      log,
	}
}

var _ inbound.SystemUseCase = (*SystemUseCaseImpl)(nil)

func (uc *SystemUseCaseImpl) Health(ctx context.Context) *inbound.HealthResponse {
	resp := &inbound.HealthResponse{
		Status:    StatusUp,
		Storage:   StatusUp,
		Timestamp: uc.clock.Now().UnixMilli(),
	}
	if err := uc.health.Ping(ctx); err != nil {
		uc.logger.Warn(ctx, "Storage health check failed", map[string]interface{}{
			"error": err.Error(),
		})
		resp.Status = StatusDown
		resp.Storage = StatusDown
	}
	return resp
}

func (uc *SystemUseCaseImpl) Stats(ctx context.Context) (*inbound.SystemStatsResponse, error) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	uptime := uc.clock.Now().Sub(uc.startTime)

	counts := make(map[string]int, len(uc.collections))
	for name, counter := range uc.collections {
		n, err := counter.Count(ctx)
		if err != nil {
			return nil, domainerr.ErrDatabaseError("count "+name, err)
		}
		counts[name] = n
	}

	return &inbound.SystemStatsResponse{
		UptimeMillis: uptime.Milliseconds(),
		UptimeHuman:  uptime.Truncate(time.Second).String(),
		MemoryUsedMB: mem.Alloc / 1024 / 1024,
		MemorySysMB:  mem.Sys / 1024 / 1024,
		Goroutines:   runtime.NumGoroutine(),
		CPUCount:     runtime.NumCPU(),
		StartTime:    uc.startTime.UnixMilli(),
		Collections:  counts,
	}, nil
}
