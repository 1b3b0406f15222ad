package inbound

import "context"

type HealthResponse struct {
	Status    string `json:"status"`
	Storage   string `json:"storage"`
	Timestamp int64  `json:"timestamp"`
}

type SystemStatsResponse struct {
	UptimeMillis int64          `json:"uptime_millis"`
	UptimeHuman  string         `json:"uptime_human"`
	MemoryUsedMB uint64         `json:"memory_used_mb"`
	MemorySysMB  uint64         `json:"memory_sys_mb"`
	Goroutines   int            `json:"goroutines"`
	CPUCount     int            `json:"cpu_count"`
	StartTime    int64          `json:"start_time"`
	Collections  map[string]int `json:"collections"`
}

type SystemUseCase interface {
	Health(ctx context.Context) *HealthResponse
	Stats(ctx context.Context) (*SystemStatsResponse, error)
}
