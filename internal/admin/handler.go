// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/projectboard/internal/core"
	"github.com/carterperez-dev/projectboard/internal/middleware"
	"github.com/carterperez-dev/projectboard/internal/policy"
)

// FeatureSystemStats is the feature name logged when the stats page is
// refused.
const FeatureSystemStats = "system_stats"

type HandlerConfig struct {
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	DBPing     func(ctx context.Context) error
	RedisPing  func(ctx context.Context) error
	Policy     policy.Policy
	Denier     *middleware.Denier
}

// Handler serves operational stats to administrators.
type Handler struct {
	cfg HandlerConfig
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{cfg: cfg}
}

func (h *Handler) RegisterRoutes(r chi.Router, authenticator func(http.Handler) http.Handler) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(h.cfg.Denier.RequireFeature(FeatureSystemStats, policy.RoleAdmin))

		r.Get("/stats", h.Stats)
	})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	visibility := h.cfg.Policy.Visibility
	if visibility == "" {
		visibility = policy.VisibilityUnfiltered
	}

	core.OK(w, StatsResponse{
		Database: DatabaseStatus{
			Healthy: pingOK(ctx, h.cfg.DBPing),
			Pool:    h.dbPool(),
		},
		Redis: RedisStatus{
			Healthy: pingOK(ctx, h.cfg.RedisPing),
			Pool:    h.redisPool(),
		},
		Runtime: RuntimeStats{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAlloc:     mem.Alloc,
			NumGC:        mem.NumGC,
		},
		Visibility: visibility,
	})
}

func pingOK(ctx context.Context, ping func(context.Context) error) bool {
	return ping != nil && ping(ctx) == nil
}

func (h *Handler) dbPool() *DBPoolStats {
	if h.cfg.DBStats == nil {
		return nil
	}
	s := h.cfg.DBStats()
	return &DBPoolStats{
		MaxOpen:      s.MaxOpenConnections,
		Open:         s.OpenConnections,
		InUse:        s.InUse,
		Idle:         s.Idle,
		WaitCount:    s.WaitCount,
		WaitDuration: s.WaitDuration.String(),
	}
}

func (h *Handler) redisPool() *RedisPoolStats {
	if h.cfg.RedisStats == nil {
		return nil
	}
	s := h.cfg.RedisStats()
	return &RedisPoolStats{
		Hits:       s.Hits,
		Misses:     s.Misses,
		Timeouts:   s.Timeouts,
		TotalConns: s.TotalConns,
		IdleConns:  s.IdleConns,
	}
}

type StatsResponse struct {
	Database   DatabaseStatus    `json:"database"`
	Redis      RedisStatus       `json:"redis"`
	Runtime    RuntimeStats      `json:"runtime"`
	Visibility policy.Visibility `json:"visibility"`
}

type DatabaseStatus struct {
	Healthy bool         `json:"healthy"`
	Pool    *DBPoolStats `json:"pool,omitempty"`
}

type RedisStatus struct {
	Healthy bool            `json:"healthy"`
	Pool    *RedisPoolStats `json:"pool,omitempty"`
}

type DBPoolStats struct {
	MaxOpen      int    `json:"max_open"`
	Open         int    `json:"open"`
	InUse        int    `json:"in_use"`
	Idle         int    `json:"idle"`
	WaitCount    int64  `json:"wait_count"`
	WaitDuration string `json:"wait_duration"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	NumGC        uint32 `json:"num_gc"`
}
