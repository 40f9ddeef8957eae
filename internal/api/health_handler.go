package api

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trademax/academy-enrollment/internal/pkg/httputil"
)

// HealthStatus is the /health response.
type HealthStatus struct {
	Status string                    `json:"status"` // "ok" or "degraded"
	Uptime string                    `json:"uptime"`
	Checks map[string]ComponentCheck `json:"checks"`
}

// ComponentCheck is the state of one dependency.
type ComponentCheck struct {
	Status  string `json:"status"` // "up", "down", "not_configured"
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// HealthChecker pings the optional backing services.
type HealthChecker struct {
	db          *sql.DB
	redisClient *redis.Client
	startTime   time.Time
}

// NewHealthChecker creates a HealthChecker. Either dependency may be nil.
func NewHealthChecker(db *sql.DB, redisClient *redis.Client) *HealthChecker {
	return &HealthChecker{db: db, redisClient: redisClient, startTime: time.Now()}
}

// HandleHealth always answers 200; the body carries the detail.
//
//	GET /health
func (hc *HealthChecker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	checks := hc.runAllChecks(r.Context())
	status := "ok"
	for _, c := range checks {
		if c.Status == "down" {
			status = "degraded"
		}
	}
	httputil.OK(w, HealthStatus{
		Status: status,
		Uptime: time.Since(hc.startTime).Round(time.Second).String(),
		Checks: checks,
	})
}

func (hc *HealthChecker) runAllChecks(ctx context.Context) map[string]ComponentCheck {
	type result struct {
		name  string
		check ComponentCheck
	}
	ch := make(chan result, 2)
	go func() { ch <- result{"database", hc.checkDatabase(ctx)} }()
	go func() { ch <- result{"redis", hc.checkRedis(ctx)} }()

	checks := make(map[string]ComponentCheck, 2)
	for i := 0; i < 2; i++ {
		r := <-ch
		checks[r.name] = r.check
	}
	return checks
}

func (hc *HealthChecker) checkDatabase(ctx context.Context) ComponentCheck {
	if hc.db == nil {
		return ComponentCheck{Status: "not_configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return timedCheck(func() error { return hc.db.PingContext(ctx) })
}

func (hc *HealthChecker) checkRedis(ctx context.Context) ComponentCheck {
	if hc.redisClient == nil {
		return ComponentCheck{Status: "not_configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return timedCheck(func() error { return hc.redisClient.Ping(ctx).Err() })
}

func timedCheck(ping func() error) ComponentCheck {
	start := time.Now()
	err := ping()
	latency := time.Since(start).String()
	if err != nil {
		return ComponentCheck{Status: "down", Latency: latency, Message: fmt.Sprintf("ping failed: %v", err)}
	}
	return ComponentCheck{Status: "up", Latency: latency}
}
