package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostMutations counts successful post writes by operation (create, update, delete).
	PostMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogshare_posts_mutations_total",
		Help: "Total number of successful post mutations by operation",
	}, []string{"operation"})

	// AuthAttempts counts register and login attempts by outcome.
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogshare_auth_attempts_total",
		Help: "Total number of authentication attempts by operation and outcome",
	}, []string{"operation", "outcome"})

	// MediaUploads counts image uploads by outcome (stored, rejected_type, rejected_size, error).
	MediaUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogshare_media_uploads_total",
		Help: "Total number of image uploads by outcome",
	}, []string{"outcome"})

	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogshare_redis_errors_total",
		Help: "Total number of Redis command errors",
	}, []string{"command"})
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics builds the HTTP request instrumentation for the given service name.
// Collectors live in the default registry, so the instance is created once per process.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware records request counts and latencies, skipping the scrape endpoint itself.
func MetricsMiddleware(fp *fiberprometheus.FiberPrometheus) fiber.Handler {
	handler := fp.Middleware
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		return handler(c)
	}
}
