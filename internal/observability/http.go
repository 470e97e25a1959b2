package observability

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler exposes the debate API's Prometheus scrape endpoint via
// Fiber. Scrapes keep answering with whatever collected cleanly if a
// collector misbehaves.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()

	scrape := promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
	return adaptor.HTTPHandler(scrape)
}
