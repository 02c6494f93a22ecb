package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"CryptoBrain/pkg/logger"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"route", "method", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"route", "method", "class"})

	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "Current number of in-flight HTTP requests",
	})

	regOnce sync.Once
)

// Metrics records request counts and latency labelled by route template.
// 5xx responses are logged as errors, slow ones as warnings.
func Metrics(log *logger.Logger, slow time.Duration) echo.MiddlewareFunc {
	regOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, httpInFlight)
	})
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			httpInFlight.Inc()
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			httpInFlight.Dec()

			dur := time.Since(start)
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			code := c.Response().Status
			httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
			httpDuration.WithLabelValues(route, method, StatusClass(code)).Observe(dur.Seconds())

			switch {
			case code >= 500:
				log.Error("http request failed",
					logger.String("route", route),
					logger.Int("status", code),
					logger.Duration("duration_ms", dur),
				)
			case slow > 0 && dur >= slow:
				log.Warn("http request slow",
					logger.String("route", route),
					logger.Int("status", code),
					logger.Duration("duration_ms", dur),
				)
			}
			return nil
		}
	}
}

func StatusClass(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
