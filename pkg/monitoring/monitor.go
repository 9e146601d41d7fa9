package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// CertificateIssuance 证书签发结果：issued / already_issued / failed
	CertificateIssuance = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillbridge_certificate_issuance_total",
			Help: "Certificate issuance attempts by result",
		},
		[]string{"result"},
	)

	CertificateVerification = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillbridge_certificate_verification_total",
			Help: "Public certificate verifications by result",
		},
		[]string{"result"},
	)

	CertificateRenderDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "skillbridge_certificate_render_seconds",
			Help:    "Time spent drawing certificate and QR images",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)
)

var registerOnce sync.Once

// Init registers the collectors with the default registry. Safe to call more
// than once, which happens when tests build several apps.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(CertificateIssuance)
		prometheus.MustRegister(CertificateVerification)
		prometheus.MustRegister(CertificateRenderDuration)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
