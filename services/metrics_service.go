package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"tunnel-dashboard/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	requestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "Total dashboard HTTP requests",
		},
		[]string{"route"},
	)

	requestErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_http_request_errors_total",
			Help: "Dashboard HTTP requests answered with status >= 400",
		},
		[]string{"route"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_http_request_duration_seconds",
			Help:    "Duration of dashboard HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	pollTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_poll_total",
			Help: "Backend polls by kind (status/health) and result",
		},
		[]string{"kind", "result"},
	)

	pollDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_poll_duration_seconds",
			Help:    "Duration of backend polls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	commandTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_command_total",
			Help: "Tunnel commands by command and result",
		},
		[]string{"command", "result"},
	)

	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_notifications_total",
			Help: "Notifications shown to the operator by severity",
		},
		[]string{"severity"},
	)

	eventsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_view_events_dropped_total",
		Help: "View events dropped because a subscriber was not keeping up",
	})

	tableRows = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_table_rows",
		Help: "Rows in the live table after the last snapshot",
	})

	tableMemory = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_tunnels_memory_mb",
		Help: "Total tunnel memory reported by the last snapshot",
	})

	totalRequests int64
	totalErrors   int64
)

func init() {
	prometheus.MustRegister(requestCount, requestErrors, requestDuration)
	prometheus.MustRegister(pollTotal, pollDuration, commandTotal, notificationsTotal)
	prometheus.MustRegister(eventsDropped, tableRows, tableMemory)
}

// IncrementRequestCount 增加请求计数
func IncrementRequestCount(route string) {
	requestCount.WithLabelValues(route).Inc()
	atomic.AddInt64(&totalRequests, 1)
}

// IncrementErrorCount 增加错误请求计数
func IncrementErrorCount(route string) {
	requestErrors.WithLabelValues(route).Inc()
	atomic.AddInt64(&totalErrors, 1)
}

// RecordRequestDuration 记录请求持续时间
func RecordRequestDuration(route string, seconds float64) {
	requestDuration.WithLabelValues(route).Observe(seconds)
}

func GetTotalRequestCount() int64 {
	return atomic.LoadInt64(&totalRequests)
}

func GetTotalErrorCount() int64 {
	return atomic.LoadInt64(&totalErrors)
}

// observePoll records one poll outcome. result is ok, error, suppressed, rejected or stale.
func observePoll(kind, result string, started time.Time) {
	pollTotal.WithLabelValues(kind, result).Inc()
	if !started.IsZero() {
		pollDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
	}
}

func observeCommand(command string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	commandTotal.WithLabelValues(command, result).Inc()
}

/**
 * Push all registered metrics to a Prometheus pushgateway
 * @param {string} addr - Pushgateway address
 * @returns {error} Push error
 */
func PushMetrics(addr string) error {
	if err := push.New(addr, "tunnel_dashboard").Gatherer(prometheus.DefaultGatherer).Push(); err != nil {
		return fmt.Errorf("push metrics to %s: %w", addr, err)
	}
	return nil
}

/**
 * Periodically push metrics until ctx is done
 * @param {context.Context} ctx - Stops the loop
 * @param {string} addr - Pushgateway address, empty disables pushing
 * @param {time.Duration} interval - Push period
 */
func StartReportMetrics(ctx context.Context, addr string, interval time.Duration) {
	if addr == "" || interval <= 0 {
		logger.Info("Metrics pushing is disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := PushMetrics(addr); err != nil {
				logger.Errorf("Metrics reporting error: %v", err)
			}
		}
	}
}
