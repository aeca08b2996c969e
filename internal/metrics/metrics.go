package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BotUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lmsbot", Name: "updates_total", Help: "Processed telegram updates",
	})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lmsbot", Name: "handler_errors_total", Help: "Handler errors",
	})
	APIRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lmsbot", Name: "api_requests_total", Help: "LMS backend requests by method and status class",
	}, []string{"method", "status"})
	APILatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lmsbot", Name: "api_request_seconds", Help: "LMS backend request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	SessionsExpired = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lmsbot", Name: "sessions_expired_total", Help: "Sessions torn down after 401",
	})
	Logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lmsbot", Name: "logins_total", Help: "Login attempts by result",
	}, []string{"result"})
	StaleViews = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lmsbot", Name: "stale_views_total", Help: "Superseded view responses discarded",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "lmsbot", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(BotUpdates, HandlerErrors, APIRequests, APILatency,
		SessionsExpired, Logins, StaleViews, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

// ObserveAPI — учёт одного обращения к бэкенду; status=0 означает сетевую ошибку.
func ObserveAPI(method string, status int, d time.Duration) {
	APIRequests.WithLabelValues(method, statusClass(status)).Inc()
	APILatency.WithLabelValues(method).Observe(d.Seconds())
}

func statusClass(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
