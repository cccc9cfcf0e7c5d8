// Package metrics exposes Prometheus collectors for the live notification
// pipeline. Collectors live on a private registry so tests and multiple apps
// do not collide on the default one.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/colonyops/beacon/internal/core/eventbus"
	"github.com/colonyops/beacon/internal/core/live"
)

const namespace = "beacon"

// Gauges reads current sizes straight from the stores.
type Gauges interface {
	Len() int
	UnreadCount() int
}

// Sized is anything with a current length.
type Sized interface {
	Len() int
}

// Metrics holds every collector.
type Metrics struct {
	Registry *prometheus.Registry

	eventsTotal   *prometheus.CounterVec
	prizeDollars  prometheus.Histogram
	notifyChanges *prometheus.CounterVec
	toastsRemoved *prometheus.CounterVec
	busDropped    *prometheus.CounterVec
	feedClients   prometheus.Gauge
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		eventsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_generated_total",
			Help:      "Live events produced by the generator.",
		}, []string{"kind", "category"}),
		prizeDollars: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lottery_prize_dollars",
			Help:      "Prize amounts of generated lottery events.",
			Buckets:   []float64{1_000, 2_500, 10_000, 25_000, 50_000, 100_000, 150_000},
		}),
		notifyChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_changes_total",
			Help:      "Notification log mutations by kind.",
		}, []string{"kind"}),
		toastsRemoved: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "toasts_removed_total",
			Help:      "Toasts leaving the stack by reason.",
		}, []string{"reason"}),
		busDropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eventbus_dropped_total",
			Help:      "Events dropped because the bus buffer was full.",
		}, []string{"event"}),
		feedClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_clients",
			Help:      "Connected websocket feed clients.",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// WatchStores registers gauges that sample the stores on scrape.
func (m *Metrics) WatchStores(notes Gauges, toasts Sized) {
	f := promauto.With(m.Registry)
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notifications_retained",
		Help:      "Entries currently held in the notification log.",
	}, func() float64 { return float64(notes.Len()) })
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notifications_unread",
		Help:      "Unread entries in the notification log.",
	}, func() float64 { return float64(notes.UnreadCount()) })
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "toasts_visible",
		Help:      "Toasts currently on the stack.",
	}, func() float64 { return float64(toasts.Len()) })
}

// Subscribe feeds counters from bus events.
func (m *Metrics) Subscribe(bus *eventbus.EventBus) {
	bus.SubscribeGeneratorFired(func(p eventbus.GeneratorFiredPayload) {
		m.ObserveEvent(p.Event)
	})
	bus.SubscribeNotificationChanged(func(p eventbus.NotificationChangedPayload) {
		m.notifyChanges.WithLabelValues(string(p.Kind)).Inc()
	})
	bus.SubscribeToastChanged(func(p eventbus.ToastChangedPayload) {
		if p.Reason != "" {
			m.toastsRemoved.WithLabelValues(string(p.Reason)).Inc()
		}
	})
	bus.OnDrop(func(e eventbus.Event, _ any) {
		m.busDropped.WithLabelValues(string(e)).Inc()
	})
}

// ObserveEvent records one generated event.
func (m *Metrics) ObserveEvent(ev live.Event) {
	m.eventsTotal.WithLabelValues(string(ev.Kind), string(ev.Category)).Inc()
	if ev.Kind == live.KindLottery {
		m.prizeDollars.Observe(ev.PrizeAmount)
	}
}

// SetFeedClients reports the websocket client count.
func (m *Metrics) SetFeedClients(n int) {
	m.feedClients.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Middleware counts and times gin requests by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		m.httpRequests.WithLabelValues(method, path, status).Inc()
		m.httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
