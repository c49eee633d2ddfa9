// Package metrics expone los contadores Prometheus del servicio.
package metrics

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/userhub/internal/cache"
)

// Auth events.
const (
	EventRegister = "register"
	EventActivate = "activate"
	EventLogin    = "login"
	EventRefresh  = "refresh"
	EventLogout   = "logout"
	EventSocial   = "social"
)

// Recorder agrupa los collectors. Un *Recorder nil es válido y no hace nada.
type Recorder struct {
	gatherer prometheus.Gatherer

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        prometheus.Gauge
	authEventsTotal     *prometheus.CounterVec
}

// New registra los collectors en reg. Con reg nil usa un registry propio.
func New(reg *prometheus.Registry) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	r := &Recorder{
		gatherer: reg,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo",
		}),
		authEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_events_total",
			Help: "Eventos de autenticación por resultado",
		}, []string{"event", "result"}), // result: ok|fail
	}

	for _, c := range []prometheus.Collector{
		r.httpRequestsTotal,
		r.httpRequestDuration,
		r.httpInflight,
		r.authEventsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := registerCollector(reg, c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// RegisterDB agrega las estadísticas del pool SQL.
func (r *Recorder) RegisterDB(db *sql.DB, name string) error {
	if r == nil || db == nil {
		return nil
	}
	reg, ok := r.gatherer.(prometheus.Registerer)
	if !ok {
		return nil
	}
	return registerCollector(reg, collectors.NewDBStatsCollector(db, name))
}

// CacheStats es lo que necesita el collector del cache.
type CacheStats interface {
	Stats(ctx context.Context) (cache.Stats, error)
}

// RegisterCache expone keys, hits y misses del cache en cada scrape.
func (r *Recorder) RegisterCache(src CacheStats) error {
	if r == nil || src == nil {
		return nil
	}
	reg, ok := r.gatherer.(prometheus.Registerer)
	if !ok {
		return nil
	}
	return registerCollector(reg, newCacheCollector(src))
}

// Handler sirve /metrics.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

// ObserveRequest registra un request terminado.
func (r *Recorder) ObserveRequest(method, route string, status int, dur time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpRequestDuration.WithLabelValues(method, route).Observe(dur.Seconds())
}

// Inflight ajusta el gauge de requests en vuelo.
func (r *Recorder) Inflight(delta float64) {
	if r == nil {
		return
	}
	r.httpInflight.Add(delta)
}

// AuthEvent cuenta un evento de auth.
func (r *Recorder) AuthEvent(event string, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "fail"
	}
	r.authEventsTotal.WithLabelValues(event, result).Inc()
}

func registerCollector(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return err
	}
	return nil
}

const cacheScrapeTimeout = 2 * time.Second

type cacheCollector struct {
	src    CacheStats
	keys   *prometheus.Desc
	hits   *prometheus.Desc
	misses *prometheus.Desc
}

func newCacheCollector(src CacheStats) *cacheCollector {
	labels := []string{"driver"}
	return &cacheCollector{
		src:    src,
		keys:   prometheus.NewDesc("cache_keys", "Keys almacenadas en el cache", labels, nil),
		hits:   prometheus.NewDesc("cache_hits_total", "Lecturas con hit", labels, nil),
		misses: prometheus.NewDesc("cache_misses_total", "Lecturas sin hit", labels, nil),
	}
}

func (c *cacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
	ch <- c.hits
	ch <- c.misses
}

// Collect omite las métricas si el backend no responde.
func (c *cacheCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheScrapeTimeout)
	defer cancel()
	st, err := c.src.Stats(ctx)
	if err != nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(st.Keys), st.Driver)
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(st.Hits), st.Driver)
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(st.Misses), st.Driver)
}
