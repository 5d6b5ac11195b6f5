package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Logger is the minimal logging surface the middleware needs.
type Logger interface {
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// Prometheus instruments a gin engine with request count and duration
// metrics and serves /metrics on a dedicated listener.
type Prometheus struct {
	reqCnt *prometheus.CounterVec
	reqDur *prometheus.HistogramVec

	registry   *prometheus.Registry
	listenAddr string
	urlMapping func(c *gin.Context) string
	logger     Logger
}

type NewPrometheusOptions struct {
	Subsystem string
	// ReqCntURLLabelMappingFn maps a request to the url label value.
	// Defaults to gin's FullPath to keep label cardinality bounded.
	ReqCntURLLabelMappingFn func(c *gin.Context) string
	Logger                  Logger
}

func NewPrometheus(opts NewPrometheusOptions) *Prometheus {
	subsystem := opts.Subsystem
	if subsystem == "" {
		subsystem = "http"
	}
	urlMapping := opts.ReqCntURLLabelMappingFn
	if urlMapping == nil {
		urlMapping = func(c *gin.Context) string { return c.FullPath() }
	}

	p := &Prometheus{
		reqCnt: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Subsystem: subsystem,
				Name:      "req_total",
				Help:      "How many HTTP requests processed, partitioned by status code, method and url.",
			},
			[]string{"code", "method", "url"},
		),
		reqDur: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Subsystem: subsystem,
				Name:      "req_dur_ms",
				Help:      "The HTTP request latencies in milliseconds.",
				Buckets:   HistogramBuckets,
			},
			[]string{"code", "method", "url"},
		),
		registry:   prometheus.NewRegistry(),
		urlMapping: urlMapping,
		logger:     opts.Logger,
	}
	p.registry.MustRegister(p.reqCnt, p.reqDur)
	return p
}

// SetListenAddress configures a dedicated metrics listener address.
func (p *Prometheus) SetListenAddress(addr string) {
	p.listenAddr = addr
}

// Use attaches the instrumentation middleware and starts the metrics
// listener if one was configured.
func (p *Prometheus) Use(r *gin.Engine) {
	r.Use(p.handlerFunc())
	if p.listenAddr != "" {
		go p.runListener()
	}
}

func (p *Prometheus) handlerFunc() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		code := strconv.Itoa(c.Writer.Status())
		url := p.urlMapping(c)
		elapsed := float64(time.Since(start).Milliseconds())

		p.reqCnt.WithLabelValues(code, c.Request.Method, url).Inc()
		p.reqDur.WithLabelValues(code, c.Request.Method, url).Observe(elapsed)
	}
}

func (p *Prometheus) runListener() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: p.listenAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && p.logger != nil {
		p.logger.Errorf("metrics listener error: %v", err)
	}
}
