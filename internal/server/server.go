package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ai-advisor/server/internal/advisor/graph"
	"github.com/ai-advisor/server/internal/health"
	"github.com/ai-advisor/server/internal/metrics"
	logx "github.com/ai-advisor/server/pkg/logger"
)

const defaultMaxBodyBytes = 1 << 20

// unmatchedRoute is the route label of requests no route matched.
const unmatchedRoute = "unmatched"

// Options wires the HTTP layer to its collaborators.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// CORSOrigins controls Access-Control-Allow-Origin; empty disables CORS.
	CORSOrigins  []string
	MaxBodyBytes int64

	// APIKeyConfigured is computed once at startup and served as-is.
	APIKeyConfigured bool

	// Advisor is nil when no model provider is configured.
	Advisor graph.Runner

	Checker   *health.Checker
	Readiness *health.ReadinessChecker
}

// New creates the HTTP server. Zero timeouts leave the fields unset.
func New(opts Options) *http.Server {
	return &http.Server{
		Addr:         opts.Addr,
		Handler:      NewRouter(opts),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  opts.IdleTimeout,
	}
}

// NewRouter returns the chi router serving the API, health and metrics endpoints.
func NewRouter(opts Options) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	if len(opts.CORSOrigins) > 0 {
		r.Use(corsMiddleware(opts.CORSOrigins))
	}

	if opts.Checker != nil {
		r.Get("/healthz", opts.Checker.ServeHTTP)
	}
	if opts.Readiness != nil {
		r.Get("/readyz", opts.Readiness.ServeHTTP)
	}
	r.Handle("/metrics", promhttp.Handler())

	r.Mount("/api", APIHandler(opts))
	return r
}

// requestLogger logs each request and counts it by route pattern and status.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()

		ev := logx.Debug()
		if status >= http.StatusInternalServerError {
			ev = logx.Warn()
		}
		ev.Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("route", route).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// corsMiddleware sets Access-Control-Allow-Origin for requests whose Origin
// header matches one of the allowed origins and answers preflight requests.
// The wildcard "*" matches every origin.
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(origins))
	allowAll := false
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if o == "*" {
			allowAll = true
			break
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allowAll {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else if origin != "" && allowed[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
