package server

import (
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/cjrt007/Tornado.Ai/auth"
	"github.com/cjrt007/Tornado.Ai/health"
	"github.com/cjrt007/Tornado.Ai/observe"
	"github.com/cjrt007/Tornado.Ai/scm"
	"github.com/cjrt007/Tornado.Ai/tools"
)

var (
	ErrNilManager    = errors.New("server: manager is nil")
	ErrNilDispatcher = errors.New("server: dispatcher is nil")
)

// maxBodyBytes bounds request bodies on the JSON endpoints.
const maxBodyBytes = 1 << 20

// Deps are the collaborators served by the API. Manager and Dispatcher are
// required; everything else has a default.
type Deps struct {
	Manager    *scm.Manager[tools.ExecutionResult]
	Dispatcher *tools.Dispatcher

	// Authenticator defaults to an anonymous admin identity.
	Authenticator auth.Authenticator

	// RBAC defaults to auth.DefaultRoles.
	RBAC *auth.RBAC

	// Health defaults to an aggregator with a single cache checker.
	Health *health.Aggregator

	Logger observe.Logger
	Tracer trace.Tracer

	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler

	// CORS allows any origin, matching a dashboard served from elsewhere.
	CORS bool
}

type api struct {
	manager    *scm.Manager[tools.ExecutionResult]
	dispatcher *tools.Dispatcher
	logger     observe.Logger
}

// New builds the API handler.
func New(d Deps) (http.Handler, error) {
	if d.Manager == nil {
		return nil, ErrNilManager
	}
	if d.Dispatcher == nil {
		return nil, ErrNilDispatcher
	}
	if d.Authenticator == nil {
		d.Authenticator = auth.NewAnonymousAuthenticator()
	}
	if d.RBAC == nil {
		d.RBAC = auth.NewRBAC(nil)
	}
	if d.Health == nil {
		d.Health = health.NewAggregator()
		d.Health.Register(health.NewCacheChecker(d.Manager, health.CacheCheckerConfig{}))
	}
	if d.Logger == nil {
		d.Logger = observe.NopLogger()
	}
	if d.Tracer == nil {
		d.Tracer = noop.NewTracerProvider().Tracer("server")
	}

	a := &api{manager: d.Manager, dispatcher: d.Dispatcher, logger: d.Logger}
	guard := func(perm auth.Permission, h http.HandlerFunc) http.Handler {
		return auth.Middleware(d.Authenticator, d.RBAC, perm)(h)
	}

	mux := http.NewServeMux()
	mux.Handle("POST /api/command", guard(auth.PermExecuteTools, a.command))
	mux.Handle("GET /api/tools", guard(auth.PermViewDashboards, a.listTools))
	mux.Handle("GET /api/cache/stats", guard(auth.PermViewDashboards, a.cacheStats))
	mux.Handle("POST /api/cache/invalidate", guard(auth.PermConfigureSystem, a.invalidate))
	health.RegisterHandlers(mux, d.Health, d.Manager)
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics)
	}

	var h http.Handler = mux
	if d.CORS {
		h = cors(h)
	}
	return observe.NewHTTPMiddleware(d.Tracer, d.Logger).Wrap(h), nil
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
