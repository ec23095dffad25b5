package handler

import (
	"io"
	"net/http"

	"github.com/AccelByte/extend-resolve-challenge/pkg/service"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// RouterConfig configures the HTTP router.
type RouterConfig struct {
	AllowedOrigins []string
	// AccessLog receives Apache combined log lines. Nil disables them.
	AccessLog io.Writer
	// Limiter is optional.
	Limiter *RateLimiter
	Health  *service.HealthChecker
}

// NewRouter assembles the API with its middleware.
func NewRouter(api *API, cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	if cfg.Health != nil {
		r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
			if err := cfg.Health.Check(req.Context()); err != nil {
				respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
			respondWithJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
		}).Methods("GET")
	}

	apiRouter := r.PathPrefix("/").Subrouter()
	if cfg.Limiter != nil {
		apiRouter.Use(cfg.Limiter.Middleware)
	}
	apiRouter.Use(MonitorMiddleware)
	api.Register(apiRouter)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(origins),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
	)

	var handler http.Handler = corsHandler(r)
	if cfg.AccessLog != nil {
		handler = gorillaHandlers.CombinedLoggingHandler(cfg.AccessLog, handler)
	}
	return gorillaHandlers.RecoveryHandler(
		gorillaHandlers.RecoveryLogger(logrus.StandardLogger()),
		gorillaHandlers.PrintRecoveryStack(true),
	)(handler)
}
