package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/trivia-api/internal/api"
	"github.com/gokatarajesh/trivia-api/internal/config"
	"github.com/gokatarajesh/trivia-api/internal/logging"
	httperrors "github.com/gokatarajesh/trivia-api/pkg/http/errors"
	ws "github.com/gokatarajesh/trivia-api/pkg/http/ws"
)

const readinessTimeout = 2 * time.Second

// ReadinessCheck pings one upstream dependency.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Dependencies are the handlers and collaborators the HTTP server routes to.
type Dependencies struct {
	Questions *api.HTTPHandlers
	Hub       *ws.Hub
	Gatherer  prometheus.Gatherer
	Observe   logging.RequestObserver
	Ready     []ReadinessCheck
}

// NewHTTPServer wires the question bank routes plus health, metrics and the
// live question feed.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, deps Dependencies) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("GET /readyz", readyHandler(deps.Ready))

	if deps.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	if deps.Questions != nil {
		deps.Questions.Mount(mux)
		for _, path := range api.Paths() {
			mux.HandleFunc(path, methodNotAllowed)
		}
	}

	if deps.Hub != nil {
		mux.HandleFunc("GET /ws/questions", feedHandler(deps.Hub, newUpgrader(cfg.CORS.AllowedOrigins), logger))
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		httperrors.RespondNotFound(w, httperrors.MsgNotFound)
	})

	var handler http.Handler = mux
	handler = CORS(cfg.CORS)(handler)
	handler = logging.Middleware(logger, deps.Observe)(handler)
	handler = Recover(logger)(handler)

	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeMethodNotAllowed, httperrors.MsgMethodNotAllowed)
}

func readyHandler(checks []ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := make(map[string]string, len(checks))
		healthy := true
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				logger := logging.FromContext(r.Context())
				logger.Warn().Err(err).Str("dependency", c.Name).Msg("readiness check failed")
				status[c.Name] = "unavailable"
				healthy = false
				continue
			}
			status[c.Name] = "ok"
		}

		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ready":        healthy,
			"dependencies": status,
		})
	}
}

func newUpgrader(allowedOrigins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || originAllowed(allowedOrigins, origin)
		},
	}
}

// feedHandler upgrades the connection and keeps it subscribed to question
// events until the client goes away.
func feedHandler(hub *ws.Hub, upgrader *websocket.Upgrader, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			reqLogger := logging.FromContext(r.Context())
			reqLogger.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}
		conn := ws.NewConnection(raw, logger)
		id := hub.Register(conn)
		defer hub.Unregister(id)

		go conn.WritePump()
		conn.ReadPump()
	}
}
