package httpx

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Kinrany/mortal-treasures/internal/app"
	"github.com/Kinrany/mortal-treasures/internal/ws"
	"github.com/Kinrany/mortal-treasures/pkg/metrics"
)

// NewRouter wires up all HTTP routes, middleware, and handlers
func NewRouter(cfg app.Config, logger *slog.Logger, session *ws.Handler) http.Handler {
	mw := NewMiddleware(cfg)

	mux := http.NewServeMux()

	// Health / readiness / metrics
	mux.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/readyz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/metrics", metrics.Handler())

	// WebSocket endpoint
	mux.Handle("/ws", http.HandlerFunc(session.ServeWS))

	// Browser client assets, with a plain-text fallback for unknown paths
	mux.Handle("/", staticHandler(cfg.StaticDir, logger))

	return mw.Wrap(mux)
}

// staticHandler serves files from dir and answers anything else with
// dir/not_found.txt and a 404.
func staticHandler(dir string, logger *slog.Logger) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if p == "/" {
			p = "/index.html"
		}
		full := filepath.Join(dir, filepath.Clean(p))
		if info, err := os.Stat(full); err == nil && !info.IsDir() {
			fs.ServeHTTP(w, r)
			return
		}
		logger.Debug("static.miss", "path", r.URL.Path)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		if body, err := os.ReadFile(filepath.Join(dir, "not_found.txt")); err == nil {
			_, _ = w.Write(body)
			return
		}
		_, _ = w.Write([]byte("not found"))
	})
}
