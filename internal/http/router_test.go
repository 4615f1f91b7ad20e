package httpx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Kinrany/mortal-treasures/internal/app"
	"github.com/Kinrany/mortal-treasures/internal/ws"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>home</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "not_found.txt"), []byte("Something went wrong..."), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := app.Config{
		Env:          "test",
		CORSAllow:    []string{"*"},
		StaticDir:    dir,
		RoomCapacity: 3,
		SendBuffer:   16,
		PingPeriod:   20 * time.Second,
		PongWait:     60 * time.Second,
		WriteWait:    10 * time.Second,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := ws.NewRegistry(cfg.RoomCapacity, logger)
	session := ws.NewHandler(logger, reg, cfg.SendBuffer, ws.Timings{
		PingPeriod: cfg.PingPeriod,
		PongWait:   cfg.PongWait,
		WriteWait:  cfg.WriteWait,
	})
	return NewRouter(cfg, logger, session)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "127.0.0.1:54321"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestRouter(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		if rec := get(t, h, path); rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t)
	rec := get(t, h, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "treasures_connections_total") {
		t.Error("metrics output missing session collectors")
	}
}

func TestStaticIndex(t *testing.T) {
	h := newTestRouter(t)
	rec := get(t, h, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "home") {
		t.Errorf("index body = %q", rec.Body.String())
	}
}

func TestStaticFallback(t *testing.T) {
	h := newTestRouter(t)
	rec := get(t, h, "/no/such/page")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET unknown path = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Something went wrong") {
		t.Errorf("fallback body = %q", rec.Body.String())
	}
}

func TestWSEndpointRejectsPlainRequest(t *testing.T) {
	h := newTestRouter(t)
	// No upgrade headers: the endpoint must refuse, not serve static.
	if rec := get(t, h, "/ws"); rec.Code == http.StatusOK {
		t.Errorf("plain GET /ws = %d, want an error status", rec.Code)
	}
}
