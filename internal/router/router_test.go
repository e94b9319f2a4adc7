package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"deckgen-backend/internal/config"
	"deckgen-backend/internal/handlers"
	"deckgen-backend/internal/services"
)

func newTestRouter() http.Handler {
	cfg := config.Load()
	deckHandler := handlers.NewDeckHandler(cfg, services.NewPlannerService(cfg), services.NewFileExtractService())
	return New(deckHandler, cfg)
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); body != `{"status":"ok"}` {
		t.Errorf("body = %q", body)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestOutlineRouteWired(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/decks/outline", strings.NewReader("text=Budget+review+for+the+quarter"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"source":"parser"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestUnknownRoute(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
