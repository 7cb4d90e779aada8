package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wolfman30/doorstep/internal/bookingservice"
	"github.com/wolfman30/doorstep/pkg/logging"
)

func TestNewRouterServesHealthAndAPI(t *testing.T) {
	svc := bookingservice.NewService(bookingservice.NewInMemoryRepository(), logging.Discard())
	h := newRouter(svc, nil, logging.Discard())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/profile/createOrFetch", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("createOrFetch: expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"availability":"Available"`) {
		t.Fatalf("unexpected profile body: %s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("metrics without handler: expected 404, got %d", rr.Code)
	}
}
