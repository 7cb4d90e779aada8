package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/doorstep/internal/booking"
	"github.com/wolfman30/doorstep/internal/bookingapi"
	"github.com/wolfman30/doorstep/internal/bookingservice"
	"github.com/wolfman30/doorstep/internal/catalog"
	httpmiddleware "github.com/wolfman30/doorstep/internal/http/middleware"
	"github.com/wolfman30/doorstep/internal/identity"
	"github.com/wolfman30/doorstep/internal/observability/metrics"
	"github.com/wolfman30/doorstep/internal/sessions"
	"github.com/wolfman30/doorstep/internal/technician"
	"github.com/wolfman30/doorstep/pkg/logging"
)

// newTestRouter wires the API against an in-process Booking Service.
func newTestRouter(t *testing.T, limiter *httpmiddleware.RateLimiter) http.Handler {
	t.Helper()
	logger := logging.Discard()

	svc := bookingservice.NewService(bookingservice.NewInMemoryRepository(), logger)
	backend := chi.NewRouter()
	backend.Mount("/api", bookingservice.NewHandler(svc, logger).Routes())
	upstream := httptest.NewServer(backend)
	t.Cleanup(upstream.Close)

	client := bookingapi.NewClient(upstream.URL, bookingapi.WithLogger(logger))
	reg := prometheus.NewRegistry()
	manager, err := sessions.NewManager(sessions.Config{
		Store:     sessions.NewMemoryStore(time.Hour, time.Minute),
		Catalogs:  catalog.NewStaticProvider(),
		Submitter: booking.NewSubmitter(client, booking.WithLogger(logger), booking.WithRequestIDs()),
		Metrics:   metrics.NewBookingMetrics(reg),
		Logger:    logger,
	})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	return New(&Config{
		Logger:             logger,
		SessionsHandler:    sessions.NewHandler(manager, logger),
		TechnicianHandler:  technician.NewHandler(technician.NewService(client, logger), logger),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: []string{"https://app.example.com"},
		RateLimiter:        limiter,
	})
}

func do(t *testing.T, h http.Handler, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := do(t, router, http.MethodGet, "/health", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterBookingFlow(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := do(t, router, http.MethodPost, "/api/sessions", `{"category":"salon"}`, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create session: status %d body %s", rr.Code, rr.Body.String())
	}
	var view sessions.SessionView
	if err := json.NewDecoder(rr.Body).Decode(&view); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	base := "/api/sessions/" + view.ID

	for _, id := range []string{"1", "2"} {
		if rr := do(t, router, http.MethodPost, base+"/selection/"+id, "", nil); rr.Code != http.StatusOK {
			t.Fatalf("toggle %s: status %d body %s", id, rr.Code, rr.Body.String())
		}
	}

	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	schedule := `{"date":"` + tomorrow + `","time":"10:30","address":"221B Baker Street"}`
	rr = do(t, router, http.MethodPut, base+"/schedule", schedule, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("schedule: status %d body %s", rr.Code, rr.Body.String())
	}

	rr = do(t, router, http.MethodPost, base+"/submit", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("submit: status %d body %s", rr.Code, rr.Body.String())
	}
	var out sessions.OutcomeView
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode outcome: %v", err)
	}
	if out.Outcome != booking.OutcomeAccepted || out.Message != booking.MsgAccepted {
		t.Fatalf("unexpected outcome: %+v", out)
	}

	// accepted sessions are closed
	if rr := do(t, router, http.MethodGet, base, "", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected closed session to 404, got %d", rr.Code)
	}
}

func TestRouterTechnicianRequiresIdentity(t *testing.T) {
	router := newTestRouter(t, nil)

	if rr := do(t, router, http.MethodGet, "/api/technician/profile", "", nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rr.Code)
	}

	rr := do(t, router, http.MethodGet, "/api/technician/profile", "", http.Header{identity.HeaderTechnicianID: {"tech-1"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with identity, got %d body %s", rr.Code, rr.Body.String())
	}
	var p technician.Profile
	if err := json.NewDecoder(rr.Body).Decode(&p); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if p.Availability != technician.Available {
		t.Fatalf("expected default availability, got %q", p.Availability)
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := do(t, router, http.MethodOptions, "/api/sessions", "", http.Header{
		"Origin":                        {"https://app.example.com"},
		"Access-Control-Request-Method": {"POST"},
	})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func TestRouterRateLimitsAPI(t *testing.T) {
	router := newTestRouter(t, httpmiddleware.NewRateLimiter(1, 1))

	if rr := do(t, router, http.MethodGet, "/api/catalogs", "", nil); rr.Code != http.StatusOK {
		t.Fatalf("first request: status %d", rr.Code)
	}
	if rr := do(t, router, http.MethodGet, "/api/catalogs", "", nil); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rr.Code)
	}
	if rr := do(t, router, http.MethodGet, "/health", "", nil); rr.Code != http.StatusOK {
		t.Fatalf("health is not limited, got %d", rr.Code)
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)
	do(t, router, http.MethodPost, "/api/sessions", `{"category":"salon"}`, nil)

	rr := do(t, router, http.MethodGet, "/metrics", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "doorstep_booking_sessions_active") {
		t.Fatalf("expected sessions gauge to be exported")
	}
}
