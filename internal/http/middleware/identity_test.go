package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wolfman30/doorstep/internal/identity"
)

func TestIdentityMiddleware(t *testing.T) {
	var got string
	var ok bool
	h := Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = identity.TechnicianIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/technician/earnings", nil)
	req.Header.Set(identity.HeaderTechnicianID, " tech-3 ")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if !ok || got != "tech-3" {
		t.Fatalf("identity = (%q, %v), want (tech-3, true)", got, ok)
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if ok {
		t.Fatal("expected no identity without header")
	}
}
