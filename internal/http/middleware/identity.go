package middleware

import (
	"net/http"
	"strings"

	"github.com/wolfman30/doorstep/internal/identity"
)

// Identity copies the technician id header into the request context.
// Requests without the header pass through untouched.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(identity.HeaderTechnicianID))
		if id != "" {
			r = r.WithContext(identity.WithTechnicianID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
