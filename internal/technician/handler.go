package technician

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/doorstep/internal/identity"
	"github.com/wolfman30/doorstep/pkg/logging"
)

// Handler serves the technician panel API.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates a technician handler.
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts under /api/technician. Every route requires a technician
// identity in the request context.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requireTechnician)
	r.Get("/profile", h.GetProfile)
	r.Put("/profile", h.UpdateProfile)
	r.Post("/profile/availability", h.ToggleAvailability)
	r.Get("/earnings", h.GetEarnings)
	r.Post("/earnings", h.AddEarning)
	return r
}

func requireTechnician(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := identity.TechnicianIDFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "missing technician identity")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetProfile handles GET /profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Profile(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateProfile handles PUT /profile.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var p Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	saved, err := h.svc.SaveProfile(r.Context(), p)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// ToggleAvailability handles POST /profile/availability.
func (h *Handler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.ToggleAvailability(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetEarnings handles GET /earnings.
func (h *Handler) GetEarnings(w http.ResponseWriter, r *http.Request) {
	id, _ := identity.TechnicianIDFromContext(r.Context())
	sum, err := h.svc.Summary(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

type addEarningRequest struct {
	Job    string `json:"job"`
	Amount int    `json:"amount"`
	Date   string `json:"date"`
}

// AddEarning handles POST /earnings.
func (h *Handler) AddEarning(w http.ResponseWriter, r *http.Request) {
	var req addEarningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, _ := identity.TechnicianIDFromContext(r.Context())
	job := NewJob{TechnicianID: id, Job: req.Job, Amount: req.Amount}
	if req.Date != "" {
		d, err := ParseDay(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		job.Date = d
	}
	saved, err := h.svc.AddJob(r.Context(), job)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	var refused BackendError
	switch {
	case errors.Is(err, ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrProfileNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &refused) && refused.HTTPStatus() >= 400 && refused.HTTPStatus() < 500:
		msg := refused.RejectionReason()
		if msg == "" {
			msg = http.StatusText(refused.HTTPStatus())
		}
		h.logger.Warn("technician backend refused request", "status", refused.HTTPStatus(), "error", err)
		writeError(w, refused.HTTPStatus(), msg)
	default:
		h.logger.Error("technician backend call failed", "error", err)
		writeError(w, http.StatusBadGateway, "technician backend unavailable")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
