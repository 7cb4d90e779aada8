package bookingservice

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/doorstep/internal/technician"
	"github.com/wolfman30/doorstep/pkg/logging"
)

const (
	idempotencyHeader = "Idempotency-Key"
	maxBodyBytes      = 1 << 20
)

// Handler serves the Booking Service HTTP API.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts under /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/appointments", h.CreateAppointment)
	r.Get("/earnings/history/{technicianID}", h.EarningsHistory)
	r.Post("/earnings/add", h.AddEarning)
	r.Post("/profile/createOrFetch", h.CreateOrFetchProfile)
	r.Put("/profile/{id}", h.UpdateProfile)
	return r
}

// CreateAppointment handles POST /api/appointments. Replays answer 200, new
// appointments 201.
func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var in AppointmentInput
	if !h.decode(w, r, &in) {
		return
	}
	key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
	appt, replay, err := h.svc.CreateAppointment(r.Context(), in, key)
	if err != nil {
		h.fail(w, err)
		return
	}
	status := http.StatusCreated
	if replay {
		status = http.StatusOK
	}
	writeJSON(w, status, appt)
}

func (h *Handler) EarningsHistory(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.EarningsHistory(r.Context(), chi.URLParam(r, "technicianID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *Handler) AddEarning(w http.ResponseWriter, r *http.Request) {
	var in EarningInput
	if !h.decode(w, r, &in) {
		return
	}
	job, err := h.svc.AddEarning(r.Context(), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

func (h *Handler) CreateOrFetchProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.CreateOrFetchProfile(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var p technician.Profile
	if !h.decode(w, r, &p) {
		return
	}
	saved, err := h.svc.UpdateProfile(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil {
		writeError(w, http.StatusBadRequest, "request body required")
		return false
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	var reqErr *RequestError
	switch {
	case errors.As(err, &reqErr):
		writeError(w, reqErr.Status, reqErr.Message)
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		h.logger.Error("booking service request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
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
