package sessions

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/doorstep/internal/booking"
	"github.com/wolfman30/doorstep/internal/catalog"
	"github.com/wolfman30/doorstep/pkg/logging"
)

// Handler serves the customer booking API.
type Handler struct {
	manager *Manager
	logger  *logging.Logger
}

// NewHandler creates a booking session handler.
func NewHandler(manager *Manager, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{manager: manager, logger: logger}
}

// CatalogRoutes mounts under /api/catalogs.
func (h *Handler) CatalogRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListCatalogs)
	r.Get("/{category}", h.GetCatalog)
	return r
}

// SessionRoutes mounts under /api/sessions.
func (h *Handler) SessionRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateSession)
	r.Route("/{sessionID}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.CloseSession)
		r.Post("/selection/{offeringID}", h.ToggleOffering)
		r.Put("/schedule", h.UpdateSchedule)
		r.Post("/submit", h.Submit)
	})
	return r
}

// ListCatalogs handles GET /api/catalogs.
func (h *Handler) ListCatalogs(w http.ResponseWriter, r *http.Request) {
	provider := h.manager.Catalogs()
	cats := provider.Categories()
	out := make([]CatalogView, 0, len(cats))
	for _, cat := range cats {
		c, err := provider.Catalog(cat.ID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		out = append(out, CatalogView{Category: cat, Offerings: c.Offerings()})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetCatalog handles GET /api/catalogs/{category}.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "category")
	provider := h.manager.Catalogs()
	cat, err := provider.Category(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := provider.Catalog(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CatalogView{Category: cat, Offerings: c.Offerings()})
}

type createSessionRequest struct {
	Category string `json:"category"`
}

// CreateSession handles POST /api/sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Category == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}
	sess, err := h.manager.Create(r.Context(), req.Category)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionView(sess))
}

// GetSession handles GET /api/sessions/{sessionID}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.manager.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(sess))
}

// ToggleOffering handles POST /api/sessions/{sessionID}/selection/{offeringID}.
func (h *Handler) ToggleOffering(w http.ResponseWriter, r *http.Request) {
	offeringID, err := strconv.Atoi(chi.URLParam(r, "offeringID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "offering id must be an integer")
		return
	}
	sess, _, err := h.manager.Toggle(r.Context(), chi.URLParam(r, "sessionID"), offeringID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(sess))
}

// UpdateSchedule handles PUT /api/sessions/{sessionID}/schedule.
func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var in ScheduleInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, err := h.manager.UpdateSchedule(r.Context(), chi.URLParam(r, "sessionID"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(sess))
}

// Submit handles POST /api/sessions/{sessionID}/submit. Accepted answers
// 200, Rejected 422 and TransportFailure 502.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	out, err := h.manager.Submit(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	status := http.StatusOK
	switch out.Kind {
	case booking.OutcomeRejected:
		status = http.StatusUnprocessableEntity
	case booking.OutcomeTransportFailure:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, newOutcomeView(out))
}

// CloseSession handles DELETE /api/sessions/{sessionID}.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Close(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, catalog.ErrUnknownCategory),
		errors.Is(err, booking.ErrInvalidOfferingID):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrSubmissionInFlight):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidDate),
		errors.Is(err, booking.ErrPastDate),
		errors.Is(err, booking.ErrUnknownSlot),
		errors.Is(err, booking.ErrInvalidTime):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("booking session request failed", "path", r.URL.Path, "error", err)
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
