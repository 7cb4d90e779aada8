package identity

import "context"

type ctxKey string

const technicianKey ctxKey = "doorstep.technician_id"

// HeaderTechnicianID carries the opaque technician identity on inbound requests.
const HeaderTechnicianID = "X-Technician-Id"

// WithTechnicianID stores the technician id in context.
func WithTechnicianID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, technicianKey, id)
}

// TechnicianIDFromContext extracts the technician id if present.
func TechnicianIDFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(technicianKey)
	if val == nil {
		return "", false
	}
	id, ok := val.(string)
	return id, ok && id != ""
}
