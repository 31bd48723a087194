package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/tradepost/tradepost/internal/auth"
	"github.com/tradepost/tradepost/internal/domain/catalog"
	"github.com/tradepost/tradepost/internal/domain/user"
)

// envelope is the JSON shape of every API response.
type envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func respond(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Success: status < 400,
		Message: message,
		Data:    data,
	})
}

// respondError maps a typed domain failure to its transport status. Unknown
// errors are logged server-side and surface as a generic 500; internals
// never leak to the caller.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *catalog.ValidationError
	switch {
	case errors.As(err, &ve):
		writeErrorEnvelope(w, http.StatusBadRequest, "validation failed", ve.Fields)
	case errors.Is(err, auth.ErrUnauthenticated):
		writeErrorEnvelope(w, http.StatusUnauthorized, "authentication required", nil)
	case errors.Is(err, catalog.ErrForbidden):
		writeErrorEnvelope(w, http.StatusForbidden, "you do not own this product", nil)
	case errors.Is(err, catalog.ErrNotFound):
		writeErrorEnvelope(w, http.StatusNotFound, "product not found", nil)
	case errors.Is(err, user.ErrNotFound):
		writeErrorEnvelope(w, http.StatusNotFound, "user not found", nil)
	default:
		span := trace.SpanFromContext(r.Context())
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeErrorEnvelope(w, http.StatusInternalServerError, "internal error", nil)
	}
}

func writeErrorEnvelope(w http.ResponseWriter, status int, message string, fields []string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Success: false,
		Message: message,
		Errors:  fields,
	})
}

// decodeStrict decodes a JSON body, rejecting unknown fields and trailing
// garbage so malformed shapes fail before any business logic runs.
func decodeStrict(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &catalog.ValidationError{Fields: []string{"request body is not valid JSON for this endpoint"}}
	}
	if dec.More() {
		return &catalog.ValidationError{Fields: []string{"request body must contain a single JSON object"}}
	}
	_, _ = io.Copy(io.Discard, r.Body)
	return nil
}

// identity pulls the resolved identity out of the request context. Handlers
// behind the auth middleware always find one; its absence is an internal
// wiring error surfaced as a 401 to stay safe.
func identity(r *http.Request) (*auth.Identity, error) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return nil, auth.ErrCredentialMissing
	}
	return id, nil
}
