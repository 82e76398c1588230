package handler

import (
	"encoding/json"
	"net/http"

	"github.com/agilizaapp/web-menu-sub000/internal/domain"
	"github.com/agilizaapp/web-menu-sub000/internal/middleware"
	"github.com/agilizaapp/web-menu-sub000/internal/telemetry"
)

// RespondJSON writes a JSON response with the given status.
func RespondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// RespondError writes a structured JSON error. Validation errors carry the
// per-field messages so the client can annotate its form; everything else
// maps the domain code to a status and a safe message.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	status := middleware.ErrorCodeToHTTPStatus(code)
	logger := middleware.GetLogger(r.Context())

	if status >= 500 {
		logger.Error("request failed", "error", err, "code", code, "status", status)
		telemetry.CaptureError(err, map[string]interface{}{
			"path":   r.URL.Path,
			"method": r.Method,
		})
	} else {
		logger.Info("request rejected", "error", err, "code", code, "status", status)
	}

	payload := map[string]interface{}{
		"code":    code,
		"message": domain.ErrorMessage(err),
	}
	if fields := domain.GetValidationFields(err); len(fields) > 0 {
		payload["fields"] = fields
	}

	RespondJSON(w, status, map[string]interface{}{"error": payload})
}

// DecodeJSON decodes a request body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.Invalid("handler.decode", "Invalid request body")
	}
	return nil
}
