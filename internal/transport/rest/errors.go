package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
	"github.com/heartmarshall/eduprompt-backend/pkg/ctxutil"
)

// Error codes returned in the "code" field of every error body.
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeAuthorization = "AUTHORIZATION_ERROR"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeStorage       = "STORAGE_ERROR"
	CodeBackupFailed  = "BACKUP_FAILED"
	CodeInternal      = "INTERNAL_ERROR"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// FieldErrorResponse is one entry of a validation error's details.
type FieldErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// classify maps an error onto the status, code and public message.
// Messages of 5xx errors are fixed strings.
func classify(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		resp := ErrorResponse{Error: "validation failed", Code: CodeValidation}
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			details := make([]FieldErrorResponse, 0, len(ve.Errors))
			for _, fe := range ve.Errors {
				details = append(details, FieldErrorResponse{Field: fe.Field, Message: fe.Message})
			}
			resp.Details = details
		}
		return http.StatusBadRequest, resp
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: CodeUnauthorized}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Error: "admin access required", Code: CodeAuthorization}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: CodeNotFound}
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Code: CodeConflict}
	case errors.Is(err, domain.ErrBackupFailed):
		return http.StatusInternalServerError, ErrorResponse{Error: "backup failed", Code: CodeBackupFailed}
	case errors.Is(err, domain.ErrStorage):
		return http.StatusInternalServerError, ErrorResponse{Error: "storage error", Code: CodeStorage}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: CodeInternal}
	}
}

// respondError writes the error body. Server-side failures are logged with the
// request id; the original message never reaches the client.
func respondError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, resp := classify(err)
	if status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.String("code", resp.Code),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", ctxutil.RequestIDFromCtx(r.Context())),
		)
	}
	writeJSON(w, status, resp)
}
