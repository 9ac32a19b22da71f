package httpx

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/hillstay/hillstay/internal/errors"
)

const msgInternal = "An error occurred. Please try again."

// StatusForError maps an application error code to an HTTP status.
func StatusForError(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeInvalidArgument, apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotAuthenticated:
		return http.StatusUnauthorized
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeConflict, apperrors.ErrCodeBusy:
		return http.StatusConflict
	case apperrors.ErrCodeRemoteRead, apperrors.ErrCodeRemoteWrite:
		return http.StatusBadGateway
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusInternalServerError
	}
}

// WriteAppError renders err as a JSON error. Only AppError messages reach the client;
// anything else is reported as a generic internal error.
func WriteAppError(w http.ResponseWriter, err error) {
	status := StatusForError(err)
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		WriteJSON(w, status, errorBody{Error: string(apperrors.ErrCodeInternal), Message: msgInternal})
		return
	}
	WriteJSON(w, status, errorBody{Error: string(appErr.Code), Message: appErr.Message, Field: appErr.Field})
}
