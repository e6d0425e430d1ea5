package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/upskillhq/backend/internal/services/auth"
	classsvc "github.com/upskillhq/backend/internal/services/classes"
	"github.com/upskillhq/backend/internal/transport/http/dto"
	httperrors "github.com/upskillhq/backend/internal/transport/http/errors"
)

type ClassHandler struct {
	classes *classsvc.Service
}

func NewClassHandler(classes *classsvc.Service) *ClassHandler {
	return &ClassHandler{classes: classes}
}

func (h *ClassHandler) Join(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.classes == nil {
		writeInternal(w, "CLASSES_SERVICE_UNAVAILABLE", "classes service is unavailable")
		return
	}

	result, err := h.classes.JoinLiveClass(r.Context(), identity.AccountID, chi.URLParam(r, "classID"))
	if err != nil {
		switch {
		case errors.Is(err, classsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid join request")
		case errors.Is(err, classsvc.ErrClassNotFound):
			writeNotFound(w, "CLASS_NOT_FOUND", "class not found")
		case errors.Is(err, classsvc.ErrNotLiveNow):
			writeConflict(w, "CLASS_NOT_LIVE", "class is not live right now")
		case errors.Is(err, classsvc.ErrNoActivePackage):
			writeConflict(w, "NO_ACTIVE_PACKAGE", "no active course package")
		case errors.Is(err, classsvc.ErrInsufficientCredits):
			writeConflict(w, "NO_SESSIONS_REMAINING", "no live sessions remaining")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to join class")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ClassJoinResponse{
		ClassID:           result.ClassID,
		JoinURL:           result.JoinURL,
		SessionsRemaining: result.SessionsRemaining,
		EndsAt:            result.EndsAt,
	})
}
