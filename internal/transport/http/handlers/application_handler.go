package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	appsvc "github.com/upskillhq/backend/internal/services/applications"
	authsvc "github.com/upskillhq/backend/internal/services/auth"
	"github.com/upskillhq/backend/internal/transport/http/dto"
	httperrors "github.com/upskillhq/backend/internal/transport/http/errors"
)

type ApplicationHandler struct {
	applications *appsvc.Service
}

func NewApplicationHandler(applications *appsvc.Service) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.applications == nil {
		writeInternal(w, "APPLICATIONS_SERVICE_UNAVAILABLE", "applications service is unavailable")
		return
	}

	var req dto.ApplicationCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	result, err := h.applications.ApplyToJob(r.Context(), identity.AccountID, appsvc.ApplyInput{
		JobID:     chi.URLParam(r, "jobID"),
		Name:      req.Name,
		Email:     req.Email,
		Mobile:    req.Mobile,
		ResumeURL: req.ResumeURL,
		Responses: req.Responses,
	})
	if err != nil {
		switch {
		case errors.Is(err, appsvc.ErrMissingFields):
			writeBadRequest(w, "MISSING_FIELDS", "name, email, mobile and resume_url are required")
		case errors.Is(err, appsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid application payload")
		case errors.Is(err, appsvc.ErrJobNotFound):
			writeNotFound(w, "JOB_NOT_FOUND", "job not found")
		case errors.Is(err, appsvc.ErrJobClosed):
			writeConflict(w, "JOB_CLOSED", "job is no longer accepting applications")
		case errors.Is(err, appsvc.ErrAlreadyApplied):
			writeConflict(w, "ALREADY_APPLIED", "already applied to this job")
		case errors.Is(err, appsvc.ErrNoActivePackage):
			writeConflict(w, "NO_ACTIVE_PACKAGE", "no active job package")
		case errors.Is(err, appsvc.ErrInsufficientCredits):
			writeConflict(w, "INSUFFICIENT_CREDITS", "no application credits remaining")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to apply to job")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ApplicationCreateResponse{
		ApplicationID:    result.ApplicationID,
		JobID:            result.JobID,
		CreditsRemaining: result.CreditsRemaining,
		ApplicantsCount:  result.ApplicantsCount,
	})
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.applications == nil {
		writeInternal(w, "APPLICATIONS_SERVICE_UNAVAILABLE", "applications service is unavailable")
		return
	}

	summaries, err := h.applications.ListApplications(r.Context(), identity.AccountID)
	if err != nil {
		switch {
		case errors.Is(err, appsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid list request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to list applications")
		}
		return
	}

	items := make([]dto.ApplicationListItem, 0, len(summaries))
	for _, summary := range summaries {
		items = append(items, dto.ApplicationListItem{
			ApplicationID: summary.ApplicationID,
			JobID:         summary.JobID,
			Status:        string(summary.Status),
			AppliedAt:     summary.AppliedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.ApplicationListResponse{Applications: items})
}
