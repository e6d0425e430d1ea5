package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/upskillhq/backend/internal/services/auth"
	ledgersvc "github.com/upskillhq/backend/internal/services/ledger"
	"github.com/upskillhq/backend/internal/transport/http/dto"
	httperrors "github.com/upskillhq/backend/internal/transport/http/errors"
)

type PlanHandler struct {
	ledger *ledgersvc.Service
}

func NewPlanHandler(ledger *ledgersvc.Service) *PlanHandler {
	return &PlanHandler{ledger: ledger}
}

func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.ledger == nil {
		writeInternal(w, "LEDGER_SERVICE_UNAVAILABLE", "ledger service is unavailable")
		return
	}

	snapshot, err := h.ledger.CurrentPlan(r.Context(), identity.AccountID)
	if err != nil {
		switch {
		case errors.Is(err, ledgersvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid plan request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load current plan")
		}
		return
	}

	courses := make([]dto.PlanCourseItem, 0, len(snapshot.PurchasedCourses))
	for _, course := range snapshot.PurchasedCourses {
		courses = append(courses, dto.PlanCourseItem{
			PurchaseID:       course.PurchaseID,
			CourseType:       course.CourseType,
			TotalSessions:    course.TotalSessions,
			LiveSessions:     course.LiveSessions,
			RecordedSessions: course.RecordedSessions,
			PurchasedAt:      course.PurchasedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.PlanResponse{
		JobCredits:       snapshot.JobCredits,
		PurchasedCourses: courses,
	})
}
