package handlers

import (
	"errors"
	"net/http"

	"github.com/upskillhq/backend/internal/domain/enums"
	"github.com/upskillhq/backend/internal/domain/model"
	authsvc "github.com/upskillhq/backend/internal/services/auth"
	ordersvc "github.com/upskillhq/backend/internal/services/orders"
	"github.com/upskillhq/backend/internal/transport/http/dto"
	httperrors "github.com/upskillhq/backend/internal/transport/http/errors"
)

type OrderHandler struct {
	orders *ordersvc.Service
}

func NewOrderHandler(orders *ordersvc.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.orders == nil {
		writeInternal(w, "ORDERS_SERVICE_UNAVAILABLE", "orders service is unavailable")
		return
	}

	var req dto.OrderCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	handle, err := h.orders.CreateOrder(r.Context(), identity.AccountID, toPlanSelection(req.Category, req.AmountPaise, req.Currency, req.Package, req.Course))
	if err != nil {
		switch {
		case errors.Is(err, ordersvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid order payload")
		case errors.Is(err, ordersvc.ErrNotEligible):
			writeForbidden(w, "NOT_ELIGIBLE", "account is not eligible for this package")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to create order")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OrderCreateResponse{
		OrderID:     handle.OrderID,
		AmountPaise: handle.AmountPaise,
		Currency:    handle.Currency,
		Receipt:     handle.Receipt,
	})
}

func toPlanSelection(category string, amountPaise int64, currency string, pkg *dto.PackageSelectionDTO, course *dto.CourseSelectionDTO) model.PlanSelection {
	selection := model.PlanSelection{
		Category:    enums.PurchaseCategory(category),
		AmountPaise: amountPaise,
		Currency:    currency,
	}
	if pkg != nil {
		selection.PackageTier = enums.PackageTier(pkg.Tier)
		selection.CreditsGiven = pkg.CreditsGiven
		selection.MaxPackageLPA = pkg.MaxPackageLPA
	}
	if course != nil {
		selection.CourseType = course.CourseType
		selection.TotalSessions = course.TotalSessions
		selection.LiveSessions = course.LiveSessions
		selection.RecordedSessions = course.RecordedSessions
	}
	return selection
}
