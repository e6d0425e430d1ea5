package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/upskillhq/backend/internal/services/auth"
	paymentsvc "github.com/upskillhq/backend/internal/services/payments"
	"github.com/upskillhq/backend/internal/transport/http/dto"
	httperrors "github.com/upskillhq/backend/internal/transport/http/errors"
)

type PaymentHandler struct {
	payments *paymentsvc.Service
}

func NewPaymentHandler(payments *paymentsvc.Service) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.payments == nil {
		writeInternal(w, "PAYMENTS_SERVICE_UNAVAILABLE", "payments service is unavailable")
		return
	}

	var req dto.PaymentVerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	result, err := h.payments.VerifyPayment(r.Context(), identity.AccountID, paymentsvc.VerifyInput{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		Selection: toPlanSelection(req.Category, req.AmountPaise, req.Currency, req.Package, req.Course),
	})
	if err != nil {
		switch {
		case errors.Is(err, paymentsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid verification payload")
		case errors.Is(err, paymentsvc.ErrInvalidSignature):
			writeUnprocessable(w, "INVALID_SIGNATURE", "payment signature verification failed")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to verify payment")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PaymentVerifyResponse{
		OK:              true,
		PurchaseID:      result.PurchaseID,
		PaymentID:       result.PaymentID,
		Category:        string(result.Category),
		AlreadyRecorded: result.AlreadyRecorded,
	})
}

func (h *PaymentHandler) History(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.payments == nil {
		writeInternal(w, "PAYMENTS_SERVICE_UNAVAILABLE", "payments service is unavailable")
		return
	}

	summaries, err := h.payments.GetPaymentHistory(r.Context(), identity.AccountID)
	if err != nil {
		switch {
		case errors.Is(err, paymentsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid history request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load payment history")
		}
		return
	}

	items := make([]dto.PaymentHistoryItem, 0, len(summaries))
	for _, summary := range summaries {
		items = append(items, dto.PaymentHistoryItem{
			PurchaseID:  summary.PurchaseID,
			Category:    string(summary.Category),
			AmountPaise: summary.AmountPaise,
			Currency:    summary.Currency,
			PaymentID:   summary.PaymentID,
			OrderID:     summary.OrderID,
			Status:      string(summary.Status),
			PurchasedAt: summary.PurchasedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.PaymentHistoryResponse{Payments: items})
}
