package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/upskillhq/backend/internal/domain/enums"
	"github.com/upskillhq/backend/internal/domain/model"
	pgrepo "github.com/upskillhq/backend/internal/repo/postgres"
	"github.com/upskillhq/backend/internal/services/orders"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrInvalidSignature = errors.New("invalid payment signature")
)

type PurchaseStore interface {
	InsertConfirmed(ctx context.Context, rec pgrepo.PurchaseRecord) (pgrepo.PurchaseRecord, bool, error)
	ListByAccount(ctx context.Context, accountID int64) ([]pgrepo.PurchaseRecord, error)
}

type AccountStore interface {
	FindByID(ctx context.Context, id int64) (pgrepo.AccountRecord, error)
}

type SignatureVerifier interface {
	VerifySignature(orderID, paymentID, signature string) bool
}

type ReceiptMailer interface {
	Send(to, subject, htmlBody string) error
}

type PlanInvalidator interface {
	InvalidatePlan(ctx context.Context, accountID int64) error
}

// Service turns a signed gateway callback into a confirmed Purchase.
// The signature is the only thing that makes the callback payload
// trustworthy; verification happens before anything else.
type Service struct {
	purchases PurchaseStore
	accounts  AccountStore
	verifier  SignatureVerifier
	ledger    PlanInvalidator
	mailer    ReceiptMailer
	now       func() time.Time
}

type VerifyInput struct {
	OrderID   string
	PaymentID string
	Signature string
	Selection model.PlanSelection
}

type VerifyResult struct {
	PurchaseID      int64
	PaymentID       string
	Category        enums.PurchaseCategory
	AlreadyRecorded bool
}

type PaymentSummary struct {
	PurchaseID  int64                  `json:"purchase_id"`
	Category    enums.PurchaseCategory `json:"category"`
	AmountPaise int64                  `json:"amount_paise"`
	Currency    string                 `json:"currency"`
	PaymentID   string                 `json:"payment_id"`
	OrderID     string                 `json:"order_id"`
	Status      enums.PaymentStatus    `json:"status"`
	PurchasedAt time.Time              `json:"purchased_at"`
}

func NewService(purchases PurchaseStore, accounts AccountStore, verifier SignatureVerifier, ledger PlanInvalidator) *Service {
	return &Service{
		purchases: purchases,
		accounts:  accounts,
		verifier:  verifier,
		ledger:    ledger,
		now:       time.Now,
	}
}

// AttachMailer enables best-effort purchase receipts. Without it the
// verify flow simply skips the email.
func (s *Service) AttachMailer(mailer ReceiptMailer) {
	s.mailer = mailer
}

// VerifyPayment checks the gateway signature over "orderId|paymentId"
// and, when it holds, materializes the Purchase exactly once. Replays
// of an already-recorded paymentId succeed without side effects.
func (s *Service) VerifyPayment(ctx context.Context, accountID int64, in VerifyInput) (VerifyResult, error) {
	if accountID <= 0 {
		return VerifyResult{}, ErrValidation
	}
	if s.purchases == nil || s.verifier == nil {
		return VerifyResult{}, fmt.Errorf("payment dependencies are not configured")
	}

	orderID := strings.TrimSpace(in.OrderID)
	paymentID := strings.TrimSpace(in.PaymentID)
	signature := strings.TrimSpace(in.Signature)
	if orderID == "" || paymentID == "" || signature == "" {
		return VerifyResult{}, ErrValidation
	}
	if err := orders.ValidateSelection(in.Selection); err != nil {
		return VerifyResult{}, ErrValidation
	}

	if !s.verifier.VerifySignature(orderID, paymentID, signature) {
		return VerifyResult{}, ErrInvalidSignature
	}

	record := pgrepo.PurchaseRecord{
		AccountID:     accountID,
		Category:      in.Selection.Category,
		AmountPaise:   in.Selection.AmountPaise,
		Currency:      in.Selection.Currency,
		PaymentID:     paymentID,
		OrderID:       orderID,
		PaymentStatus: enums.PaymentStatusSuccess,
		PurchasedAt:   s.now().UTC(),
	}
	switch in.Selection.Category {
	case enums.PurchaseCategoryJobPackage:
		record.PackageTier = in.Selection.PackageTier
		record.MaxPackageLPA = in.Selection.MaxPackageLPA
		record.CreditsGiven = in.Selection.CreditsGiven
		record.CreditsRemaining = in.Selection.CreditsGiven
	case enums.PurchaseCategoryCourse:
		record.CourseType = in.Selection.CourseType
		record.TotalSessions = in.Selection.TotalSessions
		record.LiveSessions = in.Selection.LiveSessions
		record.RecordedSessions = in.Selection.RecordedSessions
	}

	stored, inserted, err := s.purchases.InsertConfirmed(ctx, record)
	if err != nil {
		return VerifyResult{}, err
	}

	if inserted {
		if s.ledger != nil {
			_ = s.ledger.InvalidatePlan(ctx, accountID)
		}
		s.sendReceipt(ctx, accountID, stored)
	}

	return VerifyResult{
		PurchaseID:      stored.ID,
		PaymentID:       stored.PaymentID,
		Category:        stored.Category,
		AlreadyRecorded: !inserted,
	}, nil
}

func (s *Service) sendReceipt(ctx context.Context, accountID int64, purchase pgrepo.PurchaseRecord) {
	if s.mailer == nil || s.accounts == nil {
		return
	}
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return
	}

	subject := "Your purchase is confirmed"
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your %s purchase (payment %s) for %s %.2f is confirmed.</p>",
		account.FullName, purchase.Category, purchase.PaymentID, purchase.Currency, float64(purchase.AmountPaise)/100,
	)
	_ = s.mailer.Send(account.Email, subject, body)
}

// GetPaymentHistory lists the account's purchases, newest first.
func (s *Service) GetPaymentHistory(ctx context.Context, accountID int64) ([]PaymentSummary, error) {
	if accountID <= 0 {
		return nil, ErrValidation
	}
	if s.purchases == nil {
		return nil, fmt.Errorf("purchase store is nil")
	}

	records, err := s.purchases.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	summaries := make([]PaymentSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, PaymentSummary{
			PurchaseID:  record.ID,
			Category:    record.Category,
			AmountPaise: record.AmountPaise,
			Currency:    record.Currency,
			PaymentID:   record.PaymentID,
			OrderID:     record.OrderID,
			Status:      record.PaymentStatus,
			PurchasedAt: record.PurchasedAt,
		})
	}

	return summaries, nil
}
