package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/upskillhq/backend/internal/domain/enums"
	"github.com/upskillhq/backend/internal/domain/model"
	"github.com/upskillhq/backend/internal/infra/razorpay"
	pgrepo "github.com/upskillhq/backend/internal/repo/postgres"
)

var (
	ErrValidation  = errors.New("validation error")
	ErrNotEligible = errors.New("not eligible")
)

// Silver is invite-only and one-time-only; the other tiers are open.
const restrictedTier = enums.PackageTierSilver

type AccountStore interface {
	FindByID(ctx context.Context, id int64) (pgrepo.AccountRecord, error)
}

type PurchaseStore interface {
	HasSuccessTier(ctx context.Context, accountID int64, tier enums.PackageTier) (bool, error)
}

type Allowlist interface {
	Contains(ctx context.Context, tier, email string) (bool, error)
}

type Gateway interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]string) (razorpay.OrderRef, error)
}

// Service gates checkout: it validates the plan selection, enforces
// tier eligibility, and asks the payment gateway for an order handle.
// Nothing touches the ledger until the payment verifies.
type Service struct {
	accounts  AccountStore
	purchases PurchaseStore
	allowlist Allowlist
	gateway   Gateway
}

type OrderHandle struct {
	OrderID     string
	AmountPaise int64
	Currency    string
	Receipt     string
}

func NewService(accounts AccountStore, purchases PurchaseStore, allowlist Allowlist, gateway Gateway) *Service {
	return &Service{
		accounts:  accounts,
		purchases: purchases,
		allowlist: allowlist,
		gateway:   gateway,
	}
}

// CreateOrder validates the selection, checks restricted-tier
// eligibility, and creates a gateway order carrying the selection in
// its notes. A PENDING order leaves no trace in our storage.
func (s *Service) CreateOrder(ctx context.Context, accountID int64, selection model.PlanSelection) (OrderHandle, error) {
	if accountID <= 0 {
		return OrderHandle{}, ErrValidation
	}
	if s.accounts == nil || s.gateway == nil {
		return OrderHandle{}, fmt.Errorf("order dependencies are not configured")
	}
	if err := ValidateSelection(selection); err != nil {
		return OrderHandle{}, err
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrAccountNotFound) {
			return OrderHandle{}, ErrValidation
		}
		return OrderHandle{}, err
	}

	if selection.Category == enums.PurchaseCategoryJobPackage && selection.PackageTier == restrictedTier {
		if err := s.checkRestrictedTier(ctx, account); err != nil {
			return OrderHandle{}, err
		}
	}

	receipt := fmt.Sprintf("acct_%d_%s", accountID, selection.Category)
	ref, err := s.gateway.CreateOrder(ctx, selection.AmountPaise, selection.Currency, receipt, planNotes(accountID, selection))
	if err != nil {
		return OrderHandle{}, fmt.Errorf("create gateway order: %w", err)
	}

	return OrderHandle{
		OrderID:     ref.OrderID,
		AmountPaise: ref.AmountPaise,
		Currency:    ref.Currency,
		Receipt:     ref.Receipt,
	}, nil
}

func (s *Service) checkRestrictedTier(ctx context.Context, account pgrepo.AccountRecord) error {
	if s.allowlist == nil || s.purchases == nil {
		return fmt.Errorf("eligibility dependencies are not configured")
	}

	allowed, err := s.allowlist.Contains(ctx, string(restrictedTier), strings.ToLower(account.Email))
	if err != nil {
		return fmt.Errorf("check allowlist: %w", err)
	}
	if !allowed {
		return ErrNotEligible
	}

	alreadyBought, err := s.purchases.HasSuccessTier(ctx, account.ID, restrictedTier)
	if err != nil {
		return fmt.Errorf("check tier history: %w", err)
	}
	if alreadyBought {
		return ErrNotEligible
	}

	return nil
}

// ValidateSelection checks plan shape independent of the buyer. The
// verify flow reuses it so a tampered callback payload cannot smuggle
// in an inconsistent plan.
func ValidateSelection(selection model.PlanSelection) error {
	if _, ok := enums.ParsePurchaseCategory(string(selection.Category)); !ok {
		return ErrValidation
	}
	if selection.AmountPaise <= 0 {
		return ErrValidation
	}

	switch selection.Category {
	case enums.PurchaseCategoryJobPackage:
		if _, ok := enums.ParsePackageTier(string(selection.PackageTier)); !ok {
			return ErrValidation
		}
		if selection.CreditsGiven <= 0 || selection.MaxPackageLPA < 0 {
			return ErrValidation
		}
		if selection.CourseType != "" || selection.TotalSessions != 0 || selection.LiveSessions != 0 || selection.RecordedSessions != 0 {
			return ErrValidation
		}
	case enums.PurchaseCategoryCourse:
		if strings.TrimSpace(selection.CourseType) == "" {
			return ErrValidation
		}
		if selection.TotalSessions <= 0 || selection.LiveSessions < 0 || selection.RecordedSessions < 0 {
			return ErrValidation
		}
		if selection.TotalSessions != selection.LiveSessions+selection.RecordedSessions {
			return ErrValidation
		}
		if selection.PackageTier != "" || selection.CreditsGiven != 0 || selection.MaxPackageLPA != 0 {
			return ErrValidation
		}
	}

	return nil
}

func planNotes(accountID int64, selection model.PlanSelection) map[string]string {
	notes := map[string]string{
		"account_id":   strconv.FormatInt(accountID, 10),
		"category":     string(selection.Category),
		"amount_paise": strconv.FormatInt(selection.AmountPaise, 10),
		"currency":     selection.Currency,
	}

	switch selection.Category {
	case enums.PurchaseCategoryJobPackage:
		notes["package_tier"] = string(selection.PackageTier)
		notes["credits_given"] = strconv.Itoa(selection.CreditsGiven)
		notes["max_package_lpa"] = strconv.Itoa(selection.MaxPackageLPA)
	case enums.PurchaseCategoryCourse:
		notes["course_type"] = selection.CourseType
		notes["total_sessions"] = strconv.Itoa(selection.TotalSessions)
		notes["live_sessions"] = strconv.Itoa(selection.LiveSessions)
		notes["recorded_sessions"] = strconv.Itoa(selection.RecordedSessions)
	}

	return notes
}
