package classes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/upskillhq/backend/internal/domain/rules"
	pgrepo "github.com/upskillhq/backend/internal/repo/postgres"
	"github.com/upskillhq/backend/internal/services/ledger"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrClassNotFound       = errors.New("class not found")
	ErrNotLiveNow          = errors.New("class is not live right now")
	ErrNoActivePackage     = errors.New("no active package")
	ErrInsufficientCredits = errors.New("no live sessions remaining")
)

type ClassStore interface {
	FindByID(ctx context.Context, classID string) (pgrepo.ClassRecord, error)
}

type CreditLedger interface {
	DebitLiveSession(ctx context.Context, tx pgx.Tx, accountID int64, referenceID string) (ledger.DebitResult, error)
	InvalidatePlan(ctx context.Context, accountID int64) error
}

// Service gates live-class entry: the class must be inside its live
// window and the account's active course package must still hold a
// session.
type Service struct {
	classes ClassStore
	ledger  CreditLedger
	tx      pgrepo.Transactor
	now     func() time.Time
}

type JoinResult struct {
	ClassID           string
	JoinURL           string
	SessionsRemaining int
	EndsAt            time.Time
}

func NewService(classes ClassStore, creditLedger CreditLedger, tx pgrepo.Transactor) *Service {
	return &Service{
		classes: classes,
		ledger:  creditLedger,
		tx:      tx,
		now:     time.Now,
	}
}

// JoinLiveClass admits the account into a class that is live right now,
// spending one live session. The window is inclusive on both ends:
// joining at the exact start or end instant is allowed.
func (s *Service) JoinLiveClass(ctx context.Context, accountID int64, classID string) (JoinResult, error) {
	if accountID <= 0 || strings.TrimSpace(classID) == "" {
		return JoinResult{}, ErrValidation
	}
	if s.classes == nil || s.ledger == nil || s.tx == nil {
		return JoinResult{}, fmt.Errorf("class dependencies are not configured")
	}

	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrClassNotFound) {
			return JoinResult{}, ErrClassNotFound
		}
		return JoinResult{}, err
	}
	if !rules.WithinWindow(s.now(), class.StartsAt, class.EndsAt) {
		return JoinResult{}, ErrNotLiveNow
	}

	var result JoinResult
	txErr := s.tx.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		debit, err := s.ledger.DebitLiveSession(ctx, tx, accountID, class.ID)
		if err != nil {
			return err
		}
		result = JoinResult{
			ClassID:           class.ID,
			JoinURL:           class.JoinURL,
			SessionsRemaining: debit.Remaining,
			EndsAt:            class.EndsAt,
		}
		return nil
	})
	if txErr != nil {
		switch {
		case errors.Is(txErr, ledger.ErrNoActivePackage):
			return JoinResult{}, ErrNoActivePackage
		case errors.Is(txErr, ledger.ErrInsufficientCredits):
			return JoinResult{}, ErrInsufficientCredits
		default:
			return JoinResult{}, txErr
		}
	}

	_ = s.ledger.InvalidatePlan(ctx, accountID)

	return result, nil
}
