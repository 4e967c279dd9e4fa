package timebank

import (
	"fmt"
	"time"

	ledgerRepo "hive/database/repository/ledger"
	userRepo "hive/database/repository/user"
	"hive/models"
	"hive/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// MaxBalance is the earning cap. The cap is checked before applying a
	// delta, so a user just below it can still earn past it; only the next
	// earn is blocked.
	MaxBalance = 10.0
	// StartingBalance is granted to every new account through the ledger.
	StartingBalance = 3.0
	// statementEntries caps the history returned in a statement.
	statementEntries = 50
)

// TimeBankService is the accounting engine. Every balance mutation in the
// system goes through Apply, which enforces the cap and floor rules and
// writes either a ledger entry or a failure audit record.
type TimeBankService interface {
	// Apply moves amount hours into (positive) or out of (negative) the
	// user's balance. On rejection it records a FailedTimeBankEntry and
	// returns a *LedgerError carrying the reason.
	Apply(userID string, amount float64, description, serviceID string) (*models.TimeBankEntry, error)
	// StatementFor returns the user's balance view with recent history.
	StatementFor(userID string) (*models.TimeBankStatement, error)
	// CanEarn reports whether the user is below the earning cap.
	CanEarn(userID string) (bool, error)
	// History returns all ledger entries, newest first.
	History(page, limit int64) ([]models.TimeBankEntry, int64, error)
	// Failures returns the failure audit log, newest first.
	Failures(page, limit int64) ([]models.FailedTimeBankEntry, int64, error)
}

// DefaultTimeBankService is the production engine backed by Mongo repositories.
type DefaultTimeBankService struct {
	Users  userRepo.UserRepository
	Ledger ledgerRepo.LedgerRepository
}

// NewTimeBankService constructs the engine.
func NewTimeBankService(users userRepo.UserRepository, ledger ledgerRepo.LedgerRepository) *DefaultTimeBankService {
	return &DefaultTimeBankService{Users: users, Ledger: ledger}
}

// Apply performs a single all-or-nothing balance mutation. The pre-checks
// classify the obvious rejections; the conditional balance update then
// re-validates under concurrency, and a lost race is re-classified from a
// fresh read. A ledger entry is only written after the balance moved.
func (s *DefaultTimeBankService) Apply(userID string, amount float64, description, serviceID string) (*models.TimeBankEntry, error) {
	logger := utils.GetLogger().With(zap.String("userID", userID), zap.Float64("amount", amount))

	user, err := s.Users.GetByID(userID)
	if err != nil {
		return nil, s.fail(userID, amount, description, serviceID, models.FailureUnknown, nil, err)
	}
	if user == nil {
		return nil, s.fail(userID, amount, description, serviceID, models.FailureUserNotFound, nil, nil)
	}

	balance := user.TimeBankBalance
	if amount > 0 && balance >= MaxBalance {
		return nil, s.fail(userID, amount, description, serviceID, models.FailureProviderBalanceLimit, &balance, nil)
	}
	if amount < 0 && balance+amount < 0 {
		return nil, s.fail(userID, amount, description, serviceID, models.FailureInsufficientBalance, &balance, nil)
	}

	ok, err := s.Users.AdjustBalance(userID, amount, MaxBalance)
	if err != nil {
		return nil, s.fail(userID, amount, description, serviceID, models.FailureUnknown, &balance, err)
	}
	if !ok {
		// Lost a race: the precondition held on our read but not at write
		// time. Re-read to classify with the balance that actually blocked.
		reason, current := s.classifyLostRace(userID, amount)
		return nil, s.fail(userID, amount, description, serviceID, reason, current, nil)
	}

	entry := &models.TimeBankEntry{
		ID:          uuid.New().String(),
		UserID:      userID,
		Amount:      amount,
		Description: description,
		ServiceID:   serviceID,
		CreatedAt:   time.Now(),
	}
	if err := s.Ledger.InsertEntry(entry); err != nil {
		// The balance already moved; the history is short one entry but the
		// money is right. Log loudly and surface the failure.
		logger.Error("balance adjusted but ledger entry insert failed", zap.Error(err))
		return nil, s.fail(userID, amount, description, serviceID, models.FailureUnknown, nil, err)
	}

	utils.LedgerApplies.WithLabelValues("success").Inc()
	logger.Info("ledger entry applied", zap.String("entryID", entry.ID))
	return entry, nil
}

func (s *DefaultTimeBankService) classifyLostRace(userID string, amount float64) (models.FailureReason, *float64) {
	user, err := s.Users.GetByID(userID)
	if err != nil {
		return models.FailureUnknown, nil
	}
	if user == nil {
		return models.FailureUserNotFound, nil
	}
	balance := user.TimeBankBalance
	if amount > 0 {
		return models.FailureProviderBalanceLimit, &balance
	}
	return models.FailureInsufficientBalance, &balance
}

// fail records the rejection in the audit log and builds the LedgerError.
// Audit-write errors are logged and swallowed; they never mask the rejection.
func (s *DefaultTimeBankService) fail(userID string, amount float64, description, serviceID string, reason models.FailureReason, balance *float64, cause error) error {
	failure := &models.FailedTimeBankEntry{
		ID:                   uuid.New().String(),
		UserID:               userID,
		Amount:               amount,
		Description:          description,
		ServiceID:            serviceID,
		Reason:               reason,
		UserBalanceAtFailure: balance,
		CreatedAt:            time.Now(),
	}
	if cause != nil {
		failure.ErrorMessage = cause.Error()
	}
	if err := s.Ledger.InsertFailure(failure); err != nil {
		utils.GetLogger().Warn("failed to record ledger failure",
			zap.String("userID", userID), zap.String("reason", string(reason)), zap.Error(err))
	}

	utils.LedgerApplies.WithLabelValues(string(reason)).Inc()
	return &LedgerError{UserID: userID, Amount: amount, Reason: reason, Balance: balance}
}

// StatementFor builds the balance view for one user.
func (s *DefaultTimeBankService) StatementFor(userID string) (*models.TimeBankStatement, error) {
	user, err := s.Users.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", userID, err)
	}
	if user == nil {
		return nil, &LedgerError{UserID: userID, Reason: models.FailureUserNotFound}
	}

	entries, err := s.Ledger.EntriesByUser(userID, statementEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ledger entries for user %s: %w", userID, err)
	}
	if entries == nil {
		entries = []models.TimeBankEntry{}
	}

	return &models.TimeBankStatement{
		Balance:    user.TimeBankBalance,
		MaxBalance: MaxBalance,
		CanEarn:    user.TimeBankBalance < MaxBalance,
		Entries:    entries,
	}, nil
}

// CanEarn reports whether the user's next positive mutation would pass the
// cap check.
func (s *DefaultTimeBankService) CanEarn(userID string) (bool, error) {
	user, err := s.Users.GetByID(userID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch user %s: %w", userID, err)
	}
	if user == nil {
		return false, &LedgerError{UserID: userID, Reason: models.FailureUserNotFound}
	}
	return user.TimeBankBalance < MaxBalance, nil
}

func (s *DefaultTimeBankService) History(page, limit int64) ([]models.TimeBankEntry, int64, error) {
	return s.Ledger.AllEntries(page, limit)
}

func (s *DefaultTimeBankService) Failures(page, limit int64) ([]models.FailedTimeBankEntry, int64, error) {
	return s.Ledger.AllFailures(page, limit)
}
