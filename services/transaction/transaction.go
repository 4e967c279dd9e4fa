package transaction

import (
	"fmt"
	"time"

	joinRequestRepo "hive/database/repository/joinrequest"
	serviceRepo "hive/database/repository/service"
	transactionRepo "hive/database/repository/transaction"
	userRepo "hive/database/repository/user"
	"hive/models"
	"hive/services/timebank"
	"hive/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// TransactionService manages 1:1 exchanges spawned from approved join
// requests and settles them through the TimeBank engine.
type TransactionService interface {
	Create(callerID string, payload models.TransactionCreate) (*models.Transaction, error)
	GetByID(id, callerID string) (*models.Transaction, error)
	ListByUser(userID string, page, limit int64) ([]models.Transaction, int64, error)
	ListByService(serviceID string, page, limit int64) ([]models.Transaction, int64, error)
	ListAll(page, limit int64) ([]models.Transaction, int64, error)
	UpdateStatus(id, callerID string, payload models.TransactionUpdate) (*models.Transaction, error)
	// ConfirmCompletion records the caller's confirmation; once both parties
	// have confirmed, the transaction completes and the hours settle.
	ConfirmCompletion(id, callerID string) (*models.Transaction, error)
}

// DefaultTransactionService is the production implementation.
type DefaultTransactionService struct {
	Repo     transactionRepo.TransactionRepository
	Services serviceRepo.ServiceRepository
	Users    userRepo.UserRepository
	Requests joinRequestRepo.JoinRequestRepository
	Engine   timebank.TimeBankService
}

// NewTransactionService constructs the transaction manager.
func NewTransactionService(repo transactionRepo.TransactionRepository, services serviceRepo.ServiceRepository, users userRepo.UserRepository, requests joinRequestRepo.JoinRequestRepository, engine timebank.TimeBankService) *DefaultTransactionService {
	return &DefaultTransactionService{Repo: repo, Services: services, Users: users, Requests: requests, Engine: engine}
}

// Create records a new PENDING transaction. The caller must be a party, the
// service and both parties must exist, and the requester must hold an
// approved join request against the service.
func (s *DefaultTransactionService) Create(callerID string, payload models.TransactionCreate) (*models.Transaction, error) {
	if callerID != payload.ProviderID && callerID != payload.RequesterID {
		return nil, ErrUnauthorized
	}

	svc, err := s.Services.GetByID(payload.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}

	for _, uid := range []string{payload.ProviderID, payload.RequesterID} {
		user, err := s.Users.GetByID(uid)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}
	}

	approved, err := s.Requests.FindByStatus(payload.ServiceID, payload.RequesterID, models.JoinRequestApproved)
	if err != nil {
		return nil, err
	}
	if approved == nil {
		return nil, ErrNoApprovedRequest
	}

	tx := &models.Transaction{
		ID:            uuid.New().String(),
		ServiceID:     payload.ServiceID,
		ProviderID:    payload.ProviderID,
		RequesterID:   payload.RequesterID,
		TimebankHours: payload.TimebankHours,
		Description:   payload.Description,
		Status:        models.TransactionPending,
	}
	if err := s.Repo.Create(tx); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	utils.GetLogger().Info("transaction created",
		zap.String("transactionID", tx.ID), zap.String("serviceID", tx.ServiceID))
	return s.populate(tx), nil
}

// GetByID returns a populated transaction visible only to its parties.
func (s *DefaultTransactionService) GetByID(id, callerID string) (*models.Transaction, error) {
	tx, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if callerID != tx.ProviderID && callerID != tx.RequesterID {
		return nil, ErrUnauthorized
	}
	return s.populate(tx), nil
}

func (s *DefaultTransactionService) get(id string) (*models.Transaction, error) {
	tx, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrNotFound
	}
	return tx, nil
}

func (s *DefaultTransactionService) ListByUser(userID string, page, limit int64) ([]models.Transaction, int64, error) {
	txs, total, err := s.Repo.ListByUser(userID, page, limit)
	return s.populateAll(txs), total, err
}

func (s *DefaultTransactionService) ListByService(serviceID string, page, limit int64) ([]models.Transaction, int64, error) {
	txs, total, err := s.Repo.ListByService(serviceID, page, limit)
	return s.populateAll(txs), total, err
}

func (s *DefaultTransactionService) ListAll(page, limit int64) ([]models.Transaction, int64, error) {
	txs, total, err := s.Repo.ListAll(page, limit)
	return s.populateAll(txs), total, err
}

// Direct status transitions open to the parties. COMPLETED is reachable only
// through dual confirmation; COMPLETED and CANCELLED are terminal.
var statusTransitions = map[models.TransactionStatus][]models.TransactionStatus{
	models.TransactionPending:    {models.TransactionInProgress, models.TransactionCancelled, models.TransactionDisputed},
	models.TransactionInProgress: {models.TransactionCancelled, models.TransactionDisputed},
	models.TransactionDisputed:   {models.TransactionInProgress, models.TransactionCancelled},
}

func transitionAllowed(from, to models.TransactionStatus) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// UpdateStatus applies a party-requested status change with optional notes.
func (s *DefaultTransactionService) UpdateStatus(id, callerID string, payload models.TransactionUpdate) (*models.Transaction, error) {
	tx, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if callerID != tx.ProviderID && callerID != tx.RequesterID {
		return nil, ErrUnauthorized
	}

	setDoc := bson.M{}
	if payload.Status != nil && *payload.Status != tx.Status {
		if !transitionAllowed(tx.Status, *payload.Status) {
			return nil, &InvalidTransitionError{From: tx.Status, To: *payload.Status}
		}
		setDoc["status"] = *payload.Status
	}
	if payload.CompletionNotes != nil {
		setDoc["completion_notes"] = *payload.CompletionNotes
	}
	if payload.DisputeReason != nil {
		setDoc["dispute_reason"] = *payload.DisputeReason
	}

	if len(setDoc) > 0 {
		if err := s.Repo.UpdateSetDocument(id, setDoc); err != nil {
			return nil, fmt.Errorf("failed to update transaction %s: %w", id, err)
		}
	}

	tx, err = s.get(id)
	if err != nil {
		return nil, err
	}
	return s.populate(tx), nil
}

// ConfirmCompletion records one side's confirmation. Repeats are no-ops.
// When both flags are set, a conditional update picks a single winner among
// concurrent callers; the winner settles the hours. COMPLETED commits even
// when a ledger leg is rejected.
func (s *DefaultTransactionService) ConfirmCompletion(id, callerID string) (*models.Transaction, error) {
	tx, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if callerID != tx.ProviderID && callerID != tx.RequesterID {
		return nil, ErrUnauthorized
	}
	if tx.Status == models.TransactionCompleted || tx.Status == models.TransactionCancelled {
		return nil, &InvalidTransitionError{From: tx.Status, To: models.TransactionCompleted}
	}

	ok, err := s.Repo.SetConfirmed(id, callerID == tx.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("failed to record confirmation on transaction %s: %w", id, err)
	}
	if !ok {
		current, err := s.get(id)
		if err != nil {
			return nil, err
		}
		return nil, &InvalidTransitionError{From: current.Status, To: models.TransactionCompleted}
	}

	tx, err = s.get(id)
	if err != nil {
		return nil, err
	}
	if !tx.ProviderConfirmed || !tx.RequesterConfirmed {
		return s.populate(tx), nil
	}

	won, err := s.Repo.CompleteIfOpen(id, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to complete transaction %s: %w", id, err)
	}
	if won {
		s.settle(tx)
	}

	tx, err = s.get(id)
	if err != nil {
		return nil, err
	}
	return s.populate(tx), nil
}

// settle moves the hours between the parties. Failures land in the failure
// audit log; the transaction stays COMPLETED either way.
func (s *DefaultTransactionService) settle(tx *models.Transaction) {
	logger := utils.GetLogger().With(zap.String("transactionID", tx.ID))

	earnDesc := "Provided service (transaction " + tx.ID + ")"
	if _, err := s.Engine.Apply(tx.ProviderID, tx.TimebankHours, earnDesc, tx.ServiceID); err != nil {
		logger.Warn("provider ledger leg failed", zap.String("userID", tx.ProviderID), zap.Error(err))
	}

	spendDesc := "Received service (transaction " + tx.ID + ")"
	if _, err := s.Engine.Apply(tx.RequesterID, -tx.TimebankHours, spendDesc, tx.ServiceID); err != nil {
		logger.Warn("requester ledger leg failed", zap.String("userID", tx.RequesterID), zap.Error(err))
	}

	utils.CompletionsFinalized.WithLabelValues("transaction").Inc()
	logger.Info("transaction completed", zap.Float64("hours", tx.TimebankHours))
}

func (s *DefaultTransactionService) populateAll(txs []models.Transaction) []models.Transaction {
	for i := range txs {
		s.populate(&txs[i])
	}
	return txs
}

// populate fills the embedded views. Lookups are best-effort; a missing
// reference leaves the view nil rather than failing the read.
func (s *DefaultTransactionService) populate(tx *models.Transaction) *models.Transaction {
	if svc, err := s.Services.GetByID(tx.ServiceID); err == nil && svc != nil {
		tx.Service = &models.ServiceSummary{
			ID: svc.ID, Title: svc.Title, Description: svc.Description, Category: svc.Category,
		}
	}
	if user, err := s.Users.GetByID(tx.ProviderID); err == nil && user != nil {
		tx.Provider = &models.UserSummary{ID: user.ID, Username: user.Username, FullName: user.FullName}
	}
	if user, err := s.Users.GetByID(tx.RequesterID); err == nil && user != nil {
		tx.Requester = &models.UserSummary{ID: user.ID, Username: user.Username, FullName: user.FullName}
	}
	return tx
}
