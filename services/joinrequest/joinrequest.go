package joinrequest

import (
	"fmt"

	joinRequestRepo "hive/database/repository/joinrequest"
	serviceRepo "hive/database/repository/service"
	userRepo "hive/database/repository/user"
	"hive/models"
	"hive/services/transaction"
	"hive/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JoinRequestService manages applications to participate in a service and
// the owner's approve/reject decisions.
type JoinRequestService interface {
	Create(userID string, payload models.JoinRequestCreate) (*models.JoinRequest, error)
	GetByID(id, callerID string) (*models.JoinRequest, error)
	// ListByService returns requests against a service, owner only.
	ListByService(serviceID, callerID string, page, limit int64) ([]models.JoinRequest, int64, error)
	ListByUser(userID string, status models.JoinRequestStatus, page, limit int64) ([]models.JoinRequest, int64, error)
	// Cancel withdraws the caller's own pending request.
	Cancel(id, callerID string) (*models.JoinRequest, error)
	// UpdateStatus is the owner's approve/reject decision. Approval is
	// capacity-gated and spawns a bilateral transaction.
	UpdateStatus(id, callerID string, payload models.JoinRequestUpdate) (*models.JoinRequest, error)
}

// DefaultJoinRequestService is the production implementation.
type DefaultJoinRequestService struct {
	Repo         joinRequestRepo.JoinRequestRepository
	Services     serviceRepo.ServiceRepository
	Users        userRepo.UserRepository
	Transactions transaction.TransactionService
}

// NewJoinRequestService constructs the join request manager.
func NewJoinRequestService(repo joinRequestRepo.JoinRequestRepository, services serviceRepo.ServiceRepository, users userRepo.UserRepository, transactions transaction.TransactionService) *DefaultJoinRequestService {
	return &DefaultJoinRequestService{Repo: repo, Services: services, Users: users, Transactions: transactions}
}

// Create files a PENDING request against a live service.
func (s *DefaultJoinRequestService) Create(userID string, payload models.JoinRequestCreate) (*models.JoinRequest, error) {
	svc, err := s.Services.GetByID(payload.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}
	if svc.UserID == userID {
		return nil, ErrOwnService
	}
	if svc.Status != models.ServiceActive && svc.Status != models.ServiceInProgress {
		return nil, ErrServiceClosed
	}
	for _, matched := range svc.MatchedUserIDs {
		if matched == userID {
			return nil, ErrAlreadyMatched
		}
	}

	existing, err := s.Repo.FindByStatus(payload.ServiceID, userID, models.JoinRequestPending)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicatePending
	}

	request := &models.JoinRequest{
		ID:        uuid.New().String(),
		ServiceID: payload.ServiceID,
		UserID:    userID,
		Message:   payload.Message,
		Status:    models.JoinRequestPending,
	}
	if err := s.Repo.Create(request); err != nil {
		return nil, fmt.Errorf("failed to create join request: %w", err)
	}

	utils.GetLogger().Info("join request created",
		zap.String("requestID", request.ID), zap.String("serviceID", request.ServiceID), zap.String("userID", userID))
	return s.populate(request), nil
}

// GetByID returns a populated request, visible to the requester and the
// service owner.
func (s *DefaultJoinRequestService) GetByID(id, callerID string) (*models.JoinRequest, error) {
	request, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if request.UserID != callerID {
		svc, err := s.Services.GetByID(request.ServiceID)
		if err != nil {
			return nil, err
		}
		if svc == nil || svc.UserID != callerID {
			return nil, ErrUnauthorized
		}
	}
	return s.populate(request), nil
}

func (s *DefaultJoinRequestService) get(id string) (*models.JoinRequest, error) {
	request, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrNotFound
	}
	return request, nil
}

func (s *DefaultJoinRequestService) ListByService(serviceID, callerID string, page, limit int64) ([]models.JoinRequest, int64, error) {
	svc, err := s.Services.GetByID(serviceID)
	if err != nil {
		return nil, 0, err
	}
	if svc == nil {
		return nil, 0, ErrServiceNotFound
	}
	if svc.UserID != callerID {
		return nil, 0, ErrUnauthorized
	}

	requests, total, err := s.Repo.ListByService(serviceID, page, limit)
	return s.populateAll(requests), total, err
}

func (s *DefaultJoinRequestService) ListByUser(userID string, status models.JoinRequestStatus, page, limit int64) ([]models.JoinRequest, int64, error) {
	requests, total, err := s.Repo.ListByUser(userID, status, page, limit)
	return s.populateAll(requests), total, err
}

// Cancel withdraws a pending request. The conditional transition means a
// concurrent owner decision wins cleanly.
func (s *DefaultJoinRequestService) Cancel(id, callerID string) (*models.JoinRequest, error) {
	request, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if request.UserID != callerID {
		return nil, ErrUnauthorized
	}

	ok, err := s.Repo.TransitionStatus(id, models.JoinRequestPending, models.JoinRequestCancelled, "")
	if err != nil {
		return nil, fmt.Errorf("failed to cancel join request %s: %w", id, err)
	}
	if !ok {
		return nil, ErrNotPending
	}
	return s.GetByID(id, callerID)
}

// UpdateStatus applies the owner's decision on a pending request.
//
// Approval runs in two steps: first a capacity-gated conditional update adds
// the user to the service's participants, then the request itself flips
// PENDING→APPROVED. Losing the capacity race leaves the request pending so
// the owner can reject it explicitly. A bilateral transaction for the
// service's estimated duration is then auto-created; a failure there is
// logged and the approval stands.
func (s *DefaultJoinRequestService) UpdateStatus(id, callerID string, payload models.JoinRequestUpdate) (*models.JoinRequest, error) {
	request, err := s.get(id)
	if err != nil {
		return nil, err
	}
	svc, err := s.Services.GetByID(request.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}
	if svc.UserID != callerID {
		return nil, ErrUnauthorized
	}
	if request.Status != models.JoinRequestPending {
		return nil, ErrNotPending
	}

	if payload.Status == models.JoinRequestApproved {
		if err := s.approve(request, svc, payload.AdminMessage); err != nil {
			return nil, err
		}
	} else {
		ok, err := s.Repo.TransitionStatus(id, models.JoinRequestPending, models.JoinRequestRejected, payload.AdminMessage)
		if err != nil {
			return nil, fmt.Errorf("failed to reject join request %s: %w", id, err)
		}
		if !ok {
			return nil, ErrNotPending
		}
	}

	return s.GetByID(id, callerID)
}

func (s *DefaultJoinRequestService) approve(request *models.JoinRequest, svc *models.Service, adminMessage string) error {
	ok, err := s.Services.ApproveParticipant(svc.ID, request.UserID)
	if err != nil {
		return fmt.Errorf("failed to add participant to service %s: %w", svc.ID, err)
	}
	if !ok {
		current, err := s.Services.GetByID(svc.ID)
		if err != nil {
			return err
		}
		if current == nil ||
			(current.Status != models.ServiceActive && current.Status != models.ServiceInProgress) {
			return ErrServiceClosed
		}
		return ErrCapacityExceeded
	}

	ok, err = s.Repo.TransitionStatus(request.ID, models.JoinRequestPending, models.JoinRequestApproved, adminMessage)
	if err != nil {
		return fmt.Errorf("failed to approve join request %s: %w", request.ID, err)
	}
	if !ok {
		return ErrNotPending
	}

	utils.GetLogger().Info("join request approved",
		zap.String("requestID", request.ID), zap.String("serviceID", svc.ID), zap.String("userID", request.UserID))

	// Spawn the bilateral exchange record. Best-effort: the approval has
	// already committed.
	payload := models.TransactionCreate{
		ServiceID:     svc.ID,
		ProviderID:    svc.UserID,
		RequesterID:   request.UserID,
		TimebankHours: svc.EstimatedDuration,
		Description:   "Exchange for: " + svc.Title,
	}
	if _, err := s.Transactions.Create(svc.UserID, payload); err != nil {
		utils.GetLogger().Warn("failed to auto-create transaction for approved request",
			zap.String("requestID", request.ID), zap.Error(err))
	}
	return nil
}

func (s *DefaultJoinRequestService) populateAll(requests []models.JoinRequest) []models.JoinRequest {
	for i := range requests {
		s.populate(&requests[i])
	}
	return requests
}

// populate fills the embedded views, best-effort.
func (s *DefaultJoinRequestService) populate(request *models.JoinRequest) *models.JoinRequest {
	if user, err := s.Users.GetByID(request.UserID); err == nil && user != nil {
		request.User = &models.UserSummary{ID: user.ID, Username: user.Username, FullName: user.FullName, Bio: user.Bio}
	}
	if svc, err := s.Services.GetByID(request.ServiceID); err == nil && svc != nil {
		request.Service = &models.ServiceSummary{
			ID: svc.ID, Title: svc.Title, Description: svc.Description, Category: svc.Category,
		}
	}
	return request
}
