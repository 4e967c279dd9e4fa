package service

import (
	"fmt"
	"time"

	joinRequestRepo "hive/database/repository/joinrequest"
	serviceRepo "hive/database/repository/service"
	userRepo "hive/database/repository/user"
	"hive/models"
	"hive/services/timebank"
	"hive/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// ServiceService manages service listings and their lifecycle.
type ServiceService interface {
	Create(userID string, payload models.ServiceCreate) (*models.Service, error)
	GetByID(id string) (*models.Service, error)
	List(filters models.ServiceFilters, page, limit int64) ([]models.Service, int64, error)
	Update(serviceID, userID string, payload models.ServiceUpdate) (*models.Service, error)
	Delete(serviceID, userID string) error
	// Match adds the caller to an ACTIVE service and moves it to IN_PROGRESS.
	Match(serviceID, userID string) (*models.Service, error)
	// ConfirmCompletion records the caller's confirmation and, once all
	// parties have confirmed, finalizes the exchange.
	ConfirmCompletion(serviceID, userID string) (*models.Service, error)
	// Cancel moves the service to CANCELLED before completion.
	Cancel(serviceID, userID string) (*models.Service, error)
	Participants(serviceID string) ([]models.Participant, error)
	// SweepExpired expires overdue ACTIVE services and returns the count.
	SweepExpired(now time.Time) (int64, error)
}

// DefaultServiceService is the production implementation.
type DefaultServiceService struct {
	Repo     serviceRepo.ServiceRepository
	Users    userRepo.UserRepository
	Requests joinRequestRepo.JoinRequestRepository
	Engine   timebank.TimeBankService
}

// NewServiceService constructs the service manager.
func NewServiceService(repo serviceRepo.ServiceRepository, users userRepo.UserRepository, requests joinRequestRepo.JoinRequestRepository, engine timebank.TimeBankService) *DefaultServiceService {
	return &DefaultServiceService{Repo: repo, Users: users, Requests: requests, Engine: engine}
}

// Create inserts a new ACTIVE listing owned by userID.
func (s *DefaultServiceService) Create(userID string, payload models.ServiceCreate) (*models.Service, error) {
	if payload.Deadline != nil && payload.Deadline.Before(time.Now()) {
		return nil, ErrPastDeadline
	}

	maxParticipants := payload.MaxParticipants
	if maxParticipants < 1 {
		maxParticipants = 1
	}

	svc := &models.Service{
		ID:                   uuid.New().String(),
		UserID:               userID,
		Title:                payload.Title,
		Description:          payload.Description,
		Category:             payload.Category,
		Tags:                 payload.Tags,
		ServiceType:          payload.ServiceType,
		EstimatedDuration:    payload.EstimatedDuration,
		Location:             payload.Location,
		IsRemote:             payload.IsRemote,
		Deadline:             payload.Deadline,
		MaxParticipants:      maxParticipants,
		Status:               models.ServiceActive,
		MatchedUserIDs:       []string{},
		ReceiverConfirmedIDs: []string{},
		SchedulingType:       payload.SchedulingType,
		SpecificDate:         payload.SpecificDate,
		SpecificTime:         payload.SpecificTime,
		RecurringPattern:     payload.RecurringPattern,
		OpenAvailability:     payload.OpenAvailability,
	}

	if err := s.Repo.Create(svc); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	utils.GetLogger().Info("service created",
		zap.String("serviceID", svc.ID), zap.String("userID", userID), zap.String("type", string(svc.ServiceType)))
	return svc, nil
}

func (s *DefaultServiceService) GetByID(id string) (*models.Service, error) {
	svc, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, ErrNotFound
	}
	return svc, nil
}

func (s *DefaultServiceService) List(filters models.ServiceFilters, page, limit int64) ([]models.Service, int64, error) {
	return s.Repo.List(filters, page, limit)
}

// Update applies owner edits. A status change goes through the transition
// table; only owner-permitted transitions are ever applied directly.
func (s *DefaultServiceService) Update(serviceID, userID string, payload models.ServiceUpdate) (*models.Service, error) {
	svc, err := s.GetByID(serviceID)
	if err != nil {
		return nil, err
	}
	if svc.UserID != userID {
		return nil, ErrUnauthorized
	}

	if payload.Status != nil && *payload.Status != svc.Status {
		if !ownerTransitionAllowed(svc.Status, *payload.Status) {
			return nil, &InvalidTransitionError{From: svc.Status, To: *payload.Status}
		}
		// The only owner-permitted direct transition is into CANCELLED.
		return s.Cancel(serviceID, userID)
	}

	setDoc := bson.M{}
	if payload.Title != nil {
		setDoc["title"] = *payload.Title
	}
	if payload.Description != nil {
		setDoc["description"] = *payload.Description
	}
	if payload.Category != nil {
		setDoc["category"] = *payload.Category
	}
	if payload.Tags != nil {
		setDoc["tags"] = payload.Tags
	}
	if payload.EstimatedDuration != nil {
		setDoc["estimated_duration"] = *payload.EstimatedDuration
	}
	if payload.Location != nil {
		setDoc["location"] = payload.Location
	}
	if payload.IsRemote != nil {
		setDoc["is_remote"] = *payload.IsRemote
	}
	if payload.Deadline != nil {
		if payload.Deadline.Before(time.Now()) {
			return nil, ErrPastDeadline
		}
		setDoc["deadline"] = payload.Deadline
	}
	if payload.SchedulingType != nil {
		setDoc["scheduling_type"] = *payload.SchedulingType
	}
	if payload.OpenAvailability != nil {
		setDoc["open_availability"] = *payload.OpenAvailability
	}

	if len(setDoc) > 0 {
		if err := s.Repo.UpdateSetDocument(serviceID, setDoc); err != nil {
			return nil, fmt.Errorf("failed to update service %s: %w", serviceID, err)
		}
	}
	return s.GetByID(serviceID)
}

// Delete removes an ACTIVE listing. Anything matched or terminal stays for
// the audit trail.
func (s *DefaultServiceService) Delete(serviceID, userID string) error {
	svc, err := s.GetByID(serviceID)
	if err != nil {
		return err
	}
	if svc.UserID != userID {
		return ErrUnauthorized
	}
	if svc.Status != models.ServiceActive || len(svc.MatchedUserIDs) > 0 {
		return ErrNotDeletable
	}
	return s.Repo.Delete(serviceID)
}

// Match adds the caller as a participant. The capacity check rides in the
// conditional update, so concurrent joiners cannot oversubscribe.
func (s *DefaultServiceService) Match(serviceID, userID string) (*models.Service, error) {
	svc, err := s.GetByID(serviceID)
	if err != nil {
		return nil, err
	}
	if svc.UserID == userID {
		return nil, ErrOwnService
	}
	if svc.Status != models.ServiceActive {
		return nil, &InvalidTransitionError{From: svc.Status, To: models.ServiceInProgress}
	}

	ok, err := s.Repo.MatchUser(serviceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to match user to service %s: %w", serviceID, err)
	}
	if !ok {
		// Lost a race: either the status moved on or the last slot went to
		// someone else. Re-read to tell the caller which.
		current, err := s.GetByID(serviceID)
		if err != nil {
			return nil, err
		}
		if current.Status != models.ServiceActive {
			return nil, &InvalidTransitionError{From: current.Status, To: models.ServiceInProgress}
		}
		return nil, ErrCapacityExceeded
	}

	utils.GetLogger().Info("user matched to service",
		zap.String("serviceID", serviceID), zap.String("userID", userID))
	return s.GetByID(serviceID)
}

// Cancel moves the service to CANCELLED. Allowed for the owner or any
// matched participant, any time before a terminal state.
func (s *DefaultServiceService) Cancel(serviceID, userID string) (*models.Service, error) {
	svc, err := s.GetByID(serviceID)
	if err != nil {
		return nil, err
	}
	if svc.UserID != userID && !contains(svc.MatchedUserIDs, userID) {
		return nil, ErrUnauthorized
	}

	ok, err := s.Repo.SetStatusIf(serviceID,
		[]models.ServiceStatus{models.ServiceActive, models.ServiceInProgress}, models.ServiceCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel service %s: %w", serviceID, err)
	}
	if !ok {
		current, err := s.GetByID(serviceID)
		if err != nil {
			return nil, err
		}
		return nil, &InvalidTransitionError{From: current.Status, To: models.ServiceCancelled}
	}

	s.rejectPending(serviceID, "Service has been cancelled")
	utils.GetLogger().Info("service cancelled",
		zap.String("serviceID", serviceID), zap.String("userID", userID))
	return s.GetByID(serviceID)
}

// Participants returns the provider and all matched users with their roles.
func (s *DefaultServiceService) Participants(serviceID string) ([]models.Participant, error) {
	svc, err := s.GetByID(serviceID)
	if err != nil {
		return nil, err
	}

	out := make([]models.Participant, 0, len(svc.MatchedUserIDs)+1)
	if p := s.participant(svc.UserID, "provider"); p != nil {
		out = append(out, *p)
	}
	for _, uid := range svc.MatchedUserIDs {
		if p := s.participant(uid, "participant"); p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *DefaultServiceService) participant(userID, role string) *models.Participant {
	user, err := s.Users.GetByID(userID)
	if err != nil || user == nil {
		utils.GetLogger().Warn("participant lookup failed",
			zap.String("userID", userID), zap.Error(err))
		return nil
	}
	return &models.Participant{ID: user.ID, Username: user.Username, FullName: user.FullName, Role: role}
}

// SweepExpired expires overdue listings. Only ACTIVE services actually move
// to EXPIRED; exchanges already underway keep running past their deadline.
// Redundant sweeps are harmless: the conditional update and the
// pending-only bulk reject both no-op the second time.
func (s *DefaultServiceService) SweepExpired(now time.Time) (int64, error) {
	candidates, err := s.Repo.FindExpiring(now)
	if err != nil {
		return 0, fmt.Errorf("failed to find expiring services: %w", err)
	}

	var expired int64
	for _, svc := range candidates {
		ok, err := s.Repo.SetStatusIf(svc.ID, []models.ServiceStatus{models.ServiceActive}, models.ServiceExpired)
		if err != nil {
			utils.GetLogger().Warn("failed to expire service", zap.String("serviceID", svc.ID), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		expired++
		utils.ExpiredServicesSwept.Inc()
		s.rejectPending(svc.ID, "Service has expired")
	}

	if expired > 0 {
		utils.GetLogger().Info("expired services swept", zap.Int64("count", expired))
	}
	return expired, nil
}

// rejectPending bulk-rejects open join requests on a terminal transition.
// Best-effort: a failure here never rolls the transition back.
func (s *DefaultServiceService) rejectPending(serviceID, reason string) {
	if _, err := s.Requests.RejectPending(serviceID, reason); err != nil {
		utils.GetLogger().Warn("failed to reject pending join requests",
			zap.String("serviceID", serviceID), zap.Error(err))
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
