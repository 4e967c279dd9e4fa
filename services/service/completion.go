package service

import (
	"fmt"
	"time"

	"hive/models"
	"hive/utils"

	"go.uber.org/zap"
)

// Owner-permitted direct status transitions. COMPLETED is reachable only
// through the confirmation protocol and EXPIRED only through the sweep.
func ownerTransitionAllowed(from, to models.ServiceStatus) bool {
	if to != models.ServiceCancelled {
		return false
	}
	return from == models.ServiceActive || from == models.ServiceInProgress
}

type participantRole int

const (
	roleNone participantRole = iota
	roleProvider
	roleReceiver
)

func classifyParticipant(svc *models.Service, userID string) participantRole {
	if svc.UserID == userID {
		return roleProvider
	}
	if contains(svc.MatchedUserIDs, userID) {
		return roleReceiver
	}
	return roleNone
}

// allConfirmed reports whether the provider and every matched participant
// have confirmed. A service with no participants never completes.
func allConfirmed(svc *models.Service) bool {
	if !svc.ProviderConfirmed || len(svc.MatchedUserIDs) == 0 {
		return false
	}
	confirmed := make(map[string]bool, len(svc.ReceiverConfirmedIDs))
	for _, id := range svc.ReceiverConfirmedIDs {
		confirmed[id] = true
	}
	for _, id := range svc.MatchedUserIDs {
		if !confirmed[id] {
			return false
		}
	}
	return true
}

// ConfirmCompletion records one party's confirmation. Confirmations are
// idempotent, and a provider already at the earning cap may still confirm.
// When the last confirmation lands, the conditional completed-update picks a
// single winner among concurrent callers and that winner settles the ledger.
func (s *DefaultServiceService) ConfirmCompletion(serviceID, userID string) (*models.Service, error) {
	svc, err := s.GetByID(serviceID)
	if err != nil {
		return nil, err
	}

	role := classifyParticipant(svc, userID)
	if role == roleNone {
		return nil, ErrUnauthorized
	}
	if svc.Status != models.ServiceInProgress {
		return nil, &InvalidTransitionError{From: svc.Status, To: models.ServiceCompleted}
	}

	var ok bool
	switch role {
	case roleProvider:
		ok, err = s.Repo.SetProviderConfirmed(serviceID)
	case roleReceiver:
		ok, err = s.Repo.AddReceiverConfirmation(serviceID, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record confirmation on service %s: %w", serviceID, err)
	}
	if !ok {
		// The service left IN_PROGRESS between our read and the update.
		current, err := s.GetByID(serviceID)
		if err != nil {
			return nil, err
		}
		return nil, &InvalidTransitionError{From: current.Status, To: models.ServiceCompleted}
	}

	svc, err = s.GetByID(serviceID)
	if err != nil {
		return nil, err
	}
	if !allConfirmed(svc) {
		return svc, nil
	}

	won, err := s.Repo.CompleteIfInProgress(serviceID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to complete service %s: %w", serviceID, err)
	}
	if won {
		s.finalize(svc)
	}
	return s.GetByID(serviceID)
}

// finalize settles a completed exchange. The COMPLETED status has already
// committed; ledger legs that fail are recorded in the failure audit log and
// never undo the completion.
func (s *DefaultServiceService) finalize(svc *models.Service) {
	logger := utils.GetLogger().With(zap.String("serviceID", svc.ID))

	s.rejectPending(svc.ID, "Service has been completed")

	participants := len(svc.MatchedUserIDs)
	providerAmount := svc.EstimatedDuration * float64(participants)
	providerDesc := fmt.Sprintf("Provided service: %s (to %d participant(s))", svc.Title, participants)
	if _, err := s.Engine.Apply(svc.UserID, providerAmount, providerDesc, svc.ID); err != nil {
		logger.Warn("provider ledger leg failed", zap.String("userID", svc.UserID), zap.Error(err))
	}

	for _, uid := range svc.MatchedUserIDs {
		desc := "Received service: " + svc.Title
		if _, err := s.Engine.Apply(uid, -svc.EstimatedDuration, desc, svc.ID); err != nil {
			logger.Warn("receiver ledger leg failed", zap.String("userID", uid), zap.Error(err))
		}
	}

	utils.CompletionsFinalized.WithLabelValues("service").Inc()
	logger.Info("service completed", zap.Int("participants", participants))
}
