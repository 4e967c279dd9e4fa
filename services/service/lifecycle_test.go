package service

import (
	"errors"
	"testing"
	"time"

	"hive/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchMovesActiveToInProgress(t *testing.T) {
	provider := newTestUser("provider", 3.0)
	joiner := newTestUser("joiner", 3.0)
	svc := newTestService(provider.ID, models.ServiceActive, 2, 1.0)

	repo := newMemServiceRepo(svc)
	svcService, _ := newTestServiceService(repo, newMemUserRepo(provider, joiner), newMemJoinRequestRepo())

	got, err := svcService.Match(svc.ID, joiner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ServiceInProgress, got.Status)
	assert.Contains(t, got.MatchedUserIDs, joiner.ID)
}

func TestMatchOwnService(t *testing.T) {
	provider := newTestUser("provider", 3.0)
	svc := newTestService(provider.ID, models.ServiceActive, 1, 1.0)

	svcService, _ := newTestServiceService(newMemServiceRepo(svc), newMemUserRepo(provider), newMemJoinRequestRepo())

	_, err := svcService.Match(svc.ID, provider.ID)
	assert.ErrorIs(t, err, ErrOwnService)
}

func TestMatchFullServiceReportsCapacity(t *testing.T) {
	provider := newTestUser("provider", 3.0)
	joiner := newTestUser("joiner", 3.0)

	// Still ACTIVE but already at capacity: the conditional update loses on
	// the size filter, not on status.
	svc := newTestService(provider.ID, models.ServiceActive, 1, 1.0)
	svc.MatchedUserIDs = []string{"someone-else"}

	svcService, _ := newTestServiceService(newMemServiceRepo(svc), newMemUserRepo(provider, joiner), newMemJoinRequestRepo())

	_, err := svcService.Match(svc.ID, joiner.ID)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestMatchInProgressService(t *testing.T) {
	provider := newTestUser("provider", 3.0)
	joiner := newTestUser("joiner", 3.0)
	svc := newTestService(provider.ID, models.ServiceInProgress, 2, 1.0)

	svcService, _ := newTestServiceService(newMemServiceRepo(svc), newMemUserRepo(provider, joiner), newMemJoinRequestRepo())

	_, err := svcService.Match(svc.ID, joiner.ID)
	var transitionErr *InvalidTransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, models.ServiceInProgress, transitionErr.From)
}

func TestUpdateRejectsDirectCompletion(t *testing.T) {
	provider := newTestUser("provider", 3.0)
	svc := newTestService(provider.ID, models.ServiceInProgress, 1, 1.0)

	svcService, _ := newTestServiceService(newMemServiceRepo(svc), newMemUserRepo(provider), newMemJoinRequestRepo())

	completed := models.ServiceCompleted
	_, err := svcService.Update(svc.ID, provider.ID, models.ServiceUpdate{Status: &completed})
	var transitionErr *InvalidTransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, models.ServiceCompleted, transitionErr.To)
}

func TestUpdateStatusToCancelled(t *testing.T) {
	provider := newTestUser("provider", 3.0)
	svc := newTestService(provider.ID, models.ServiceActive, 1, 1.0)

	requests := newMemJoinRequestRepo(pendingRequest(svc.ID, "hopeful"))
	svcService, _ := newTestServiceService(newMemServiceRepo(svc), newMemUserRepo(provider), requests)

	cancelled := models.ServiceCancelled
	got, err := svcService.Update(svc.ID, provider.ID, models.ServiceUpdate{Status: &cancelled})
	require.NoError(t, err)
	assert.Equal(t, models.ServiceCancelled, got.Status)
}

func TestUpdateByNonOwner(t *testing.T) {
	provider := newTestUser("provider", 3.0)
	other := newTestUser("other", 3.0)
	svc := newTestService(provider.ID, models.ServiceActive, 1, 1.0)

	svcService, _ := newTestServiceService(newMemServiceRepo(svc), newMemUserRepo(provider, other), newMemJoinRequestRepo())

	title := "New title"
	_, err := svcService.Update(svc.ID, other.ID, models.ServiceUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCancelRejectsPendingRequests(t *testing.T) {
	provider := newTestUser("provider", 3.0)
	svc := newTestService(provider.ID, models.ServiceActive, 1, 1.0)
	request := pendingRequest(svc.ID, "hopeful")

	requests := newMemJoinRequestRepo(request)
	svcService, _ := newTestServiceService(newMemServiceRepo(svc), newMemUserRepo(provider), requests)

	got, err := svcService.Cancel(svc.ID, provider.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ServiceCancelled, got.Status)
	assert.Equal(t, models.JoinRequestRejected, requests.statusOf(request.ID))
}

func TestCancelByMatchedParticipant(t *testing.T) {
	provider := newTestUser("provider", 3.0)
	participant := newTestUser("participant", 3.0)
	svc := newTestService(provider.ID, models.ServiceInProgress, 1, 1.0)
	svc.MatchedUserIDs = []string{participant.ID}

	svcService, _ := newTestServiceService(newMemServiceRepo(svc), newMemUserRepo(provider, participant), newMemJoinRequestRepo())

	got, err := svcService.Cancel(svc.ID, participant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ServiceCancelled, got.Status)
}

func TestCancelCompletedService(t *testing.T) {
	provider := newTestUser("provider", 3.0)
	svc := newTestService(provider.ID, models.ServiceCompleted, 1, 1.0)

	svcService, _ := newTestServiceService(newMemServiceRepo(svc), newMemUserRepo(provider), newMemJoinRequestRepo())

	_, err := svcService.Cancel(svc.ID, provider.ID)
	var transitionErr *InvalidTransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, models.ServiceCompleted, transitionErr.From)
}

func TestDeleteRequiresActiveUnmatched(t *testing.T) {
	provider := newTestUser("provider", 3.0)
	active := newTestService(provider.ID, models.ServiceActive, 1, 1.0)
	inProgress := newTestService(provider.ID, models.ServiceInProgress, 1, 1.0)
	inProgress.MatchedUserIDs = []string{"someone"}

	repo := newMemServiceRepo(active, inProgress)
	svcService, _ := newTestServiceService(repo, newMemUserRepo(provider), newMemJoinRequestRepo())

	require.NoError(t, svcService.Delete(active.ID, provider.ID))
	assert.ErrorIs(t, svcService.Delete(inProgress.ID, provider.ID), ErrNotDeletable)
}

func TestCreateRejectsPastDeadline(t *testing.T) {
	provider := newTestUser("provider", 3.0)
	svcService, _ := newTestServiceService(newMemServiceRepo(), newMemUserRepo(provider), newMemJoinRequestRepo())

	past := time.Now().Add(-time.Hour)
	_, err := svcService.Create(provider.ID, models.ServiceCreate{
		Title:             "Gardening help",
		Description:       "Help with weeding and planting",
		ServiceType:       models.ServiceOffer,
		EstimatedDuration: 2.0,
		Deadline:          &past,
	})
	assert.ErrorIs(t, err, ErrPastDeadline)
}

func TestSweepExpiresOnlyActiveServices(t *testing.T) {
	provider := newTestUser("provider", 3.0)
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	overdue := newTestService(provider.ID, models.ServiceActive, 1, 1.0)
	overdue.Deadline = &past
	running := newTestService(provider.ID, models.ServiceInProgress, 1, 1.0)
	running.Deadline = &past
	fresh := newTestService(provider.ID, models.ServiceActive, 1, 1.0)
	fresh.Deadline = &future

	request := pendingRequest(overdue.ID, "hopeful")
	requests := newMemJoinRequestRepo(request)
	repo := newMemServiceRepo(overdue, running, fresh)
	svcService, _ := newTestServiceService(repo, newMemUserRepo(provider), requests)

	expired, err := svcService.SweepExpired(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	got, err := svcService.GetByID(overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ServiceExpired, got.Status)
	assert.Equal(t, models.JoinRequestRejected, requests.statusOf(request.ID))

	got, err = svcService.GetByID(running.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ServiceInProgress, got.Status)

	got, err = svcService.GetByID(fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ServiceActive, got.Status)

	// Redundant sweeps are no-ops.
	expired, err = svcService.SweepExpired(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), expired)
}
