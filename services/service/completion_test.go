package service

import (
	"errors"
	"testing"

	"hive/models"
	"hive/services/timebank"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServiceService(repo *memServiceRepo, users *memUserRepo, requests *memJoinRequestRepo) (*DefaultServiceService, *memLedgerRepo) {
	ledger := &memLedgerRepo{}
	engine := timebank.NewTimeBankService(users, ledger)
	return NewServiceService(repo, users, requests, engine), ledger
}

func TestConfirmCompletionRequiresAllParties(t *testing.T) {
	provider := newTestUser("provider", 3.0)
	r1 := newTestUser("receiver1", 3.0)
	r2 := newTestUser("receiver2", 3.0)

	svc := newTestService(provider.ID, models.ServiceInProgress, 2, 2.0)
	svc.MatchedUserIDs = []string{r1.ID, r2.ID}

	repo := newMemServiceRepo(svc)
	users := newMemUserRepo(provider, r1, r2)
	svcService, _ := newTestServiceService(repo, users, newMemJoinRequestRepo())

	// One receiver confirms: still in progress.
	got, err := svcService.ConfirmCompletion(svc.ID, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ServiceInProgress, got.Status)

	// Provider confirms: the second receiver is still outstanding.
	got, err = svcService.ConfirmCompletion(svc.ID, provider.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ServiceInProgress, got.Status)

	// Last confirmation completes the service.
	got, err = svcService.ConfirmCompletion(svc.ID, r2.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ServiceCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
}

func TestCompletionSettlesLedgerLegs(t *testing.T) {
	provider := newTestUser("provider", 3.0)
	r1 := newTestUser("receiver1", 3.0)
	r2 := newTestUser("receiver2", 3.0)

	svc := newTestService(provider.ID, models.ServiceInProgress, 2, 2.0)
	svc.MatchedUserIDs = []string{r1.ID, r2.ID}

	repo := newMemServiceRepo(svc)
	users := newMemUserRepo(provider, r1, r2)
	requests := newMemJoinRequestRepo(pendingRequest(svc.ID, "late-joiner"))
	svcService, ledger := newTestServiceService(repo, users, requests)

	for _, uid := range []string{r1.ID, r2.ID, provider.ID} {
		_, err := svcService.ConfirmCompletion(svc.ID, uid)
		require.NoError(t, err)
	}

	// Provider earns duration x participants; each receiver spends duration.
	assert.Equal(t, 7.0, users.balance(provider.ID))
	assert.Equal(t, 1.0, users.balance(r1.ID))
	assert.Equal(t, 1.0, users.balance(r2.ID))
	assert.Len(t, ledger.entries, 3)
	assert.Empty(t, ledger.failures)

	// Open join requests are bulk-rejected on completion.
	got, _, err := requests.ListByService(svc.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.JoinRequestRejected, got[0].Status)
}

func TestConfirmCompletionByStranger(t *testing.T) {
	provider := newTestUser("provider", 3.0)
	receiver := newTestUser("receiver", 3.0)
	stranger := newTestUser("stranger", 3.0)

	svc := newTestService(provider.ID, models.ServiceInProgress, 1, 1.0)
	svc.MatchedUserIDs = []string{receiver.ID}

	repo := newMemServiceRepo(svc)
	svcService, _ := newTestServiceService(repo, newMemUserRepo(provider, receiver, stranger), newMemJoinRequestRepo())

	_, err := svcService.ConfirmCompletion(svc.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestConfirmCompletionIdempotent(t *testing.T) {
	provider := newTestUser("provider", 3.0)
	r1 := newTestUser("receiver1", 3.0)
	r2 := newTestUser("receiver2", 3.0)

	svc := newTestService(provider.ID, models.ServiceInProgress, 2, 1.0)
	svc.MatchedUserIDs = []string{r1.ID, r2.ID}

	repo := newMemServiceRepo(svc)
	svcService, _ := newTestServiceService(repo, newMemUserRepo(provider, r1, r2), newMemJoinRequestRepo())

	for i := 0; i < 3; i++ {
		got, err := svcService.ConfirmCompletion(svc.ID, r1.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ServiceInProgress, got.Status)
		assert.Equal(t, []string{r1.ID}, got.ReceiverConfirmedIDs)
	}
}

// A receiver without enough hours does not block completion: the service
// completes, the failed leg lands in the audit log, and nothing is rolled
// back or compensated.
func TestCompletionCommitsDespiteInsufficientReceiverBalance(t *testing.T) {
	provider := newTestUser("provider", 3.0)
	receiver := newTestUser("receiver", 0.5)

	svc := newTestService(provider.ID, models.ServiceInProgress, 1, 2.0)
	svc.MatchedUserIDs = []string{receiver.ID}

	repo := newMemServiceRepo(svc)
	users := newMemUserRepo(provider, receiver)
	svcService, ledger := newTestServiceService(repo, users, newMemJoinRequestRepo())

	_, err := svcService.ConfirmCompletion(svc.ID, receiver.ID)
	require.NoError(t, err)
	got, err := svcService.ConfirmCompletion(svc.ID, provider.ID)
	require.NoError(t, err)

	assert.Equal(t, models.ServiceCompleted, got.Status)
	// Provider leg succeeded, receiver leg was rejected all-or-nothing.
	assert.Equal(t, 5.0, users.balance(provider.ID))
	assert.Equal(t, 0.5, users.balance(receiver.ID))
	require.Len(t, ledger.failures, 1)
	assert.Equal(t, models.FailureInsufficientBalance, ledger.failures[0].Reason)
	require.NotNil(t, ledger.failures[0].UserBalanceAtFailure)
	assert.Equal(t, 0.5, *ledger.failures[0].UserBalanceAtFailure)
}

// A provider at the earning cap may still confirm; only their earn leg is
// rejected.
func TestProviderAtCapMayStillConfirm(t *testing.T) {
	provider := newTestUser("provider", timebank.MaxBalance)
	receiver := newTestUser("receiver", 3.0)

	svc := newTestService(provider.ID, models.ServiceInProgress, 1, 2.0)
	svc.MatchedUserIDs = []string{receiver.ID}

	repo := newMemServiceRepo(svc)
	users := newMemUserRepo(provider, receiver)
	svcService, ledger := newTestServiceService(repo, users, newMemJoinRequestRepo())

	_, err := svcService.ConfirmCompletion(svc.ID, provider.ID)
	require.NoError(t, err)
	got, err := svcService.ConfirmCompletion(svc.ID, receiver.ID)
	require.NoError(t, err)

	assert.Equal(t, models.ServiceCompleted, got.Status)
	assert.Equal(t, timebank.MaxBalance, users.balance(provider.ID))
	assert.Equal(t, 1.0, users.balance(receiver.ID))
	require.Len(t, ledger.failures, 1)
	assert.Equal(t, models.FailureProviderBalanceLimit, ledger.failures[0].Reason)
}

func TestConfirmCompletionOnActiveService(t *testing.T) {
	provider := newTestUser("provider", 3.0)
	svc := newTestService(provider.ID, models.ServiceActive, 1, 1.0)

	repo := newMemServiceRepo(svc)
	svcService, _ := newTestServiceService(repo, newMemUserRepo(provider), newMemJoinRequestRepo())

	_, err := svcService.ConfirmCompletion(svc.ID, provider.ID)
	var transitionErr *InvalidTransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, models.ServiceActive, transitionErr.From)
}
