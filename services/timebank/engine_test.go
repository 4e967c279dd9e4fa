package timebank

import (
	"errors"
	"sync"
	"testing"

	"hive/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// In-memory fakes mirroring the conditional-update semantics of the Mongo
// repositories, so the engine logic runs without a database.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
	// adjustHook runs inside AdjustBalance before the precondition check,
	// simulating a concurrent writer.
	adjustHook func()
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		cp := *u
		r.users[u.ID] = &cp
	}
	return r
}

func (r *fakeUserRepo) Create(u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Update(u *models.User) error {
	return r.Create(u)
}

func (r *fakeUserRepo) UpdateSetDocument(id string, _ bson.M) error {
	return nil
}

func (r *fakeUserRepo) GetByID(id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetAll() ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) AdjustBalance(id string, delta, maxBalance float64) (bool, error) {
	if r.adjustHook != nil {
		r.adjustHook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return false, nil
	}
	if delta > 0 && u.TimeBankBalance >= maxBalance {
		return false, nil
	}
	if delta < 0 && u.TimeBankBalance < -delta {
		return false, nil
	}
	u.TimeBankBalance += delta
	return true, nil
}

func (r *fakeUserRepo) balance(id string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id].TimeBankBalance
}

type fakeLedgerRepo struct {
	mu        sync.Mutex
	entries   []models.TimeBankEntry
	failures  []models.FailedTimeBankEntry
	insertErr error
}

func (r *fakeLedgerRepo) InsertEntry(e *models.TimeBankEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	r.entries = append(r.entries, *e)
	return nil
}

func (r *fakeLedgerRepo) InsertFailure(f *models.FailedTimeBankEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, *f)
	return nil
}

func (r *fakeLedgerRepo) EntriesByUser(userID string, limit int64) ([]models.TimeBankEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.TimeBankEntry
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeLedgerRepo) AllEntries(page, limit int64) ([]models.TimeBankEntry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.TimeBankEntry(nil), r.entries...), int64(len(r.entries)), nil
}

func (r *fakeLedgerRepo) AllFailures(page, limit int64) ([]models.FailedTimeBankEntry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.FailedTimeBankEntry(nil), r.failures...), int64(len(r.failures)), nil
}

func testUser(balance float64) *models.User {
	return &models.User{
		ID:              uuid.New().String(),
		Username:        "alice",
		Email:           "alice@example.com",
		IsActive:        true,
		TimeBankBalance: balance,
	}
}

func TestApplyEarn(t *testing.T) {
	u := testUser(3.0)
	users := newFakeUserRepo(u)
	ledger := &fakeLedgerRepo{}
	engine := NewTimeBankService(users, ledger)

	entry, err := engine.Apply(u.ID, 2.0, "Provided service: Gardening", "svc-1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 2.0, entry.Amount)
	assert.Equal(t, "svc-1", entry.ServiceID)
	assert.Equal(t, 5.0, users.balance(u.ID))
	require.Len(t, ledger.entries, 1)
	assert.Empty(t, ledger.failures)
}

func TestApplyEarnAtCapRejected(t *testing.T) {
	u := testUser(MaxBalance)
	users := newFakeUserRepo(u)
	ledger := &fakeLedgerRepo{}
	engine := NewTimeBankService(users, ledger)

	_, err := engine.Apply(u.ID, 1.0, "Provided service: Tutoring", "svc-1")
	require.Error(t, err)

	var ledgerErr *LedgerError
	require.True(t, errors.As(err, &ledgerErr))
	assert.Equal(t, models.FailureProviderBalanceLimit, ledgerErr.Reason)
	require.NotNil(t, ledgerErr.Balance)
	assert.Equal(t, MaxBalance, *ledgerErr.Balance)

	assert.Equal(t, MaxBalance, users.balance(u.ID))
	assert.Empty(t, ledger.entries)
	require.Len(t, ledger.failures, 1)
	failure := ledger.failures[0]
	assert.Equal(t, models.FailureProviderBalanceLimit, failure.Reason)
	require.NotNil(t, failure.UserBalanceAtFailure)
	assert.Equal(t, MaxBalance, *failure.UserBalanceAtFailure)
}

// The cap is checked before the delta: a user below it may earn past 10.0 in
// one mutation, and only the next earn is blocked.
func TestApplyEarnMayCrossCap(t *testing.T) {
	u := testUser(9.5)
	users := newFakeUserRepo(u)
	ledger := &fakeLedgerRepo{}
	engine := NewTimeBankService(users, ledger)

	_, err := engine.Apply(u.ID, 2.0, "Provided service: Moving help", "svc-1")
	require.NoError(t, err)
	assert.Equal(t, 11.5, users.balance(u.ID))

	_, err = engine.Apply(u.ID, 0.5, "Provided service: Moving help", "svc-2")
	require.Error(t, err)
	var ledgerErr *LedgerError
	require.True(t, errors.As(err, &ledgerErr))
	assert.Equal(t, models.FailureProviderBalanceLimit, ledgerErr.Reason)
	assert.Equal(t, 11.5, users.balance(u.ID))
}

func TestApplySpendInsufficientIsAllOrNothing(t *testing.T) {
	u := testUser(1.0)
	users := newFakeUserRepo(u)
	ledger := &fakeLedgerRepo{}
	engine := NewTimeBankService(users, ledger)

	_, err := engine.Apply(u.ID, -2.0, "Received service: Cooking", "svc-1")
	require.Error(t, err)

	var ledgerErr *LedgerError
	require.True(t, errors.As(err, &ledgerErr))
	assert.Equal(t, models.FailureInsufficientBalance, ledgerErr.Reason)
	require.NotNil(t, ledgerErr.Balance)
	assert.Equal(t, 1.0, *ledgerErr.Balance)

	// No partial deduction.
	assert.Equal(t, 1.0, users.balance(u.ID))
	assert.Empty(t, ledger.entries)
	require.Len(t, ledger.failures, 1)
}

func TestApplySpendToZero(t *testing.T) {
	u := testUser(2.0)
	users := newFakeUserRepo(u)
	ledger := &fakeLedgerRepo{}
	engine := NewTimeBankService(users, ledger)

	_, err := engine.Apply(u.ID, -2.0, "Received service: Cooking", "svc-1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, users.balance(u.ID))
}

func TestApplyUserNotFound(t *testing.T) {
	users := newFakeUserRepo()
	ledger := &fakeLedgerRepo{}
	engine := NewTimeBankService(users, ledger)

	_, err := engine.Apply("missing", 1.0, "Provided service: Tutoring", "")
	require.Error(t, err)

	var ledgerErr *LedgerError
	require.True(t, errors.As(err, &ledgerErr))
	assert.Equal(t, models.FailureUserNotFound, ledgerErr.Reason)
	assert.Nil(t, ledgerErr.Balance)

	require.Len(t, ledger.failures, 1)
	assert.Nil(t, ledger.failures[0].UserBalanceAtFailure)
}

// A concurrent writer can invalidate the precondition between the engine's
// read and its conditional write; the rejection must then carry the balance
// that actually blocked the mutation.
func TestApplyLostRaceReclassified(t *testing.T) {
	u := testUser(9.0)
	users := newFakeUserRepo(u)
	ledger := &fakeLedgerRepo{}
	engine := NewTimeBankService(users, ledger)

	raced := false
	users.adjustHook = func() {
		if !raced {
			raced = true
			users.mu.Lock()
			users.users[u.ID].TimeBankBalance = MaxBalance
			users.mu.Unlock()
		}
	}

	_, err := engine.Apply(u.ID, 1.0, "Provided service: Tutoring", "svc-1")
	require.Error(t, err)

	var ledgerErr *LedgerError
	require.True(t, errors.As(err, &ledgerErr))
	assert.Equal(t, models.FailureProviderBalanceLimit, ledgerErr.Reason)
	require.NotNil(t, ledgerErr.Balance)
	assert.Equal(t, MaxBalance, *ledgerErr.Balance)
	assert.Equal(t, MaxBalance, users.balance(u.ID))
}

func TestApplyEntryInsertFailureAfterBalanceMove(t *testing.T) {
	u := testUser(3.0)
	users := newFakeUserRepo(u)
	ledger := &fakeLedgerRepo{insertErr: errors.New("write concern error")}
	engine := NewTimeBankService(users, ledger)

	_, err := engine.Apply(u.ID, 1.0, "Provided service: Tutoring", "svc-1")
	require.Error(t, err)

	var ledgerErr *LedgerError
	require.True(t, errors.As(err, &ledgerErr))
	assert.Equal(t, models.FailureUnknown, ledgerErr.Reason)
	// The balance moved and is not rolled back.
	assert.Equal(t, 4.0, users.balance(u.ID))
	require.Len(t, ledger.failures, 1)
	assert.Contains(t, ledger.failures[0].ErrorMessage, "write concern")
}

func TestStatementFor(t *testing.T) {
	u := testUser(4.0)
	users := newFakeUserRepo(u)
	ledger := &fakeLedgerRepo{}
	engine := NewTimeBankService(users, ledger)

	_, err := engine.Apply(u.ID, 2.0, "Provided service: Gardening", "svc-1")
	require.NoError(t, err)

	statement, err := engine.StatementFor(u.ID)
	require.NoError(t, err)
	assert.Equal(t, 6.0, statement.Balance)
	assert.Equal(t, MaxBalance, statement.MaxBalance)
	assert.True(t, statement.CanEarn)
	require.Len(t, statement.Entries, 1)

	users.users[u.ID].TimeBankBalance = MaxBalance
	statement, err = engine.StatementFor(u.ID)
	require.NoError(t, err)
	assert.False(t, statement.CanEarn)
}

func TestCanEarn(t *testing.T) {
	u := testUser(MaxBalance)
	engine := NewTimeBankService(newFakeUserRepo(u), &fakeLedgerRepo{})

	ok, err := engine.CanEarn(u.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = engine.CanEarn("missing")
	require.Error(t, err)
}
