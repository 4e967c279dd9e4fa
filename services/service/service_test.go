package service

import (
	"sync"
	"time"

	"hive/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// In-memory fakes that replicate the conditional-update semantics of the
// Mongo repositories, so lifecycle logic runs without a database.

type memServiceRepo struct {
	mu       sync.Mutex
	services map[string]*models.Service
}

func newMemServiceRepo(services ...*models.Service) *memServiceRepo {
	r := &memServiceRepo{services: make(map[string]*models.Service)}
	for _, s := range services {
		cp := *s
		r.services[s.ID] = &cp
	}
	return r
}

func (r *memServiceRepo) Create(s *models.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	cp := *s
	r.services[s.ID] = &cp
	return nil
}

func (r *memServiceRepo) GetByID(id string) (*models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	cp.MatchedUserIDs = append([]string(nil), s.MatchedUserIDs...)
	cp.ReceiverConfirmedIDs = append([]string(nil), s.ReceiverConfirmedIDs...)
	return &cp, nil
}

func (r *memServiceRepo) List(filters models.ServiceFilters, page, limit int64) ([]models.Service, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Service
	for _, s := range r.services {
		if filters.Status != "" && s.Status != filters.Status {
			continue
		}
		if filters.UserID != "" && s.UserID != filters.UserID {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *memServiceRepo) UpdateSetDocument(id string, updateDoc bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[id]
	if !ok {
		return nil
	}
	if v, ok := updateDoc["title"]; ok {
		s.Title = v.(string)
	}
	if v, ok := updateDoc["description"]; ok {
		s.Description = v.(string)
	}
	if v, ok := updateDoc["estimated_duration"]; ok {
		s.EstimatedDuration = v.(float64)
	}
	s.UpdatedAt = time.Now()
	return nil
}

func (r *memServiceRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.services, id)
	return nil
}

func (r *memServiceRepo) MatchUser(serviceID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[serviceID]
	if !ok || s.Status != models.ServiceActive || len(s.MatchedUserIDs) >= s.MaxParticipants {
		return false, nil
	}
	s.MatchedUserIDs = addToSet(s.MatchedUserIDs, userID)
	s.Status = models.ServiceInProgress
	return true, nil
}

func (r *memServiceRepo) ApproveParticipant(serviceID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[serviceID]
	if !ok || (s.Status != models.ServiceActive && s.Status != models.ServiceInProgress) {
		return false, nil
	}
	already := inSet(s.MatchedUserIDs, userID)
	if !already && len(s.MatchedUserIDs) >= s.MaxParticipants {
		return false, nil
	}
	s.MatchedUserIDs = addToSet(s.MatchedUserIDs, userID)
	s.Status = models.ServiceInProgress
	return true, nil
}

func (r *memServiceRepo) SetProviderConfirmed(serviceID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[serviceID]
	if !ok || s.Status != models.ServiceInProgress {
		return false, nil
	}
	s.ProviderConfirmed = true
	return true, nil
}

func (r *memServiceRepo) AddReceiverConfirmation(serviceID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[serviceID]
	if !ok || s.Status != models.ServiceInProgress || !inSet(s.MatchedUserIDs, userID) {
		return false, nil
	}
	s.ReceiverConfirmedIDs = addToSet(s.ReceiverConfirmedIDs, userID)
	return true, nil
}

func (r *memServiceRepo) CompleteIfInProgress(serviceID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[serviceID]
	if !ok || s.Status != models.ServiceInProgress {
		return false, nil
	}
	s.Status = models.ServiceCompleted
	s.CompletedAt = &at
	return true, nil
}

func (r *memServiceRepo) SetStatusIf(serviceID string, from []models.ServiceStatus, to models.ServiceStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[serviceID]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if s.Status == f {
			s.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (r *memServiceRepo) FindExpiring(now time.Time) ([]models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Service
	for _, s := range r.services {
		if s.Deadline == nil || !s.Deadline.Before(now) {
			continue
		}
		if s.Status == models.ServiceActive || s.Status == models.ServiceInProgress {
			out = append(out, *s)
		}
	}
	return out, nil
}

func addToSet(set []string, v string) []string {
	if inSet(set, v) {
		return set
	}
	return append(set, v)
}

func inSet(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// ---

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUserRepo(users ...*models.User) *memUserRepo {
	r := &memUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		cp := *u
		r.users[u.ID] = &cp
	}
	return r
}

func (r *memUserRepo) Create(u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) Update(u *models.User) error { return r.Create(u) }

func (r *memUserRepo) UpdateSetDocument(string, bson.M) error { return nil }

func (r *memUserRepo) GetByID(id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(string) (*models.User, error)    { return nil, nil }
func (r *memUserRepo) GetByUsername(string) (*models.User, error) { return nil, nil }

func (r *memUserRepo) GetAll() ([]models.User, error) { return nil, nil }

func (r *memUserRepo) AdjustBalance(id string, delta, maxBalance float64) (bool, error) {
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

func (r *memUserRepo) balance(id string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id].TimeBankBalance
}

// ---

type memLedgerRepo struct {
	mu       sync.Mutex
	entries  []models.TimeBankEntry
	failures []models.FailedTimeBankEntry
}

func (r *memLedgerRepo) InsertEntry(e *models.TimeBankEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *e)
	return nil
}

func (r *memLedgerRepo) InsertFailure(f *models.FailedTimeBankEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, *f)
	return nil
}

func (r *memLedgerRepo) EntriesByUser(userID string, limit int64) ([]models.TimeBankEntry, error) {
	return nil, nil
}

func (r *memLedgerRepo) AllEntries(page, limit int64) ([]models.TimeBankEntry, int64, error) {
	return nil, 0, nil
}

func (r *memLedgerRepo) AllFailures(page, limit int64) ([]models.FailedTimeBankEntry, int64, error) {
	return nil, 0, nil
}

// ---

type memJoinRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*models.JoinRequest
}

func newMemJoinRequestRepo(requests ...*models.JoinRequest) *memJoinRequestRepo {
	r := &memJoinRequestRepo{requests: make(map[string]*models.JoinRequest)}
	for _, req := range requests {
		cp := *req
		r.requests[req.ID] = &cp
	}
	return r
}

func (r *memJoinRequestRepo) Create(req *models.JoinRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *memJoinRequestRepo) GetByID(id string) (*models.JoinRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (r *memJoinRequestRepo) ListByService(serviceID string, page, limit int64) ([]models.JoinRequest, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.JoinRequest
	for _, req := range r.requests {
		if req.ServiceID == serviceID {
			out = append(out, *req)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memJoinRequestRepo) ListByUser(userID string, status models.JoinRequestStatus, page, limit int64) ([]models.JoinRequest, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.JoinRequest
	for _, req := range r.requests {
		if req.UserID != userID {
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		out = append(out, *req)
	}
	return out, int64(len(out)), nil
}

func (r *memJoinRequestRepo) FindByStatus(serviceID, userID string, status models.JoinRequestStatus) (*models.JoinRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.ServiceID == serviceID && req.UserID == userID && req.Status == status {
			cp := *req
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memJoinRequestRepo) TransitionStatus(id string, from, to models.JoinRequestStatus, adminMessage string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.Status != from {
		return false, nil
	}
	req.Status = to
	if adminMessage != "" {
		req.AdminMessage = adminMessage
	}
	return true, nil
}

func (r *memJoinRequestRepo) RejectPending(serviceID, reason string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, req := range r.requests {
		if req.ServiceID == serviceID && req.Status == models.JoinRequestPending {
			req.Status = models.JoinRequestRejected
			req.AdminMessage = reason
			n++
		}
	}
	return n, nil
}

func (r *memJoinRequestRepo) statusOf(id string) models.JoinRequestStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[id].Status
}

// ---

func newTestUser(username string, balance float64) *models.User {
	return &models.User{
		ID:              uuid.New().String(),
		Username:        username,
		IsActive:        true,
		TimeBankBalance: balance,
	}
}

func newTestService(ownerID string, status models.ServiceStatus, maxParticipants int, duration float64) *models.Service {
	return &models.Service{
		ID:                   uuid.New().String(),
		UserID:               ownerID,
		Title:                "Gardening help",
		Description:          "Help with weeding and planting",
		ServiceType:          models.ServiceOffer,
		EstimatedDuration:    duration,
		MaxParticipants:      maxParticipants,
		Status:               status,
		MatchedUserIDs:       []string{},
		ReceiverConfirmedIDs: []string{},
	}
}

func pendingRequest(serviceID, userID string) *models.JoinRequest {
	return &models.JoinRequest{
		ID:        uuid.New().String(),
		ServiceID: serviceID,
		UserID:    userID,
		Status:    models.JoinRequestPending,
	}
}
