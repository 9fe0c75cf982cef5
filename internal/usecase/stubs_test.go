package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

type mockUserRepository struct {
	users map[string]*domain.User

	getByEmailCalls int
	getByIDCalls    int

	usernameExists    map[string]bool
	usernameElseTaken bool
	existsCalls       int

	recentUsernames     []string
	listRecentCalls     int
	listRecentErr       error

	updateStatusCalls  int
	updateStatusID     string
	updateStatusStatus domain.UserStatus
	updateStatusErr    error

	updatePasswordCalls int
	updatePasswordHash  string
	updatePasswordErr   error

	createCalls int
	createdUser domain.User
	createdProf domain.Profile
	createErr   error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:          make(map[string]*domain.User),
		usernameExists: make(map[string]bool),
	}
}

func (m *mockUserRepository) addUser(u domain.User) {
	copied := u
	m.users[u.ID] = &copied
}

func (m *mockUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.getByIDCalls++
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.getByEmailCalls++
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) UsernameExists(_ context.Context, username string) (bool, error) {
	m.existsCalls++
	if taken, ok := m.usernameExists[username]; ok {
		return taken, nil
	}
	return m.usernameElseTaken, nil
}

func (m *mockUserRepository) ListRecentUsernames(_ context.Context, _ int) ([]string, error) {
	m.listRecentCalls++
	if m.listRecentErr != nil {
		return nil, m.listRecentErr
	}
	out := make([]string, len(m.recentUsernames))
	copy(out, m.recentUsernames)
	return out, nil
}

func (m *mockUserRepository) UpdateStatus(_ context.Context, id string, status domain.UserStatus) error {
	m.updateStatusCalls++
	m.updateStatusID = id
	m.updateStatusStatus = status
	if m.updateStatusErr != nil {
		return m.updateStatusErr
	}
	if u, ok := m.users[id]; ok {
		u.Status = status
	}
	return nil
}

func (m *mockUserRepository) UpdatePassword(_ context.Context, id, passwordHash, _ string, _ time.Time) error {
	m.updatePasswordCalls++
	m.updatePasswordHash = passwordHash
	if m.updatePasswordErr != nil {
		return m.updatePasswordErr
	}
	if u, ok := m.users[id]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockUserRepository) CreateWithProfile(_ context.Context, user domain.User, profile domain.Profile) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	m.createdUser = user
	m.createdProf = profile
	m.addUser(user)
	return nil
}

type mockLoginHistoryRepository struct {
	appendCalls int
	appended    []domain.LoginHistory
	appendErr   error

	knownIPs    []string
	listIPsErr  error
	listIPCalls int
}

func (m *mockLoginHistoryRepository) Append(_ context.Context, entry domain.LoginHistory) error {
	m.appendCalls++
	if m.appendErr != nil {
		return m.appendErr
	}
	m.appended = append(m.appended, entry)
	return nil
}

func (m *mockLoginHistoryRepository) ListIPs(_ context.Context, _ string) ([]string, error) {
	m.listIPCalls++
	if m.listIPsErr != nil {
		return nil, m.listIPsErr
	}
	out := make([]string, len(m.knownIPs))
	copy(out, m.knownIPs)
	return out, nil
}

func (m *mockLoginHistoryRepository) ListByUser(context.Context, string, int) ([]domain.LoginHistory, error) {
	return nil, errors.New("unexpected call: ListByUser")
}

type mockProfileRepository struct {
	profile *domain.Profile

	freezeCalls int
	freezeUntil time.Time
	freezeErr   error
}

func (m *mockProfileRepository) GetByUserID(context.Context, string) (*domain.Profile, error) {
	if m.profile == nil {
		return nil, repository.ErrNotFound
	}
	copied := *m.profile
	return &copied, nil
}

func (m *mockProfileRepository) SetActionsFreeze(_ context.Context, _ string, until time.Time) error {
	m.freezeCalls++
	m.freezeUntil = until
	return m.freezeErr
}

// memAttemptStore is an in-memory AttemptStore recording TTLs and set calls
// so idempotency and TTL-preservation assertions stay observable.
type memAttemptStore struct {
	values map[string]int
	ttls   map[string]time.Duration

	setCalls int
	getErr   error
	setErr   error
}

func newMemAttemptStore() *memAttemptStore {
	return &memAttemptStore{
		values: make(map[string]int),
		ttls:   make(map[string]time.Duration),
	}
}

func (m *memAttemptStore) Get(_ context.Context, key string) (int, bool, error) {
	if m.getErr != nil {
		return 0, false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memAttemptStore) Set(_ context.Context, key string, attempts int, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.setCalls++
	m.values[key] = attempts
	m.ttls[key] = ttl
	return nil
}

func (m *memAttemptStore) Delete(_ context.Context, key string) error {
	delete(m.values, key)
	delete(m.ttls, key)
	return nil
}

func (m *memAttemptStore) TTL(_ context.Context, key string) (time.Duration, bool, error) {
	d, ok := m.ttls[key]
	return d, ok, nil
}

type memCache struct {
	values map[string]string
	getErr error
	setErr error
}

func newMemCache() *memCache {
	return &memCache{values: make(map[string]string)}
}

func (m *memCache) Get(_ context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	return v, nil
}

func (m *memCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func (m *memCache) TTL(context.Context, string) (time.Duration, error) {
	return 0, nil
}

type mockVerificationStore struct {
	token     string
	issueErr  error
	issueCalls int

	tokenOwners map[string]string
	lookupErr   error

	cooldown      map[string]bool
	cooldownErr   error
	setCooldownN  int

	invalidated int
}

func newMockVerificationStore() *mockVerificationStore {
	return &mockVerificationStore{
		tokenOwners: make(map[string]string),
		cooldown:    make(map[string]bool),
	}
}

func (m *mockVerificationStore) IssueOrReuse(_ context.Context, userID string) (string, error) {
	m.issueCalls++
	if m.issueErr != nil {
		return "", m.issueErr
	}
	if m.token == "" {
		m.token = "tok-" + userID
	}
	m.tokenOwners[m.token] = userID
	return m.token, nil
}

func (m *mockVerificationStore) LookupToken(_ context.Context, token string) (string, error) {
	if m.lookupErr != nil {
		return "", m.lookupErr
	}
	userID, ok := m.tokenOwners[token]
	if !ok {
		return "", repository.ErrNotFound
	}
	return userID, nil
}

func (m *mockVerificationStore) Invalidate(_ context.Context, _, token string) error {
	m.invalidated++
	delete(m.tokenOwners, token)
	return nil
}

func (m *mockVerificationStore) CooldownActive(_ context.Context, userID string) (bool, error) {
	if m.cooldownErr != nil {
		return false, m.cooldownErr
	}
	return m.cooldown[userID], nil
}

func (m *mockVerificationStore) SetCooldown(_ context.Context, userID string) error {
	m.setCooldownN++
	m.cooldown[userID] = true
	return nil
}

type mockResetTokenStore struct {
	token      string
	owners     map[string]string
	issueCalls int
	consumed   int
}

func newMockResetTokenStore() *mockResetTokenStore {
	return &mockResetTokenStore{owners: make(map[string]string)}
}

func (m *mockResetTokenStore) Issue(_ context.Context, userID string) (string, error) {
	m.issueCalls++
	m.token = "reset-" + userID
	m.owners[m.token] = userID
	return m.token, nil
}

func (m *mockResetTokenStore) Lookup(_ context.Context, token string) (string, error) {
	userID, ok := m.owners[token]
	if !ok {
		return "", repository.ErrNotFound
	}
	return userID, nil
}

func (m *mockResetTokenStore) Consume(_ context.Context, token string) error {
	if _, ok := m.owners[token]; !ok {
		return repository.ErrNotFound
	}
	m.consumed++
	delete(m.owners, token)
	return nil
}

type mockPublisher struct {
	duplicateCalls    int
	duplicateEvent    domain.DuplicateRegistrationEvent
	ipChangedCalls    int
	ipChangedEvent    domain.IPChangedEvent
	failedLoginCalls  int
	failedLoginEvent  domain.FailedLoginEvent
	confirmationCalls int
	confirmationEvent domain.ConfirmationRequestedEvent
	resetCalls        int
	resetEvent        domain.PasswordResetRequestedEvent
	err               error
}

func (m *mockPublisher) PublishDuplicateRegistration(_ context.Context, event domain.DuplicateRegistrationEvent) error {
	m.duplicateCalls++
	m.duplicateEvent = event
	return m.err
}

func (m *mockPublisher) PublishIPChanged(_ context.Context, event domain.IPChangedEvent) error {
	m.ipChangedCalls++
	m.ipChangedEvent = event
	return m.err
}

func (m *mockPublisher) PublishFailedLogin(_ context.Context, event domain.FailedLoginEvent) error {
	m.failedLoginCalls++
	m.failedLoginEvent = event
	return m.err
}

func (m *mockPublisher) PublishConfirmationRequested(_ context.Context, event domain.ConfirmationRequestedEvent) error {
	m.confirmationCalls++
	m.confirmationEvent = event
	return m.err
}

func (m *mockPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	m.resetCalls++
	m.resetEvent = event
	return m.err
}

type stubCaptchaVerifier struct {
	ok    bool
	err   error
	calls int
	last  string
}

func (s *stubCaptchaVerifier) Verify(_ context.Context, response string) (bool, error) {
	s.calls++
	s.last = response
	return s.ok, s.err
}

type stubSecondFactor struct {
	err   error
	calls int
}

func (s *stubSecondFactor) Verify(context.Context, string, string) error {
	s.calls++
	return s.err
}

type stubUAParser struct {
	info domain.ClientInfo
}

func (s *stubUAParser) Parse(raw string) domain.ClientInfo {
	info := s.info
	info.Raw = raw
	return info
}
