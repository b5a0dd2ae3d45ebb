package service

import (
	"context"
	"sync"
	"time"

	"biblio/backend/internal/audit"
	"biblio/backend/internal/otp"
	otpdomain "biblio/backend/internal/otp/domain"
	"biblio/backend/internal/security"
	"biblio/backend/internal/session"
	sessiondomain "biblio/backend/internal/session/domain"
	sessionrepo "biblio/backend/internal/session/repository"
	userdomain "biblio/backend/internal/user/domain"
)

var _ audit.AuditLogger = (*memAudit)(nil)

// memAudit records audit events in memory.
type memAudit struct {
	mu     sync.Mutex
	events []string
}

func (m *memAudit) LogEvent(_ context.Context, userID, action, resource, metadata string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, action)
}

func (m *memAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.events...)
}

// memUserRepo is an in-memory user repository keyed by user id.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*userdomain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*userdomain.User)}
}

func (m *memUserRepo) add(u *userdomain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*userdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*userdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) GetByPhone(_ context.Context, phone string) (*userdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) Create(_ context.Context, u *userdomain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserRepo) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (m *memUserRepo) SetMustResetPassword(_ context.Context, userID string, mustReset bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.MustResetPassword = mustReset
	}
	return nil
}

func (m *memUserRepo) SetVerified(_ context.Context, userID string, verified bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.Verified = verified
	}
	return nil
}

func (m *memUserRepo) UpdateEmail(_ context.Context, userID, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.Email = email
	}
	return nil
}

func (m *memUserRepo) UpdatePhone(_ context.Context, userID, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.Phone = phone
	}
	return nil
}

// memSessionRepo is an in-memory session repository.
type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*sessiondomain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*sessiondomain.Session)}
}

func (m *memSessionRepo) GetByID(_ context.Context, id string) (*sessiondomain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memSessionRepo) Create(_ context.Context, s *sessiondomain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return sessionrepo.ErrDuplicateID
	}
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memSessionRepo) Disable(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.Enabled = false
	}
	return nil
}

func (m *memSessionRepo) DisableAllByUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.UserID == userID {
			s.Enabled = false
		}
	}
	return nil
}

func (m *memSessionRepo) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.ExpiresAt.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// memCodeRepo is an in-memory one-time-code repository keyed by (contact, purpose).
type memCodeRepo struct {
	mu    sync.Mutex
	codes map[string]*otpdomain.Code
}

func newMemCodeRepo() *memCodeRepo {
	return &memCodeRepo{codes: make(map[string]*otpdomain.Code)}
}

func codeKey(contact string, purpose otpdomain.Purpose) string {
	return contact + "|" + string(purpose)
}

func (m *memCodeRepo) Get(_ context.Context, contact string, purpose otpdomain.Purpose) (*otpdomain.Code, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[codeKey(contact, purpose)]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memCodeRepo) Replace(_ context.Context, c *otpdomain.Code) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.codes[codeKey(c.Contact, c.Purpose)] = &cp
	return nil
}

func (m *memCodeRepo) Delete(_ context.Context, contact string, purpose otpdomain.Purpose) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.codes, codeKey(contact, purpose))
	return nil
}

func (m *memCodeRepo) Consume(_ context.Context, contact string, purpose otpdomain.Purpose, codeHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := codeKey(contact, purpose)
	c, ok := m.codes[k]
	if !ok || c.CodeHash != codeHash {
		return false, nil
	}
	delete(m.codes, k)
	return true, nil
}

func (m *memCodeRepo) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, c := range m.codes {
		if c.ExpiresAt.Before(cutoff) {
			delete(m.codes, k)
			n++
		}
	}
	return n, nil
}

// memSender captures delivered messages.
type memSender struct {
	mu   sync.Mutex
	sent []sentMsg
}

type sentMsg struct {
	To      string
	Subject string
	Body    string
}

func (m *memSender) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMsg{To: to, Subject: subject, Body: body})
	return nil
}

func (m *memSender) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *memSender) last() sentMsg {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMsg{}
	}
	return m.sent[len(m.sent)-1]
}

// fixture wires the services over in-memory repositories.
type fixture struct {
	users    *memUserRepo
	sessions *memSessionRepo
	codes    *memCodeRepo
	mail     *memSender
	sms      *memSender
	audit    *memAudit

	registry *session.Registry
	store    *otp.Store
	hasher   *security.Hasher
	tokens   *security.TokenProvider

	auth     *AuthService
	verifier *Verifier
	creds    *CredentialService
}

func newFixture() *fixture {
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		panic(err)
	}
	f := &fixture{
		users:    newMemUserRepo(),
		sessions: newMemSessionRepo(),
		codes:    newMemCodeRepo(),
		mail:     &memSender{},
		sms:      &memSender{},
		audit:    &memAudit{},
		hasher:   security.NewHasher(4), // min cost, tests only
		tokens:   tokens,
	}
	f.registry = session.NewRegistry(f.sessions)
	f.store = otp.NewStore(f.codes, 6, 10*time.Minute)
	f.auth = NewAuthService(f.users, f.registry, f.hasher, f.tokens, f.audit)
	f.verifier = NewVerifier(f.tokens, f.registry, f.users)
	f.creds = NewCredentialService(f.users, f.store, f.registry, f.hasher, f.tokens, f.mail, f.sms, f.audit)
	return f
}

// seedUser creates a verified member account with the given password.
func (f *fixture) seedUser(id, email, password string) *userdomain.User {
	hash, err := f.hasher.Hash([]byte(password))
	if err != nil {
		panic(err)
	}
	now := time.Now().UTC()
	u := &userdomain.User{
		ID:           id,
		Email:        email,
		Name:         "Test User",
		PasswordHash: hash,
		Roles:        []userdomain.Role{userdomain.RoleMember},
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.users.add(u)
	return u
}
