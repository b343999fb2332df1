package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/soaringjerry/Sanctuary/internal/models"
)

type authStubStore struct {
	mu     sync.Mutex
	users  map[string]*models.User
	codes  map[string]*models.ResetCode
	audits []models.AuditEntry
}

func newAuthStubStore() *authStubStore {
	return &authStubStore{users: map[string]*models.User{}, codes: map[string]*models.ResetCode{}}
}

func (s *authStubStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[email]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, nil
}

func (s *authStubStore) AddUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Email]; ok {
		return errors.New("duplicate user")
	}
	copy := *u
	s.users[u.Email] = &copy
	return nil
}

func (s *authStubStore) UpdatePassword(_ context.Context, userID string, hash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == userID {
			u.PassHash = hash
			return nil
		}
	}
	return errors.New("no user")
}

func (s *authStubStore) PutResetCode(_ context.Context, rc *models.ResetCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *rc
	s.codes[rc.Email] = &copy
	return nil
}

func (s *authStubStore) GetResetCode(_ context.Context, email string) (*models.ResetCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rc, ok := s.codes[email]; ok {
		copy := *rc
		return &copy, nil
	}
	return nil, nil
}

func (s *authStubStore) ClaimResetAttempt(_ context.Context, email string, limit int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rc, ok := s.codes[email]
	if !ok || rc.Attempts >= limit {
		return false, nil
	}
	rc.Attempts++
	return true, nil
}

func (s *authStubStore) DeleteResetCode(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, email)
	return nil
}

func (s *authStubStore) AddAudit(_ context.Context, e models.AuditEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits = append(s.audits, e)
}

type captureSender struct {
	email, code string
}

func (c *captureSender) SendResetCode(_ context.Context, email, code string) error {
	c.email, c.code = email, code
	return nil
}

func newTestAuthService(store AuthStore, sender OTPSender) *AuthService {
	svc := NewAuthService(store, func(uid, email, role, sid string, ttl time.Duration) (string, error) {
		return "token:" + uid + ":" + role + ":" + sid, nil
	}, sender)
	svc.now = func() time.Time { return time.Unix(1_700_000_000, 0).UTC() }
	return svc
}

func TestAuthRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	store := newAuthStubStore()
	svc := newTestAuthService(store, nil)

	res, err := svc.Register(ctx, " User@Example.com ", "Secret123", "Ada")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.UserID == "" || res.Role != models.RoleUser || res.Email != "user@example.com" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !strings.HasPrefix(res.Token, "token:"+res.UserID+":user:") {
		t.Fatalf("unexpected token %q", res.Token)
	}

	if _, err = svc.Register(ctx, "user@example.com", "Secret123", "Ada"); err == nil {
		t.Fatalf("expected conflict error on duplicate registration")
	} else if se, ok := AsServiceError(err); !ok || se.Code != ErrorConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	first, err := svc.Login(ctx, "user@example.com", "Secret123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	second, err := svc.Login(ctx, "USER@example.com", "Secret123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if first.SessionID == "" || first.SessionID == second.SessionID {
		t.Fatalf("expected a fresh session per login: %q %q", first.SessionID, second.SessionID)
	}

	if _, err := svc.Login(ctx, "user@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "missing@example.com", "Secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for missing user, got %v", err)
	}
}

func TestAuthValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(newAuthStubStore(), nil)
	cases := []struct{ email, password string }{
		{"", "Secret123"},
		{"a@b.c", ""},
		{"a@b.c", "short"},
	}
	for _, c := range cases {
		_, err := svc.Register(ctx, c.email, c.password, "")
		se, ok := AsServiceError(err)
		if !ok || se.Code != ErrorInvalid {
			t.Fatalf("Register(%q,%q) expected invalid, got %v", c.email, c.password, err)
		}
	}
	if _, err := svc.Login(ctx, "", ""); err == nil {
		t.Fatalf("expected error for empty login")
	}
}

func TestAuthEmailExists(t *testing.T) {
	ctx := context.Background()
	store := newAuthStubStore()
	svc := newTestAuthService(store, nil)
	if _, err := svc.Register(ctx, "taken@example.com", "Secret123", ""); err != nil {
		t.Fatal(err)
	}
	ok, err := svc.EmailExists(ctx, "TAKEN@example.com")
	if err != nil || !ok {
		t.Fatalf("expected existing email, got %v %v", ok, err)
	}
	ok, err = svc.EmailExists(ctx, "free@example.com")
	if err != nil || ok {
		t.Fatalf("expected free email, got %v %v", ok, err)
	}
}

func TestAuthPasswordReset(t *testing.T) {
	ctx := context.Background()
	store := newAuthStubStore()
	sender := &captureSender{}
	svc := newTestAuthService(store, sender)
	svc.codeGen = func() (string, error) { return "123456", nil }
	if _, err := svc.Register(ctx, "reset@example.com", "OldSecret1", ""); err != nil {
		t.Fatal(err)
	}

	if err := svc.RequestPasswordReset(ctx, "nobody@example.com"); err != nil {
		t.Fatalf("unknown email should succeed silently: %v", err)
	}
	if sender.code != "" {
		t.Fatalf("no code should be sent to unknown email")
	}

	if err := svc.RequestPasswordReset(ctx, "reset@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset returned error: %v", err)
	}
	if sender.email != "reset@example.com" || sender.code != "123456" {
		t.Fatalf("unexpected delivery %+v", sender)
	}
	if rc := store.codes["reset@example.com"]; rc == nil || string(rc.CodeHash) == "123456" {
		t.Fatalf("expected hashed code stored")
	}

	if err := svc.ResetPassword(ctx, "reset@example.com", "000000", "NewSecret1"); !errors.Is(err, ErrResetCodeInvalid) {
		t.Fatalf("expected invalid code, got %v", err)
	}
	if err := svc.ResetPassword(ctx, "reset@example.com", "123456", "NewSecret1"); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}
	if _, err := svc.Login(ctx, "reset@example.com", "NewSecret1"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if err := svc.ResetPassword(ctx, "reset@example.com", "123456", "Another12"); !errors.Is(err, ErrResetCodeInvalid) {
		t.Fatalf("code must be single-use, got %v", err)
	}
}

func TestAuthPasswordResetExpiryAndAttempts(t *testing.T) {
	ctx := context.Background()
	store := newAuthStubStore()
	svc := newTestAuthService(store, &captureSender{})
	svc.codeGen = func() (string, error) { return "654321", nil }
	if _, err := svc.Register(ctx, "r@example.com", "OldSecret1", ""); err != nil {
		t.Fatal(err)
	}
	if err := svc.RequestPasswordReset(ctx, "r@example.com"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < maxResetAttempts; i++ {
		if err := svc.ResetPassword(ctx, "r@example.com", "111111", "NewSecret1"); !errors.Is(err, ErrResetCodeInvalid) {
			t.Fatalf("attempt %d: expected invalid, got %v", i, err)
		}
	}
	if err := svc.ResetPassword(ctx, "r@example.com", "654321", "NewSecret1"); !errors.Is(err, ErrResetCodeExhausted) {
		t.Fatalf("expected exhausted, got %v", err)
	}

	if err := svc.RequestPasswordReset(ctx, "r@example.com"); err != nil {
		t.Fatal(err)
	}
	base := svc.now()
	svc.now = func() time.Time { return base.Add(11 * time.Minute) }
	if err := svc.ResetPassword(ctx, "r@example.com", "654321", "NewSecret1"); !errors.Is(err, ErrResetCodeInvalid) {
		t.Fatalf("expected expired code to be rejected, got %v", err)
	}
}

// countingStore counts how many guesses reach the hash compare, which is
// every successful claim.
type countingStore struct {
	*authStubStore
	claimed atomic.Int32
}

func (s *countingStore) ClaimResetAttempt(ctx context.Context, email string, limit int) (bool, error) {
	ok, err := s.authStubStore.ClaimResetAttempt(ctx, email, limit)
	if ok {
		s.claimed.Add(1)
	}
	return ok, err
}

func TestAuthPasswordResetAttemptsHoldUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{authStubStore: newAuthStubStore()}
	svc := newTestAuthService(store, &captureSender{})
	svc.codeGen = func() (string, error) { return "246810", nil }
	if _, err := svc.Register(ctx, "race@example.com", "OldSecret1", ""); err != nil {
		t.Fatal(err)
	}
	if err := svc.RequestPasswordReset(ctx, "race@example.com"); err != nil {
		t.Fatal(err)
	}

	const guesses = 40
	var wg sync.WaitGroup
	var invalid, exhausted atomic.Int32
	start := make(chan struct{})
	for i := 0; i < guesses; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := svc.ResetPassword(ctx, "race@example.com", "000000", "NewSecret1")
			switch {
			case errors.Is(err, ErrResetCodeInvalid):
				invalid.Add(1)
			case errors.Is(err, ErrResetCodeExhausted):
				exhausted.Add(1)
			default:
				t.Errorf("unexpected result: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := store.claimed.Load(); got != maxResetAttempts {
		t.Fatalf("%d guesses were compared against the code, want %d", got, maxResetAttempts)
	}
	if invalid.Load()+exhausted.Load() != guesses {
		t.Fatalf("invalid=%d exhausted=%d", invalid.Load(), exhausted.Load())
	}
	if err := svc.ResetPassword(ctx, "race@example.com", "246810", "NewSecret1"); err == nil {
		t.Fatalf("the right code must not work after the attempts are spent")
	}
}

func TestAuthEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	store := newAuthStubStore()
	svc := newTestAuthService(store, nil)
	created, err := svc.EnsureAdmin(ctx, "Admin@Example.com", "AdminPass1")
	if err != nil || !created {
		t.Fatalf("expected admin creation, got %v %v", created, err)
	}
	if store.users["admin@example.com"].Role != models.RoleAdmin {
		t.Fatalf("expected admin role")
	}
	created, err = svc.EnsureAdmin(ctx, "admin@example.com", "AdminPass1")
	if err != nil || created {
		t.Fatalf("second call should be a no-op, got %v %v", created, err)
	}
	res, err := svc.Login(ctx, "admin@example.com", "AdminPass1")
	if err != nil || res.Role != models.RoleAdmin {
		t.Fatalf("admin login failed: %+v %v", res, err)
	}
}
