package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/soaringjerry/Sanctuary/internal/logging"
	"github.com/soaringjerry/Sanctuary/internal/models"
)

const (
	MinPasswordLength = 8
	resetCodeDigits   = 6
	maxResetAttempts  = 5
)

type AuthStore interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	AddUser(ctx context.Context, u *models.User) error
	UpdatePassword(ctx context.Context, userID string, hash []byte) error
	PutResetCode(ctx context.Context, rc *models.ResetCode) error
	GetResetCode(ctx context.Context, email string) (*models.ResetCode, error)
	// ClaimResetAttempt atomically counts one attempt against the code and
	// reports false once limit attempts have been used.
	ClaimResetAttempt(ctx context.Context, email string, limit int) (bool, error)
	DeleteResetCode(ctx context.Context, email string) error
	AddAudit(ctx context.Context, entry models.AuditEntry)
}

// TokenSigner issues a session token. sessionID is unique per login.
type TokenSigner func(uid, email, role, sessionID string, ttl time.Duration) (string, error)

// OTPSender delivers password reset codes.
type OTPSender interface {
	SendResetCode(ctx context.Context, email, code string) error
}

// LogOTPSender writes reset codes to the log. Development only.
type LogOTPSender struct{}

func (LogOTPSender) SendResetCode(ctx context.Context, email, code string) error {
	logging.Ctx(ctx).Warn().Str("email", email).Str("code", code).Msg("password reset code (log delivery)")
	return nil
}

type AuthService struct {
	store     AuthStore
	now       func() time.Time
	idGen     func(prefix string, n int) string
	codeGen   func() (string, error)
	signToken TokenSigner
	sender    OTPSender
	tokenTTL  time.Duration
	otpTTL    time.Duration
}

type AuthResult struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role"`
	SessionID string `json:"-"`
}

func NewAuthService(store AuthStore, signer TokenSigner, sender OTPSender) *AuthService {
	if sender == nil {
		sender = LogOTPSender{}
	}
	return &AuthService{
		store:     store,
		now:       func() time.Time { return time.Now().UTC() },
		idGen:     func(prefix string, n int) string { return prefix + shortID(n) },
		codeGen:   randomCode,
		signToken: signer,
		sender:    sender,
		tokenTTL:  7 * 24 * time.Hour,
		otpTTL:    10 * time.Minute,
	}
}

// SetTTLs overrides the token and reset code lifetimes; zero keeps the current value.
func (s *AuthService) SetTTLs(token, otp time.Duration) {
	if token > 0 {
		s.tokenTTL = token
	}
	if otp > 0 {
		s.otpTTL = otp
	}
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("email/password required")
	}
	if len(password) < MinPasswordLength {
		return nil, NewInvalidError(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	existing, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewConflictError("email exists")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:        s.idGen("u", 10),
		Email:     email,
		Name:      strings.TrimSpace(name),
		PassHash:  hash,
		Role:      models.RoleUser,
		CreatedAt: s.now(),
	}
	if err := s.store.AddUser(ctx, u); err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("email/password required")
	}
	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.PassHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *AuthService) issue(u *models.User) (*AuthResult, error) {
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	sid := s.idGen("s", 12)
	token, err := s.signToken(u.ID, u.Email, u.Role, sid, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, SessionID: sid}, nil
}

// EmailExists backs the signup form's availability check.
func (s *AuthService) EmailExists(ctx context.Context, email string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return false, NewInvalidError("email required")
	}
	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return u != nil, nil
}

// RequestPasswordReset issues a one-time code. Unknown addresses succeed
// silently so the endpoint does not reveal which emails are registered.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return NewInvalidError("email required")
	}
	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		logging.Ctx(ctx).Debug().Msg("password reset requested for unknown email")
		return nil
	}
	code, err := s.codeGen()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.store.PutResetCode(ctx, &models.ResetCode{Email: email, CodeHash: hash, ExpiresAt: s.now().Add(s.otpTTL)}); err != nil {
		return err
	}
	if err := s.sender.SendResetCode(ctx, email, code); err != nil {
		return fmt.Errorf("send reset code: %w", err)
	}
	s.store.AddAudit(ctx, models.AuditEntry{Time: s.now(), Actor: u.ID, Action: "password.reset_requested", Target: u.ID})
	return nil
}

// ResetPassword consumes a code issued by RequestPasswordReset.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return NewInvalidError("email/code required")
	}
	if len(newPassword) < MinPasswordLength {
		return NewInvalidError(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	rc, err := s.store.GetResetCode(ctx, email)
	if err != nil {
		return err
	}
	if rc == nil {
		return ErrResetCodeInvalid
	}
	if !s.now().Before(rc.ExpiresAt) {
		_ = s.store.DeleteResetCode(ctx, email)
		return ErrResetCodeInvalid
	}
	// Claim before comparing so concurrent guesses share one counter.
	claimed, err := s.store.ClaimResetAttempt(ctx, email, maxResetAttempts)
	if err != nil {
		return err
	}
	if !claimed {
		_ = s.store.DeleteResetCode(ctx, email)
		return ErrResetCodeExhausted
	}
	if err := bcrypt.CompareHashAndPassword(rc.CodeHash, []byte(code)); err != nil {
		return ErrResetCodeInvalid
	}
	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		_ = s.store.DeleteResetCode(ctx, email)
		return ErrResetCodeInvalid
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	if err := s.store.DeleteResetCode(ctx, email); err != nil {
		return err
	}
	s.store.AddAudit(ctx, models.AuditEntry{Time: s.now(), Actor: u.ID, Action: "password.reset", Target: u.ID})
	return nil
}

// EnsureAdmin creates the configured admin account if no user holds that email.
// It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}
	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if u != nil {
		if u.Role != models.RoleAdmin {
			logging.Warn().Str("email", email).Msg("configured admin email belongs to a non-admin account")
		}
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	admin := &models.User{ID: s.idGen("u", 10), Email: email, Name: "Admin", PassHash: hash, Role: models.RoleAdmin, CreatedAt: s.now()}
	if err := s.store.AddUser(ctx, admin); err != nil {
		return false, err
	}
	s.store.AddAudit(ctx, models.AuditEntry{Time: s.now(), Actor: "system", Action: "admin.bootstrap", Target: admin.ID})
	return true, nil
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

func randomCode() (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < resetCodeDigits; i++ {
		limit.Mul(limit, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", resetCodeDigits, n.Int64()), nil
}
