// Package auth signs staff in against configured admin accounts and issues
// HS256 session tokens.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/melkeydev/logistics-admin/types"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", types.ErrUnauthorized)
	ErrMissingToken       = fmt.Errorf("%w: missing token", types.ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", types.ErrUnauthorized)
	ErrRevoked            = fmt.Errorf("%w: session signed out", types.ErrUnauthorized)
)

type Account struct {
	UserID       string
	Email        string
	PasswordHash string
}

type Claims struct {
	SessionID string `json:"sid"`
	Email     string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Service struct {
	secret   []byte
	ttl      time.Duration
	accounts map[string]Account
	now      func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewService(secret string, ttl time.Duration, accounts []Account) (*Service, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth secret is required")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	byEmail := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		byEmail[normalizeEmail(a.Email)] = a
	}
	return &Service{
		secret:   []byte(secret),
		ttl:      ttl,
		accounts: byEmail,
		now:      time.Now,
		revoked:  make(map[string]time.Time),
	}, nil
}

// Login checks the password and returns a signed token for a new session.
func (s *Service) Login(email, password string) (string, *Session, error) {
	acct, ok := s.accounts[normalizeEmail(email)]
	if !ok {
		// same work as a wrong password
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := s.now()
	sess := &Session{
		UserID:    acct.UserID,
		Email:     acct.Email,
		SessionID: uuid.NewString(),
		ExpiresAt: now.Add(s.ttl).UTC().Truncate(time.Second),
	}
	claims := Claims{
		SessionID: sess.SessionID,
		Email:     acct.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acct.UserID,
			ID:        sess.SessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, sess, nil
}

// Validate parses token and returns its session unless it expired or was
// signed out.
func (s *Service) Validate(token string) (*Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.SessionID == "" {
		return nil, fmt.Errorf("%w: missing subject or session id", ErrInvalidToken)
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.SessionID]
	s.mu.Unlock()
	if revoked {
		return nil, ErrRevoked
	}

	return &Session{
		UserID:    claims.Subject,
		Email:     claims.Email,
		SessionID: claims.SessionID,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}

// Logout revokes the token's session until it would have expired anyway.
func (s *Service) Logout(token string) error {
	sess, err := s.Validate(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for sid, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, sid)
		}
	}
	s.revoked[sess.SessionID] = sess.ExpiresAt
	return nil
}

// HashPassword returns a bcrypt hash suitable for the admins section of the
// config file.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(h), nil
}

// dummyHash is compared against for unknown emails, at the cost real
// hashes are made with.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("logistics-admin"), bcrypt.DefaultCost)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
