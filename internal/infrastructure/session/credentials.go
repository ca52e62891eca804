// Package session holds the back-office credentials of the operators
// signed in at this register.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sangkips/velo-register/pkg/apperror"
	"github.com/sangkips/velo-register/pkg/utils"
	"golang.org/x/oauth2"
)

var (
	errNoCredential = errors.New("no credential stored for operator")
	errExpired      = errors.New("credential expired")
)

// CredentialStore is the single accessor for operator tokens. Tokens are
// read again on every call so a token refreshed mid-checkout is picked up.
type CredentialStore struct {
	mu     sync.RWMutex
	tokens map[int64]*oauth2.Token
	jwt    *utils.JWTManager
	now    func() time.Time
}

// NewCredentialStore creates an empty store validating tokens with jwtManager
func NewCredentialStore(jwtManager *utils.JWTManager) *CredentialStore {
	return &CredentialStore{
		tokens: make(map[int64]*oauth2.Token),
		jwt:    jwtManager,
		now:    time.Now,
	}
}

// Peek validates raw without storing it
func (s *CredentialStore) Peek(raw string) (*utils.OperatorClaims, error) {
	claims, err := s.jwt.ValidateAccessToken(raw)
	if err != nil {
		if utils.IsExpired(err) {
			return nil, apperror.NewAuthExpiredError(err)
		}
		return nil, apperror.ErrInvalidToken
	}
	return claims, nil
}

// Put validates raw and stores it for the operator named in its claims
func (s *CredentialStore) Put(raw string) (*utils.OperatorClaims, error) {
	claims, err := s.Peek(raw)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.tokens[claims.UserID] = &oauth2.Token{
		AccessToken: raw,
		TokenType:   "Bearer",
		Expiry:      claims.Expiry(),
	}
	s.mu.Unlock()
	return claims, nil
}

// Token returns the operator's current credential, or an auth-expired error
// when none is stored or it has expired.
func (s *CredentialStore) Token(ctx context.Context, operatorID int64) (*oauth2.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	tok, ok := s.tokens[operatorID]
	s.mu.RUnlock()

	if !ok {
		return nil, apperror.NewAuthExpiredError(errNoCredential)
	}
	if s.expired(tok) {
		return nil, apperror.NewAuthExpiredError(errExpired)
	}
	cp := *tok
	return &cp, nil
}

// AnyValid returns some unexpired credential, for background work not tied
// to a request. ok is false when nobody is signed in.
func (s *CredentialStore) AnyValid() (*oauth2.Token, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *oauth2.Token
	for _, tok := range s.tokens {
		if s.expired(tok) {
			continue
		}
		if best == nil || tok.Expiry.After(best.Expiry) {
			best = tok
		}
	}
	if best == nil {
		return nil, false
	}
	cp := *best
	return &cp, true
}

// Forget drops the operator's credential
func (s *CredentialStore) Forget(operatorID int64) {
	s.mu.Lock()
	delete(s.tokens, operatorID)
	s.mu.Unlock()
}

func (s *CredentialStore) expired(tok *oauth2.Token) bool {
	return !tok.Expiry.IsZero() && !s.now().Before(tok.Expiry)
}
