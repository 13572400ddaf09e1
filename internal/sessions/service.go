package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ourstory/scrapbook/internal/apperr"
	"github.com/ourstory/scrapbook/internal/identity"
	"github.com/ourstory/scrapbook/internal/tokens"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionRevoked     = errors.New("session revoked")
)

// Service issues and checks session tokens for the two configured accounts.
type Service struct {
	repo   Repository
	dir    *identity.Directory
	secret string
	now    func() time.Time
}

func NewService(r Repository, dir *identity.Directory, secret string) *Service {
	return &Service{repo: r, dir: dir, secret: secret, now: time.Now}
}

// Login checks the pair against the directory and opens a session.
func (s *Service) Login(ctx context.Context, username, password string) (string, *Session, error) {
	acc, ok := s.dir.Authenticate(username, password)
	if !ok {
		return "", nil, ErrInvalidCredentials
	}
	sess := &Session{
		ID:        uuid.NewString(),
		Role:      acc.Role,
		Name:      acc.Name,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return "", nil, fmt.Errorf("store session: %w", err)
	}
	token, err := tokens.Generate(s.secret, tokens.Claims{
		SessionID: sess.ID,
		Role:      sess.Role,
		Name:      sess.Name,
		IssuedAt:  sess.CreatedAt,
	})
	if err != nil {
		_ = s.repo.Delete(ctx, sess.ID)
		return "", nil, err
	}
	return token, sess, nil
}

// Authenticate returns the live session behind token.
func (s *Service) Authenticate(ctx context.Context, token string) (*Session, error) {
	c, err := tokens.Parse(s.secret, token)
	if err != nil {
		return nil, err
	}
	sess, err := s.repo.Get(ctx, c.SessionID)
	if err != nil {
		return nil, apperr.Store("load session", err)
	}
	if sess == nil {
		return nil, ErrSessionRevoked
	}
	return sess, nil
}

// Logout ends the session behind token. Logging out twice is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	c, err := tokens.Parse(s.secret, token)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, c.SessionID)
}
