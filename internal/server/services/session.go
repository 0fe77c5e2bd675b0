package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/clickstore/internal/common"
	"github.com/dmitrijs2005/clickstore/internal/dbx"
	"github.com/dmitrijs2005/clickstore/internal/logging"
	"github.com/dmitrijs2005/clickstore/internal/server/auth"
	"github.com/dmitrijs2005/clickstore/internal/server/models"
	"github.com/dmitrijs2005/clickstore/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// LoginResult is handed to the transport after a successful login. Token is
// the signed cookie value; the raw handle never leaves the service.
type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// SessionService moves clients between Anonymous and Authenticated.
//
// Sessions slide: every authenticated request pushes the expiry to now+ttl,
// but never past CreatedAt+maxAge.
type SessionService struct {
	db          dbx.Handle
	repomanager repomanager.RepositoryManager
	secret      []byte
	ttl         time.Duration
	maxAge      time.Duration
	now         func() time.Time
}

func NewSessionService(db dbx.Handle, m repomanager.RepositoryManager, secret string, ttl, maxAge time.Duration) *SessionService {
	if maxAge < ttl {
		maxAge = ttl
	}
	return &SessionService{
		db:          db,
		repomanager: m,
		secret:      []byte(secret),
		ttl:         ttl,
		maxAge:      maxAge,
		now:         time.Now,
	}
}

// Login verifies credentials and opens a session. An unknown email and a
// wrong password both yield common.ErrorInvalidCredentials and create nothing.
func (s *SessionService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	h := dbx.FromContext(ctx, s.db)

	user, err := s.repomanager.Users(h).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.BurnPasswordCheck(password)
			return nil, common.ErrorInvalidCredentials
		}
		return nil, internalUnless(err)
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, internalUnless(err)
	}
	if !ok {
		return nil, common.ErrorInvalidCredentials
	}

	handle, err := auth.NewHandle()
	if err != nil {
		return nil, internalUnless(err)
	}

	now := s.now()
	session := &models.Session{
		ID:         uuid.NewString(),
		TokenHash:  auth.HashHandle(handle),
		UserID:     user.ID,
		ExpiresAt:  now.Add(s.ttl),
		LastSeenAt: now,
		CreatedAt:  now,
	}
	if err := s.repomanager.Sessions(h).Create(ctx, session); err != nil {
		return nil, internalUnless(err)
	}

	token, err := auth.GenerateToken(handle, s.secret, s.maxAge)
	if err != nil {
		return nil, internalUnless(err)
	}

	return &LoginResult{User: user, Token: token, ExpiresAt: now.Add(s.maxAge)}, nil
}

// Logout ends the session behind token. Unknown, expired or malformed tokens
// are not an error.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	handle, err := auth.GetHandleFromToken(token, s.secret)
	if err != nil {
		return nil
	}
	return internalUnless(s.repomanager.Sessions(dbx.FromContext(ctx, s.db)).Delete(ctx, auth.HashHandle(handle)))
}

// CurrentUser resolves token to a user id. It has no side effects. Anything
// that does not lead to a live session is common.ErrorAuthenticationRequired.
func (s *SessionService) CurrentUser(ctx context.Context, token string) (int64, error) {
	session, err := s.find(ctx, token)
	if err != nil {
		return 0, err
	}
	return session.UserID, nil
}

// IsAuthenticated reports whether token maps to a live session.
func (s *SessionService) IsAuthenticated(ctx context.Context, token string) bool {
	_, err := s.CurrentUser(ctx, token)
	return err == nil
}

// Touch slides the expiry of the session behind token.
func (s *SessionService) Touch(ctx context.Context, token string) error {
	session, err := s.find(ctx, token)
	if err != nil {
		return err
	}

	now := s.now()
	expires := now.Add(s.ttl)
	if limit := session.CreatedAt.Add(s.maxAge); expires.After(limit) {
		expires = limit
	}

	return internalUnless(s.repomanager.Sessions(dbx.FromContext(ctx, s.db)).Touch(ctx, session.TokenHash, now, expires))
}

func (s *SessionService) find(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, common.ErrorAuthenticationRequired
	}

	handle, err := auth.GetHandleFromToken(token, s.secret)
	if err != nil {
		return nil, common.ErrorAuthenticationRequired
	}

	session, err := s.repomanager.Sessions(dbx.FromContext(ctx, s.db)).Find(ctx, auth.HashHandle(handle))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorAuthenticationRequired
		}
		return nil, internalUnless(err)
	}

	if session.Expired(s.now()) {
		return nil, common.ErrorAuthenticationRequired
	}

	return session, nil
}

// Sweep purges expired sessions.
func (s *SessionService) Sweep(ctx context.Context) (int64, error) {
	n, err := s.repomanager.Sessions(s.db).DeleteExpired(ctx, s.now())
	return n, internalUnless(err)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *SessionService) RunSweeper(ctx context.Context, interval time.Duration, logger logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				logger.Error(ctx, "session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug(ctx, "expired sessions purged", "count", n)
			}
		}
	}
}
