package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/scorekeeper/internal/common"
	"github.com/dmitrijs2005/scorekeeper/internal/logging"
	"github.com/dmitrijs2005/scorekeeper/internal/server/config"
	"github.com/dmitrijs2005/scorekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/scorekeeper/internal/validation"
	"github.com/google/uuid"
)

// RecoveryService restores access to an account whose password is lost:
// VerifyIdentity checks username, email and phone together and hands out a
// session, ResetPassword consumes that session to replace the credential.
type RecoveryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	logger      logging.Logger
	sessionTTL  time.Duration
	now         func() time.Time
}

func NewRecoveryService(db *sql.DB, m repomanager.RepositoryManager, h PasswordHasher, l logging.Logger, cfg *config.Config) *RecoveryService {
	return &RecoveryService{
		db:          db,
		repomanager: m,
		hasher:      h,
		logger:      l.With("component", "recovery"),
		sessionTTL:  cfg.RecoverySessionTTL,
		now:         time.Now,
	}
}

// VerifyIdentity returns a verified session when an account with the given
// username and email exists and its stored phone equals phone. The phone
// format is checked before anything else.
func (s *RecoveryService) VerifyIdentity(ctx context.Context, username, email, phone string) (*RecoverySession, error) {
	phone = validation.NormalizeTrim(phone)
	if err := validation.CheckPhone(phone); err != nil {
		return nil, err
	}

	username = validation.NormalizeTrim(username)
	email = validation.NormalizeTrim(email)
	if !validation.IsNonBlank(username) || !validation.IsNonBlank(email) {
		return nil, common.ErrorIdentityMismatch
	}

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.GetByUsernameAndEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "identity check failed", "username", username)
			return nil, common.ErrorIdentityMismatch
		}
		s.logger.Error(ctx, "identity lookup failed", "username", username, "error", err)
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(account.Tel), []byte(phone)) != 1 {
		s.logger.Warn(ctx, "identity check failed", "username", username)
		return nil, common.ErrorIdentityMismatch
	}

	session := &RecoverySession{
		id:        uuid.NewString(),
		username:  account.Username,
		accountID: account.ID,
		state:     StateVerified,
	}
	if s.sessionTTL > 0 {
		session.expiresAt = s.now().Add(s.sessionTTL)
	}

	s.logger.Info(ctx, "identity verified", "username", account.Username, "session", session.id)
	return session, nil
}

// ResetPassword replaces the credential of the session's account. The session
// must be verified, unexpired and not yet used; it moves to StateReset only
// when the new credential has been stored.
func (s *RecoveryService) ResetPassword(ctx context.Context, session *RecoverySession, newPassword string) error {
	if session == nil {
		return common.ErrorSessionNotVerified
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.state != StateVerified {
		return common.ErrorSessionNotVerified
	}
	if session.expired(s.now()) {
		return fmt.Errorf("%w: session expired", common.ErrorSessionNotVerified)
	}

	password := validation.NormalizeTrim(newPassword)
	if err := validation.CheckPassword(password); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	repo := s.repomanager.Accounts(s.db)
	if err := repo.UpdatePasswordByID(ctx, session.accountID, session.username, hash); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "password reset failed", "session", session.id, "error", err)
		return fmt.Errorf("update password: %w", err)
	}

	session.state = StateReset
	s.logger.Info(ctx, "password reset", "username", session.username, "session", session.id)
	return nil
}
