package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/scorekeeper/internal/common"
	"github.com/dmitrijs2005/scorekeeper/internal/dbx"
	"github.com/dmitrijs2005/scorekeeper/internal/logging"
	"github.com/dmitrijs2005/scorekeeper/internal/server/models"
	"github.com/dmitrijs2005/scorekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/scorekeeper/internal/validation"
)

// PasswordHasher turns plaintext passwords into stored credentials and checks
// candidates against them. cryptox.Argon2Hasher is the production
// implementation.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(encoded, password string) (bool, error)
}

// AccountService implements login, registration and profile maintenance.
// Accounts it returns never carry the stored credential.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	logger      logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, h PasswordHasher, l logging.Logger) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		hasher:      h,
		logger:      l.With("component", "accounts"),
	}
}

func redact(a *models.Account) *models.Account {
	if a == nil {
		return nil
	}
	out := *a
	out.Password = ""
	return &out
}

// burnVerify runs a verification against a throwaway hash so that an unknown
// username costs about as much as a wrong password.
func (s *AccountService) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(string(common.GenerateRandByteArray(16)))
		if err == nil {
			s.dummyHash = h
		}
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(s.dummyHash, password)
	}
}

// Login returns the account whose username and password match. Unknown users
// and wrong passwords both yield common.ErrorInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, username, password string) (*models.Account, error) {
	username = validation.NormalizeTrim(username)
	password = validation.NormalizeTrim(password)
	if !validation.IsNonBlank(username) || !validation.IsNonBlank(password) {
		return nil, common.ErrorInvalidCredentials
	}

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.burnVerify(password)
			s.logger.Warn(ctx, "login failed", "username", username)
			return nil, common.ErrorInvalidCredentials
		}
		s.logger.Error(ctx, "login lookup failed", "username", username, "error", err)
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	ok, err := s.hasher.Verify(account.Password, password)
	if err != nil {
		// blank or foreign credential; such an account cannot log in
		s.logger.Warn(ctx, "stored credential unreadable", "username", username, "error", err)
	}
	if !ok {
		s.logger.Warn(ctx, "login failed", "username", username)
		return nil, common.ErrorInvalidCredentials
	}

	s.logger.Info(ctx, "login", "username", username, "id", account.ID)
	return redact(account), nil
}

// Register validates candidate and stores it as a new account. Username and
// phone are required, the phone must be 11 digits and the title defaults to
// models.DefaultTitle. A non-blank password is hashed before it is stored.
func (s *AccountService) Register(ctx context.Context, candidate *models.Account) (*models.Account, error) {
	if candidate == nil {
		return nil, common.NewValidationError("username", common.ErrorEmptyField)
	}

	account := &models.Account{
		Name:     validation.NormalizeTrim(candidate.Name),
		Sex:      validation.NormalizeTrim(candidate.Sex),
		Title:    validation.NormalizeOrDefault(candidate.Title, models.DefaultTitle),
		Tel:      validation.NormalizeTrim(candidate.Tel),
		Email:    validation.NormalizeTrim(candidate.Email),
		Username: validation.NormalizeTrim(candidate.Username),
	}

	if !validation.IsNonBlank(account.Username) {
		return nil, common.NewValidationError("username", common.ErrorEmptyField)
	}
	if err := validation.CheckProfileLengths(account.Username, account.Name, account.Sex, account.Title, account.Email); err != nil {
		return nil, err
	}
	if !validation.IsNonBlank(account.Tel) {
		return nil, common.NewValidationError("tel", common.ErrorEmptyField)
	}
	if err := validation.CheckPhone(account.Tel); err != nil {
		return nil, err
	}

	if password := validation.NormalizeTrim(candidate.Password); password != "" {
		hash, err := s.hasher.Hash(password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		account.Password = hash
	}

	repo := s.repomanager.Accounts(s.db)
	created, err := repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrorDuplicateKey) {
			s.logger.Warn(ctx, "username taken", "username", account.Username)
			return nil, common.ErrorDuplicateUsername
		}
		s.logger.Error(ctx, "register failed", "username", account.Username, "error", err)
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info(ctx, "account registered", "username", created.Username, "id", created.ID)
	return redact(created), nil
}

// UpdateProfile overwrites the profile fields of the account keyed by
// account.Username. A blank phone clears the stored phone. A non-blank
// Password replaces the credential in the same transaction; a blank one
// leaves it as it is.
func (s *AccountService) UpdateProfile(ctx context.Context, account *models.Account) (*models.Account, error) {
	if account == nil {
		return nil, common.NewValidationError("username", common.ErrorEmptyField)
	}

	upd := &models.Account{
		Name:     validation.NormalizeTrim(account.Name),
		Sex:      validation.NormalizeTrim(account.Sex),
		Title:    validation.NormalizeOrDefault(account.Title, models.DefaultTitle),
		Tel:      validation.NormalizeTrim(account.Tel),
		Email:    validation.NormalizeTrim(account.Email),
		Username: validation.NormalizeTrim(account.Username),
	}

	if !validation.IsNonBlank(upd.Username) {
		return nil, common.NewValidationError("username", common.ErrorEmptyField)
	}
	if err := validation.CheckProfileLengths(upd.Username, upd.Name, upd.Sex, upd.Title, upd.Email); err != nil {
		return nil, err
	}
	if upd.Tel != "" {
		if err := validation.CheckPhone(upd.Tel); err != nil {
			return nil, err
		}
	}

	var hash string
	if password := validation.NormalizeTrim(account.Password); password != "" {
		h, err := s.hasher.Hash(password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = h
	}

	var updated *models.Account
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		if err := repo.Update(ctx, upd); err != nil {
			return err
		}
		if hash != "" {
			if err := repo.UpdatePassword(ctx, upd.Username, hash); err != nil {
				return err
			}
		}
		var err error
		updated, err = repo.GetByUsername(ctx, upd.Username)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "profile update failed", "username", upd.Username, "error", err)
		return nil, fmt.Errorf("update account: %w", err)
	}

	s.logger.Info(ctx, "profile updated", "username", upd.Username, "password_changed", hash != "")
	return redact(updated), nil
}

func (s *AccountService) DeleteAccount(ctx context.Context, username string) error {
	username = validation.NormalizeTrim(username)
	if username == "" {
		return common.ErrorNotFound
	}

	repo := s.repomanager.Accounts(s.db)
	if err := repo.Delete(ctx, username); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "delete failed", "username", username, "error", err)
		return fmt.Errorf("delete account: %w", err)
	}

	s.logger.Info(ctx, "account deleted", "username", username)
	return nil
}

// ListAccounts returns all accounts, newest first. The result is never nil.
func (s *AccountService) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	repo := s.repomanager.Accounts(s.db)
	list, err := repo.List(ctx)
	if err != nil {
		s.logger.Error(ctx, "list failed", "error", err)
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	out := make([]*models.Account, 0, len(list))
	for _, a := range list {
		out = append(out, redact(a))
	}
	return out, nil
}

func (s *AccountService) LookupByUsername(ctx context.Context, username string) (*models.Account, error) {
	repo := s.repomanager.Accounts(s.db)
	return s.lookup(repo.GetByUsername(ctx, validation.NormalizeTrim(username)))
}

func (s *AccountService) LookupByUsernameAndEmail(ctx context.Context, username, email string) (*models.Account, error) {
	repo := s.repomanager.Accounts(s.db)
	return s.lookup(repo.GetByUsernameAndEmail(ctx,
		validation.NormalizeTrim(username), validation.NormalizeTrim(email)))
}

func (s *AccountService) LookupByUsernameEmailPhone(ctx context.Context, username, email, phone string) (*models.Account, error) {
	repo := s.repomanager.Accounts(s.db)
	return s.lookup(repo.GetByUsernameEmailTel(ctx,
		validation.NormalizeTrim(username), validation.NormalizeTrim(email), validation.NormalizeTrim(phone)))
}

func (s *AccountService) lookup(a *models.Account, err error) (*models.Account, error) {
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	return redact(a), nil
}
