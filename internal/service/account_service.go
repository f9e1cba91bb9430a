package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/blog-cms/internal/models"
	"github.com/blog-cms/internal/repository"
	"github.com/blog-cms/pkg/crypto"
	"github.com/rs/zerolog"
)

const (
	msgUsernameTaken    = "username already exists"
	msgPasswordRequired = "password is required"
	msgLastAdmin        = "the last administrator account cannot be deleted"
	msgLastAdminRole    = "the last administrator account must keep the ADMIN role"
)

// accountService is the concrete implementation of AccountService
type accountService struct {
	repo repository.AccountRepository
	tx   repository.TransactionManager
	hash func(string) (string, error)
	log  zerolog.Logger
}

func newAccountService(repo repository.AccountRepository, tx repository.TransactionManager, hash func(string) (string, error), log zerolog.Logger) *accountService {
	return &accountService{
		repo: repo,
		tx:   tx,
		hash: hash,
		log:  log.With().Str("service", "account").Logger(),
	}
}

// List returns all accounts ordered by username, ignoring case
func (s *accountService) List(ctx context.Context) ([]models.Account, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(accounts, func(i, j int) bool {
		return strings.ToLower(accounts[i].Username) < strings.ToLower(accounts[j].Username)
	})
	return accounts, nil
}

// FindByID loads an account
func (s *accountService) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, notFound("account not found: %d", id)
	}
	return account, nil
}

// Create adds a new account with a hashed password
func (s *accountService) Create(ctx context.Context, form *models.AccountForm) (*models.Account, error) {
	exists, err := s.repo.UsernameExists(ctx, form.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, invalidInput(msgUsernameTaken)
	}
	if strings.TrimSpace(form.Password) == "" {
		return nil, invalidInput(msgPasswordRequired)
	}

	hash, err := s.hash(form.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		Username:     form.Username,
		PasswordHash: hash,
		Role:         models.Role(form.Role),
	}
	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalidInput(msgUsernameTaken)
		}
		return nil, err
	}

	s.log.Info().Int64("account_id", account.ID).Str("role", account.Role.String()).Msg("Account created")
	return account, nil
}

// Update changes username and role, and the password when one is given.
// The only administrator cannot be demoted; the admin rows stay locked
// from the count until the update commits.
func (s *accountService) Update(ctx context.Context, id int64, form *models.AccountForm) (*models.Account, error) {
	var account *models.Account
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := s.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if current.Username != form.Username {
			exists, err := s.repo.UsernameExists(ctx, form.Username)
			if err != nil {
				return err
			}
			if exists {
				return invalidInput(msgUsernameTaken)
			}
		}

		role := models.Role(form.Role)
		if current.Role == models.RoleAdmin && role != models.RoleAdmin {
			admins, err := s.repo.CountByRole(ctx, models.RoleAdmin)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return conflict(msgLastAdminRole)
			}
		}

		current.Username = form.Username
		current.Role = role
		if strings.TrimSpace(form.Password) != "" {
			hash, err := s.hash(form.Password)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			current.PasswordHash = hash
		}

		if err := s.repo.Update(ctx, current); err != nil {
			switch {
			case errors.Is(err, repository.ErrDuplicate):
				return invalidInput(msgUsernameTaken)
			case errors.Is(err, sql.ErrNoRows):
				return notFound("account not found: %d", id)
			}
			return err
		}

		account = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("account_id", account.ID).Str("role", account.Role.String()).Msg("Account updated")
	return account, nil
}

// Delete removes an account unless it is the only administrator. The
// admin rows stay locked from the count until the delete commits.
func (s *accountService) Delete(ctx context.Context, id int64) error {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		account, err := s.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if account.Role == models.RoleAdmin {
			admins, err := s.repo.CountByRole(ctx, models.RoleAdmin)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return conflict(msgLastAdmin)
			}
		}

		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info().Int64("account_id", id).Msg("Account deleted")
	return nil
}

// Authenticate checks credentials and returns the matching account
func (s *accountService) Authenticate(ctx context.Context, username, password string) (*models.Account, error) {
	account, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if account == nil || !crypto.CheckPassword(account.PasswordHash, password) {
		return nil, &Error{Kind: ErrInvalidCredentials, Message: "invalid username or password"}
	}
	return account, nil
}

// Bootstrap creates the given administrator when no admin exists yet.
// It reports whether an account was created.
func (s *accountService) Bootstrap(ctx context.Context, username, password string) (bool, error) {
	admins, err := s.repo.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("failed to count administrators: %w", err)
	}
	if admins > 0 {
		return false, nil
	}

	_, err = s.Create(ctx, &models.AccountForm{
		Username: username,
		Password: password,
		Role:     models.RoleAdmin.String(),
	})
	if err != nil {
		return false, fmt.Errorf("failed to create default administrator: %w", err)
	}

	s.log.Warn().Str("username", username).Msg("Created default administrator, change its password")
	return true, nil
}
