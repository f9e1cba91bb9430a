package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/blog-cms/internal/database"
	"github.com/blog-cms/internal/models"
)

const accountColumns = `id, username, password_hash, role, created_at, updated_at`

// accountRepo is the concrete implementation of AccountRepository
type accountRepo struct {
	db *database.DB
}

// NewAccountRepo creates a new account repository
func NewAccountRepo(db *database.DB) AccountRepository {
	return &accountRepo{db: db}
}

// Create inserts a new account. A taken username yields ErrDuplicate.
func (r *accountRepo) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := executor(ctx, r.db).QueryRowxContext(ctx, query,
		account.Username, account.PasswordHash, account.Role,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	return mapError(err)
}

// Update overwrites username, hash and role of an existing account
func (r *accountRepo) Update(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE accounts
		SET username = $1, password_hash = $2, role = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING created_at, updated_at
	`
	err := executor(ctx, r.db).QueryRowxContext(ctx, query,
		account.Username, account.PasswordHash, account.Role, account.ID,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return sql.ErrNoRows
	}
	return mapError(err)
}

// Delete removes an account by ID
func (r *accountRepo) Delete(ctx context.Context, id int64) error {
	_, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	return err
}

// GetByID retrieves an account by ID
func (r *accountRepo) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

// GetByUsername retrieves an account by its exact username
func (r *accountRepo) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username)
}

// UsernameExists checks whether a username is already taken
func (r *accountRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := executor(ctx, r.db).GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE username = $1)`, username)
	return exists, err
}

// CountByRole counts accounts holding role. Inside a transaction the
// matching rows stay locked until it ends.
func (r *accountRepo) CountByRole(ctx context.Context, role models.Role) (int, error) {
	query := `SELECT COUNT(*) FROM accounts WHERE role = $1`
	if txFromContext(ctx) != nil {
		query = `SELECT COUNT(*) FROM (SELECT id FROM accounts WHERE role = $1 FOR UPDATE) locked`
	}

	var count int
	err := executor(ctx, r.db).GetContext(ctx, &count, query, role)
	return count, err
}

// List returns every account ordered by ID
func (r *accountRepo) List(ctx context.Context) ([]models.Account, error) {
	accounts := []models.Account{}
	err := executor(ctx, r.db).SelectContext(ctx, &accounts,
		`SELECT `+accountColumns+` FROM accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *accountRepo) getOne(ctx context.Context, query string, arg interface{}) (*models.Account, error) {
	var account models.Account
	err := executor(ctx, r.db).GetContext(ctx, &account, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}
