package models

import (
	"time"
)

// Role is the access level of an account
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
)

// Roles lists every role in display order
var Roles = []Role{RoleAdmin, RoleEditor}

// ValidRoles defines allowed account roles
var ValidRoles = map[Role]bool{
	RoleAdmin:  true,
	RoleEditor: true,
}

// String returns the stored name of the role
func (r Role) String() string {
	return string(r)
}

// Account represents a back-office user
type Account struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsAdmin returns true if the account has the admin role
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// AccountForm is the admin form for creating and editing accounts.
// Password may be blank on update to keep the current one.
type AccountForm struct {
	ID       int64  `form:"id"`
	Username string `form:"username"`
	Password string `form:"password"`
	Role     string `form:"role"`
}

// NewAccountForm returns an empty form with the default role selected
func NewAccountForm() AccountForm {
	return AccountForm{Role: RoleEditor.String()}
}

// ToForm fills a form from a stored account, leaving the password empty
func (a *Account) ToForm() AccountForm {
	return AccountForm{
		ID:       a.ID,
		Username: a.Username,
		Role:     a.Role.String(),
	}
}

// LoginForm carries the credentials posted to the login page
type LoginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}
