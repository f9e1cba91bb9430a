package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/blog-cms/internal/models"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the result of validating one form
type Errors []ValidationError

// ByField groups messages by field name for template rendering
func (e Errors) ByField() map[string]string {
	out := make(map[string]string, len(e))
	for _, err := range e {
		if _, ok := out[err.Field]; !ok {
			out[err.Field] = err.Message
		}
	}
	return out
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidateArticleForm validates an article form
func ValidateArticleForm(form *models.ArticleForm) Errors {
	var errors Errors

	if isBlank(form.Title) {
		errors = append(errors, ValidationError{Field: "title", Message: "title is required"})
	}

	if utf8.RuneCountInString(form.Summary) > models.MaxSummaryLength {
		errors = append(errors, ValidationError{
			Field:   "summary",
			Message: fmt.Sprintf("summary must be at most %d characters", models.MaxSummaryLength),
		})
	}

	if isBlank(form.Content) {
		errors = append(errors, ValidationError{Field: "content", Message: "content is required"})
	}

	return errors
}

// ValidateAccountForm validates an account form.
// Password rules depend on create vs update and live in the service.
func ValidateAccountForm(form *models.AccountForm) Errors {
	var errors Errors

	if isBlank(form.Username) {
		errors = append(errors, ValidationError{Field: "username", Message: "username is required"})
	}

	if isBlank(form.Role) {
		errors = append(errors, ValidationError{Field: "role", Message: "role is required"})
	} else if !models.ValidRoles[models.Role(form.Role)] {
		errors = append(errors, ValidationError{
			Field:   "role",
			Message: "invalid role, must be one of: ADMIN, EDITOR",
		})
	}

	return errors
}

// ValidateLoginForm validates posted credentials
func ValidateLoginForm(form *models.LoginForm) Errors {
	var errors Errors

	if isBlank(form.Username) {
		errors = append(errors, ValidationError{Field: "username", Message: "username is required"})
	}
	if form.Password == "" {
		errors = append(errors, ValidationError{Field: "password", Message: "password is required"})
	}

	return errors
}
