package validator

import (
	"net/mail"
	"strings"
	"unicode"

	v10 "github.com/go-playground/validator/v10"
)

var validate = v10.New(v10.WithRequiredStructEnabled())

// ValidationError represents a single field failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var msgs []string
	for _, e := range v {
		msgs = append(msgs, e.Field+": "+e.Message)
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any errors
func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

// Add adds a validation error
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// Struct validates a tagged request struct and flattens the result into
// ValidationErrors so handlers deal with one error shape everywhere.
func Struct(s interface{}) ValidationErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var errs ValidationErrors
	invalid, ok := err.(v10.ValidationErrors)
	if !ok {
		errs.Add("request", err.Error())
		return errs
	}
	for _, fe := range invalid {
		errs.Add(strings.ToLower(fe.Field()), "failed on the '"+fe.Tag()+"' rule")
	}
	return errs
}

// ValidateEmail validates an email address
func ValidateEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// ValidatePassword validates password strength
func ValidatePassword(password string) ValidationErrors {
	var errors ValidationErrors

	if len(password) < 8 {
		errors.Add("password", "must be at least 8 characters")
		return errors
	}

	var hasUpper, hasLower, hasNumber bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsDigit(c):
			hasNumber = true
		}
	}

	if !hasUpper {
		errors.Add("password", "must contain at least one uppercase letter")
	}
	if !hasLower {
		errors.Add("password", "must contain at least one lowercase letter")
	}
	if !hasNumber {
		errors.Add("password", "must contain at least one number")
	}

	return errors
}

// ValidateName validates a display name
func ValidateName(name string) bool {
	name = strings.TrimSpace(name)
	return len(name) >= 2 && len(name) <= 100
}

// SanitizeString trims whitespace and limits length
func SanitizeString(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) > maxLen {
		return s[:maxLen]
	}
	return s
}

// SanitizeEmail normalizes an email address
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
