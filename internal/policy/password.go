// Package policy implements the Okta default password complexity rules.
package policy

import (
	"errors"
	"regexp"
	"strings"
)

// MinLength is the minimum password length in bytes.
const MinLength = 8

// Reason identifies which rule rejected a password.
type Reason string

const (
	ReasonTooShort              Reason = "TooShort"
	ReasonInsufficientDiversity Reason = "InsufficientDiversity"
	ReasonContainsEmail         Reason = "ContainsEmail"
)

var messages = map[Reason]string{
	ReasonTooShort:              "Password length must be at least 8 characters.",
	ReasonInsufficientDiversity: "Password must contain at least 1 types of character of: lowercase letters, uppercase letters, digits.",
	ReasonContainsEmail:         "Password must not contain the email address.",
}

var characterClasses = []*regexp.Regexp{
	regexp.MustCompile(`[a-z]`),
	regexp.MustCompile(`[A-Z]`),
	regexp.MustCompile(`[0-9]`),
}

// ErrInvalidPassword matches every *PasswordError.
var ErrInvalidPassword = errors.New("invalid password")

// PasswordError describes a rejected password.
type PasswordError struct {
	Reason  Reason
	Message string
}

func (e *PasswordError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrInvalidPassword) hold.
func (e *PasswordError) Is(target error) bool {
	return target == ErrInvalidPassword
}

// CheckResult is the outcome of a single Validate call.
type CheckResult struct {
	Valid   bool
	Reason  Reason
	Message string
}

// Err returns nil for a valid result and a *PasswordError otherwise.
func (r CheckResult) Err() error {
	if r.Valid {
		return nil
	}
	return &PasswordError{Reason: r.Reason, Message: r.Message}
}

// Validate checks password against length, character diversity and email
// rules in that order. The first failing rule decides the result. The email
// rule only applies when email is non-empty.
func Validate(password, email string) CheckResult {
	if len(password) < MinLength {
		return reject(ReasonTooShort)
	}

	sets := 0
	for _, class := range characterClasses {
		if class.MatchString(password) {
			sets++
		}
	}
	if sets < len(characterClasses) {
		return reject(ReasonInsufficientDiversity)
	}

	if email != "" && strings.Contains(strings.ToLower(password), strings.ToLower(email)) {
		return reject(ReasonContainsEmail)
	}

	return CheckResult{Valid: true}
}

func reject(reason Reason) CheckResult {
	return CheckResult{Valid: false, Reason: reason, Message: messages[reason]}
}
