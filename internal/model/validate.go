package model

import (
	"errors"
	"regexp"
	"strings"
)

// usernameRe enforces a conservative username pattern.
var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,63}$`)

// emailRe is a loose sanity check, not a full RFC 5322 parser.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateProduct checks a product payload before it is dispatched. These
// checks run client-side; a failure here never reaches the gateway.
func ValidateProduct(p Product) error {
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("title is required")
	}
	if p.Price <= 0 {
		return errors.New("price must be greater than 0")
	}
	if p.Category == "" {
		return errors.New("category is required")
	}
	if !ValidCategory(p.Category) {
		return errors.New("unknown category")
	}
	return nil
}

// ValidateNewUser checks a user payload destined for create. Password is
// mandatory on create.
func ValidateNewUser(u User) error {
	if err := validateUserCommon(u); err != nil {
		return err
	}
	if u.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

// ValidateUserPatch checks a user payload destined for update. An absent
// password means "unchanged" and is allowed.
func ValidateUserPatch(u User) error {
	return validateUserCommon(u)
}

func validateUserCommon(u User) error {
	if err := ValidateUsername(u.Username); err != nil {
		return err
	}
	if !emailRe.MatchString(u.Email) {
		return errors.New("invalid email")
	}
	return nil
}

// ValidateUsername validates a username for length and allowed characters.
func ValidateUsername(s string) error {
	if !usernameRe.MatchString(s) {
		return errors.New("invalid username")
	}
	return nil
}
