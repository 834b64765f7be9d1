package services

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/gophmarket/internal/common"
)

const (
	minPasswordLen = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordBytes = 72
	maxNameLen       = 100
	maxEmailLen      = 254
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, fmt.Sprintf(format, args...))
}

// ValidateEmail accepts a bare addr-spec with a dotted domain.
func ValidateEmail(email string) error {
	if email == "" {
		return validationError("email is required")
	}
	if len(email) > maxEmailLen {
		return validationError("email is too long")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return validationError("email is invalid")
	}
	at := strings.LastIndexByte(email, '@')
	if domain := email[at+1:]; !strings.Contains(domain, ".") || strings.HasSuffix(domain, ".") {
		return validationError("email is invalid")
	}
	return nil
}

// ValidatePassword enforces length and one character from each class.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return validationError("password must be at least %d characters", minPasswordLen)
	}
	if len(password) > maxPasswordBytes {
		return validationError("password must be at most %d bytes", maxPasswordBytes)
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return validationError("password must contain upper and lower case letters, a digit and a symbol")
	}
	return nil
}

func validateName(field, v string) error {
	if len([]rune(v)) > maxNameLen {
		return validationError("%s must be at most %d characters", field, maxNameLen)
	}
	return nil
}
