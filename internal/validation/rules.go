// Package validation holds the pure input checks shared by the account and
// recovery services. Nothing here performs I/O.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/scorekeeper/internal/common"
)

// MinPasswordLength is the minimum number of characters in a new password.
const MinPasswordLength = 6

// Column widths of user_data, in characters.
const (
	MaxUsernameLength = 50
	MaxNameLength     = 100
	MaxSexLength      = 10
	MaxTitleLength    = 50
	MaxEmailLength    = 255
)

var phonePattern = regexp.MustCompile(`^\d{11}$`)

// IsValidPhone reports whether tel is exactly eleven ASCII digits.
// The value is not trimmed; callers normalize first.
func IsValidPhone(tel string) bool {
	return phonePattern.MatchString(tel)
}

// IsNonBlank reports whether s contains anything besides whitespace.
func IsNonBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

// NormalizeTrim strips leading and trailing whitespace.
func NormalizeTrim(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeOrDefault trims s and falls back to def when the result is empty.
func NormalizeOrDefault(s, def string) string {
	if v := strings.TrimSpace(s); v != "" {
		return v
	}
	return def
}

// CheckPassword applies the password policy to an already trimmed value.
// An empty password is simply the shortest possible one.
func CheckPassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return common.NewValidationError("password", common.ErrorPasswordTooShort)
	}
	return nil
}

// CheckPhone validates a trimmed phone number and names the field on failure.
func CheckPhone(tel string) error {
	if !IsValidPhone(tel) {
		return common.NewValidationError("tel", common.ErrorInvalidPhoneFormat)
	}
	return nil
}

// CheckLength fails when s has more than limit characters.
func CheckLength(field, s string, limit int) error {
	if utf8.RuneCountInString(s) > limit {
		return common.NewValidationError(field, common.ErrorFieldTooLong)
	}
	return nil
}

// CheckProfileLengths runs CheckLength over the stored text columns and
// reports the first field that does not fit.
func CheckProfileLengths(username, name, sex, title, email string) error {
	for _, c := range []struct {
		field string
		value string
		limit int
	}{
		{"username", username, MaxUsernameLength},
		{"name", name, MaxNameLength},
		{"sex", sex, MaxSexLength},
		{"title", title, MaxTitleLength},
		{"email", email, MaxEmailLength},
	} {
		if err := CheckLength(c.field, c.value, c.limit); err != nil {
			return err
		}
	}
	return nil
}
