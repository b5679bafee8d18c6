package cli

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/scorekeeper/internal/common"
)

var fieldNames = map[string]string{
	"username": "Username",
	"password": "Password",
	"tel":      "Phone",
	"name":     "Name",
	"sex":      "Sex",
	"title":    "Title",
	"email":    "Email",
}

// describe turns a service error into a line for the user. Storage details
// stay out of the message.
func describe(err error) string {
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		name := fieldNames[ve.Field]
		if name == "" {
			name = ve.Field
		}
		switch {
		case errors.Is(ve, common.ErrorEmptyField):
			return name + " must not be empty"
		case errors.Is(ve, common.ErrorInvalidPhoneFormat):
			return "Phone must be exactly 11 digits"
		case errors.Is(ve, common.ErrorPasswordTooShort):
			return "Password must be at least 6 characters"
		case errors.Is(ve, common.ErrorFieldTooLong):
			return name + " is too long"
		}
	}

	switch {
	case errors.Is(err, common.ErrorInvalidPhoneFormat):
		return "Phone must be exactly 11 digits"
	case errors.Is(err, common.ErrorInvalidCredentials):
		return "Invalid username or password"
	case errors.Is(err, common.ErrorDuplicateUsername):
		return "Username is already taken"
	case errors.Is(err, common.ErrorIdentityMismatch):
		return "Username, email and phone do not match any account"
	case errors.Is(err, common.ErrorSessionNotVerified):
		return "Recovery session is no longer valid, start over"
	case errors.Is(err, common.ErrorNotFound):
		return "Account not found"
	case errors.Is(err, common.ErrorConnectionFailed):
		return "Database is unreachable, try again later"
	case errors.Is(err, common.ErrorStorage):
		return "Database error, try again later"
	case errors.Is(err, errPasswordMismatch), errors.Is(err, errNotLoggedIn):
		return capitalize(err.Error())
	}
	return fmt.Sprintf("Error: %v", err)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

func (a *App) report(err error) error {
	fmt.Fprintln(a.out, describe(err))
	return err
}
