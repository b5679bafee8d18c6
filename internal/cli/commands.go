package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/scorekeeper/internal/common"
	"github.com/dmitrijs2005/scorekeeper/internal/server/models"
)

const maxResetAttempts = 3

var (
	errNotLoggedIn      = errors.New("not logged in")
	errPasswordMismatch = errors.New("passwords do not match")
)

// readNewPassword asks for a password twice and fails with
// errPasswordMismatch when the entries differ.
func (a *App) readNewPassword(ctx context.Context, label string) (string, error) {
	pw, err := a.promptPassword(ctx, label)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)

	confirm, err := a.promptPassword(ctx, "Repeat password")
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(pw, confirm) {
		return "", errPasswordMismatch
	}
	return string(pw), nil
}

// promptFields fills the optional profile fields. Current values are shown
// and kept on empty input.
func (a *App) promptFields(ctx context.Context, acc *models.Account) error {
	fields := []struct {
		label string
		dst   *string
	}{
		{"Name", &acc.Name},
		{"Sex", &acc.Sex},
		{"Title", &acc.Title},
		{"Email", &acc.Email},
	}
	for _, f := range fields {
		label := f.label
		if *f.dst != "" {
			label = fmt.Sprintf("%s [%s]", f.label, *f.dst)
		}
		v, err := a.prompt(ctx, label)
		if err != nil {
			return err
		}
		if v != "" {
			*f.dst = v
		}
	}
	return nil
}

func (a *App) Register(ctx context.Context) error {
	username, err := a.prompt(ctx, "Enter username")
	if err != nil {
		return a.report(err)
	}
	password, err := a.readNewPassword(ctx, "Enter password")
	if err != nil {
		return a.report(err)
	}
	tel, err := a.prompt(ctx, "Phone (11 digits)")
	if err != nil {
		return a.report(err)
	}

	candidate := &models.Account{Username: username, Password: password, Tel: tel}
	if err := a.promptFields(ctx, candidate); err != nil {
		return a.report(err)
	}

	created, err := a.accounts.Register(ctx, candidate)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Registered %s (id %d)\n", created.Username, created.ID)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	username, err := a.prompt(ctx, "Enter username")
	if err != nil {
		return a.report(err)
	}
	password, err := a.promptPassword(ctx, "Enter password")
	if err != nil {
		return a.report(err)
	}
	defer common.WipeByteArray(password)

	acc, err := a.accounts.Login(ctx, username, string(password))
	if err != nil {
		return a.report(err)
	}
	a.current = acc
	fmt.Fprintf(a.out, "Welcome, %s\n", displayName(acc))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		return a.report(errNotLoggedIn)
	}
	a.current = nil
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Recover verifies username, email and phone, then lets the user choose a
// new password. A rejected password can be retried on the same session.
func (a *App) Recover(ctx context.Context) error {
	username, err := a.prompt(ctx, "Enter username")
	if err != nil {
		return a.report(err)
	}
	email, err := a.prompt(ctx, "Enter email")
	if err != nil {
		return a.report(err)
	}
	phone, err := a.prompt(ctx, "Enter phone")
	if err != nil {
		return a.report(err)
	}

	session, err := a.recovery.VerifyIdentity(ctx, username, email, phone)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Identity verified")

	for attempt := 1; ; attempt++ {
		password, err := a.readNewPassword(ctx, "New password")
		if err == nil {
			err = a.recovery.ResetPassword(ctx, session, password)
		}
		if err == nil {
			fmt.Fprintln(a.out, "Password changed, you can log in now")
			return nil
		}

		retry := errors.Is(err, common.ErrorPasswordTooShort) || errors.Is(err, errPasswordMismatch)
		if !retry || attempt >= maxResetAttempts {
			return a.report(err)
		}
		a.report(err)
	}
}

func (a *App) List(ctx context.Context) error {
	list, err := a.accounts.ListAccounts(ctx)
	if err != nil {
		return a.report(err)
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No accounts")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tNAME\tSEX\tTITLE\tPHONE\tEMAIL")
	for _, acc := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			acc.ID, acc.Username, acc.Name, acc.Sex, acc.Title, acc.Tel, acc.Email)
	}
	return tw.Flush()
}

// Update edits the logged-in account. A "-" clears the phone; an empty new
// password keeps the current one.
func (a *App) Update(ctx context.Context) error {
	if !a.isLoggedIn() {
		return a.report(errNotLoggedIn)
	}

	acc, err := a.accounts.LookupByUsername(ctx, a.current.Username)
	if err != nil {
		return a.report(err)
	}

	if err := a.promptFields(ctx, acc); err != nil {
		return a.report(err)
	}

	tel, err := a.prompt(ctx, fmt.Sprintf("Phone [%s] (- to clear)", acc.Tel))
	if err != nil {
		return a.report(err)
	}
	switch tel {
	case "":
	case "-":
		acc.Tel = ""
	default:
		acc.Tel = tel
	}

	password, err := a.readNewPassword(ctx, "New password (empty to keep)")
	if err != nil {
		return a.report(err)
	}
	acc.Password = password

	updated, err := a.accounts.UpdateProfile(ctx, acc)
	if err != nil {
		return a.report(err)
	}
	a.current = updated
	fmt.Fprintln(a.out, "Profile updated")
	return nil
}

func (a *App) Delete(ctx context.Context) error {
	if !a.isLoggedIn() {
		return a.report(errNotLoggedIn)
	}

	username, err := a.prompt(ctx, fmt.Sprintf("Username to delete [%s]", a.current.Username))
	if err != nil {
		return a.report(err)
	}
	if username == "" {
		username = a.current.Username
	}

	answer, err := a.prompt(ctx, fmt.Sprintf("Delete %s? (yes/no)", username))
	if err != nil {
		return a.report(err)
	}
	if !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	if err := a.accounts.DeleteAccount(ctx, username); err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Deleted %s\n", username)

	if username == a.current.Username {
		a.current = nil
	}
	return nil
}

func displayName(acc *models.Account) string {
	if acc.Name != "" {
		return acc.Name
	}
	return acc.Username
}
