package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/scorekeeper/internal/common"
	"github.com/dmitrijs2005/scorekeeper/internal/server/models"
	"github.com/dmitrijs2005/scorekeeper/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts struct {
	loginErr    error
	registerErr error
	updateErr   error
	deleteErr   error
	list        []*models.Account

	registered *models.Account
	updated    *models.Account
	deleted    string
	login      [2]string
}

func (f *fakeAccounts) Login(ctx context.Context, username, password string) (*models.Account, error) {
	f.login = [2]string{username, password}
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.Account{ID: 1, Username: username, Name: "Ann", Tel: "13800000000"}, nil
}

func (f *fakeAccounts) Register(ctx context.Context, candidate *models.Account) (*models.Account, error) {
	f.registered = candidate
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	c := *candidate
	c.ID = 5
	return &c, nil
}

func (f *fakeAccounts) UpdateProfile(ctx context.Context, account *models.Account) (*models.Account, error) {
	f.updated = account
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	c := *account
	c.Password = ""
	return &c, nil
}

func (f *fakeAccounts) DeleteAccount(ctx context.Context, username string) error {
	f.deleted = username
	return f.deleteErr
}

func (f *fakeAccounts) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	if f.list == nil {
		return []*models.Account{}, nil
	}
	return f.list, nil
}

func (f *fakeAccounts) LookupByUsername(ctx context.Context, username string) (*models.Account, error) {
	return &models.Account{ID: 1, Username: username, Name: "Ann", Title: "regular user", Tel: "13800000000", Email: "ann@example.com"}, nil
}

type fakeRecovery struct {
	verifyErr  error
	resetErrs  []error
	passwords  []string
	identities [3]string
}

func (f *fakeRecovery) VerifyIdentity(ctx context.Context, username, email, phone string) (*services.RecoverySession, error) {
	f.identities = [3]string{username, email, phone}
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &services.RecoverySession{}, nil
}

func (f *fakeRecovery) ResetPassword(ctx context.Context, session *services.RecoverySession, newPassword string) error {
	f.passwords = append(f.passwords, newPassword)
	if len(f.resetErrs) == 0 {
		return nil
	}
	err := f.resetErrs[0]
	f.resetErrs = f.resetErrs[1:]
	return err
}

func newTestApp(t *testing.T, acc *fakeAccounts, rec *fakeRecovery, input ...string) (*App, *bytes.Buffer) {
	t.Helper()
	orig := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = orig })

	var out bytes.Buffer
	a := NewApp(acc, rec, strings.NewReader(strings.Join(input, "\n")+"\n"), &out)
	t.Cleanup(a.in.stop)
	return a, &out
}

func TestRegister(t *testing.T) {
	acc := &fakeAccounts{}
	a, out := newTestApp(t, acc, nil,
		"bob", "secret1", "secret1", "13900000000", "Bob", "", "", "bob@example.com")

	require.NoError(t, a.Register(context.Background()))
	assert.Equal(t, "bob", acc.registered.Username)
	assert.Equal(t, "secret1", acc.registered.Password)
	assert.Equal(t, "13900000000", acc.registered.Tel)
	assert.Equal(t, "Bob", acc.registered.Name)
	assert.Equal(t, "bob@example.com", acc.registered.Email)
	assert.Contains(t, out.String(), "Registered bob (id 5)")
}

func TestRegister_Errors(t *testing.T) {
	t.Run("password mismatch", func(t *testing.T) {
		acc := &fakeAccounts{}
		a, out := newTestApp(t, acc, nil, "bob", "secret1", "secret2")

		err := a.Register(context.Background())
		assert.ErrorIs(t, err, errPasswordMismatch)
		assert.Nil(t, acc.registered)
		assert.Contains(t, out.String(), "Passwords do not match")
	})

	t.Run("duplicate", func(t *testing.T) {
		acc := &fakeAccounts{registerErr: common.ErrorDuplicateUsername}
		a, out := newTestApp(t, acc, nil, "bob", "x", "x", "13900000000", "", "", "", "")

		assert.Error(t, a.Register(context.Background()))
		assert.Contains(t, out.String(), "Username is already taken")
	})

	t.Run("bad phone", func(t *testing.T) {
		acc := &fakeAccounts{registerErr: common.NewValidationError("tel", common.ErrorInvalidPhoneFormat)}
		a, out := newTestApp(t, acc, nil, "bob", "x", "x", "123", "", "", "", "")

		assert.Error(t, a.Register(context.Background()))
		assert.Contains(t, out.String(), "Phone must be exactly 11 digits")
	})
}

func TestLoginLogout(t *testing.T) {
	acc := &fakeAccounts{}
	a, out := newTestApp(t, acc, nil, "ann", "secret1")
	ctx := context.Background()

	require.NoError(t, a.Login(ctx))
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, "ann", a.status())
	assert.Equal(t, [2]string{"ann", "secret1"}, acc.login)
	assert.Contains(t, out.String(), "Welcome, Ann")

	require.NoError(t, a.Logout(ctx))
	assert.False(t, a.isLoggedIn())
	assert.Equal(t, "guest", a.status())

	assert.ErrorIs(t, a.Logout(ctx), errNotLoggedIn)
}

func TestLogin_Invalid(t *testing.T) {
	acc := &fakeAccounts{loginErr: common.ErrorInvalidCredentials}
	a, out := newTestApp(t, acc, nil, "ann", "wrong")

	assert.ErrorIs(t, a.Login(context.Background()), common.ErrorInvalidCredentials)
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Invalid username or password")
}

func TestRecover(t *testing.T) {
	t.Run("retries a short password on the same session", func(t *testing.T) {
		rec := &fakeRecovery{resetErrs: []error{common.NewValidationError("password", common.ErrorPasswordTooShort)}}
		a, out := newTestApp(t, &fakeAccounts{}, rec,
			"ann", "ann@example.com", "13800000000",
			"abc", "abc",
			"newpass", "newpass")

		require.NoError(t, a.Recover(context.Background()))
		assert.Equal(t, [3]string{"ann", "ann@example.com", "13800000000"}, rec.identities)
		assert.Equal(t, []string{"abc", "newpass"}, rec.passwords)
		assert.Contains(t, out.String(), "Password must be at least 6 characters")
		assert.Contains(t, out.String(), "Password changed")
	})

	t.Run("identity mismatch stops early", func(t *testing.T) {
		rec := &fakeRecovery{verifyErr: common.ErrorIdentityMismatch}
		a, out := newTestApp(t, &fakeAccounts{}, rec, "ann", "ann@example.com", "13800000001")

		assert.ErrorIs(t, a.Recover(context.Background()), common.ErrorIdentityMismatch)
		assert.Empty(t, rec.passwords)
		assert.Contains(t, out.String(), "do not match any account")
	})

	t.Run("gives up after the attempt limit", func(t *testing.T) {
		short := common.NewValidationError("password", common.ErrorPasswordTooShort)
		rec := &fakeRecovery{resetErrs: []error{short, short, short, short}}
		a, _ := newTestApp(t, &fakeAccounts{}, rec,
			"ann", "ann@example.com", "13800000000",
			"a", "a", "b", "b", "c", "c", "d", "d")

		assert.ErrorIs(t, a.Recover(context.Background()), common.ErrorPasswordTooShort)
		assert.Len(t, rec.passwords, maxResetAttempts)
	})

	t.Run("session errors are not retried", func(t *testing.T) {
		rec := &fakeRecovery{resetErrs: []error{common.ErrorSessionNotVerified}}
		a, out := newTestApp(t, &fakeAccounts{}, rec,
			"ann", "ann@example.com", "13800000000", "newpass", "newpass")

		assert.ErrorIs(t, a.Recover(context.Background()), common.ErrorSessionNotVerified)
		assert.Len(t, rec.passwords, 1)
		assert.Contains(t, out.String(), "start over")
	})
}

func TestList(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		a, out := newTestApp(t, &fakeAccounts{}, nil)

		require.NoError(t, a.List(context.Background()))
		assert.Contains(t, out.String(), "No accounts")
	})

	t.Run("table", func(t *testing.T) {
		acc := &fakeAccounts{list: []*models.Account{
			{ID: 2, Username: "bob", Title: "regular user", Tel: "13900000000"},
			{ID: 1, Username: "ann", Name: "Ann", Title: "captain"},
		}}
		a, out := newTestApp(t, acc, nil)

		require.NoError(t, a.List(context.Background()))
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "ID"))
		assert.Contains(t, lines[1], "bob")
		assert.Contains(t, lines[2], "captain")
	})
}

func TestUpdate(t *testing.T) {
	t.Run("requires login", func(t *testing.T) {
		a, _ := newTestApp(t, &fakeAccounts{}, nil)
		assert.ErrorIs(t, a.Update(context.Background()), errNotLoggedIn)
	})

	t.Run("keeps blanks, clears phone, changes password", func(t *testing.T) {
		acc := &fakeAccounts{}
		a, out := newTestApp(t, acc, nil, "Anna", "", "", "", "-", "newpass", "newpass")
		a.current = &models.Account{ID: 1, Username: "ann"}

		require.NoError(t, a.Update(context.Background()))
		require.NotNil(t, acc.updated)
		assert.Equal(t, "ann", acc.updated.Username)
		assert.Equal(t, "Anna", acc.updated.Name)
		assert.Equal(t, "regular user", acc.updated.Title)
		assert.Equal(t, "ann@example.com", acc.updated.Email)
		assert.Empty(t, acc.updated.Tel)
		assert.Equal(t, "newpass", acc.updated.Password)
		assert.Equal(t, "Anna", a.current.Name)
		assert.Contains(t, out.String(), "Profile updated")
	})

	t.Run("empty password keeps credential", func(t *testing.T) {
		acc := &fakeAccounts{}
		a, _ := newTestApp(t, acc, nil, "", "", "", "", "", "", "")
		a.current = &models.Account{ID: 1, Username: "ann"}

		require.NoError(t, a.Update(context.Background()))
		assert.Empty(t, acc.updated.Password)
		assert.Equal(t, "13800000000", acc.updated.Tel)
	})
}

func TestDelete(t *testing.T) {
	t.Run("own account logs out", func(t *testing.T) {
		acc := &fakeAccounts{}
		a, _ := newTestApp(t, acc, nil, "", "yes")
		a.current = &models.Account{ID: 1, Username: "ann"}

		require.NoError(t, a.Delete(context.Background()))
		assert.Equal(t, "ann", acc.deleted)
		assert.False(t, a.isLoggedIn())
	})

	t.Run("cancelled", func(t *testing.T) {
		acc := &fakeAccounts{}
		a, out := newTestApp(t, acc, nil, "bob", "no")
		a.current = &models.Account{ID: 1, Username: "ann"}

		require.NoError(t, a.Delete(context.Background()))
		assert.Empty(t, acc.deleted)
		assert.Contains(t, out.String(), "Cancelled")
	})

	t.Run("other account not found", func(t *testing.T) {
		acc := &fakeAccounts{deleteErr: common.ErrorNotFound}
		a, out := newTestApp(t, acc, nil, "bob", "YES")
		a.current = &models.Account{ID: 1, Username: "ann"}

		assert.ErrorIs(t, a.Delete(context.Background()), common.ErrorNotFound)
		assert.True(t, a.isLoggedIn())
		assert.Contains(t, out.String(), "Account not found")
	})
}

func TestDescribe(t *testing.T) {
	storage := &common.StorageError{Op: "x", Kind: common.ErrorConnectionFailed, Err: errors.New("dial")}

	tests := []struct {
		err  error
		want string
	}{
		{common.NewValidationError("username", common.ErrorEmptyField), "Username must not be empty"},
		{common.NewValidationError("tel", common.ErrorEmptyField), "Phone must not be empty"},
		{common.NewValidationError("password", common.ErrorPasswordTooShort), "Password must be at least 6 characters"},
		{common.NewValidationError("email", common.ErrorFieldTooLong), "Email is too long"},
		{common.NewValidationError("username", common.ErrorFieldTooLong), "Username is too long"},
		{common.ErrorNotFound, "Account not found"},
		{storage, "Database is unreachable, try again later"},
		{&common.StorageError{Op: "x", Kind: common.ErrorStorageUnavailable, Err: errors.New("disk")}, "Database error, try again later"},
		{errNotLoggedIn, "Not logged in"},
		{errors.New("weird"), "Error: weird"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, describe(tt.err))
	}
}
