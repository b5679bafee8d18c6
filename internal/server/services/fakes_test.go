package services

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/scorekeeper/internal/common"
	"github.com/dmitrijs2005/scorekeeper/internal/cryptox"
	"github.com/dmitrijs2005/scorekeeper/internal/dbx"
	"github.com/dmitrijs2005/scorekeeper/internal/server/models"
	"github.com/dmitrijs2005/scorekeeper/internal/server/repositories/accounts"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// fakeAccountsRepo is an in-memory accounts.Repository keyed by username.
type fakeAccountsRepo struct {
	mu     sync.Mutex
	rows   map[string]*models.Account
	nextID int64
	calls  int

	err               error // returned by every call when set
	updatePasswordErr error
}

func newFakeAccountsRepo(seed ...*models.Account) *fakeAccountsRepo {
	r := &fakeAccountsRepo{rows: map[string]*models.Account{}}
	for _, a := range seed {
		r.nextID++
		c := *a
		c.ID = r.nextID
		r.rows[c.Username] = &c
	}
	return r
}

func (r *fakeAccountsRepo) enter() error {
	r.calls++
	return r.err
}

func (r *fakeAccountsRepo) get(username string) (*models.Account, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[username]
	if !ok {
		return nil, false
	}
	c := *a
	return &c, true
}

func (r *fakeAccountsRepo) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *fakeAccountsRepo) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(); err != nil {
		return nil, err
	}
	a, ok := r.rows[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *a
	return &c, nil
}

func (r *fakeAccountsRepo) GetByUsernameAndEmail(ctx context.Context, username, email string) (*models.Account, error) {
	a, err := r.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if a.Email != email {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (r *fakeAccountsRepo) GetByUsernameEmailTel(ctx context.Context, username, email, tel string) (*models.Account, error) {
	a, err := r.GetByUsernameAndEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if a.Tel != tel {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (r *fakeAccountsRepo) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(); err != nil {
		return nil, err
	}
	if _, ok := r.rows[account.Username]; ok {
		return nil, common.ErrorDuplicateKey
	}
	r.nextID++
	account.ID = r.nextID
	c := *account
	r.rows[c.Username] = &c
	return account, nil
}

func (r *fakeAccountsRepo) Update(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(); err != nil {
		return err
	}
	a, ok := r.rows[account.Username]
	if !ok {
		return common.ErrorNotFound
	}
	a.Name, a.Sex, a.Title, a.Tel, a.Email = account.Name, account.Sex, account.Title, account.Tel, account.Email
	return nil
}

func (r *fakeAccountsRepo) UpdatePassword(ctx context.Context, username, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(); err != nil {
		return err
	}
	if r.updatePasswordErr != nil {
		return r.updatePasswordErr
	}
	a, ok := r.rows[username]
	if !ok {
		return common.ErrorNotFound
	}
	a.Password = password
	return nil
}

func (r *fakeAccountsRepo) UpdatePasswordByID(ctx context.Context, id int64, username, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(); err != nil {
		return err
	}
	if r.updatePasswordErr != nil {
		return r.updatePasswordErr
	}
	a, ok := r.rows[username]
	if !ok || a.ID != id {
		return common.ErrorNotFound
	}
	a.Password = password
	return nil
}

func (r *fakeAccountsRepo) Delete(ctx context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(); err != nil {
		return err
	}
	if _, ok := r.rows[username]; !ok {
		return common.ErrorNotFound
	}
	delete(r.rows, username)
	return nil
}

func (r *fakeAccountsRepo) List(ctx context.Context) ([]*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(); err != nil {
		return nil, err
	}
	out := make([]*models.Account, 0, len(r.rows))
	for _, a := range r.rows {
		c := *a
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type fakeManager struct {
	repo *fakeAccountsRepo
}

func (m *fakeManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func (m *fakeManager) Accounts(db dbx.DBTX) accounts.Repository { return m.repo }

// plainHasher stores "plain:<password>" so tests can read credentials back.
type plainHasher struct {
	mu       sync.Mutex
	verifies int
	hashErr  error
}

func (h *plainHasher) Hash(password string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "plain:" + password, nil
}

func (h *plainHasher) Verify(encoded, password string) (bool, error) {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	if !strings.HasPrefix(encoded, "plain:") {
		return false, cryptox.ErrInvalidHash
	}
	return encoded == "plain:"+password, nil
}

func (h *plainHasher) verifyCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.verifies
}
