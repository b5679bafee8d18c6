// Package accounts is the persistence boundary for account records.
//
// Lookups return common.ErrorNotFound when no row matches, Create returns
// common.ErrorDuplicateKey on a username collision, and driver failures come
// back as *common.StorageError. The three outcomes never overlap.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/scorekeeper/internal/server/models"
)

type Repository interface {
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	GetByUsernameAndEmail(ctx context.Context, username, email string) (*models.Account, error)
	GetByUsernameEmailTel(ctx context.Context, username, email, tel string) (*models.Account, error)

	// Create inserts account and fills in its store-assigned ID.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// Update overwrites the profile columns (name, sex, title, tel, email) of
	// the row keyed by account.Username. The password column is untouched.
	Update(ctx context.Context, account *models.Account) error
	UpdatePassword(ctx context.Context, username, password string) error

	// UpdatePasswordByID sets the password of the row matching both id and
	// username. A row re-created under the same username has a new id and is
	// not touched.
	UpdatePasswordByID(ctx context.Context, id int64, username, password string) error
	Delete(ctx context.Context, username string) error

	// List returns every account ordered by ID descending, never nil.
	List(ctx context.Context) ([]*models.Account, error)
}
