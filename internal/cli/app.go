package cli

import (
	"context"
	"io"

	"github.com/dmitrijs2005/scorekeeper/internal/server/models"
	"github.com/dmitrijs2005/scorekeeper/internal/server/services"
)

// AccountService is the part of services.AccountService the console uses.
type AccountService interface {
	Login(ctx context.Context, username, password string) (*models.Account, error)
	Register(ctx context.Context, candidate *models.Account) (*models.Account, error)
	UpdateProfile(ctx context.Context, account *models.Account) (*models.Account, error)
	DeleteAccount(ctx context.Context, username string) error
	ListAccounts(ctx context.Context) ([]*models.Account, error)
	LookupByUsername(ctx context.Context, username string) (*models.Account, error)
}

type RecoveryService interface {
	VerifyIdentity(ctx context.Context, username, email, phone string) (*services.RecoverySession, error)
	ResetPassword(ctx context.Context, session *services.RecoverySession, newPassword string) error
}

type App struct {
	accounts AccountService
	recovery RecoveryService
	in       *lineReader
	out      io.Writer

	// current is the logged-in account, nil for a guest.
	current *models.Account
}

func NewApp(accounts AccountService, recovery RecoveryService, in io.Reader, out io.Writer) *App {
	return &App{
		accounts: accounts,
		recovery: recovery,
		in:       newLineReader(in),
		out:      out,
	}
}

// Run starts the REPL and returns when the user exits, input ends or ctx is
// cancelled. An App runs at most once.
func (a *App) Run(ctx context.Context) {
	defer a.in.stop()
	runREPL(ctx, a, a.status, a.in.readLine, a.out)
}

func (a *App) isLoggedIn() bool {
	return a.current != nil
}

func (a *App) status() string {
	if a.current == nil {
		return "guest"
	}
	return a.current.Username
}
