// Package server assembles scorekeeper: it opens the configured database,
// applies migrations, builds the account and recovery services and runs the
// console front-end until the user leaves or a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/scorekeeper/internal/cli"
	"github.com/dmitrijs2005/scorekeeper/internal/cryptox"
	"github.com/dmitrijs2005/scorekeeper/internal/dbx"
	"github.com/dmitrijs2005/scorekeeper/internal/filex"
	"github.com/dmitrijs2005/scorekeeper/internal/logging"
	"github.com/dmitrijs2005/scorekeeper/internal/server/config"
	"github.com/dmitrijs2005/scorekeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/scorekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/scorekeeper/internal/server/services"
	"github.com/go-sql-driver/mysql"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	Accounts *services.AccountService
	Recovery *services.RecoveryService
}

// NewApp opens the database named by c, migrates it and wires the services.
// Log records go to logOut. The caller must Close the App.
func NewApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	logger, err := logging.NewJSONLogger(logOut, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	m, err := repomanager.NewSQLRepositoryManager(c.DatabaseDriver)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	db, err := openDB(ctx, m.Dialect(), c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	hasher := cryptox.NewArgon2Hasher(cryptox.Params{
		Time:    c.Argon2Time,
		Memory:  c.Argon2MemoryKiB,
		Threads: c.Argon2Threads,
	})

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		Accounts: services.NewAccountService(db, m, hasher, logger),
		Recovery: services.NewRecoveryService(db, m, hasher, logger, c),
	}, nil
}

func openDB(ctx context.Context, d accounts.Dialect, dsn string) (*sql.DB, error) {
	switch d {
	case accounts.DialectMySQL:
		var err error
		if dsn, err = mysqlDSN(dsn); err != nil {
			return nil, err
		}
	case accounts.DialectSQLite:
		if err := filex.EnsureSQLiteDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, err
	}
	if d == accounts.DialectSQLite {
		// one writer at a time; avoids SQLITE_BUSY on lock upgrades
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, dbx.Classify("ping", err)
	}
	return db, nil
}

// mysqlDSN makes UPDATE report matched rather than changed rows, so that
// rewriting a profile with identical values is not taken for a missing row.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("mysql dsn: %w", err)
	}
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run drives the console on in/out and returns when the user exits, input
// ends, ctx is cancelled or the process is signalled.
func (app *App) Run(ctx context.Context, in io.Reader, out io.Writer) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(ctx, cancelFunc)

	app.logger.Info(ctx, "starting", "driver", app.config.DatabaseDriver)
	cli.NewApp(app.Accounts, app.Recovery, in, out).Run(ctx)
	app.logger.Info(ctx, "stopped")
}

// Close releases the connection pool.
func (app *App) Close() error {
	return app.db.Close()
}
