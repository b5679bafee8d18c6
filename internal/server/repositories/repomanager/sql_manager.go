// Package repomanager provides a RepositoryManager for the supported SQL
// dialects, wiring repository constructors and goose migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/scorekeeper/internal/dbx"
	"github.com/dmitrijs2005/scorekeeper/internal/server/migrations"
	"github.com/dmitrijs2005/scorekeeper/internal/server/repositories/accounts"
	"github.com/pressly/goose/v3"
)

// SQLRepositoryManager vends dialect-specific repositories and applies the
// embedded migrations for that dialect.
type SQLRepositoryManager struct {
	dialect accounts.Dialect
}

// Accounts returns an accounts.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewSQLRepository(db, m.dialect)
}

func (m *SQLRepositoryManager) Dialect() accounts.Dialect {
	return m.dialect
}

// seams for testing goose
var (
	gooseSetDialect = goose.SetDialect
	gooseUpContext  = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.UpContext(ctx, db, dir, opts...)
	}
)

// RunMigrations applies the embedded migrations under the dialect's
// directory. goose keeps its settings in package globals, so concurrent
// calls with different dialects are not supported.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	// stdout belongs to the console
	goose.SetLogger(goose.NopLogger())
	if err := gooseSetDialect(m.dialect.GooseDialect()); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, string(m.dialect)); err != nil {
		return fmt.Errorf("migrations: %w", dbx.Classify("migrate", err))
	}
	return nil
}

// NewSQLRepositoryManager constructs a RepositoryManager for the named
// driver ("postgres", "mysql" or "sqlite").
func NewSQLRepositoryManager(driver string) (*SQLRepositoryManager, error) {
	d, err := accounts.ParseDialect(driver)
	if err != nil {
		return nil, err
	}
	return &SQLRepositoryManager{dialect: d}, nil
}
