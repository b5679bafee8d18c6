package accounts

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/scorekeeper/internal/common"
	"github.com/dmitrijs2005/scorekeeper/internal/dbx"
	"github.com/dmitrijs2005/scorekeeper/internal/server/models"
)

const selectColumns = `SELECT id, name, sex, title, tel, email, username, password FROM user_data`

type SQLRepository struct {
	db      dbx.DBTX
	dialect Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return NewSQLRepository(db, DialectPostgres)
}

func NewMySQLRepository(db dbx.DBTX) *SQLRepository {
	return NewSQLRepository(db, DialectMySQL)
}

func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return NewSQLRepository(db, DialectSQLite)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (*models.Account, error) {
	a := &models.Account{}
	err := s.Scan(&a.ID, &a.Name, &a.Sex, &a.Title, &a.Tel, &a.Email, &a.Username, &a.Password)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *SQLRepository) getOne(ctx context.Context, op, where string, args ...any) (*models.Account, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.rebind(selectColumns+" WHERE "+where), args...)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, dbx.Classify(op, err)
	}
	return account, nil
}

func (r *SQLRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.getOne(ctx, "accounts.GetByUsername", "username = ?", username)
}

func (r *SQLRepository) GetByUsernameAndEmail(ctx context.Context, username, email string) (*models.Account, error) {
	return r.getOne(ctx, "accounts.GetByUsernameAndEmail", "username = ? AND email = ?", username, email)
}

func (r *SQLRepository) GetByUsernameEmailTel(ctx context.Context, username, email, tel string) (*models.Account, error) {
	return r.getOne(ctx, "accounts.GetByUsernameEmailTel", "username = ? AND email = ? AND tel = ?", username, email, tel)
}

func (r *SQLRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query := `INSERT INTO user_data (name, sex, title, tel, email, username, password)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	args := []any{account.Name, account.Sex, account.Title, account.Tel, account.Email, account.Username, account.Password}

	if r.dialect == DialectPostgres {
		err := r.db.QueryRowContext(ctx, r.dialect.rebind(query+" RETURNING id"), args...).Scan(&account.ID)
		if err != nil {
			return nil, dbx.Classify("accounts.Create", err)
		}
		return account, nil
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, dbx.Classify("accounts.Create", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, dbx.Classify("accounts.Create", err)
	}
	account.ID = id
	return account, nil
}

// exec runs a single-row write and maps "no row affected" to ErrorNotFound.
func (r *SQLRepository) exec(ctx context.Context, op, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, r.dialect.rebind(query), args...)
	if err != nil {
		return dbx.Classify(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return dbx.Classify(op, err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLRepository) Update(ctx context.Context, account *models.Account) error {
	return r.exec(ctx, "accounts.Update",
		`UPDATE user_data SET name = ?, sex = ?, title = ?, tel = ?, email = ? WHERE username = ?`,
		account.Name, account.Sex, account.Title, account.Tel, account.Email, account.Username)
}

func (r *SQLRepository) UpdatePassword(ctx context.Context, username, password string) error {
	return r.exec(ctx, "accounts.UpdatePassword",
		`UPDATE user_data SET password = ? WHERE username = ?`, password, username)
}

func (r *SQLRepository) UpdatePasswordByID(ctx context.Context, id int64, username, password string) error {
	return r.exec(ctx, "accounts.UpdatePasswordByID",
		`UPDATE user_data SET password = ? WHERE id = ? AND username = ?`, password, id, username)
}

func (r *SQLRepository) Delete(ctx context.Context, username string) error {
	return r.exec(ctx, "accounts.Delete", `DELETE FROM user_data WHERE username = ?`, username)
}

func (r *SQLRepository) List(ctx context.Context) ([]*models.Account, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+" ORDER BY id DESC")
	if err != nil {
		return nil, dbx.Classify("accounts.List", err)
	}
	defer rows.Close()

	list := make([]*models.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, dbx.Classify("accounts.List", err)
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.Classify("accounts.List", err)
	}
	return list, nil
}
