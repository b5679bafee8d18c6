package dbx

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/dmitrijs2005/scorekeeper/internal/common"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	pgUniqueViolation  = "23505"
	mysqlDuplicateKey  = 1062
	mysqlServerGoneErr = 2006
	mysqlLostConnErr   = 2013
)

// IsDuplicateKey reports whether err is a unique-constraint violation raised
// by one of the supported drivers. Only typed driver errors are inspected.
func IsDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateKey
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		// the driver always enables extended result codes, so NOT NULL and
		// CHECK failures carry their own codes
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}

	return false
}

// IsConnectionFailure reports whether err means the database could not be
// reached or the connection broke mid-flight.
func IsConnectionFailure(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 08: connection exception
		return strings.HasPrefix(pgErr.Code, "08")
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlServerGoneErr || myErr.Number == mysqlLostConnErr
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqlite3.SQLITE_CANTOPEN
	}

	var netErr *net.OpError
	return errors.As(err, &netErr)
}

// Classify maps a driver error onto the common error taxonomy:
// duplicate keys become common.ErrorDuplicateKey, everything else a
// *common.StorageError. Nil, sql.ErrNoRows and already classified errors are
// returned as they are.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorDuplicateKey) {
		return err
	}
	var se *common.StorageError
	if errors.As(err, &se) {
		return err
	}

	if IsDuplicateKey(err) {
		return errors.Join(common.ErrorDuplicateKey, err)
	}

	kind := common.ErrorStorageUnavailable
	if IsConnectionFailure(err) {
		kind = common.ErrorConnectionFailed
	}

	return &common.StorageError{Op: op, Kind: kind, Err: err}
}
