package database

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Postgres SQLSTATE codes.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// UniqueViolation reports whether err is a unique or primary-key constraint
// failure. The returned target names what collided: the constraint name on
// Postgres ("users_username_key"), "table.column" on SQLite ("users.username").
func UniqueViolation(err error) (target string, ok bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == pqUniqueViolation {
			return pqErr.Constraint, true
		}
		return "", false
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		if liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			// "UNIQUE constraint failed: users.username"
			msg := liteErr.Error()
			if i := strings.LastIndex(msg, ": "); i >= 0 {
				return msg[i+2:], true
			}
			return "", true
		}
	}
	return "", false
}

// ViolatesUnique reports whether err is a unique violation on the given column.
func ViolatesUnique(err error, column string) bool {
	target, ok := UniqueViolation(err)
	return ok && strings.Contains(target, column)
}

// ForeignKeyViolation reports whether err is a foreign-key failure.
func ForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqForeignKeyViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

// CheckViolation reports whether err is a CHECK constraint failure.
func CheckViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqCheckViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintCheck
	}
	return false
}

// Unavailable reports whether err means the store could not be reached,
// as opposed to a query or constraint failure.
func Unavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrCantOpen || liteErr.Code == sqlite3.ErrNotADB
	}
	return false
}
