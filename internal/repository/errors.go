// Package repository implements the registry and admin stores on MySQL.
// Constraint violations and missing rows are translated into the shared
// model error kinds so higher layers never see driver errors for expected
// failures.
package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/inn-guest-registry/internal/model"
)

// MySQL server error numbers the repositories care about.
const (
	errDupEntry = 1062 // ER_DUP_ENTRY: unique index violation
	errNoRefRow = 1452 // ER_NO_REFERENCED_ROW_2: foreign key target missing
	errLockWait = 1205 // ER_LOCK_WAIT_TIMEOUT
	errDeadlock = 1213 // ER_LOCK_DEADLOCK
)

// translate maps driver errors onto model error kinds.  Unknown errors are
// returned unchanged and end up as internal failures.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case errDupEntry:
			return model.ErrConflict
		case errNoRefRow:
			return model.ErrNotFound
		}
	}
	return err
}

// retryable reports whether InnoDB aborted the transaction over a lock
// conflict, in which case running it again from the start may succeed.
func retryable(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == errDeadlock || me.Number == errLockWait
	}
	return false
}

// likePattern escapes LIKE wildcards in term and wraps it for a substring
// match.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}
