// Package repository implements the storage port on top of MySQL.
// Each entity has its own repo type bound to a *sql.DB; Store in
// repository.go composes them into the full store.Store interface.
// Driver errors are mapped onto the store package sentinels so the
// engine and handlers never see MySQL specifics.
package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/blackhouse/forum/internal/store"
)

// isDuplicate reports whether err is a MySQL duplicate-key failure
// (error 1062) mentioning the given key name.
func isDuplicate(err error, key string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") && strings.Contains(msg, strings.ToLower(key))
}

// notFound converts sql.ErrNoRows into the port sentinel.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
