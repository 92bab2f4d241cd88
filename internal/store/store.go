package store

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrCategoryTaken is returned when a category already belongs to another supplier.
var ErrCategoryTaken = errors.New("category already assigned to another supplier")

func wrap(db *sql.DB) *sqlx.DB {
	return sqlx.NewDb(db, "sqlite")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
