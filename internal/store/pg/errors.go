package pg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nextlevelbuilder/beacon/internal/store"
)

// uniqueViolation is the Postgres SQLSTATE for a unique-constraint conflict.
const uniqueViolation = "23505"

// classifyErr maps a raw *sql.DB error into the store package's sentinel
// errors where applicable, leaving other errors wrapped as-is.
func classifyErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return store.ErrConflict
	}
	return err
}
