package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"hoctap-backend/internal/services"
)

// Store is the Postgres implementation of services.Store.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

var _ services.Store = (*Store)(nil)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapWriteError converts constraint failures into the typed errors services
// understand. Everything else is returned unchanged.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &services.DuplicateError{Constraint: pgErr.ConstraintName, Err: err}
		case pgForeignKeyViolation:
			return &services.ReferencedError{Constraint: pgErr.ConstraintName, Err: err}
		}
	}
	return err
}

// requireRow reports sql.ErrNoRows when an update or delete touched nothing.
func requireRow(res sql.Result, err error) error {
	if err != nil {
		return mapWriteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
