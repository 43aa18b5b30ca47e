// file: database/errors.go
package database

import (
	"errors"

	"github.com/alpnix/HackAtDavidson/apperrors"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	mysqlDuplicateEntry   = 1062
	mysqlNoReferencedRow  = 1452
)

// IsUniqueViolation reports whether err is a unique constraint failure from any supported driver.
func IsUniqueViolation(err error) bool {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == pgUniqueViolation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func isForeignKeyViolation(err error) bool {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == pgForeignKeyViolation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlNoReferencedRow
	}
	return errors.Is(err, gorm.ErrForeignKeyViolated)
}

// MapError turns a gorm/driver error into an AppError. what names the resource
// for not-found and duplicate messages. A nil err maps to nil.
func MapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NewNotFoundError(what + " not found")
	case IsUniqueViolation(err):
		return apperrors.NewDuplicateError(what+" already exists", err)
	case isForeignKeyViolation(err):
		return apperrors.NewValidationError("referenced "+what+" does not exist", nil)
	default:
		return apperrors.NewDatabaseError(err)
	}
}
