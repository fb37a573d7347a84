package repository

import (
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/cellkom/poscellkom-sub000/internal/apierror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres error codes that abort a transaction which would succeed if
// sent again.
const (
	pgDeadlockDetected     = "40P01"
	pgSerializationFailure = "40001"
	pgAdminShutdown        = "57P01"
	pgCannotConnectNow     = "57P03"
)

// notFound converts gorm.ErrRecordNotFound into a tagged not_found error so
// handlers can map it without importing gorm.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound(what + " not found")
	}
	return Classify(err)
}

// duplicate converts a unique-constraint violation into a conflict.
// Requires gorm.Config.TranslateError.
func duplicate(err error, msg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apierror.Conflict(msg)
	}
	return Classify(err)
}

// Classify tags driver failures. A deadlock or serialization abort becomes a
// conflict and a lost or refused connection becomes a network error, so both
// are retryable; anything else is returned as is. Tagged errors pass through.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var tagged *apierror.Error
	if errors.As(err, &tagged) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgDeadlockDetected, pgErr.Code == pgSerializationFailure:
			return &apierror.Error{Kind: apierror.KindConflict, Msg: "the write collided with another transaction, try again", Err: err}
		case strings.HasPrefix(pgErr.Code, "08"), pgErr.Code == pgAdminShutdown, pgErr.Code == pgCannotConnectNow:
			return apierror.Network("database is unavailable", err)
		}
		return err
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) || errors.Is(err, driver.ErrBadConn) || pgconn.Timeout(err) {
		return apierror.Network("database is unavailable", err)
	}
	return err
}
