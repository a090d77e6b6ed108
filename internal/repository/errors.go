package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"hostelbooking/internal/pkg/apperror"
)

var (
	ErrNotFound    = apperror.New(apperror.KindNotFound, "NOT_FOUND", "record not found")
	ErrLockTimeout = apperror.New(apperror.KindConcurrency, "LOCK_TIMEOUT", "could not acquire row lock in time, retry later")
	ErrDuplicate   = apperror.New(apperror.KindConflict, "DUPLICATE", "duplicate record")
)

const (
	pgUniqueViolation   = "23505"
	pgLockNotAvailable  = "55P03"
	pgDeadlockDetected  = "40P01"
	pgSerializationFail = "40001"

	// ActiveBookingIndex enforces one pending/confirmed/checked_in booking per student.
	ActiveBookingIndex = "idx_bookings_one_active_per_student"
)

// translate maps driver errors onto the repository's sentinel errors.
// Errors that already carry a kind pass through untouched.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgDeadlockDetected, pgSerializationFail:
			return apperror.Wrapf(ErrLockTimeout, "%s", pgErr.Message)
		case pgUniqueViolation:
			return apperror.Wrapf(ErrDuplicate, "%s", pgErr.ConstraintName)
		}
		return err
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Wrapf(ErrDuplicate, "%s", err.Error())
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "sqlite_busy"):
		return apperror.Wrapf(ErrLockTimeout, "%s", err.Error())
	case strings.Contains(msg, "unique constraint"), strings.Contains(msg, "unique failed"), strings.Contains(msg, "duplicate"):
		return apperror.Wrapf(ErrDuplicate, "%s", err.Error())
	}
	return err
}

// IsDuplicateOf reports whether err is a unique violation mentioning the
// given index or column.
func IsDuplicateOf(err error, name string) bool {
	return errors.Is(err, ErrDuplicate) && strings.Contains(err.Error(), name)
}
