package database

import (
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// IsUniqueViolation reports whether err is a unique-constraint violation.
// GORM translates it for both drivers when TranslateError is on; the raw
// Postgres code is checked as well for errors that bypass the translator.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// IsRetryable reports whether a transaction failed only because it lost a
// race with a concurrent one and may simply be run again.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
}

var retryDelays = []time.Duration{20 * time.Millisecond, 80 * time.Millisecond, 200 * time.Millisecond}

// Retry runs fn, running it again after a short pause while it fails with a
// retryable error. Any other error, or the last retryable one, is returned.
// Only wrap whole transactions: a retried insert outside one could duplicate it.
func Retry(fn func() error) error {
	var err error
	for i := 0; ; i++ {
		err = fn()
		if err == nil || !IsRetryable(err) || i >= len(retryDelays) {
			return err
		}
		time.Sleep(retryDelays[i])
	}
}
