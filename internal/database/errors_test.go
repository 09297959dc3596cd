package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestRetry(t *testing.T) {
	t.Run("retries_serialization_failures", func(t *testing.T) {
		calls := 0
		err := Retry(func() error {
			calls++
			if calls < 3 {
				return &pgconn.PgError{Code: pgerrcode.SerializationFailure}
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives_up_after_last_delay", func(t *testing.T) {
		calls := 0
		err := Retry(func() error {
			calls++
			return &pgconn.PgError{Code: pgerrcode.DeadlockDetected}
		})
		assert.True(t, IsRetryable(err))
		assert.Equal(t, len(retryDelays)+1, calls)
	})

	t.Run("does_not_retry_other_errors", func(t *testing.T) {
		calls := 0
		boom := errors.New("boom")
		err := Retry(func() error {
			calls++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})
}
