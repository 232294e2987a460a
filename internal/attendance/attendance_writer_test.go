package attendance

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(errWrapped{&pgconn.PgError{Code: "23505"}}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("duplicate key value")))
	assert.False(t, isUniqueViolation(nil))
}

type errWrapped struct{ err error }

func (e errWrapped) Error() string { return e.err.Error() }
func (e errWrapped) Unwrap() error { return e.err }

func TestDateOnly(t *testing.T) {
	ts := time.Date(2025, 3, 1, 18, 20, 0, 0, time.Local)
	assert.Equal(t, "2025-03-01", dateOnly(ts))
}
