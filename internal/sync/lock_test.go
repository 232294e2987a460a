package sync

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestRunLock_AcquireAndRelease(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	lock := NewRunLock(rdb, time.Minute)
	ctx := context.Background()

	mock.Regexp().ExpectSetNX("punchsync:lock:accesslog", `.*`, time.Minute).SetVal(true)
	ok, err := lock.Acquire(ctx, "accesslog")
	assert.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectDel("punchsync:lock:accesslog").SetVal(1)
	assert.NoError(t, lock.Release(ctx, "accesslog"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunLock_Busy(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	lock := NewRunLock(rdb, time.Minute)

	mock.Regexp().ExpectSetNX("punchsync:lock:devicelog", `.*`, time.Minute).SetVal(false)
	ok, err := lock.Acquire(context.Background(), "devicelog")
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}
