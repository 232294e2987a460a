package sync

import (
	"context"
	"errors"
	"testing"

	"go-punchsync/internal/shared/apperror"
	"go-punchsync/internal/source"

	"github.com/stretchr/testify/assert"
)

func newTestRunner(name string, reachable bool, events ...source.RawEvent) *Orchestrator {
	adapter := &fakeAdapter{name: name, reachable: reachable, events: events}
	resolver := resolverFunc(func(ctx context.Context, g EventGroup) (GroupResult, error) {
		return GroupResult{CheckInCreated: true}, nil
	})
	return NewOrchestrator(adapter, resolver, newFakeWatermarks(), nil, nil, nil)
}

func TestService_RunAllSources(t *testing.T) {
	svc := NewService([]*Orchestrator{
		newTestRunner("devicelog", true, punch("E1", "2025-03-01 09:00:00")),
		newTestRunner("accesslog", false),
	}, newFakeWatermarks(), nil)

	results, err := svc.Run(context.Background(), "all", SyncOptions{})
	assert.NoError(t, err)
	if !assert.Len(t, results, 2) {
		t.FailNow()
	}

	assert.Equal(t, "devicelog", results[0].Source)
	assert.NotNil(t, results[0].Stats)
	assert.Equal(t, 1, results[0].Stats.CheckIns)
	assert.False(t, results[0].Failed())

	assert.Equal(t, "accesslog", results[1].Source)
	assert.Nil(t, results[1].Stats)
	if assert.NotNil(t, results[1].Error) {
		assert.Equal(t, apperror.CodeSourceUnavailable, results[1].Error.Code)
	}
	assert.True(t, results[1].Failed())
}

func TestService_RunSingleSource(t *testing.T) {
	svc := NewService([]*Orchestrator{
		newTestRunner("devicelog", true),
		newTestRunner("accesslog", true),
	}, newFakeWatermarks(), nil)

	results, err := svc.Run(context.Background(), "accesslog", SyncOptions{})
	assert.NoError(t, err)
	if assert.Len(t, results, 1) {
		assert.Equal(t, "accesslog", results[0].Source)
	}
}

func TestService_RunUnknownSource(t *testing.T) {
	svc := NewService(nil, newFakeWatermarks(), nil)

	_, err := svc.Run(context.Background(), "tardis", SyncOptions{})
	var appErr *apperror.AppError
	if assert.True(t, errors.As(err, &appErr)) {
		assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
	}
}

func TestService_TestConnections(t *testing.T) {
	svc := NewService([]*Orchestrator{
		newTestRunner("devicelog", true),
		newTestRunner("accesslog", false),
	}, newFakeWatermarks(), nil)

	probes := svc.TestConnections(context.Background())
	assert.Equal(t, map[string]bool{"devicelog": true, "accesslog": false}, probes)
}
