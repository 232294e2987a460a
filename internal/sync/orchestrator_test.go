package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-punchsync/internal/shared/apperror"
	"go-punchsync/internal/source"

	"github.com/stretchr/testify/assert"
)

type fakeAdapter struct {
	name         string
	reachable    bool
	events       []source.RawEvent
	fetchedSince time.Time
	marked       []string
	markErr      error
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) TestConnection(ctx context.Context) bool { return f.reachable }

func (f *fakeAdapter) FetchEvents(ctx context.Context, since, until time.Time) []source.RawEvent {
	f.fetchedSince = since
	return f.events
}

func (f *fakeAdapter) MarkProcessed(ctx context.Context, ids []string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, ids...)
	return nil
}

type fakeWatermarks struct {
	last     map[string]time.Time
	getErr   error
	advanced map[string]time.Time
}

func newFakeWatermarks() *fakeWatermarks {
	return &fakeWatermarks{
		last:     make(map[string]time.Time),
		advanced: make(map[string]time.Time),
	}
}

func (f *fakeWatermarks) Get(ctx context.Context, sourceName string) (time.Time, error) {
	if f.getErr != nil {
		return time.Time{}, f.getErr
	}
	return f.last[sourceName], nil
}

func (f *fakeWatermarks) Advance(ctx context.Context, sourceName string, ts time.Time) error {
	f.advanced[sourceName] = ts
	f.last[sourceName] = ts
	return nil
}

func (f *fakeWatermarks) List(ctx context.Context) ([]SyncWatermark, error) {
	return nil, nil
}

type fakeLock struct {
	busy               bool
	err                error
	acquired, released int
}

func (f *fakeLock) Acquire(ctx context.Context, sourceName string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.busy {
		return false, nil
	}
	f.acquired++
	return true, nil
}

func (f *fakeLock) Release(ctx context.Context, sourceName string) error {
	f.released++
	return nil
}

type resolverFunc func(ctx context.Context, group EventGroup) (GroupResult, error)

func (f resolverFunc) Resolve(ctx context.Context, group EventGroup) (GroupResult, error) {
	return f(ctx, group)
}

func markedEvent(code, ts, sourceID string) source.RawEvent {
	ev := punch(code, ts)
	ev.SourceID = sourceID
	return ev
}

func TestOrchestrator_ConnectivityFailureStopsBeforeAnyWork(t *testing.T) {
	adapter := &fakeAdapter{name: "accesslog", reachable: false}
	wm := newFakeWatermarks()
	resolved := 0
	resolver := resolverFunc(func(ctx context.Context, g EventGroup) (GroupResult, error) {
		resolved++
		return GroupResult{}, nil
	})

	o := NewOrchestrator(adapter, resolver, wm, nil, nil, nil)
	stats, err := o.Sync(context.Background(), SyncOptions{})

	assert.Error(t, err)
	var appErr *apperror.AppError
	if assert.True(t, errors.As(err, &appErr)) {
		assert.Equal(t, apperror.CodeSourceUnavailable, appErr.Code)
	}
	assert.Zero(t, stats.Fetched)
	assert.Zero(t, resolved)
	assert.Empty(t, wm.advanced)
}

func TestOrchestrator_EndToEndScenario(t *testing.T) {
	// employee E100, punches 09:10 and 18:20 on 2025-03-01, schedule 09:00-18:00
	emp := scheduledEmployee("E100", "09:00:00", "18:00:00")
	writer := newFakeWriter()
	resolver := NewResolver(newFakeEmployees(emp), writer, ResolverConfig{SourceName: "accesslog"}, nil)

	adapter := &fakeAdapter{
		name:      "accesslog",
		reachable: true,
		events: []source.RawEvent{
			markedEvent("E100", "2025-03-01 09:10:00", "501"),
			markedEvent("E100", "2025-03-01 18:20:00", "502"),
		},
	}
	wm := newFakeWatermarks()

	o := NewOrchestrator(adapter, resolver, wm, nil, nil, nil)
	stats, err := o.Sync(context.Background(), SyncOptions{})

	assert.NoError(t, err)
	assert.Equal(t, 2, stats.Fetched)
	assert.Equal(t, 1, stats.Groups)
	assert.Equal(t, 1, stats.CheckIns)
	assert.Equal(t, 1, stats.CheckOuts)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, 0, stats.Errors)
	assert.Equal(t, 1, stats.Lates)
	assert.Equal(t, 1, stats.Overtimes)

	checkIn := writer.checkIns[rowKey(emp.ID, day("2025-03-01"))]
	if assert.NotNil(t, checkIn) {
		assert.Equal(t, "09:10:00", checkIn.CheckInTime)
		assert.Equal(t, "LATE", checkIn.Status)
	}
	checkOut := writer.checkOuts[rowKey(emp.ID, day("2025-03-01"))]
	if assert.NotNil(t, checkOut) {
		assert.Equal(t, "18:20:00", checkOut.CheckOutTime)
		assert.Equal(t, "ON_TIME", checkOut.Status)
	}
	if assert.Len(t, writer.overtimes, 1) {
		assert.Equal(t, "00:20:00", writer.overtimes[0].Duration)
	}

	// events marked processed, watermark moved to the newest event
	assert.ElementsMatch(t, []string{"501", "502"}, adapter.marked)
	assert.Equal(t, day("2025-03-01").Add(18*time.Hour+20*time.Minute), wm.advanced["accesslog"])
}

func TestOrchestrator_RerunIsIdempotentOnRows(t *testing.T) {
	emp := scheduledEmployee("E100", "09:00:00", "18:00:00")
	writer := newFakeWriter()
	resolver := NewResolver(newFakeEmployees(emp), writer, ResolverConfig{SourceName: "accesslog"}, nil)

	adapter := &fakeAdapter{
		name:      "accesslog",
		reachable: true,
		events: []source.RawEvent{
			punch("E100", "2025-03-01 09:10:00"),
			punch("E100", "2025-03-01 18:20:00"),
		},
	}
	o := NewOrchestrator(adapter, resolver, newFakeWatermarks(), nil, nil, nil)

	first, err := o.Sync(context.Background(), SyncOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 1, first.CheckIns)
	assert.Equal(t, 1, first.CheckOuts)

	second, err := o.Sync(context.Background(), SyncOptions{Full: true})
	assert.NoError(t, err)
	assert.Zero(t, second.CheckIns)
	assert.Zero(t, second.CheckOuts)
	assert.Equal(t, 2, second.Skipped)
	assert.Len(t, writer.checkIns, 1)
	assert.Len(t, writer.checkOuts, 1)
}

func TestOrchestrator_GroupFailureIsIsolated(t *testing.T) {
	adapter := &fakeAdapter{
		name:      "devicelog",
		reachable: true,
		events: []source.RawEvent{
			markedEvent("BAD", "2025-03-01 09:00:00", "1"),
			markedEvent("GOOD", "2025-03-01 09:00:00", "2"),
		},
	}
	resolver := resolverFunc(func(ctx context.Context, g EventGroup) (GroupResult, error) {
		if g.EmployeeCode == "BAD" {
			return GroupResult{}, errors.New("boom")
		}
		return GroupResult{CheckInCreated: true}, nil
	})

	o := NewOrchestrator(adapter, resolver, newFakeWatermarks(), nil, nil, nil)
	stats, err := o.Sync(context.Background(), SyncOptions{})

	assert.NoError(t, err)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 1, stats.CheckIns)
	// only the clean group's events are marked; BAD's will be refetched
	assert.Equal(t, []string{"2"}, adapter.marked)
}

func TestOrchestrator_PanicInGroupCountsAsError(t *testing.T) {
	adapter := &fakeAdapter{
		name:      "devicelog",
		reachable: true,
		events:    []source.RawEvent{punch("E1", "2025-03-01 09:00:00")},
	}
	resolver := resolverFunc(func(ctx context.Context, g EventGroup) (GroupResult, error) {
		panic("nil schedule dereference")
	})

	o := NewOrchestrator(adapter, resolver, newFakeWatermarks(), nil, nil, nil)
	stats, err := o.Sync(context.Background(), SyncOptions{})

	assert.NoError(t, err)
	assert.Equal(t, 1, stats.Errors)
}

func TestOrchestrator_SinceResolution(t *testing.T) {
	adapter := &fakeAdapter{name: "accesslog", reachable: true}
	wm := newFakeWatermarks()
	watermark := day("2025-02-15")
	wm.last["accesslog"] = watermark

	resolver := resolverFunc(func(ctx context.Context, g EventGroup) (GroupResult, error) {
		return GroupResult{}, nil
	})
	o := NewOrchestrator(adapter, resolver, wm, nil, nil, nil)

	// watermark wins by default
	_, err := o.Sync(context.Background(), SyncOptions{})
	assert.NoError(t, err)
	assert.Equal(t, watermark, adapter.fetchedSince)

	// explicit override wins over the watermark
	override := day("2025-01-01")
	_, err = o.Sync(context.Background(), SyncOptions{Since: &override})
	assert.NoError(t, err)
	assert.Equal(t, override, adapter.fetchedSince)

	// full ignores the watermark entirely
	_, err = o.Sync(context.Background(), SyncOptions{Full: true})
	assert.NoError(t, err)
	assert.True(t, adapter.fetchedSince.IsZero())
}

func TestOrchestrator_ConcurrentRunRejected(t *testing.T) {
	adapter := &fakeAdapter{name: "accesslog", reachable: true}
	lock := &fakeLock{busy: true}
	resolver := resolverFunc(func(ctx context.Context, g EventGroup) (GroupResult, error) {
		return GroupResult{}, nil
	})

	o := NewOrchestrator(adapter, resolver, newFakeWatermarks(), lock, nil, nil)
	_, err := o.Sync(context.Background(), SyncOptions{})

	assert.ErrorIs(t, err, apperror.ErrSyncInProgress)
}

func TestOrchestrator_LockErrorDoesNotBlockRun(t *testing.T) {
	adapter := &fakeAdapter{name: "accesslog", reachable: true}
	lock := &fakeLock{err: errors.New("redis down")}
	resolver := resolverFunc(func(ctx context.Context, g EventGroup) (GroupResult, error) {
		return GroupResult{}, nil
	})

	o := NewOrchestrator(adapter, resolver, newFakeWatermarks(), lock, nil, nil)
	_, err := o.Sync(context.Background(), SyncOptions{})

	assert.NoError(t, err)
	assert.Zero(t, lock.released)
}
