package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-punchsync/internal/events"
	"go-punchsync/internal/messaging/kafka"
	"go-punchsync/internal/shared/apperror"
	"go-punchsync/internal/source"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SyncOptions struct {
	Since *time.Time // explicit override, wins over the watermark
	Full  bool       // ignore the watermark, use the adapter's full lookback
}

type GroupResolver interface {
	Resolve(ctx context.Context, group EventGroup) (GroupResult, error)
}

type Locker interface {
	Acquire(ctx context.Context, sourceName string) (bool, error)
	Release(ctx context.Context, sourceName string) error
}

// Orchestrator runs fetch → group → resolve → write for one source. It fails
// fast on connectivity before any writes; after that every failure is
// isolated to its group and reported through the stats.
type Orchestrator struct {
	adapter    source.Adapter
	resolver   GroupResolver
	watermarks WatermarkRepository
	lock       Locker                 // optional
	outbox     kafka.OutboxRepository // optional
	logger     *zap.Logger
	now        func() time.Time
}

func NewOrchestrator(
	adapter source.Adapter,
	resolver GroupResolver,
	watermarks WatermarkRepository,
	lock Locker,
	outbox kafka.OutboxRepository,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.L()
	}
	return &Orchestrator{
		adapter:    adapter,
		resolver:   resolver,
		watermarks: watermarks,
		lock:       lock,
		outbox:     outbox,
		logger:     logger.Named("sync.orchestrator").With(zap.String("source", adapter.Name())),
		now:        time.Now,
	}
}

func (o *Orchestrator) Source() string {
	return o.adapter.Name()
}

func (o *Orchestrator) TestConnection(ctx context.Context) bool {
	return o.adapter.TestConnection(ctx)
}

func (o *Orchestrator) Sync(ctx context.Context, opts SyncOptions) (SyncStats, error) {
	stats := SyncStats{Source: o.adapter.Name()}
	started := o.now()

	if o.lock != nil {
		ok, err := o.lock.Acquire(ctx, o.adapter.Name())
		if err != nil {
			// lock service trouble must not block syncing; the unique
			// indexes still protect the rows
			o.logger.Warn("run lock unavailable, continuing without it", zap.Error(err))
		} else if !ok {
			return stats, apperror.ErrSyncInProgress
		} else {
			defer func() {
				if err := o.lock.Release(context.WithoutCancel(ctx), o.adapter.Name()); err != nil {
					o.logger.Warn("run lock release failed", zap.Error(err))
				}
			}()
		}
	}

	if !o.adapter.TestConnection(ctx) {
		return stats, apperror.Wrap(
			fmt.Errorf("source %s unreachable", o.adapter.Name()),
			apperror.CodeSourceUnavailable,
			"Attendance source is unreachable",
			apperror.ErrSourceUnavailable.HTTPStatus,
		)
	}

	since := o.effectiveSince(ctx, opts)
	until := o.now()

	raw := o.adapter.FetchEvents(ctx, since, until)
	stats.Fetched = len(raw)

	groups := GroupEvents(raw)
	stats.Groups = len(groups)

	var processedIDs []string
	for _, group := range groups {
		res, err := o.resolveGroup(ctx, group)
		if err != nil {
			stats.Errors++
			o.logger.Error("group processing failed",
				zap.String("employee_code", group.EmployeeCode),
				zap.String("date", group.Date.Format("2006-01-02")),
				zap.Error(err),
			)
			continue
		}
		stats.add(res)

		for _, ev := range group.Events {
			if ev.SourceID != "" {
				processedIDs = append(processedIDs, ev.SourceID)
			}
		}
	}

	if marker, ok := o.adapter.(source.Marker); ok && len(processedIDs) > 0 {
		if err := marker.MarkProcessed(ctx, processedIDs); err != nil {
			// refetching unmarked rows is safe, the writer is idempotent
			o.logger.Error("mark processed failed", zap.Int("count", len(processedIDs)), zap.Error(err))
		}
	}

	o.advanceWatermark(ctx, raw)

	stats.DurationMs = o.now().Sub(started).Milliseconds()
	o.publishCompleted(ctx, stats)

	o.logger.Info("sync run finished",
		zap.Int("fetched", stats.Fetched),
		zap.Int("check_ins", stats.CheckIns),
		zap.Int("check_outs", stats.CheckOuts),
		zap.Int("skipped", stats.Skipped),
		zap.Int("errors", stats.Errors),
		zap.Int("employees_not_found", stats.EmployeesNotFound),
		zap.Int64("duration_ms", stats.DurationMs),
	)
	return stats, nil
}

// resolveGroup shields the run from a panicking group: the contract is that
// nothing raises past the orchestrator boundary.
func (o *Orchestrator) resolveGroup(ctx context.Context, group EventGroup) (res GroupResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic resolving group: %v", r)
		}
	}()
	return o.resolver.Resolve(ctx, group)
}

// effectiveSince picks explicit override > watermark > zero (which the
// adapter turns into its default lookback).
func (o *Orchestrator) effectiveSince(ctx context.Context, opts SyncOptions) time.Time {
	if opts.Since != nil {
		return *opts.Since
	}
	if opts.Full {
		return time.Time{}
	}

	wm, err := o.watermarks.Get(ctx, o.adapter.Name())
	if err != nil {
		o.logger.Warn("watermark read failed, falling back to default window", zap.Error(err))
		return time.Time{}
	}
	return wm
}

func (o *Orchestrator) advanceWatermark(ctx context.Context, evs []source.RawEvent) {
	var max time.Time
	for _, ev := range evs {
		if ev.Timestamp.After(max) {
			max = ev.Timestamp
		}
	}
	if max.IsZero() {
		return
	}

	if err := o.watermarks.Advance(ctx, o.adapter.Name(), max); err != nil {
		o.logger.Error("watermark advance failed", zap.Error(err))
	}
}

func (o *Orchestrator) publishCompleted(ctx context.Context, stats SyncStats) {
	if o.outbox == nil {
		return
	}

	payload, err := json.Marshal(events.SyncCompleted{
		Source:            stats.Source,
		Fetched:           stats.Fetched,
		CheckIns:          stats.CheckIns,
		CheckOuts:         stats.CheckOuts,
		Skipped:           stats.Skipped,
		Errors:            stats.Errors,
		EmployeesNotFound: stats.EmployeesNotFound,
		EmployeesCreated:  stats.EmployeesCreated,
		DurationMs:        stats.DurationMs,
		CompletedAt:       o.now().UTC(),
	})
	if err != nil {
		o.logger.Error("marshal sync.completed payload failed", zap.Error(err))
		return
	}

	err = o.outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		AggregateType: "sync_run",
		AggregateID:   stats.Source,
		EventType:     events.TypeSyncCompleted,
		Topic:         events.TopicAttendanceSync,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
	if err != nil {
		// stats already stand on their own; losing the notification only
		// delays downstream consumers until the next run
		o.logger.Error("record sync.completed outbox event failed", zap.Error(err))
	}
}
