// Package accesslog reads the access-control terminal log table. Unlike the
// legacy device database it is a single fixed table with a processed flag,
// so the adapter supports incremental unprocessed-only fetches and a
// post-sync mark step.
package accesslog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go-punchsync/internal/source"

	"go.uber.org/zap"
)

const (
	AdapterName     = "accesslog"
	defaultTable    = "hik_attendance_logs"
	defaultLookback = 7 * 24 * time.Hour
	queryTimeout    = 30 * time.Second
)

type Config struct {
	Table           string
	Lookback        time.Duration
	UnprocessedOnly bool // skip rows already marked processed
}

type Adapter struct {
	db     *sql.DB
	cfg    Config
	logger *zap.Logger
}

func NewAdapter(db *sql.DB, cfg Config, logger *zap.Logger) *Adapter {
	if cfg.Table == "" {
		cfg.Table = defaultTable
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = defaultLookback
	}
	if logger == nil {
		logger = zap.L()
	}
	return &Adapter{db: db, cfg: cfg, logger: logger.Named("source.accesslog")}
}

func (a *Adapter) Name() string {
	return AdapterName
}

func (a *Adapter) TestConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := a.db.PingContext(ctx); err != nil {
		a.logger.Warn("connection test failed", zap.Error(err))
		return false
	}
	return true
}

func (a *Adapter) FetchEvents(ctx context.Context, since, until time.Time) []source.RawEvent {
	if until.IsZero() {
		until = time.Now()
	}
	if since.IsZero() {
		since = until.Add(-a.cfg.Lookback)
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	q := fmt.Sprintf(`SELECT id, emp_code, person_name, auth_datetime, direction, device_name
		FROM %s
		WHERE auth_datetime > ? AND auth_datetime <= ?`, "`"+a.cfg.Table+"`")
	if a.cfg.UnprocessedOnly {
		q += ` AND (processed IS NULL OR processed = 0)`
	}
	q += ` ORDER BY auth_datetime ASC`

	rows, err := a.db.QueryContext(ctx, q, since, until)
	if err != nil {
		a.logger.Error("access log query failed", zap.Error(err))
		return nil
	}
	defer rows.Close()

	var events []source.RawEvent
	for rows.Next() {
		var (
			id         int64
			empCode    string
			personName sql.NullString
			authTime   time.Time
			direction  sql.NullString
			deviceName sql.NullString
		)
		if err := rows.Scan(&id, &empCode, &personName, &authTime, &direction, &deviceName); err != nil {
			a.logger.Error("access log scan failed", zap.Error(err))
			return nil
		}

		events = append(events, source.RawEvent{
			EmployeeCode: empCode,
			EmployeeName: personName.String,
			Timestamp:    authTime,
			Direction:    source.ParseDirection(direction.String),
			Device:       deviceName.String,
			SourceID:     fmt.Sprintf("%d", id),
		})
	}
	if err := rows.Err(); err != nil {
		a.logger.Error("access log row iteration failed", zap.Error(err))
		return nil
	}
	return events
}

// MarkProcessed flags the given rows so an unprocessed-only fetch will not
// return them again. Safe to call with ids from a previous run; marking is
// idempotent.
func (a *Adapter) MarkProcessed(ctx context.Context, sourceIDs []string) error {
	if len(sourceIDs) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(sourceIDs)), ",")
	q := fmt.Sprintf("UPDATE %s SET processed = 1 WHERE id IN (%s)",
		"`"+a.cfg.Table+"`", placeholders)

	args := make([]any, len(sourceIDs))
	for i, id := range sourceIDs {
		args[i] = id
	}

	_, err := a.db.ExecContext(ctx, q, args...)
	return err
}
