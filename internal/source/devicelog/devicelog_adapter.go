// Package devicelog reads the legacy fingerprint-device database. The vendor
// software rotates raw punches into one table per month
// (DeviceLogs_{month}_{year}), so a fetch window can span several tables and
// a table may simply not exist yet for the current month.
package devicelog

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"go-punchsync/internal/source"

	"go.uber.org/zap"
)

const (
	AdapterName     = "devicelog"
	defaultLookback = 30 * 24 * time.Hour
	defaultEmpTable = "Employees"
	queryTimeout    = 30 * time.Second
)

// TableNamer maps a point in time to the monthly log table holding it.
// Injectable so a fixed-schema deployment can point every month at one table.
type TableNamer func(t time.Time) string

func MonthlyTable(t time.Time) string {
	return fmt.Sprintf("DeviceLogs_%d_%d", int(t.Month()), t.Year())
}

type Config struct {
	EmployeesTable string        // reference table joined on the device code
	Lookback       time.Duration // window when no watermark exists yet
	Tables         TableNamer
}

type Adapter struct {
	db     *sql.DB
	cfg    Config
	logger *zap.Logger
}

func NewAdapter(db *sql.DB, cfg Config, logger *zap.Logger) *Adapter {
	if cfg.EmployeesTable == "" {
		cfg.EmployeesTable = defaultEmpTable
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = defaultLookback
	}
	if cfg.Tables == nil {
		cfg.Tables = MonthlyTable
	}
	if logger == nil {
		logger = zap.L()
	}
	return &Adapter{db: db, cfg: cfg, logger: logger.Named("source.devicelog")}
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

	var events []source.RawEvent
	for _, month := range monthsBetween(since, until) {
		table := a.cfg.Tables(month)

		exists, err := a.tableExists(ctx, table)
		if err != nil {
			a.logger.Error("table existence probe failed",
				zap.String("table", table), zap.Error(err))
			return nil
		}
		if !exists {
			// the vendor software has not rotated this month in yet
			a.logger.Debug("monthly table missing, treating as empty",
				zap.String("table", table))
			continue
		}

		rows, err := a.fetchFromTable(ctx, table, since, until)
		if err != nil {
			a.logger.Error("device log query failed",
				zap.String("table", table), zap.Error(err))
			return nil
		}
		events = append(events, rows...)
	}

	return events
}

func (a *Adapter) tableExists(ctx context.Context, table string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const q = `SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_name = ?`

	var count int
	if err := a.db.QueryRowContext(ctx, q, table).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (a *Adapter) fetchFromTable(ctx context.Context, table string, since, until time.Time) ([]source.RawEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// table names come from the TableNamer, never from user input
	q := fmt.Sprintf(`SELECT d.LogDate, d.UserId, d.DeviceId, e.EmployeeCode, e.EmployeeName
		FROM %s d
		LEFT JOIN %s e ON d.UserId = e.EmployeeCodeInDevice
		WHERE d.LogDate > ? AND d.LogDate <= ?
		ORDER BY d.LogDate ASC`, quoteIdent(table), quoteIdent(a.cfg.EmployeesTable))

	rows, err := a.db.QueryContext(ctx, q, since, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []source.RawEvent
	for rows.Next() {
		var (
			logDate  time.Time
			userID   int64
			deviceID sql.NullString
			empCode  sql.NullString
			empName  sql.NullString
		)
		if err := rows.Scan(&logDate, &userID, &deviceID, &empCode, &empName); err != nil {
			return nil, err
		}

		code := empCode.String
		if code == "" {
			// fall back to the raw device code; employee lookup matches it
			// against the legacy device_code column
			code = strconv.FormatInt(userID, 10)
		}

		events = append(events, source.RawEvent{
			EmployeeCode: code,
			EmployeeName: empName.String,
			Timestamp:    logDate,
			Direction:    source.DirectionUnknown,
			Device:       deviceID.String,
		})
	}
	return events, rows.Err()
}

// monthsBetween lists the first day of every month the window touches.
func monthsBetween(from, to time.Time) []time.Time {
	var months []time.Time
	cur := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, from.Location())
	end := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, to.Location())
	for !cur.After(end) {
		months = append(months, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}

func quoteIdent(name string) string {
	return "`" + name + "`"
}
