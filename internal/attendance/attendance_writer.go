package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type WriteResult string

const (
	ResultCreated WriteResult = "created"
	ResultSkipped WriteResult = "skipped"
)

//go:generate mockgen -source=attendance_writer.go -destination=mock/attendance_writer_mock.go -package=mock
type Writer interface {
	WriteCheckIn(ctx context.Context, row *Attendance) (WriteResult, error)
	WriteCheckOut(ctx context.Context, row *Leave) (WriteResult, error)
	AddLateTime(ctx context.Context, row *LateTime) error
	AddOvertime(ctx context.Context, row *Overtime) error
}

type writer struct {
	db *gorm.DB

	// dedupeSideRecords guards late/overtime rows with an existence check.
	// Off by default: the legacy system appends them on every run.
	dedupeSideRecords bool
}

func NewWriter(db *gorm.DB, dedupeSideRecords bool) Writer {
	return &writer{db: db, dedupeSideRecords: dedupeSideRecords}
}

func (w *writer) WriteCheckIn(ctx context.Context, row *Attendance) (WriteResult, error) {
	var count int64
	err := w.db.WithContext(ctx).
		Model(&Attendance{}).
		Where("employee_id = ?", row.EmployeeID).
		Where("attendance_date = ?", dateOnly(row.AttendanceDate)).
		Count(&count).Error
	if err != nil {
		return "", err
	}
	if count > 0 {
		return ResultSkipped, nil
	}

	if err := w.db.WithContext(ctx).Create(row).Error; err != nil {
		if isUniqueViolation(err) {
			// lost the race against a concurrent run; the row exists, so
			// this is a skip, not a failure
			return ResultSkipped, nil
		}
		return "", err
	}
	return ResultCreated, nil
}

func (w *writer) WriteCheckOut(ctx context.Context, row *Leave) (WriteResult, error) {
	var count int64
	err := w.db.WithContext(ctx).
		Model(&Leave{}).
		Where("employee_id = ?", row.EmployeeID).
		Where("leave_date = ?", dateOnly(row.LeaveDate)).
		Count(&count).Error
	if err != nil {
		return "", err
	}
	if count > 0 {
		return ResultSkipped, nil
	}

	if err := w.db.WithContext(ctx).Create(row).Error; err != nil {
		if isUniqueViolation(err) {
			return ResultSkipped, nil
		}
		return "", err
	}
	return ResultCreated, nil
}

func (w *writer) AddLateTime(ctx context.Context, row *LateTime) error {
	if w.dedupeSideRecords {
		var count int64
		err := w.db.WithContext(ctx).
			Model(&LateTime{}).
			Where("employee_id = ?", row.EmployeeID).
			Where("date = ?", dateOnly(row.Date)).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
	}
	return w.db.WithContext(ctx).Create(row).Error
}

func (w *writer) AddOvertime(ctx context.Context, row *Overtime) error {
	if w.dedupeSideRecords {
		var count int64
		err := w.db.WithContext(ctx).
			Model(&Overtime{}).
			Where("employee_id = ?", row.EmployeeID).
			Where("date = ?", dateOnly(row.Date)).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
	}
	return w.db.WithContext(ctx).Create(row).Error
}

func dateOnly(t time.Time) string {
	return t.Format("2006-01-02")
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
