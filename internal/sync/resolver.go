package sync

import (
	"context"
	"errors"
	"sort"

	"go-punchsync/internal/attendance"
	"go-punchsync/internal/employee"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GroupResult is the disposition of one (employee, date) group.
type GroupResult struct {
	CheckInCreated   bool
	CheckOutCreated  bool
	Skipped          int
	Late             bool
	Overtime         bool
	EmployeeNotFound bool
	EmployeeCreated  bool
}

type ResolverConfig struct {
	SourceName string

	// AutoCreateEmployees synthesizes a minimal employee row from the punch
	// data when the code matches nothing. Off, the group is counted as
	// not-found and dropped.
	AutoCreateEmployees bool
}

// Resolver derives at most one check-in and one check-out per group from the
// first and last punch, classifying against the employee's schedule.
type Resolver struct {
	employees employee.Repository
	writer    attendance.Writer
	cfg       ResolverConfig
	logger    *zap.Logger
}

func NewResolver(
	employees employee.Repository,
	writer attendance.Writer,
	cfg ResolverConfig,
	logger *zap.Logger,
) *Resolver {
	if logger == nil {
		logger = zap.L()
	}
	return &Resolver{
		employees: employees,
		writer:    writer,
		cfg:       cfg,
		logger:    logger.Named("sync.resolver"),
	}
}

func (r *Resolver) Resolve(ctx context.Context, group EventGroup) (GroupResult, error) {
	var res GroupResult

	if len(group.Events) == 0 {
		return res, nil
	}

	emp, err := r.resolveEmployee(ctx, group, &res)
	if err != nil {
		return res, err
	}
	if emp == nil {
		res.EmployeeNotFound = true
		r.logger.Warn("employee not found for punch group",
			zap.String("employee_code", group.EmployeeCode),
			zap.String("date", group.Date.Format("2006-01-02")),
		)
		return res, nil
	}

	// callers are expected to pass sorted groups, but do not rely on it
	sorted := group.Events
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	first := sorted[0]
	last := sorted[len(sorted)-1]
	firstSecs := secondsOfDay(first.Timestamp)
	lastSecs := secondsOfDay(last.Timestamp)

	if err := r.processCheckIn(ctx, emp, group, firstSecs, &res); err != nil {
		return res, err
	}

	// a lone punch, or duplicates at the identical clock time, is ambiguous:
	// treat it as check-in only
	if len(sorted) > 1 && firstSecs != lastSecs {
		if err := r.processCheckOut(ctx, emp, group, lastSecs, &res); err != nil {
			return res, err
		}
	}

	return res, nil
}

// resolveEmployee returns nil, nil when the code matches nothing and
// auto-create is disabled.
func (r *Resolver) resolveEmployee(ctx context.Context, group EventGroup, res *GroupResult) (*employee.Employee, error) {
	emp, err := r.employees.FindByCode(ctx, group.EmployeeCode)
	if err == nil {
		return emp, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if !r.cfg.AutoCreateEmployees {
		return nil, nil
	}

	name := group.EmployeeCode
	for _, ev := range group.Events {
		if ev.EmployeeName != "" {
			name = ev.EmployeeName
			break
		}
	}

	created := &employee.Employee{
		ID:       uuid.New(),
		Code:     group.EmployeeCode,
		FullName: name,
	}
	if err := r.employees.Create(ctx, created); err != nil {
		return nil, err
	}

	res.EmployeeCreated = true
	r.logger.Info("auto-created employee from punch data",
		zap.String("employee_code", created.Code),
		zap.String("full_name", created.FullName),
	)
	return created, nil
}

func (r *Resolver) processCheckIn(ctx context.Context, emp *employee.Employee, group EventGroup, firstSecs int, res *GroupResult) error {
	status := attendance.StatusOnTime
	lateSecs := 0

	if emp.Schedule != nil {
		inSecs, err := parseClock(emp.Schedule.TimeIn)
		if err != nil {
			return err
		}
		if firstSecs > inSecs {
			status = attendance.StatusLate
			lateSecs = firstSecs - inSecs
		}
	}

	result, err := r.writer.WriteCheckIn(ctx, &attendance.Attendance{
		ID:             uuid.New(),
		EmployeeID:     emp.ID,
		AttendanceDate: group.Date,
		CheckInTime:    formatClock(firstSecs),
		Status:         status,
		Source:         r.cfg.SourceName,
	})
	if err != nil {
		return err
	}

	switch result {
	case attendance.ResultCreated:
		res.CheckInCreated = true
	case attendance.ResultSkipped:
		res.Skipped++
	}

	// side record follows classification, not row creation; without the
	// dedupe option it appends on every overlapping run
	if lateSecs > 0 {
		if err := r.writer.AddLateTime(ctx, &attendance.LateTime{
			ID:         uuid.New(),
			EmployeeID: emp.ID,
			Date:       group.Date,
			Duration:   formatClock(lateSecs),
		}); err != nil {
			return err
		}
		res.Late = true
	}

	return nil
}

func (r *Resolver) processCheckOut(ctx context.Context, emp *employee.Employee, group EventGroup, lastSecs int, res *GroupResult) error {
	status := attendance.StatusOnTime
	overtimeSecs := 0

	if emp.Schedule != nil {
		outSecs, err := parseClock(emp.Schedule.TimeOut)
		if err != nil {
			return err
		}
		if lastSecs >= outSecs {
			overtimeSecs = lastSecs - outSecs
		} else {
			status = attendance.StatusEarlyLeave
		}
	}

	result, err := r.writer.WriteCheckOut(ctx, &attendance.Leave{
		ID:           uuid.New(),
		EmployeeID:   emp.ID,
		LeaveDate:    group.Date,
		CheckOutTime: formatClock(lastSecs),
		Status:       status,
		Source:       r.cfg.SourceName,
	})
	if err != nil {
		return err
	}

	switch result {
	case attendance.ResultCreated:
		res.CheckOutCreated = true
	case attendance.ResultSkipped:
		res.Skipped++
	}

	if overtimeSecs > 0 {
		if err := r.writer.AddOvertime(ctx, &attendance.Overtime{
			ID:         uuid.New(),
			EmployeeID: emp.ID,
			Date:       group.Date,
			Duration:   formatClock(overtimeSecs),
		}); err != nil {
			return err
		}
		res.Overtime = true
	}

	return nil
}
