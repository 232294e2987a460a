package attendance

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusOnTime     = "ON_TIME"
	StatusLate       = "LATE"
	StatusEarlyLeave = "EARLY_LEAVE"
)

// Attendance is a derived check-in row. The unique index on
// (employee_id, attendance_date) is the authoritative idempotence guard;
// the writer's existence check is only an optimization.
type Attendance struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID     uuid.UUID `gorm:"column:employee_id;type:uuid;not null;uniqueIndex:idx_attendances_employee_date"`
	AttendanceDate time.Time `gorm:"column:attendance_date;type:date;not null;uniqueIndex:idx_attendances_employee_date"`
	CheckInTime    string    `gorm:"column:check_in_time;type:varchar(8);not null"`
	Status         string    `gorm:"column:status;type:varchar(20);not null;default:ON_TIME"`
	Source         string    `gorm:"column:source;type:varchar(30);not null"`
	CreatedAt      time.Time
}

func (Attendance) TableName() string {
	return "attendances"
}

// Leave is a derived check-out row, same idempotence key shape.
type Leave struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID   uuid.UUID `gorm:"column:employee_id;type:uuid;not null;uniqueIndex:idx_leaves_employee_date"`
	LeaveDate    time.Time `gorm:"column:leave_date;type:date;not null;uniqueIndex:idx_leaves_employee_date"`
	CheckOutTime string    `gorm:"column:check_out_time;type:varchar(8);not null"`
	Status       string    `gorm:"column:status;type:varchar(20);not null;default:ON_TIME"`
	Source       string    `gorm:"column:source;type:varchar(30);not null"`
	CreatedAt    time.Time
}

func (Leave) TableName() string {
	return "leaves"
}

// LateTime rows append on every run that classifies a late check-in unless
// side-record dedupe is enabled on the writer.
type LateTime struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"column:employee_id;type:uuid;not null;index"`
	Date       time.Time `gorm:"column:date;type:date;not null;index"`
	Duration   string    `gorm:"column:duration;type:varchar(8);not null"`
	CreatedAt  time.Time
}

func (LateTime) TableName() string {
	return "late_times"
}

type Overtime struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"column:employee_id;type:uuid;not null;index"`
	Date       time.Time `gorm:"column:date;type:date;not null;index"`
	Duration   string    `gorm:"column:duration;type:varchar(8);not null"`
	CreatedAt  time.Time
}

func (Overtime) TableName() string {
	return "overtimes"
}
