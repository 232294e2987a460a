package employee

import (
	"time"

	"github.com/google/uuid"
)

type Employee struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code       string    `gorm:"column:code;type:varchar(50);not null;uniqueIndex"`
	DeviceCode *string   `gorm:"column:device_code;type:varchar(50);index"`
	FullName   string    `gorm:"column:full_name;type:varchar(150);not null"`
	Department *string   `gorm:"column:department;type:varchar(100)"`
	Schedule   *Schedule `gorm:"foreignKey:EmployeeID;references:ID"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Employee) TableName() string {
	return "employees"
}

// Schedule holds the expected working window as time-of-day strings
// ("09:00:00"). Absence of a row means the employee has no fixed schedule.
type Schedule struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	TimeIn     string    `gorm:"column:time_in;type:varchar(8);not null"`
	TimeOut    string    `gorm:"column:time_out;type:varchar(8);not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Schedule) TableName() string {
	return "schedules"
}
