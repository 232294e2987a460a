package events

import "time"

const (
	TopicAttendanceSync = "attendance.sync"
	TypeSyncCompleted   = "sync.completed"
)

// SyncCompleted is published after every finished sync run so downstream
// consumers (reporting, notifications) can react without polling the tables.
type SyncCompleted struct {
	Source            string    `json:"source"`
	Fetched           int       `json:"fetched"`
	CheckIns          int       `json:"check_ins"`
	CheckOuts         int       `json:"check_outs"`
	Skipped           int       `json:"skipped"`
	Errors            int       `json:"errors"`
	EmployeesNotFound int       `json:"employees_not_found"`
	EmployeesCreated  int       `json:"employees_created"`
	DurationMs        int64     `json:"duration_ms"`
	CompletedAt       time.Time `json:"completed_at"`
}
