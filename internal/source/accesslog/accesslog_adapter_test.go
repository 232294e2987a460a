package accesslog

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-punchsync/internal/source"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func ts(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func logRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "emp_code", "person_name", "auth_datetime", "direction", "device_name"})
}

func TestAdapter_FetchEvents(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	a := NewAdapter(db, Config{}, nil)

	mock.ExpectQuery("FROM `hik_attendance_logs`").
		WillReturnRows(logRows().
			AddRow(int64(501), "E100", "Budi Santoso", ts("2025-03-01 09:10:00"), "entry", "Gate-1").
			AddRow(int64(502), "E100", "Budi Santoso", ts("2025-03-01 18:20:00"), "exit", "Gate-1"),
		)

	events := a.FetchEvents(context.Background(), ts("2025-03-01 00:00:00"), ts("2025-03-02 00:00:00"))

	if assert.Len(t, events, 2) {
		assert.Equal(t, "E100", events[0].EmployeeCode)
		assert.Equal(t, "501", events[0].SourceID)
		assert.Equal(t, source.DirectionIn, events[0].Direction)
		assert.Equal(t, source.DirectionOut, events[1].Direction)
		assert.Equal(t, "Gate-1", events[0].Device)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_UnprocessedOnlyFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	a := NewAdapter(db, Config{UnprocessedOnly: true}, nil)

	mock.ExpectQuery(`AND \(processed IS NULL OR processed = 0\)`).
		WillReturnRows(logRows())

	events := a.FetchEvents(context.Background(), ts("2025-03-01 00:00:00"), ts("2025-03-02 00:00:00"))
	assert.Empty(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_CustomTableName(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	a := NewAdapter(db, Config{Table: "door_events"}, nil)

	mock.ExpectQuery("FROM `door_events`").
		WillReturnRows(logRows())

	a.FetchEvents(context.Background(), ts("2025-03-01 00:00:00"), ts("2025-03-02 00:00:00"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_QueryErrorYieldsEmptySlice(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	a := NewAdapter(db, Config{}, nil)

	mock.ExpectQuery("FROM `hik_attendance_logs`").
		WillReturnError(errors.New("lock wait timeout"))

	events := a.FetchEvents(context.Background(), ts("2025-03-01 00:00:00"), ts("2025-03-02 00:00:00"))
	assert.Empty(t, events)
}

func TestAdapter_MarkProcessed(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	a := NewAdapter(db, Config{}, nil)

	mock.ExpectExec("UPDATE `hik_attendance_logs` SET processed = 1 WHERE id IN").
		WithArgs("501", "502").
		WillReturnResult(sqlmock.NewResult(0, 2))

	assert.NoError(t, a.MarkProcessed(context.Background(), []string{"501", "502"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_MarkProcessedNoIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	a := NewAdapter(db, Config{}, nil)

	// no ids, no query
	assert.NoError(t, a.MarkProcessed(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
