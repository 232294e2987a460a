// Package source defines the contract between the sync pipeline and the
// external punch databases. Adapters are read-only over vendor schemas the
// devices write to out-of-band; they never fail the caller — connectivity
// shows up as a false probe and query errors as an empty event slice.
package source

import (
	"context"
	"strings"
	"time"
)

type Direction string

const (
	DirectionIn      Direction = "in"
	DirectionOut     Direction = "out"
	DirectionUnknown Direction = "unknown"
)

// ParseDirection normalizes the vendor direction vocabulary (in/entry/0,
// out/exit/1). The resolver treats direction as informational only.
func ParseDirection(raw string) Direction {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "in", "entry", "0":
		return DirectionIn
	case "out", "exit", "1":
		return DirectionOut
	default:
		return DirectionUnknown
	}
}

// RawEvent is a single punch as produced by an adapter. Immutable once built.
type RawEvent struct {
	EmployeeCode string
	EmployeeName string // optional, feeds employee auto-create
	Timestamp    time.Time
	Direction    Direction
	Device       string
	SourceID     string // opaque row id for mark-as-processed, empty when unsupported
}

type Adapter interface {
	Name() string

	// TestConnection reports reachability. It logs and returns false on any
	// failure instead of propagating an error.
	TestConnection(ctx context.Context) bool

	// FetchEvents returns events strictly after since and at/before until,
	// ascending by timestamp. A zero since means the adapter's default
	// lookback window. Query errors are logged and yield an empty slice.
	FetchEvents(ctx context.Context, since, until time.Time) []RawEvent
}

// Marker is implemented by adapters whose source rows carry a processed flag.
type Marker interface {
	MarkProcessed(ctx context.Context, sourceIDs []string) error
}
