package sync

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Time-of-day arithmetic is deliberately naive wall-clock math: the legacy
// system subtracts clock times with no calendar awareness, and a punch after
// midnight lands in the next day's group anyway.

// secondsOfDay returns seconds since local midnight.
func secondsOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// parseClock accepts "15:04:05" or "15:04".
func parseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}

	vals := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("invalid clock time %q", s)
		}
		vals[i] = v
	}
	if vals[0] > 23 || vals[1] > 59 || vals[2] > 59 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return vals[0]*3600 + vals[1]*60 + vals[2], nil
}

// formatClock renders seconds-of-day as "15:04:05".
func formatClock(secs int) string {
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}
