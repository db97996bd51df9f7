package speech

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Window is a daily quiet period during which announcements stay silent.
// A window may cross midnight, such as 21:00 to 07:30.
type Window struct {
	start   int
	end     int
	enabled bool
}

// ParseWindow builds a window from HH:MM boundaries. Two empty strings
// produce a disabled window.
func ParseWindow(start, end string) (Window, error) {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if start == "" && end == "" {
		return Window{}, nil
	}
	if start == "" || end == "" {
		return Window{}, fmt.Errorf("quiet hours need both boundaries, got start=%q end=%q", start, end)
	}

	startMinutes, err := parseClock(start)
	if err != nil {
		return Window{}, fmt.Errorf("quiet start: %w", err)
	}
	endMinutes, err := parseClock(end)
	if err != nil {
		return Window{}, fmt.Errorf("quiet end: %w", err)
	}
	if startMinutes == endMinutes {
		return Window{}, fmt.Errorf("quiet hours cannot start and end at the same time (%s)", start)
	}
	return Window{start: startMinutes, end: endMinutes, enabled: true}, nil
}

// Enabled reports whether the window suppresses anything at all.
func (w Window) Enabled() bool {
	return w.enabled
}

// Contains reports whether t falls inside the quiet period. The start
// minute is inside the window, the end minute is outside.
func (w Window) Contains(t time.Time) bool {
	if !w.enabled {
		return false
	}
	minutes := t.Hour()*60 + t.Minute()
	if w.start < w.end {
		return minutes >= w.start && minutes < w.end
	}
	return minutes >= w.start || minutes < w.end
}

// String renders the window boundaries.
func (w Window) String() string {
	if !w.enabled {
		return "disabled"
	}
	return fmt.Sprintf("%02d:%02d-%02d:%02d", w.start/60, w.start%60, w.end/60, w.end%60)
}

func parseClock(value string) (int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%q is not HH:MM", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%q has an invalid hour", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%q has an invalid minute", value)
	}
	return hour*60 + minute, nil
}
