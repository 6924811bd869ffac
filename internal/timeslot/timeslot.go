// Package timeslot implements the hour-bucketed agenda grid: parsing
// wall-clock values, grouping sessions by start hour, and planning the
// drag-to-move and drag-to-resize gestures without leaving the display
// window.
package timeslot

import (
	"strconv"
	"strings"
	"time"
)

// The fixed display window. Sessions live between 8:00 and 20:00; a moved
// block keeps its start no later than 19:00 so the one-hour minimum still
// fits before the window closes.
const (
	WindowOpenHour  = 8
	WindowCloseHour = 20
	DefaultHour     = 9

	// MinDuration is the smallest block a resize or degenerate drop may
	// produce.
	MinDuration = 30 * time.Minute

	// ResizeStep is the time granted per ResizeStepPixels of vertical pointer
	// travel in the hour-grid variant.
	ResizeStep        = 30 * time.Minute
	ResizeStepPixels  = 22
	lastMovableHour   = WindowCloseHour - 1
)

// Clock is a wall-clock time of day expressed as minutes since midnight.
type Clock int

// NewClock builds a Clock from an hour and minute.
func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// Hour returns the hour component.
func (c Clock) Hour() int { return int(c) / 60 }

// Minute returns the minute component.
func (c Clock) Minute() int { return int(c) % 60 }

// Duration converts the clock offset to a time.Duration since midnight.
func (c Clock) Duration() time.Duration { return time.Duration(c) * time.Minute }

// String formats the clock as "HH:mm".
func (c Clock) String() string {
	return pad2(c.Hour()) + ":" + pad2(c.Minute())
}

// On places the clock on the given date.
func (c Clock) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour(), c.Minute(), 0, 0, date.Location())
}

// FromTime extracts the Clock from a time.Time.
func FromTime(t time.Time) Clock {
	return NewClock(t.Hour(), t.Minute())
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// ParseClock parses either an "HH:mm" string or the time portion of an ISO
// datetime ("2006-01-02T15:04..."). Malformed input returns ok=false, never
// a panic.
func ParseClock(value string) (Clock, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, false
	}
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[i+1:]
	}
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return NewClock(h, m), true
}

// HourOf returns the integer hour of an "HH:mm" or ISO datetime value.
func HourOf(value string) (int, bool) {
	c, ok := ParseClock(value)
	if !ok {
		return 0, false
	}
	return c.Hour(), true
}

// HourOrDefault is HourOf with the window's default fallback hour.
func HourOrDefault(value string) int {
	if h, ok := HourOf(value); ok {
		return h
	}
	return DefaultHour
}

// WindowHours lists the grid's hour labels, 8 through 20 inclusive.
func WindowHours() []int {
	hours := make([]int, 0, WindowCloseHour-WindowOpenHour+1)
	for h := WindowOpenHour; h <= WindowCloseHour; h++ {
		hours = append(hours, h)
	}
	return hours
}

// Bucket groups items by their start hour for grid layout. Every hour in the
// window gets an entry; items whose start hour falls outside the window are
// dropped. Order within a bucket follows the input order.
func Bucket[T any](items []T, startHour func(T) int) map[int][]T {
	buckets := make(map[int][]T, WindowCloseHour-WindowOpenHour+1)
	for h := WindowOpenHour; h <= WindowCloseHour; h++ {
		buckets[h] = nil
	}
	for _, it := range items {
		h := startHour(it)
		if _, ok := buckets[h]; ok {
			buckets[h] = append(buckets[h], it)
		}
	}
	return buckets
}

// PlanMove computes the new start and end after dropping a block on the hour
// bucket destHour. The block's duration is preserved; the start is clamped to
// [8:00, 19:00] and the end to 20:00. ok is false when the destination equals
// the block's current start hour, in which case no update should be emitted.
func PlanMove(start, end Clock, destHour int) (newStart, newEnd Clock, ok bool) {
	if destHour == start.Hour() {
		return start, end, false
	}
	duration := end - start
	if duration < Clock(60) {
		duration = 60
	}
	h := destHour
	if h < WindowOpenHour {
		h = WindowOpenHour
	}
	if h > lastMovableHour {
		h = lastMovableHour
	}
	newStart = NewClock(h, 0)
	newEnd = newStart + duration
	if max := NewClock(WindowCloseHour, 0); newEnd > max {
		newEnd = max
	}
	if newStart.Hour() == start.Hour() {
		// Clamping landed the block back where it started.
		return start, end, false
	}
	return newStart, newEnd, true
}

// PlanMoveClock computes the new start and end after a minute-granular drop at
// dest, as reported by a calendar widget. Duration is preserved; the start is
// clamped so the block stays inside the window, and a degenerate drop (end at
// or before start) is stretched to the minimum duration.
func PlanMoveClock(start, end, dest Clock) (newStart, newEnd Clock, ok bool) {
	if dest == start {
		return start, end, false
	}
	duration := end - start
	if duration <= 0 {
		duration = Clock(MinDuration / time.Minute)
	}
	newStart = dest
	if min := NewClock(WindowOpenHour, 0); newStart < min {
		newStart = min
	}
	if latest := NewClock(WindowCloseHour, 0) - duration; newStart > latest {
		newStart = latest
	}
	newEnd = newStart + duration
	if newStart == start {
		return start, end, false
	}
	return newStart, newEnd, true
}

// PlanResize converts a vertical pointer displacement into a new end time:
// one half-hour step per ResizeStepPixels of travel, clamped to at least
// MinDuration after the start and no later than the window close.
func PlanResize(start, end Clock, deltaY int) Clock {
	steps := deltaY / ResizeStepPixels
	newEnd := end + Clock(steps)*Clock(ResizeStep/time.Minute)
	if min := start + Clock(MinDuration/time.Minute); newEnd < min {
		newEnd = min
	}
	if max := NewClock(WindowCloseHour, 0); newEnd > max {
		newEnd = max
	}
	return newEnd
}

// ClampExact validates an exact start/end pair: both inside the window,
// end after start, stretching a degenerate end to the minimum duration.
func ClampExact(start, end Clock) (Clock, Clock) {
	if min := NewClock(WindowOpenHour, 0); start < min {
		start = min
	}
	if latest := NewClock(WindowCloseHour, 0) - Clock(MinDuration/time.Minute); start > latest {
		start = latest
	}
	if end <= start {
		end = start + Clock(MinDuration/time.Minute)
	}
	if max := NewClock(WindowCloseHour, 0); end > max {
		end = max
	}
	return start, end
}
