// Package grid maps wall-clock times onto the day view's discretized grid.
// The grid divides the business-hour window into fixed slots (15 minutes by
// default) and numbers rows from 1 at the top. All functions are pure; the
// layout engine and the appointment form both build on them.
package grid

import (
	"fmt"
	"time"
)

// Config describes the business-hour grid. StartHour is inclusive, EndHour is
// exclusive: with the defaults an appointment may start at 07:00 but not at
// 21:00. SlotMinutes is the height of one grid row in minutes.
type Config struct {
	StartHour   int // first hour shown on the grid (inclusive)
	EndHour     int // hour the grid ends at (exclusive)
	SlotMinutes int // minutes per grid row
}

// Default is the grid the salon product ships with: 07:00-21:00 in
// 15-minute rows.
var Default = Config{StartHour: 7, EndHour: 21, SlotMinutes: 15}

// SlotsPerHour returns how many rows one hour occupies.
func (c Config) SlotsPerHour() int {
	return 60 / c.SlotMinutes
}

// Rows returns the total number of rows on the grid.
func (c Config) Rows() int {
	return (c.EndHour - c.StartHour) * c.SlotsPerHour()
}

// InWindow reports whether an appointment starting at the given hour falls
// inside the business-hour window.
func (c Config) InWindow(hour int) bool {
	return hour >= c.StartHour && hour < c.EndHour
}

// RowForTime converts a wall-clock time into a 1-based grid row. The second
// return value is false when the hour lies outside the business-hour window;
// callers skip such appointments rather than treating them as errors.
func (c Config) RowForTime(hour, minute int) (int, bool) {
	if !c.InWindow(hour) {
		return 0, false
	}
	return (hour-c.StartHour)*c.SlotsPerHour() + minute/c.SlotMinutes + 1, true
}

// SpanForDuration converts an appointment's duration into a row span,
// rounding partial slots up. Callers guarantee end > start; if that contract
// is violated the function degrades to the minimum span of 1 instead of
// producing a non-positive span.
func (c Config) SpanForDuration(start, end time.Time) int {
	mins := int(end.Sub(start).Minutes())
	span := (mins + c.SlotMinutes - 1) / c.SlotMinutes
	if span < 1 {
		span = 1
	}
	return span
}

// TimeOptions enumerates every slot start inside the business-hour window as
// HH:MM strings. The appointment form renders these as its start/end time
// choices.
func (c Config) TimeOptions() []string {
	opts := make([]string, 0, c.Rows())
	for hour := c.StartHour; hour < c.EndHour; hour++ {
		for minute := 0; minute < 60; minute += c.SlotMinutes {
			opts = append(opts, fmt.Sprintf("%02d:%02d", hour, minute))
		}
	}
	return opts
}

// HourLabels returns the hour marks of the window ("07:00" ... "20:00"),
// one per displayed hour line.
func (c Config) HourLabels() []string {
	labels := make([]string, 0, c.EndHour-c.StartHour)
	for hour := c.StartHour; hour < c.EndHour; hour++ {
		labels = append(labels, fmt.Sprintf("%02d:00", hour))
	}
	return labels
}
