// Package layout turns a day's unordered appointment list into render-ready
// positioned slots. It owns no state: every call recomputes positions from
// scratch, so a slot can never drift out of sync with its appointment.
package layout

import (
	"sort"

	"github.com/glowpoint/salon-scheduler/internal/grid"
	"github.com/glowpoint/salon-scheduler/internal/model"
)

// PaletteSize is the number of color schemes the rendering surface cycles
// through. Colors are derived from the appointment id so an appointment keeps
// its color across refetches regardless of the order the API returns rows in.
const PaletteSize = 8

// Slot is one appointment positioned on the day grid.
//
// StartRow and RowSpan are 1-based CSS-grid style coordinates produced by the
// grid package; Column is the scheduling lane. Slots are ephemeral and are
// rebuilt on every layout pass.
type Slot struct {
	Appointment model.Appointment
	StartRow    int
	RowSpan     int
	Column      int
	ColorIndex  int
}

// Engine positions appointments for a single day according to a grid config.
type Engine struct {
	Grid grid.Config
}

// New returns an engine over the given grid configuration.
func New(cfg grid.Config) *Engine {
	return &Engine{Grid: cfg}
}

// BuildDay lays out the appointments that belong to the selected date
// (YYYY-MM-DD, UTC). Input order is arbitrary; output is sorted by row then
// column so renders are deterministic.
//
// Appointments starting outside the business-hour window are skipped, not
// errored: they belong to an overflow surface, not to the day grid.
// Overlapping appointments in the same column are laid out as-is; avoiding
// collisions is the scheduler's job, not this engine's.
func (e *Engine) BuildDay(appointments []model.Appointment, date string) []Slot {
	slots := make([]Slot, 0, len(appointments))
	for _, apt := range appointments {
		if date != "" && apt.Date() != date {
			continue
		}
		start := apt.StartTime.UTC()
		row, ok := e.Grid.RowForTime(start.Hour(), start.Minute())
		if !ok {
			continue
		}
		column := apt.ColumnID
		if column < 1 {
			column = 1
		}
		slots = append(slots, Slot{
			Appointment: apt,
			StartRow:    row,
			RowSpan:     e.Grid.SpanForDuration(apt.StartTime, apt.EndTime),
			Column:      column,
			ColorIndex:  ColorIndex(apt.ID),
		})
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].StartRow != slots[j].StartRow {
			return slots[i].StartRow < slots[j].StartRow
		}
		if slots[i].Column != slots[j].Column {
			return slots[i].Column < slots[j].Column
		}
		return slots[i].Appointment.ID < slots[j].Appointment.ID
	})
	return slots
}

// ColorIndex keys the palette off the appointment id rather than the input
// position so that a refetch returning rows in a different order does not
// repaint every slot.
func ColorIndex(id int) int {
	if id < 0 {
		id = -id
	}
	return id % PaletteSize
}
