package config

import "github.com/glowpoint/salon-scheduler/internal/grid"

// LoadGridConfig builds the business-hour grid from environment variables.
// The defaults match the salon product: 07:00-21:00 in 15-minute slots with
// five scheduling lanes. Values that would produce a degenerate grid fall
// back to the defaults rather than failing startup.
func LoadGridConfig() (grid.Config, int) {
	cfg := grid.Config{
		StartHour:   atoi(getenv("CAL_START_HOUR", "7")),
		EndHour:     atoi(getenv("CAL_END_HOUR", "21")),
		SlotMinutes: atoi(getenv("CAL_SLOT_MINUTES", "15")),
	}
	if cfg.SlotMinutes <= 0 || 60%cfg.SlotMinutes != 0 {
		cfg.SlotMinutes = grid.Default.SlotMinutes
	}
	if cfg.StartHour < 0 || cfg.EndHour > 24 || cfg.EndHour <= cfg.StartHour {
		cfg.StartHour = grid.Default.StartHour
		cfg.EndHour = grid.Default.EndHour
	}

	columns := atoi(getenv("CAL_COLUMNS", "5"))
	if columns < 1 {
		columns = 5
	}
	return cfg, columns
}
