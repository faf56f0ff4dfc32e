package model

import (
	"time"

	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// Theme groups obligations and carries their default per-status SLA budget
// in days. Statuses without an entry fall back to the global default table.
type Theme struct {
	ID        types.ThemeID
	Name      string
	SLADays   map[types.ObligationStatus]int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy of the theme
func (t *Theme) Clone() *Theme {
	clone := *t
	if t.SLADays != nil {
		clone.SLADays = make(map[types.ObligationStatus]int, len(t.SLADays))
		for k, v := range t.SLADays {
			clone.SLADays[k] = v
		}
	}
	return &clone
}
