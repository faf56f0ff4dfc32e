package deadline

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// Calculator computes per-status SLA deadlines. It is pure: every method is
// a function of its inputs and the injected default table.
type Calculator struct {
	defaultDays map[types.ObligationStatus]int
}

// DefaultSLADays is the global fallback SLA table in days per status.
// Terminal statuses carry no budget.
var DefaultSLADays = map[types.ObligationStatus]int{
	types.StatusNotStarted:                5,
	types.StatusInProgress:                30,
	types.StatusLate:                      10,
	types.StatusPendingAreaApproval:       5,
	types.StatusPreAnalysis:               3,
	types.StatusTechnicalAreaAnalysis:     10,
	types.StatusRegulatoryAnalysis:        10,
	types.StatusManagerRegulatoryAnalysis: 5,
	types.StatusApproval:                  5,
	types.StatusChancellory:               3,
	types.StatusBoardSignature:            5,
	types.StatusRegulatoryValidation:      10,
}

// New creates a calculator with the given per-status default days,
// falling back to DefaultSLADays when nil.
func New(defaultDays map[types.ObligationStatus]int) *Calculator {
	if defaultDays == nil {
		defaultDays = DefaultSLADays
	}
	return &Calculator{defaultDays: defaultDays}
}

// Compute returns the SLA duration in hours for the status. Exceptional
// overrides are taken verbatim in hours; otherwise the theme's
// day-granularity SLA applies, falling back to the global default table.
func (c *Calculator) Compute(status types.ObligationStatus, theme *model.Theme, overrides map[types.ObligationStatus]int) int {
	if overrides != nil {
		if hours, ok := overrides[status]; ok {
			return hours
		}
	}

	days := c.defaultDays[status]
	if theme != nil {
		if d, ok := theme.SLADays[status]; ok {
			days = d
		}
	}
	return days * 24
}

// ComputeFor resolves the SLA duration for an obligation in the given
// status, honoring its exceptional flag.
func (c *Calculator) ComputeFor(o *model.Obligation, theme *model.Theme, status types.ObligationStatus) int {
	var overrides map[types.ObligationStatus]int
	if o.Exceptional {
		overrides = o.DeadlineOverrides
	}
	return c.Compute(status, theme, overrides)
}

// NextLimitDate returns the limit date for an obligation entering the
// status at the given instant.
func (c *Calculator) NextLimitDate(o *model.Obligation, theme *model.Theme, status types.ObligationStatus, now time.Time) time.Time {
	hours := c.ComputeFor(o, theme, status)
	return now.Add(time.Duration(hours) * time.Hour)
}

// Overdue reports whether the obligation has blown its limit date. Terminal
// obligations are never overdue.
func Overdue(o *model.Obligation, now time.Time) bool {
	if o.Status.IsTerminal() {
		return false
	}
	return now.After(o.LimitDate)
}

// FormatHours renders a duration in hours as the day-and-hour display form
// used by the UI, e.g. "3d" or "3d 6h" or "6h".
func FormatHours(hours int) string {
	days := hours / 24
	rest := hours % 24
	switch {
	case days == 0:
		return fmt.Sprintf("%dh", rest)
	case rest == 0:
		return fmt.Sprintf("%dd", days)
	default:
		return fmt.Sprintf("%dd %dh", days, rest)
	}
}

// ParseHours parses the day-and-hour display form back into hours.
// FormatHours and ParseHours round-trip exactly.
func ParseHours(s string) (int, error) {
	total := 0
	for _, part := range strings.Fields(s) {
		switch {
		case strings.HasSuffix(part, "d"):
			days, err := strconv.Atoi(strings.TrimSuffix(part, "d"))
			if err != nil {
				return 0, goerr.Wrap(err, "invalid day component", goerr.V("input", s))
			}
			total += days * 24
		case strings.HasSuffix(part, "h"):
			hours, err := strconv.Atoi(strings.TrimSuffix(part, "h"))
			if err != nil {
				return 0, goerr.Wrap(err, "invalid hour component", goerr.V("input", s))
			}
			total += hours
		default:
			return 0, goerr.New("invalid duration component", goerr.V("component", part), goerr.V("input", s))
		}
	}
	return total, nil
}
