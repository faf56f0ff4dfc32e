package deadline_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/types"
	"github.com/obligo-lab/obligo/pkg/service/deadline"
)

func TestCompute(t *testing.T) {
	c := deadline.New(nil)

	t.Run("global default applies without theme", func(t *testing.T) {
		hours := c.Compute(types.StatusInProgress, nil, nil)
		gt.Value(t, hours).Equal(30 * 24)
	})

	t.Run("theme SLA overrides the default", func(t *testing.T) {
		theme := &model.Theme{
			ID: "t1",
			SLADays: map[types.ObligationStatus]int{
				types.StatusInProgress: 10,
			},
		}
		gt.Value(t, c.Compute(types.StatusInProgress, theme, nil)).Equal(10 * 24)

		// Statuses missing from the theme fall back to the default table
		gt.Value(t, c.Compute(types.StatusPreAnalysis, theme, nil)).Equal(3 * 24)
	})

	t.Run("exceptional overrides are verbatim hours", func(t *testing.T) {
		theme := &model.Theme{
			ID: "t1",
			SLADays: map[types.ObligationStatus]int{
				types.StatusBoardSignature: 5,
			},
		}
		overrides := map[types.ObligationStatus]int{
			types.StatusBoardSignature: 18,
		}
		gt.Value(t, c.Compute(types.StatusBoardSignature, theme, overrides)).Equal(18)
	})
}

func TestComputeForHonorsExceptionalFlag(t *testing.T) {
	c := deadline.New(nil)

	o := &model.Obligation{
		Code:   "OB-1",
		Status: types.StatusInProgress,
		DeadlineOverrides: map[types.ObligationStatus]int{
			types.StatusInProgress: 6,
		},
	}

	// Overrides are ignored until the obligation is flagged exceptional
	gt.Value(t, c.ComputeFor(o, nil, types.StatusInProgress)).Equal(30 * 24)

	o.Exceptional = true
	gt.Value(t, c.ComputeFor(o, nil, types.StatusInProgress)).Equal(6)
}

func TestOverdue(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("past limit date is overdue", func(t *testing.T) {
		o := &model.Obligation{Status: types.StatusInProgress, LimitDate: now.Add(-time.Hour)}
		gt.Bool(t, deadline.Overdue(o, now)).True()
	})

	t.Run("future limit date is not", func(t *testing.T) {
		o := &model.Obligation{Status: types.StatusInProgress, LimitDate: now.Add(time.Hour)}
		gt.Bool(t, deadline.Overdue(o, now)).False()
	})

	t.Run("terminal obligations are never overdue", func(t *testing.T) {
		o := &model.Obligation{Status: types.StatusCompleted, LimitDate: now.Add(-time.Hour)}
		gt.Bool(t, deadline.Overdue(o, now)).False()

		o.Status = types.StatusNotApplicable
		gt.Bool(t, deadline.Overdue(o, now)).False()
	})
}

func TestFormatParseRoundTrip(t *testing.T) {
	cases := []struct {
		hours int
		text  string
	}{
		{6, "6h"},
		{24, "1d"},
		{78, "3d 6h"},
		{240, "10d"},
		{0, "0h"},
	}

	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			gt.Value(t, deadline.FormatHours(tc.hours)).Equal(tc.text)

			parsed, err := deadline.ParseHours(tc.text)
			gt.NoError(t, err).Required()
			gt.Value(t, parsed).Equal(tc.hours)
		})
	}

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := deadline.ParseHours("3 days")
		gt.Value(t, err).NotNil()
	})
}

func TestNextLimitDate(t *testing.T) {
	c := deadline.New(nil)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	o := &model.Obligation{Code: "OB-1", Exceptional: true,
		DeadlineOverrides: map[types.ObligationStatus]int{
			types.StatusChancellory: 12,
		}}

	limit := c.NextLimitDate(o, nil, types.StatusChancellory, now)
	gt.Value(t, limit).Equal(now.Add(12 * time.Hour))
}
