package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// Obligation is the aggregate root tracked through the routing workflow.
// It is never hard-deleted; closed obligations keep their history and are
// only flagged inactive.
type Obligation struct {
	ID   types.ObligationID
	Code string // human identifier (cdIdentificador)

	Status types.ObligationStatus

	Classification types.Classification
	Periodicity    types.Periodicity
	Criticality    types.Criticality
	Nature         types.Nature

	AssignedAreaID      types.AreaID
	ConditioningAreaIDs []types.AreaID
	ThemeID             types.ThemeID

	StartDate      time.Time
	EndDate        time.Time
	LimitDate      time.Time
	CompletionDate *time.Time

	// Exceptional obligations carry verbatim per-status deadline overrides
	// in hours instead of the day-granularity theme defaults.
	Exceptional       bool
	DeadlineOverrides map[types.ObligationStatus]int

	LateJustification *LateJustification

	PrincipalObligationID *types.ObligationID
	RejectedObligationID  *types.ObligationID

	Inactive bool

	// Revision is the optimistic concurrency token. Every routing commit
	// bumps it by one; a mismatch aborts the commit.
	Revision int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LateJustification explains why an obligation missed its limit date.
// It can only be recorded while the obligation is in the Late status.
type LateJustification struct {
	Text     string
	AuthorID types.ResponsibleID
	At       time.Time
}

// Validate checks the structural invariants of an obligation. Referential
// checks (principal/rejected back-references) belong to the use case layer.
func (o *Obligation) Validate() error {
	if o.Code == "" {
		return goerr.New("obligation code is required")
	}
	if !o.Status.IsValid() {
		return goerr.New("invalid obligation status", goerr.V("status", o.Status))
	}
	if o.AssignedAreaID == "" {
		return goerr.New("assigned area is required", goerr.V("code", o.Code))
	}
	for _, areaID := range o.ConditioningAreaIDs {
		if areaID == o.AssignedAreaID {
			return goerr.New("conditioning areas must be disjoint from the assigned area",
				goerr.V("area_id", areaID), goerr.V("code", o.Code))
		}
	}
	if !o.StartDate.Before(o.EndDate) {
		return goerr.New("start date must precede end date",
			goerr.V("start", o.StartDate), goerr.V("end", o.EndDate))
	}
	if o.EndDate.After(o.LimitDate) {
		return goerr.New("end date must not exceed limit date",
			goerr.V("end", o.EndDate), goerr.V("limit", o.LimitDate))
	}
	if o.CompletionDate != nil && !o.Status.IsTerminal() {
		return goerr.New("completion date is only valid on terminal status",
			goerr.V("status", o.Status))
	}
	if o.LateJustification != nil && o.LateJustification.Text == "" {
		return goerr.New("late justification text is required")
	}
	return nil
}

// IsConditioningArea reports whether the area conditions this obligation
func (o *Obligation) IsConditioningArea(areaID types.AreaID) bool {
	for _, id := range o.ConditioningAreaIDs {
		if id == areaID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the obligation
func (o *Obligation) Clone() *Obligation {
	clone := *o
	clone.ConditioningAreaIDs = append([]types.AreaID(nil), o.ConditioningAreaIDs...)
	if o.DeadlineOverrides != nil {
		clone.DeadlineOverrides = make(map[types.ObligationStatus]int, len(o.DeadlineOverrides))
		for k, v := range o.DeadlineOverrides {
			clone.DeadlineOverrides[k] = v
		}
	}
	if o.CompletionDate != nil {
		t := *o.CompletionDate
		clone.CompletionDate = &t
	}
	if o.LateJustification != nil {
		j := *o.LateJustification
		clone.LateJustification = &j
	}
	if o.PrincipalObligationID != nil {
		id := *o.PrincipalObligationID
		clone.PrincipalObligationID = &id
	}
	if o.RejectedObligationID != nil {
		id := *o.RejectedObligationID
		clone.RejectedObligationID = &id
	}
	return &clone
}
