package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/obligo-lab/obligo/pkg/domain/interfaces"
	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/types"
	"github.com/obligo-lab/obligo/pkg/repository/memory"
	"github.com/obligo-lab/obligo/pkg/usecase"
)

func TestObligationCreateValidates(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("rejects missing code", func(t *testing.T) {
		_, err := uc.Obligation.Create(ctx, &model.Obligation{
			AssignedAreaID: "area-eng",
			StartDate:      base,
			EndDate:        base.AddDate(0, 1, 0),
			LimitDate:      base.AddDate(0, 2, 0),
		})
		gt.Value(t, err).NotNil()
	})

	t.Run("rejects conditioning overlap with assigned area", func(t *testing.T) {
		_, err := uc.Obligation.Create(ctx, &model.Obligation{
			Code:                "OB-X",
			AssignedAreaID:      "area-eng",
			ConditioningAreaIDs: []types.AreaID{"area-eng"},
			StartDate:           base,
			EndDate:             base.AddDate(0, 1, 0),
			LimitDate:           base.AddDate(0, 2, 0),
		})
		gt.Value(t, err).NotNil()
	})

	t.Run("rejects dangling principal reference", func(t *testing.T) {
		missing := types.ObligationID(424242)
		_, err := uc.Obligation.Create(ctx, &model.Obligation{
			Code:                  "OB-REF",
			AssignedAreaID:        "area-eng",
			PrincipalObligationID: &missing,
			StartDate:             base,
			EndDate:               base.AddDate(0, 1, 0),
			LimitDate:             base.AddDate(0, 2, 0),
		})
		gt.Error(t, err).Is(usecase.ErrInvalidReference)
	})

	t.Run("accepts valid principal reference and defaults status", func(t *testing.T) {
		principal, err := uc.Obligation.Create(ctx, &model.Obligation{
			Code:           "OB-PRINCIPAL",
			AssignedAreaID: "area-eng",
			StartDate:      base,
			EndDate:        base.AddDate(0, 1, 0),
			LimitDate:      base.AddDate(0, 2, 0),
		})
		gt.NoError(t, err).Required()
		gt.Value(t, principal.Status).Equal(types.StatusNotStarted)

		child, err := uc.Obligation.Create(ctx, &model.Obligation{
			Code:                  "OB-CHILD",
			AssignedAreaID:        "area-eng",
			PrincipalObligationID: &principal.ID,
			StartDate:             base,
			EndDate:               base.AddDate(0, 1, 0),
			LimitDate:             base.AddDate(0, 2, 0),
		})
		gt.NoError(t, err).Required()
		gt.Value(t, *child.PrincipalObligationID).Equal(principal.ID)
	})

	t.Run("detects cycle through rejected references", func(t *testing.T) {
		a, err := uc.Obligation.Create(ctx, &model.Obligation{
			Code:           "OB-REJ-A",
			AssignedAreaID: "area-eng",
			StartDate:      base,
			EndDate:        base.AddDate(0, 1, 0),
			LimitDate:      base.AddDate(0, 2, 0),
		})
		gt.NoError(t, err).Required()

		b, err := uc.Obligation.Create(ctx, &model.Obligation{
			Code:                 "OB-REJ-B",
			AssignedAreaID:       "area-eng",
			RejectedObligationID: &a.ID,
			StartDate:            base,
			EndDate:              base.AddDate(0, 1, 0),
			LimitDate:            base.AddDate(0, 2, 0),
		})
		gt.NoError(t, err).Required()

		// Close the loop with a direct write, as older data might carry it
		a.RejectedObligationID = &b.ID
		_, err = repo.Obligation().Update(ctx, a)
		gt.NoError(t, err).Required()

		_, err = uc.Obligation.Create(ctx, &model.Obligation{
			Code:                 "OB-REJ-C",
			AssignedAreaID:       "area-eng",
			RejectedObligationID: &a.ID,
			StartDate:            base,
			EndDate:              base.AddDate(0, 1, 0),
			LimitDate:            base.AddDate(0, 2, 0),
		})
		gt.Error(t, err).Is(usecase.ErrInvalidReference)
	})
}

func TestSetLateJustification(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)

	o := seedObligation(t, repo, nil)
	ctx := actorCtx(executorActor)

	t.Run("denied while not late", func(t *testing.T) {
		_, denial, err := uc.Obligation.SetLateJustification(ctx, o.ID, "the vendor was late")
		gt.NoError(t, err).Required()
		gt.Value(t, denial).NotNil()
		gt.Value(t, denial.Code).Equal(types.ReasonObligationNotLate)
	})

	t.Run("recorded while late", func(t *testing.T) {
		late := forceStatus(t, repo, o, types.StatusLate)

		updated, denial, err := uc.Obligation.SetLateJustification(ctx, late.ID, "the vendor was late")
		gt.NoError(t, err).Required()
		gt.Value(t, denial).Nil()
		gt.Value(t, updated.LateJustification).NotNil()
		gt.Value(t, updated.LateJustification.Text).Equal("the vendor was late")
		gt.Value(t, updated.LateJustification.AuthorID).Equal(executorActor.ResponsibleID)

		// With the justification in place, submission becomes available
		// again once evidence exists
		gt.NoError(t, repo.Attachment().Put(context.Background(), &model.Attachment{
			ID:           "att-ev",
			ObligationID: late.ID,
			FileName:     "report.pdf",
			Kind:         types.DocumentKindComplianceEvidence,
			UploaderID:   executorActor.ResponsibleID,
		})).Required()

		result, err := uc.Routing.Route(ctx, usecase.RouteInput{
			ObligationID: late.ID,
			Action:       types.ActionSubmitForAreaApproval,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, result.Denial).Nil()
		gt.Value(t, result.Obligation.Status).Equal(types.StatusPendingAreaApproval)
	})

	t.Run("denied without justification", func(t *testing.T) {
		other := seedObligation(t, repo, func(o *model.Obligation) {
			o.Code = "OB-2026-002"
		})
		late := forceStatus(t, repo, other, types.StatusLate)

		result, err := uc.Routing.Route(ctx, usecase.RouteInput{
			ObligationID: late.ID,
			Action:       types.ActionSubmitForAreaApproval,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, result.Denial).NotNil()
		gt.Value(t, result.Denial.Code).Equal(types.ReasonMissingLateJustification)
		gt.Value(t, result.Denial.Reason).Equal("missing late justification")
	})
}

func TestRefreshLateness(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	ctx := context.Background()

	t.Run("flips overdue in-progress to late", func(t *testing.T) {
		o := seedObligation(t, repo, nil)
		o.Status = types.StatusInProgress
		o.LimitDate = time.Now().UTC().Add(-time.Hour)
		o, err := repo.Obligation().Update(ctx, o)
		gt.NoError(t, err).Required()

		updated, changed, err := uc.Obligation.RefreshLateness(ctx, o.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, changed).True()
		gt.Value(t, updated.Status).Equal(types.StatusLate)
	})

	t.Run("returns late to in-progress after extension", func(t *testing.T) {
		o := seedObligation(t, repo, func(o *model.Obligation) {
			o.Code = "OB-EXT"
		})
		o.Status = types.StatusLate
		o.LimitDate = time.Now().UTC().Add(48 * time.Hour)
		o, err := repo.Obligation().Update(ctx, o)
		gt.NoError(t, err).Required()

		updated, changed, err := uc.Obligation.RefreshLateness(ctx, o.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, changed).True()
		gt.Value(t, updated.Status).Equal(types.StatusInProgress)
	})

	t.Run("leaves terminal and on-time obligations alone", func(t *testing.T) {
		o := seedObligation(t, repo, func(o *model.Obligation) {
			o.Code = "OB-OK"
			o.LimitDate = time.Now().UTC().Add(72 * time.Hour)
			o.EndDate = time.Now().UTC().Add(24 * time.Hour)
			o.StartDate = time.Now().UTC().Add(-24 * time.Hour)
		})

		_, changed, err := uc.Obligation.RefreshLateness(ctx, o.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, changed).False()
	})
}

func TestSweepOverdue(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	ctx := context.Background()

	codes := []string{"OB-A", "OB-B", "OB-C"}
	for i, code := range codes {
		o := seedObligation(t, repo, func(o *model.Obligation) {
			o.Code = code
		})
		o.Status = types.StatusInProgress
		if i < 2 {
			o.LimitDate = time.Now().UTC().Add(-time.Hour)
		} else {
			o.LimitDate = time.Now().UTC().Add(72 * time.Hour)
		}
		_, err := repo.Obligation().Update(ctx, o)
		gt.NoError(t, err).Required()
	}

	flipped, err := uc.Obligation.SweepOverdue(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, flipped).Equal(2)

	lateList, err := repo.Obligation().List(ctx, interfaces.ListObligationOptions{
		Status: types.StatusLate,
	})
	gt.NoError(t, err).Required()
	gt.Array(t, lateList).Length(2)
}

func TestDeactivate(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	ctx := context.Background()

	o := seedObligation(t, repo, nil)
	deactivated, err := uc.Obligation.Deactivate(ctx, o.ID)
	gt.NoError(t, err).Required()
	gt.Bool(t, deactivated.Inactive).True()

	// Hidden from default listings, still retrievable by ID
	visible, err := uc.Obligation.List(ctx, interfaces.ListObligationOptions{})
	gt.NoError(t, err).Required()
	gt.Array(t, visible).Length(0)

	kept, err := uc.Obligation.Get(ctx, o.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, kept.Code).Equal(o.Code)
}
