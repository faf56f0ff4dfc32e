package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/types"
)

func TestNextStatus(t *testing.T) {
	cases := []struct {
		name   string
		status types.ObligationStatus
		action types.Action
		flag   types.ApprovalFlag
		want   types.ObligationStatus
		ok     bool
	}{
		{"start execution", types.StatusNotStarted, types.ActionStart, types.ApprovalNone, types.StatusInProgress, true},
		{"submit from in progress", types.StatusInProgress, types.ActionSubmitForAreaApproval, types.ApprovalNone, types.StatusPendingAreaApproval, true},
		{"submit while late", types.StatusLate, types.ActionSubmitForAreaApproval, types.ApprovalNone, types.StatusPendingAreaApproval, true},
		{"area approval advances", types.StatusPendingAreaApproval, types.ActionApprove, types.ApprovalApproved, types.StatusPreAnalysis, true},
		{"area rejection returns to execution", types.StatusPendingAreaApproval, types.ActionRequestAdjustments, types.ApprovalRejected, types.StatusInProgress, true},
		{"signature approval", types.StatusBoardSignature, types.ActionSignAsDirector, types.ApprovalApproved, types.StatusRegulatoryValidation, true},
		{"signature rejection kicks back", types.StatusBoardSignature, types.ActionSignAsDirector, types.ApprovalRejected, types.StatusTechnicalAreaAnalysis, true},
		{"final validation completes", types.StatusRegulatoryValidation, types.ActionApprove, types.ApprovalApproved, types.StatusCompleted, true},
		{"empty flag normalizes to none", types.StatusNotStarted, types.ActionStart, "", types.StatusInProgress, true},
		{"no approval without flag", types.StatusPendingAreaApproval, types.ActionApprove, types.ApprovalNone, "", false},
		{"no start from in progress", types.StatusInProgress, types.ActionStart, types.ApprovalNone, "", false},
		{"nothing leaves completed by routing", types.StatusCompleted, types.ActionRouteForward, types.ApprovalNone, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := model.NextStatus(tc.status, tc.action, tc.flag)
			gt.Value(t, ok).Equal(tc.ok)
			if tc.ok {
				gt.Value(t, got).Equal(tc.want)
			}
		})
	}
}

func TestNextStatusSuspendAndReopen(t *testing.T) {
	for _, status := range types.AllObligationStatuses() {
		next, ok := model.NextStatus(status, types.ActionSuspend, types.ApprovalNone)
		if status.IsTerminal() {
			gt.Value(t, ok).Equal(false)
		} else {
			gt.Value(t, ok).Equal(true)
			gt.Value(t, next).Equal(types.StatusNotApplicable)
		}

		next, ok = model.NextStatus(status, types.ActionReopen, types.ApprovalNone)
		if status.IsTerminal() {
			gt.Value(t, ok).Equal(true)
			gt.Value(t, next).Equal(types.StatusInProgress)
		} else {
			gt.Value(t, ok).Equal(false)
		}
	}
}

func TestHoldsForCompletionSet(t *testing.T) {
	gt.Bool(t, model.HoldsForCompletionSet(types.StatusBoardSignature, types.ActionSignAsDirector)).True()
	gt.Bool(t, model.HoldsForCompletionSet(types.StatusPendingAreaApproval, types.ActionApprove)).True()
	gt.Bool(t, model.HoldsForCompletionSet(types.StatusChancellory, types.ActionApprove)).False()
	gt.Bool(t, model.HoldsForCompletionSet(types.StatusBoardSignature, types.ActionApprove)).False()
}

func TestLevelWindow(t *testing.T) {
	sig := types.StatusBoardSignature
	chanc := types.StatusChancellory

	actions := []*model.RoutingAction{
		{Level: 1, FromStatus: chanc, ToStatus: chanc},
		{Level: 2, FromStatus: chanc, ToStatus: sig},
		{Level: 3, FromStatus: sig, ToStatus: sig},
		{Level: 4, FromStatus: sig, ToStatus: sig},
	}

	window := model.LevelWindow(actions, sig)
	gt.Array(t, window).Length(2)
	gt.Value(t, window[0].Level).Equal(3)
	gt.Value(t, window[1].Level).Equal(4)

	// The entering transition is not part of the window
	gt.Array(t, model.LevelWindow(actions[:2], sig)).Length(0)

	// No history, no window
	gt.Array(t, model.LevelWindow(nil, sig)).Length(0)
}

func TestBuildTimeline(t *testing.T) {
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	actions := []*model.RoutingAction{
		{Level: 1, CreatedAt: base},
		{Level: 2, CreatedAt: base.Add(2 * time.Minute)},
	}
	annotations := []*model.Annotation{
		{ID: "a1", Text: "first", CreatedAt: base.Add(time.Minute)},
		{ID: "a2", Text: "second", CreatedAt: base.Add(3 * time.Minute)},
	}

	events := model.BuildTimeline(actions, annotations)

	// Level 1 is suppressed; the rest is sorted newest first
	gt.Array(t, events).Length(3)
	gt.Value(t, events[0].Annotation.ID).Equal(types.AnnotationID("a2"))
	gt.Value(t, events[1].RoutingAction.Level).Equal(2)
	gt.Value(t, events[2].Annotation.ID).Equal(types.AnnotationID("a1"))
}

func TestAnnotationReplyTarget(t *testing.T) {
	annID := types.AnnotationID("parent")
	level := 3

	t.Run("no reference", func(t *testing.T) {
		a := &model.Annotation{}
		gt.Value(t, a.ReplyTarget()).Equal(model.ReplyToNone)
	})

	t.Run("annotation reference", func(t *testing.T) {
		a := &model.Annotation{InReplyToAnnotationID: &annID}
		gt.Value(t, a.ReplyTarget()).Equal(model.ReplyToAnnotation)
	})

	t.Run("routing reference wins over annotation reference", func(t *testing.T) {
		a := &model.Annotation{
			InReplyToAnnotationID: &annID,
			InReplyToRoutingLevel: &level,
		}
		gt.Value(t, a.ReplyTarget()).Equal(model.ReplyToRoutingAction)
	})
}

func TestObligationValidate(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	valid := func() *model.Obligation {
		return &model.Obligation{
			Code:           "OB-1",
			Status:         types.StatusNotStarted,
			AssignedAreaID: "area-eng",
			StartDate:      base,
			EndDate:        base.AddDate(0, 1, 0),
			LimitDate:      base.AddDate(0, 2, 0),
		}
	}

	gt.NoError(t, valid().Validate())

	t.Run("end date may not exceed limit date", func(t *testing.T) {
		o := valid()
		o.LimitDate = o.EndDate.Add(-time.Hour)
		gt.Value(t, o.Validate()).NotNil()
	})

	t.Run("completion date only on terminal status", func(t *testing.T) {
		o := valid()
		done := base.AddDate(0, 3, 0)
		o.CompletionDate = &done
		gt.Value(t, o.Validate()).NotNil()

		o.Status = types.StatusCompleted
		gt.NoError(t, o.Validate())
	})
}
