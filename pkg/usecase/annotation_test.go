package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/model/auth"
	"github.com/obligo-lab/obligo/pkg/domain/types"
	"github.com/obligo-lab/obligo/pkg/repository/memory"
	"github.com/obligo-lab/obligo/pkg/usecase"
)

func TestAddAnnotationResolvesMentions(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	ctx := context.Background()

	gt.NoError(t, repo.Responsible().Put(ctx, &model.Responsible{
		ID: "resp-ana", FullName: "Ana", Role: types.RoleExecutor,
	})).Required()
	gt.NoError(t, repo.Responsible().Put(ctx, &model.Responsible{
		ID: "resp-ana-silva", FullName: "Ana Silva", Role: types.RoleValidator,
	})).Required()
	gt.NoError(t, repo.Area().Put(ctx, &model.Area{
		ID:        "area-eng",
		Name:      "Engineering",
		MemberIDs: []types.ResponsibleID{"resp-exec", "resp-ana", "resp-ana-silva"},
	})).Required()

	o := seedObligation(t, repo, nil)

	created, denial, err := uc.Annotation.Add(actorCtx(executorActor), usecase.AddAnnotationInput{
		ObligationID: o.ID,
		Text:         "@Ana Silva please review, cc @Ana",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, denial).Nil()

	// Longest full name wins: "@Ana Silva" resolves to Ana Silva, the
	// trailing "@Ana" to Ana
	gt.Array(t, created.MentionIDs).Length(2)
	gt.Value(t, created.MentionIDs[0]).Equal(types.ResponsibleID("resp-ana-silva"))
	gt.Value(t, created.MentionIDs[1]).Equal(types.ResponsibleID("resp-ana"))
	gt.Value(t, created.StatusAtTime).Equal(o.Status)
}

func TestAddAnnotationIgnoresNonParticipantMentions(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	ctx := context.Background()

	// Registered in the directory, but never touched the obligation and
	// belongs to none of its areas
	gt.NoError(t, repo.Responsible().Put(ctx, &model.Responsible{
		ID: "resp-ghost", FullName: "Ghost Person", Role: types.RoleExecutor,
		AreaIDs: []types.AreaID{"area-other"},
	})).Required()
	gt.NoError(t, repo.Responsible().Put(ctx, &model.Responsible{
		ID: "resp-eva", FullName: "Eva Executor", Role: types.RoleExecutor,
	})).Required()
	gt.NoError(t, repo.Area().Put(ctx, &model.Area{
		ID:        "area-eng",
		Name:      "Engineering",
		MemberIDs: []types.ResponsibleID{"resp-exec", "resp-eva"},
	})).Required()

	o := seedObligation(t, repo, nil)

	created, denial, err := uc.Annotation.Add(actorCtx(executorActor), usecase.AddAnnotationInput{
		ObligationID: o.ID,
		Text:         "@Ghost Person please look, @Eva Executor can explain",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, denial).Nil()

	// The stranger's name stays plain text; the area member resolves
	gt.Array(t, created.MentionIDs).Length(1)
	gt.Value(t, created.MentionIDs[0]).Equal(types.ResponsibleID("resp-eva"))
}

func TestAddAnnotationValidatesReplyTarget(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	ctx := actorCtx(executorActor)

	o := seedObligation(t, repo, nil)

	t.Run("unknown annotation reference", func(t *testing.T) {
		missing := types.AnnotationID("no-such")
		_, _, err := uc.Annotation.Add(ctx, usecase.AddAnnotationInput{
			ObligationID:          o.ID,
			Text:                  "reply",
			InReplyToAnnotationID: &missing,
		})
		gt.Error(t, err).Is(usecase.ErrReplyTargetNotFound)
	})

	t.Run("routing level beyond history", func(t *testing.T) {
		level := 5
		_, _, err := uc.Annotation.Add(ctx, usecase.AddAnnotationInput{
			ObligationID:          o.ID,
			Text:                  "reply",
			InReplyToRoutingLevel: &level,
		})
		gt.Error(t, err).Is(usecase.ErrReplyTargetNotFound)
	})

	t.Run("valid annotation reply", func(t *testing.T) {
		parent, denial, err := uc.Annotation.Add(ctx, usecase.AddAnnotationInput{
			ObligationID: o.ID,
			Text:         "parent note",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, denial).Nil()

		reply, denial, err := uc.Annotation.Add(ctx, usecase.AddAnnotationInput{
			ObligationID:          o.ID,
			Text:                  "child note",
			InReplyToAnnotationID: &parent.ID,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, denial).Nil()
		gt.Value(t, reply.ReplyTarget()).Equal(model.ReplyToAnnotation)
	})
}

func TestDeleteAnnotation(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	ctx := actorCtx(executorActor)

	o := seedObligation(t, repo, nil)

	created, denial, err := uc.Annotation.Add(ctx, usecase.AddAnnotationInput{
		ObligationID: o.ID,
		Text:         "to be deleted",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, denial).Nil()

	t.Run("only the author may delete", func(t *testing.T) {
		stranger := &auth.Actor{ResponsibleID: "resp-other", Role: types.RoleExecutor}
		denial, err := uc.Annotation.Delete(actorCtx(stranger), created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, denial).NotNil()
		gt.Value(t, denial.Code).Equal(types.ReasonRoleNotAllowed)
	})

	t.Run("author deletes", func(t *testing.T) {
		denial, err := uc.Annotation.Delete(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, denial).Nil()

		_, err = repo.Annotation().Get(context.Background(), created.ID)
		gt.Value(t, err).NotNil()
	})

	t.Run("closed obligations are read-only", func(t *testing.T) {
		kept, denial, err := uc.Annotation.Add(ctx, usecase.AddAnnotationInput{
			ObligationID: o.ID,
			Text:         "written before closing",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, denial).Nil()

		current, err := repo.Obligation().Get(context.Background(), o.ID)
		gt.NoError(t, err).Required()
		forceStatus(t, repo, current, types.StatusCompleted)

		denial, err = uc.Annotation.Delete(ctx, kept.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, denial).NotNil()
		gt.Value(t, denial.Code).Equal(types.ReasonObligationTerminal)
	})
}

func TestListTimeline(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	ctx := actorCtx(executorActor)

	o := seedObligation(t, repo, nil)

	// Start (level 1, structural) then submit without evidence requirement
	// bypassed by attaching evidence first
	result, err := uc.Routing.Route(ctx, usecase.RouteInput{
		ObligationID: o.ID,
		Action:       types.ActionStart,
	})
	gt.NoError(t, err).Required()
	gt.Value(t, result.Denial).Nil()

	gt.NoError(t, repo.Attachment().Put(context.Background(), &model.Attachment{
		ID:           "att-ev",
		ObligationID: o.ID,
		FileName:     "report.pdf",
		Kind:         types.DocumentKindComplianceEvidence,
		UploaderID:   executorActor.ResponsibleID,
	})).Required()

	result, err = uc.Routing.Route(ctx, usecase.RouteInput{
		ObligationID: o.ID,
		Action:       types.ActionSubmitForAreaApproval,
	})
	gt.NoError(t, err).Required()
	gt.Value(t, result.Denial).Nil()

	_, denial, err := uc.Annotation.Add(ctx, usecase.AddAnnotationInput{
		ObligationID: o.ID,
		Text:         "submitted for approval",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, denial).Nil()

	events, err := uc.Annotation.ListTimeline(context.Background(), o.ID)
	gt.NoError(t, err).Required()

	// Two routing actions were recorded but level 1 is suppressed, plus one
	// annotation: two events, newest first
	gt.Array(t, events).Length(2)
	gt.Value(t, events[0].Annotation).NotNil()
	gt.Value(t, events[1].RoutingAction).NotNil()
	gt.Value(t, events[1].RoutingAction.Level).Equal(2)
	gt.Bool(t, events[0].At.Before(events[1].At)).False()
}

func TestAddAnnotationRequiresText(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)

	o := seedObligation(t, repo, nil)

	_, _, err := uc.Annotation.Add(actorCtx(executorActor), usecase.AddAnnotationInput{
		ObligationID: o.ID,
	})
	gt.Value(t, err).NotNil()
}
