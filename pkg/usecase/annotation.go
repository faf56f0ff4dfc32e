package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/interfaces"
	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/model/auth"
	"github.com/obligo-lab/obligo/pkg/domain/types"
	"github.com/obligo-lab/obligo/pkg/utils/async"
)

// AnnotationUseCase covers threaded annotations and the unified timeline
type AnnotationUseCase struct {
	uc *UseCases
}

// AddAnnotationInput is one annotation submission
type AddAnnotationInput struct {
	ObligationID          types.ObligationID
	Text                  string
	InReplyToAnnotationID *types.AnnotationID
	InReplyToRoutingLevel *int
	AttachmentIDs         []types.AttachmentID
}

// Add validates the reply target, resolves @-mentions, and stores the
// annotation. A denial is returned when the obligation's state or the
// actor's permissions refuse it.
func (u *AnnotationUseCase) Add(ctx context.Context, input AddAnnotationInput) (*model.Annotation, *model.Denial, error) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	if input.Text == "" {
		return nil, nil, goerr.New("annotation text is required", goerr.V("obligation_id", input.ObligationID))
	}

	o, err := u.uc.loadObligation(ctx, input.ObligationID)
	if err != nil {
		return nil, nil, err
	}

	snap, err := u.uc.buildSnapshot(ctx, o)
	if err != nil {
		return nil, nil, err
	}
	if d := u.uc.evaluator.Evaluate(types.ActionAddAnnotation, actor, snap); !d.Allowed {
		return nil, d.Denial(), nil
	}

	if err := u.checkReplyTarget(ctx, o, input); err != nil {
		return nil, nil, err
	}

	created, err := u.uc.repo.Annotation().Create(ctx, &model.Annotation{
		ObligationID:          o.ID,
		AuthorID:              actor.ResponsibleID,
		StatusAtTime:          o.Status,
		Text:                  input.Text,
		MentionIDs:            u.uc.resolveMentions(ctx, o, input.Text),
		InReplyToAnnotationID: input.InReplyToAnnotationID,
		InReplyToRoutingLevel: input.InReplyToRoutingLevel,
		AttachmentIDs:         input.AttachmentIDs,
	})
	if err != nil {
		return nil, nil, err
	}

	u.notifyMentions(ctx, created)
	return created, nil, nil
}

// checkReplyTarget verifies the referenced annotation or routing level
// exists on the same obligation.
func (u *AnnotationUseCase) checkReplyTarget(ctx context.Context, o *model.Obligation, input AddAnnotationInput) error {
	if input.InReplyToAnnotationID != nil {
		parent, err := u.uc.repo.Annotation().Get(ctx, *input.InReplyToAnnotationID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return goerr.Wrap(ErrReplyTargetNotFound, "no such annotation",
					goerr.V("annotation_id", *input.InReplyToAnnotationID))
			}
			return err
		}
		if parent.ObligationID != o.ID {
			return goerr.Wrap(ErrReplyTargetNotFound, "annotation belongs to another obligation",
				goerr.V("annotation_id", parent.ID))
		}
	}

	if input.InReplyToRoutingLevel != nil {
		level := *input.InReplyToRoutingLevel
		last, err := u.uc.repo.RoutingAction().Last(ctx, o.ID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return goerr.Wrap(ErrReplyTargetNotFound, "obligation has no routing history",
					goerr.V("level", level))
			}
			return err
		}
		if level < 1 || level > last.Level {
			return goerr.Wrap(ErrReplyTargetNotFound, "no routing action at this level",
				goerr.V("level", level), goerr.V("last_level", last.Level))
		}
	}
	return nil
}

// Delete removes an annotation. Only the author may delete, and only while
// the obligation has not reached a terminal status.
func (u *AnnotationUseCase) Delete(ctx context.Context, id types.AnnotationID) (*model.Denial, error) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	a, err := u.uc.repo.Annotation().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrAnnotationNotFound, "no such annotation", goerr.V("id", id))
		}
		return nil, err
	}

	o, err := u.uc.loadObligation(ctx, a.ObligationID)
	if err != nil {
		return nil, err
	}
	if o.Status.IsTerminal() {
		return model.NewDenial(types.ReasonObligationTerminal,
			"annotations on a closed obligation are read-only"), nil
	}
	if a.AuthorID != actor.ResponsibleID && !actor.Role.IsPrivileged() {
		return model.NewDenial(types.ReasonRoleNotAllowed,
			"only the author may delete an annotation"), nil
	}

	if err := u.uc.repo.Annotation().Delete(ctx, id); err != nil {
		return nil, err
	}
	return nil, nil
}

// ListTimeline merges routing actions and annotations into the obligation's
// unified history, newest first.
func (u *AnnotationUseCase) ListTimeline(ctx context.Context, obligationID types.ObligationID) ([]model.TimelineEvent, error) {
	if _, err := u.uc.loadObligation(ctx, obligationID); err != nil {
		return nil, err
	}

	actions, err := u.uc.repo.RoutingAction().List(ctx, obligationID)
	if err != nil {
		return nil, err
	}
	annotations, err := u.uc.repo.Annotation().List(ctx, obligationID)
	if err != nil {
		return nil, err
	}
	return model.BuildTimeline(actions, annotations), nil
}

func (u *AnnotationUseCase) notifyMentions(ctx context.Context, a *model.Annotation) {
	if u.uc.notifier == nil || len(a.MentionIDs) == 0 {
		return
	}
	async.Dispatch(ctx, func(ctx context.Context) error {
		return u.uc.notifier.Notify(ctx, interfaces.Notification{
			ObligationID: a.ObligationID,
			RecipientIDs: a.MentionIDs,
			Annotation:   a,
		})
	})
}
