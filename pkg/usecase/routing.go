package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/obligo-lab/obligo/pkg/domain/interfaces"
	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/model/auth"
	"github.com/obligo-lab/obligo/pkg/domain/types"
	"github.com/obligo-lab/obligo/pkg/service/mention"
	"github.com/obligo-lab/obligo/pkg/service/permission"
	"github.com/obligo-lab/obligo/pkg/utils/async"
	"github.com/obligo-lab/obligo/pkg/utils/errutil"
	"github.com/obligo-lab/obligo/pkg/utils/logging"
)

// RoutingUseCase drives the workflow: it turns an actor's routing attempt
// into an atomic status transition plus an immutable RoutingAction record.
type RoutingUseCase struct {
	uc *UseCases
}

// RouteInput is one routing attempt
type RouteInput struct {
	ObligationID      types.ObligationID
	Action            types.Action
	ApprovalFlag      types.ApprovalFlag
	DestinationAreaID types.AreaID
	Note              string
	AttachmentIDs     []types.AttachmentID
}

// RouteResult carries either the committed transition or a typed denial.
// Exactly one of (Obligation+Action) and Denial is set.
type RouteResult struct {
	Obligation *model.Obligation
	Action     *model.RoutingAction
	Denial     *model.Denial
}

func denied(code types.ReasonCode, reason string) *RouteResult {
	return &RouteResult{Denial: model.NewDenial(code, reason)}
}

// Route performs one routing attempt. Contention with a concurrent commit is
// retried once against fresh state; persistent conflict becomes a denial,
// not an error.
func (r *RoutingUseCase) Route(ctx context.Context, input RouteInput) (*RouteResult, error) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !input.Action.IsRouting() {
		return nil, ErrNotRoutingAction
	}

	result, err := r.routeOnce(ctx, actor, input, false)
	if err == nil {
		return result, nil
	}

	switch {
	case errors.Is(err, interfaces.ErrRevisionMismatch), errors.Is(err, interfaces.ErrDuplicateLevel):
		logging.From(ctx).Info("routing commit contended, retrying",
			"obligation_id", input.ObligationID, "action", input.Action)
	default:
		return nil, err
	}

	result, err = r.routeOnce(ctx, actor, input, true)
	if err == nil {
		return result, nil
	}
	if errors.Is(err, interfaces.ErrRevisionMismatch) || errors.Is(err, interfaces.ErrDuplicateLevel) {
		return denied(types.ReasonRevisionConflict,
			"the obligation changed while routing; reload and try again"), nil
	}
	return nil, err
}

func (r *RoutingUseCase) routeOnce(ctx context.Context, actor *auth.Actor, input RouteInput, retried bool) (*RouteResult, error) {
	uc := r.uc

	o, err := uc.loadObligation(ctx, input.ObligationID)
	if err != nil {
		return nil, err
	}
	actions, err := uc.repo.RoutingAction().List(ctx, o.ID)
	if err != nil {
		return nil, err
	}

	// A retry after a commit collision where the last recorded action is
	// this actor's identical intent means their other submission already
	// won the race
	if retried && repeatsLastAction(actions, actor, input.Action, input.ApprovalFlag.Normalize()) {
		return denied(types.ReasonDuplicateRouting, "this routing was already recorded"), nil
	}

	snap, err := uc.snapshotWith(ctx, o, actions)
	if err != nil {
		return nil, err
	}

	if d := uc.evaluator.Evaluate(input.Action, actor, snap); !d.Allowed {
		return &RouteResult{Denial: d.Denial()}, nil
	}

	originArea := resolveOriginArea(actor, o)
	flag := input.ApprovalFlag.Normalize()

	if d := checkDuplicateIntent(snap.Window, actor, originArea, input.Action, flag); d != nil {
		return &RouteResult{Denial: d}, nil
	}

	next, ok := model.NextStatus(o.Status, input.Action, flag)
	if !ok {
		return denied(types.ReasonIllegalTransition,
			fmt.Sprintf("no transition from %s via %s", o.Status, input.Action)), nil
	}

	toStatus := next
	if flag == types.ApprovalApproved && model.HoldsForCompletionSet(o.Status, input.Action) {
		if !completionSetCovered(o, snap, actor, originArea) {
			toStatus = o.Status
		}
	}

	level := 1
	if len(actions) > 0 {
		level = actions[len(actions)-1].Level + 1
	}

	action := &model.RoutingAction{
		ObligationID:      o.ID,
		Level:             level,
		Action:            input.Action,
		ApprovalFlag:      flag,
		OriginAreaID:      originArea,
		DestinationAreaID: input.DestinationAreaID,
		ResponsibleID:     actor.ResponsibleID,
		FromStatus:        o.Status,
		ToStatus:          toStatus,
		Note:              input.Note,
		AttachmentIDs:     input.AttachmentIDs,
	}

	updated := o.Clone()
	now := time.Now().UTC()
	if toStatus != o.Status {
		updated.Status = toStatus
		if toStatus.IsTerminal() {
			updated.CompletionDate = &now
		} else {
			updated.CompletionDate = nil
			theme := uc.loadTheme(ctx, o.ThemeID)
			updated.LimitDate = uc.calculator.NextLimitDate(updated, theme, toStatus, now)
		}
	}

	committed, err := uc.repo.Obligation().CommitRouting(ctx, updated, action)
	if err != nil {
		return nil, err
	}

	mentionIDs := r.recordRoutingNote(ctx, actor, committed, action)
	r.notifyRouting(ctx, committed, action, mentionIDs)

	return &RouteResult{Obligation: committed, Action: action}, nil
}

// resolveOriginArea picks the area the actor routes on behalf of: the
// assigned area when they belong to it, else the first conditioning area
// they belong to, else their first area (privileged actors may have none).
func resolveOriginArea(actor *auth.Actor, o *model.Obligation) types.AreaID {
	for _, id := range actor.AreaIDs {
		if id == o.AssignedAreaID {
			return id
		}
	}
	for _, id := range actor.AreaIDs {
		if o.IsConditioningArea(id) {
			return id
		}
	}
	if len(actor.AreaIDs) > 0 {
		return actor.AreaIDs[0]
	}
	return ""
}

// checkDuplicateIntent refuses a routing attempt that repeats an identical
// intent already recorded in the current level window.
func checkDuplicateIntent(window []*model.RoutingAction, actor *auth.Actor, originArea types.AreaID, action types.Action, flag types.ApprovalFlag) *model.Denial {
	for _, a := range window {
		if a.Action != action || a.ApprovalFlag != flag {
			continue
		}
		if a.ResponsibleID == actor.ResponsibleID {
			return model.NewDenial(types.ReasonDuplicateRouting,
				"this routing was already recorded")
		}
		if action == types.ActionApprove && a.OriginAreaID == originArea && originArea != "" {
			return model.NewDenial(types.ReasonDuplicateRouting,
				fmt.Sprintf("area %s has already approved at this stage", originArea))
		}
	}
	return nil
}

// repeatsLastAction reports whether the most recent routing action carries
// the same intent by the same actor
func repeatsLastAction(actions []*model.RoutingAction, actor *auth.Actor, action types.Action, flag types.ApprovalFlag) bool {
	if len(actions) == 0 {
		return false
	}
	last := actions[len(actions)-1]
	return last.ResponsibleID == actor.ResponsibleID && last.Action == action && last.ApprovalFlag == flag
}

// completionSetCovered reports whether this approval completes the set the
// status transition waits for: every assigned signer at BoardSignature,
// every conditioning area at PendingAreaApproval.
func completionSetCovered(o *model.Obligation, snap *permission.Snapshot, actor *auth.Actor, originArea types.AreaID) bool {
	switch o.Status {
	case types.StatusBoardSignature:
		if snap.Signers == nil {
			return true
		}
		signed := map[types.ResponsibleID]struct{}{actor.ResponsibleID: {}}
		for _, a := range snap.Window {
			if a.Action == types.ActionSignAsDirector && a.ApprovalFlag == types.ApprovalApproved {
				signed[a.ResponsibleID] = struct{}{}
			}
		}
		for _, id := range snap.Signers.ResponsibleIDs {
			if _, ok := signed[id]; !ok {
				return false
			}
		}
		return true

	case types.StatusPendingAreaApproval:
		if len(o.ConditioningAreaIDs) == 0 {
			return true
		}
		approved := map[types.AreaID]struct{}{originArea: {}}
		for _, a := range snap.Window {
			if a.Action == types.ActionApprove && a.ApprovalFlag == types.ApprovalApproved {
				approved[a.OriginAreaID] = struct{}{}
			}
		}
		for _, id := range o.ConditioningAreaIDs {
			if _, ok := approved[id]; !ok {
				return false
			}
		}
		return true

	default:
		return true
	}
}

// recordRoutingNote turns a non-empty routing note into an annotation linked
// to the freshly committed routing action. The commit already happened, so a
// failure here is logged, never propagated.
func (r *RoutingUseCase) recordRoutingNote(ctx context.Context, actor *auth.Actor, o *model.Obligation, action *model.RoutingAction) []types.ResponsibleID {
	if action.Note == "" {
		return nil
	}

	mentionIDs := r.uc.resolveMentions(ctx, o, action.Note)
	level := action.Level
	_, err := r.uc.repo.Annotation().Create(ctx, &model.Annotation{
		ObligationID:          o.ID,
		AuthorID:              actor.ResponsibleID,
		StatusAtTime:          action.FromStatus,
		Text:                  action.Note,
		MentionIDs:            mentionIDs,
		InReplyToRoutingLevel: &level,
		AttachmentIDs:         action.AttachmentIDs,
	})
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to record routing note")
	}
	return mentionIDs
}

// notifyRouting fans out the hand-off notification to the destination area
// members and anyone mentioned in the routing note.
func (r *RoutingUseCase) notifyRouting(ctx context.Context, o *model.Obligation, action *model.RoutingAction, mentionIDs []types.ResponsibleID) {
	if r.uc.notifier == nil {
		return
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		recipients := append([]types.ResponsibleID(nil), mentionIDs...)
		if action.DestinationAreaID != "" {
			area, err := r.uc.repo.Area().Get(ctx, action.DestinationAreaID)
			if err == nil {
				recipients = append(recipients, area.MemberIDs...)
			}
		}
		if len(recipients) == 0 {
			return nil
		}
		return r.uc.notifier.Notify(ctx, interfaces.Notification{
			ObligationID:  o.ID,
			RecipientIDs:  dedupeResponsibles(recipients),
			RoutingAction: action,
		})
	})
}

// resolveMentions resolves @-mentions in text against the obligation's
// participants. Names of responsibles who never touched the obligation
// stay plain text. Resolution failures degrade to no mentions.
func (uc *UseCases) resolveMentions(ctx context.Context, o *model.Obligation, text string) []types.ResponsibleID {
	participants, err := uc.loadParticipants(ctx, o)
	if err != nil {
		logging.From(ctx).Warn("failed to load participants for mention resolution",
			"obligation_id", o.ID, "error", err)
		return nil
	}
	return mention.NewResolver(participants).Resolve(text)
}

// loadParticipants collects everyone with a stake in the obligation: past
// routing actors, annotation authors, and members of the assigned and
// conditioning areas.
func (uc *UseCases) loadParticipants(ctx context.Context, o *model.Obligation) ([]*model.Responsible, error) {
	seen := make(map[types.ResponsibleID]struct{})
	var ids []types.ResponsibleID
	add := func(id types.ResponsibleID) {
		if id == "" {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	actions, err := uc.repo.RoutingAction().List(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	for _, a := range actions {
		add(a.ResponsibleID)
	}

	annotations, err := uc.repo.Annotation().List(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	for _, a := range annotations {
		add(a.AuthorID)
	}

	for _, areaID := range append([]types.AreaID{o.AssignedAreaID}, o.ConditioningAreaIDs...) {
		area, err := uc.repo.Area().Get(ctx, areaID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				continue
			}
			return nil, err
		}
		for _, id := range area.MemberIDs {
			add(id)
		}
	}

	return uc.repo.Responsible().GetMany(ctx, ids)
}

// loadTheme fetches the obligation's theme, nil when unset or missing
func (uc *UseCases) loadTheme(ctx context.Context, id types.ThemeID) *model.Theme {
	if id == "" {
		return nil
	}
	theme, err := uc.repo.Theme().Get(ctx, id)
	if err != nil {
		return nil
	}
	return theme
}

func dedupeResponsibles(ids []types.ResponsibleID) []types.ResponsibleID {
	seen := make(map[types.ResponsibleID]struct{}, len(ids))
	out := make([]types.ResponsibleID, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
