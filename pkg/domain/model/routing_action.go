package model

import (
	"time"

	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// RoutingAction is an immutable record of one workflow hand-off or decision.
// Levels are strictly increasing and gapless per obligation; records are
// created exclusively by the routing engine and never mutated.
type RoutingAction struct {
	ObligationID      types.ObligationID
	Level             int
	Action            types.Action
	ApprovalFlag      types.ApprovalFlag
	OriginAreaID      types.AreaID
	DestinationAreaID types.AreaID
	ResponsibleID     types.ResponsibleID
	FromStatus        types.ObligationStatus
	ToStatus          types.ObligationStatus
	Note              string
	AttachmentIDs     []types.AttachmentID
	CreatedAt         time.Time
}

// Clone returns a deep copy of the routing action
func (a *RoutingAction) Clone() *RoutingAction {
	clone := *a
	clone.AttachmentIDs = append([]types.AttachmentID(nil), a.AttachmentIDs...)
	return &clone
}

// LevelWindow is the contiguous run of routing actions recorded while the
// obligation stayed in its current status. Completion-set checks (signer
// quorums, conditioning-area approvals) are evaluated inside this window.
func LevelWindow(actions []*RoutingAction, status types.ObligationStatus) []*RoutingAction {
	var window []*RoutingAction
	for i := len(actions) - 1; i >= 0; i-- {
		a := actions[i]
		if a.FromStatus != status || a.ToStatus != status {
			break
		}
		window = append([]*RoutingAction{a}, window...)
	}
	return window
}
