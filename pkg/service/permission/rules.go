package permission

import (
	"fmt"

	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/model/auth"
	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// membership declares which area relation an action requires of the actor
type membership int

const (
	// memberAny places no area requirement (regulatory reviewers act
	// without belonging to the obligation's areas)
	memberAny membership = iota
	// memberAssigned requires membership in the assigned area
	memberAssigned
	// memberInvolved requires membership in the assigned area or any
	// conditioning area
	memberInvolved
)

// precondition is a structural check beyond role and membership
type precondition func(actor *auth.Actor, snap *Snapshot) model.Decision

// rule is one entry of the permission matrix
type rule struct {
	roles         []types.Role // empty means any role
	membership    membership
	preconditions []precondition
}

var (
	executorRoles = []types.Role{
		types.RoleExecutor, types.RoleAdvancedExecutor, types.RoleRestrictedExecutor,
	}
	reviewerRoles = []types.Role{
		types.RoleValidator, types.RoleAdvancedExecutor,
	}
	regulatoryRoles = []types.Role{
		types.RoleValidator, types.RoleSystemManager,
	}
	managerRoles = []types.Role{
		types.RoleSystemManager,
	}
	signerRoles = []types.Role{
		types.RoleValidator,
	}
)

// The permission matrix. One declarative table instead of per-screen
// conditionals: every allowed (action, status) pair is listed here, and the
// evaluator denies everything else with a uniform reason.
var rules = map[types.Action]map[types.ObligationStatus]rule{
	types.ActionStart: {
		types.StatusNotStarted: {roles: executorRoles, membership: memberAssigned},
	},

	types.ActionSubmitForAreaApproval: {
		types.StatusInProgress: {
			roles:         executorRoles,
			membership:    memberAssigned,
			preconditions: []precondition{requireEvidence},
		},
		types.StatusLate: {
			roles:         executorRoles,
			membership:    memberAssigned,
			preconditions: []precondition{requireLateJustification, requireEvidence},
		},
	},

	types.ActionApprove: {
		types.StatusPendingAreaApproval:       {roles: reviewerRoles, membership: memberInvolved},
		types.StatusManagerRegulatoryAnalysis: {roles: managerRoles},
		types.StatusApproval:                  {roles: managerRoles},
		types.StatusChancellory:               {roles: regulatoryRoles},
		types.StatusRegulatoryValidation:      {roles: regulatoryRoles},
	},

	types.ActionRequestAdjustments: {
		types.StatusPendingAreaApproval:       {roles: reviewerRoles, membership: memberInvolved},
		types.StatusPreAnalysis:               {roles: regulatoryRoles},
		types.StatusTechnicalAreaAnalysis:     {roles: reviewerRoles, membership: memberInvolved},
		types.StatusRegulatoryAnalysis:        {roles: regulatoryRoles},
		types.StatusManagerRegulatoryAnalysis: {roles: managerRoles},
		types.StatusApproval:                  {roles: managerRoles},
		types.StatusChancellory:               {roles: regulatoryRoles},
		types.StatusRegulatoryValidation:      {roles: regulatoryRoles},
	},

	types.ActionRouteForward: {
		types.StatusPreAnalysis:           {roles: regulatoryRoles},
		types.StatusTechnicalAreaAnalysis: {roles: reviewerRoles, membership: memberInvolved},
		types.StatusRegulatoryAnalysis:    {roles: regulatoryRoles},
	},

	types.ActionSignAsDirector: {
		types.StatusBoardSignature: {
			roles:         signerRoles,
			preconditions: []precondition{requireAssignedSigner, requireDistinctSigner},
		},
	},

	types.ActionSubmitLateJustification: {
		types.StatusLate: {roles: executorRoles, membership: memberAssigned},
	},

	types.ActionAttachEvidence: {
		types.StatusNotStarted: {roles: executorRoles, membership: memberAssigned},
		types.StatusInProgress: {roles: executorRoles, membership: memberAssigned},
		types.StatusLate:       {roles: executorRoles, membership: memberAssigned},
	},
}

func init() {
	// Attaching other documents and annotating are available in every
	// non-terminal status to anyone involved with the obligation.
	attachOther := make(map[types.ObligationStatus]rule)
	annotate := make(map[types.ObligationStatus]rule)
	suspend := make(map[types.ObligationStatus]rule)
	reopen := make(map[types.ObligationStatus]rule)

	for _, status := range types.AllObligationStatuses() {
		if status.IsTerminal() {
			reopen[status] = rule{roles: []types.Role{types.RoleAdministrator}}
			continue
		}
		attachOther[status] = rule{membership: memberInvolved}
		annotate[status] = rule{}
		suspend[status] = rule{roles: []types.Role{types.RoleAdministrator, types.RoleSystemManager}}
	}

	rules[types.ActionAttachOther] = attachOther
	rules[types.ActionAddAnnotation] = annotate
	rules[types.ActionSuspend] = suspend
	rules[types.ActionReopen] = reopen
}

func (r rule) checkRole(actor *auth.Actor) model.Decision {
	if len(r.roles) == 0 {
		return model.Allow()
	}
	// Administrators and system managers may always act where a role list
	// is present, except when the list itself is the privilege gate.
	if actor.Role.IsPrivileged() && !onlyPrivileged(r.roles) {
		return model.Allow()
	}
	for _, role := range r.roles {
		if actor.Role == role {
			return model.Allow()
		}
	}
	return model.Deny(types.ReasonRoleNotAllowed,
		fmt.Sprintf("profile %s may not perform this action", actor.Role))
}

func onlyPrivileged(roles []types.Role) bool {
	for _, r := range roles {
		if !r.IsPrivileged() {
			return false
		}
	}
	return true
}

func (r rule) checkMembership(actor *auth.Actor, o *model.Obligation) model.Decision {
	if actor.Role.IsPrivileged() {
		return model.Allow()
	}
	switch r.membership {
	case memberAny:
		return model.Allow()
	case memberAssigned:
		for _, id := range actor.AreaIDs {
			if id == o.AssignedAreaID {
				return model.Allow()
			}
		}
		return model.Deny(types.ReasonNotAreaMember,
			"requires membership in the obligation's assigned area")
	case memberInvolved:
		for _, id := range actor.AreaIDs {
			if id == o.AssignedAreaID || o.IsConditioningArea(id) {
				return model.Allow()
			}
		}
		return model.Deny(types.ReasonNotAreaMember,
			"requires membership in the assigned or a conditioning area")
	default:
		return model.Deny(types.ReasonNotAreaMember, "unknown membership requirement")
	}
}

func requireEvidence(_ *auth.Actor, snap *Snapshot) model.Decision {
	if !snap.HasEvidence {
		return model.Deny(types.ReasonMissingEvidence,
			"a compliance-evidence attachment is required before submission")
	}
	return model.Allow()
}

func requireLateJustification(_ *auth.Actor, snap *Snapshot) model.Decision {
	if snap.Obligation.LateJustification == nil {
		return model.Deny(types.ReasonMissingLateJustification, "missing late justification")
	}
	return model.Allow()
}

func requireAssignedSigner(actor *auth.Actor, snap *Snapshot) model.Decision {
	if snap.Signers == nil || !snap.Signers.Includes(actor.ResponsibleID) {
		return model.Deny(types.ReasonNotAssignedSigner,
			"not assigned as a signer for this stage")
	}
	return model.Allow()
}

// requireDistinctSigner enforces the two-signer quorum: a prior signature at
// this stage does not block the action, but it must come from a different
// signer.
func requireDistinctSigner(actor *auth.Actor, snap *Snapshot) model.Decision {
	for _, a := range snap.Window {
		if a.Action != types.ActionSignAsDirector {
			continue
		}
		if a.ApprovalFlag == types.ApprovalApproved && a.ResponsibleID == actor.ResponsibleID {
			return model.Deny(types.ReasonAlreadySigned,
				"already signed at this stage; a different signer is required")
		}
	}
	return model.Allow()
}
