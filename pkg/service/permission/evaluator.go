package permission

import (
	"fmt"

	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/model/auth"
	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// Snapshot carries the obligation state a permission decision depends on.
// The use case layer assembles it once per request; evaluation itself is
// pure and performs no I/O.
type Snapshot struct {
	Obligation *model.Obligation

	// Signers assigned for the obligation's current status, nil when none
	Signers *model.SignerAssignment

	// Window is the contiguous run of routing actions recorded while the
	// obligation stayed in its current status
	Window []*model.RoutingAction

	// HasEvidence reports whether a compliance-evidence attachment exists
	HasEvidence bool
}

// Evaluator decides whether an actor may perform an action on an obligation
// in its current status. Every (action, status) pair resolves to an
// allow/deny decision; absence of permission is a normal outcome.
type Evaluator struct{}

// New creates an Evaluator
func New() *Evaluator {
	return &Evaluator{}
}

// Evaluate resolves one action against the snapshot and actor
func (e *Evaluator) Evaluate(action types.Action, actor *auth.Actor, snap *Snapshot) model.Decision {
	if !action.IsValid() {
		return model.Deny(types.ReasonActionNotAvailable,
			fmt.Sprintf("unknown action %q", action))
	}

	status := snap.Obligation.Status
	byStatus, ok := rules[action]
	if !ok {
		return model.Deny(types.ReasonActionNotAvailable,
			fmt.Sprintf("action %s is not part of the workflow", action))
	}
	r, ok := byStatus[status]
	if !ok {
		return model.Deny(types.ReasonActionNotAvailable,
			fmt.Sprintf("action %s is not available while the obligation is %s", action, status))
	}

	if d := r.checkRole(actor); !d.Allowed {
		return d
	}
	if d := r.checkMembership(actor, snap.Obligation); !d.Allowed {
		return d
	}
	for _, pre := range r.preconditions {
		if d := pre(actor, snap); !d.Allowed {
			return d
		}
	}
	return model.Allow()
}

// EvaluateAll resolves every known action for UI rendering: enabled flags
// plus the denial reason used as tooltip text.
func (e *Evaluator) EvaluateAll(actor *auth.Actor, snap *Snapshot) map[types.Action]model.Decision {
	out := make(map[types.Action]model.Decision, len(types.AllActions()))
	for _, action := range types.AllActions() {
		out[action] = e.Evaluate(action, actor, snap)
	}
	return out
}
