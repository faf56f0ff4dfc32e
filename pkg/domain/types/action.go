package types

import "fmt"

// Action represents an operation a responsible may attempt on an obligation
type Action string

const (
	ActionStart                   Action = "START"
	ActionSubmitForAreaApproval   Action = "SUBMIT_FOR_AREA_APPROVAL"
	ActionApprove                 Action = "APPROVE"
	ActionRequestAdjustments      Action = "REQUEST_ADJUSTMENTS"
	ActionRouteForward            Action = "ROUTE_FORWARD"
	ActionSignAsDirector          Action = "SIGN_AS_DIRECTOR"
	ActionSubmitLateJustification Action = "SUBMIT_LATE_JUSTIFICATION"
	ActionAttachEvidence          Action = "ATTACH_EVIDENCE"
	ActionAttachOther             Action = "ATTACH_OTHER"
	ActionSuspend                 Action = "SUSPEND"
	ActionReopen                  Action = "REOPEN"
	ActionAddAnnotation           Action = "ADD_ANNOTATION"
)

// AllActions returns all valid actions
func AllActions() []Action {
	return []Action{
		ActionStart,
		ActionSubmitForAreaApproval,
		ActionApprove,
		ActionRequestAdjustments,
		ActionRouteForward,
		ActionSignAsDirector,
		ActionSubmitLateJustification,
		ActionAttachEvidence,
		ActionAttachOther,
		ActionSuspend,
		ActionReopen,
		ActionAddAnnotation,
	}
}

// IsValid checks if the action is valid
func (a Action) IsValid() bool {
	switch a {
	case ActionStart,
		ActionSubmitForAreaApproval,
		ActionApprove,
		ActionRequestAdjustments,
		ActionRouteForward,
		ActionSignAsDirector,
		ActionSubmitLateJustification,
		ActionAttachEvidence,
		ActionAttachOther,
		ActionSuspend,
		ActionReopen,
		ActionAddAnnotation:
		return true
	default:
		return false
	}
}

// IsRouting reports whether the action moves the workflow and therefore
// produces a RoutingAction record.
func (a Action) IsRouting() bool {
	switch a {
	case ActionStart,
		ActionSubmitForAreaApproval,
		ActionApprove,
		ActionRequestAdjustments,
		ActionRouteForward,
		ActionSignAsDirector,
		ActionSuspend,
		ActionReopen:
		return true
	default:
		return false
	}
}

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}

// ParseAction parses a string into an Action
func ParseAction(s string) (Action, error) {
	action := Action(s)
	if !action.IsValid() {
		return "", fmt.Errorf("invalid action: %s", s)
	}
	return action, nil
}

// ApprovalFlag represents the decision recorded by an approval-type action
type ApprovalFlag string

const (
	ApprovalNone     ApprovalFlag = "NONE"
	ApprovalApproved ApprovalFlag = "APPROVED"
	ApprovalRejected ApprovalFlag = "REJECTED"
)

// IsValid checks if the approval flag is valid
func (f ApprovalFlag) IsValid() bool {
	switch f {
	case ApprovalNone, ApprovalApproved, ApprovalRejected:
		return true
	default:
		return false
	}
}

// Normalize returns the flag, treating empty as ApprovalNone
func (f ApprovalFlag) Normalize() ApprovalFlag {
	if f == "" {
		return ApprovalNone
	}
	return f
}

// String returns the string representation of the approval flag
func (f ApprovalFlag) String() string {
	return string(f)
}
