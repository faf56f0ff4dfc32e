package model

import (
	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// The canonical transition table of the obligation workflow. Every legal
// move is keyed by (current status, action, approval flag); anything absent
// is an illegal transition and surfaces as a typed denial, never an error.

type transitionKey struct {
	Status types.ObligationStatus
	Action types.Action
	Flag   types.ApprovalFlag
}

var transitions = map[transitionKey]types.ObligationStatus{
	// Execution phase
	{types.StatusNotStarted, types.ActionStart, types.ApprovalNone}:                 types.StatusInProgress,
	{types.StatusInProgress, types.ActionSubmitForAreaApproval, types.ApprovalNone}: types.StatusPendingAreaApproval,
	{types.StatusLate, types.ActionSubmitForAreaApproval, types.ApprovalNone}:       types.StatusPendingAreaApproval,

	// Area approval: conditioning areas vote at this stage. The engine holds
	// the status until the completion set covers every conditioning area.
	{types.StatusPendingAreaApproval, types.ActionApprove, types.ApprovalApproved}:            types.StatusPreAnalysis,
	{types.StatusPendingAreaApproval, types.ActionRequestAdjustments, types.ApprovalRejected}: types.StatusInProgress,

	// Analysis chain
	{types.StatusPreAnalysis, types.ActionRouteForward, types.ApprovalNone}:                     types.StatusTechnicalAreaAnalysis,
	{types.StatusPreAnalysis, types.ActionRequestAdjustments, types.ApprovalRejected}:           types.StatusInProgress,
	{types.StatusTechnicalAreaAnalysis, types.ActionRouteForward, types.ApprovalNone}:           types.StatusRegulatoryAnalysis,
	{types.StatusTechnicalAreaAnalysis, types.ActionRequestAdjustments, types.ApprovalRejected}: types.StatusInProgress,
	{types.StatusRegulatoryAnalysis, types.ActionRouteForward, types.ApprovalNone}:              types.StatusManagerRegulatoryAnalysis,
	{types.StatusRegulatoryAnalysis, types.ActionRequestAdjustments, types.ApprovalRejected}:    types.StatusTechnicalAreaAnalysis,

	// Managerial approval chain
	{types.StatusManagerRegulatoryAnalysis, types.ActionApprove, types.ApprovalApproved}:            types.StatusApproval,
	{types.StatusManagerRegulatoryAnalysis, types.ActionRequestAdjustments, types.ApprovalRejected}: types.StatusRegulatoryAnalysis,
	{types.StatusApproval, types.ActionApprove, types.ApprovalApproved}:                             types.StatusChancellory,
	{types.StatusApproval, types.ActionRequestAdjustments, types.ApprovalRejected}:                  types.StatusTechnicalAreaAnalysis,
	{types.StatusChancellory, types.ActionApprove, types.ApprovalApproved}:                          types.StatusBoardSignature,
	{types.StatusChancellory, types.ActionRequestAdjustments, types.ApprovalRejected}:               types.StatusApproval,

	// Board signature: a rejection kicks the obligation back to the
	// technical area instead of erroring out of the workflow.
	{types.StatusBoardSignature, types.ActionSignAsDirector, types.ApprovalApproved}: types.StatusRegulatoryValidation,
	{types.StatusBoardSignature, types.ActionSignAsDirector, types.ApprovalRejected}: types.StatusTechnicalAreaAnalysis,

	// Final validation
	{types.StatusRegulatoryValidation, types.ActionApprove, types.ApprovalApproved}:            types.StatusCompleted,
	{types.StatusRegulatoryValidation, types.ActionRequestAdjustments, types.ApprovalRejected}: types.StatusTechnicalAreaAnalysis,
}

// NextStatus resolves the destination status for a routing attempt.
// Returns false when no table entry exists.
func NextStatus(status types.ObligationStatus, action types.Action, flag types.ApprovalFlag) (types.ObligationStatus, bool) {
	flag = flag.Normalize()

	// Suspension is reachable from every non-terminal status, and reopening
	// from every terminal one. Both are logged as routing actions.
	switch action {
	case types.ActionSuspend:
		if !status.IsTerminal() {
			return types.StatusNotApplicable, true
		}
		return "", false
	case types.ActionReopen:
		if status.IsTerminal() {
			return types.StatusInProgress, true
		}
		return "", false
	}

	next, ok := transitions[transitionKey{Status: status, Action: action, Flag: flag}]
	return next, ok
}

// HoldsForCompletionSet reports whether the transition out of the status
// requires every member of a completion set to act before advancing.
func HoldsForCompletionSet(status types.ObligationStatus, action types.Action) bool {
	switch {
	case status == types.StatusBoardSignature && action == types.ActionSignAsDirector:
		return true
	case status == types.StatusPendingAreaApproval && action == types.ActionApprove:
		return true
	default:
		return false
	}
}
