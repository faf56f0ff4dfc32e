package types

// ReasonCode is the machine-readable code attached to a permission or
// routing denial. Human text travels alongside it; the code is stable.
type ReasonCode string

const (
	ReasonActionNotAvailable        ReasonCode = "action_not_available"
	ReasonRoleNotAllowed            ReasonCode = "role_not_allowed"
	ReasonNotAreaMember             ReasonCode = "not_area_member"
	ReasonMissingEvidence           ReasonCode = "missing_evidence"
	ReasonMissingLateJustification  ReasonCode = "missing_late_justification"
	ReasonNotAssignedSigner         ReasonCode = "not_assigned_signer"
	ReasonAlreadySigned             ReasonCode = "already_signed"
	ReasonDuplicateRouting          ReasonCode = "duplicate_routing"
	ReasonIllegalTransition         ReasonCode = "illegal_transition"
	ReasonObligationTerminal        ReasonCode = "obligation_terminal"
	ReasonObligationNotLate         ReasonCode = "obligation_not_late"
	ReasonRevisionConflict          ReasonCode = "revision_conflict"
	ReasonAwaitingConditioningAreas ReasonCode = "awaiting_conditioning_areas"
)

// String returns the string representation of the reason code
func (c ReasonCode) String() string {
	return string(c)
}
