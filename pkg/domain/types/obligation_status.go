package types

import "fmt"

// ObligationStatus represents the lifecycle status of an obligation
type ObligationStatus string

const (
	StatusNotStarted                ObligationStatus = "NOT_STARTED"
	StatusInProgress                ObligationStatus = "IN_PROGRESS"
	StatusLate                      ObligationStatus = "LATE"
	StatusPendingAreaApproval       ObligationStatus = "PENDING_AREA_APPROVAL"
	StatusPreAnalysis               ObligationStatus = "PRE_ANALYSIS"
	StatusTechnicalAreaAnalysis     ObligationStatus = "TECHNICAL_AREA_ANALYSIS"
	StatusRegulatoryAnalysis        ObligationStatus = "REGULATORY_ANALYSIS"
	StatusManagerRegulatoryAnalysis ObligationStatus = "MANAGER_REGULATORY_ANALYSIS"
	StatusApproval                  ObligationStatus = "APPROVAL"
	StatusChancellory               ObligationStatus = "CHANCELLORY"
	StatusBoardSignature            ObligationStatus = "BOARD_SIGNATURE"
	StatusRegulatoryValidation      ObligationStatus = "REGULATORY_VALIDATION"
	StatusCompleted                 ObligationStatus = "COMPLETED"
	StatusNotApplicable             ObligationStatus = "NOT_APPLICABLE"
)

// AllObligationStatuses returns all valid obligation statuses in workflow order
func AllObligationStatuses() []ObligationStatus {
	return []ObligationStatus{
		StatusNotStarted,
		StatusInProgress,
		StatusLate,
		StatusPendingAreaApproval,
		StatusPreAnalysis,
		StatusTechnicalAreaAnalysis,
		StatusRegulatoryAnalysis,
		StatusManagerRegulatoryAnalysis,
		StatusApproval,
		StatusChancellory,
		StatusBoardSignature,
		StatusRegulatoryValidation,
		StatusCompleted,
		StatusNotApplicable,
	}
}

var statusCodes = map[ObligationStatus]int{
	StatusNotStarted:                1,
	StatusInProgress:                2,
	StatusLate:                      3,
	StatusPendingAreaApproval:       4,
	StatusPreAnalysis:               5,
	StatusTechnicalAreaAnalysis:     6,
	StatusRegulatoryAnalysis:        7,
	StatusManagerRegulatoryAnalysis: 8,
	StatusApproval:                  9,
	StatusChancellory:               10,
	StatusBoardSignature:            11,
	StatusRegulatoryValidation:      12,
	StatusCompleted:                 13,
	StatusNotApplicable:             14,
}

// IsValid checks if the obligation status is valid
func (s ObligationStatus) IsValid() bool {
	_, ok := statusCodes[s]
	return ok
}

// Code returns the stable numeric code of the status
func (s ObligationStatus) Code() int {
	return statusCodes[s]
}

// IsTerminal reports whether the status has no regular outgoing transitions.
// Terminal obligations can only be reopened by privileged roles.
func (s ObligationStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusNotApplicable
}

// String returns the string representation of the obligation status
func (s ObligationStatus) String() string {
	return string(s)
}

// ParseObligationStatus parses a string into an ObligationStatus
func ParseObligationStatus(s string) (ObligationStatus, error) {
	status := ObligationStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid obligation status: %s", s)
	}
	return status, nil
}
