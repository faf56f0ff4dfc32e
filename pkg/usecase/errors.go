package usecase

import "errors"

// Sentinel errors for the use case layer. Denials are not errors; these
// cover genuinely broken requests and storage faults.
var (
	ErrObligationNotFound  = errors.New("obligation not found")
	ErrAnnotationNotFound  = errors.New("annotation not found")
	ErrResponsibleNotFound = errors.New("responsible not found")
	ErrReplyTargetNotFound = errors.New("reply target not found")
	ErrInvalidReference    = errors.New("invalid obligation reference")
	ErrNotRoutingAction    = errors.New("action does not move the workflow")
)
