package types

// ObligationID is the numeric identifier of an obligation
type ObligationID int64

// AreaID identifies an organizational area
type AreaID string

// ResponsibleID identifies a responsible (actor)
type ResponsibleID string

// ThemeID identifies a classification theme
type ThemeID string

// AnnotationID identifies an annotation
type AnnotationID string

// AttachmentID is the reference returned by the attachment store
type AttachmentID string

// AreaKind is the relation of an area to a given obligation
type AreaKind string

const (
	AreaKindAssigned     AreaKind = "ASSIGNED"
	AreaKindConditioning AreaKind = "CONDITIONING"
)

// IsValid checks if the area kind is valid
func (k AreaKind) IsValid() bool {
	return k == AreaKindAssigned || k == AreaKindConditioning
}

// String returns the string representation of the area kind
func (k AreaKind) String() string {
	return string(k)
}
