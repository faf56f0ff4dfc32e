package model

import (
	"time"

	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// Annotation is a threaded comment (parecer) on an obligation. It may reply
// either to a prior annotation or to a routing action, never both logically:
// when legacy data carries both references, the routing reference wins.
type Annotation struct {
	ID           types.AnnotationID
	ObligationID types.ObligationID
	AuthorID     types.ResponsibleID
	StatusAtTime types.ObligationStatus
	Text         string
	MentionIDs   []types.ResponsibleID

	InReplyToAnnotationID *types.AnnotationID
	InReplyToRoutingLevel *int

	AttachmentIDs []types.AttachmentID
	CreatedAt     time.Time
}

// ReplyKind identifies what an annotation replies to
type ReplyKind string

const (
	ReplyToNone          ReplyKind = "none"
	ReplyToAnnotation    ReplyKind = "annotation"
	ReplyToRoutingAction ReplyKind = "routing_action"
)

// ReplyTarget resolves the effective reply reference. Routing-action
// references take precedence over annotation references when both are set.
func (a *Annotation) ReplyTarget() ReplyKind {
	if a.InReplyToRoutingLevel != nil {
		return ReplyToRoutingAction
	}
	if a.InReplyToAnnotationID != nil {
		return ReplyToAnnotation
	}
	return ReplyToNone
}

// Clone returns a deep copy of the annotation
func (a *Annotation) Clone() *Annotation {
	clone := *a
	clone.MentionIDs = append([]types.ResponsibleID(nil), a.MentionIDs...)
	clone.AttachmentIDs = append([]types.AttachmentID(nil), a.AttachmentIDs...)
	if a.InReplyToAnnotationID != nil {
		id := *a.InReplyToAnnotationID
		clone.InReplyToAnnotationID = &id
	}
	if a.InReplyToRoutingLevel != nil {
		lvl := *a.InReplyToRoutingLevel
		clone.InReplyToRoutingLevel = &lvl
	}
	return &clone
}
