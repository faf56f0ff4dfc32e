package model

import (
	"time"

	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// Attachment is file metadata tracked by the engine. The bytes themselves
// live in the external attachment store; only the reference travels here.
type Attachment struct {
	ID           types.AttachmentID
	ObligationID types.ObligationID
	FileName     string
	ContentType  string
	Kind         types.DocumentKind
	UploaderID   types.ResponsibleID
	UploaderRole types.Role
	UploadedAt   time.Time
}
