package interfaces

import (
	"context"
	"io"

	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// AttachmentStore is the external byte store. The engine only handles the
// returned reference; storage format and transport belong to the store.
type AttachmentStore interface {
	// Put stores the file bytes and returns the reference ID
	Put(ctx context.Context, fileName, contentType string, r io.Reader) (types.AttachmentID, error)

	// Open returns a reader over the stored bytes
	Open(ctx context.Context, id types.AttachmentID) (io.ReadCloser, error)
}

// Notification describes an event worth telling somebody about: a routing
// hand-off reaching their area, or a mention in an annotation.
type Notification struct {
	ObligationID  types.ObligationID
	RecipientIDs  []types.ResponsibleID
	RoutingAction *model.RoutingAction
	Annotation    *model.Annotation
}

// Notifier delivers notifications. Delivery mechanics are out of scope for
// the engine; implementations live behind this interface.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
