package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type routingActionRepository struct {
	client *firestore.Client
}

type routingActionDoc struct {
	ObligationID      int64     `firestore:"obligation_id"`
	Level             int       `firestore:"level"`
	Action            string    `firestore:"action"`
	ApprovalFlag      string    `firestore:"approval_flag"`
	OriginAreaID      string    `firestore:"origin_area_id"`
	DestinationAreaID string    `firestore:"destination_area_id"`
	ResponsibleID     string    `firestore:"responsible_id"`
	FromStatus        string    `firestore:"from_status"`
	ToStatus          string    `firestore:"to_status"`
	Note              string    `firestore:"note"`
	AttachmentIDs     []string  `firestore:"attachment_ids"`
	CreatedAt         time.Time `firestore:"created_at"`
}

func toRoutingActionDoc(a *model.RoutingAction) *routingActionDoc {
	doc := &routingActionDoc{
		ObligationID:      int64(a.ObligationID),
		Level:             a.Level,
		Action:            a.Action.String(),
		ApprovalFlag:      a.ApprovalFlag.String(),
		OriginAreaID:      string(a.OriginAreaID),
		DestinationAreaID: string(a.DestinationAreaID),
		ResponsibleID:     string(a.ResponsibleID),
		FromStatus:        a.FromStatus.String(),
		ToStatus:          a.ToStatus.String(),
		Note:              a.Note,
		CreatedAt:         a.CreatedAt,
	}
	for _, id := range a.AttachmentIDs {
		doc.AttachmentIDs = append(doc.AttachmentIDs, string(id))
	}
	return doc
}

func (d *routingActionDoc) toModel() *model.RoutingAction {
	a := &model.RoutingAction{
		ObligationID:      types.ObligationID(d.ObligationID),
		Level:             d.Level,
		Action:            types.Action(d.Action),
		ApprovalFlag:      types.ApprovalFlag(d.ApprovalFlag),
		OriginAreaID:      types.AreaID(d.OriginAreaID),
		DestinationAreaID: types.AreaID(d.DestinationAreaID),
		ResponsibleID:     types.ResponsibleID(d.ResponsibleID),
		FromStatus:        types.ObligationStatus(d.FromStatus),
		ToStatus:          types.ObligationStatus(d.ToStatus),
		Note:              d.Note,
		CreatedAt:         d.CreatedAt,
	}
	for _, id := range d.AttachmentIDs {
		a.AttachmentIDs = append(a.AttachmentIDs, types.AttachmentID(id))
	}
	return a
}

func (r *routingActionRepository) actionsRef(obligationID types.ObligationID) *firestore.CollectionRef {
	return r.client.Collection(collectionObligations).
		Doc(obligationDocID(obligationID)).
		Collection(collectionRoutingActions)
}

func (r *routingActionRepository) List(ctx context.Context, obligationID types.ObligationID) ([]*model.RoutingAction, error) {
	iter := r.actionsRef(obligationID).OrderBy("level", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var out []*model.RoutingAction
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate routing actions",
				goerr.V("obligation_id", obligationID))
		}

		var doc routingActionDoc
		if err := docSnap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode routing action")
		}
		out = append(out, doc.toModel())
	}
	return out, nil
}

func (r *routingActionRepository) Last(ctx context.Context, obligationID types.ObligationID) (*model.RoutingAction, error) {
	iter := r.actionsRef(obligationID).OrderBy("level", firestore.Desc).Limit(1).Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(ErrNotFound, "no routing actions", goerr.V("obligation_id", obligationID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get last routing action",
			goerr.V("obligation_id", obligationID))
	}

	var doc routingActionDoc
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode routing action")
	}
	return doc.toModel(), nil
}
