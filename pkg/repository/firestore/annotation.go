package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type annotationRepository struct {
	client *firestore.Client
}

type annotationDoc struct {
	ID                    string    `firestore:"id"`
	ObligationID          int64     `firestore:"obligation_id"`
	AuthorID              string    `firestore:"author_id"`
	StatusAtTime          string    `firestore:"status_at_time"`
	Text                  string    `firestore:"text"`
	MentionIDs            []string  `firestore:"mention_ids"`
	InReplyToAnnotationID *string   `firestore:"in_reply_to_annotation_id"`
	InReplyToRoutingLevel *int      `firestore:"in_reply_to_routing_level"`
	AttachmentIDs         []string  `firestore:"attachment_ids"`
	CreatedAt             time.Time `firestore:"created_at"`
}

func toAnnotationDoc(a *model.Annotation) *annotationDoc {
	doc := &annotationDoc{
		ID:           string(a.ID),
		ObligationID: int64(a.ObligationID),
		AuthorID:     string(a.AuthorID),
		StatusAtTime: a.StatusAtTime.String(),
		Text:         a.Text,
		CreatedAt:    a.CreatedAt,
	}
	for _, id := range a.MentionIDs {
		doc.MentionIDs = append(doc.MentionIDs, string(id))
	}
	for _, id := range a.AttachmentIDs {
		doc.AttachmentIDs = append(doc.AttachmentIDs, string(id))
	}
	if a.InReplyToAnnotationID != nil {
		s := string(*a.InReplyToAnnotationID)
		doc.InReplyToAnnotationID = &s
	}
	if a.InReplyToRoutingLevel != nil {
		lvl := *a.InReplyToRoutingLevel
		doc.InReplyToRoutingLevel = &lvl
	}
	return doc
}

func (d *annotationDoc) toModel() *model.Annotation {
	a := &model.Annotation{
		ID:           types.AnnotationID(d.ID),
		ObligationID: types.ObligationID(d.ObligationID),
		AuthorID:     types.ResponsibleID(d.AuthorID),
		StatusAtTime: types.ObligationStatus(d.StatusAtTime),
		Text:         d.Text,
		CreatedAt:    d.CreatedAt,
	}
	for _, id := range d.MentionIDs {
		a.MentionIDs = append(a.MentionIDs, types.ResponsibleID(id))
	}
	for _, id := range d.AttachmentIDs {
		a.AttachmentIDs = append(a.AttachmentIDs, types.AttachmentID(id))
	}
	if d.InReplyToAnnotationID != nil {
		id := types.AnnotationID(*d.InReplyToAnnotationID)
		a.InReplyToAnnotationID = &id
	}
	if d.InReplyToRoutingLevel != nil {
		lvl := *d.InReplyToRoutingLevel
		a.InReplyToRoutingLevel = &lvl
	}
	return a
}

func (r *annotationRepository) Create(ctx context.Context, a *model.Annotation) (*model.Annotation, error) {
	created := a.Clone()
	if created.ID == "" {
		created.ID = types.AnnotationID(uuid.NewString())
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	_, err := r.client.Collection(collectionAnnotations).Doc(string(created.ID)).
		Set(ctx, toAnnotationDoc(created))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create annotation", goerr.V("id", created.ID))
	}
	return created, nil
}

func (r *annotationRepository) Get(ctx context.Context, id types.AnnotationID) (*model.Annotation, error) {
	docSnap, err := r.client.Collection(collectionAnnotations).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "annotation not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get annotation", goerr.V("id", id))
	}

	var doc annotationDoc
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode annotation", goerr.V("id", id))
	}
	return doc.toModel(), nil
}

func (r *annotationRepository) List(ctx context.Context, obligationID types.ObligationID) ([]*model.Annotation, error) {
	iter := r.client.Collection(collectionAnnotations).
		Where("obligation_id", "==", int64(obligationID)).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var out []*model.Annotation
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate annotations",
				goerr.V("obligation_id", obligationID))
		}

		var doc annotationDoc
		if err := docSnap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode annotation")
		}
		out = append(out, doc.toModel())
	}
	return out, nil
}

func (r *annotationRepository) Delete(ctx context.Context, id types.AnnotationID) error {
	docRef := r.client.Collection(collectionAnnotations).Doc(string(id))
	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "annotation not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get annotation", goerr.V("id", id))
	}
	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete annotation", goerr.V("id", id))
	}
	return nil
}
