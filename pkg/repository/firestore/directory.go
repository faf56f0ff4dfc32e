package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type areaRepository struct {
	client *firestore.Client
}

func (r *areaRepository) Put(ctx context.Context, a *model.Area) error {
	stored := *a
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	_, err := r.client.Collection(collectionAreas).Doc(string(a.ID)).Set(ctx, &stored)
	if err != nil {
		return goerr.Wrap(err, "failed to put area", goerr.V("id", a.ID))
	}
	return nil
}

func (r *areaRepository) Get(ctx context.Context, id types.AreaID) (*model.Area, error) {
	docSnap, err := r.client.Collection(collectionAreas).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "area not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get area", goerr.V("id", id))
	}

	var a model.Area
	if err := docSnap.DataTo(&a); err != nil {
		return nil, goerr.Wrap(err, "failed to decode area", goerr.V("id", id))
	}
	return &a, nil
}

func (r *areaRepository) List(ctx context.Context) ([]*model.Area, error) {
	iter := r.client.Collection(collectionAreas).Documents(ctx)
	defer iter.Stop()

	var out []*model.Area
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate areas")
		}

		var a model.Area
		if err := docSnap.DataTo(&a); err != nil {
			return nil, goerr.Wrap(err, "failed to decode area")
		}
		out = append(out, &a)
	}
	return out, nil
}

type responsibleRepository struct {
	client *firestore.Client
}

func (r *responsibleRepository) Put(ctx context.Context, resp *model.Responsible) error {
	stored := *resp
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	_, err := r.client.Collection(collectionResponsibles).Doc(string(resp.ID)).Set(ctx, &stored)
	if err != nil {
		return goerr.Wrap(err, "failed to put responsible", goerr.V("id", resp.ID))
	}
	return nil
}

func (r *responsibleRepository) Get(ctx context.Context, id types.ResponsibleID) (*model.Responsible, error) {
	docSnap, err := r.client.Collection(collectionResponsibles).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "responsible not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get responsible", goerr.V("id", id))
	}

	var resp model.Responsible
	if err := docSnap.DataTo(&resp); err != nil {
		return nil, goerr.Wrap(err, "failed to decode responsible", goerr.V("id", id))
	}
	return &resp, nil
}

func (r *responsibleRepository) GetMany(ctx context.Context, ids []types.ResponsibleID) ([]*model.Responsible, error) {
	out := make([]*model.Responsible, 0, len(ids))
	for _, id := range ids {
		resp, err := r.Get(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, resp)
	}
	return out, nil
}

func (r *responsibleRepository) List(ctx context.Context) ([]*model.Responsible, error) {
	iter := r.client.Collection(collectionResponsibles).Documents(ctx)
	defer iter.Stop()

	var out []*model.Responsible
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate responsibles")
		}

		var resp model.Responsible
		if err := docSnap.DataTo(&resp); err != nil {
			return nil, goerr.Wrap(err, "failed to decode responsible")
		}
		out = append(out, &resp)
	}
	return out, nil
}

type signerRepository struct {
	client *firestore.Client
}

func signerDocID(obligationID types.ObligationID, st types.ObligationStatus) string {
	return fmt.Sprintf("%d_%s", int64(obligationID), st)
}

func (r *signerRepository) Put(ctx context.Context, s *model.SignerAssignment) error {
	stored := s.Clone()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	_, err := r.client.Collection(collectionSigners).
		Doc(signerDocID(s.ObligationID, s.Status)).Set(ctx, stored)
	if err != nil {
		return goerr.Wrap(err, "failed to put signer assignment",
			goerr.V("obligation_id", s.ObligationID), goerr.V("status", s.Status))
	}
	return nil
}

func (r *signerRepository) Get(ctx context.Context, obligationID types.ObligationID, st types.ObligationStatus) (*model.SignerAssignment, error) {
	docSnap, err := r.client.Collection(collectionSigners).
		Doc(signerDocID(obligationID, st)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "signer assignment not found",
				goerr.V("obligation_id", obligationID), goerr.V("status", st))
		}
		return nil, goerr.Wrap(err, "failed to get signer assignment",
			goerr.V("obligation_id", obligationID))
	}

	var s model.SignerAssignment
	if err := docSnap.DataTo(&s); err != nil {
		return nil, goerr.Wrap(err, "failed to decode signer assignment")
	}
	return &s, nil
}

type themeRepository struct {
	client *firestore.Client
}

type themeDoc struct {
	ID        string         `firestore:"id"`
	Name      string         `firestore:"name"`
	SLADays   map[string]int `firestore:"sla_days"`
	CreatedAt time.Time      `firestore:"created_at"`
	UpdatedAt time.Time      `firestore:"updated_at"`
}

func (r *themeRepository) Put(ctx context.Context, t *model.Theme) error {
	now := time.Now().UTC()
	doc := &themeDoc{
		ID:        string(t.ID),
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
		UpdatedAt: now,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if t.SLADays != nil {
		doc.SLADays = make(map[string]int, len(t.SLADays))
		for k, v := range t.SLADays {
			doc.SLADays[k.String()] = v
		}
	}

	_, err := r.client.Collection(collectionThemes).Doc(string(t.ID)).Set(ctx, doc)
	if err != nil {
		return goerr.Wrap(err, "failed to put theme", goerr.V("id", t.ID))
	}
	return nil
}

func (d *themeDoc) toModel() *model.Theme {
	t := &model.Theme{
		ID:        types.ThemeID(d.ID),
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.SLADays != nil {
		t.SLADays = make(map[types.ObligationStatus]int, len(d.SLADays))
		for k, v := range d.SLADays {
			t.SLADays[types.ObligationStatus(k)] = v
		}
	}
	return t
}

func (r *themeRepository) Get(ctx context.Context, id types.ThemeID) (*model.Theme, error) {
	docSnap, err := r.client.Collection(collectionThemes).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "theme not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get theme", goerr.V("id", id))
	}

	var doc themeDoc
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode theme", goerr.V("id", id))
	}
	return doc.toModel(), nil
}

func (r *themeRepository) List(ctx context.Context) ([]*model.Theme, error) {
	iter := r.client.Collection(collectionThemes).Documents(ctx)
	defer iter.Stop()

	var out []*model.Theme
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate themes")
		}

		var doc themeDoc
		if err := docSnap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode theme")
		}
		out = append(out, doc.toModel())
	}
	return out, nil
}

type attachmentRepository struct {
	client *firestore.Client
}

func (r *attachmentRepository) Put(ctx context.Context, a *model.Attachment) error {
	if a.ID == "" {
		return goerr.New("attachment ID is required", goerr.V("file", a.FileName))
	}
	stored := *a
	if stored.UploadedAt.IsZero() {
		stored.UploadedAt = time.Now().UTC()
	}

	_, err := r.client.Collection(collectionAttachments).Doc(string(a.ID)).Set(ctx, &stored)
	if err != nil {
		return goerr.Wrap(err, "failed to put attachment", goerr.V("id", a.ID))
	}
	return nil
}

func (r *attachmentRepository) Get(ctx context.Context, id types.AttachmentID) (*model.Attachment, error) {
	docSnap, err := r.client.Collection(collectionAttachments).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "attachment not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get attachment", goerr.V("id", id))
	}

	var a model.Attachment
	if err := docSnap.DataTo(&a); err != nil {
		return nil, goerr.Wrap(err, "failed to decode attachment", goerr.V("id", id))
	}
	return &a, nil
}

func (r *attachmentRepository) List(ctx context.Context, obligationID types.ObligationID) ([]*model.Attachment, error) {
	iter := r.client.Collection(collectionAttachments).
		Where("ObligationID", "==", int64(obligationID)).
		Documents(ctx)
	defer iter.Stop()

	var out []*model.Attachment
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate attachments",
				goerr.V("obligation_id", obligationID))
		}

		var a model.Attachment
		if err := docSnap.DataTo(&a); err != nil {
			return nil, goerr.Wrap(err, "failed to decode attachment")
		}
		out = append(out, &a)
	}
	return out, nil
}
