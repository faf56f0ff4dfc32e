package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/interfaces"
	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type obligationRepository struct {
	client *firestore.Client
}

// obligationDoc is the Firestore shape of an obligation. Status-keyed maps
// are stored with plain string keys.
type obligationDoc struct {
	ID                    int64             `firestore:"id"`
	Code                  string            `firestore:"code"`
	Status                string            `firestore:"status"`
	Classification        string            `firestore:"classification"`
	Periodicity           string            `firestore:"periodicity"`
	Criticality           string            `firestore:"criticality"`
	Nature                string            `firestore:"nature"`
	AssignedAreaID        string            `firestore:"assigned_area_id"`
	ConditioningAreaIDs   []string          `firestore:"conditioning_area_ids"`
	ThemeID               string            `firestore:"theme_id"`
	StartDate             time.Time         `firestore:"start_date"`
	EndDate               time.Time         `firestore:"end_date"`
	LimitDate             time.Time         `firestore:"limit_date"`
	CompletionDate        *time.Time        `firestore:"completion_date"`
	Exceptional           bool              `firestore:"exceptional"`
	DeadlineOverrides     map[string]int    `firestore:"deadline_overrides"`
	JustificationText     string            `firestore:"justification_text"`
	JustificationAuthorID string            `firestore:"justification_author_id"`
	JustificationAt       *time.Time        `firestore:"justification_at"`
	PrincipalObligationID *int64            `firestore:"principal_obligation_id"`
	RejectedObligationID  *int64            `firestore:"rejected_obligation_id"`
	Inactive              bool              `firestore:"inactive"`
	Revision              int64             `firestore:"revision"`
	CreatedAt             time.Time         `firestore:"created_at"`
	UpdatedAt             time.Time         `firestore:"updated_at"`
}

func toObligationDoc(o *model.Obligation) *obligationDoc {
	doc := &obligationDoc{
		ID:             int64(o.ID),
		Code:           o.Code,
		Status:         o.Status.String(),
		Classification: string(o.Classification),
		Periodicity:    string(o.Periodicity),
		Criticality:    string(o.Criticality),
		Nature:         string(o.Nature),
		AssignedAreaID: string(o.AssignedAreaID),
		ThemeID:        string(o.ThemeID),
		StartDate:      o.StartDate,
		EndDate:        o.EndDate,
		LimitDate:      o.LimitDate,
		CompletionDate: o.CompletionDate,
		Exceptional:    o.Exceptional,
		Inactive:       o.Inactive,
		Revision:       o.Revision,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	for _, id := range o.ConditioningAreaIDs {
		doc.ConditioningAreaIDs = append(doc.ConditioningAreaIDs, string(id))
	}
	if o.DeadlineOverrides != nil {
		doc.DeadlineOverrides = make(map[string]int, len(o.DeadlineOverrides))
		for k, v := range o.DeadlineOverrides {
			doc.DeadlineOverrides[k.String()] = v
		}
	}
	if o.LateJustification != nil {
		doc.JustificationText = o.LateJustification.Text
		doc.JustificationAuthorID = string(o.LateJustification.AuthorID)
		at := o.LateJustification.At
		doc.JustificationAt = &at
	}
	if o.PrincipalObligationID != nil {
		id := int64(*o.PrincipalObligationID)
		doc.PrincipalObligationID = &id
	}
	if o.RejectedObligationID != nil {
		id := int64(*o.RejectedObligationID)
		doc.RejectedObligationID = &id
	}
	return doc
}

func (d *obligationDoc) toModel() *model.Obligation {
	o := &model.Obligation{
		ID:             types.ObligationID(d.ID),
		Code:           d.Code,
		Status:         types.ObligationStatus(d.Status),
		Classification: types.Classification(d.Classification),
		Periodicity:    types.Periodicity(d.Periodicity),
		Criticality:    types.Criticality(d.Criticality),
		Nature:         types.Nature(d.Nature),
		AssignedAreaID: types.AreaID(d.AssignedAreaID),
		ThemeID:        types.ThemeID(d.ThemeID),
		StartDate:      d.StartDate,
		EndDate:        d.EndDate,
		LimitDate:      d.LimitDate,
		CompletionDate: d.CompletionDate,
		Exceptional:    d.Exceptional,
		Inactive:       d.Inactive,
		Revision:       d.Revision,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	for _, id := range d.ConditioningAreaIDs {
		o.ConditioningAreaIDs = append(o.ConditioningAreaIDs, types.AreaID(id))
	}
	if d.DeadlineOverrides != nil {
		o.DeadlineOverrides = make(map[types.ObligationStatus]int, len(d.DeadlineOverrides))
		for k, v := range d.DeadlineOverrides {
			o.DeadlineOverrides[types.ObligationStatus(k)] = v
		}
	}
	if d.JustificationText != "" {
		j := &model.LateJustification{
			Text:     d.JustificationText,
			AuthorID: types.ResponsibleID(d.JustificationAuthorID),
		}
		if d.JustificationAt != nil {
			j.At = *d.JustificationAt
		}
		o.LateJustification = j
	}
	if d.PrincipalObligationID != nil {
		id := types.ObligationID(*d.PrincipalObligationID)
		o.PrincipalObligationID = &id
	}
	if d.RejectedObligationID != nil {
		id := types.ObligationID(*d.RejectedObligationID)
		o.RejectedObligationID = &id
	}
	return o
}

func obligationDocID(id types.ObligationID) string {
	return fmt.Sprintf("%d", int64(id))
}

func (r *obligationRepository) getNextID(ctx context.Context) (types.ObligationID, error) {
	counterRef := r.client.Collection(collectionCounters).Doc("obligation_counter")

	var nextID int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(counterRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				nextID = 1
				return tx.Set(counterRef, map[string]interface{}{"value": nextID})
			}
			return goerr.Wrap(err, "failed to get counter")
		}

		currentValue, err := doc.DataAt("value")
		if err != nil {
			return goerr.Wrap(err, "failed to get counter value")
		}
		val, ok := currentValue.(int64)
		if !ok {
			return goerr.New("counter value is not of type int64", goerr.V("value", currentValue))
		}
		nextID = val + 1
		return tx.Update(counterRef, []firestore.Update{{Path: "value", Value: nextID}})
	})
	if err != nil {
		return 0, goerr.Wrap(err, "failed to get next obligation ID")
	}

	return types.ObligationID(nextID), nil
}

func (r *obligationRepository) Create(ctx context.Context, o *model.Obligation) (*model.Obligation, error) {
	nextID, err := r.getNextID(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created := o.Clone()
	created.ID = nextID
	created.Revision = 1
	created.CreatedAt = now
	created.UpdatedAt = now

	_, err = r.client.Collection(collectionObligations).Doc(obligationDocID(created.ID)).
		Set(ctx, toObligationDoc(created))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create obligation", goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *obligationRepository) Get(ctx context.Context, id types.ObligationID) (*model.Obligation, error) {
	docSnap, err := r.client.Collection(collectionObligations).Doc(obligationDocID(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "obligation not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get obligation", goerr.V("id", id))
	}

	var doc obligationDoc
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode obligation", goerr.V("id", id))
	}
	return doc.toModel(), nil
}

func (r *obligationRepository) List(ctx context.Context, opts interfaces.ListObligationOptions) ([]*model.Obligation, error) {
	q := r.client.Collection(collectionObligations).Query
	if opts.Status != "" {
		q = q.Where("status", "==", opts.Status.String())
	}
	if !opts.IncludeInactive {
		q = q.Where("inactive", "==", false)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*model.Obligation
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate obligations")
		}

		var doc obligationDoc
		if err := docSnap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode obligation")
		}
		o := doc.toModel()

		// Area filtering spans two fields; done client side
		if opts.AreaID != "" && o.AssignedAreaID != opts.AreaID && !o.IsConditioningArea(opts.AreaID) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *obligationRepository) Update(ctx context.Context, o *model.Obligation) (*model.Obligation, error) {
	docRef := r.client.Collection(collectionObligations).Doc(obligationDocID(o.ID))

	updated := o.Clone()
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "obligation not found", goerr.V("id", o.ID))
			}
			return goerr.Wrap(err, "failed to get obligation", goerr.V("id", o.ID))
		}

		var stored obligationDoc
		if err := docSnap.DataTo(&stored); err != nil {
			return goerr.Wrap(err, "failed to decode obligation", goerr.V("id", o.ID))
		}
		if stored.Revision != o.Revision {
			return goerr.Wrap(ErrRevisionMismatch, "stale obligation revision",
				goerr.V("id", o.ID), goerr.V("stored", stored.Revision), goerr.V("given", o.Revision))
		}

		updated.Revision = stored.Revision + 1
		updated.CreatedAt = stored.CreatedAt
		updated.UpdatedAt = time.Now().UTC()
		return tx.Set(docRef, toObligationDoc(updated))
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *obligationRepository) CommitRouting(ctx context.Context, o *model.Obligation, action *model.RoutingAction) (*model.Obligation, error) {
	docRef := r.client.Collection(collectionObligations).Doc(obligationDocID(o.ID))
	actionRef := docRef.Collection(collectionRoutingActions).Doc(fmt.Sprintf("%d", action.Level))

	updated := o.Clone()
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "obligation not found", goerr.V("id", o.ID))
			}
			return goerr.Wrap(err, "failed to get obligation", goerr.V("id", o.ID))
		}

		var stored obligationDoc
		if err := docSnap.DataTo(&stored); err != nil {
			return goerr.Wrap(err, "failed to decode obligation", goerr.V("id", o.ID))
		}
		if stored.Revision != o.Revision {
			return goerr.Wrap(ErrRevisionMismatch, "stale obligation revision",
				goerr.V("id", o.ID), goerr.V("stored", stored.Revision), goerr.V("given", o.Revision))
		}

		// The level doc ID makes the gapless sequence a uniqueness check:
		// a concurrent commit at the same level loses here.
		if _, err := tx.Get(actionRef); err == nil {
			return goerr.Wrap(ErrDuplicateLevel, "routing level already recorded",
				goerr.V("id", o.ID), goerr.V("level", action.Level))
		} else if status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to check routing level", goerr.V("level", action.Level))
		}

		now := time.Now().UTC()
		storedAction := action.Clone()
		storedAction.ObligationID = o.ID
		storedAction.CreatedAt = now

		updated.Revision = stored.Revision + 1
		updated.CreatedAt = stored.CreatedAt
		updated.UpdatedAt = now

		if err := tx.Set(actionRef, toRoutingActionDoc(storedAction)); err != nil {
			return goerr.Wrap(err, "failed to write routing action")
		}
		return tx.Set(docRef, toObligationDoc(updated))
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
