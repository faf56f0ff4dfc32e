package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/obligo-lab/obligo/pkg/domain/interfaces"
	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/types"
	"github.com/obligo-lab/obligo/pkg/repository/memory"
)

func runAnnotationRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	const obligationID = types.ObligationID(4201)

	t.Run("Create fills ID and timestamp", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Annotation().Create(ctx, &model.Annotation{
			ObligationID: obligationID,
			AuthorID:     "resp-1",
			StatusAtTime: types.StatusInProgress,
			Text:         "evidence uploaded, awaiting review",
			MentionIDs:   []types.ResponsibleID{"resp-2"},
		})
		gt.NoError(t, err).Required()

		gt.Value(t, string(created.ID)).NotEqual("")
		gt.Bool(t, created.CreatedAt.IsZero()).False()

		retrieved, err := repo.Annotation().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.Text).Equal(created.Text)
		gt.Value(t, retrieved.AuthorID).Equal(types.ResponsibleID("resp-1"))
		gt.Array(t, retrieved.MentionIDs).Length(1)
	})

	t.Run("Create preserves reply references", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		parent, err := repo.Annotation().Create(ctx, &model.Annotation{
			ObligationID: obligationID,
			AuthorID:     "resp-1",
			StatusAtTime: types.StatusInProgress,
			Text:         "first note",
		})
		gt.NoError(t, err).Required()

		level := 2
		reply, err := repo.Annotation().Create(ctx, &model.Annotation{
			ObligationID:          obligationID,
			AuthorID:              "resp-2",
			StatusAtTime:          types.StatusInProgress,
			Text:                  "replying to the routing step",
			InReplyToAnnotationID: &parent.ID,
			InReplyToRoutingLevel: &level,
		})
		gt.NoError(t, err).Required()

		retrieved, err := repo.Annotation().Get(ctx, reply.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.InReplyToAnnotationID).NotNil()
		gt.Value(t, *retrieved.InReplyToAnnotationID).Equal(parent.ID)
		gt.Value(t, retrieved.InReplyToRoutingLevel).NotNil()
		gt.Value(t, *retrieved.InReplyToRoutingLevel).Equal(2)
		gt.Value(t, retrieved.ReplyTarget()).Equal(model.ReplyToRoutingAction)
	})

	t.Run("Get returns ErrNotFound for unknown ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Annotation().Get(ctx, "no-such-annotation")
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("List returns annotations of one obligation in creation order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
		texts := []string{"first", "second", "third"}
		for i, text := range texts {
			_, err := repo.Annotation().Create(ctx, &model.Annotation{
				ObligationID: obligationID,
				AuthorID:     "resp-1",
				StatusAtTime: types.StatusInProgress,
				Text:         text,
				CreatedAt:    base.Add(time.Duration(i) * time.Minute),
			})
			gt.NoError(t, err).Required()
		}
		_, err := repo.Annotation().Create(ctx, &model.Annotation{
			ObligationID: obligationID + 1,
			AuthorID:     "resp-1",
			StatusAtTime: types.StatusInProgress,
			Text:         "other obligation",
			CreatedAt:    base,
		})
		gt.NoError(t, err).Required()

		list, err := repo.Annotation().List(ctx, obligationID)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(3)
		for i, a := range list {
			gt.Value(t, a.Text).Equal(texts[i])
		}
	})

	t.Run("Delete removes annotation", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Annotation().Create(ctx, &model.Annotation{
			ObligationID: obligationID,
			AuthorID:     "resp-1",
			StatusAtTime: types.StatusInProgress,
			Text:         "to be removed",
		})
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Annotation().Delete(ctx, created.ID)).Required()

		_, err = repo.Annotation().Get(ctx, created.ID)
		gt.Error(t, err).Is(interfaces.ErrNotFound)

		err = repo.Annotation().Delete(ctx, created.ID)
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})
}

func TestAnnotationRepository_Memory(t *testing.T) {
	runAnnotationRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestAnnotationRepository_Firestore(t *testing.T) {
	runAnnotationRepositoryTest(t, newFirestoreRepo)
}
