package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/model/auth"
	"github.com/obligo-lab/obligo/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type tokenStore struct {
	client *firestore.Client
}

type tokenDoc struct {
	ID         string    `firestore:"id"`
	Sub        string    `firestore:"sub"`
	SecretHash string    `firestore:"secret_hash"`
	ExpiresAt  time.Time `firestore:"expires_at"`
	CreatedAt  time.Time `firestore:"created_at"`
}

func (s *tokenStore) Put(ctx context.Context, token *auth.Token) error {
	doc := &tokenDoc{
		ID:         string(token.ID),
		Sub:        string(token.Sub),
		SecretHash: token.SecretHash,
		ExpiresAt:  token.ExpiresAt,
		CreatedAt:  token.CreatedAt,
	}
	_, err := s.client.Collection(collectionTokens).Doc(string(token.ID)).Set(ctx, doc)
	if err != nil {
		return goerr.Wrap(err, "failed to put token", goerr.V("token_id", token.ID))
	}
	return nil
}

func (s *tokenStore) Get(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error) {
	docSnap, err := s.client.Collection(collectionTokens).Doc(string(tokenID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "token not found", goerr.V("token_id", tokenID))
		}
		return nil, goerr.Wrap(err, "failed to get token", goerr.V("token_id", tokenID))
	}

	var doc tokenDoc
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode token", goerr.V("token_id", tokenID))
	}
	return &auth.Token{
		ID:         auth.TokenID(doc.ID),
		Sub:        types.ResponsibleID(doc.Sub),
		SecretHash: doc.SecretHash,
		ExpiresAt:  doc.ExpiresAt,
		CreatedAt:  doc.CreatedAt,
	}, nil
}

func (s *tokenStore) Delete(ctx context.Context, tokenID auth.TokenID) error {
	docRef := s.client.Collection(collectionTokens).Doc(string(tokenID))
	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "token not found", goerr.V("token_id", tokenID))
		}
		return goerr.Wrap(err, "failed to get token", goerr.V("token_id", tokenID))
	}
	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete token", goerr.V("token_id", tokenID))
	}
	return nil
}
