package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/model/auth"
)

type tokenStore struct {
	mu    sync.RWMutex
	items map[auth.TokenID]*auth.Token
}

func newTokenStore() *tokenStore {
	return &tokenStore{items: make(map[auth.TokenID]*auth.Token)}
}

func (s *tokenStore) Put(ctx context.Context, token *auth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *token
	s.items[token.ID] = &copied
	return nil
}

func (s *tokenStore) Get(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, exists := s.items[tokenID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "token not found", goerr.V("token_id", tokenID))
	}
	copied := *token
	return &copied, nil
}

func (s *tokenStore) Delete(ctx context.Context, tokenID auth.TokenID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[tokenID]; !exists {
		return goerr.Wrap(ErrNotFound, "token not found", goerr.V("token_id", tokenID))
	}
	delete(s.items, tokenID)
	return nil
}
