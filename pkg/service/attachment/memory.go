package attachment

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/interfaces"
	"github.com/obligo-lab/obligo/pkg/domain/types"
)

// Memory keeps attachment bytes in process memory. Used for development
// and tests.
type Memory struct {
	mu    sync.RWMutex
	items map[types.AttachmentID][]byte
}

var _ interfaces.AttachmentStore = &Memory{}

// NewMemory creates an empty in-memory attachment store
func NewMemory() *Memory {
	return &Memory{items: make(map[types.AttachmentID][]byte)}
}

func (s *Memory) Put(ctx context.Context, fileName, contentType string, r io.Reader) (types.AttachmentID, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read attachment bytes", goerr.V("file", fileName))
	}

	id := types.AttachmentID(uuid.NewString())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = data
	return id, nil
}

func (s *Memory) Open(ctx context.Context, id types.AttachmentID) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.items[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "attachment object not found", goerr.V("id", id))
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
