package attachment

import (
	"context"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/interfaces"
	"github.com/obligo-lab/obligo/pkg/domain/types"
	"github.com/obligo-lab/obligo/pkg/utils/safe"
)

// GCS stores attachment bytes in a Cloud Storage bucket. Object names are
// generated references; the original file name only survives as metadata.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ interfaces.AttachmentStore = &GCS{}

// NewGCS creates a Cloud Storage backed attachment store
func NewGCS(ctx context.Context, bucket, prefix string) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}
	return &GCS{client: client, bucket: bucket, prefix: prefix}, nil
}

func (s *GCS) objectName(id types.AttachmentID) string {
	return path.Join(s.prefix, string(id))
}

func (s *GCS) Put(ctx context.Context, fileName, contentType string, r io.Reader) (types.AttachmentID, error) {
	id := types.AttachmentID(uuid.NewString())

	w := s.client.Bucket(s.bucket).Object(s.objectName(id)).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{"filename": fileName}

	if _, err := io.Copy(w, r); err != nil {
		safe.Close(ctx, w)
		return "", goerr.Wrap(err, "failed to write attachment object",
			goerr.V("bucket", s.bucket), goerr.V("id", id))
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize attachment object",
			goerr.V("bucket", s.bucket), goerr.V("id", id))
	}
	return id, nil
}

func (s *GCS) Open(ctx context.Context, id types.AttachmentID) (io.ReadCloser, error) {
	r, err := s.client.Bucket(s.bucket).Object(s.objectName(id)).NewReader(ctx)
	if err != nil {
		if err == storage.ErrObjectNotExist {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "attachment object not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to open attachment object",
			goerr.V("bucket", s.bucket), goerr.V("id", id))
	}
	return r, nil
}

// Close closes the underlying storage client
func (s *GCS) Close() error {
	return s.client.Close()
}
