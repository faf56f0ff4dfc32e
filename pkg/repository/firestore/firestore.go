package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/interfaces"
	"github.com/obligo-lab/obligo/pkg/domain/model/auth"
)

// Shared sentinels re-exported for call sites inside the package
var (
	ErrNotFound         = interfaces.ErrNotFound
	ErrRevisionMismatch = interfaces.ErrRevisionMismatch
	ErrDuplicateLevel   = interfaces.ErrDuplicateLevel
)

// Client is the Firestore-backed repository
type Client struct {
	client      *firestore.Client
	obligation  *obligationRepository
	routing     *routingActionRepository
	annotation  *annotationRepository
	area        *areaRepository
	responsible *responsibleRepository
	signer      *signerRepository
	theme       *themeRepository
	attachment  *attachmentRepository
	tokens      *tokenStore
}

var _ interfaces.Repository = &Client{}

// New creates a Firestore repository for the given project and database
func New(ctx context.Context, projectID, databaseID string) (*Client, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID), goerr.V("database_id", databaseID))
	}

	return &Client{
		client:      client,
		obligation:  &obligationRepository{client: client},
		routing:     &routingActionRepository{client: client},
		annotation:  &annotationRepository{client: client},
		area:        &areaRepository{client: client},
		responsible: &responsibleRepository{client: client},
		signer:      &signerRepository{client: client},
		theme:       &themeRepository{client: client},
		attachment:  &attachmentRepository{client: client},
		tokens:      &tokenStore{client: client},
	}, nil
}

func (c *Client) Obligation() interfaces.ObligationRepository {
	return c.obligation
}

func (c *Client) RoutingAction() interfaces.RoutingActionRepository {
	return c.routing
}

func (c *Client) Annotation() interfaces.AnnotationRepository {
	return c.annotation
}

func (c *Client) Area() interfaces.AreaRepository {
	return c.area
}

func (c *Client) Responsible() interfaces.ResponsibleRepository {
	return c.responsible
}

func (c *Client) Signer() interfaces.SignerRepository {
	return c.signer
}

func (c *Client) Theme() interfaces.ThemeRepository {
	return c.theme
}

func (c *Client) Attachment() interfaces.AttachmentRepository {
	return c.attachment
}

func (c *Client) PutToken(ctx context.Context, token *auth.Token) error {
	return c.tokens.Put(ctx, token)
}

func (c *Client) GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error) {
	return c.tokens.Get(ctx, tokenID)
}

func (c *Client) DeleteToken(ctx context.Context, tokenID auth.TokenID) error {
	return c.tokens.Delete(ctx, tokenID)
}

// Close closes the underlying Firestore client
func (c *Client) Close() error {
	return c.client.Close()
}

// Collection names
const (
	collectionObligations    = "obligations"
	collectionRoutingActions = "routing_actions" // subcollection per obligation
	collectionAnnotations    = "annotations"
	collectionAreas          = "areas"
	collectionResponsibles   = "responsibles"
	collectionSigners        = "signer_assignments"
	collectionThemes         = "themes"
	collectionAttachments    = "attachments"
	collectionTokens         = "tokens"
	collectionCounters       = "counters"
)
