package messages

import (
	"context"

	"github.com/dmitrijs2005/beiwe-client/internal/client/models"
)

// Repository keeps StoredMessage rows keyed by id.
type Repository interface {
	Insert(ctx context.Context, m models.StoredMessage) error

	// Get returns common.ErrNotFound for an unknown id.
	Get(ctx context.Context, id string) (*models.StoredMessage, error)

	// List returns messages oldest first.
	List(ctx context.Context) ([]models.StoredMessage, error)

	// Delete removes one message; common.ErrNotFound when nothing matched.
	Delete(ctx context.Context, id string) error
}
