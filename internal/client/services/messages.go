package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/beiwe-client/internal/client/models"
	"github.com/dmitrijs2005/beiwe-client/internal/client/repositories/messages"
	"github.com/google/uuid"
)

// MessageService keeps push messages until they are dismissed.
type MessageService struct {
	repo messages.Repository
	now  func() time.Time
}

func NewMessageService(repo messages.Repository) *MessageService {
	return &MessageService{repo: repo, now: time.Now}
}

// HandleNewMessage stores content under a fresh id.
func (s *MessageService) HandleNewMessage(ctx context.Context, content string) (models.StoredMessage, error) {
	m := models.StoredMessage{
		ID:         uuid.NewString(),
		Content:    content,
		ReceivedOn: s.now(),
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		return models.StoredMessage{}, err
	}
	return m, nil
}

func (s *MessageService) Get(ctx context.Context, id string) (*models.StoredMessage, error) {
	return s.repo.Get(ctx, id)
}

func (s *MessageService) List(ctx context.Context) ([]models.StoredMessage, error) {
	return s.repo.List(ctx)
}

func (s *MessageService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
