package conversation

import (
	"context"
	"time"

	"github.com/sofrecom-tn/chatbot-admin/internal/models"
	"github.com/sofrecom-tn/chatbot-admin/internal/store"
	"github.com/sofrecom-tn/chatbot-admin/pkg/logger"
)

// Service exposes recorded chat sessions to the dashboard. The bot runtime
// writes them; the admin side only reads and prunes.
type Service struct {
	convs  store.ConversationStore
	logger logger.Logger
}

func NewService(convs store.ConversationStore, log logger.Logger) *Service {
	return &Service{convs: convs, logger: log}
}

func (s *Service) Get(ctx context.Context, id string) (*models.Conversation, error) {
	return s.convs.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, page, limit int, start, end *time.Time) ([]models.Conversation, models.Pagination, error) {
	convs, total, err := s.convs.List(ctx, page, limit, start, end)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return convs, models.NewPagination(page, limit, total), nil
}

func (s *Service) Messages(ctx context.Context, id string) ([]models.Message, error) {
	conv, err := s.convs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return conv.Messages, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.convs.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Conversation deleted", logger.String("conversationId", id))
	return nil
}
