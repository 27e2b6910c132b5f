package intent

import (
	"context"
	"strings"

	"github.com/sofrecom-tn/chatbot-admin/internal/apperr"
	"github.com/sofrecom-tn/chatbot-admin/internal/models"
	"github.com/sofrecom-tn/chatbot-admin/internal/store"
	"github.com/sofrecom-tn/chatbot-admin/pkg/logger"
)

// Service manages NLU intents. Training data lives here; the NLU stack
// pulls it through the sync operation.
type Service struct {
	intents store.IntentStore
	logger  logger.Logger
}

func NewService(intents store.IntentStore, log logger.Logger) *Service {
	return &Service{intents: intents, logger: log}
}

func (s *Service) Create(ctx context.Context, intent *models.Intent) (*models.Intent, error) {
	if strings.TrimSpace(intent.Name) == "" {
		return nil, apperr.Validation("intent name is required")
	}
	if len(intent.Examples) == 0 {
		return nil, apperr.Validation("at least one training example is required")
	}
	intent.IsActive = true
	if err := s.intents.Create(ctx, intent); err != nil {
		return nil, err
	}
	s.logger.Info("Intent created",
		logger.String("intentId", intent.ID.Hex()),
		logger.String("name", intent.Name),
	)
	return intent, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Intent, error) {
	return s.intents.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, page, limit int, search string) ([]models.Intent, models.Pagination, error) {
	intents, total, err := s.intents.List(ctx, page, limit, search)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return intents, models.NewPagination(page, limit, total), nil
}

func (s *Service) Update(ctx context.Context, id string, update *models.Intent) (*models.Intent, error) {
	intent, err := s.intents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(update.Name) != "" {
		intent.Name = update.Name
	}
	intent.Description = update.Description
	if update.Examples != nil {
		intent.Examples = update.Examples
	}
	if update.Responses != nil {
		intent.Responses = update.Responses
	}
	if update.Entities != nil {
		intent.Entities = update.Entities
	}
	intent.IsActive = update.IsActive
	if err := s.intents.Update(ctx, intent); err != nil {
		return nil, err
	}
	return intent, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.intents.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Intent deleted", logger.String("intentId", id))
	return nil
}

// Sync reports how many intents are ready for the NLU stack to pull. The
// training run itself happens outside this service.
func (s *Service) Sync(ctx context.Context) (int64, error) {
	count, err := s.intents.Count(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Intent sync requested", logger.Int64("count", count))
	return count, nil
}
