package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"

	"posservice/pkg/domain/model"
)

var ErrInvalidWebhookURL = errors.New("webhook url must be a valid http or https url")

type WebhookService interface {
	RegisterWebhook(ctx context.Context, name, rawURL string) (*model.Webhook, error)
	ListWebhooks(ctx context.Context) ([]*model.Webhook, error)
	DeleteWebhook(ctx context.Context, webhookID uuid.UUID) error
}

func NewWebhookService(repo model.WebhookRepository) WebhookService {
	return &webhookService{repo: repo}
}

type webhookService struct {
	repo model.WebhookRepository
}

func (s *webhookService) RegisterWebhook(ctx context.Context, name, rawURL string) (*model.Webhook, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, ErrInvalidWebhookURL
	}

	webhookID, err := s.repo.NextID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	webhook := &model.Webhook{
		ID:        webhookID,
		Name:      name,
		URL:       rawURL,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, webhook); err != nil {
		return nil, err
	}
	return webhook, nil
}

func (s *webhookService) ListWebhooks(ctx context.Context) ([]*model.Webhook, error) {
	return s.repo.FindAll(ctx)
}

func (s *webhookService) DeleteWebhook(ctx context.Context, webhookID uuid.UUID) error {
	return s.repo.Delete(ctx, webhookID)
}
