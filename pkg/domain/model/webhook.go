package model

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrWebhookNotFound = errors.New("webhook not found")

// Webhook is a registered listener notified after every completed sale.
type Webhook struct {
	ID        uuid.UUID
	Name      string
	URL       string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type WebhookRepository interface {
	NextID() (uuid.UUID, error)
	Create(ctx context.Context, webhook *Webhook) error
	Delete(ctx context.Context, id uuid.UUID) error
	Find(ctx context.Context, id uuid.UUID) (*Webhook, error)
	FindAll(ctx context.Context) ([]*Webhook, error)
	FindActive(ctx context.Context) ([]*Webhook, error)
}
