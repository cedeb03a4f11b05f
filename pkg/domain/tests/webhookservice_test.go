package tests

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posservice/pkg/domain/model"
	"posservice/pkg/domain/service"
)

func setupWebhookService(t *testing.T) (service.WebhookService, *mockWebhookRepository) {
	t.Helper()
	repo := newMockWebhookRepository()
	return service.NewWebhookService(repo), repo
}

func TestRegisterWebhook(t *testing.T) {
	svc, repo := setupWebhookService(t)

	webhook, err := svc.RegisterWebhook(context.Background(), "accounting", "https://hooks.example.com/sales")

	require.NoError(t, err)
	assert.Equal(t, "accounting", webhook.Name)
	assert.Equal(t, "https://hooks.example.com/sales", webhook.URL)
	assert.True(t, webhook.Active)

	stored, err := repo.Find(context.Background(), webhook.ID)
	require.NoError(t, err)
	assert.Equal(t, webhook.ID, stored.ID)
}

func TestRegisterWebhook_InvalidURL(t *testing.T) {
	svc, repo := setupWebhookService(t)

	for _, rawURL := range []string{"", "not a url", "ftp://example.com/hook", "https://"} {
		_, err := svc.RegisterWebhook(context.Background(), "bad", rawURL)
		assert.ErrorIs(t, err, service.ErrInvalidWebhookURL)
	}
	assert.Empty(t, repo.store)
}

func TestListWebhooks(t *testing.T) {
	svc, _ := setupWebhookService(t)
	_, err := svc.RegisterWebhook(context.Background(), "accounting", "https://hooks.example.com/sales")
	require.NoError(t, err)
	_, err = svc.RegisterWebhook(context.Background(), "inventory", "http://inventory.local/hook")
	require.NoError(t, err)

	webhooks, err := svc.ListWebhooks(context.Background())
	require.NoError(t, err)
	assert.Len(t, webhooks, 2)
}

func TestDeleteWebhook(t *testing.T) {
	svc, repo := setupWebhookService(t)
	webhook, err := svc.RegisterWebhook(context.Background(), "accounting", "https://hooks.example.com/sales")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteWebhook(context.Background(), webhook.ID))
	assert.Empty(t, repo.store)

	err = svc.DeleteWebhook(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrWebhookNotFound)
}
