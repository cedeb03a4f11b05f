package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"posservice/pkg/domain/model"
)

type WebhookRepository struct {
	ext sqlx.ExtContext
}

func NewWebhookRepository(db *sqlx.DB) *WebhookRepository {
	return &WebhookRepository{ext: db}
}

func (r *WebhookRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *WebhookRepository) Create(ctx context.Context, webhook *model.Webhook) error {
	const query = `
		INSERT INTO sale_webhooks (id, name, url, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.ext.ExecContext(ctx, query,
		webhook.ID.String(), webhook.Name, webhook.URL, webhook.Active,
		webhook.CreatedAt, webhook.UpdatedAt)
	return errors.Wrap(err, "failed to create webhook")
}

func (r *WebhookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.ext.ExecContext(ctx, `DELETE FROM sale_webhooks WHERE id = ?`, id.String())
	if err != nil {
		return errors.Wrap(err, "failed to delete webhook")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return model.ErrWebhookNotFound
	}
	return nil
}

func (r *WebhookRepository) Find(ctx context.Context, id uuid.UUID) (*model.Webhook, error) {
	const query = `
		SELECT id, name, url, active, created_at, updated_at
		FROM sale_webhooks WHERE id = ?`

	var row webhookRow
	if err := sqlx.GetContext(ctx, r.ext, &row, query, id.String()); err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrWebhookNotFound
		}
		return nil, errors.Wrap(err, "failed to find webhook")
	}
	return row.toModel()
}

func (r *WebhookRepository) FindAll(ctx context.Context) ([]*model.Webhook, error) {
	const query = `
		SELECT id, name, url, active, created_at, updated_at
		FROM sale_webhooks ORDER BY created_at DESC`

	var rows []webhookRow
	if err := sqlx.SelectContext(ctx, r.ext, &rows, query); err != nil {
		return nil, errors.Wrap(err, "failed to list webhooks")
	}
	return webhooksToModel(rows)
}

func (r *WebhookRepository) FindActive(ctx context.Context) ([]*model.Webhook, error) {
	const query = `
		SELECT id, name, url, active, created_at, updated_at
		FROM sale_webhooks WHERE active = TRUE ORDER BY created_at DESC`

	var rows []webhookRow
	if err := sqlx.SelectContext(ctx, r.ext, &rows, query); err != nil {
		return nil, errors.Wrap(err, "failed to list active webhooks")
	}
	return webhooksToModel(rows)
}

type webhookRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	URL       string    `db:"url"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row webhookRow) toModel() (*model.Webhook, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse webhook id")
	}
	return &model.Webhook{
		ID:        id,
		Name:      row.Name,
		URL:       row.URL,
		Active:    row.Active,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func webhooksToModel(rows []webhookRow) ([]*model.Webhook, error) {
	webhooks := make([]*model.Webhook, 0, len(rows))
	for _, row := range rows {
		webhook, err := row.toModel()
		if err != nil {
			return nil, err
		}
		webhooks = append(webhooks, webhook)
	}
	return webhooks, nil
}
