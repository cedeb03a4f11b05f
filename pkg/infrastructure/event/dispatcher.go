package event

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"posservice/pkg/domain/model"
	"posservice/pkg/domain/service"
)

// LogDispatcher writes every domain event to the structured log.
type LogDispatcher struct{}

func (LogDispatcher) Dispatch(event service.Event) error {
	log.WithFields(log.Fields{
		"event":   event.Type(),
		"payload": event,
	}).Info("domain event")
	return nil
}

// WebhookDispatcher posts completed sales to the active registered
// webhooks. The registrations live in storage and are re-read on every
// dispatch, so new webhooks take effect without a restart. Delivery
// failures are logged and never fail the sale.
type WebhookDispatcher struct {
	webhooks model.WebhookRepository
	client   *http.Client
}

func NewWebhookDispatcher(webhooks model.WebhookRepository) *WebhookDispatcher {
	return &WebhookDispatcher{
		webhooks: webhooks,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

func (d *WebhookDispatcher) Dispatch(event service.Event) error {
	completed, ok := event.(model.SaleCompleted)
	if !ok {
		return nil
	}

	body, err := json.Marshal(struct {
		Event          string `json:"event"`
		SaleID         string `json:"sale_id"`
		CustomerID     string `json:"customer_id,omitempty"`
		TotalCents     int64  `json:"total_cents"`
		PointsEarned   int64  `json:"points_earned"`
		PointsRedeemed int64  `json:"points_redeemed"`
	}{
		Event:          completed.Type(),
		SaleID:         completed.SaleID.String(),
		CustomerID:     customerIDString(completed),
		TotalCents:     completed.TotalCents,
		PointsEarned:   completed.PointsEarned,
		PointsRedeemed: completed.PointsRedeemed,
	})
	if err != nil {
		return err
	}

	webhooks, err := d.webhooks.FindActive(context.Background())
	if err != nil {
		log.WithError(err).Error("failed to load sale webhooks")
		return nil
	}

	for _, webhook := range webhooks {
		resp, err := d.client.Post(webhook.URL, "application/json", bytes.NewReader(body))
		if err != nil {
			log.WithError(err).WithField("url", webhook.URL).Error("failed to deliver sale webhook")
			continue
		}
		resp.Body.Close()
		if resp.StatusCode >= http.StatusBadRequest {
			log.WithFields(log.Fields{"url": webhook.URL, "status": resp.StatusCode}).Error("sale webhook rejected")
		}
	}
	return nil
}

func customerIDString(e model.SaleCompleted) string {
	if e.CustomerID == nil {
		return ""
	}
	return e.CustomerID.String()
}

// CompositeDispatcher fans one event out to several dispatchers.
type CompositeDispatcher struct {
	targets []service.EventDispatcher
}

func NewCompositeDispatcher(targets ...service.EventDispatcher) *CompositeDispatcher {
	return &CompositeDispatcher{targets: targets}
}

func (d *CompositeDispatcher) Dispatch(event service.Event) error {
	for _, target := range d.targets {
		if err := target.Dispatch(event); err != nil {
			log.WithError(err).WithField("event", event.Type()).Error("failed to dispatch event")
		}
	}
	return nil
}
