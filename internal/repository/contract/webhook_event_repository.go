package contract

import (
	"context"

	"cleaning-booking-be/internal/entity"
)

type WebhookEventRepository interface {
	// CreateIfAbsent stores the event and reports false when the event id was
	// already recorded.
	CreateIfAbsent(ctx context.Context, event *entity.WebhookEvent) (bool, error)
}
