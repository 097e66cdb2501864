package implementation

import (
	"context"
	"errors"

	"cleaning-booking-be/internal/entity"
	"cleaning-booking-be/internal/model"
	"cleaning-booking-be/internal/repository/contract"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type webhookEventRepositoryImpl struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) contract.WebhookEventRepository {
	return &webhookEventRepositoryImpl{db: db}
}

func (r *webhookEventRepositoryImpl) CreateIfAbsent(ctx context.Context, event *entity.WebhookEvent) (bool, error) {
	m := &model.WebhookEvent{
		Id:        event.Id,
		EventId:   event.EventId,
		EventType: event.EventType,
		Payload:   datatypes.JSON(event.Payload),
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(m)
	if err := translateError(result.Error); err != nil {
		if errors.Is(err, contract.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	event.Id = m.Id
	event.ReceivedAt = m.ReceivedAt
	return true, nil
}
