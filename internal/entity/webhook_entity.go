package entity

import (
	"time"

	"github.com/google/uuid"
)

type WebhookEvent struct {
	Id         uuid.UUID
	EventId    string
	EventType  string
	Payload    []byte
	ReceivedAt time.Time
}
