package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cleaning-booking-be/internal/pkg/logger"
	"cleaning-booking-be/pkg/referral/processor"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// CommissionDispatcher hands a booking to background commission processing.
type CommissionDispatcher interface {
	Dispatch(ctx context.Context, bookingCode string) error
}

type commissionMessage struct {
	BookingCode string `json:"booking_code"`
}

type pubSubDispatcher struct {
	pubSub    *gochannel.GoChannel
	topicName string
}

func NewCommissionDispatcher(pubSub *gochannel.GoChannel, topicName string) CommissionDispatcher {
	return &pubSubDispatcher{pubSub: pubSub, topicName: topicName}
}

func (d *pubSubDispatcher) Dispatch(ctx context.Context, bookingCode string) error {
	payload, err := json.Marshal(commissionMessage{BookingCode: bookingCode})
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := d.pubSub.Publish(d.topicName, msg); err != nil {
		return fmt.Errorf("publish commission message: %w", err)
	}
	return nil
}

type ICommissionConsumer interface {
	Consume(ctx context.Context) error
}

type BookingProcessor interface {
	ProcessBooking(ctx context.Context, bookingCode string) (*processor.Result, error)
}

const (
	commissionMaxAttempts = 3
	commissionRetryDelay  = 2 * time.Second
)

type commissionConsumer struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	processor  BookingProcessor
	logger     logger.ILogger
	retryDelay time.Duration
	attempts   map[string]int
}

func NewCommissionConsumer(pubSub *gochannel.GoChannel, topicName string, processor BookingProcessor, logger logger.ILogger) ICommissionConsumer {
	return &commissionConsumer{
		pubSub:     pubSub,
		topicName:  topicName,
		processor:  processor,
		logger:     logger,
		retryDelay: commissionRetryDelay,
		attempts:   make(map[string]int),
	}
}

// Consume starts a goroutine that runs until ctx is cancelled.
func (c *commissionConsumer) Consume(ctx context.Context) error {
	messages, err := c.pubSub.Subscribe(ctx, c.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			c.processMessage(ctx, msg)
		}
	}()
	return nil
}

func (c *commissionConsumer) processMessage(ctx context.Context, msg *message.Message) {
	var payload commissionMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		c.logger.Error("COMMISSION", "Dropping malformed commission message", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	// The processor is idempotent, so a Nack and redelivery cannot double-credit.
	if _, err := c.processor.ProcessBooking(ctx, payload.BookingCode); err != nil {
		c.attempts[msg.UUID]++
		if c.attempts[msg.UUID] >= commissionMaxAttempts {
			delete(c.attempts, msg.UUID)
			c.logger.Error("COMMISSION", "Giving up on commission message, batch run will pick it up", map[string]interface{}{
				"booking_code": payload.BookingCode,
				"error":        err.Error(),
			})
			msg.Ack()
			return
		}
		c.logger.Warn("COMMISSION", "Commission processing will be retried", map[string]interface{}{
			"booking_code": payload.BookingCode,
			"error":        err.Error(),
		})
		select {
		case <-ctx.Done():
		case <-time.After(c.retryDelay):
		}
		msg.Nack()
		return
	}
	delete(c.attempts, msg.UUID)
	msg.Ack()
}
