package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"search-service/internal/constants"
	"search-service/internal/contextkeys"
	"search-service/internal/contracts"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"

	"github.com/mmcloughlin/geohash"
	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// messagePublisher - то, что нужно адаптеру от rabbitmq_producer.Publisher
type messagePublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// RabbitMQSearchEventsAdapter публикует аналитические события поиска
type RabbitMQSearchEventsAdapter struct {
	producer   messagePublisher
	routingKey string
	now        func() time.Time
}

func NewRabbitMQSearchEventsAdapter(producer messagePublisher, routingKey string) (*RabbitMQSearchEventsAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("routingKey cannot be empty")
	}
	return &RabbitMQSearchEventsAdapter{producer: producer, routingKey: routingKey, now: time.Now}, nil
}

// PublishSearchPerformed проверяет событие по схеме и отправляет его в обменник
func (a *RabbitMQSearchEventsAdapter) PublishSearchPerformed(ctx context.Context, event domain.SearchPerformedEvent) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "RabbitMQSearchEventsAdapter",
		"routing_key": a.routingKey,
		"session_id":  event.SessionID.String(),
	})

	body, err := json.Marshal(toSearchPerformedDTO(event))
	if err != nil {
		logger.Error("Failed to marshal search event", err, nil)
		return fmt.Errorf("failed to marshal search event: %w", err)
	}

	// невалидное событие не уходит в брокер
	if err := contracts.ValidateEvent(domain.SearchPerformedEventType, domain.SearchPerformedEventVersion, body); err != nil {
		logger.Error("Search event does not match its schema", err, nil)
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    a.now(),
		MessageId:    event.EventID.String(),
		Headers: amqp.Table{
			"event-type":    domain.SearchPerformedEventType,
			"event-version": domain.SearchPerformedEventVersion,
		},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		logger.Error("Failed to publish search event", err, nil)
		return err
	}

	logger.Debug("Search event published", port.Fields{"event_id": event.EventID.String()})
	return nil
}

func toSearchPerformedDTO(event domain.SearchPerformedEvent) SearchPerformedEventDTO {
	dto := SearchPerformedEventDTO{
		EventID:         event.EventID,
		SessionID:       event.SessionID,
		OccurredAt:      event.OccurredAt.UTC(),
		PropertyType:    event.PropertyType,
		Location:        event.Location,
		ActiveFilters:   event.ActiveFilters,
		Page:            event.Page,
		TotalProperties: event.TotalProperties,
		SortBy:          event.SortBy,
		SortOrder:       event.SortOrder,
	}
	if dto.ActiveFilters == nil {
		dto.ActiveFilters = []string{}
	}
	if event.Latitude != nil && event.Longitude != nil {
		dto.Geohash = geohash.EncodeWithPrecision(*event.Latitude, *event.Longitude, constants.SearchEventGeohashPrecision)
	}
	return dto
}
