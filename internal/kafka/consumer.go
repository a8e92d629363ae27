package kafka

import (
	"context"
	"encoding/json"
	"log"

	"github.com/JoaoZanelato/galeria-web/internal/events"
	"github.com/JoaoZanelato/galeria-web/internal/redis"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Consumer replays share.changes events into the Redis access-control cache
// so permission lookups can be served without hitting the database.
type Consumer struct {
	brokers      []string
	groupID      string
	redisService *redis.Service
}

func NewConsumer(brokers []string, groupID string, redisService *redis.Service) *Consumer {
	return &Consumer{
		brokers:      brokers,
		groupID:      groupID,
		redisService: redisService,
	}
}

// StartShareEventConsumer consumes share events until the context is cancelled.
func (c *Consumer) StartShareEventConsumer(ctx context.Context) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: c.brokers,
		GroupID: c.groupID,
		Topic:   events.ShareChangesTopic,
	})
	defer reader.Close()

	for {
		message, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Failed to read share event: %v", err)
			continue
		}

		var event events.ShareEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			log.Printf("Failed to unmarshal share event: %v", err)
			continue
		}

		if err := c.handleShareEvent(ctx, &event); err != nil {
			log.Printf("Failed to handle share event %s: %v", event.EventType, err)
		}
	}
}

func (c *Consumer) handleShareEvent(ctx context.Context, event *events.ShareEvent) error {
	resourceID, err := uuid.Parse(event.ResourceID)
	if err != nil {
		return err
	}
	recipientID, err := uuid.Parse(event.RecipientID)
	if err != nil {
		return err
	}

	switch event.EventType {
	case events.ShareCreated:
		return c.redisService.AddResourceAccess(ctx, resourceID, recipientID, event.Permission)
	case events.ShareRevoked:
		return c.redisService.RemoveResourceAccess(ctx, resourceID, recipientID)
	default:
		log.Printf("Ignoring unknown share event type: %s", event.EventType)
		return nil
	}
}
