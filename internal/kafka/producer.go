package kafka

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/JoaoZanelato/galeria-web/internal/events"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	galleryWriter *kafka.Writer
	shareWriter   *kafka.Writer
}

// NewProducer creates a new Kafka producer with writers for different topics
func NewProducer(brokers []string) *Producer {
	galleryWriter := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        events.GalleryActivityTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	shareWriter := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        events.ShareChangesTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	return &Producer{
		galleryWriter: galleryWriter,
		shareWriter:   shareWriter,
	}
}

// PublishGalleryEvent publishes a gallery event to the gallery.activity topic
func (p *Producer) PublishGalleryEvent(ctx context.Context, event *events.GalleryEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal gallery event: %v", err)
		return err
	}

	message := kafka.Message{
		Key:   []byte(event.ResourceID),
		Value: value,
		Time:  event.Timestamp,
	}

	if err := p.galleryWriter.WriteMessages(ctx, message); err != nil {
		log.Printf("Failed to publish gallery event: %v", err)
		return err
	}

	log.Printf("Published gallery event: %s for %s %s", event.EventType, event.ResourceType, event.ResourceID)
	return nil
}

// PublishShareEvent publishes a share event to the share.changes topic
func (p *Producer) PublishShareEvent(ctx context.Context, event *events.ShareEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal share event: %v", err)
		return err
	}

	message := kafka.Message{
		Key:   []byte(event.ResourceID),
		Value: value,
		Time:  event.Timestamp,
	}

	if err := p.shareWriter.WriteMessages(ctx, message); err != nil {
		log.Printf("Failed to publish share event: %v", err)
		return err
	}

	log.Printf("Published share event: %s for %s %s", event.EventType, event.ResourceType, event.ResourceID)
	return nil
}

// PublishFriendEvent publishes a friend event to the gallery.activity topic
func (p *Producer) PublishFriendEvent(ctx context.Context, event *events.FriendEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal friend event: %v", err)
		return err
	}

	message := kafka.Message{
		Key:   []byte(event.FriendshipID),
		Value: value,
		Time:  event.Timestamp,
	}

	if err := p.galleryWriter.WriteMessages(ctx, message); err != nil {
		log.Printf("Failed to publish friend event: %v", err)
		return err
	}

	log.Printf("Published friend event: %s for friendship %s", event.EventType, event.FriendshipID)
	return nil
}

// Close closes the Kafka writers
func (p *Producer) Close() error {
	var err1, err2 error
	if p.galleryWriter != nil {
		err1 = p.galleryWriter.Close()
	}
	if p.shareWriter != nil {
		err2 = p.shareWriter.Close()
	}

	if err1 != nil {
		return err1
	}
	return err2
}
