package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/narwhalmedia/scraper/internal/application/scrape"
	"github.com/narwhalmedia/scraper/internal/logger"
	apperrors "github.com/narwhalmedia/scraper/pkg/errors"
)

// CommandHandler executes decoded scrape commands
type CommandHandler interface {
	HandleScrapeCommand(ctx context.Context, cmd scrape.ScrapeCommand) error
}

// message is the part of jetstream.Msg the consumer relies on
type message interface {
	Data() []byte
	Subject() string
	Metadata() (*jetstream.MsgMetadata, error)
	Ack() error
	Nak() error
	Term() error
}

// RequestConsumer consumes scrape commands from a durable JetStream consumer
type RequestConsumer struct {
	js         jetstream.JetStream
	handler    CommandHandler
	logger     *zap.Logger
	stream     string
	subject    string
	durable    string
	workers    int
	ackWait    time.Duration
	maxDeliver int
	deadLetter func(ctx context.Context, subject string, data []byte) error
}

// NewRequestConsumer creates a consumer for the configured request subject
func NewRequestConsumer(client *Client, handler CommandHandler, logger *zap.Logger) *RequestConsumer {
	workers := client.config.ConsumerWorkers
	if workers < 1 {
		workers = 1
	}
	c := &RequestConsumer{
		js:         client.JetStream(),
		handler:    handler,
		logger:     logger.Named("consumer"),
		stream:     client.config.StreamName,
		subject:    client.config.RequestSubject,
		durable:    client.config.DurableName,
		workers:    workers,
		ackWait:    5 * time.Minute,
		maxDeliver: 5,
	}
	c.deadLetter = func(ctx context.Context, subject string, data []byte) error {
		_, err := c.js.Publish(ctx, subject, data)
		return err
	}
	return c
}

// Start consumes requests until ctx is cancelled
func (c *RequestConsumer) Start(ctx context.Context) error {
	consumer, err := c.js.CreateOrUpdateConsumer(ctx, c.stream, jetstream.ConsumerConfig{
		Durable:       c.durable,
		Description:   "Scrape request consumer",
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       c.ackWait,
		MaxDeliver:    c.maxDeliver,
		MaxAckPending: c.workers * 4,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		FilterSubject: c.subject,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	c.logger.Info("request consumer started",
		zap.String("stream", c.stream),
		zap.String("subject", c.subject),
		zap.Int("workers", c.workers),
	)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("request consumer stopping")
			return nil
		default:
		}

		batch, err := consumer.Fetch(c.workers, jetstream.FetchMaxWait(5*time.Second))
		if err != nil {
			c.logger.Error("failed to fetch messages", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		var g errgroup.Group
		g.SetLimit(c.workers)
		for msg := range batch.Messages() {
			msg := msg
			g.Go(func() error {
				c.processMessage(ctx, msg)
				return nil
			})
		}
		_ = g.Wait()
	}
}

// processMessage handles a single request
func (c *RequestConsumer) processMessage(ctx context.Context, msg message) {
	var cmd scrape.ScrapeCommand
	if err := json.Unmarshal(msg.Data(), &cmd); err != nil {
		c.logger.Error("failed to unmarshal scrape command",
			zap.Error(err),
			zap.String("subject", msg.Subject()),
		)
		c.reject(ctx, msg, err)
		return
	}

	log := logger.WithRequest(c.logger, cmd.RequestID, cmd.Item.ID)
	err := c.handler.HandleScrapeCommand(ctx, cmd)
	switch {
	case err == nil:
		if ackErr := msg.Ack(); ackErr != nil {
			log.Error("failed to acknowledge message", zap.Error(ackErr))
		}
	case apperrors.IsBadRequest(err) || apperrors.IsNotFound(err):
		log.Error("scrape command rejected", zap.Error(err))
		c.reject(ctx, msg, err)
	default:
		log.Warn("scrape command failed", zap.Error(err))
		c.handleMessageError(ctx, msg, err)
	}
}

// reject dead-letters a message that can never succeed
func (c *RequestConsumer) reject(ctx context.Context, msg message, err error) {
	c.sendToDeadLetterQueue(ctx, msg, err)
	if termErr := msg.Term(); termErr != nil {
		c.logger.Error("failed to terminate message", zap.Error(termErr))
	}
}

// handleMessageError redelivers a failed message until MaxDeliver is reached
func (c *RequestConsumer) handleMessageError(ctx context.Context, msg message, err error) {
	metadata, _ := msg.Metadata()

	if metadata != nil && metadata.NumDelivered >= uint64(c.maxDeliver) {
		c.sendToDeadLetterQueue(ctx, msg, err)
		_ = msg.Ack()
		return
	}
	_ = msg.Nak()
}

// sendToDeadLetterQueue sends failed messages to DLQ
func (c *RequestConsumer) sendToDeadLetterQueue(ctx context.Context, msg message, originalErr error) {
	dlqMessage := DeadLetterMessage{
		OriginalSubject: msg.Subject(),
		OriginalData:    msg.Data(),
		Error:           originalErr.Error(),
		Timestamp:       time.Now(),
		Consumer:        c.durable,
	}
	if metadata, _ := msg.Metadata(); metadata != nil {
		dlqMessage.NumDelivered = metadata.NumDelivered
		dlqMessage.Stream = metadata.Stream
	}

	data, err := json.Marshal(dlqMessage)
	if err != nil {
		c.logger.Error("failed to marshal DLQ message", zap.Error(err))
		return
	}

	subject := fmt.Sprintf("dlq.%s", c.durable)
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.deadLetter(pubCtx, subject, data); err != nil {
		c.logger.Error("failed to send message to DLQ",
			zap.Error(err),
			zap.String("subject", subject),
		)
		return
	}
	c.logger.Warn("message sent to dead letter queue",
		zap.String("original_subject", msg.Subject()),
		zap.String("error", originalErr.Error()),
		zap.Uint64("deliveries", dlqMessage.NumDelivered),
	)
}

// DeadLetterMessage represents a message in the dead letter queue
type DeadLetterMessage struct {
	OriginalSubject string    `json:"original_subject"`
	OriginalData    []byte    `json:"original_data"`
	Error           string    `json:"error"`
	Timestamp       time.Time `json:"timestamp"`
	NumDelivered    uint64    `json:"num_delivered"`
	Stream          string    `json:"stream"`
	Consumer        string    `json:"consumer"`
}
