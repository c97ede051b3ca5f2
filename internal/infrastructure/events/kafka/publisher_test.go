package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/narwhalmedia/scraper/internal/domain/events"
)

func TestPublishEvent(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	itemID := uuid.New()

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != itemID.String() {
			return errors.New("message is not keyed by aggregate id")
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var envelope map[string]interface{}
		if err := json.Unmarshal(value, &envelope); err != nil {
			return err
		}
		if envelope["event_type"] != events.EventTypeItemScraped {
			return errors.New("unexpected event type")
		}
		return nil
	})

	publisher := NewPublisherFromProducer(producer, "scrape-events", zaptest.NewLogger(t))
	event := events.NewItemScraped(itemID, "movie", time.Now())
	event.StreamsAdded = 3

	require.NoError(t, publisher.PublishEvent(context.Background(), event))
	require.NoError(t, publisher.Close())
}

func TestPublishEventFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewPublisherFromProducer(producer, "scrape-events", zaptest.NewLogger(t))
	err := publisher.PublishEvent(context.Background(), events.NewItemScraped(uuid.New(), "show", time.Now()))
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, publisher.Close())
}

func TestPublishEventCancelled(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	publisher := NewPublisherFromProducer(producer, "scrape-events", zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, publisher.PublishEvent(ctx, events.NewItemScraped(uuid.New(), "show", time.Now())), context.Canceled)
	require.NoError(t, publisher.Close())
}
