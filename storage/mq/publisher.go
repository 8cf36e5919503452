package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"OnDuty/pkg/logger"
)

var (
	publisherCh *amqp.Channel
	pubMutex    sync.RWMutex
)

func getPublisherChannel() (*amqp.Channel, error) {
	pubMutex.RLock()
	if publisherCh != nil && !publisherCh.IsClosed() {
		ch := publisherCh
		pubMutex.RUnlock()
		return ch, nil
	}
	pubMutex.RUnlock()

	pubMutex.Lock()
	defer pubMutex.Unlock()

	if publisherCh != nil && !publisherCh.IsClosed() {
		return publisherCh, nil
	}
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection is nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open publish channel: %w", err)
	}
	publisherCh = ch

	// Recreate lazily on the next publish after a broker-side close.
	go func() {
		<-ch.NotifyClose(make(chan *amqp.Error, 1))

		pubMutex.Lock()
		publisherCh = nil
		pubMutex.Unlock()

		logger.Logger.Warn("Publisher channel closed, will recreate on next publish",
			zap.String("component", "rabbitmq"),
		)
	}()

	logger.Logger.Info("Publisher channel created",
		zap.String("component", "rabbitmq"),
	)
	return ch, nil
}

func publish(ctx context.Context, exchange, routingKey string, headers amqp.Table, body interface{}) error {
	ch, err := getPublisherChannel()
	if err != nil {
		return err
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	// The span's trace context rides in the headers so the consumer joins
	// the same trace.
	ctx, span, headers := startPublishSpan(ctx, exchange, routingKey, headers)
	start := time.Now()

	err = ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         bodyBytes,
		Headers:      headers,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	finishPublishSpan(ctx, span, routingKey, start, err)
	return err
}

// PublishDelayedMessage publishes through the delayed exchange; the broker
// holds the message for the given delay before routing it. The x-delay
// header is in milliseconds per the delayed-message plugin.
func PublishDelayedMessage(ctx context.Context, exchange, routingKey string, delay time.Duration, body interface{}) error {
	headers := amqp.Table{"x-delay": delay.Milliseconds()}
	if err := publish(ctx, exchange, routingKey, headers, body); err != nil {
		return fmt.Errorf("failed to publish delayed message: %w", err)
	}
	return nil
}

// PublishMessage publishes an immediate message.
func PublishMessage(ctx context.Context, exchange, routingKey string, body interface{}) error {
	return publish(ctx, exchange, routingKey, nil, body)
}
