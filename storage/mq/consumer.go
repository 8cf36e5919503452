package mq

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"OnDuty/pkg/errors"
	"OnDuty/pkg/logger"
)

// MessageHandler processes one delivery. The context carries the publisher's
// trace when the message headers hold one.
type MessageHandler func(ctx context.Context, body []byte) error

type ConsumeOptions struct {
	Queue         string
	ConsumerTag   string
	PrefetchCount int
	Handler       MessageHandler
}

// Consume blocks draining one queue. Handler errors nack-and-requeue, except
// SkipMessageError which acks and drops the delivery.
func Consume(opts ConsumeOptions) error {
	conn := Connection()
	if conn == nil {
		return fmt.Errorf("RabbitMQ connection is nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if opts.PrefetchCount > 0 {
		if err := ch.Qos(opts.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	msgs, err := ch.Consume(
		opts.Queue,
		opts.ConsumerTag,
		false, // auto-ack = false
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	logger.Logger.Info("Started consuming messages",
		zap.String("queue", opts.Queue),
		zap.String("consumer_tag", opts.ConsumerTag),
		zap.Int("prefetch_count", opts.PrefetchCount),
	)

	for msg := range msgs {
		ctx, span := startConsumeSpan(opts.Queue, msg.Headers)
		start := time.Now()

		if err := opts.Handler(ctx, msg.Body); err != nil {
			if errors.IsSkipMessageError(err) {
				logger.Logger.Info("Skipping message",
					zap.String("queue", opts.Queue),
					zap.Error(err),
				)
				finishConsumeSpan(ctx, span, opts.Queue, start, "skipped", nil)
				msg.Ack(false)
				continue
			}

			logger.Logger.Error("Failed to process message",
				zap.String("queue", opts.Queue),
				zap.String("consumer_tag", opts.ConsumerTag),
				zap.Error(err),
			)

			finishConsumeSpan(ctx, span, opts.Queue, start, "requeued", err)
			msg.Nack(false, true) // requeue
			continue
		}

		finishConsumeSpan(ctx, span, opts.Queue, start, "processed", nil)
		msg.Ack(false)
	}

	return nil
}
