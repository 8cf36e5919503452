package mq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"OnDuty/config"
)

const (
	// Delayed exchange for schedule triggers; requires the RabbitMQ
	// delayed-message plugin.
	ScheduleExchange = "schedule.delayed"

	// Direct exchange for reactive events (session creation).
	EventsExchange = "attendance.events"

	QueueClockInReminder = "schedule.clock_in_reminder"
	QueueLateArrival     = "schedule.late_arrival_alert"
	QueueClockOutRemind  = "schedule.clock_out_reminder"
	QueueDailySummary    = "schedule.daily_summary"
	QueueSessionCreated  = "events.session_created"
)

var (
	conn     *amqp.Connection
	connOnce sync.Once
	connErr  error
)

func Init() error {
	connOnce.Do(func() {
		url := config.Cfg.GetRabbitMQURL()
		conn, connErr = amqp.Dial(url)
		if connErr != nil {
			return
		}

		ch, err := conn.Channel()
		if err != nil {
			connErr = err
			return
		}
		defer ch.Close()

		connErr = declareTopology(ch)
	})

	return connErr
}

func Connection() *amqp.Connection {
	return conn
}

func Close(ctx context.Context) error {
	if conn == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(
		ScheduleExchange,
		"x-delayed-message",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		amqp.Table{"x-delayed-type": "direct"},
	); err != nil {
		return fmt.Errorf("failed to declare schedule exchange: %w", err)
	}

	if err := ch.ExchangeDeclare(
		EventsExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare events exchange: %w", err)
	}

	bindings := []struct {
		queue    string
		exchange string
	}{
		{QueueClockInReminder, ScheduleExchange},
		{QueueLateArrival, ScheduleExchange},
		{QueueClockOutRemind, ScheduleExchange},
		{QueueDailySummary, ScheduleExchange},
		{QueueSessionCreated, EventsExchange},
	}

	for _, b := range bindings {
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", b.queue, err)
		}
		// Routing key matches the queue name throughout.
		if err := ch.QueueBind(b.queue, b.queue, b.exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", b.queue, err)
		}
	}

	return nil
}
