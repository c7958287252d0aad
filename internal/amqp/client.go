// Package amqp publishes ledger events to RabbitMQ. Publishing is a
// best-effort side channel: a failed publish is logged by the caller and
// never rolls back a committed ledger row.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = c.channel.QueueBind(
		c.queueName,
		c.queueName, // routing key mirrors the queue name on a direct exchange
		c.exchangeName,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishExpenseRecorded publishes an expense-recorded event.
func (c *Client) PublishExpenseRecorded(ctx context.Context, id int64, date, category string, amountCents int64) error {
	msg := NewExpenseRecordedMessage(id, date, category, amountCents)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, body); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published expense recorded event",
		"id", id,
		"category", category,
		"exchange", c.exchangeName)
	return nil
}

// PublishImpulseAlert publishes an impulse-threshold event for a date.
func (c *Client) PublishImpulseAlert(ctx context.Context, date string) error {
	msg := NewImpulseAlertMessage(date)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, body); err != nil {
		return err
	}
	slog.WarnContext(ctx, "Published impulse alert event",
		"date", date,
		"exchange", c.exchangeName)
	return nil
}

func (c *Client) publish(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName,
		c.queueName,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// Consume dispatches queue deliveries to the handlers by message kind.
// Undecodable messages are rejected without requeue; handler failures are
// requeued for a retry. Blocks until the context is cancelled or the
// channel closes.
func (c *Client) Consume(
	ctx context.Context,
	onExpense func(context.Context, *ExpenseRecordedMessage) error,
	onAlert func(context.Context, *ImpulseAlertMessage) error,
) error {
	msgs, err := c.channel.Consume(
		c.queueName,
		"",    // consumer
		false, // auto-ack, we ack manually
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming ledger events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			if err := c.dispatch(ctx, delivery.Body, onExpense, onAlert); err != nil {
				if isDecodeError(err) {
					slog.ErrorContext(ctx, "Dropping undecodable message", "error", err)
					_ = delivery.Nack(false, false)
				} else {
					slog.ErrorContext(ctx, "Failed to handle message, requeueing", "error", err)
					_ = delivery.Nack(false, true)
				}
				continue
			}
			_ = delivery.Ack(false)
		}
	}
}

type decodeError struct{ err error }

func (e decodeError) Error() string { return e.err.Error() }
func (e decodeError) Unwrap() error { return e.err }

func isDecodeError(err error) bool {
	var de decodeError
	return errors.As(err, &de)
}

func (c *Client) dispatch(
	ctx context.Context,
	body []byte,
	onExpense func(context.Context, *ExpenseRecordedMessage) error,
	onAlert func(context.Context, *ImpulseAlertMessage) error,
) error {
	kind, err := MessageKind(body)
	if err != nil {
		return decodeError{err}
	}
	switch kind {
	case KindExpenseRecorded:
		msg, err := ExpenseRecordedMessageFromJSON(body)
		if err != nil {
			return decodeError{err}
		}
		return onExpense(ctx, msg)
	case KindImpulseAlert:
		msg, err := ImpulseAlertMessageFromJSON(body)
		if err != nil {
			return decodeError{err}
		}
		return onAlert(ctx, msg)
	}
	return decodeError{fmt.Errorf("unknown message kind %q", kind)}
}

func (c *Client) Close() error {
	var firstErr error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			firstErr = err
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
