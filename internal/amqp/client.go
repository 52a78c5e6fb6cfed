package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"upreport/internal/core"

	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// RequestHandler runs one report request.
type RequestHandler func(ctx context.Context, req *ReportRequest) error

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
	eventsQueue  string
}

// NewClient connects and declares the exchange, the request queue and,
// when eventsQueue is not empty, the completion events queue.
func NewClient(url, exchangeName, queueName, eventsQueue string) (*Client, error) {
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
		eventsQueue:  eventsQueue,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queues: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	for _, q := range []string{c.queueName, c.eventsQueue} {
		if q == "" {
			continue
		}
		if _, err := c.channel.QueueDeclare(
			q,     // name
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
		// routing key is the queue name on a direct exchange
		if err := c.channel.QueueBind(q, q, c.exchangeName, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", q, err)
		}
	}

	// One report at a time per consumer.
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}
	return nil
}

// PublishReportRequest queues a report request.
func (c *Client) PublishReportRequest(ctx context.Context, req *ReportRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid report request: %w", err)
	}
	body, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, c.queueName, req.RequestID, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published report request",
		"request_id", req.RequestID,
		"report", req.Kind,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

// PublishReportCompleted publishes a completion event. Without an events
// queue it does nothing.
func (c *Client) PublishReportCompleted(ctx context.Context, evt *ReportCompleted) error {
	if c.eventsQueue == "" {
		return nil
	}
	body, err := evt.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, c.eventsQueue, evt.RunID, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published report completed event",
		"request_id", evt.RequestID,
		"run_id", evt.RunID,
		"status", evt.Status,
		"queue", c.eventsQueue)
	return nil
}

// ReportCompleted publishes the completion event of run.
func (c *Client) ReportCompleted(ctx context.Context, requestID string, run core.RunRecord) error {
	return c.PublishReportCompleted(ctx, NewReportCompleted(requestID, run))
}

func (c *Client) publish(ctx context.Context, routingKey, messageID string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    messageID,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// ConsumeReportRequests delivers requests to handler until ctx is done.
func (c *Client) ConsumeReportRequests(ctx context.Context, handler RequestHandler) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming report requests", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			handleDelivery(ctx, delivery, handler)
		}
	}
}

// Outcome of one delivery, returned for tests and logs.
type outcome string

const (
	outcomeAcked    outcome = "acked"
	outcomeRejected outcome = "rejected"
	outcomeRequeued outcome = "requeued"
	outcomeDropped  outcome = "dropped"
)

// handleDelivery settles one delivery. Undecodable messages are rejected
// without requeue. A failed request is requeued once; when it fails again
// after redelivery it is dropped.
func handleDelivery(ctx context.Context, d amqp091.Delivery, handler RequestHandler) outcome {
	req, err := ReportRequestFromJSON(d.Body)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to unmarshal message", "error", err, "message_id", d.MessageId)
		d.Nack(false, false)
		return outcomeRejected
	}

	slog.InfoContext(ctx, "Processing report request",
		"request_id", req.RequestID,
		"report", req.Kind,
		"redelivered", d.Redelivered)

	if err := handler(ctx, req); err != nil {
		if d.Redelivered {
			slog.ErrorContext(ctx, "Report request failed again, dropping",
				"error", err,
				"request_id", req.RequestID)
			d.Nack(false, false)
			return outcomeDropped
		}
		slog.ErrorContext(ctx, "Failed to handle report request",
			"error", err,
			"request_id", req.RequestID)
		d.Nack(false, true)
		return outcomeRequeued
	}

	d.Ack(false)
	slog.InfoContext(ctx, "Successfully processed report request", "request_id", req.RequestID)
	return outcomeAcked
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
