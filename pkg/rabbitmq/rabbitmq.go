package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"katalog/internal/models"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// ReportQueue receives one message per finished reconciliation run.
const ReportQueue = "catalog_reconciliation"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *zap.Logger
	// amqp channels are not safe for concurrent publishing.
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares ReportQueue.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		ReportQueue, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", ReportQueue, err)
	}

	logger.Info("rabbitmq client connected", zap.String("queue", ReportQueue))

	return &Client{
		conn:    conn,
		channel: ch,
		logger:  logger.Named("rabbitmq"),
	}, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// PublishReport sends report to ReportQueue as a persistent JSON message.
func (c *Client) PublishReport(ctx context.Context, report *models.ReconciliationReport) error {
	if c.channel == nil {
		return errors.New("RabbitMQ channel is not available")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := reportMessage(report, time.Now())
	if err != nil {
		return err
	}

	c.mu.Lock()
	err = c.channel.Publish(
		"",          // exchange: default exchange
		ReportQueue, // routing key: the queue name
		false,       // mandatory
		false,       // immediate
		msg,
	)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish report %s: %w", report.RunID, err)
	}

	c.logger.Debug("report published", zap.String("run_id", report.RunID), zap.Int("bytes", len(msg.Body)))
	return nil
}

func reportMessage(report *models.ReconciliationReport, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal report to JSON: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    report.RunID,
		Type:         string(report.Mode),
		Timestamp:    now,
	}, nil
}
