package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"

	"meeting_sync/internal/domain"
)

// RabbitMQ carries queued sync tasks and run-completed events over one
// direct exchange.
type RabbitMQ struct {
	conn             *amqp.Connection
	channel          *amqp.Channel
	exchange         string
	routingKey       string
	eventsRoutingKey string
	queueName        string
	logger           *slog.Logger
}

type Config struct {
	URL              string
	Exchange         string
	RoutingKey       string
	QueueName        string
	EventsRoutingKey string
	EventsQueueName  string
}

func NewRabbitMQ(cfg Config, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declare(ch, cfg); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"queue", cfg.QueueName,
		"routing_key", cfg.RoutingKey,
		"events_routing_key", cfg.EventsRoutingKey,
	)

	return &RabbitMQ{
		conn:             conn,
		channel:          ch,
		exchange:         cfg.Exchange,
		routingKey:       cfg.RoutingKey,
		eventsRoutingKey: cfg.EventsRoutingKey,
		queueName:        cfg.QueueName,
		logger:           logger.With("component", "rabbitmq"),
	}, nil
}

func declare(ch *amqp.Channel, cfg Config) error {
	err := ch.ExchangeDeclare(
		cfg.Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	bindings := []struct{ queue, key string }{
		{cfg.QueueName, cfg.RoutingKey},
		{cfg.EventsQueueName, cfg.EventsRoutingKey},
	}
	for _, b := range bindings {
		if b.queue == "" {
			continue
		}
		q, err := ch.QueueDeclare(
			b.queue,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", b.queue, err)
		}
		if err := ch.QueueBind(q.Name, b.key, cfg.Exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", b.queue, err)
		}
	}
	return nil
}

// EnqueueSync queues a sync request for the workers.
func (r *RabbitMQ) EnqueueSync(ctx context.Context, task *domain.SyncTask) error {
	if task.RequestedAt.IsZero() {
		task.RequestedAt = time.Now().UTC()
	}
	if err := r.publish(ctx, r.routingKey, task); err != nil {
		return fmt.Errorf("enqueue sync: %w", err)
	}

	r.logger.Debug("sync task enqueued",
		"meeting_id", task.MeetingID,
		"sync_type", task.SyncType,
		"origin", task.Origin,
	)
	return nil
}

func (r *RabbitMQ) PublishRunCompleted(ctx context.Context, event *domain.RunCompletedEvent) error {
	if err := r.publish(ctx, r.eventsRoutingKey, event); err != nil {
		return fmt.Errorf("publish run completed: %w", err)
	}

	r.logger.Debug("published run completed",
		"meeting_id", event.MeetingID,
		"run_id", event.RunID,
		"status", event.Status,
	)
	return nil
}

func (r *RabbitMQ) publish(ctx context.Context, key string, msg any) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = r.channel.PublishWithContext(
		ctx,
		r.exchange,
		key,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// Consume opens a dedicated channel on the task queue. At most prefetch
// tasks are unacknowledged at a time.
func (r *RabbitMQ) Consume(ctx context.Context, consumer string, prefetch int) (<-chan amqp.Delivery, error) {
	ch, err := r.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open consumer channel: %w", err)
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := ch.Consume(r.queueName, consumer, false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("consume %s: %w", r.queueName, err)
	}

	go func() {
		<-ctx.Done()
		ch.Close()
	}()

	r.logger.Info("consuming sync tasks", "queue", r.queueName, "prefetch", prefetch)
	return deliveries, nil
}

// DecodeTask parses a queued sync task.
func DecodeTask(body []byte) (*domain.SyncTask, error) {
	var task domain.SyncTask
	if err := json.Unmarshal(body, &task); err != nil {
		return nil, fmt.Errorf("decode sync task: %w", err)
	}
	if task.MeetingID <= 0 {
		return nil, fmt.Errorf("decode sync task: invalid meeting id %d", task.MeetingID)
	}
	if _, err := domain.ParseSyncType(string(task.SyncType)); err != nil {
		return nil, fmt.Errorf("decode sync task: %w", err)
	}
	if task.SyncType == "" {
		task.SyncType = domain.SyncFull
	}
	return &task, nil
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
