// Package eventbus publishes and subscribes to domain events over watermill.
//
// With a NATS URL configured messages travel over NATS (JetStream unless
// disabled); otherwise an in-process channel pub/sub is used.
package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/tipster/app/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nkeys"
)

const (
	// CorrelationIDKey is the message metadata key carrying the correlation id.
	CorrelationIDKey = "correlation_id"
	// TopicKey is the message metadata key carrying the topic.
	TopicKey = "topic"
)

// Publisher publishes a JSON-encoded payload to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// Config selects and configures the transport.
type Config struct {
	NATSURL          string
	NKeySeed         string
	DisableJetStream bool
	QueueGroup       string
}

// EventBus owns a watermill publisher and subscriber pair.
type EventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     *slog.Logger
}

// New connects to NATS when cfg.NATSURL is set, else builds an in-process bus.
func New(cfg Config, logger *slog.Logger) (*EventBus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	wmLogger := watermill.NewSlogLogger(logger)

	if cfg.NATSURL == "" {
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)
		logger.Info("Event bus using in-process channels")
		return &EventBus{publisher: ch, subscriber: ch, logger: logger}, nil
	}

	opts, err := natsOptions(cfg)
	if err != nil {
		return nil, err
	}
	marshaler := &wmnats.NATSMarshaler{}
	jsConfig := wmnats.JetStreamConfig{Disabled: cfg.DisableJetStream}

	publisher, err := wmnats.NewPublisher(wmnats.PublisherConfig{
		URL:         cfg.NATSURL,
		NatsOptions: opts,
		Marshaler:   marshaler,
		JetStream:   jsConfig,
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	subscriber, err := wmnats.NewSubscriber(wmnats.SubscriberConfig{
		URL:              cfg.NATSURL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		CloseTimeout:     30 * time.Second,
		AckWaitTimeout:   30 * time.Second,
		NatsOptions:      opts,
		Unmarshaler:      marshaler,
		JetStream:        jsConfig,
	}, wmLogger)
	if err != nil {
		_ = publisher.Close()
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}

	logger.Info("Event bus connected to NATS", attr.String("url", cfg.NATSURL), attr.Bool("jetstream", !cfg.DisableJetStream))
	return &EventBus{publisher: publisher, subscriber: subscriber, logger: logger}, nil
}

// NewWithPubSub wraps existing watermill components.
func NewWithPubSub(publisher message.Publisher, subscriber message.Subscriber, logger *slog.Logger) *EventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventBus{publisher: publisher, subscriber: subscriber, logger: logger}
}

func natsOptions(cfg Config) ([]nc.Option, error) {
	opts := []nc.Option{
		nc.Name("tipster"),
		nc.RetryOnFailedConnect(true),
		nc.MaxReconnects(-1),
	}
	if cfg.NKeySeed == "" {
		return opts, nil
	}

	kp, err := nkeys.FromSeed([]byte(cfg.NKeySeed))
	if err != nil {
		return nil, fmt.Errorf("invalid nkey seed: %w", err)
	}
	pub, err := kp.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("failed to derive nkey public key: %w", err)
	}
	return append(opts, nc.Nkey(pub, kp.Sign)), nil
}

// Publish marshals payload as JSON and publishes it to topic.
func (b *EventBus) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(TopicKey, topic)
	if id := attr.CorrelationID(ctx); id != "" {
		msg.Metadata.Set(CorrelationIDKey, id)
	}
	msg.SetContext(ctx)

	if err := b.publisher.Publish(topic, msg); err != nil {
		b.logger.ErrorContext(ctx, "Failed to publish message",
			attr.ExtractCorrelationID(ctx),
			attr.String("topic", topic),
			attr.Error(err),
		)
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	b.logger.DebugContext(ctx, "Message published",
		attr.ExtractCorrelationID(ctx),
		attr.String("topic", topic),
		attr.String("message_id", msg.UUID),
	)
	return nil
}

func (b *EventBus) Publisher() message.Publisher { return b.publisher }

func (b *EventBus) Subscriber() message.Subscriber { return b.subscriber }

// Close closes the publisher and, when distinct, the subscriber.
func (b *EventBus) Close() error {
	err := b.publisher.Close()
	if s, ok := b.subscriber.(message.Publisher); !ok || s != b.publisher {
		err = errors.Join(err, b.subscriber.Close())
	}
	return err
}

// ContextFromMessage restores the correlation id carried by msg.
func ContextFromMessage(msg *message.Message) context.Context {
	ctx := msg.Context()
	if id := msg.Metadata.Get(CorrelationIDKey); id != "" {
		ctx = attr.WithCorrelationID(ctx, id)
	}
	return ctx
}

var _ Publisher = (*EventBus)(nil)
