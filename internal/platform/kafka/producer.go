// Package kafka wraps franz-go for the audit relay: a synchronous producer
// and topic provisioning.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer publishes records and waits for the broker acknowledgement.
type Producer struct {
	client *kgo.Client
	logger *slog.Logger
}

type Option func(*options)

type options struct {
	clientID     string
	logger       *slog.Logger
	dialTimeout  time.Duration
	produceRetry int
}

func WithClientID(id string) Option {
	return func(o *options) {
		o.clientID = id
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// NewProducer connects to brokers. The connection is lazy; use Ping to
// fail fast at startup.
func NewProducer(brokers []string, opts ...Option) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	o := options{clientID: "labmanager", dialTimeout: 5 * time.Second, produceRetry: 3}
	for _, opt := range opts {
		opt(&o)
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(o.clientID),
		kgo.DialTimeout(o.dialTimeout),
		kgo.RecordRetries(o.produceRetry),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &Producer{client: client, logger: o.logger}, nil
}

// Ping checks that at least one broker answers.
func (p *Producer) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx); err != nil {
		return fmt.Errorf("kafka ping: %w", err)
	}
	return nil
}

// Publish writes one record to topic, keyed by key.
func (p *Producer) Publish(ctx context.Context, topic string, key, value []byte, headers map[string]string) error {
	rec := &kgo.Record{Topic: topic, Key: key, Value: value}
	for k, v := range headers {
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}
	return nil
}

// EnsureTopic creates topic when it does not exist yet.
func (p *Producer) EnsureTopic(ctx context.Context, topic string, partitions int32, replication int16) error {
	adm := kadm.NewClient(p.client)
	resp, err := adm.CreateTopics(ctx, partitions, replication, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	if p.logger != nil {
		p.logger.InfoContext(ctx, "kafka topic ready", "topic", topic)
	}
	return nil
}

func (p *Producer) Close() {
	p.client.Close()
}
