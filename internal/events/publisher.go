package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher writes market events to Kafka for downstream consumers
// (notifications, analytics). Publication happens after commit and is best
// effort; the transaction outcome never depends on it.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *Publisher) PublishStakePlaced(ctx context.Context, e StakePlaced) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.BetID),
		Value: b,
	})
}

func (p *Publisher) PublishMarketClosed(ctx context.Context, e MarketClosed) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.BetID),
		Value: b,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
