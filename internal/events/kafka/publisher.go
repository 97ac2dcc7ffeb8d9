package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/tidebank/corebank/internal/domain"
)

type entryEvent struct {
	RecordedAt    string `json:"recorded_at"`
	Kind          string `json:"kind"`
	Amount        string `json:"amount"`
	AccountNumber string `json:"account_number"`
	Description   string `json:"description"`
}

// Publisher emits one message per recorded ledger entry, keyed by
// account number so entries for the same account stay in partition
// order.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
	}
}

func (p *Publisher) PublishEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	data, err := json.Marshal(entryEvent{
		RecordedAt:    entry.RecordedAt,
		Kind:          string(entry.Kind),
		Amount:        entry.Amount.StringFixed(2),
		AccountNumber: entry.AccountNumber,
		Description:   entry.Description,
	})
	if err != nil {
		return fmt.Errorf("PublishEntry: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(entry.AccountNumber),
		Value: data,
	}); err != nil {
		return fmt.Errorf("PublishEntry: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
