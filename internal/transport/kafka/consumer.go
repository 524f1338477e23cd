// Package kafka ingests transactions from a kafka topic as an alternative
// write path to the REST api.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mkarpenko/stock_profit_service/config"
	"github.com/mkarpenko/stock_profit_service/internal/model"
	"github.com/mkarpenko/stock_profit_service/internal/service"
	"github.com/mkarpenko/stock_profit_service/utils"
)

type Ingestor interface {
	AddTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, error)
}

type Consumer struct {
	reader *kafka.Reader
	svc    Ingestor
}

func NewConsumer(cfg *config.Config, svc Ingestor) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  strings.Split(cfg.Kafka.Brokers, ","),
			Topic:    cfg.Kafka.Topic,
			GroupID:  cfg.Kafka.GroupID,
			MinBytes: 1e3,
			MaxBytes: 1e6,
			MaxWait:  500 * time.Millisecond,
		}),
		svc: svc,
	}
}

// Run blocks reading messages until ctx is cancelled. Malformed or invalid
// messages are logged and skipped, the consumer keeps going.
func (c *Consumer) Run(ctx context.Context) error {
	defer func() {
		if err := c.reader.Close(); err != nil {
			slog.Error("kafka reader close error", slog.String("err", err.Error()))
		}
	}()

	slog.Info("kafka consumer started", slog.String("topic", c.reader.Config().Topic))

	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		// The producer's message key doubles as the request id so log
		// lines correlate across services; without a key a fresh one is
		// generated.
		msgCtx := utils.CtxWithRqID(ctx, string(m.Key))
		rqID := utils.GetRequestIDFromCtx(msgCtx)

		var tx model.Transaction
		if err := json.Unmarshal(m.Value, &tx); err != nil {
			slog.Warn("bad kafka message", slog.String("rqID", rqID), slog.String("err", err.Error()))
			continue
		}
		if tx.Timestamp.IsZero() {
			tx.Timestamp = time.Now().UTC()
		}

		created, err := c.svc.AddTransaction(msgCtx, tx)
		if err != nil {
			if errors.Is(err, service.ErrInvalidTransaction) {
				slog.Warn("invalid transaction skipped", slog.String("rqID", rqID), slog.String("err", err.Error()))
				continue
			}
			slog.Error("add transaction from kafka failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
			continue
		}

		slog.Debug("transaction ingested", slog.String("rqID", rqID), slog.Int64("transactionID", created.ID))
	}
}
