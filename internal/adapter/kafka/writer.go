package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/city-climate-stats/internal/config"
	"github.com/couchcryptid/city-climate-stats/internal/domain"
	"github.com/couchcryptid/city-climate-stats/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
	maxAttempts    = 5
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes table rows to a Kafka topic.
// It implements pipeline.Sink.
type Writer struct {
	writer  messageWriter
	logger  *slog.Logger
	metrics *observability.Metrics
	backoff time.Duration
}

// NewWriter creates a Kafka producer for the configured stats topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger, metrics: metrics, backoff: initialBackoff}
}

// LoadBatch publishes every record in one WriteMessages call, retrying with
// exponential backoff.
func (w *Writer) LoadBatch(ctx context.Context, _ time.Month, records []domain.MonthlyStats) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}

	backoff := w.backoff
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = w.writer.WriteMessages(ctx, msgs...); err == nil {
			w.metrics.RecordsWritten.WithLabelValues("kafka").Add(float64(len(msgs)))
			return nil
		}
		if attempt == maxAttempts {
			break
		}
		w.logger.Warn("publish failed, retrying", "error", err, "attempt", attempt, "backoff", backoff)
		if !retry.SleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	return fmt.Errorf("publish %d records after %d attempts: %w", len(msgs), maxAttempts, err)
}

// Close flushes pending messages and closes the producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// statsMessage is the wire form of a row. Missing statistics are null.
type statsMessage struct {
	City                            string    `json:"city"`
	Year                            int       `json:"year"`
	Month                           int       `json:"month"`
	PercentDaysPrecipitation        *float64  `json:"percent_days_precipitation"`
	PercentDaysExtremePrecipitation *float64  `json:"percent_days_extreme_precipitation"`
	PercentDaysBelowZero            *float64  `json:"percent_days_below_zero_degree"`
	MinDailyMeanTemperature         *float64  `json:"minimum_daily_mean_temperature"`
	MaxDailyMeanTemperature         *float64  `json:"maximum_daily_mean_temperature"`
	MedianDailyMeanTemperature      *float64  `json:"median_daily_mean_temperature"`
	MeanTemperature                 *float64  `json:"mean_temperature"`
	ExtremeThreshold                *float64  `json:"extreme_threshold_mm"`
	GeneratedAt                     time.Time `json:"generated_at"`
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// messageKey returns e.g. "Oslo|2024|12".
func messageKey(r domain.MonthlyStats) string {
	return fmt.Sprintf("%s|%d|%02d", r.City, r.Year, int(r.Month))
}

// serializeToMessage marshals a row into a Kafka message.
func serializeToMessage(r domain.MonthlyStats) (kafkago.Message, error) {
	data, err := json.Marshal(statsMessage{
		City:                            r.City,
		Year:                            r.Year,
		Month:                           int(r.Month),
		PercentDaysPrecipitation:        nullable(r.PercentDaysPrecipitation),
		PercentDaysExtremePrecipitation: nullable(r.PercentDaysExtremePrecipitation),
		PercentDaysBelowZero:            nullable(r.PercentDaysBelowZero),
		MinDailyMeanTemperature:         nullable(r.MinDailyMeanTemperature),
		MaxDailyMeanTemperature:         nullable(r.MaxDailyMeanTemperature),
		MedianDailyMeanTemperature:      nullable(r.MedianDailyMeanTemperature),
		MeanTemperature:                 nullable(r.MeanTemperature),
		ExtremeThreshold:                nullable(r.ExtremeThreshold),
		GeneratedAt:                     r.GeneratedAt,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize stats %s: %w", messageKey(r), err)
	}
	return kafkago.Message{
		Key:   []byte(messageKey(r)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "month", Value: []byte(domain.MonthAbbrev(r.Month))},
			{Key: "generated_at", Value: []byte(r.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
