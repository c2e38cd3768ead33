// Package worker turns screening.requested messages into screenings.
package worker

import (
	"context"

	"github.com/turtacn/Graphyte-Intelligence/internal/application/screening"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

// Analyzer is the part of the screening service the worker drives.
type Analyzer interface {
	Analyze(ctx context.Context, req *screening.AnalyzeRequest) (*screening.Screening, error)
}

// RequestHandler consumes screening requests. Completion events are
// published by the service itself.
type RequestHandler struct {
	analyzer   Analyzer
	deadLetter kafka.Publisher
	dlTopic    string
	metrics    *prometheus.AppMetrics
	logger     logging.Logger
}

// Option configures a RequestHandler.
type Option func(*RequestHandler)

// WithDeadLetter routes malformed requests straight to topic instead of
// burning the consumer's retries on them.
func WithDeadLetter(p kafka.Publisher, topic string) Option {
	return func(h *RequestHandler) {
		h.deadLetter = p
		h.dlTopic = topic
	}
}

// WithMetrics records handled messages on m.
func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(h *RequestHandler) { h.metrics = m }
}

// NewRequestHandler creates a handler over analyzer.
func NewRequestHandler(analyzer Analyzer, log logging.Logger, opts ...Option) *RequestHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	h := &RequestHandler{analyzer: analyzer, logger: log.Named("worker")}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle implements kafka.MessageHandler. Requests that can never succeed
// are dead-lettered and acknowledged; everything else is returned so the
// consumer retries it.
func (h *RequestHandler) Handle(ctx context.Context, msg *kafka.Message) error {
	payload, err := kafka.DecodeScreeningRequest(msg)
	if err != nil {
		return h.reject(ctx, msg, err)
	}

	sc, err := h.analyzer.Analyze(ctx, &screening.AnalyzeRequest{
		Entity: payload.Entity,
		Mode:   payload.Mode,
		Limit:  payload.Limit,
	})
	if err != nil {
		if permanent(err) {
			return h.reject(ctx, msg, err)
		}
		prometheus.RecordMessageHandled(h.metrics, msg.Topic, false)
		h.logger.Warn("screening request failed, will retry",
			logging.String("entity", payload.Entity),
			logging.Int64("offset", msg.Offset),
			logging.Err(err))
		return err
	}

	prometheus.RecordMessageHandled(h.metrics, msg.Topic, true)
	h.logger.Info("screening request handled",
		logging.String("screening_id", sc.ID),
		logging.String("entity", sc.Result.Entity),
		logging.String("status", string(sc.Result.Status)),
		logging.Int("risk_score", sc.Result.RiskScore))
	return nil
}

// permanent reports failures that a redelivery cannot fix.
func permanent(err error) bool {
	return errors.IsValidation(err) || errors.IsCode(err, errors.ErrCodeSerialization)
}

func (h *RequestHandler) reject(ctx context.Context, msg *kafka.Message, cause error) error {
	prometheus.RecordMessageHandled(h.metrics, msg.Topic, false)
	h.logger.Warn("rejecting screening request",
		logging.String("topic", msg.Topic),
		logging.Int64("offset", msg.Offset),
		logging.Err(cause))

	if h.deadLetter == nil || h.dlTopic == "" {
		return nil
	}
	headers := make(map[string]string, len(msg.Headers)+2)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers["original_topic"] = msg.Topic
	headers["error_message"] = cause.Error()

	err := h.deadLetter.Publish(ctx, &kafka.ProducerMessage{
		Topic:   h.dlTopic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	})
	prometheus.RecordEventPublished(h.metrics, h.dlTopic, err == nil)
	if err != nil {
		// Let the consumer retry and dead-letter it on its own path.
		return errors.Wrap(err, errors.ErrCodeMessagingError, "dead-letter screening request")
	}
	return nil
}

//Personal.AI order the ending
