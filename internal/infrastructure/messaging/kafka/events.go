package kafka

import (
	"context"

	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/logging"
)

// Publisher is the subset of Producer the event adapter needs.
type Publisher interface {
	Publish(ctx context.Context, msg *ProducerMessage) error
}

// ScreeningEvents publishes screening.completed events keyed by entity so
// that events for one entity stay ordered.
type ScreeningEvents struct {
	producer Publisher
	topic    string
	source   string
	logger   logging.Logger
}

// NewScreeningEvents returns an adapter publishing to topic.
func NewScreeningEvents(p Publisher, topic, source string, log logging.Logger) *ScreeningEvents {
	if topic == "" {
		topic = TopicScreeningCompleted
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ScreeningEvents{producer: p, topic: topic, source: source, logger: log}
}

// PublishCompleted emits the completion event of rec.
func (e *ScreeningEvents) PublishCompleted(ctx context.Context, rec *risk.ScreeningRecord) error {
	payload := CompletedPayload(rec)
	env, err := NewEventEnvelope(EventScreeningCompleted, e.source, payload)
	if err != nil {
		return err
	}
	env.Metadata = map[string]string{"mode": rec.Mode, "query": rec.Query}

	msg, err := env.ToMessage(e.topic, payload.Entity)
	if err != nil {
		return err
	}
	if err := e.producer.Publish(ctx, msg); err != nil {
		return err
	}
	e.logger.Debug("Screening event published",
		logging.String("event_id", env.EventID),
		logging.String("screening_id", rec.ID))
	return nil
}

// CompletedPayload flattens rec into the event payload.
func CompletedPayload(rec *risk.ScreeningRecord) ScreeningCompletedPayload {
	p := ScreeningCompletedPayload{
		ScreeningID:   rec.ID,
		ModelVersion:  rec.ModelVersion,
		OccurredAt:    rec.CreatedAt.UTC(),
		TopTypologies: []string{},
	}
	if r := rec.Result; r != nil {
		p.Entity = r.Entity
		p.Status = string(r.Status)
		p.RiskScore = r.RiskScore
		for _, t := range r.TopTypologies {
			p.TopTypologies = append(p.TopTypologies, string(t))
		}
	}
	if p.Entity == "" {
		p.Entity = rec.Query
	}
	return p
}

//Personal.AI order the ending
