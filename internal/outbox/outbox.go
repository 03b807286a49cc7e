package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	StatusPending = "pending"
	StatusSent    = "sent"
)

// Event is a persisted notification/analytics event. Rows are written first,
// then delivery is attempted; a failed delivery leaves the row pending so it
// stays observable, but never fails the operation that emitted it.
type Event struct {
	gorm.Model
	Topic   string     `json:"topic" gorm:"index;not null"`
	Payload string     `json:"payload" gorm:"type:jsonb"`
	Status  string     `json:"status" gorm:"default:'pending';index"`
	SentAt  *time.Time `json:"sent_at"`
}

// Sink delivers events to the external notification/analytics collaborators.
type Sink interface {
	Deliver(ctx context.Context, event *Event) error
}

// Recorder is the write side used by the domain services.
type Recorder interface {
	Record(topic string, payload interface{})
}

// LogSink writes events to the structured log. Stands in for the real
// notification and analytics collaborators.
type LogSink struct {
	Log zerolog.Logger
}

func (s *LogSink) Deliver(ctx context.Context, event *Event) error {
	s.Log.Info().Str("topic", event.Topic).RawJSON("payload", []byte(event.Payload)).Msg("outbox event delivered")
	return nil
}

// Emitter persists events and attempts best-effort delivery inline.
type Emitter struct {
	db   *gorm.DB
	sink Sink
	log  zerolog.Logger
}

func NewEmitter(db *gorm.DB, sink Sink, log zerolog.Logger) *Emitter {
	return &Emitter{db: db, sink: sink, log: log}
}

// Record writes the event row and tries to deliver it. Every failure is
// logged and swallowed: emission must never abort the primary operation.
func (e *Emitter) Record(topic string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		e.log.Error().Err(err).Str("topic", topic).Msg("outbox payload marshal failed")
		return
	}

	event := &Event{Topic: topic, Payload: string(raw), Status: StatusPending}
	if err := e.db.Create(event).Error; err != nil {
		e.log.Error().Err(err).Str("topic", topic).Msg("outbox event persist failed")
		return
	}

	if err := e.sink.Deliver(context.Background(), event); err != nil {
		e.log.Warn().Err(err).Str("topic", topic).Uint("event_id", event.ID).Msg("outbox delivery failed, row left pending")
		return
	}

	now := time.Now()
	event.Status = StatusSent
	event.SentAt = &now
	if err := e.db.Save(event).Error; err != nil {
		e.log.Warn().Err(err).Uint("event_id", event.ID).Msg("outbox status update failed")
	}
}

// Pending returns undelivered events, oldest first. Used by ops tooling to
// inspect or replay stuck events.
func (e *Emitter) Pending(limit int) ([]Event, error) {
	var events []Event
	if err := e.db.Where("status = ?", StatusPending).Order("created_at asc").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
