package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/groblegark/okrd/internal/events"
	"github.com/groblegark/okrd/internal/model"
	"github.com/groblegark/okrd/internal/store"
)

// OkrServer holds the handler dependencies shared by every route.
type OkrServer struct {
	store     store.Store
	publisher events.Publisher
	sseHub    *sseHub
}

// NewOkrServer returns a new OkrServer backed by the given store and publisher.
func NewOkrServer(s store.Store, p events.Publisher) *OkrServer {
	return &OkrServer{
		store:     s,
		publisher: p,
		sseHub:    newSSEHub(),
	}
}

// recordAndPublish persists an event to the store and publishes it to NATS.
// Both operations are best-effort; failures are logged but do not block the caller.
func (s *OkrServer) recordAndPublish(ctx context.Context, topic, entityID, actor string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Warn("failed to marshal event", "topic", topic, "entity_id", entityID, "error", err)
		return
	}
	if err := s.store.RecordEvent(ctx, &model.Event{
		Topic:    topic,
		EntityID: entityID,
		Actor:    actor,
		Payload:  payload,
	}); err != nil {
		slog.Warn("failed to record event", "topic", topic, "entity_id", entityID, "error", err)
	}
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "entity_id", entityID, "error", err)
	}
	s.broadcastEvent(topic, event)
}

// inputError indicates invalid user input.
// Transport layers map this to 400.
type inputError string

func (e inputError) Error() string { return string(e) }
