package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/bodega-inventory/internal/core/events"
)

type SessionRevoker interface {
	RevokeUserSessions(ctx context.Context, userID int64) error
}

// EventHandler reacts to account changes published by the user module.
type EventHandler struct {
	revoker SessionRevoker
	logger  *slog.Logger
}

func NewEventHandler(revoker SessionRevoker, logger *slog.Logger) *EventHandler {
	return &EventHandler{revoker: revoker, logger: logger}
}

// Register subscribes session revocation to deletions and password changes,
// and the audit log to every account event.
func (h *EventHandler) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeUserDeleted, h.HandleRevokeSessions)
	bus.Subscribe(events.EventTypeUserPasswordChanged, h.HandleRevokeSessions)

	for _, t := range []string{
		events.EventTypeUserCreated,
		events.EventTypeUserUpdated,
		events.EventTypeUserDeleted,
		events.EventTypeUserPasswordChanged,
	} {
		bus.Subscribe(t, h.HandleAudit)
	}
}

func (h *EventHandler) HandleRevokeSessions(ctx context.Context, event events.Event) error {
	ue, ok := event.(*events.UserEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}
	return h.revoker.RevokeUserSessions(ctx, ue.UserID)
}

func (h *EventHandler) HandleAudit(ctx context.Context, event events.Event) error {
	ue, ok := event.(*events.UserEvent)
	if !ok {
		return nil
	}
	h.logger.InfoContext(ctx, "audit: account change",
		"event", ue.EventType(),
		"event_id", ue.EventID(),
		"user_id", ue.UserID,
		"username", ue.Username,
		"role", ue.Role,
		"actor_id", ue.ActorID)
	return nil
}
