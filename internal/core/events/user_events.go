package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserCreated         = "user.created"
	EventTypeUserUpdated         = "user.updated"
	EventTypeUserDeleted         = "user.deleted"
	EventTypeUserPasswordChanged = "user.password_changed"
)

// UserEvent describes a change made to an account by a super_admin.
type UserEvent struct {
	BaseEvent
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	ActorID  int64  `json:"actor_id"`
}

func NewUserEvent(eventType string, userID int64, username, role string, actorID int64) *UserEvent {
	return &UserEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":  userID,
				"username": username,
				"role":     role,
				"actor_id": actorID,
			},
		},
		UserID:   userID,
		Username: username,
		Role:     role,
		ActorID:  actorID,
	}
}
