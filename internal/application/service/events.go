package service

import (
	"context"

	"github.com/google/uuid"
)

type ProfileEventType string

const (
	ProfileEventUserCreated    ProfileEventType = "user.created"
	ProfileEventProfileUpdated ProfileEventType = "profile.updated"
)

type ProfileEventPayload struct {
	EventType  ProfileEventType `json:"event_type"`
	UserID     uuid.UUID        `json:"user_id"`
	ExternalID string           `json:"external_id"`
	Industry   string           `json:"industry,omitempty"`
}

type EventPublisher interface {
	PublishProfileEvent(ctx context.Context, payload ProfileEventPayload) error
}
