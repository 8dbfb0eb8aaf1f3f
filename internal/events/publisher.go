package events

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/thisnaeem/artigma/internal/model"
)

// EventPublisher feeds the notification worker with account lifecycle
// events so admins hear about new signups and users hear about approval
// decisions.
type EventPublisher interface {
	PublishUserRegistered(user *model.User) error
	PublishUserStatusChanged(user *model.User) error
}

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(natsURL string) (EventPublisher, error) {
	nc, err := nats.Connect(natsURL)

	if err != nil {
		return nil, err
	}

	return &NatsPublisher{conn: nc}, nil
}

type UserRegisteredEvent struct {
	EventType    string    `json:"event_type"`
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	Name         *string   `json:"name,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

type UserStatusChangedEvent struct {
	EventType string       `json:"event_type"`
	UserID    uuid.UUID    `json:"user_id"`
	Email     string       `json:"email"`
	Status    model.Status `json:"status"`
	ChangedAt time.Time    `json:"changed_at"`
}

func (p *NatsPublisher) PublishUserRegistered(user *model.User) error {
	event := UserRegisteredEvent{
		EventType:    "user.registered",
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.Name,
		RegisteredAt: time.Now(),
	}

	eventJSON, err := json.Marshal(event)

	if err != nil {
		log.Printf("Error marshalling event JSON: %v", err)
		return err
	}

	subject := "user.registered"
	err = p.conn.Publish(subject, eventJSON)

	if err != nil {
		log.Printf("Error publishing to NATS: %v", err)
		return err
	}

	log.Printf("Published event to NATS on subject '%s'", subject)

	return nil
}

func (p *NatsPublisher) PublishUserStatusChanged(user *model.User) error {
	event := UserStatusChangedEvent{
		EventType: "user.status_changed",
		UserID:    user.ID,
		Email:     user.Email,
		Status:    user.Status,
		ChangedAt: time.Now(),
	}

	eventJSON, err := json.Marshal(event)

	if err != nil {
		return err
	}

	subject := "user.status_changed"
	err = p.conn.Publish(subject, eventJSON)

	if err != nil {
		log.Printf("Error publishing to NATS: %v", err)

		return err
	}

	log.Printf("Published event to NATS on subject '%s' for user '%s'", subject, user.ID)

	return nil
}

// NoopPublisher drops every event. Tests select it explicitly.
type NoopPublisher struct{}

func (NoopPublisher) PublishUserRegistered(*model.User) error    { return nil }
func (NoopPublisher) PublishUserStatusChanged(*model.User) error { return nil }
