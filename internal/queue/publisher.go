package queue

import "context"

// Exchange is the topic exchange user lifecycle events are published to.
const Exchange = "user.events"

// Routing keys for user lifecycle events.
const (
	KeyUserRegistered = "user.registered"
	KeyUserLoggedIn   = "user.loggedin"
	KeyUserDeleted    = "user.deleted"
)

// Publisher emits user lifecycle events to interested services.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
	Close() error
}

// NoopPublisher drops events; used when no broker is configured and in tests.
type NoopPublisher struct{}

func NewNoop() Publisher { return NoopPublisher{} }

func (NoopPublisher) Publish(ctx context.Context, key string, event any) error { return nil }
func (NoopPublisher) Close() error                                             { return nil }

type UserRegistered struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type UserLoggedIn struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type UserDeleted struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
