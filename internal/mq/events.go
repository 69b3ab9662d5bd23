package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jjudge-oj/userauth/types"
)

const EventUserRegistered = "user.registered"

// UserRegistered is the payload announced after an account is created. It
// never carries credential material.
type UserRegistered struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

// UserEvents publishes user lifecycle events onto one channel.
type UserEvents struct {
	mq      *MQ
	channel string
}

func NewUserEvents(m *MQ, channel string) *UserEvents {
	if channel == "" {
		channel = EventUserRegistered
	}
	return &UserEvents{mq: m, channel: channel}
}

// UserRegistered announces user. It returns the broker message id.
func (e *UserEvents) UserRegistered(ctx context.Context, user types.User) (string, error) {
	registeredAt := user.CreatedAt
	if registeredAt.IsZero() {
		registeredAt = time.Now().UTC()
	}

	data, err := json.Marshal(UserRegistered{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		RegisteredAt: registeredAt,
	})
	if err != nil {
		return "", err
	}

	return e.mq.Publish(ctx, e.channel, data, map[string]string{
		"event":        EventUserRegistered,
		"content_type": "application/json",
	})
}
