// Package session keeps the per-browser story state between turns.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vocaltales/storyteller/pkg/story"
)

// ErrNotFound is returned by Get when no session exists for the id.
var ErrNotFound = errors.New("session not found")

// Session is the state of one storytelling session. Each session owns its
// history; sessions never share one.
type Session struct {
	ID        string        `json:"id"`
	Voice     string        `json:"voice"`
	History   story.History `json:"history"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func New(voice string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New().String(),
		Voice:     voice,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Store persists sessions.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	Close() error
}
