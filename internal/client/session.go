package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Session identifies one chat session for the workflow engine's correlation.
// It is created once per UI session and passed to every call; nothing in this
// module interprets the id.
type Session struct {
	ID        string
	CreatedAt time.Time
}

func NewSession() Session {
	now := time.Now()
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return Session{
		ID:        fmt.Sprintf("session_%d_%s", now.UnixMilli(), suffix),
		CreatedAt: now,
	}
}

// Reset returns a fresh session; the receiver is left unchanged.
func (s Session) Reset() Session { return NewSession() }
