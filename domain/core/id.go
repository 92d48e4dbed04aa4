package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SessionID identifies one analysis session
type SessionID string

// NewSessionID creates a new unique session identifier using UUID v7 for time-ordered generation
func NewSessionID() SessionID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return SessionID(id.String())
}

// String returns the string representation
func (id SessionID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id SessionID) IsEmpty() bool {
	return id == ""
}

// ParseSessionID parses a string into SessionID, accepting only well-formed UUIDs
func ParseSessionID(s string) (SessionID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("session ID cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid session ID %q: %w", s, err)
	}
	return SessionID(parsed.String()), nil
}
