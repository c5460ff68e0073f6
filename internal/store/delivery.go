package store

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a delivery.
type Status string

const (
	StatusQueued Status = "queued"
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusQueued, StatusSent, StatusFailed:
		return true
	}
	return false
}

// Final reports whether no further transition is expected.
func (s Status) Final() bool {
	return s == StatusSent || s == StatusFailed
}

// Delivery is one logged send.
type Delivery struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// maxErrorLen caps the stored error text.
const maxErrorLen = 1024

func truncateError(msg string) string {
	if len(msg) <= maxErrorLen {
		return msg
	}
	cut := maxErrorLen
	// Back off to a rune boundary.
	for cut > 0 && msg[cut]&0xC0 == 0x80 {
		cut--
	}
	return msg[:cut]
}
