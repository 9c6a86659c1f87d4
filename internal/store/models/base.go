package models

import (
	"time"

	"github.com/google/uuid"
)

// Base carries the fields every stored record shares.
type Base struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// PrepareCreate fills in the ID and creation time before the first write.
func (b *Base) PrepareCreate(now time.Time) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now.UTC()
	}
}
