package model

import (
	"time"

	"github.com/google/uuid"
)

// RequestContext is the audit record attached to every money-bearing row:
// who acted, from which IP, with which user agent. The core never interprets
// it beyond storing the id.
type RequestContext struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	IPAddress string    `gorm:"not null"`
	UserAgent string    `gorm:"not null"`
	CreatedAt time.Time
}
