package models

import (
	"time"
)

// Url is the durable record behind a short code.
//
// ID is assigned by the store exactly once and never reused. ShortCode is
// derived from ID after insert, which is why it starts out empty and its
// index cannot be unique (concurrent phase-one rows all carry ""); code
// uniqueness follows from the id being unique. Expired rows are deleted
// physically, so there is no soft-delete column.
type Url struct {
	ID          int64  `gorm:"primaryKey"`
	ShortCode   string `gorm:"index;size:10"`
	OriginalURL string `gorm:"size:2048;index"`
	CreatedAt   time.Time
	ExpiresAt   *time.Time `gorm:"index"`
	ClickCount  int64
}

// Expired reports whether the record is logically dead. A nil ExpiresAt
// means the record never expires.
func (u *Url) Expired() bool {
	return u.ExpiresAt != nil && u.ExpiresAt.Before(time.Now())
}
