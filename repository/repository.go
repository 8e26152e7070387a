package repository

import (
	"context"
	"errors"
	"time"

	"goshortlink/models"
)

var (
	ErrRecordNotFound = errors.New("record not found")
)

// Repository is the persistent source of truth for url records.
//
// Insert must hand out ids atomically and monotonically; everything else in
// the system (code derivation in particular) leans on that guarantee.
type Repository interface {
	// Insert stores a new record and returns the store-assigned id.
	Insert(ctx context.Context, url string, expiresAt *time.Time) (int64, error)
	// UpdateCode fills in the derived short code on an inserted record.
	UpdateCode(ctx context.Context, id int64, code string) error
	// FindByCode returns ErrRecordNotFound when no record carries the code.
	FindByCode(ctx context.Context, code string) (*models.Url, error)
	// FindActiveByURL looks up a non-expiring record with the exact url,
	// for write-path deduplication.
	FindActiveByURL(ctx context.Context, url string) (*models.Url, error)
	// IncrementClicks bumps the click counter with a single atomic update.
	IncrementClicks(ctx context.Context, code string) error
	// DeleteByCode removes a record; deleting an absent code is not an error.
	DeleteByCode(ctx context.Context, code string) error
	// DeleteExpired removes every expired record and returns their codes.
	DeleteExpired(ctx context.Context) ([]string, error)
	// ListActiveByPopularity returns up to limit live records, most
	// clicked first.
	ListActiveByPopularity(ctx context.Context, limit int) ([]models.Url, error)
	Ping(ctx context.Context) error
}
