package storage

import (
	"context"

	"github.com/shohag/hookbridge/internal/models"
)

type Storage interface {
	// RecordEvent stores a received event. It reports false when an event
	// with the same provider event id was already recorded.
	RecordEvent(ctx context.Context, ev *models.Event) (bool, error)
	GetEventByEventID(ctx context.Context, eventID string) (*models.Event, error)
	ListEvents(ctx context.Context, limit, offset int) ([]models.Event, error)
	CountEvents(ctx context.Context) (*Counts, error)

	Migrate(ctx context.Context) error
	Close() error
}

type Counts struct {
	Total        int64 `json:"total"`
	Customer     int64 `json:"customer"`
	Subscription int64 `json:"subscription"`
	Payment      int64 `json:"payment"`
}
