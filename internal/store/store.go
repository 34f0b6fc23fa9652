package store

import (
	"context"
	"time"

	"github.com/habitcanvas/timerd/internal/model"
)

// StatsWindow is the number of calendar days, ending today, reported in
// SessionStats.DailyStats.
const StatsWindow = 7

// Store defines the persistence operations for session history.
type Store interface {
	CreateSession(ctx context.Context, s *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	ListSessions(ctx context.Context, limit int) ([]*model.Session, error)
	GetSessionStats(ctx context.Context, now time.Time) (*model.SessionStats, error)
	Close() error
}
