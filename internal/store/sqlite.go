package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/habitcanvas/timerd/internal/model"

	_ "modernc.org/sqlite"
)

const sessionColumns = `id, timer_id, label, focus_s, completed, started_at, finished_at, day`

// ErrNotFound is returned when a session is not found.
var ErrNotFound = errors.New("session not found")

// Compile-time interface satisfaction check.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the SQLite database at dbPath and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession inserts a finished session.
func (s *SQLiteStore) CreateSession(ctx context.Context, sess *model.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.TimerID, sess.Label, sess.FocusS, sess.Completed,
		sess.StartedAt.UTC(), sess.FinishedAt.UTC(), sess.Day,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// ListSessions returns up to limit sessions, most recently finished first.
func (s *SQLiteStore) ListSessions(ctx context.Context, limit int) ([]*model.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY finished_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// GetSessionStats summarizes session history as seen on now's calendar day
// in now's location. Totals, averages and streaks count completed sessions;
// daily minutes count all focused time, including stopped sessions.
func (s *SQLiteStore) GetSessionStats(ctx context.Context, now time.Time) (*model.SessionStats, error) {
	stats := &model.SessionStats{}

	var avgFocusS float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(focus_s), 0) FROM sessions WHERE completed = 1`,
	).Scan(&stats.TotalSessions, &avgFocusS)
	if err != nil {
		return nil, fmt.Errorf("query session totals: %w", err)
	}
	stats.AverageSessionMinutes = math.Round(avgFocusS/60*10) / 10

	days, err := s.completedDays(ctx)
	if err != nil {
		return nil, err
	}
	today := truncateDay(now)
	stats.Streak = currentStreak(days, today)
	stats.LongestStreak = longestStreak(days)

	stats.DailyStats, err = s.dailyMinutes(ctx, today)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// completedDays returns the distinct days with a completed session, ascending.
func (s *SQLiteStore) completedDays(ctx context.Context) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT day FROM sessions WHERE completed = 1 ORDER BY day`)
	if err != nil {
		return nil, fmt.Errorf("query session days: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("scan session day: %w", err)
		}
		d, err := time.Parse(model.DayLayout, day)
		if err != nil {
			return nil, fmt.Errorf("parse session day %q: %w", day, err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session days: %w", err)
	}
	return days, nil
}

func (s *SQLiteStore) dailyMinutes(ctx context.Context, today time.Time) ([]model.DailyMinutes, error) {
	first := today.AddDate(0, 0, -(StatsWindow - 1))

	rows, err := s.db.QueryContext(ctx,
		`SELECT day, SUM(focus_s) FROM sessions WHERE day >= ? AND day <= ? GROUP BY day`,
		first.Format(model.DayLayout), today.Format(model.DayLayout))
	if err != nil {
		return nil, fmt.Errorf("query daily minutes: %w", err)
	}
	defer rows.Close()

	secondsByDay := make(map[string]int)
	for rows.Next() {
		var day string
		var seconds int
		if err := rows.Scan(&day, &seconds); err != nil {
			return nil, fmt.Errorf("scan daily minutes: %w", err)
		}
		secondsByDay[day] = seconds
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily minutes: %w", err)
	}

	daily := make([]model.DailyMinutes, 0, StatsWindow)
	for d := first; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format(model.DayLayout)
		daily = append(daily, model.DailyMinutes{Date: key, Minutes: secondsByDay[key] / 60})
	}
	return daily, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*model.Session, error) {
	sess := &model.Session{}
	if err := row.Scan(
		&sess.ID, &sess.TimerID, &sess.Label, &sess.FocusS, &sess.Completed,
		&sess.StartedAt, &sess.FinishedAt, &sess.Day,
	); err != nil {
		return nil, err
	}
	return sess, nil
}

// truncateDay returns midnight UTC of t's calendar day in t's location, the
// same representation time.Parse gives a stored day.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// currentStreak counts consecutive days ending today, or ending yesterday
// when nothing has been completed today yet. days must be ascending.
func currentStreak(days []time.Time, today time.Time) int {
	if len(days) == 0 {
		return 0
	}

	cursor := today
	last := days[len(days)-1]
	if last.Before(today) {
		cursor = today.AddDate(0, 0, -1)
	}

	streak := 0
	for i := len(days) - 1; i >= 0; i-- {
		if !days[i].Equal(cursor) {
			break
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// longestStreak returns the longest run of consecutive days. days must be
// ascending and distinct.
func longestStreak(days []time.Time) int {
	longest, run := 0, 0
	for i, d := range days {
		if i > 0 && d.Equal(days[i-1].AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return longest
}
