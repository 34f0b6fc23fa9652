package model

import "time"

// Session outcome constants.
const (
	OutcomeCompleted = "completed"
	OutcomeStopped   = "stopped"
)

// DayLayout is the calendar-day format used for Session.Day and daily stats.
const DayLayout = "2006-01-02"

// Session is one recorded focus session. FocusS counts only the seconds the
// timer was running; paused spans are excluded.
type Session struct {
	ID         string    `json:"id"`
	TimerID    string    `json:"timer_id"`
	Label      string    `json:"label"`
	FocusS     int       `json:"focus_s"`
	Completed  bool      `json:"completed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Day        string    `json:"day"`
}

// Outcome returns OutcomeCompleted or OutcomeStopped.
func (s *Session) Outcome() string {
	if s.Completed {
		return OutcomeCompleted
	}
	return OutcomeStopped
}

// DailyMinutes is the focused minutes recorded on one calendar day.
type DailyMinutes struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

// SessionStats summarizes completed sessions.
type SessionStats struct {
	TotalSessions         int            `json:"total_sessions"`
	AverageSessionMinutes float64        `json:"average_session_minutes"`
	Streak                int            `json:"streak"`
	LongestStreak         int            `json:"longest_streak"`
	DailyStats            []DailyMinutes `json:"daily_stats"`
}
