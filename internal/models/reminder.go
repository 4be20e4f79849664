package models

import "time"

// ReminderMode selects how often a chat's reminder job fires
type ReminderMode string

const (
	ReminderDaily ReminderMode = "daily"
	ReminderTest  ReminderMode = "test"
)

// ReminderJob is the per-chat scheduled digest
type ReminderJob struct {
	ChatID   int64         `json:"chat_id"`
	Path     string        `json:"path"` // workbook re-read on every tick
	Mode     ReminderMode  `json:"mode"`
	EntryID  int           `json:"entry_id"`
	NextRun  *time.Time    `json:"next_run"`
	LastRun  *time.Time    `json:"last_run"`
	Schedule string        `json:"schedule"` // human readable, e.g. "ежедневно в 10:00"
	Interval time.Duration `json:"interval"` // test mode only
}

// IsTestMode returns true if the job runs on the short verification interval
func (j *ReminderJob) IsTestMode() bool {
	return j.Mode == ReminderTest
}
