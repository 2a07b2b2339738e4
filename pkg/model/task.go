package model

import (
	"fmt"
	"time"
)

// Task statuses as stored by the production dashboard.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusDone       = "Done"
)

// ResponseStatus is an attendee's RSVP state for a scheduled task.
// An attendee with no entry in AttendeeResponses has not responded yet.
type ResponseStatus string

var (
	Accepted  ResponseStatus = "accepted"
	Declined  ResponseStatus = "declined"
	Tentative ResponseStatus = "tentative"
)

func (s ResponseStatus) String() string {
	return string(s)
}

// Valid reports whether s is one of the three recordable responses.
func (s ResponseStatus) Valid() bool {
	return s == Accepted || s == Declined || s == Tentative
}

// AttendeeResponse is one attendee's recorded response on a task.
// A task holds at most one entry per email (case-insensitive).
type AttendeeResponse struct {
	Email  string         `json:"email"`
	Status ResponseStatus `json:"status"`
}

// Task is a production work item, optionally schedulable as a
// calendar event.
type Task struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Area   string `json:"area"`
	Month  string `json:"month"`
	Week   string `json:"week"`
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`

	IsScheduled   bool   `json:"isScheduled"`
	ScheduledDate string `json:"scheduledDate,omitempty"` // "2006-01-02"
	ScheduledTime string `json:"scheduledTime,omitempty"` // "15:04"

	Responsible []string `json:"responsible,omitempty"`
	VisibleTo   []string `json:"visibleTo,omitempty"`
	Visibility  string   `json:"visibility,omitempty"`
	Attachments []string `json:"attachments,omitempty"`

	AttendeeResponses []AttendeeResponse `json:"attendeeResponses,omitempty"`

	MeetLink string `json:"meetLink,omitempty"`
	HasMeet  bool   `json:"hasMeet"`
}

// Schedulable reports whether the task should have a calendar presence.
func (t *Task) Schedulable() bool {
	return t.IsScheduled && t.ScheduledDate != ""
}

// StartTime resolves the event start from the task's wall-clock fields.
// A missing ScheduledTime means start of day.
func (t *Task) StartTime() (time.Time, error) {
	if t.ScheduledDate == "" {
		return time.Time{}, fmt.Errorf("task %s has no scheduled date", t.ID)
	}
	layout := "2006-01-02"
	value := t.ScheduledDate
	if t.ScheduledTime != "" {
		layout = "2006-01-02 15:04"
		value = t.ScheduledDate + " " + t.ScheduledTime
	}
	start, err := time.ParseInLocation(layout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("task %s has a malformed schedule %q: %w", t.ID, value, err)
	}
	return start, nil
}

// Candidate is a partial task row read from an import document. Missing
// fields are filled with defaults by the import reconciler.
type Candidate struct {
	Title         string   `json:"title"`
	Area          string   `json:"area,omitempty"`
	Month         string   `json:"month"`
	Week          string   `json:"week,omitempty"`
	Status        string   `json:"status,omitempty"`
	ScheduledDate string   `json:"scheduledDate,omitempty"`
	ScheduledTime string   `json:"scheduledTime,omitempty"`
	Responsible   []string `json:"responsible,omitempty"`
}
