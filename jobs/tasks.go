// Package jobs defines the portal's background tasks and the asynq worker
// and client that carry them.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskAnnouncementNotify fans an important announcement out to the mailing list.
	TaskAnnouncementNotify = "announcement:notify"
	// TaskCalendarDigest mails the upcoming-events digest.
	TaskCalendarDigest = "calendar:digest"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// AnnouncementNotifyPayload identifies the announcement to announce.
type AnnouncementNotifyPayload struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// CalendarDigestPayload sets the look-ahead window of a digest run.
type CalendarDigestPayload struct {
	Days int `json:"days"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	return newTask(TaskTypeSendEmail, payload)
}

// NewAnnouncementNotifyTask constructs an announcement:notify task.
func NewAnnouncementNotifyTask(payload AnnouncementNotifyPayload) (*asynq.Task, error) {
	return newTask(TaskAnnouncementNotify, payload)
}

// NewCalendarDigestTask constructs a calendar:digest task. Days below one
// fall back to a week.
func NewCalendarDigestTask(days int) (*asynq.Task, error) {
	if days < 1 {
		days = 7
	}
	return newTask(TaskCalendarDigest, CalendarDigestPayload{Days: days})
}

func newTask(kind string, payload any) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(kind, data), nil
}
