package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/svit-college/curriculum-portal/internal/calendar"
	jobmetrics "github.com/svit-college/curriculum-portal/internal/jobs"
)

const digestLimit = 20

// Deliverer hands a rendered mail to the outside world.
type Deliverer interface {
	Deliver(ctx context.Context, from string, msg SendEmailPayload) error
}

// LogDeliverer writes mails to the log instead of sending them.
type LogDeliverer struct {
	Logger *slog.Logger
}

// Deliver implements Deliverer.
func (d LogDeliverer) Deliver(_ context.Context, from string, msg SendEmailPayload) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("mail delivered",
		slog.String("from", from),
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.Int("body_bytes", len(msg.Body)),
	)
	return nil
}

// Enqueuer is the subset of asynq.Client the handlers need to fan out work.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// UpcomingEvents lists events starting within days of now.
type UpcomingEvents interface {
	Upcoming(ctx context.Context, now time.Time, days, limit int) ([]calendar.Event, error)
}

// MailConfig wires the mail-related handlers.
type MailConfig struct {
	From      string
	ListAddr  string
	Deliverer Deliverer
	Enqueuer  Enqueuer
	Events    UpcomingEvents
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// MailJobs handles mail:send, announcement:notify and calendar:digest.
type MailJobs struct {
	cfg   MailConfig
	clock func() time.Time
}

// NewMailJobs builds the handlers.
func NewMailJobs(cfg MailConfig) *MailJobs {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Deliverer == nil {
		cfg.Deliverer = LogDeliverer{Logger: cfg.Logger}
	}
	return &MailJobs{cfg: cfg, clock: func() time.Time { return time.Now().UTC() }}
}

// Handlers lists the task handlers for worker registration.
func (j *MailJobs) Handlers() []TaskHandler {
	return []TaskHandler{
		{Type: TaskTypeSendEmail, Handler: j.HandleSendEmail},
		{Type: TaskAnnouncementNotify, Handler: j.HandleAnnouncementNotify},
		{Type: TaskCalendarDigest, Handler: j.HandleCalendarDigest},
	}
}

// HandleSendEmail delivers one mail.
func (j *MailJobs) HandleSendEmail(ctx context.Context, t *asynq.Task) (err error) {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if strings.TrimSpace(payload.To) == "" {
		return fmt.Errorf("send email: empty recipient: %w", asynq.SkipRetry)
	}
	tracker := j.cfg.Metrics.Track(TaskTypeSendEmail)
	defer func() { err = tracker.End(err) }()

	if err = j.cfg.Deliverer.Deliver(ctx, j.cfg.From, payload); err != nil {
		j.cfg.Logger.Error("deliver mail", slog.String("to", payload.To), slog.Any("error", err))
		return err
	}
	j.cfg.Metrics.AddMails("single", 1)
	return nil
}

// HandleAnnouncementNotify turns an important announcement into a list mail.
func (j *MailJobs) HandleAnnouncementNotify(ctx context.Context, t *asynq.Task) (err error) {
	var payload AnnouncementNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := j.cfg.Metrics.Track(TaskAnnouncementNotify)
	defer func() { err = tracker.End(err) }()

	body := fmt.Sprintf("An important announcement was published: %s\n\nRead it at /announcements/%d\n", payload.Title, payload.ID)
	if err = j.enqueueMail(ctx, SendEmailPayload{To: j.cfg.ListAddr, Subject: "Important: " + payload.Title, Body: body}); err != nil {
		return err
	}
	j.cfg.Metrics.AddMails("announcement", 1)
	return nil
}

// HandleCalendarDigest mails the list of events in the coming window. An
// empty window sends nothing.
func (j *MailJobs) HandleCalendarDigest(ctx context.Context, t *asynq.Task) (err error) {
	var payload CalendarDigestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if j.cfg.Events == nil {
		return errors.New("calendar digest: events source not configured")
	}
	tracker := j.cfg.Metrics.Track(TaskCalendarDigest)
	defer func() { err = tracker.End(err) }()

	events, err := j.cfg.Events.Upcoming(ctx, j.clock(), payload.Days, digestLimit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		j.cfg.Logger.Info("calendar digest skipped", slog.Int("days", payload.Days))
		return nil
	}
	if err = j.enqueueMail(ctx, SendEmailPayload{
		To:      j.cfg.ListAddr,
		Subject: fmt.Sprintf("Upcoming events for the next %d days", payload.Days),
		Body:    DigestBody(events),
	}); err != nil {
		return err
	}
	j.cfg.Metrics.AddMails("digest", 1)
	return nil
}

// DigestBody renders events one per line.
func DigestBody(events []calendar.Event) string {
	var b strings.Builder
	for _, e := range events {
		fmt.Fprintf(&b, "%s  %s (%s)", e.Start.Format("Mon 02 Jan"), e.Title, e.Type)
		if days := e.Days(); days > 1 {
			fmt.Fprintf(&b, ", %d days", days)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (j *MailJobs) enqueueMail(ctx context.Context, msg SendEmailPayload) error {
	if j.cfg.Enqueuer == nil {
		return j.cfg.Deliverer.Deliver(ctx, j.cfg.From, msg)
	}
	task, err := NewSendEmailTask(msg)
	if err != nil {
		return err
	}
	_, err = j.cfg.Enqueuer.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(5))
	return err
}
