package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/S3lorm/internship-robot-sub000/pkg/config"
	"github.com/S3lorm/internship-robot-sub000/pkg/jobs"
	"github.com/S3lorm/internship-robot-sub000/pkg/mailer"
)

// mailJob carries one outbound message through the queue. onDelivered runs
// after a successful send, on the worker goroutine.
type mailJob struct {
	message     mailer.Message
	onDelivered func(context.Context)
}

// MailDispatcher pushes outbound email through a background worker pool so
// request handlers never block on SMTP.
type MailDispatcher struct {
	mailer  mailer.Mailer
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
}

// NewMailDispatcher builds the dispatcher and its queue. Start must be called
// before Enqueue.
func NewMailDispatcher(m mailer.Mailer, cfg config.MailConfig, metrics *MetricsService, logger *zap.Logger) *MailDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &MailDispatcher{mailer: m, metrics: metrics, logger: logger}
	d.queue = jobs.NewQueue("mail", d.handle, jobs.QueueConfig{
		Workers:    cfg.QueueWorkers,
		MaxRetries: cfg.QueueRetries,
		Logger:     logger,
	})
	return d
}

// Start launches the worker pool.
func (d *MailDispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains the worker pool.
func (d *MailDispatcher) Stop() {
	d.queue.Stop()
}

// Enqueue schedules a message for delivery. onDelivered may be nil; when set
// it runs once after the first successful send.
func (d *MailDispatcher) Enqueue(msg mailer.Message, onDelivered func(context.Context)) error {
	return d.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    "email",
		Payload: mailJob{message: msg, onDelivered: onDelivered},
	})
}

func (d *MailDispatcher) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(mailJob)
	if !ok {
		d.logger.Error("unexpected mail job payload", zap.String("job_id", job.ID))
		return nil
	}
	if err := d.mailer.Send(payload.message); err != nil {
		d.metrics.IncEmailSent(false)
		return err
	}
	d.metrics.IncEmailSent(true)
	if payload.onDelivered != nil {
		payload.onDelivered(ctx)
	}
	return nil
}
