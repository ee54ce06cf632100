package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/citas-api/internal/models"
	"github.com/noah-isme/citas-api/pkg/events"
	"github.com/noah-isme/citas-api/pkg/jobs"
)

type notificationQueue interface {
	Enqueue(job jobs.Job) error
}

// NotificationService hands committed booking changes to the configured
// broker. Delivery runs on the job queue; failures never reach the caller.
type NotificationService struct {
	queue     notificationQueue
	publisher events.Publisher
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewNotificationService constructs a NotificationService. A nil publisher
// discards events.
func NewNotificationService(queue notificationQueue, publisher events.Publisher, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{queue: queue, publisher: publisher, metrics: metrics, logger: logger, now: time.Now}
}

// Notify records that appointment changed. The event is enqueued and
// published asynchronously.
func (s *NotificationService) Notify(ctx context.Context, eventType models.BookingEventType, appointment models.Appointment) {
	if s == nil {
		return
	}
	event := models.BookingEvent{
		ID:             uuid.NewString(),
		Type:           eventType,
		AppointmentID:  appointment.ID,
		PractitionerID: appointment.PractitionerID,
		ClientID:       appointment.ClientID,
		Date:           appointment.Date.String(),
		Start:          appointment.Start.String(),
		End:            appointment.End.String(),
		OccurredAt:     s.now().UTC(),
	}

	if s.queue == nil {
		if err := s.publish(ctx, event); err != nil {
			s.logger.Warn("booking notification failed", zap.String("type", string(eventType)), zap.Int64("appointment_id", appointment.ID), zap.Error(err))
		}
		return
	}
	if err := s.queue.Enqueue(jobs.Job{ID: event.ID, Type: string(eventType), Payload: event}); err != nil {
		s.metrics.RecordNotification(string(eventType), false)
		s.logger.Warn("booking notification dropped", zap.String("type", string(eventType)), zap.Int64("appointment_id", appointment.ID), zap.Error(err))
	}
}

// Handle is the queue handler publishing one BookingEvent.
func (s *NotificationService) Handle(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(models.BookingEvent)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	return s.publish(ctx, event)
}

func (s *NotificationService) publish(ctx context.Context, event models.BookingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal booking event: %w", err)
	}
	err = s.publisher.Publish(ctx, events.Message{
		ID:      event.ID,
		Type:    string(event.Type),
		Key:     strconv.FormatInt(event.PractitionerID, 10),
		Payload: payload,
	})
	s.metrics.RecordNotification(string(event.Type), err == nil)
	return err
}
