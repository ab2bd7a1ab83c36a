package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/courselane/courselane/internal/domain/enrollment"
	"github.com/courselane/courselane/internal/pubsub"
	"github.com/courselane/courselane/internal/types"
)

// SideEffectService consumes the grant event topics and applies the
// asynchronous projections: customer lifecycle updates, the enrollment
// shadow table, and access-count telemetry. Every handler is
// best-effort; a failed projection is logged and the message is acked
// so the bus never backs up behind bookkeeping.
type SideEffectService interface {
	// Start subscribes to all topics and processes messages until ctx
	// is canceled.
	Start(ctx context.Context) error
}

type sideEffectService struct {
	ServiceParams
	subscriber      pubsub.Subscriber
	customerService CustomerService
}

func NewSideEffectService(
	params ServiceParams,
	subscriber pubsub.Subscriber,
	customerService CustomerService,
) SideEffectService {
	return &sideEffectService{
		ServiceParams:   params,
		subscriber:      subscriber,
		customerService: customerService,
	}
}

func (s *sideEffectService) Start(ctx context.Context) error {
	recorded, err := s.subscriber.Subscribe(ctx, types.TopicGrantRecorded)
	if err != nil {
		return err
	}
	accessed, err := s.subscriber.Subscribe(ctx, types.TopicGrantAccessed)
	if err != nil {
		return err
	}
	refunded, err := s.subscriber.Subscribe(ctx, types.TopicGrantRefunded)
	if err != nil {
		return err
	}

	go s.consume(ctx, types.TopicGrantRecorded, recorded, s.handleGrantRecorded)
	go s.consume(ctx, types.TopicGrantAccessed, accessed, s.handleGrantAccessed)
	go s.consume(ctx, types.TopicGrantRefunded, refunded, s.handleGrantRefunded)

	s.Logger.Infow("side effect consumers started",
		"topics", []string{types.TopicGrantRecorded, types.TopicGrantAccessed, types.TopicGrantRefunded},
	)
	return nil
}

func (s *sideEffectService) consume(
	ctx context.Context,
	topic string,
	messages <-chan *message.Message,
	handle func(ctx context.Context, msg *message.Message),
) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			handle(ctx, msg)
			// Ack unconditionally: projections are rebuildable from the
			// ledger and must never wedge the bus.
			msg.Ack()
		}
	}
}

func (s *sideEffectService) handleGrantRecorded(ctx context.Context, msg *message.Message) {
	var ev types.GrantEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		s.Logger.Errorw("failed to decode grant recorded event",
			"message_id", msg.UUID,
			"error", err,
		)
		return
	}

	if err := s.customerService.ApplyGrantEvent(ctx, ev); err != nil {
		s.Logger.Errorw("failed to apply grant event to customer record",
			"grant_id", ev.GrantID,
			"user_email", ev.UserEmail,
			"error", err,
		)
	}

	// Purchase grants for courses also land a shadow enrollment row for
	// the legacy membership surface.
	if ev.Content.Type == types.ContentTypeCourse && ev.Route == types.GrantRoutePurchase {
		s.upsertEnrollment(ctx, ev)
	}
}

func (s *sideEffectService) upsertEnrollment(ctx context.Context, ev types.GrantEvent) {
	e := &enrollment.Enrollment{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ENROLLMENT),
		UserID:       ev.UserID,
		CourseID:     ev.Content.ID,
		StorefrontID: ev.StorefrontID,
		GrantID:      ev.GrantID,
		EnrolledAt:   ev.OccurredAt,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = time.Now().UTC()
	}
	if _, err := s.EnrollmentRepo.Upsert(ctx, e); err != nil {
		s.Logger.Errorw("failed to upsert enrollment shadow record",
			"grant_id", ev.GrantID,
			"user_id", ev.UserID,
			"course_id", ev.Content.ID,
			"error", err,
		)
	}
}

func (s *sideEffectService) handleGrantAccessed(ctx context.Context, msg *message.Message) {
	var ev types.GrantAccessedEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		s.Logger.Errorw("failed to decode grant accessed event",
			"message_id", msg.UUID,
			"error", err,
		)
		return
	}
	if err := s.GrantRepo.TouchAccess(ctx, ev.GrantID); err != nil {
		s.Logger.Warnw("failed to bump grant access counter",
			"grant_id", ev.GrantID,
			"error", err,
		)
	}
}

func (s *sideEffectService) handleGrantRefunded(ctx context.Context, msg *message.Message) {
	var ev types.GrantEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		s.Logger.Errorw("failed to decode grant refunded event",
			"message_id", msg.UUID,
			"error", err,
		)
		return
	}
	if err := s.customerService.ApplyRefundEvent(ctx, ev); err != nil {
		s.Logger.Errorw("failed to apply refund event to customer record",
			"grant_id", ev.GrantID,
			"user_email", ev.UserEmail,
			"error", err,
		)
	}
}
