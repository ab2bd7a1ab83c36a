package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/cenkalti/backoff/v4"

	"github.com/courselane/courselane/internal/api/dto"
	domainGrant "github.com/courselane/courselane/internal/domain/grant"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/types"
)

// GrantService is the write surface of the access ledger
type GrantService interface {
	// RecordPurchaseGrant appends a completed purchase grant. Idempotent
	// per (user, content): a repeat delivery returns the existing grant
	// unchanged and triggers no side effects.
	RecordPurchaseGrant(ctx context.Context, req dto.RecordPurchaseGrantRequest) (*dto.GrantResponse, error)

	// RecordSubscriptionGrant appends a bookkeeping row for a started
	// billing period.
	RecordSubscriptionGrant(ctx context.Context, req dto.RecordSubscriptionGrantRequest) (*dto.GrantResponse, error)

	// RecordAdminGrant comps a user into content, zero amount.
	RecordAdminGrant(ctx context.Context, req dto.RecordAdminGrantRequest) (*dto.GrantResponse, error)

	// RecordRefund flips a completed grant to refunded. The customer's
	// lifecycle type is deliberately left alone.
	RecordRefund(ctx context.Context, grantID string) (*dto.GrantResponse, error)

	// TouchAccess bumps the access telemetry on a grant. Best-effort.
	TouchAccess(ctx context.Context, grantID string) error

	GetGrant(ctx context.Context, id string) (*dto.GrantResponse, error)
	ListGrants(ctx context.Context, filter *domainGrant.Filter) (*dto.ListGrantsResponse, error)
}

type grantService struct {
	ServiceParams
}

func NewGrantService(params ServiceParams) GrantService {
	return &grantService{ServiceParams: params}
}

func (s *grantService) RecordPurchaseGrant(ctx context.Context, req dto.RecordPurchaseGrantRequest) (*dto.GrantResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Fast path: a completed purchase grant already exists, return it
	// unchanged. Duplicate webhook deliveries land here.
	existing, err := s.GrantRepo.FindCompletedByContent(ctx, req.UserID, req.Content, types.GrantRoutePurchase)
	if err == nil {
		s.Logger.Infow("duplicate purchase grant delivery, returning existing grant",
			"grant_id", existing.ID,
			"user_id", req.UserID,
			"content", req.Content.String(),
		)
		return &dto.GrantResponse{Grant: existing}, nil
	}
	if !ierr.IsNotFound(err) {
		return nil, err
	}

	g := req.ToGrant(ctx)
	if err := g.Validate(); err != nil {
		return nil, err
	}

	created, err := s.createPurchaseWithRetry(ctx, g, req)
	if err != nil {
		return nil, err
	}

	// Side effects (customer lifecycle, enrollment shadow, contact
	// sync) ride the bus; the ledger write never waits on them.
	if created.ID == g.ID {
		s.publishGrantEvent(ctx, types.TopicGrantRecorded, created)
	}

	return &dto.GrantResponse{Grant: created}, nil
}

// createPurchaseWithRetry inserts the grant, resolving a lost
// uniqueness race by returning the winner's row. The short backoff
// covers the window where the winner's row is not yet visible to the
// follow-up read.
func (s *grantService) createPurchaseWithRetry(ctx context.Context, g *domainGrant.Grant, req dto.RecordPurchaseGrantRequest) (*domainGrant.Grant, error) {
	created, err := s.GrantRepo.Create(ctx, g)
	if err == nil {
		return created, nil
	}
	if !ierr.IsAlreadyExists(err) {
		return nil, err
	}

	s.Logger.Infow("purchase grant race lost, fetching winning grant",
		"user_id", req.UserID,
		"content", req.Content.String(),
	)

	var winner *domainGrant.Grant
	op := func() error {
		found, ferr := s.GrantRepo.FindCompletedByContent(ctx, req.UserID, req.Content, types.GrantRoutePurchase)
		if ferr != nil {
			return ferr
		}
		winner = found
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(
		backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(10*time.Millisecond),
			backoff.WithMaxInterval(100*time.Millisecond),
		), 5), ctx)
	if rerr := backoff.Retry(op, policy); rerr != nil {
		return nil, ierr.WithError(rerr).
			WithHint("Grant conflict detected but the winning grant could not be read back").
			WithReportableDetails(map[string]interface{}{
				"user_id": req.UserID,
				"content": req.Content.String(),
			}).
			Mark(ierr.ErrDatabase)
	}
	return winner, nil
}

func (s *grantService) RecordSubscriptionGrant(ctx context.Context, req dto.RecordSubscriptionGrantRequest) (*dto.GrantResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.PlanRepo.Get(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	if !p.IsAvailable() {
		return nil, ierr.NewError("plan is no longer available").
			WithHint("The plan has been archived; no new subscription grants can be recorded against it").
			WithReportableDetails(map[string]interface{}{
				"plan_id": req.PlanID,
			}).
			Mark(ierr.ErrValidation)
	}

	g := req.ToGrant(ctx)
	if err := g.Validate(); err != nil {
		return nil, err
	}
	created, err := s.GrantRepo.Create(ctx, g)
	if err != nil {
		return nil, err
	}

	s.publishGrantEvent(ctx, types.TopicGrantRecorded, created)
	return &dto.GrantResponse{Grant: created}, nil
}

func (s *grantService) RecordAdminGrant(ctx context.Context, req dto.RecordAdminGrantRequest) (*dto.GrantResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Comps are idempotent per (user, content) as well
	existing, err := s.GrantRepo.FindCompletedByContent(ctx, req.UserID, req.Content, types.GrantRouteAdminOverride)
	if err == nil {
		return &dto.GrantResponse{Grant: existing}, nil
	}
	if !ierr.IsNotFound(err) {
		return nil, err
	}

	g := req.ToGrant(ctx)
	if err := g.Validate(); err != nil {
		return nil, err
	}
	created, err := s.GrantRepo.Create(ctx, g)
	if err != nil {
		return nil, err
	}

	s.publishGrantEvent(ctx, types.TopicGrantRecorded, created)
	return &dto.GrantResponse{Grant: created}, nil
}

func (s *grantService) RecordRefund(ctx context.Context, grantID string) (*dto.GrantResponse, error) {
	if grantID == "" {
		return nil, ierr.NewError("grant id is required").
			WithHint("Please provide a valid grant ID").
			Mark(ierr.ErrValidation)
	}

	g, err := s.GrantRepo.Get(ctx, grantID)
	if err != nil {
		return nil, err
	}

	if g.GrantStatus == types.GrantStatusRefunded {
		return &dto.GrantResponse{Grant: g}, nil
	}
	if g.GrantStatus != types.GrantStatusCompleted {
		return nil, ierr.NewError("only completed grants can be refunded").
			WithHint("The grant is not in a refundable state").
			WithReportableDetails(map[string]interface{}{
				"grant_id":     grantID,
				"grant_status": string(g.GrantStatus),
			}).
			Mark(ierr.ErrValidation)
	}

	g.GrantStatus = types.GrantStatusRefunded
	g.UpdatedBy = types.GetUserID(ctx)
	updated, err := s.GrantRepo.Update(ctx, g)
	if err != nil {
		return nil, err
	}

	// Customer type never reverts on refund; the event only drives
	// contact-sync fan-out and activity bookkeeping.
	s.publishGrantEvent(ctx, types.TopicGrantRefunded, updated)

	s.Logger.Infow("grant refunded",
		"grant_id", updated.ID,
		"user_id", updated.UserID,
		"content", updated.Content.String(),
	)
	return &dto.GrantResponse{Grant: updated}, nil
}

func (s *grantService) TouchAccess(ctx context.Context, grantID string) error {
	if grantID == "" {
		return ierr.NewError("grant id is required").
			WithHint("Please provide a valid grant ID").
			Mark(ierr.ErrValidation)
	}
	return s.GrantRepo.TouchAccess(ctx, grantID)
}

func (s *grantService) GetGrant(ctx context.Context, id string) (*dto.GrantResponse, error) {
	if id == "" {
		return nil, ierr.NewError("grant id is required").
			WithHint("Please provide a valid grant ID").
			Mark(ierr.ErrValidation)
	}
	g, err := s.GrantRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.GrantResponse{Grant: g}, nil
}

func (s *grantService) ListGrants(ctx context.Context, filter *domainGrant.Filter) (*dto.ListGrantsResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	grants, err := s.GrantRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewListGrantsResponse(grants), nil
}

// publishGrantEvent dispatches a grant event to the side-effect bus.
// Publish failures are logged and swallowed: downstream consumers must
// never fail or delay a ledger write.
func (s *grantService) publishGrantEvent(ctx context.Context, topic string, g *domainGrant.Grant) {
	if s.EventPublisher == nil {
		return
	}

	ev := types.GrantEvent{
		EventID:      types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SIDE_EFFECT_MSG),
		GrantID:      g.ID,
		UserID:       g.UserID,
		UserEmail:    g.UserEmail,
		StorefrontID: g.StorefrontID,
		Content:      g.Content,
		Route:        g.Route,
		Amount:       g.Amount,
		OccurredAt:   time.Now().UTC(),
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		s.Logger.Errorw("failed to marshal grant event", "error", err, "grant_id", g.ID)
		return
	}

	msg := message.NewMessage(ev.EventID, payload)
	if err := s.EventPublisher.Publish(ctx, topic, msg); err != nil {
		s.Logger.Errorw("failed to publish grant event",
			"error", err,
			"topic", topic,
			"grant_id", g.ID,
		)
	}
}
