package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/samber/lo"

	"github.com/courselane/courselane/internal/api/dto"
	domainPlan "github.com/courselane/courselane/internal/domain/plan"
	domainSub "github.com/courselane/courselane/internal/domain/subscription"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/types"
)

// EntitlementService answers the single question the consumption
// surface asks on every gated render: may this user access this
// content, and by what route.
type EntitlementService interface {
	// Resolve runs the grant routes in fixed precedence order and
	// returns the first match. It performs no writes on the critical
	// path; the access-telemetry touch is dispatched fire-and-forget.
	// Internal failures fail closed: access denied, never an exception
	// to the caller.
	Resolve(ctx context.Context, req dto.ResolveAccessRequest) (*dto.AccessDecision, error)

	// UnlockedContent derives the content a subscription currently
	// unlocks from its live state, its plan's access rule and the
	// storefront's live catalog. Pure read, no caching: catalog edits
	// and plan narrowing are visible on the next call.
	UnlockedContent(ctx context.Context, sub *domainSub.Subscription) ([]types.ContentRef, error)
}

type entitlementService struct {
	ServiceParams
}

func NewEntitlementService(params ServiceParams) EntitlementService {
	return &entitlementService{ServiceParams: params}
}

func (s *entitlementService) Resolve(ctx context.Context, req dto.ResolveAccessRequest) (*dto.AccessDecision, error) {
	if err := req.Validate(); err != nil {
		return dto.Denied(), err
	}

	content := req.Content

	// Free-chapter shortcut, cheapest check first. A non-free chapter
	// is gated by its owning course, so the remaining routes run
	// against the course reference.
	if content.Type == types.ContentTypeChapter {
		chapter, err := s.CatalogRepo.GetChapter(ctx, content.ID)
		if err != nil {
			if ierr.IsNotFound(err) {
				return dto.Denied(), err
			}
			return s.failClosed(ctx, req, err), nil
		}
		if chapter.IsFree {
			return dto.GrantedVia(types.GrantRouteAdminOverride, nil), nil
		}
		content = types.NewCourseRef(chapter.CourseID)
	}

	// Direct completed purchase grant
	g, err := s.GrantRepo.FindCompletedByContent(ctx, req.UserID, content, types.GrantRoutePurchase)
	if err == nil {
		s.touchAsync(ctx, g.ID)
		return dto.GrantedVia(types.GrantRoutePurchase, g), nil
	}
	if !ierr.IsNotFound(err) {
		return s.failClosed(ctx, req, err), nil
	}

	// Bundle membership
	decision, err := s.resolveViaBundles(ctx, req.UserID, req.StorefrontID, content)
	if err != nil {
		return s.failClosed(ctx, req, err), nil
	}
	if decision != nil {
		return decision, nil
	}

	// Subscription entitlement
	decision, err = s.resolveViaSubscriptions(ctx, req.UserID, req.StorefrontID, content)
	if err != nil {
		return s.failClosed(ctx, req, err), nil
	}
	if decision != nil {
		return decision, nil
	}

	// Explicit admin capability, passed in by the caller
	if req.AdminCapability {
		return dto.GrantedVia(types.GrantRouteAdminOverride, nil), nil
	}

	// Deny. Distinguish unknown content so the caller can 404 instead
	// of paywalling something that does not exist.
	if err := s.contentExists(ctx, content); err != nil {
		if ierr.IsNotFound(err) {
			return dto.Denied(), err
		}
		s.Logger.Errorw("content existence check failed on deny path",
			"error", err,
			"content", content.String(),
		)
	}
	return dto.Denied(), nil
}

func (s *entitlementService) resolveViaBundles(ctx context.Context, userID, storefrontID string, content types.ContentRef) (*dto.AccessDecision, error) {
	if content.Type != types.ContentTypeCourse && content.Type != types.ContentTypeProduct {
		return nil, nil
	}

	bundles, err := s.BundleRepo.ListContainingContent(ctx, storefrontID, content)
	if err != nil {
		return nil, err
	}
	for _, b := range bundles {
		g, err := s.GrantRepo.FindCompletedByContent(ctx, userID, b.Ref(), "")
		if err != nil {
			if ierr.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		s.touchAsync(ctx, g.ID)
		return dto.GrantedVia(types.GrantRouteBundle, g), nil
	}
	return nil, nil
}

func (s *entitlementService) resolveViaSubscriptions(ctx context.Context, userID, storefrontID string, content types.ContentRef) (*dto.AccessDecision, error) {
	subs, err := s.SubscriptionRepo.ListNonCanceledByUserAndStorefront(ctx, userID, storefrontID)
	if err != nil {
		return nil, err
	}
	if len(subs) > 1 {
		// Should not happen: one non-canceled subscription per
		// (user, storefront). Log and resolve with the first match.
		s.Logger.Warnw("user holds multiple non-canceled subscriptions on one storefront",
			"user_id", userID,
			"storefront_id", storefrontID,
			"subscription_ids", lo.Map(subs, func(sub *domainSub.Subscription, _ int) string { return sub.ID }),
		)
	}

	for _, sub := range subs {
		unlocked, err := s.UnlockedContent(ctx, sub)
		if err != nil {
			if ierr.IsNotFound(err) {
				// Plan vanished under the subscription; integrity
				// anomaly, not fatal to the access check.
				s.Logger.Warnw("subscription references a missing plan",
					"subscription_id", sub.ID,
					"plan_id", sub.PlanID,
				)
				continue
			}
			return nil, err
		}
		for _, ref := range unlocked {
			if ref.Equal(content) {
				return dto.GrantedVia(types.GrantRouteSubscription, nil), nil
			}
		}
	}
	return nil, nil
}

func (s *entitlementService) UnlockedContent(ctx context.Context, sub *domainSub.Subscription) ([]types.ContentRef, error) {
	if sub == nil || !sub.IsEntitled() {
		return nil, nil
	}

	p, err := s.PlanRepo.Get(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	return s.expandPlanAccess(ctx, p)
}

// expandPlanAccess materializes a plan's access rule against the live
// catalog. No tier inheritance: the rule unlocks exactly what it names.
func (s *entitlementService) expandPlanAccess(ctx context.Context, p *domainPlan.Plan) ([]types.ContentRef, error) {
	var refs []types.ContentRef

	courseIDs := p.CourseIDs
	if p.AllCourses {
		ids, err := s.CatalogRepo.ListCourseIDs(ctx, p.StorefrontID)
		if err != nil {
			return nil, err
		}
		courseIDs = ids
	}
	for _, id := range courseIDs {
		refs = append(refs, types.NewCourseRef(id))
	}

	productIDs := p.ProductIDs
	if p.AllProducts {
		ids, err := s.CatalogRepo.ListProductIDs(ctx, p.StorefrontID)
		if err != nil {
			return nil, err
		}
		productIDs = ids
	}
	for _, id := range productIDs {
		refs = append(refs, types.NewProductRef(id))
	}

	return refs, nil
}

func (s *entitlementService) contentExists(ctx context.Context, content types.ContentRef) error {
	switch content.Type {
	case types.ContentTypeCourse:
		_, err := s.CatalogRepo.GetCourse(ctx, content.ID)
		return err
	case types.ContentTypeProduct:
		_, err := s.CatalogRepo.GetProduct(ctx, content.ID)
		return err
	case types.ContentTypeBundle:
		_, err := s.BundleRepo.Get(ctx, content.ID)
		return err
	default:
		return nil
	}
}

// failClosed logs the internal failure and denies access. A paying
// user being denied is recoverable on retry; an open gate is not.
func (s *entitlementService) failClosed(ctx context.Context, req dto.ResolveAccessRequest, err error) *dto.AccessDecision {
	s.Logger.WithContext(ctx).Errorw("entitlement resolution failed, denying access",
		"error", err,
		"user_id", req.UserID,
		"storefront_id", req.StorefrontID,
		"content", req.Content.String(),
	)
	return dto.Denied()
}

// touchAsync dispatches the access-count bump to the side-effect bus.
// It must never block or fail the access decision.
func (s *entitlementService) touchAsync(ctx context.Context, grantID string) {
	if s.EventPublisher == nil {
		return
	}

	ev := types.GrantAccessedEvent{
		EventID:    types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SIDE_EFFECT_MSG),
		GrantID:    grantID,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		s.Logger.Errorw("failed to marshal access event", "error", err, "grant_id", grantID)
		return
	}
	if err := s.EventPublisher.Publish(ctx, types.TopicGrantAccessed, message.NewMessage(ev.EventID, payload)); err != nil {
		s.Logger.Warnw("failed to publish access event", "error", err, "grant_id", grantID)
	}
}
