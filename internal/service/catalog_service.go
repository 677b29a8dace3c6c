package service

import (
	"context"
	"designhub_backend/internal/clients/marketplace"
	"designhub_backend/internal/model"
	"designhub_backend/internal/util"
	"sort"
	"strings"
)

type CatalogAPI interface {
	ListDesigns(ctx context.Context, token string, params marketplace.ListParams) (*model.Page[model.Design], error)
	GetDesign(ctx context.Context, token, designID string) (*model.Design, error)
	ToggleLike(ctx context.Context, token, designID string) (*model.Like, error)
	ListReviews(ctx context.Context, token, designID string, params marketplace.ListParams) (*model.Page[model.Review], error)
	CreateReview(ctx context.Context, token, designID string, in marketplace.ReviewInput) (*model.Review, error)
	ListCategories(ctx context.Context, token string) ([]model.Category, error)
	ListPricingPlans(ctx context.Context, token string) ([]model.PricingPlan, error)
	ListMyPurchases(ctx context.Context, token string, params marketplace.ListParams) (*model.Page[model.Purchase], error)
}

// CatalogService proxies the browsing side of the marketplace. Anonymous callers
// pass a nil session and are forwarded without a token.
type CatalogService struct {
	api      CatalogAPI
	notifier Notifier
}

func NewCatalogService(api CatalogAPI, notifier Notifier) *CatalogService {
	return &CatalogService{api: api, notifier: notifier}
}

func token(sess *util.Session) string {
	if sess == nil {
		return ""
	}
	return sess.Token
}

func (s *CatalogService) Designs(ctx context.Context, sess *util.Session, params marketplace.ListParams) (*model.Page[model.Design], error) {
	return s.api.ListDesigns(ctx, token(sess), params)
}

func (s *CatalogService) Design(ctx context.Context, sess *util.Session, designID string) (*model.Design, error) {
	return s.api.GetDesign(ctx, token(sess), designID)
}

func (s *CatalogService) ToggleLike(ctx context.Context, sess *util.Session, designID string) (*model.Like, error) {
	if sess == nil {
		return nil, util.ErrNoSession
	}
	like, err := s.api.ToggleLike(ctx, sess.Token, designID)
	if err != nil {
		s.notifier.Failed(ctx, sess.UserID, "toggle_like", err)
		return nil, err
	}
	return like, nil
}

func (s *CatalogService) Reviews(ctx context.Context, sess *util.Session, designID string, params marketplace.ListParams) (*model.Page[model.Review], error) {
	return s.api.ListReviews(ctx, token(sess), designID, params)
}

func (s *CatalogService) CreateReview(ctx context.Context, sess *util.Session, designID string, in marketplace.ReviewInput) (*model.Review, error) {
	if sess == nil {
		return nil, util.ErrNoSession
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, util.ErrInvalidRating
	}
	in.Comment = strings.TrimSpace(in.Comment)

	review, err := s.api.CreateReview(ctx, sess.Token, designID, in)
	if err != nil {
		s.notifier.Failed(ctx, sess.UserID, "create_review", err)
		return nil, err
	}
	s.notifier.Succeeded(ctx, sess.UserID, "create_review", "Review submitted")
	return review, nil
}

// Categories returns the active categories only.
func (s *CatalogService) Categories(ctx context.Context, sess *util.Session) ([]model.Category, error) {
	all, err := s.api.ListCategories(ctx, token(sess))
	if err != nil {
		return nil, err
	}
	active := make([]model.Category, 0, len(all))
	for _, c := range all {
		if c.IsActive {
			active = append(active, c)
		}
	}
	return active, nil
}

// PricingPlans returns active plans in display order.
func (s *CatalogService) PricingPlans(ctx context.Context, sess *util.Session) ([]model.PricingPlan, error) {
	all, err := s.api.ListPricingPlans(ctx, token(sess))
	if err != nil {
		return nil, err
	}
	plans := make([]model.PricingPlan, 0, len(all))
	for _, p := range all {
		if p.IsActive {
			plans = append(plans, p)
		}
	}
	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].DisplayedOrder < plans[j].DisplayedOrder
	})
	return plans, nil
}

func (s *CatalogService) MyPurchases(ctx context.Context, sess *util.Session, params marketplace.ListParams) (*model.Page[model.Purchase], error) {
	if sess == nil {
		return nil, util.ErrNoSession
	}
	return s.api.ListMyPurchases(ctx, sess.Token, params)
}
