package marketplace

import (
	"context"
	"net/http"

	"designhub_backend/internal/model"
)

type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (c *Client) ListDesigns(ctx context.Context, token string, params ListParams) (*model.Page[model.Design], error) {
	params = params.Normalize()
	return getPage[model.Design](ctx, c, token, call{
		op:     "list_designs",
		method: http.MethodGet,
		path:   "/designs",
		query:  params.Values(),
	}, params)
}

func (c *Client) GetDesign(ctx context.Context, token, designID string) (*model.Design, error) {
	var out model.Design
	err := c.do(ctx, token, call{
		op:     "get_design",
		method: http.MethodGet,
		path:   "/designs/{designId}",
		params: map[string]string{"designId": designID},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ToggleLike(ctx context.Context, token, designID string) (*model.Like, error) {
	var out model.Like
	err := c.do(ctx, token, call{
		op:     "toggle_like",
		method: http.MethodPost,
		path:   "/designs/{designId}/like",
		params: map[string]string{"designId": designID},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListReviews(ctx context.Context, token, designID string, params ListParams) (*model.Page[model.Review], error) {
	params = params.Normalize()
	return getPage[model.Review](ctx, c, token, call{
		op:     "list_reviews",
		method: http.MethodGet,
		path:   "/designs/{designId}/reviews",
		params: map[string]string{"designId": designID},
		query:  params.Values(),
	}, params)
}

func (c *Client) CreateReview(ctx context.Context, token, designID string, in ReviewInput) (*model.Review, error) {
	var out model.Review
	err := c.do(ctx, token, call{
		op:     "create_review",
		method: http.MethodPost,
		path:   "/designs/{designId}/reviews",
		params: map[string]string{"designId": designID},
		body:   in,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListCategories(ctx context.Context, token string) ([]model.Category, error) {
	var out []model.Category
	err := c.do(ctx, token, call{
		op:     "list_categories",
		method: http.MethodGet,
		path:   "/categories",
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListPricingPlans(ctx context.Context, token string) ([]model.PricingPlan, error) {
	var out []model.PricingPlan
	err := c.do(ctx, token, call{
		op:     "list_pricing_plans",
		method: http.MethodGet,
		path:   "/pricing-plans",
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListMyPurchases(ctx context.Context, token string, params ListParams) (*model.Page[model.Purchase], error) {
	params = params.Normalize()
	return getPage[model.Purchase](ctx, c, token, call{
		op:     "list_purchases",
		method: http.MethodGet,
		path:   "/purchases/my",
		query:  params.Values(),
	}, params)
}
