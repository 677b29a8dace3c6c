package controller

import (
	"context"
	"designhub_backend/internal/clients/marketplace"
	"designhub_backend/internal/model"
	"designhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CatalogService interface {
	Designs(ctx context.Context, sess *util.Session, params marketplace.ListParams) (*model.Page[model.Design], error)
	Design(ctx context.Context, sess *util.Session, designID string) (*model.Design, error)
	ToggleLike(ctx context.Context, sess *util.Session, designID string) (*model.Like, error)
	Reviews(ctx context.Context, sess *util.Session, designID string, params marketplace.ListParams) (*model.Page[model.Review], error)
	CreateReview(ctx context.Context, sess *util.Session, designID string, in marketplace.ReviewInput) (*model.Review, error)
	Categories(ctx context.Context, sess *util.Session) ([]model.Category, error)
	PricingPlans(ctx context.Context, sess *util.Session) ([]model.PricingPlan, error)
	MyPurchases(ctx context.Context, sess *util.Session, params marketplace.ListParams) (*model.Page[model.Purchase], error)
}

type CatalogController struct {
	CatalogService CatalogService
}

func NewCatalogController(catalogService CatalogService) *CatalogController {
	return &CatalogController{CatalogService: catalogService}
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment" binding:"max=2000"`
}

// @Summary List designs
// @Tags Catalog
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size (max 100)" default(12)
// @Param category query string false "Category ID"
// @Param search query string false "Search text"
// @Param sortBy query string false "Sort field"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /designs [get]
func (c *CatalogController) ListDesigns(ctx *gin.Context) {
	page, err := c.CatalogService.Designs(ctx.Request.Context(), util.GetSession(ctx), listParams(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Page(ctx, page.Items, page.Total, page.Page, page.Limit)
}

// @Summary Design detail
// @Tags Catalog
// @Produce json
// @Param id path string true "Design ID"
// @Success 200 {object} util.Response{data=model.Design}
// @Failure 404 {object} util.Response
// @Router /designs/{id} [get]
func (c *CatalogController) GetDesign(ctx *gin.Context) {
	design, err := c.CatalogService.Design(ctx.Request.Context(), util.GetSession(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, design)
}

// @Summary Like or unlike a design
// @Tags Catalog
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Design ID"
// @Success 200 {object} util.Response{data=model.Like}
// @Router /designs/{id}/like [post]
func (c *CatalogController) ToggleLike(ctx *gin.Context) {
	sess, ok := session(ctx)
	if !ok {
		return
	}
	like, err := c.CatalogService.ToggleLike(ctx.Request.Context(), sess, ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, like)
}

// @Summary List reviews of a design
// @Tags Catalog
// @Produce json
// @Param id path string true "Design ID"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(12)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /designs/{id}/reviews [get]
func (c *CatalogController) ListReviews(ctx *gin.Context) {
	page, err := c.CatalogService.Reviews(ctx.Request.Context(), util.GetSession(ctx), ctx.Param("id"), listParams(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Page(ctx, page.Items, page.Total, page.Page, page.Limit)
}

// @Summary Review a design
// @Tags Catalog
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Design ID"
// @Param request body CreateReviewRequest true "Review"
// @Success 201 {object} util.Response{data=model.Review}
// @Failure 400 {object} util.Response
// @Router /designs/{id}/reviews [post]
func (c *CatalogController) CreateReview(ctx *gin.Context) {
	sess, ok := session(ctx)
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	review, err := c.CatalogService.CreateReview(ctx.Request.Context(), sess, ctx.Param("id"), marketplace.ReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, review)
}

// @Summary Active categories
// @Tags Catalog
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Category}
// @Router /categories [get]
func (c *CatalogController) ListCategories(ctx *gin.Context) {
	categories, err := c.CatalogService.Categories(ctx.Request.Context(), util.GetSession(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, categories)
}

// @Summary Active pricing plans in display order
// @Tags Catalog
// @Produce json
// @Success 200 {object} util.Response{data=[]model.PricingPlan}
// @Router /pricing-plans [get]
func (c *CatalogController) ListPricingPlans(ctx *gin.Context) {
	plans, err := c.CatalogService.PricingPlans(ctx.Request.Context(), util.GetSession(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, plans)
}

// @Summary My purchases
// @Tags Catalog
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(12)
// @Param status query string false "pending, completed, failed or refunded"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /purchases/my [get]
func (c *CatalogController) ListMyPurchases(ctx *gin.Context) {
	sess, ok := session(ctx)
	if !ok {
		return
	}
	page, err := c.CatalogService.MyPurchases(ctx.Request.Context(), sess, listParams(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Page(ctx, page.Items, page.Total, page.Page, page.Limit)
}
