package model

import "time"

// swagger:model Category
type Category struct {
	ID          string `json:"_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
}

// swagger:model Design
type Design struct {
	ID            string    `json:"_id" validate:"required"`
	Title         string    `json:"title" validate:"required"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category,omitempty"`
	Price         float64   `json:"price" validate:"gte=0"`
	PreviewImages []string  `json:"previewImages,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	Status        string    `json:"status,omitempty"`
	IsPremium     bool      `json:"isPremium"`
	Likes         int       `json:"likesCount" validate:"gte=0"`
	Downloads     int       `json:"downloadCount" validate:"gte=0"`
	AverageRating float64   `json:"averageRating" validate:"gte=0,lte=5"`
	CreatedAt     time.Time `json:"createdAt"`
}

// swagger:model PricingPlan
type PricingPlan struct {
	ID             string   `json:"_id" validate:"required"`
	Name           string   `json:"name" validate:"required"`
	Price          float64  `json:"price" validate:"gte=0"`
	Currency       string   `json:"currency,omitempty"`
	DurationDays   int      `json:"duration" validate:"gte=0"`
	MaxDownloads   *int     `json:"maxDownloads,omitempty"`
	Features       []string `json:"features,omitempty"`
	IsActive       bool     `json:"isActive"`
	IsRecommended  bool     `json:"isPopular"`
	DisplayedOrder int      `json:"order"`
}

// Unlimited reports whether the plan grants unbounded downloads.
func (p PricingPlan) Unlimited() bool {
	return p.MaxDownloads == nil
}

// swagger:model Purchase
type Purchase struct {
	ID            string    `json:"_id" validate:"required"`
	UserID        string    `json:"user"`
	Design        string    `json:"design,omitempty"`
	PricingPlan   string    `json:"pricingPlan,omitempty"`
	Amount        float64   `json:"amount" validate:"gte=0"`
	Status        string    `json:"status" validate:"omitempty,oneof=pending completed failed refunded"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// swagger:model Review
type Review struct {
	ID        string    `json:"_id" validate:"required"`
	UserID    string    `json:"user"`
	Design    string    `json:"design,omitempty"`
	Course    string    `json:"course,omitempty"`
	Rating    int       `json:"rating" validate:"gte=1,lte=5"`
	Comment   string    `json:"comment,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Like is the backend's answer to a like toggle.
type Like struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount" validate:"gte=0"`
}

// Page is a single page of a paginated listing.
type Page[T any] struct {
	Items []T   `json:"items" validate:"dive"`
	Total int64 `json:"total" validate:"gte=0"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}
