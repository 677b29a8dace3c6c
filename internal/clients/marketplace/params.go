package marketplace

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultPage  = 1
	defaultLimit = 12
	maxLimit     = 100
)

// ListParams are the pagination, filter and sort parameters every listing accepts.
type ListParams struct {
	Page      int
	Limit     int
	Status    string
	Category  string
	Search    string
	SortBy    string
	SortOrder string
}

// Normalize fills defaults, caps the page size and drops unknown sort orders.
func (p ListParams) Normalize() ListParams {
	if p.Page <= 0 {
		p.Page = defaultPage
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	p.Search = strings.TrimSpace(p.Search)
	p.SortOrder = strings.ToLower(strings.TrimSpace(p.SortOrder))
	if p.SortOrder != "asc" && p.SortOrder != "desc" {
		p.SortOrder = ""
	}
	return p
}

func (p ListParams) Values() url.Values {
	p = p.Normalize()
	v := url.Values{}
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("limit", strconv.Itoa(p.Limit))
	if p.Status != "" {
		v.Set("status", p.Status)
	}
	if p.Category != "" {
		v.Set("category", p.Category)
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.SortBy != "" {
		v.Set("sortBy", p.SortBy)
		if p.SortOrder != "" {
			v.Set("sortOrder", p.SortOrder)
		}
	}
	return v
}
