package service

import (
	"github.com/spec-kit/staff-directory/internal/cache"
	"github.com/spec-kit/staff-directory/internal/domain"
	"github.com/spec-kit/staff-directory/internal/repository"
)

const (
	DefaultPage      = 1
	DefaultLimit     = 10
	DefaultSortField = "name"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListParams are the caller-supplied listing arguments.
type ListParams struct {
	Page       int
	Limit      int
	SortBy     string
	SortOrder  string
	FilterName *string
}

// listQuery is a ListParams after defaulting and allow-listing.
type listQuery struct {
	page      int
	limit     int
	sortBy    string
	sortOrder string
	name      string
}

func normalizeListParams(p ListParams) listQuery {
	q := listQuery{
		page:      p.Page,
		limit:     p.Limit,
		sortBy:    p.SortBy,
		sortOrder: SortAsc,
	}
	if q.page < 1 {
		q.page = DefaultPage
	}
	if q.limit < 1 {
		q.limit = DefaultLimit
	}
	if !repository.IsSortField(q.sortBy) {
		q.sortBy = DefaultSortField
	}
	if p.SortOrder == SortDesc {
		q.sortOrder = SortDesc
	}
	if p.FilterName != nil {
		q.name = *p.FilterName
	}
	return q
}

func (q listQuery) cacheKey() string {
	return cache.ListKey(q.page, q.limit, q.sortBy, q.sortOrder, q.name)
}

func (q listQuery) repoFilter() repository.EmployeeFilter {
	return repository.EmployeeFilter{
		NameContains: q.name,
		SortBy:       q.sortBy,
		Descending:   q.sortOrder == SortDesc,
		Limit:        q.limit,
		Offset:       (q.page - 1) * q.limit,
	}
}

// NewPageInfo derives pagination metadata for page of size limit over total items.
func NewPageInfo(total, page, limit int) domain.PageInfo {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return domain.PageInfo{
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
		TotalPages:      totalPages,
		TotalCount:      total,
		CurrentPage:     page,
	}
}
