package services

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// Listing defaults shared by every paginated operation.
const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// ListOptions carries the common listing parameters: substring search,
// page/limit pagination and a single "field.direction" sort key.
type ListOptions struct {
	Search string
	Page   int
	Limit  int
	Order  string
}

func (o ListOptions) page() int {
	if o.Page < 1 {
		return defaultPage
	}
	return o.Page
}

func (o ListOptions) limit() int {
	if o.Limit < 1 {
		return defaultLimit
	}
	if o.Limit > maxLimit {
		return maxLimit
	}
	return o.Limit
}

func (o ListOptions) offset() int {
	return (o.page() - 1) * o.limit()
}

// Normalized returns the effective page and limit after defaults and
// clamping, for building response pagination metadata.
func (o ListOptions) Normalized() (page, limit int) {
	return o.page(), o.limit()
}

// applyOrder appends an ORDER BY clause parsed from "field.direction".
// Unknown fields and directions fall back to insertion order ascending;
// the sortable map whitelists columns per model so callers cannot inject
// arbitrary SQL through the sort key.
func applyOrder(query *gorm.DB, order string, sortable map[string]string) *gorm.DB {
	field, direction, ok := strings.Cut(strings.TrimSpace(order), ".")
	if ok {
		column, known := sortable[strings.ToLower(field)]
		dir := strings.ToUpper(direction)
		if known && (dir == "ASC" || dir == "DESC") {
			return query.Order(column + " " + dir)
		}
	}
	return query.Order("created_at ASC")
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
