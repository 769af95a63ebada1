package queries

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

const (
	// DefaultPageSize bounds list responses when the caller does not ask
	// for a specific page size.
	DefaultPageSize = 50
	// MaxPageSize is the hard ceiling on one page of results.
	MaxPageSize = 200
)

var (
	ErrListOrdersQueryIsNotConstructed = errors.New(
		"ListOrdersQuery must be created via NewListOrdersQuery constructor",
	)
	ErrPageSizeIsOutOfRange = errors.New("page size is out of range")
	ErrOffsetIsNegative     = errors.New("offset must not be negative")
)

// ListOrdersFilter narrows a ListOrdersQuery. Zero-valued fields are not
// applied.
type ListOrdersFilter struct {
	Status       *order.Status
	CustomerID   *kernel.UUID
	RestaurantID *kernel.UUID
	CourierID    *kernel.UUID
}

// ListOrdersQuery retrieves a filtered page of orders for monitoring and
// per-party dashboards.
//
// Example:
//
//	status := order.ReadyForPickup
//	query, _ := NewListOrdersQuery(ListOrdersFilter{Status: &status}, 20, 0)
//	handler := NewListOrdersQueryHandler(db)
//
//	orders, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to list orders: %w", err)
//	}
//	fmt.Printf("%d orders ready for pickup\n", len(orders))
type ListOrdersQuery struct { //nolint:recvcheck //using for validation
	filter ListOrdersFilter
	limit  int
	offset int

	guard guard.ConstructorGuard
}

// NewListOrdersQuery creates a list query. A limit of 0 selects
// DefaultPageSize.
func NewListOrdersQuery(filter ListOrdersFilter, limit int, offset int) (ListOrdersQuery, error) {
	query := ListOrdersQuery{
		filter: filter,
		guard:  guard.NewConstructorGuard(),
	}

	if limit == 0 {
		limit = DefaultPageSize
	}
	if limit < 0 || limit > MaxPageSize {
		return ListOrdersQuery{}, ErrPageSizeIsOutOfRange
	}
	if offset < 0 {
		return ListOrdersQuery{}, ErrOffsetIsNegative
	}
	if filter.Status != nil {
		if err := filter.Status.Validate(); err != nil {
			return ListOrdersQuery{}, err
		}
	}

	query.limit = limit
	query.offset = offset

	return query, nil
}

// Validate ensures the query was created through the constructor.
func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

// Filter returns the applied filter.
func (q ListOrdersQuery) Filter() ListOrdersFilter {
	return q.filter
}

// Limit returns the page size.
func (q ListOrdersQuery) Limit() int {
	return q.limit
}

// Offset returns the page offset.
func (q ListOrdersQuery) Offset() int {
	return q.offset
}
