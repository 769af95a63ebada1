package queries

import (
	"context"

	"gorm.io/gorm"
)

// ListOrdersQueryHandler retrieves pages of orders from the database.
// Filters compose with AND; results are newest first.
type ListOrdersQueryHandler struct {
	db *gorm.DB
}

// NewListOrdersQueryHandler creates a handler for order list queries.
// Requires a GORM database connection for query execution.
func NewListOrdersQueryHandler(db *gorm.DB) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{db: db}
}

// Handle executes the list query and returns one page of order snapshots.
func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]OrderResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	sql := `
		SELECT
			id,
			customer_id,
			restaurant_id,
			courier_id,
			status,
			verification_code,
			items,
			history,
			delivery_address,
			pickup_latitude,
			pickup_longitude,
			payment_method,
			delivery_fee_cents,
			total_price_cents,
			code_attempts,
			created_at,
			accepted_at,
			picked_up_at,
			delivered_at
		FROM orders
		WHERE 1=1
	`
	args := make([]any, 0, 6)

	filter := query.Filter()
	if filter.Status != nil {
		sql += " AND status = ?"
		args = append(args, filter.Status.String())
	}
	if filter.CustomerID != nil {
		sql += " AND customer_id = ?"
		args = append(args, filter.CustomerID.Bytes())
	}
	if filter.RestaurantID != nil {
		sql += " AND restaurant_id = ?"
		args = append(args, filter.RestaurantID.Bytes())
	}
	if filter.CourierID != nil {
		sql += " AND courier_id = ?"
		args = append(args, filter.CourierID.Bytes())
	}

	sql += " ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, query.Limit(), query.Offset())

	rows, err := h.db.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]OrderResponse, 0)
	for rows.Next() {
		response, scanErr := scanOrderRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		// Live codes surface only on a customer's own order list.
		if filter.CustomerID == nil {
			response.VerificationCode = nil
		}
		orders = append(orders, response)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
