package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fulfillment/internal/pkg/errs"
)

// GetOrderQueryHandler reads one order row, decoding the item and history
// snapshots stored alongside it.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for single-order reads.
// Requires a GORM database connection for query execution.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle executes the query. Returns errs.ErrObjectNotFound when no order
// exists with the requested id.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderResponse, error) {
	if err := query.Validate(); err != nil {
		return OrderResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
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
		WHERE id = ?
	`, query.OrderID().Bytes()).Row()

	response, err := scanOrderRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return OrderResponse{}, errs.NewObjectNotFoundError("order", query.OrderID())
	}
	if err != nil {
		return OrderResponse{}, err
	}

	// The code is a shared secret between engine and customer. Anyone else
	// reading the order, the courier included, must not see it.
	if scope := query.ForCustomer(); scope == nil || scope.String() != response.CustomerID {
		response.VerificationCode = nil
	}

	return response, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrderRow(row rowScanner) (OrderResponse, error) {
	var (
		response  OrderResponse
		id        uuid.UUID
		customer  uuid.UUID
		rest      uuid.UUID
		courierID uuid.NullUUID
		items     []byte
		history   []byte
	)

	err := row.Scan(
		&id,
		&customer,
		&rest,
		&courierID,
		&response.Status,
		&response.VerificationCode,
		&items,
		&history,
		&response.DeliveryAddress,
		&response.PickupLatitude,
		&response.PickupLongitude,
		&response.PaymentMethod,
		&response.DeliveryFeeCents,
		&response.TotalPriceCents,
		&response.CodeAttempts,
		&response.CreatedAt,
		&response.AcceptedAt,
		&response.PickedUpAt,
		&response.DeliveredAt,
	)
	if err != nil {
		return OrderResponse{}, err
	}

	response.ID = id.String()
	response.CustomerID = customer.String()
	response.RestaurantID = rest.String()
	if courierID.Valid {
		value := courierID.UUID.String()
		response.CourierID = &value
	}

	if err = json.Unmarshal(items, &response.Items); err != nil {
		return OrderResponse{}, err
	}
	if err = json.Unmarshal(history, &response.History); err != nil {
		return OrderResponse{}, err
	}

	return response, nil
}
