package queries

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListCouriersQueryHandler retrieves the courier fleet from the database.
type ListCouriersQueryHandler struct {
	db *gorm.DB
}

// NewListCouriersQueryHandler creates a handler for courier list queries.
// Requires a GORM database connection for query execution.
func NewListCouriersQueryHandler(db *gorm.DB) ListCouriersQueryHandler {
	return ListCouriersQueryHandler{db: db}
}

// Handle executes the query. Results are sorted by courier id for consistent
// output.
func (h ListCouriersQueryHandler) Handle(ctx context.Context, query ListCouriersQuery) ([]CourierResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	sql := `
		SELECT
			id,
			name,
			vehicle,
			available,
			latitude,
			longitude,
			current_order_id,
			available_since,
			delivery_count,
			CASE WHEN rating_count = 0 THEN 0 ELSE rating_sum / rating_count END,
			active
		FROM couriers
	`
	if query.AvailableOnly() {
		sql += " WHERE available AND active"
	}
	sql += " ORDER BY id"

	rows, err := h.db.WithContext(ctx).Raw(sql).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	couriers := make([]CourierResponse, 0)
	for rows.Next() {
		var (
			response       CourierResponse
			id             uuid.UUID
			currentOrderID uuid.NullUUID
		)

		err = rows.Scan(
			&id,
			&response.Name,
			&response.Vehicle,
			&response.Available,
			&response.Latitude,
			&response.Longitude,
			&currentOrderID,
			&response.AvailableSince,
			&response.DeliveryCount,
			&response.RatingAverage,
			&response.Active,
		)
		if err != nil {
			return nil, err
		}

		response.ID = id.String()
		if currentOrderID.Valid {
			value := currentOrderID.UUID.String()
			response.CurrentOrderID = &value
		}

		couriers = append(couriers, response)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return couriers, nil
}
