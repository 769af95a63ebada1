// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Line items and workflow history are immutable snapshots, stored as JSONB
// documents rather than joined tables. The version column backs optimistic
// concurrency.
type OrderDTO struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID       uuid.UUID  `gorm:"type:uuid;index"`
	RestaurantID     uuid.UUID  `gorm:"type:uuid;index"`
	CourierID        *uuid.UUID `gorm:"type:uuid;index"`
	Status           string     `gorm:"type:varchar(40);index"`
	Items            []byte     `gorm:"type:jsonb"`
	History          []byte     `gorm:"type:jsonb"`
	DeliveryAddress  string
	PickupLatitude   float64
	PickupLongitude  float64
	PaymentMethod    string
	DeliveryFeeCents int64
	TotalPriceCents  int64
	VerificationCode *string `gorm:"type:varchar(6)"`
	CodeAttempts     int
	CreatedAt        time.Time
	AcceptedAt       *time.Time
	PickedUpAt       *time.Time
	DeliveredAt      *time.Time
	Sequence         int64
	Version          int64
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// itemDTO is the JSONB shape of one line item.
type itemDTO struct {
	DishID         string `json:"dishId"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

// historyEntryDTO is the JSONB shape of one workflow transition record.
type historyEntryDTO struct {
	Status    string    `json:"status"`
	ActorRole string    `json:"actorRole"`
	ActorID   *string   `json:"actorId,omitempty"`
	At        time.Time `json:"at"`
	Note      string    `json:"note,omitempty"`
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(aggregate *order.Order) (OrderDTO, error) {
	var courierID *uuid.UUID
	if id := aggregate.CourierID(); id != nil {
		raw := id.Bytes()
		courierID = &raw
	}

	items := make([]itemDTO, 0, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		items = append(items, itemDTO{
			DishID:         item.DishID().String(),
			Name:           item.Name(),
			Quantity:       item.Quantity(),
			UnitPriceCents: item.UnitPriceCents(),
		})
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return OrderDTO{}, err
	}

	history := make([]historyEntryDTO, 0, len(aggregate.History()))
	for _, entry := range aggregate.History() {
		dto := historyEntryDTO{
			Status:    entry.Status.String(),
			ActorRole: entry.ActorRole.String(),
			At:        entry.At,
			Note:      entry.Note,
		}
		if entry.ActorID != nil {
			id := entry.ActorID.String()
			dto.ActorID = &id
		}
		history = append(history, dto)
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return OrderDTO{}, err
	}

	var verificationCode *string
	if code := aggregate.VerificationCode(); code != nil {
		value := code.String()
		verificationCode = &value
	}

	return OrderDTO{
		ID:               aggregate.ID().Bytes(),
		CustomerID:       aggregate.CustomerID().Bytes(),
		RestaurantID:     aggregate.RestaurantID().Bytes(),
		CourierID:        courierID,
		Status:           aggregate.Status().String(),
		Items:            itemsJSON,
		History:          historyJSON,
		DeliveryAddress:  aggregate.DeliveryAddress(),
		PickupLatitude:   aggregate.PickupPoint().Latitude(),
		PickupLongitude:  aggregate.PickupPoint().Longitude(),
		PaymentMethod:    aggregate.PaymentMethod(),
		DeliveryFeeCents: aggregate.DeliveryFeeCents(),
		TotalPriceCents:  aggregate.TotalPriceCents(),
		VerificationCode: verificationCode,
		CodeAttempts:     aggregate.CodeAttempts(),
		CreatedAt:        aggregate.CreatedAt(),
		AcceptedAt:       aggregate.AcceptedAt(),
		PickedUpAt:       aggregate.PickedUpAt(),
		DeliveredAt:      aggregate.DeliveredAt(),
		Sequence:         aggregate.Sequence(),
		Version:          aggregate.Version(),
	}, nil
}

// toDomain converts a database DTO to an order domain aggregate using
// RestoreOrder, so the rebuilt aggregate passes the same validation as a
// freshly constructed one.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}
	restaurantID, err := kernel.UUIDFromBytes(dto.RestaurantID[:])
	if err != nil {
		return nil, err
	}

	var courierID *kernel.UUID
	if dto.CourierID != nil {
		cID, courierErr := kernel.UUIDFromBytes((*dto.CourierID)[:])
		if courierErr != nil {
			return nil, courierErr
		}
		courierID = &cID
	}

	pickupPoint, err := kernel.NewGeoPoint(dto.PickupLatitude, dto.PickupLongitude)
	if err != nil {
		return nil, err
	}

	status, err := order.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	items, err := itemsToDomain(dto.Items)
	if err != nil {
		return nil, err
	}

	history, err := historyToDomain(dto.History)
	if err != nil {
		return nil, err
	}

	var verificationCode *order.VerificationCode
	if dto.VerificationCode != nil {
		code, codeErr := order.VerificationCodeFromString(*dto.VerificationCode)
		if codeErr != nil {
			return nil, codeErr
		}
		verificationCode = &code
	}

	return order.RestoreOrder(
		id,
		customerID,
		restaurantID,
		courierID,
		pickupPoint,
		items,
		dto.DeliveryAddress,
		dto.PaymentMethod,
		dto.DeliveryFeeCents,
		dto.TotalPriceCents,
		status,
		history,
		verificationCode,
		dto.CodeAttempts,
		dto.CreatedAt,
		dto.AcceptedAt,
		dto.PickedUpAt,
		dto.DeliveredAt,
		dto.Sequence,
		dto.Version,
	)
}

func itemsToDomain(raw []byte) ([]order.Item, error) {
	var dtos []itemDTO
	if err := json.Unmarshal(raw, &dtos); err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(dtos))
	for _, dto := range dtos {
		dishID, err := kernel.UUIDFromString(dto.DishID)
		if err != nil {
			return nil, err
		}
		item, err := order.NewItem(dishID, dto.Name, dto.Quantity, dto.UnitPriceCents)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

func historyToDomain(raw []byte) ([]order.HistoryEntry, error) {
	var dtos []historyEntryDTO
	if err := json.Unmarshal(raw, &dtos); err != nil {
		return nil, err
	}

	history := make([]order.HistoryEntry, 0, len(dtos))
	for _, dto := range dtos {
		status, err := order.StatusFromString(dto.Status)
		if err != nil {
			return nil, err
		}
		role, err := order.RoleFromString(dto.ActorRole)
		if err != nil {
			return nil, err
		}

		entry := order.HistoryEntry{
			Status:    status,
			ActorRole: role,
			At:        dto.At,
			Note:      dto.Note,
		}
		if dto.ActorID != nil {
			actorID, idErr := kernel.UUIDFromString(*dto.ActorID)
			if idErr != nil {
				return nil, idErr
			}
			entry.ActorID = &actorID
		}

		history = append(history, entry)
	}

	return history, nil
}
