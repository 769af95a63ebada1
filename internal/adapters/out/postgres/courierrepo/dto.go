// Package courierrepo provides data transfer objects and mapping functions for courier persistence.
// This package implements the repository pattern for the courier domain aggregate, handling
// the conversion between domain entities and database representations.
package courierrepo

import (
	"time"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/courier"
	"fulfillment/internal/core/domain/model/kernel"
)

// CourierDTO represents the database structure for persisting courier
// aggregates. The version column backs optimistic concurrency: two
// dispatchers racing for the same courier can only win one reservation.
type CourierDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name           string
	Vehicle        string     `gorm:"type:varchar(20)"`
	Available      bool       `gorm:"index"`
	Latitude       float64
	Longitude      float64
	CurrentOrderID *uuid.UUID `gorm:"type:uuid;index"`
	AvailableSince time.Time
	DeliveryCount  int
	RatingSum      float64
	RatingCount    int
	Active         bool
	Sequence       int64
	Version        int64
}

// TableName specifies the database table name for courier entities.
// Overrides GORM's default naming convention to use "couriers".
func (CourierDTO) TableName() string {
	return "couriers"
}

// fromDomain converts a courier domain aggregate to its database representation.
func fromDomain(aggregate *courier.Courier) CourierDTO {
	var currentOrderID *uuid.UUID
	if id := aggregate.CurrentOrderID(); id != nil {
		raw := id.Bytes()
		currentOrderID = &raw
	}

	return CourierDTO{
		ID:             aggregate.ID().Bytes(),
		Name:           aggregate.Name(),
		Vehicle:        aggregate.Vehicle().String(),
		Available:      aggregate.Available(),
		Latitude:       aggregate.Location().Latitude(),
		Longitude:      aggregate.Location().Longitude(),
		CurrentOrderID: currentOrderID,
		AvailableSince: aggregate.AvailableSince(),
		DeliveryCount:  aggregate.DeliveryCount(),
		RatingSum:      aggregate.RatingSum(),
		RatingCount:    aggregate.RatingCount(),
		Active:         aggregate.Active(),
		Sequence:       aggregate.Sequence(),
		Version:        aggregate.Version(),
	}
}

// toDomain converts a database DTO to a courier domain aggregate using
// RestoreCourier.
func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	vehicle, err := courier.VehicleFromString(dto.Vehicle)
	if err != nil {
		return nil, err
	}

	location, err := kernel.NewGeoPoint(dto.Latitude, dto.Longitude)
	if err != nil {
		return nil, err
	}

	var currentOrderID *kernel.UUID
	if dto.CurrentOrderID != nil {
		oID, orderErr := kernel.UUIDFromBytes((*dto.CurrentOrderID)[:])
		if orderErr != nil {
			return nil, orderErr
		}
		currentOrderID = &oID
	}

	return courier.RestoreCourier(
		id,
		dto.Name,
		vehicle,
		location,
		dto.Available,
		currentOrderID,
		dto.AvailableSince,
		dto.DeliveryCount,
		dto.RatingSum,
		dto.RatingCount,
		dto.Active,
		dto.Sequence,
		dto.Version,
	)
}
