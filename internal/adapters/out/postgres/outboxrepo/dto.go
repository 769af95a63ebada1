// Package outboxrepo persists staged workflow events. Messages land in the
// outbox table inside the same transaction as the aggregate change that
// produced them; the relay job drains the table and publishes to the bus.
package outboxrepo

import (
	"time"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
)

// OutboxMessageDTO represents one staged event row.
type OutboxMessageDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	AggregateID uuid.UUID `gorm:"type:uuid;index"`
	Sequence    int64
	Topic       string `gorm:"type:varchar(100)"`
	Payload     []byte `gorm:"type:jsonb"`
	Attempts    int
	Published   bool `gorm:"index"`
	CreatedAt   time.Time
	PublishedAt *time.Time
}

// TableName specifies the database table name for outbox messages.
func (OutboxMessageDTO) TableName() string {
	return "outbox_messages"
}

func fromPort(message ports.OutboxMessage) OutboxMessageDTO {
	return OutboxMessageDTO{
		ID:          message.ID.Bytes(),
		AggregateID: message.AggregateID.Bytes(),
		Sequence:    message.Sequence,
		Topic:       message.Topic,
		Payload:     message.Payload,
		Attempts:    message.Attempts,
		CreatedAt:   message.CreatedAt,
	}
}

func toPort(dto OutboxMessageDTO) (ports.OutboxMessage, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return ports.OutboxMessage{}, err
	}
	aggregateID, err := kernel.UUIDFromBytes(dto.AggregateID[:])
	if err != nil {
		return ports.OutboxMessage{}, err
	}

	return ports.OutboxMessage{
		ID:          id,
		AggregateID: aggregateID,
		Sequence:    dto.Sequence,
		Topic:       dto.Topic,
		Payload:     dto.Payload,
		Attempts:    dto.Attempts,
		CreatedAt:   dto.CreatedAt,
	}, nil
}
