// Package inboxrepo persists consumer-side idempotency keys. Paired with the
// outbox on the producer side, it turns the bus's at-least-once delivery into
// exactly-once effects.
package inboxrepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fulfillment/internal/core/domain/model/kernel"
)

// InboxEntryDTO is one processed-event key.
type InboxEntryDTO struct {
	ConsumerGroup string    `gorm:"type:varchar(100);primaryKey"`
	AggregateID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Sequence      int64     `gorm:"primaryKey;autoIncrement:false"`
	ProcessedAt   time.Time
}

// TableName specifies the database table name for inbox entries.
func (InboxEntryDTO) TableName() string {
	return "inbox_entries"
}

// GormInboxRepository implements InboxRepository using GORM.
type GormInboxRepository struct {
	db *gorm.DB
}

// NewGormInboxRepository creates a new GORM inbox repository.
func NewGormInboxRepository(db *gorm.DB) *GormInboxRepository {
	return &GormInboxRepository{db: db}
}

// Seen reports whether the idempotency key was already recorded.
func (r *GormInboxRepository) Seen(
	ctx context.Context,
	consumerGroup string,
	aggregateID kernel.UUID,
	sequence int64,
) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&InboxEntryDTO{}).
		Where("consumer_group = ? AND aggregate_id = ? AND sequence = ?",
			consumerGroup, aggregateID.Bytes(), sequence).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// Record inserts the idempotency key, reporting true when the key already
// existed. Uses ON CONFLICT DO NOTHING so concurrent deliveries of the same
// event race safely: exactly one caller sees false.
func (r *GormInboxRepository) Record(
	ctx context.Context,
	consumerGroup string,
	aggregateID kernel.UUID,
	sequence int64,
) (bool, error) {
	entry := InboxEntryDTO{
		ConsumerGroup: consumerGroup,
		AggregateID:   aggregateID.Bytes(),
		Sequence:      sequence,
		ProcessedAt:   time.Now().UTC(),
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entry)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 0, nil
}
