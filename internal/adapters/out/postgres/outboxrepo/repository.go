package outboxrepo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// DefaultMaxAttempts is how many failed publish attempts a message gets
// before it is dead-lettered.
const DefaultMaxAttempts = 5

// GormOutboxRepository implements OutboxRepository using GORM.
type GormOutboxRepository struct {
	db          *gorm.DB
	maxAttempts int
}

// NewGormOutboxRepository creates a new GORM outbox repository.
// maxAttempts <= 0 selects DefaultMaxAttempts.
func NewGormOutboxRepository(db *gorm.DB, maxAttempts int) *GormOutboxRepository {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &GormOutboxRepository{
		db:          db,
		maxAttempts: maxAttempts,
	}
}

// Add stages messages within the current transaction.
func (r *GormOutboxRepository) Add(ctx context.Context, messages []ports.OutboxMessage) error {
	if len(messages) == 0 {
		return nil
	}

	dtos := make([]OutboxMessageDTO, 0, len(messages))
	for _, message := range messages {
		dtos = append(dtos, fromPort(message))
	}

	return r.db.WithContext(ctx).Create(&dtos).Error
}

// GetPending retrieves up to limit unpublished messages that still have
// publish attempts left, oldest first.
func (r *GormOutboxRepository) GetPending(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	var dtos []OutboxMessageDTO
	err := r.db.WithContext(ctx).
		Where("published = false AND attempts < ?", r.maxAttempts).
		Order("created_at").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toPortSlice(dtos)
}

// MarkPublished marks a message as successfully published.
func (r *GormOutboxRepository) MarkPublished(ctx context.Context, id kernel.UUID) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&OutboxMessageDTO{}).
		Where("id = ?", id.Bytes()).
		Updates(map[string]any{"published": true, "published_at": &now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("outbox message", id.String())
	}
	return nil
}

// MarkFailed increments a message's attempt counter. Once the counter
// reaches the configured maximum the message stops being returned by
// GetPending and shows up in GetDeadLettered instead.
func (r *GormOutboxRepository) MarkFailed(ctx context.Context, id kernel.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&OutboxMessageDTO{}).
		Where("id = ?", id.Bytes()).
		Update("attempts", gorm.Expr("attempts + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("outbox message", id.String())
	}
	return nil
}

// GetDeadLettered retrieves messages that exhausted their publish attempts.
func (r *GormOutboxRepository) GetDeadLettered(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	var dtos []OutboxMessageDTO
	err := r.db.WithContext(ctx).
		Where("published = false AND attempts >= ?", r.maxAttempts).
		Order("created_at").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toPortSlice(dtos)
}

func toPortSlice(dtos []OutboxMessageDTO) ([]ports.OutboxMessage, error) {
	messages := make([]ports.OutboxMessage, 0, len(dtos))
	for _, dto := range dtos {
		message, err := toPort(dto)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}
