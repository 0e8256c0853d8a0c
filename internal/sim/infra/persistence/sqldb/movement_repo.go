package sqldb

import (
	"context"
	"time"

	"gorm.io/gorm"

	"BatallaMedieval/internal/sim/entity"
	"BatallaMedieval/internal/sim/infra/persistence/model"
)

type MovementRepo struct {
	db *gorm.DB
}

func NewMovementRepo(db *gorm.DB) *MovementRepo {
	return &MovementRepo{db: db}
}

func (r *MovementRepo) CreateMovement(ctx context.Context, m *entity.Movement) error {
	return r.db.WithContext(ctx).Create(model.MovementFromEntity(m)).Error
}

func (r *MovementRepo) SaveMovement(ctx context.Context, m *entity.Movement) error {
	return r.db.WithContext(ctx).Save(model.MovementFromEntity(m)).Error
}

func (r *MovementRepo) DueMovements(ctx context.Context, worldID *entity.WorldID, now time.Time) ([]*entity.Movement, error) {
	q := r.db.WithContext(ctx).
		Where("status = ? AND arrive_at <= ?", string(entity.MovementOngoing), now).
		Order("arrive_at")
	if worldID != nil {
		q = q.Where("world_id = ?", *worldID)
	}
	var rows []model.Movement
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.Movement, 0, len(rows))
	for i := range rows {
		out = append(out, model.MovementToEntity(&rows[i]))
	}
	return out, nil
}

// AutoMigrate 建/升所有模拟相关的表。
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.World{},
		&model.WorldEvent{},
		&model.City{},
		&model.BuildQueueEntry{},
		&model.TrainQueueEntry{},
		&model.Oasis{},
		&model.Movement{},
	)
}
