package sqldb

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"BatallaMedieval/internal/sim/entity"
	"BatallaMedieval/internal/sim/infra/persistence/model"
)

type WorldRepo struct {
	db *gorm.DB
}

func NewWorldRepo(db *gorm.DB) *WorldRepo {
	return &WorldRepo{db: db}
}

func (r *WorldRepo) GetWorld(ctx context.Context, id entity.WorldID) (*entity.World, error) {
	var row model.World
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrWorldNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.WorldToEntity(&row), nil
}

func (r *WorldRepo) CreateWorld(ctx context.Context, w *entity.World) error {
	return r.db.WithContext(ctx).Create(model.WorldFromEntity(w)).Error
}

func (r *WorldRepo) ActiveEvent(ctx context.Context, worldID entity.WorldID, now time.Time) (*entity.WorldEvent, error) {
	var row model.WorldEvent
	err := r.db.WithContext(ctx).
		Where("world_id = ? AND start_at <= ? AND end_at >= ?", worldID, now, now).
		Order("start_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.EventToEntity(&row), nil
}

func (r *WorldRepo) CreateEvent(ctx context.Context, e *entity.WorldEvent) error {
	return r.db.WithContext(ctx).Create(model.EventFromEntity(e)).Error
}
