package sqldb

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"BatallaMedieval/internal/sim/entity"
	"BatallaMedieval/internal/sim/infra/persistence/model"
)

type OasisRepo struct {
	db *gorm.DB
}

func NewOasisRepo(db *gorm.DB) *OasisRepo {
	return &OasisRepo{db: db}
}

func (r *OasisRepo) GetOasis(ctx context.Context, id entity.OasisID) (*entity.Oasis, error) {
	var row model.Oasis
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrOasisNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.OasisToEntity(&row), nil
}

func (r *OasisRepo) OasisAt(ctx context.Context, worldID entity.WorldID, x, y int) (*entity.Oasis, error) {
	var row model.Oasis
	err := r.db.WithContext(ctx).
		Where("world_id = ? AND x = ? AND y = ?", worldID, x, y).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrOasisNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.OasisToEntity(&row), nil
}

func (r *OasisRepo) CreateOasis(ctx context.Context, oasis *entity.Oasis) error {
	return r.db.WithContext(ctx).Create(model.OasisFromEntity(oasis)).Error
}

func (r *OasisRepo) SaveOasis(ctx context.Context, oasis *entity.Oasis) error {
	return r.db.WithContext(ctx).Save(model.OasisFromEntity(oasis)).Error
}

func (r *OasisRepo) ListByOwnerCity(ctx context.Context, cityID entity.CityID) ([]*entity.Oasis, error) {
	var rows []model.Oasis
	if err := r.db.WithContext(ctx).Where("owner_city_id = ?", cityID).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.Oasis, 0, len(rows))
	for i := range rows {
		out = append(out, model.OasisToEntity(&rows[i]))
	}
	return out, nil
}
