package sqldb

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"BatallaMedieval/internal/sim/entity"
	"BatallaMedieval/internal/sim/infra/persistence/model"
)

// CityRepo 城市聚合的 SQL 实现。城市行 + 两张队列表在一个事务里整体替换，
// 聚合要么全落地要么全不落地。
type CityRepo struct {
	db *gorm.DB
}

func NewCityRepo(db *gorm.DB) *CityRepo {
	return &CityRepo{db: db}
}

func (r *CityRepo) GetCity(ctx context.Context, id entity.CityID) (*entity.City, error) {
	var row model.City
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrCityNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, &row)
}

func (r *CityRepo) GetCityAt(ctx context.Context, worldID entity.WorldID, x, y int) (*entity.City, error) {
	var row model.City
	err := r.db.WithContext(ctx).
		Where("world_id = ? AND x = ? AND y = ?", worldID, x, y).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrCityNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, &row)
}

func (r *CityRepo) hydrate(ctx context.Context, row *model.City) (*entity.City, error) {
	var builds []model.BuildQueueEntry
	if err := r.db.WithContext(ctx).
		Where("city_id = ?", row.ID).Order("finish_at").Find(&builds).Error; err != nil {
		return nil, err
	}
	var trains []model.TrainQueueEntry
	if err := r.db.WithContext(ctx).
		Where("city_id = ?", row.ID).Order("finish_at").Find(&trains).Error; err != nil {
		return nil, err
	}
	return model.CityToEntity(row, builds, trains), nil
}

func (r *CityRepo) CreateCity(ctx context.Context, city *entity.City) error {
	row, builds, trains := model.CityFromEntity(city)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.City{}).
			Where("world_id = ? AND x = ? AND y = ?", city.WorldID, city.X, city.Y).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return entity.ErrTileOccupied
		}
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		if len(builds) > 0 {
			if err := tx.Create(&builds).Error; err != nil {
				return err
			}
		}
		if len(trains) > 0 {
			if err := tx.Create(&trains).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *CityRepo) SaveCity(ctx context.Context, city *entity.City) error {
	row, builds, trains := model.CityFromEntity(city)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(row).Error; err != nil {
			return err
		}
		// 队列整体替换：条目少、事务短，比逐条 diff 简单且不会漏删
		if err := tx.Where("city_id = ?", city.ID).Delete(&model.BuildQueueEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("city_id = ?", city.ID).Delete(&model.TrainQueueEntry{}).Error; err != nil {
			return err
		}
		if len(builds) > 0 {
			if err := tx.Create(&builds).Error; err != nil {
				return err
			}
		}
		if len(trains) > 0 {
			if err := tx.Create(&trains).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *CityRepo) FindCityByQueueEntry(ctx context.Context, entryID entity.QueueID) (*entity.City, error) {
	var build model.BuildQueueEntry
	err := r.db.WithContext(ctx).Where("id = ?", entryID).First(&build).Error
	if err == nil {
		return r.GetCity(ctx, build.CityID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	var train model.TrainQueueEntry
	err = r.db.WithContext(ctx).Where("id = ?", entryID).First(&train).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrCityNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.GetCity(ctx, train.CityID)
}

func (r *CityRepo) CityIDsWithDueWork(ctx context.Context, worldID *entity.WorldID, now time.Time) ([]entity.CityID, error) {
	collect := func(table string) ([]int64, error) {
		q := r.db.WithContext(ctx).Table(table).
			Select("DISTINCT q.city_id").
			Joins("JOIN sim_city c ON c.id = q.city_id").
			Where("q.finish_at <= ?", now)
		if worldID != nil {
			q = q.Where("c.world_id = ?", *worldID)
		}
		var ids []int64
		if err := q.Scan(&ids).Error; err != nil {
			return nil, err
		}
		return ids, nil
	}

	buildIDs, err := collect("sim_city_build_queue q")
	if err != nil {
		return nil, err
	}
	trainIDs, err := collect("sim_city_train_queue q")
	if err != nil {
		return nil, err
	}

	seen := map[int64]struct{}{}
	var out []entity.CityID
	for _, id := range append(buildIDs, trainIDs...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func (r *CityRepo) ListUnclaimed(ctx context.Context, worldID *entity.WorldID, limit int) ([]*entity.City, error) {
	q := r.db.WithContext(ctx).Where("owner_id IS NULL")
	if worldID != nil {
		q = q.Where("world_id = ?", *worldID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []model.City
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.City, 0, len(rows))
	for i := range rows {
		city, err := r.hydrate(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, city)
	}
	return out, nil
}
