package service

import (
	"context"
	"errors"
	"time"

	"BatallaMedieval/internal/shared/errx"
	"BatallaMedieval/internal/shared/gameconfig/balance"
	"BatallaMedieval/internal/shared/logs"
	"BatallaMedieval/internal/sim/entity"
	"BatallaMedieval/internal/sim/service/port"

	"go.uber.org/zap"
)

// ProductionService 懒结算引擎：资源不按 tick 累加，
// 只在读到城市状态的那一刻把欠账一次性补齐。
type ProductionService struct {
	cfg       *balance.Config
	cities    port.CityRepository
	oases     port.OasisRepository
	modifiers *ModifierService
	progress  port.ProgressSink
	now       func() time.Time
}

func NewProductionService(
	cfg *balance.Config,
	cities port.CityRepository,
	oases port.OasisRepository,
	modifiers *ModifierService,
	progress port.ProgressSink,
) *ProductionService {
	return &ProductionService{
		cfg:       cfg,
		cities:    cities,
		oases:     oases,
		modifiers: modifiers,
		progress:  progress,
		now:       time.Now,
	}
}

// SettleCity 读取-结算-落库一条龙，返回结算后的城市快照。
func (s *ProductionService) SettleCity(ctx context.Context, cityID entity.CityID) (*entity.City, error) {
	city, err := s.cities.GetCity(ctx, cityID)
	if err != nil {
		return nil, translateRepoErr(err, "city_id", cityID)
	}
	now := s.now()
	mods, world, err := s.modifiers.Effective(ctx, city.WorldID, now)
	if err != nil {
		return nil, err
	}
	s.Settle(ctx, city, mods, world, now)
	if err := s.cities.SaveCity(ctx, city); err != nil {
		return nil, errx.ErrUnavailable.WithCause(err).WithData("city_id", cityID)
	}
	return city, nil
}

// Settle 把 [LastProductionAt, now] 区间的产出和忠诚恢复补进城市。
// 纯内存修改，不落库也不会失败；仓储故障只会让绿洲加成降级为 0。
// 幂等：elapsed<=0 时什么都不做。
func (s *ProductionService) Settle(ctx context.Context, city *entity.City, mods entity.Modifiers, world *entity.World, now time.Time) entity.Resources {
	elapsed := now.Sub(city.LastProductionAt)
	if elapsed <= 0 {
		return entity.Resources{}
	}
	minutes := elapsed.Minutes()

	rate := world.ResourceModifier * mods.ProductionSpeed
	bonus := s.oasisBonus(ctx, city)

	produced := entity.Resources{
		Wood: s.cfg.ProductionPerMinute["wood"] * minutes * rate * (1 + bonus["wood"]),
		Clay: s.cfg.ProductionPerMinute["clay"] * minutes * rate * (1 + bonus["clay"]),
		Iron: s.cfg.ProductionPerMinute["iron"] * minutes * rate * (1 + bonus["iron"]),
	}

	cap := s.cfg.StorageCapacity(city.BuildingLevel(s.cfg.WarehouseBuilding))
	before := city.Stock
	city.Stock = city.Stock.Add(produced).ClampTo(cap)
	gained := city.Stock.Sub(before)

	// 忠诚度随时间恢复，封顶 100
	city.Loyalty = min(100, city.Loyalty+s.cfg.LoyaltyRecoveryPerHour*elapsed.Hours())
	city.LastProductionAt = now

	if owner, ok := city.Owner.PlayerID(); ok && gained.Total() > 0 {
		s.progress.Track(ctx, owner, "resources_collected", int(gained.Total()))
	}
	return gained
}

// oasisBonus 汇总该城吞并绿洲的分资源加成（0.25/0.50 累加）。
func (s *ProductionService) oasisBonus(ctx context.Context, city *entity.City) map[string]float64 {
	bonus := map[string]float64{}
	owned, err := s.oases.ListByOwnerCity(ctx, city.ID)
	if err != nil {
		logs.Warn("查询绿洲失败，本次结算不含绿洲加成",
			zap.Int64("city_id", city.ID), zap.Error(err))
		return bonus
	}
	for _, o := range owned {
		bonus[o.ResourceType] += float64(o.BonusPercent) / 100
	}
	return bonus
}

// translateRepoErr 把仓储哨兵翻译成业务/系统错误。
func translateRepoErr(err error, key string, value any) error {
	switch {
	case isNotFound(err):
		return ErrValidation.WithCause(err).WithData(key, value)
	default:
		return errx.ErrUnavailable.WithCause(err).WithData(key, value)
	}
}

func isNotFound(err error) bool {
	for _, sentinel := range []error{
		entity.ErrCityNotFound, entity.ErrOasisNotFound,
		entity.ErrWorldNotFound, entity.ErrMovementNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
