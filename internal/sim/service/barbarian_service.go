package service

import (
	"context"

	"BatallaMedieval/internal/shared/errx"
	"BatallaMedieval/internal/shared/gameconfig/balance"
	"BatallaMedieval/internal/shared/logs"
	"BatallaMedieval/internal/sim/entity"
	"BatallaMedieval/internal/sim/service/port"

	"go.uber.org/zap"
)

// 一批最多处理的野蛮人村庄数，避免一次慢 tick 扫全表。
const barbarianBatchSize = 50

// BarbarianService 野蛮人 AI：慢 tick 驱动，让无主城缓慢生长，
// 给玩家一点掠夺价值和抵抗。
type BarbarianService struct {
	cfg    *balance.Config
	cities port.CityRepository
	dice   Dice
}

func NewBarbarianService(cfg *balance.Config, cities port.CityRepository, dice Dice) *BarbarianService {
	return &BarbarianService{cfg: cfg, cities: cities, dice: dice}
}

// Grow 推进一轮生长：小概率捡资源，小概率花资源招基础步兵。
// worldID 为 nil 时跨所有世界。返回实际更新的村庄数。
func (s *BarbarianService) Grow(ctx context.Context, worldID *entity.WorldID) (int, error) {
	villages, err := s.cities.ListUnclaimed(ctx, worldID, barbarianBatchSize)
	if err != nil {
		return 0, errx.ErrUnavailable.WithCause(err)
	}

	grown := 0
	for _, city := range villages {
		changed := false

		// 10% 概率捡一点资源，封顶在基础仓库容量
		if s.dice.Float64() < 0.1 {
			cap := s.cfg.StorageCapacity(city.BuildingLevel(s.cfg.WarehouseBuilding))
			city.Stock = city.Stock.Add(entity.Resources{Wood: 10, Clay: 10, Iron: 10}).ClampTo(cap)
			changed = true
		}

		// 5% 概率招一个基础步兵，资源不够就跳过
		if s.dice.Float64() < 0.05 {
			if cost, err := s.cfg.TrainCost("basic_infantry", 1); err == nil {
				price := costToResources(cost)
				if city.Stock.CanAfford(price) {
					city.Stock = city.Stock.Sub(price)
					if city.Troops == nil {
						city.Troops = entity.TroopSet{}
					}
					city.Troops.Add(entity.TroopSet{"basic_infantry": 1})
					changed = true
				}
			}
		}

		if !changed {
			continue
		}
		if err := s.cities.SaveCity(ctx, city); err != nil {
			logs.Warn("野蛮人村庄落库失败", zap.Int64("city_id", city.ID), zap.Error(err))
			continue
		}
		grown++
	}
	return grown, nil
}
