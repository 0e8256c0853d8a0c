package service

import (
	"context"
	"errors"
	"time"

	"BatallaMedieval/internal/shared/errx"
	"BatallaMedieval/internal/shared/gameconfig/balance"
	"BatallaMedieval/internal/shared/logs"
	"BatallaMedieval/internal/shared/utils"
	"BatallaMedieval/internal/sim/entity"
	"BatallaMedieval/internal/sim/service/port"

	"go.uber.org/zap"
)

const (
	defaultMapSize        = 100
	worldGenBarbarians    = 50
	worldGenOases         = 20
	spawnAttempts         = 50
	foundCityBaseResource = 500
)

// WorldGenService 开服生成：新世界铺上野蛮人村庄和野生绿洲，
// 之后负责给新玩家找出生点、落城。
type WorldGenService struct {
	cfg    *balance.Config
	worlds port.WorldRepository
	cities port.CityRepository
	oases  port.OasisRepository
	dice   Dice
	now    func() time.Time
}

func NewWorldGenService(
	cfg *balance.Config,
	worlds port.WorldRepository,
	cities port.CityRepository,
	oases port.OasisRepository,
	dice Dice,
) *WorldGenService {
	return &WorldGenService{
		cfg:    cfg,
		worlds: worlds,
		cities: cities,
		oases:  oases,
		dice:   dice,
		now:    time.Now,
	}
}

// CreateWorld 建世界并铺满初始地图。坐标撞车的生成目标直接放弃，
// 地图密度不是硬性指标。
func (s *WorldGenService) CreateWorld(ctx context.Context, name string, speed, resourceRate float64) (*entity.World, error) {
	if name == "" {
		return nil, ErrValidation.WithData("name", "empty")
	}
	if speed <= 0 {
		speed = 1.0
	}
	if resourceRate <= 0 {
		resourceRate = 1.0
	}
	now := s.now()
	world := &entity.World{
		ID:               utils.NextSnowflakeID(),
		Name:             name,
		SpeedModifier:    speed,
		ResourceModifier: resourceRate,
		MapSize:          defaultMapSize,
		IsActive:         true,
		CreatedAt:        now,
	}
	if err := s.worlds.CreateWorld(ctx, world); err != nil {
		return nil, errx.ErrUnavailable.WithCause(err)
	}

	half := world.MapSize / 2
	randCoord := func() int { return s.dice.Intn(world.MapSize+1) - half }

	for i := 0; i < worldGenBarbarians; i++ {
		x, y := randCoord(), randCoord()
		if s.occupied(ctx, world.ID, x, y) {
			continue
		}
		city := &entity.City{
			ID:               utils.NextSnowflakeID(),
			WorldID:          world.ID,
			Name:             "Aldea Bárbara",
			Owner:            entity.Unclaimed(),
			X:                x,
			Y:                y,
			Stock:            entity.Resources{Wood: 1000, Clay: 1000, Iron: 1000},
			Loyalty:          100,
			LastProductionAt: now,
			Buildings: map[string]int{
				"town_hall": 1,
				s.cfg.WallBuilding: 1 + s.dice.Intn(3),
			},
			Troops: entity.TroopSet{"basic_infantry": 5 + s.dice.Intn(16)},
		}
		if err := s.cities.CreateCity(ctx, city); err != nil {
			logs.Warn("生成野蛮人村庄失败", zap.Int64("world_id", world.ID), zap.Error(err))
		}
	}

	resourceTypes := []string{"wood", "clay", "iron"}
	for i := 0; i < worldGenOases; i++ {
		x, y := randCoord(), randCoord()
		if s.occupied(ctx, world.ID, x, y) {
			continue
		}
		bonus := 25
		if s.dice.Float64() > 0.8 {
			bonus = 50
		}
		oasis := &entity.Oasis{
			ID:           utils.NextSnowflakeID(),
			WorldID:      world.ID,
			X:            x,
			Y:            y,
			ResourceType: resourceTypes[s.dice.Intn(len(resourceTypes))],
			BonusPercent: bonus,
			Troops: entity.TroopSet{
				"rat":    5 + s.dice.Intn(11),
				"spider": 3 + s.dice.Intn(6),
			},
		}
		if err := s.oases.CreateOasis(ctx, oasis); err != nil {
			logs.Warn("生成绿洲失败", zap.Int64("world_id", world.ID), zap.Error(err))
		}
	}

	logs.Info("新世界生成完成",
		zap.Int64("world_id", world.ID),
		zap.String("name", name),
		zap.Float64("speed", speed))
	return world, nil
}

// ScheduleEvent 登记限时全局事件。
func (s *WorldGenService) ScheduleEvent(ctx context.Context, e *entity.WorldEvent) error {
	if e.Name == "" || !e.EndAt.After(e.StartAt) {
		return ErrValidation.WithData("event", e.Name)
	}
	if _, err := s.worlds.GetWorld(ctx, e.WorldID); err != nil {
		return translateRepoErr(err, "world_id", e.WorldID)
	}
	e.ID = utils.NextSnowflakeID()
	if err := s.worlds.CreateEvent(ctx, e); err != nil {
		return errx.ErrUnavailable.WithCause(err)
	}
	return nil
}

// FoundCity 给玩家落一座起始城。随机试 spawnAttempts 次，全撞车就报容量。
func (s *WorldGenService) FoundCity(ctx context.Context, worldID entity.WorldID, playerID entity.PlayerID, name string) (*entity.City, error) {
	world, err := s.worlds.GetWorld(ctx, worldID)
	if err != nil {
		return nil, translateRepoErr(err, "world_id", worldID)
	}
	if !world.IsActive {
		return nil, ErrValidation.WithData("world_id", worldID)
	}
	if name == "" {
		name = "Nueva Ciudad"
	}

	half := world.MapSize / 2
	for i := 0; i < spawnAttempts; i++ {
		x := s.dice.Intn(world.MapSize+1) - half
		y := s.dice.Intn(world.MapSize+1) - half
		if s.occupied(ctx, worldID, x, y) {
			continue
		}
		city := &entity.City{
			ID:      utils.NextSnowflakeID(),
			WorldID: worldID,
			Name:    name,
			Owner:   entity.Owned(playerID),
			X:       x,
			Y:       y,
			Stock: entity.Resources{
				Wood: foundCityBaseResource,
				Clay: foundCityBaseResource,
				Iron: foundCityBaseResource,
			},
			Loyalty:          100,
			LastProductionAt: s.now(),
			Buildings:        map[string]int{"town_hall": 1},
			Troops:           entity.TroopSet{},
		}
		if err := s.cities.CreateCity(ctx, city); err != nil {
			if errors.Is(err, entity.ErrTileOccupied) {
				continue
			}
			return nil, errx.ErrUnavailable.WithCause(err)
		}
		logs.Info("玩家落城",
			zap.Int64("world_id", worldID),
			zap.Int64("player_id", playerID),
			zap.Int64("city_id", city.ID))
		return city, nil
	}
	return nil, ErrCapacity.WithData("reason", "no free tile found")
}

func (s *WorldGenService) occupied(ctx context.Context, worldID entity.WorldID, x, y int) bool {
	if _, err := s.cities.GetCityAt(ctx, worldID, x, y); err == nil {
		return true
	}
	if _, err := s.oases.OasisAt(ctx, worldID, x, y); err == nil {
		return true
	}
	return false
}
