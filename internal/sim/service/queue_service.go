package service

import (
	"context"
	"fmt"
	"time"

	"BatallaMedieval/internal/shared/errx"
	"BatallaMedieval/internal/shared/gameconfig/balance"
	"BatallaMedieval/internal/shared/logs"
	"BatallaMedieval/internal/shared/utils"
	"BatallaMedieval/internal/sim/entity"
	"BatallaMedieval/internal/sim/service/port"

	"go.uber.org/zap"
)

// QueueService 建造/练兵队列：下单即扣资源，到期由 tick 结算产出。
type QueueService struct {
	cfg        *balance.Config
	cities     port.CityRepository
	production *ProductionService
	modifiers  *ModifierService
	slots      port.SlotPolicy
	notifier   port.Notifier
	progress   port.ProgressSink
	now        func() time.Time
}

func NewQueueService(
	cfg *balance.Config,
	cities port.CityRepository,
	production *ProductionService,
	modifiers *ModifierService,
	slots port.SlotPolicy,
	notifier port.Notifier,
	progress port.ProgressSink,
) *QueueService {
	return &QueueService{
		cfg:        cfg,
		cities:     cities,
		production: production,
		modifiers:  modifiers,
		slots:      slots,
		notifier:   notifier,
		progress:   progress,
		now:        time.Now,
	}
}

// EnqueueBuilding 下建造单。目标等级 = 当前等级 + 已排队同名建筑数 + 1，
// 校验全部通过后才扣资源；任何一步拒绝都不会动城市状态。
func (s *QueueService) EnqueueBuilding(ctx context.Context, cityID entity.CityID, building string) (*entity.BuildQueueEntry, error) {
	city, err := s.cities.GetCity(ctx, cityID)
	if err != nil {
		return nil, translateRepoErr(err, "city_id", cityID)
	}

	b, ok := s.cfg.Buildings[building]
	if !ok {
		return nil, ErrValidation.WithData("building", building)
	}
	if len(city.BuildQueue) >= s.slots.BuildSlots(city.Owner) {
		return nil, ErrCapacity.WithData("queue", "build")
	}
	if err := checkRequirements(city, b.Requires); err != nil {
		return nil, err
	}

	now := s.now()
	mods, world, err := s.modifiers.Effective(ctx, city.WorldID, now)
	if err != nil {
		return nil, err
	}
	s.production.Settle(ctx, city, mods, world, now)

	target := city.BuildingLevel(building) + s.pendingBuilds(city, building) + 1
	cost, err := s.cfg.BuildingCost(building, target)
	if err != nil {
		return nil, ErrValidation.WithCause(err).WithData("building", building)
	}
	price := costToResources(cost)
	if !city.Stock.CanAfford(price) {
		return nil, insufficientErr(city.Stock, price)
	}
	city.Stock = city.Stock.Sub(price)

	// 建造与练兵共用同一档事件加速系数
	duration := b.BuildSeconds * float64(target) * mods.TrainingSpeed / world.SpeedModifier
	entry := entity.BuildQueueEntry{
		ID:          utils.NextSnowflakeID(),
		CityID:      city.ID,
		Building:    building,
		TargetLevel: target,
		Cost:        price,
		FinishAt:    now.Add(time.Duration(duration * float64(time.Second))),
	}
	city.BuildQueue = append(city.BuildQueue, entry)

	if err := s.cities.SaveCity(ctx, city); err != nil {
		return nil, errx.ErrUnavailable.WithCause(err).WithData("city_id", cityID)
	}
	logs.Info("建造入队",
		zap.Int64("city_id", city.ID),
		zap.String("building", building),
		zap.Int("target_level", target),
		zap.Time("finish_at", entry.FinishAt))
	return &entry, nil
}

// EnqueueTroops 下练兵单。人口占用 = 现役 + 在练 + 本单，超过农场上限即拒绝。
func (s *QueueService) EnqueueTroops(ctx context.Context, cityID entity.CityID, unit string, amount int) (*entity.TrainQueueEntry, error) {
	if amount < 1 {
		return nil, ErrValidation.WithData("amount", amount)
	}
	city, err := s.cities.GetCity(ctx, cityID)
	if err != nil {
		return nil, translateRepoErr(err, "city_id", cityID)
	}

	u, ok := s.cfg.Units[unit]
	if !ok || u.TrainSeconds <= 0 {
		// 野生生物等不可训练的兵种也走这里
		return nil, ErrValidation.WithData("unit", unit)
	}
	if len(city.TrainQueue) >= s.slots.TrainSlots(city.Owner) {
		return nil, ErrCapacity.WithData("queue", "train")
	}
	if err := checkRequirements(city, u.Requires); err != nil {
		return nil, err
	}

	population := s.cfg.PopulationOf(city.Troops) + s.pendingPopulation(city) + float64(u.Population*amount)
	if population > s.cfg.PopulationCapacity(city.BuildingLevel(s.cfg.FarmBuilding)) {
		return nil, ErrCapacity.WithData("population", population)
	}

	now := s.now()
	mods, world, err := s.modifiers.Effective(ctx, city.WorldID, now)
	if err != nil {
		return nil, err
	}
	s.production.Settle(ctx, city, mods, world, now)

	cost, err := s.cfg.TrainCost(unit, amount)
	if err != nil {
		return nil, ErrValidation.WithCause(err).WithData("unit", unit)
	}
	price := costToResources(cost)
	if !city.Stock.CanAfford(price) {
		return nil, insufficientErr(city.Stock, price)
	}
	city.Stock = city.Stock.Sub(price)

	duration := u.TrainSeconds * float64(amount) * mods.TrainingSpeed / world.SpeedModifier
	entry := entity.TrainQueueEntry{
		ID:       utils.NextSnowflakeID(),
		CityID:   city.ID,
		Unit:     unit,
		Amount:   amount,
		Cost:     price,
		FinishAt: now.Add(time.Duration(duration * float64(time.Second))),
	}
	city.TrainQueue = append(city.TrainQueue, entry)

	if err := s.cities.SaveCity(ctx, city); err != nil {
		return nil, errx.ErrUnavailable.WithCause(err).WithData("city_id", cityID)
	}
	logs.Info("练兵入队",
		zap.Int64("city_id", city.ID),
		zap.String("unit", unit),
		zap.Int("amount", amount),
		zap.Time("finish_at", entry.FinishAt))
	return &entry, nil
}

// Cancel 撤单并按比例退款，退款仍受仓库容量封顶。
// 条目不存在（比如刚好已完工）返回 false 而不是错误。
func (s *QueueService) Cancel(ctx context.Context, entryID entity.QueueID) (bool, error) {
	city, err := s.cities.FindCityByQueueEntry(ctx, entryID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, errx.ErrUnavailable.WithCause(err).WithData("entry_id", entryID)
	}

	now := s.now()
	mods, world, err := s.modifiers.Effective(ctx, city.WorldID, now)
	if err != nil {
		return false, err
	}
	s.production.Settle(ctx, city, mods, world, now)

	var refund entity.Resources
	found := false
	for i, e := range city.BuildQueue {
		if e.ID == entryID {
			refund = e.Cost.Scale(s.cfg.RefundRatio)
			city.BuildQueue = append(city.BuildQueue[:i], city.BuildQueue[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		for i, e := range city.TrainQueue {
			if e.ID == entryID {
				refund = e.Cost.Scale(s.cfg.RefundRatio)
				city.TrainQueue = append(city.TrainQueue[:i], city.TrainQueue[i+1:]...)
				found = true
				break
			}
		}
	}
	if !found {
		return false, nil
	}

	cap := s.cfg.StorageCapacity(city.BuildingLevel(s.cfg.WarehouseBuilding))
	city.Stock = city.Stock.Add(refund).ClampTo(cap)

	if err := s.cities.SaveCity(ctx, city); err != nil {
		return false, errx.ErrUnavailable.WithCause(err).WithData("entry_id", entryID)
	}
	logs.Info("队列撤单", zap.Int64("city_id", city.ID), zap.Int64("entry_id", entryID))
	return true, nil
}

// ProcessDue 批量结算到期条目。单城失败只记日志跳过，不阻塞批次。
// 返回成功结算的条目数。
func (s *QueueService) ProcessDue(ctx context.Context, worldID *entity.WorldID, now time.Time) (int, error) {
	ids, err := s.cities.CityIDsWithDueWork(ctx, worldID, now)
	if err != nil {
		return 0, errx.ErrUnavailable.WithCause(err)
	}
	processed := 0
	for _, id := range ids {
		n, err := s.processCity(ctx, id, now)
		if err != nil {
			logs.Error("城市队列结算失败，跳过", zap.Int64("city_id", id), zap.Error(err))
			continue
		}
		processed += n
	}
	return processed, nil
}

func (s *QueueService) processCity(ctx context.Context, cityID entity.CityID, now time.Time) (int, error) {
	city, err := s.cities.GetCity(ctx, cityID)
	if err != nil {
		return 0, err
	}
	mods, world, err := s.modifiers.Effective(ctx, city.WorldID, now)
	if err != nil {
		return 0, err
	}
	s.production.Settle(ctx, city, mods, world, now)

	owner, owned := city.Owner.PlayerID()
	done := 0

	remainingBuilds := city.BuildQueue[:0]
	for _, e := range city.BuildQueue {
		if e.FinishAt.After(now) {
			remainingBuilds = append(remainingBuilds, e)
			continue
		}
		city.RaiseBuilding(e.Building, e.TargetLevel)
		done++
		if owned {
			s.notifier.Notify(ctx, owner, "build",
				"Construcción completada",
				fmt.Sprintf("%s ha alcanzado el nivel %d en %s", e.Building, e.TargetLevel, city.Name))
			s.progress.Track(ctx, owner, "build_level", city.BuildingLevel(e.Building))
		}
	}
	city.BuildQueue = remainingBuilds

	remainingTrains := city.TrainQueue[:0]
	for _, e := range city.TrainQueue {
		if e.FinishAt.After(now) {
			remainingTrains = append(remainingTrains, e)
			continue
		}
		if city.Troops == nil {
			city.Troops = entity.TroopSet{}
		}
		city.Troops.Add(entity.TroopSet{e.Unit: e.Amount})
		done++
		if owned {
			s.notifier.Notify(ctx, owner, "train",
				"Entrenamiento completado",
				fmt.Sprintf("%d x %s listos en %s", e.Amount, e.Unit, city.Name))
			s.progress.Track(ctx, owner, "train_troops", e.Amount)
		}
	}
	city.TrainQueue = remainingTrains

	if err := s.cities.SaveCity(ctx, city); err != nil {
		return 0, err
	}
	return done, nil
}

func (s *QueueService) pendingBuilds(city *entity.City, building string) int {
	n := 0
	for _, e := range city.BuildQueue {
		if e.Building == building {
			n++
		}
	}
	return n
}

func (s *QueueService) pendingPopulation(city *entity.City) float64 {
	total := 0.0
	for _, e := range city.TrainQueue {
		if u, ok := s.cfg.Units[e.Unit]; ok {
			total += float64(u.Population * e.Amount)
		}
	}
	return total
}

func checkRequirements(city *entity.City, requires map[string]int) error {
	for building, level := range requires {
		if city.BuildingLevel(building) < level {
			return ErrPrerequisite.
				WithData("building", building).
				WithData("required_level", level)
		}
	}
	return nil
}

func insufficientErr(stock, price entity.Resources) error {
	return ErrInsufficient.
		WithData("required", map[string]float64{"wood": price.Wood, "clay": price.Clay, "iron": price.Iron}).
		WithData("available", map[string]float64{"wood": stock.Wood, "clay": stock.Clay, "iron": stock.Iron})
}
