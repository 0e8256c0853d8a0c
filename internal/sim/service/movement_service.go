package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"BatallaMedieval/internal/shared/errx"
	"BatallaMedieval/internal/shared/gameconfig/balance"
	"BatallaMedieval/internal/shared/logs"
	"BatallaMedieval/internal/shared/utils"
	"BatallaMedieval/internal/sim/entity"
	"BatallaMedieval/internal/sim/service/port"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SendOrder 玩家下达的行军指令。目标城池/绿洲二选一。
type SendOrder struct {
	OriginCityID  entity.CityID
	TargetCityID  *entity.CityID
	TargetOasisID *entity.OasisID
	Type          entity.MovementType

	Troops   entity.TroopSet
	Cargo    entity.Resources
	SpyCount int
	WithHero bool // 攻击时带上驻守英雄

	// catapult 要打的建筑，可为空
	TargetBuilding string
}

// MovementService 行军引擎：出发即扣兵/扣货，到点解算，战后派生回程。
type MovementService struct {
	cfg        *balance.Config
	cities     port.CityRepository
	oases      port.OasisRepository
	movements  port.MovementRepository
	reports    port.ReportRepository
	production *ProductionService
	modifiers  *ModifierService
	combat     *CombatService
	espionage  *EspionageService
	notifier   port.Notifier
	progress   port.ProgressSink
	guard      port.ActionGuard
	dice       Dice
	now        func() time.Time
}

func NewMovementService(
	cfg *balance.Config,
	cities port.CityRepository,
	oases port.OasisRepository,
	movements port.MovementRepository,
	reports port.ReportRepository,
	production *ProductionService,
	modifiers *ModifierService,
	combat *CombatService,
	espionage *EspionageService,
	notifier port.Notifier,
	progress port.ProgressSink,
	guard port.ActionGuard,
	dice Dice,
) *MovementService {
	return &MovementService{
		cfg:        cfg,
		cities:     cities,
		oases:      oases,
		movements:  movements,
		reports:    reports,
		production: production,
		modifiers:  modifiers,
		combat:     combat,
		espionage:  espionage,
		notifier:   notifier,
		progress:   progress,
		guard:      guard,
		dice:       dice,
		now:        time.Now,
	}
}

// Send 校验并创建一条行军。兵力/货物在出发瞬间从源城扣除。
func (s *MovementService) Send(ctx context.Context, order SendOrder) (*entity.Movement, error) {
	if !order.Type.Valid() {
		return nil, ErrValidation.WithData("type", string(order.Type))
	}
	// return 系列只能由结算器派生，不接受外部下单
	if order.Type == entity.MovementReturn || order.Type == entity.MovementTransportReturn {
		return nil, ErrValidation.WithData("type", string(order.Type))
	}
	if (order.TargetCityID == nil) == (order.TargetOasisID == nil) {
		return nil, ErrValidation.WithData("target", "exactly one of city/oasis")
	}
	if order.TargetOasisID != nil && order.Type != entity.MovementAttack {
		return nil, ErrValidation.WithData("target", "oasis only accepts attack")
	}

	origin, err := s.cities.GetCity(ctx, order.OriginCityID)
	if err != nil {
		return nil, translateRepoErr(err, "origin_city_id", order.OriginCityID)
	}

	if owner, ok := origin.Owner.PlayerID(); ok && s.guard != nil && !s.guard.Allow(owner) {
		return nil, errx.ErrRateLimited.WithData("player_id", owner)
	}

	tx, ty, err := s.targetCoords(ctx, origin, order)
	if err != nil {
		return nil, err
	}

	now := s.now()
	mods, world, err := s.modifiers.Effective(ctx, origin.WorldID, now)
	if err != nil {
		return nil, err
	}
	s.production.Settle(ctx, origin, mods, world, now)

	troopsBefore := origin.Troops.Clone()
	stockBefore := origin.Stock
	heroBefore := origin.Hero

	baseSpeed, err := s.deduct(origin, &order)
	if err != nil {
		return nil, err
	}

	var hero *entity.Hero
	if order.WithHero {
		if order.Type != entity.MovementAttack {
			return nil, ErrValidation.WithData("reason", "hero only joins attacks")
		}
		if origin.Hero == nil {
			return nil, ErrValidation.WithData("reason", "no hero stationed")
		}
		hero = origin.Hero
		origin.Hero = nil
	}

	distance := math.Hypot(float64(tx-origin.X), float64(ty-origin.Y))
	speed := math.Max(s.cfg.MinSpeed, baseSpeed*world.SpeedModifier*mods.MovementSpeed)
	travel := time.Duration(distance / speed * float64(time.Hour))

	m := &entity.Movement{
		ID:             utils.NextSnowflakeID(),
		WorldID:        origin.WorldID,
		OriginCityID:   origin.ID,
		TargetCityID:   order.TargetCityID,
		TargetOasisID:  order.TargetOasisID,
		Type:           order.Type,
		Troops:         order.Troops.Clone(),
		Cargo:          order.Cargo,
		SpyCount:       order.SpyCount,
		Hero:           hero,
		TargetBuilding: order.TargetBuilding,
		Speed:          speed,
		DepartedAt:     now,
		ArriveAt:       now.Add(travel),
		Status:         entity.MovementOngoing,
	}

	if err := s.cities.SaveCity(ctx, origin); err != nil {
		return nil, errx.ErrUnavailable.WithCause(err).WithData("city_id", origin.ID)
	}
	if err := s.movements.CreateMovement(ctx, m); err != nil {
		// 扣减已落库但行军没建出来：把源城回滚，兵货不能凭空消失
		origin.Troops = troopsBefore
		origin.Stock = stockBefore
		origin.Hero = heroBefore
		if rbErr := s.cities.SaveCity(ctx, origin); rbErr != nil {
			logs.Error("行军创建失败后源城回滚失败",
				zap.Int64("city_id", origin.ID), zap.Error(rbErr))
		}
		return nil, errx.ErrUnavailable.WithCause(err).WithData("movement_id", m.ID)
	}

	logs.Info("行军出发",
		zap.Int64("movement_id", m.ID),
		zap.String("type", string(m.Type)),
		zap.Int64("origin", origin.ID),
		zap.Float64("distance", distance),
		zap.Time("arrive_at", m.ArriveAt))
	if owner, ok := origin.Owner.PlayerID(); ok {
		switch m.Type {
		case entity.MovementAttack:
			s.progress.Track(ctx, owner, "attack_sent", 1)
		case entity.MovementSpy:
			s.progress.Track(ctx, owner, "spy_sent", 1)
		}
	}

	// 间谍行动无预警；攻击行军对守方可见
	if m.Type == entity.MovementAttack && m.TargetCityID != nil {
		if target, err := s.cities.GetCity(ctx, *m.TargetCityID); err == nil {
			if defender, ok := target.Owner.PlayerID(); ok {
				s.notifier.Notify(ctx, defender, "incoming_attack", "¡Ataque entrante!",
					fmt.Sprintf("Tropas enemigas llegarán a %s a las %s",
						target.Name, m.ArriveAt.UTC().Format(time.RFC3339)))
			}
		}
	}
	return m, nil
}

// targetCoords 解析目标坐标并做跨世界/打自己的校验。
func (s *MovementService) targetCoords(ctx context.Context, origin *entity.City, order SendOrder) (int, int, error) {
	if order.TargetOasisID != nil {
		oasis, err := s.oases.GetOasis(ctx, *order.TargetOasisID)
		if err != nil {
			return 0, 0, translateRepoErr(err, "oasis_id", *order.TargetOasisID)
		}
		if oasis.WorldID != origin.WorldID {
			return 0, 0, ErrValidation.WithData("reason", "cross-world movement")
		}
		return oasis.X, oasis.Y, nil
	}
	if *order.TargetCityID == origin.ID {
		return 0, 0, ErrValidation.WithData("reason", "cannot target own origin city")
	}
	target, err := s.cities.GetCity(ctx, *order.TargetCityID)
	if err != nil {
		return 0, 0, translateRepoErr(err, "target_city_id", *order.TargetCityID)
	}
	if target.WorldID != origin.WorldID {
		return 0, 0, ErrValidation.WithData("reason", "cross-world movement")
	}
	return target.X, target.Y, nil
}

// deduct 按任务类型校验并从源城扣除兵力/货物，返回基础速度（格/小时）。
func (s *MovementService) deduct(origin *entity.City, order *SendOrder) (float64, error) {
	switch order.Type {
	case entity.MovementAttack, entity.MovementReinforce:
		if order.Troops.Total() <= 0 {
			return 0, ErrValidation.WithData("reason", "empty troops")
		}
		for unit := range order.Troops {
			if _, ok := s.cfg.Units[unit]; !ok {
				return 0, ErrValidation.WithData("unit", unit)
			}
		}
		if !origin.Troops.Has(order.Troops) {
			return 0, ErrValidation.WithData("reason", "not enough troops")
		}
		origin.Troops.Remove(order.Troops)
		return s.cfg.SlowestSpeed(order.Troops), nil

	case entity.MovementSpy:
		if order.SpyCount < 1 {
			return 0, ErrValidation.WithData("spy_count", order.SpyCount)
		}
		spyUnit := s.cfg.Espionage.SpyUnit
		if origin.Troops[spyUnit] < order.SpyCount {
			return 0, ErrValidation.WithData("reason", "not enough spies")
		}
		origin.Troops.Remove(entity.TroopSet{spyUnit: order.SpyCount})
		return s.cfg.Units[spyUnit].Speed, nil

	case entity.MovementTransport:
		if order.Cargo.IsZero() || order.Cargo.Wood < 0 || order.Cargo.Clay < 0 || order.Cargo.Iron < 0 {
			return 0, ErrValidation.WithData("reason", "invalid cargo")
		}
		if !origin.Stock.CanAfford(order.Cargo) {
			return 0, insufficientErr(origin.Stock, order.Cargo)
		}
		origin.Stock = origin.Stock.Sub(order.Cargo)
		return s.cfg.MerchantSpeed, nil
	}
	return 0, ErrValidation.WithData("type", string(order.Type))
}

// ResolveDue 结算所有到点的行军。单条失败标记 completed_with_error 后继续，
// 毒记录不会卡死批次。返回结算条数（含失败标记的）。
func (s *MovementService) ResolveDue(ctx context.Context, worldID *entity.WorldID, now time.Time) (int, error) {
	due, err := s.movements.DueMovements(ctx, worldID, now)
	if err != nil {
		return 0, errx.ErrUnavailable.WithCause(err)
	}
	resolved := 0
	for _, m := range due {
		if err := s.resolveOne(ctx, m, now); err != nil {
			logs.Error("行军结算失败，标记后跳过",
				zap.Int64("movement_id", m.ID),
				zap.String("type", string(m.Type)),
				zap.Error(err))
			m.Status = entity.MovementFailed
		} else {
			m.Status = entity.MovementCompleted
		}
		if err := s.movements.SaveMovement(ctx, m); err != nil {
			logs.Error("行军状态落库失败", zap.Int64("movement_id", m.ID), zap.Error(err))
			continue
		}
		resolved++
	}
	return resolved, nil
}

func (s *MovementService) resolveOne(ctx context.Context, m *entity.Movement, now time.Time) error {
	mods, world, err := s.modifiers.Effective(ctx, m.WorldID, now)
	if err != nil {
		return err
	}
	switch m.Type {
	case entity.MovementAttack:
		if m.TargetsOasis() {
			return s.resolveOasisAttack(ctx, m, mods, world, now)
		}
		return s.resolveCityAttack(ctx, m, mods, world, now)
	case entity.MovementSpy:
		return s.resolveSpy(ctx, m, mods, world, now)
	case entity.MovementReinforce:
		return s.resolveReinforce(ctx, m, mods, world, now)
	case entity.MovementTransport:
		return s.resolveTransport(ctx, m, mods, world, now)
	case entity.MovementReturn, entity.MovementTransportReturn:
		return s.resolveReturn(ctx, m, mods, world, now)
	}
	return fmt.Errorf("unknown movement type: %s", m.Type)
}

func (s *MovementService) resolveCityAttack(ctx context.Context, m *entity.Movement, mods entity.Modifiers, world *entity.World, now time.Time) error {
	origin, err := s.cities.GetCity(ctx, m.OriginCityID)
	if err != nil {
		return err
	}
	defender, err := s.cities.GetCity(ctx, *m.TargetCityID)
	if err != nil {
		return err
	}
	s.production.Settle(ctx, defender, mods, world, now)

	wall := s.cfg.WallBuilding
	in := BattleInput{
		Attacker:            m.Troops,
		AttackerHero:        m.Hero,
		Defender:            defender.Troops,
		DefenderHero:        defender.Hero,
		WallLevel:           defender.BuildingLevel(wall),
		Available:           defender.Stock,
		LootModifier:        mods.LootModifier,
		Loyalty:             defender.Loyalty,
		ConquerableTarget:   defender.Owner.IsUnclaimed(),
		TargetBuilding:      m.TargetBuilding,
		TargetBuildingLevel: defender.BuildingLevel(m.TargetBuilding),
	}
	out := s.combat.Resolve(in, s.dice)

	defender.Troops = out.DefenderSurvivors.Clone()
	defender.Stock = defender.Stock.Sub(out.Loot)
	if out.DefenderHero != nil {
		defender.Hero = nil
		if out.DefenderHero.Alive {
			h := out.DefenderHero.Hero
			defender.Hero = &h
		}
	}
	if out.WallDamage != nil {
		defender.Buildings[wall] = out.WallDamage.To
	}
	if out.BuildingDamage != nil {
		defender.Buildings[out.BuildingDamage.Building] = out.BuildingDamage.To
	}
	if out.LoyaltyChange != 0 {
		defender.Loyalty += out.LoyaltyChange
	}
	if out.Conquest {
		defender.Owner = origin.Owner
		defender.Loyalty = s.cfg.Combat.ConquestLoyalty
		logs.Info("城市易主",
			zap.Int64("city_id", defender.ID),
			zap.Int64("conqueror_city", origin.ID))
	}
	if err := s.cities.SaveCity(ctx, defender); err != nil {
		return err
	}

	report := s.battleReport(m, out, now, "battle")
	report.DefenderCityID = m.TargetCityID
	if err := s.reports.SaveBattleReport(ctx, report); err != nil {
		logs.Error("战报落库失败", zap.Int64("movement_id", m.ID), zap.Error(err))
	}

	if owner, ok := origin.Owner.PlayerID(); ok {
		if out.DefenderSurvivors.Total() == 0 {
			s.progress.Track(ctx, owner, "win_battles", 1)
		}
		if out.XPGained > 0 {
			s.progress.Track(ctx, owner, "battle_xp", out.XPGained)
		}
	}
	if defOwner, ok := defender.Owner.PlayerID(); ok && !out.Conquest {
		s.notifier.Notify(ctx, defOwner, "battle",
			"¡Tu ciudad ha sido atacada!",
			fmt.Sprintf("%s fue atacada, revisa el informe de batalla", defender.Name))
	}

	return s.dispatchReturn(ctx, m, origin, out.AttackerSurvivors, out.Loot, survivingHero(out.AttackerHero), world, mods, now)
}

func (s *MovementService) resolveOasisAttack(ctx context.Context, m *entity.Movement, mods entity.Modifiers, world *entity.World, now time.Time) error {
	origin, err := s.cities.GetCity(ctx, m.OriginCityID)
	if err != nil {
		return err
	}
	oasis, err := s.oases.GetOasis(ctx, *m.TargetOasisID)
	if err != nil {
		return err
	}

	// 野外战斗没有士气压制，固定 1.0
	in := BattleInput{
		Attacker:     m.Troops,
		AttackerHero: m.Hero,
		Defender:     oasis.Troops,
		FlatMoral:    1.0,
	}
	out := s.combat.Resolve(in, s.dice)

	if out.DefenderSurvivors.Total() == 0 {
		originID := origin.ID
		oasis.OwnerCityID = &originID
		oasis.Troops = entity.TroopSet{}
		logs.Info("绿洲被吞并",
			zap.Int64("oasis_id", oasis.ID),
			zap.Int64("city_id", origin.ID))
	} else {
		oasis.Troops = out.DefenderSurvivors.Clone()
	}
	if err := s.oases.SaveOasis(ctx, oasis); err != nil {
		return err
	}

	report := s.battleReport(m, out, now, "oasis_battle")
	report.DefenderOasisID = m.TargetOasisID
	if err := s.reports.SaveBattleReport(ctx, report); err != nil {
		logs.Error("战报落库失败", zap.Int64("movement_id", m.ID), zap.Error(err))
	}

	return s.dispatchReturn(ctx, m, origin, out.AttackerSurvivors, entity.Resources{}, survivingHero(out.AttackerHero), world, mods, now)
}

func (s *MovementService) resolveSpy(ctx context.Context, m *entity.Movement, mods entity.Modifiers, world *entity.World, now time.Time) error {
	origin, err := s.cities.GetCity(ctx, m.OriginCityID)
	if err != nil {
		return err
	}
	defender, err := s.cities.GetCity(ctx, *m.TargetCityID)
	if err != nil {
		return err
	}
	s.production.Settle(ctx, defender, mods, world, now)

	out := s.espionage.Resolve(SpyInput{
		WorldID:           m.WorldID,
		AttackerCityID:    origin.ID,
		DefenderCityID:    defender.ID,
		AttackerSpies:     m.SpyCount,
		DefenderSpies:     defender.Troops[s.cfg.Espionage.SpyUnit],
		SpyModifier:       mods.SpyModifier,
		DefenderResources: defender.Stock,
		DefenderTroops:    defender.Troops,
		DefenderBuildings: defender.Buildings,
	}, now, s.dice)

	if err := s.reports.SaveSpyReport(ctx, out.AttackerReport); err != nil {
		logs.Error("谍报落库失败", zap.Int64("movement_id", m.ID), zap.Error(err))
	}
	if err := s.reports.SaveSpyReport(ctx, out.DefenderReport); err != nil {
		logs.Error("谍报落库失败", zap.Int64("movement_id", m.ID), zap.Error(err))
	}

	if defOwner, ok := defender.Owner.PlayerID(); ok {
		s.notifier.Notify(ctx, defOwner, "spy",
			"Actividad de espionaje",
			fmt.Sprintf("Se ha detectado espionaje sobre %s", defender.Name))
	}

	if out.SurvivingSpies <= 0 {
		return nil
	}
	// 幸存间谍按间谍速度返程
	spyUnit := s.cfg.Espionage.SpyUnit
	speed := math.Max(s.cfg.MinSpeed, s.cfg.Units[spyUnit].Speed*world.SpeedModifier*mods.MovementSpeed)
	back := s.newReturn(m, entity.MovementReturn, entity.TroopSet{}, entity.Resources{}, speed, now)
	back.SpyCount = out.SurvivingSpies
	return s.movements.CreateMovement(ctx, back)
}

func (s *MovementService) resolveReinforce(ctx context.Context, m *entity.Movement, mods entity.Modifiers, world *entity.World, now time.Time) error {
	target, err := s.cities.GetCity(ctx, *m.TargetCityID)
	if err != nil {
		return err
	}
	s.production.Settle(ctx, target, mods, world, now)
	if target.Troops == nil {
		target.Troops = entity.TroopSet{}
	}
	target.Troops.Add(m.Troops)
	if err := s.cities.SaveCity(ctx, target); err != nil {
		return err
	}

	report := &entity.BattleReport{
		ID:                uuid.NewString(),
		WorldID:           m.WorldID,
		Kind:              "reinforce",
		AttackerCityID:    m.OriginCityID,
		DefenderCityID:    m.TargetCityID,
		CreatedAt:         now,
		AttackerInitial:   m.Troops.Clone(),
		AttackerSurvivors: m.Troops.Clone(),
	}
	if err := s.reports.SaveBattleReport(ctx, report); err != nil {
		logs.Error("援军报告落库失败", zap.Int64("movement_id", m.ID), zap.Error(err))
	}
	if owner, ok := target.Owner.PlayerID(); ok {
		s.notifier.Notify(ctx, owner, "reinforce",
			"Refuerzos recibidos",
			fmt.Sprintf("Han llegado refuerzos a %s", target.Name))
	}
	return nil
}

func (s *MovementService) resolveTransport(ctx context.Context, m *entity.Movement, mods entity.Modifiers, world *entity.World, now time.Time) error {
	target, err := s.cities.GetCity(ctx, *m.TargetCityID)
	if err != nil {
		return err
	}
	s.production.Settle(ctx, target, mods, world, now)
	// 送货不受仓库封顶：溢出部分在下次结算按容量截断，送的人自己承担浪费
	target.Stock = target.Stock.Add(m.Cargo)
	if err := s.cities.SaveCity(ctx, target); err != nil {
		return err
	}

	report := &entity.BattleReport{
		ID:             uuid.NewString(),
		WorldID:        m.WorldID,
		Kind:           "trade",
		AttackerCityID: m.OriginCityID,
		DefenderCityID: m.TargetCityID,
		CreatedAt:      now,
		Loot:           m.Cargo,
	}
	if err := s.reports.SaveBattleReport(ctx, report); err != nil {
		logs.Error("运输报告落库失败", zap.Int64("movement_id", m.ID), zap.Error(err))
	}
	if owner, ok := target.Owner.PlayerID(); ok {
		s.notifier.Notify(ctx, owner, "trade",
			"Mercancía recibida",
			fmt.Sprintf("Ha llegado un envío a %s", target.Name))
	}

	// 商人空车返程
	speed := math.Max(s.cfg.MinSpeed, s.cfg.MerchantSpeed*world.SpeedModifier*mods.MovementSpeed)
	back := s.newReturn(m, entity.MovementTransportReturn, entity.TroopSet{}, entity.Resources{}, speed, now)
	return s.movements.CreateMovement(ctx, back)
}

func (s *MovementService) resolveReturn(ctx context.Context, m *entity.Movement, mods entity.Modifiers, world *entity.World, now time.Time) error {
	// return 的 TargetCityID 是当初的出发城
	home, err := s.cities.GetCity(ctx, *m.TargetCityID)
	if err != nil {
		return err
	}
	s.production.Settle(ctx, home, mods, world, now)

	if home.Troops == nil {
		home.Troops = entity.TroopSet{}
	}
	home.Troops.Add(m.Troops)
	if m.SpyCount > 0 {
		home.Troops.Add(entity.TroopSet{s.cfg.Espionage.SpyUnit: m.SpyCount})
	}
	if m.Hero != nil {
		h := *m.Hero
		home.Hero = &h
	}
	// 战利品入库受容量封顶，装不下的白抢
	if !m.Cargo.IsZero() {
		cap := s.cfg.StorageCapacity(home.BuildingLevel(s.cfg.WarehouseBuilding))
		looted := home.Stock.Add(m.Cargo).ClampTo(cap).Sub(home.Stock)
		home.Stock = home.Stock.Add(looted)
		if owner, ok := home.Owner.PlayerID(); ok && looted.Total() > 0 {
			s.progress.Track(ctx, owner, "resources_looted", int(looted.Total()))
		}
	}
	return s.cities.SaveCity(ctx, home)
}

// survivingHero 活着的英雄以战后状态随队，阵亡不回家。
func survivingHero(r *HeroResult) *entity.Hero {
	if r == nil || !r.Alive {
		return nil
	}
	h := r.Hero
	return &h
}

// dispatchReturn 战斗结束后幸存者带战利品返程；兵员英雄双双全灭则没有回程。
func (s *MovementService) dispatchReturn(ctx context.Context, m *entity.Movement, origin *entity.City, survivors entity.TroopSet, loot entity.Resources, hero *entity.Hero, world *entity.World, mods entity.Modifiers, now time.Time) error {
	if survivors.Total() <= 0 && hero == nil {
		return nil
	}
	speed := math.Max(s.cfg.MinSpeed, s.cfg.SlowestSpeed(survivors)*world.SpeedModifier*mods.MovementSpeed)
	if survivors.Total() <= 0 {
		// 英雄单骑返程，沿用来时速度
		speed = m.Speed
	}
	back := s.newReturn(m, entity.MovementReturn, survivors, loot, speed, now)
	back.Hero = hero
	return s.movements.CreateMovement(ctx, back)
}

// newReturn 以原行军的目标为起点、出发城为终点派生一条回程。
func (s *MovementService) newReturn(m *entity.Movement, typ entity.MovementType, troops entity.TroopSet, cargo entity.Resources, speed float64, now time.Time) *entity.Movement {
	travel := m.ArriveAt.Sub(m.DepartedAt)
	if m.Speed > 0 && speed > 0 {
		// 距离一样，速度可能不同（幸存兵种构成变了）
		travel = time.Duration(float64(travel) * m.Speed / speed)
	}
	home := m.OriginCityID
	return &entity.Movement{
		ID:           utils.NextSnowflakeID(),
		WorldID:      m.WorldID,
		OriginCityID: m.OriginCityID,
		TargetCityID: &home,
		Type:         typ,
		Troops:       troops.Clone(),
		Cargo:        cargo,
		Speed:        speed,
		DepartedAt:   now,
		ArriveAt:     now.Add(travel),
		Status:       entity.MovementOngoing,
	}
}

// battleReport 组装共享战报文档。
func (s *MovementService) battleReport(m *entity.Movement, out BattleOutcome, now time.Time, kind string) *entity.BattleReport {
	return &entity.BattleReport{
		ID:                uuid.NewString(),
		WorldID:           m.WorldID,
		Kind:              kind,
		AttackerCityID:    m.OriginCityID,
		CreatedAt:         now,
		AttackerInitial:   m.Troops.Clone(),
		AttackerLosses:    out.AttackerLosses,
		AttackerSurvivors: out.AttackerSurvivors,
		DefenderInitial:   mergeTroops(out.DefenderLosses, out.DefenderSurvivors),
		DefenderLosses:    out.DefenderLosses,
		DefenderSurvivors: out.DefenderSurvivors,
		Loot:              out.Loot,
		WallDamage:        out.WallDamage,
		BuildingDamage:    out.BuildingDamage,
		LoyaltyChange:     out.LoyaltyChange,
		Conquest:          out.Conquest,
		Moral:             out.Moral,
		Luck:              out.Luck,
		EffectiveAttack:   out.EffectiveAttack,
		DefenseValue:      out.DefenseValue,
		XPGained:          out.XPGained,
	}
}

func mergeTroops(a, b entity.TroopSet) entity.TroopSet {
	out := a.Clone()
	out.Add(b)
	return out
}
