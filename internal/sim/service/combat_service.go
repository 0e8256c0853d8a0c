package service

import (
	"math"

	"BatallaMedieval/internal/shared/gameconfig/balance"
	"BatallaMedieval/internal/sim/entity"
)

// BattleInput 一场战斗的全量输入快照。解算器不碰仓储，
// 谁发起的战斗由行军引擎组装，这里只做纯计算。
type BattleInput struct {
	Attacker     entity.TroopSet
	AttackerHero *entity.Hero
	Defender     entity.TroopSet
	DefenderHero *entity.Hero

	WallLevel int
	// 防守方可被掠夺的库存
	Available entity.Resources
	// 事件掠夺修正
	LootModifier float64

	// 征服相关：只有无主城可被贵族打击
	Loyalty           float64
	ConquerableTarget bool

	// catapult 指定打击的建筑及其当前等级，空表示不打建筑
	TargetBuilding      string
	TargetBuildingLevel int

	// >0 时跳过士气公式，按固定值计算（绿洲战斗恒为 1.0）
	FlatMoral float64
}

// HeroResult 随军英雄的战后状态快照。
type HeroResult struct {
	Hero  entity.Hero
	Alive bool
}

// BattleOutcome 解算结果。损失和幸存按兵种逐一给出，总量守恒。
type BattleOutcome struct {
	AttackerLosses    entity.TroopSet
	AttackerSurvivors entity.TroopSet
	DefenderLosses    entity.TroopSet
	DefenderSurvivors entity.TroopSet

	AttackerHero *HeroResult
	DefenderHero *HeroResult

	Loot           entity.Resources
	WallDamage     *entity.LevelChange
	BuildingDamage *entity.BuildingDamage
	LoyaltyChange  float64
	Conquest       bool

	Moral           float64
	Luck            float64
	EffectiveAttack float64
	DefenseValue    float64
	XPGained        int
}

// CombatService 战斗解算器。无状态，只依赖平衡表和注入的骰子。
type CombatService struct {
	cfg *balance.Config
}

func NewCombatService(cfg *balance.Config) *CombatService {
	return &CombatService{cfg: cfg}
}

// Resolve 按固定顺序解算：兵力汇总 -> 士气 -> 运气 -> 伤亡比 ->
// 逐兵种取整 -> 掠夺 -> 攻城伤害 -> 贵族忠诚打击。
func (s *CombatService) Resolve(in BattleInput, dice Dice) BattleOutcome {
	cb := s.cfg.Combat
	out := BattleOutcome{}

	atkByClass, baseAttack := s.splitAttack(in.Attacker)
	if in.AttackerHero != nil {
		heroAtk := cb.HeroBase + cb.HeroPerPoint*float64(in.AttackerHero.AttackPoints)
		atkByClass[balance.ClassInfantry] += heroAtk
		baseAttack += heroAtk
	}

	defByClass, totalDefense := s.splitDefense(in.Defender)
	if in.DefenderHero != nil {
		heroDef := cb.HeroBase + cb.HeroPerPoint*float64(in.DefenderHero.DefensePoints)
		for class := range defByClass {
			defByClass[class] += heroDef
		}
		totalDefense += heroDef * 3
	}

	// 士气：弱攻强时上调，强攻弱时下调，夹在 [MoralMin, MoralMax]
	moral := in.FlatMoral
	if moral <= 0 {
		atkPoints := math.Max(baseAttack, 1)
		defPoints := math.Max(totalDefense, 1)
		moral = clamp(math.Sqrt(defPoints/atkPoints), cb.MoralMin, cb.MoralMax)
	}
	luck := -cb.LuckSpread + 2*cb.LuckSpread*dice.Float64()

	effectiveAttack := baseAttack * moral * (1 + luck)

	// 防守值按进攻方兵力构成加权：骑兵占比高就多吃对骑防御
	wallMult := 1 + float64(in.WallLevel)*cb.WallBonusPerLevel
	defenseValue := 0.0
	if baseAttack > 0 {
		for class, atk := range atkByClass {
			defenseValue += defByClass[class] * (atk / baseAttack)
		}
	} else {
		defenseValue = totalDefense / 3
	}
	defenseValue *= wallMult

	attackerRatio, defenderRatio := lossRatios(effectiveAttack, defenseValue, cb)

	out.AttackerLosses, out.AttackerSurvivors = applyLosses(in.Attacker, attackerRatio)
	out.DefenderLosses, out.DefenderSurvivors = applyLosses(in.Defender, defenderRatio)
	out.AttackerHero = heroAfterBattle(in.AttackerHero, attackerRatio)
	out.DefenderHero = heroAfterBattle(in.DefenderHero, defenderRatio)
	out.Moral = moral
	out.Luck = luck
	out.EffectiveAttack = effectiveAttack
	out.DefenseValue = defenseValue
	out.XPGained = out.DefenderLosses.Total()

	defenderWiped := out.DefenderSurvivors.Total() == 0

	if defenderWiped && baseAttack > 0 {
		out.Loot = s.loot(out.AttackerSurvivors, in.Available, in.LootModifier)
		out.WallDamage = s.wallDamage(out.AttackerSurvivors, in.WallLevel)
		out.BuildingDamage = s.buildingDamage(out.AttackerSurvivors, in.TargetBuilding, in.TargetBuildingLevel)
		s.nobleStrike(&out, in, dice)
	}
	return out
}

// heroAfterBattle 英雄按所属一方的伤亡比掉血；伤亡比超过 0.9 或血量归零即阵亡。
func heroAfterBattle(h *entity.Hero, lossRatio float64) *HeroResult {
	if h == nil {
		return nil
	}
	after := *h
	after.Health -= lossRatio * 100
	if after.Health < 0 {
		after.Health = 0
	}
	return &HeroResult{Hero: after, Alive: lossRatio <= 0.9 && after.Health > 0}
}

// splitAttack 把进攻兵力按兵种分类汇总攻击力。
func (s *CombatService) splitAttack(troops entity.TroopSet) (map[balance.Class]float64, float64) {
	byClass := map[balance.Class]float64{
		balance.ClassInfantry: 0,
		balance.ClassCavalry:  0,
		balance.ClassSiege:    0,
	}
	total := 0.0
	for unit, amount := range troops {
		u, ok := s.cfg.Units[unit]
		if !ok || amount <= 0 {
			continue
		}
		atk := u.Attack * float64(amount)
		byClass[u.Class] += atk
		total += atk
	}
	return byClass, total
}

// splitDefense 汇总防守方对三类进攻兵种各自的防御值。
func (s *CombatService) splitDefense(troops entity.TroopSet) (map[balance.Class]float64, float64) {
	byClass := map[balance.Class]float64{
		balance.ClassInfantry: 0,
		balance.ClassCavalry:  0,
		balance.ClassSiege:    0,
	}
	for unit, amount := range troops {
		u, ok := s.cfg.Units[unit]
		if !ok || amount <= 0 {
			continue
		}
		n := float64(amount)
		byClass[balance.ClassInfantry] += u.DefInf * n
		byClass[balance.ClassCavalry] += u.DefCav * n
		byClass[balance.ClassSiege] += u.DefSiege * n
	}
	total := byClass[balance.ClassInfantry] + byClass[balance.ClassCavalry] + byClass[balance.ClassSiege]
	return byClass, total
}

// lossRatios 伤亡比例：压倒性优势一方按 sqrt 兜底（最低 LossFloor），
// 否则按战力比的平方根互相消耗。
func lossRatios(effectiveAttack, defenseValue float64, cb balance.Combat) (attacker, defender float64) {
	switch {
	case effectiveAttack <= 0:
		return 1.0, 0.0
	case defenseValue <= 0:
		return 0.0, 1.0
	case effectiveAttack > defenseValue*cb.ImbalanceFactor:
		return math.Max(cb.LossFloor, math.Sqrt(defenseValue/effectiveAttack)), 1.0
	case defenseValue > effectiveAttack*cb.ImbalanceFactor:
		return 1.0, math.Max(cb.LossFloor, math.Sqrt(effectiveAttack/defenseValue))
	default:
		battleFactor := effectiveAttack / defenseValue
		attacker = math.Min(1, math.Sqrt(1/battleFactor))
		defender = math.Min(1, math.Sqrt(battleFactor))
		return attacker, defender
	}
}

// applyLosses 逐兵种取整：损失 = min(存量, round(存量*ratio))，保证守恒。
func applyLosses(troops entity.TroopSet, ratio float64) (losses, survivors entity.TroopSet) {
	losses = entity.TroopSet{}
	survivors = entity.TroopSet{}
	for unit, amount := range troops {
		if amount <= 0 {
			continue
		}
		lost := int(math.Round(float64(amount) * ratio))
		if lost > amount {
			lost = amount
		}
		if lost > 0 {
			losses[unit] = lost
		}
		if left := amount - lost; left > 0 {
			survivors[unit] = left
		}
	}
	return losses, survivors
}

// loot 按幸存负重对库存做比例掠夺，各资源等比，向下取整。
func (s *CombatService) loot(survivors entity.TroopSet, available entity.Resources, lootMod float64) entity.Resources {
	carry := s.cfg.CarryOf(survivors)
	if lootMod > 0 {
		carry *= lootMod
	}
	total := available.Total()
	if carry <= 0 || total <= 0 {
		return entity.Resources{}
	}
	ratio := math.Min(1, carry/total)
	taken := available.Scale(ratio)
	return entity.Resources{
		Wood: math.Floor(taken.Wood),
		Clay: math.Floor(taken.Clay),
		Iron: math.Floor(taken.Iron),
	}
}

func (s *CombatService) wallDamage(survivors entity.TroopSet, wallLevel int) *entity.LevelChange {
	rams := survivors[s.cfg.Combat.RamUnit]
	if rams <= 0 || wallLevel <= 0 {
		return nil
	}
	damage := int(math.Max(1, math.Floor(math.Sqrt(float64(rams)))))
	after := wallLevel - damage
	if after < 0 {
		after = 0
	}
	return &entity.LevelChange{From: wallLevel, To: after}
}

func (s *CombatService) buildingDamage(survivors entity.TroopSet, building string, level int) *entity.BuildingDamage {
	catapults := survivors[s.cfg.Combat.CatapultUnit]
	if catapults <= 0 || building == "" || level <= 0 {
		return nil
	}
	damage := int(math.Max(1, math.Floor(math.Sqrt(float64(catapults)))))
	after := level - damage
	if after < 0 {
		after = 0
	}
	return &entity.BuildingDamage{Building: building, From: level, To: after}
}

// nobleStrike 幸存贵族逐个打击忠诚；降到 0 以下即征服。
// 只有无主城可被征服，玩家城的贵族打击直接跳过。
func (s *CombatService) nobleStrike(out *BattleOutcome, in BattleInput, dice Dice) {
	cb := s.cfg.Combat
	nobles := out.AttackerSurvivors[cb.NobleUnit]
	if nobles <= 0 || !in.ConquerableTarget {
		return
	}
	drop := 0.0
	for i := 0; i < nobles; i++ {
		drop += float64(cb.NobleDropMin + dice.Intn(cb.NobleDropMax-cb.NobleDropMin+1))
	}
	out.LoyaltyChange = -drop
	if in.Loyalty-drop <= 0 {
		out.Conquest = true
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
