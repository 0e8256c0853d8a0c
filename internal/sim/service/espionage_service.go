package service

import (
	"math"
	"time"

	"BatallaMedieval/internal/shared/gameconfig/balance"
	"BatallaMedieval/internal/sim/entity"

	"github.com/google/uuid"
)

// SpyInput 一次谍报任务的输入快照，防守方数据已由行军引擎结算到最新。
type SpyInput struct {
	WorldID        entity.WorldID
	AttackerCityID entity.CityID
	DefenderCityID entity.CityID

	AttackerSpies int
	DefenderSpies int
	SpyModifier   float64

	DefenderResources entity.Resources
	DefenderTroops    entity.TroopSet
	DefenderBuildings map[string]int
}

// SpyOutcome 谍报结果：攻守双方各拿到一份内容可能不同的报告。
type SpyOutcome struct {
	Success        bool
	SuccessChance  float64
	SurvivingSpies int
	// 失败时防守方副本是否被匿名化（攻击方副本永远是全量真相）
	ReportedAsUnknown bool

	AttackerReport *entity.SpyReport
	DefenderReport *entity.SpyReport
}

// EspionageService 谍报解算器。无状态纯计算。
type EspionageService struct {
	cfg *balance.Config
}

func NewEspionageService(cfg *balance.Config) *EspionageService {
	return &EspionageService{cfg: cfg}
}

// Resolve 成功率 = min(1, 攻方间谍 / (守方间谍+1) * 修正)，一次伯努利判定。
// 成功：间谍全员生还，攻方拿到库存/驻军（间谍数达标再加建筑）。
// 失败：间谍全灭，攻方只知道失败；守方副本有小概率被匿名化。
func (s *EspionageService) Resolve(in SpyInput, now time.Time, dice Dice) SpyOutcome {
	esp := s.cfg.Espionage

	mod := in.SpyModifier
	if mod <= 0 {
		mod = 1.0
	}
	chance := math.Min(1, float64(in.AttackerSpies)/float64(in.DefenderSpies+1)*mod)
	success := dice.Float64() < chance

	out := SpyOutcome{
		Success:       success,
		SuccessChance: chance,
	}
	if success {
		out.SurvivingSpies = in.AttackerSpies
	} else {
		// 失败 10% 概率守方只知道“有人来过”，不知道是谁
		out.ReportedAsUnknown = dice.Float64() < esp.AnonymousChance
	}

	attackerID := in.AttackerCityID
	base := entity.SpyReport{
		WorldID:        in.WorldID,
		AttackerCityID: &attackerID,
		DefenderCityID: in.DefenderCityID,
		CreatedAt:      now,
		Success:        success,
		AttackerSpies:  in.AttackerSpies,
		DefenderSpies:  in.DefenderSpies,
	}

	attacker := base
	attacker.ID = uuid.NewString()
	attacker.OwnerCityID = in.AttackerCityID
	if success {
		res := in.DefenderResources
		attacker.Resources = &res
		attacker.Troops = in.DefenderTroops.Clone()
		if in.AttackerSpies >= esp.BuildingThreshold {
			attacker.Buildings = cloneLevels(in.DefenderBuildings)
		}
	}

	defender := base
	defender.ID = uuid.NewString()
	defender.OwnerCityID = in.DefenderCityID
	if out.ReportedAsUnknown {
		defender.AttackerCityID = nil
		defender.ReportedAsUnknown = true
	}

	out.AttackerReport = &attacker
	out.DefenderReport = &defender
	return out
}

func cloneLevels(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
