package service

import (
	"testing"
	"time"

	"BatallaMedieval/internal/sim/entity"
)

func spyInput(spies, defSpies int) SpyInput {
	return SpyInput{
		WorldID:           1,
		AttackerCityID:    10,
		DefenderCityID:    20,
		AttackerSpies:     spies,
		DefenderSpies:     defSpies,
		SpyModifier:       1.0,
		DefenderResources: entity.Resources{Wood: 111, Clay: 222, Iron: 333},
		DefenderTroops:    entity.TroopSet{"basic_infantry": 9},
		DefenderBuildings: map[string]int{"town_hall": 3, "warehouse": 2},
	}
}

func TestEspionage_无守方间谍时必成功(t *testing.T) {
	f := newFixture(nil)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// 即便骰子掷出最差值也应成功：成功率 = min(1, 5/1) = 1
	out := f.espionage.Resolve(spyInput(5, 0), now, &stubDice{floats: []float64{0.999999}})

	if !out.Success {
		t.Fatalf("期望成功率 1.0 必定成功")
	}
	if out.SurvivingSpies != 5 {
		t.Fatalf("期望成功时间谍全员生还，got=%d", out.SurvivingSpies)
	}
	r := out.AttackerReport
	if r.Resources == nil || !almostEqual(r.Resources.Clay, 222) {
		t.Fatalf("期望攻方报告包含守方库存，got=%+v", r.Resources)
	}
	if r.Troops["basic_infantry"] != 9 {
		t.Fatalf("期望攻方报告包含守方驻军，got=%+v", r.Troops)
	}
	// 5 个间谍达到建筑情报门槛
	if r.Buildings["town_hall"] != 3 {
		t.Fatalf("期望间谍数达标时附带建筑等级，got=%+v", r.Buildings)
	}
	if out.DefenderReport.Resources != nil || out.DefenderReport.Troops != nil {
		t.Fatalf("守方副本不应重复记录自己的情报")
	}
}

func TestEspionage_间谍不足门槛时无建筑情报(t *testing.T) {
	f := newFixture(nil)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	out := f.espionage.Resolve(spyInput(4, 0), now, &stubDice{floats: []float64{0.0}})

	if !out.Success {
		t.Fatalf("期望成功")
	}
	if out.AttackerReport.Buildings != nil {
		t.Fatalf("期望 4 个间谍拿不到建筑等级，got=%+v", out.AttackerReport.Buildings)
	}
	if out.AttackerReport.Resources == nil {
		t.Fatalf("库存情报不受门槛限制")
	}
}

func TestEspionage_失败时间谍全灭(t *testing.T) {
	f := newFixture(nil)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// 2/(9+1)=0.2 成功率，骰子掷 0.9 -> 失败；第二掷 0.5 > 0.1 不匿名
	out := f.espionage.Resolve(spyInput(2, 9), now, &stubDice{floats: []float64{0.9, 0.5}})

	if out.Success || out.SurvivingSpies != 0 {
		t.Fatalf("期望失败且间谍全灭，got success=%v alive=%d", out.Success, out.SurvivingSpies)
	}
	if out.AttackerReport.Resources != nil {
		t.Fatalf("失败时攻方拿不到情报")
	}
	if out.DefenderReport.AttackerCityID == nil {
		t.Fatalf("未匿名时守方应知道来者身份")
	}
}

func TestEspionage_失败时小概率匿名(t *testing.T) {
	f := newFixture(nil)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// 失败 + 第二掷 0.05 < 0.1 -> 守方副本匿名
	out := f.espionage.Resolve(spyInput(2, 9), now, &stubDice{floats: []float64{0.9, 0.05}})

	if out.DefenderReport.AttackerCityID != nil || !out.DefenderReport.ReportedAsUnknown {
		t.Fatalf("期望守方副本被匿名化，got=%+v", out.DefenderReport)
	}
	// 攻方副本永远保留真相
	if out.AttackerReport.AttackerCityID == nil || out.AttackerReport.ReportedAsUnknown {
		t.Fatalf("攻方副本不应被匿名化，got=%+v", out.AttackerReport)
	}
	if out.AttackerReport.ID == out.DefenderReport.ID {
		t.Fatalf("两份副本应是独立文档")
	}
}
