package service

import (
	"context"
	"math"
	"testing"
	"time"

	"BatallaMedieval/internal/sim/entity"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestProduction_十分钟产出等于基础速率乘十(t *testing.T) {
	f := newFixture(nil)
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A"})

	f.advance(10 * time.Minute)
	city, err := f.production.SettleCity(context.Background(), 10)
	if err != nil {
		t.Fatalf("结算失败: %v", err)
	}
	if !almostEqual(city.Stock.Wood, 150) || !almostEqual(city.Stock.Clay, 120) || !almostEqual(city.Stock.Iron, 100) {
		t.Fatalf("期望 10 分钟产出 {150,120,100}，got=%+v", city.Stock)
	}
	if !city.LastProductionAt.Equal(f.now) {
		t.Fatalf("期望结算后推进 LastProductionAt 到当前时刻")
	}
}

func TestProduction_重复结算不再产出(t *testing.T) {
	f := newFixture(nil)
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A"})

	f.advance(10 * time.Minute)
	if _, err := f.production.SettleCity(context.Background(), 10); err != nil {
		t.Fatalf("结算失败: %v", err)
	}
	city, err := f.production.SettleCity(context.Background(), 10)
	if err != nil {
		t.Fatalf("结算失败: %v", err)
	}
	if !almostEqual(city.Stock.Wood, 150) {
		t.Fatalf("期望同一时刻重复结算是幂等空操作，got wood=%v", city.Stock.Wood)
	}
}

func TestProduction_产出封顶在仓库容量(t *testing.T) {
	f := newFixture(nil)
	f.addWorld(1, 1.0, 1.0)
	// 仓库 0 级容量 5000，库存已经贴着上限
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A",
		Stock: entity.Resources{Wood: 4990, Clay: 5000, Iron: 0}})

	f.advance(time.Hour)
	city, err := f.production.SettleCity(context.Background(), 10)
	if err != nil {
		t.Fatalf("结算失败: %v", err)
	}
	if !almostEqual(city.Stock.Wood, 5000) || !almostEqual(city.Stock.Clay, 5000) {
		t.Fatalf("期望产出到顶后不再增长，got=%+v", city.Stock)
	}
	if !almostEqual(city.Stock.Iron, 600) {
		t.Fatalf("期望未到顶的资源正常产出（10/min*60），got iron=%v", city.Stock.Iron)
	}
}

func TestProduction_世界和事件修正叠乘(t *testing.T) {
	f := newFixture(nil)
	f.addWorld(1, 1.0, 2.0)
	if err := f.store.CreateEvent(context.Background(), &entity.WorldEvent{
		ID: 1, WorldID: 1, Name: "Cosecha Abundante",
		StartAt:   f.now.Add(-time.Hour),
		EndAt:     f.now.Add(time.Hour),
		Modifiers: entity.Modifiers{ProductionSpeed: 1.5},
	}); err != nil {
		t.Fatal(err)
	}
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A"})

	f.advance(10 * time.Minute)
	city, err := f.production.SettleCity(context.Background(), 10)
	if err != nil {
		t.Fatalf("结算失败: %v", err)
	}
	// 150 * 2.0(世界) * 1.5(事件)
	if !almostEqual(city.Stock.Wood, 450) {
		t.Fatalf("期望世界与事件修正叠乘 got wood=%v", city.Stock.Wood)
	}
}

func TestProduction_绿洲加成只作用于对应资源(t *testing.T) {
	f := newFixture(nil)
	f.addWorld(1, 1.0, 1.0)
	city := f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A"})
	cityID := city.ID
	if err := f.store.CreateOasis(context.Background(), &entity.Oasis{
		ID: 100, WorldID: 1, X: 3, Y: 3, ResourceType: "wood",
		BonusPercent: 25, OwnerCityID: &cityID,
	}); err != nil {
		t.Fatal(err)
	}

	f.advance(10 * time.Minute)
	got, err := f.production.SettleCity(context.Background(), 10)
	if err != nil {
		t.Fatalf("结算失败: %v", err)
	}
	if !almostEqual(got.Stock.Wood, 187.5) {
		t.Fatalf("期望木材享受 25%% 绿洲加成（150*1.25），got=%v", got.Stock.Wood)
	}
	if !almostEqual(got.Stock.Clay, 120) {
		t.Fatalf("期望其他资源不受影响，got clay=%v", got.Stock.Clay)
	}
}

func TestProduction_忠诚度随时间恢复并封顶(t *testing.T) {
	f := newFixture(nil)
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A", Loyalty: 50})

	f.advance(time.Hour)
	city, err := f.production.SettleCity(context.Background(), 10)
	if err != nil {
		t.Fatalf("结算失败: %v", err)
	}
	if !almostEqual(city.Loyalty, 52) {
		t.Fatalf("期望每小时恢复 2 点忠诚，got=%v", city.Loyalty)
	}

	f.advance(100 * time.Hour)
	city, err = f.production.SettleCity(context.Background(), 10)
	if err != nil {
		t.Fatalf("结算失败: %v", err)
	}
	if !almostEqual(city.Loyalty, 100) {
		t.Fatalf("期望忠诚封顶 100，got=%v", city.Loyalty)
	}
}
