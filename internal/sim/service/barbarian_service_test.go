package service

import (
	"context"
	"testing"

	"BatallaMedieval/internal/sim/entity"
)

func TestBarbarian_生长只影响无主城(t *testing.T) {
	f := newFixture(nil)
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "Aldea Bárbara",
		Stock: entity.Resources{Wood: 1000, Clay: 1000, Iron: 1000}})
	f.addCity(&entity.City{ID: 20, WorldID: 1, Name: "Jugador", X: 5, Y: 5,
		Owner: entity.Owned(7), Stock: entity.Resources{Wood: 1000}})

	// 两掷都命中：捡资源 + 招兵
	svc := NewBarbarianService(f.cfg, f.store, &stubDice{floats: []float64{0.01, 0.01}})
	grown, err := svc.Grow(context.Background(), nil)
	if err != nil {
		t.Fatalf("生长失败: %v", err)
	}
	if grown != 1 {
		t.Fatalf("期望只有无主城生长，got=%d", grown)
	}

	village := f.city(10)
	if village.Troops["basic_infantry"] != 1 {
		t.Fatalf("期望招到 1 个基础步兵，got=%v", village.Troops)
	}
	// +10 捡来的，-50 招兵木材成本
	if !almostEqual(village.Stock.Wood, 960) {
		t.Fatalf("期望库存 1000+10-50，got=%v", village.Stock.Wood)
	}

	player := f.city(20)
	if !almostEqual(player.Stock.Wood, 1000) || player.Troops.Total() != 0 {
		t.Fatalf("期望玩家城不受野蛮人 AI 影响，got=%+v", player)
	}
}

func TestBarbarian_资源不足时不招兵(t *testing.T) {
	f := newFixture(nil)
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "Aldea Bárbara"})

	// 捡资源未命中（0.5>=0.1），招兵命中但 10 资源不够付 {50,30,10}
	svc := NewBarbarianService(f.cfg, f.store, &stubDice{floats: []float64{0.5, 0.01}})
	grown, err := svc.Grow(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if grown != 0 {
		t.Fatalf("期望没钱招不了兵也不落库，got=%d", grown)
	}
	if f.city(10).Troops.Total() != 0 {
		t.Fatalf("期望没有凭空出现的兵")
	}
}
