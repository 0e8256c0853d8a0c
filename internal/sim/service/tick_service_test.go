package service

import (
	"context"
	"testing"
	"time"

	"BatallaMedieval/internal/sim/entity"
)

func TestTick_先结队列再结行军(t *testing.T) {
	f := newFixture(movementTestConfig())
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A", Owner: entity.Owned(7),
		Stock:     entity.Resources{Wood: 5000, Clay: 5000, Iron: 5000},
		Buildings: map[string]int{"barracks": 1},
		Troops:    entity.TroopSet{"basic_infantry": 10}})
	f.addCity(&entity.City{ID: 20, WorldID: 1, Name: "B", X: 3, Y: 4, Owner: entity.Owned(8)})

	if _, err := f.queues.EnqueueTroops(context.Background(), 10, "basic_infantry", 2); err != nil {
		t.Fatal(err)
	}
	if _, err := f.movements.Send(context.Background(), SendOrder{
		OriginCityID: 10,
		TargetCityID: target(20),
		Type:         entity.MovementReinforce,
		Troops:       entity.TroopSet{"basic_infantry": 10},
	}); err != nil {
		t.Fatal(err)
	}

	f.advance(6 * time.Hour)
	result, err := f.tick.Tick(context.Background(), nil)
	if err != nil {
		t.Fatalf("tick 失败: %v", err)
	}
	if result.ProcessedQueues != 1 {
		t.Fatalf("期望结算 1 条队列，got=%d", result.ProcessedQueues)
	}
	if result.ProcessedMovements != 1 {
		t.Fatalf("期望结算 1 条行军，got=%d", result.ProcessedMovements)
	}

	// 练好的兵在家，援军在目标城
	if got := f.city(10).Troops["basic_infantry"]; got != 2 {
		t.Fatalf("期望练好的 2 个兵留在家里，got=%d", got)
	}
	if got := f.city(20).Troops["basic_infantry"]; got != 10 {
		t.Fatalf("期望援军并入目标城，got=%d", got)
	}
}

func TestTick_指定世界时不碰其他世界(t *testing.T) {
	f := newFixture(nil)
	f.addWorld(1, 1.0, 1.0)
	f.addWorld(2, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A",
		Stock: entity.Resources{Wood: 5000, Clay: 5000, Iron: 5000}})
	f.addCity(&entity.City{ID: 30, WorldID: 2, Name: "C",
		Stock: entity.Resources{Wood: 5000, Clay: 5000, Iron: 5000}})

	if _, err := f.queues.EnqueueBuilding(context.Background(), 10, "town_hall"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.queues.EnqueueBuilding(context.Background(), 30, "town_hall"); err != nil {
		t.Fatal(err)
	}

	f.advance(24 * time.Hour)
	worldID := entity.WorldID(1)
	result, err := f.tick.Tick(context.Background(), &worldID)
	if err != nil {
		t.Fatal(err)
	}
	if result.ProcessedQueues != 1 {
		t.Fatalf("期望只结算世界 1 的队列，got=%d", result.ProcessedQueues)
	}
	if f.city(30).BuildingLevel("town_hall") != 0 {
		t.Fatalf("期望世界 2 的队列原地不动")
	}
}
