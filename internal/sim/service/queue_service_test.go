package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"BatallaMedieval/internal/shared/gameconfig/balance"
	"BatallaMedieval/internal/sim/entity"
)

// 测试用平衡表：锯木厂基础成本 {100,100,100}、增长 1.2，方便口算。
func queueTestConfig() *balance.Config {
	cfg := balance.Default()
	b := cfg.Buildings["sawmill"]
	b.Cost = balance.Cost{Wood: 100, Clay: 100, Iron: 100}
	b.CostGrowth = 1.2
	b.BuildSeconds = 60
	b.Requires = nil
	cfg.Buildings["sawmill"] = b
	return cfg
}

func TestEnqueueBuilding_二级成本按增长系数缩放(t *testing.T) {
	f := newFixture(queueTestConfig())
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A", Owner: entity.Owned(7),
		Stock:     entity.Resources{Wood: 500, Clay: 500, Iron: 500},
		Buildings: map[string]int{"sawmill": 1}})

	entry, err := f.queues.EnqueueBuilding(context.Background(), 10, "sawmill")
	if err != nil {
		t.Fatalf("入队失败: %v", err)
	}
	if entry.TargetLevel != 2 {
		t.Fatalf("期望目标等级 2，got=%d", entry.TargetLevel)
	}
	if !almostEqual(entry.Cost.Wood, 120) || !almostEqual(entry.Cost.Clay, 120) || !almostEqual(entry.Cost.Iron, 120) {
		t.Fatalf("期望二级成本 {120,120,120}，got=%+v", entry.Cost)
	}
	city := f.city(10)
	if !almostEqual(city.Stock.Wood, 380) {
		t.Fatalf("期望下单即扣资源，got wood=%v", city.Stock.Wood)
	}
	// 60s * 2 级
	if want := f.now.Add(120 * time.Second); !entry.FinishAt.Equal(want) {
		t.Fatalf("期望完工时间 =now+120s，got=%v", entry.FinishAt)
	}
}

func TestEnqueueBuilding_资源不足拒绝且状态不变(t *testing.T) {
	f := newFixture(queueTestConfig())
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A",
		Stock: entity.Resources{Wood: 10, Clay: 10, Iron: 10}})

	_, err := f.queues.EnqueueBuilding(context.Background(), 10, "sawmill")
	if !errors.Is(err, ErrInsufficient) {
		t.Fatalf("期望 INSUFFICIENT_RESOURCES，got=%v", err)
	}
	city := f.city(10)
	if !almostEqual(city.Stock.Wood, 10) || len(city.BuildQueue) != 0 {
		t.Fatalf("期望拒绝后城市状态原样，got stock=%+v queue=%d", city.Stock, len(city.BuildQueue))
	}
}

func TestEnqueueBuilding_前置建筑不满足(t *testing.T) {
	f := newFixture(nil)
	f.addWorld(1, 1.0, 1.0)
	// 兵营需要 town_hall 1 级
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A",
		Stock: entity.Resources{Wood: 5000, Clay: 5000, Iron: 5000}})

	_, err := f.queues.EnqueueBuilding(context.Background(), 10, "barracks")
	if !errors.Is(err, ErrPrerequisite) {
		t.Fatalf("期望 PREREQUISITE_MISSING，got=%v", err)
	}
}

func TestEnqueueBuilding_槽位占满拒绝(t *testing.T) {
	f := newFixture(queueTestConfig())
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A",
		Stock: entity.Resources{Wood: 5000, Clay: 5000, Iron: 5000}})

	if _, err := f.queues.EnqueueBuilding(context.Background(), 10, "sawmill"); err != nil {
		t.Fatalf("第一单应成功: %v", err)
	}
	_, err := f.queues.EnqueueBuilding(context.Background(), 10, "sawmill")
	if !errors.Is(err, ErrCapacity) {
		t.Fatalf("期望 CAPACITY_LIMIT，got=%v", err)
	}
}

func TestEnqueueBuilding_未知建筑(t *testing.T) {
	f := newFixture(nil)
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A"})

	_, err := f.queues.EnqueueBuilding(context.Background(), 10, "castillo_volador")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("期望 VALIDATION_ERROR，got=%v", err)
	}
}

func TestProcessDue_建造完工升级且幂等(t *testing.T) {
	f := newFixture(queueTestConfig())
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A", Owner: entity.Owned(7),
		Stock: entity.Resources{Wood: 5000, Clay: 5000, Iron: 5000}})

	if _, err := f.queues.EnqueueBuilding(context.Background(), 10, "sawmill"); err != nil {
		t.Fatal(err)
	}
	f.advance(2 * time.Minute)

	n, err := f.queues.ProcessDue(context.Background(), nil, f.now)
	if err != nil {
		t.Fatalf("结算失败: %v", err)
	}
	if n != 1 {
		t.Fatalf("期望结算 1 条，got=%d", n)
	}
	city := f.city(10)
	if city.BuildingLevel("sawmill") != 1 || len(city.BuildQueue) != 0 {
		t.Fatalf("期望锯木厂升到 1 级且队列清空，got level=%d queue=%d",
			city.BuildingLevel("sawmill"), len(city.BuildQueue))
	}

	// 再跑一遍不应有任何到期条目
	n, err = f.queues.ProcessDue(context.Background(), nil, f.now)
	if err != nil || n != 0 {
		t.Fatalf("期望重复结算是空操作，n=%d err=%v", n, err)
	}
	if f.city(10).BuildingLevel("sawmill") != 1 {
		t.Fatalf("期望等级不被重复结算改变")
	}
}

func TestEnqueueTroops_完工后入营(t *testing.T) {
	f := newFixture(nil)
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A", Owner: entity.Owned(7),
		Stock:     entity.Resources{Wood: 5000, Clay: 5000, Iron: 5000},
		Buildings: map[string]int{"barracks": 1, "farm": 1},
		Troops:    entity.TroopSet{"basic_infantry": 2}})

	entry, err := f.queues.EnqueueTroops(context.Background(), 10, "basic_infantry", 10)
	if err != nil {
		t.Fatalf("入队失败: %v", err)
	}
	// 45s * 10
	if want := f.now.Add(450 * time.Second); !entry.FinishAt.Equal(want) {
		t.Fatalf("期望训练时长随数量线性增长，got=%v", entry.FinishAt)
	}

	f.advance(8 * time.Minute)
	if _, err := f.queues.ProcessDue(context.Background(), nil, f.now); err != nil {
		t.Fatal(err)
	}
	city := f.city(10)
	if city.Troops["basic_infantry"] != 12 {
		t.Fatalf("期望练好的兵叠进现有兵堆（2+10），got=%d", city.Troops["basic_infantry"])
	}
	if len(city.TrainQueue) != 0 {
		t.Fatalf("期望练兵队列清空")
	}
}

func TestEnqueueTroops_人口超限拒绝(t *testing.T) {
	f := newFixture(nil)
	f.addWorld(1, 1.0, 1.0)
	// 农场 0 级上限 100 人口，现役已占 95
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A",
		Stock:     entity.Resources{Wood: 5000, Clay: 5000, Iron: 5000},
		Buildings: map[string]int{"barracks": 1},
		Troops:    entity.TroopSet{"basic_infantry": 95}})

	_, err := f.queues.EnqueueTroops(context.Background(), 10, "basic_infantry", 10)
	if !errors.Is(err, ErrCapacity) {
		t.Fatalf("期望超出人口上限报 CAPACITY_LIMIT，got=%v", err)
	}
}

func TestEnqueueTroops_野生兵种不可训练(t *testing.T) {
	f := newFixture(nil)
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A",
		Stock: entity.Resources{Wood: 5000, Clay: 5000, Iron: 5000}})

	_, err := f.queues.EnqueueTroops(context.Background(), 10, "rat", 5)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("期望野生兵种入队被拒，got=%v", err)
	}
}

func TestCancel_按比例退款(t *testing.T) {
	f := newFixture(queueTestConfig())
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A",
		Stock: entity.Resources{Wood: 500, Clay: 500, Iron: 500}})

	entry, err := f.queues.EnqueueBuilding(context.Background(), 10, "sawmill")
	if err != nil {
		t.Fatal(err)
	}
	// 一级成本 100，扣后 400

	ok, err := f.queues.Cancel(context.Background(), entry.ID)
	if err != nil || !ok {
		t.Fatalf("期望撤单成功，ok=%v err=%v", ok, err)
	}
	city := f.city(10)
	if !almostEqual(city.Stock.Wood, 480) {
		t.Fatalf("期望退回 80%%（400+80），got=%v", city.Stock.Wood)
	}
	if len(city.BuildQueue) != 0 {
		t.Fatalf("期望条目已移除")
	}

	// 再撤一次：条目已不存在，返回 false 而不是错误
	ok, err = f.queues.Cancel(context.Background(), entry.ID)
	if err != nil || ok {
		t.Fatalf("期望重复撤单返回 false，ok=%v err=%v", ok, err)
	}
}

func TestEnqueueBuilding_活动加速同样作用于建造(t *testing.T) {
	f := newFixture(queueTestConfig())
	f.addWorld(1, 1.0, 1.0)
	if err := f.store.CreateEvent(context.Background(), &entity.WorldEvent{
		ID:      1,
		WorldID: 1,
		Name:    "Festival del Constructor",
		StartAt: f.now.Add(-time.Hour),
		EndAt:   f.now.Add(time.Hour),
		Modifiers: entity.Modifiers{
			ProductionSpeed: 1.0,
			TrainingSpeed:   0.5,
			MovementSpeed:   1.0,
			SpyModifier:     1.0,
			LootModifier:    1.0,
		},
	}); err != nil {
		t.Fatal(err)
	}
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A", Owner: entity.Owned(7),
		Stock: entity.Resources{Wood: 500, Clay: 500, Iron: 500}})

	entry, err := f.queues.EnqueueBuilding(context.Background(), 10, "sawmill")
	if err != nil {
		t.Fatalf("入队失败: %v", err)
	}
	// 60s * 1 级 * 0.5 活动加速
	if want := f.now.Add(30 * time.Second); !entry.FinishAt.Equal(want) {
		t.Fatalf("期望活动期间建造减半 =now+30s，got=%v", entry.FinishAt)
	}
}
