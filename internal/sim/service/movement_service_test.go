package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"BatallaMedieval/internal/shared/errx"
	"BatallaMedieval/internal/shared/gameconfig/balance"
	"BatallaMedieval/internal/sim/entity"
	"BatallaMedieval/internal/sim/service/port"
)

// 测试用平衡表：基础步兵速度调成 1.0 格/小时，方便口算行程。
func movementTestConfig() *balance.Config {
	cfg := balance.Default()
	u := cfg.Units["basic_infantry"]
	u.Speed = 1.0
	cfg.Units["basic_infantry"] = u
	return cfg
}

func target(id entity.CityID) *entity.CityID { return &id }

func TestSend_行程按欧氏距离和最慢兵种(t *testing.T) {
	f := newFixture(movementTestConfig())
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A", Owner: entity.Owned(7),
		X: 0, Y: 0, Troops: entity.TroopSet{"basic_infantry": 20}})
	f.addCity(&entity.City{ID: 20, WorldID: 1, Name: "B", X: 3, Y: 4})

	m, err := f.movements.Send(context.Background(), SendOrder{
		OriginCityID: 10,
		TargetCityID: target(20),
		Type:         entity.MovementAttack,
		Troops:       entity.TroopSet{"basic_infantry": 10},
	})
	if err != nil {
		t.Fatalf("出兵失败: %v", err)
	}
	// 距离 hypot(3,4)=5，速度 1.0 -> 整 5 小时
	if want := f.now.Add(5 * time.Hour); !m.ArriveAt.Equal(want) {
		t.Fatalf("期望 5 小时后到达，got=%v", m.ArriveAt)
	}
	if got := f.city(10).Troops["basic_infantry"]; got != 10 {
		t.Fatalf("期望出发即扣兵（20-10），got=%d", got)
	}
}

func TestSend_跨世界目标被拒(t *testing.T) {
	f := newFixture(nil)
	f.addWorld(1, 1.0, 1.0)
	f.addWorld(2, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A",
		Troops: entity.TroopSet{"basic_infantry": 10}})
	f.addCity(&entity.City{ID: 20, WorldID: 2, Name: "B", X: 3, Y: 4})

	_, err := f.movements.Send(context.Background(), SendOrder{
		OriginCityID: 10,
		TargetCityID: target(20),
		Type:         entity.MovementAttack,
		Troops:       entity.TroopSet{"basic_infantry": 5},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("期望跨世界行军报 VALIDATION_ERROR，got=%v", err)
	}
}

func TestSend_兵力不足被拒且不动库存(t *testing.T) {
	f := newFixture(nil)
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A",
		Troops: entity.TroopSet{"basic_infantry": 3}})
	f.addCity(&entity.City{ID: 20, WorldID: 1, Name: "B", X: 3, Y: 4})

	_, err := f.movements.Send(context.Background(), SendOrder{
		OriginCityID: 10,
		TargetCityID: target(20),
		Type:         entity.MovementAttack,
		Troops:       entity.TroopSet{"basic_infantry": 5},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("期望兵力不足报错，got=%v", err)
	}
	if got := f.city(10).Troops["basic_infantry"]; got != 3 {
		t.Fatalf("期望拒绝后驻军原样，got=%d", got)
	}
}

func TestSend_回程类型不接受外部下单(t *testing.T) {
	f := newFixture(nil)
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A"})

	_, err := f.movements.Send(context.Background(), SendOrder{
		OriginCityID: 10,
		TargetCityID: target(10),
		Type:         entity.MovementReturn,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("期望 return 下单被拒，got=%v", err)
	}
}

func TestResolve_攻城胜利_掠夺随幸存者回家(t *testing.T) {
	f := newFixture(movementTestConfig())
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A", Owner: entity.Owned(7),
		X: 0, Y: 0, Troops: entity.TroopSet{"heavy_cavalry": 100}})
	// 无主村：1 只老鼠守着 900 资源
	f.addCity(&entity.City{ID: 20, WorldID: 1, Name: "Aldea Bárbara", X: 3, Y: 4,
		Stock:  entity.Resources{Wood: 300, Clay: 300, Iron: 300},
		Troops: entity.TroopSet{"rat": 1}})

	m, err := f.movements.Send(context.Background(), SendOrder{
		OriginCityID: 10,
		TargetCityID: target(20),
		Type:         entity.MovementAttack,
		Troops:       entity.TroopSet{"heavy_cavalry": 100},
	})
	if err != nil {
		t.Fatal(err)
	}

	f.now = m.ArriveAt
	n, err := f.movements.ResolveDue(context.Background(), nil, f.now)
	if err != nil || n != 1 {
		t.Fatalf("期望结算 1 条行军，n=%d err=%v", n, err)
	}

	defender := f.city(20)
	if defender.Troops.Total() != 0 {
		t.Fatalf("期望守军全灭，got=%v", defender.Troops)
	}

	reports := f.reports.BattleReports()
	if len(reports) != 1 || reports[0].Kind != "battle" {
		t.Fatalf("期望产出一份战报，got=%d", len(reports))
	}
	loot := reports[0].Loot
	if loot.Total() <= 0 {
		t.Fatalf("期望碾压局带走战利品，got=%+v", loot)
	}
	// 掠夺总量受幸存负重约束（逐资源向下取整，最多差 3）
	carry := f.cfg.CarryOf(reports[0].AttackerSurvivors)
	if loot.Total() > carry || loot.Total() < carry-3 {
		t.Fatalf("期望掠夺贴着负重上限，loot=%v carry=%v", loot.Total(), carry)
	}

	// 幸存者带战利品回家
	due, err := f.store.DueMovements(context.Background(), nil, f.now.Add(100*time.Hour))
	if err != nil || len(due) != 1 {
		t.Fatalf("期望派生一条回程，got=%d err=%v", len(due), err)
	}
	back := due[0]
	if back.Type != entity.MovementReturn || *back.TargetCityID != 10 {
		t.Fatalf("期望回程指向出发城，got=%+v", back)
	}
	if back.Cargo.IsZero() {
		t.Fatalf("期望回程携带战利品")
	}

	// 回家结算：兵和战利品入库
	f.now = back.ArriveAt
	if _, err := f.movements.ResolveDue(context.Background(), nil, f.now); err != nil {
		t.Fatal(err)
	}
	home := f.city(10)
	if home.Troops["heavy_cavalry"] == 0 {
		t.Fatalf("期望幸存骑兵回营，got=%v", home.Troops)
	}
	if home.Stock.Total() == 0 {
		t.Fatalf("期望战利品入库，got=%+v", home.Stock)
	}
}

func TestResolve_贵族征服无主城(t *testing.T) {
	f := newFixture(movementTestConfig())
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A", Owner: entity.Owned(7),
		Troops: entity.TroopSet{"heavy_cavalry": 100, "noble": 3}})
	f.addCity(&entity.City{ID: 20, WorldID: 1, Name: "Aldea Bárbara", X: 3, Y: 4,
		Loyalty: 55, Troops: entity.TroopSet{"rat": 1}})

	m, err := f.movements.Send(context.Background(), SendOrder{
		OriginCityID: 10,
		TargetCityID: target(20),
		Type:         entity.MovementAttack,
		Troops:       entity.TroopSet{"heavy_cavalry": 100, "noble": 3},
	})
	if err != nil {
		t.Fatal(err)
	}

	// Intn=0 -> 每个贵族打 20 点；3 个足够把 55 打穿
	f.dice.floats = []float64{0.5}
	f.dice.ints = []int{0}
	f.now = m.ArriveAt
	if _, err := f.movements.ResolveDue(context.Background(), nil, f.now); err != nil {
		t.Fatal(err)
	}

	conquered := f.city(20)
	owner, ok := conquered.Owner.PlayerID()
	if !ok || owner != 7 {
		t.Fatalf("期望城市易主给进攻方玩家，got=%+v", conquered.Owner)
	}
	if !almostEqual(conquered.Loyalty, 25) {
		t.Fatalf("期望易主后忠诚重置为 25，got=%v", conquered.Loyalty)
	}
}

func TestResolve_攻占绿洲(t *testing.T) {
	f := newFixture(movementTestConfig())
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A", Owner: entity.Owned(7),
		Troops: entity.TroopSet{"heavy_cavalry": 100}})
	if err := f.store.CreateOasis(context.Background(), &entity.Oasis{
		ID: 100, WorldID: 1, X: 3, Y: 4, ResourceType: "iron", BonusPercent: 25,
		Troops: entity.TroopSet{"rat": 5, "spider": 3},
	}); err != nil {
		t.Fatal(err)
	}

	oasisID := entity.OasisID(100)
	m, err := f.movements.Send(context.Background(), SendOrder{
		OriginCityID:  10,
		TargetOasisID: &oasisID,
		Type:          entity.MovementAttack,
		Troops:        entity.TroopSet{"heavy_cavalry": 100},
	})
	if err != nil {
		t.Fatal(err)
	}

	f.now = m.ArriveAt
	if _, err := f.movements.ResolveDue(context.Background(), nil, f.now); err != nil {
		t.Fatal(err)
	}

	oasis, err := f.store.GetOasis(context.Background(), 100)
	if err != nil {
		t.Fatal(err)
	}
	if oasis.OwnerCityID == nil || *oasis.OwnerCityID != 10 {
		t.Fatalf("期望绿洲归属进攻城市，got=%v", oasis.OwnerCityID)
	}
	if oasis.Troops.Total() != 0 {
		t.Fatalf("期望野生驻军清空，got=%v", oasis.Troops)
	}
	reports := f.reports.BattleReports()
	if len(reports) != 1 || reports[0].Kind != "oasis_battle" {
		t.Fatalf("期望产出绿洲战报，got=%+v", reports)
	}
}

func TestResolve_运输送达并派生空车回程(t *testing.T) {
	f := newFixture(nil)
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A",
		Stock: entity.Resources{Wood: 1000, Clay: 1000, Iron: 1000}})
	f.addCity(&entity.City{ID: 20, WorldID: 1, Name: "B", X: 3, Y: 4,
		Stock: entity.Resources{Wood: 100}})

	m, err := f.movements.Send(context.Background(), SendOrder{
		OriginCityID: 10,
		TargetCityID: target(20),
		Type:         entity.MovementTransport,
		Cargo:        entity.Resources{Wood: 300, Clay: 200, Iron: 100},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := f.city(10).Stock.Wood; !almostEqual(got, 700) {
		t.Fatalf("期望发货即扣库存，got=%v", got)
	}

	f.now = m.ArriveAt
	if _, err := f.movements.ResolveDue(context.Background(), nil, f.now); err != nil {
		t.Fatal(err)
	}
	// 收货方在到达时刻也会结算产出，只验证下界
	got := f.city(20)
	if got.Stock.Wood < 400 || got.Stock.Clay < 200 || got.Stock.Iron < 100 {
		t.Fatalf("期望货物入库，got=%+v", got.Stock)
	}

	due, err := f.store.DueMovements(context.Background(), nil, f.now.Add(100*time.Hour))
	if err != nil || len(due) != 1 || due[0].Type != entity.MovementTransportReturn {
		t.Fatalf("期望派生空车回程，got=%+v err=%v", due, err)
	}
	if !due[0].Cargo.IsZero() {
		t.Fatalf("回程不应带货，got=%+v", due[0].Cargo)
	}
}

func TestResolve_援军并入目标城(t *testing.T) {
	f := newFixture(movementTestConfig())
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A",
		Troops: entity.TroopSet{"basic_infantry": 30}})
	f.addCity(&entity.City{ID: 20, WorldID: 1, Name: "B", X: 3, Y: 4, Owner: entity.Owned(8),
		Troops: entity.TroopSet{"basic_infantry": 5}})

	m, err := f.movements.Send(context.Background(), SendOrder{
		OriginCityID: 10,
		TargetCityID: target(20),
		Type:         entity.MovementReinforce,
		Troops:       entity.TroopSet{"basic_infantry": 30},
	})
	if err != nil {
		t.Fatal(err)
	}
	f.now = m.ArriveAt
	if _, err := f.movements.ResolveDue(context.Background(), nil, f.now); err != nil {
		t.Fatal(err)
	}
	if got := f.city(20).Troops["basic_infantry"]; got != 35 {
		t.Fatalf("期望援军并入驻军（5+30），got=%d", got)
	}
}

func TestResolve_谍报任务生成双份报告(t *testing.T) {
	f := newFixture(nil)
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A",
		Troops: entity.TroopSet{"spy": 5}})
	f.addCity(&entity.City{ID: 20, WorldID: 1, Name: "B", X: 3, Y: 4,
		Stock: entity.Resources{Wood: 500}})

	m, err := f.movements.Send(context.Background(), SendOrder{
		OriginCityID: 10,
		TargetCityID: target(20),
		Type:         entity.MovementSpy,
		SpyCount:     5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := f.city(10).Troops["spy"]; got != 0 {
		t.Fatalf("期望间谍出城即扣除，got=%d", got)
	}

	// 守方零间谍 -> 成功率 1.0，最差骰子也成功
	f.dice.floats = []float64{0.999}
	f.now = m.ArriveAt
	if _, err := f.movements.ResolveDue(context.Background(), nil, f.now); err != nil {
		t.Fatal(err)
	}

	spies := f.reports.SpyReports()
	if len(spies) != 2 {
		t.Fatalf("期望攻守各一份谍报，got=%d", len(spies))
	}

	// 幸存间谍回城
	due, err := f.store.DueMovements(context.Background(), nil, f.now.Add(100*time.Hour))
	if err != nil || len(due) != 1 {
		t.Fatalf("期望间谍回程，got=%d err=%v", len(due), err)
	}
	f.now = due[0].ArriveAt
	if _, err := f.movements.ResolveDue(context.Background(), nil, f.now); err != nil {
		t.Fatal(err)
	}
	if got := f.city(10).Troops["spy"]; got != 5 {
		t.Fatalf("期望间谍全员归队，got=%d", got)
	}
}

// 行军表写入必失败的桩，其余操作透传内存仓储。
type brokenMovementRepo struct {
	port.MovementRepository
}

func (brokenMovementRepo) CreateMovement(context.Context, *entity.Movement) error {
	return errors.New("db unavailable")
}

func TestSend_行军落库失败时回滚扣兵(t *testing.T) {
	f := newFixture(movementTestConfig())
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A", Owner: entity.Owned(7),
		X: 0, Y: 0, Troops: entity.TroopSet{"basic_infantry": 50}})
	f.addCity(&entity.City{ID: 20, WorldID: 1, Name: "B", X: 3, Y: 4})

	svc := NewMovementService(f.cfg, f.store, f.store, brokenMovementRepo{f.store}, f.reports,
		f.production, f.modifiers, f.combat, f.espionage,
		port.NopNotifier{}, port.NopProgress{}, port.AllowAll{}, f.dice)
	svc.now = func() time.Time { return f.now }

	_, err := svc.Send(context.Background(), SendOrder{
		OriginCityID: 10,
		TargetCityID: target(20),
		Type:         entity.MovementAttack,
		Troops:       entity.TroopSet{"basic_infantry": 20},
	})
	if !errors.Is(err, errx.ErrUnavailable) {
		t.Fatalf("期望落库失败报 UNAVAILABLE，got=%v", err)
	}
	// 行军没建出来，出发扣兵必须原路退回
	if got := f.city(10).Troops["basic_infantry"]; got != 50 {
		t.Fatalf("期望回滚后驻军 50，got=%d", got)
	}
}

func TestSend_运输落库失败时回滚扣货(t *testing.T) {
	f := newFixture(nil)
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A", Owner: entity.Owned(7),
		Stock: entity.Resources{Wood: 400, Clay: 400, Iron: 400}})
	f.addCity(&entity.City{ID: 20, WorldID: 1, Name: "B", X: 3, Y: 4})

	svc := NewMovementService(f.cfg, f.store, f.store, brokenMovementRepo{f.store}, f.reports,
		f.production, f.modifiers, f.combat, f.espionage,
		port.NopNotifier{}, port.NopProgress{}, port.AllowAll{}, f.dice)
	svc.now = func() time.Time { return f.now }

	_, err := svc.Send(context.Background(), SendOrder{
		OriginCityID: 10,
		TargetCityID: target(20),
		Type:         entity.MovementTransport,
		Cargo:        entity.Resources{Wood: 100, Clay: 100, Iron: 100},
	})
	if !errors.Is(err, errx.ErrUnavailable) {
		t.Fatalf("期望落库失败报 UNAVAILABLE，got=%v", err)
	}
	if got := f.city(10).Stock; !almostEqual(got.Wood, 400) || !almostEqual(got.Clay, 400) || !almostEqual(got.Iron, 400) {
		t.Fatalf("期望回滚后库存原样，got=%+v", got)
	}
}

func TestResolve_随军英雄参战并战后归建(t *testing.T) {
	f := newFixture(movementTestConfig())
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A", Owner: entity.Owned(7),
		X: 0, Y: 0, Troops: entity.TroopSet{"heavy_cavalry": 100},
		Hero: &entity.Hero{Name: "Rodrigo", AttackPoints: 10, DefensePoints: 5, Health: 100}})
	f.addCity(&entity.City{ID: 20, WorldID: 1, Name: "Aldea Bárbara", X: 3, Y: 4,
		Troops: entity.TroopSet{"rat": 1}})

	m, err := f.movements.Send(context.Background(), SendOrder{
		OriginCityID: 10,
		TargetCityID: target(20),
		Type:         entity.MovementAttack,
		Troops:       entity.TroopSet{"heavy_cavalry": 100},
		WithHero:     true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.Hero == nil || m.Hero.Name != "Rodrigo" {
		t.Fatalf("期望英雄随军出征，got=%+v", m.Hero)
	}
	if f.city(10).Hero != nil {
		t.Fatalf("期望英雄出征后离城")
	}

	f.now = m.ArriveAt
	if _, err := f.movements.ResolveDue(context.Background(), nil, f.now); err != nil {
		t.Fatal(err)
	}

	due, err := f.store.DueMovements(context.Background(), nil, f.now.Add(100*time.Hour))
	if err != nil || len(due) != 1 {
		t.Fatalf("期望派生一条回程，got=%d err=%v", len(due), err)
	}
	back := due[0]
	if back.Hero == nil {
		t.Fatalf("期望幸存英雄随队返程")
	}
	// 碾压局也按伤亡比下限掉血
	if back.Hero.Health >= 100 {
		t.Fatalf("期望英雄按伤亡比掉血，got=%v", back.Hero.Health)
	}

	f.now = back.ArriveAt
	if _, err := f.movements.ResolveDue(context.Background(), nil, f.now); err != nil {
		t.Fatal(err)
	}
	home := f.city(10)
	if home.Hero == nil || home.Hero.Name != "Rodrigo" {
		t.Fatalf("期望英雄战后归建，got=%+v", home.Hero)
	}
}

func TestResolve_守城英雄城破阵亡(t *testing.T) {
	f := newFixture(movementTestConfig())
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A", Owner: entity.Owned(7),
		X: 0, Y: 0, Troops: entity.TroopSet{"heavy_cavalry": 200}})
	f.addCity(&entity.City{ID: 20, WorldID: 1, Name: "B", Owner: entity.Owned(8), X: 3, Y: 4,
		Troops: entity.TroopSet{"basic_infantry": 1},
		Hero:   &entity.Hero{Name: "Íñigo", DefensePoints: 1, Health: 100}})

	m, err := f.movements.Send(context.Background(), SendOrder{
		OriginCityID: 10,
		TargetCityID: target(20),
		Type:         entity.MovementAttack,
		Troops:       entity.TroopSet{"heavy_cavalry": 200},
	})
	if err != nil {
		t.Fatal(err)
	}

	f.now = m.ArriveAt
	if _, err := f.movements.ResolveDue(context.Background(), nil, f.now); err != nil {
		t.Fatal(err)
	}

	defender := f.city(20)
	if defender.Troops.Total() != 0 {
		t.Fatalf("期望守军全灭，got=%v", defender.Troops)
	}
	if defender.Hero != nil {
		t.Fatalf("期望守城英雄全灭时阵亡，got=%+v", defender.Hero)
	}
}

func TestSend_无英雄时带英雄出征被拒(t *testing.T) {
	f := newFixture(nil)
	f.addWorld(1, 1.0, 1.0)
	f.addCity(&entity.City{ID: 10, WorldID: 1, Name: "A",
		Troops: entity.TroopSet{"basic_infantry": 10}})
	f.addCity(&entity.City{ID: 20, WorldID: 1, Name: "B", X: 3, Y: 4})

	_, err := f.movements.Send(context.Background(), SendOrder{
		OriginCityID: 10,
		TargetCityID: target(20),
		Type:         entity.MovementAttack,
		Troops:       entity.TroopSet{"basic_infantry": 5},
		WithHero:     true,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("期望城内无英雄时被拒，got=%v", err)
	}
}
