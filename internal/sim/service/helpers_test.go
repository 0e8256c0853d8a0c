package service

import (
	"time"

	"BatallaMedieval/internal/shared/gameconfig/balance"
	"BatallaMedieval/internal/sim/entity"
	"BatallaMedieval/internal/sim/infra/persistence/memory"
	"BatallaMedieval/internal/sim/service/port"
)

// stubDice 固定序列骰子，耗尽后重复最后一个值。
type stubDice struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (d *stubDice) Float64() float64 {
	if len(d.floats) == 0 {
		return 0.5
	}
	v := d.floats[min(d.fi, len(d.floats)-1)]
	d.fi++
	return v
}

func (d *stubDice) Intn(n int) int {
	if len(d.ints) == 0 {
		return 0
	}
	v := d.ints[min(d.ii, len(d.ints)-1)]
	d.ii++
	if v >= n {
		v = n - 1
	}
	return v
}

// fixture 把全套引擎接到内存仓储上，时钟固定可拨。
type fixture struct {
	cfg     *balance.Config
	store   *memory.Store
	reports *memory.ReportStore
	dice    *stubDice
	now     time.Time

	modifiers  *ModifierService
	production *ProductionService
	queues     *QueueService
	combat     *CombatService
	espionage  *EspionageService
	movements  *MovementService
	tick       *TickService
}

func newFixture(cfg *balance.Config) *fixture {
	if cfg == nil {
		cfg = balance.Default()
	}
	f := &fixture{
		cfg:     cfg,
		store:   memory.NewStore(),
		reports: memory.NewReportStore(),
		dice:    &stubDice{},
		now:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }

	f.modifiers = NewModifierService(f.store)
	f.production = NewProductionService(cfg, f.store, f.store, f.modifiers, port.NopProgress{})
	f.production.now = clock
	f.queues = NewQueueService(cfg, f.store, f.production, f.modifiers,
		port.FixedSlots{Build: 1, Train: 1}, port.NopNotifier{}, port.NopProgress{})
	f.queues.now = clock
	f.combat = NewCombatService(cfg)
	f.espionage = NewEspionageService(cfg)
	f.movements = NewMovementService(cfg, f.store, f.store, f.store, f.reports,
		f.production, f.modifiers, f.combat, f.espionage,
		port.NopNotifier{}, port.NopProgress{}, port.AllowAll{}, f.dice)
	f.movements.now = clock
	f.tick = NewTickService(f.queues, f.movements)
	f.tick.now = clock
	return f
}

// advance 把固定时钟往前拨。
func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) addWorld(id entity.WorldID, speed, resourceRate float64) *entity.World {
	w := &entity.World{
		ID:               id,
		Name:             "Mundo de Prueba",
		SpeedModifier:    speed,
		ResourceModifier: resourceRate,
		MapSize:          100,
		IsActive:         true,
		CreatedAt:        f.now,
	}
	if err := f.store.CreateWorld(nil, w); err != nil {
		panic(err)
	}
	return w
}

func (f *fixture) addCity(c *entity.City) *entity.City {
	if c.Loyalty == 0 {
		c.Loyalty = 100
	}
	if c.LastProductionAt.IsZero() {
		c.LastProductionAt = f.now
	}
	if c.Buildings == nil {
		c.Buildings = map[string]int{}
	}
	if c.Troops == nil {
		c.Troops = entity.TroopSet{}
	}
	if err := f.store.CreateCity(nil, c); err != nil {
		panic(err)
	}
	return c
}

func (f *fixture) city(id entity.CityID) *entity.City {
	c, err := f.store.GetCity(nil, id)
	if err != nil {
		panic(err)
	}
	return c
}
