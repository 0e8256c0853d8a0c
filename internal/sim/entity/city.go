package entity

import "time"

// City 城市聚合根：库存、建筑、驻军和两条队列整体读写。
type City struct {
	ID               CityID
	WorldID          WorldID
	Name             string
	Owner            Ownership
	X                int
	Y                int
	Stock            Resources // 当前资源库存
	Loyalty          float64   // 忠诚度 0-100，被贵族打击后随时间恢复
	LastProductionAt time.Time

	Buildings map[string]int // 建筑名 -> 等级
	Troops    TroopSet
	Hero      *Hero // 驻守英雄，可为空

	BuildQueue []BuildQueueEntry
	TrainQueue []TrainQueueEntry
}

// BuildingLevel 未建造的建筑按 0 级。
func (c *City) BuildingLevel(name string) int {
	if c.Buildings == nil {
		return 0
	}
	return c.Buildings[name]
}

// RaiseBuilding 把建筑提升到 target 级；低于当前等级时不动（幂等，防重复结算）。
func (c *City) RaiseBuilding(name string, target int) {
	if c.Buildings == nil {
		c.Buildings = map[string]int{}
	}
	if target > c.Buildings[name] {
		c.Buildings[name] = target
	}
}

// BuildQueueEntry 建造队列条目。Cost 记录下单时实付，取消时按比例退回。
type BuildQueueEntry struct {
	ID          QueueID
	CityID      CityID
	Building    string
	TargetLevel int
	Cost        Resources
	FinishAt    time.Time
}

// TrainQueueEntry 练兵队列条目。
type TrainQueueEntry struct {
	ID       QueueID
	CityID   CityID
	Unit     string
	Amount   int
	Cost     Resources
	FinishAt time.Time
}
