package entity

import "time"

// World 一个游戏分片（服）。修正值在创建时定死，事件另行叠加。
type World struct {
	ID               WorldID
	Name             string
	SpeedModifier    float64 // 行军/建造速度的分片级缩放
	ResourceModifier float64 // 产量的分片级缩放
	MapSize          int
	IsActive         bool
	CreatedAt        time.Time
}

// WorldEvent 限时全局事件，修正值在时间窗口内覆盖默认值。
type WorldEvent struct {
	ID          int64
	WorldID     WorldID
	Name        string
	Description string
	StartAt     time.Time
	EndAt       time.Time
	Modifiers   Modifiers
}

// ActiveAt 判断事件在 t 时刻是否生效。
func (e *WorldEvent) ActiveAt(t time.Time) bool {
	return !t.Before(e.StartAt) && !t.After(e.EndAt)
}

// Oasis 地图上的资源加成地块，初始由野生生物驻守。
type Oasis struct {
	ID           OasisID
	WorldID      WorldID
	X            int
	Y            int
	ResourceType string // wood / clay / iron
	BonusPercent int    // 25 或 50
	OwnerCityID  *CityID
	Troops       TroopSet // 野生驻军，或征服者留下的部队
}
