package model

import (
	"time"
)

// World 世界分片表。
type World struct {
	ID               int64     `gorm:"column:id;primaryKey;not null;" json:"id"`
	Name             string    `gorm:"column:name;type:varchar(100);not null;" json:"name"`
	SpeedModifier    float64   `gorm:"column:speed_modifier;not null;default:1;comment:行军建造速度缩放;" json:"speed_modifier"`
	ResourceModifier float64   `gorm:"column:resource_modifier;not null;default:1;comment:产量缩放;" json:"resource_modifier"`
	MapSize          int       `gorm:"column:map_size;not null;default:100;" json:"map_size"`
	IsActive         bool      `gorm:"column:is_active;not null;default:true;" json:"is_active"`
	CreatedAt        time.Time `gorm:"column:created_at;not null;" json:"created_at"`
}

func (m *World) TableName() string {
	return "sim_world"
}

// WorldEvent 限时全局事件表，修正值序列化成 JSON 存一列。
type WorldEvent struct {
	ID          int64     `gorm:"column:id;primaryKey;not null;" json:"id"`
	WorldID     int64     `gorm:"column:world_id;index;not null;" json:"world_id"`
	Name        string    `gorm:"column:name;type:varchar(100);not null;" json:"name"`
	Description string    `gorm:"column:description;type:varchar(255);" json:"description"`
	StartAt     time.Time `gorm:"column:start_at;not null;" json:"start_at"`
	EndAt       time.Time `gorm:"column:end_at;index;not null;" json:"end_at"`
	Modifiers   string    `gorm:"column:modifiers;type:varchar(512);comment:修正值JSON;" json:"modifiers"`
}

func (m *WorldEvent) TableName() string {
	return "sim_world_event"
}

// City 城市表。建筑等级和驻军都是小 map，序列化成 JSON 列；
// 队列条目要按到期时间扫表，单独成表。
type City struct {
	ID               int64     `gorm:"column:id;primaryKey;not null;" json:"id"`
	WorldID          int64     `gorm:"column:world_id;uniqueIndex:uk_world_tile,priority:1;not null;" json:"world_id"`
	Name             string    `gorm:"column:name;type:varchar(100);not null;" json:"name"`
	OwnerID          *int64    `gorm:"column:owner_id;index;comment:空表示野蛮人;" json:"owner_id"`
	X                int       `gorm:"column:x;uniqueIndex:uk_world_tile,priority:2;not null;" json:"x"`
	Y                int       `gorm:"column:y;uniqueIndex:uk_world_tile,priority:3;not null;" json:"y"`
	Wood             float64   `gorm:"column:wood;not null;default:0;" json:"wood"`
	Clay             float64   `gorm:"column:clay;not null;default:0;" json:"clay"`
	Iron             float64   `gorm:"column:iron;not null;default:0;" json:"iron"`
	Loyalty          float64   `gorm:"column:loyalty;not null;default:100;" json:"loyalty"`
	LastProductionAt time.Time `gorm:"column:last_production_at;not null;" json:"last_production_at"`
	Buildings        string    `gorm:"column:buildings;type:text;comment:建筑等级JSON;" json:"buildings"`
	Troops           string    `gorm:"column:troops;type:text;comment:驻军JSON;" json:"troops"`
	Hero             string    `gorm:"column:hero;type:text;comment:驻守英雄JSON,空表示无;" json:"hero"`
}

func (m *City) TableName() string {
	return "sim_city"
}

// BuildQueueEntry 建造队列表。
type BuildQueueEntry struct {
	ID          int64     `gorm:"column:id;primaryKey;not null;" json:"id"`
	CityID      int64     `gorm:"column:city_id;index;not null;" json:"city_id"`
	Building    string    `gorm:"column:building;type:varchar(50);not null;" json:"building"`
	TargetLevel int       `gorm:"column:target_level;not null;" json:"target_level"`
	CostWood    float64   `gorm:"column:cost_wood;not null;default:0;" json:"cost_wood"`
	CostClay    float64   `gorm:"column:cost_clay;not null;default:0;" json:"cost_clay"`
	CostIron    float64   `gorm:"column:cost_iron;not null;default:0;" json:"cost_iron"`
	FinishAt    time.Time `gorm:"column:finish_at;index;not null;" json:"finish_at"`
}

func (m *BuildQueueEntry) TableName() string {
	return "sim_city_build_queue"
}

// TrainQueueEntry 练兵队列表。
type TrainQueueEntry struct {
	ID       int64     `gorm:"column:id;primaryKey;not null;" json:"id"`
	CityID   int64     `gorm:"column:city_id;index;not null;" json:"city_id"`
	Unit     string    `gorm:"column:unit;type:varchar(50);not null;" json:"unit"`
	Amount   int       `gorm:"column:amount;not null;" json:"amount"`
	CostWood float64   `gorm:"column:cost_wood;not null;default:0;" json:"cost_wood"`
	CostClay float64   `gorm:"column:cost_clay;not null;default:0;" json:"cost_clay"`
	CostIron float64   `gorm:"column:cost_iron;not null;default:0;" json:"cost_iron"`
	FinishAt time.Time `gorm:"column:finish_at;index;not null;" json:"finish_at"`
}

func (m *TrainQueueEntry) TableName() string {
	return "sim_city_train_queue"
}

// Oasis 绿洲表。
type Oasis struct {
	ID           int64  `gorm:"column:id;primaryKey;not null;" json:"id"`
	WorldID      int64  `gorm:"column:world_id;index;not null;" json:"world_id"`
	X            int    `gorm:"column:x;not null;" json:"x"`
	Y            int    `gorm:"column:y;not null;" json:"y"`
	ResourceType string `gorm:"column:resource_type;type:varchar(20);not null;" json:"resource_type"`
	BonusPercent int    `gorm:"column:bonus_percent;not null;default:25;" json:"bonus_percent"`
	OwnerCityID  *int64 `gorm:"column:owner_city_id;index;comment:吞并它的城市;" json:"owner_city_id"`
	Troops       string `gorm:"column:troops;type:text;comment:驻军JSON;" json:"troops"`
}

func (m *Oasis) TableName() string {
	return "sim_oasis"
}

// Movement 行军表。到期扫描走 (status, arrive_at) 联合索引。
type Movement struct {
	ID             int64     `gorm:"column:id;primaryKey;not null;" json:"id"`
	WorldID        int64     `gorm:"column:world_id;index;not null;" json:"world_id"`
	OriginCityID   int64     `gorm:"column:origin_city_id;index;not null;" json:"origin_city_id"`
	TargetCityID   *int64    `gorm:"column:target_city_id;" json:"target_city_id"`
	TargetOasisID  *int64    `gorm:"column:target_oasis_id;" json:"target_oasis_id"`
	Type           string    `gorm:"column:type;type:varchar(20);not null;" json:"type"`
	Troops         string    `gorm:"column:troops;type:text;comment:随行部队JSON;" json:"troops"`
	CargoWood      float64   `gorm:"column:cargo_wood;not null;default:0;" json:"cargo_wood"`
	CargoClay      float64   `gorm:"column:cargo_clay;not null;default:0;" json:"cargo_clay"`
	CargoIron      float64   `gorm:"column:cargo_iron;not null;default:0;" json:"cargo_iron"`
	SpyCount       int       `gorm:"column:spy_count;not null;default:0;" json:"spy_count"`
	Hero           string    `gorm:"column:hero;type:text;comment:随军英雄JSON,空表示无;" json:"hero"`
	TargetBuilding string    `gorm:"column:target_building;type:varchar(50);" json:"target_building"`
	Speed          float64   `gorm:"column:speed;not null;" json:"speed"`
	DepartedAt     time.Time `gorm:"column:departed_at;not null;" json:"departed_at"`
	ArriveAt       time.Time `gorm:"column:arrive_at;index:idx_status_arrive,priority:2;not null;" json:"arrive_at"`
	Status         string    `gorm:"column:status;type:varchar(30);index:idx_status_arrive,priority:1;not null;" json:"status"`
}

func (m *Movement) TableName() string {
	return "sim_movement"
}
