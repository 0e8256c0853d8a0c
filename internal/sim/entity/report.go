package entity

import "time"

// Hero 随军英雄的战斗参数快照（英雄系统本体在核心之外）。
type Hero struct {
	Name          string  `bson:"name" json:"name"`
	AttackPoints  int     `bson:"attack_points" json:"attack_points"`
	DefensePoints int     `bson:"defense_points" json:"defense_points"`
	Health        float64 `bson:"health" json:"health"`
}

// BattleReport 一场战斗的共享报告载荷：攻守双方引用同一份。
type BattleReport struct {
	ID             string    `bson:"_id" json:"id"`
	WorldID        WorldID   `bson:"world_id" json:"world_id"`
	Kind           string    `bson:"kind" json:"kind"` // battle / oasis_battle / reinforce / trade
	AttackerCityID CityID    `bson:"attacker_city_id" json:"attacker_city_id"`
	DefenderCityID *CityID   `bson:"defender_city_id,omitempty" json:"defender_city_id,omitempty"`
	DefenderOasisID *OasisID `bson:"defender_oasis_id,omitempty" json:"defender_oasis_id,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`

	AttackerInitial   TroopSet `bson:"attacker_initial" json:"attacker_initial"`
	AttackerLosses    TroopSet `bson:"attacker_losses" json:"attacker_losses"`
	AttackerSurvivors TroopSet `bson:"attacker_survivors" json:"attacker_survivors"`
	DefenderInitial   TroopSet `bson:"defender_initial" json:"defender_initial"`
	DefenderLosses    TroopSet `bson:"defender_losses" json:"defender_losses"`
	DefenderSurvivors TroopSet `bson:"defender_survivors" json:"defender_survivors"`

	Loot           Resources `bson:"loot" json:"loot"`
	WallDamage     *LevelChange `bson:"wall_damage,omitempty" json:"wall_damage,omitempty"`
	BuildingDamage *BuildingDamage `bson:"building_damage,omitempty" json:"building_damage,omitempty"`
	LoyaltyChange  float64   `bson:"loyalty_change" json:"loyalty_change"`
	Conquest       bool      `bson:"conquest" json:"conquest"`

	Moral           float64 `bson:"moral" json:"moral"`
	Luck            float64 `bson:"luck" json:"luck"`
	EffectiveAttack float64 `bson:"effective_attack" json:"effective_attack"`
	DefenseValue    float64 `bson:"defense_value" json:"defense_value"`
	XPGained        int     `bson:"xp_gained" json:"xp_gained"`
}

type LevelChange struct {
	From int `bson:"from" json:"from"`
	To   int `bson:"to" json:"to"`
}

type BuildingDamage struct {
	Building string `bson:"building" json:"building"`
	From     int    `bson:"from" json:"from"`
	To       int    `bson:"to" json:"to"`
}

// SpyReport 间谍报告。攻守双方各存一份，内容可能不同：
// 攻击方永远看到全部真相；防守方的副本可能被匿名化。
type SpyReport struct {
	ID             string    `bson:"_id" json:"id"`
	WorldID        WorldID   `bson:"world_id" json:"world_id"`
	OwnerCityID    CityID    `bson:"owner_city_id" json:"owner_city_id"` // 这份副本属于谁
	AttackerCityID *CityID   `bson:"attacker_city_id,omitempty" json:"attacker_city_id,omitempty"` // 匿名化后为空
	DefenderCityID CityID    `bson:"defender_city_id" json:"defender_city_id"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`

	Success           bool `bson:"success" json:"success"`
	ReportedAsUnknown bool `bson:"reported_as_unknown" json:"reported_as_unknown"`
	AttackerSpies     int  `bson:"attacker_spies" json:"attacker_spies"`
	DefenderSpies     int  `bson:"defender_spies" json:"defender_spies"`

	// 成功时曝光的防守方情报；建筑等级需要间谍数达到门槛才出现
	Resources *Resources     `bson:"resources,omitempty" json:"resources,omitempty"`
	Troops    TroopSet       `bson:"troops,omitempty" json:"troops,omitempty"`
	Buildings map[string]int `bson:"buildings,omitempty" json:"buildings,omitempty"`
}
