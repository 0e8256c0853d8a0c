package dto

import (
	"time"

	"BatallaMedieval/internal/sim/entity"
	"BatallaMedieval/internal/sim/service"
)

// ============ 请求 ============

type TokenReq struct {
	UID int64 `json:"uid" binding:"required,gt=0"`
}

type TokenView struct {
	Token string `json:"token"`
}

type CreateWorldReq struct {
	Name             string  `json:"name" binding:"required"`
	SpeedModifier    float64 `json:"speed_modifier"`
	ResourceModifier float64 `json:"resource_modifier"`
}

type ScheduleEventReq struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	StartAt     time.Time        `json:"start_at" binding:"required"`
	EndAt       time.Time        `json:"end_at" binding:"required"`
	Modifiers   entity.Modifiers `json:"modifiers"`
}

type FoundCityReq struct {
	WorldID int64  `json:"world_id" binding:"required"`
	Name    string `json:"name" binding:"required"`
}

type BuildReq struct {
	Building string `json:"building" binding:"required"`
}

type TrainReq struct {
	Unit   string `json:"unit" binding:"required"`
	Amount int    `json:"amount" binding:"required"`
}

type SendMovementReq struct {
	OriginCityID   int64            `json:"origin_city_id" binding:"required"`
	TargetCityID   *int64           `json:"target_city_id"`
	TargetOasisID  *int64           `json:"target_oasis_id"`
	Type           string           `json:"type" binding:"required"`
	Troops         map[string]int   `json:"troops"`
	Cargo          entity.Resources `json:"cargo"`
	SpyCount       int              `json:"spy_count"`
	WithHero       bool             `json:"with_hero"`
	TargetBuilding string           `json:"target_building"`
}

func (r SendMovementReq) ToOrder() service.SendOrder {
	return service.SendOrder{
		OriginCityID:   r.OriginCityID,
		TargetCityID:   r.TargetCityID,
		TargetOasisID:  r.TargetOasisID,
		Type:           entity.MovementType(r.Type),
		Troops:         entity.TroopSet(r.Troops),
		Cargo:          r.Cargo,
		SpyCount:       r.SpyCount,
		WithHero:       r.WithHero,
		TargetBuilding: r.TargetBuilding,
	}
}

type TickReq struct {
	WorldID *int64 `json:"world_id"`
}

// ============ 视图 ============

type QueueItemView struct {
	ID       int64     `json:"id"`
	Building string    `json:"building,omitempty"`
	Target   int       `json:"target_level,omitempty"`
	Unit     string    `json:"unit,omitempty"`
	Amount   int       `json:"amount,omitempty"`
	FinishAt time.Time `json:"finish_at"`
}

type CityView struct {
	ID         int64            `json:"id"`
	WorldID    int64            `json:"world_id"`
	Name       string           `json:"name"`
	OwnerID    *int64           `json:"owner_id,omitempty"`
	X          int              `json:"x"`
	Y          int              `json:"y"`
	Stock      entity.Resources `json:"stock"`
	Loyalty    float64          `json:"loyalty"`
	Buildings  map[string]int   `json:"buildings"`
	Troops     entity.TroopSet  `json:"troops"`
	Hero       *entity.Hero     `json:"hero,omitempty"`
	BuildQueue []QueueItemView  `json:"build_queue"`
	TrainQueue []QueueItemView  `json:"train_queue"`
}

func NewCityView(c *entity.City) CityView {
	view := CityView{
		ID:        c.ID,
		WorldID:   c.WorldID,
		Name:      c.Name,
		X:         c.X,
		Y:         c.Y,
		Stock:     c.Stock,
		Loyalty:   c.Loyalty,
		Buildings: c.Buildings,
		Troops:    c.Troops,
		Hero:      c.Hero,
	}
	if owner, ok := c.Owner.PlayerID(); ok {
		view.OwnerID = &owner
	}
	for _, e := range c.BuildQueue {
		view.BuildQueue = append(view.BuildQueue, QueueItemView{
			ID: e.ID, Building: e.Building, Target: e.TargetLevel, FinishAt: e.FinishAt,
		})
	}
	for _, e := range c.TrainQueue {
		view.TrainQueue = append(view.TrainQueue, QueueItemView{
			ID: e.ID, Unit: e.Unit, Amount: e.Amount, FinishAt: e.FinishAt,
		})
	}
	return view
}

type MovementView struct {
	ID            int64            `json:"id"`
	WorldID       int64            `json:"world_id"`
	OriginCityID  int64            `json:"origin_city_id"`
	TargetCityID  *int64           `json:"target_city_id,omitempty"`
	TargetOasisID *int64           `json:"target_oasis_id,omitempty"`
	Type          string           `json:"type"`
	Troops        entity.TroopSet  `json:"troops,omitempty"`
	Cargo         entity.Resources `json:"cargo"`
	SpyCount      int              `json:"spy_count,omitempty"`
	Speed         float64          `json:"speed"`
	DepartedAt    time.Time        `json:"departed_at"`
	ArriveAt      time.Time        `json:"arrive_at"`
	Status        string           `json:"status"`
}

func NewMovementView(m *entity.Movement) MovementView {
	return MovementView{
		ID:            m.ID,
		WorldID:       m.WorldID,
		OriginCityID:  m.OriginCityID,
		TargetCityID:  m.TargetCityID,
		TargetOasisID: m.TargetOasisID,
		Type:          string(m.Type),
		Troops:        m.Troops,
		Cargo:         m.Cargo,
		SpyCount:      m.SpyCount,
		Speed:         m.Speed,
		DepartedAt:    m.DepartedAt,
		ArriveAt:      m.ArriveAt,
		Status:        string(m.Status),
	}
}

type WorldView struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	SpeedModifier    float64   `json:"speed_modifier"`
	ResourceModifier float64   `json:"resource_modifier"`
	MapSize          int       `json:"map_size"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

func NewWorldView(w *entity.World) WorldView {
	return WorldView{
		ID:               w.ID,
		Name:             w.Name,
		SpeedModifier:    w.SpeedModifier,
		ResourceModifier: w.ResourceModifier,
		MapSize:          w.MapSize,
		IsActive:         w.IsActive,
		CreatedAt:        w.CreatedAt,
	}
}
