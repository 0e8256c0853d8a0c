package model

import (
	"encoding/json"

	"BatallaMedieval/internal/sim/entity"
)

// 小 map 存成 JSON 字符串列。坏数据按空 map 处理，不让一行脏数据拖垮整个查询。

func marshalMap[V any](in map[string]V) string {
	if len(in) == 0 {
		return "{}"
	}
	raw, err := json.Marshal(in)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func unmarshalIntMap(raw string) map[string]int {
	out := map[string]int{}
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &out)
	}
	return out
}

// 英雄列：空串表示没有英雄。

func marshalHero(h *entity.Hero) string {
	if h == nil {
		return ""
	}
	raw, err := json.Marshal(h)
	if err != nil {
		return ""
	}
	return string(raw)
}

func unmarshalHero(raw string) *entity.Hero {
	if raw == "" {
		return nil
	}
	h := &entity.Hero{}
	if err := json.Unmarshal([]byte(raw), h); err != nil {
		return nil
	}
	return h
}

func WorldToEntity(m *World) *entity.World {
	return &entity.World{
		ID:               m.ID,
		Name:             m.Name,
		SpeedModifier:    m.SpeedModifier,
		ResourceModifier: m.ResourceModifier,
		MapSize:          m.MapSize,
		IsActive:         m.IsActive,
		CreatedAt:        m.CreatedAt,
	}
}

func WorldFromEntity(w *entity.World) *World {
	return &World{
		ID:               w.ID,
		Name:             w.Name,
		SpeedModifier:    w.SpeedModifier,
		ResourceModifier: w.ResourceModifier,
		MapSize:          w.MapSize,
		IsActive:         w.IsActive,
		CreatedAt:        w.CreatedAt,
	}
}

func EventToEntity(m *WorldEvent) *entity.WorldEvent {
	mods := entity.Modifiers{}
	if m.Modifiers != "" {
		_ = json.Unmarshal([]byte(m.Modifiers), &mods)
	}
	return &entity.WorldEvent{
		ID:          m.ID,
		WorldID:     m.WorldID,
		Name:        m.Name,
		Description: m.Description,
		StartAt:     m.StartAt,
		EndAt:       m.EndAt,
		Modifiers:   mods,
	}
}

func EventFromEntity(e *entity.WorldEvent) *WorldEvent {
	raw, err := json.Marshal(e.Modifiers)
	if err != nil {
		raw = []byte("{}")
	}
	return &WorldEvent{
		ID:          e.ID,
		WorldID:     e.WorldID,
		Name:        e.Name,
		Description: e.Description,
		StartAt:     e.StartAt,
		EndAt:       e.EndAt,
		Modifiers:   string(raw),
	}
}

func CityToEntity(m *City, builds []BuildQueueEntry, trains []TrainQueueEntry) *entity.City {
	owner := entity.Unclaimed()
	if m.OwnerID != nil {
		owner = entity.Owned(*m.OwnerID)
	}
	city := &entity.City{
		ID:               m.ID,
		WorldID:          m.WorldID,
		Name:             m.Name,
		Owner:            owner,
		X:                m.X,
		Y:                m.Y,
		Stock:            entity.Resources{Wood: m.Wood, Clay: m.Clay, Iron: m.Iron},
		Loyalty:          m.Loyalty,
		LastProductionAt: m.LastProductionAt,
		Buildings:        unmarshalIntMap(m.Buildings),
		Troops:           entity.TroopSet(unmarshalIntMap(m.Troops)),
		Hero:             unmarshalHero(m.Hero),
	}
	for _, b := range builds {
		city.BuildQueue = append(city.BuildQueue, entity.BuildQueueEntry{
			ID:          b.ID,
			CityID:      b.CityID,
			Building:    b.Building,
			TargetLevel: b.TargetLevel,
			Cost:        entity.Resources{Wood: b.CostWood, Clay: b.CostClay, Iron: b.CostIron},
			FinishAt:    b.FinishAt,
		})
	}
	for _, t := range trains {
		city.TrainQueue = append(city.TrainQueue, entity.TrainQueueEntry{
			ID:       t.ID,
			CityID:   t.CityID,
			Unit:     t.Unit,
			Amount:   t.Amount,
			Cost:     entity.Resources{Wood: t.CostWood, Clay: t.CostClay, Iron: t.CostIron},
			FinishAt: t.FinishAt,
		})
	}
	return city
}

func CityFromEntity(c *entity.City) (*City, []BuildQueueEntry, []TrainQueueEntry) {
	var ownerID *int64
	if id, ok := c.Owner.PlayerID(); ok {
		ownerID = &id
	}
	row := &City{
		ID:               c.ID,
		WorldID:          c.WorldID,
		Name:             c.Name,
		OwnerID:          ownerID,
		X:                c.X,
		Y:                c.Y,
		Wood:             c.Stock.Wood,
		Clay:             c.Stock.Clay,
		Iron:             c.Stock.Iron,
		Loyalty:          c.Loyalty,
		LastProductionAt: c.LastProductionAt,
		Buildings:        marshalMap(c.Buildings),
		Troops:           marshalMap(map[string]int(c.Troops)),
		Hero:             marshalHero(c.Hero),
	}
	var builds []BuildQueueEntry
	for _, e := range c.BuildQueue {
		builds = append(builds, BuildQueueEntry{
			ID:          e.ID,
			CityID:      c.ID,
			Building:    e.Building,
			TargetLevel: e.TargetLevel,
			CostWood:    e.Cost.Wood,
			CostClay:    e.Cost.Clay,
			CostIron:    e.Cost.Iron,
			FinishAt:    e.FinishAt,
		})
	}
	var trains []TrainQueueEntry
	for _, e := range c.TrainQueue {
		trains = append(trains, TrainQueueEntry{
			ID:       e.ID,
			CityID:   c.ID,
			Unit:     e.Unit,
			Amount:   e.Amount,
			CostWood: e.Cost.Wood,
			CostClay: e.Cost.Clay,
			CostIron: e.Cost.Iron,
			FinishAt: e.FinishAt,
		})
	}
	return row, builds, trains
}

func OasisToEntity(m *Oasis) *entity.Oasis {
	o := &entity.Oasis{
		ID:           m.ID,
		WorldID:      m.WorldID,
		X:            m.X,
		Y:            m.Y,
		ResourceType: m.ResourceType,
		BonusPercent: m.BonusPercent,
		Troops:       entity.TroopSet(unmarshalIntMap(m.Troops)),
	}
	if m.OwnerCityID != nil {
		id := *m.OwnerCityID
		o.OwnerCityID = &id
	}
	return o
}

func OasisFromEntity(o *entity.Oasis) *Oasis {
	row := &Oasis{
		ID:           o.ID,
		WorldID:      o.WorldID,
		X:            o.X,
		Y:            o.Y,
		ResourceType: o.ResourceType,
		BonusPercent: o.BonusPercent,
		Troops:       marshalMap(map[string]int(o.Troops)),
	}
	if o.OwnerCityID != nil {
		id := *o.OwnerCityID
		row.OwnerCityID = &id
	}
	return row
}

func MovementToEntity(m *Movement) *entity.Movement {
	mv := &entity.Movement{
		ID:             m.ID,
		WorldID:        m.WorldID,
		OriginCityID:   m.OriginCityID,
		Type:           entity.MovementType(m.Type),
		Troops:         entity.TroopSet(unmarshalIntMap(m.Troops)),
		Cargo:          entity.Resources{Wood: m.CargoWood, Clay: m.CargoClay, Iron: m.CargoIron},
		SpyCount:       m.SpyCount,
		Hero:           unmarshalHero(m.Hero),
		TargetBuilding: m.TargetBuilding,
		Speed:          m.Speed,
		DepartedAt:     m.DepartedAt,
		ArriveAt:       m.ArriveAt,
		Status:         entity.MovementStatus(m.Status),
	}
	if m.TargetCityID != nil {
		id := *m.TargetCityID
		mv.TargetCityID = &id
	}
	if m.TargetOasisID != nil {
		id := *m.TargetOasisID
		mv.TargetOasisID = &id
	}
	return mv
}

func MovementFromEntity(mv *entity.Movement) *Movement {
	row := &Movement{
		ID:             mv.ID,
		WorldID:        mv.WorldID,
		OriginCityID:   mv.OriginCityID,
		Type:           string(mv.Type),
		Troops:         marshalMap(map[string]int(mv.Troops)),
		CargoWood:      mv.Cargo.Wood,
		CargoClay:      mv.Cargo.Clay,
		CargoIron:      mv.Cargo.Iron,
		SpyCount:       mv.SpyCount,
		Hero:           marshalHero(mv.Hero),
		TargetBuilding: mv.TargetBuilding,
		Speed:          mv.Speed,
		DepartedAt:     mv.DepartedAt,
		ArriveAt:       mv.ArriveAt,
		Status:         string(mv.Status),
	}
	if mv.TargetCityID != nil {
		id := *mv.TargetCityID
		row.TargetCityID = &id
	}
	if mv.TargetOasisID != nil {
		id := *mv.TargetOasisID
		row.TargetOasisID = &id
	}
	return row
}
