package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"BatallaMedieval/internal/sim/entity"
)

// Store 全内存仓储，实现 sim 的全部仓储端口。
// 单测和离线模拟用；读写都走深拷贝，调用方拿到的是快照，
// 不落库的修改不会泄漏回存储。
type Store struct {
	mu        sync.RWMutex
	worlds    map[entity.WorldID]*entity.World
	events    map[entity.WorldID][]*entity.WorldEvent
	cities    map[entity.CityID]*entity.City
	oases     map[entity.OasisID]*entity.Oasis
	movements map[entity.MovementID]*entity.Movement
}

func NewStore() *Store {
	return &Store{
		worlds:    map[entity.WorldID]*entity.World{},
		events:    map[entity.WorldID][]*entity.WorldEvent{},
		cities:    map[entity.CityID]*entity.City{},
		oases:     map[entity.OasisID]*entity.Oasis{},
		movements: map[entity.MovementID]*entity.Movement{},
	}
}

// ---- WorldRepository ----

func (s *Store) GetWorld(_ context.Context, id entity.WorldID) (*entity.World, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.worlds[id]
	if !ok {
		return nil, entity.ErrWorldNotFound
	}
	out := *w
	return &out, nil
}

func (s *Store) CreateWorld(_ context.Context, w *entity.World) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *w
	s.worlds[w.ID] = &cp
	return nil
}

func (s *Store) ActiveEvent(_ context.Context, worldID entity.WorldID, now time.Time) (*entity.WorldEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.events[worldID] {
		if e.ActiveAt(now) {
			out := *e
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateEvent(_ context.Context, e *entity.WorldEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.events[e.WorldID] = append(s.events[e.WorldID], &cp)
	return nil
}

// ---- CityRepository ----

func (s *Store) GetCity(_ context.Context, id entity.CityID) (*entity.City, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cities[id]
	if !ok {
		return nil, entity.ErrCityNotFound
	}
	return cloneCity(c), nil
}

func (s *Store) GetCityAt(_ context.Context, worldID entity.WorldID, x, y int) (*entity.City, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.cities {
		if c.WorldID == worldID && c.X == x && c.Y == y {
			return cloneCity(c), nil
		}
	}
	return nil, entity.ErrCityNotFound
}

func (s *Store) CreateCity(_ context.Context, city *entity.City) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cities {
		if c.WorldID == city.WorldID && c.X == city.X && c.Y == city.Y {
			return entity.ErrTileOccupied
		}
	}
	s.cities[city.ID] = cloneCity(city)
	return nil
}

func (s *Store) SaveCity(_ context.Context, city *entity.City) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cities[city.ID] = cloneCity(city)
	return nil
}

func (s *Store) FindCityByQueueEntry(_ context.Context, entryID entity.QueueID) (*entity.City, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.cities {
		for _, e := range c.BuildQueue {
			if e.ID == entryID {
				return cloneCity(c), nil
			}
		}
		for _, e := range c.TrainQueue {
			if e.ID == entryID {
				return cloneCity(c), nil
			}
		}
	}
	return nil, entity.ErrCityNotFound
}

func (s *Store) CityIDsWithDueWork(_ context.Context, worldID *entity.WorldID, now time.Time) ([]entity.CityID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []entity.CityID
	for _, c := range s.cities {
		if worldID != nil && c.WorldID != *worldID {
			continue
		}
		if hasDueEntry(c, now) {
			ids = append(ids, c.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Store) ListUnclaimed(_ context.Context, worldID *entity.WorldID, limit int) ([]*entity.City, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.City
	for _, c := range s.cities {
		if !c.Owner.IsUnclaimed() {
			continue
		}
		if worldID != nil && c.WorldID != *worldID {
			continue
		}
		out = append(out, cloneCity(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func hasDueEntry(c *entity.City, now time.Time) bool {
	for _, e := range c.BuildQueue {
		if !e.FinishAt.After(now) {
			return true
		}
	}
	for _, e := range c.TrainQueue {
		if !e.FinishAt.After(now) {
			return true
		}
	}
	return false
}

// ---- OasisRepository ----

func (s *Store) GetOasis(_ context.Context, id entity.OasisID) (*entity.Oasis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.oases[id]
	if !ok {
		return nil, entity.ErrOasisNotFound
	}
	return cloneOasis(o), nil
}

func (s *Store) OasisAt(_ context.Context, worldID entity.WorldID, x, y int) (*entity.Oasis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.oases {
		if o.WorldID == worldID && o.X == x && o.Y == y {
			return cloneOasis(o), nil
		}
	}
	return nil, entity.ErrOasisNotFound
}

func (s *Store) CreateOasis(_ context.Context, oasis *entity.Oasis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.oases[oasis.ID] = cloneOasis(oasis)
	return nil
}

func (s *Store) SaveOasis(_ context.Context, oasis *entity.Oasis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.oases[oasis.ID] = cloneOasis(oasis)
	return nil
}

func (s *Store) ListByOwnerCity(_ context.Context, cityID entity.CityID) ([]*entity.Oasis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Oasis
	for _, o := range s.oases {
		if o.OwnerCityID != nil && *o.OwnerCityID == cityID {
			out = append(out, cloneOasis(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---- MovementRepository ----

func (s *Store) CreateMovement(_ context.Context, m *entity.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movements[m.ID] = cloneMovement(m)
	return nil
}

func (s *Store) SaveMovement(_ context.Context, m *entity.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movements[m.ID] = cloneMovement(m)
	return nil
}

func (s *Store) DueMovements(_ context.Context, worldID *entity.WorldID, now time.Time) ([]*entity.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Movement
	for _, m := range s.movements {
		if m.Status != entity.MovementOngoing {
			continue
		}
		if worldID != nil && m.WorldID != *worldID {
			continue
		}
		if m.ArriveAt.After(now) {
			continue
		}
		out = append(out, cloneMovement(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArriveAt.Before(out[j].ArriveAt) })
	return out, nil
}

// GetMovement 测试用。
func (s *Store) GetMovement(id entity.MovementID) (*entity.Movement, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.movements[id]
	if !ok {
		return nil, false
	}
	return cloneMovement(m), true
}

// ---- 深拷贝 ----

func cloneCity(c *entity.City) *entity.City {
	cp := *c
	cp.Buildings = cloneIntMap(c.Buildings)
	cp.Troops = c.Troops.Clone()
	cp.BuildQueue = append([]entity.BuildQueueEntry(nil), c.BuildQueue...)
	cp.TrainQueue = append([]entity.TrainQueueEntry(nil), c.TrainQueue...)
	if c.Hero != nil {
		h := *c.Hero
		cp.Hero = &h
	}
	return &cp
}

func cloneOasis(o *entity.Oasis) *entity.Oasis {
	cp := *o
	cp.Troops = o.Troops.Clone()
	if o.OwnerCityID != nil {
		id := *o.OwnerCityID
		cp.OwnerCityID = &id
	}
	return &cp
}

func cloneMovement(m *entity.Movement) *entity.Movement {
	cp := *m
	cp.Troops = m.Troops.Clone()
	if m.TargetCityID != nil {
		id := *m.TargetCityID
		cp.TargetCityID = &id
	}
	if m.TargetOasisID != nil {
		id := *m.TargetOasisID
		cp.TargetOasisID = &id
	}
	if m.Hero != nil {
		h := *m.Hero
		cp.Hero = &h
	}
	return &cp
}

func cloneIntMap(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
