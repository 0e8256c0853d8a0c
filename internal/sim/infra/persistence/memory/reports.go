package memory

import (
	"context"
	"sync"

	"BatallaMedieval/internal/sim/entity"
)

// ReportStore 内存版报告仓储。Mongo 不可用时的降级后备，也给单测用。
type ReportStore struct {
	mu      sync.RWMutex
	battles []*entity.BattleReport
	spies   []*entity.SpyReport
}

func NewReportStore() *ReportStore {
	return &ReportStore{}
}

func (s *ReportStore) SaveBattleReport(_ context.Context, r *entity.BattleReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.battles = append(s.battles, &cp)
	return nil
}

func (s *ReportStore) SaveSpyReport(_ context.Context, r *entity.SpyReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.spies = append(s.spies, &cp)
	return nil
}

// BattleReports 测试用快照。
func (s *ReportStore) BattleReports() []*entity.BattleReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*entity.BattleReport(nil), s.battles...)
}

// SpyReports 测试用快照。
func (s *ReportStore) SpyReports() []*entity.SpyReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*entity.SpyReport(nil), s.spies...)
}
