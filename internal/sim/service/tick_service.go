package service

import (
	"context"
	"time"

	"BatallaMedieval/internal/shared/logs"
	"BatallaMedieval/internal/sim/entity"

	"go.uber.org/zap"
)

// TickResult 一次推进的统计。
type TickResult struct {
	ProcessedQueues    int
	ProcessedMovements int
}

// TickService 把模拟向前推一格：先结队列（建筑落成、部队入营），
// 再结行军（让刚练好的守军参与同一 tick 到达的战斗）。
type TickService struct {
	queues    *QueueService
	movements *MovementService
	now       func() time.Time
}

func NewTickService(queues *QueueService, movements *MovementService) *TickService {
	return &TickService{queues: queues, movements: movements, now: time.Now}
}

// Tick worldID 为 nil 时推进所有世界。
// 两段各自内部做单记录隔离，这里只在仓储级故障时返回错误。
func (s *TickService) Tick(ctx context.Context, worldID *entity.WorldID) (TickResult, error) {
	now := s.now()
	result := TickResult{}

	queues, err := s.queues.ProcessDue(ctx, worldID, now)
	if err != nil {
		return result, err
	}
	result.ProcessedQueues = queues

	movements, err := s.movements.ResolveDue(ctx, worldID, now)
	if err != nil {
		return result, err
	}
	result.ProcessedMovements = movements

	if queues > 0 || movements > 0 {
		logs.Debug("tick 完成",
			zap.Int("queues", queues),
			zap.Int("movements", movements))
	}
	return result, nil
}
