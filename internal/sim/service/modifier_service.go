package service

import (
	"context"
	"time"

	"BatallaMedieval/internal/shared/errx"
	"BatallaMedieval/internal/shared/logs"
	"BatallaMedieval/internal/sim/entity"
	"BatallaMedieval/internal/sim/service/port"

	"go.uber.org/zap"
)

// ModifierService 汇总某一时刻生效的速率修正：
// 事件修正（限时覆盖默认值）单独返回，世界级缩放由 World 本体携带。
// 各引擎自己决定把哪个缩放乘进哪个公式。
type ModifierService struct {
	worlds port.WorldRepository
}

func NewModifierService(worlds port.WorldRepository) *ModifierService {
	return &ModifierService{worlds: worlds}
}

// Effective 返回 now 时刻的事件修正和世界参数。
// 没有生效事件时返回全 1 的默认修正。
func (s *ModifierService) Effective(ctx context.Context, worldID entity.WorldID, now time.Time) (entity.Modifiers, *entity.World, error) {
	world, err := s.worlds.GetWorld(ctx, worldID)
	if err != nil {
		return entity.Modifiers{}, nil, errx.ErrUnavailable.WithCause(err).WithData("world_id", worldID)
	}

	mods := entity.DefaultModifiers()
	event, err := s.worlds.ActiveEvent(ctx, worldID, now)
	if err != nil {
		// 事件查不到只降级成默认修正，不让一次事件表故障拖垮整个结算。
		logs.Warn("查询生效事件失败，按默认修正继续", zap.Int64("world_id", worldID), zap.Error(err))
		return mods, world, nil
	}
	if event != nil {
		mods = sanitizeModifiers(event.Modifiers)
	}
	return mods, world, nil
}

// sanitizeModifiers 把事件文档里缺省（0 值）的修正补回 1，避免把速率乘成 0。
func sanitizeModifiers(m entity.Modifiers) entity.Modifiers {
	if m.ProductionSpeed <= 0 {
		m.ProductionSpeed = 1.0
	}
	if m.TrainingSpeed <= 0 {
		m.TrainingSpeed = 1.0
	}
	if m.MovementSpeed <= 0 {
		m.MovementSpeed = 1.0
	}
	if m.SpyModifier <= 0 {
		m.SpyModifier = 1.0
	}
	if m.LootModifier <= 0 {
		m.LootModifier = 1.0
	}
	return m
}
