package service

import (
	"context"
	"time"

	"BatallaMedieval/internal/shared/logs"

	"go.uber.org/zap"
)

// Runner 后台推进器：快 tick 结算队列和行军，慢 tick 驱动野蛮人生长。
// 单协程串行推进，天然避免同一聚合被并发结算。
type Runner struct {
	tick      *TickService
	barbarian *BarbarianService

	fastEvery time.Duration
	slowEvery time.Duration
}

func NewRunner(tick *TickService, barbarian *BarbarianService, fastEvery, slowEvery time.Duration) *Runner {
	if fastEvery <= 0 {
		fastEvery = 5 * time.Second
	}
	if slowEvery <= 0 {
		slowEvery = 5 * time.Minute
	}
	return &Runner{
		tick:      tick,
		barbarian: barbarian,
		fastEvery: fastEvery,
		slowEvery: slowEvery,
	}
}

// Run 阻塞运行直到 ctx 取消。单轮 panic 恢复后继续下一轮。
func (r *Runner) Run(ctx context.Context) {
	fast := time.NewTicker(r.fastEvery)
	defer fast.Stop()
	slow := time.NewTicker(r.slowEvery)
	defer slow.Stop()

	logs.Info("模拟推进器启动",
		zap.Duration("fast_every", r.fastEvery),
		zap.Duration("slow_every", r.slowEvery))

	for {
		select {
		case <-ctx.Done():
			logs.Info("模拟推进器退出")
			return
		case <-fast.C:
			r.safeTick(ctx)
		case <-slow.C:
			r.safeGrow(ctx)
		}
	}
}

func (r *Runner) safeTick(ctx context.Context) {
	defer func() {
		if p := recover(); p != nil {
			logs.Error("tick panic，已恢复", zap.Any("panic", p))
		}
	}()
	if _, err := r.tick.Tick(ctx, nil); err != nil {
		logs.Error("tick 失败", zap.Error(err))
	}
}

func (r *Runner) safeGrow(ctx context.Context) {
	defer func() {
		if p := recover(); p != nil {
			logs.Error("野蛮人 tick panic，已恢复", zap.Any("panic", p))
		}
	}()
	if _, err := r.barbarian.Grow(ctx, nil); err != nil {
		logs.Error("野蛮人生长失败", zap.Error(err))
	}
}
