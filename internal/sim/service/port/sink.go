package port

import (
	"context"

	"BatallaMedieval/internal/sim/entity"
)

// Notifier 把模拟产生的事件推给玩家（WebSocket、站内信等）。
// 推送失败只记日志，绝不能反过来阻塞结算。
type Notifier interface {
	Notify(ctx context.Context, playerID entity.PlayerID, kind, title, body string)
}

// ProgressSink 上报玩家进度事件（任务、成就系统消费）。
type ProgressSink interface {
	Track(ctx context.Context, playerID entity.PlayerID, event string, amount int)
}

// SlotPolicy 决定某个城主能同时排几个队列条目（会员、科技等外部系统决定）。
type SlotPolicy interface {
	BuildSlots(owner entity.Ownership) int
	TrainSlots(owner entity.Ownership) int
}

// ActionGuard 玩家主动操作的限速闸门，防脚本刷单。
type ActionGuard interface {
	Allow(playerID entity.PlayerID) bool
}

// NopNotifier 空实现，离线结算和测试用。
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, entity.PlayerID, string, string, string) {}

// NopProgress 空实现。
type NopProgress struct{}

func (NopProgress) Track(context.Context, entity.PlayerID, string, int) {}

// FixedSlots 固定槽位数的默认策略。
type FixedSlots struct {
	Build int
	Train int
}

func (f FixedSlots) BuildSlots(entity.Ownership) int { return f.Build }
func (f FixedSlots) TrainSlots(entity.Ownership) int { return f.Train }

// AllowAll 不限速。
type AllowAll struct{}

func (AllowAll) Allow(entity.PlayerID) bool { return true }
