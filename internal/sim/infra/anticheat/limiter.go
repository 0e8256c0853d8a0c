package anticheat

import (
	"sync"

	"golang.org/x/time/rate"

	"BatallaMedieval/internal/sim/entity"
)

// ActionLimiter 按玩家维度限制主动操作频率（下单、出兵），防脚本刷接口。
// 令牌桶懒创建，玩家数有限不做回收。
type ActionLimiter struct {
	mu       sync.Mutex
	limiters map[entity.PlayerID]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewActionLimiter perMinute 为每分钟允许的操作数，burst 为突发额度。
func NewActionLimiter(perMinute, burst int) *ActionLimiter {
	if perMinute < 1 {
		perMinute = 60
	}
	if burst < 1 {
		burst = perMinute
	}
	return &ActionLimiter{
		limiters: make(map[entity.PlayerID]*rate.Limiter),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
	}
}

func (l *ActionLimiter) Allow(playerID entity.PlayerID) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[playerID]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[playerID] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow()
}
