package service

import (
	"math/rand"
	"time"

	"BatallaMedieval/internal/shared/gameconfig/balance"
	"BatallaMedieval/internal/sim/entity"
)

// Dice 抽象战斗/谍报用到的随机源。*rand.Rand 天然满足；
// 测试里用固定骰子让结果可复现。
type Dice interface {
	Float64() float64
	Intn(n int) int
}

// NewDice 返回默认随机源。模拟循环单协程推进，不需要加锁。
func NewDice() Dice {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func costToResources(c balance.Cost) entity.Resources {
	return entity.Resources{Wood: c.Wood, Clay: c.Clay, Iron: c.Iron}
}
