package entity

import "time"

type MovementType string

const (
	MovementAttack          MovementType = "attack"
	MovementSpy             MovementType = "spy"
	MovementReinforce       MovementType = "reinforce"
	MovementTransport       MovementType = "transport"
	MovementReturn          MovementType = "return"
	MovementTransportReturn MovementType = "transport_return"
)

func (t MovementType) Valid() bool {
	switch t {
	case MovementAttack, MovementSpy, MovementReinforce,
		MovementTransport, MovementReturn, MovementTransportReturn:
		return true
	}
	return false
}

type MovementStatus string

const (
	MovementOngoing   MovementStatus = "ongoing"
	MovementCompleted MovementStatus = "completed"
	// 结算该条记录时出错，标记掉而不是无限重试，避免毒记录卡死整个批次。
	MovementFailed MovementStatus = "completed_with_error"
)

// Movement 行军记录。创建后除 Status 外不可变；
// 结算时可能派生出新的 return 记录（新实体，不是状态迁移）。
type Movement struct {
	ID           MovementID
	WorldID      WorldID
	OriginCityID CityID
	// 目标二选一：城池或绿洲
	TargetCityID  *CityID
	TargetOasisID *OasisID

	Type     MovementType
	Troops   TroopSet  // 随行部队（attack/reinforce/return）
	Cargo    Resources // 载货（transport/return 带回的战利品）
	SpyCount int       // spy 任务的间谍数
	Hero     *Hero     // 随军英雄（attack 及其回程）

	// 攻城武器指定打击的建筑（catapult），可为空
	TargetBuilding string

	Speed      float64 // 实际出发速度（格/小时），定格留档
	DepartedAt time.Time
	ArriveAt   time.Time
	Status     MovementStatus
}

func (m *Movement) TargetsOasis() bool {
	return m.TargetOasisID != nil
}
