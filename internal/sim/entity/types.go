package entity

type WorldID = int64
type CityID = int64
type OasisID = int64
type PlayerID = int64
type MovementID = int64
type QueueID = int64

// Resources 三种资源的实数库存/载货。
type Resources struct {
	Wood float64 `json:"wood"`
	Clay float64 `json:"clay"`
	Iron float64 `json:"iron"`
}

func (r Resources) Add(o Resources) Resources {
	return Resources{Wood: r.Wood + o.Wood, Clay: r.Clay + o.Clay, Iron: r.Iron + o.Iron}
}

func (r Resources) Sub(o Resources) Resources {
	return Resources{Wood: r.Wood - o.Wood, Clay: r.Clay - o.Clay, Iron: r.Iron - o.Iron}
}

func (r Resources) Scale(n float64) Resources {
	return Resources{Wood: r.Wood * n, Clay: r.Clay * n, Iron: r.Iron * n}
}

// ClampTo 各资源独立封顶到 cap。
func (r Resources) ClampTo(cap float64) Resources {
	return Resources{Wood: min(r.Wood, cap), Clay: min(r.Clay, cap), Iron: min(r.Iron, cap)}
}

func (r Resources) Total() float64 {
	return r.Wood + r.Clay + r.Iron
}

// CanAfford 判断库存是否足够支付 cost。
func (r Resources) CanAfford(cost Resources) bool {
	return r.Wood >= cost.Wood && r.Clay >= cost.Clay && r.Iron >= cost.Iron
}

func (r Resources) IsZero() bool {
	return r.Wood == 0 && r.Clay == 0 && r.Iron == 0
}

// TroopSet 兵种 -> 数量。约定不保存 0 或负数数量。
type TroopSet map[string]int

func (t TroopSet) Clone() TroopSet {
	if t == nil {
		return TroopSet{}
	}
	out := make(TroopSet, len(t))
	for unit, n := range t {
		if n > 0 {
			out[unit] = n
		}
	}
	return out
}

func (t TroopSet) Total() int {
	total := 0
	for _, n := range t {
		total += n
	}
	return total
}

// Has 判断是否拥有 want 里的每种兵及数量。
func (t TroopSet) Has(want TroopSet) bool {
	for unit, n := range want {
		if t[unit] < n {
			return false
		}
	}
	return true
}

// Add 把 other 合并进来（原地修改）。
func (t TroopSet) Add(other TroopSet) {
	for unit, n := range other {
		if n > 0 {
			t[unit] += n
		}
	}
}

// Remove 扣减 other（原地修改），数量归零的兵种从 map 里删除。
// 调用前必须先用 Has 校验。
func (t TroopSet) Remove(other TroopSet) {
	for unit, n := range other {
		t[unit] -= n
		if t[unit] <= 0 {
			delete(t, unit)
		}
	}
}

// Ownership 城池归属：玩家所有 / 无主（野蛮人）。
// 显式的变体类型，避免在征服/产出逻辑里到处判空指针。
type Ownership struct {
	playerID PlayerID
	claimed  bool
}

func Owned(id PlayerID) Ownership {
	return Ownership{playerID: id, claimed: true}
}

func Unclaimed() Ownership {
	return Ownership{}
}

func (o Ownership) PlayerID() (PlayerID, bool) {
	return o.playerID, o.claimed
}

func (o Ownership) IsUnclaimed() bool {
	return !o.claimed
}

// Modifiers 世界/事件合并后的速率修正。
type Modifiers struct {
	ProductionSpeed float64 `json:"production_speed"`
	TrainingSpeed   float64 `json:"troop_training_speed"`
	MovementSpeed   float64 `json:"movement_speed"`
	SpyModifier     float64 `json:"spy_modifier"`
	LootModifier    float64 `json:"loot_modifier"`
}

func DefaultModifiers() Modifiers {
	return Modifiers{
		ProductionSpeed: 1.0,
		TrainingSpeed:   1.0,
		MovementSpeed:   1.0,
		SpyModifier:     1.0,
		LootModifier:    1.0,
	}
}
