package balance

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// 兵种分类：步兵/骑兵/攻城。
type Class string

const (
	ClassInfantry Class = "infantry"
	ClassCavalry  Class = "cavalry"
	ClassSiege    Class = "siege"
)

// Cost 三种资源的消耗。
type Cost struct {
	Wood float64 `json:"wood"`
	Clay float64 `json:"clay"`
	Iron float64 `json:"iron"`
}

func (c Cost) Scale(n float64) Cost {
	return Cost{Wood: c.Wood * n, Clay: c.Clay * n, Iron: c.Iron * n}
}

// Unit 兵种平衡参数。Speed 单位是格/小时。
type Unit struct {
	Attack       float64        `json:"attack"`
	DefInf       float64        `json:"def_inf"`
	DefCav       float64        `json:"def_cav"`
	DefSiege     float64        `json:"def_siege"`
	Class        Class          `json:"class"`
	Carry        float64        `json:"carry"`
	Speed        float64        `json:"speed"`
	Cost         Cost           `json:"cost"`
	Population   int            `json:"population"`
	TrainSeconds float64        `json:"train_seconds"`
	Requires     map[string]int `json:"requires,omitempty"`
}

// Building 建筑平衡参数。升到 L 级的成本 = Cost * CostGrowth^(L-1)。
type Building struct {
	Cost         Cost           `json:"cost"`
	CostGrowth   float64        `json:"cost_growth"`
	BuildSeconds float64        `json:"build_seconds"`
	Requires     map[string]int `json:"requires,omitempty"`
}

type Combat struct {
	MoralMin         float64 `json:"moral_min"`
	MoralMax         float64 `json:"moral_max"`
	LuckSpread       float64 `json:"luck_spread"`
	LossFloor        float64 `json:"loss_floor"`
	ImbalanceFactor  float64 `json:"imbalance_factor"`
	WallBonusPerLevel float64 `json:"wall_bonus_per_level"`
	HeroBase         float64 `json:"hero_base"`
	HeroPerPoint     float64 `json:"hero_per_point"`
	RamUnit          string  `json:"ram_unit"`
	CatapultUnit     string  `json:"catapult_unit"`
	NobleUnit        string  `json:"noble_unit"`
	NobleDropMin     int     `json:"noble_drop_min"`
	NobleDropMax     int     `json:"noble_drop_max"`
	ConquestLoyalty  float64 `json:"conquest_loyalty"`
}

type Espionage struct {
	SpyUnit           string  `json:"spy_unit"`
	BuildingThreshold int     `json:"building_threshold"`
	AnonymousChance   float64 `json:"anonymous_chance"`
}

// Config 是注入到各引擎的平衡表。引擎只读，不允许运行期修改。
type Config struct {
	// 每分钟基础产量（未含世界/事件/绿洲修正）
	ProductionPerMinute    map[string]float64 `json:"production_per_minute"`
	LoyaltyRecoveryPerHour float64            `json:"loyalty_recovery_per_hour"`

	StorageBase       float64 `json:"storage_base"`
	StoragePerLevel   float64 `json:"storage_per_level"`
	WarehouseBuilding string  `json:"warehouse_building"`

	PopulationBase     float64 `json:"population_base"`
	PopulationPerLevel float64 `json:"population_per_level"`
	FarmBuilding       string  `json:"farm_building"`

	WallBuilding string `json:"wall_building"`

	RefundRatio   float64 `json:"refund_ratio"`
	MinSpeed      float64 `json:"min_speed"`
	MerchantSpeed float64 `json:"merchant_speed"`

	Units     map[string]Unit     `json:"units"`
	Buildings map[string]Building `json:"buildings"`
	Combat    Combat              `json:"combat"`
	Espionage Espionage           `json:"espionage"`
}

// BuildingCost 升到 level 级的成本。
func (c *Config) BuildingCost(name string, level int) (Cost, error) {
	b, ok := c.Buildings[name]
	if !ok {
		return Cost{}, fmt.Errorf("unknown building type: %s", name)
	}
	if level < 1 {
		return Cost{}, fmt.Errorf("building level must be >= 1, got %d", level)
	}
	return b.Cost.Scale(math.Pow(b.CostGrowth, float64(level-1))), nil
}

// TrainCost 训练 amount 个 unit 的总成本。
func (c *Config) TrainCost(unit string, amount int) (Cost, error) {
	u, ok := c.Units[unit]
	if !ok {
		return Cost{}, fmt.Errorf("unknown unit type: %s", unit)
	}
	if amount < 1 {
		return Cost{}, fmt.Errorf("troop amount must be >= 1, got %d", amount)
	}
	return u.Cost.Scale(float64(amount)), nil
}

// StorageCapacity 仓库 level 级时单种资源的容量上限。
func (c *Config) StorageCapacity(level int) float64 {
	if level < 0 {
		level = 0
	}
	return c.StorageBase + c.StoragePerLevel*float64(level)
}

// PopulationCapacity 农场 level 级时的人口上限。
func (c *Config) PopulationCapacity(level int) float64 {
	if level < 0 {
		level = 0
	}
	return c.PopulationBase + c.PopulationPerLevel*float64(level)
}

// PopulationOf 一批兵的总人口占用。未知兵种按 0 计（入口已校验）。
func (c *Config) PopulationOf(troops map[string]int) float64 {
	total := 0.0
	for unit, amount := range troops {
		if u, ok := c.Units[unit]; ok {
			total += float64(u.Population * amount)
		}
	}
	return total
}

// SlowestSpeed 一批兵里最慢的行军速度；空批次返回 0。
func (c *Config) SlowestSpeed(troops map[string]int) float64 {
	slowest := 0.0
	for unit, amount := range troops {
		if amount <= 0 {
			continue
		}
		u, ok := c.Units[unit]
		if !ok {
			continue
		}
		if slowest == 0 || u.Speed < slowest {
			slowest = u.Speed
		}
	}
	return slowest
}

// CarryOf 一批兵的总负重。
func (c *Config) CarryOf(troops map[string]int) float64 {
	total := 0.0
	for unit, amount := range troops {
		if u, ok := c.Units[unit]; ok {
			total += u.Carry * float64(amount)
		}
	}
	return total
}

// Load 从 JSON 文件加载平衡表，文件里未出现的字段保持默认值。
// path 为空时直接返回默认表。
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read balance data: %w", err)
	}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse balance data: %w", err)
	}
	return cfg, nil
}

// Default 内置平衡表。
func Default() *Config {
	return &Config{
		ProductionPerMinute: map[string]float64{
			"wood": 15.0,
			"clay": 12.0,
			"iron": 10.0,
		},
		LoyaltyRecoveryPerHour: 2.0,

		StorageBase:       5000,
		StoragePerLevel:   2500,
		WarehouseBuilding: "warehouse",

		PopulationBase:     100,
		PopulationPerLevel: 60,
		FarmBuilding:       "farm",

		WallBuilding: "wall",

		RefundRatio:   0.8,
		MinSpeed:      0.01,
		MerchantSpeed: 0.8,

		Units: map[string]Unit{
			"basic_infantry": {Attack: 10, DefInf: 20, DefCav: 10, DefSiege: 20, Class: ClassInfantry, Carry: 40, Speed: 0.6,
				Cost: Cost{Wood: 50, Clay: 30, Iron: 20}, Population: 1, TrainSeconds: 45, Requires: map[string]int{"barracks": 1}},
			"heavy_infantry": {Attack: 25, DefInf: 40, DefCav: 30, DefSiege: 40, Class: ClassInfantry, Carry: 30, Speed: 0.55,
				Cost: Cost{Wood: 70, Clay: 60, Iron: 50}, Population: 1, TrainSeconds: 60, Requires: map[string]int{"barracks": 3}},
			"archer": {Attack: 30, DefInf: 10, DefCav: 40, DefSiege: 15, Class: ClassInfantry, Carry: 35, Speed: 0.7,
				Cost: Cost{Wood: 80, Clay: 40, Iron: 40}, Population: 1, TrainSeconds: 50, Requires: map[string]int{"barracks": 2}},
			"fast_cavalry": {Attack: 60, DefInf: 20, DefCav: 20, DefSiege: 20, Class: ClassCavalry, Carry: 80, Speed: 1.2,
				Cost: Cost{Wood: 120, Clay: 80, Iron: 100}, Population: 2, TrainSeconds: 70, Requires: map[string]int{"stable": 1}},
			"heavy_cavalry": {Attack: 100, DefInf: 40, DefCav: 60, DefSiege: 40, Class: ClassCavalry, Carry: 60, Speed: 0.9,
				Cost: Cost{Wood: 200, Clay: 150, Iron: 200}, Population: 3, TrainSeconds: 80, Requires: map[string]int{"stable": 3}},
			"spy": {Attack: 0, DefInf: 0, DefCav: 0, DefSiege: 0, Class: ClassInfantry, Carry: 0, Speed: 1.5,
				Cost: Cost{Wood: 40, Clay: 40, Iron: 40}, Population: 1, TrainSeconds: 30, Requires: map[string]int{"academy": 1}},
			"ram": {Attack: 2, DefInf: 40, DefCav: 35, DefSiege: 60, Class: ClassSiege, Carry: 0, Speed: 0.5,
				Cost: Cost{Wood: 300, Clay: 200, Iron: 150}, Population: 3, TrainSeconds: 90, Requires: map[string]int{"workshop": 1}},
			"catapult": {Attack: 2, DefInf: 70, DefCav: 70, DefSiege: 90, Class: ClassSiege, Carry: 0, Speed: 0.45,
				Cost: Cost{Wood: 350, Clay: 250, Iron: 300}, Population: 4, TrainSeconds: 120, Requires: map[string]int{"workshop": 3}},
			"noble": {Attack: 30, DefInf: 50, DefCav: 50, DefSiege: 50, Class: ClassInfantry, Carry: 0, Speed: 0.35,
				Cost: Cost{Wood: 1000, Clay: 1000, Iron: 1000}, Population: 6, TrainSeconds: 600, Requires: map[string]int{"academy": 3}},

			// 野外生物：只会出现在绿洲驻军里，玩家不可训练。
			"rat":    {Attack: 5, DefInf: 10, DefCav: 10, DefSiege: 10, Class: ClassInfantry, Speed: 0.6},
			"spider": {Attack: 10, DefInf: 15, DefCav: 10, DefSiege: 15, Class: ClassInfantry, Speed: 0.7},
			"wolf":   {Attack: 20, DefInf: 15, DefCav: 25, DefSiege: 15, Class: ClassInfantry, Speed: 1.0},
			"boar":   {Attack: 15, DefInf: 25, DefCav: 20, DefSiege: 25, Class: ClassInfantry, Speed: 0.8},
		},

		Buildings: map[string]Building{
			"town_hall": {Cost: Cost{Wood: 200, Clay: 150, Iron: 100}, CostGrowth: 1.26, BuildSeconds: 420},
			"sawmill":   {Cost: Cost{Wood: 100, Clay: 50, Iron: 30}, CostGrowth: 1.26, BuildSeconds: 300},
			"clay_pit":  {Cost: Cost{Wood: 80, Clay: 120, Iron: 40}, CostGrowth: 1.26, BuildSeconds: 300},
			"iron_mine": {Cost: Cost{Wood: 70, Clay: 80, Iron: 150}, CostGrowth: 1.26, BuildSeconds: 330},
			"farm":      {Cost: Cost{Wood: 150, Clay: 100, Iron: 70}, CostGrowth: 1.26, BuildSeconds: 360},
			"warehouse": {Cost: Cost{Wood: 130, Clay: 180, Iron: 90}, CostGrowth: 1.26, BuildSeconds: 390},
			"barracks":  {Cost: Cost{Wood: 160, Clay: 120, Iron: 140}, CostGrowth: 1.26, BuildSeconds: 450, Requires: map[string]int{"town_hall": 1}},
			"stable":    {Cost: Cost{Wood: 220, Clay: 180, Iron: 200}, CostGrowth: 1.26, BuildSeconds: 540, Requires: map[string]int{"barracks": 3}},
			"workshop":  {Cost: Cost{Wood: 250, Clay: 200, Iron: 220}, CostGrowth: 1.26, BuildSeconds: 600, Requires: map[string]int{"barracks": 5}},
			"wall":      {Cost: Cost{Wood: 200, Clay: 250, Iron: 180}, CostGrowth: 1.26, BuildSeconds: 480, Requires: map[string]int{"town_hall": 2}},
			"market":    {Cost: Cost{Wood: 140, Clay: 140, Iron: 120}, CostGrowth: 1.26, BuildSeconds: 420, Requires: map[string]int{"town_hall": 3}},
			"academy":   {Cost: Cost{Wood: 300, Clay: 260, Iron: 260}, CostGrowth: 1.26, BuildSeconds: 660, Requires: map[string]int{"town_hall": 5}},
		},

		Combat: Combat{
			MoralMin:          0.3,
			MoralMax:          1.5,
			LuckSpread:        0.25,
			LossFloor:         0.05,
			ImbalanceFactor:   1.2,
			WallBonusPerLevel: 0.05,
			HeroBase:          100,
			HeroPerPoint:      10,
			RamUnit:           "ram",
			CatapultUnit:      "catapult",
			NobleUnit:         "noble",
			NobleDropMin:      20,
			NobleDropMax:      35,
			ConquestLoyalty:   25,
		},

		Espionage: Espionage{
			SpyUnit:           "spy",
			BuildingThreshold: 5,
			AnonymousChance:   0.1,
		},
	}
}
