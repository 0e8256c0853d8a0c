package balance

import (
	"math"
	"testing"
)

func TestBuildingCost_按等级指数增长(t *testing.T) {
	cfg := Default()
	b := cfg.Buildings["sawmill"]

	lv1, err := cfg.BuildingCost("sawmill", 1)
	if err != nil {
		t.Fatal(err)
	}
	if lv1.Wood != b.Cost.Wood {
		t.Fatalf("一级成本应等于基础成本，got=%v", lv1.Wood)
	}

	lv3, err := cfg.BuildingCost("sawmill", 3)
	if err != nil {
		t.Fatal(err)
	}
	want := b.Cost.Wood * math.Pow(b.CostGrowth, 2)
	if math.Abs(lv3.Wood-want) > 1e-9 {
		t.Fatalf("三级成本 = 基础 * 增长^2，want=%v got=%v", want, lv3.Wood)
	}

	if _, err := cfg.BuildingCost("sawmill", 0); err == nil {
		t.Fatalf("0 级应报错")
	}
	if _, err := cfg.BuildingCost("no_such_building", 1); err == nil {
		t.Fatalf("未知建筑应报错")
	}
}

func TestTrainCost_随数量线性(t *testing.T) {
	cfg := Default()
	one, err := cfg.TrainCost("basic_infantry", 1)
	if err != nil {
		t.Fatal(err)
	}
	ten, err := cfg.TrainCost("basic_infantry", 10)
	if err != nil {
		t.Fatal(err)
	}
	if ten.Wood != one.Wood*10 {
		t.Fatalf("期望线性成本，got one=%v ten=%v", one.Wood, ten.Wood)
	}
}

func TestSlowestSpeed_取最慢且忽略零数量(t *testing.T) {
	cfg := Default()
	got := cfg.SlowestSpeed(map[string]int{
		"fast_cavalry": 5, // 1.2
		"ram":          1, // 0.5
		"catapult":     0, // 0.45 但数量为 0
	})
	if got != 0.5 {
		t.Fatalf("期望最慢速度 0.5（忽略零数量的投石车），got=%v", got)
	}
	if cfg.SlowestSpeed(nil) != 0 {
		t.Fatalf("空批次返回 0")
	}
}

func TestStorageCapacity_随仓库等级线性(t *testing.T) {
	cfg := Default()
	if cfg.StorageCapacity(0) != cfg.StorageBase {
		t.Fatalf("0 级容量应为基础值")
	}
	if cfg.StorageCapacity(4) != cfg.StorageBase+4*cfg.StoragePerLevel {
		t.Fatalf("容量应随等级线性增长")
	}
}

func TestLoad_空路径返回默认表(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Units) == 0 || len(cfg.Buildings) == 0 {
		t.Fatalf("默认表不应为空")
	}
}
