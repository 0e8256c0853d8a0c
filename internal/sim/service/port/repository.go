package port

import (
	"context"
	"time"

	"BatallaMedieval/internal/sim/entity"
)

// CityRepository 城市聚合仓储。城市连同它的建筑、驻军和两条队列整体读写。
type CityRepository interface {
	GetCity(ctx context.Context, id entity.CityID) (*entity.City, error)
	// GetCityAt 按坐标查城市，找不到返回 entity.ErrCityNotFound。
	GetCityAt(ctx context.Context, worldID entity.WorldID, x, y int) (*entity.City, error)
	CreateCity(ctx context.Context, city *entity.City) error
	SaveCity(ctx context.Context, city *entity.City) error
	// FindCityByQueueEntry 根据队列条目 ID 反查所属城市。两条队列都查，没有返回 entity.ErrCityNotFound。
	FindCityByQueueEntry(ctx context.Context, entryID entity.QueueID) (*entity.City, error)
	// CityIDsWithDueWork 返回存在已到期队列条目的城市 ID。worldID 为 nil 时跨所有世界。
	CityIDsWithDueWork(ctx context.Context, worldID *entity.WorldID, now time.Time) ([]entity.CityID, error)
	// ListUnclaimed 返回无主（野蛮人）城市，worldID 为 nil 时跨所有世界，limit<=0 表示不限量。
	ListUnclaimed(ctx context.Context, worldID *entity.WorldID, limit int) ([]*entity.City, error)
}

// OasisRepository 绿洲仓储。
type OasisRepository interface {
	GetOasis(ctx context.Context, id entity.OasisID) (*entity.Oasis, error)
	OasisAt(ctx context.Context, worldID entity.WorldID, x, y int) (*entity.Oasis, error)
	CreateOasis(ctx context.Context, oasis *entity.Oasis) error
	SaveOasis(ctx context.Context, oasis *entity.Oasis) error
	// ListByOwnerCity 返回某城市吞并的全部绿洲，用于产量加成求和。
	ListByOwnerCity(ctx context.Context, cityID entity.CityID) ([]*entity.Oasis, error)
}

// MovementRepository 行军仓储。
type MovementRepository interface {
	CreateMovement(ctx context.Context, m *entity.Movement) error
	SaveMovement(ctx context.Context, m *entity.Movement) error
	// DueMovements 返回 arrive_at<=now 且仍在途的行军，按到达时间升序。
	DueMovements(ctx context.Context, worldID *entity.WorldID, now time.Time) ([]*entity.Movement, error)
}

// WorldRepository 世界与全局事件仓储。
type WorldRepository interface {
	GetWorld(ctx context.Context, id entity.WorldID) (*entity.World, error)
	CreateWorld(ctx context.Context, w *entity.World) error
	// ActiveEvent 返回 now 时刻生效的事件，没有则返回 (nil, nil)。
	ActiveEvent(ctx context.Context, worldID entity.WorldID, now time.Time) (*entity.WorldEvent, error)
	CreateEvent(ctx context.Context, e *entity.WorldEvent) error
}

// ReportRepository 战报/谍报文档仓储，底层是 Mongo 这类文档库。
type ReportRepository interface {
	SaveBattleReport(ctx context.Context, r *entity.BattleReport) error
	SaveSpyReport(ctx context.Context, r *entity.SpyReport) error
}
