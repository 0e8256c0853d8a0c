package handler

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"BatallaMedieval/internal/shared/errx"
	"BatallaMedieval/internal/shared/logs"
	"BatallaMedieval/internal/shared/transport"
	"BatallaMedieval/internal/sim/entity"
	"BatallaMedieval/internal/sim/service"
	"BatallaMedieval/internal/sim/service/port"
)

// 接口层自有的业务错误：归属校验不属于模拟核心，在这里拦。
var (
	errNotFound  = errx.NewBiz("NOT_FOUND", "目标不存在")
	errForbidden = errx.NewBiz("FORBIDDEN", "没有权限操作该城市")
)

// Sim 模拟上下文的接口层聚合，持有全部应用服务。
type Sim struct {
	Production *service.ProductionService
	Queues     *service.QueueService
	Movements  *service.MovementService
	WorldGen   *service.WorldGenService
	Tick       *service.TickService

	cities port.CityRepository
}

func NewSim(
	production *service.ProductionService,
	queues *service.QueueService,
	movements *service.MovementService,
	worldGen *service.WorldGenService,
	tick *service.TickService,
	cities port.CityRepository,
) *Sim {
	return &Sim{
		Production: production,
		Queues:     queues,
		Movements:  movements,
		WorldGen:   worldGen,
		Tick:       tick,
		cities:     cities,
	}
}

// AuthorizeCity 校验城市存在且属于 uid。无主城对任何玩家都不可操作。
func (s *Sim) AuthorizeCity(ctx context.Context, cityID entity.CityID, uid entity.PlayerID) error {
	city, err := s.cities.GetCity(ctx, cityID)
	if err != nil {
		if errors.Is(err, entity.ErrCityNotFound) {
			return errNotFound.WithData("city_id", cityID)
		}
		return errx.ErrUnavailable.WithCause(err).WithData("city_id", cityID)
	}
	owner, ok := city.Owner.PlayerID()
	if !ok || owner != uid {
		return errForbidden.WithData("city_id", cityID)
	}
	return nil
}

// AuthorizeQueueEntry 反查队列条目所属城市并校验归属。
func (s *Sim) AuthorizeQueueEntry(ctx context.Context, entryID entity.QueueID, uid entity.PlayerID) error {
	city, err := s.cities.FindCityByQueueEntry(ctx, entryID)
	if err != nil {
		if errors.Is(err, entity.ErrCityNotFound) {
			return errNotFound.WithData("entry_id", entryID)
		}
		return errx.ErrUnavailable.WithCause(err).WithData("entry_id", entryID)
	}
	owner, ok := city.Owner.PlayerID()
	if !ok || owner != uid {
		return errForbidden.WithData("city_id", city.ID)
	}
	return nil
}

// HandleError 把领域错误翻译成客户端协议码。系统类错误不外漏细节。
func HandleError(err error) (int, string) {
	var e *errx.Error
	if errors.As(err, &e) {
		switch {
		case errors.Is(err, errNotFound):
			return transport.NotFound, e.Msg()
		case errors.Is(err, errForbidden):
			return transport.Forbidden, e.Msg()
		case errors.Is(err, service.ErrValidation):
			return transport.InvalidParam, e.Msg()
		case errors.Is(err, service.ErrInsufficient):
			return transport.InsufficientResources, e.Msg()
		case errors.Is(err, service.ErrCapacity):
			return transport.CapacityLimit, e.Msg()
		case errors.Is(err, service.ErrPrerequisite):
			return transport.PrerequisiteMissing, e.Msg()
		case errors.Is(err, errx.ErrRateLimited):
			return transport.RateLimited, "操作过于频繁，请稍后再试"
		}
	}
	logs.Error("请求处理失败", zap.Error(err))
	return transport.SystemError, "系统繁忙，请稍后重试"
}
