package entity

import "errors"

// 仓储层找不到聚合时返回这些哨兵错误，服务层据此翻译成业务错误码。
var (
	ErrCityNotFound     = errors.New("city not found")
	ErrOasisNotFound    = errors.New("oasis not found")
	ErrWorldNotFound    = errors.New("world not found")
	ErrMovementNotFound = errors.New("movement not found")
	ErrTileOccupied     = errors.New("tile occupied")
)
