package transport

// 客户端协议层的数值错误码。HTTP 状态码一律 200，客户端只看 code 分支。
const (
	OK = 0

	InvalidParam = 1001
	Unauthorized = 1002
	Forbidden    = 1003
	NotFound     = 1004
	RateLimited  = 1005

	InsufficientResources = 2001
	CapacityLimit         = 2002
	PrerequisiteMissing   = 2003

	SystemError = 1500
)
