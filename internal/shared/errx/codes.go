package errx

// 这里只放跨上下文统一的系统类错误码。
// 业务域错误码（INSUFFICIENT_RESOURCES 之类）由各业务包自行定义，不允许集中到这里。

const (
	// CodeInternal 表示服务内部不可预期错误（兜底）。
	CodeInternal Code = "INTERNAL_ERROR"
	// CodeUnavailable 表示依赖不可用（DB/Mongo/下游服务等）。
	CodeUnavailable Code = "SERVICE_UNAVAILABLE"
	// CodeTimeout 表示请求或依赖调用超时。
	CodeTimeout Code = "TIMEOUT"
	// CodeRateLimited 表示被限流。
	CodeRateLimited Code = "RATE_LIMITED"
	// CodeReqParamError 表示请求参数不合法。
	CodeReqParamError Code = "REQ_PARAM_ERROR"
)

// 统一系统类哨兵错误（允许 WithData/WithCause 派生新对象）。
var (
	ErrInternal    = NewSys(CodeInternal, "服务器内部错误")
	ErrUnavailable = NewSys(CodeUnavailable, "服务不可用")
	ErrTimeout     = NewSys(CodeTimeout, "请求超时")
	ErrRateLimited = NewSys(CodeRateLimited, "请求过于频繁")
	ErrReqParam    = NewSys(CodeReqParamError, "请求参数错误")
)
