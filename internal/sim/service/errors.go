package service

import "BatallaMedieval/internal/shared/errx"

// 模拟核心的业务错误码。调用方（HTTP 层、机器人）按 code 分支，msg 仅供展示。
const (
	CodeValidation   errx.Code = "VALIDATION_ERROR"
	CodeInsufficient errx.Code = "INSUFFICIENT_RESOURCES"
	CodeCapacity     errx.Code = "CAPACITY_LIMIT"
	CodePrerequisite errx.Code = "PREREQUISITE_MISSING"
)

var (
	ErrValidation   = errx.NewBiz(CodeValidation, "请求不合法")
	ErrInsufficient = errx.NewBiz(CodeInsufficient, "资源不足")
	ErrCapacity     = errx.NewBiz(CodeCapacity, "超出容量上限")
	ErrPrerequisite = errx.NewBiz(CodePrerequisite, "前置条件未满足")
)
