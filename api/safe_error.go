package api

import (
	"smartexpense/config"
)

// SafeErrorMessage release 模式下隐藏内部错误详情
func SafeErrorMessage(err error, fallback string) string {
	return config.SafeErrorMessage(err, fallback)
}
